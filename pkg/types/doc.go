// Package types defines the Engine interface, the Entity value, schema
// descriptors, criteria, and the standard error values for the Larder
// object-graph persistence engine.
package types
