package types

import "errors"

// Engine lifecycle errors.
var (
	ErrDetached        = errors.New("engine is detached")
	ErrAlreadyAttached = errors.New("engine is already attached")
)

// Registration and schema errors.
var (
	ErrSchema      = errors.New("schema definition missing or not inferable")
	ErrUnknownType = errors.New("type is not registered")
)

// Operation errors.
var (
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidID       = errors.New("invalid entity ID")
	ErrInvalidEntity   = errors.New("invalid entity")
	ErrConversion      = errors.New("column conversion failed")
	ErrTransaction     = errors.New("transaction checkpoint failed")
	ErrInvalidCriteria = errors.New("invalid criteria")
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
)
