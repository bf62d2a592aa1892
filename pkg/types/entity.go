package types

import "github.com/google/uuid"

// Entity is a typed object with a stable UUID identity, stored as one row.
// The identity is assigned at construction and never reassigned. Fields holds
// every live field value: scalars, nested structures, and references to other
// entities (as *Entity). Which fields map to dedicated columns is decided by
// the type's registered schema; everything is additionally carried in the
// row's snapshot column.
type Entity struct {
	typeName string
	uuid     string

	// Fields maps field name to live value. Values may be strings, numbers,
	// booleans, time.Time, []any, map[string]any, or *Entity references.
	Fields map[string]any
}

// NewEntity creates an entity of the given registered type with a freshly
// assigned UUID v7 identity.
func NewEntity(typeName string) *Entity {
	return NewEntityWithID(typeName, newUUID())
}

// NewEntityWithID creates an entity bound to an existing identity. Used when
// rehydrating rows; application code normally calls NewEntity.
func NewEntityWithID(typeName, id string) *Entity {
	return &Entity{
		typeName: typeName,
		uuid:     id,
		Fields:   make(map[string]any),
	}
}

// TypeName returns the registered type name of the entity.
func (e *Entity) TypeName() string { return e.typeName }

// UUID returns the entity's stable identity.
func (e *Entity) UUID() string { return e.uuid }

// Set assigns a field value and returns the entity for chaining.
func (e *Entity) Set(field string, v any) *Entity {
	e.Fields[field] = v
	return e
}

// Get returns a field value, or nil when the field is absent.
func (e *Entity) Get(field string) any { return e.Fields[field] }

// Ref returns the field value as an entity reference, or nil when the field
// is absent or holds a non-entity value.
func (e *Entity) Ref(field string) *Entity {
	ref, _ := e.Fields[field].(*Entity)
	return ref
}

// newUUID generates a UUID v7 string, falling back to v4 if v7 fails.
func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
