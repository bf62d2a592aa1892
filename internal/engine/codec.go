// Object graph codec: serializes an entity's fields into the row's snapshot
// payload, replacing embedded entities with reference tokens, and resolves
// tokens back into live instances on load.
package engine

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// Reference token keys. A token is the on-the-wire stand-in for an embedded
// entity inside a snapshot: {"$type": <type name>, "$uuid": <identifier>}.
// The dollar prefix keeps plain two-key maps from matching the token shape.
const (
	tokenTypeKey = "$type"
	tokenUUIDKey = "$uuid"
)

// encodeSnapshot serializes every field of e to the snapshot payload. Each
// embedded entity is emitted as a reference token and, when not already in
// the operation cache, cascaded through the save protocol first. The top
// level is always the entity's own plain field map, never a token for
// itself; a field pointing back at e emits a token carrying e's own
// identifier, which the cache short-circuits instead of recursing.
func encodeSnapshot(e *types.Entity, op *opRun) ([]byte, error) {
	snap := make(map[string]any, len(e.Fields))
	for name, v := range e.Fields {
		ev, err := encodeValue(v, op)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		snap[name] = ev
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling snapshot: %v", types.ErrConversion, err)
	}
	return payload, nil
}

func encodeValue(v any, op *opRun) (any, error) {
	switch val := v.(type) {
	case *types.Entity:
		if val == nil {
			return nil, nil
		}
		if err := op.save(val); err != nil {
			return nil, err
		}
		return map[string]any{
			tokenTypeKey: val.TypeName(),
			tokenUUIDKey: val.UUID(),
		}, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, nested := range val {
			ev, err := encodeValue(nested, op)
			if err != nil {
				return nil, err
			}
			out[k] = ev
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, nested := range val {
			ev, err := encodeValue(nested, op)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	case time.Time:
		return val.UTC().Format(timeWire), nil
	default:
		return v, nil
	}
}

// decodeSnapshot parses a stored snapshot payload and resolves every
// reference token to a live instance through the operation cache, recursing
// into the load protocol for identifiers not yet materialized. Tokens naming
// a type absent from the registry are left in place as raw maps; the load
// degrades rather than fails.
func decodeSnapshot(raw any, op *opRun) (map[string]any, error) {
	var payload []byte
	switch v := raw.(type) {
	case nil:
		return map[string]any{}, nil
	case []byte:
		payload = v
	case string:
		payload = []byte(v)
	default:
		return nil, fmt.Errorf("%w: stored snapshot is %T", types.ErrConversion, raw)
	}

	var snap map[string]any
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("%w: parsing snapshot: %v", types.ErrConversion, err)
	}

	out := make(map[string]any, len(snap))
	for name, v := range snap {
		dv, err := decodeValue(v, op)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		out[name] = dv
	}
	return out, nil
}

func decodeValue(v any, op *opRun) (any, error) {
	switch val := v.(type) {
	case map[string]any:
		if tn, id, ok := tokenShape(val); ok {
			ti, registered := op.eng.types[tn]
			if !registered {
				// Unknown type: degrade to the raw token.
				return val, nil
			}
			if cached, ok := op.cache[id]; ok {
				return cached, nil
			}
			return op.loadWithID(ti.def.Name, id)
		}
		out := make(map[string]any, len(val))
		for k, nested := range val {
			dv, err := decodeValue(nested, op)
			if err != nil {
				return nil, err
			}
			out[k] = dv
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, nested := range val {
			dv, err := decodeValue(nested, op)
			if err != nil {
				return nil, err
			}
			out[i] = dv
		}
		return out, nil
	default:
		return v, nil
	}
}

// tokenShape reports whether a parsed map is a reference token.
func tokenShape(m map[string]any) (typeName, id string, ok bool) {
	if len(m) != 2 {
		return "", "", false
	}
	tn, ok1 := m[tokenTypeKey].(string)
	id, ok2 := m[tokenUUIDKey].(string)
	if !ok1 || !ok2 || tn == "" || id == "" {
		return "", "", false
	}
	return tn, id, true
}
