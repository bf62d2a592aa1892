// Conversion registry: column kind to storage-type converters. Built-ins
// cover the standard kinds; DeclareType installs or overwrites an entry.
package engine

import (
	"fmt"
	"time"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// timeWire is the canonical wire form for timestamps, applied in both
// directions: UTC RFC 3339 with nanoseconds.
const timeWire = time.RFC3339Nano

// DeclareType installs the converter for a column kind. Redeclaration
// overwrites; a kind with nil functions passes values through unchanged.
func (g *Engine) DeclareType(kind string, conv types.Converter) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.converters[kind] = conv
}

// declareBuiltins registers the standard column kinds. The aggregate kind
// carries only its placeholder here; its value conversion is the object
// graph codec, which the save and load protocols invoke directly so the
// operation cache threads through the recursion.
func (g *Engine) declareBuiltins() {
	g.converters[types.KindUUID] = types.Converter{}
	g.converters[types.KindText] = types.Converter{}
	g.converters[types.KindInteger] = types.Converter{
		ToValue: integerToValue,
	}
	g.converters[types.KindReal] = types.Converter{
		ToValue: realToValue,
	}
	g.converters[types.KindTimestamp] = types.Converter{
		ToStorage: timestampToStorage,
		ToValue:   timestampToValue,
	}
	g.converters[types.KindAggregate] = types.Converter{
		Placeholder: "jsonb(?)",
	}
}

// toStorage applies the kind's storage conversion to a live value.
// A missing or nil converter passes the value through.
func (g *Engine) toStorage(kind string, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	conv, ok := g.converters[kind]
	if !ok || conv.ToStorage == nil {
		return v, nil
	}
	out, err := conv.ToStorage(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrConversion, kind, err)
	}
	return out, nil
}

// toValue applies the kind's load conversion to a stored value.
func (g *Engine) toValue(kind string, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	conv, ok := g.converters[kind]
	if !ok || conv.ToValue == nil {
		return raw, nil
	}
	out, err := conv.ToValue(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrConversion, kind, err)
	}
	return out, nil
}

// placeholderFor returns the SQL parameter marker for a kind.
func (g *Engine) placeholderFor(kind string) string {
	if conv, ok := g.converters[kind]; ok && conv.Placeholder != "" {
		return conv.Placeholder
	}
	return "?"
}

func timestampToStorage(v any) (any, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(timeWire), nil
	case string:
		// Already in wire form; validate.
		if _, err := time.Parse(timeWire, t); err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, fmt.Errorf("cannot store %T as timestamp", v)
	}
}

func timestampToValue(raw any) (any, error) {
	// The driver hands TIMESTAMP columns back as time.Time; snapshot values
	// arrive as wire strings.
	switch v := raw.(type) {
	case time.Time:
		return v.UTC(), nil
	case string:
		t, err := time.Parse(timeWire, v)
		if err != nil {
			return nil, err
		}
		return t, nil
	case []byte:
		t, err := time.Parse(timeWire, string(v))
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, fmt.Errorf("stored timestamp is %T", raw)
	}
}

// integerToValue normalizes stored integers to int64. Snapshot values come
// back from JSON as float64 and converge here.
func integerToValue(raw any) (any, error) {
	switch n := raw.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case bool:
		// Booleans ride in integer columns but keep their live type.
		return n, nil
	default:
		return nil, fmt.Errorf("stored integer is %T", raw)
	}
}

// realToValue normalizes stored reals to float64.
func realToValue(raw any) (any, error) {
	switch n := raw.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	default:
		return nil, fmt.Errorf("stored real is %T", raw)
	}
}
