package concierge

import (
	"bytes"
	"encoding/json"
	"math"
)

// Value is a sealed interface over the argument types a tool accepts.
// The unexported marker method prevents external implementations.
type Value interface {
	value()
	Type() ParamType
}

// StringValue is a string argument.
type StringValue string

func (StringValue) value() {}

// Type returns ParamString.
func (StringValue) Type() ParamType { return ParamString }

// IntegerValue is an integer argument.
type IntegerValue int64

func (IntegerValue) value() {}

// Type returns ParamInteger.
func (IntegerValue) Type() ParamType { return ParamInteger }

// NumberValue is a floating point argument.
type NumberValue float64

func (NumberValue) value() {}

// Type returns ParamNumber.
func (NumberValue) Type() ParamType { return ParamNumber }

// BooleanValue is a boolean argument.
type BooleanValue bool

func (BooleanValue) value() {}

// Type returns ParamBoolean.
func (BooleanValue) Type() ParamType { return ParamBoolean }

// Interface compliance checks.
var (
	_ Value = StringValue("")
	_ Value = IntegerValue(0)
	_ Value = NumberValue(0)
	_ Value = BooleanValue(false)
)

// Arguments holds validated tool arguments keyed by parameter name.
type Arguments map[string]Value

// String returns the named string argument.
func (a Arguments) String(name string) (string, bool) {
	v, ok := a[name].(StringValue)
	return string(v), ok
}

// Integer returns the named integer argument.
func (a Arguments) Integer(name string) (int64, bool) {
	v, ok := a[name].(IntegerValue)
	return int64(v), ok
}

// Number returns the named number argument.
func (a Arguments) Number(name string) (float64, bool) {
	v, ok := a[name].(NumberValue)
	return float64(v), ok
}

// Boolean returns the named boolean argument.
func (a Arguments) Boolean(name string) (bool, bool) {
	v, ok := a[name].(BooleanValue)
	return bool(v), ok
}

// Bind validates raw JSON arguments against the tool's parameters and
// converts them to typed values. Empty input and JSON null are treated as an
// empty object. Arguments not named by any parameter are ignored. Failures
// are *Error values of kind KindInvalidArgument naming the field.
func (t Tool) Bind(raw json.RawMessage) (Arguments, error) {
	fields := map[string]json.RawMessage{}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if trimmed[0] != '{' {
			return nil, InvalidArgument("", "arguments must be a JSON object")
		}
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return nil, InvalidArgument("", "malformed arguments: %v", err)
		}
	}

	args := make(Arguments, len(t.Params))
	for _, p := range t.Params {
		field, ok := fields[p.Name]
		if !ok || bytes.Equal(bytes.TrimSpace(field), []byte("null")) {
			if p.Required {
				return nil, InvalidArgument(p.Name, "missing required argument")
			}
			continue
		}
		v, err := bindValue(p, field)
		if err != nil {
			return nil, err
		}
		args[p.Name] = v
	}
	return args, nil
}

func bindValue(p Param, field json.RawMessage) (Value, error) {
	switch p.Type {
	case ParamString:
		var s string
		if err := json.Unmarshal(field, &s); err != nil {
			return nil, InvalidArgument(p.Name, "expected string, got %s", jsonType(field))
		}
		return StringValue(s), nil
	case ParamBoolean:
		var b bool
		if err := json.Unmarshal(field, &b); err != nil {
			return nil, InvalidArgument(p.Name, "expected boolean, got %s", jsonType(field))
		}
		return BooleanValue(b), nil
	case ParamInteger:
		var f float64
		if err := json.Unmarshal(field, &f); err != nil {
			return nil, InvalidArgument(p.Name, "expected integer, got %s", jsonType(field))
		}
		if f != math.Trunc(f) || math.Abs(f) > 1<<53 {
			return nil, InvalidArgument(p.Name, "expected integer, got %v", f)
		}
		if p.Minimum != nil && f < float64(*p.Minimum) {
			return nil, InvalidArgument(p.Name, "must be >= %d, got %d", *p.Minimum, int64(f))
		}
		return IntegerValue(int64(f)), nil
	case ParamNumber:
		var f float64
		if err := json.Unmarshal(field, &f); err != nil {
			return nil, InvalidArgument(p.Name, "expected number, got %s", jsonType(field))
		}
		if p.Minimum != nil && f < float64(*p.Minimum) {
			return nil, InvalidArgument(p.Name, "must be >= %d, got %g", *p.Minimum, f)
		}
		return NumberValue(f), nil
	default:
		return nil, InvalidArgument(p.Name, "unsupported parameter type %q", p.Type)
	}
}

// jsonType names the JSON type of a raw value for error messages.
func jsonType(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "nothing"
	}
	switch trimmed[0] {
	case '"':
		return "string"
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}
