// Package message implements declaratively typed records: Messages whose
// shape is fixed by a Schema of named Fields, each with a default value, a
// validator, and a human-readable description. The typed-message RPC
// variant exchanges these instead of the free-form registry/RMI variant's
// arbitrary codec values.
package message

import (
	"fmt"

	"github.com/speedy-rpc/speedygo/errs"
)

// FieldSpec describes the shape one named field of a Message must hold.
type FieldSpec interface {
	// Default returns a fresh zero value for this field, used to populate a
	// newly constructed Message before any field is explicitly set.
	Default() interface{}

	// Validate reports whether v is an admissible value for this field.
	Validate(v interface{}) error

	// Describe returns a short human-readable name, e.g. "int" or
	// "list<string>", used in schema-rejection error messages.
	Describe() string
}

// Int is the FieldSpec for integer-valued fields. Values are represented in
// Go as int, int32, int64, or float64 (the shape JSON decoding produces for
// a whole number), and are validated accordingly.
type Int struct{}

func (Int) Default() interface{} { return 0 }

func (Int) Validate(v interface{}) error {
	switch n := v.(type) {
	case int, int32, int64:
		return nil
	case float64:
		if n == float64(int64(n)) {
			return nil
		}
		return errs.B().Code(errs.SchemaError).Msgf("int field: %v has a fractional part", n).Err()
	default:
		return errs.B().Code(errs.SchemaError).Msgf("int field: want int, got %T", v).Err()
	}
}

func (Int) Describe() string { return "int" }

// Float is the FieldSpec for floating-point fields.
type Float struct{}

func (Float) Default() interface{} { return 0.0 }

func (Float) Validate(v interface{}) error {
	switch v.(type) {
	case float32, float64, int, int32, int64:
		return nil
	default:
		return errs.B().Code(errs.SchemaError).Msgf("float field: want float, got %T", v).Err()
	}
}

func (Float) Describe() string { return "float" }

// String is the FieldSpec for string fields.
type String struct{}

func (String) Default() interface{} { return "" }

func (String) Validate(v interface{}) error {
	if _, ok := v.(string); !ok {
		return errs.B().Code(errs.SchemaError).Msgf("string field: want string, got %T", v).Err()
	}
	return nil
}

func (String) Describe() string { return "string" }

// Boolean is the FieldSpec for boolean fields.
type Boolean struct{}

func (Boolean) Default() interface{} { return false }

func (Boolean) Validate(v interface{}) error {
	if _, ok := v.(bool); !ok {
		return errs.B().Code(errs.SchemaError).Msgf("boolean field: want bool, got %T", v).Err()
	}
	return nil
}

func (Boolean) Describe() string { return "boolean" }

// MessageField is the FieldSpec for a nested Message of a fixed Schema.
type MessageField struct {
	Schema *Schema
}

func (f MessageField) Default() interface{} { return f.Schema.New() }

func (f MessageField) Validate(v interface{}) error {
	m, ok := v.(*Message)
	if !ok || m.schema != f.Schema {
		return errs.B().Code(errs.SchemaError).
			Msgf("message field: want %s, got %T", f.Describe(), v).Err()
	}
	return m.Validate()
}

func (f MessageField) Describe() string { return "message<" + f.Schema.Name + ">" }

// List is the FieldSpec for a homogeneous list field. Values are
// represented in Go as []interface{}, each element validated against Elem.
type List struct {
	Elem FieldSpec
}

func (f List) Default() interface{} { return []interface{}{} }

func (f List) Validate(v interface{}) error {
	l, ok := v.([]interface{})
	if !ok {
		return errs.B().Code(errs.SchemaError).Msgf("list field: want %s, got %T", f.Describe(), v).Err()
	}
	for i, elem := range l {
		if err := f.Elem.Validate(elem); err != nil {
			return errs.Wrap(err, fmt.Sprintf("list field: element %d", i))
		}
	}
	return nil
}

func (f List) Describe() string { return "list<" + f.Elem.Describe() + ">" }

// Map is the FieldSpec for a map field. Keys are restricted to strings
// (the Key spec still validates each key as a value, so String is the only
// sound choice) since the wire codec is JSON and JSON object keys are
// always strings; values are represented as map[string]interface{} and
// each validated against Elem.
type Map struct {
	Key  FieldSpec
	Elem FieldSpec
}

func (f Map) Default() interface{} { return map[string]interface{}{} }

func (f Map) Validate(v interface{}) error {
	m, ok := v.(map[string]interface{})
	if !ok {
		return errs.B().Code(errs.SchemaError).Msgf("map field: want %s, got %T", f.Describe(), v).Err()
	}
	for k, elem := range m {
		if err := f.Key.Validate(k); err != nil {
			return errs.Wrap(err, fmt.Sprintf("map field: key %q", k))
		}
		if err := f.Elem.Validate(elem); err != nil {
			return errs.Wrap(err, fmt.Sprintf("map field: value at key %q", k))
		}
	}
	return nil
}

func (f Map) Describe() string { return "map<" + f.Key.Describe() + "," + f.Elem.Describe() + ">" }
