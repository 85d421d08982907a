package message

import (
	"golang.org/x/exp/slices"

	"github.com/speedy-rpc/speedygo/errs"
)

// FieldDef pairs a declared field name with its FieldSpec. Order matters:
// it fixes the field-wise comparison order used by Message.Compare.
type FieldDef struct {
	Name string
	Spec FieldSpec
}

// Schema declares the fixed field set of one Message subtype.
type Schema struct {
	Name   string
	Fields []FieldDef
}

// NewSchema declares a Message type named name with the given fields, in
// declaration order.
func NewSchema(name string, fields ...FieldDef) *Schema {
	return &Schema{Name: name, Fields: fields}
}

func (s *Schema) indexOf(name string) int {
	return slices.IndexFunc(s.Fields, func(f FieldDef) bool { return f.Name == name })
}

func (s *Schema) field(name string) (FieldDef, bool) {
	i := s.indexOf(name)
	if i < 0 {
		return FieldDef{}, false
	}
	return s.Fields[i], true
}

// New constructs a Message of this schema with every field set to its
// default, then overridden by values. An unknown key in values or a value
// of the wrong shape panics with a SchemaError.
func (s *Schema) New(values ...map[string]interface{}) *Message {
	m := &Message{schema: s, values: make(map[string]interface{}, len(s.Fields))}
	for _, f := range s.Fields {
		m.values[f.Name] = f.Spec.Default()
	}
	for _, kv := range values {
		for k, v := range kv {
			if err := m.Set(k, v); err != nil {
				panic(err)
			}
		}
	}
	return m
}

// NewValidated is like New but returns a SchemaError instead of panicking
// when a supplied value is rejected, for callers decoding untrusted input.
func NewValidated(s *Schema, values map[string]interface{}) (*Message, error) {
	m := &Message{schema: s, values: make(map[string]interface{}, len(s.Fields))}
	for _, f := range s.Fields {
		m.values[f.Name] = f.Spec.Default()
	}
	for k, v := range values {
		if err := m.Set(k, v); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (s *Schema) unknownField(name string) error {
	return errs.B().Code(errs.SchemaError).Msgf("%s: no such field %q", s.Name, name).Err()
}
