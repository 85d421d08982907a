package message

import (
	"github.com/cespare/xxhash/v2"

	"github.com/speedy-rpc/speedygo/codec"
	"github.com/speedy-rpc/speedygo/errs"
)

// Message is an instance of some Schema: a record whose attribute set is
// exactly its schema's declared field names.
type Message struct {
	schema *Schema
	values map[string]interface{}
}

// Schema returns the declared type of m.
func (m *Message) Schema() *Schema { return m.schema }

// Get returns the value of field name, or a SchemaError if name is not
// declared on m's schema.
func (m *Message) Get(name string) (interface{}, error) {
	if _, ok := m.schema.field(name); !ok {
		return nil, m.schema.unknownField(name)
	}
	return m.values[name], nil
}

// Set assigns value to field name after validating it against the field's
// spec. Setting an undeclared name, or a value of the wrong shape, fails
// with a SchemaError and leaves m unchanged.
func (m *Message) Set(name string, value interface{}) error {
	f, ok := m.schema.field(name)
	if !ok {
		return m.schema.unknownField(name)
	}
	if err := f.Spec.Validate(value); err != nil {
		return err
	}
	m.values[name] = value
	return nil
}

// Validate re-checks every declared field's current value against its
// spec. It catches nothing Get/Set wouldn't already have caught, but gives
// a single place to re-verify a Message built up by other means (e.g.
// decoded from the wire field-by-field).
func (m *Message) Validate() error {
	for _, f := range m.schema.Fields {
		if err := f.Spec.Validate(m.values[f.Name]); err != nil {
			return errs.Wrap(err, m.schema.Name+"."+f.Name)
		}
	}
	return nil
}

// Fields returns a copy of m's declared field values, keyed by name, for
// callers (such as the typed-message dispatcher) that need to serialize a
// Message without depending on this package's internal representation.
func (m *Message) Fields() map[string]interface{} {
	out := make(map[string]interface{}, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// Clone returns a deep-enough copy of m: a new Message sharing no mutable
// state with m at the top level.
func (m *Message) Clone() *Message {
	values := make(map[string]interface{}, len(m.values))
	for k, v := range m.values {
		values[k] = v
	}
	return &Message{schema: m.schema, values: values}
}

// CopyWith returns a clone of m with the given fields overridden. It fails
// without mutating m if any key is unknown or any value is the wrong shape.
func (m *Message) CopyWith(values map[string]interface{}) (*Message, error) {
	c := m.Clone()
	for k, v := range values {
		if err := c.Set(k, v); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Equal reports whether other has the same concrete schema and every
// declared field compares equal.
func (m *Message) Equal(other *Message) bool {
	if other == nil || m.schema != other.schema {
		return false
	}
	for _, f := range m.schema.Fields {
		if !valuesEqual(m.values[f.Name], other.values[f.Name]) {
			return false
		}
	}
	return true
}

// Compare orders m against other field-wise in declared order, returning
// the sign of the first differing field, or 0 if every field is equal.
// Messages of different schemas compare by schema name.
func (m *Message) Compare(other *Message) int {
	if m.schema != other.schema {
		if m.schema.Name < other.schema.Name {
			return -1
		} else if m.schema.Name > other.schema.Name {
			return 1
		}
		return 0
	}
	for _, f := range m.schema.Fields {
		if c := compareValues(m.values[f.Name], other.values[f.Name]); c != 0 {
			return c
		}
	}
	return 0
}

// Hash returns the structural hash of m: the XOR of each declared field's
// canonical-encoding hash, order-independent by construction, matching the
// set-like equality semantics above (two messages with the same fields in
// any internal storage order hash identically).
func (m *Message) Hash() uint64 {
	var h uint64
	for _, f := range m.schema.Fields {
		data, err := codec.Encode(m.values[f.Name])
		if err != nil {
			// Every declared field value was already validated on Set, so
			// encoding it can't fail; treat it as a bug rather than a hash
			// collision surface.
			panic(errs.Wrap(err, "hashing "+m.schema.Name+"."+f.Name))
		}
		h ^= xxhash.Sum64(data)
	}
	return h
}

func valuesEqual(a, b interface{}) bool {
	switch av := a.(type) {
	case *Message:
		bv, ok := b.(*Message)
		return ok && av.Equal(bv)
	case []interface{}:
		bv, ok := b.([]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]interface{}:
		bv, ok := b.(map[string]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bvv, ok := bv[k]
			if !ok || !valuesEqual(v, bvv) {
				return false
			}
		}
		return true
	default:
		return numericNormalize(a) == numericNormalize(b)
	}
}

// compareValues orders two field values of the same declared spec.
// Non-container, non-message values are compared after normalizing numeric
// types, matching the int/float blur the codec's JSON wire format imposes.
func compareValues(a, b interface{}) int {
	if m, ok := a.(*Message); ok {
		return m.Compare(b.(*Message))
	}
	an, aIsNum := numericNormalize(a).(float64)
	bn, bIsNum := numericNormalize(b).(float64)
	if aIsNum && bIsNum {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}
	as, aIsStr := a.(string)
	bs, bIsStr := b.(string)
	if aIsStr && bIsStr {
		switch {
		case as < bs:
			return -1
		case as > bs:
			return 1
		default:
			return 0
		}
	}
	if ab, ok := a.(bool); ok {
		bb, _ := b.(bool)
		if ab == bb {
			return 0
		}
		if !ab {
			return -1
		}
		return 1
	}
	return 0
}

// numericNormalize collapses Go's several numeric kinds down to float64 so
// that 5, int32(5), and float64(5) — any of which may flow out of a JSON
// decode or a literal Go call site — compare and hash as the same value.
func numericNormalize(v interface{}) interface{} {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	default:
		return v
	}
}
