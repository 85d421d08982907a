// Package codec implements the byte-string <-> value serialization used by
// every envelope on the wire: the bytes inside ServerRequest.Args/Kw, the
// data field of a ServerResponse, and the typed-message variant's request
// and response bodies.
//
// It is deliberately pure: Encode and Decode touch no ambient state and have
// no side effects beyond allocation, so the same codec value is safe to
// share across every connection a server or client holds.
package codec

import (
	"reflect"

	jsoniter "github.com/json-iterator/go"

	"github.com/speedy-rpc/speedygo/errs"
)

// json is configured without HTML escaping (these bytes are never embedded
// in an HTML document) and with sorted map keys, so that two independently
// produced encodings of the same map compare equal byte-for-byte — the
// message schema's hashing and the codec's own round-trip tests both rely
// on that determinism.
var json = jsoniter.Config{
	EscapeHTML:  false,
	SortMapKeys: true,
}.Froze()

// Unencodable is implemented by types that must never cross the codec
// boundary, such as a client proxy: encoding one would silently capture a
// client-side handle inside an RPC payload. Encode rejects any value
// implementing it with a CodecError.
type Unencodable interface {
	// Unencodable returns a short reason shown in the resulting error.
	Unencodable() string
}

// Encode serializes v to its wire representation. It fails with a
// CodecError if v is or contains an Unencodable value, or contains a
// reference cycle.
func Encode(v interface{}) ([]byte, error) {
	if u, ok := v.(Unencodable); ok {
		return nil, errs.B().Code(errs.CodecError).
			Msgf("value of type %T is not encodable: %s", v, u.Unencodable()).Err()
	}
	if err := detectCycle(v); err != nil {
		return nil, errs.WrapCode(err, errs.CodecError, "encode")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errs.WrapCode(err, errs.CodecError, "encode")
	}
	return data, nil
}

// Decode deserializes data into out, which must be a non-nil pointer.
func Decode(data []byte, out interface{}) error {
	if err := json.Unmarshal(data, out); err != nil {
		return errs.WrapCode(err, errs.CodecError, "decode")
	}
	return nil
}

// DecodeValue deserializes data into a generic Go value: nil, bool,
// float64, string, []interface{}, or map[string]interface{}. It's what the
// dispatcher uses to decode ServerRequest.Args/Kw before handing them to the
// registry, since the method signature being invoked isn't known until the
// registry looks up the object.
func DecodeValue(data []byte) (interface{}, error) {
	var v interface{}
	if err := Decode(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// detectCycle walks v looking for a pointer, map, or slice reached twice
// along the same path, or a nested Unencodable value. Plain struct/array encoding in Go can't cycle on its
// own, but a value of static type interface{} or containing one can embed
// an arbitrary graph, so the walk has to be generic the way the standard
// library's own json encoder guards against this case.
func detectCycle(v interface{}) error {
	return walk(reflect.ValueOf(v), map[uintptr]struct{}{})
}

func walk(v reflect.Value, seen map[uintptr]struct{}) error {
	if !v.IsValid() {
		return nil
	}
	if v.Kind() != reflect.Interface && !(v.Kind() == reflect.Ptr && v.IsNil()) && v.CanInterface() {
		if u, ok := v.Interface().(Unencodable); ok {
			return errs.B().Code(errs.CodecError).
				Msgf("value of type %T is not encodable: %s", u, u.Unencodable()).Err()
		}
	}
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return walk(v.Elem(), seen)

	case reflect.Ptr:
		if v.IsNil() {
			return nil
		}
		return walkRef(v.Pointer(), v.Elem(), seen)

	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		if err := markRef(v.Pointer(), seen); err != nil {
			return err
		}
		defer delete(seen, v.Pointer())
		iter := v.MapRange()
		for iter.Next() {
			if err := walk(iter.Value(), seen); err != nil {
				return err
			}
		}
		return nil

	case reflect.Slice:
		if v.IsNil() {
			return nil
		}
		if err := markRef(v.Pointer(), seen); err != nil {
			return err
		}
		defer delete(seen, v.Pointer())
		for i := 0; i < v.Len(); i++ {
			if err := walk(v.Index(i), seen); err != nil {
				return err
			}
		}
		return nil

	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := walk(v.Index(i), seen); err != nil {
				return err
			}
		}
		return nil

	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if err := walk(v.Field(i), seen); err != nil {
				return err
			}
		}
		return nil

	default:
		return nil
	}
}

func walkRef(ptr uintptr, elem reflect.Value, seen map[uintptr]struct{}) error {
	if err := markRef(ptr, seen); err != nil {
		return err
	}
	defer delete(seen, ptr)
	return walk(elem, seen)
}

func markRef(ptr uintptr, seen map[uintptr]struct{}) error {
	if _, ok := seen[ptr]; ok {
		return errs.B().Code(errs.CodecError).Msg("value contains a reference cycle").Err()
	}
	seen[ptr] = struct{}{}
	return nil
}
