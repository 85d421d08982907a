package registry

// IsPrimitive reports whether v is a primitive by the definition in
// spec.md §3: nil, bool, any numeric type, string, or a list/map whose
// elements are transitively primitive. Everything else — in practice a
// *Message or an application's own registrable type — is non-primitive and
// must be returned behind a Registrable handle.
func IsPrimitive(v interface{}) bool {
	switch x := v.(type) {
	case nil, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	case []interface{}:
		for _, elem := range x {
			if !IsPrimitive(elem) {
				return false
			}
		}
		return true
	case map[string]interface{}:
		for _, elem := range x {
			if !IsPrimitive(elem) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
