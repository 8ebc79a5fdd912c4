package cbor169

// asInt64 normalizes the integer representations fxamacker/cbor produces
// when decoding into `any` (int64 for negative values, uint64 for
// non-negative ones) into a single signed form.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}

// asBytes returns v as a byte slice, or false if v isn't one. A type
// mismatch here is never an error: the caller leaves the
// field unset.
func asBytes(v any) ([]byte, bool) {
	b, ok := v.([]byte)
	return b, ok
}

// asStringPtr returns a pointer to v's string value, or nil on any type
// mismatch.
func asStringPtr(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}
