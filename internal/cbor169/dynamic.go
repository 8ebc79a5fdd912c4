package cbor169

import (
	"encoding/base64"
	"fmt"
)

// toDynamic projects a decoded CBOR value (as produced by fxamacker/cbor
// when unmarshaled into `any`) onto the JSON-compatible dynamic shape
// used for the unknown-fields bag: byte strings become
// base64 strings, maps become map[string]any (non-string keys stringified
// with %v), arrays recurse, and every other primitive passes through.
func toDynamic(v any) any {
	switch val := v.(type) {
	case []byte:
		return base64.StdEncoding.EncodeToString(val)
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, vv := range val {
			out[dynamicKey(k)] = toDynamic(vv)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, vv := range val {
			out[i] = toDynamic(vv)
		}
		return out
	default:
		return val
	}
}

func dynamicKey(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprint(k)
}
