// Package cose implements COSE_Sign1 and COSE_Encrypt0 envelope parsing,
// construction, and header extraction (RFC 9052).
//
// The package depends only on the capability interfaces in capability.go;
// concrete software implementations live in cose/softkeys.
package cose

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/mosip/claim169-go/model"
)

// COSE header labels honoured by this implementation. Any
// other protected-header label is preserved in the structure but not
// interpreted.
const (
	HeaderLabelAlg     = 1  // Algorithm identifier
	HeaderLabelKid     = 4  // Key identifier
	HeaderLabelIV      = 5  // Initialization vector
	HeaderLabelCWT     = 15 // CWT Claims Set (RFC 9597), unused by this codec
	HeaderLabelX5Bag   = 32 // RFC 9360
	HeaderLabelX5Chain = 33
	HeaderLabelX5T     = 34
	HeaderLabelX5U     = 35
)

// COSE algorithm identifiers (RFC 9053 / RFC 8152).
const (
	AlgorithmES256   = -7
	AlgorithmEdDSA   = -8
	AlgorithmES384   = -35
	AlgorithmES512   = -36
	AlgorithmA128GCM = 1
	AlgorithmA192GCM = 2
	AlgorithmA256GCM = 3
)

// CBOR tag numbers for untagged-vs-tagged envelope detection (RFC 9052).
const (
	TagSign1    = 18
	TagEncrypt0 = 16
)

// Headers is a COSE header bag, protected or unprotected, keyed by
// integer label. Non-integer labels never occur in this
// codec's wire format and are skipped (dropped) at parse time.
type Headers map[int64]any

// decodeHeaders unmarshals a CBOR-encoded header map, normalizing keys
// to int64 (fxamacker/cbor produces uint64 for non-negative labels).
func decodeHeaders(raw []byte) (Headers, error) {
	if len(raw) == 0 {
		return Headers{}, nil
	}
	var generic map[any]any
	if err := decMode.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("cose: header map: %w", err)
	}
	out := make(Headers, len(generic))
	for k, v := range generic {
		ik, ok := asInt64(k)
		if !ok {
			continue
		}
		out[ik] = v
	}
	return out, nil
}

func (h Headers) algorithm() (int64, bool) {
	v, ok := h[HeaderLabelAlg]
	if !ok {
		return 0, false
	}
	return asInt64(v)
}

func (h Headers) keyID() ([]byte, bool) {
	v, ok := h[HeaderLabelKid]
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

func (h Headers) iv() ([]byte, bool) {
	v, ok := h[HeaderLabelIV]
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

// mergeHeaderField looks up a label in protected first, then
// unprotected, implementing the "protected wins" precedence used
// throughout.
func mergeHeaderField(protected, unprotected Headers, label int64) (any, bool) {
	if v, ok := protected[label]; ok {
		return v, true
	}
	if v, ok := unprotected[label]; ok {
		return v, true
	}
	return nil, false
}

// extractX509Headers reads the RFC 9360 labels out of a protected/
// unprotected header pair, protected winning ties.
func extractX509Headers(protected, unprotected Headers) model.X509Headers {
	var out model.X509Headers

	if v, ok := mergeHeaderField(protected, unprotected, HeaderLabelX5Bag); ok {
		out.X5Bag = asByteSlices(v)
	}
	if v, ok := mergeHeaderField(protected, unprotected, HeaderLabelX5Chain); ok {
		out.X5Chain = asByteSlices(v)
	}
	if v, ok := mergeHeaderField(protected, unprotected, HeaderLabelX5T); ok {
		if t, ok := decodeThumbprint(v); ok {
			out.X5T = &t
		}
	}
	if v, ok := mergeHeaderField(protected, unprotected, HeaderLabelX5U); ok {
		if s, ok := v.(string); ok {
			out.X5U = &s
		}
	}

	return out
}

func decodeThumbprint(v any) (model.Thumbprint, bool) {
	arr, ok := v.([]any)
	if !ok || len(arr) != 2 {
		return model.Thumbprint{}, false
	}
	hash, ok := arr[1].([]byte)
	if !ok {
		return model.Thumbprint{}, false
	}
	var alg string
	if i, ok := asInt64(arr[0]); ok {
		alg = fmt.Sprintf("%d", i)
	} else if s, ok := arr[0].(string); ok {
		alg = s
	} else {
		return model.Thumbprint{}, false
	}
	return model.Thumbprint{Algorithm: alg, HashValue: hash}, true
}

func asByteSlices(v any) [][]byte {
	switch val := v.(type) {
	case []byte:
		return [][]byte{val}
	case []any:
		out := make([][]byte, 0, len(val))
		for _, elem := range val {
			if b, ok := elem.([]byte); ok {
				out = append(out, b)
			}
		}
		return out
	default:
		return nil
	}
}

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

var (
	encMode, _ = cbor.CanonicalEncOptions().EncMode()
	decMode, _ = cbor.DecOptions{}.DecMode()
)
