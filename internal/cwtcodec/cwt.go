// Package cwtcodec builds and parses the CWT claims map that carries
// Claim 169 alongside the standard iss/sub/iat/nbf/exp claims.
package cwtcodec

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/mosip/claim169-go/internal/cbor169"
	"github.com/mosip/claim169-go/model"
)

const (
	claimKeyIss       = 1
	claimKeySub       = 2
	claimKeyExp       = 4
	claimKeyNbf       = 5
	claimKeyIat       = 6
	claimKeyClaim169  = 169
)

var (
	encMode, _ = cbor.CanonicalEncOptions().EncMode()
	decMode, _ = cbor.DecOptions{}.DecMode()
)

// errNotFound is the Claim169NotFound case: the CWT claims map has no
// key 169.
type errNotFound struct{}

func (errNotFound) Error() string { return "cwt: claim key 169 not found" }

// IsNotFound reports whether err is the Claim169NotFound case.
func IsNotFound(err error) bool {
	_, ok := err.(errNotFound)
	return ok
}

// Encode builds the CWT claims map: present CwtMeta fields plus the
// already-encoded Claim169 CBOR bytes at key 169.
func Encode(meta model.CwtMeta, claim169CBOR []byte) ([]byte, error) {
	out := make(map[int]any)
	if meta.Issuer != nil {
		out[claimKeyIss] = *meta.Issuer
	}
	if meta.Subject != nil {
		out[claimKeySub] = *meta.Subject
	}
	if meta.ExpiresAt != nil {
		out[claimKeyExp] = *meta.ExpiresAt
	}
	if meta.NotBefore != nil {
		out[claimKeyNbf] = *meta.NotBefore
	}
	if meta.IssuedAt != nil {
		out[claimKeyIat] = *meta.IssuedAt
	}
	out[claimKeyClaim169] = cbor.RawMessage(claim169CBOR)

	raw, err := encMode.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("cwt: encode: %w", err)
	}
	return raw, nil
}

// Decode parses raw bytes as a CWT claims map, extracts the standard
// claims with type coercion, locates claim key 169, and delegates it to
// the Claim169 CBOR transform.
func Decode(raw []byte, opts cbor169.Options) (model.CwtMeta, *model.Claim169, error) {
	meta, claim, _, err := DecodeWithInfo(raw, opts)
	return meta, claim, err
}

// DecodeWithInfo is Decode plus the cbor169.Info the orchestrator turns
// into warnings (unknown fields, skipped biometrics).
func DecodeWithInfo(raw []byte, opts cbor169.Options) (model.CwtMeta, *model.Claim169, cbor169.Info, error) {
	var generic map[any]any
	if err := decMode.Unmarshal(raw, &generic); err != nil {
		return model.CwtMeta{}, nil, cbor169.Info{}, fmt.Errorf("cwt: %w", err)
	}

	var meta model.CwtMeta
	if v, ok := lookupClaim(generic, claimKeyIss); ok {
		if s, ok := v.(string); ok {
			meta.Issuer = &s
		}
	}
	if v, ok := lookupClaim(generic, claimKeySub); ok {
		if s, ok := v.(string); ok {
			meta.Subject = &s
		}
	}
	if v, ok := lookupClaim(generic, claimKeyExp); ok {
		if i, ok := asInt64(v); ok {
			meta.ExpiresAt = &i
		}
	}
	if v, ok := lookupClaim(generic, claimKeyNbf); ok {
		if i, ok := asInt64(v); ok {
			meta.NotBefore = &i
		}
	}
	if v, ok := lookupClaim(generic, claimKeyIat); ok {
		if i, ok := asInt64(v); ok {
			meta.IssuedAt = &i
		}
	}

	payloadVal, ok := lookupClaim(generic, claimKeyClaim169)
	if !ok {
		return meta, nil, cbor169.Info{}, errNotFound{}
	}

	payloadBytes, err := reencode(payloadVal)
	if err != nil {
		return meta, nil, cbor169.Info{}, fmt.Errorf("cwt: claim 169 payload: %w", err)
	}

	claim, info, err := cbor169.Decode(payloadBytes, opts)
	if err != nil {
		return meta, nil, cbor169.Info{}, err
	}
	return meta, claim, info, nil
}

// PeekStandardClaims extracts only the standard iss/sub/exp claims from a
// CWT claims map, without requiring claim key 169 to be present or valid.
// Used to surface untrusted metadata before a payload has been verified.
func PeekStandardClaims(raw []byte) (model.CwtMeta, error) {
	var generic map[any]any
	if err := decMode.Unmarshal(raw, &generic); err != nil {
		return model.CwtMeta{}, fmt.Errorf("cwt: %w", err)
	}

	var meta model.CwtMeta
	if v, ok := lookupClaim(generic, claimKeyIss); ok {
		if s, ok := v.(string); ok {
			meta.Issuer = &s
		}
	}
	if v, ok := lookupClaim(generic, claimKeySub); ok {
		if s, ok := v.(string); ok {
			meta.Subject = &s
		}
	}
	if v, ok := lookupClaim(generic, claimKeyExp); ok {
		if i, ok := asInt64(v); ok {
			meta.ExpiresAt = &i
		}
	}
	return meta, nil
}

// reencode turns a value already decoded generically by fxamacker/cbor
// back into canonical CBOR bytes, so it can be handed to cbor169.Decode
// uniformly regardless of how the outer unmarshal represented it.
func reencode(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

func lookupClaim(m map[any]any, key int64) (any, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	if v, ok := m[uint64(key)]; ok {
		return v, true
	}
	return nil, false
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	default:
		return 0, false
	}
}
