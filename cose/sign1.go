package cose

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Sign1 is a parsed COSE_Sign1 structure (RFC 9052 §4.2). Protected
// holds the exact bytes as received on the wire — never a
// re-serialization — because the Sig_structure AAD must be built from
// them.
type Sign1 struct {
	Protected         []byte
	ProtectedHeaders  Headers
	UnprotectedHeaders Headers
	Payload           []byte // nil in detached mode
	Signature         []byte
}

// parseSign1Array decodes the 4-element COSE_Sign1 array shape shared by
// tagged and untagged encodings.
func parseSign1Array(arr []any) (*Sign1, error) {
	if len(arr) != 4 {
		return nil, fmt.Errorf("cose: Sign1: expected 4 elements, got %d", len(arr))
	}

	protected, ok := arr[0].([]byte)
	if !ok {
		return nil, fmt.Errorf("cose: Sign1: protected header is not a byte string")
	}
	protectedHeaders, err := decodeHeaders(protected)
	if err != nil {
		return nil, fmt.Errorf("cose: Sign1: %w", err)
	}

	unprotectedHeaders, err := headersFromGeneric(arr[1])
	if err != nil {
		return nil, fmt.Errorf("cose: Sign1: %w", err)
	}

	var payload []byte
	if arr[2] != nil {
		payload, ok = arr[2].([]byte)
		if !ok {
			return nil, fmt.Errorf("cose: Sign1: payload is not a byte string or nil")
		}
	}

	signature, ok := arr[3].([]byte)
	if !ok {
		return nil, fmt.Errorf("cose: Sign1: signature is not a byte string")
	}

	return &Sign1{
		Protected:          protected,
		ProtectedHeaders:   protectedHeaders,
		UnprotectedHeaders: unprotectedHeaders,
		Payload:            payload,
		Signature:          signature,
	}, nil
}

func headersFromGeneric(v any) (Headers, error) {
	if v == nil {
		return Headers{}, nil
	}
	m, ok := v.(map[any]any)
	if !ok {
		return nil, fmt.Errorf("header bag is not a map")
	}
	out := make(Headers, len(m))
	for k, vv := range m {
		ik, ok := asInt64(k)
		if !ok {
			continue
		}
		out[ik] = vv
	}
	return out, nil
}

// sigStructure builds the canonical Sig_structure bytes to sign/verify.
func sigStructure(protected, payload []byte) ([]byte, error) {
	structure := []any{
		"Signature1",
		protected,
		[]byte{},
		payload,
	}
	return encMode.Marshal(structure)
}

// BuildSign1 constructs and signs a new Sign1 envelope. algorithm and
// signer.KeyID() (if non-empty) are placed in the protected header.
func BuildSign1(extraProtected Headers, algorithm int64, payload []byte, signer Signer) (*Sign1, error) {
	protectedHeaders := make(Headers, len(extraProtected)+2)
	for k, v := range extraProtected {
		protectedHeaders[k] = v
	}
	protectedHeaders[HeaderLabelAlg] = algorithm
	if kid := signer.KeyID(); len(kid) > 0 {
		protectedHeaders[HeaderLabelKid] = kid
	}

	protectedBytes, err := encMode.Marshal(map[int64]any(protectedHeaders))
	if err != nil {
		return nil, fmt.Errorf("cose: Sign1: encode protected headers: %w", err)
	}

	toSign, err := sigStructure(protectedBytes, payload)
	if err != nil {
		return nil, fmt.Errorf("cose: Sign1: %w", err)
	}

	signature, err := signer.Sign(algorithm, toSign)
	if err != nil {
		return nil, fmt.Errorf("cose: Sign1: sign: %w", err)
	}

	return &Sign1{
		Protected:          protectedBytes,
		ProtectedHeaders:   protectedHeaders,
		UnprotectedHeaders: Headers{},
		Payload:            payload,
		Signature:          signature,
	}, nil
}

// Encode serializes the Sign1 as a CBOR-tagged (tag 18) COSE_Sign1 value.
func (s *Sign1) Encode() ([]byte, error) {
	arr := []any{
		s.Protected,
		map[int64]any(s.UnprotectedHeaders),
		s.Payload,
		s.Signature,
	}
	tagged := cbor.Tag{Number: TagSign1, Content: arr}
	encoded, err := encMode.Marshal(tagged)
	if err != nil {
		return nil, fmt.Errorf("cose: Sign1: encode: %w", err)
	}
	return encoded, nil
}

// VerifyResult is the outcome of attempting to verify a Sign1.
type VerifyResult struct {
	Payload   []byte
	Status    VerificationStatus
	Algorithm int64
	HasAlg    bool
	KeyID     []byte
}

// Verify extracts the algorithm from the protected header only (never
// defaulted), extracts kid (protected wins), builds the Sig_structure,
// and invokes verifier if present. verifier may be nil, meaning "no
// verifier requested" — status becomes Skipped.
func (s *Sign1) Verify(verifier Verifier) (VerifyResult, error) {
	if s.Payload == nil {
		return VerifyResult{}, fmt.Errorf("cose: Sign1: %w", errNoPayload)
	}

	alg, hasAlg := s.ProtectedHeaders.algorithm()
	kid, _ := mergeKeyID(s.ProtectedHeaders, s.UnprotectedHeaders)

	if verifier == nil {
		return VerifyResult{
			Payload:   s.Payload,
			Status:    StatusSkipped,
			Algorithm: alg,
			HasAlg:    hasAlg,
			KeyID:     kid,
		}, nil
	}

	if !hasAlg {
		return VerifyResult{}, fmt.Errorf("cose: Sign1: %w", errMissingAlgorithm)
	}

	toVerify, err := sigStructure(s.Protected, s.Payload)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("cose: Sign1: %w", err)
	}

	err = verifier.Verify(alg, kid, toVerify, s.Signature)
	switch {
	case err == nil:
		return VerifyResult{Payload: s.Payload, Status: StatusVerified, Algorithm: alg, HasAlg: true, KeyID: kid}, nil
	case errors.Is(err, ErrVerificationFailed):
		return VerifyResult{Payload: s.Payload, Status: StatusFailed, Algorithm: alg, HasAlg: true, KeyID: kid}, nil
	default:
		return VerifyResult{}, fmt.Errorf("cose: Sign1: verify: %w", err)
	}
}

func mergeKeyID(protected, unprotected Headers) ([]byte, bool) {
	if kid, ok := protected.keyID(); ok {
		return kid, true
	}
	return unprotected.keyID()
}
