package cose

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/mosip/claim169-go/model"
)

type envelopeShape int

const (
	shapeUnknown envelopeShape = iota
	shapeSign1
	shapeEncrypt0
)

// detectEnvelopeShape tries, in order: tagged Sign1 (tag 18), tagged
// Encrypt0 (tag 16), untagged Sign1, untagged Encrypt0. First success
// wins.
func detectEnvelopeShape(raw []byte) (envelopeShape, error) {
	var generic any
	if err := decMode.Unmarshal(raw, &generic); err != nil {
		return shapeUnknown, fmt.Errorf("cose: %w: %v", errUnsupportedType, err)
	}

	if tag, ok := generic.(cbor.Tag); ok {
		switch tag.Number {
		case TagSign1:
			return shapeSign1, nil
		case TagEncrypt0:
			return shapeEncrypt0, nil
		default:
			return shapeUnknown, fmt.Errorf("cose: %w: tag %d", errUnsupportedType, tag.Number)
		}
	}

	if arr, ok := generic.([]any); ok {
		switch len(arr) {
		case 4:
			return shapeSign1, nil
		case 3:
			return shapeEncrypt0, nil
		}
	}

	return shapeUnknown, fmt.Errorf("cose: %w", errUnsupportedType)
}

// parseSign1 accepts tagged (tag 18) or untagged Sign1 bytes.
func parseSign1(raw []byte) (*Sign1, error) {
	var generic any
	if err := decMode.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("cose: Sign1: %w", err)
	}
	if tag, ok := generic.(cbor.Tag); ok {
		arr, ok := tag.Content.([]any)
		if !ok {
			return nil, fmt.Errorf("cose: Sign1: tag content is not an array")
		}
		return parseSign1Array(arr)
	}
	arr, ok := generic.([]any)
	if !ok {
		return nil, fmt.Errorf("cose: Sign1: not an array")
	}
	return parseSign1Array(arr)
}

// parseEncrypt0 accepts tagged (tag 16) or untagged Encrypt0 bytes.
func parseEncrypt0(raw []byte) (*Encrypt0, error) {
	var generic any
	if err := decMode.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("cose: Encrypt0: %w", err)
	}
	if tag, ok := generic.(cbor.Tag); ok {
		arr, ok := tag.Content.([]any)
		if !ok {
			return nil, fmt.Errorf("cose: Encrypt0: tag content is not an array")
		}
		return parseEncrypt0Array(arr)
	}
	arr, ok := generic.([]any)
	if !ok {
		return nil, fmt.Errorf("cose: Encrypt0: not an array")
	}
	return parseEncrypt0Array(arr)
}

// EnvelopeResult is the unified, caller-visible outcome of decoding a
// top-level COSE envelope of either shape.
type EnvelopeResult struct {
	Payload   []byte
	Status    VerificationStatus
	Algorithm int64
	HasAlg    bool
	KeyID     []byte
}

// Decode parses raw as one of the four envelope shapes and applies
// verification/decryption. verifier and decryptor may be nil; when a
// resolver is also given, it is consulted (keyed on the parsed kid/alg)
// before falling back to the missing-capability errors below. A nil
// decryptor (after resolution) when an Encrypt0 envelope is encountered
// is a fatal error, since there is no way to proceed without decrypting.
func Decode(raw []byte, verifier Verifier, decryptor Decryptor, resolver KeyResolver) (EnvelopeResult, error) {
	shape, err := detectEnvelopeShape(raw)
	if err != nil {
		return EnvelopeResult{}, err
	}

	switch shape {
	case shapeSign1:
		s, err := parseSign1(raw)
		if err != nil {
			return EnvelopeResult{}, fmt.Errorf("cose: %w", err)
		}
		if verifier == nil && resolver != nil {
			verifier, err = resolveVerifier(s.ProtectedHeaders, s.UnprotectedHeaders, resolver)
			if err != nil {
				return EnvelopeResult{}, err
			}
		}
		result, err := s.Verify(verifier)
		if err != nil {
			return EnvelopeResult{}, err
		}
		return EnvelopeResult{
			Payload:   result.Payload,
			Status:    result.Status,
			Algorithm: result.Algorithm,
			HasAlg:    result.HasAlg,
			KeyID:     result.KeyID,
		}, nil

	case shapeEncrypt0:
		e, err := parseEncrypt0(raw)
		if err != nil {
			return EnvelopeResult{}, fmt.Errorf("cose: %w", err)
		}
		if decryptor == nil && resolver != nil {
			decryptor, err = resolveDecryptor(e.ProtectedHeaders, e.UnprotectedHeaders, resolver)
			if err != nil {
				return EnvelopeResult{}, err
			}
		}
		if decryptor == nil {
			return EnvelopeResult{}, fmt.Errorf("cose: Encrypt0: %w", ErrDecryptionFailed)
		}
		result, err := e.Decrypt(decryptor, verifier)
		if err != nil {
			return EnvelopeResult{}, err
		}
		alg, hasAlg, kid := result.Algorithm, result.HasAlg, result.KeyID
		if result.HasInnerAlg {
			alg, hasAlg, kid = result.InnerAlgorithm, true, result.InnerKeyID
		}
		return EnvelopeResult{
			Payload:   result.Payload,
			Status:    result.Status,
			Algorithm: alg,
			HasAlg:    hasAlg,
			KeyID:     kid,
		}, nil

	default:
		return EnvelopeResult{}, fmt.Errorf("cose: %w", errUnsupportedType)
	}
}

// resolveVerifier asks resolver for a Verifier keyed on the envelope's
// protected algorithm and merged kid. A missing algorithm is reported as
// errMissingAlgorithm rather than attempted against the resolver.
func resolveVerifier(protected, unprotected Headers, resolver KeyResolver) (Verifier, error) {
	alg, hasAlg := protected.algorithm()
	if !hasAlg {
		return nil, fmt.Errorf("cose: %w", errMissingAlgorithm)
	}
	kid, _ := mergeKeyID(protected, unprotected)
	v, err := resolver.ResolveVerifier(kid, alg)
	if err != nil {
		return nil, &KeyNotFoundError{KeyID: kid, Algorithm: alg}
	}
	return v, nil
}

// resolveDecryptor asks resolver for a Decryptor keyed on the envelope's
// protected algorithm and merged kid.
func resolveDecryptor(protected, unprotected Headers, resolver KeyResolver) (Decryptor, error) {
	alg, hasAlg := protected.algorithm()
	if !hasAlg {
		return nil, fmt.Errorf("cose: %w", errMissingAlgorithm)
	}
	kid, _ := mergeKeyID(protected, unprotected)
	d, err := resolver.ResolveDecryptor(kid, alg)
	if err != nil {
		return nil, &KeyNotFoundError{KeyID: kid, Algorithm: alg}
	}
	return d, nil
}

// InspectResult is the header-only view produced without verification or
// decryption.
type InspectResult struct {
	IsSign1    bool
	IsEncrypt0 bool
	Algorithm  int64
	HasAlg     bool
	KeyID      []byte
	X509       model.X509Headers
}

// Inspect parses just the envelope headers, never crossing the payload's
// trust boundary. For a Sign1 the payload bytes are also returned, still
// untrusted, so a caller can peek at the CWT fields before choosing a
// verifier.
func Inspect(raw []byte) (InspectResult, []byte, error) {
	shape, err := detectEnvelopeShape(raw)
	if err != nil {
		return InspectResult{}, nil, err
	}

	switch shape {
	case shapeSign1:
		s, err := parseSign1(raw)
		if err != nil {
			return InspectResult{}, nil, fmt.Errorf("cose: %w", err)
		}
		alg, hasAlg := s.ProtectedHeaders.algorithm()
		kid, _ := mergeKeyID(s.ProtectedHeaders, s.UnprotectedHeaders)
		return InspectResult{
			IsSign1:   true,
			Algorithm: alg,
			HasAlg:    hasAlg,
			KeyID:     kid,
			X509:      extractX509Headers(s.ProtectedHeaders, s.UnprotectedHeaders),
		}, s.Payload, nil

	case shapeEncrypt0:
		e, err := parseEncrypt0(raw)
		if err != nil {
			return InspectResult{}, nil, fmt.Errorf("cose: %w", err)
		}
		alg, hasAlg := e.ProtectedHeaders.algorithm()
		kid, _ := mergeKeyID(e.ProtectedHeaders, e.UnprotectedHeaders)
		return InspectResult{
			IsEncrypt0: true,
			Algorithm:  alg,
			HasAlg:     hasAlg,
			KeyID:      kid,
			X509:       extractX509Headers(e.ProtectedHeaders, e.UnprotectedHeaders),
		}, nil, nil

	default:
		return InspectResult{}, nil, fmt.Errorf("cose: %w", errUnsupportedType)
	}
}
