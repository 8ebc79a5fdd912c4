package cose

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Encrypt0 is a parsed COSE_Encrypt0 structure (RFC 9052 §5.2). Protected
// holds the exact bytes as received — the Enc_structure AAD must be
// built from these bytes, not a re-serialization.
type Encrypt0 struct {
	Protected          []byte
	ProtectedHeaders   Headers
	UnprotectedHeaders Headers
	Ciphertext         []byte
}

func parseEncrypt0Array(arr []any) (*Encrypt0, error) {
	if len(arr) != 3 {
		return nil, fmt.Errorf("cose: Encrypt0: expected 3 elements, got %d", len(arr))
	}

	protected, ok := arr[0].([]byte)
	if !ok {
		return nil, fmt.Errorf("cose: Encrypt0: protected header is not a byte string")
	}
	protectedHeaders, err := decodeHeaders(protected)
	if err != nil {
		return nil, fmt.Errorf("cose: Encrypt0: %w", err)
	}

	unprotectedHeaders, err := headersFromGeneric(arr[1])
	if err != nil {
		return nil, fmt.Errorf("cose: Encrypt0: %w", err)
	}

	var ciphertext []byte
	if arr[2] != nil {
		ciphertext, ok = arr[2].([]byte)
		if !ok {
			return nil, fmt.Errorf("cose: Encrypt0: ciphertext is not a byte string or nil")
		}
	}

	return &Encrypt0{
		Protected:          protected,
		ProtectedHeaders:   protectedHeaders,
		UnprotectedHeaders: unprotectedHeaders,
		Ciphertext:         ciphertext,
	}, nil
}

// encStructure builds the canonical Enc_structure AAD bytes (RFC 9052
// §5.3).
func encStructure(protectedOriginal []byte) ([]byte, error) {
	structure := []any{
		"Encrypt0",
		protectedOriginal,
		[]byte{},
	}
	return encMode.Marshal(structure)
}

// BuildEncrypt0 constructs and encrypts a new Encrypt0 envelope wrapping
// plaintext. The nonce is placed in the unprotected header.
func BuildEncrypt0(algorithm int64, nonce []byte, plaintext []byte, encryptor Encryptor, keyID []byte) (*Encrypt0, error) {
	protectedHeaders := Headers{HeaderLabelAlg: algorithm}
	protectedBytes, err := encMode.Marshal(map[int64]any(protectedHeaders))
	if err != nil {
		return nil, fmt.Errorf("cose: Encrypt0: encode protected headers: %w", err)
	}

	aad, err := encStructure(protectedBytes)
	if err != nil {
		return nil, fmt.Errorf("cose: Encrypt0: %w", err)
	}

	ciphertext, err := encryptor.Encrypt(algorithm, keyID, nonce, aad, plaintext)
	if err != nil {
		return nil, fmt.Errorf("cose: Encrypt0: encrypt: %w", err)
	}

	unprotectedHeaders := Headers{HeaderLabelIV: nonce}

	return &Encrypt0{
		Protected:          protectedBytes,
		ProtectedHeaders:   protectedHeaders,
		UnprotectedHeaders: unprotectedHeaders,
		Ciphertext:         ciphertext,
	}, nil
}

// Encode serializes the Encrypt0 as a CBOR-tagged (tag 16) COSE_Encrypt0
// value.
func (e *Encrypt0) Encode() ([]byte, error) {
	arr := []any{
		e.Protected,
		map[int64]any(e.UnprotectedHeaders),
		e.Ciphertext,
	}
	tagged := cbor.Tag{Number: TagEncrypt0, Content: arr}
	encoded, err := encMode.Marshal(tagged)
	if err != nil {
		return nil, fmt.Errorf("cose: Encrypt0: encode: %w", err)
	}
	return encoded, nil
}

// DecryptResult is the outcome of decrypting an Encrypt0 and, if the
// plaintext is itself a Sign1, recursively verifying it.
type DecryptResult struct {
	Payload   []byte
	Status    VerificationStatus
	Algorithm int64
	HasAlg    bool
	KeyID     []byte
	// InnerAlgorithm/InnerKeyID are populated when the plaintext was a
	// nested Sign1.
	InnerAlgorithm int64
	HasInnerAlg    bool
	InnerKeyID     []byte
}

// Decrypt requires a mandatory algorithm, applies unprotected-over-
// protected IV precedence, builds AAD from the original protected
// bytes, decrypts, and recursively handles a Sign1 plaintext.
func (e *Encrypt0) Decrypt(decryptor Decryptor, innerVerifier Verifier) (DecryptResult, error) {
	alg, hasAlg := e.ProtectedHeaders.algorithm()
	if !hasAlg {
		return DecryptResult{}, fmt.Errorf("cose: Encrypt0: %w", errMissingAlgorithm)
	}

	nonce, ok := e.UnprotectedHeaders.iv()
	if !ok {
		nonce, ok = e.ProtectedHeaders.iv()
	}
	if !ok {
		return DecryptResult{}, fmt.Errorf("cose: Encrypt0: %w", errNoIV)
	}

	if e.Ciphertext == nil {
		return DecryptResult{}, fmt.Errorf("cose: Encrypt0: %w", errNoCiphertext)
	}

	aad, err := encStructure(e.Protected)
	if err != nil {
		return DecryptResult{}, fmt.Errorf("cose: Encrypt0: %w", err)
	}

	kid, _ := mergeKeyID(e.ProtectedHeaders, e.UnprotectedHeaders)

	plaintext, err := decryptor.Decrypt(alg, kid, nonce, aad, e.Ciphertext)
	if err != nil {
		return DecryptResult{}, fmt.Errorf("cose: Encrypt0: %w", err)
	}

	result := DecryptResult{Algorithm: alg, HasAlg: true, KeyID: kid}

	if inner, ok := tryParseSign1(plaintext); ok {
		innerResult, err := inner.Verify(innerVerifier)
		if err != nil {
			return DecryptResult{}, fmt.Errorf("cose: Encrypt0: nested Sign1: %w", err)
		}
		result.Payload = innerResult.Payload
		result.Status = innerResult.Status
		result.InnerAlgorithm = innerResult.Algorithm
		result.HasInnerAlg = innerResult.HasAlg
		result.InnerKeyID = innerResult.KeyID
		return result, nil
	}

	result.Payload = plaintext
	result.Status = StatusSkipped
	return result, nil
}

// tryParseSign1 attempts to parse data as a tagged or untagged Sign1,
// used for nested-envelope detection.
func tryParseSign1(data []byte) (*Sign1, bool) {
	shape, err := detectEnvelopeShape(data)
	if err != nil || shape != shapeSign1 {
		return nil, false
	}
	s, err := parseSign1(data)
	if err != nil {
		return nil, false
	}
	return s, true
}
