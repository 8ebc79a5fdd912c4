package cose

import "errors"

// ErrVerificationFailed is returned by a Verifier when the signature
// does not match — a result, not a fatal error.
// Any other error returned by a Verifier is treated as fatal.
var ErrVerificationFailed = errors.New("cose: signature verification failed")

// ErrDecryptionFailed is returned by a Decryptor when the AEAD tag does
// not validate.
var ErrDecryptionFailed = errors.New("cose: decryption failed")

// Verifier checks a signature over signed_bytes for a given algorithm
// and optional key id. Implementations must be safe for
// concurrent use.
type Verifier interface {
	Verify(algorithm int64, keyID []byte, signedBytes, signature []byte) error
}

// Decryptor performs AEAD decryption for a given algorithm and optional
// key id. Implementations must be safe for concurrent use.
type Decryptor interface {
	Decrypt(algorithm int64, keyID []byte, nonce, aad, ciphertext []byte) ([]byte, error)
}

// Signer produces a signature over data for a given algorithm, and
// reports the key id to embed in the protected header.
type Signer interface {
	Sign(algorithm int64, data []byte) (signature []byte, err error)
	KeyID() []byte
}

// Encryptor performs AEAD encryption for a given algorithm.
type Encryptor interface {
	Encrypt(algorithm int64, keyID []byte, nonce, aad, plaintext []byte) (ciphertextWithTag []byte, err error)
}

// KeyResolver composes Verifier/Decryptor selection: given an optional
// key id and an algorithm, it produces the capability to use. Resolvers
// let a single decode call service multi-issuer/key-rotation deployments.
type KeyResolver interface {
	ResolveVerifier(keyID []byte, algorithm int64) (Verifier, error)
	ResolveDecryptor(keyID []byte, algorithm int64) (Decryptor, error)
}

// VerificationStatus is the outcome of attempting to verify a Sign1
// envelope. These are results, not errors.
type VerificationStatus int

const (
	// StatusSkipped means no verifier was available or requested.
	StatusSkipped VerificationStatus = iota
	// StatusVerified means the signature checked out.
	StatusVerified
	// StatusFailed means a verifier was invoked and rejected the signature.
	StatusFailed
)

func (s VerificationStatus) String() string {
	switch s {
	case StatusVerified:
		return "Verified"
	case StatusFailed:
		return "Failed"
	default:
		return "Skipped"
	}
}

// KeyNotFoundError wraps a KeyResolver's failure to produce a capability.
type KeyNotFoundError struct {
	KeyID     []byte
	Algorithm int64
}

func (e *KeyNotFoundError) Error() string {
	return "cose: key resolver found no capability for the given key id/algorithm"
}
