package pipeline

import "crypto/rand"

// NonceSize is the fixed AEAD nonce length used throughout.
const NonceSize = 12

// GenerateNonce returns a fresh cryptographically random 12-byte nonce
// for Encrypt0 construction.
func GenerateNonce() ([NonceSize]byte, error) {
	var nonce [NonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nonce, err
	}
	return nonce, nil
}
