package softkeys

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/mosip/claim169-go/cose"
)

// AESGCM implements both Encryptor and Decryptor for A128GCM, A192GCM,
// and A256GCM, keyed by raw AES key bytes whose length must match the
// algorithm (16/24/32 bytes).
type AESGCM struct {
	Algorithm int64
	Key       []byte
	Kid       []byte
}

func keySizeForAlgorithm(algorithm int64) (int, error) {
	switch algorithm {
	case cose.AlgorithmA128GCM:
		return 16, nil
	case cose.AlgorithmA192GCM:
		return 24, nil
	case cose.AlgorithmA256GCM:
		return 32, nil
	default:
		return 0, fmt.Errorf("softkeys: unsupported AEAD algorithm %d", algorithm)
	}
}

func (a *AESGCM) gcm(algorithm int64) (cipher.AEAD, error) {
	if algorithm != a.Algorithm {
		return nil, fmt.Errorf("softkeys: AESGCM: algorithm %d does not match key algorithm %d", algorithm, a.Algorithm)
	}
	size, err := keySizeForAlgorithm(algorithm)
	if err != nil {
		return nil, err
	}
	if len(a.Key) != size {
		return nil, fmt.Errorf("softkeys: AESGCM: key length %d does not match algorithm (want %d)", len(a.Key), size)
	}
	block, err := aes.NewCipher(a.Key)
	if err != nil {
		return nil, fmt.Errorf("softkeys: AESGCM: %w", err)
	}
	return cipher.NewGCM(block)
}

func (a *AESGCM) Encrypt(algorithm int64, keyID []byte, nonce, aad, plaintext []byte) ([]byte, error) {
	gcm, err := a.gcm(algorithm)
	if err != nil {
		return nil, err
	}
	if len(nonce) != gcm.NonceSize() {
		return nil, fmt.Errorf("softkeys: AESGCM: nonce length %d, want %d", len(nonce), gcm.NonceSize())
	}
	return gcm.Seal(nil, nonce, plaintext, aad), nil
}

func (a *AESGCM) Decrypt(algorithm int64, keyID []byte, nonce, aad, ciphertext []byte) ([]byte, error) {
	gcm, err := a.gcm(algorithm)
	if err != nil {
		return nil, err
	}
	if len(nonce) != gcm.NonceSize() {
		return nil, fmt.Errorf("%w: nonce length %d, want %d", cose.ErrDecryptionFailed, len(nonce), gcm.NonceSize())
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cose.ErrDecryptionFailed, err)
	}
	return plaintext, nil
}
