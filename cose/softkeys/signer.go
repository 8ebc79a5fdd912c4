// Package softkeys implements the cose capability interfaces
// (Signer/Verifier/Encryptor/Decryptor) with in-process key material,
// for callers who don't need an HSM or KMS.
package softkeys

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/mosip/claim169-go/cose"
)

// ECDSASigner signs with an ECDSA private key in IEEE P1363 (r || s)
// format, for ES256/ES384/ES512.
type ECDSASigner struct {
	Algorithm  int64
	PrivateKey *ecdsa.PrivateKey
	Kid        []byte
}

func (s *ECDSASigner) KeyID() []byte { return s.Kid }

func (s *ECDSASigner) Sign(algorithm int64, data []byte) ([]byte, error) {
	if algorithm != s.Algorithm {
		return nil, fmt.Errorf("softkeys: ECDSASigner: algorithm %d does not match key algorithm %d", algorithm, s.Algorithm)
	}
	hash, size, err := hashForAlgorithm(algorithm)
	if err != nil {
		return nil, err
	}
	digest := hash.New()
	digest.Write(data)

	r, sVal, err := ecdsa.Sign(rand.Reader, s.PrivateKey, digest.Sum(nil))
	if err != nil {
		return nil, fmt.Errorf("softkeys: ECDSASigner: %w", err)
	}

	signature := make([]byte, 2*size)
	r.FillBytes(signature[:size])
	sVal.FillBytes(signature[size:])
	return signature, nil
}

// ECDSAVerifier verifies IEEE P1363-format ECDSA signatures.
type ECDSAVerifier struct {
	Algorithm int64
	PublicKey *ecdsa.PublicKey
}

func (v *ECDSAVerifier) Verify(algorithm int64, keyID []byte, signedBytes, signature []byte) error {
	if algorithm != v.Algorithm {
		return fmt.Errorf("softkeys: ECDSAVerifier: algorithm %d does not match key algorithm %d", algorithm, v.Algorithm)
	}
	hash, size, err := hashForAlgorithm(algorithm)
	if err != nil {
		return err
	}
	if len(signature) != 2*size {
		return cose.ErrVerificationFailed
	}
	digest := hash.New()
	digest.Write(signedBytes)

	r := new(big.Int).SetBytes(signature[:size])
	s := new(big.Int).SetBytes(signature[size:])
	if !ecdsa.Verify(v.PublicKey, digest.Sum(nil), r, s) {
		return cose.ErrVerificationFailed
	}
	return nil
}

func hashForAlgorithm(algorithm int64) (crypto.Hash, int, error) {
	switch algorithm {
	case cose.AlgorithmES256:
		return crypto.SHA256, 32, nil
	case cose.AlgorithmES384:
		return crypto.SHA384, 48, nil
	case cose.AlgorithmES512:
		return crypto.SHA512, 66, nil
	default:
		return 0, 0, fmt.Errorf("softkeys: unsupported ECDSA algorithm %d", algorithm)
	}
}

// Ed25519Signer signs with an Ed25519 private key (algorithm EdDSA).
type Ed25519Signer struct {
	PrivateKey ed25519.PrivateKey
	Kid        []byte
}

func (s *Ed25519Signer) KeyID() []byte { return s.Kid }

func (s *Ed25519Signer) Sign(algorithm int64, data []byte) ([]byte, error) {
	if algorithm != cose.AlgorithmEdDSA {
		return nil, fmt.Errorf("softkeys: Ed25519Signer: unsupported algorithm %d", algorithm)
	}
	return ed25519.Sign(s.PrivateKey, data), nil
}

// Ed25519Verifier verifies Ed25519 signatures.
type Ed25519Verifier struct {
	PublicKey ed25519.PublicKey
}

func (v *Ed25519Verifier) Verify(algorithm int64, keyID []byte, signedBytes, signature []byte) error {
	if algorithm != cose.AlgorithmEdDSA {
		return fmt.Errorf("softkeys: Ed25519Verifier: unsupported algorithm %d", algorithm)
	}
	if !ed25519.Verify(v.PublicKey, signedBytes, signature) {
		return cose.ErrVerificationFailed
	}
	return nil
}
