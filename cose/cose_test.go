package cose_test

import (
	"errors"
	"testing"

	"github.com/fxamacker/cbor/v2"

	"github.com/mosip/claim169-go/cose"
	"github.com/mosip/claim169-go/cose/softkeys"
)

func TestSign1VerifyRoundTrip(t *testing.T) {
	priv, err := softkeys.GenerateECDSAKeyPair(cose.AlgorithmES256)
	if err != nil {
		t.Fatalf("GenerateECDSAKeyPair: %v", err)
	}
	signer := &softkeys.ECDSASigner{Algorithm: cose.AlgorithmES256, PrivateKey: priv, Kid: []byte("kid-1")}
	verifier := &softkeys.ECDSAVerifier{Algorithm: cose.AlgorithmES256, PublicKey: &priv.PublicKey}

	payload := []byte("claim169 cbor bytes")
	s1, err := cose.BuildSign1(nil, cose.AlgorithmES256, payload, signer)
	if err != nil {
		t.Fatalf("BuildSign1: %v", err)
	}

	encoded, err := s1.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	result, err := cose.Decode(encoded, verifier, nil, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if result.Status != cose.StatusVerified {
		t.Fatalf("expected Verified, got %v", result.Status)
	}
	if string(result.Payload) != string(payload) {
		t.Errorf("payload mismatch: %q", result.Payload)
	}
	if string(result.KeyID) != "kid-1" {
		t.Errorf("kid mismatch: %q", result.KeyID)
	}
}

func TestSign1TamperedSignatureFails(t *testing.T) {
	priv, err := softkeys.GenerateECDSAKeyPair(cose.AlgorithmES256)
	if err != nil {
		t.Fatalf("GenerateECDSAKeyPair: %v", err)
	}
	signer := &softkeys.ECDSASigner{Algorithm: cose.AlgorithmES256, PrivateKey: priv}
	verifier := &softkeys.ECDSAVerifier{Algorithm: cose.AlgorithmES256, PublicKey: &priv.PublicKey}

	s1, err := cose.BuildSign1(nil, cose.AlgorithmES256, []byte("payload"), signer)
	if err != nil {
		t.Fatalf("BuildSign1: %v", err)
	}
	s1.Signature[0] ^= 0xFF

	encoded, err := s1.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	result, err := cose.Decode(encoded, verifier, nil, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if result.Status != cose.StatusFailed {
		t.Fatalf("expected Failed, got %v", result.Status)
	}
}

func TestSign1NoVerifierYieldsSkipped(t *testing.T) {
	priv, err := softkeys.GenerateECDSAKeyPair(cose.AlgorithmES256)
	if err != nil {
		t.Fatalf("GenerateECDSAKeyPair: %v", err)
	}
	signer := &softkeys.ECDSASigner{Algorithm: cose.AlgorithmES256, PrivateKey: priv}

	s1, err := cose.BuildSign1(nil, cose.AlgorithmES256, []byte("payload"), signer)
	if err != nil {
		t.Fatalf("BuildSign1: %v", err)
	}
	encoded, err := s1.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	result, err := cose.Decode(encoded, nil, nil, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if result.Status != cose.StatusSkipped {
		t.Fatalf("expected Skipped, got %v", result.Status)
	}
}

func TestSign1MissingAlgorithmWithVerifierIsFatal(t *testing.T) {
	priv, err := softkeys.GenerateECDSAKeyPair(cose.AlgorithmES256)
	if err != nil {
		t.Fatalf("GenerateECDSAKeyPair: %v", err)
	}
	verifier := &softkeys.ECDSAVerifier{Algorithm: cose.AlgorithmES256, PublicKey: &priv.PublicKey}

	s1 := &cose.Sign1{
		Protected:          []byte{0xa0}, // empty map, no alg label
		ProtectedHeaders:   cose.Headers{},
		UnprotectedHeaders: cose.Headers{},
		Payload:            []byte("payload"),
		Signature:          make([]byte, 64),
	}
	encoded, err := s1.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	_, err = cose.Decode(encoded, verifier, nil, nil)
	if err == nil {
		t.Fatalf("expected missing-algorithm error")
	}
}

func TestEncrypt0DecryptRoundTrip(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	aead := &softkeys.AESGCM{Algorithm: cose.AlgorithmA256GCM, Key: key}
	nonce := make([]byte, 12)
	for i := range nonce {
		nonce[i] = byte(0xA0 + i)
	}

	plaintext := []byte("claim169 signed bytes")
	e0, err := cose.BuildEncrypt0(cose.AlgorithmA256GCM, nonce, plaintext, aead, nil)
	if err != nil {
		t.Fatalf("BuildEncrypt0: %v", err)
	}
	encoded, err := e0.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	result, err := cose.Decode(encoded, nil, aead, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if result.Status != cose.StatusSkipped {
		t.Fatalf("expected Skipped (no inner Sign1), got %v", result.Status)
	}
	if string(result.Payload) != string(plaintext) {
		t.Errorf("payload mismatch: %q", result.Payload)
	}
}

func TestEncrypt0WrappingSign1(t *testing.T) {
	signPriv, err := softkeys.GenerateECDSAKeyPair(cose.AlgorithmES256)
	if err != nil {
		t.Fatalf("GenerateECDSAKeyPair: %v", err)
	}
	signer := &softkeys.ECDSASigner{Algorithm: cose.AlgorithmES256, PrivateKey: signPriv, Kid: []byte("issuer-1")}
	verifier := &softkeys.ECDSAVerifier{Algorithm: cose.AlgorithmES256, PublicKey: &signPriv.PublicKey}

	inner, err := cose.BuildSign1(nil, cose.AlgorithmES256, []byte("claim payload"), signer)
	if err != nil {
		t.Fatalf("BuildSign1: %v", err)
	}
	innerEncoded, err := inner.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i + 1)
	}
	aead := &softkeys.AESGCM{Algorithm: cose.AlgorithmA256GCM, Key: key}
	nonce := make([]byte, 12)

	outer, err := cose.BuildEncrypt0(cose.AlgorithmA256GCM, nonce, innerEncoded, aead, nil)
	if err != nil {
		t.Fatalf("BuildEncrypt0: %v", err)
	}
	outerEncoded, err := outer.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	t.Run("passing inner verifier yields Verified", func(t *testing.T) {
		result, err := cose.Decode(outerEncoded, verifier, aead, nil)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if result.Status != cose.StatusVerified {
			t.Fatalf("expected Verified, got %v", result.Status)
		}
	})

	t.Run("failing inner verifier yields Failed with inner alg/kid", func(t *testing.T) {
		wrongPriv, err := softkeys.GenerateECDSAKeyPair(cose.AlgorithmES256)
		if err != nil {
			t.Fatalf("GenerateECDSAKeyPair: %v", err)
		}
		wrongVerifier := &softkeys.ECDSAVerifier{Algorithm: cose.AlgorithmES256, PublicKey: &wrongPriv.PublicKey}

		result, err := cose.Decode(outerEncoded, wrongVerifier, aead, nil)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if result.Status != cose.StatusFailed {
			t.Fatalf("expected Failed, got %v", result.Status)
		}
		if result.Algorithm != cose.AlgorithmES256 {
			t.Errorf("expected inner algorithm surfaced, got %d", result.Algorithm)
		}
	})
}

func TestEncrypt0NoIVFails(t *testing.T) {
	key := make([]byte, 16)
	aead := &softkeys.AESGCM{Algorithm: cose.AlgorithmA128GCM, Key: key}

	e0 := &cose.Encrypt0{
		ProtectedHeaders:   cose.Headers{cose.HeaderLabelAlg: int64(cose.AlgorithmA128GCM)},
		UnprotectedHeaders: cose.Headers{},
		Ciphertext:         []byte("whatever"),
	}
	var err error
	e0.Protected, err = cbor.Marshal(map[int64]any(e0.ProtectedHeaders))
	if err != nil {
		t.Fatalf("marshal headers: %v", err)
	}

	_, err = e0.Decrypt(aead, nil)
	if err == nil {
		t.Fatalf("expected no-IV error")
	}
}

// kidResolver is a minimal KeyResolver over a single registered verifier,
// used to exercise the resolver-driven decode path.
type kidResolver struct {
	kid      []byte
	verifier cose.Verifier
}

func (r *kidResolver) ResolveVerifier(keyID []byte, algorithm int64) (cose.Verifier, error) {
	if string(keyID) != string(r.kid) {
		return nil, &cose.KeyNotFoundError{KeyID: keyID, Algorithm: algorithm}
	}
	return r.verifier, nil
}

func (r *kidResolver) ResolveDecryptor(keyID []byte, algorithm int64) (cose.Decryptor, error) {
	return nil, &cose.KeyNotFoundError{KeyID: keyID, Algorithm: algorithm}
}

func TestDecodeResolverSelectsVerifierByKeyID(t *testing.T) {
	priv, err := softkeys.GenerateECDSAKeyPair(cose.AlgorithmES256)
	if err != nil {
		t.Fatalf("GenerateECDSAKeyPair: %v", err)
	}
	signer := &softkeys.ECDSASigner{Algorithm: cose.AlgorithmES256, PrivateKey: priv, Kid: []byte("kid-resolved")}
	verifier := &softkeys.ECDSAVerifier{Algorithm: cose.AlgorithmES256, PublicKey: &priv.PublicKey}

	s1, err := cose.BuildSign1(nil, cose.AlgorithmES256, []byte("payload"), signer)
	if err != nil {
		t.Fatalf("BuildSign1: %v", err)
	}
	encoded, err := s1.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	resolver := &kidResolver{kid: []byte("kid-resolved"), verifier: verifier}
	result, err := cose.Decode(encoded, nil, nil, resolver)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if result.Status != cose.StatusVerified {
		t.Fatalf("expected Verified, got %v", result.Status)
	}
}

func TestDecodeResolverMissReturnsKeyNotFound(t *testing.T) {
	priv, err := softkeys.GenerateECDSAKeyPair(cose.AlgorithmES256)
	if err != nil {
		t.Fatalf("GenerateECDSAKeyPair: %v", err)
	}
	signer := &softkeys.ECDSASigner{Algorithm: cose.AlgorithmES256, PrivateKey: priv, Kid: []byte("kid-unknown")}

	s1, err := cose.BuildSign1(nil, cose.AlgorithmES256, []byte("payload"), signer)
	if err != nil {
		t.Fatalf("BuildSign1: %v", err)
	}
	encoded, err := s1.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	resolver := &kidResolver{kid: []byte("kid-registered"), verifier: nil}
	_, err = cose.Decode(encoded, nil, nil, resolver)
	if err == nil {
		t.Fatalf("expected KeyNotFoundError")
	}
	var notFound *cose.KeyNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *cose.KeyNotFoundError, got %T: %v", err, err)
	}
}

func TestInspectNeverVerifies(t *testing.T) {
	priv, err := softkeys.GenerateECDSAKeyPair(cose.AlgorithmES256)
	if err != nil {
		t.Fatalf("GenerateECDSAKeyPair: %v", err)
	}
	signer := &softkeys.ECDSASigner{Algorithm: cose.AlgorithmES256, PrivateKey: priv, Kid: []byte("kid-9")}

	s1, err := cose.BuildSign1(nil, cose.AlgorithmES256, []byte("payload"), signer)
	if err != nil {
		t.Fatalf("BuildSign1: %v", err)
	}
	s1.Signature[0] ^= 0xFF // tampered; Inspect must not care
	encoded, err := s1.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	info, payload, err := cose.Inspect(encoded)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if !info.IsSign1 {
		t.Errorf("expected IsSign1")
	}
	if string(info.KeyID) != "kid-9" {
		t.Errorf("kid mismatch: %q", info.KeyID)
	}
	if string(payload) != "payload" {
		t.Errorf("payload mismatch: %q", payload)
	}
}
