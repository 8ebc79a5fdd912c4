package claim169_test

import (
	"testing"

	"github.com/mosip/claim169-go/claim169"
	"github.com/mosip/claim169-go/cose"
	"github.com/mosip/claim169-go/model"
)

func TestInspectNeverVerifiesTamperedSignature(t *testing.T) {
	_, priv := ed25519TestKeyPair(t)

	id := "ID-SIGNED-001"
	claim := &model.Claim169{ID: &id}
	result, err := claim169.NewEncoder(claim, model.CwtMeta{}).
		SignWithEd25519PrivateKey(priv, []byte("key-1")).
		Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	tampered := tamperBase45Tail(result.QRText)

	info, err := claim169.Inspect(tampered)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if !info.IsSign1 || info.IsEncrypt0 {
		t.Errorf("expected IsSign1, got %+v", info)
	}
	if !info.HasAlg || info.Algorithm != cose.AlgorithmEdDSA {
		t.Errorf("expected algorithm EdDSA, got %+v", info)
	}
	if string(info.KeyID) != "key-1" {
		t.Errorf("kid = %q, want key-1", info.KeyID)
	}
}

func TestInspectExposesCWTMetadataForSign1(t *testing.T) {
	_, priv := ed25519TestKeyPair(t)

	iss := "issuer-authority"
	sub := "subject-001"
	exp := int64(4102444800) // 2100-01-01

	claim := &model.Claim169{}
	result, err := claim169.NewEncoder(claim, model.CwtMeta{Issuer: &iss, Subject: &sub, ExpiresAt: &exp}).
		SignWithEd25519PrivateKey(priv, []byte("key-1")).
		Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	info, err := claim169.Inspect(result.QRText)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if info.Issuer == nil || *info.Issuer != iss {
		t.Errorf("issuer = %v, want %s", info.Issuer, iss)
	}
	if info.Subject == nil || *info.Subject != sub {
		t.Errorf("subject = %v, want %s", info.Subject, sub)
	}
	if info.ExpiresAt == nil || *info.ExpiresAt != exp {
		t.Errorf("exp = %v, want %d", info.ExpiresAt, exp)
	}
}

func TestInspectLeavesCWTMetadataNilForEncrypt0(t *testing.T) {
	_, priv := ed25519TestKeyPair(t)

	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(0x20 + i)
	}

	iss := "issuer-authority"
	claim := &model.Claim169{}
	result, err := claim169.NewEncoder(claim, model.CwtMeta{Issuer: &iss}).
		SignWithEd25519PrivateKey(priv, []byte("key-1")).
		EncryptWithAESKey(cose.AlgorithmA256GCM, key, []byte("enc-key-1")).
		Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	info, err := claim169.Inspect(result.QRText)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if !info.IsEncrypt0 {
		t.Fatalf("expected IsEncrypt0, got %+v", info)
	}
	if info.Issuer != nil || info.Subject != nil || info.ExpiresAt != nil {
		t.Errorf("expected nil CWT metadata for Encrypt0, got %+v", info)
	}
}

func TestInspectRejectsEmptyQRText(t *testing.T) {
	_, err := claim169.Inspect("")
	if err == nil {
		t.Fatalf("expected Base45Decode error")
	}
	cerr, ok := err.(*claim169.Error)
	if !ok || cerr.Kind != claim169.KindBase45Decode {
		t.Fatalf("expected Base45Decode, got %v", err)
	}
}
