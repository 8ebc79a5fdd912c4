package cwtcodec

import (
	"testing"

	"github.com/mosip/claim169-go/internal/cbor169"
	"github.com/mosip/claim169-go/model"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	iss := "issuer-1"
	exp := int64(9999999999)

	name := "Jane Doe"
	claim := &model.Claim169{FullName: &name}
	claimCBOR, err := cbor169.Encode(claim, cbor169.Options{})
	if err != nil {
		t.Fatalf("cbor169.Encode: %v", err)
	}

	raw, err := Encode(model.CwtMeta{Issuer: &iss, ExpiresAt: &exp}, claimCBOR)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	meta, decoded, err := Decode(raw, cbor169.Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if meta.Issuer == nil || *meta.Issuer != iss {
		t.Errorf("issuer mismatch: %v", meta.Issuer)
	}
	if meta.ExpiresAt == nil || *meta.ExpiresAt != exp {
		t.Errorf("exp mismatch: %v", meta.ExpiresAt)
	}
	if decoded.FullName == nil || *decoded.FullName != name {
		t.Errorf("full_name mismatch: %v", decoded.FullName)
	}
}

func TestDecodeMissingClaim169ReturnsNotFound(t *testing.T) {
	iss := "issuer-1"
	raw, err := encMode.Marshal(map[int]any{claimKeyIss: iss})
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}

	_, _, err = Decode(raw, cbor169.Options{})
	if err == nil || !IsNotFound(err) {
		t.Fatalf("expected Claim169NotFound, got %v", err)
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(errNotFound{}) {
		t.Errorf("expected errNotFound to report IsNotFound")
	}
	if IsNotFound(nil) {
		t.Errorf("expected nil to not report IsNotFound")
	}
}
