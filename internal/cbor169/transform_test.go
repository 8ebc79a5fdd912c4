package cbor169

import (
	"testing"

	"github.com/fxamacker/cbor/v2"

	"github.com/mosip/claim169-go/model"
)

func TestDecodeMinimal(t *testing.T) {
	raw, err := encMode.Marshal(map[int]any{
		keyFullName: "Jane Doe",
		keyGender:   int64(model.GenderFemale),
	})
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}

	claim, info, err := Decode(raw, Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if info.HasUnknownFields {
		t.Errorf("expected no unknown fields")
	}
	if claim.FullName == nil || *claim.FullName != "Jane Doe" {
		t.Errorf("expected full_name Jane Doe, got %v", claim.FullName)
	}
	if claim.Gender == nil || *claim.Gender != model.GenderFemale {
		t.Errorf("expected gender female, got %v", claim.Gender)
	}
}

func TestDecodeTypeMismatchYieldsNone(t *testing.T) {
	raw, err := encMode.Marshal(map[int]any{
		keyFullName: int64(42), // wrong type for a string field
	})
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}

	claim, _, err := Decode(raw, Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if claim.FullName != nil {
		t.Errorf("expected nil FullName on type mismatch, got %v", *claim.FullName)
	}
}

func TestDecodeNonMapTopLevelIsInvalid(t *testing.T) {
	raw, err := encMode.Marshal([]int{1, 2, 3})
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}

	_, _, err = Decode(raw, Options{})
	if err == nil || !IsInvalid(err) {
		t.Fatalf("expected Claim169Invalid, got %v", err)
	}
}

func TestDecodeNonIntegerKeyIsInvalid(t *testing.T) {
	raw, err := encMode.Marshal(map[string]any{"full_name": "Jane Doe"})
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}

	_, _, err = Decode(raw, Options{})
	if err == nil || !IsInvalid(err) {
		t.Fatalf("expected Claim169Invalid, got %v", err)
	}
}

func TestDecodeUnknownFieldsPreserved(t *testing.T) {
	raw, err := encMode.Marshal(map[int]any{
		keyFullName: "Jane Doe",
		200:         "future field",
	})
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}

	claim, info, err := Decode(raw, Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !info.HasUnknownFields {
		t.Errorf("expected HasUnknownFields")
	}
	if got, ok := claim.Unknown[200]; !ok || got != "future field" {
		t.Errorf("expected unknown field 200 preserved, got %v (ok=%v)", got, ok)
	}
}

func TestDecodeBiometricSingleMapNormalizesToSlice(t *testing.T) {
	entry := map[int]any{
		bioKeyData:   []byte{0x01, 0x02},
		bioKeyFormat: int64(model.BiometricFormatImage),
	}
	raw, err := encMode.Marshal(map[int]any{
		int(model.SlotFace.CBORKey()): entry,
	})
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}

	claim, _, err := Decode(raw, Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	entries, ok := claim.Biometrics[model.SlotFace]
	if !ok || len(entries) != 1 {
		t.Fatalf("expected one normalized entry, got %v", entries)
	}
	if string(entries[0].Data) != "\x01\x02" {
		t.Errorf("unexpected biometric data: %v", entries[0].Data)
	}
}

func TestDecodeBiometricSequenceOfMaps(t *testing.T) {
	entries := []any{
		map[int]any{bioKeyData: []byte{0x01}},
		map[int]any{bioKeyData: []byte{0x02}},
	}
	raw, err := encMode.Marshal(map[int]any{
		int(model.SlotRightThumb.CBORKey()): entries,
	})
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}

	claim, _, err := Decode(raw, Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(claim.Biometrics[model.SlotRightThumb]) != 2 {
		t.Fatalf("expected two entries, got %d", len(claim.Biometrics[model.SlotRightThumb]))
	}
}

func TestDecodeSkipBiometrics(t *testing.T) {
	raw, err := encMode.Marshal(map[int]any{
		int(model.SlotFace.CBORKey()): map[int]any{bioKeyData: []byte{0x01}},
	})
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}

	claim, info, err := Decode(raw, Options{SkipBiometrics: true})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !info.BiometricsSkipped {
		t.Errorf("expected BiometricsSkipped")
	}
	if len(claim.Biometrics) != 0 {
		t.Errorf("expected no biometrics decoded, got %v", claim.Biometrics)
	}
}

func TestEncodeOmitsUnsetFieldsAndUnknown(t *testing.T) {
	name := "Jane Doe"
	claim := &model.Claim169{
		FullName: &name,
		Unknown:  map[int64]any{200: "should not round-trip out"},
	}

	raw, err := Encode(claim, Options{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var decoded map[int]any
	if err := cbor.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal encoded output: %v", err)
	}
	if _, ok := decoded[keyID]; ok {
		t.Errorf("expected unset id field to be omitted")
	}
	if _, ok := decoded[200]; ok {
		t.Errorf("expected Unknown not to be re-emitted")
	}
	if decoded[keyFullName] != "Jane Doe" {
		t.Errorf("expected full_name round-trip, got %v", decoded[keyFullName])
	}
}

func TestEncodeSkipBiometrics(t *testing.T) {
	claim := &model.Claim169{
		Biometrics: map[model.BiometricSlot][]model.BiometricEntry{
			model.SlotFace: {{Data: []byte{0xAB, 0xCD}}},
		},
	}

	raw, err := Encode(claim, Options{SkipBiometrics: true})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var decoded map[int]any
	if err := cbor.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal encoded output: %v", err)
	}
	if _, ok := decoded[int(model.SlotFace.CBORKey())]; ok {
		t.Errorf("expected biometric slot to be omitted when SkipBiometrics is set")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	name := "Jane Doe"
	gender := model.GenderFemale
	fingers := []int{1, 2, 3}
	claim := &model.Claim169{
		FullName:           &name,
		Gender:             &gender,
		BestQualityFingers: fingers,
		Biometrics: map[model.BiometricSlot][]model.BiometricEntry{
			model.SlotFace: {{Data: []byte{0xAB, 0xCD}}},
		},
	}

	raw, err := Encode(claim, Options{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, _, err := Decode(raw, Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.FullName == nil || *got.FullName != name {
		t.Errorf("full_name mismatch: %v", got.FullName)
	}
	if got.Gender == nil || *got.Gender != gender {
		t.Errorf("gender mismatch: %v", got.Gender)
	}
	if len(got.BestQualityFingers) != 3 {
		t.Errorf("best_quality_fingers mismatch: %v", got.BestQualityFingers)
	}
	entries := got.Biometrics[model.SlotFace]
	if len(entries) != 1 || string(entries[0].Data) != "\xAB\xCD" {
		t.Errorf("biometrics mismatch: %v", entries)
	}
}
