package pipeline

import (
	"bytes"
	"testing"
)

func TestCompressDecompressZlibRoundTrip(t *testing.T) {
	data := []byte("claim169 payload, repeated repeated repeated repeated")
	compressed, err := Compress(data, CompressionZlib, false)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	decompressed, detected, err := Decompress(compressed, DefaultMaxDecompressedBytes, false)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if detected != DetectedZlib {
		t.Errorf("expected DetectedZlib, got %v", detected)
	}
	if !bytes.Equal(decompressed, data) {
		t.Errorf("round-trip mismatch: got %q, want %q", decompressed, data)
	}
}

func TestDecompressEmptyInput(t *testing.T) {
	out, detected, err := Decompress(nil, DefaultMaxDecompressedBytes, false)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if len(out) != 0 || detected != DetectedNone {
		t.Errorf("expected empty/None, got %v %v", out, detected)
	}
}

func TestDecompressRawUnderLimit(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03} // first byte is not 0x78
	out, detected, err := Decompress(data, DefaultMaxDecompressedBytes, false)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if detected != DetectedNone || !bytes.Equal(out, data) {
		t.Errorf("expected raw passthrough, got %v %v", out, detected)
	}
}

func TestDecompressZlibMagicFailureIsHardError(t *testing.T) {
	corrupt := []byte{0x78, 0x9c, 0xFF, 0xFF, 0xFF}
	_, _, err := Decompress(corrupt, DefaultMaxDecompressedBytes, false)
	if err == nil {
		t.Fatalf("expected hard decompress error for corrupt zlib stream")
	}
}

func TestDecompressBombGuardTripsOnExactByte(t *testing.T) {
	data := bytes.Repeat([]byte{0}, 2000)
	compressed, err := Compress(data, CompressionZlib, false)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	_, _, err = Decompress(compressed, 500, false)
	if err == nil {
		t.Fatalf("expected DecompressLimitExceeded")
	}
	limitErr, ok := err.(*DecompressLimitExceededError)
	if !ok {
		t.Fatalf("expected *DecompressLimitExceededError, got %T: %v", err, err)
	}
	if limitErr.MaxBytes != 500 {
		t.Errorf("expected max_bytes 500, got %d", limitErr.MaxBytes)
	}
}

func TestCompressAdaptiveKeepsSmaller(t *testing.T) {
	data := []byte("x") // incompressible tiny input: zlib overhead makes it larger than raw
	out, err := Compress(data, CompressionAdaptive, false)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if len(out) > len(data) {
		t.Errorf("expected adaptive mode to keep raw (smaller), got %d bytes for %d-byte input", len(out), len(data))
	}
}

func TestCompressNoneStoresRaw(t *testing.T) {
	data := []byte("stored as-is")
	out, err := Compress(data, CompressionNone, false)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Errorf("expected passthrough, got %q", out)
	}
}
