package pipeline

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
)

// CompressionMode selects the compressor the encoder uses.
type CompressionMode int

const (
	// CompressionZlib is the mandatory, default format (RFC 1950).
	CompressionZlib CompressionMode = iota
	// CompressionBrotli is an optional extension.
	CompressionBrotli
	// CompressionNone stores the bytes uncompressed.
	CompressionNone
	// CompressionAdaptive tries CompressionZlib (or CompressionBrotli,
	// if requested via AdaptiveWithBrotli) and keeps whichever of
	// compressed/raw is smaller.
	CompressionAdaptive
)

// DetectedCompression reports which compressor decompression detection
// settled on.
type DetectedCompression int

const (
	DetectedNone DetectedCompression = iota
	DetectedZlib
	DetectedBrotli
)

func (d DetectedCompression) String() string {
	switch d {
	case DetectedZlib:
		return "Zlib"
	case DetectedBrotli:
		return "Brotli"
	default:
		return "None"
	}
}

// DecompressLimitExceededError is the bomb-guard failure.
type DecompressLimitExceededError struct {
	MaxBytes int
}

func (e *DecompressLimitExceededError) Error() string {
	return fmt.Sprintf("pipeline: decompressed size exceeds limit of %d bytes", e.MaxBytes)
}

// ErrDecompress is the hard failure for a committed-to compression
// format that fails to decode.
var ErrDecompress = fmt.Errorf("pipeline: decompression failed")

// DefaultMaxDecompressedBytes is the default bomb-guard limit.
const DefaultMaxDecompressedBytes = 65536

const readChunkSize = 4096

// Compress encodes data per mode. brotliEnabled controls whether
// CompressionAdaptive may also try brotli.
func Compress(data []byte, mode CompressionMode, brotliEnabled bool) ([]byte, error) {
	switch mode {
	case CompressionZlib:
		return compressZlib(data)
	case CompressionBrotli:
		return compressBrotli(data)
	case CompressionNone:
		return data, nil
	case CompressionAdaptive:
		best := data
		if zlibOut, err := compressZlib(data); err == nil && len(zlibOut) < len(best) {
			best = zlibOut
		}
		if brotliEnabled {
			if brOut, err := compressBrotli(data); err == nil && len(brOut) < len(best) {
				best = brOut
			}
		}
		return best, nil
	default:
		return nil, fmt.Errorf("pipeline: unknown compression mode %d", mode)
	}
}

func compressZlib(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("pipeline: zlib compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("pipeline: zlib compress: %w", err)
	}
	return buf.Bytes(), nil
}

func compressBrotli(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("pipeline: brotli compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("pipeline: brotli compress: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress auto-detects the compression format and enforces
// maxBytes via the bomb guard.
func Decompress(data []byte, maxBytes int, brotliEnabled bool) ([]byte, DetectedCompression, error) {
	if len(data) == 0 {
		return nil, DetectedNone, nil
	}

	if data[0] == 0x78 {
		out, err := readLimited(zlibReader(data), maxBytes)
		if err != nil {
			if limitErr, ok := err.(*DecompressLimitExceededError); ok {
				return nil, DetectedNone, limitErr
			}
			return nil, DetectedNone, fmt.Errorf("%w: %v", ErrDecompress, err)
		}
		return out, DetectedZlib, nil
	}

	if brotliEnabled {
		out, err := readLimited(io.NopCloser(brotli.NewReader(bytes.NewReader(data))), maxBytes)
		if err == nil && looksLikeCoseTag(out) {
			return out, DetectedBrotli, nil
		}
		if limitErr, ok := err.(*DecompressLimitExceededError); ok {
			return nil, DetectedNone, limitErr
		}
	}

	if len(data) > maxBytes {
		return nil, DetectedNone, &DecompressLimitExceededError{MaxBytes: maxBytes}
	}
	return data, DetectedNone, nil
}

func zlibReader(data []byte) io.ReadCloser {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return failingReader{err: err}
	}
	return r
}

type failingReader struct{ err error }

func (f failingReader) Read([]byte) (int, error) { return 0, f.err }
func (f failingReader) Close() error              { return nil }

// readLimited reads r in fixed-size chunks, aborting with
// DecompressLimitExceededError as soon as the running total exceeds
// maxBytes.
func readLimited(r io.ReadCloser, maxBytes int) ([]byte, error) {
	defer r.Close()

	var out bytes.Buffer
	chunk := make([]byte, readChunkSize)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			out.Write(chunk[:n])
			if out.Len() > maxBytes {
				return nil, &DecompressLimitExceededError{MaxBytes: maxBytes}
			}
		}
		if err == io.EOF {
			return out.Bytes(), nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// looksLikeCoseTag implements the COSE-tag-prefix check that gates
// whether a successful brotli decode is trusted.
func looksLikeCoseTag(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	switch b[0] {
	case 0xD2, 0xD0: // tag 18, tag 16 (1-byte major-type-6 encodings)
		return true
	case 0xD8: // 2-byte tag encoding
		return len(b) >= 2 && (b[1] == 0x60 || b[1] == 0x61)
	default:
		return false
	}
}
