package claim169

import (
	"errors"

	"github.com/mosip/claim169-go/cose"
	"github.com/mosip/claim169-go/internal/cwtcodec"
	"github.com/mosip/claim169-go/model"
	"github.com/mosip/claim169-go/pipeline"
)

// InspectResult is the header-only view of a credential's outermost
// COSE envelope, produced without verifying or decrypting anything. For
// a Sign1 the CWT payload is additionally parsed, still untrusted, to
// expose Issuer/Subject/ExpiresAt; for an Encrypt0 these stay nil since
// the inner payload isn't visible without decrypting first.
type InspectResult struct {
	IsSign1    bool
	IsEncrypt0 bool
	Algorithm  int64
	HasAlg     bool
	KeyID      []byte
	X509       model.X509Headers

	Issuer    *string
	Subject   *string
	ExpiresAt *int64
}

// Inspect parses qr through Base45 and decompression and reads the
// outermost COSE envelope's headers, but never attempts verification or
// decryption. For an Encrypt0 envelope nothing about the inner Sign1 is
// visible: callers needing per-issuer key selection read kid/x5t here
// before committing to a verifier via Decoder.
func Inspect(qr string) (InspectResult, error) {
	if qr == "" {
		return InspectResult{}, newError(KindBase45Decode, "empty QR text", pipeline.ErrBase45Decode)
	}

	compressed, err := pipeline.Base45Decode(qr)
	if err != nil {
		return InspectResult{}, newError(KindBase45Decode, "", err)
	}

	coseBytes, _, err := pipeline.Decompress(compressed, pipeline.DefaultMaxDecompressedBytes, true)
	if err != nil {
		var limitErr *pipeline.DecompressLimitExceededError
		if errors.As(err, &limitErr) {
			return InspectResult{}, limitExceededError(limitErr.MaxBytes)
		}
		return InspectResult{}, newError(KindDecompress, "", err)
	}

	result, payload, err := cose.Inspect(coseBytes)
	if err != nil {
		if errors.Is(err, cose.ErrUnsupportedType) {
			return InspectResult{}, newError(KindUnsupportedCoseType, "", err)
		}
		return InspectResult{}, newError(KindCoseParse, "", err)
	}

	out := InspectResult{
		IsSign1:    result.IsSign1,
		IsEncrypt0: result.IsEncrypt0,
		Algorithm:  result.Algorithm,
		HasAlg:     result.HasAlg,
		KeyID:      result.KeyID,
		X509:       result.X509,
	}

	// Sign1's payload is the CWT claims map; it can be peeked at for
	// iss/sub/exp without trusting it, same as the envelope headers
	// above. An Encrypt0's payload is ciphertext, so it's left alone.
	if result.IsSign1 && payload != nil {
		if meta, err := cwtcodec.PeekStandardClaims(payload); err == nil {
			out.Issuer = meta.Issuer
			out.Subject = meta.Subject
			out.ExpiresAt = meta.ExpiresAt
		}
	}

	return out, nil
}
