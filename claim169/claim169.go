package claim169

import (
	"errors"
	"time"

	"github.com/mosip/claim169-go/cose"
	"github.com/mosip/claim169-go/internal/cbor169"
	"github.com/mosip/claim169-go/internal/cwtcodec"
	"github.com/mosip/claim169-go/model"
	"github.com/mosip/claim169-go/pipeline"
)

// Warnings collects the non-fatal conditions Decode surfaces alongside
// a successful result: unknown fields, skipped biometrics, disabled
// timestamp checks, and non-standard compression are warnings, never
// errors.
type Warnings struct {
	UnknownFields              bool
	BiometricsSkipped          bool
	TimestampValidationSkipped bool
	NonStandardCompression     bool
}

// DecodeResult is the outcome of a successful Decode.
type DecodeResult struct {
	Claim     *model.Claim169
	Meta      model.CwtMeta
	Status    cose.VerificationStatus
	Algorithm int64
	HasAlg    bool
	KeyID     []byte
	Warnings  Warnings
}

// EncodeResult is the outcome of a successful Encode.
type EncodeResult struct {
	QRText string
}

// Decode runs the full pipeline in reverse: Base45-decode, decompress,
// parse/verify/decrypt the COSE envelope, parse the CWT, validate
// timestamps, and apply the C2 transform.
func (d *Decoder) Decode() (DecodeResult, error) {
	if d.consumed {
		return DecodeResult{}, newError(KindDecodingConfig, "decoder reused after decode", nil)
	}
	d.consumed = true

	if d.pendingErr != nil {
		return DecodeResult{}, d.pendingErr
	}

	// A verifier-less, non-allow_unverified decoder is not rejected up
	// front: it runs the full pipeline and lets the Skipped-status
	// escalation below produce SignatureInvalid (allow_unverified=false
	// and no verifier always yields SignatureInvalid) rather than a
	// generic config error that would mask the richer parse failures
	// (bad Base45, bad compression, bad COSE) a caller needs to see first.

	// Step 1: Base45-decode. Empty QR text is rejected here; the pure
	// codec in pipeline treats the empty byte string as a valid
	// round-trip value, so the
	// boundary case is enforced at this orchestration layer instead.
	if d.qr == "" {
		return DecodeResult{}, newError(KindBase45Decode, "empty QR text", pipeline.ErrBase45Decode)
	}
	compressed, err := pipeline.Base45Decode(d.qr)
	if err != nil {
		return DecodeResult{}, newError(KindBase45Decode, "", err)
	}

	// Step 2: decompress with detection; enforce the bomb guard.
	coseBytes, detected, err := pipeline.Decompress(compressed, d.maxDecompressedBytes, d.allowBrotli)
	if err != nil {
		var limitErr *pipeline.DecompressLimitExceededError
		if errors.As(err, &limitErr) {
			return DecodeResult{}, limitExceededError(limitErr.MaxBytes)
		}
		return DecodeResult{}, newError(KindDecompress, "", err)
	}

	// Step 3: parse COSE; apply verification/decryption, resolving a
	// per-kid/alg capability from d.resolver when no static verifier or
	// decryptor was configured.
	envelope, err := cose.Decode(coseBytes, d.verifier, d.decryptor, d.resolver)
	if err != nil {
		var notFound *cose.KeyNotFoundError
		switch {
		case errors.As(err, &notFound):
			return DecodeResult{}, newError(KindKeyNotFound, "", err)
		case errors.Is(err, cose.ErrMissingAlgorithm):
			return DecodeResult{}, newError(KindCoseParse, "missing protected-header algorithm", err)
		case errors.Is(err, cose.ErrUnsupportedType):
			return DecodeResult{}, newError(KindUnsupportedCoseType, "", err)
		case errors.Is(err, cose.ErrDecryptionFailed), errors.Is(err, cose.ErrNoIV), errors.Is(err, cose.ErrNoCiphertext):
			return DecodeResult{}, newError(KindDecryptionFailed, "", err)
		case errors.Is(err, cose.ErrNoPayload):
			return DecodeResult{}, newError(KindCoseParse, "missing payload", err)
		default:
			return DecodeResult{}, newError(KindCoseParse, "", err)
		}
	}

	// Steps 4-5: escalate Skipped (without allow_unverified)/Failed to
	// SignatureInvalid.
	if envelope.Status == cose.StatusSkipped && !d.allowUnverified {
		return DecodeResult{}, newError(KindSignatureInvalid, "verification skipped", nil)
	}
	if envelope.Status == cose.StatusFailed {
		return DecodeResult{}, newError(KindSignatureInvalid, "verification failed", nil)
	}

	// Step 6: parse CWT.
	opts := cbor169.Options{SkipBiometrics: d.skipBiometrics}
	meta, claim, info, err := cwtcodec.DecodeWithInfo(envelope.Payload, opts)
	if err != nil {
		if cwtcodec.IsNotFound(err) {
			return DecodeResult{}, newError(KindClaim169NotFound, "", err)
		}
		if cbor169.IsInvalid(err) {
			return DecodeResult{}, newError(KindClaim169Invalid, "", err)
		}
		return DecodeResult{}, newError(KindCwtParse, "", err)
	}

	// Step 7: timestamp validation with clock skew.
	warnings := Warnings{
		UnknownFields:          info.HasUnknownFields,
		BiometricsSkipped:      info.BiometricsSkipped,
		NonStandardCompression: detected != pipeline.DetectedZlib,
	}
	if d.validateTimestamps {
		now := time.Now().Unix()
		if meta.ExpiresAt != nil && *meta.ExpiresAt < now-d.clockSkewSeconds {
			return DecodeResult{}, expiredError(*meta.ExpiresAt)
		}
		if meta.NotBefore != nil && *meta.NotBefore > now+d.clockSkewSeconds {
			return DecodeResult{}, notYetValidError(*meta.NotBefore)
		}
	} else {
		warnings.TimestampValidationSkipped = true
	}

	// Step 8/9: return the result; C2 already ran inside cwtcodec.Decode.
	return DecodeResult{
		Claim:     claim,
		Meta:      meta,
		Status:    envelope.Status,
		Algorithm: envelope.Algorithm,
		HasAlg:    envelope.HasAlg,
		KeyID:     envelope.KeyID,
		Warnings:  warnings,
	}, nil
}

// Encode runs the full pipeline forward: C2, CWT, Sign1, optional
// Encrypt0, compress, Base45-encode.
func (e *Encoder) Encode() (EncodeResult, error) {
	if e.consumed {
		return EncodeResult{}, newError(KindEncodingConfig, "encoder reused after encode", nil)
	}
	e.consumed = true

	if e.pendingErr != nil {
		return EncodeResult{}, e.pendingErr
	}
	if e.signer == nil && !e.allowUnsigned {
		return EncodeResult{}, newError(KindEncodingConfig, "no signing capability configured and allow_unsigned() not set", nil)
	}

	// Step 1: encode Claim 169 to CBOR via C2.
	claimCBOR, err := cbor169.Encode(e.claim, cbor169.Options{SkipBiometrics: e.skipBiometrics})
	if err != nil {
		return EncodeResult{}, newError(KindCborEncode, "claim169", err)
	}

	// Step 2: encode the CWT claims map.
	cwtBytes, err := cwtcodec.Encode(e.meta, claimCBOR)
	if err != nil {
		return EncodeResult{}, newError(KindCborEncode, "cwt", err)
	}

	// Step 3: build the protected header and sign.
	var signed []byte
	if e.signer != nil {
		sign1, err := cose.BuildSign1(cose.Headers{}, e.signAlgorithm, cwtBytes, e.signer)
		if err != nil {
			return EncodeResult{}, newError(KindSignatureFailed, "", err)
		}
		signed, err = sign1.Encode()
		if err != nil {
			return EncodeResult{}, newError(KindCborEncode, "sign1", err)
		}
	} else {
		// allow_unsigned: wrap the CWT in an unsigned Sign1 shell so the
		// decoder's single envelope-parsing path still applies; status
		// comes back Skipped without a verifier.
		sign1 := &cose.Sign1{
			Protected:          []byte{0xa0},
			ProtectedHeaders:   cose.Headers{},
			UnprotectedHeaders: cose.Headers{},
			Payload:            cwtBytes,
			Signature:          []byte{},
		}
		signed, err = sign1.Encode()
		if err != nil {
			return EncodeResult{}, newError(KindCborEncode, "sign1", err)
		}
	}

	// Step 4: optional encryption.
	outermost := signed
	if e.encryptor != nil {
		nonce, err := pipeline.GenerateNonce()
		if err != nil {
			return EncodeResult{}, newError(KindIo, "generate_nonce", err)
		}
		encrypt0, err := cose.BuildEncrypt0(e.encryptAlgorithm, nonce[:], signed, e.encryptor, e.encryptKeyID)
		if err != nil {
			return EncodeResult{}, newError(KindEncryptionFailed, "", err)
		}
		outermost, err = encrypt0.Encode()
		if err != nil {
			return EncodeResult{}, newError(KindCborEncode, "encrypt0", err)
		}
	}

	// Step 6: compress, then Base45-encode.
	compressed, err := pipeline.Compress(outermost, e.compressionMode, e.allowBrotli)
	if err != nil {
		return EncodeResult{}, newError(KindDecompress, "compress", err)
	}

	return EncodeResult{QRText: pipeline.Base45Encode(compressed)}, nil
}
