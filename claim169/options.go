package claim169

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"fmt"

	"github.com/mosip/claim169-go/cose"
	"github.com/mosip/claim169-go/cose/softkeys"
	"github.com/mosip/claim169-go/model"
	"github.com/mosip/claim169-go/pipeline"
)

// Decoder is the builder-style entry point for turning QR text back
// into a Claim169. Configure it with the With*/
// VerifyWith*/DecryptWith* methods, then call Decode once; a Decoder is
// single-use.
type Decoder struct {
	qr string

	verifier  cose.Verifier
	decryptor cose.Decryptor
	resolver  cose.KeyResolver

	allowUnverified    bool
	validateTimestamps bool
	clockSkewSeconds   int64
	skipBiometrics     bool
	maxDecompressedBytes int
	allowBrotli        bool

	consumed   bool
	pendingErr error
}

// NewDecoder starts a Decoder over the given QR payload text.
func NewDecoder(qr string) *Decoder {
	return &Decoder{
		qr:                   qr,
		validateTimestamps:   true,
		maxDecompressedBytes: pipeline.DefaultMaxDecompressedBytes,
	}
}

// VerifyWith installs a caller-supplied Verifier capability.
func (d *Decoder) VerifyWith(v cose.Verifier) *Decoder {
	d.verifier = v
	return d
}

// VerifyWithEd25519PublicKey installs a software EdDSA verifier.
func (d *Decoder) VerifyWithEd25519PublicKey(pub ed25519.PublicKey) *Decoder {
	d.verifier = &softkeys.Ed25519Verifier{PublicKey: pub}
	return d
}

// VerifyWithECDSAPublicKey installs a software ECDSA verifier for the
// given algorithm (ES256/ES384/ES512).
func (d *Decoder) VerifyWithECDSAPublicKey(algorithm int64, pub *ecdsa.PublicKey) *Decoder {
	d.verifier = &softkeys.ECDSAVerifier{Algorithm: algorithm, PublicKey: pub}
	return d
}

// VerifyWithPEM parses an SPKI PEM public key and installs the matching
// software verifier for algorithm.
func (d *Decoder) VerifyWithPEM(algorithm int64, pemData string) *Decoder {
	pub, err := softkeys.ImportPublicKeyFromPEM(pemData)
	if err != nil {
		d.pendingErr = newError(KindDecodingConfig, "verify_with_pem", err)
		return d
	}
	switch key := pub.(type) {
	case *ecdsa.PublicKey:
		return d.VerifyWithECDSAPublicKey(algorithm, key)
	case ed25519.PublicKey:
		return d.VerifyWithEd25519PublicKey(key)
	default:
		d.pendingErr = newError(KindDecodingConfig, fmt.Sprintf("verify_with_pem: unsupported key type %T", pub), nil)
		return d
	}
}

// ResolveWith installs a KeyResolver consulted for a Verifier/Decryptor
// keyed on the envelope's kid/alg when no static VerifyWith*/DecryptWith*
// capability was configured. The only sanctioned way to pick a
// verification key in a multi-issuer/key-rotation deployment.
func (d *Decoder) ResolveWith(resolver cose.KeyResolver) *Decoder {
	d.resolver = resolver
	return d
}

// AllowUnverified permits a Skipped verification status to reach
// Decode() without becoming a SignatureInvalid error.
func (d *Decoder) AllowUnverified() *Decoder {
	d.allowUnverified = true
	return d
}

// DecryptWith installs a caller-supplied Decryptor capability.
func (d *Decoder) DecryptWith(dec cose.Decryptor) *Decoder {
	d.decryptor = dec
	return d
}

// DecryptWithAESKey installs a software AES-GCM decryptor for the given
// algorithm (A128GCM/A192GCM/A256GCM).
func (d *Decoder) DecryptWithAESKey(algorithm int64, key []byte) *Decoder {
	d.decryptor = &softkeys.AESGCM{Algorithm: algorithm, Key: key}
	return d
}

// SkipBiometrics drops biometric slots (CBOR keys 50-65) during the C2
// transform.
func (d *Decoder) SkipBiometrics() *Decoder {
	d.skipBiometrics = true
	return d
}

// WithoutTimestampValidation disables the exp/nbf gate.
func (d *Decoder) WithoutTimestampValidation() *Decoder {
	d.validateTimestamps = false
	return d
}

// ClockSkewTolerance widens the exp/nbf window by seconds on both
// sides. Negative values are clamped to zero.
func (d *Decoder) ClockSkewTolerance(seconds int64) *Decoder {
	if seconds < 0 {
		seconds = 0
	}
	d.clockSkewSeconds = seconds
	return d
}

// MaxDecompressedBytes overrides the decompression bomb-guard limit.
func (d *Decoder) MaxDecompressedBytes(n int) *Decoder {
	d.maxDecompressedBytes = n
	return d
}

// AllowBrotli permits the decompressor to additionally try brotli when
// the payload doesn't begin with the zlib magic byte.
func (d *Decoder) AllowBrotli() *Decoder {
	d.allowBrotli = true
	return d
}

// Encoder is the builder-style entry point for producing QR text from a
// Claim169. An Encoder is single-use.
type Encoder struct {
	claim *model.Claim169
	meta  model.CwtMeta

	allowUnsigned bool
	signAlgorithm int64
	signer        cose.Signer

	encryptAlgorithm int64
	encryptKeyID     []byte
	encryptor        cose.Encryptor

	skipBiometrics  bool
	compressionMode pipeline.CompressionMode
	allowBrotli     bool

	consumed   bool
	pendingErr error
}

// NewEncoder starts an Encoder over claim and its CWT metadata.
func NewEncoder(claim *model.Claim169, meta model.CwtMeta) *Encoder {
	return &Encoder{
		claim:           claim,
		meta:            meta,
		compressionMode: pipeline.CompressionZlib,
	}
}

// AllowUnsigned permits encode() to produce an unsigned credential (no
// signing capability configured).
func (e *Encoder) AllowUnsigned() *Encoder {
	e.allowUnsigned = true
	return e
}

// SignWith installs a caller-supplied Signer capability for algorithm.
func (e *Encoder) SignWith(algorithm int64, signer cose.Signer) *Encoder {
	e.signAlgorithm = algorithm
	e.signer = signer
	return e
}

// SignWithEd25519PrivateKey installs a software EdDSA signer.
func (e *Encoder) SignWithEd25519PrivateKey(priv ed25519.PrivateKey, kid []byte) *Encoder {
	return e.SignWith(cose.AlgorithmEdDSA, &softkeys.Ed25519Signer{PrivateKey: priv, Kid: kid})
}

// SignWithECDSAPrivateKey installs a software ECDSA signer for the
// given algorithm (ES256/ES384/ES512).
func (e *Encoder) SignWithECDSAPrivateKey(algorithm int64, priv *ecdsa.PrivateKey, kid []byte) *Encoder {
	return e.SignWith(algorithm, &softkeys.ECDSASigner{Algorithm: algorithm, PrivateKey: priv, Kid: kid})
}

// SignWithPEM parses a PKCS#8 PEM private key and installs the matching
// software signer for algorithm.
func (e *Encoder) SignWithPEM(algorithm int64, pemData string, kid []byte) *Encoder {
	priv, err := softkeys.ImportPrivateKeyFromPEM(pemData)
	if err != nil {
		e.pendingErr = newError(KindEncodingConfig, "sign_with_pem", err)
		return e
	}
	switch key := priv.(type) {
	case *ecdsa.PrivateKey:
		return e.SignWithECDSAPrivateKey(algorithm, key, kid)
	case ed25519.PrivateKey:
		return e.SignWithEd25519PrivateKey(key, kid)
	default:
		e.pendingErr = newError(KindEncodingConfig, fmt.Sprintf("sign_with_pem: unsupported key type %T", priv), nil)
		return e
	}
}

// EncryptWith installs a caller-supplied Encryptor capability for
// algorithm, wrapping the signed credential in Encrypt0.
func (e *Encoder) EncryptWith(algorithm int64, keyID []byte, encryptor cose.Encryptor) *Encoder {
	e.encryptAlgorithm = algorithm
	e.encryptKeyID = keyID
	e.encryptor = encryptor
	return e
}

// EncryptWithAESKey installs a software AES-GCM encryptor for the given
// algorithm (A128GCM/A192GCM/A256GCM).
func (e *Encoder) EncryptWithAESKey(algorithm int64, key []byte, keyID []byte) *Encoder {
	return e.EncryptWith(algorithm, keyID, &softkeys.AESGCM{Algorithm: algorithm, Key: key, Kid: keyID})
}

// SkipBiometrics omits biometric slots (CBOR keys 50-65) from the C2
// transform's output.
func (e *Encoder) SkipBiometrics() *Encoder {
	e.skipBiometrics = true
	return e
}

// CompressWith selects the compression mode (default zlib).
func (e *Encoder) CompressWith(mode pipeline.CompressionMode) *Encoder {
	e.compressionMode = mode
	return e
}

// AllowBrotli permits CompressionAdaptive to also try brotli.
func (e *Encoder) AllowBrotli() *Encoder {
	e.allowBrotli = true
	return e
}
