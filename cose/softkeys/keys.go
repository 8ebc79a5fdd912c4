package softkeys

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"strings"

	gocose "github.com/veraison/go-cose"

	"github.com/mosip/claim169-go/cose"
)

// JWK is a JSON Web Key (RFC 7517) covering the EC and OKP key types
// this package generates.
type JWK struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	X   string `json:"x"`
	Y   string `json:"y,omitempty"` // absent for OKP (Ed25519)
	D   string `json:"d,omitempty"`
	Kid string `json:"kid,omitempty"`
	Alg string `json:"alg,omitempty"`
}

func curveForAlgorithm(algorithm int64) (elliptic.Curve, string, error) {
	switch algorithm {
	case cose.AlgorithmES256:
		return elliptic.P256(), "P-256", nil
	case cose.AlgorithmES384:
		return elliptic.P384(), "P-384", nil
	case cose.AlgorithmES512:
		return elliptic.P521(), "P-521", nil
	default:
		return nil, "", fmt.Errorf("softkeys: algorithm %d is not an ECDSA curve", algorithm)
	}
}

func coordinateSize(crv string) int {
	switch crv {
	case "P-256":
		return 32
	case "P-384":
		return 48
	case "P-521":
		return 66
	default:
		return 0
	}
}

// GenerateECDSAKeyPair generates a fresh key pair for ES256/ES384/ES512.
func GenerateECDSAKeyPair(algorithm int64) (*ecdsa.PrivateKey, error) {
	curve, _, err := curveForAlgorithm(algorithm)
	if err != nil {
		return nil, err
	}
	return ecdsa.GenerateKey(curve, rand.Reader)
}

// GenerateEd25519KeyPair generates a fresh Ed25519 key pair for EdDSA.
func GenerateEd25519KeyPair() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	return ed25519.GenerateKey(rand.Reader)
}

// ExportECDSAPublicKeyToJWK exports an ECDSA public key to JWK.
func ExportECDSAPublicKeyToJWK(algorithm int64, publicKey *ecdsa.PublicKey) (*JWK, error) {
	_, crv, err := curveForAlgorithm(algorithm)
	if err != nil {
		return nil, err
	}
	size := coordinateSize(crv)
	return &JWK{
		Kty: "EC",
		Crv: crv,
		X:   base64URLEncode(padLeft(publicKey.X.Bytes(), size)),
		Y:   base64URLEncode(padLeft(publicKey.Y.Bytes(), size)),
	}, nil
}

// ExportEd25519PublicKeyToJWK exports an Ed25519 public key to JWK (OKP).
func ExportEd25519PublicKeyToJWK(publicKey ed25519.PublicKey) *JWK {
	return &JWK{
		Kty: "OKP",
		Crv: "Ed25519",
		X:   base64URLEncode(publicKey),
	}
}

// ExportPrivateKeyToPEM exports an ECDSA or Ed25519 private key as a
// PKCS#8 PEM block.
func ExportPrivateKeyToPEM(privateKey any) (string, error) {
	der, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		return "", fmt.Errorf("softkeys: marshal private key: %w", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})), nil
}

// ImportPrivateKeyFromPEM parses a PKCS#8 PEM block into an ECDSA or
// Ed25519 private key.
func ImportPrivateKeyFromPEM(pemData string) (any, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, errors.New("softkeys: failed to decode PEM block")
	}
	return x509.ParsePKCS8PrivateKey(block.Bytes)
}

// ExportPublicKeyToPEM exports an ECDSA or Ed25519 public key as an
// SPKI PEM block.
func ExportPublicKeyToPEM(publicKey any) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(publicKey)
	if err != nil {
		return "", fmt.Errorf("softkeys: marshal public key: %w", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})), nil
}

// ImportPublicKeyFromPEM parses an SPKI PEM block into an ECDSA or
// Ed25519 public key.
func ImportPublicKeyFromPEM(pemData string) (any, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, errors.New("softkeys: failed to decode PEM block")
	}
	return x509.ParsePKIXPublicKey(block.Bytes)
}

// ComputeKeyThumbprint computes the RFC 7638 JWK thumbprint for an EC
// key (crv, kty, x, y in lexicographic order).
func ComputeKeyThumbprint(jwk *JWK) (string, error) {
	var canonical string
	switch jwk.Kty {
	case "EC":
		canonical = fmt.Sprintf(`{"crv":"%s","kty":"%s","x":"%s","y":"%s"}`, jwk.Crv, jwk.Kty, jwk.X, jwk.Y)
	case "OKP":
		canonical = fmt.Sprintf(`{"crv":"%s","kty":"%s","x":"%s"}`, jwk.Crv, jwk.Kty, jwk.X)
	default:
		return "", fmt.Errorf("softkeys: unsupported kty %q", jwk.Kty)
	}
	hash := sha256.Sum256([]byte(canonical))
	return base64URLEncode(hash[:]), nil
}

// ExportPublicKeyToCOSECBOR exports an ECDSA or Ed25519 public key as a
// COSE_Key (RFC 9053) in CBOR.
func ExportPublicKeyToCOSECBOR(algorithm int64, publicKey any) ([]byte, error) {
	switch pub := publicKey.(type) {
	case *ecdsa.PublicKey:
		_, crv, err := curveForAlgorithm(algorithm)
		if err != nil {
			return nil, err
		}
		size := coordinateSize(crv)
		key, err := gocose.NewKeyEC2(algorithm, padLeft(pub.X.Bytes(), size), padLeft(pub.Y.Bytes(), size), nil)
		if err != nil {
			return nil, fmt.Errorf("softkeys: NewKeyEC2: %w", err)
		}
		return key.MarshalCBOR()
	case ed25519.PublicKey:
		key, err := gocose.NewKeyOKP(cose.AlgorithmEdDSA, pub, nil)
		if err != nil {
			return nil, fmt.Errorf("softkeys: NewKeyOKP: %w", err)
		}
		return key.MarshalCBOR()
	default:
		return nil, fmt.Errorf("softkeys: unsupported public key type %T", publicKey)
	}
}

// ExportPrivateKeyToCOSECBOR exports an ECDSA or Ed25519 private key as
// a COSE_Key in CBOR.
func ExportPrivateKeyToCOSECBOR(algorithm int64, privateKey any) ([]byte, error) {
	switch priv := privateKey.(type) {
	case *ecdsa.PrivateKey:
		_, crv, err := curveForAlgorithm(algorithm)
		if err != nil {
			return nil, err
		}
		size := coordinateSize(crv)
		key, err := gocose.NewKeyEC2(algorithm, padLeft(priv.X.Bytes(), size), padLeft(priv.Y.Bytes(), size), padLeft(priv.D.Bytes(), size))
		if err != nil {
			return nil, fmt.Errorf("softkeys: NewKeyEC2: %w", err)
		}
		return key.MarshalCBOR()
	case ed25519.PrivateKey:
		key, err := gocose.NewKeyOKP(cose.AlgorithmEdDSA, priv.Public().(ed25519.PublicKey), priv.Seed())
		if err != nil {
			return nil, fmt.Errorf("softkeys: NewKeyOKP: %w", err)
		}
		return key.MarshalCBOR()
	default:
		return nil, fmt.Errorf("softkeys: unsupported private key type %T", privateKey)
	}
}

// ImportPublicKeyFromCOSECBOR parses a COSE_Key back into an ECDSA or
// Ed25519 public key, selected by its algorithm.
func ImportPublicKeyFromCOSECBOR(cborData []byte) (algorithm int64, publicKey any, err error) {
	key := &gocose.Key{}
	if err := key.UnmarshalCBOR(cborData); err != nil {
		return 0, nil, fmt.Errorf("softkeys: unmarshal COSE key: %w", err)
	}

	switch key.Algorithm {
	case cose.AlgorithmES256, cose.AlgorithmES384, cose.AlgorithmES512:
		curve, _, err := curveForAlgorithm(key.Algorithm)
		if err != nil {
			return 0, nil, err
		}
		_, x, y, _ := key.EC2()
		if len(x) == 0 || len(y) == 0 {
			return 0, nil, errors.New("softkeys: missing EC2 coordinates")
		}
		pub := &ecdsa.PublicKey{Curve: curve, X: new(big.Int).SetBytes(x), Y: new(big.Int).SetBytes(y)}
		if !curve.IsOnCurve(pub.X, pub.Y) {
			return 0, nil, errors.New("softkeys: public key point is not on curve")
		}
		return key.Algorithm, pub, nil
	case cose.AlgorithmEdDSA:
		x, _ := key.OKP()
		if len(x) == 0 {
			return 0, nil, errors.New("softkeys: missing OKP x coordinate")
		}
		return cose.AlgorithmEdDSA, ed25519.PublicKey(x), nil
	default:
		return 0, nil, fmt.Errorf("softkeys: unsupported COSE key algorithm %d", key.Algorithm)
	}
}

func base64URLEncode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

func base64URLDecode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}

func padLeft(data []byte, length int) []byte {
	if len(data) >= length {
		return data
	}
	padded := make([]byte, length)
	copy(padded[length-len(data):], data)
	return padded
}

// MarshalJWK marshals a JWK to JSON.
func MarshalJWK(jwk *JWK) ([]byte, error) { return json.Marshal(jwk) }

// UnmarshalJWK unmarshals JSON into a JWK.
func UnmarshalJWK(data []byte) (*JWK, error) {
	var jwk JWK
	if err := json.Unmarshal(data, &jwk); err != nil {
		return nil, err
	}
	return &jwk, nil
}
