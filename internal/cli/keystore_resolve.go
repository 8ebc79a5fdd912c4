package cli

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/mosip/claim169-go/internal/keystore"
)

// resolveSigningKeyPEM returns PEM key material for a signer/verifier,
// preferring an explicit file path and falling back to a kid lookup in
// the SQLite key store when storePath/kid are both given.
func resolveSigningKeyPEM(storePath, filePath, kid string) (string, error) {
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("failed to read key file %s: %w", filePath, err)
		}
		return string(data), nil
	}
	if storePath == "" || kid == "" {
		return "", fmt.Errorf("no key file and no --store/--kid given to resolve a signing key")
	}
	key, err := loadStoredKey(storePath, kid, keystore.PurposeSign)
	if err != nil {
		return "", err
	}
	return key.PrivateKeyPEM, nil
}

// resolveVerifierKeyPEM is resolveSigningKeyPEM's counterpart for the
// public half, used by decode.
func resolveVerifierKeyPEM(storePath, filePath, kid string) (string, error) {
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("failed to read key file %s: %w", filePath, err)
		}
		return string(data), nil
	}
	if storePath == "" || kid == "" {
		return "", fmt.Errorf("no key file and no --store/--kid given to resolve a verification key")
	}
	key, err := loadStoredKey(storePath, kid, keystore.PurposeSign)
	if err != nil {
		return "", err
	}
	return key.PublicKeyPEM, nil
}

// resolveEncryptKeyBytes returns raw AES key bytes, preferring an explicit
// file path and falling back to a kid lookup in the SQLite key store
// (where the key is stored base64-encoded) when storePath/kid are given.
func resolveEncryptKeyBytes(storePath, filePath, kid string) ([]byte, error) {
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read key file %s: %w", filePath, err)
		}
		return data, nil
	}
	if storePath == "" || kid == "" {
		return nil, fmt.Errorf("no key file and no --store/--encrypt-kid given to resolve an encryption key")
	}
	key, err := loadStoredKey(storePath, kid, keystore.PurposeEncrypt)
	if err != nil {
		return nil, err
	}
	raw, err := base64.StdEncoding.DecodeString(key.PrivateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("keystore: key %s is not valid base64: %w", kid, err)
	}
	return raw, nil
}

// loadStoredKey opens the key store at dbPath and loads kid, verifying it
// matches the expected purpose.
func loadStoredKey(dbPath, kid, purpose string) (keystore.Key, error) {
	db, err := keystore.OpenDatabase(keystore.DatabaseOptions{Path: dbPath})
	if err != nil {
		return keystore.Key{}, fmt.Errorf("failed to open key store %s: %w", dbPath, err)
	}
	defer keystore.CloseDatabase(db)

	key, err := keystore.LoadKey(db, kid)
	if err != nil {
		return keystore.Key{}, fmt.Errorf("keystore: key %s: %w", kid, err)
	}
	if key.Purpose != purpose {
		return keystore.Key{}, fmt.Errorf("keystore: key %s has purpose %q, want %q", kid, key.Purpose, purpose)
	}
	if !key.Active {
		return keystore.Key{}, fmt.Errorf("keystore: key %s is deactivated", kid)
	}
	return key, nil
}
