package cli

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mosip/claim169-go/cose"
	"github.com/mosip/claim169-go/cose/softkeys"
	"github.com/mosip/claim169-go/internal/config"
	"github.com/mosip/claim169-go/internal/keystore"
)

// NewKeygenCommand creates the keygen command.
func NewKeygenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate signing or encryption key material",
		Long: `Generate key material for signing or encrypting Claim169 credentials.

Subcommands:
  keygen sign    - Generate an ECDSA or Ed25519 signing key pair
  keygen encrypt - Generate a raw AES-GCM key`,
	}

	cmd.AddCommand(NewKeygenSignCommand())
	cmd.AddCommand(NewKeygenEncryptCommand())

	return cmd
}

type keygenSignOptions struct {
	algorithm      string
	kid            string
	privateKeyPath string
	publicKeyPath  string
	storePath      string
}

// NewKeygenSignCommand creates the keygen sign command.
func NewKeygenSignCommand() *cobra.Command {
	opts := &keygenSignOptions{
		algorithm:      "eddsa",
		privateKeyPath: "private_key.pem",
		publicKeyPath:  "public_key.pem",
	}

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Generate a signing key pair",
		Long: `Generate a signing key pair for a Claim169 issuer.

Supported algorithms: es256, es384, es512, eddsa (default).

Example:
  claim169 keygen sign --algorithm eddsa --private-key issuer.pem --public-key issuer-pub.pem`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeygenSign(opts)
		},
	}

	cmd.Flags().StringVar(&opts.algorithm, "algorithm", opts.algorithm, "signing algorithm: es256, es384, es512, eddsa")
	cmd.Flags().StringVar(&opts.kid, "kid", "", "key identifier (default: randomly generated)")
	cmd.Flags().StringVar(&opts.privateKeyPath, "private-key", opts.privateKeyPath, "path to save private key (PEM)")
	cmd.Flags().StringVar(&opts.publicKeyPath, "public-key", opts.publicKeyPath, "path to save public key (PEM)")
	cmd.Flags().StringVar(&opts.storePath, "store", "", "also save the key pair into this SQLite key store, addressed by kid")

	return cmd
}

func algorithmByName(name string) (int64, error) {
	switch name {
	case "es256":
		return cose.AlgorithmES256, nil
	case "es384":
		return cose.AlgorithmES384, nil
	case "es512":
		return cose.AlgorithmES512, nil
	case "eddsa":
		return cose.AlgorithmEdDSA, nil
	default:
		return 0, fmt.Errorf("unsupported signing algorithm %q (want es256, es384, es512, eddsa)", name)
	}
}

func runKeygenSign(opts *keygenSignOptions) error {
	algorithm, err := algorithmByName(opts.algorithm)
	if err != nil {
		return err
	}

	if opts.kid == "" {
		opts.kid, err = config.GenerateKeyID()
		if err != nil {
			return fmt.Errorf("failed to generate kid: %w", err)
		}
	}

	if verbose {
		log.WithField("algorithm", opts.algorithm).Debug("generating signing key pair")
	}

	var privatePEM, publicPEM string
	switch algorithm {
	case cose.AlgorithmEdDSA:
		pub, priv, err := softkeys.GenerateEd25519KeyPair()
		if err != nil {
			return fmt.Errorf("failed to generate Ed25519 key pair: %w", err)
		}
		privatePEM, err = softkeys.ExportPrivateKeyToPEM(priv)
		if err != nil {
			return err
		}
		publicPEM, err = softkeys.ExportPublicKeyToPEM(pub)
		if err != nil {
			return err
		}
	default:
		priv, err := softkeys.GenerateECDSAKeyPair(algorithm)
		if err != nil {
			return fmt.Errorf("failed to generate ECDSA key pair: %w", err)
		}
		privatePEM, err = softkeys.ExportPrivateKeyToPEM(priv)
		if err != nil {
			return err
		}
		publicPEM, err = softkeys.ExportPublicKeyToPEM(&priv.PublicKey)
		if err != nil {
			return err
		}
	}

	if err := os.WriteFile(opts.privateKeyPath, []byte(privatePEM), 0600); err != nil {
		return fmt.Errorf("failed to write private key: %w", err)
	}
	if err := os.WriteFile(opts.publicKeyPath, []byte(publicPEM), 0644); err != nil {
		return fmt.Errorf("failed to write public key: %w", err)
	}

	if opts.storePath != "" {
		if err := storeGeneratedKey(opts.storePath, keystore.Key{
			KID:           opts.kid,
			Algorithm:     algorithm,
			Purpose:       keystore.PurposeSign,
			PublicKeyPEM:  publicPEM,
			PrivateKeyPEM: privatePEM,
		}); err != nil {
			return fmt.Errorf("failed to store signing key: %w", err)
		}
	}

	fmt.Printf("Key pair generated\n")
	fmt.Printf("  Algorithm:   %s\n", opts.algorithm)
	fmt.Printf("  Key ID:      %s\n", opts.kid)
	fmt.Printf("  Private key: %s\n", opts.privateKeyPath)
	fmt.Printf("  Public key:  %s\n", opts.publicKeyPath)
	if opts.storePath != "" {
		fmt.Printf("  Key store:   %s\n", opts.storePath)
	}

	return nil
}

// storeGeneratedKey opens dbPath (initializing its schema if needed) and
// saves key, so a later encode/decode invocation can resolve it by kid
// instead of re-reading PEM files.
func storeGeneratedKey(dbPath string, key keystore.Key) error {
	db, err := keystore.OpenDatabase(keystore.DatabaseOptions{Path: dbPath, EnableWAL: true})
	if err != nil {
		return err
	}
	defer keystore.CloseDatabase(db)
	return keystore.SaveKey(db, key)
}

type keygenEncryptOptions struct {
	algorithm string
	keyPath   string
	kid       string
	storePath string
}

// NewKeygenEncryptCommand creates the keygen encrypt command.
func NewKeygenEncryptCommand() *cobra.Command {
	opts := &keygenEncryptOptions{
		algorithm: "a256gcm",
		keyPath:   "encrypt_key.bin",
	}

	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Generate a raw AES-GCM key",
		Long: `Generate a raw AES-GCM key for Encrypt0-wrapping Claim169 credentials.

Supported algorithms: a128gcm, a192gcm, a256gcm (default).

Example:
  claim169 keygen encrypt --algorithm a256gcm --key encrypt.bin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeygenEncrypt(opts)
		},
	}

	cmd.Flags().StringVar(&opts.algorithm, "algorithm", opts.algorithm, "AEAD algorithm: a128gcm, a192gcm, a256gcm")
	cmd.Flags().StringVar(&opts.keyPath, "key", opts.keyPath, "path to save the raw key bytes")
	cmd.Flags().StringVar(&opts.kid, "kid", "", "key identifier (default: randomly generated)")
	cmd.Flags().StringVar(&opts.storePath, "store", "", "also save the key into this SQLite key store, addressed by kid")

	return cmd
}

func aesKeySizeByName(name string) (int, error) {
	switch name {
	case "a128gcm":
		return 16, nil
	case "a192gcm":
		return 24, nil
	case "a256gcm":
		return 32, nil
	default:
		return 0, fmt.Errorf("unsupported AEAD algorithm %q (want a128gcm, a192gcm, a256gcm)", name)
	}
}

func runKeygenEncrypt(opts *keygenEncryptOptions) error {
	size, err := aesKeySizeByName(opts.algorithm)
	if err != nil {
		return err
	}

	key := make([]byte, size)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}

	if err := os.WriteFile(opts.keyPath, key, 0600); err != nil {
		return fmt.Errorf("failed to write key: %w", err)
	}

	if opts.kid == "" {
		var err error
		opts.kid, err = config.GenerateKeyID()
		if err != nil {
			return fmt.Errorf("failed to generate kid: %w", err)
		}
	}

	algorithm, _ := algorithmByEncryptName(opts.algorithm)
	if opts.storePath != "" {
		if err := storeGeneratedKey(opts.storePath, keystore.Key{
			KID:           opts.kid,
			Algorithm:     algorithm,
			Purpose:       keystore.PurposeEncrypt,
			PrivateKeyPEM: base64.StdEncoding.EncodeToString(key),
		}); err != nil {
			return fmt.Errorf("failed to store encryption key: %w", err)
		}
	}

	fmt.Printf("AES-GCM key generated\n")
	fmt.Printf("  Algorithm: %s\n", opts.algorithm)
	fmt.Printf("  Key ID:    %s\n", opts.kid)
	fmt.Printf("  Key:       %s (%d bytes)\n", opts.keyPath, size)
	if opts.storePath != "" {
		fmt.Printf("  Key store: %s\n", opts.storePath)
	}

	return nil
}
