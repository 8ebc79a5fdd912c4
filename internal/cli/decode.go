package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mosip/claim169-go/claim169"
	"github.com/mosip/claim169-go/pipeline"
)

type decodeOptions struct {
	inPath string

	allowUnverified  bool
	publicKeyPath    string
	verifyKeyID      string
	verifyAlgorithm  string
	decryptAlgorithm string
	decryptKeyPath   string
	decryptKeyID     string

	storePath string

	skipBiometrics        bool
	withoutTimestampCheck bool
	clockSkewSeconds      int64
	maxDecompressedBytes  int
	allowBrotli           bool
}

// NewDecodeCommand creates the decode command.
func NewDecodeCommand() *cobra.Command {
	opts := &decodeOptions{
		verifyAlgorithm:      "eddsa",
		maxDecompressedBytes: pipeline.DefaultMaxDecompressedBytes,
	}

	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode and verify a Claim169 credential",
		Long: `Decode a Claim169 credential string back into a JSON claim document.

Example:
  claim169 decode --in credential.txt --public-key issuer-pub.pem`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(opts)
		},
	}

	cmd.Flags().StringVar(&opts.inPath, "in", "", "path to the credential text (required)")
	cmd.Flags().BoolVar(&opts.allowUnverified, "allow-unverified", false, "accept a credential with no verifier configured")
	cmd.Flags().StringVar(&opts.publicKeyPath, "public-key", "", "path to the signer's public key (PEM)")
	cmd.Flags().StringVar(&opts.verifyKeyID, "kid", "", "key identifier to resolve from --store instead of --public-key")
	cmd.Flags().StringVar(&opts.verifyAlgorithm, "algorithm", opts.verifyAlgorithm, "verification algorithm: es256, es384, es512, eddsa")
	cmd.Flags().StringVar(&opts.decryptAlgorithm, "decrypt-algorithm", "", "AEAD algorithm: a128gcm, a192gcm, a256gcm (enables Encrypt0 unwrapping)")
	cmd.Flags().StringVar(&opts.decryptKeyPath, "decrypt-key", "", "path to the raw AES key bytes")
	cmd.Flags().StringVar(&opts.decryptKeyID, "decrypt-kid", "", "key identifier to resolve from --store instead of --decrypt-key")
	cmd.Flags().StringVar(&opts.storePath, "store", "", "SQLite key store to resolve --kid/--decrypt-kid from")
	cmd.Flags().BoolVar(&opts.skipBiometrics, "skip-biometrics", false, "drop biometric slots from the decoded claim")
	cmd.Flags().BoolVar(&opts.withoutTimestampCheck, "no-timestamp-check", false, "disable expiry/not-before validation")
	cmd.Flags().Int64Var(&opts.clockSkewSeconds, "clock-skew", 0, "clock skew tolerance in seconds")
	cmd.Flags().IntVar(&opts.maxDecompressedBytes, "max-decompressed-bytes", opts.maxDecompressedBytes, "decompression bomb-guard limit")
	cmd.Flags().BoolVar(&opts.allowBrotli, "allow-brotli", false, "permit brotli during decompression detection")

	cmd.MarkFlagRequired("in")

	return cmd
}

func runDecode(opts *decodeOptions) error {
	credential, err := os.ReadFile(opts.inPath)
	if err != nil {
		return fmt.Errorf("failed to read credential: %w", err)
	}

	decoder := claim169.NewDecoder(string(credential)).
		MaxDecompressedBytes(opts.maxDecompressedBytes).
		ClockSkewTolerance(opts.clockSkewSeconds)
	if opts.allowUnverified {
		decoder = decoder.AllowUnverified()
	}
	if opts.skipBiometrics {
		decoder = decoder.SkipBiometrics()
	}
	if opts.withoutTimestampCheck {
		decoder = decoder.WithoutTimestampValidation()
	}
	if opts.allowBrotli {
		decoder = decoder.AllowBrotli()
	}

	if opts.publicKeyPath != "" || (opts.storePath != "" && opts.verifyKeyID != "") {
		algorithm, err := algorithmByName(opts.verifyAlgorithm)
		if err != nil {
			return err
		}
		pemData, err := resolveVerifierKeyPEM(opts.storePath, opts.publicKeyPath, opts.verifyKeyID)
		if err != nil {
			return err
		}
		decoder = decoder.VerifyWithPEM(algorithm, pemData)
	}

	if opts.decryptAlgorithm != "" {
		size, err := aesKeySizeByName(opts.decryptAlgorithm)
		if err != nil {
			return err
		}
		keyBytes, err := resolveEncryptKeyBytes(opts.storePath, opts.decryptKeyPath, opts.decryptKeyID)
		if err != nil {
			return err
		}
		if len(keyBytes) != size {
			return fmt.Errorf("decryption key is %d bytes, want %d", len(keyBytes), size)
		}
		algorithm, _ := algorithmByEncryptName(opts.decryptAlgorithm)
		decoder = decoder.DecryptWithAESKey(algorithm, keyBytes)
	}

	if verbose {
		log.Debug("decoding credential")
	}

	result, err := decoder.Decode()
	if err != nil {
		return err
	}

	out := decodedDocument{
		Claim:  fromClaim(result.Claim, result.Meta),
		Status: result.Status.String(),
	}
	out.Warnings.UnknownFields = result.Warnings.UnknownFields
	out.Warnings.BiometricsSkipped = result.Warnings.BiometricsSkipped
	out.Warnings.TimestampValidationSkipped = result.Warnings.TimestampValidationSkipped
	out.Warnings.NonStandardCompression = result.Warnings.NonStandardCompression

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	fmt.Println(string(encoded))

	return nil
}
