package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mosip/claim169-go/claim169"
	"github.com/mosip/claim169-go/cose"
	"github.com/mosip/claim169-go/pipeline"
)

type encodeOptions struct {
	inPath  string
	outPath string

	allowUnsigned  bool
	signAlgorithm  string
	privateKeyPath string
	signKeyID      string

	encryptAlgorithm string
	encryptKeyPath   string
	encryptKeyID     string

	storePath string

	compression string
	allowBrotli bool
}

// NewEncodeCommand creates the encode command.
func NewEncodeCommand() *cobra.Command {
	opts := &encodeOptions{
		signAlgorithm: "eddsa",
		compression:   "zlib",
	}

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a claim document into a QR-ready credential string",
		Long: `Encode a JSON claim document into a Claim169 credential.

The input is a flat JSON document (see "claim169 decode" for its shape).
Example:
  claim169 encode --in claim.json --private-key issuer.pem --algorithm eddsa`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(opts)
		},
	}

	cmd.Flags().StringVar(&opts.inPath, "in", "", "path to the claim JSON document (required)")
	cmd.Flags().StringVar(&opts.outPath, "out", "", "path to write the credential text (default stdout)")
	cmd.Flags().BoolVar(&opts.allowUnsigned, "allow-unsigned", false, "permit an unsigned credential")
	cmd.Flags().StringVar(&opts.signAlgorithm, "algorithm", opts.signAlgorithm, "signing algorithm: es256, es384, es512, eddsa")
	cmd.Flags().StringVar(&opts.privateKeyPath, "private-key", "", "path to the signer's private key (PEM)")
	cmd.Flags().StringVar(&opts.signKeyID, "kid", "", "key identifier placed in the signed envelope")
	cmd.Flags().StringVar(&opts.encryptAlgorithm, "encrypt-algorithm", "", "AEAD algorithm: a128gcm, a192gcm, a256gcm (enables Encrypt0 wrapping)")
	cmd.Flags().StringVar(&opts.encryptKeyPath, "encrypt-key", "", "path to the raw AES key bytes")
	cmd.Flags().StringVar(&opts.encryptKeyID, "encrypt-kid", "", "key identifier placed in the Encrypt0 envelope")
	cmd.Flags().StringVar(&opts.storePath, "store", "", "SQLite key store to resolve --kid/--encrypt-kid from, instead of --private-key/--encrypt-key")
	cmd.Flags().StringVar(&opts.compression, "compression", opts.compression, "compression mode: none, zlib, brotli, adaptive")
	cmd.Flags().BoolVar(&opts.allowBrotli, "allow-brotli", false, "permit brotli in adaptive compression")

	cmd.MarkFlagRequired("in")

	return cmd
}

func compressionModeByName(name string) (pipeline.CompressionMode, error) {
	switch name {
	case "none":
		return pipeline.CompressionNone, nil
	case "zlib":
		return pipeline.CompressionZlib, nil
	case "brotli":
		return pipeline.CompressionBrotli, nil
	case "adaptive":
		return pipeline.CompressionAdaptive, nil
	default:
		return 0, fmt.Errorf("unsupported compression mode %q (want none, zlib, brotli, adaptive)", name)
	}
}

func runEncode(opts *encodeOptions) error {
	doc, err := readClaimDocument(opts.inPath)
	if err != nil {
		return err
	}

	compressionMode, err := compressionModeByName(opts.compression)
	if err != nil {
		return err
	}

	encoder := claim169.NewEncoder(doc.toClaim(), doc.toMeta()).
		CompressWith(compressionMode)
	if opts.allowBrotli {
		encoder = encoder.AllowBrotli()
	}
	if opts.allowUnsigned {
		encoder = encoder.AllowUnsigned()
	}

	if opts.privateKeyPath != "" || (opts.storePath != "" && opts.signKeyID != "") {
		algorithm, err := algorithmByName(opts.signAlgorithm)
		if err != nil {
			return err
		}
		pemData, err := resolveSigningKeyPEM(opts.storePath, opts.privateKeyPath, opts.signKeyID)
		if err != nil {
			return err
		}
		var kid []byte
		if opts.signKeyID != "" {
			kid = []byte(opts.signKeyID)
		}
		encoder = encoder.SignWithPEM(algorithm, pemData, kid)
	}

	if opts.encryptAlgorithm != "" {
		size, err := aesKeySizeByName(opts.encryptAlgorithm)
		if err != nil {
			return err
		}
		keyBytes, err := resolveEncryptKeyBytes(opts.storePath, opts.encryptKeyPath, opts.encryptKeyID)
		if err != nil {
			return err
		}
		if len(keyBytes) != size {
			return fmt.Errorf("encryption key is %d bytes, want %d", len(keyBytes), size)
		}
		algorithm, _ := algorithmByEncryptName(opts.encryptAlgorithm)
		encoder = encoder.EncryptWithAESKey(algorithm, keyBytes, []byte(opts.encryptKeyID))
	}

	if verbose {
		log.WithField("algorithm", opts.signAlgorithm).Debug("encoding credential")
	}

	result, err := encoder.Encode()
	if err != nil {
		return err
	}

	if opts.outPath == "" {
		fmt.Println(result.QRText)
		return nil
	}
	return os.WriteFile(opts.outPath, []byte(result.QRText), 0644)
}

func algorithmByEncryptName(name string) (int64, error) {
	switch name {
	case "a128gcm":
		return cose.AlgorithmA128GCM, nil
	case "a192gcm":
		return cose.AlgorithmA192GCM, nil
	case "a256gcm":
		return cose.AlgorithmA256GCM, nil
	default:
		return 0, fmt.Errorf("unsupported AEAD algorithm %q", name)
	}
}
