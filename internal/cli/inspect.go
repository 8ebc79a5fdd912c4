package cli

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mosip/claim169-go/claim169"
)

type inspectOptions struct {
	inPath string
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect a credential's outer COSE envelope without verifying it",
		Long: `Print the outer COSE envelope's type, algorithm and key id without
attempting verification or decryption; X.509 header references are not
printed. Useful for
selecting which public key to verify with before calling "decode".

Example:
  claim169 inspect --in credential.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(opts)
		},
	}

	cmd.Flags().StringVar(&opts.inPath, "in", "", "path to the credential text (required)")
	cmd.MarkFlagRequired("in")

	return cmd
}

type inspectDocument struct {
	IsSign1    bool   `json:"is_sign1"`
	IsEncrypt0 bool   `json:"is_encrypt0"`
	Algorithm  int64  `json:"algorithm,omitempty"`
	HasAlg     bool   `json:"has_algorithm"`
	KeyID      string `json:"key_id,omitempty"`
}

func runInspect(opts *inspectOptions) error {
	credential, err := os.ReadFile(opts.inPath)
	if err != nil {
		return fmt.Errorf("failed to read credential: %w", err)
	}

	result, err := claim169.Inspect(string(credential))
	if err != nil {
		return err
	}

	out := inspectDocument{
		IsSign1:    result.IsSign1,
		IsEncrypt0: result.IsEncrypt0,
		Algorithm:  result.Algorithm,
		HasAlg:     result.HasAlg,
	}
	if len(result.KeyID) > 0 {
		out.KeyID = hex.EncodeToString(result.KeyID)
	}

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	fmt.Println(string(encoded))

	return nil
}
