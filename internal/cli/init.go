package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mosip/claim169-go/internal/keystore"
)

type initOptions struct {
	dir    string
	dbPath string
	force  bool
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a claim169 working directory",
		Long: `Initialize a claim169 working directory.

This command creates:
  - A SQLite key store for signing/encryption keys generated by "keygen"
  - A configuration file (claim169.yaml) with decode/encode defaults

Example:
  claim169 init --dir ./demo`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts)
		},
	}

	cmd.Flags().StringVar(&opts.dir, "dir", ".", "directory to initialize")
	cmd.Flags().StringVar(&opts.dbPath, "db", "claim169.db", "path to SQLite key store file")
	cmd.Flags().BoolVar(&opts.force, "force", false, "overwrite existing files")

	return cmd
}

func runInit(opts *initOptions) error {
	if err := os.MkdirAll(opts.dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	dbPath := filepath.Join(opts.dir, opts.dbPath)
	if _, err := os.Stat(dbPath); err == nil && !opts.force {
		return fmt.Errorf("working directory already initialized (use --force to overwrite)")
	}

	if verbose {
		log.WithField("path", dbPath).Debug("initializing key store")
	}
	db, err := keystore.OpenDatabase(keystore.DatabaseOptions{
		Path:      dbPath,
		EnableWAL: true,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize key store: %w", err)
	}
	keystore.CloseDatabase(db)

	if verbose {
		log.Debug("writing configuration file")
	}
	configYAML := fmt.Sprintf(`# claim169 CLI configuration

keystore:
  path: %s
  enable_wal: true

decode:
  clock_skew_seconds: 0
  max_decompressed_bytes: 1048576
  allow_brotli: false

encode:
  compression_mode: zlib
`, opts.dbPath)

	configPath := filepath.Join(opts.dir, "claim169.yaml")
	if err := os.WriteFile(configPath, []byte(configYAML), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Println("claim169 working directory initialized")
	fmt.Printf("  Key store: %s\n", dbPath)
	fmt.Printf("  Config:    %s\n", configPath)
	fmt.Printf("\nNext, generate a signing key:\n")
	fmt.Printf("  claim169 keygen sign --private-key %s/issuer.pem --public-key %s/issuer-pub.pem\n", opts.dir, opts.dir)

	return nil
}
