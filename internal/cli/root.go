package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mosip/claim169-go/internal/config"
)

// Global flags
var (
	cfgFile string
	verbose bool
	cfg     *config.Config
	log     = logrus.New()
)

// NewRootCommand creates the root cobra command.
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "claim169",
		Short: "Claim169 offline-verifiable credential CLI",
		Long: `claim169 encodes and decodes MOSIP Claim 169 identity credentials.

This command-line interface provides tools for:
  - Generating signing and encryption key material
  - Encoding a Claim169 record into a QR-ready credential string
  - Decoding and verifying a credential back into a Claim169 record
  - Inspecting a credential's outer COSE envelope without verifying it`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./claim169.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(NewInitCommand())
	rootCmd.AddCommand(NewKeygenCommand())
	rootCmd.AddCommand(NewEncodeCommand())
	rootCmd.AddCommand(NewDecodeCommand())
	rootCmd.AddCommand(NewInspectCommand())

	return rootCmd
}

// initConfig loads configuration from file.
func initConfig() {
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if cfgFile == "" {
		if _, err := os.Stat("claim169.yaml"); err == nil {
			cfgFile = "claim169.yaml"
		} else if _, err := os.Stat("claim169.yml"); err == nil {
			cfgFile = "claim169.yml"
		}
	}

	if cfgFile != "" {
		var err error
		cfg, err = config.LoadConfig(cfgFile)
		if err != nil {
			log.WithError(err).Debug("failed to load config")
		}
	}
}

// GetConfig returns the loaded configuration, or nil if none was found.
func GetConfig() *config.Config {
	return cfg
}
