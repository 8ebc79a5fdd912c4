package config

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Config represents the claim169 CLI's persisted configuration: where its
// keystore lives and default codec parameters. The root command loads it,
// but the encode, decode and inspect commands do not read it; their flags
// carry their own defaults.
type Config struct {
	// Keystore configuration
	Keystore KeystoreConfig `yaml:"keystore"`

	// Decode holds decode-time parameters
	Decode DecodeConfig `yaml:"decode"`

	// Encode holds encode-time parameters
	Encode EncodeConfig `yaml:"encode"`
}

// KeystoreConfig represents the SQLite key store location.
type KeystoreConfig struct {
	Path      string `yaml:"path"`
	EnableWAL bool   `yaml:"enable_wal"`
}

// DecodeConfig represents default decode-time parameters.
type DecodeConfig struct {
	ClockSkewSeconds     int64 `yaml:"clock_skew_seconds"`
	MaxDecompressedBytes int   `yaml:"max_decompressed_bytes"`
	AllowBrotli          bool  `yaml:"allow_brotli"`
}

// EncodeConfig represents default encode-time parameters.
type EncodeConfig struct {
	// CompressionMode is one of "none", "zlib", or "brotli".
	CompressionMode string `yaml:"compression_mode"`
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Keystore.Path == "" {
		return fmt.Errorf("keystore path is required")
	}

	if c.Decode.MaxDecompressedBytes <= 0 {
		return fmt.Errorf("decode.max_decompressed_bytes must be positive")
	}

	switch c.Encode.CompressionMode {
	case "none", "zlib", "brotli":
	default:
		return fmt.Errorf("invalid encode.compression_mode: %q", c.Encode.CompressionMode)
	}

	return nil
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		Keystore: KeystoreConfig{
			Path:      "./demo/claim169.db",
			EnableWAL: true,
		},
		Decode: DecodeConfig{
			ClockSkewSeconds:     0,
			MaxDecompressedBytes: 1 << 20,
			AllowBrotli:          false,
		},
		Encode: EncodeConfig{
			CompressionMode: "zlib",
		},
	}
}

// GenerateKeyID returns a fresh random key identifier, used by the
// keygen command when the caller doesn't supply one with --kid.
func GenerateKeyID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate key id: %w", err)
	}
	return id.String(), nil
}

// SaveConfig saves configuration to a YAML file.
func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
