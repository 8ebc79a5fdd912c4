// Package keystore provides SQLite-backed storage for claim169 signing and
// encryption keys, used by the keygen/encode/decode CLI commands to avoid
// re-keying PEM files on every invocation.
package keystore

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DatabaseOptions holds configuration for opening a database.
type DatabaseOptions struct {
	Path        string
	EnableWAL   bool
	BusyTimeout int // milliseconds
}

// OpenDatabase opens a SQLite database connection with the specified options
// and initializes the schema if needed.
func OpenDatabase(options DatabaseOptions) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", options.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if options.EnableWAL {
		if err := enableWAL(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL: %w", err)
		}
	}

	if options.BusyTimeout > 0 {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", options.BusyTimeout)); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set busy timeout: %w", err)
		}
	}

	return db, nil
}

// initializeSchema creates all tables and initial data.
func initializeSchema(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var currentVersion sql.NullString
	err := db.QueryRow("SELECT version FROM schema_version ORDER BY applied_at DESC LIMIT 1").Scan(&currentVersion)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to check schema version: %w", err)
	}

	if currentVersion.Valid && currentVersion.String == "1.0.0" {
		return nil
	}

	// signing_keys: key material for credential issuance/verification,
	// addressed by the kid that ends up in COSE's unprotected header.
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS signing_keys (
			kid TEXT PRIMARY KEY,
			algorithm INTEGER NOT NULL,
			purpose TEXT NOT NULL,
			public_key_pem TEXT,
			private_key_pem TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			active BOOLEAN DEFAULT TRUE
		)
	`); err != nil {
		return fmt.Errorf("failed to create signing_keys table: %w", err)
	}

	if _, err := db.Exec("CREATE INDEX IF NOT EXISTS idx_signing_keys_purpose ON signing_keys(purpose)"); err != nil {
		return fmt.Errorf("failed to create signing_keys index: %w", err)
	}

	// service_config: CLI-wide settings, read and written via GetConfig/
	// SetConfig. The CLI commands do not consult it; their flags carry
	// their own defaults.
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS service_config (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create service_config table: %w", err)
	}

	configDefaults := map[string]string{
		"compression_mode":        "zlib",
		"clock_skew_seconds":      "0",
		"max_decompressed_bytes":  "1048576",
		"allow_brotli":            "false",
	}

	stmt, err := db.Prepare("INSERT OR IGNORE INTO service_config (key, value) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare config insert: %w", err)
	}
	defer stmt.Close()

	for key, value := range configDefaults {
		if _, err := stmt.Exec(key, value); err != nil {
			return fmt.Errorf("failed to insert config %s: %w", key, err)
		}
	}

	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES ('1.0.0')"); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	return nil
}

// enableWAL enables Write-Ahead Logging mode for concurrent read/write access.
func enableWAL(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	return nil
}

// CloseDatabase closes the database connection.
func CloseDatabase(db *sql.DB) error {
	return db.Close()
}

// Purpose values for the signing_keys table.
const (
	PurposeSign   = "sign"
	PurposeEncrypt = "encrypt"
)

// Key is a stored key record.
type Key struct {
	KID           string
	Algorithm     int64
	Purpose       string
	PublicKeyPEM  string
	PrivateKeyPEM string
	Active        bool
}

// SaveKey inserts or replaces a key record by kid.
func SaveKey(db *sql.DB, key Key) error {
	_, err := db.Exec(`
		INSERT INTO signing_keys (kid, algorithm, purpose, public_key_pem, private_key_pem, active)
		VALUES (?, ?, ?, ?, ?, TRUE)
		ON CONFLICT(kid) DO UPDATE SET
			algorithm = excluded.algorithm,
			purpose = excluded.purpose,
			public_key_pem = excluded.public_key_pem,
			private_key_pem = excluded.private_key_pem,
			active = TRUE
	`, key.KID, key.Algorithm, key.Purpose, key.PublicKeyPEM, key.PrivateKeyPEM)
	if err != nil {
		return fmt.Errorf("keystore: save key %s: %w", key.KID, err)
	}
	return nil
}

// LoadKey fetches a key record by kid. It returns sql.ErrNoRows if absent.
func LoadKey(db *sql.DB, kid string) (Key, error) {
	var key Key
	row := db.QueryRow(`
		SELECT kid, algorithm, purpose, public_key_pem, private_key_pem, active
		FROM signing_keys WHERE kid = ?
	`, kid)
	var publicPEM, privatePEM sql.NullString
	if err := row.Scan(&key.KID, &key.Algorithm, &key.Purpose, &publicPEM, &privatePEM, &key.Active); err != nil {
		return Key{}, err
	}
	key.PublicKeyPEM = publicPEM.String
	key.PrivateKeyPEM = privatePEM.String
	return key, nil
}

// ListKeys returns all active keys for the given purpose.
func ListKeys(db *sql.DB, purpose string) ([]Key, error) {
	rows, err := db.Query(`
		SELECT kid, algorithm, purpose, public_key_pem, private_key_pem, active
		FROM signing_keys WHERE purpose = ? AND active = TRUE
		ORDER BY created_at DESC
	`, purpose)
	if err != nil {
		return nil, fmt.Errorf("keystore: list keys: %w", err)
	}
	defer rows.Close()

	var keys []Key
	for rows.Next() {
		var key Key
		var publicPEM, privatePEM sql.NullString
		if err := rows.Scan(&key.KID, &key.Algorithm, &key.Purpose, &publicPEM, &privatePEM, &key.Active); err != nil {
			return nil, fmt.Errorf("keystore: scan key: %w", err)
		}
		key.PublicKeyPEM = publicPEM.String
		key.PrivateKeyPEM = privatePEM.String
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// DeactivateKey marks a key inactive without deleting it, so past-issued
// credentials signed with it remain inspectable via its retained public key.
func DeactivateKey(db *sql.DB, kid string) error {
	res, err := db.Exec("UPDATE signing_keys SET active = FALSE WHERE kid = ?", kid)
	if err != nil {
		return fmt.Errorf("keystore: deactivate key %s: %w", kid, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("keystore: deactivate key %s: %w", kid, err)
	}
	if n == 0 {
		return fmt.Errorf("keystore: no such key %s", kid)
	}
	return nil
}

// GetConfig reads a service_config value, returning fallback if unset.
func GetConfig(db *sql.DB, key, fallback string) (string, error) {
	var value string
	err := db.QueryRow("SELECT value FROM service_config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("keystore: get config %s: %w", key, err)
	}
	return value, nil
}

// SetConfig upserts a service_config value.
func SetConfig(db *sql.DB, key, value string) error {
	_, err := db.Exec(`
		INSERT INTO service_config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("keystore: set config %s: %w", key, err)
	}
	return nil
}
