package cli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mosip/claim169-go/internal/cli"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	privPath := filepath.Join(tmpDir, "priv.pem")
	pubPath := filepath.Join(tmpDir, "pub.pem")
	keygenCmd := cli.NewRootCommand("test", "abc123", "2026-01-01")
	keygenCmd.SetArgs([]string{"keygen", "sign", "--algorithm", "es256", "--private-key", privPath, "--public-key", pubPath})
	if err := keygenCmd.Execute(); err != nil {
		t.Fatalf("keygen sign: %v", err)
	}

	claimPath := filepath.Join(tmpDir, "claim.json")
	claimJSON := `{"id":"ID-CLI-001","full_name":"CLI Test Person","issuer":"test-issuer"}`
	if err := os.WriteFile(claimPath, []byte(claimJSON), 0644); err != nil {
		t.Fatalf("write claim: %v", err)
	}

	credentialPath := filepath.Join(tmpDir, "credential.txt")
	encodeCmd := cli.NewRootCommand("test", "abc123", "2026-01-01")
	encodeCmd.SetArgs([]string{
		"encode",
		"--in", claimPath,
		"--out", credentialPath,
		"--algorithm", "es256",
		"--private-key", privPath,
	})
	if err := encodeCmd.Execute(); err != nil {
		t.Fatalf("encode: %v", err)
	}

	credential, err := os.ReadFile(credentialPath)
	if err != nil {
		t.Fatalf("read credential: %v", err)
	}
	if len(credential) == 0 {
		t.Fatal("expected non-empty credential")
	}

	inspectCmd := cli.NewRootCommand("test", "abc123", "2026-01-01")
	inspectCmd.SetArgs([]string{"inspect", "--in", credentialPath})
	if err := inspectCmd.Execute(); err != nil {
		t.Fatalf("inspect: %v", err)
	}

	decodeCmd := cli.NewRootCommand("test", "abc123", "2026-01-01")
	decodeCmd.SetArgs([]string{
		"decode",
		"--in", credentialPath,
		"--algorithm", "es256",
		"--public-key", pubPath,
	})
	if err := decodeCmd.Execute(); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestEncodeDecodeRoundTripViaKeyStore(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "keys.db")

	keygenCmd := cli.NewRootCommand("test", "abc123", "2026-01-01")
	keygenCmd.SetArgs([]string{
		"keygen", "sign",
		"--algorithm", "es256",
		"--kid", "issuer-1",
		"--private-key", filepath.Join(tmpDir, "priv.pem"),
		"--public-key", filepath.Join(tmpDir, "pub.pem"),
		"--store", dbPath,
	})
	if err := keygenCmd.Execute(); err != nil {
		t.Fatalf("keygen sign: %v", err)
	}

	claimPath := filepath.Join(tmpDir, "claim.json")
	if err := os.WriteFile(claimPath, []byte(`{"id":"ID-STORE-001"}`), 0644); err != nil {
		t.Fatalf("write claim: %v", err)
	}

	credentialPath := filepath.Join(tmpDir, "credential.txt")
	encodeCmd := cli.NewRootCommand("test", "abc123", "2026-01-01")
	encodeCmd.SetArgs([]string{
		"encode",
		"--in", claimPath,
		"--out", credentialPath,
		"--algorithm", "es256",
		"--kid", "issuer-1",
		"--store", dbPath,
	})
	if err := encodeCmd.Execute(); err != nil {
		t.Fatalf("encode via key store: %v", err)
	}

	decodeCmd := cli.NewRootCommand("test", "abc123", "2026-01-01")
	decodeCmd.SetArgs([]string{
		"decode",
		"--in", credentialPath,
		"--algorithm", "es256",
		"--kid", "issuer-1",
		"--store", dbPath,
	})
	if err := decodeCmd.Execute(); err != nil {
		t.Fatalf("decode via key store: %v", err)
	}
}

func TestDecodeRejectsWrongPublicKey(t *testing.T) {
	tmpDir := t.TempDir()

	privPath := filepath.Join(tmpDir, "priv.pem")
	pubPath := filepath.Join(tmpDir, "pub.pem")
	otherPubPath := filepath.Join(tmpDir, "other-pub.pem")

	keygenCmd := cli.NewRootCommand("test", "abc123", "2026-01-01")
	keygenCmd.SetArgs([]string{"keygen", "sign", "--private-key", privPath, "--public-key", pubPath})
	if err := keygenCmd.Execute(); err != nil {
		t.Fatalf("keygen sign: %v", err)
	}
	otherKeygenCmd := cli.NewRootCommand("test", "abc123", "2026-01-01")
	otherKeygenCmd.SetArgs([]string{"keygen", "sign", "--private-key", filepath.Join(tmpDir, "other-priv.pem"), "--public-key", otherPubPath})
	if err := otherKeygenCmd.Execute(); err != nil {
		t.Fatalf("keygen sign (other): %v", err)
	}

	claimPath := filepath.Join(tmpDir, "claim.json")
	if err := os.WriteFile(claimPath, []byte(`{"id":"X"}`), 0644); err != nil {
		t.Fatalf("write claim: %v", err)
	}
	credentialPath := filepath.Join(tmpDir, "credential.txt")

	encodeCmd := cli.NewRootCommand("test", "abc123", "2026-01-01")
	encodeCmd.SetArgs([]string{"encode", "--in", claimPath, "--out", credentialPath, "--private-key", privPath})
	if err := encodeCmd.Execute(); err != nil {
		t.Fatalf("encode: %v", err)
	}

	decodeCmd := cli.NewRootCommand("test", "abc123", "2026-01-01")
	decodeCmd.SetArgs([]string{"decode", "--in", credentialPath, "--public-key", otherPubPath})
	if err := decodeCmd.Execute(); err == nil {
		t.Error("expected decode to fail verifying with the wrong public key")
	}
}

func TestEncodeRequiresAllowUnsignedWithoutKey(t *testing.T) {
	tmpDir := t.TempDir()
	claimPath := filepath.Join(tmpDir, "claim.json")
	if err := os.WriteFile(claimPath, []byte(`{"id":"X"}`), 0644); err != nil {
		t.Fatalf("write claim: %v", err)
	}

	cmd := cli.NewRootCommand("test", "abc123", "2026-01-01")
	cmd.SetArgs([]string{"encode", "--in", claimPath, "--out", filepath.Join(tmpDir, "out.txt")})

	if err := cmd.Execute(); err == nil {
		t.Error("expected error encoding without a signer and without --allow-unsigned")
	}
}

func TestEncodeAllowsUnsigned(t *testing.T) {
	tmpDir := t.TempDir()
	claimPath := filepath.Join(tmpDir, "claim.json")
	if err := os.WriteFile(claimPath, []byte(`{"id":"X"}`), 0644); err != nil {
		t.Fatalf("write claim: %v", err)
	}
	outPath := filepath.Join(tmpDir, "out.txt")

	cmd := cli.NewRootCommand("test", "abc123", "2026-01-01")
	cmd.SetArgs([]string{"encode", "--in", claimPath, "--out", outPath, "--allow-unsigned"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("encode --allow-unsigned: %v", err)
	}
	if _, err := os.Stat(outPath); err != nil {
		t.Errorf("credential not written: %v", err)
	}
}
