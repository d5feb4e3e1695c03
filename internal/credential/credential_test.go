package credential_test

import (
	"errors"
	"path/filepath"
	"testing"

	"titledb/internal/credential"
	"titledb/internal/services"
	"titledb/internal/testsupport"
)

func TestLoadDecodesBundle(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "ctr-common-1.p12")
	passPath := filepath.Join(dir, "ctr-common-1.pass")
	testsupport.WriteCredential(t, certPath, passPath, "hunter2")

	cert, err := credential.Load(certPath, passPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cert.Leaf == nil || cert.Leaf.Subject.CommonName != "CTR Common Prod 1" {
		t.Fatalf("unexpected leaf: %+v", cert.Leaf)
	}
	if len(cert.Certificate) != 1 || cert.PrivateKey == nil {
		t.Fatalf("incomplete certificate: %d certs, key %v", len(cert.Certificate), cert.PrivateKey != nil)
	}

	cfg := credential.TLSConfig(cert, false)
	if !cfg.InsecureSkipVerify || len(cfg.Certificates) != 1 {
		t.Fatalf("unexpected tls config: %+v", cfg)
	}
	if credential.TLSConfig(cert, true).InsecureSkipVerify {
		t.Fatal("verify=true must check server certificates")
	}
}

func TestLoadMissingFiles(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "client.p12")
	passPath := filepath.Join(dir, "client.pass")

	_, err := credential.Load(certPath, passPath)
	if !errors.Is(err, credential.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}

	testsupport.WriteFile(t, certPath, "bundle")
	_, err = credential.Load(certPath, passPath)
	if !errors.Is(err, credential.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential for pass file, got %v", err)
	}

	_, err = credential.Load("", passPath)
	if !errors.Is(err, credential.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential for empty path, got %v", err)
	}
}

func TestLoadWrongPassphrase(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "client.p12")
	passPath := filepath.Join(dir, "client.pass")
	testsupport.WriteCredential(t, certPath, passPath, "right")
	testsupport.WriteFile(t, passPath, "wrong\n")

	_, err := credential.Load(certPath, passPath)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestReadPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pass")
	testsupport.WriteFile(t, path, "\tsecret \r\nsecond\n")

	got, err := credential.ReadPassphrase(path)
	if err != nil {
		t.Fatalf("ReadPassphrase: %v", err)
	}
	if got != "secret" {
		t.Fatalf("passphrase = %q, want %q", got, "secret")
	}

	testsupport.WriteFile(t, path, "")
	if _, err := credential.ReadPassphrase(path); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for empty file, got %v", err)
	}
}
