// Package credential loads the eShop client certificate.
//
// The certificate ships as a PKCS#12 bundle next to a text file whose first
// line is the bundle passphrase.
package credential

import (
	"bufio"
	"bytes"
	"crypto/tls"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"software.sslmate.com/src/go-pkcs12"

	"titledb/internal/services"
)

// ErrMissingCredential reports an absent certificate or passphrase file.
var ErrMissingCredential = errors.New("client credential missing")

// Load decodes the bundle at certPath with the passphrase stored in passPath.
func Load(certPath, passPath string) (tls.Certificate, error) {
	data, err := readFile(certPath)
	if err != nil {
		return tls.Certificate{}, err
	}
	passphrase, err := ReadPassphrase(passPath)
	if err != nil {
		return tls.Certificate{}, err
	}
	cert, err := Decode(data, passphrase)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("%s: %w", certPath, err)
	}
	return cert, nil
}

// ReadPassphrase returns the first line of path, trimmed.
func ReadPassphrase(path string) (string, error) {
	data, err := readFile(path)
	if err != nil {
		return "", err
	}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", services.Wrap(services.ErrConfiguration, "credential", "read passphrase", path, err)
		}
		return "", services.Wrap(services.ErrConfiguration, "credential", "read passphrase", path+" is empty", nil)
	}
	return strings.TrimSpace(scanner.Text()), nil
}

// Decode unlocks a PKCS#12 bundle. Any CA certificates in the bundle are
// appended to the chain.
func Decode(data []byte, passphrase string) (tls.Certificate, error) {
	key, leaf, chain, err := pkcs12.DecodeChain(data, passphrase)
	if err != nil {
		return tls.Certificate{}, services.Wrap(services.ErrConfiguration, "credential", "decode", "pkcs12 bundle", err)
	}
	cert := tls.Certificate{
		Certificate: [][]byte{leaf.Raw},
		PrivateKey:  key,
		Leaf:        leaf,
	}
	for _, ca := range chain {
		cert.Certificate = append(cert.Certificate, ca.Raw)
	}
	return cert, nil
}

// TLSConfig presents cert to servers. Server certificates are only checked
// when verify is set.
func TLSConfig(cert tls.Certificate, verify bool) *tls.Config {
	cfg := ServerTLSConfig(verify)
	cfg.Certificates = []tls.Certificate{cert}
	return cfg
}

// ServerTLSConfig is the configuration for endpoints that need no client
// certificate.
func ServerTLSConfig(verify bool) *tls.Config {
	return &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: !verify, //nolint:gosec // eShop servers use a private CA
	}
}

func readFile(path string) ([]byte, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: path not configured", ErrMissingCredential)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingCredential, path)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "credential", "read", path, err)
	}
	return data, nil
}
