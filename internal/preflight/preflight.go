package preflight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"titledb/internal/config"
	"titledb/internal/services"
)

// ErrFailed marks a run stopped by failed preflight checks.
var ErrFailed = errors.New("preflight failed")

// Names of the local checks.
const (
	NameDataDir     = "Data directory"
	NameCertificate = "Client certificate"
	NamePassphrase  = "Certificate passphrase"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Local runs the checks that need no network: the data directory and both
// credential files.
func Local(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	return []Result{
		CheckDirectoryAccess(NameDataDir, cfg.Paths.DataDir),
		CheckFileReadable(NameCertificate, cfg.Credentials.CertPath),
		CheckFileReadable(NamePassphrase, cfg.Credentials.PassPath),
	}
}

// RunAll executes Local, decodes the credential, and probes every endpoint
// with client.
func RunAll(ctx context.Context, cfg *config.Config, client services.Doer) []Result {
	if cfg == nil {
		return nil
	}
	results := Local(cfg)
	// Decoding needs both files.
	if passed(results, NameCertificate) && passed(results, NamePassphrase) {
		results = append(results, CheckCredential(cfg.Credentials.CertPath, cfg.Credentials.PassPath))
	}
	return append(results, CheckEndpointsFromConfig(ctx, cfg, client)...)
}

func passed(results []Result, name string) bool {
	for _, r := range results {
		if r.Name == name {
			return r.Passed
		}
	}
	return false
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// Err summarizes failed results as one error wrapping ErrFailed, or nil.
func Err(results []Result) error {
	failed := Failed(results)
	if len(failed) == 0 {
		return nil
	}
	parts := make([]string, 0, len(failed))
	for _, r := range failed {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	return fmt.Errorf("%w: %s", ErrFailed, strings.Join(parts, "; "))
}
