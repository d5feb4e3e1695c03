package testsupport

import (
	"path/filepath"
	"testing"

	"titledb/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Retries are immediate and the size cache is disabled unless an option
// turns it on.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Credentials.CertPath = filepath.Join(base, "credentials", "client.p12")
	cfgVal.Credentials.PassPath = filepath.Join(base, "credentials", "client.pass")
	cfgVal.Logging.Dir = filepath.Join(base, "logs")
	cfgVal.SizeCache.Enabled = false
	cfgVal.SizeCache.Path = filepath.Join(base, "cache", "sizes.db")
	cfgVal.Retry.MaxAttempts = 2
	cfgVal.Retry.DelaySeconds = 0
	cfgVal.Catalog.Backup = config.PolicyAlways
	cfgVal.Catalog.OverwriteBackup = config.PolicyAlways

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithServer points every eShop endpoint at baseURL.
func WithServer(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Endpoints.Samurai = baseURL
		b.cfg.Endpoints.Ninja = baseURL
		b.cfg.Endpoints.Tagaya = baseURL
		b.cfg.Endpoints.TagayaCTR = baseURL
		b.cfg.Endpoints.CCS = baseURL
	}
}

// WithCredential writes a valid client credential at the configured paths.
func WithCredential() ConfigOption {
	return func(b *configBuilder) {
		WriteCredential(b.t, b.cfg.Credentials.CertPath, b.cfg.Credentials.PassPath, "secret")
	}
}

// WithSizeCache enables the size cache.
func WithSizeCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.SizeCache.Enabled = true
	}
}

// WithRegions restricts the listing crawl.
func WithRegions(regions ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Listing.Regions = regions
	}
}

// WithBackupPolicy sets both catalog backup policies.
func WithBackupPolicy(backup, overwrite string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Catalog.Backup = backup
		b.cfg.Catalog.OverwriteBackup = overwrite
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
