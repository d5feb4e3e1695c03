package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// CursorFileName is the incremental update cursor stored in the data directory.
const CursorFileName = "wiiuUpdate.ver"

// Paths contains catalog and lock locations.
type Paths struct {
	DataDir string `toml:"data_dir"`
}

// Credentials locates the eShop client certificate bundle.
type Credentials struct {
	CertPath string `toml:"cert_path"`
	PassPath string `toml:"pass_path"`
}

// Endpoints holds the base URLs of the four eShop services.
type Endpoints struct {
	Samurai        string `toml:"samurai"`
	Ninja          string `toml:"ninja"`
	Tagaya         string `toml:"tagaya"`
	TagayaCTR      string `toml:"tagaya_ctr"`
	CCS            string `toml:"ccs"`
	UserAgent      string `toml:"user_agent"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	// VerifyTLS checks server certificates against the system roots. The
	// eShop servers present certificates signed by a private CA.
	VerifyTLS bool `toml:"verify_tls"`
}

// Listing tunes the paginated title crawl.
type Listing struct {
	Regions  []string `toml:"regions"`
	PageSize int      `toml:"page_size"`
}

// Retry configures the policy wrapped around every remote call.
type Retry struct {
	MaxAttempts  int `toml:"max_attempts"`
	DelaySeconds int `toml:"delay_seconds"`
}

// SizeCache configures the SQLite cache of computed content sizes.
type SizeCache struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Catalog controls partition backups before writes.
type Catalog struct {
	// Backup is ask, always, or never.
	Backup string `toml:"backup"`
	// OverwriteBackup is ask, always, or never and applies when a backup
	// file already exists.
	OverwriteBackup string `toml:"overwrite_backup"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	// Completed announces finished runs; NoChanges also announces runs
	// that added nothing.
	Completed bool `toml:"completed"`
	NoChanges bool `toml:"no_changes"`
	Errors    bool `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	Dir           string `toml:"dir"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for titledb.
//
// Configuration sections by subsystem:
//   - Paths: catalog data directory
//   - Credentials: client certificate bundle and passphrase file
//   - Endpoints: eShop service base URLs, user agent, request timeout
//   - Listing: crawled regions and page size
//   - Retry: attempts and delay for remote calls
//   - SizeCache: cached content sizes between runs
//   - Catalog: backup decisions before partition writes
//   - Notifications: ntfy push notification settings
//   - Logging: log format, level, directory, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Credentials   Credentials   `toml:"credentials"`
	Endpoints     Endpoints     `toml:"endpoints"`
	Listing       Listing       `toml:"listing"`
	Retry         Retry         `toml:"retry"`
	SizeCache     SizeCache     `toml:"size_cache"`
	Catalog       Catalog       `toml:"catalog"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("titledb.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data, log, and size cache directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir}
	if c.Logging.Dir != "" {
		dirs = append(dirs, c.Logging.Dir)
	}
	if c.SizeCache.Enabled && c.SizeCache.Path != "" {
		dirs = append(dirs, filepath.Dir(c.SizeCache.Path))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CursorPath returns the location of the incremental update cursor.
func (c *Config) CursorPath() string {
	return filepath.Join(c.Paths.DataDir, CursorFileName)
}

// LockPath returns the advisory lock file guarding the data directory.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, ".titledb.lock")
}

// RetryDelay returns the configured wait between attempts.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Retry.DelaySeconds) * time.Second
}

// HTTPTimeout returns the per-request timeout for eShop calls.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.Endpoints.TimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
