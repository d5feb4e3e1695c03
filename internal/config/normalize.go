package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeCredentials(); err != nil {
		return err
	}
	c.normalizeEndpoints()
	c.normalizeListing()
	c.normalizeCatalog()
	c.normalizeNotifications()
	if err := c.normalizeSizeCache(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("TITLEDB_DATA_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.DataDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	var err error
	if c.Paths.DataDir, err = expandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCredentials() error {
	if value, ok := os.LookupEnv("TITLEDB_CERT_PATH"); ok && strings.TrimSpace(value) != "" {
		c.Credentials.CertPath = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("TITLEDB_PASS_PATH"); ok && strings.TrimSpace(value) != "" {
		c.Credentials.PassPath = strings.TrimSpace(value)
	}
	var err error
	if c.Credentials.CertPath, err = expandPath(strings.TrimSpace(c.Credentials.CertPath)); err != nil {
		return fmt.Errorf("credentials.cert_path: %w", err)
	}
	if c.Credentials.PassPath, err = expandPath(strings.TrimSpace(c.Credentials.PassPath)); err != nil {
		return fmt.Errorf("credentials.pass_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeEndpoints() {
	fields := []struct {
		value    *string
		fallback string
	}{
		{&c.Endpoints.Samurai, defaultSamuraiURL},
		{&c.Endpoints.Ninja, defaultNinjaURL},
		{&c.Endpoints.Tagaya, defaultTagayaURL},
		{&c.Endpoints.TagayaCTR, defaultTagayaCTRURL},
		{&c.Endpoints.CCS, defaultCCSURL},
	}
	for _, field := range fields {
		trimmed := strings.TrimRight(strings.TrimSpace(*field.value), "/")
		if trimmed == "" {
			trimmed = field.fallback
		}
		*field.value = trimmed
	}
	c.Endpoints.UserAgent = strings.TrimSpace(c.Endpoints.UserAgent)
	if c.Endpoints.UserAgent == "" {
		c.Endpoints.UserAgent = defaultUserAgent
	}
	if c.Endpoints.TimeoutSeconds == 0 {
		c.Endpoints.TimeoutSeconds = defaultTimeoutSeconds
	}
}

func (c *Config) normalizeListing() {
	regions := make([]string, 0, len(c.Listing.Regions))
	seen := make(map[string]struct{}, len(c.Listing.Regions))
	for _, region := range c.Listing.Regions {
		region = strings.ToUpper(strings.TrimSpace(region))
		if region == "" {
			continue
		}
		if _, dup := seen[region]; dup {
			continue
		}
		seen[region] = struct{}{}
		regions = append(regions, region)
	}
	if len(regions) == 0 {
		regions = append(regions, ListingRegions...)
	}
	c.Listing.Regions = regions
	if c.Listing.PageSize == 0 {
		c.Listing.PageSize = defaultPageSize
	}
}

func (c *Config) normalizeCatalog() {
	c.Catalog.Backup = normalizePolicy(c.Catalog.Backup, defaultBackupPolicy)
	c.Catalog.OverwriteBackup = normalizePolicy(c.Catalog.OverwriteBackup, defaultOverwriteBackup)
}

func (c *Config) normalizeNotifications() {
	if value, ok := os.LookupEnv("TITLEDB_NTFY_TOPIC"); ok && strings.TrimSpace(value) != "" {
		c.Notifications.NtfyTopic = value
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout == 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
}

func normalizePolicy(value, fallback string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return fallback
	}
	return value
}

func (c *Config) normalizeSizeCache() error {
	if strings.TrimSpace(c.SizeCache.Path) == "" {
		c.SizeCache.Path = defaultSizeCachePath
	}
	var err error
	if c.SizeCache.Path, err = expandPath(strings.TrimSpace(c.SizeCache.Path)); err != nil {
		return fmt.Errorf("size_cache.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
	var err error
	if c.Logging.Dir, err = expandPath(strings.TrimSpace(c.Logging.Dir)); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}
