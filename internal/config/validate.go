package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateEndpoints(); err != nil {
		return err
	}
	if err := c.validateListing(); err != nil {
		return err
	}
	if err := c.validateRetry(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir is required")
	}
	if c.Credentials.CertPath == "" {
		return errors.New("credentials.cert_path is required")
	}
	if c.Credentials.PassPath == "" {
		return errors.New("credentials.pass_path is required")
	}
	return nil
}

func (c *Config) validateEndpoints() error {
	for key, value := range map[string]string{
		"endpoints.samurai":    c.Endpoints.Samurai,
		"endpoints.ninja":      c.Endpoints.Ninja,
		"endpoints.tagaya":     c.Endpoints.Tagaya,
		"endpoints.tagaya_ctr": c.Endpoints.TagayaCTR,
		"endpoints.ccs":        c.Endpoints.CCS,
	} {
		parsed, err := url.Parse(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("%s must be an http or https URL, got %q", key, value)
		}
		if parsed.Host == "" {
			return fmt.Errorf("%s must include a host, got %q", key, value)
		}
	}
	if c.Endpoints.TimeoutSeconds < 0 {
		return errors.New("endpoints.timeout_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateListing() error {
	for _, region := range c.Listing.Regions {
		if !slices.Contains(ListingRegions, region) {
			return fmt.Errorf("listing.regions: unsupported region %q (want one of %v)", region, ListingRegions)
		}
	}
	if c.Listing.PageSize < 1 || c.Listing.PageSize > maxPageSize {
		return fmt.Errorf("listing.page_size must be between 1 and %d", maxPageSize)
	}
	return nil
}

func (c *Config) validateRetry() error {
	if c.Retry.MaxAttempts < 1 || c.Retry.MaxAttempts > maxRetryAttempts {
		return fmt.Errorf("retry.max_attempts must be between 1 and %d", maxRetryAttempts)
	}
	if c.Retry.DelaySeconds < 0 || c.Retry.DelaySeconds > maxRetryDelaySeconds {
		return fmt.Errorf("retry.delay_seconds must be between 0 and %d", maxRetryDelaySeconds)
	}
	return nil
}

func (c *Config) validateCatalog() error {
	policies := []string{PolicyAsk, PolicyAlways, PolicyNever}
	if !slices.Contains(policies, c.Catalog.Backup) {
		return fmt.Errorf("catalog.backup must be one of %v", policies)
	}
	if !slices.Contains(policies, c.Catalog.OverwriteBackup) {
		return fmt.Errorf("catalog.overwrite_backup must be one of %v", policies)
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout < 0 {
		return errors.New("notifications.request_timeout must not be negative")
	}
	if c.Notifications.NtfyTopic == "" {
		return nil
	}
	parsed, err := url.Parse(c.Notifications.NtfyTopic)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("notifications.ntfy_topic must be an http or https URL, got %q", c.Notifications.NtfyTopic)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
