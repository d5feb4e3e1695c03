package config

const (
	defaultConfigPath        = "~/.config/titledb/config.toml"
	defaultDataDir           = "~/.local/share/titledb/data"
	defaultLogDir            = "~/.local/share/titledb/logs"
	defaultCertPath          = "~/.config/titledb/ctr-common-1.p12"
	defaultPassPath          = "~/.config/titledb/ctr-common-1.pass"
	defaultSizeCachePath     = "~/.cache/titledb/sizes.db"
	defaultSamuraiURL        = "https://samurai.ctr.shop.nintendo.net"
	defaultNinjaURL          = "https://ninja.ctr.shop.nintendo.net"
	defaultTagayaURL         = "https://tagaya.wup.shop.nintendo.net"
	defaultTagayaCTRURL      = "https://tagaya-ctr.cdn.nintendo.net"
	defaultCCSURL            = "http://ccs.cdn.c.shop.nintendowifi.net"
	defaultUserAgent         = "WiiU/PBOS-1.1"
	defaultTimeoutSeconds    = 60
	defaultPageSize          = 200
	defaultRetryMaxAttempts  = 4
	defaultRetryDelaySeconds = 5
	defaultNtfyTimeout       = 10
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultLogRetentionDays  = 30
	defaultBackupPolicy      = PolicyAsk
	defaultOverwriteBackup   = PolicyAsk
	maxPageSize              = 200
	maxRetryAttempts         = 20
	maxRetryDelaySeconds     = 300
)

// Backup decision policies.
const (
	PolicyAsk    = "ask"
	PolicyAlways = "always"
	PolicyNever  = "never"
)

// ListingRegions are the region names the listing crawl accepts.
var ListingRegions = []string{"USA", "EUR", "JPN", "KOR"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		Credentials: Credentials{
			CertPath: defaultCertPath,
			PassPath: defaultPassPath,
		},
		Endpoints: Endpoints{
			Samurai:        defaultSamuraiURL,
			Ninja:          defaultNinjaURL,
			Tagaya:         defaultTagayaURL,
			TagayaCTR:      defaultTagayaCTRURL,
			CCS:            defaultCCSURL,
			UserAgent:      defaultUserAgent,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Listing: Listing{
			Regions:  append([]string(nil), ListingRegions...),
			PageSize: defaultPageSize,
		},
		Retry: Retry{
			MaxAttempts:  defaultRetryMaxAttempts,
			DelaySeconds: defaultRetryDelaySeconds,
		},
		SizeCache: SizeCache{
			Enabled: true,
			Path:    defaultSizeCachePath,
		},
		Catalog: Catalog{
			Backup:          defaultBackupPolicy,
			OverwriteBackup: defaultOverwriteBackup,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
			Completed:      true,
			Errors:         true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			Dir:           defaultLogDir,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
