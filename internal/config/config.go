// Package config defines the top-level configuration for the arbitrage
// scanner and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by ARBISCAN_* environment variables.
type Config struct {
	Scan        ScanConfig                  `toml:"scan"`
	Credentials map[string]CredentialConfig `toml:"credentials"`
	Postgres    PostgresConfig              `toml:"postgres"`
	Redis       RedisConfig                 `toml:"redis"`
	S3          S3Config                    `toml:"s3"`
	Archive     ArchiveConfig               `toml:"archive"`
	Server      ServerConfig                `toml:"server"`
	Notify      NotifyConfig                `toml:"notify"`
	Mode        string                      `toml:"mode"`
	LogLevel    string                      `toml:"log_level"`
}

// ScanConfig holds the scan cycle parameters. Symbols pins the scan universe
// to an explicit list; when empty, each cycle discovers its universe from the
// exchanges' 24h tickers, keeping symbols quoted on at least two venues with a
// quote volume above MinQuoteVolume.
type ScanConfig struct {
	Exchanges      []string `toml:"exchanges"`
	Symbols        []string `toml:"symbols"`
	MinQuoteVolume float64  `toml:"min_quote_volume"`
	DepthLevels    int      `toml:"depth_levels"`
	MinSpreadPct   float64  `toml:"min_spread_pct"`
	MaxSpreadPct   float64  `toml:"max_spread_pct"`
	PollInterval   duration `toml:"poll_interval"`
	FetchTimeout   duration `toml:"fetch_timeout"`
}

// CredentialConfig holds one exchange's API credentials. The secret may be
// given raw or as a path to a password-encrypted file; the raw value wins when
// both are set.
type CredentialConfig struct {
	APIKey              string `toml:"api_key"`
	APISecret           string `toml:"api_secret"`
	EncryptedSecretPath string `toml:"encrypted_secret_path"`
	SecretPassword      string `toml:"secret_password"`
}

// PostgresConfig holds PostgreSQL connection parameters for opportunity
// history. When Enabled is false the scanner runs without persistence.
type PostgresConfig struct {
	Enabled       bool   `toml:"enabled"`
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// ArchiveConfig holds the opportunity history archival parameters. Archival
// requires Postgres and S3 to be configured.
type ArchiveConfig struct {
	Enabled   bool     `toml:"enabled"`
	Retention duration `toml:"retention"`
	Interval  duration `toml:"interval"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"`
}

// NotifyConfig holds notification channel credentials. AlertSpreadPct is the
// minimum spread an opportunity must reach before it is pushed to a channel.
type NotifyConfig struct {
	TelegramToken     string  `toml:"telegram_token"`
	TelegramChatID    string  `toml:"telegram_chat_id"`
	DiscordWebhookURL string  `toml:"discord_webhook_url"`
	AlertSpreadPct    float64 `toml:"alert_spread_pct"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values. The
// -init-config flag writes these out as a starting TOML file.
func Defaults() Config {
	return Config{
		Scan: ScanConfig{
			Exchanges:      []string{"bybit", "kucoin", "huobi", "bingx", "bitget", "mexc"},
			MinQuoteVolume: 200000,
			DepthLevels:    5,
			MinSpreadPct:   0.6,
			MaxSpreadPct:   35.0,
			PollInterval:   duration{10 * time.Second},
			FetchTimeout:   duration{10 * time.Second},
		},
		Credentials: map[string]CredentialConfig{},
		Postgres: PostgresConfig{
			Enabled:       false,
			Host:          "localhost",
			Port:          5432,
			Database:      "arbiscan",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			TLSEnabled: false,
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "arbiscan-data",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Archive: ArchiveConfig{
			Enabled:   false,
			Retention: duration{7 * 24 * time.Hour},
			Interval:  duration{time.Hour},
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Notify: NotifyConfig{
			AlertSpreadPct: 1.0,
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"scan":   true,
	"server": true,
	"full":   true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Mode
	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: scan, server, full)", c.Mode))
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Scan: the scanning modes need at least one exchange and one symbol.
	scans := c.Mode == "scan" || c.Mode == "full"
	if scans {
		if len(c.Scan.Exchanges) == 0 {
			errs = append(errs, "scan: exchanges must not be empty")
		}
		// Symbols are optional; an empty list means ticker-based discovery.
		for _, sym := range c.Scan.Symbols {
			if !strings.Contains(sym, "/") {
				errs = append(errs, fmt.Sprintf("scan: symbol %q must be BASE/QUOTE, e.g. BTC/USDT", sym))
			}
		}
		if c.Scan.MinQuoteVolume < 0 {
			errs = append(errs, "scan: min_quote_volume must be >= 0 (0 disables the volume filter)")
		}
		if c.Scan.DepthLevels < 1 {
			errs = append(errs, fmt.Sprintf("scan: depth_levels must be >= 1, got %d", c.Scan.DepthLevels))
		}
		if c.Scan.MinSpreadPct < 0 {
			errs = append(errs, "scan: min_spread_pct must be >= 0")
		}
		if c.Scan.MaxSpreadPct != 0 && c.Scan.MaxSpreadPct < c.Scan.MinSpreadPct {
			errs = append(errs, "scan: max_spread_pct must be >= min_spread_pct (or 0 to disable the cap)")
		}
		if c.Scan.PollInterval.Duration <= 0 {
			errs = append(errs, "scan: poll_interval must be positive")
		}
		if c.Scan.FetchTimeout.Duration <= 0 {
			errs = append(errs, "scan: fetch_timeout must be positive")
		}
	}

	// Credentials: an encrypted secret file needs a password to unlock it.
	for name, cred := range c.Credentials {
		if cred.EncryptedSecretPath != "" && cred.SecretPassword == "" {
			errs = append(errs, fmt.Sprintf("credentials.%s: secret_password is required when encrypted_secret_path is set", name))
		}
		if cred.APISecret != "" && cred.APIKey == "" {
			errs = append(errs, fmt.Sprintf("credentials.%s: api_key is required when api_secret is set", name))
		}
	}

	// Postgres
	if c.Postgres.Enabled {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns < 0 {
			errs = append(errs, "postgres: pool_min_conns must be >= 0")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// Archive: needs both the history store and the object store.
	if c.Archive.Enabled {
		if !c.Postgres.Enabled {
			errs = append(errs, "archive: postgres must be enabled when archival is enabled")
		}
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when archival is enabled")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when archival is enabled")
		}
		if c.Archive.Retention.Duration <= 0 {
			errs = append(errs, "archive: retention must be positive")
		}
		if c.Archive.Interval.Duration <= 0 {
			errs = append(errs, "archive: interval must be positive")
		}
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	// Notify
	if c.Notify.AlertSpreadPct < 0 {
		errs = append(errs, "notify: alert_spread_pct must be >= 0")
	}
	if c.Notify.TelegramToken != "" && c.Notify.TelegramChatID == "" {
		errs = append(errs, "notify: telegram_chat_id is required when telegram_token is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
