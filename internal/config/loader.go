package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// knownExchanges is the set of exchange names with dedicated credential
// environment variables (ARBISCAN_<NAME>_API_KEY etc).
var knownExchanges = []string{"bybit", "kucoin", "huobi", "bingx", "bitget", "mexc"}

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies ARBISCAN_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known ARBISCAN_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Scan ──
	setStringSlice(&cfg.Scan.Exchanges, "ARBISCAN_SCAN_EXCHANGES")
	setStringSlice(&cfg.Scan.Symbols, "ARBISCAN_SCAN_SYMBOLS")
	setFloat64(&cfg.Scan.MinQuoteVolume, "ARBISCAN_SCAN_MIN_QUOTE_VOLUME")
	setInt(&cfg.Scan.DepthLevels, "ARBISCAN_SCAN_DEPTH_LEVELS")
	setFloat64(&cfg.Scan.MinSpreadPct, "ARBISCAN_SCAN_MIN_SPREAD_PCT")
	setFloat64(&cfg.Scan.MaxSpreadPct, "ARBISCAN_SCAN_MAX_SPREAD_PCT")
	setDuration(&cfg.Scan.PollInterval, "ARBISCAN_SCAN_POLL_INTERVAL")
	setDuration(&cfg.Scan.FetchTimeout, "ARBISCAN_SCAN_FETCH_TIMEOUT")

	// ── Credentials ──
	if cfg.Credentials == nil {
		cfg.Credentials = map[string]CredentialConfig{}
	}
	for _, name := range knownExchanges {
		prefix := "ARBISCAN_" + strings.ToUpper(name)
		cred := cfg.Credentials[name]
		setStr(&cred.APIKey, prefix+"_API_KEY")
		setStr(&cred.APISecret, prefix+"_API_SECRET")
		setStr(&cred.EncryptedSecretPath, prefix+"_ENCRYPTED_SECRET_PATH")
		setStr(&cred.SecretPassword, prefix+"_SECRET_PASSWORD")
		if cred != (CredentialConfig{}) {
			cfg.Credentials[name] = cred
		}
	}

	// ── Postgres ──
	setBool(&cfg.Postgres.Enabled, "ARBISCAN_POSTGRES_ENABLED")
	setStr(&cfg.Postgres.DSN, "ARBISCAN_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "ARBISCAN_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "ARBISCAN_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "ARBISCAN_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "ARBISCAN_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "ARBISCAN_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "ARBISCAN_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "ARBISCAN_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "ARBISCAN_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "ARBISCAN_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "ARBISCAN_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "ARBISCAN_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "ARBISCAN_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "ARBISCAN_REDIS_POOL_SIZE")
	setBool(&cfg.Redis.TLSEnabled, "ARBISCAN_REDIS_TLS_ENABLED")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "ARBISCAN_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "ARBISCAN_S3_REGION")
	setStr(&cfg.S3.Bucket, "ARBISCAN_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "ARBISCAN_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "ARBISCAN_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "ARBISCAN_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "ARBISCAN_S3_FORCE_PATH_STYLE")

	// ── Archive ──
	setBool(&cfg.Archive.Enabled, "ARBISCAN_ARCHIVE_ENABLED")
	setDuration(&cfg.Archive.Retention, "ARBISCAN_ARCHIVE_RETENTION")
	setDuration(&cfg.Archive.Interval, "ARBISCAN_ARCHIVE_INTERVAL")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "ARBISCAN_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "ARBISCAN_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "ARBISCAN_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "ARBISCAN_SERVER_API_KEY")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "ARBISCAN_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "ARBISCAN_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "ARBISCAN_NOTIFY_DISCORD_WEBHOOK_URL")
	setFloat64(&cfg.Notify.AlertSpreadPct, "ARBISCAN_NOTIFY_ALERT_SPREAD_PCT")

	// ── Top-level ──
	setStr(&cfg.Mode, "ARBISCAN_MODE")
	setStr(&cfg.LogLevel, "ARBISCAN_LOG_LEVEL")
}

// WriteExample renders the default configuration as an annotated TOML file,
// used by the -init-config flag.
func WriteExample(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("config: create %s: %w", path, err)
	}
	defer f.Close()

	cfg := Defaults()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("config: encode example: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
