package config

// RedactedConfig returns a shallow copy of cfg with sensitive fields replaced
// by the redaction placeholder "***". Use this when logging or printing the
// active configuration so secrets are never accidentally exposed.
func RedactedConfig(cfg *Config) Config {
	out := *cfg // shallow copy of the top-level struct

	// Credentials: copy the map so mutations to the redacted copy do not
	// affect the original.
	if cfg.Credentials != nil {
		out.Credentials = make(map[string]CredentialConfig, len(cfg.Credentials))
		for name, cred := range cfg.Credentials {
			redact(&cred.APIKey)
			redact(&cred.APISecret)
			redact(&cred.SecretPassword)
			out.Credentials[name] = cred
		}
	}

	// Postgres
	out.Postgres = cfg.Postgres
	redact(&out.Postgres.DSN)
	redact(&out.Postgres.Password)

	// Redis
	out.Redis = cfg.Redis
	redact(&out.Redis.Password)

	// S3
	out.S3 = cfg.S3
	redact(&out.S3.AccessKey)
	redact(&out.S3.SecretKey)

	// Server
	out.Server = cfg.Server
	redact(&out.Server.APIKey)

	// Notify
	out.Notify = cfg.Notify
	redact(&out.Notify.TelegramToken)
	redact(&out.Notify.DiscordWebhookURL)

	// Copy slices so callers cannot mutate the original through the redacted
	// copy.
	if cfg.Scan.Exchanges != nil {
		out.Scan.Exchanges = make([]string, len(cfg.Scan.Exchanges))
		copy(out.Scan.Exchanges, cfg.Scan.Exchanges)
	}
	if cfg.Scan.Symbols != nil {
		out.Scan.Symbols = make([]string, len(cfg.Scan.Symbols))
		copy(out.Scan.Symbols, cfg.Scan.Symbols)
	}
	if cfg.Server.CORSOrigins != nil {
		out.Server.CORSOrigins = make([]string, len(cfg.Server.CORSOrigins))
		copy(out.Server.CORSOrigins, cfg.Server.CORSOrigins)
	}

	return out
}

const redacted = "***"

// redact replaces a non-empty string with the redacted placeholder.
func redact(s *string) {
	if *s != "" {
		*s = redacted
	}
}
