package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	s3blob "github.com/kambulatAL/arbi-scanner/internal/blob/s3"
	"github.com/kambulatAL/arbi-scanner/internal/cache/redis"
	"github.com/kambulatAL/arbi-scanner/internal/config"
	"github.com/kambulatAL/arbi-scanner/internal/crypto"
	"github.com/kambulatAL/arbi-scanner/internal/domain"
	"github.com/kambulatAL/arbi-scanner/internal/exchange"
	"github.com/kambulatAL/arbi-scanner/internal/notify"
	"github.com/kambulatAL/arbi-scanner/internal/store/postgres"
)

// Dependencies bundles every domain-level dependency that the application
// modes need to operate. It is constructed by Wire and torn down by the
// returned cleanup function.
type Dependencies struct {
	// Exchange adapters (only built for scanning modes).
	Adapters []exchange.Adapter

	// Caches and messaging
	SnapshotCache domain.SnapshotCache
	SignalBus     domain.SignalBus

	// Persistence (nil when postgres is disabled)
	OpportunityStore domain.OpportunityStore

	// Blob storage (nil when archival is disabled)
	BlobWriter domain.BlobWriter
	Archiver   *s3blob.Archiver

	// Notifications
	Notifier *notify.Notifier

	// Health probes for the HTTP health endpoint.
	RedisPing    func(context.Context) error
	PostgresPing func(context.Context) error
	S3Ping       func(context.Context) error
}

// scansMarkets returns true for modes that run the scan orchestrator and
// therefore need exchange adapters.
func scansMarkets(mode string) bool {
	return mode == "scan" || mode == "full"
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Exchange adapters (only for scanning modes) ---
	if scansMarkets(cfg.Mode) {
		creds := make(map[string]exchange.Credentials, len(cfg.Credentials))
		for name, c := range cfg.Credentials {
			secret, err := crypto.LoadSecret(crypto.SecretConfig{
				RawSecret:     c.APISecret,
				EncryptedPath: c.EncryptedSecretPath,
				Password:      c.SecretPassword,
			})
			if err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: credentials for %s: %w", name, err)
			}
			creds[name] = exchange.Credentials{APIKey: c.APIKey, APISecret: secret}
		}

		adapters, err := exchange.NewAll(cfg.Scan.Exchanges, exchange.Options{
			Depth:       cfg.Scan.DepthLevels,
			Credentials: creds,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: exchanges: %w", err)
		}
		deps.Adapters = adapters
	}

	// --- Redis ---
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	deps.SnapshotCache = redis.NewSnapshotCache(redisClient)
	deps.SignalBus = redis.NewSignalBus(redisClient)
	deps.RedisPing = redisClient.Ping

	// --- PostgreSQL (opportunity history) ---
	if cfg.Postgres.Enabled {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		deps.OpportunityStore = postgres.NewOpportunityStore(pgClient)
		deps.PostgresPing = func(ctx context.Context) error { return pgClient.Pool().Ping(ctx) }
	}

	// --- S3 blob storage (archival) ---
	if cfg.Archive.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}

		deps.BlobWriter = s3blob.NewWriter(s3Client)
		deps.S3Ping = s3Client.Health

		// Archiver needs both the blob writer and the history store.
		if deps.OpportunityStore != nil {
			deps.Archiver = s3blob.NewArchiver(deps.BlobWriter, deps.OpportunityStore, s3blob.ArchiverConfig{
				Retention: cfg.Archive.Retention.Duration,
				Interval:  cfg.Archive.Interval.Duration,
				Logger:    logger,
			})
		}
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	if len(senders) > 0 {
		deps.Notifier = notify.NewNotifier(senders, decimal.NewFromFloat(cfg.Notify.AlertSpreadPct), logger)
	}

	return deps, cleanup, nil
}
