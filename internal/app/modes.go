package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/kambulatAL/arbi-scanner/internal/domain"
	"github.com/kambulatAL/arbi-scanner/internal/scanner"
	"github.com/kambulatAL/arbi-scanner/internal/server"
	"github.com/kambulatAL/arbi-scanner/internal/server/handler"
	"github.com/kambulatAL/arbi-scanner/internal/server/ws"
)

// shutdownGrace is how long in-flight HTTP requests get to finish after the
// context is cancelled.
const shutdownGrace = 10 * time.Second

// ScanMode runs the scan orchestrator (and the archiver when enabled) without
// the HTTP API. Results still land in Redis and Postgres for server-mode
// instances to serve.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting scan mode")

	g, ctx := errgroup.WithContext(ctx)

	orch := a.buildOrchestrator(deps)
	g.Go(func() error {
		return orch.Run(ctx)
	})

	a.startArchiver(ctx, g, deps)

	return g.Wait()
}

// ServerMode serves the HTTP and WebSocket API without an in-process scanner.
// Snapshots are read from the Redis cache populated by a scan-mode instance,
// and manual triggers are unavailable.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	g, ctx := errgroup.WithContext(ctx)

	a.startHTTPServer(ctx, g, deps, cacheSource{cache: deps.SnapshotCache}, nil)

	return g.Wait()
}

// FullMode runs the scanner and the API in one process. The scan handler
// serves snapshots straight from the orchestrator and accepts manual triggers.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)

	orch := a.buildOrchestrator(deps)
	g.Go(func() error {
		return orch.Run(ctx)
	})

	a.startArchiver(ctx, g, deps)

	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps, orchestratorSource{orch: orch}, orch)
	}

	return g.Wait()
}

// buildOrchestrator assembles the aggregator, evaluator, and orchestrator from
// the wired dependencies.
func (a *App) buildOrchestrator(deps *Dependencies) *scanner.Orchestrator {
	agg := scanner.NewAggregator(deps.Adapters, a.cfg.Scan.FetchTimeout.Duration, a.logger)
	eval := scanner.NewEvaluator(scanner.EvaluatorConfig{
		MinSpreadPct: decimal.NewFromFloat(a.cfg.Scan.MinSpreadPct),
		MaxSpreadPct: decimal.NewFromFloat(a.cfg.Scan.MaxSpreadPct),
	})

	cfg := scanner.OrchestratorConfig{
		Symbols:        a.cfg.Scan.Symbols,
		MinQuoteVolume: decimal.NewFromFloat(a.cfg.Scan.MinQuoteVolume),
		DepthLevels:    a.cfg.Scan.DepthLevels,
		PollInterval:   a.cfg.Scan.PollInterval.Duration,
		Bus:            deps.SignalBus,
		Cache:          deps.SnapshotCache,
		Store:          deps.OpportunityStore,
		Logger:         a.logger,
	}
	if deps.Notifier != nil {
		cfg.Alerter = deps.Notifier
	}

	return scanner.NewOrchestrator(agg, eval, cfg)
}

// startArchiver launches the periodic history archival loop when configured.
func (a *App) startArchiver(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	if deps.Archiver == nil {
		return
	}
	g.Go(func() error {
		return deps.Archiver.Run(ctx)
	})
}

// startHTTPServer registers all handlers, starts the WebSocket hub, and runs
// the HTTP server with graceful shutdown tied to the group context.
func (a *App) startHTTPServer(
	ctx context.Context,
	g *errgroup.Group,
	deps *Dependencies,
	source handler.SnapshotSource,
	trigger handler.Trigger,
) {
	checks := map[string]handler.HealthChecker{
		"redis": deps.RedisPing,
	}
	if deps.PostgresPing != nil {
		checks["postgres"] = deps.PostgresPing
	}
	if deps.S3Ping != nil {
		checks["s3"] = deps.S3Ping
	}

	handlers := server.Handlers{
		Health:        handler.NewHealthHandler(checks),
		Scan:          handler.NewScanHandler(source, trigger),
		Opportunities: handler.NewOpportunityHandler(deps.OpportunityStore),
	}

	hub := ws.NewHub(deps.SignalBus, a.logger)
	g.Go(func() error {
		return hub.Run(ctx)
	})

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
	}, handlers, hub, a.logger)

	g.Go(srv.Start)
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

// orchestratorSource serves snapshots from the in-process orchestrator.
type orchestratorSource struct {
	orch *scanner.Orchestrator
}

func (s orchestratorSource) LatestSnapshot(ctx context.Context) (domain.ScanSnapshot, error) {
	snap, ok := s.orch.Latest()
	if !ok {
		return domain.ScanSnapshot{}, domain.ErrNotFound
	}
	return snap, nil
}

// cacheSource serves snapshots from the shared Redis cache, used when no
// scanner runs in this process.
type cacheSource struct {
	cache domain.SnapshotCache
}

func (s cacheSource) LatestSnapshot(ctx context.Context) (domain.ScanSnapshot, error) {
	return s.cache.GetSnapshot(ctx)
}
