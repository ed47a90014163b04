package scanner

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kambulatAL/arbi-scanner/internal/domain"
)

// Pub/sub channels the orchestrator publishes on.
const (
	ChannelScan          = "ch:scan"
	ChannelOpportunities = "ch:opps"
	ChannelFailures      = "ch:failures"
)

const defaultPollInterval = 10 * time.Second

// Alerter receives the opportunities of a published cycle for out-of-band
// notification. Implementations must not block the scan loop.
type Alerter interface {
	Alert(ctx context.Context, opps []domain.Opportunity)
}

// OrchestratorConfig configures the scan loop. The sink fields are all
// optional; a nil sink is skipped.
type OrchestratorConfig struct {
	// Symbols pins the scan universe to an explicit list. When empty, each
	// cycle discovers its universe from the venues' ticker books instead:
	// symbols quoted on at least two venues with a 24h quote volume above
	// MinQuoteVolume.
	Symbols        []string
	MinQuoteVolume decimal.Decimal
	DepthLevels    int
	PollInterval   time.Duration

	Bus     domain.SignalBus
	Cache   domain.SnapshotCache
	Store   domain.OpportunityStore
	Alerter Alerter
	Logger  *slog.Logger
}

// Orchestrator drives the periodic scan cycle:
//
//	Idle -> Fetching -> Pricing -> Evaluating -> Published -> Idle
//
// Each cycle is independent and produces a fresh immutable ScanSnapshot that
// atomically replaces the previous one. At most one cycle runs at a time; a
// trigger arriving while a cycle is in flight is dropped with
// ErrScanInFlight so callers observe deterministic behavior.
type Orchestrator struct {
	agg  *Aggregator
	eval *Evaluator
	cfg  OrchestratorConfig

	logger   *slog.Logger
	latest   atomic.Pointer[domain.ScanSnapshot]
	inFlight atomic.Bool
	trigger  chan struct{}
}

func NewOrchestrator(agg *Aggregator, eval *Evaluator, cfg OrchestratorConfig) *Orchestrator {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.DepthLevels <= 0 {
		cfg.DepthLevels = 5
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		agg:     agg,
		eval:    eval,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "orchestrator")),
		trigger: make(chan struct{}, 1),
	}
}

// Latest returns the most recently published snapshot. ok is false until the
// first cycle completes.
func (o *Orchestrator) Latest() (domain.ScanSnapshot, bool) {
	snap := o.latest.Load()
	if snap == nil {
		return domain.ScanSnapshot{}, false
	}
	return *snap, true
}

// TriggerScan requests an immediate cycle. If one is already in flight the
// request is dropped and ErrScanInFlight returned; it is never queued.
func (o *Orchestrator) TriggerScan() error {
	if o.inFlight.Load() {
		return domain.ErrScanInFlight
	}
	select {
	case o.trigger <- struct{}{}:
		return nil
	default:
		return domain.ErrScanInFlight
	}
}

// Run executes the scan loop until ctx is cancelled. The first cycle starts
// immediately; subsequent cycles run every PollInterval or on TriggerScan.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.Info("scan loop starting",
		slog.Any("symbols", o.cfg.Symbols),
		slog.Duration("poll_interval", o.cfg.PollInterval))

	ticker := time.NewTicker(o.cfg.PollInterval)
	defer ticker.Stop()

	o.runCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			o.logger.Info("scan loop stopping")
			return ctx.Err()
		case <-ticker.C:
			o.runCycle(ctx)
		case <-o.trigger:
			o.runCycle(ctx)
		}
	}
}

// runCycle executes one full scan cycle. A cancelled cycle publishes nothing.
func (o *Orchestrator) runCycle(ctx context.Context) {
	if !o.inFlight.CompareAndSwap(false, true) {
		return
	}
	defer o.inFlight.Store(false)

	startedAt := time.Now().UTC()

	var failures []domain.Failure

	// Discovery. An explicit symbol list skips it entirely.
	symbols := o.cfg.Symbols
	if len(symbols) == 0 {
		tickers, tickerFailures := o.agg.FetchTickers(ctx)
		failures = append(failures, tickerFailures...)
		symbols = DiscoverSymbols(tickers, o.cfg.MinQuoteVolume)
		o.logger.Info("symbols discovered", slog.Int("count", len(symbols)))
	}

	if ctx.Err() != nil {
		o.logger.Info("cycle cancelled, discarding results")
		return
	}

	// Fetching.
	books, bookFailures := o.agg.FetchBooks(ctx, symbols)
	chains, chainFailures := o.agg.FetchChains(ctx, symbols)
	failures = append(failures, bookFailures...)
	failures = append(failures, chainFailures...)

	if ctx.Err() != nil {
		o.logger.Info("cycle cancelled, discarding results")
		return
	}

	// Pricing.
	quotes := make(map[string]domain.PricedQuote, len(books))
	bySymbol := make(map[string]map[string]domain.PricedQuote)
	for key, snap := range books {
		quote, err := PriceQuote(snap, o.cfg.DepthLevels)
		if err != nil {
			failures = append(failures, failure(snap.Exchange, snap.Symbol, "pricing", err))
			continue
		}
		quotes[key] = quote
		if bySymbol[snap.Symbol] == nil {
			bySymbol[snap.Symbol] = make(map[string]domain.PricedQuote)
		}
		bySymbol[snap.Symbol][snap.Exchange] = quote
	}

	// Evaluating. A symbol with zero usable exchanges publishes an empty
	// opportunity set rather than failing the cycle.
	var opps []domain.Opportunity
	for _, symbol := range symbols {
		symbolQuotes := bySymbol[symbol]
		if len(symbolQuotes) == 0 {
			o.logger.Warn("no usable exchanges for symbol", slog.String("symbol", symbol))
			continue
		}
		opps = append(opps, o.eval.Evaluate(symbol, symbolQuotes, chains)...)
	}
	SortOpportunities(opps)

	if ctx.Err() != nil {
		o.logger.Info("cycle cancelled, discarding results")
		return
	}

	snap := domain.ScanSnapshot{
		Quotes:        quotes,
		Opportunities: opps,
		Failures:      failures,
		StartedAt:     startedAt,
		FinishedAt:    time.Now().UTC(),
	}
	o.publish(ctx, snap)
}

// publish atomically replaces the latest snapshot and fans it out to the
// configured sinks. Sink errors are logged, never propagated: the scan loop
// outlives any downstream outage.
func (o *Orchestrator) publish(ctx context.Context, snap domain.ScanSnapshot) {
	o.latest.Store(&snap)

	o.logger.Info("cycle published",
		slog.Int("quotes", len(snap.Quotes)),
		slog.Int("opportunities", len(snap.Opportunities)),
		slog.Int("failures", len(snap.Failures)),
		slog.Duration("took", snap.FinishedAt.Sub(snap.StartedAt)))

	if o.cfg.Cache != nil {
		if err := o.cfg.Cache.SetSnapshot(ctx, snap); err != nil {
			o.logger.Error("caching snapshot failed", slog.Any("error", err))
		}
	}

	if o.cfg.Bus != nil {
		o.publishJSON(ctx, ChannelScan, snap)
		if len(snap.Opportunities) > 0 {
			o.publishJSON(ctx, ChannelOpportunities, snap.Opportunities)
		}
		if len(snap.Failures) > 0 {
			o.publishJSON(ctx, ChannelFailures, snap.Failures)
		}
	}

	if o.cfg.Store != nil && len(snap.Opportunities) > 0 {
		if err := o.cfg.Store.InsertBatch(ctx, snap.Opportunities); err != nil {
			o.logger.Error("persisting opportunities failed", slog.Any("error", err))
		}
	}

	if o.cfg.Alerter != nil && len(snap.Opportunities) > 0 {
		o.cfg.Alerter.Alert(ctx, snap.Opportunities)
	}
}

// publishJSON encodes v and publishes it on channel. Both encode and publish
// errors are logged so a bad payload is visible instead of silently dropped.
func (o *Orchestrator) publishJSON(ctx context.Context, channel string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		o.logger.Error("encoding payload failed",
			slog.String("channel", channel),
			slog.Any("error", err))
		return
	}
	if err := o.cfg.Bus.Publish(ctx, channel, payload); err != nil {
		o.logger.Error("publishing payload failed",
			slog.String("channel", channel),
			slog.Any("error", err))
	}
}

