package scanner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kambulatAL/arbi-scanner/internal/domain"
	"github.com/kambulatAL/arbi-scanner/internal/exchange"
)

const defaultRequestTimeout = 10 * time.Second

// Aggregator fans fetches out across all adapters and symbols concurrently
// and collects partial results. One exchange failing never aborts the fan-out;
// the failure is recorded and the exchange is simply absent from this cycle's
// results.
type Aggregator struct {
	adapters []exchange.Adapter
	timeout  time.Duration
	logger   *slog.Logger
}

// NewAggregator builds an aggregator over the given adapters. timeout bounds
// each individual request; zero means defaultRequestTimeout.
func NewAggregator(adapters []exchange.Adapter, timeout time.Duration, logger *slog.Logger) *Aggregator {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		adapters: adapters,
		timeout:  timeout,
		logger:   logger.With(slog.String("component", "aggregator")),
	}
}

// FetchBooks fetches order books for every adapter/symbol combination.
// Results are keyed by domain.QuoteKey so consumers never depend on
// completion order. Unusable snapshots (an empty side) are recorded as
// failures instead of returned.
func (a *Aggregator) FetchBooks(ctx context.Context, symbols []string) (map[string]domain.OrderBookSnapshot, []domain.Failure) {
	var (
		mu       sync.Mutex
		books    = make(map[string]domain.OrderBookSnapshot)
		failures []domain.Failure
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, adapter := range a.adapters {
		for _, symbol := range symbols {
			adapter, symbol := adapter, symbol
			g.Go(func() error {
				reqCtx, cancel := context.WithTimeout(gctx, a.timeout)
				defer cancel()

				snap, err := adapter.FetchOrderBook(reqCtx, symbol)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					a.logger.Warn("order book fetch failed",
						slog.String("exchange", adapter.Name()),
						slog.String("symbol", symbol),
						slog.Any("error", err))
					failures = append(failures, failure(adapter.Name(), symbol, "fetch_book", err))
					return nil
				}
				if !snap.Usable() {
					failures = append(failures, failure(adapter.Name(), symbol, "fetch_book", domain.ErrInsufficientDepth))
					return nil
				}
				books[domain.QuoteKey(adapter.Name(), symbol)] = snap
				return nil
			})
		}
	}
	g.Wait()

	return books, failures
}

// FetchTickers fetches the full 24h ticker list from every adapter, keyed by
// exchange name. A venue that fails is recorded and absent from the result,
// which shrinks the discoverable symbol set for this cycle only.
func (a *Aggregator) FetchTickers(ctx context.Context) (map[string]map[string]domain.Ticker, []domain.Failure) {
	var (
		mu       sync.Mutex
		tickers  = make(map[string]map[string]domain.Ticker)
		failures []domain.Failure
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, adapter := range a.adapters {
		adapter := adapter
		g.Go(func() error {
			reqCtx, cancel := context.WithTimeout(gctx, a.timeout)
			defer cancel()

			venue, err := adapter.FetchTickers(reqCtx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				a.logger.Warn("ticker fetch failed",
					slog.String("exchange", adapter.Name()),
					slog.Any("error", err))
				failures = append(failures, failure(adapter.Name(), "*", "fetch_tickers", err))
				return nil
			}
			tickers[adapter.Name()] = venue
			return nil
		})
	}
	g.Wait()

	return tickers, failures
}

// FetchChains fetches coin chain availability for every adapter/symbol
// combination, keyed by domain.QuoteKey. Chain info is re-fetched fresh every
// cycle; a route that was valid last cycle carries no weight now.
func (a *Aggregator) FetchChains(ctx context.Context, symbols []string) (map[string]domain.CoinChainInfo, []domain.Failure) {
	var (
		mu       sync.Mutex
		chains   = make(map[string]domain.CoinChainInfo)
		failures []domain.Failure
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, adapter := range a.adapters {
		for _, symbol := range symbols {
			adapter, symbol := adapter, symbol
			g.Go(func() error {
				reqCtx, cancel := context.WithTimeout(gctx, a.timeout)
				defer cancel()

				info, err := adapter.FetchCoinChains(reqCtx, symbol)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					a.logger.Warn("coin chains fetch failed",
						slog.String("exchange", adapter.Name()),
						slog.String("symbol", symbol),
						slog.Any("error", err))
					failures = append(failures, failure(adapter.Name(), symbol, "fetch_chains", err))
					return nil
				}
				chains[domain.QuoteKey(adapter.Name(), symbol)] = info
				return nil
			})
		}
	}
	g.Wait()

	return chains, failures
}

func failure(exchange, symbol, stage string, err error) domain.Failure {
	return domain.Failure{
		Exchange: exchange,
		Symbol:   symbol,
		Stage:    stage,
		Message:  err.Error(),
		At:       time.Now().UTC(),
	}
}
