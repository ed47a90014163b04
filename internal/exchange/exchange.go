// Package exchange implements order book and coin chain adapters for the
// supported spot exchanges. All adapters normalize their responses into the
// domain types so the scanner never sees exchange-specific shapes.
package exchange

import (
	"context"
	"fmt"
	"strings"

	"github.com/kambulatAL/arbi-scanner/internal/domain"
)

// Adapter fetches market data from a single exchange. Implementations must be
// safe for concurrent use: the aggregator issues requests for many symbols in
// parallel.
type Adapter interface {
	// Name returns the canonical lowercase exchange identifier.
	Name() string

	// FetchOrderBook fetches the current order book for a normalized
	// BASE/QUOTE symbol. Returned bids are sorted by price descending and
	// asks ascending. Failures are reported as *domain.FetchError.
	FetchOrderBook(ctx context.Context, symbol string) (domain.OrderBookSnapshot, error)

	// FetchCoinChains fetches per-chain deposit and withdrawal availability
	// for the base coin of a normalized symbol. Failures are reported as
	// *domain.FetchError.
	FetchCoinChains(ctx context.Context, symbol string) (domain.CoinChainInfo, error)

	// FetchTickers fetches the venue's full 24h spot ticker list, keyed by
	// normalized BASE/QUOTE symbol. Native pairs that cannot be normalized
	// are omitted. Failures are reported as *domain.FetchError.
	FetchTickers(ctx context.Context) (map[string]domain.Ticker, error)
}

// Credentials holds the API key pair for exchanges whose chain endpoints
// require signed requests (Bybit, BingX, MEXC).
type Credentials struct {
	APIKey    string
	APISecret string
}

// Configured reports whether both halves of the key pair are set.
func (c Credentials) Configured() bool {
	return c.APIKey != "" && c.APISecret != ""
}

// splitSymbol splits a normalized BASE/QUOTE symbol into its parts.
func splitSymbol(symbol string) (base, quote string, err error) {
	base, quote, ok := strings.Cut(symbol, "/")
	if !ok || base == "" || quote == "" {
		return "", "", fmt.Errorf("exchange: malformed symbol %q, want BASE/QUOTE", symbol)
	}
	return strings.ToUpper(base), strings.ToUpper(quote), nil
}

// canonicalConcat normalizes a concatenated native pair ("BTCUSDT") to
// BASE/QUOTE form. Concatenated names are only unambiguous for USDT-quoted
// pairs, which are the ones this scanner compares across venues; anything
// else is skipped.
func canonicalConcat(native string) (string, bool) {
	base, ok := strings.CutSuffix(strings.ToUpper(native), "USDT")
	if !ok || base == "" {
		return "", false
	}
	return base + "/USDT", true
}

// canonicalDashed normalizes a dash-separated native pair ("BTC-USDT").
func canonicalDashed(native string) (string, bool) {
	base, quote, ok := strings.Cut(native, "-")
	if !ok || base == "" || quote == "" {
		return "", false
	}
	return strings.ToUpper(base) + "/" + strings.ToUpper(quote), true
}
