package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kambulatAL/arbi-scanner/internal/domain"
)

const defaultFetchTimeout = 10 * time.Second

// restClient wraps an HTTP client with the error classification shared by all
// adapters. Every failure surfaces as a *domain.FetchError so the aggregator
// can record diagnostics without inspecting exchange-specific errors.
type restClient struct {
	exchange string
	http     *http.Client
}

func newRESTClient(exchange string, client *http.Client) *restClient {
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	return &restClient{exchange: exchange, http: client}
}

// getJSON issues a GET request and decodes the JSON response into out.
func (c *restClient) getJSON(ctx context.Context, op, symbol, url string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return c.fetchErr(op, symbol, domain.FetchNetwork, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		kind := domain.FetchNetwork
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			kind = domain.FetchTimeout
		}
		return c.fetchErr(op, symbol, kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return c.fetchErr(op, symbol, domain.FetchRateLimited, fmt.Errorf("status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return c.fetchErr(op, symbol, domain.FetchNetwork, fmt.Errorf("status %d: %s", resp.StatusCode, body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return c.fetchErr(op, symbol, domain.FetchMalformed, err)
	}
	return nil
}

func (c *restClient) fetchErr(op, symbol string, kind domain.FetchErrorKind, err error) error {
	return &domain.FetchError{Exchange: c.exchange, Op: op, Symbol: symbol, Kind: kind, Err: err}
}

// rawLevel is a [price, quantity] pair as exchanges return it. Decimal's JSON
// decoder accepts both quoted strings (Bybit, KuCoin) and bare numbers
// (Huobi), so one type covers every venue.
type rawLevel [2]decimal.Decimal

func toLevels(raw []rawLevel) []domain.BookLevel {
	levels := make([]domain.BookLevel, 0, len(raw))
	for _, lv := range raw {
		levels = append(levels, domain.BookLevel{Price: lv[0], Quantity: lv[1]})
	}
	return levels
}

// newSnapshot assembles an order book snapshot stamped with the local receive
// time and sorted into canonical order.
func newSnapshot(exchange, symbol string, bids, asks []domain.BookLevel) domain.OrderBookSnapshot {
	snap := domain.OrderBookSnapshot{
		Exchange:  exchange,
		Symbol:    symbol,
		Bids:      bids,
		Asks:      asks,
		Timestamp: time.Now().UTC(),
	}
	sortBook(&snap)
	return snap
}

// sortBook enforces the snapshot ordering contract regardless of what the
// exchange returned: bids descending, asks ascending.
func sortBook(snap *domain.OrderBookSnapshot) {
	sort.Slice(snap.Bids, func(i, j int) bool {
		return snap.Bids[i].Price.GreaterThan(snap.Bids[j].Price)
	})
	sort.Slice(snap.Asks, func(i, j int) bool {
		return snap.Asks[i].Price.LessThan(snap.Asks[j].Price)
	})
}

func malformed(c *restClient, op, symbol, msg string) error {
	return c.fetchErr(op, symbol, domain.FetchMalformed, errors.New(msg))
}

const (
	opOrderBook  = "order_book"
	opCoinChains = "coin_chains"
	opTickers    = "tickers"
)

// allSymbols is the symbol placeholder for venue-wide operations.
const allSymbols = "*"
