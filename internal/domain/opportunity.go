package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Opportunity is a detected cross-exchange price discrepancy with a verified
// transfer route. An opportunity without a route is never constructed.
type Opportunity struct {
	ID           string          `json:"id"`
	Symbol       string          `json:"symbol"`
	BuyExchange  string          `json:"buy_exchange"`
	SellExchange string          `json:"sell_exchange"`
	BuyPrice     decimal.Decimal `json:"buy_price"`
	SellPrice    decimal.Decimal `json:"sell_price"`
	SpreadPct    decimal.Decimal `json:"spread_pct"`
	Route        TransferRoute   `json:"route"`
	DiscoveredAt time.Time       `json:"discovered_at"`
}

// Failure records a per-exchange, per-stage problem encountered during a scan
// cycle. Failures are diagnostics attached to the published snapshot; they
// never abort the cycle.
type Failure struct {
	Exchange string    `json:"exchange"`
	Symbol   string    `json:"symbol"`
	Stage    string    `json:"stage"` // "fetch_book", "fetch_chains", "pricing"
	Message  string    `json:"message"`
	At       time.Time `json:"at"`
}

// ScanSnapshot is the immutable result of one scan cycle. It replaces the
// previous snapshot atomically for consumers and is never mutated after
// publication. Quotes are keyed by QuoteKey(exchange, symbol); opportunities
// are ordered by spread descending.
type ScanSnapshot struct {
	Quotes        map[string]PricedQuote `json:"quotes"`
	Opportunities []Opportunity          `json:"opportunities"`
	Failures      []Failure              `json:"failures"`
	StartedAt     time.Time              `json:"started_at"`
	FinishedAt    time.Time              `json:"finished_at"`
}
