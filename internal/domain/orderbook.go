// Package domain defines the core types shared by the scanner, exchange
// adapters, caches, and stores.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookLevel is a single price+quantity entry on one side of an order book.
// Price must be positive; quantity may be zero for a level being removed.
type BookLevel struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// OrderBookSnapshot is a normalized order book for one symbol on one
// exchange. Bids are ordered descending by price, asks ascending.
type OrderBookSnapshot struct {
	Exchange  string      `json:"exchange"`
	Symbol    string      `json:"symbol"`
	Bids      []BookLevel `json:"bids"`
	Asks      []BookLevel `json:"asks"`
	Timestamp time.Time   `json:"timestamp"`
}

// Usable reports whether the snapshot carries at least one level on each
// side. Snapshots with fewer levels than the configured depth are still
// usable; the depth computation degrades to the available levels.
func (s OrderBookSnapshot) Usable() bool {
	return len(s.Bids) > 0 && len(s.Asks) > 0
}

// PricedQuote is the depth-weighted bid/ask for one exchange/symbol. It is
// derived once per scan cycle and never mutated afterwards.
type PricedQuote struct {
	Exchange  string          `json:"exchange"`
	Symbol    string          `json:"symbol"`
	DepthBid  decimal.Decimal `json:"depth_bid"`
	DepthAsk  decimal.Decimal `json:"depth_ask"`
	Timestamp time.Time       `json:"timestamp"`
}

// QuoteKey builds the map key under which a PricedQuote is stored in a
// ScanSnapshot.
func QuoteKey(exchange, symbol string) string {
	return exchange + ":" + symbol
}
