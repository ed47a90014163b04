// Package scanner implements the arbitrage detection core: concurrent market
// data aggregation, depth-weighted pricing, transfer route filtering, pairwise
// spread evaluation, and the scan cycle orchestrator.
package scanner

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kambulatAL/arbi-scanner/internal/domain"
)

// DepthPrice computes the quantity-weighted average price over the first
// min(depth, len(levels)) levels:
//
//	sum(price_i * qty_i) / sum(qty_i)
//
// A book with fewer levels than depth degrades to the available levels. A
// slice with zero total quantity returns ErrInsufficientDepth.
func DepthPrice(levels []domain.BookLevel, depth int) (decimal.Decimal, error) {
	if depth <= 0 {
		return decimal.Zero, fmt.Errorf("scanner: depth must be positive, got %d", depth)
	}
	if len(levels) == 0 {
		return decimal.Zero, domain.ErrInsufficientDepth
	}
	if depth > len(levels) {
		depth = len(levels)
	}

	totalCost := decimal.Zero
	totalQty := decimal.Zero
	for _, lv := range levels[:depth] {
		totalCost = totalCost.Add(lv.Price.Mul(lv.Quantity))
		totalQty = totalQty.Add(lv.Quantity)
	}
	if totalQty.IsZero() {
		return decimal.Zero, domain.ErrInsufficientDepth
	}
	return totalCost.Div(totalQty), nil
}

// PriceQuote derives the depth-weighted quote from an order book snapshot.
// DepthBid is the achievable sell price, DepthAsk the achievable buy price.
func PriceQuote(snap domain.OrderBookSnapshot, depth int) (domain.PricedQuote, error) {
	if !snap.Usable() {
		return domain.PricedQuote{}, domain.ErrInsufficientDepth
	}
	bid, err := DepthPrice(snap.Bids, depth)
	if err != nil {
		return domain.PricedQuote{}, fmt.Errorf("scanner: pricing bids for %s on %s: %w", snap.Symbol, snap.Exchange, err)
	}
	ask, err := DepthPrice(snap.Asks, depth)
	if err != nil {
		return domain.PricedQuote{}, fmt.Errorf("scanner: pricing asks for %s on %s: %w", snap.Symbol, snap.Exchange, err)
	}
	return domain.PricedQuote{
		Exchange:  snap.Exchange,
		Symbol:    snap.Symbol,
		DepthBid:  bid,
		DepthAsk:  ask,
		Timestamp: snap.Timestamp,
	}, nil
}
