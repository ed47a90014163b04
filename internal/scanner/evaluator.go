package scanner

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kambulatAL/arbi-scanner/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// EvaluatorConfig holds the spread thresholds applied during pairwise
// evaluation.
type EvaluatorConfig struct {
	// MinSpreadPct is the minimum spread an opportunity must reach.
	MinSpreadPct decimal.Decimal

	// MaxSpreadPct discards spreads above this value as stale data or
	// delisted markets rather than real opportunities. Zero disables the cap.
	MaxSpreadPct decimal.Decimal
}

// Evaluator combines priced quotes pairwise across exchanges, gates each pair
// on a verified transfer route, and emits ranked opportunities.
type Evaluator struct {
	cfg   EvaluatorConfig
	newID func() string
	now   func() time.Time
}

func NewEvaluator(cfg EvaluatorConfig) *Evaluator {
	return &Evaluator{
		cfg:   cfg,
		newID: func() string { return uuid.NewString() },
		now:   time.Now,
	}
}

// Evaluate computes opportunities for one symbol from the quotes of all
// exchanges that produced one this cycle, keyed by exchange name. Quotes from
// fewer than two exchanges yield no opportunities.
//
// For each ordered pair (A, B), A != B:
//
//	buyPrice  = quotes[A].DepthAsk
//	sellPrice = quotes[B].DepthBid
//	spreadPct = (sellPrice - buyPrice) / buyPrice * 100
//
// The pair survives only if spreadPct reaches the minimum threshold, stays
// under the cap when one is set, and a transfer route A -> B exists. Output
// is sorted by spread descending, then symbol, buy exchange, and sell
// exchange for deterministic ordering.
func (e *Evaluator) Evaluate(symbol string, quotes map[string]domain.PricedQuote, chainInfo map[string]domain.CoinChainInfo) []domain.Opportunity {
	if len(quotes) < 2 {
		return nil
	}

	exchanges := make([]string, 0, len(quotes))
	for name := range quotes {
		exchanges = append(exchanges, name)
	}
	sort.Strings(exchanges)

	var opps []domain.Opportunity
	for _, buyExch := range exchanges {
		for _, sellExch := range exchanges {
			if buyExch == sellExch {
				continue
			}
			buyPrice := quotes[buyExch].DepthAsk
			sellPrice := quotes[sellExch].DepthBid
			if buyPrice.Sign() <= 0 {
				continue
			}
			spread := sellPrice.Sub(buyPrice).Div(buyPrice).Mul(hundred)
			if spread.LessThan(e.cfg.MinSpreadPct) {
				continue
			}
			if e.cfg.MaxSpreadPct.Sign() > 0 && spread.GreaterThan(e.cfg.MaxSpreadPct) {
				continue
			}
			route, ok := Route(symbol, buyExch, sellExch, chainInfo)
			if !ok {
				continue
			}
			opps = append(opps, domain.Opportunity{
				ID:           e.newID(),
				Symbol:       symbol,
				BuyExchange:  buyExch,
				SellExchange: sellExch,
				BuyPrice:     buyPrice,
				SellPrice:    sellPrice,
				SpreadPct:    spread,
				Route:        route,
				DiscoveredAt: e.now().UTC(),
			})
		}
	}

	SortOpportunities(opps)
	return opps
}

// SortOpportunities orders opportunities by spread descending, breaking ties
// by symbol, buy exchange, then sell exchange.
func SortOpportunities(opps []domain.Opportunity) {
	sort.SliceStable(opps, func(i, j int) bool {
		a, b := opps[i], opps[j]
		if !a.SpreadPct.Equal(b.SpreadPct) {
			return a.SpreadPct.GreaterThan(b.SpreadPct)
		}
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		if a.BuyExchange != b.BuyExchange {
			return a.BuyExchange < b.BuyExchange
		}
		return a.SellExchange < b.SellExchange
	})
}
