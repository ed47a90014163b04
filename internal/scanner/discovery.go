package scanner

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/kambulatAL/arbi-scanner/internal/domain"
)

// minVenuesPerSymbol is how many venues must quote a symbol before a
// cross-exchange comparison is possible.
const minVenuesPerSymbol = 2

// DiscoverSymbols derives the scan universe from per-venue ticker books. A
// symbol qualifies when at least two venues quote it with a 24h quote volume
// above minQuoteVolume; the volume bar applies per venue, so a pair that is
// liquid on one exchange and dead on another is excluded. A zero or negative
// minQuoteVolume disables the volume filter. The result is sorted so cycle
// output is deterministic.
func DiscoverSymbols(tickers map[string]map[string]domain.Ticker, minQuoteVolume decimal.Decimal) []string {
	counts := make(map[string]int)
	for _, venue := range tickers {
		for symbol, t := range venue {
			if minQuoteVolume.IsPositive() && !t.QuoteVolume.GreaterThan(minQuoteVolume) {
				continue
			}
			counts[symbol]++
		}
	}

	symbols := make([]string, 0, len(counts))
	for symbol, n := range counts {
		if n >= minVenuesPerSymbol {
			symbols = append(symbols, symbol)
		}
	}
	sort.Strings(symbols)
	return symbols
}
