package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kambulatAL/arbi-scanner/internal/domain"
)

func quote(exchange, symbol, bid, ask string) domain.PricedQuote {
	return domain.PricedQuote{
		Exchange: exchange,
		Symbol:   symbol,
		DepthBid: dec(bid),
		DepthAsk: dec(ask),
	}
}

// openRoutes grants every listed exchange a shared BTC chain so route
// filtering never interferes with the case under test.
func openRoutes(symbol string, exchanges ...string) map[string]domain.CoinChainInfo {
	info := make(map[string]domain.CoinChainInfo)
	for _, ex := range exchanges {
		info[domain.QuoteKey(ex, symbol)] = chainInfo(ex, symbol, chain("BTC", true, true))
	}
	return info
}

func TestEvaluateBasicScenario(t *testing.T) {
	// A asks 100, B bids 103, threshold 2% -> one opportunity at 3%.
	symbol := "BTC/USDT"
	quotes := map[string]domain.PricedQuote{
		"a": quote("a", symbol, "99", "100"),
		"b": quote("b", symbol, "103", "104"),
	}

	e := NewEvaluator(EvaluatorConfig{MinSpreadPct: dec("2")})
	opps := e.Evaluate(symbol, quotes, openRoutes(symbol, "a", "b"))

	require.Len(t, opps, 1)
	opp := opps[0]
	assert.Equal(t, "a", opp.BuyExchange)
	assert.Equal(t, "b", opp.SellExchange)
	assert.True(t, opp.BuyPrice.Equal(dec("100")))
	assert.True(t, opp.SellPrice.Equal(dec("103")))
	assert.True(t, opp.SpreadPct.Equal(dec("3")), "spread %s", opp.SpreadPct)
	assert.NotEmpty(t, opp.ID)
	assert.Equal(t, []string{"BTC"}, opp.Route.CompatibleChains)
}

func TestEvaluateNoRouteBlocksOpportunity(t *testing.T) {
	symbol := "BTC/USDT"
	quotes := map[string]domain.PricedQuote{
		"a": quote("a", symbol, "99", "100"),
		"b": quote("b", symbol, "103", "104"),
	}
	info := map[string]domain.CoinChainInfo{
		domain.QuoteKey("a", symbol): chainInfo("a", symbol, chain("SOL", true, true)),
		domain.QuoteKey("b", symbol): chainInfo("b", symbol, chain("TRC20", true, true)),
	}

	e := NewEvaluator(EvaluatorConfig{MinSpreadPct: dec("2")})
	assert.Empty(t, e.Evaluate(symbol, quotes, info))
}

func TestEvaluateSingleExchange(t *testing.T) {
	symbol := "BTC/USDT"
	quotes := map[string]domain.PricedQuote{
		"a": quote("a", symbol, "99", "100"),
	}
	e := NewEvaluator(EvaluatorConfig{MinSpreadPct: dec("0")})
	assert.Nil(t, e.Evaluate(symbol, quotes, openRoutes(symbol, "a")))
}

func TestEvaluateBelowThreshold(t *testing.T) {
	symbol := "BTC/USDT"
	quotes := map[string]domain.PricedQuote{
		"a": quote("a", symbol, "99", "100"),
		"b": quote("b", symbol, "100.5", "101"), // 0.5% spread
	}
	e := NewEvaluator(EvaluatorConfig{MinSpreadPct: dec("0.6")})
	assert.Empty(t, e.Evaluate(symbol, quotes, openRoutes(symbol, "a", "b")))
}

func TestEvaluateMaxSpreadCap(t *testing.T) {
	// A 50% spread is stale data or a delisted market, not free money.
	symbol := "XYZ/USDT"
	quotes := map[string]domain.PricedQuote{
		"a": quote("a", symbol, "0.9", "1"),
		"b": quote("b", symbol, "1.5", "1.6"),
	}
	e := NewEvaluator(EvaluatorConfig{MinSpreadPct: dec("0.6"), MaxSpreadPct: dec("35")})
	assert.Empty(t, e.Evaluate(symbol, quotes, openRoutes(symbol, "a", "b")))
}

func TestEvaluateDeterministicOrdering(t *testing.T) {
	symbol := "BTC/USDT"
	quotes := map[string]domain.PricedQuote{
		"a": quote("a", symbol, "100", "100"),
		"b": quote("b", symbol, "105", "100"),
		"c": quote("c", symbol, "110", "100"),
	}
	routes := openRoutes(symbol, "a", "b", "c")
	e := NewEvaluator(EvaluatorConfig{MinSpreadPct: dec("1")})

	type pair struct{ buy, sell, spread string }
	run := func() []pair {
		var out []pair
		for _, o := range e.Evaluate(symbol, quotes, routes) {
			out = append(out, pair{o.BuyExchange, o.SellExchange, o.SpreadPct.String()})
		}
		return out
	}

	first := run()
	require.NotEmpty(t, first)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, run())
	}

	// Highest spread first.
	assert.Equal(t, "c", first[0].sell)
	for i := 1; i < len(first); i++ {
		prev := dec(first[i-1].spread)
		cur := dec(first[i].spread)
		assert.True(t, prev.GreaterThanOrEqual(cur))
	}
}

func TestSortOpportunitiesTieBreaks(t *testing.T) {
	mk := func(symbol, buy, sell, spread string) domain.Opportunity {
		return domain.Opportunity{Symbol: symbol, BuyExchange: buy, SellExchange: sell, SpreadPct: dec(spread)}
	}
	opps := []domain.Opportunity{
		mk("ETH/USDT", "b", "c", "2"),
		mk("BTC/USDT", "b", "a", "2"),
		mk("BTC/USDT", "a", "c", "2"),
		mk("BTC/USDT", "a", "b", "5"),
	}
	SortOpportunities(opps)

	assert.True(t, opps[0].SpreadPct.Equal(dec("5")))
	assert.Equal(t, "BTC/USDT", opps[1].Symbol)
	assert.Equal(t, "a", opps[1].BuyExchange)
	assert.Equal(t, "c", opps[1].SellExchange)
	assert.Equal(t, "b", opps[2].BuyExchange)
	assert.Equal(t, "ETH/USDT", opps[3].Symbol)
}
