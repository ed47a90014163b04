package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kambulatAL/arbi-scanner/internal/domain"
)

func chainInfo(exchange, symbol string, chains ...domain.ChainSupport) domain.CoinChainInfo {
	return domain.CoinChainInfo{Exchange: exchange, Symbol: symbol, Chains: chains}
}

func chain(name string, dep, wd bool) domain.ChainSupport {
	return domain.ChainSupport{Name: name, DepositEnabled: dep, WithdrawEnabled: wd}
}

func TestRoute(t *testing.T) {
	symbol := "BTC/USDT"
	info := map[string]domain.CoinChainInfo{
		domain.QuoteKey("bybit", symbol): chainInfo("bybit", symbol,
			chain("BTC", true, true),
			chain("TRC20", true, true),
			chain("ERC20", true, false), // withdrawal suspended
		),
		domain.QuoteKey("kucoin", symbol): chainInfo("kucoin", symbol,
			chain("BTC", true, true),
			chain("ERC20", true, true),
		),
		domain.QuoteKey("mexc", symbol): chainInfo("mexc", symbol,
			chain("SOL", true, true),
		),
	}

	t.Run("intersection found", func(t *testing.T) {
		route, ok := Route(symbol, "bybit", "kucoin", info)
		require.True(t, ok)
		assert.Equal(t, "bybit", route.FromExchange)
		assert.Equal(t, "kucoin", route.ToExchange)
		assert.Equal(t, []string{"BTC"}, route.CompatibleChains)
	})

	t.Run("withdraw-disabled chain excluded", func(t *testing.T) {
		// ERC20 deposits work on kucoin but bybit cannot withdraw on it.
		route, _ := Route(symbol, "bybit", "kucoin", info)
		assert.NotContains(t, route.CompatibleChains, "ERC20")
	})

	t.Run("no common chain", func(t *testing.T) {
		_, ok := Route(symbol, "bybit", "mexc", info)
		assert.False(t, ok)
	})

	t.Run("missing source info blocks route", func(t *testing.T) {
		_, ok := Route(symbol, "huobi", "kucoin", info)
		assert.False(t, ok)
	})

	t.Run("missing destination info blocks route", func(t *testing.T) {
		_, ok := Route(symbol, "bybit", "huobi", info)
		assert.False(t, ok)
	})
}

func TestRouteCaseInsensitiveChainNames(t *testing.T) {
	symbol := "SOL/USDT"
	info := map[string]domain.CoinChainInfo{
		domain.QuoteKey("bingx", symbol):  chainInfo("bingx", symbol, chain("sol", true, true)),
		domain.QuoteKey("bitget", symbol): chainInfo("bitget", symbol, chain("SOL", true, true)),
	}

	route, ok := Route(symbol, "bingx", "bitget", info)
	require.True(t, ok)
	require.Len(t, route.CompatibleChains, 1)
}

func TestRouteSortedChains(t *testing.T) {
	symbol := "ETH/USDT"
	info := map[string]domain.CoinChainInfo{
		domain.QuoteKey("a", symbol): chainInfo("a", symbol,
			chain("ZKSYNC", true, true), chain("ARB", true, true), chain("ERC20", true, true)),
		domain.QuoteKey("b", symbol): chainInfo("b", symbol,
			chain("ERC20", true, true), chain("ZKSYNC", true, true), chain("ARB", true, true)),
	}

	route, ok := Route(symbol, "a", "b", info)
	require.True(t, ok)
	assert.Equal(t, []string{"ARB", "ERC20", "ZKSYNC"}, route.CompatibleChains)
}
