package exchange

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kambulatAL/arbi-scanner/internal/domain"
)

func TestSplitSymbol(t *testing.T) {
	tests := []struct {
		in        string
		base      string
		quote     string
		expectErr bool
	}{
		{in: "BTC/USDT", base: "BTC", quote: "USDT"},
		{in: "eth/usdt", base: "ETH", quote: "USDT"},
		{in: "BTCUSDT", expectErr: true},
		{in: "/USDT", expectErr: true},
		{in: "BTC/", expectErr: true},
		{in: "", expectErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			base, quote, err := splitSymbol(tt.in)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.base, base)
			assert.Equal(t, tt.quote, quote)
		})
	}
}

func TestBybitFetchOrderBook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v5/market/orderbook", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		assert.Equal(t, "spot", r.URL.Query().Get("category"))
		w.Write([]byte(`{
			"retCode": 0,
			"result": {
				"a": [["65001.5", "0.4"], ["65000.1", "1.2"]],
				"b": [["64998.0", "0.7"], ["64999.2", "0.3"]],
				"ts": 1700000000000
			}
		}`))
	}))
	defer srv.Close()

	b := NewBybit(Config{BaseURL: srv.URL})
	snap, err := b.FetchOrderBook(context.Background(), "BTC/USDT")
	require.NoError(t, err)

	assert.Equal(t, "bybit", snap.Exchange)
	assert.Equal(t, "BTC/USDT", snap.Symbol)
	require.Len(t, snap.Bids, 2)
	require.Len(t, snap.Asks, 2)
	// Canonical ordering regardless of response order.
	assert.True(t, snap.Bids[0].Price.Equal(decimal.RequireFromString("64999.2")))
	assert.True(t, snap.Asks[0].Price.Equal(decimal.RequireFromString("65000.1")))
	assert.True(t, snap.Usable())
}

func TestBybitFetchCoinChainsSigned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v5/asset/coin/query-info", r.URL.Path)
		assert.Equal(t, "key1", r.Header.Get("X-BAPI-API-KEY"))
		assert.NotEmpty(t, r.Header.Get("X-BAPI-TIMESTAMP"))
		assert.NotEmpty(t, r.Header.Get("X-BAPI-SIGN"))
		w.Write([]byte(`{
			"retCode": 0,
			"result": {"rows": [{"coin": "BTC", "chains": [
				{"chain": "BTC", "chainType": "BTC", "chainDeposit": "1", "chainWithdraw": "1"},
				{"chain": "TRX", "chainType": "TRC20", "chainDeposit": "0", "chainWithdraw": "1"}
			]}]}
		}`))
	}))
	defer srv.Close()

	b := NewBybit(Config{BaseURL: srv.URL, Credentials: Credentials{APIKey: "key1", APISecret: "sec1"}})
	info, err := b.FetchCoinChains(context.Background(), "BTC/USDT")
	require.NoError(t, err)

	require.Len(t, info.Chains, 2)
	assert.Equal(t, []string{"BTC"}, info.DepositChains())
	assert.Equal(t, []string{"BTC", "TRX"}, info.WithdrawChains())
}

func TestKuCoinFetchOrderBook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/market/orderbook/level2_20", r.URL.Path)
		assert.Equal(t, "ETH-USDT", r.URL.Query().Get("symbol"))
		w.Write([]byte(`{
			"code": "200000",
			"data": {
				"bids": [["3200.5", "2"], ["3200.1", "5"]],
				"asks": [["3201.0", "1"], ["3201.4", "3"]]
			}
		}`))
	}))
	defer srv.Close()

	k := NewKuCoin(Config{BaseURL: srv.URL})
	snap, err := k.FetchOrderBook(context.Background(), "ETH/USDT")
	require.NoError(t, err)
	require.Len(t, snap.Bids, 2)
	assert.True(t, snap.Bids[0].Price.Equal(decimal.RequireFromString("3200.5")))
}

func TestKuCoinFetchCoinChains(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/currencies/ETH", r.URL.Path)
		w.Write([]byte(`{
			"code": "200000",
			"data": {"currency": "ETH", "chains": [
				{"chainName": "ERC20", "chain": "eth", "isDepositEnabled": true, "isWithdrawEnabled": false},
				{"chainName": "KCC", "chain": "kcc", "isDepositEnabled": false, "isWithdrawEnabled": true}
			]}
		}`))
	}))
	defer srv.Close()

	k := NewKuCoin(Config{BaseURL: srv.URL})
	info, err := k.FetchCoinChains(context.Background(), "ETH/USDT")
	require.NoError(t, err)
	assert.Equal(t, []string{"eth"}, info.DepositChains())
	assert.Equal(t, []string{"kcc"}, info.WithdrawChains())
}

func TestHuobiFetchOrderBookNumericLevels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/market/depth", r.URL.Path)
		assert.Equal(t, "btcusdt", r.URL.Query().Get("symbol"))
		w.Write([]byte(`{
			"status": "ok",
			"tick": {
				"bids": [[64999.2, 0.3], [64998.0, 0.7]],
				"asks": [[65000.1, 1.2], [65001.5, 0.4]]
			}
		}`))
	}))
	defer srv.Close()

	h := NewHuobi(Config{BaseURL: srv.URL})
	snap, err := h.FetchOrderBook(context.Background(), "BTC/USDT")
	require.NoError(t, err)
	require.Len(t, snap.Bids, 2)
	assert.True(t, snap.Bids[0].Price.Equal(decimal.RequireFromString("64999.2")))
	assert.True(t, snap.Asks[0].Quantity.Equal(decimal.RequireFromString("1.2")))
}

func TestHuobiFetchCoinChains(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "btc", r.URL.Query().Get("currency"))
		w.Write([]byte(`{
			"code": 200,
			"data": [{"currency": "btc", "chains": [
				{"chain": "btc", "displayName": "BTC", "depositStatus": "allowed", "withdrawStatus": "allowed"},
				{"chain": "hbtc", "displayName": "HECO", "depositStatus": "prohibited", "withdrawStatus": "allowed"}
			]}]
		}`))
	}))
	defer srv.Close()

	h := NewHuobi(Config{BaseURL: srv.URL})
	info, err := h.FetchCoinChains(context.Background(), "BTC/USDT")
	require.NoError(t, err)
	assert.Equal(t, []string{"btc"}, info.DepositChains())
	assert.Equal(t, []string{"btc", "hbtc"}, info.WithdrawChains())
}

func TestBingXFetchCoinChainsSignedQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openApi/wallets/v1/capital/config/getall", r.URL.Path)
		assert.Equal(t, "bx-key", r.Header.Get("X-BX-APIKEY"))
		assert.NotEmpty(t, r.URL.Query().Get("signature"))
		assert.Equal(t, "SOL", r.URL.Query().Get("coin"))
		w.Write([]byte(`{
			"code": 0,
			"data": [{"coin": "SOL", "networkList": [
				{"name": "Solana", "network": "SOL", "depositEnable": true, "withdrawEnable": true},
				{"name": "BSC", "network": "BEP20", "depositEnable": false, "withdrawEnable": false}
			]}]
		}`))
	}))
	defer srv.Close()

	b := NewBingX(Config{BaseURL: srv.URL, Credentials: Credentials{APIKey: "bx-key", APISecret: "bx-sec"}})
	info, err := b.FetchCoinChains(context.Background(), "SOL/USDT")
	require.NoError(t, err)
	assert.Equal(t, []string{"SOL"}, info.DepositChains())
	assert.Equal(t, []string{"SOL"}, info.WithdrawChains())
}

func TestBitgetFetchCoinChainsStringFlags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/spot/public/coins", r.URL.Path)
		w.Write([]byte(`{
			"code": "00000",
			"data": [{"coin": "XRP", "chains": [
				{"chain": "XRP", "rechargeable": "true", "withdrawable": "true"},
				{"chain": "BEP20", "rechargeable": "false", "withdrawable": "true"}
			]}]
		}`))
	}))
	defer srv.Close()

	b := NewBitget(Config{BaseURL: srv.URL})
	info, err := b.FetchCoinChains(context.Background(), "XRP/USDT")
	require.NoError(t, err)
	assert.Equal(t, []string{"XRP"}, info.DepositChains())
	assert.Equal(t, []string{"XRP", "BEP20"}, info.WithdrawChains())
}

func TestMEXCFetchOrderBookTopLevelArrays(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/depth", r.URL.Path)
		assert.Equal(t, "DOGEUSDT", r.URL.Query().Get("symbol"))
		w.Write([]byte(`{
			"bids": [["0.158", "10000"]],
			"asks": [["0.159", "8000"]]
		}`))
	}))
	defer srv.Close()

	m := NewMEXC(Config{BaseURL: srv.URL})
	snap, err := m.FetchOrderBook(context.Background(), "DOGE/USDT")
	require.NoError(t, err)
	require.Len(t, snap.Bids, 1)
	assert.True(t, snap.Bids[0].Price.Equal(decimal.RequireFromString("0.158")))
}

func TestMEXCFetchCoinChainsFiltersByCoin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/capital/config/getall", r.URL.Path)
		assert.Equal(t, "mx-key", r.Header.Get("X-MEXC-APIKEY"))
		assert.NotEmpty(t, r.URL.Query().Get("signature"))
		w.Write([]byte(`[
			{"coin": "BTC", "networkList": [{"network": "BTC", "depositEnable": true, "withdrawEnable": true}]},
			{"coin": "DOGE", "networkList": [
				{"netWork": "DOGE", "depositEnable": true, "withdrawEnable": false},
				{"network": "BEP20", "depositEnable": false, "withdrawEnable": true}
			]}
		]`))
	}))
	defer srv.Close()

	m := NewMEXC(Config{BaseURL: srv.URL, Credentials: Credentials{APIKey: "mx-key", APISecret: "mx-sec"}})
	info, err := m.FetchCoinChains(context.Background(), "DOGE/USDT")
	require.NoError(t, err)
	require.Len(t, info.Chains, 2)
	assert.Equal(t, []string{"DOGE"}, info.DepositChains())
	assert.Equal(t, []string{"BEP20"}, info.WithdrawChains())
}

func TestFetchTickers(t *testing.T) {
	t.Run("bybit concatenated symbols", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v5/market/tickers", r.URL.Path)
			assert.Equal(t, "spot", r.URL.Query().Get("category"))
			w.Write([]byte(`{
				"retCode": 0,
				"result": {"list": [
					{"symbol": "BTCUSDT", "bid1Price": "64999.2", "ask1Price": "65000.1", "turnover24h": "350000.5"},
					{"symbol": "ETHBTC", "bid1Price": "0.05", "ask1Price": "0.051", "turnover24h": "900"}
				]}
			}`))
		}))
		defer srv.Close()

		b := NewBybit(Config{BaseURL: srv.URL})
		tickers, err := b.FetchTickers(context.Background())
		require.NoError(t, err)

		// Non-USDT pairs cannot be normalized and are skipped.
		require.Len(t, tickers, 1)
		tk := tickers["BTC/USDT"]
		assert.Equal(t, "bybit", tk.Exchange)
		assert.True(t, tk.Bid.Equal(decimal.RequireFromString("64999.2")))
		assert.True(t, tk.QuoteVolume.Equal(decimal.RequireFromString("350000.5")))
	})

	t.Run("kucoin dashed symbols", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/market/allTickers", r.URL.Path)
			w.Write([]byte(`{
				"code": "200000",
				"data": {"ticker": [
					{"symbol": "BTC-USDT", "buy": "64998.0", "sell": "65001.5", "volValue": "410000"},
					{"symbol": "ETH-BTC", "buy": "0.05", "sell": "0.051", "volValue": "12000"}
				]}
			}`))
		}))
		defer srv.Close()

		k := NewKuCoin(Config{BaseURL: srv.URL})
		tickers, err := k.FetchTickers(context.Background())
		require.NoError(t, err)

		require.Len(t, tickers, 2)
		assert.True(t, tickers["BTC/USDT"].QuoteVolume.Equal(decimal.RequireFromString("410000")))
		assert.Contains(t, tickers, "ETH/BTC")
	})

	t.Run("huobi lowercase numeric fields", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/market/tickers", r.URL.Path)
			w.Write([]byte(`{
				"status": "ok",
				"data": [
					{"symbol": "btcusdt", "bid": 64999.2, "ask": 65000.1, "vol": 275000.75},
					{"symbol": "ethbtc", "bid": 0.05, "ask": 0.051, "vol": 800}
				]
			}`))
		}))
		defer srv.Close()

		h := NewHuobi(Config{BaseURL: srv.URL})
		tickers, err := h.FetchTickers(context.Background())
		require.NoError(t, err)

		require.Len(t, tickers, 1)
		tk := tickers["BTC/USDT"]
		assert.True(t, tk.Ask.Equal(decimal.RequireFromString("65000.1")))
		assert.True(t, tk.QuoteVolume.Equal(decimal.RequireFromString("275000.75")))
	})

	t.Run("bingx timestamp param", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/openApi/spot/v1/ticker/24hr", r.URL.Path)
			assert.NotEmpty(t, r.URL.Query().Get("timestamp"))
			w.Write([]byte(`{
				"code": 0,
				"data": [
					{"symbol": "BTC-USDT", "bidPrice": "64998.0", "askPrice": "65001.5", "quoteVolume": "220000"},
					{"symbol": "NEW-USDT", "quoteVolume": "50"}
				]
			}`))
		}))
		defer srv.Close()

		b := NewBingX(Config{BaseURL: srv.URL})
		tickers, err := b.FetchTickers(context.Background())
		require.NoError(t, err)

		require.Len(t, tickers, 2)
		assert.True(t, tickers["BTC/USDT"].QuoteVolume.Equal(decimal.RequireFromString("220000")))
		// Missing bid/ask fields decode as zero.
		assert.True(t, tickers["NEW/USDT"].Bid.IsZero())
	})

	t.Run("bitget usdt volume", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v2/spot/market/tickers", r.URL.Path)
			w.Write([]byte(`{
				"code": "00000",
				"data": [
					{"symbol": "XRPUSDT", "bidPr": "0.52", "askPr": "0.521", "usdtVolume": "310000"}
				]
			}`))
		}))
		defer srv.Close()

		b := NewBitget(Config{BaseURL: srv.URL})
		tickers, err := b.FetchTickers(context.Background())
		require.NoError(t, err)

		require.Len(t, tickers, 1)
		assert.True(t, tickers["XRP/USDT"].QuoteVolume.Equal(decimal.RequireFromString("310000")))
	})

	t.Run("mexc top-level array", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v3/ticker/24hr", r.URL.Path)
			w.Write([]byte(`[
				{"symbol": "DOGEUSDT", "bidPrice": "0.158", "askPrice": "0.159", "quoteVolume": "205000"},
				{"symbol": "DOGEBTC", "bidPrice": "0.0000024", "askPrice": "0.0000025", "quoteVolume": "3"}
			]`))
		}))
		defer srv.Close()

		m := NewMEXC(Config{BaseURL: srv.URL})
		tickers, err := m.FetchTickers(context.Background())
		require.NoError(t, err)

		require.Len(t, tickers, 1)
		assert.True(t, tickers["DOGE/USDT"].Ask.Equal(decimal.RequireFromString("0.159")))
	})

	t.Run("bybit error envelope", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"retCode": 10001, "retMsg": "param error"}`))
		}))
		defer srv.Close()

		b := NewBybit(Config{BaseURL: srv.URL})
		_, err := b.FetchTickers(context.Background())
		var fe *domain.FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, domain.FetchMalformed, fe.Kind)
		assert.Equal(t, "tickers", fe.Op)
	})
}

func TestFetchErrorClassification(t *testing.T) {
	t.Run("rate limited", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		k := NewKuCoin(Config{BaseURL: srv.URL})
		_, err := k.FetchOrderBook(context.Background(), "BTC/USDT")
		var fe *domain.FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, domain.FetchRateLimited, fe.Kind)
		assert.Equal(t, "kucoin", fe.Exchange)
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data": "not an order book`))
		}))
		defer srv.Close()

		b := NewBitget(Config{BaseURL: srv.URL})
		_, err := b.FetchOrderBook(context.Background(), "BTC/USDT")
		var fe *domain.FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, domain.FetchMalformed, fe.Kind)
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		h := NewHuobi(Config{BaseURL: srv.URL})
		_, err := h.FetchOrderBook(ctx, "BTC/USDT")
		var fe *domain.FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, domain.FetchTimeout, fe.Kind)
	})

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		m := NewMEXC(Config{BaseURL: srv.URL})
		_, err := m.FetchOrderBook(context.Background(), "BTC/USDT")
		var fe *domain.FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, domain.FetchNetwork, fe.Kind)
	})
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"bingx", "bitget", "bybit", "huobi", "kucoin", "mexc"}, Supported())

	a, err := New("bybit", Config{})
	require.NoError(t, err)
	assert.Equal(t, "bybit", a.Name())

	_, err = New("binance", Config{})
	require.Error(t, err)

	adapters, err := NewAll([]string{"kucoin", "mexc"}, Options{Depth: 10})
	require.NoError(t, err)
	require.Len(t, adapters, 2)
	assert.Equal(t, "kucoin", adapters[0].Name())
	assert.Equal(t, "mexc", adapters[1].Name())

	_, err = NewAll([]string{"kucoin", "nope"}, Options{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}
