package exchange

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kambulatAL/arbi-scanner/internal/domain"
)

const (
	kucoinName    = "kucoin"
	kucoinBaseURL = "https://api.kucoin.com"
)

// KuCoin adapts the KuCoin spot API. Both endpoints used here are public.
type KuCoin struct {
	rest    *restClient
	baseURL string
}

var _ Adapter = (*KuCoin)(nil)

func NewKuCoin(cfg Config) *KuCoin {
	return &KuCoin{
		rest:    newRESTClient(kucoinName, cfg.HTTPClient),
		baseURL: cfg.baseURLOr(kucoinBaseURL),
	}
}

func (k *KuCoin) Name() string { return kucoinName }

func (k *KuCoin) FetchOrderBook(ctx context.Context, symbol string) (domain.OrderBookSnapshot, error) {
	base, quote, err := splitSymbol(symbol)
	if err != nil {
		return domain.OrderBookSnapshot{}, k.rest.fetchErr(opOrderBook, symbol, domain.FetchMalformed, err)
	}

	// level2_20 always returns the top 20 levels; pricing trims to the
	// configured depth downstream.
	var resp struct {
		Code string `json:"code"`
		Data struct {
			Bids []rawLevel `json:"bids"`
			Asks []rawLevel `json:"asks"`
		} `json:"data"`
	}
	u := fmt.Sprintf("%s/api/v1/market/orderbook/level2_20?symbol=%s-%s", k.baseURL, base, quote)
	if err := k.rest.getJSON(ctx, opOrderBook, symbol, u, nil, &resp); err != nil {
		return domain.OrderBookSnapshot{}, err
	}
	if resp.Code != "" && resp.Code != "200000" {
		return domain.OrderBookSnapshot{}, malformed(k.rest, opOrderBook, symbol, "code "+resp.Code)
	}

	return newSnapshot(kucoinName, symbol, toLevels(resp.Data.Bids), toLevels(resp.Data.Asks)), nil
}

func (k *KuCoin) FetchTickers(ctx context.Context) (map[string]domain.Ticker, error) {
	var resp struct {
		Code string `json:"code"`
		Data struct {
			Ticker []struct {
				Symbol   string          `json:"symbol"`
				Buy      decimal.Decimal `json:"buy"`
				Sell     decimal.Decimal `json:"sell"`
				VolValue decimal.Decimal `json:"volValue"`
			} `json:"ticker"`
		} `json:"data"`
	}
	u := k.baseURL + "/api/v1/market/allTickers"
	if err := k.rest.getJSON(ctx, opTickers, allSymbols, u, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Code != "" && resp.Code != "200000" {
		return nil, malformed(k.rest, opTickers, allSymbols, "code "+resp.Code)
	}

	tickers := make(map[string]domain.Ticker, len(resp.Data.Ticker))
	for _, t := range resp.Data.Ticker {
		symbol, ok := canonicalDashed(t.Symbol)
		if !ok {
			continue
		}
		tickers[symbol] = domain.Ticker{
			Exchange:    kucoinName,
			Symbol:      symbol,
			Bid:         t.Buy,
			Ask:         t.Sell,
			QuoteVolume: t.VolValue,
		}
	}
	return tickers, nil
}

func (k *KuCoin) FetchCoinChains(ctx context.Context, symbol string) (domain.CoinChainInfo, error) {
	base, _, err := splitSymbol(symbol)
	if err != nil {
		return domain.CoinChainInfo{}, k.rest.fetchErr(opCoinChains, symbol, domain.FetchMalformed, err)
	}

	var resp struct {
		Code string `json:"code"`
		Data struct {
			Currency string `json:"currency"`
			Chains   []struct {
				ChainName         string `json:"chainName"`
				Chain             string `json:"chain"`
				IsDepositEnabled  bool   `json:"isDepositEnabled"`
				IsWithdrawEnabled bool   `json:"isWithdrawEnabled"`
			} `json:"chains"`
		} `json:"data"`
	}
	u := k.baseURL + "/api/v2/currencies/" + base
	if err := k.rest.getJSON(ctx, opCoinChains, symbol, u, nil, &resp); err != nil {
		return domain.CoinChainInfo{}, err
	}
	if resp.Code != "" && resp.Code != "200000" {
		return domain.CoinChainInfo{}, malformed(k.rest, opCoinChains, symbol, "code "+resp.Code)
	}

	info := domain.CoinChainInfo{Exchange: kucoinName, Symbol: symbol}
	for _, ch := range resp.Data.Chains {
		name := ch.Chain
		if name == "" {
			name = ch.ChainName
		}
		info.Chains = append(info.Chains, domain.ChainSupport{
			Name:            name,
			DepositEnabled:  ch.IsDepositEnabled,
			WithdrawEnabled: ch.IsWithdrawEnabled,
		})
	}
	return info, nil
}
