package exchange

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/kambulatAL/arbi-scanner/internal/crypto"
	"github.com/kambulatAL/arbi-scanner/internal/domain"
)

const (
	bybitName       = "bybit"
	bybitBaseURL    = "https://api.bybit.com"
	bybitRecvWindow = "5000"
)

// Bybit adapts the Bybit v5 spot API. The coin chain endpoint requires a
// signed request with the X-BAPI header scheme.
type Bybit struct {
	rest    *restClient
	baseURL string
	depth   int
	auth    *crypto.HMACAuth
	nowMS   func() string
}

var _ Adapter = (*Bybit)(nil)

func NewBybit(cfg Config) *Bybit {
	return &Bybit{
		rest:    newRESTClient(bybitName, cfg.HTTPClient),
		baseURL: cfg.baseURLOr(bybitBaseURL),
		depth:   cfg.depthOr(),
		auth:    &crypto.HMACAuth{Key: cfg.Credentials.APIKey, Secret: cfg.Credentials.APISecret},
		nowMS:   crypto.Timestamp,
	}
}

func (b *Bybit) Name() string { return bybitName }

func (b *Bybit) FetchOrderBook(ctx context.Context, symbol string) (domain.OrderBookSnapshot, error) {
	base, quote, err := splitSymbol(symbol)
	if err != nil {
		return domain.OrderBookSnapshot{}, b.rest.fetchErr(opOrderBook, symbol, domain.FetchMalformed, err)
	}

	var resp struct {
		RetCode int    `json:"retCode"`
		RetMsg  string `json:"retMsg"`
		Result  struct {
			Asks []rawLevel `json:"a"`
			Bids []rawLevel `json:"b"`
			TS   int64      `json:"ts"`
		} `json:"result"`
	}
	u := fmt.Sprintf("%s/v5/market/orderbook?category=spot&limit=%d&symbol=%s%s",
		b.baseURL, b.depth, base, quote)
	if err := b.rest.getJSON(ctx, opOrderBook, symbol, u, nil, &resp); err != nil {
		return domain.OrderBookSnapshot{}, err
	}
	if resp.RetCode != 0 {
		return domain.OrderBookSnapshot{}, malformed(b.rest, opOrderBook, symbol,
			fmt.Sprintf("retCode %d: %s", resp.RetCode, resp.RetMsg))
	}

	snap := newSnapshot(bybitName, symbol, toLevels(resp.Result.Bids), toLevels(resp.Result.Asks))
	return snap, nil
}

func (b *Bybit) FetchTickers(ctx context.Context) (map[string]domain.Ticker, error) {
	var resp struct {
		RetCode int    `json:"retCode"`
		RetMsg  string `json:"retMsg"`
		Result  struct {
			List []struct {
				Symbol     string          `json:"symbol"`
				Bid        decimal.Decimal `json:"bid1Price"`
				Ask        decimal.Decimal `json:"ask1Price"`
				Turnover24 decimal.Decimal `json:"turnover24h"`
			} `json:"list"`
		} `json:"result"`
	}
	u := b.baseURL + "/v5/market/tickers?category=spot"
	if err := b.rest.getJSON(ctx, opTickers, allSymbols, u, nil, &resp); err != nil {
		return nil, err
	}
	if resp.RetCode != 0 {
		return nil, malformed(b.rest, opTickers, allSymbols,
			fmt.Sprintf("retCode %d: %s", resp.RetCode, resp.RetMsg))
	}

	tickers := make(map[string]domain.Ticker, len(resp.Result.List))
	for _, t := range resp.Result.List {
		symbol, ok := canonicalConcat(t.Symbol)
		if !ok {
			continue
		}
		tickers[symbol] = domain.Ticker{
			Exchange:    bybitName,
			Symbol:      symbol,
			Bid:         t.Bid,
			Ask:         t.Ask,
			QuoteVolume: t.Turnover24,
		}
	}
	return tickers, nil
}

func (b *Bybit) FetchCoinChains(ctx context.Context, symbol string) (domain.CoinChainInfo, error) {
	base, _, err := splitSymbol(symbol)
	if err != nil {
		return domain.CoinChainInfo{}, b.rest.fetchErr(opCoinChains, symbol, domain.FetchMalformed, err)
	}

	query := url.Values{"coin": {base}}.Encode()
	ts := b.nowMS()
	header := http.Header{
		"X-BAPI-API-KEY":     {b.auth.Key},
		"X-BAPI-TIMESTAMP":   {ts},
		"X-BAPI-RECV-WINDOW": {bybitRecvWindow},
		"X-BAPI-SIGN":        {b.auth.Sign(ts + b.auth.Key + bybitRecvWindow + query)},
	}

	var resp struct {
		RetCode int    `json:"retCode"`
		RetMsg  string `json:"retMsg"`
		Result  struct {
			Rows []struct {
				Coin   string `json:"coin"`
				Chains []struct {
					Chain         string `json:"chain"`
					ChainType     string `json:"chainType"`
					ChainDeposit  string `json:"chainDeposit"`
					ChainWithdraw string `json:"chainWithdraw"`
				} `json:"chains"`
			} `json:"rows"`
		} `json:"result"`
	}
	u := b.baseURL + "/v5/asset/coin/query-info?" + query
	if err := b.rest.getJSON(ctx, opCoinChains, symbol, u, header, &resp); err != nil {
		return domain.CoinChainInfo{}, err
	}
	if resp.RetCode != 0 {
		return domain.CoinChainInfo{}, malformed(b.rest, opCoinChains, symbol,
			fmt.Sprintf("retCode %d: %s", resp.RetCode, resp.RetMsg))
	}

	info := domain.CoinChainInfo{Exchange: bybitName, Symbol: symbol}
	if len(resp.Result.Rows) == 0 {
		return info, nil
	}
	for _, ch := range resp.Result.Rows[0].Chains {
		info.Chains = append(info.Chains, domain.ChainSupport{
			Name:            ch.Chain,
			DepositEnabled:  ch.ChainDeposit == "1",
			WithdrawEnabled: ch.ChainWithdraw == "1",
		})
	}
	return info, nil
}
