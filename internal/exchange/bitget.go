package exchange

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kambulatAL/arbi-scanner/internal/domain"
)

const (
	bitgetName    = "bitget"
	bitgetBaseURL = "https://api.bitget.com"
)

// Bitget adapts the Bitget v2 spot API. Both endpoints used here are public.
type Bitget struct {
	rest    *restClient
	baseURL string
	depth   int
}

var _ Adapter = (*Bitget)(nil)

func NewBitget(cfg Config) *Bitget {
	return &Bitget{
		rest:    newRESTClient(bitgetName, cfg.HTTPClient),
		baseURL: cfg.baseURLOr(bitgetBaseURL),
		depth:   cfg.depthOr(),
	}
}

func (b *Bitget) Name() string { return bitgetName }

func (b *Bitget) FetchOrderBook(ctx context.Context, symbol string) (domain.OrderBookSnapshot, error) {
	base, quote, err := splitSymbol(symbol)
	if err != nil {
		return domain.OrderBookSnapshot{}, b.rest.fetchErr(opOrderBook, symbol, domain.FetchMalformed, err)
	}

	var resp struct {
		Code string `json:"code"`
		Msg  string `json:"msg"`
		Data struct {
			Bids []rawLevel `json:"bids"`
			Asks []rawLevel `json:"asks"`
		} `json:"data"`
	}
	u := fmt.Sprintf("%s/api/v2/spot/market/orderbook?type=step1&limit=%d&symbol=%s%s",
		b.baseURL, b.depth, base, quote)
	if err := b.rest.getJSON(ctx, opOrderBook, symbol, u, nil, &resp); err != nil {
		return domain.OrderBookSnapshot{}, err
	}
	if resp.Code != "" && resp.Code != "00000" {
		return domain.OrderBookSnapshot{}, malformed(b.rest, opOrderBook, symbol,
			fmt.Sprintf("code %s: %s", resp.Code, resp.Msg))
	}

	return newSnapshot(bitgetName, symbol, toLevels(resp.Data.Bids), toLevels(resp.Data.Asks)), nil
}

func (b *Bitget) FetchTickers(ctx context.Context) (map[string]domain.Ticker, error) {
	var resp struct {
		Code string `json:"code"`
		Msg  string `json:"msg"`
		Data []struct {
			Symbol     string          `json:"symbol"`
			BidPr      decimal.Decimal `json:"bidPr"`
			AskPr      decimal.Decimal `json:"askPr"`
			USDTVolume decimal.Decimal `json:"usdtVolume"`
		} `json:"data"`
	}
	u := b.baseURL + "/api/v2/spot/market/tickers"
	if err := b.rest.getJSON(ctx, opTickers, allSymbols, u, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Code != "" && resp.Code != "00000" {
		return nil, malformed(b.rest, opTickers, allSymbols,
			fmt.Sprintf("code %s: %s", resp.Code, resp.Msg))
	}

	tickers := make(map[string]domain.Ticker, len(resp.Data))
	for _, t := range resp.Data {
		symbol, ok := canonicalConcat(t.Symbol)
		if !ok {
			continue
		}
		tickers[symbol] = domain.Ticker{
			Exchange:    bitgetName,
			Symbol:      symbol,
			Bid:         t.BidPr,
			Ask:         t.AskPr,
			QuoteVolume: t.USDTVolume,
		}
	}
	return tickers, nil
}

func (b *Bitget) FetchCoinChains(ctx context.Context, symbol string) (domain.CoinChainInfo, error) {
	base, _, err := splitSymbol(symbol)
	if err != nil {
		return domain.CoinChainInfo{}, b.rest.fetchErr(opCoinChains, symbol, domain.FetchMalformed, err)
	}

	var resp struct {
		Code string `json:"code"`
		Msg  string `json:"msg"`
		Data []struct {
			Coin   string `json:"coin"`
			Chains []struct {
				Chain        string `json:"chain"`
				Rechargeable string `json:"rechargeable"`
				Withdrawable string `json:"withdrawable"`
			} `json:"chains"`
		} `json:"data"`
	}
	u := b.baseURL + "/api/v2/spot/public/coins?coin=" + base
	if err := b.rest.getJSON(ctx, opCoinChains, symbol, u, nil, &resp); err != nil {
		return domain.CoinChainInfo{}, err
	}
	if resp.Code != "" && resp.Code != "00000" {
		return domain.CoinChainInfo{}, malformed(b.rest, opCoinChains, symbol,
			fmt.Sprintf("code %s: %s", resp.Code, resp.Msg))
	}

	info := domain.CoinChainInfo{Exchange: bitgetName, Symbol: symbol}
	if len(resp.Data) == 0 {
		return info, nil
	}
	for _, ch := range resp.Data[0].Chains {
		info.Chains = append(info.Chains, domain.ChainSupport{
			Name:            ch.Chain,
			DepositEnabled:  ch.Rechargeable == "true",
			WithdrawEnabled: ch.Withdrawable == "true",
		})
	}
	return info, nil
}
