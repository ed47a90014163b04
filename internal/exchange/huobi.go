package exchange

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kambulatAL/arbi-scanner/internal/domain"
)

const (
	huobiName    = "huobi"
	huobiBaseURL = "https://api.huobi.pro"
)

// Huobi adapts the Huobi (HTX) spot API. Both endpoints used here are public.
// Huobi is the one venue that returns order book levels as bare JSON numbers
// rather than strings; rawLevel absorbs the difference.
type Huobi struct {
	rest    *restClient
	baseURL string
	depth   int
}

var _ Adapter = (*Huobi)(nil)

func NewHuobi(cfg Config) *Huobi {
	return &Huobi{
		rest:    newRESTClient(huobiName, cfg.HTTPClient),
		baseURL: cfg.baseURLOr(huobiBaseURL),
		depth:   cfg.depthOr(),
	}
}

func (h *Huobi) Name() string { return huobiName }

func (h *Huobi) FetchOrderBook(ctx context.Context, symbol string) (domain.OrderBookSnapshot, error) {
	base, quote, err := splitSymbol(symbol)
	if err != nil {
		return domain.OrderBookSnapshot{}, h.rest.fetchErr(opOrderBook, symbol, domain.FetchMalformed, err)
	}

	var resp struct {
		Status string `json:"status"`
		ErrMsg string `json:"err-msg"`
		Tick   struct {
			Bids []rawLevel `json:"bids"`
			Asks []rawLevel `json:"asks"`
		} `json:"tick"`
	}
	u := fmt.Sprintf("%s/market/depth?depth=%d&type=step1&symbol=%s",
		h.baseURL, h.depth, strings.ToLower(base+quote))
	if err := h.rest.getJSON(ctx, opOrderBook, symbol, u, nil, &resp); err != nil {
		return domain.OrderBookSnapshot{}, err
	}
	if resp.Status != "ok" {
		return domain.OrderBookSnapshot{}, malformed(h.rest, opOrderBook, symbol,
			fmt.Sprintf("status %q: %s", resp.Status, resp.ErrMsg))
	}

	return newSnapshot(huobiName, symbol, toLevels(resp.Tick.Bids), toLevels(resp.Tick.Asks)), nil
}

func (h *Huobi) FetchTickers(ctx context.Context) (map[string]domain.Ticker, error) {
	var resp struct {
		Status string `json:"status"`
		ErrMsg string `json:"err-msg"`
		Data   []struct {
			Symbol string          `json:"symbol"`
			Bid    decimal.Decimal `json:"bid"`
			Ask    decimal.Decimal `json:"ask"`
			Vol    decimal.Decimal `json:"vol"`
		} `json:"data"`
	}
	u := h.baseURL + "/market/tickers"
	if err := h.rest.getJSON(ctx, opTickers, allSymbols, u, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "ok" {
		return nil, malformed(h.rest, opTickers, allSymbols,
			fmt.Sprintf("status %q: %s", resp.Status, resp.ErrMsg))
	}

	tickers := make(map[string]domain.Ticker, len(resp.Data))
	for _, t := range resp.Data {
		// Huobi symbols are lowercase concatenated pairs ("btcusdt").
		symbol, ok := canonicalConcat(t.Symbol)
		if !ok {
			continue
		}
		tickers[symbol] = domain.Ticker{
			Exchange:    huobiName,
			Symbol:      symbol,
			Bid:         t.Bid,
			Ask:         t.Ask,
			QuoteVolume: t.Vol,
		}
	}
	return tickers, nil
}

func (h *Huobi) FetchCoinChains(ctx context.Context, symbol string) (domain.CoinChainInfo, error) {
	base, _, err := splitSymbol(symbol)
	if err != nil {
		return domain.CoinChainInfo{}, h.rest.fetchErr(opCoinChains, symbol, domain.FetchMalformed, err)
	}

	var resp struct {
		Code int `json:"code"`
		Data []struct {
			Currency string `json:"currency"`
			Chains   []struct {
				Chain          string `json:"chain"`
				DisplayName    string `json:"displayName"`
				DepositStatus  string `json:"depositStatus"`
				WithdrawStatus string `json:"withdrawStatus"`
			} `json:"chains"`
		} `json:"data"`
	}
	u := h.baseURL + "/v2/reference/currencies?currency=" + strings.ToLower(base)
	if err := h.rest.getJSON(ctx, opCoinChains, symbol, u, nil, &resp); err != nil {
		return domain.CoinChainInfo{}, err
	}
	if resp.Code != 200 {
		return domain.CoinChainInfo{}, malformed(h.rest, opCoinChains, symbol, fmt.Sprintf("code %d", resp.Code))
	}

	info := domain.CoinChainInfo{Exchange: huobiName, Symbol: symbol}
	if len(resp.Data) == 0 {
		return info, nil
	}
	for _, ch := range resp.Data[0].Chains {
		info.Chains = append(info.Chains, domain.ChainSupport{
			Name:            ch.Chain,
			DepositEnabled:  ch.DepositStatus == "allowed",
			WithdrawEnabled: ch.WithdrawStatus == "allowed",
		})
	}
	return info, nil
}
