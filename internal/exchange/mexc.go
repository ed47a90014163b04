package exchange

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/kambulatAL/arbi-scanner/internal/crypto"
	"github.com/kambulatAL/arbi-scanner/internal/domain"
)

const (
	mexcName    = "mexc"
	mexcBaseURL = "https://api.mexc.com"
)

// MEXC adapts the MEXC v3 spot API. The capital config endpoint is signed
// with the query-string signature scheme and the X-MEXC-APIKEY header, and it
// returns every listed coin in one response, so the adapter filters locally.
type MEXC struct {
	rest    *restClient
	baseURL string
	depth   int
	auth    *crypto.HMACAuth
	nowMS   func() string
}

var _ Adapter = (*MEXC)(nil)

func NewMEXC(cfg Config) *MEXC {
	return &MEXC{
		rest:    newRESTClient(mexcName, cfg.HTTPClient),
		baseURL: cfg.baseURLOr(mexcBaseURL),
		depth:   cfg.depthOr(),
		auth:    &crypto.HMACAuth{Key: cfg.Credentials.APIKey, Secret: cfg.Credentials.APISecret},
		nowMS:   crypto.Timestamp,
	}
}

func (m *MEXC) Name() string { return mexcName }

func (m *MEXC) FetchOrderBook(ctx context.Context, symbol string) (domain.OrderBookSnapshot, error) {
	base, quote, err := splitSymbol(symbol)
	if err != nil {
		return domain.OrderBookSnapshot{}, m.rest.fetchErr(opOrderBook, symbol, domain.FetchMalformed, err)
	}

	var resp struct {
		Bids []rawLevel `json:"bids"`
		Asks []rawLevel `json:"asks"`
	}
	u := fmt.Sprintf("%s/api/v3/depth?limit=%d&symbol=%s%s", m.baseURL, m.depth, base, quote)
	if err := m.rest.getJSON(ctx, opOrderBook, symbol, u, nil, &resp); err != nil {
		return domain.OrderBookSnapshot{}, err
	}

	return newSnapshot(mexcName, symbol, toLevels(resp.Bids), toLevels(resp.Asks)), nil
}

func (m *MEXC) FetchTickers(ctx context.Context) (map[string]domain.Ticker, error) {
	// The 24h ticker endpoint returns a bare top-level array, no envelope.
	var resp []struct {
		Symbol      string          `json:"symbol"`
		BidPrice    decimal.Decimal `json:"bidPrice"`
		AskPrice    decimal.Decimal `json:"askPrice"`
		QuoteVolume decimal.Decimal `json:"quoteVolume"`
	}
	u := m.baseURL + "/api/v3/ticker/24hr"
	if err := m.rest.getJSON(ctx, opTickers, allSymbols, u, nil, &resp); err != nil {
		return nil, err
	}

	tickers := make(map[string]domain.Ticker, len(resp))
	for _, t := range resp {
		symbol, ok := canonicalConcat(t.Symbol)
		if !ok {
			continue
		}
		tickers[symbol] = domain.Ticker{
			Exchange:    mexcName,
			Symbol:      symbol,
			Bid:         t.BidPrice,
			Ask:         t.AskPrice,
			QuoteVolume: t.QuoteVolume,
		}
	}
	return tickers, nil
}

func (m *MEXC) FetchCoinChains(ctx context.Context, symbol string) (domain.CoinChainInfo, error) {
	base, _, err := splitSymbol(symbol)
	if err != nil {
		return domain.CoinChainInfo{}, m.rest.fetchErr(opCoinChains, symbol, domain.FetchMalformed, err)
	}

	query := "timestamp=" + m.nowMS()
	header := http.Header{"X-Mexc-Apikey": {m.auth.Key}}

	var resp []struct {
		Coin        string `json:"coin"`
		NetworkList []struct {
			Network        string `json:"network"`
			NetWork        string `json:"netWork"`
			DepositEnable  bool   `json:"depositEnable"`
			WithdrawEnable bool   `json:"withdrawEnable"`
		} `json:"networkList"`
	}
	u := m.baseURL + "/api/v3/capital/config/getall?" + m.auth.SignedQuery(query)
	if err := m.rest.getJSON(ctx, opCoinChains, symbol, u, header, &resp); err != nil {
		return domain.CoinChainInfo{}, err
	}

	info := domain.CoinChainInfo{Exchange: mexcName, Symbol: symbol}
	for _, coin := range resp {
		if coin.Coin != base {
			continue
		}
		for _, ch := range coin.NetworkList {
			// MEXC has shipped both spellings of the network field.
			name := ch.Network
			if name == "" {
				name = ch.NetWork
			}
			info.Chains = append(info.Chains, domain.ChainSupport{
				Name:            name,
				DepositEnabled:  ch.DepositEnable,
				WithdrawEnabled: ch.WithdrawEnable,
			})
		}
		break
	}
	return info, nil
}
