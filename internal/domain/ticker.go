package domain

import "github.com/shopspring/decimal"

// Ticker is one exchange's 24h market summary for a symbol, used to discover
// which symbols are worth scanning. QuoteVolume is the 24h turnover in the
// quote currency.
type Ticker struct {
	Exchange    string          `json:"exchange"`
	Symbol      string          `json:"symbol"`
	Bid         decimal.Decimal `json:"bid"`
	Ask         decimal.Decimal `json:"ask"`
	QuoteVolume decimal.Decimal `json:"quote_volume"`
}
