package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kambulatAL/arbi-scanner/internal/domain"
)

type stubSender struct {
	name     string
	err      error
	titles   []string
	messages []string
}

func (s *stubSender) Send(ctx context.Context, title, message string) error {
	if s.err != nil {
		return s.err
	}
	s.titles = append(s.titles, title)
	s.messages = append(s.messages, message)
	return nil
}

func (s *stubSender) Name() string { return s.name }

func opp(symbol, buy, sell, spread string) domain.Opportunity {
	return domain.Opportunity{
		Symbol:       symbol,
		BuyExchange:  buy,
		SellExchange: sell,
		BuyPrice:     decimal.RequireFromString("100"),
		SellPrice:    decimal.RequireFromString("103"),
		SpreadPct:    decimal.RequireFromString(spread),
		Route:        domain.TransferRoute{CompatibleChains: []string{"BTC"}},
	}
}

func TestAlertFiltersBySpread(t *testing.T) {
	s := &stubSender{name: "stub"}
	n := NewNotifier([]Sender{s}, decimal.RequireFromString("2"), nil)

	n.Alert(context.Background(), []domain.Opportunity{
		opp("BTC/USDT", "bybit", "kucoin", "3.5"),
		opp("ETH/USDT", "mexc", "bitget", "0.8"), // below alert threshold
	})

	require.Len(t, s.messages, 1)
	assert.Contains(t, s.messages[0], "BTC/USDT")
	assert.Contains(t, s.messages[0], "bybit >> kucoin")
	assert.NotContains(t, s.messages[0], "ETH/USDT")
}

func TestAlertNothingBelowThreshold(t *testing.T) {
	s := &stubSender{name: "stub"}
	n := NewNotifier([]Sender{s}, decimal.RequireFromString("5"), nil)

	n.Alert(context.Background(), []domain.Opportunity{
		opp("BTC/USDT", "bybit", "kucoin", "3.5"),
	})
	assert.Empty(t, s.messages)
}

func TestAlertFailingSenderDoesNotBlockOthers(t *testing.T) {
	bad := &stubSender{name: "bad", err: errors.New("webhook down")}
	good := &stubSender{name: "good"}
	n := NewNotifier([]Sender{bad, good}, decimal.Zero, nil)

	n.Alert(context.Background(), []domain.Opportunity{
		opp("BTC/USDT", "bybit", "kucoin", "1.0"),
	})
	assert.Len(t, good.messages, 1)
}

func TestAlertCapsLines(t *testing.T) {
	s := &stubSender{name: "stub"}
	n := NewNotifier([]Sender{s}, decimal.Zero, nil)

	var opps []domain.Opportunity
	for i := 0; i < 25; i++ {
		opps = append(opps, opp("BTC/USDT", "a", "b", "1.5"))
	}
	n.Alert(context.Background(), opps)

	require.Len(t, s.titles, 1)
	assert.Contains(t, s.titles[0], "10")
}
