// Package notify delivers opportunity alerts to external channels (Telegram,
// Discord). Alerts are fire-and-forget: a failed delivery is logged and never
// propagates into the scan loop.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kambulatAL/arbi-scanner/internal/domain"
)

// Sender is one notification channel.
type Sender interface {
	// Send delivers a notification with the given title and message body.
	Send(ctx context.Context, title, message string) error
	// Name returns the channel identifier (e.g. "telegram").
	Name() string
}

// maxAlertLines caps the opportunities listed per alert so a wide scan does
// not flood the channel.
const maxAlertLines = 10

// Notifier formats a cycle's opportunities and dispatches them to all
// configured senders. Only opportunities at or above AlertSpreadPct are
// included; an empty batch sends nothing.
type Notifier struct {
	senders        []Sender
	alertSpreadPct decimal.Decimal
	logger         *slog.Logger
}

// NewNotifier creates a Notifier over the given senders. alertSpreadPct sets
// the minimum spread worth an out-of-band ping; zero alerts on everything the
// evaluator emitted.
func NewNotifier(senders []Sender, alertSpreadPct decimal.Decimal, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		senders:        senders,
		alertSpreadPct: alertSpreadPct,
		logger:         logger.With(slog.String("component", "notifier")),
	}
}

// Alert formats and dispatches the opportunities of one published cycle.
func (n *Notifier) Alert(ctx context.Context, opps []domain.Opportunity) {
	if len(n.senders) == 0 {
		return
	}

	var lines []string
	for _, opp := range opps {
		if opp.SpreadPct.LessThan(n.alertSpreadPct) {
			continue
		}
		lines = append(lines, formatOpportunity(opp))
		if len(lines) == maxAlertLines {
			break
		}
	}
	if len(lines) == 0 {
		return
	}

	title := fmt.Sprintf("Arbitrage: %d opportunity(ies)", len(lines))
	message := strings.Join(lines, "\n")
	n.dispatch(ctx, title, message)
}

// formatOpportunity renders one opportunity as a single alert line:
//
//	BTC/USDT: bybit >> kucoin, spread 1.42%, buy 64201.5, sell 65113.2, chains BTC
func formatOpportunity(opp domain.Opportunity) string {
	return fmt.Sprintf("%s: %s >> %s, spread %s%%, buy %s, sell %s, chains %s",
		opp.Symbol,
		opp.BuyExchange,
		opp.SellExchange,
		opp.SpreadPct.Round(2),
		opp.BuyPrice,
		opp.SellPrice,
		strings.Join(opp.Route.CompatibleChains, "/"),
	)
}

// dispatch sends to every sender; one channel failing does not stop the rest.
func (n *Notifier) dispatch(ctx context.Context, title, message string) {
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			continue
		}
		n.logger.DebugContext(ctx, "notification sent",
			slog.String("sender", s.Name()),
			slog.String("title", title),
		)
	}
}
