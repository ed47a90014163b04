package scanner

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kambulatAL/arbi-scanner/internal/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func levels(pairs ...string) []domain.BookLevel {
	if len(pairs)%2 != 0 {
		panic("levels: want price/quantity pairs")
	}
	out := make([]domain.BookLevel, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, domain.BookLevel{Price: dec(pairs[i]), Quantity: dec(pairs[i+1])})
	}
	return out
}

func TestDepthPrice(t *testing.T) {
	tests := []struct {
		name   string
		levels []domain.BookLevel
		depth  int
		want   string
		err    error
	}{
		{
			name:   "single level",
			levels: levels("100", "2"),
			depth:  5,
			want:   "100",
		},
		{
			name: "weighted average",
			// (100*1 + 102*3) / 4 = 101.5
			levels: levels("100", "1", "102", "3"),
			depth:  5,
			want:   "101.5",
		},
		{
			name:   "depth limits levels used",
			levels: levels("100", "1", "102", "1", "999", "100"),
			depth:  2,
			want:   "101",
		},
		{
			name:   "fewer levels than depth degrades",
			levels: levels("50", "2", "52", "2"),
			depth:  5,
			want:   "51",
		},
		{
			name:   "zero total quantity",
			levels: levels("100", "0", "101", "0"),
			depth:  5,
			err:    domain.ErrInsufficientDepth,
		},
		{
			name:  "empty levels",
			depth: 5,
			err:   domain.ErrInsufficientDepth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DepthPrice(tt.levels, tt.depth)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestDepthPriceRejectsNonPositiveDepth(t *testing.T) {
	_, err := DepthPrice(levels("100", "1"), 0)
	require.Error(t, err)
}

func TestDepthPriceWithinLevelBounds(t *testing.T) {
	cases := [][]domain.BookLevel{
		levels("100", "1", "105", "2", "110", "0.5"),
		levels("0.0001", "100000", "0.0002", "50000"),
		levels("64999.2", "0.3", "64998.0", "0.7"),
	}
	for _, lvls := range cases {
		got, err := DepthPrice(lvls, 5)
		require.NoError(t, err)

		lo, hi := lvls[0].Price, lvls[0].Price
		for _, lv := range lvls {
			if lv.Price.LessThan(lo) {
				lo = lv.Price
			}
			if lv.Price.GreaterThan(hi) {
				hi = lv.Price
			}
		}
		assert.True(t, got.GreaterThanOrEqual(lo), "price %s below min %s", got, lo)
		assert.True(t, got.LessThanOrEqual(hi), "price %s above max %s", got, hi)
	}
}

func TestPriceQuote(t *testing.T) {
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	snap := domain.OrderBookSnapshot{
		Exchange:  "bybit",
		Symbol:    "BTC/USDT",
		Bids:      levels("100", "1", "99", "1"),
		Asks:      levels("101", "1", "102", "1"),
		Timestamp: ts,
	}

	quote, err := PriceQuote(snap, 5)
	require.NoError(t, err)
	assert.Equal(t, "bybit", quote.Exchange)
	assert.Equal(t, "BTC/USDT", quote.Symbol)
	assert.True(t, quote.DepthBid.Equal(dec("99.5")))
	assert.True(t, quote.DepthAsk.Equal(dec("101.5")))
	assert.Equal(t, ts, quote.Timestamp)
}

func TestPriceQuoteUnusableSnapshot(t *testing.T) {
	snap := domain.OrderBookSnapshot{
		Exchange: "bybit",
		Symbol:   "BTC/USDT",
		Bids:     levels("100", "1"),
	}
	_, err := PriceQuote(snap, 5)
	require.ErrorIs(t, err, domain.ErrInsufficientDepth)
}
