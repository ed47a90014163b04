package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/kambulatAL/arbi-scanner/internal/domain"
)

// OpportunityStore implements domain.OpportunityStore on the
// opportunity_history table. Prices are stored as NUMERIC and exchanged with
// the driver as strings to keep exact decimal semantics end to end.
type OpportunityStore struct {
	client *Client
}

var _ domain.OpportunityStore = (*OpportunityStore)(nil)

// NewOpportunityStore creates an OpportunityStore backed by the given Client.
func NewOpportunityStore(c *Client) *OpportunityStore {
	return &OpportunityStore{client: c}
}

const insertOpportunity = `
	INSERT INTO opportunity_history
		(id, symbol, buy_exchange, sell_exchange, buy_price, sell_price, spread_pct, compatible_chains, discovered_at)
	VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7::numeric, $8, $9)
	ON CONFLICT (id) DO NOTHING`

// InsertBatch persists a cycle's opportunities in a single round trip.
func (s *OpportunityStore) InsertBatch(ctx context.Context, opps []domain.Opportunity) error {
	if len(opps) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, opp := range opps {
		batch.Queue(insertOpportunity,
			opp.ID,
			opp.Symbol,
			opp.BuyExchange,
			opp.SellExchange,
			opp.BuyPrice.String(),
			opp.SellPrice.String(),
			opp.SpreadPct.String(),
			opp.Route.CompatibleChains,
			opp.DiscoveredAt,
		)
	}

	results := s.client.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range opps {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("postgres: insert opportunity batch: %w", err)
		}
	}
	return nil
}

const selectOpportunity = `
	SELECT id, symbol, buy_exchange, sell_exchange,
	       buy_price::text, sell_price::text, spread_pct::text,
	       compatible_chains, discovered_at
	FROM opportunity_history`

// ListRecent returns the most recently discovered opportunities, newest
// first.
func (s *OpportunityStore) ListRecent(ctx context.Context, limit int) ([]domain.Opportunity, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.client.pool.Query(ctx,
		selectOpportunity+" ORDER BY discovered_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent opportunities: %w", err)
	}
	defer rows.Close()
	return scanOpportunities(rows)
}

// ListBefore returns all opportunities discovered before the cutoff, oldest
// first, for archival.
func (s *OpportunityStore) ListBefore(ctx context.Context, before time.Time) ([]domain.Opportunity, error) {
	rows, err := s.client.pool.Query(ctx,
		selectOpportunity+" WHERE discovered_at < $1 ORDER BY discovered_at ASC", before)
	if err != nil {
		return nil, fmt.Errorf("postgres: list opportunities before %s: %w", before, err)
	}
	defer rows.Close()
	return scanOpportunities(rows)
}

// DeleteBefore removes opportunities discovered before the cutoff and returns
// the number of rows deleted.
func (s *OpportunityStore) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.client.pool.Exec(ctx,
		"DELETE FROM opportunity_history WHERE discovered_at < $1", before)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete opportunities before %s: %w", before, err)
	}
	return tag.RowsAffected(), nil
}

func scanOpportunities(rows pgx.Rows) ([]domain.Opportunity, error) {
	var opps []domain.Opportunity
	for rows.Next() {
		var (
			opp                         domain.Opportunity
			buyPrice, sellPrice, spread string
		)
		if err := rows.Scan(
			&opp.ID, &opp.Symbol, &opp.BuyExchange, &opp.SellExchange,
			&buyPrice, &sellPrice, &spread,
			&opp.Route.CompatibleChains, &opp.DiscoveredAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan opportunity row: %w", err)
		}

		var err error
		if opp.BuyPrice, err = decimal.NewFromString(buyPrice); err != nil {
			return nil, fmt.Errorf("postgres: parse buy price: %w", err)
		}
		if opp.SellPrice, err = decimal.NewFromString(sellPrice); err != nil {
			return nil, fmt.Errorf("postgres: parse sell price: %w", err)
		}
		if opp.SpreadPct, err = decimal.NewFromString(spread); err != nil {
			return nil, fmt.Errorf("postgres: parse spread: %w", err)
		}

		opp.Route.FromExchange = opp.BuyExchange
		opp.Route.ToExchange = opp.SellExchange
		opp.Route.Symbol = opp.Symbol
		opps = append(opps, opp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate opportunity rows: %w", err)
	}
	return opps, nil
}
