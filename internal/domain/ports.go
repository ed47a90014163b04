package domain

import (
	"context"
	"io"
	"time"
)

// SnapshotCache stores the latest published scan snapshot for consumers that
// poll out-of-process (e.g. a server instance separate from the scanner).
type SnapshotCache interface {
	SetSnapshot(ctx context.Context, snap ScanSnapshot) error
	// GetSnapshot returns ErrNotFound when no snapshot has been published.
	GetSnapshot(ctx context.Context) (ScanSnapshot, error)
}

// SignalBus is a lightweight pub/sub fabric between the scanner and the
// presentation layer. Publish never blocks on subscriber readiness.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// OpportunityStore persists detected opportunities for history queries and
// archival.
type OpportunityStore interface {
	InsertBatch(ctx context.Context, opps []Opportunity) error
	ListRecent(ctx context.Context, limit int) ([]Opportunity, error)
	ListBefore(ctx context.Context, before time.Time) ([]Opportunity, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// BlobWriter uploads an object to blob storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}
