package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kambulatAL/arbi-scanner/internal/domain"
)

// snapshotKey holds the latest published scan snapshot as a JSON string.
const snapshotKey = "scan:latest"

// snapshotTTL bounds staleness when the scanner dies: a server instance
// reading the cache will see ErrNotFound instead of hours-old quotes.
const snapshotTTL = 5 * time.Minute

// SnapshotCache implements domain.SnapshotCache on a single Redis string key.
type SnapshotCache struct {
	rdb *redis.Client
}

var _ domain.SnapshotCache = (*SnapshotCache)(nil)

// NewSnapshotCache creates a SnapshotCache backed by the given Client.
func NewSnapshotCache(c *Client) *SnapshotCache {
	return &SnapshotCache{rdb: c.rdb}
}

// SetSnapshot stores the snapshot, replacing any previous one.
func (sc *SnapshotCache) SetSnapshot(ctx context.Context, snap domain.ScanSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("redis: marshal snapshot: %w", err)
	}
	if err := sc.rdb.Set(ctx, snapshotKey, payload, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("redis: set snapshot: %w", err)
	}
	return nil
}

// GetSnapshot returns the latest stored snapshot, or domain.ErrNotFound when
// none has been published or the TTL has lapsed.
func (sc *SnapshotCache) GetSnapshot(ctx context.Context) (domain.ScanSnapshot, error) {
	payload, err := sc.rdb.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.ScanSnapshot{}, domain.ErrNotFound
		}
		return domain.ScanSnapshot{}, fmt.Errorf("redis: get snapshot: %w", err)
	}

	var snap domain.ScanSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return domain.ScanSnapshot{}, fmt.Errorf("redis: unmarshal snapshot: %w", err)
	}
	return snap, nil
}
