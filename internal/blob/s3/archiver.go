package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/kambulatAL/arbi-scanner/internal/domain"
)

// Archiver moves aged opportunity rows out of the primary store into JSONL
// files in object storage. Rows are deleted from the store only after the
// upload succeeds, so a failed upload leaves the data where it was.
type Archiver struct {
	writer    domain.BlobWriter
	store     domain.OpportunityStore
	retention time.Duration
	interval  time.Duration
	logger    *slog.Logger
}

// ArchiverConfig configures the archival loop.
type ArchiverConfig struct {
	// Retention is how long opportunities stay in the primary store.
	Retention time.Duration

	// Interval is how often the archival pass runs.
	Interval time.Duration

	Logger *slog.Logger
}

// NewArchiver creates an Archiver over the given writer and store.
func NewArchiver(writer domain.BlobWriter, store domain.OpportunityStore, cfg ArchiverConfig) *Archiver {
	if cfg.Retention <= 0 {
		cfg.Retention = 7 * 24 * time.Hour
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Archiver{
		writer:    writer,
		store:     store,
		retention: cfg.Retention,
		interval:  cfg.Interval,
		logger:    logger.With(slog.String("component", "archiver")),
	}
}

// Run executes archival passes until ctx is cancelled.
func (a *Archiver) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-a.retention)
			count, err := a.ArchiveBefore(ctx, cutoff)
			if err != nil {
				a.logger.Error("archive pass failed", slog.Any("error", err))
				continue
			}
			if count > 0 {
				a.logger.Info("archived opportunities",
					slog.Int64("count", count),
					slog.Time("cutoff", cutoff))
			}
		}
	}
}

// ArchiveBefore uploads all opportunities discovered before the cutoff as one
// JSONL file and deletes them from the store. It returns the number of
// archived records.
func (a *Archiver) ArchiveBefore(ctx context.Context, before time.Time) (int64, error) {
	opps, err := a.store.ListBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive query: %w", err)
	}
	if len(opps) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(opps)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive marshal: %w", err)
	}

	path := archivePath(before)
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: archive upload: %w", err)
	}

	deleted, err := a.store.DeleteBefore(ctx, before)
	if err != nil {
		return int64(len(opps)), fmt.Errorf("s3blob: archive delete after upload to %s: %w", path, err)
	}
	return deleted, nil
}

// archivePath builds the object key for an archive file, partitioned by the
// day of the cutoff:
//
//	archive/opportunities/2026-08-24T15.jsonl
func archivePath(before time.Time) string {
	return fmt.Sprintf("archive/opportunities/%s.jsonl", before.Format("2006-01-02T15"))
}

// marshalJSONL serializes records as newline-delimited JSON.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}
