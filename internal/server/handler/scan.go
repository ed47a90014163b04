package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/kambulatAL/arbi-scanner/internal/domain"
)

// SnapshotSource provides the latest published scan snapshot. Implementations
// return domain.ErrNotFound until the first cycle completes. The in-process
// orchestrator and the Redis snapshot cache both satisfy this through small
// adapters, so the handler works in both deployment modes.
type SnapshotSource interface {
	LatestSnapshot(ctx context.Context) (domain.ScanSnapshot, error)
}

// Trigger requests an immediate scan cycle.
type Trigger interface {
	TriggerScan() error
}

// ScanHandler serves the latest scan results and manual scan triggers.
type ScanHandler struct {
	source  SnapshotSource
	trigger Trigger // nil in server-only deployments
}

// NewScanHandler creates a ScanHandler. trigger may be nil when no in-process
// scanner is running.
func NewScanHandler(source SnapshotSource, trigger Trigger) *ScanHandler {
	return &ScanHandler{source: source, trigger: trigger}
}

// Latest returns the most recently published scan snapshot.
// GET /api/scan/latest
func (h *ScanHandler) Latest(w http.ResponseWriter, r *http.Request) {
	snap, err := h.source.LatestSnapshot(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no scan published yet")
			return
		}
		writeError(w, http.StatusInternalServerError, "reading snapshot failed")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// TriggerScan requests an immediate cycle. Returns 409 when a cycle is
// already in flight and 501 when no in-process scanner exists.
// POST /api/scan/trigger
func (h *ScanHandler) TriggerScan(w http.ResponseWriter, r *http.Request) {
	if h.trigger == nil {
		writeError(w, http.StatusNotImplemented, "no scanner attached to this instance")
		return
	}
	if err := h.trigger.TriggerScan(); err != nil {
		if errors.Is(err, domain.ErrScanInFlight) {
			writeError(w, http.StatusConflict, "scan already in flight")
			return
		}
		writeError(w, http.StatusInternalServerError, "triggering scan failed")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "triggered"})
}
