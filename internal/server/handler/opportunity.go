package handler

import (
	"net/http"

	"github.com/kambulatAL/arbi-scanner/internal/domain"
)

// OpportunityHandler serves persisted opportunity history.
type OpportunityHandler struct {
	store domain.OpportunityStore
}

// NewOpportunityHandler creates an OpportunityHandler over the given store.
func NewOpportunityHandler(store domain.OpportunityStore) *OpportunityHandler {
	return &OpportunityHandler{store: store}
}

// ListRecent returns the most recently discovered opportunities.
// GET /api/opportunities/recent?limit=50
func (h *OpportunityHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusNotImplemented, "opportunity history not configured")
		return
	}

	opps, err := h.store.ListRecent(r.Context(), queryLimit(r, 50))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing opportunities failed")
		return
	}
	if opps == nil {
		opps = []domain.Opportunity{}
	}
	writeJSON(w, http.StatusOK, opps)
}
