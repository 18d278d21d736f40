package api

import (
	"net/http"

	"github.com/kraftworks/kraft/internal/store"
)

type StatsHandler struct {
	store store.Store
}

func NewStatsHandler(s store.Store) *StatsHandler {
	return &StatsHandler{store: s}
}

// PreAllocation returns the counts callers check before deciding to run an
// allocation.
func (h *StatsHandler) PreAllocation(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.PreAllocationStats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
