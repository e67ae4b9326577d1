package handler

import (
	"net/http"
	"time"

	"github.com/yndnr/forkmesh-go/internal/infra/buildinfo"
)

// handleAdminStatus handles GET /admin/v1/status/summary.
func (h *Handler) handleAdminStatus(w http.ResponseWriter, r *http.Request) {
	info := buildinfo.Get()
	h.writeJSON(w, r, http.StatusOK, StatusSummaryResponse{
		Status:           "running",
		Version:          info.Version,
		Commit:           info.Commit,
		ActiveForks:      len(h.forks.ListForks(r.Context())),
		RetentionSeconds: int64(h.forks.Retention() / time.Second),
		Time:             time.Now().UTC().Format(time.RFC3339),
	})
}

// handleGCTrigger handles POST /admin/v1/gc/trigger. It runs one eviction
// sweep immediately.
func (h *Handler) handleGCTrigger(w http.ResponseWriter, r *http.Request) {
	evicted := h.forks.Sweep(r.Context())

	h.writeJSON(w, r, http.StatusOK, GCTriggerResponse{
		Evicted:     evicted,
		ActiveForks: len(h.forks.ListForks(r.Context())),
		TriggeredAt: time.Now().UTC(),
	})
}
