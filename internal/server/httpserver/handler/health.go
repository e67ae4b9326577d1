package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/yndnr/forkmesh-go/internal/core/domain"
)

// readyProbeTimeout bounds the remote probe behind /ready.
const readyProbeTimeout = 3 * time.Second

// handleHealth handles GET /health.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady handles GET /ready. Forks can hydrate only while the remote
// ledger answers, so readiness follows its health.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.remote != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyProbeTimeout)
		defer cancel()
		if err := h.remote.Health(ctx); err != nil {
			h.logger.WithContext(r.Context()).Warn("remote ledger not ready", "error", err)
			h.writeError(w, r, http.StatusServiceUnavailable, domain.ErrServiceUnavailable.Code,
				domain.ErrServiceUnavailable.Message, "remote ledger unavailable")
			return
		}
	}

	h.writeJSON(w, r, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
