package handler

import (
	"net/http"
	"time"

	"github.com/yndnr/snapkeep/internal/core/domain"
	"github.com/yndnr/snapkeep/internal/infra/buildinfo"
)

// handleHealth handles GET /health.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": buildinfo.Version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady handles GET /ready. The server is ready once the ledger
// can be read.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := h.backupSvc.Stats(r.Context()); err != nil {
		h.logger.Warn("readiness check failed", "error", err)
		h.writeError(w, r, http.StatusServiceUnavailable,
			domain.ErrStorageError.Code, "ledger unavailable", nil)
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"status":     "ready",
		"encryption": h.backupSvc.EncryptionEnabled(),
		"time":       time.Now().UTC().Format(time.RFC3339),
	})
}

// handleMetrics handles GET /metrics in Prometheus exposition format.
func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if h.metrics == nil {
		http.NotFound(w, r)
		return
	}
	h.metrics.Handler().ServeHTTP(w, r)
}
