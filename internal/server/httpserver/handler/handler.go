package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yndnr/snapkeep/internal/core/domain"
	"github.com/yndnr/snapkeep/internal/core/service"
	"github.com/yndnr/snapkeep/internal/telemetry/logger"
	"github.com/yndnr/snapkeep/internal/telemetry/metric"
)

// Handler is the main HTTP handler that routes requests to appropriate handlers.
type Handler struct {
	backupSvc *service.BackupService
	metrics   *metric.Registry
	logger    *slog.Logger
	mux       *http.ServeMux
}

// New creates a new Handler. metrics may be nil, in which case /metrics
// responds 404.
func New(backupSvc *service.BackupService, metrics *metric.Registry, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		backupSvc: backupSvc,
		metrics:   metrics,
		logger:    logger,
		mux:       http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// registerRoutes registers all HTTP routes.
func (h *Handler) registerRoutes() {
	// Health endpoints
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)
	h.mux.HandleFunc("GET /metrics", h.handleMetrics)

	// Backup endpoints
	h.mux.HandleFunc("POST /admin/v1/backups", h.handleCreateBackup)
	h.mux.HandleFunc("GET /admin/v1/backups", h.handleListBackups)
	h.mux.HandleFunc("GET /admin/v1/backups/stats", h.handleBackupStats)
	h.mux.HandleFunc("GET /admin/v1/backups/stale", h.handleStaleBackups)
	h.mux.HandleFunc("POST /admin/v1/backups/prune", h.handlePruneBackups)
	h.mux.HandleFunc("GET /admin/v1/backups/{id}", h.handleGetBackup)
	h.mux.HandleFunc("GET /admin/v1/backups/{id}/content", h.handleBackupContent)
	h.mux.HandleFunc("DELETE /admin/v1/backups/{id}", h.handleDeleteBackup)
}

// writeJSON writes a JSON response with standard envelope format.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := getRequestID(r)
	response := NewResponse(requestID, data)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes an error response with standard envelope format.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	requestID := getRequestID(r)
	response := NewErrorResponse(requestID, code, message, details)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode error response", "error", err)
	}
}

// getRequestID returns the request ID set by the RequestID middleware,
// falling back to the inbound header.
func getRequestID(r *http.Request) string {
	if reqID := logger.RequestIDFromContext(r.Context()); reqID != "" {
		return reqID
	}
	return r.Header.Get("X-Request-ID")
}

// handleServiceError converts service errors to HTTP responses.
// Server-side failures expose only the static message of their code;
// causes may carry file paths and stay in the log.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		h.logger.Error("internal error", "request_id", getRequestID(r), "error", err)
		h.writeError(w, r, http.StatusInternalServerError,
			domain.ErrInternalServer.Code, domain.ErrInternalServer.Message, nil)
		return
	}

	status := errorCodeToHTTPStatus(de.Code)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "request_id", getRequestID(r), "code", de.Code, "error", err)
		h.writeError(w, r, status, de.Code, de.Message, nil)
		return
	}

	var details any
	if de.Details != "" {
		details = de.Details
	}
	h.writeError(w, r, status, de.Code, de.Message, details)
}

// errorCodeToHTTPStatus maps error codes to HTTP status codes.
func errorCodeToHTTPStatus(code string) int {
	switch {
	case strings.HasSuffix(code, "-4040"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "-4090"):
		return http.StatusConflict
	case strings.HasSuffix(code, "-4220"):
		return http.StatusUnprocessableEntity
	case strings.HasSuffix(code, "-4030"):
		return http.StatusForbidden
	case strings.HasSuffix(code, "-4290"):
		return http.StatusTooManyRequests
	case strings.HasSuffix(code, "-4000"), strings.HasSuffix(code, "-4001"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "SK-ARG-"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
