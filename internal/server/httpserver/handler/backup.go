package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/yndnr/snapkeep/internal/core/domain"
	"github.com/yndnr/snapkeep/internal/core/service"
)

// maxBodyBytes bounds request bodies; every request type is a handful of fields.
const maxBodyBytes = 64 << 10

// decodeBody decodes an optional JSON body. An empty body leaves v unchanged.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// handleCreateBackup handles POST /admin/v1/backups.
func (h *Handler) handleCreateBackup(w http.ResponseWriter, r *http.Request) {
	var req CreateBackupRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, domain.ErrBadRequest.Code, "invalid request body", nil)
		return
	}

	rec, err := h.backupSvc.Create(r.Context(), &service.CreateBackupRequest{
		OwnerScope: req.OwnerScope,
		Type:       req.Type,
		Encrypt:    req.Encrypt,
	})
	if err != nil {
		if rec != nil && errors.Is(err, domain.ErrBackupFailed) {
			h.logger.Error("backup failed", "request_id", getRequestID(r), "backup_id", rec.ID, "error", err)
			h.writeError(w, r, http.StatusInternalServerError, domain.ErrBackupFailed.Code,
				domain.ErrBackupFailed.Message, BackupFailedDetails{
					ID:     rec.ID,
					Status: string(rec.Status),
				})
			return
		}
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, rec)
}

// handleListBackups handles GET /admin/v1/backups?owner_scope=.
func (h *Handler) handleListBackups(w http.ResponseWriter, r *http.Request) {
	records, err := h.backupSvc.List(r.Context(), r.URL.Query().Get("owner_scope"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, ListBackupsResponse{
		Items: records,
		Total: len(records),
	})
}

// handleBackupStats handles GET /admin/v1/backups/stats.
func (h *Handler) handleBackupStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.backupSvc.Stats(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, stats)
}

// handleStaleBackups handles GET /admin/v1/backups/stale?older_than=.
// older_than accepts a Go duration ("2h") or whole seconds.
func (h *Handler) handleStaleBackups(w http.ResponseWriter, r *http.Request) {
	olderThan, err := parseDuration(r.URL.Query().Get("older_than"))
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, domain.ErrInvalidArgument.Code,
			"older_than must be a duration such as 30m or a number of seconds", nil)
		return
	}

	records, err := h.backupSvc.Stale(r.Context(), olderThan)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, ListBackupsResponse{
		Items: records,
		Total: len(records),
	})
}

// handlePruneBackups handles POST /admin/v1/backups/prune.
func (h *Handler) handlePruneBackups(w http.ResponseWriter, r *http.Request) {
	var req PruneBackupsRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, domain.ErrBadRequest.Code, "invalid request body", nil)
		return
	}
	if req.Keep == 0 {
		req.Keep = h.backupSvc.RetentionKeep()
	}

	removed, err := h.backupSvc.Prune(r.Context(), req.OwnerScope, req.Keep)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, PruneBackupsResponse{
		Removed: removed,
		Keep:    req.Keep,
	})
}

// handleGetBackup handles GET /admin/v1/backups/{id}.
func (h *Handler) handleGetBackup(w http.ResponseWriter, r *http.Request) {
	rec, err := h.backupSvc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, rec)
}

// handleBackupContent handles GET /admin/v1/backups/{id}/content.
// The body is the decrypted snapshot document, not an envelope.
func (h *Handler) handleBackupContent(w http.ResponseWriter, r *http.Request) {
	content, err := h.backupSvc.Restore(r.Context(), r.PathValue("id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", getRequestID(r))
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, content); err != nil {
		h.logger.Warn("failed to write backup content", "error", err)
	}
}

// handleDeleteBackup handles DELETE /admin/v1/backups/{id}.
func (h *Handler) handleDeleteBackup(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	deleted, err := h.backupSvc.Delete(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if !deleted {
		h.handleServiceError(w, r, domain.ErrBackupNotFound.WithDetails(id))
		return
	}

	h.writeJSON(w, r, http.StatusOK, DeleteBackupResponse{Deleted: true})
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, errors.New("empty duration")
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}
