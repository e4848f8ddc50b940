package handler

import (
	"time"

	"github.com/yndnr/snapkeep/internal/core/domain"
)

// Response is the standard API response envelope.
// All JSON responses use this format, except /metrics and backup content.
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"` // Additional error details
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// CreateBackupRequest is the request body for POST /admin/v1/backups.
type CreateBackupRequest struct {
	OwnerScope string `json:"owner_scope,omitempty"`
	Type       string `json:"type,omitempty"`
	Encrypt    bool   `json:"encrypt,omitempty"`
}

// ListBackupsResponse is the response body for GET /admin/v1/backups.
type ListBackupsResponse struct {
	Items []*domain.BackupRecord `json:"items"`
	Total int                    `json:"total"`
}

// PruneBackupsRequest is the request body for POST /admin/v1/backups/prune.
type PruneBackupsRequest struct {
	OwnerScope string `json:"owner_scope,omitempty"`
	Keep       int    `json:"keep,omitempty"` // Zero uses the configured retention
}

// PruneBackupsResponse is the response body for POST /admin/v1/backups/prune.
type PruneBackupsResponse struct {
	Removed []string `json:"removed"`
	Keep    int      `json:"keep"`
}

// DeleteBackupResponse is the response body for DELETE /admin/v1/backups/{id}.
type DeleteBackupResponse struct {
	Deleted bool `json:"deleted"`
}

// BackupFailedDetails accompanies a failed create so callers can find the
// failed ledger record.
type BackupFailedDetails struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
