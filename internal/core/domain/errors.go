// Package domain defines the core domain models for SnapKeep.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured error code.
// Codes have the form SK-<AREA>-<NNNN>; the last four digits follow the
// HTTP status family the transport layer maps them to.
type DomainError struct {
	Code    string // Error code (e.g., "SK-BKP-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error renders code, message, details and the cause chain.
func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// Wrap wraps an error with this domain error as the cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	return e.WithCause(cause)
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true // Only check if it's a DomainError
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Backup Errors (BKP)
// ============================================================================

var (
	// ErrBackupNotFound indicates the backup record, its artifact path, or
	// the artifact file itself is missing. Lookups return it as a normal
	// negative result.
	ErrBackupNotFound = NewDomainError("SK-BKP-4040", "backup not found")

	// ErrBackupConflict indicates a backup id already exists in the ledger.
	ErrBackupConflict = NewDomainError("SK-BKP-4090", "backup id conflict")

	// ErrEncryptionNotConfigured indicates an encrypted backup or restore was
	// requested but no encryption passphrase is configured.
	ErrEncryptionNotConfigured = NewDomainError("SK-BKP-4001", "encryption is not configured")

	// ErrBackupIntegrity indicates restored plaintext does not match the
	// checksum recorded at backup time.
	ErrBackupIntegrity = NewDomainError("SK-BKP-4220", "backup integrity check failed")

	// ErrBackupFailed indicates a backup attempt reached the failed state.
	ErrBackupFailed = NewDomainError("SK-BKP-5001", "backup failed")

	// ErrArtifactWrite indicates the artifact could not be written.
	ErrArtifactWrite = NewDomainError("SK-BKP-5002", "artifact write failed")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("SK-SYS-5000", "internal server error")

	// ErrStorageError indicates a storage layer error.
	ErrStorageError = NewDomainError("SK-SYS-5001", "storage error")

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = NewDomainError("SK-SYS-4000", "bad request")

	// ErrForbidden indicates the client is not allowed to call the endpoint.
	ErrForbidden = NewDomainError("SK-SYS-4030", "forbidden")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("SK-SYS-4290", "too many requests")
)

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("SK-ARG-1001", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("SK-ARG-1002", "missing required argument")
)
