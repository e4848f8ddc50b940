package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// BackupType labels the intent of a backup attempt.
// Every type performs a full capture.
type BackupType string

const (
	BackupTypeFull        BackupType = "full"
	BackupTypeIncremental BackupType = "incremental"
	BackupTypeManual      BackupType = "manual"
)

// ParseBackupType validates a backup type. The empty string selects manual.
func ParseBackupType(s string) (BackupType, error) {
	switch BackupType(strings.ToLower(strings.TrimSpace(s))) {
	case "", BackupTypeManual:
		return BackupTypeManual, nil
	case BackupTypeFull:
		return BackupTypeFull, nil
	case BackupTypeIncremental:
		return BackupTypeIncremental, nil
	default:
		return "", ErrInvalidArgument.WithDetails("unknown backup type: " + s)
	}
}

// BackupStatus is the lifecycle state of a backup attempt.
//
//	pending -> in_progress -> completed
//	                       -> failed
type BackupStatus string

const (
	BackupStatusPending    BackupStatus = "pending"
	BackupStatusInProgress BackupStatus = "in_progress"
	BackupStatusCompleted  BackupStatus = "completed"
	BackupStatusFailed     BackupStatus = "failed"
)

// IsTerminal reports whether no further transition is allowed.
func (s BackupStatus) IsTerminal() bool {
	return s == BackupStatusCompleted || s == BackupStatusFailed
}

// BackupRecord is one ledger entry, created when an attempt starts and
// updated once when it reaches a terminal state.
type BackupRecord struct {
	// ID is a random UUID assigned at creation and never reused.
	ID string `json:"id"`

	// OwnerScope is the tenant the backup belongs to.
	// Empty means a system-wide backup.
	OwnerScope string `json:"owner_scope,omitempty"`

	Type   BackupType   `json:"type"`
	Status BackupStatus `json:"status"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// FilePath, FileSize and Checksum are set only on completed records.
	// Checksum is the hex SHA-256 of the plaintext snapshot JSON.
	FilePath string `json:"file_path,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
	Checksum string `json:"checksum,omitempty"`

	Encrypted bool `json:"encrypted"`

	// Error is set only on failed records.
	Error string `json:"error,omitempty"`
}

// NewBackupRecord creates an in_progress record with a fresh id.
// The pending state is never persisted: the synchronous ledger append of
// this record is the acknowledgement that the attempt started.
func NewBackupRecord(ownerScope string, typ BackupType, encrypted bool, now time.Time) *BackupRecord {
	return &BackupRecord{
		ID:         GenerateBackupID(),
		OwnerScope: ownerScope,
		Type:       typ,
		Status:     BackupStatusInProgress,
		StartedAt:  now.UTC(),
		Encrypted:  encrypted,
	}
}

// GenerateBackupID returns a new random backup id.
func GenerateBackupID() string {
	return uuid.NewString()
}

// Complete moves the record to completed and fills the artifact fields.
func (r *BackupRecord) Complete(path string, size int64, checksum string, now time.Time) {
	t := now.UTC()
	r.Status = BackupStatusCompleted
	r.CompletedAt = &t
	r.FilePath = path
	r.FileSize = size
	r.Checksum = checksum
	r.Error = ""
}

// Fail moves the record to failed with the given cause.
func (r *BackupRecord) Fail(cause string, now time.Time) {
	t := now.UTC()
	r.Status = BackupStatusFailed
	r.CompletedAt = &t
	r.FilePath = ""
	r.FileSize = 0
	r.Checksum = ""
	if cause == "" {
		cause = "unknown error"
	}
	r.Error = cause
}

// Validate checks the terminal-field invariant: completed records carry
// path, size and checksum; failed records carry an error; non-terminal
// records carry none of the terminal fields.
func (r *BackupRecord) Validate() error {
	var violations []string

	if r.ID == "" {
		violations = append(violations, "id is required")
	}
	if _, err := ParseBackupType(string(r.Type)); err != nil || r.Type == "" {
		violations = append(violations, "invalid type")
	}

	hasArtifact := r.FilePath != "" || r.FileSize != 0 || r.Checksum != ""

	switch r.Status {
	case BackupStatusCompleted:
		if r.FilePath == "" || r.FileSize <= 0 || r.Checksum == "" {
			violations = append(violations, "completed record requires file_path, file_size and checksum")
		}
		if r.Error != "" {
			violations = append(violations, "completed record must not carry an error")
		}
		if r.CompletedAt == nil {
			violations = append(violations, "completed record requires completed_at")
		}
	case BackupStatusFailed:
		if r.Error == "" {
			violations = append(violations, "failed record requires an error")
		}
		if hasArtifact {
			violations = append(violations, "failed record must not carry artifact fields")
		}
		if r.CompletedAt == nil {
			violations = append(violations, "failed record requires completed_at")
		}
	case BackupStatusPending, BackupStatusInProgress:
		if hasArtifact || r.Error != "" || r.CompletedAt != nil {
			violations = append(violations, "non-terminal record must not carry terminal fields")
		}
	default:
		violations = append(violations, "unknown status: "+string(r.Status))
	}

	if len(violations) > 0 {
		return ErrInvalidArgument.WithDetails(strings.Join(violations, "; "))
	}
	return nil
}

// Clone returns a deep copy of the record.
func (r *BackupRecord) Clone() *BackupRecord {
	clone := *r
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		clone.CompletedAt = &t
	}
	return &clone
}

// ShortID returns the first eight characters of the id, used in artifact
// file names.
func (r *BackupRecord) ShortID() string {
	if len(r.ID) <= 8 {
		return r.ID
	}
	return r.ID[:8]
}

// BackupStats aggregates the ledger.
type BackupStats struct {
	Total     int                  `json:"total"`
	TotalSize int64                `json:"total_size"`
	ByStatus  map[BackupStatus]int `json:"by_status"`
}
