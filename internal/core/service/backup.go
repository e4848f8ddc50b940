package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yndnr/snapkeep/internal/core/domain"
	"github.com/yndnr/snapkeep/internal/storage/snapshot"
	"github.com/yndnr/snapkeep/internal/telemetry/logger"
	"github.com/yndnr/snapkeep/internal/telemetry/metric"
	"github.com/yndnr/snapkeep/pkg/crypto/snapcrypt"
)

// LedgerRepository defines the ledger operations the backup service uses.
type LedgerRepository interface {
	Append(ctx context.Context, rec *domain.BackupRecord) error
	Update(ctx context.Context, id string, mutate func(*domain.BackupRecord)) (bool, error)
	Get(ctx context.Context, id string) (*domain.BackupRecord, error)
	ListByOwner(ctx context.Context, ownerScope string) ([]*domain.BackupRecord, error)
	All(ctx context.Context) ([]*domain.BackupRecord, error)
	Remove(ctx context.Context, id string) (bool, error)
	Stats(ctx context.Context) (*domain.BackupStats, error)
}

// Aggregator builds a snapshot of all data documents.
type Aggregator interface {
	Aggregate(ctx context.Context, ownerScope string, typ domain.BackupType) (*domain.SnapshotDocument, error)
}

// ArtifactRepository stores artifact files.
type ArtifactRepository interface {
	Write(name string, data []byte) (string, int64, error)
	Read(path string) ([]byte, error)
	Exists(path string) bool
	Remove(path string) error
}

// Cipher encrypts and decrypts artifact payloads.
type Cipher interface {
	Encrypt(plaintext []byte) (ciphertextHex, ivHex string, err error)
	Decrypt(ciphertextHex, ivHex string) ([]byte, error)
}

// DefaultRetentionKeep is the number of completed backups Prune keeps when
// no other value is configured.
const DefaultRetentionKeep = 7

// BackupOption configures a BackupService.
type BackupOption func(*BackupService)

// WithCipher enables encrypted backups and restores.
func WithCipher(c Cipher) BackupOption {
	return func(s *BackupService) {
		s.cipher = c
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) BackupOption {
	return func(s *BackupService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics registry.
func WithMetrics(m *metric.Registry) BackupOption {
	return func(s *BackupService) {
		s.metrics = m
	}
}

// WithVerifyChecksum controls whether Restore compares the restored
// plaintext with the checksum recorded at backup time.
func WithVerifyChecksum(verify bool) BackupOption {
	return func(s *BackupService) {
		s.verifyChecksum = verify
	}
}

// WithRetentionKeep sets the default keep count for Prune callers.
func WithRetentionKeep(keep int) BackupOption {
	return func(s *BackupService) {
		if keep > 0 {
			s.retentionKeep = keep
		}
	}
}

// BackupService handles the backup lifecycle.
type BackupService struct {
	ledger     LedgerRepository
	aggregator Aggregator
	artifacts  ArtifactRepository
	cipher     Cipher

	logger         *slog.Logger
	metrics        *metric.Registry
	verifyChecksum bool
	retentionKeep  int

	now func() time.Time
}

// NewBackupService creates a new BackupService. Without WithCipher every
// encrypted request is rejected with domain.ErrEncryptionNotConfigured.
func NewBackupService(ledger LedgerRepository, aggregator Aggregator, artifacts ArtifactRepository, opts ...BackupOption) *BackupService {
	s := &BackupService{
		ledger:         ledger,
		aggregator:     aggregator,
		artifacts:      artifacts,
		logger:         slog.Default(),
		verifyChecksum: true,
		retentionKeep:  DefaultRetentionKeep,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EncryptionEnabled reports whether a cipher is configured.
func (s *BackupService) EncryptionEnabled() bool {
	return s.cipher != nil
}

// RetentionKeep returns the configured default keep count.
func (s *BackupService) RetentionKeep() int {
	return s.retentionKeep
}

// ============================================================================
// Backup Create Operation
// ============================================================================

// CreateBackupRequest contains parameters for a backup attempt.
type CreateBackupRequest struct {
	OwnerScope string // Optional, empty means system-wide
	Type       string // Optional, defaults to "manual"
	Encrypt    bool
}

// Create runs one backup attempt.
//
// The in_progress ledger record is written before any other work. From then
// on the attempt ignores ctx cancellation and always ends with the record in
// a terminal state. On failure the returned record is the failed ledger
// entry (nil if none was created) and the error wraps domain.ErrBackupFailed.
func (s *BackupService) Create(ctx context.Context, req *CreateBackupRequest) (*domain.BackupRecord, error) {
	if req == nil {
		req = &CreateBackupRequest{}
	}

	// 1. Validate
	typ, err := domain.ParseBackupType(req.Type)
	if err != nil {
		return nil, err
	}
	if req.Encrypt && s.cipher == nil {
		return nil, domain.ErrEncryptionNotConfigured
	}

	// 2. Record the attempt
	rec := domain.NewBackupRecord(req.OwnerScope, typ, req.Encrypt, s.now())
	if err := s.ledger.Append(ctx, rec); err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	start := time.Now()
	log := logger.Enrich(ctx, s.logger).With("backup_id", rec.ID, "owner_scope", rec.OwnerScope, "type", rec.Type)
	log.Info("backup started", "encrypted", rec.Encrypted)

	// 3-6. Aggregate, checksum, encrypt and write
	path, size, checksum, err := s.produce(ctx, rec)
	if err == nil {
		// 7. Complete
		var found bool
		found, err = s.ledger.Update(ctx, rec.ID, func(r *domain.BackupRecord) {
			r.Complete(path, size, checksum, s.now())
		})
		if err == nil && !found {
			err = fmt.Errorf("ledger record %s disappeared during backup", rec.ID)
		}
		if err != nil {
			// The artifact has no ledger entry pointing at it.
			if rmErr := s.artifacts.Remove(path); rmErr != nil {
				log.Warn("failed to remove orphaned artifact", "error", rmErr)
			}
		}
	}

	if err != nil {
		return s.fail(ctx, log, rec, start, err)
	}

	s.metrics.ObserveBackup(string(rec.Type), string(domain.BackupStatusCompleted), time.Since(start), size)
	log.Info("backup completed",
		"file_size", size,
		"checksum", checksum,
		"elapsed", time.Since(start))

	done, err := s.ledger.Get(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	return done, nil
}

// produce performs the heavy part of a backup and returns the artifact
// path, its size on disk and the plaintext checksum.
func (s *BackupService) produce(ctx context.Context, rec *domain.BackupRecord) (string, int64, string, error) {
	doc, err := s.aggregator.Aggregate(ctx, rec.OwnerScope, rec.Type)
	if err != nil {
		return "", 0, "", fmt.Errorf("aggregate: %w", err)
	}

	plaintext, err := json.Marshal(doc)
	if err != nil {
		return "", 0, "", fmt.Errorf("marshal snapshot: %w", err)
	}
	checksum := snapcrypt.Checksum(plaintext)

	payload := plaintext
	if rec.Encrypted {
		ciphertext, iv, err := s.cipher.Encrypt(plaintext)
		if err != nil {
			return "", 0, "", fmt.Errorf("encrypt: %w", err)
		}
		payload, err = json.Marshal(domain.Envelope{
			Encrypted: ciphertext,
			IV:        iv,
			Checksum:  checksum,
		})
		if err != nil {
			return "", 0, "", fmt.Errorf("marshal envelope: %w", err)
		}
	}

	path, size, err := s.artifacts.Write(snapshot.ArtifactName(rec.StartedAt, rec.ID), payload)
	if err != nil {
		return "", 0, "", err
	}
	return path, size, checksum, nil
}

// fail moves the attempt to failed and returns the error for the caller.
func (s *BackupService) fail(ctx context.Context, log *slog.Logger, rec *domain.BackupRecord, start time.Time, cause error) (*domain.BackupRecord, error) {
	msg := cause.Error()

	found, err := s.ledger.Update(ctx, rec.ID, func(r *domain.BackupRecord) {
		r.Fail(msg, s.now())
	})
	switch {
	case err != nil:
		log.Error("failed to record backup failure", "error", err, "cause", msg)
	case !found:
		log.Error("backup record missing while recording failure", "cause", msg)
	}

	s.metrics.ObserveBackup(string(rec.Type), string(domain.BackupStatusFailed), time.Since(start), 0)
	log.Error("backup failed", "error", msg, "elapsed", time.Since(start))

	failed, getErr := s.ledger.Get(ctx, rec.ID)
	if getErr != nil {
		failed = nil
	}
	return failed, domain.ErrBackupFailed.WithCause(cause)
}

// ============================================================================
// Query Operations
// ============================================================================

// Get returns one backup record.
func (s *BackupService) Get(ctx context.Context, id string) (*domain.BackupRecord, error) {
	if id == "" {
		return nil, domain.ErrMissingArgument.WithDetails("id is required")
	}
	return s.ledger.Get(ctx, id)
}

// List returns the backups of one owner scope, newest first.
func (s *BackupService) List(ctx context.Context, ownerScope string) ([]*domain.BackupRecord, error) {
	return s.ledger.ListByOwner(ctx, ownerScope)
}

// Stats aggregates the ledger.
func (s *BackupService) Stats(ctx context.Context) (*domain.BackupStats, error) {
	return s.ledger.Stats(ctx)
}

// Stale lists in_progress records that started more than olderThan ago.
// These are attempts whose process died before reaching a terminal state.
func (s *BackupService) Stale(ctx context.Context, olderThan time.Duration) ([]*domain.BackupRecord, error) {
	if olderThan <= 0 {
		return nil, domain.ErrInvalidArgument.WithDetails("older_than must be positive")
	}

	all, err := s.ledger.All(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := s.now().Add(-olderThan)
	stale := make([]*domain.BackupRecord, 0)
	for _, r := range all {
		if r.Status == domain.BackupStatusInProgress && r.StartedAt.Before(cutoff) {
			stale = append(stale, r)
		}
	}
	return stale, nil
}

// ============================================================================
// Restore Operation
// ============================================================================

// Restore returns the plaintext snapshot JSON of a backup.
//
// A missing record or artifact path, an artifact file that is missing or
// unreadable, an unparsable envelope and a failed decryption all resolve to
// domain.ErrBackupNotFound. When checksum verification is on, a plaintext
// that does not match the recorded checksum yields domain.ErrBackupIntegrity.
func (s *BackupService) Restore(ctx context.Context, id string) (string, error) {
	plaintext, result, err := s.restore(ctx, id)
	s.metrics.ObserveRestore(result)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

func (s *BackupService) restore(ctx context.Context, id string) ([]byte, string, error) {
	log := logger.Enrich(ctx, s.logger).With("backup_id", id)

	rec, err := s.ledger.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrBackupNotFound) {
			return nil, metric.RestoreNotFound, err
		}
		return nil, metric.RestoreError, err
	}
	if rec.FilePath == "" {
		return nil, metric.RestoreNotFound, domain.ErrBackupNotFound.WithDetails("backup has no artifact")
	}
	if rec.Encrypted && s.cipher == nil {
		return nil, metric.RestoreError, domain.ErrEncryptionNotConfigured
	}

	raw, err := s.artifacts.Read(rec.FilePath)
	if err != nil {
		if errors.Is(err, domain.ErrBackupNotFound) {
			log.Warn("backup artifact missing", "path", rec.FilePath)
			return nil, metric.RestoreNotFound, domain.ErrBackupNotFound.WithDetails("artifact missing")
		}
		log.Warn("backup artifact unreadable", "path", rec.FilePath, "error", err)
		return nil, metric.RestoreNotFound, domain.ErrBackupNotFound.WithDetails("artifact unreadable")
	}

	plaintext := raw
	if rec.Encrypted {
		plaintext, err = s.open(raw)
		if err != nil {
			log.Warn("backup artifact could not be decrypted", "error", err)
			return nil, metric.RestoreNotFound, domain.ErrBackupNotFound.WithDetails("artifact unreadable")
		}
	}

	if s.verifyChecksum && rec.Checksum != "" {
		if got := snapcrypt.Checksum(plaintext); got != rec.Checksum {
			log.Error("backup checksum mismatch", "expected", rec.Checksum, "actual", got)
			return nil, metric.RestoreIntegrity, domain.ErrBackupIntegrity.WithDetails("id: " + id)
		}
	}

	log.Info("backup restored", "bytes", len(plaintext))
	return plaintext, metric.RestoreOK, nil
}

// open decodes and decrypts an envelope. The envelope checksum is always
// compared with the decrypted plaintext: CBC padding alone accepts a wrong
// key for a small fraction of inputs.
func (s *BackupService) open(raw []byte) ([]byte, error) {
	var env domain.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("parse envelope: %w", err)
	}
	if !env.Valid() {
		return nil, errors.New("envelope is missing encrypted or iv")
	}

	plaintext, err := s.cipher.Decrypt(env.Encrypted, env.IV)
	if err != nil {
		return nil, err
	}
	if env.Checksum != "" && snapcrypt.Checksum(plaintext) != env.Checksum {
		return nil, fmt.Errorf("%w: plaintext does not match envelope checksum", snapcrypt.ErrCrypto)
	}
	return plaintext, nil
}

// ============================================================================
// Delete and Retention Operations
// ============================================================================

// Delete removes a backup's artifact and ledger record. It returns false if
// the record does not exist. Failure to remove the artifact is logged and
// does not stop the ledger record from being removed.
func (s *BackupService) Delete(ctx context.Context, id string) (bool, error) {
	return s.delete(ctx, id, false)
}

func (s *BackupService) delete(ctx context.Context, id string, pruned bool) (bool, error) {
	rec, err := s.ledger.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrBackupNotFound) {
			return false, nil
		}
		return false, err
	}

	if rec.FilePath != "" && s.artifacts.Exists(rec.FilePath) {
		if err := s.artifacts.Remove(rec.FilePath); err != nil {
			s.logger.Warn("failed to remove backup artifact",
				"backup_id", id,
				"path", rec.FilePath,
				"error", err)
		}
	}

	removed, err := s.ledger.Remove(ctx, id)
	if err != nil {
		return false, err
	}
	if removed {
		s.metrics.ObserveDelete(pruned)
		logger.Enrich(ctx, s.logger).Info("backup deleted", "backup_id", id, "pruned", pruned)
	}
	return removed, nil
}

// Prune keeps the newest keep completed backups of one owner scope and
// deletes every completed or failed backup older than the last one kept.
// In-progress records are never touched. It returns the removed ids.
func (s *BackupService) Prune(ctx context.Context, ownerScope string, keep int) ([]string, error) {
	if keep < 1 {
		return nil, domain.ErrInvalidArgument.WithDetails("keep must be at least 1")
	}

	records, err := s.ledger.ListByOwner(ctx, ownerScope)
	if err != nil {
		return nil, err
	}

	removed := make([]string, 0)
	kept := 0
	for _, r := range records {
		switch r.Status {
		case domain.BackupStatusCompleted:
			if kept < keep {
				kept++
				continue
			}
		case domain.BackupStatusFailed:
			if kept < keep {
				continue
			}
		default:
			continue
		}

		ok, err := s.delete(ctx, r.ID, true)
		if err != nil {
			return removed, err
		}
		if ok {
			removed = append(removed, r.ID)
		}
	}

	if len(removed) > 0 {
		s.logger.Info("backups pruned",
			"owner_scope", ownerScope,
			"keep", keep,
			"removed", len(removed))
	}
	return removed, nil
}
