package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"

	"github.com/yndnr/snapkeep/internal/core/domain"
)

// Counter is the subset of a metrics counter the ledger reports to.
type Counter interface {
	Inc()
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(lg *Ledger) {
		if l != nil {
			lg.logger = l
		}
	}
}

// WithCorruptionCounter sets the counter incremented each time the
// persisted ledger cannot be parsed.
func WithCorruptionCounter(c Counter) Option {
	return func(lg *Ledger) {
		lg.corruptions = c
	}
}

// Ledger is the persistent collection of backup records.
type Ledger struct {
	mu          sync.RWMutex
	store       Store
	logger      *slog.Logger
	corruptions Counter
}

// New creates a Ledger backed by store.
func New(store Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append adds a new record. It fails with domain.ErrBackupConflict if the
// id is already present.
func (l *Ledger) Append(ctx context.Context, rec *domain.BackupRecord) error {
	if rec == nil {
		return domain.ErrMissingArgument.WithDetails("record is required")
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.load(ctx)
	if err != nil {
		return err
	}
	if indexOf(records, rec.ID) >= 0 {
		return domain.ErrBackupConflict.WithDetails("id: " + rec.ID)
	}

	records = append(records, rec.Clone())
	return l.save(ctx, records)
}

// Update applies mutate to the record with the given id and persists the
// result. It reports whether the record existed; updating an absent id is
// a no-op. The mutated record must still satisfy BackupRecord.Validate.
func (l *Ledger) Update(ctx context.Context, id string, mutate func(*domain.BackupRecord)) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.load(ctx)
	if err != nil {
		return false, err
	}

	i := indexOf(records, id)
	if i < 0 {
		return false, nil
	}

	updated := records[i].Clone()
	mutate(updated)
	updated.ID = id
	if err := updated.Validate(); err != nil {
		return true, err
	}

	records[i] = updated
	return true, l.save(ctx, records)
}

// Get returns the record with the given id or domain.ErrBackupNotFound.
func (l *Ledger) Get(ctx context.Context, id string) (*domain.BackupRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	records, err := l.load(ctx)
	if err != nil {
		return nil, err
	}

	i := indexOf(records, id)
	if i < 0 {
		return nil, domain.ErrBackupNotFound.WithDetails("id: " + id)
	}
	return records[i], nil
}

// ListByOwner returns the records whose owner scope equals ownerScope
// exactly, newest first. An empty scope matches only system-wide records.
func (l *Ledger) ListByOwner(ctx context.Context, ownerScope string) ([]*domain.BackupRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	records, err := l.load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.BackupRecord, 0, len(records))
	for _, r := range records {
		if r.OwnerScope == ownerScope {
			out = append(out, r)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// All returns every record, newest first.
func (l *Ledger) All(ctx context.Context) ([]*domain.BackupRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	records, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(records)
	return records, nil
}

// Remove deletes the record with the given id and reports whether it
// existed.
func (l *Ledger) Remove(ctx context.Context, id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.load(ctx)
	if err != nil {
		return false, err
	}

	i := indexOf(records, id)
	if i < 0 {
		return false, nil
	}

	records = append(records[:i], records[i+1:]...)
	return true, l.save(ctx, records)
}

// Stats aggregates the ledger. TotalSize sums completed records only.
func (l *Ledger) Stats(ctx context.Context) (*domain.BackupStats, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	records, err := l.load(ctx)
	if err != nil {
		return nil, err
	}

	stats := &domain.BackupStats{
		Total:    len(records),
		ByStatus: make(map[domain.BackupStatus]int),
	}
	for _, r := range records {
		stats.ByStatus[r.Status]++
		if r.Status == domain.BackupStatusCompleted {
			stats.TotalSize += r.FileSize
		}
	}
	return stats, nil
}

// load must be called with l.mu held.
func (l *Ledger) load(ctx context.Context) ([]*domain.BackupRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := l.store.Load(ctx)
	if err != nil {
		return nil, domain.ErrStorageError.WithCause(err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var records []*domain.BackupRecord
	if err := json.Unmarshal(data, &records); err != nil {
		l.logger.Error("ledger: content is not valid, treating as empty",
			"error", err,
			"bytes", len(data),
		)
		if l.corruptions != nil {
			l.corruptions.Inc()
		}
		return nil, nil
	}

	// Drop null entries a hand-edited file might contain.
	out := records[:0]
	for _, r := range records {
		if r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

// save must be called with l.mu held for writing.
func (l *Ledger) save(ctx context.Context, records []*domain.BackupRecord) error {
	if records == nil {
		records = []*domain.BackupRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return domain.ErrStorageError.WithCause(err)
	}
	if err := l.store.Save(ctx, data); err != nil {
		return domain.ErrStorageError.WithCause(err)
	}
	return nil
}

func indexOf(records []*domain.BackupRecord, id string) int {
	for i, r := range records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func sortNewestFirst(records []*domain.BackupRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})
}
