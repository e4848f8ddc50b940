package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/yndnr/snapkeep/internal/core/domain"
	"github.com/yndnr/snapkeep/internal/storage/docsource"
	"github.com/yndnr/snapkeep/internal/storage/ledger"
	"github.com/yndnr/snapkeep/internal/storage/snapshot"
	"github.com/yndnr/snapkeep/internal/telemetry/logger"
	"github.com/yndnr/snapkeep/internal/telemetry/metric"
	"github.com/yndnr/snapkeep/pkg/crypto/snapcrypt"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// testEnv wires a BackupService over temporary directories.
type testEnv struct {
	dataDir   string
	backupDir string
	ledger    *ledger.Ledger
	artifacts *snapshot.ArtifactStore
	metrics   *metric.Registry
	svc       *BackupService
}

func testKey(seed byte) []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = seed + byte(i)
	}
	return key
}

func testEngine(t *testing.T, seed byte) *snapcrypt.Engine {
	t.Helper()
	e, err := snapcrypt.New(testKey(seed))
	if err != nil {
		t.Fatalf("snapcrypt.New: %v", err)
	}
	return e
}

func newTestEnv(t *testing.T, opts ...BackupOption) *testEnv {
	t.Helper()
	root := t.TempDir()
	env := &testEnv{
		dataDir:   filepath.Join(root, "data"),
		backupDir: filepath.Join(root, "backups"),
		metrics:   metric.NewRegistry(),
	}
	if err := os.MkdirAll(env.dataDir, 0o750); err != nil {
		t.Fatal(err)
	}

	env.ledger = ledger.New(ledger.NewFileStore(filepath.Join(root, "backups.json")), ledger.WithLogger(discardLogger))
	env.artifacts = snapshot.NewArtifactStore(env.backupDir)
	env.svc = env.newService(opts...)
	return env
}

func (e *testEnv) newService(opts ...BackupOption) *BackupService {
	base := []BackupOption{WithLogger(discardLogger), WithMetrics(e.metrics)}
	agg := snapshot.NewAggregator(docsource.NewDir(e.dataDir), discardLogger)
	return NewBackupService(e.ledger, agg, e.artifacts, append(base, opts...)...)
}

func (e *testEnv) writeDoc(t *testing.T, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(e.dataDir, name), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func (e *testEnv) seedDocs(t *testing.T) {
	t.Helper()
	e.writeDoc(t, "appointments.json", `[{"id":"a1","patient":"p1","at":"2024-05-01T10:00:00Z"}]`)
	e.writeDoc(t, "messages.json", `[{"id":"m1","from":"p1","body":"hello"}]`)
}

// ============================================================================
// Create
// ============================================================================

func TestBackupService_Create_Plain(t *testing.T) {
	env := newTestEnv(t)
	env.seedDocs(t)
	ctx := context.Background()

	rec, err := env.svc.Create(ctx, &CreateBackupRequest{Type: "full"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if rec.Status != domain.BackupStatusCompleted {
		t.Fatalf("Status = %q, want completed", rec.Status)
	}
	if err := rec.Validate(); err != nil {
		t.Errorf("record invariant violated: %v", err)
	}
	if rec.Type != domain.BackupTypeFull || rec.Encrypted {
		t.Errorf("unexpected record: %+v", rec)
	}
	if filepath.Dir(rec.FilePath) != env.backupDir && !filepath.IsAbs(rec.FilePath) {
		t.Errorf("FilePath = %q", rec.FilePath)
	}

	raw, err := os.ReadFile(rec.FilePath)
	if err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
	if int64(len(raw)) != rec.FileSize {
		t.Errorf("FileSize = %d, artifact has %d bytes", rec.FileSize, len(raw))
	}
	if snapcrypt.Checksum(raw) != rec.Checksum {
		t.Error("unencrypted artifact should hash to the recorded checksum")
	}

	var doc domain.SnapshotDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("artifact is not a snapshot: %v", err)
	}
	if len(doc.Files) != 2 || doc.Files["appointments"] == nil || doc.Files["messages"] == nil {
		t.Errorf("Files = %v", doc.Files)
	}

	restored, err := env.svc.Restore(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if restored != string(raw) {
		t.Error("Restore() should return the artifact text unchanged")
	}
}

func TestBackupService_Create_LogsRequestID(t *testing.T) {
	var buf bytes.Buffer
	env := newTestEnv(t)
	env.seedDocs(t)
	svc := env.newService(WithLogger(slog.New(slog.NewJSONHandler(&buf, nil))))

	ctx := logger.WithRequestID(context.Background(), "req-create-1")
	rec, err := svc.Create(ctx, &CreateBackupRequest{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	var started bool
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var entry map[string]any
		if err := json.Unmarshal(line, &entry); err != nil {
			t.Fatalf("bad log line %q: %v", line, err)
		}
		if entry["msg"] == "backup started" {
			started = true
			if entry["request_id"] != "req-create-1" || entry["backup_id"] != rec.ID {
				t.Errorf("log entry = %v", entry)
			}
		}
	}
	if !started {
		t.Errorf("no backup started line in %s", buf.String())
	}
}

func TestBackupService_Create_EncryptedRoundTrip(t *testing.T) {
	env := newTestEnv(t, WithCipher(testEngine(t, 0x10)))
	env.writeDoc(t, "appointments.json", `{"a":1}`)
	env.writeDoc(t, "messages.json", `{"b":2}`)
	ctx := context.Background()

	rec, err := env.svc.Create(ctx, &CreateBackupRequest{OwnerScope: "p1", Type: "manual", Encrypt: true})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if rec.Status != domain.BackupStatusCompleted || !rec.Encrypted || rec.OwnerScope != "p1" {
		t.Fatalf("unexpected record: %+v", rec)
	}

	raw, err := os.ReadFile(rec.FilePath)
	if err != nil {
		t.Fatal(err)
	}
	var env2 domain.Envelope
	if err := json.Unmarshal(raw, &env2); err != nil {
		t.Fatalf("artifact is not an envelope: %v", err)
	}
	if !env2.Valid() || len(env2.IV) != 32 || env2.Checksum != rec.Checksum {
		t.Errorf("envelope = %+v", env2)
	}

	restored, err := env.svc.Restore(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if snapcrypt.Checksum([]byte(restored)) != rec.Checksum {
		t.Error("restored plaintext should match the recorded checksum")
	}

	var doc domain.SnapshotDocument
	if err := json.Unmarshal([]byte(restored), &doc); err != nil {
		t.Fatalf("restored text is not a snapshot: %v", err)
	}
	if doc.OwnerScope != "p1" || doc.Type != domain.BackupTypeManual {
		t.Errorf("snapshot header = %+v", doc)
	}
	files, err := json.Marshal(doc.Files)
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"appointments":{"a":1},"messages":{"b":2}}`; string(files) != want {
		t.Errorf("restored files = %s, want %s", files, want)
	}

	list, err := env.svc.List(ctx, "p1")
	if err != nil || len(list) != 1 || list[0].ID != rec.ID {
		t.Errorf("List(p1) = %v, %v", list, err)
	}
}

func TestBackupService_Create_FreshIVPerBackup(t *testing.T) {
	env := newTestEnv(t, WithCipher(testEngine(t, 0x10)))
	env.seedDocs(t)
	ctx := context.Background()

	ivs := make(map[string]bool)
	for i := 0; i < 3; i++ {
		rec, err := env.svc.Create(ctx, &CreateBackupRequest{Encrypt: true})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		raw, _ := os.ReadFile(rec.FilePath)
		var e domain.Envelope
		if err := json.Unmarshal(raw, &e); err != nil {
			t.Fatal(err)
		}
		if ivs[e.IV] {
			t.Fatalf("IV reused: %s", e.IV)
		}
		ivs[e.IV] = true
	}
}

func TestBackupService_Create_SkipsBadDocument(t *testing.T) {
	env := newTestEnv(t)
	env.seedDocs(t)
	env.writeDoc(t, "tasks.json", `{"broken": `)

	rec, err := env.svc.Create(context.Background(), nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if rec.Status != domain.BackupStatusCompleted || rec.Type != domain.BackupTypeManual {
		t.Fatalf("unexpected record: %+v", rec)
	}

	raw, _ := os.ReadFile(rec.FilePath)
	var doc domain.SnapshotDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}
	if _, ok := doc.Files["tasks"]; ok {
		t.Error("invalid document should be skipped")
	}
	if len(doc.Files) != 2 {
		t.Errorf("Files = %v, want the two valid documents", doc.Files)
	}
}

func TestBackupService_Create_InducedFailure(t *testing.T) {
	env := newTestEnv(t)
	env.seedDocs(t)

	// A regular file where the backup directory should be.
	if err := os.WriteFile(env.backupDir, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	rec, err := env.svc.Create(ctx, &CreateBackupRequest{Type: "full"})
	if !errors.Is(err, domain.ErrBackupFailed) {
		t.Fatalf("Create() error = %v, want ErrBackupFailed", err)
	}
	if !errors.Is(err, domain.ErrArtifactWrite) {
		t.Errorf("error should carry the artifact write cause: %v", err)
	}
	if rec == nil {
		t.Fatal("failed record should be returned")
	}

	all, err := env.ledger.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("ledger has %d records, want exactly 1", len(all))
	}
	got := all[0]
	if got.ID != rec.ID || got.Status != domain.BackupStatusFailed {
		t.Errorf("ledger record = %+v", got)
	}
	if !strings.Contains(got.Error, domain.ErrArtifactWrite.Code) || !strings.Contains(got.Error, syscall.ENOTDIR.Error()) {
		t.Errorf("ledger error = %q, want the artifact write code and the OS reason", got.Error)
	}
	if !strings.Contains(err.Error(), syscall.ENOTDIR.Error()) {
		t.Errorf("returned error %q lost the OS reason", err)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("record invariant violated: %v", err)
	}
}

func TestBackupService_Create_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.svc.Create(ctx, &CreateBackupRequest{Type: "weekly"}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("Create(bad type) error = %v, want ErrInvalidArgument", err)
	}
	if _, err := env.svc.Create(ctx, &CreateBackupRequest{Encrypt: true}); !errors.Is(err, domain.ErrEncryptionNotConfigured) {
		t.Errorf("Create(encrypt) error = %v, want ErrEncryptionNotConfigured", err)
	}

	all, _ := env.ledger.All(ctx)
	if len(all) != 0 {
		t.Errorf("rejected requests must not create records, got %d", len(all))
	}
}

// cancellingAggregator cancels the request context before aggregating.
type cancellingAggregator struct {
	inner  Aggregator
	cancel context.CancelFunc
	sawErr error
}

func (a *cancellingAggregator) Aggregate(ctx context.Context, ownerScope string, typ domain.BackupType) (*domain.SnapshotDocument, error) {
	a.cancel()
	a.sawErr = ctx.Err()
	return a.inner.Aggregate(ctx, ownerScope, typ)
}

func TestBackupService_Create_IgnoresCancellationAfterStart(t *testing.T) {
	env := newTestEnv(t)
	env.seedDocs(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	agg := &cancellingAggregator{
		inner:  snapshot.NewAggregator(docsource.NewDir(env.dataDir), discardLogger),
		cancel: cancel,
	}
	svc := NewBackupService(env.ledger, agg, env.artifacts, WithLogger(discardLogger))

	rec, err := svc.Create(ctx, nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if agg.sawErr != nil {
		t.Errorf("attempt context was cancelled: %v", agg.sawErr)
	}
	if rec.Status != domain.BackupStatusCompleted {
		t.Errorf("Status = %q, want completed", rec.Status)
	}
}

// ============================================================================
// Restore
// ============================================================================

func TestBackupService_Restore_WrongKey(t *testing.T) {
	env := newTestEnv(t, WithCipher(testEngine(t, 0x10)))
	env.seedDocs(t)
	ctx := context.Background()

	rec, err := env.svc.Create(ctx, &CreateBackupRequest{Encrypt: true})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	other := env.newService(WithCipher(testEngine(t, 0x80)))
	if _, err := other.Restore(ctx, rec.ID); !errors.Is(err, domain.ErrBackupNotFound) {
		t.Errorf("Restore(wrong key) error = %v, want ErrBackupNotFound", err)
	}

	noKey := env.newService()
	if _, err := noKey.Restore(ctx, rec.ID); !errors.Is(err, domain.ErrEncryptionNotConfigured) {
		t.Errorf("Restore(no key) error = %v, want ErrEncryptionNotConfigured", err)
	}
}

func TestBackupService_Restore_NotFound(t *testing.T) {
	env := newTestEnv(t, WithCipher(testEngine(t, 0x10)))
	env.seedDocs(t)
	ctx := context.Background()

	if _, err := env.svc.Restore(ctx, "no-such-id"); !errors.Is(err, domain.ErrBackupNotFound) {
		t.Errorf("Restore(unknown) error = %v", err)
	}

	t.Run("missing artifact", func(t *testing.T) {
		rec, err := env.svc.Create(ctx, nil)
		if err != nil {
			t.Fatal(err)
		}
		if err := os.Remove(rec.FilePath); err != nil {
			t.Fatal(err)
		}
		if _, err := env.svc.Restore(ctx, rec.ID); !errors.Is(err, domain.ErrBackupNotFound) {
			t.Errorf("Restore() error = %v, want ErrBackupNotFound", err)
		}
	})

	t.Run("unreadable artifact", func(t *testing.T) {
		rec, err := env.svc.Create(ctx, nil)
		if err != nil {
			t.Fatal(err)
		}
		// A directory in place of the file fails the read with EISDIR.
		if err := os.Remove(rec.FilePath); err != nil {
			t.Fatal(err)
		}
		if err := os.Mkdir(rec.FilePath, 0o700); err != nil {
			t.Fatal(err)
		}
		_, err = env.svc.Restore(ctx, rec.ID)
		if !errors.Is(err, domain.ErrBackupNotFound) {
			t.Errorf("Restore() error = %v, want ErrBackupNotFound", err)
		}
		if errors.Is(err, domain.ErrStorageError) {
			t.Errorf("unreadable artifact should not surface as a storage error: %v", err)
		}
	})

	t.Run("corrupt envelope", func(t *testing.T) {
		rec, err := env.svc.Create(ctx, &CreateBackupRequest{Encrypt: true})
		if err != nil {
			t.Fatal(err)
		}
		for _, content := range []string{`not json`, `{"iv":"00"}`, `{"encrypted":"zz","iv":"00"}`} {
			if err := os.WriteFile(rec.FilePath, []byte(content), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := env.svc.Restore(ctx, rec.ID); !errors.Is(err, domain.ErrBackupNotFound) {
				t.Errorf("Restore(%s) error = %v, want ErrBackupNotFound", content, err)
			}
		}
	})

	t.Run("failed backup has no artifact", func(t *testing.T) {
		rec := domain.NewBackupRecord("", domain.BackupTypeManual, false, time.Now())
		rec.Fail("boom", time.Now())
		if err := env.ledger.Append(ctx, rec); err != nil {
			t.Fatal(err)
		}
		if _, err := env.svc.Restore(ctx, rec.ID); !errors.Is(err, domain.ErrBackupNotFound) {
			t.Errorf("Restore(failed) error = %v, want ErrBackupNotFound", err)
		}
	})
}

func TestBackupService_Restore_Integrity(t *testing.T) {
	env := newTestEnv(t)
	env.seedDocs(t)
	ctx := context.Background()

	rec, err := env.svc.Create(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}

	tampered := `{"timestamp":"2024-01-01T00:00:00Z","type":"manual","files":{}}`
	if err := os.WriteFile(rec.FilePath, []byte(tampered), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := env.svc.Restore(ctx, rec.ID); !errors.Is(err, domain.ErrBackupIntegrity) {
		t.Errorf("Restore(tampered) error = %v, want ErrBackupIntegrity", err)
	}

	lenient := env.newService(WithVerifyChecksum(false))
	got, err := lenient.Restore(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Restore(no verify) error = %v", err)
	}
	if got != tampered {
		t.Errorf("Restore(no verify) = %q", got)
	}
}

// ============================================================================
// Delete, Prune, Stale, Stats
// ============================================================================

func TestBackupService_DeleteThenGet(t *testing.T) {
	env := newTestEnv(t)
	env.seedDocs(t)
	ctx := context.Background()

	rec, err := env.svc.Create(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}

	deleted, err := env.svc.Delete(ctx, rec.ID)
	if err != nil || !deleted {
		t.Fatalf("Delete() = %v, %v", deleted, err)
	}
	if _, err := env.svc.Get(ctx, rec.ID); !errors.Is(err, domain.ErrBackupNotFound) {
		t.Errorf("Get after Delete error = %v, want ErrBackupNotFound", err)
	}
	if _, err := os.Stat(rec.FilePath); !os.IsNotExist(err) {
		t.Errorf("artifact should be gone, stat err = %v", err)
	}

	deleted, err = env.svc.Delete(ctx, rec.ID)
	if err != nil || deleted {
		t.Errorf("Delete(absent) = %v, %v", deleted, err)
	}
}

func TestBackupService_Delete_MissingArtifact(t *testing.T) {
	env := newTestEnv(t)
	env.seedDocs(t)
	ctx := context.Background()

	rec, err := env.svc.Create(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(rec.FilePath); err != nil {
		t.Fatal(err)
	}

	deleted, err := env.svc.Delete(ctx, rec.ID)
	if err != nil || !deleted {
		t.Errorf("Delete() = %v, %v", deleted, err)
	}
}

func TestBackupService_Get_EmptyID(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.svc.Get(context.Background(), ""); !errors.Is(err, domain.ErrMissingArgument) {
		t.Errorf("Get(\"\") error = %v", err)
	}
}

// steppingClock returns a time one minute later on every call.
func steppingClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func TestBackupService_Prune(t *testing.T) {
	env := newTestEnv(t)
	env.seedDocs(t)
	env.svc.now = steppingClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	var created []*domain.BackupRecord
	for i := 0; i < 4; i++ {
		rec, err := env.svc.Create(ctx, &CreateBackupRequest{OwnerScope: "p1"})
		if err != nil {
			t.Fatal(err)
		}
		created = append(created, rec)
	}

	// An old failed record and a stuck attempt in the same scope.
	oldFailed := domain.NewBackupRecord("p1", domain.BackupTypeManual, false, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	oldFailed.Fail("boom", oldFailed.StartedAt)
	stuck := domain.NewBackupRecord("p1", domain.BackupTypeManual, false, time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))
	other, err := env.svc.Create(ctx, &CreateBackupRequest{OwnerScope: "p2"})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range []*domain.BackupRecord{oldFailed, stuck} {
		if err := env.ledger.Append(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := env.svc.Prune(ctx, "p1", 2)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}

	want := map[string]bool{created[0].ID: true, created[1].ID: true, oldFailed.ID: true}
	if len(removed) != len(want) {
		t.Fatalf("removed = %v, want %d ids", removed, len(want))
	}
	for _, id := range removed {
		if !want[id] {
			t.Errorf("unexpected removal %s", id)
		}
	}

	remaining, _ := env.svc.List(ctx, "p1")
	if len(remaining) != 3 {
		t.Errorf("remaining p1 records = %d, want 3", len(remaining))
	}
	if _, err := os.Stat(created[0].FilePath); !os.IsNotExist(err) {
		t.Error("pruned artifact should be removed")
	}
	if _, err := env.svc.Get(ctx, other.ID); err != nil {
		t.Errorf("other scope must be untouched: %v", err)
	}
	if _, err := env.svc.Get(ctx, stuck.ID); err != nil {
		t.Errorf("in-progress record must be kept: %v", err)
	}

	if _, err := env.svc.Prune(ctx, "p1", 0); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("Prune(keep=0) error = %v", err)
	}
}

func TestBackupService_Stale(t *testing.T) {
	env := newTestEnv(t)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	env.svc.now = func() time.Time { return now }
	ctx := context.Background()

	old := domain.NewBackupRecord("", domain.BackupTypeManual, false, now.Add(-2*time.Hour))
	recent := domain.NewBackupRecord("", domain.BackupTypeManual, false, now.Add(-time.Minute))
	done := domain.NewBackupRecord("", domain.BackupTypeManual, false, now.Add(-3*time.Hour))
	done.Fail("boom", now)
	for _, r := range []*domain.BackupRecord{old, recent, done} {
		if err := env.ledger.Append(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	stale, err := env.svc.Stale(ctx, time.Hour)
	if err != nil {
		t.Fatalf("Stale() error = %v", err)
	}
	if len(stale) != 1 || stale[0].ID != old.ID {
		t.Errorf("Stale() = %v", stale)
	}

	if _, err := env.svc.Stale(ctx, 0); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("Stale(0) error = %v", err)
	}
}

func TestBackupService_Stats(t *testing.T) {
	env := newTestEnv(t)
	env.seedDocs(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := env.svc.Create(ctx, nil); err != nil {
			t.Fatal(err)
		}
	}
	failed := domain.NewBackupRecord("", domain.BackupTypeFull, false, time.Now())
	failed.Fail("boom", time.Now())
	if err := env.ledger.Append(ctx, failed); err != nil {
		t.Fatal(err)
	}

	stats, err := env.svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Total != 3 || stats.ByStatus[domain.BackupStatusCompleted] != 2 || stats.ByStatus[domain.BackupStatusFailed] != 1 {
		t.Errorf("Stats() = %+v", stats)
	}
	if stats.TotalSize <= 0 {
		t.Errorf("TotalSize = %d, want > 0", stats.TotalSize)
	}
}

func TestBackupService_Options(t *testing.T) {
	env := newTestEnv(t)
	if env.svc.EncryptionEnabled() {
		t.Error("encryption should be disabled without a cipher")
	}
	if env.svc.RetentionKeep() != DefaultRetentionKeep {
		t.Errorf("RetentionKeep() = %d", env.svc.RetentionKeep())
	}

	svc := env.newService(WithCipher(testEngine(t, 1)), WithRetentionKeep(3))
	if !svc.EncryptionEnabled() || svc.RetentionKeep() != 3 {
		t.Error("options not applied")
	}
}
