package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yndnr/snapkeep/internal/storage"
)

// Store reads and writes the serialized ledger as a whole.
type Store interface {
	// Load returns the persisted bytes, or nil when nothing has been
	// saved yet.
	Load(ctx context.Context) ([]byte, error)

	// Save replaces the persisted bytes. Readers must never observe a
	// partially written value.
	Save(ctx context.Context, data []byte) error
}

const (
	dirPerm  = 0o750
	filePerm = 0o640
)

// FileStore keeps the ledger in a single JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore for path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the ledger file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the ledger file. A missing file yields nil.
func (s *FileStore) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("ledger: read %s: %w", s.path, err)
	}
	return data, nil
}

// Save writes data to a temporary file, syncs it and renames it over the
// ledger file.
func (s *FileStore) Save(ctx context.Context, data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("ledger: create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("ledger: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("ledger: write: %w", err)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		return fmt.Errorf("ledger: chmod: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("ledger: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("ledger: close: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("ledger: rename: %w", err)
	}

	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}

// DefaultBadgerKey is the key the ledger is stored under in Badger.
var DefaultBadgerKey = []byte("snapkeep/ledger/backups")

// BadgerStore keeps the ledger as a single value in an embedded KV engine.
type BadgerStore struct {
	kv  storage.KVEngine
	key []byte
}

// NewBadgerStore creates a BadgerStore over kv using DefaultBadgerKey.
func NewBadgerStore(kv storage.KVEngine) *BadgerStore {
	return &BadgerStore{kv: kv, key: DefaultBadgerKey}
}

// Load reads the ledger value. A missing key yields nil.
func (s *BadgerStore) Load(ctx context.Context) ([]byte, error) {
	data, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("ledger: badger get: %w", err)
	}
	return data, nil
}

// Save replaces the ledger value in a single transaction.
func (s *BadgerStore) Save(ctx context.Context, data []byte) error {
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("ledger: badger set: %w", err)
	}
	return nil
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*BadgerStore)(nil)
)
