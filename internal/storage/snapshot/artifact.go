package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yndnr/snapkeep/internal/core/domain"
)

const (
	filePrefix    = "backup-"
	fileExtension = ".json"

	dirPerm  = 0o750
	filePerm = 0o640
)

var nameReplacer = strings.NewReplacer(":", "-", ".", "-")

// ArtifactName returns the file name of the artifact for a backup started
// at t with the given id.
func ArtifactName(t time.Time, id string) string {
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	return filePrefix + nameReplacer.Replace(t.UTC().Format(time.RFC3339Nano)) + "-" + short + fileExtension
}

// ArtifactStore manages artifact files in one directory.
type ArtifactStore struct {
	dir string
}

// NewArtifactStore creates a store rooted at dir. The directory is created
// on first write.
func NewArtifactStore(dir string) *ArtifactStore {
	return &ArtifactStore{dir: dir}
}

// Dir returns the backup directory.
func (s *ArtifactStore) Dir() string {
	return s.dir
}

// Write atomically writes data as the named artifact and returns its
// absolute path and size on disk.
func (s *ArtifactStore) Write(name string, data []byte) (string, int64, error) {
	if name == "" || name != filepath.Base(name) {
		return "", 0, domain.ErrArtifactWrite.WithDetails("invalid artifact name")
	}
	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return "", 0, domain.ErrArtifactWrite.WithCause(fmt.Errorf("snapshot: create dir: %w", err))
	}

	finalPath, err := filepath.Abs(filepath.Join(s.dir, name))
	if err != nil {
		return "", 0, domain.ErrArtifactWrite.WithCause(err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return "", 0, domain.ErrArtifactWrite.WithCause(fmt.Errorf("snapshot: create temp file: %w", err))
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", 0, domain.ErrArtifactWrite.WithCause(fmt.Errorf("snapshot: write: %w", err))
	}
	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		return "", 0, domain.ErrArtifactWrite.WithCause(fmt.Errorf("snapshot: chmod: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", 0, domain.ErrArtifactWrite.WithCause(fmt.Errorf("snapshot: sync: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return "", 0, domain.ErrArtifactWrite.WithCause(fmt.Errorf("snapshot: close: %w", err))
	}

	stat, err := os.Stat(tmpPath)
	if err != nil {
		return "", 0, domain.ErrArtifactWrite.WithCause(err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		return "", 0, domain.ErrArtifactWrite.WithCause(fmt.Errorf("snapshot: rename: %w", err))
	}
	syncDir(s.dir)

	return finalPath, stat.Size(), nil
}

// Read returns the content of the artifact at path.
// A missing file maps to domain.ErrBackupNotFound.
func (s *ArtifactStore) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrBackupNotFound.WithCause(err)
		}
		return nil, fmt.Errorf("snapshot: read artifact: %w", err)
	}
	return data, nil
}

// Exists reports whether a regular file exists at path.
func (s *ArtifactStore) Exists(path string) bool {
	if path == "" {
		return false
	}
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}

// Remove deletes the artifact at path. Removing a missing file is not an
// error.
func (s *ArtifactStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("snapshot: remove artifact: %w", err)
	}
	return nil
}

// syncDir flushes the directory entry after a rename. Errors are ignored:
// some platforms do not support syncing directories.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
