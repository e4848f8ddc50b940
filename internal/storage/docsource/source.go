package docsource

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extension is the file extension of data documents.
const Extension = ".json"

// ErrInvalidName is returned when a document name escapes the data directory.
var ErrInvalidName = errors.New("docsource: invalid document name")

// Source enumerates and reads data documents.
type Source interface {
	// List returns the file names (with extension) of all documents
	// currently present, in a stable order.
	List(ctx context.Context) ([]string, error)

	// Read returns the raw bytes of one document.
	Read(ctx context.Context, name string) ([]byte, error)
}

// Dir is a Source over a single flat directory.
type Dir struct {
	root    string
	exclude map[string]struct{}
}

// Option configures a Dir.
type Option func(*Dir)

// Exclude hides the given file names from List. Used to keep the ledger
// file out of snapshots when it lives beside the data documents.
func Exclude(names ...string) Option {
	return func(d *Dir) {
		for _, n := range names {
			if n == "" {
				continue
			}
			d.exclude[filepath.Base(n)] = struct{}{}
		}
	}
}

// NewDir creates a directory-backed Source rooted at root.
func NewDir(root string, opts ...Option) *Dir {
	d := &Dir{
		root:    root,
		exclude: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Root returns the data directory.
func (d *Dir) Root() string {
	return d.root
}

// List returns the sorted names of regular *.json files in the directory.
// A missing directory yields an empty list.
func (d *Dir) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(d.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("docsource: list %s: %w", d.root, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, Extension) || strings.HasPrefix(name, ".") {
			continue
		}
		if _, skip := d.exclude[name]; skip {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Read returns the content of the named document.
func (d *Dir) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	data, err := os.ReadFile(filepath.Join(d.root, name))
	if err != nil {
		return nil, fmt.Errorf("docsource: read %s: %w", name, err)
	}
	return data, nil
}

// StoreName returns the logical store name of a document file name.
func StoreName(name string) string {
	return strings.TrimSuffix(name, Extension)
}
