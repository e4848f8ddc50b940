package storage

import (
	"context"
	"io"
)

// KVEngine is the embedded key-value store backing the badger ledger.
// Writes acknowledged by Set must survive a process restart.
type KVEngine interface {
	// Get returns ErrKeyNotFound when key is absent.
	Get(ctx context.Context, key []byte) ([]byte, error)
	Set(ctx context.Context, key, value []byte) error
	Delete(ctx context.Context, key []byte) error

	// Scan visits every key under prefix in key order until fn returns false.
	Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error

	// Export streams a dump of the whole store to w.
	Export(ctx context.Context, w io.Writer) error

	// GC compacts the value log and reports how many files were rewritten.
	GC(ctx context.Context) (int, error)

	Stats(ctx context.Context) (*KVStats, error)
	Close() error
}

// KVStats reports on-disk usage in bytes and GC activity.
type KVStats struct {
	TotalSize    uint64
	LSMSize      uint64
	ValueLogSize uint64
	LastGCTime   int64 // unix millis, zero before the first run
	GCRewrites   uint64
}

type KVConfig struct {
	Dir    string
	Badger BadgerConfig
}

// BadgerConfig tunes the badger engine. SyncWrites stays on outside of
// tests so an appended ledger record is on disk before Append returns.
type BadgerConfig struct {
	GCInterval       string  // duration string, e.g. "10m"
	GCThreshold      float64 // discard ratio in (0, 1)
	CacheSize        int64
	ValueLogFileSize int64
	SyncWrites       bool
	InMemory         bool
}

func DefaultKVConfig(dir string) KVConfig {
	return KVConfig{Dir: dir, Badger: DefaultBadgerConfig()}
}

func DefaultBadgerConfig() BadgerConfig {
	return BadgerConfig{
		GCInterval:       "10m",
		GCThreshold:      0.5,
		CacheSize:        16 << 20,
		ValueLogFileSize: 64 << 20,
		SyncWrites:       true,
	}
}
