package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func newTestEngine(t *testing.T) *BadgerEngine {
	t.Helper()

	cfg := DefaultKVConfig(t.TempDir())
	cfg.Badger.GCInterval = "1h" // Disable auto GC for tests
	cfg.Badger.SyncWrites = false

	engine, err := NewBadgerEngine(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { engine.Close() })
	return engine
}

func TestBadgerEngine_BasicOperations(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	t.Run("Set and Get", func(t *testing.T) {
		key := []byte("test-key")
		value := []byte("test-value")

		if err := engine.Set(ctx, key, value); err != nil {
			t.Fatal(err)
		}

		got, err := engine.Get(ctx, key)
		if err != nil {
			t.Fatal(err)
		}

		if string(got) != string(value) {
			t.Errorf("expected %s, got %s", value, got)
		}
	})

	t.Run("Get non-existent key", func(t *testing.T) {
		_, err := engine.Get(ctx, []byte("non-existent"))
		if !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("expected ErrKeyNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		key := []byte("delete-key")

		if err := engine.Set(ctx, key, []byte("v")); err != nil {
			t.Fatal(err)
		}
		if err := engine.Delete(ctx, key); err != nil {
			t.Fatal(err)
		}

		_, err := engine.Get(ctx, key)
		if !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("expected ErrKeyNotFound after delete, got %v", err)
		}
	})
}

func TestBadgerEngine_Scan(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := engine.Set(ctx, []byte(fmt.Sprintf("ledger/%d", i)), []byte("x")); err != nil {
			t.Fatal(err)
		}
	}
	if err := engine.Set(ctx, []byte("other/1"), []byte("y")); err != nil {
		t.Fatal(err)
	}

	count := 0
	err := engine.Scan(ctx, []byte("ledger/"), func(key, value []byte) bool {
		if !bytes.HasPrefix(key, []byte("ledger/")) {
			t.Errorf("unexpected key %s", key)
		}
		count++
		return true
	})
	if err != nil {
		t.Fatal(err)
	}
	if count != 5 {
		t.Errorf("expected 5 keys, got %d", count)
	}

	count = 0
	_ = engine.Scan(ctx, []byte("ledger/"), func(key, value []byte) bool {
		count++
		return count < 2
	})
	if count != 2 {
		t.Errorf("early stop: expected 2 callbacks, got %d", count)
	}
}

func TestBadgerEngine_Export(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	if err := engine.Set(ctx, []byte("k"), []byte("v")); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := engine.Export(ctx, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if buf.Len() == 0 {
		t.Error("Export() wrote nothing")
	}
}

func TestBadgerEngine_GCAndStats(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.GC(ctx); err != nil {
		t.Fatalf("GC() error = %v", err)
	}

	stats, err := engine.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.LastGCTime == 0 {
		t.Error("LastGCTime should be set after GC")
	}
	if stats.TotalSize != stats.LSMSize+stats.ValueLogSize {
		t.Errorf("TotalSize = %d, want LSM+VLog", stats.TotalSize)
	}
}

func TestBadgerEngine_Closed(t *testing.T) {
	engine := newTestEngine(t)
	if err := engine.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := engine.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	ctx := context.Background()
	if _, err := engine.Get(ctx, []byte("k")); !errors.Is(err, ErrClosed) {
		t.Errorf("Get after close = %v, want ErrClosed", err)
	}
	if err := engine.Set(ctx, []byte("k"), nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Set after close = %v, want ErrClosed", err)
	}
}

func TestBadgerEngine_InMemory(t *testing.T) {
	cfg := KVConfig{Badger: DefaultBadgerConfig()}
	cfg.Badger.InMemory = true

	engine, err := NewBadgerEngine(cfg, nil)
	if err != nil {
		t.Fatalf("NewBadgerEngine() error = %v", err)
	}
	defer engine.Close()

	if err := engine.Set(context.Background(), []byte("k"), []byte("v")); err != nil {
		t.Fatal(err)
	}
	if _, err := NewBadgerEngine(KVConfig{}, nil); err == nil {
		t.Error("expected error for missing dir")
	}
}

func TestBadgerEngine_RegisterMetrics(t *testing.T) {
	engine := newTestEngine(t)
	reg := prometheus.NewRegistry()

	if err := engine.RegisterMetrics(reg); err != nil {
		t.Fatalf("RegisterMetrics() error = %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if len(families) != 4 {
		t.Errorf("expected 4 metric families, got %d", len(families))
	}

	if err := engine.RegisterMetrics(reg); err == nil {
		t.Error("duplicate registration should fail")
	}
}
