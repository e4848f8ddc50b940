package benchmark

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/yndnr/snapkeep/internal/core/service"
	"github.com/yndnr/snapkeep/internal/storage/docsource"
	"github.com/yndnr/snapkeep/internal/storage/ledger"
	"github.com/yndnr/snapkeep/internal/storage/snapshot"
	"github.com/yndnr/snapkeep/pkg/crypto/snapcrypt"
)

// DocumentCounts defines the data document counts for benchmarking.
var DocumentCounts = []int{10, 100, 1000}

// RecordsPerDocument is the number of JSON objects in each document.
const RecordsPerDocument = 50

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// benchKey is a fixed AES-256 key.
func benchKey() []byte {
	key := make([]byte, snapcrypt.KeySize)
	for i := range key {
		key[i] = byte(i * 7)
	}
	return key
}

// writeDocuments fills dir with count JSON documents.
func writeDocuments(b *testing.B, dir string, count int) {
	b.Helper()
	if err := os.MkdirAll(dir, 0o750); err != nil {
		b.Fatal(err)
	}
	for i := 0; i < count; i++ {
		var sb strings.Builder
		sb.WriteByte('[')
		for j := 0; j < RecordsPerDocument; j++ {
			if j > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(&sb, `{"id":"rec-%d-%d","owner":"tenant-%d","body":"benchmark payload %d"}`, i, j, i%10, j)
		}
		sb.WriteByte(']')
		name := filepath.Join(dir, fmt.Sprintf("collection-%04d.json", i))
		if err := os.WriteFile(name, []byte(sb.String()), 0o600); err != nil {
			b.Fatal(err)
		}
	}
}

// newService builds a backup service over a temp directory holding count
// documents. A nil key disables encryption.
func newService(b *testing.B, count int, key []byte) *service.BackupService {
	b.Helper()
	root := b.TempDir()
	dataDir := filepath.Join(root, "data")
	writeDocuments(b, dataDir, count)

	opts := []service.BackupOption{service.WithLogger(discardLogger)}
	if key != nil {
		engine, err := snapcrypt.New(key)
		if err != nil {
			b.Fatal(err)
		}
		opts = append(opts, service.WithCipher(engine))
	}

	l := ledger.New(ledger.NewFileStore(filepath.Join(root, "backups.json")), ledger.WithLogger(discardLogger))
	agg := snapshot.NewAggregator(docsource.NewDir(dataDir), discardLogger)
	return service.NewBackupService(l, agg, snapshot.NewArtifactStore(filepath.Join(root, "backups")), opts...)
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithDocumentCounts runs a benchmark function with various document counts.
func runWithDocumentCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("docs_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
