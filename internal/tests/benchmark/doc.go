// Package benchmark holds performance benchmarks for the backup path.
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/...
//	go test -bench=BenchmarkBackupCreate/encrypted -benchtime=10s ./internal/tests/benchmark/...
//
// Data sets are generated into temporary directories; DocumentCounts and
// LedgerSizes set the scales.
package benchmark
