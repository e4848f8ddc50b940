// Package metric provides Prometheus metrics for SnapKeep.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: Registry holding the application metrics and the
//     /metrics HTTP handler
//   - collector.go: scrape-time collector reporting ledger statistics
//
// Metrics include:
//
//   - Backup attempts by type and terminal status, with duration and size
//   - Restore outcomes and deletions
//   - Ledger corruption events
//   - HTTP request counts and latencies
//
// Each Registry owns its own prometheus.Registry so tests can create
// independent instances.
package metric
