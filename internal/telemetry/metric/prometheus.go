package metric

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "snapkeep"

// Restore outcome labels.
const (
	RestoreOK        = "ok"
	RestoreNotFound  = "not_found"
	RestoreIntegrity = "integrity"
	RestoreError     = "error"
)

// Registry holds all application metrics.
type Registry struct {
	reg *prometheus.Registry

	// Backup metrics
	BackupsTotal   *prometheus.CounterVec
	BackupDuration *prometheus.HistogramVec
	ArtifactBytes  prometheus.Histogram
	RestoresTotal  *prometheus.CounterVec
	DeletesTotal   prometheus.Counter
	PrunedTotal    prometheus.Counter

	// Ledger metrics
	LedgerCorruptions prometheus.Counter

	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with all SnapKeep metrics plus the Go
// runtime and process collectors registered.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		BackupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backup",
			Name:      "attempts_total",
			Help:      "Backup attempts by type and terminal status",
		}, []string{"type", "status"}),

		BackupDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backup",
			Name:      "duration_seconds",
			Help:      "Backup attempt duration from ledger append to terminal state",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 9),
		}, []string{"status"}),

		ArtifactBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backup",
			Name:      "artifact_bytes",
			Help:      "Size of written backup artifacts",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
		}),

		RestoresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backup",
			Name:      "restores_total",
			Help:      "Restore attempts by result",
		}, []string{"result"}),

		DeletesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backup",
			Name:      "deletes_total",
			Help:      "Backups deleted",
		}),

		PrunedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backup",
			Name:      "pruned_total",
			Help:      "Backups removed by retention",
		}),

		LedgerCorruptions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "corruptions_total",
			Help:      "Times the persisted ledger could not be parsed and was treated as empty",
		}),

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code",
		}, []string{"method", "route", "code"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.BackupsTotal,
		r.BackupDuration,
		r.ArtifactBytes,
		r.RestoresTotal,
		r.DeletesTotal,
		r.PrunedTotal,
		r.LedgerCorruptions,
		r.RequestsTotal,
		r.RequestDuration,
	)

	return r
}

// Registerer exposes the underlying registry for components that register
// their own collectors.
func (r *Registry) Registerer() prometheus.Registerer {
	return r.reg
}

// Gatherer exposes the underlying registry for scraping.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// ObserveBackup records one terminal backup attempt.
func (r *Registry) ObserveBackup(typ, status string, elapsed time.Duration, size int64) {
	if r == nil {
		return
	}
	r.BackupsTotal.WithLabelValues(typ, status).Inc()
	r.BackupDuration.WithLabelValues(status).Observe(elapsed.Seconds())
	if size > 0 {
		r.ArtifactBytes.Observe(float64(size))
	}
}

// ObserveRestore records one restore result.
func (r *Registry) ObserveRestore(result string) {
	if r == nil {
		return
	}
	r.RestoresTotal.WithLabelValues(result).Inc()
}

// ObserveDelete records one deletion. Pruned deletions also count
// towards PrunedTotal.
func (r *Registry) ObserveDelete(pruned bool) {
	if r == nil {
		return
	}
	r.DeletesTotal.Inc()
	if pruned {
		r.PrunedTotal.Inc()
	}
}

// ObserveRequest records one HTTP request.
func (r *Registry) ObserveRequest(method, route, code string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.RequestsTotal.WithLabelValues(method, route, code).Inc()
	r.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{
		Registry: r.reg,
	})
}
