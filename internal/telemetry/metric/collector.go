package metric

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/snapkeep/internal/core/domain"
)

// StatsFunc returns current ledger statistics.
type StatsFunc func(ctx context.Context) (*domain.BackupStats, error)

// Collector reports ledger statistics at scrape time.
type Collector struct {
	stats   StatsFunc
	timeout time.Duration

	records *prometheus.Desc
	bytes   *prometheus.Desc
	up      *prometheus.Desc
}

// NewCollector creates a collector backed by stats.
func NewCollector(stats StatsFunc) *Collector {
	return &Collector{
		stats:   stats,
		timeout: 5 * time.Second,
		records: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "ledger", "records"),
			"Backup records in the ledger by status",
			[]string{"status"}, nil,
		),
		bytes: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "ledger", "artifact_bytes"),
			"Total size of completed backup artifacts",
			nil, nil,
		),
		up: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "ledger", "up"),
			"Whether the last ledger read succeeded",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.records
	ch <- c.bytes
	ch <- c.up
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	stats, err := c.stats(ctx)
	if err != nil {
		ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, 0)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, 1)

	for _, status := range []domain.BackupStatus{
		domain.BackupStatusPending,
		domain.BackupStatusInProgress,
		domain.BackupStatusCompleted,
		domain.BackupStatusFailed,
	} {
		ch <- prometheus.MustNewConstMetric(c.records, prometheus.GaugeValue,
			float64(stats.ByStatus[status]), string(status))
	}
	ch <- prometheus.MustNewConstMetric(c.bytes, prometheus.GaugeValue, float64(stats.TotalSize))
}
