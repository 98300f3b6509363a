package obs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "indexer"

// Commit outcomes.
const (
	CommitOK       = "ok"
	CommitFallback = "fallback"
	CommitFailed   = "failed"
)

// Pipeline stages.
const (
	StageDecode = "decode"
	StageCommit = "commit"
)

// Metrics exposes processor counters to prometheus and keeps local latency
// stats for the shutdown summary. A nil *Metrics is a no-op.
type Metrics struct {
	transactions  prometheus.Counter
	rows          *prometheus.CounterVec
	skippedEvents *prometheus.CounterVec
	commits       *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	lastVersion   prometheus.Gauge

	decodeLatency LatencyStats
	commitLatency LatencyStats
}

// Snapshot captures the local latency stats.
type Snapshot struct {
	DecodeLatency LatencySnapshot
	CommitLatency LatencySnapshot
}

// NewMetrics allocates the collectors and registers them on reg when it is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transactions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Transactions handed to the processor.",
		}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Rows committed per table.",
		}, []string{"table"}),
		skippedEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_events_total",
			Help:      "Supported events that failed to decode and were skipped.",
		}, []string{"module"}),
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commits_total",
			Help:      "Batch commits by outcome.",
		}, []string{"outcome"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent per pipeline stage and batch.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"stage"}),
		lastVersion: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_committed_version",
			Help:      "End version of the last committed batch.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.transactions, m.rows, m.skippedEvents, m.commits, m.stageDuration, m.lastVersion)
	}
	return m
}

// AddTransactions counts transactions handed to the processor.
func (m *Metrics) AddTransactions(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.transactions.Add(float64(n))
}

// AddRows counts committed rows per table.
func (m *Metrics) AddRows(counts map[string]int) {
	if m == nil {
		return
	}
	for table, n := range counts {
		if n > 0 {
			m.rows.WithLabelValues(table).Add(float64(n))
		}
	}
}

// IncSkippedEvent records an event dropped after a decode failure.
func (m *Metrics) IncSkippedEvent(module string) {
	if m == nil {
		return
	}
	m.skippedEvents.WithLabelValues(module).Inc()
}

// IncCommit records a commit outcome.
func (m *Metrics) IncCommit(outcome string) {
	if m == nil {
		return
	}
	m.commits.WithLabelValues(outcome).Inc()
}

// ObserveStage records the duration of one stage.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	switch stage {
	case StageDecode:
		m.decodeLatency.Observe(d)
	case StageCommit:
		m.commitLatency.Observe(d)
	}
}

// SetLastVersion records the end version of the last committed batch.
func (m *Metrics) SetLastVersion(v int64) {
	if m == nil {
		return
	}
	m.lastVersion.Set(float64(v))
}

// Snapshot returns a copy of the local latency stats.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		DecodeLatency: m.decodeLatency.Snapshot(),
		CommitLatency: m.commitLatency.Snapshot(),
	}
}
