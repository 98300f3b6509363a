package obs

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.AddTransactions(3)
	m.AddRows(map[string]int{"vaults": 2, "trades": 0})
	m.AddRows(map[string]int{"vaults": 1})
	m.IncSkippedEvent("market")
	m.IncCommit(CommitOK)
	m.IncCommit(CommitFallback)
	m.SetLastVersion(42)

	require.Equal(t, 3.0, testutil.ToFloat64(m.transactions))
	require.Equal(t, 3.0, testutil.ToFloat64(m.rows.WithLabelValues("vaults")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.skippedEvents.WithLabelValues("market")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.commits.WithLabelValues(CommitFallback)))
	require.Equal(t, 42.0, testutil.ToFloat64(m.lastVersion))

	// trades was never incremented, so it has no series
	require.Equal(t, 1, testutil.CollectAndCount(m.rows))

	n, err := testutil.GatherAndCount(reg, "indexer_commits_total")
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestMetricsStages(t *testing.T) {
	m := NewMetrics(nil)
	m.ObserveStage(StageDecode, 2*time.Millisecond)
	m.ObserveStage(StageDecode, 4*time.Millisecond)
	m.ObserveStage(StageCommit, time.Millisecond)

	snap := m.Snapshot()
	require.Equal(t, uint64(2), snap.DecodeLatency.Count)
	require.Equal(t, 2*time.Millisecond, snap.DecodeLatency.Min)
	require.Equal(t, 4*time.Millisecond, snap.DecodeLatency.Max)
	require.Equal(t, 3*time.Millisecond, snap.DecodeLatency.Avg)
	require.Equal(t, uint64(1), snap.CommitLatency.Count)
	require.Equal(t, 2, testutil.CollectAndCount(m.stageDuration))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.AddTransactions(1)
	m.AddRows(map[string]int{"x": 1})
	m.IncSkippedEvent("vault")
	m.IncCommit(CommitFailed)
	m.ObserveStage(StageCommit, time.Second)
	m.SetLastVersion(1)
	require.Equal(t, Snapshot{}, m.Snapshot())
}

func TestLatencyStatsIgnoresNegative(t *testing.T) {
	var l LatencyStats
	l.Observe(-time.Second)
	require.Equal(t, LatencySnapshot{}, l.Snapshot())
}
