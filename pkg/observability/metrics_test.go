package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersAndRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.MergeApplied(5 * time.Millisecond)
	m.FieldMerged("task_progress", "monotonic_progress")
	m.ReducerFailed("task_progress", "monotonic_progress")
	m.MigrationFinished("1.1.0", "ok")

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["swarmstate_merges_total"])
	assert.True(t, names["swarmstate_field_merges_total"])
	assert.True(t, names["swarmstate_reducer_errors_total"])
	assert.True(t, names["swarmstate_migrations_total"])
	assert.True(t, names["swarmstate_merge_duration_seconds"])
}

func TestNilMetrics_RecordSafely(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.MergeApplied(time.Second)
		m.FieldMerged("f", "s")
		m.ReducerFailed("f", "s")
		m.MigrationFinished("1.1.0", "error")
	})
}
