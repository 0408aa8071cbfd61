package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the Prometheus instrument set for the merge and migration
// engines. A nil *Metrics is valid and records nothing, so engines never
// need to branch on whether metrics are enabled.
type Metrics struct {
	merges        prometheus.Counter
	fieldMerges   *prometheus.CounterVec
	reducerErrors *prometheus.CounterVec
	migrations    *prometheus.CounterVec
	mergeDuration prometheus.Histogram
}

// New creates the metric set and registers it with the given registerer
// (prometheus.DefaultRegisterer in production, a private registry in tests).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		merges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "swarmstate_merges_total",
			Help: "Total number of state merges applied",
		}),
		fieldMerges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swarmstate_field_merges_total",
				Help: "Per-field merges by strategy",
			},
			[]string{"field", "strategy"},
		),
		reducerErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swarmstate_reducer_errors_total",
				Help: "Field merges skipped due to malformed input",
			},
			[]string{"field", "strategy"},
		),
		migrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swarmstate_migrations_total",
				Help: "Schema migrations by target version and outcome",
			},
			[]string{"target", "outcome"},
		),
		mergeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "swarmstate_merge_duration_seconds",
			Help: "Wall time of mergeStates calls",
		}),
	}
	reg.MustRegister(m.merges, m.fieldMerges, m.reducerErrors, m.migrations, m.mergeDuration)
	return m
}

// MergeApplied records one completed mergeStates call.
func (m *Metrics) MergeApplied(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.merges.Inc()
	m.mergeDuration.Observe(elapsed.Seconds())
}

// FieldMerged records one successfully reduced field.
func (m *Metrics) FieldMerged(field, strategy string) {
	if m == nil {
		return
	}
	m.fieldMerges.WithLabelValues(field, strategy).Inc()
}

// ReducerFailed records a field skipped by partial-failure isolation.
func (m *Metrics) ReducerFailed(field, strategy string) {
	if m == nil {
		return
	}
	m.reducerErrors.WithLabelValues(field, strategy).Inc()
}

// MigrationFinished records a migration attempt outcome ("ok" or "error").
func (m *Metrics) MigrationFinished(target, outcome string) {
	if m == nil {
		return
	}
	m.migrations.WithLabelValues(target, outcome).Inc()
}
