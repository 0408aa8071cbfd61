package merge

import (
	"log/slog"
	"sort"
	"time"

	"github.com/aretw0/swarmstate/internal/logging"
	"github.com/aretw0/swarmstate/pkg/observability"
	"github.com/aretw0/swarmstate/pkg/reducer"
	"github.com/aretw0/swarmstate/pkg/registry"
	"github.com/aretw0/swarmstate/pkg/state"
)

// Engine applies field-wise reducers to combine a concurrent update into a
// base state. The base is never mutated; each call returns a fresh merged
// state so callers can retry or discard freely.
type Engine struct {
	reg     *registry.Registry
	log     *slog.Logger
	metrics *observability.Metrics
	now     reducer.Clock
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithMetrics attaches a metric set. A nil set disables instrumentation.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock overrides the timestamp source used by stamping reducers.
func WithClock(now reducer.Clock) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates an Engine bound to a field registry.
func New(reg *registry.Registry, opts ...Option) *Engine {
	e := &Engine{
		reg: reg,
		log: logging.NewNop(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Merge combines an update into base, dispatching each key to the reducer its
// descriptor names. Unregistered keys fall back to last-write-wins. A reducer
// that rejects its input is logged and skipped; the base value for that field
// survives and every other field still merges. Retention limits are enforced
// on the result before it is returned.
func (e *Engine) Merge(base state.State, update map[string]any) state.State {
	start := time.Now()
	merged := base.Clone()
	if merged == nil {
		merged = state.State{}
	}

	for _, key := range sortedKeys(update) {
		proposed := update[key]

		d, err := e.reg.Describe(key)
		if err != nil {
			// Unregistered field: keep the data rather than drop it.
			merged[key] = state.CloneValue(proposed)
			e.log.Debug("merging unregistered field with last-write-wins", "field", key)
			continue
		}

		fn := registry.ReducerFor(d, e.now)
		out, err := fn(merged[key], state.CloneValue(proposed))
		if err != nil {
			e.log.Warn("reducer rejected update, keeping current value",
				"field", key, "strategy", string(d.Strategy), "err", err)
			e.metrics.ReducerFailed(key, string(d.Strategy))
			continue
		}
		merged[key] = out
		e.metrics.FieldMerged(key, string(d.Strategy))
	}

	e.enforceRetention(merged)
	e.metrics.MergeApplied(time.Since(start))
	return merged
}

// ApplyReducer runs a single field's reducer outside a full merge, useful for
// previewing what a merge would do to one field. Unregistered fields use
// last-write-wins, matching Merge.
func (e *Engine) ApplyReducer(field string, current, update any) (any, error) {
	d, err := e.reg.Describe(field)
	if err != nil {
		return reducer.Replace()(current, state.CloneValue(update))
	}
	return registry.ReducerFor(d, e.now)(state.CloneValue(current), state.CloneValue(update))
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
