package swarmstate

import (
	"log/slog"
	"time"

	"github.com/aretw0/swarmstate/internal/logging"
	"github.com/aretw0/swarmstate/internal/migrations"
	"github.com/aretw0/swarmstate/pkg/merge"
	"github.com/aretw0/swarmstate/pkg/migrate"
	"github.com/aretw0/swarmstate/pkg/observability"
	"github.com/aretw0/swarmstate/pkg/reducer"
	"github.com/aretw0/swarmstate/pkg/registry"
	"github.com/aretw0/swarmstate/pkg/state"
)

// Version is the library release version. Overridable at build time via
// -ldflags "-X github.com/aretw0/swarmstate.Version=...".
var Version = "0.1.0"

// Engine is the high-level entry point for the swarmstate library. It wraps
// the merge and migration engines behind one object so most consumers never
// touch the subpackages directly.
type Engine struct {
	fields   *registry.Registry
	merger   *merge.Engine
	migrator *migrate.Migrator
	logger   *slog.Logger
	metrics  *observability.Metrics
	clock    func() time.Time
	steps    func(*migrate.Builder) error
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithRegistry replaces the built-in field registry, e.g. one loaded from a
// YAML document via registry.Load.
func WithRegistry(reg *registry.Registry) Option {
	return func(e *Engine) {
		if reg != nil {
			e.fields = reg
		}
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics attaches a Prometheus metric set.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock overrides the timestamp source, keeping stamped fields and
// backups deterministic in tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.clock = now
		}
	}
}

// WithMigrations registers additional migration steps on top of the built-in
// ones. Registering an existing hop replaces the built-in step.
func WithMigrations(register func(*migrate.Builder) error) Option {
	return func(e *Engine) { e.steps = register }
}

// New initializes an Engine. With no options it carries the built-in field
// registry and the shipped migration steps.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		fields: registry.Default(),
		logger: logging.NewNop(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.merger = merge.New(e.fields,
		merge.WithLogger(e.logger),
		merge.WithMetrics(e.metrics),
		merge.WithClock(e.clock),
	)

	builder := migrate.NewBuilder().WithBuildLogger(e.logger)
	if err := migrations.RegisterBuiltin(builder, e.clock); err != nil {
		return nil, err
	}
	if e.steps != nil {
		if err := e.steps(builder); err != nil {
			return nil, err
		}
	}
	e.migrator = builder.Build(e.fields,
		migrate.WithLogger(e.logger),
		migrate.WithMetrics(e.metrics),
		migrate.WithClock(e.clock),
	)
	return e, nil
}

// NewState returns a fresh state populated with the registry's defaults.
func (e *Engine) NewState() state.State {
	return state.New(e.fields)
}

// MergeStates combines update into base field by field. See merge.Engine.
func (e *Engine) MergeStates(base state.State, update map[string]any) state.State {
	return e.merger.Merge(base, update)
}

// ApplyReducer runs a single field's reducer without a full merge.
func (e *Engine) ApplyReducer(field string, current, update any) (any, error) {
	return e.merger.ApplyReducer(field, current, update)
}

// ValidateState checks st against the active field descriptors. Lenient mode
// collects every violation; strict mode fails on the first.
func (e *Engine) ValidateState(st state.State, strict bool) error {
	return e.fields.ValidateState(st, strict)
}

// MigrateState rewrites st to the target schema version.
func (e *Engine) MigrateState(st state.State, target string) (state.State, error) {
	return e.migrator.Migrate(st, target)
}

// AutoMigrateState brings st to the current schema version, backing it up
// first.
func (e *Engine) AutoMigrateState(st state.State) (state.State, migrate.Report, error) {
	return e.migrator.AutoMigrate(st)
}

// CreateBackup snapshots st for later restore.
func (e *Engine) CreateBackup(st state.State) migrate.Backup {
	return e.migrator.CreateBackup(st)
}

// RestoreBackup returns the backed-up state as a fresh deep copy.
func (e *Engine) RestoreBackup(b migrate.Backup) state.State {
	return b.Restore()
}

// ReducerInfo describes the merge behavior of a registered field.
func (e *Engine) ReducerInfo(field string) (reducer.Info, error) {
	d, err := e.fields.Describe(field)
	if err != nil {
		return reducer.Info{}, err
	}
	return reducer.Describe(d.Strategy), nil
}

// Registry exposes the engine's field registry, e.g. for feature-flag
// toggles.
func (e *Engine) Registry() *registry.Registry {
	return e.fields
}

// Migrator exposes the configured migration engine.
func (e *Engine) Migrator() *migrate.Migrator {
	return e.migrator
}

// Merger exposes the configured merge engine.
func (e *Engine) Merger() *merge.Engine {
	return e.merger
}
