package migrate

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/swarmstate/internal/logging"
	"github.com/aretw0/swarmstate/pkg/observability"
	"github.com/aretw0/swarmstate/pkg/registry"
	"github.com/aretw0/swarmstate/pkg/state"
)

// Transform rewrites a state from one schema version to the next. It receives
// a private copy and may mutate it freely; the version field is set by the
// migrator after the transform succeeds.
type Transform func(state.State) (state.State, error)

// Status tracks where a state sits in its migration lifecycle.
type Status string

const (
	StatusUnmigrated Status = "unmigrated"
	StatusInProgress Status = "in_progress"
	StatusMigrated   Status = "migrated"
	StatusFailed     Status = "failed"
)

// Report summarizes one AutoMigrate run.
type Report struct {
	Status Status
	From   string
	To     string
	Backup *Backup
}

type hop struct {
	from string
	to   string
}

// Builder collects migration steps before they are frozen into a Migrator.
// Registration is explicit: nothing registers itself at import time, so the
// set of available migrations is always visible at the call site.
type Builder struct {
	hops map[hop]Transform
	log  *slog.Logger
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		hops: make(map[hop]Transform),
		log:  logging.NewNop(),
	}
}

// WithBuildLogger sets the logger used to report registration conflicts.
func (b *Builder) WithBuildLogger(log *slog.Logger) *Builder {
	if log != nil {
		b.log = log
	}
	return b
}

// Register adds a migration step. Both versions must be valid semver.
// Registering the same hop twice replaces the earlier transform, with a
// warning, so a caller can override a built-in step.
func (b *Builder) Register(from, to string, fn Transform) error {
	if fn == nil {
		return fmt.Errorf("migration %s -> %s: transform is nil", from, to)
	}
	if _, err := canonical(from); err != nil {
		return err
	}
	if _, err := canonical(to); err != nil {
		return err
	}
	key := hop{from: from, to: to}
	if _, dup := b.hops[key]; dup {
		b.log.Warn("replacing registered migration", "from", from, "to", to)
	}
	b.hops[key] = fn
	return nil
}

// Option configures a Migrator.
type Option func(*Migrator)

// WithLogger sets the migrator's structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *Migrator) {
		if log != nil {
			m.log = log
		}
	}
}

// WithMetrics attaches a metric set.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(m *Migrator) { m.metrics = metrics }
}

// WithClock overrides the timestamp source for backups.
func WithClock(now func() time.Time) Option {
	return func(m *Migrator) {
		if now != nil {
			m.now = now
		}
	}
}

// Build freezes the registered steps into a Migrator that validates migrated
// states against the given field registry.
func (b *Builder) Build(fields *registry.Registry, opts ...Option) *Migrator {
	hops := make(map[hop]Transform, len(b.hops))
	for k, v := range b.hops {
		hops[k] = v
	}
	m := &Migrator{
		hops:    hops,
		fields:  fields,
		log:     logging.NewNop(),
		now:     time.Now,
		current: registry.CurrentSchemaVersion,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Migrator runs schema migrations. Its step table is immutable after Build,
// so it is safe for concurrent use.
type Migrator struct {
	hops    map[hop]Transform
	fields  *registry.Registry
	log     *slog.Logger
	metrics *observability.Metrics
	now     func() time.Time
	current string
}

// Migrate rewrites st to the target schema version using a single registered
// hop. The input state is never mutated: on any error the caller's state is
// exactly as it was.
//
// Migrating to the version the state already has is a no-op clone. A target
// with no registered hop from the state's version, or an unparsable version
// string on either side, returns a *VersionError. The migrated state is
// strictly validated before being returned; a state that a transform leaves
// invalid returns a *MigrationError and is discarded.
func (m *Migrator) Migrate(st state.State, target string) (state.State, error) {
	from := st.Version()

	cmp, err := Compare(from, target)
	if err != nil {
		return nil, &VersionError{From: from, To: target, Err: err}
	}
	if cmp == 0 {
		return st.Clone(), nil
	}

	fn, ok := m.hops[hop{from: from, to: target}]
	if !ok {
		m.metrics.MigrationFinished(target, "error")
		return nil, &VersionError{From: from, To: target}
	}

	m.log.Info("migrating state", "from", from, "to", target)

	out, err := fn(st.Clone())
	if err != nil {
		m.metrics.MigrationFinished(target, "error")
		return nil, &MigrationError{From: from, To: target, Err: err}
	}
	if out == nil {
		m.metrics.MigrationFinished(target, "error")
		return nil, &MigrationError{From: from, To: target, Err: fmt.Errorf("transform returned nil state")}
	}
	out[registry.VersionField] = target

	if err := m.fields.ValidateState(out, true); err != nil {
		m.metrics.MigrationFinished(target, "error")
		return nil, &MigrationError{From: from, To: target, Err: err}
	}

	m.metrics.MigrationFinished(target, "ok")
	return out, nil
}

// AutoMigrate brings st to the current schema version, taking a backup first
// so a failed migration can be undone with Restore. A state already at the
// current version is returned as a clone with no backup taken.
func (m *Migrator) AutoMigrate(st state.State) (state.State, Report, error) {
	from := st.Version()
	report := Report{Status: StatusUnmigrated, From: from, To: m.current}

	cmp, err := Compare(from, m.current)
	if err != nil {
		report.Status = StatusFailed
		return nil, report, &VersionError{From: from, To: m.current, Err: err}
	}
	if cmp == 0 {
		report.Status = StatusMigrated
		return st.Clone(), report, nil
	}

	backup := m.CreateBackup(st)
	report.Backup = &backup
	report.Status = StatusInProgress

	out, err := m.Migrate(st, m.current)
	if err != nil {
		report.Status = StatusFailed
		return nil, report, err
	}
	report.Status = StatusMigrated
	return out, report, nil
}

// Verify dry-runs a migration on a copy of sample and reports whether it
// would succeed. The sample is never modified.
func (m *Migrator) Verify(sample state.State, target string) error {
	_, err := m.Migrate(sample, target)
	return err
}

// CurrentVersion returns the schema version AutoMigrate targets.
func (m *Migrator) CurrentVersion() string { return m.current }
