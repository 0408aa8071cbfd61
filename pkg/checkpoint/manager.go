package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/swarmstate/internal/logging"
	"github.com/aretw0/swarmstate/pkg/merge"
	"github.com/aretw0/swarmstate/pkg/ports"
	"github.com/aretw0/swarmstate/pkg/registry"
	"github.com/aretw0/swarmstate/pkg/state"
)

// lockTTL bounds how long a crashed replica can hold a distributed lock.
const lockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates checkpoint access, ensuring safe concurrent merges.
// It uses reference counting to garbage collect unused local locks and an
// optional distributed locker to coordinate across replicas.
type Manager struct {
	store  ports.CheckpointStore
	engine *merge.Engine
	fields *registry.Registry

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker ports.DistributedLocker
	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a checkpoint Manager over the given store. The engine
// performs the merges; the registry supplies defaults for fresh checkpoints.
func NewManager(store ports.CheckpointStore, engine *merge.Engine, fields *registry.Registry, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		engine: engine,
		fields: fields,
		locks:  make(map[string]*lockEntry),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, then call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry at zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// Load retrieves an existing checkpoint from the store.
func (m *Manager) Load(ctx context.Context, id string) (state.State, error) {
	var st state.State
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		st, err = m.store.Load(ctx, id)
		return err
	})
	return st, err
}

// LoadOrNew tries to load a checkpoint. If not found, it initializes one
// from the registry defaults and persists it immediately to reserve the ID.
func (m *Manager) LoadOrNew(ctx context.Context, id string) (state.State, error) {
	var st state.State
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		st, err = m.store.Load(ctx, id)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ports.ErrCheckpointNotFound) {
			return fmt.Errorf("failed to check checkpoint existence: %w", err)
		}

		st = state.New(m.fields)
		if err := m.store.Save(ctx, id, st); err != nil {
			return fmt.Errorf("failed to initialize checkpoint: %w", err)
		}
		return nil
	})
	return st, err
}

// Update applies a partial update to a checkpoint through the reducer engine
// while holding its lock: load (or initialize), merge, save. The merged state
// is returned.
func (m *Manager) Update(ctx context.Context, id string, update map[string]any) (state.State, error) {
	var merged state.State
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		base, err := m.store.Load(ctx, id)
		if errors.Is(err, ports.ErrCheckpointNotFound) {
			base = state.New(m.fields)
		} else if err != nil {
			return err
		}

		merged = m.engine.Merge(base, update)
		if delta := state.Diff(base, merged); !delta.Empty() {
			m.logger.Debug("Checkpoint updated",
				"checkpoint_id", id,
				"fields_changed", len(delta.Changed),
			)
		}
		return m.store.Save(ctx, id, merged)
	})
	return merged, err
}

// Save persists a checkpoint state wholesale.
func (m *Manager) Save(ctx context.Context, id string, st state.State) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Save(ctx, id, st)
	})
}

// Delete removes the checkpoint from the store.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Delete(ctx, id)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying checkpoint store.
func (m *Manager) Store() ports.CheckpointStore {
	return m.store
}

// WithLock executes a function while holding the lock for the checkpoint.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"checkpoint_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
