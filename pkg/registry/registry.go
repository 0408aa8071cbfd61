package registry

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/swarmstate/pkg/reducer"
	"github.com/aretw0/swarmstate/pkg/schema"
)

// ErrFieldNotFound is returned when a field name has no descriptor.
var ErrFieldNotFound = errors.New("field not registered")

// Group names a set of related fields that can be toggled together.
type Group string

const (
	GroupMessageManagement    Group = "message_management"
	GroupTaskManagement       Group = "task_management"
	GroupAgentCoordination    Group = "agent_coordination"
	GroupToolExecution        Group = "tool_execution"
	GroupCollaborationContext Group = "collaboration_context"
	GroupMemoryLayers         Group = "memory_layers"
	GroupCommunication        Group = "communication"
	GroupControlFlow          Group = "control_flow"
	GroupDebugging            Group = "debugging"
)

// RetentionPolicy bounds how much data a field may accumulate over a
// long-running workflow.
type RetentionPolicy struct {
	// MaxEntries caps list length / history depth. Zero means unbounded.
	MaxEntries int `json:"max_entries" mapstructure:"max_entries"`

	// ArchiveAfterHours marks entries older than this for archival.
	// Zero disables archival.
	ArchiveAfterHours int `json:"archive_after_hours" mapstructure:"archive_after_hours"`

	// CleanupStrategy selects which entries to drop first ("fifo" is the
	// only strategy currently implemented).
	CleanupStrategy string `json:"cleanup_strategy" mapstructure:"cleanup_strategy"`
}

// Descriptor binds a field name to its value type, merge strategy, retention
// policy and validation rules. Descriptors are immutable after load; only
// feature flags change which descriptors are active.
type Descriptor struct {
	Name        string
	Type        schema.Type
	Strategy    reducer.Strategy
	Conflict    reducer.ConflictStrategy
	Group       Group
	Required    bool
	Default     any
	Rules       []string
	Retention   *RetentionPolicy
	FeatureFlag string
	Description string

	// DedupKeys names the entry fields the keyed-dedup strategy matches on.
	DedupKeys []string
}

// Registry is the static table mapping field names to descriptors. It is the
// single source of truth for merge dispatch, validation and retention.
//
// The descriptor set is fixed at construction; feature flags are the only
// mutable aspect and are guarded for concurrent readers.
type Registry struct {
	mu     sync.RWMutex
	fields map[string]Descriptor
	order  []string
	flags  map[string]bool
}

// New builds a registry from descriptors, preserving their order. Duplicate
// names are rejected so a config document cannot silently shadow a field.
func New(descriptors []Descriptor, flags map[string]bool) (*Registry, error) {
	r := &Registry{
		fields: make(map[string]Descriptor, len(descriptors)),
		order:  make([]string, 0, len(descriptors)),
		flags:  make(map[string]bool, len(flags)),
	}
	for _, d := range descriptors {
		if d.Name == "" {
			return nil, fmt.Errorf("descriptor with empty name")
		}
		if _, dup := r.fields[d.Name]; dup {
			return nil, fmt.Errorf("duplicate field descriptor: %s", d.Name)
		}
		if d.Type == nil {
			return nil, fmt.Errorf("field %s: type is nil", d.Name)
		}
		if d.Strategy == "" {
			d.Strategy = reducer.LastWriteWins
		}
		if d.Conflict == "" {
			d.Conflict = reducer.MostRestrictive
		}
		for _, rule := range d.Rules {
			if _, known := ruleHandlers[rule]; !known {
				return nil, fmt.Errorf("field %s: unknown validation rule %q", d.Name, rule)
			}
		}
		r.fields[d.Name] = d
		r.order = append(r.order, d.Name)
	}
	for flag, enabled := range flags {
		r.flags[flag] = enabled
	}
	return r, nil
}

// Describe returns the descriptor for a field.
// Returns ErrFieldNotFound for unregistered names.
func (r *Registry) Describe(name string) (Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.fields[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrFieldNotFound, name)
	}
	return d, nil
}

// ActiveFields returns the descriptors whose group-level and individual
// feature flags are enabled, in registration order. A flag absent from the
// flag table counts as enabled.
func (r *Registry) ActiveFields() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	active := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		d := r.fields[name]
		if !r.flagEnabledLocked(groupFlag(d.Group)) {
			continue
		}
		if d.FeatureFlag != "" && !r.flagEnabledLocked(d.FeatureFlag) {
			continue
		}
		active = append(active, d)
	}
	return active
}

// SetGroupEnabled toggles an entire field group. Disabling a group removes
// its fields from ActiveFields and from validation without deleting stored
// data.
func (r *Registry) SetGroupEnabled(g Group, enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flags[groupFlag(g)] = enabled
}

// SetFlag toggles an individual feature flag.
func (r *Registry) SetFlag(name string, enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flags[name] = enabled
}

// ReducerFor constructs the merge function bound to a descriptor, applying
// the descriptor's retention and conflict parameters. The clock is supplied
// by the merge engine so timestamp-stamping reducers stay deterministic in
// tests.
func ReducerFor(d Descriptor, now reducer.Clock) reducer.Func {
	max := 0
	if d.Retention != nil {
		max = d.Retention.MaxEntries
	}

	switch d.Strategy {
	case reducer.AppendHistory:
		return reducer.NewHistory(max, now)
	case reducer.MonotonicProgress:
		return reducer.NewProgress()
	case reducer.PermissionMerge:
		return reducer.NewPermissions(d.Conflict)
	case reducer.AppendBounded:
		return reducer.NewBoundedAppend(max)
	case reducer.Chronological:
		return reducer.NewChronological(max, now)
	case reducer.DedupAppend:
		return reducer.NewDedupAppend(max, now)
	case reducer.KeyedDedup:
		return reducer.NewKeyedDedup(max, now, d.DedupKeys...)
	case reducer.DeepMerge:
		return reducer.NewDeepMerge()
	default:
		return reducer.Replace()
	}
}

// ArchiveCutoff returns the time before which entries fall under the field's
// archival policy, or the zero time when archival is disabled.
func (p *RetentionPolicy) ArchiveCutoff(now time.Time) time.Time {
	if p == nil || p.ArchiveAfterHours <= 0 {
		return time.Time{}
	}
	return now.Add(-time.Duration(p.ArchiveAfterHours) * time.Hour)
}

func (r *Registry) flagEnabledLocked(flag string) bool {
	enabled, present := r.flags[flag]
	return !present || enabled
}

func groupFlag(g Group) string {
	return "enable_" + string(g)
}
