package migrate

import (
	"time"

	"github.com/aretw0/swarmstate/pkg/state"
)

// Backup is a point-in-time copy of a state taken before migration. Restoring
// it returns the state exactly as it was, original schema version included.
type Backup struct {
	State           state.State `json:"state"`
	Timestamp       time.Time   `json:"timestamp"`
	OriginalVersion string      `json:"original_version"`
}

// CreateBackup snapshots st. The snapshot is a deep copy, so later merges or
// migrations on st cannot leak into it.
func (m *Migrator) CreateBackup(st state.State) Backup {
	return Backup{
		State:           st.Clone(),
		Timestamp:       m.now().UTC(),
		OriginalVersion: st.Version(),
	}
}

// Restore returns a deep copy of the backed-up state.
func (b Backup) Restore() state.State {
	return b.State.Clone()
}
