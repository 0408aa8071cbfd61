package ports

import (
	"context"
	"errors"

	"github.com/aretw0/swarmstate/pkg/state"
)

// ErrCheckpointNotFound is returned by Load when no checkpoint exists for
// the given ID.
var ErrCheckpointNotFound = errors.New("checkpoint not found")

// CheckpointStore defines the interface for persisting state checkpoints.
// This enables "stop and resume" workflows: a swarm can checkpoint its shared
// state mid-run and pick it up later, possibly on another host.
type CheckpointStore interface {
	// Save persists the state under the given checkpoint ID.
	Save(ctx context.Context, id string, st state.State) error

	// Load retrieves the state for a checkpoint ID.
	// Returns ErrCheckpointNotFound if the checkpoint does not exist.
	Load(ctx context.Context, id string) (state.State, error)

	// Delete removes the checkpoint.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of stored checkpoints.
	List(ctx context.Context) ([]string, error)
}
