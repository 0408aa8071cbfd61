// Package file provides a filesystem-backed checkpoint store. Checkpoints
// are JSON files in a configured directory.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/swarmstate/pkg/ports"
	"github.com/aretw0/swarmstate/pkg/state"
)

// Store implements ports.CheckpointStore on the local filesystem.
type Store struct {
	BasePath string
}

// New creates a Store rooted at basePath. If basePath is empty, it defaults
// to ".swarmstate/checkpoints".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".swarmstate", "checkpoints")
	}
	return &Store{BasePath: basePath}
}

// Save persists the state to a JSON file atomically: write to a temp file in
// the same directory, fsync, then rename over the destination.
func (s *Store) Save(ctx context.Context, id string, st state.State) error {
	if id == "" {
		return fmt.Errorf("checkpoint id cannot be empty")
	}

	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure checkpoint directory: %w", err)
	}

	data, err := state.Serialize(st)
	if err != nil {
		return fmt.Errorf("failed to serialize state: %w", err)
	}

	destPath := s.path(id)

	// Same directory as the destination so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+id+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows os.Rename fails if the destination exists; remove it first.
	// The delete+rename window is acceptable compared to a partial write.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to replace existing checkpoint: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file into place: %w", err)
	}
	return nil
}

// Load retrieves the state from its JSON file.
func (s *Store) Load(ctx context.Context, id string) (state.State, error) {
	if id == "" {
		return nil, fmt.Errorf("checkpoint id cannot be empty")
	}

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ports.ErrCheckpointNotFound
		}
		return nil, fmt.Errorf("failed to read checkpoint file: %w", err)
	}

	st, err := state.Deserialize(data)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize checkpoint: %w", err)
	}
	return st, nil
}

// Delete removes the checkpoint file. Deleting a missing checkpoint is not
// an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("checkpoint id cannot be empty")
	}

	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checkpoint file: %w", err)
	}
	return nil
}

// List returns all stored checkpoint IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			name := entry.Name()
			ids = append(ids, name[:len(name)-len(".json")])
		}
	}
	return ids, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.BasePath, id+".json")
}
