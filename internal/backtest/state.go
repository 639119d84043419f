package backtest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/propcast/internal/models"
)

// Cursor is the position of a run: the stat type being replayed and the last
// case consumed within it. The zero cursor starts from the beginning.
type Cursor struct {
	StatType models.StatType   `json:"stat_type"`
	After    models.CaseCursor `json:"after"`
}

// IsZero reports whether the cursor is at the start of a run
func (c Cursor) IsZero() bool {
	return c.StatType == "" && c.After.IsZero()
}

// Checkpoint is the resumable state of an interrupted run
type Checkpoint struct {
	RunID      uuid.UUID   `json:"run_id"`
	Range      Range       `json:"range"`
	ConfigHash string      `json:"config_hash"`
	Cursor     Cursor      `json:"cursor"`
	State      *Aggregator `json:"state"`
	StartedAt  time.Time   `json:"started_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// CheckpointStore persists checkpoints between process runs
type CheckpointStore interface {
	// Load returns nil when no checkpoint exists
	Load() (*Checkpoint, error)
	Save(cp *Checkpoint) error
	Clear() error
}

// FileCheckpointStore keeps a single checkpoint as a JSON file
type FileCheckpointStore struct {
	path string
}

// NewFileCheckpointStore creates a store writing to path
func NewFileCheckpointStore(path string) *FileCheckpointStore {
	return &FileCheckpointStore{path: path}
}

// Path returns the checkpoint file location
func (s *FileCheckpointStore) Path() string {
	return s.path
}

// Load reads the checkpoint file
func (s *FileCheckpointStore) Load() (*Checkpoint, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint %s: %w", s.path, err)
	}
	if cp.State == nil {
		cp.State = NewAggregator()
	}
	cp.State.init()
	return &cp, nil
}

// Save writes the checkpoint through a temporary file so a crash never leaves
// a truncated checkpoint behind
func (s *FileCheckpointStore) Save(cp *Checkpoint) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// Clear removes the checkpoint after a completed run
func (s *FileCheckpointStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove checkpoint: %w", err)
	}
	return nil
}
