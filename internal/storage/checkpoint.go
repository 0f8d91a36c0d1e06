package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"pairScope/internal/pairlist"
)

// Checkpoint is the last published pair list.
type Checkpoint struct {
	RunID     string   `json:"run_id"`
	Pairs     []string `json:"pairs"`
	UpdatedAt string   `json:"updated_at"`
}

// CheckpointStore keeps the last published list on disk so a restart can
// serve it before the first refresh completes.
type CheckpointStore struct {
	path    string
	enabled bool
	now     func() time.Time
}

func NewCheckpointStore(path string, enabled bool) *CheckpointStore {
	return &CheckpointStore{path: path, enabled: enabled, now: time.Now}
}

func (c *CheckpointStore) Load() (Checkpoint, bool, error) {
	if !c.enabled {
		return Checkpoint{}, false, nil
	}

	stat, err := os.Stat(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Checkpoint{}, false, nil
		}
		return Checkpoint{}, false, fmt.Errorf("stat checkpoint: %w", err)
	}
	if stat.IsDir() {
		return Checkpoint{}, false, fmt.Errorf("checkpoint path is a directory")
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return Checkpoint{}, false, fmt.Errorf("read checkpoint: %w", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return Checkpoint{}, false, fmt.Errorf("parse checkpoint: %w", err)
	}
	return cp, true, nil
}

func (c *CheckpointStore) Save(runID string, pairs []string) error {
	if !c.enabled {
		return nil
	}
	if err := ensureDir(c.path); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}

	if pairs == nil {
		pairs = []string{}
	}
	data, err := json.Marshal(Checkpoint{
		RunID:     runID,
		Pairs:     pairs,
		UpdatedAt: c.now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint tmp: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		return fmt.Errorf("rename checkpoint: %w", err)
	}
	return nil
}

// PutReport saves the report's pairs as the new checkpoint.
func (c *CheckpointStore) PutReport(_ context.Context, report pairlist.RefreshReport) error {
	return c.Save(report.RunID, report.Pairs)
}
