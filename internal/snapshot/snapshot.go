// Package snapshot persists the prior run's event state. The snapshot
// is read once at run start, compared against the freshly built event
// set, and replaced wholesale at run end (skipped in dry-run mode).
package snapshot

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Entry is the small serializable projection of an event tracked for
// change detection. Score and other metadata are deliberately absent;
// only schedule-affecting fields are compared.
type Entry struct {
	When     time.Time `json:"when"`
	Opponent string    `json:"opponent,omitempty"`
	Location string    `json:"location,omitempty"`
	Team     string    `json:"team"`
	Kind     string    `json:"kind"`
}

// Snapshot maps the stable event key to its projection.
type Snapshot map[string]Entry

// Load reads a snapshot from path. A missing file is a first run and
// yields an empty snapshot with no error.
func Load(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Snapshot{}, nil
		}
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	if snap == nil {
		snap = Snapshot{}
	}
	return snap, nil
}

// Save writes the snapshot atomically (temp file + rename), replacing
// any previous state.
func Save(path string, snap Snapshot) error {
	if path == "" {
		return errors.New("snapshot path is empty")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".ssbball-snapshot-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
