package localdb

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/natefinch/atomic"

	"fastboard/model"
)

// SnapshotVersion is the current backup file format version.
const SnapshotVersion = 1

// ErrInvalidSnapshot is returned when a backup file does not carry the
// expected shape.
var ErrInvalidSnapshot = errors.New("invalid snapshot format")

// Snapshot is the full-dataset backup document, the unit of export/import.
type Snapshot struct {
	Version    int          `json:"version"`
	ExportDate time.Time    `json:"exportDate"`
	Data       SnapshotData `json:"data"`
}

type SnapshotData struct {
	Projects []model.Project `json:"projects"`
	Tasks    []model.Task    `json:"tasks"`
	Theme    string          `json:"theme,omitempty"`
}

// Validate checks the shape an import requires: projects and tasks must
// both be present arrays.
func (s *Snapshot) Validate() error {
	if s.Data.Projects == nil || s.Data.Tasks == nil {
		return ErrInvalidSnapshot
	}
	return nil
}

// ReadSnapshotFile parses a backup file. Unknown shapes are a hard failure.
func ReadSnapshotFile(path string) (*Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, ErrInvalidSnapshot
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// WriteSnapshotFile writes a backup file atomically.
func WriteSnapshotFile(path string, snap *Snapshot) error {
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return atomic.WriteFile(path, bytes.NewReader(raw))
}

// ExportData assembles the current dataset, including the theme setting.
func (d *DB) ExportData() (*Snapshot, error) {
	projects, err := d.Projects()
	if err != nil {
		return nil, err
	}
	tasks, err := d.Tasks()
	if err != nil {
		return nil, err
	}
	theme, err := d.GetSetting("theme")
	if err != nil {
		return nil, err
	}

	if projects == nil {
		projects = []model.Project{}
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return &Snapshot{
		Version:    SnapshotVersion,
		ExportDate: time.Now().UTC(),
		Data: SnapshotData{
			Projects: projects,
			Tasks:    tasks,
			Theme:    theme,
		},
	}, nil
}

// ImportData replaces projects and tasks wholesale with the snapshot's
// contents. Clear and write happen in one transaction, so a failed import
// leaves the previous data intact.
func (d *DB) ImportData(snap *Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}

	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM tasks"); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM projects"); err != nil {
		return err
	}

	for i, p := range snap.Data.Projects {
		_, err := tx.Exec(`
			INSERT INTO projects (id, name, logo, color, due_date, progress, position)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, p.ID, p.Name, p.Logo, p.Color, timeText(p.DueDate), p.Progress, i)
		if err != nil {
			return err
		}
	}
	for _, t := range snap.Data.Tasks {
		_, err := tx.Exec(`
			INSERT INTO tasks (id, project_id, title, description, status, priority,
				label, date, assigned_to, owner, completed)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, t.ID, t.ProjectID, t.Title, t.Description, t.Status, t.Priority,
			t.Label, timeText(t.Date), t.AssignedTo, t.Owner, t.Completed)
		if err != nil {
			return err
		}
	}
	if snap.Data.Theme != "" {
		_, err := tx.Exec(`
			INSERT INTO settings (key, value) VALUES ('theme', ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, snap.Data.Theme)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}
