// Package localdb is the device-side durable store: projects, tasks and
// settings in a single SQLite database that survives restarts.
package localdb

import (
	"errors"

	"fastboard/model"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("not found")

// Store is the persistence contract the state manager writes through.
// A SQLite implementation is the normal case; MemStore is the session
// fallback when the database cannot be opened.
type Store interface {
	Projects() ([]model.Project, error)
	GetProject(id string) (model.Project, error)
	SaveProject(p model.Project) error
	// SaveProjects replaces the stored project ordering wholesale.
	SaveProjects(ps []model.Project) error
	// DeleteProjectCascade removes a project and every task referencing
	// it in one atomic unit.
	DeleteProjectCascade(projectID string) error

	Tasks() ([]model.Task, error)
	TasksByProject(projectID string) ([]model.Task, error)
	GetTask(id string) (model.Task, error)
	SaveTask(t model.Task) error
	DeleteTask(id string) error

	GetSetting(key string) (string, error)
	SaveSetting(key, value string) error

	ClearAll() error
	ExportData() (*Snapshot, error)
	ImportData(snap *Snapshot) error

	Close() error
}
