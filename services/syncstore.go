package services

import (
	"context"
	"time"

	"fastboard/model"
)

// SyncStore persists the single sync envelope behind the HTTP endpoint.
// Every save replaces the whole document; there is no per-record merging.
type SyncStore interface {
	// Load returns the current envelope. A store with no data yet returns
	// an empty envelope, not an error.
	Load(ctx context.Context) (*model.SyncData, error)

	// Save replaces the envelope wholesale and returns the new lastSync
	// timestamp.
	Save(ctx context.Context, projects []model.Project, tasks []model.Task) (time.Time, error)

	// Name identifies the backend in the GET response.
	Name() string
}

func emptyEnvelope() *model.SyncData {
	return &model.SyncData{
		Projects: []model.Project{},
		Tasks:    []model.Task{},
		LastSync: time.Now().UTC(),
	}
}
