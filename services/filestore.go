package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/natefinch/atomic"

	"fastboard/model"
)

// FileStore persists the envelope as pretty-printed JSON in a single file,
// replaced atomically on each save.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore opens the store at path, creating the file with an empty
// envelope if it does not exist yet.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.write(emptyEnvelope()); err != nil {
			return nil, fmt.Errorf("initialize %s: %w", path, err)
		}
	} else if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) Load(ctx context.Context) (*model.SyncData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var data model.SyncData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (s *FileStore) Save(ctx context.Context, projects []model.Project, tasks []model.Task) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := &model.SyncData{
		Projects: projects,
		Tasks:    tasks,
		LastSync: time.Now().UTC(),
	}
	if err := s.write(data); err != nil {
		return time.Time{}, err
	}
	return data.LastSync, nil
}

func (s *FileStore) write(data *model.SyncData) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return atomic.WriteFile(s.path, bytes.NewReader(raw))
}

func (s *FileStore) Name() string { return "file" }
