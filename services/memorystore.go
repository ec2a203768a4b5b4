package services

import (
	"context"
	"sync"
	"time"

	"fastboard/model"
)

// MemoryStore keeps the envelope in process memory. Data is lost on every
// cold start; it exists as the fallback when no durable backend is
// configured.
type MemoryStore struct {
	mu   sync.Mutex
	data model.SyncData
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: *emptyEnvelope()}
}

func (s *MemoryStore) Load(ctx context.Context) (*model.SyncData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.data
	return &out, nil
}

func (s *MemoryStore) Save(ctx context.Context, projects []model.Project, tasks []model.Task) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = model.SyncData{
		Projects: projects,
		Tasks:    tasks,
		LastSync: time.Now().UTC(),
	}
	return s.data.LastSync, nil
}

func (s *MemoryStore) Name() string { return "memory" }
