package localdb

import (
	"sync"
	"time"

	"fastboard/model"
)

// MemStore is the transient fallback used when the SQLite database cannot
// be opened: same contract, nothing survives the process.
type MemStore struct {
	mu       sync.Mutex
	order    []string // project ids in display order
	projects map[string]model.Project
	tasks    map[string]model.Task
	settings map[string]string
}

func NewMemStore() *MemStore {
	return &MemStore{
		projects: make(map[string]model.Project),
		tasks:    make(map[string]model.Task),
		settings: make(map[string]string),
	}
}

func (m *MemStore) Projects() ([]model.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Project
	for _, id := range m.order {
		out = append(out, m.projects[id])
	}
	return out, nil
}

func (m *MemStore) GetProject(id string) (model.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return model.Project{}, ErrNotFound
	}
	return p, nil
}

func (m *MemStore) SaveProject(p model.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveProjectLocked(p)
	return nil
}

func (m *MemStore) saveProjectLocked(p model.Project) {
	p.Tasks = nil
	if _, ok := m.projects[p.ID]; !ok {
		m.order = append(m.order, p.ID)
	}
	m.projects[p.ID] = p
}

func (m *MemStore) SaveProjects(ps []model.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order = m.order[:0]
	for _, p := range ps {
		p.Tasks = nil
		m.order = append(m.order, p.ID)
		m.projects[p.ID] = p
	}
	return nil
}

func (m *MemStore) DeleteProjectCascade(projectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.projects, projectID)
	for i, id := range m.order {
		if id == projectID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	for id, t := range m.tasks {
		if t.ProjectID == projectID {
			delete(m.tasks, id)
		}
	}
	return nil
}

func (m *MemStore) Tasks() ([]model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Task
	for _, t := range m.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (m *MemStore) TasksByProject(projectID string) ([]model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Task
	for _, t := range m.tasks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *MemStore) GetTask(id string) (model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}
	return t, nil
}

func (m *MemStore) SaveTask(t model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[t.ID] = t
	return nil
}

func (m *MemStore) DeleteTask(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, id)
	return nil
}

func (m *MemStore) GetSetting(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings[key], nil
}

func (m *MemStore) SaveSetting(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = value
	return nil
}

func (m *MemStore) ClearAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order = nil
	m.projects = make(map[string]model.Project)
	m.tasks = make(map[string]model.Task)
	m.settings = make(map[string]string)
	return nil
}

func (m *MemStore) ExportData() (*Snapshot, error) {
	projects, _ := m.Projects()
	tasks, _ := m.Tasks()
	theme, _ := m.GetSetting("theme")
	if projects == nil {
		projects = []model.Project{}
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return &Snapshot{
		Version:    SnapshotVersion,
		ExportDate: time.Now().UTC(),
		Data:       SnapshotData{Projects: projects, Tasks: tasks, Theme: theme},
	}, nil
}

func (m *MemStore) ImportData(snap *Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order = nil
	m.projects = make(map[string]model.Project)
	m.tasks = make(map[string]model.Task)
	for _, p := range snap.Data.Projects {
		m.saveProjectLocked(p)
	}
	for _, t := range snap.Data.Tasks {
		m.tasks[t.ID] = t
	}
	if snap.Data.Theme != "" {
		m.settings["theme"] = snap.Data.Theme
	}
	return nil
}

func (m *MemStore) Close() error { return nil }
