// Package appstate is the single source of truth for the in-memory
// projects tree. Every mutation goes through the Manager, which persists
// locally first, then updates memory, then pushes to the sync server.
package appstate

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"fastboard/localdb"
	"fastboard/model"
	"fastboard/syncer"
)

// Manager mediates all reads and writes of the projects tree. The view
// layer only calls mutators and reads snapshots; it never mutates state
// directly.
type Manager struct {
	mu    sync.Mutex
	store localdb.Store
	sync  *syncer.Manager

	projects []model.Project
	theme    string

	// SeedFile, when set and readable, overrides the built-in seed
	// dataset on first run.
	SeedFile string
}

func New(store localdb.Store, sync *syncer.Manager) *Manager {
	return &Manager{store: store, sync: sync, theme: "light"}
}

// Load reads the persisted dataset, seeding the store on first run.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	theme, err := m.store.GetSetting("theme")
	if err != nil {
		return err
	}
	if theme == "" {
		theme = "light"
		if err := m.store.SaveSetting("theme", theme); err != nil {
			return err
		}
	}
	m.theme = theme

	tasks, err := m.store.Tasks()
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		if err := m.seedLocked(); err != nil {
			return err
		}
	}
	return m.reloadLocked()
}

func (m *Manager) seedLocked() error {
	log.Println("Loading initial data...")
	if err := m.store.ClearAll(); err != nil {
		return err
	}
	if err := m.store.SaveSetting("theme", m.theme); err != nil {
		return err
	}

	seed := initialProjects()
	if m.SeedFile != "" {
		if snap, err := localdb.ReadSnapshotFile(m.SeedFile); err == nil && len(snap.Data.Tasks) > 0 {
			log.Printf("Found seed file with %d tasks", len(snap.Data.Tasks))
			return m.store.ImportData(snap)
		}
	}

	for _, p := range seed {
		if err := m.store.SaveProject(p.WithoutTasks()); err != nil {
			return err
		}
		for _, t := range p.Tasks {
			if err := m.store.SaveTask(t); err != nil {
				return err
			}
		}
	}
	return nil
}

// reloadLocked rebuilds the in-memory tree from the store.
func (m *Manager) reloadLocked() error {
	projects, err := m.store.Projects()
	if err != nil {
		return err
	}
	tasks, err := m.store.Tasks()
	if err != nil {
		return err
	}

	for i := range projects {
		projects[i].Tasks = []model.Task{}
		for _, t := range tasks {
			if t.ProjectID == projects[i].ID {
				projects[i].Tasks = append(projects[i].Tasks, t)
			}
		}
	}
	m.projects = projects
	return nil
}

// Projects returns the current tree. Callers treat it as read-only.
func (m *Manager) Projects() []model.Project {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Project, len(m.projects))
	copy(out, m.projects)
	return out
}

// localData flattens the tree into the envelope shape: projects without
// embedded tasks, tasks in one list.
func (m *Manager) localData() ([]model.Project, []model.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.localDataLocked()
}

func (m *Manager) localDataLocked() ([]model.Project, []model.Task) {
	projects := make([]model.Project, 0, len(m.projects))
	tasks := make([]model.Task, 0)
	for _, p := range m.projects {
		tasks = append(tasks, p.Tasks...)
		projects = append(projects, p.WithoutTasks())
	}
	return projects, tasks
}

// syncNow pushes the current dataset. Called after every mutation; a push
// already in flight drops this one.
func (m *Manager) syncNow() {
	if m.sync == nil {
		return
	}
	projects, tasks := m.localData()
	m.sync.Push(context.Background(), projects, tasks)
}

// SyncStatus reports the sync engine's tri-state availability.
func (m *Manager) SyncStatus() syncer.Status {
	if m.sync == nil {
		return syncer.StatusOffline
	}
	return m.sync.Status()
}

// StartSync begins pushing and polling against the sync server.
func (m *Manager) StartSync() {
	if m.sync == nil {
		return
	}
	m.sync.StartPolling(m.localData, m.applyRemote)
}

// StopSync stops the poll timer.
func (m *Manager) StopSync() {
	if m.sync != nil {
		m.sync.StopPolling()
	}
}

// applyRemote overwrites local state with a newer server envelope.
func (m *Manager) applyRemote(data *model.SyncData) {
	m.mu.Lock()
	defer m.mu.Unlock()

	log.Printf("Receiving data from server: %d tasks", len(data.Tasks))
	if err := m.store.ClearAll(); err != nil {
		log.Printf("Error applying server data: %v", err)
		return
	}
	if err := m.store.SaveSetting("theme", m.theme); err != nil {
		log.Printf("Error applying server data: %v", err)
		return
	}
	if err := m.store.SaveProjects(data.Projects); err != nil {
		log.Printf("Error applying server data: %v", err)
		return
	}
	for _, t := range data.Tasks {
		if err := m.store.SaveTask(t); err != nil {
			log.Printf("Error applying server data: %v", err)
			return
		}
	}
	if err := m.reloadLocked(); err != nil {
		log.Printf("Error applying server data: %v", err)
	}
}

// AddProject creates a project with a fresh id and no tasks.
func (m *Manager) AddProject(p model.Project) (model.Project, error) {
	m.mu.Lock()
	p.ID = uuid.New().String()
	p.Tasks = []model.Task{}
	p.Progress = 0

	if err := m.store.SaveProject(p.WithoutTasks()); err != nil {
		m.mu.Unlock()
		return model.Project{}, err
	}
	m.projects = append(m.projects, p)
	m.mu.Unlock()

	m.syncNow()
	return p, nil
}

// ProjectPatch carries the fields UpdateProject may change; nil fields are
// left alone.
type ProjectPatch struct {
	Name     *string
	Logo     *string
	Color    *string
	DueDate  *time.Time
	Progress *int
}

// UpdateProject merges the patch into the project. Unknown ids are a
// silent no-op.
func (m *Manager) UpdateProject(id string, patch ProjectPatch) error {
	m.mu.Lock()
	idx := -1
	for i := range m.projects {
		if m.projects[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.mu.Unlock()
		return nil
	}

	p := m.projects[idx]
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Logo != nil {
		p.Logo = *patch.Logo
	}
	if patch.Color != nil {
		p.Color = *patch.Color
	}
	if patch.DueDate != nil {
		p.DueDate = patch.DueDate
	}
	if patch.Progress != nil {
		p.Progress = *patch.Progress
	}

	if err := m.store.SaveProject(p.WithoutTasks()); err != nil {
		m.mu.Unlock()
		return err
	}
	m.projects[idx] = p
	m.mu.Unlock()

	m.syncNow()
	return nil
}

// DeleteProject removes the project and all its tasks.
func (m *Manager) DeleteProject(id string) error {
	m.mu.Lock()
	if err := m.store.DeleteProjectCascade(id); err != nil {
		m.mu.Unlock()
		return err
	}
	for i := range m.projects {
		if m.projects[i].ID == id {
			m.projects = append(m.projects[:i], m.projects[i+1:]...)
			break
		}
	}
	m.mu.Unlock()

	m.syncNow()
	return nil
}

// ReorderProjects replaces the project ordering wholesale.
func (m *Manager) ReorderProjects(projects []model.Project) error {
	m.mu.Lock()
	stored := make([]model.Project, len(projects))
	for i, p := range projects {
		stored[i] = p.WithoutTasks()
	}
	if err := m.store.SaveProjects(stored); err != nil {
		m.mu.Unlock()
		return err
	}
	m.projects = projects
	m.mu.Unlock()

	m.syncNow()
	return nil
}

// AddTask creates a task under its project. The creation-time label seeds
// status and priority and is not stored on the task itself. A task for an
// unknown project is a no-op (zero Task returned).
func (m *Manager) AddTask(t model.Task) (model.Task, error) {
	m.mu.Lock()
	idx := -1
	for i := range m.projects {
		if m.projects[i].ID == t.ProjectID {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.mu.Unlock()
		return model.Task{}, nil
	}

	t.ID = uuid.New().String()
	t.Completed = t.Completed || t.Label == model.LabelCompleted
	status, priority := model.LabelDefaults(t.Label)
	if t.Status == "" {
		t.Status = status
	}
	if t.Priority == "" {
		t.Priority = priority
	}
	t.Label = ""

	if err := m.store.SaveTask(t); err != nil {
		m.mu.Unlock()
		return model.Task{}, err
	}
	m.projects[idx].Tasks = append(m.projects[idx].Tasks, t)
	m.mu.Unlock()

	log.Printf("Task created: %s", t.Title)
	m.syncNow()
	return t, nil
}

// TaskPatch carries the fields UpdateTask may change; nil fields are left
// alone.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	Label       *string
	Date        *time.Time
	AssignedTo  *string
	Owner       *string
	Completed   *bool
}

func applyTaskPatch(t model.Task, patch TaskPatch) model.Task {
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.Label != nil {
		t.Label = *patch.Label
	}
	if patch.Date != nil {
		t.Date = patch.Date
	}
	if patch.AssignedTo != nil {
		t.AssignedTo = *patch.AssignedTo
	}
	if patch.Owner != nil {
		t.Owner = *patch.Owner
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
	return t
}

// UpdateTask merges the patch into the task, wherever it lives. Unknown
// ids are a silent no-op.
func (m *Manager) UpdateTask(id string, patch TaskPatch) error {
	m.mu.Lock()
	pi, ti := m.findTaskLocked(id)
	if pi < 0 {
		m.mu.Unlock()
		return nil
	}

	updated := applyTaskPatch(m.projects[pi].Tasks[ti], patch)
	if err := m.store.SaveTask(updated); err != nil {
		m.mu.Unlock()
		return err
	}
	m.projects[pi].Tasks[ti] = updated
	m.mu.Unlock()

	m.syncNow()
	return nil
}

// DeleteTask removes the task from whichever project contains it.
func (m *Manager) DeleteTask(id string) error {
	m.mu.Lock()
	pi, ti := m.findTaskLocked(id)
	if pi < 0 {
		m.mu.Unlock()
		return nil
	}

	if err := m.store.DeleteTask(id); err != nil {
		m.mu.Unlock()
		return err
	}
	tasks := m.projects[pi].Tasks
	m.projects[pi].Tasks = append(tasks[:ti], tasks[ti+1:]...)
	m.mu.Unlock()

	m.syncNow()
	return nil
}

// MoveTaskToDate schedules the task on a date. The label becomes
// "scheduled" unless it is already in-progress or high-priority, which
// stick.
func (m *Manager) MoveTaskToDate(id string, date time.Time) error {
	m.mu.Lock()
	pi, ti := m.findTaskLocked(id)
	if pi < 0 {
		m.mu.Unlock()
		return nil
	}
	t := m.projects[pi].Tasks[ti]
	m.mu.Unlock()

	patch := TaskPatch{Date: &date}
	if t.Label != model.LabelInProgress && t.Label != model.LabelHighPriority {
		scheduled := model.LabelScheduled
		patch.Label = &scheduled
	}
	return m.UpdateTask(id, patch)
}

// ToggleTaskComplete flips the task's completed flag.
func (m *Manager) ToggleTaskComplete(id string) error {
	m.mu.Lock()
	pi, ti := m.findTaskLocked(id)
	if pi < 0 {
		m.mu.Unlock()
		return nil
	}
	completed := !m.projects[pi].Tasks[ti].Completed
	m.mu.Unlock()

	return m.UpdateTask(id, TaskPatch{Completed: &completed})
}

func (m *Manager) findTaskLocked(id string) (projectIdx, taskIdx int) {
	for pi := range m.projects {
		for ti := range m.projects[pi].Tasks {
			if m.projects[pi].Tasks[ti].ID == id {
				return pi, ti
			}
		}
	}
	return -1, -1
}

// Theme returns the current theme setting.
func (m *Manager) Theme() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.theme
}

// SetTheme persists the theme setting.
func (m *Manager) SetTheme(theme string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.SaveSetting("theme", theme); err != nil {
		return err
	}
	m.theme = theme
	return nil
}

// ToggleTheme switches between light and dark.
func (m *Manager) ToggleTheme() error {
	next := "dark"
	if m.Theme() == "dark" {
		next = "light"
	}
	return m.SetTheme(next)
}

// ExportData writes a backup file of the full dataset.
func (m *Manager) ExportData(path string) error {
	m.mu.Lock()
	snap, err := m.store.ExportData()
	m.mu.Unlock()
	if err != nil {
		return err
	}
	return localdb.WriteSnapshotFile(path, snap)
}

// ImportData replaces all state with the backup file's contents and pushes
// the result. A file that fails to parse leaves everything untouched.
func (m *Manager) ImportData(path string) error {
	snap, err := localdb.ReadSnapshotFile(path)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if err := m.store.ImportData(snap); err != nil {
		m.mu.Unlock()
		return err
	}
	if snap.Data.Theme != "" {
		m.theme = snap.Data.Theme
	}
	if err := m.reloadLocked(); err != nil {
		m.mu.Unlock()
		return err
	}
	m.mu.Unlock()

	m.syncNow()
	return nil
}

// ResetToInitialData clears everything and reloads the seed dataset.
func (m *Manager) ResetToInitialData() error {
	m.mu.Lock()
	log.Println("Resetting to initial data...")
	if err := m.seedLocked(); err != nil {
		m.mu.Unlock()
		return err
	}
	if err := m.reloadLocked(); err != nil {
		m.mu.Unlock()
		return err
	}
	m.mu.Unlock()

	m.syncNow()
	return nil
}
