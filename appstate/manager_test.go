package appstate

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fastboard/dto"
	"fastboard/localdb"
	"fastboard/model"
	"fastboard/syncer"
)

func newTestManager(t *testing.T) (*Manager, localdb.Store) {
	t.Helper()
	store := localdb.NewMemStore()
	return New(store, nil), store
}

// seedOne populates the store with one project and one task so Load does
// not fall back to the built-in seed dataset.
func seedOne(t *testing.T, store localdb.Store) {
	t.Helper()
	require.NoError(t, store.SaveProject(model.Project{ID: "p1", Name: "Existing"}))
	require.NoError(t, store.SaveTask(model.Task{
		ID: "t1", ProjectID: "p1", Title: "First", Status: "todo", Priority: "medium",
	}))
}

func TestLoadSeedsEmptyStore(t *testing.T) {
	mgr, store := newTestManager(t)
	require.NoError(t, mgr.Load())

	projects := mgr.Projects()
	require.NotEmpty(t, projects)
	total := 0
	for _, p := range projects {
		total += len(p.Tasks)
	}
	require.Greater(t, total, 0)

	theme, err := store.GetSetting("theme")
	require.NoError(t, err)
	require.Equal(t, "light", theme)
}

func TestLoadKeepsExistingData(t *testing.T) {
	mgr, store := newTestManager(t)
	seedOne(t, store)
	require.NoError(t, mgr.Load())

	projects := mgr.Projects()
	require.Len(t, projects, 1)
	require.Equal(t, "Existing", projects[0].Name)
	require.Len(t, projects[0].Tasks, 1)
}

func TestLoadUsesSeedFile(t *testing.T) {
	mgr, _ := newTestManager(t)

	snap := &localdb.Snapshot{
		Version:    localdb.SnapshotVersion,
		ExportDate: time.Now().UTC(),
		Data: localdb.SnapshotData{
			Projects: []model.Project{{ID: "sp", Name: "From Seed File"}},
			Tasks: []model.Task{
				{ID: "st", ProjectID: "sp", Title: "Seeded", Status: "todo", Priority: "medium"},
			},
		},
	}
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, localdb.WriteSnapshotFile(path, snap))

	mgr.SeedFile = path
	require.NoError(t, mgr.Load())

	projects := mgr.Projects()
	require.Len(t, projects, 1)
	require.Equal(t, "From Seed File", projects[0].Name)
}

func TestAddProjectAndTaskDefaults(t *testing.T) {
	mgr, _ := newTestManager(t)

	p, err := mgr.AddProject(model.Project{Name: "Acme"})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	require.Empty(t, p.Tasks)
	require.Zero(t, p.Progress)

	task, err := mgr.AddTask(model.Task{Title: "Draft", ProjectID: p.ID})
	require.NoError(t, err)
	require.NotEmpty(t, task.ID)
	require.Equal(t, "todo", task.Status)
	require.Equal(t, "medium", task.Priority)
	require.False(t, task.Completed)
	require.Empty(t, task.Label)
}

func TestAddTaskLabelSeedsStatusAndPriority(t *testing.T) {
	mgr, store := newTestManager(t)
	p, err := mgr.AddProject(model.Project{Name: "Acme"})
	require.NoError(t, err)

	task, err := mgr.AddTask(model.Task{Title: "Urgent", ProjectID: p.ID, Label: model.LabelHighPriority})
	require.NoError(t, err)
	require.Equal(t, "todo", task.Status)
	require.Equal(t, "high", task.Priority)
	// The creation-time label is not persisted on the task.
	require.Empty(t, task.Label)
	stored, err := store.GetTask(task.ID)
	require.NoError(t, err)
	require.Empty(t, stored.Label)

	done, err := mgr.AddTask(model.Task{Title: "Done", ProjectID: p.ID, Label: model.LabelCompleted})
	require.NoError(t, err)
	require.Equal(t, "completed", done.Status)
	require.Equal(t, "low", done.Priority)
	require.True(t, done.Completed)
}

func TestAddTaskUnknownProjectIsNoop(t *testing.T) {
	mgr, store := newTestManager(t)

	task, err := mgr.AddTask(model.Task{Title: "Orphan", ProjectID: "missing"})
	require.NoError(t, err)
	require.Empty(t, task.ID)

	tasks, err := store.Tasks()
	require.NoError(t, err)
	require.Empty(t, tasks)
}

func TestUpdateUnknownIDsAreNoops(t *testing.T) {
	mgr, store := newTestManager(t)
	seedOne(t, store)
	require.NoError(t, mgr.Load())

	name := "Renamed"
	require.NoError(t, mgr.UpdateProject("missing", ProjectPatch{Name: &name}))
	require.NoError(t, mgr.UpdateTask("missing", TaskPatch{Title: &name}))
	require.NoError(t, mgr.DeleteTask("missing"))

	projects := mgr.Projects()
	require.Equal(t, "Existing", projects[0].Name)
	require.Equal(t, "First", projects[0].Tasks[0].Title)
}

func TestUpdateProjectMergesPatch(t *testing.T) {
	mgr, store := newTestManager(t)
	seedOne(t, store)
	require.NoError(t, mgr.Load())

	name := "Renamed"
	progress := 60
	require.NoError(t, mgr.UpdateProject("p1", ProjectPatch{Name: &name, Progress: &progress}))

	p := mgr.Projects()[0]
	require.Equal(t, "Renamed", p.Name)
	require.Equal(t, 60, p.Progress)
	// Untouched fields survive.
	require.Len(t, p.Tasks, 1)

	stored, err := store.GetProject("p1")
	require.NoError(t, err)
	require.Equal(t, "Renamed", stored.Name)
}

func TestMoveTaskToDate(t *testing.T) {
	date := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		label     string
		wantLabel string
	}{
		{"to-schedule becomes scheduled", model.LabelToSchedule, model.LabelScheduled},
		{"empty label becomes scheduled", "", model.LabelScheduled},
		{"in-progress sticks", model.LabelInProgress, model.LabelInProgress},
		{"high-priority sticks", model.LabelHighPriority, model.LabelHighPriority},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr, store := newTestManager(t)
			require.NoError(t, store.SaveProject(model.Project{ID: "p1", Name: "P"}))
			require.NoError(t, store.SaveTask(model.Task{
				ID: "t1", ProjectID: "p1", Title: "T", Status: "todo", Priority: "medium", Label: tt.label,
			}))
			require.NoError(t, mgr.Load())

			require.NoError(t, mgr.MoveTaskToDate("t1", date))

			got := mgr.Projects()[0].Tasks[0]
			require.NotNil(t, got.Date)
			require.True(t, got.Date.Equal(date))
			require.Equal(t, tt.wantLabel, got.Label)
		})
	}
}

func TestToggleTaskComplete(t *testing.T) {
	mgr, store := newTestManager(t)
	seedOne(t, store)
	require.NoError(t, mgr.Load())

	require.NoError(t, mgr.ToggleTaskComplete("t1"))
	require.True(t, mgr.Projects()[0].Tasks[0].Completed)

	require.NoError(t, mgr.ToggleTaskComplete("t1"))
	require.False(t, mgr.Projects()[0].Tasks[0].Completed)
}

func TestDeleteProjectCascades(t *testing.T) {
	mgr, store := newTestManager(t)
	seedOne(t, store)
	require.NoError(t, store.SaveTask(model.Task{
		ID: "t2", ProjectID: "p1", Title: "Second", Status: "todo", Priority: "medium",
	}))
	require.NoError(t, mgr.Load())

	require.NoError(t, mgr.DeleteProject("p1"))

	require.Empty(t, mgr.Projects())
	tasks, err := store.Tasks()
	require.NoError(t, err)
	require.Empty(t, tasks)
}

func TestReorderProjects(t *testing.T) {
	mgr, store := newTestManager(t)
	require.NoError(t, store.SaveProject(model.Project{ID: "a", Name: "A"}))
	require.NoError(t, store.SaveProject(model.Project{ID: "b", Name: "B"}))
	require.NoError(t, store.SaveTask(model.Task{
		ID: "t1", ProjectID: "a", Title: "T", Status: "todo", Priority: "medium",
	}))
	require.NoError(t, mgr.Load())

	projects := mgr.Projects()
	require.NoError(t, mgr.ReorderProjects([]model.Project{projects[1], projects[0]}))

	require.Equal(t, "b", mgr.Projects()[0].ID)
	stored, err := store.Projects()
	require.NoError(t, err)
	require.Equal(t, "b", stored[0].ID)
}

func TestExportImportRoundTrip(t *testing.T) {
	mgr, store := newTestManager(t)
	seedOne(t, store)
	require.NoError(t, mgr.Load())

	path := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, mgr.ExportData(path))

	// Import into a second manager with different data.
	other, otherStore := newTestManager(t)
	require.NoError(t, otherStore.SaveProject(model.Project{ID: "x", Name: "Other"}))
	require.NoError(t, otherStore.SaveTask(model.Task{
		ID: "xt", ProjectID: "x", Title: "Other task", Status: "todo", Priority: "medium",
	}))
	require.NoError(t, other.Load())

	require.NoError(t, other.ImportData(path))

	projects := other.Projects()
	require.Len(t, projects, 1)
	require.Equal(t, "p1", projects[0].ID)
	require.Len(t, projects[0].Tasks, 1)
}

func TestImportInvalidFileLeavesStateIntact(t *testing.T) {
	mgr, store := newTestManager(t)
	seedOne(t, store)
	require.NoError(t, mgr.Load())

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"nope": true}`), 0o644))

	err := mgr.ImportData(path)
	require.ErrorIs(t, err, localdb.ErrInvalidSnapshot)

	projects := mgr.Projects()
	require.Len(t, projects, 1)
	require.Equal(t, "p1", projects[0].ID)
}

func TestResetToInitialData(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load())

	p, err := mgr.AddProject(model.Project{Name: "Extra"})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)

	require.NoError(t, mgr.ResetToInitialData())

	for _, p := range mgr.Projects() {
		require.NotEqual(t, "Extra", p.Name)
	}
}

func TestThemeToggle(t *testing.T) {
	mgr, store := newTestManager(t)
	require.NoError(t, mgr.Load())
	require.Equal(t, "light", mgr.Theme())

	require.NoError(t, mgr.ToggleTheme())
	require.Equal(t, "dark", mgr.Theme())

	theme, err := store.GetSetting("theme")
	require.NoError(t, err)
	require.Equal(t, "dark", theme)
}

func TestApplyRemoteOverwritesLocal(t *testing.T) {
	mgr, store := newTestManager(t)
	seedOne(t, store)
	require.NoError(t, mgr.Load())

	mgr.applyRemote(&model.SyncData{
		Projects: []model.Project{{ID: "r1", Name: "Remote"}},
		Tasks: []model.Task{
			{ID: "rt1", ProjectID: "r1", Title: "Remote task", Status: "todo", Priority: "medium"},
			{ID: "rt2", ProjectID: "r1", Title: "Another", Status: "todo", Priority: "medium"},
		},
		LastSync: time.Now().UTC(),
	})

	projects := mgr.Projects()
	require.Len(t, projects, 1)
	require.Equal(t, "Remote", projects[0].Name)
	require.Len(t, projects[0].Tasks, 2)

	// The theme setting survives adoption.
	theme, err := store.GetSetting("theme")
	require.NoError(t, err)
	require.Equal(t, "light", theme)
}

// Two rapid mutations produce exactly one push on the wire, but both land
// in the local store.
func TestRapidMutationsDropOverlappingPush(t *testing.T) {
	release := make(chan struct{})
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			json.NewEncoder(w).Encode(dto.HealthResponse{Success: true, Status: "running"})
			return
		}
		hits.Add(1)
		<-release
		json.NewEncoder(w).Encode(dto.PushSyncResponse{Success: true, LastSync: time.Now().UTC()})
	}))
	defer srv.Close()

	store := localdb.NewMemStore()
	mgr := New(store, syncer.New(srv.URL, time.Hour, 5*time.Second))
	seedOne(t, store)
	require.NoError(t, mgr.Load())

	// First mutation: its push blocks on the server.
	firstDone := make(chan struct{})
	go func() {
		title := "Renamed"
		require.NoError(t, mgr.UpdateTask("t1", TaskPatch{Title: &title}))
		close(firstDone)
	}()
	require.Eventually(t, func() bool { return hits.Load() == 1 }, 2*time.Second, time.Millisecond)

	// Second mutation while the push is in flight: its push is dropped,
	// but the write goes through without waiting.
	done := make(chan struct{})
	go func() {
		require.NoError(t, mgr.ToggleTaskComplete("t1"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second mutation blocked behind the in-flight push")
	}

	close(release)
	<-firstDone

	// Both mutations landed locally; only one push reached the wire.
	task, err := store.GetTask("t1")
	require.NoError(t, err)
	require.Equal(t, "Renamed", task.Title)
	require.True(t, task.Completed)
	require.Equal(t, int32(1), hits.Load())
}
