// Package syncer keeps the local dataset aligned with the sync server:
// every mutation is pushed immediately, and a fixed-interval poll adopts
// newer remote data. It is best-effort by design — no retries, no queueing.
package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"fastboard/dto"
	"fastboard/model"
)

// Status is the availability state surfaced to the user.
type Status string

const (
	StatusConnecting Status = "connecting"
	StatusSynced     Status = "synced"
	StatusOffline    Status = "offline"
)

// GetLocalFunc supplies the current local dataset, projects without
// embedded tasks.
type GetLocalFunc func() (projects []model.Project, tasks []model.Task)

// OnRemoteFunc adopts a newer remote envelope, overwriting local state.
type OnRemoteFunc func(data *model.SyncData)

// Manager talks to one sync server. Construct it with New and inject it;
// it holds no package-level state.
type Manager struct {
	serverURL string
	interval  time.Duration
	client    *http.Client

	pushing atomic.Bool // one push in flight at most; extra pushes are dropped
	ticking atomic.Bool // poll tick in-flight guard

	mu             sync.Mutex
	status         Status
	lastServerSync time.Time
	getLocal       GetLocalFunc
	onRemote       OnRemoteFunc
	stop           chan struct{}
}

// New creates a manager for the server at serverURL. The timeout bounds
// every request; there is no retry or backoff.
func New(serverURL string, interval, timeout time.Duration) *Manager {
	return &Manager{
		serverURL: serverURL,
		interval:  interval,
		client:    &http.Client{Timeout: timeout},
		status:    StatusConnecting,
	}
}

// Status reports connecting until the first contact, then the outcome of
// the most recent push or pull.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
}

// CheckServer probes the health endpoint. Network errors mean unavailable,
// never an error to the caller.
func (m *Manager) CheckServer(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.serverURL+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := m.client.Do(req)
	if err != nil {
		m.setStatus(StatusOffline)
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Pull fetches the current remote envelope, or nil on any failure.
func (m *Manager) Pull(ctx context.Context) *model.SyncData {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.serverURL+"/api/sync", nil)
	if err != nil {
		return nil
	}
	resp, err := m.client.Do(req)
	if err != nil {
		m.setStatus(StatusOffline)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		m.setStatus(StatusOffline)
		return nil
	}

	var result dto.GetSyncResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		m.setStatus(StatusOffline)
		return nil
	}
	if !result.Success {
		m.setStatus(StatusOffline)
		return nil
	}

	m.setStatus(StatusSynced)
	return &result.Data
}

// Push sends the full dataset to the server, replacing it wholesale. While
// a push is in flight, further pushes are dropped, not queued: a rapid
// mutation burst reaches the server only through its last attempted push,
// while every mutation still lands in the local store.
func (m *Manager) Push(ctx context.Context, projects []model.Project, tasks []model.Task) bool {
	if !m.pushing.CompareAndSwap(false, true) {
		return false
	}
	defer m.pushing.Store(false)

	if projects == nil {
		projects = []model.Project{}
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	body, err := json.Marshal(dto.PushSyncRequest{Projects: projects, Tasks: tasks})
	if err != nil {
		m.setStatus(StatusOffline)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.serverURL+"/api/sync", bytes.NewReader(body))
	if err != nil {
		m.setStatus(StatusOffline)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		m.setStatus(StatusOffline)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		m.setStatus(StatusOffline)
		return false
	}

	var result dto.PushSyncResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil || !result.Success {
		m.setStatus(StatusOffline)
		return false
	}

	m.mu.Lock()
	m.lastServerSync = result.LastSync
	m.status = StatusSynced
	m.mu.Unlock()
	log.Printf("Synced to server: %d tasks", len(tasks))
	return true
}

// StartPolling runs the initial reconciliation and then checks the server
// every interval. Calling it while polling is already active is a no-op.
func (m *Manager) StartPolling(getLocal GetLocalFunc, onRemote OnRemoteFunc) {
	m.mu.Lock()
	if m.stop != nil {
		m.mu.Unlock()
		return
	}
	m.getLocal = getLocal
	m.onRemote = onRemote
	stop := make(chan struct{})
	m.stop = stop
	m.mu.Unlock()

	log.Printf("Auto-sync started (polling every %s)", m.interval)

	go func() {
		m.initialSync()

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				// Skip the tick if the previous one is still running.
				if !m.ticking.CompareAndSwap(false, true) {
					continue
				}
				m.checkForUpdates()
				m.ticking.Store(false)
			}
		}
	}()
}

// StopPolling cancels the poll timer. In-flight requests are not
// interrupted. Safe to call repeatedly or before StartPolling.
func (m *Manager) StopPolling() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stop != nil {
		close(m.stop)
		m.stop = nil
	}
}

// initialSync establishes the direction of truth when one side is empty:
// a non-empty server wins outright; otherwise non-empty local data is
// pushed up. Both sides non-empty is left to the steady-state heuristic.
func (m *Manager) initialSync() {
	ctx := context.Background()
	if !m.CheckServer(ctx) {
		log.Println("Sync server not available at startup")
		return
	}

	data := m.Pull(ctx)
	if data != nil && len(data.Tasks) > 0 {
		log.Printf("Initial sync: loading %d tasks from server", len(data.Tasks))
		m.mu.Lock()
		m.lastServerSync = data.LastSync
		onRemote := m.onRemote
		m.mu.Unlock()
		if onRemote != nil {
			onRemote(data)
		}
		return
	}

	m.mu.Lock()
	getLocal := m.getLocal
	m.mu.Unlock()
	if getLocal == nil {
		return
	}
	projects, tasks := getLocal()
	if len(tasks) > 0 {
		log.Printf("Initial sync: pushing %d local tasks to server", len(tasks))
		m.Push(ctx, projects, tasks)
	}
}

// checkForUpdates adopts remote data when its lastSync moved and either
// the task count differs from local or the remote timestamp is strictly
// newer. Pull failures are transient: nothing happens until the next tick.
func (m *Manager) checkForUpdates() {
	if m.pushing.Load() {
		return
	}

	data := m.Pull(context.Background())
	if data == nil {
		return
	}

	m.mu.Lock()
	last := m.lastServerSync
	getLocal := m.getLocal
	onRemote := m.onRemote
	m.mu.Unlock()
	if onRemote == nil {
		return
	}

	if data.LastSync.IsZero() || data.LastSync.Equal(last) {
		return
	}

	localCount := 0
	if getLocal != nil {
		_, tasks := getLocal()
		localCount = len(tasks)
	}

	if len(data.Tasks) != localCount || data.LastSync.After(last) {
		log.Printf("New data from server: %d tasks", len(data.Tasks))
		m.mu.Lock()
		m.lastServerSync = data.LastSync
		m.mu.Unlock()
		onRemote(data)
	}
}
