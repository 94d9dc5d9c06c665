package bridge

import (
	"sync"

	"github.com/google/uuid"
)

// Manager owns every job this bridge instance has started, addressable
// by ID for polling, matching the teacher's map-of-uuid.UUID-keyed
// entity tables (counterUASSystems/uasThreats) guarded by one mutex.
type Manager struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

func NewManager() *Manager {
	return &Manager{jobs: make(map[string]*Job)}
}

// Create registers a new job in the running state and returns it.
func (m *Manager) Create(mode Mode) *Job {
	j := &Job{ID: uuid.NewString(), Mode: mode, Status: StatusRunning}
	m.mu.Lock()
	m.jobs[j.ID] = j
	m.mu.Unlock()
	return j
}

// Get returns a copy of the job record for id.
func (m *Manager) Get(id string) (Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *j, true
}

// Update applies fn to the job record under the write lock.
func (m *Manager) Update(id string, fn func(*Job)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.jobs[id]; ok {
		fn(j)
	}
}

// ActiveCount returns the number of jobs still running, for
// GET /api/mc/status's activeJobs field.
func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, j := range m.jobs {
		if j.Status == StatusRunning {
			n++
		}
	}
	return n
}
