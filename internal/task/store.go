package task

import (
	"sync"

	"github.com/google/uuid"
)

// Store keeps the latest snapshot of every task, keyed by task ID.
// It is the only structure shared across concurrently running tasks.
// Readers receive clones and may observe a slightly stale snapshot; the
// run loop remains the source of truth.
type Store struct {
	mu    sync.RWMutex
	tasks map[string]*State
}

// NewStore creates an empty snapshot store.
func NewStore() *Store {
	return &Store{tasks: make(map[string]*State)}
}

// Create registers a new task and returns its initial state. An empty id
// gets a generated UUID. A fresh task overwrites any prior snapshot for
// the same id.
func (st *Store) Create(id, query, taskType string, maxIterations int) *State {
	if id == "" {
		id = uuid.New().String()
	}
	s := New(id, query, taskType, maxIterations)

	st.mu.Lock()
	st.tasks[id] = s.Clone()
	st.mu.Unlock()
	return s
}

// Put overwrites the stored snapshot for the state's task ID.
// A non-terminal write never clobbers a terminal snapshot: an external
// cancellation recorded on the store stays visible until the run loop
// observes and adopts it.
func (st *Store) Put(s *State) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if prev, ok := st.tasks[s.TaskID]; ok && prev.Terminal() && !s.Terminal() {
		return
	}
	st.tasks[s.TaskID] = s.Clone()
}

// Get returns a copy of the latest snapshot for a task ID.
func (st *Store) Get(id string) (*State, bool) {
	st.mu.RLock()
	s, ok := st.tasks[id]
	st.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

// List returns copies of all known task snapshots keyed by task ID.
func (st *Store) List() map[string]*State {
	st.mu.RLock()
	defer st.mu.RUnlock()

	out := make(map[string]*State, len(st.tasks))
	for id, s := range st.tasks {
		out[id] = s.Clone()
	}
	return out
}

// Cancel marks the stored snapshot failed with a cancellation note.
// The run loop observes the terminal status at the top of its next
// iteration and stops; cancellation is cooperative.
func (st *Store) Cancel(id, note string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.tasks[id]
	if !ok || s.Terminal() {
		return false
	}
	if note == "" {
		note = "task cancelled"
	}
	s.Status = StatusFailed
	s.AddError(note)
	s.NextAgent = ""
	return true
}
