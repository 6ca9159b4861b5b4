package session

import (
	"sync"
	"time"
)

// Patch is a partial session update. Nil fields are left untouched;
// non-nil fields overwrite what is stored (shallow merge, last writer
// wins). Pending needs an explicit clear flag because "no change" and
// "remove the pending request" are different updates.
type Patch struct {
	Stack        []Step
	Results      []StepResult
	Pending      *PendingInput
	ClearPending bool
	Goal         *string
}

// Store is the session persistence contract. Get on an unknown session
// returns a zero State and no error (sessions are created on first
// merge). Implementations must provide read-your-writes consistency
// within a session.
type Store interface {
	Get(sessionID string) (State, error)
	Merge(sessionID string, patch Patch) error
}

// MemStore keeps sessions in memory. Used in tests and for
// memory-only deployments where restarts may drop in-flight stacks.
type MemStore struct {
	mu       sync.RWMutex
	sessions map[string]State
}

func NewMemStore() *MemStore {
	return &MemStore{sessions: make(map[string]State)}
}

func (m *MemStore) Get(sessionID string) (State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[sessionID], nil
}

func (m *MemStore) Merge(sessionID string, patch Patch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.sessions[sessionID]
	if !ok {
		st.CreatedAt = time.Now()
	}
	applyPatch(&st, patch)
	m.sessions[sessionID] = st
	return nil
}

// PurgeExpired drops sessions not touched within ttl.
func (m *MemStore) PurgeExpired(ttl time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-ttl)
	n := 0
	for id, st := range m.sessions {
		if st.UpdatedAt.Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

func applyPatch(st *State, patch Patch) {
	if patch.Stack != nil {
		st.Stack = patch.Stack
	}
	if patch.Results != nil {
		st.Results = patch.Results
	}
	if patch.Pending != nil {
		st.Pending = patch.Pending
	} else if patch.ClearPending {
		st.Pending = nil
	}
	if patch.Goal != nil {
		st.Goal = *patch.Goal
	}
	st.UpdatedAt = time.Now()
}
