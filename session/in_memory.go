package session

import (
	"sync"
	"time"

	"github.com/hupe1980/voicemesh/core"
)

// InMemoryStore is a volatile core.SessionStore implementation keeping
// histories in a process local map. It is safe for concurrent access and
// best suited for tests or ephemeral demo servers. Returned slices are
// copies to prevent external mutation of internal state.
type InMemoryStore struct {
	mu       sync.RWMutex
	maxTurns int
	turns    map[string][]core.Turn
	modified map[string]time.Time
}

// NewInMemoryStore constructs an empty in-memory session store with the same
// default cap as the file store.
func NewInMemoryStore(optFns ...func(o *FileStoreOptions)) *InMemoryStore {
	opts := FileStoreOptions{MaxTurns: 100}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &InMemoryStore{
		maxTurns: opts.MaxTurns,
		turns:    make(map[string][]core.Turn),
		modified: make(map[string]time.Time),
	}
}

var _ core.SessionStore = (*InMemoryStore)(nil)

// Append adds a turn, enforcing the cap by dropping oldest turns first.
func (s *InMemoryStore) Append(callID string, role core.Role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	turns := append(s.turns[callID], core.NewTurn(role, content))
	if len(turns) > s.maxTurns {
		turns = turns[len(turns)-s.maxTurns:]
	}
	s.turns[callID] = turns
	s.modified[callID] = time.Now()
	return nil
}

// Read returns a copy of the call's ordered turns (empty when none exist).
func (s *InMemoryStore) Read(callID string) ([]core.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := s.turns[callID]
	cp := make([]core.Turn, len(turns))
	copy(cp, turns)
	return cp, nil
}

// Delete removes the call's history.
func (s *InMemoryStore) Delete(callID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.turns, callID)
	delete(s.modified, callID)
	return nil
}

// Sweep deletes all records last modified more than maxAge ago.
func (s *InMemoryStore) Sweep(maxAge time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, mod := range s.modified {
		if mod.Before(cutoff) {
			delete(s.turns, id)
			delete(s.modified, id)
			removed++
		}
	}
	return removed, nil
}
