package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/voicemesh/core"
)

// InMemoryStore is a trivial in-process core.AudioStore useful for tests and
// single-process prototypes. Data is copied on save and retrieval to avoid
// accidental external mutation of internal buffers.
type InMemoryStore struct {
	mu      sync.RWMutex
	data    map[string][]byte
	created map[string]time.Time
}

// NewInMemoryStore returns an empty in-memory audio store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{data: make(map[string][]byte), created: make(map[string]time.Time)}
}

var _ core.AudioStore = (*InMemoryStore)(nil)

// Save stores a copy of the audio bytes under a fresh unique reference.
func (s *InMemoryStore) Save(callID string, data []byte) (string, error) {
	cp := make([]byte, len(data))
	copy(cp, data)
	ref := fmt.Sprintf("%s-%s.mp3", sanitize(callID), core.NewID())
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[ref] = cp
	s.created[ref] = time.Now()
	return ref, nil
}

// Get returns a copy of the stored bytes or ErrNotFound.
func (s *InMemoryStore) Get(ref string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[ref]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// Delete removes the reference if present or returns ErrNotFound.
func (s *InMemoryStore) Delete(ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[ref]; !ok {
		return ErrNotFound
	}
	delete(s.data, ref)
	delete(s.created, ref)
	return nil
}

// Sweep removes entries older than maxAge.
func (s *InMemoryStore) Sweep(maxAge time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for ref, created := range s.created {
		if created.Before(cutoff) {
			delete(s.data, ref)
			delete(s.created, ref)
			removed++
		}
	}
	return removed, nil
}
