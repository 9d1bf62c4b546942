package cache

import (
	"context"
	"sync"
	"time"
)

// entry is a value plus its expiry bookkeeping.
type entry struct {
	value    []byte
	ttl      time.Duration
	inserted time.Time
}

func (e entry) expired(now time.Time) bool {
	return now.Sub(e.inserted) > e.ttl
}

// Local is a process-local core.Cache backed by a mutex-guarded map. Expired
// entries are evicted lazily on read and swept opportunistically on every
// write. Values are copied on Set and Get so callers cannot mutate stored
// bytes. Safe for concurrent use.
type Local struct {
	mu      sync.RWMutex
	entries map[string]entry
	// now is swappable for tests.
	now func() time.Time
}

// NewLocal constructs an empty local cache.
func NewLocal() *Local {
	return &Local{entries: make(map[string]entry), now: time.Now}
}

// Get returns the value for key unless it is absent or expired. Expired
// entries are removed on the spot.
func (l *Local) Get(_ context.Context, key string) ([]byte, bool) {
	l.mu.RLock()
	e, ok := l.entries[key]
	l.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if e.expired(l.now()) {
		l.mu.Lock()
		// Re-check under the write lock; another Set may have replaced it.
		if cur, ok := l.entries[key]; ok && cur.expired(l.now()) {
			delete(l.entries, key)
		}
		l.mu.Unlock()
		return nil, false
	}
	cp := make([]byte, len(e.value))
	copy(cp, e.value)
	return cp, true
}

// Set stores the value under key and opportunistically sweeps expired entries.
func (l *Local) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	cp := make([]byte, len(value))
	copy(cp, value)
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for k, e := range l.entries {
		if e.expired(now) {
			delete(l.entries, k)
		}
	}
	l.entries[key] = entry{value: cp, ttl: ttl, inserted: now}
}

// Delete removes the key if present.
func (l *Local) Delete(_ context.Context, key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
}

// Len returns the number of live entries (expired ones may still be counted
// until the next sweep). Intended for health reporting and tests.
func (l *Local) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
