package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/hupe1980/voicemesh/core"
	"github.com/hupe1980/voicemesh/logging"
)

// unsafeChars matches everything that may not appear in a session filename.
var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// FileStore is the durable core.SessionStore: one JSON array of turns per
// call identifier, capped at MaxTurns most-recent turns. Records survive a
// process restart. Corrupt or oversized files are treated as empty rather
// than surfaced as errors, and Sweep removes records whose file was last
// modified more than maxAge ago.
//
// Concurrency: turns for a single call arrive sequentially from the
// transport, but many calls run at once, so the store takes one fine-grained
// lock per call identifier instead of a global lock across identifiers.
type FileStore struct {
	dir          string
	maxTurns     int
	maxFileBytes int64
	logger       logging.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// FileStoreOptions configure a FileStore.
type FileStoreOptions struct {
	// MaxTurns caps the per-call history; oldest turns are dropped first.
	// Defaults to 100.
	MaxTurns int
	// MaxFileBytes guards against runaway session files; larger files are
	// treated as corrupt. Defaults to 1 MiB.
	MaxFileBytes int64
	// Logger receives corruption and sweep diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// NewFileStore creates the store rooted at dir, creating it if necessary.
func NewFileStore(dir string, optFns ...func(o *FileStoreOptions)) (*FileStore, error) {
	opts := FileStoreOptions{MaxTurns: 100, MaxFileBytes: 1 << 20, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{
		dir:          dir,
		maxTurns:     opts.MaxTurns,
		maxFileBytes: opts.MaxFileBytes,
		logger:       opts.Logger,
		locks:        make(map[string]*sync.Mutex),
	}, nil
}

var _ core.SessionStore = (*FileStore)(nil)

// lockFor returns the per-call mutex, creating it on first use.
func (s *FileStore) lockFor(callID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[callID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[callID] = l
	}
	return l
}

func (s *FileStore) path(callID string) string {
	return filepath.Join(s.dir, unsafeChars.ReplaceAllString(callID, "_")+".json")
}

// Append adds a turn at the end of the call's history, enforcing the turn cap.
func (s *FileStore) Append(callID string, role core.Role, content string) error {
	l := s.lockFor(callID)
	l.Lock()
	defer l.Unlock()

	turns := s.readTurns(callID)
	turns = append(turns, core.NewTurn(role, content))
	if len(turns) > s.maxTurns {
		turns = turns[len(turns)-s.maxTurns:]
	}

	data, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", callID, err)
	}
	tmp := s.path(callID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write session %s: %w", callID, err)
	}
	if err := os.Rename(tmp, s.path(callID)); err != nil {
		return fmt.Errorf("write session %s: %w", callID, err)
	}
	return nil
}

// Read returns the call's ordered turns; corruption yields an empty history.
func (s *FileStore) Read(callID string) ([]core.Turn, error) {
	l := s.lockFor(callID)
	l.Lock()
	defer l.Unlock()
	return s.readTurns(callID), nil
}

// readTurns loads the persisted history, treating missing, oversized or
// malformed files as empty. Caller must hold the per-call lock.
func (s *FileStore) readTurns(callID string) []core.Turn {
	path := s.path(callID)
	info, err := os.Stat(path)
	if err != nil {
		return []core.Turn{}
	}
	if info.Size() > s.maxFileBytes {
		s.logger.Warn("session file oversized, resetting", "call_id", callID, "size", info.Size())
		return []core.Turn{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return []core.Turn{}
	}
	var turns []core.Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		s.logger.Warn("session file corrupt, resetting", "call_id", callID, "error", err)
		return []core.Turn{}
	}
	return turns
}

// Delete removes the call's history file.
func (s *FileStore) Delete(callID string) error {
	l := s.lockFor(callID)
	l.Lock()
	defer l.Unlock()
	if err := os.Remove(s.path(callID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete session %s: %w", callID, err)
	}
	s.mu.Lock()
	delete(s.locks, callID)
	s.mu.Unlock()
	return nil
}

// Sweep deletes all session files last modified more than maxAge ago.
func (s *FileStore) Sweep(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("sweep sessions: %w", err)
	}
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.dir, e.Name())); err == nil {
				removed++
			}
		}
	}
	if removed > 0 {
		s.logger.Info("session sweep removed stale records", "removed", removed)
	}
	return removed, nil
}
