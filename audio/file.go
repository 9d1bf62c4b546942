package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hupe1980/voicemesh/core"
)

// FileStore persists synthesized audio as files under one directory. Save
// generates a fresh unique filename per payload (call id prefix plus UUID) and
// returns it as the playable reference. Files are immutable once written, so
// no locking is needed beyond the filesystem's own guarantees.
type FileStore struct {
	dir string
	ext string
}

// FileStoreOptions configure a FileStore.
type FileStoreOptions struct {
	// Extension is appended to generated filenames. Defaults to ".mp3".
	Extension string
}

// NewFileStore creates the store rooted at dir, creating it if necessary.
func NewFileStore(dir string, optFns ...func(o *FileStoreOptions)) (*FileStore, error) {
	opts := FileStoreOptions{Extension: ".mp3"}
	for _, fn := range optFns {
		fn(&opts)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio dir: %w", err)
	}
	return &FileStore{dir: dir, ext: opts.Extension}, nil
}

var _ core.AudioStore = (*FileStore)(nil)

// Save writes the audio bytes under a fresh unique filename and returns the
// reference.
func (s *FileStore) Save(callID string, data []byte) (string, error) {
	ref := fmt.Sprintf("%s-%s%s", sanitize(callID), core.NewID(), s.ext)
	if err := os.WriteFile(filepath.Join(s.dir, ref), data, 0o644); err != nil {
		return "", fmt.Errorf("save audio for %s: %w", callID, err)
	}
	return ref, nil
}

// Get returns the audio bytes for a reference or ErrNotFound.
func (s *FileStore) Get(ref string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, filepath.Base(ref)))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read audio %s: %w", ref, err)
	}
	return data, nil
}

// Delete removes a stored reference or returns ErrNotFound.
func (s *FileStore) Delete(ref string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(ref)))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	return err
}

// Sweep removes audio files older than maxAge and reports how many were
// removed. Played audio is never needed again, so aggressive retention here
// only trades replayability for disk.
func (s *FileStore) Sweep(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("sweep audio: %w", err)
	}
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
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
	return removed, nil
}

// sanitize keeps call ids filesystem safe.
func sanitize(callID string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, callID)
}
