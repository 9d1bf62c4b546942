package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/voicemesh/cache"
	"github.com/hupe1980/voicemesh/core"
	"github.com/hupe1980/voicemesh/logging"
)

// cacheKey is the single key under which the full chunk collection is
// persisted with the knowledge-base TTL class.
const cacheKey = "voicemesh:knowledge:chunks"

// Options configure an Index.
type Options struct {
	// MaxResults caps how many chunks a query returns. Defaults to 3.
	MaxResults int
	// HotSetSize bounds the in-process hot-set. Defaults to 1000.
	HotSetSize int
	// BuildWorkers bounds concurrent file parsing during Build. Defaults to 4.
	BuildWorkers int
	// FileTimeout bounds each parallel file parse; files that exceed it are
	// retried sequentially. Defaults to 5s.
	FileTimeout time.Duration
	// Logger receives build diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Index loads and indexes reference documents and serves relevance queries.
// The chunk collection is read by many concurrent queries and rewritten only
// at rebuild time; rebuilds assemble the new collection off to the side and
// publish it atomically so readers see either the old or the new fully-built
// collection, never a partial one.
type Index struct {
	dir        string
	store      core.Cache
	maxResults int
	hot        *hotSet
	workers    int
	timeout    time.Duration
	logger     logging.Logger

	mu     sync.RWMutex
	chunks []Chunk
}

var _ core.KnowledgeBase = (*Index)(nil)

// NewIndex constructs an Index over the given directory, persisting through
// the provided cache store.
func NewIndex(dir string, store core.Cache, optFns ...func(o *Options)) *Index {
	opts := Options{
		MaxResults:   3,
		HotSetSize:   1000,
		BuildWorkers: 4,
		FileTimeout:  5 * time.Second,
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Index{
		dir:        dir,
		store:      store,
		maxResults: opts.MaxResults,
		hot:        newHotSet(opts.HotSetSize),
		workers:    opts.BuildWorkers,
		timeout:    opts.FileTimeout,
		logger:     opts.Logger,
	}
}

// Load populates the index, preferring the cached collection over a rebuild.
// On a cache miss the directory is (re)built and the result persisted.
func (i *Index) Load(ctx context.Context) error {
	if data, ok := i.store.Get(ctx, cacheKey); ok {
		var chunks []Chunk
		if err := json.Unmarshal(data, &chunks); err == nil {
			i.publish(chunks)
			i.logger.Info("knowledge index loaded from cache", "chunks", len(chunks))
			return nil
		}
		// Corrupt snapshot: fall through to a rebuild.
		i.logger.Warn("cached knowledge snapshot unreadable, rebuilding")
	}
	return i.Rebuild(ctx)
}

// Rebuild re-indexes the directory tree and persists the fresh collection.
func (i *Index) Rebuild(ctx context.Context) error {
	chunks, err := i.build(ctx)
	if err != nil {
		return err
	}
	i.publish(chunks)
	if data, err := json.Marshal(chunks); err == nil {
		i.store.Set(ctx, cacheKey, data, cache.TTLKnowledgeBase)
	}
	i.logger.Info("knowledge index rebuilt", "chunks", len(chunks))
	return nil
}

// publish swaps in a fully-built chunk collection.
func (i *Index) publish(chunks []Chunk) {
	i.mu.Lock()
	i.chunks = chunks
	i.mu.Unlock()
}

// Len returns the number of indexed chunks.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.chunks)
}

// build discovers reference files and parses them into chunks. Files are
// parsed in parallel with a per-file timeout; entries that fail or time out
// are retried sequentially so a single slow file never aborts the build.
// A missing directory is created empty rather than treated as an error.
func (i *Index) build(ctx context.Context) ([]Chunk, error) {
	if _, err := os.Stat(i.dir); os.IsNotExist(err) {
		if err := os.MkdirAll(i.dir, 0o755); err != nil {
			return nil, fmt.Errorf("create knowledge dir: %w", err)
		}
		return nil, nil
	}

	var files []string
	err := filepath.WalkDir(i.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			i.logger.Warn("skipping unreadable entry", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk knowledge dir: %w", err)
	}
	sort.Strings(files)

	perFile := make([][]Chunk, len(files))
	var failedMu sync.Mutex
	var failed []int

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.workers)
	for idx, path := range files {
		idx, path := idx, path
		g.Go(func() error {
			chunks, err := i.parseFile(gctx, path)
			if err != nil {
				failedMu.Lock()
				failed = append(failed, idx)
				failedMu.Unlock()
				return nil
			}
			perFile[idx] = chunks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Sequential fallback for entries the parallel pass could not handle.
	sort.Ints(failed)
	for _, idx := range failed {
		data, err := os.ReadFile(files[idx])
		if err != nil {
			i.logger.Warn("skipping unreadable knowledge file", "path", files[idx], "error", err)
			continue
		}
		perFile[idx] = splitChunks(filepath.Base(files[idx]), string(data))
	}

	var all []Chunk
	for _, chunks := range perFile {
		all = append(all, chunks...)
	}
	return all, nil
}

// parseFile reads and chunks one file, bounded by the per-file timeout.
func (i *Index) parseFile(ctx context.Context, path string) ([]Chunk, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	type result struct {
		chunks []Chunk
		err    error
	}
	ch := make(chan result, 1)
	go func() {
		data, err := os.ReadFile(path)
		if err != nil {
			ch <- result{err: err}
			return
		}
		ch <- result{chunks: splitChunks(filepath.Base(path), string(data))}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.chunks, res.err
	}
}

// Search returns up to MaxResults chunks ranked by keyword intersection with
// the query. The hot-set serves the first pass; on a hot-set miss the full
// collection is scanned, scored, and the winners promoted into the hot-set.
// Ties preserve original collection order and chunks scoring zero are
// excluded.
func (i *Index) Search(query string) []Chunk {
	querySet := keywordSet(Keywords(query))
	if len(querySet) == 0 {
		return nil
	}

	if hits := i.hot.matching(querySet); len(hits) > 0 {
		sort.SliceStable(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })
		if len(hits) > i.maxResults {
			hits = hits[:i.maxResults]
		}
		return hits
	}

	i.mu.RLock()
	chunks := i.chunks
	i.mu.RUnlock()

	var scored []Chunk
	for _, c := range chunks {
		if score := c.intersectionScore(querySet); score > 0 {
			c.Score = score
			scored = append(scored, c)
		}
	}
	sort.SliceStable(scored, func(a, b int) bool { return scored[a].Score > scored[b].Score })
	if len(scored) > i.maxResults {
		scored = scored[:i.maxResults]
	}
	for _, c := range scored {
		i.hot.add(c)
	}
	return scored
}

// Retrieve implements core.KnowledgeBase: ranked chunks rendered as labeled
// blocks joined by blank lines, or the empty string when nothing matches.
func (i *Index) Retrieve(_ context.Context, query string) string {
	return FormatChunks(i.Search(query))
}

// FormatChunks renders chunks for downstream prompt consumption:
//
//	[From <source>]
//	<content>
//
// blocks joined with a blank line, in ranked order.
func FormatChunks(chunks []Chunk) string {
	if len(chunks) == 0 {
		return ""
	}
	blocks := make([]string, 0, len(chunks))
	for _, c := range chunks {
		blocks = append(blocks, fmt.Sprintf("[From %s]\n%s", c.Source, c.Content))
	}
	return strings.Join(blocks, "\n\n")
}
