package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/voicemesh/cache"
)

func newTestIndex(t *testing.T, files map[string]string) *Index {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	idx := NewIndex(dir, cache.NewTiered(nil))
	require.NoError(t, idx.Load(context.Background()))
	return idx
}

func TestIndex_CourseScenario(t *testing.T) {
	idx := newTestIndex(t, map[string]string{
		"analytics.txt": "Data Analytics bootcamp covers Python basics",
		"fullstack.txt": "Full Stack Development teaches JavaScript frameworks",
	})

	chunks := idx.Search("python analytics")
	require.Len(t, chunks, 1)
	assert.Equal(t, "analytics.txt", chunks[0].Source)
	assert.Contains(t, chunks[0].Content, "Python basics")
}

func TestIndex_NoSharedKeywordsReturnsEmpty(t *testing.T) {
	idx := newTestIndex(t, map[string]string{
		"doc.txt": "Data Analytics bootcamp covers Python basics",
	})
	assert.Empty(t, idx.Search("ruby rails"))
	// keywords must be longer than 3 characters, so a short word shared with
	// the chunk does not count
	assert.Empty(t, idx.Search("the an of"))
}

func TestIndex_RankingIsDeterministic(t *testing.T) {
	idx := newTestIndex(t, map[string]string{
		"doc.txt": "alpha bravo charlie\n\nalpha bravo delta\n\nalpha echo foxtrot\n\ngolf hotel india",
	})

	chunks := idx.Search("alpha bravo")
	require.Len(t, chunks, 3)
	// Two score-2 chunks in original relative order, then the score-1 chunk.
	assert.Equal(t, "alpha bravo charlie", chunks[0].Content)
	assert.Equal(t, 2, chunks[0].Score)
	assert.Equal(t, "alpha bravo delta", chunks[1].Content)
	assert.Equal(t, 2, chunks[1].Score)
	assert.Equal(t, "alpha echo foxtrot", chunks[2].Content)
	assert.Equal(t, 1, chunks[2].Score)
}

func TestIndex_AtMostThreeResults(t *testing.T) {
	idx := newTestIndex(t, map[string]string{
		"doc.txt": "shared topic one\n\nshared topic two\n\nshared topic three\n\nshared topic four",
	})
	assert.Len(t, idx.Search("shared topic"), 3)
}

func TestIndex_HotSetServesRepeatQueries(t *testing.T) {
	idx := newTestIndex(t, map[string]string{
		"doc.txt": "Data Analytics bootcamp covers Python basics",
	})

	first := idx.Search("python")
	require.Len(t, first, 1)
	assert.Equal(t, 1, idx.hot.len())

	// Swap out the full collection; the hot-set must still answer.
	idx.publish(nil)
	second := idx.Search("python")
	require.Len(t, second, 1)
	assert.Equal(t, first[0].Content, second[0].Content)
}

func TestIndex_MissingDirectoryIsNotAnError(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "does-not-exist-yet")
	idx := NewIndex(dir, cache.NewTiered(nil))
	require.NoError(t, idx.Load(context.Background()))
	assert.Zero(t, idx.Len())
	assert.Empty(t, idx.Search("anything"))

	// The directory was created so a later rebuild can pick up new files.
	_, err := os.Stat(dir)
	assert.NoError(t, err)
}

func TestIndex_LoadPrefersCachedCollection(t *testing.T) {
	store := cache.NewTiered(nil)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc.txt"), []byte("Python basics paragraph"), 0o644))

	first := NewIndex(dir, store)
	require.NoError(t, first.Load(context.Background()))
	require.Equal(t, 1, first.Len())

	// Remove the file: a second index sharing the store must load the cached
	// snapshot instead of rebuilding from the now-empty directory.
	require.NoError(t, os.Remove(filepath.Join(dir, "doc.txt")))
	second := NewIndex(dir, store)
	require.NoError(t, second.Load(context.Background()))
	assert.Equal(t, 1, second.Len())
}

func TestFormatChunks(t *testing.T) {
	out := FormatChunks([]Chunk{
		{Source: "a.txt", Content: "first"},
		{Source: "b.txt", Content: "second"},
	})
	assert.Equal(t, "[From a.txt]\nfirst\n\n[From b.txt]\nsecond", out)
	assert.Empty(t, FormatChunks(nil))
}

func TestIndex_RetrieveFormatsBlocks(t *testing.T) {
	idx := newTestIndex(t, map[string]string{
		"analytics.txt": "Data Analytics bootcamp covers Python basics",
	})
	out := idx.Retrieve(context.Background(), "python")
	assert.Equal(t, "[From analytics.txt]\nData Analytics bootcamp covers Python basics", out)
}
