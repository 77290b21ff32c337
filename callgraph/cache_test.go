package callgraph

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calltree/callgraph/models"
)

func testGraph() *models.CallGraph {
	graph := models.NewCallGraph()
	graph.AddDefinition(&models.CallerNode{
		Name:        "main",
		SimpleName:  "main",
		FileInfo:    "a.c:1",
		CalleeNames: []string{"foo"},
	})
	graph.AddDefinition(&models.CallerNode{
		Name:       "foo",
		SimpleName: "foo",
		FileInfo:   "a.c:10",
	})
	return graph
}

// Test the extraction signature is order-insensitive over the blacklist
func TestSignature(t *testing.T) {
	a := Signature([]string{"if", "for"}, 100, 4)
	b := Signature([]string{"for", "if"}, 100, 4)
	assert.Equal(t, a, b)

	assert.NotEqual(t, a, Signature([]string{"if", "for"}, 99, 4))
	assert.NotEqual(t, a, Signature([]string{"if", "for"}, 100, 5))
	assert.NotEqual(t, a, Signature([]string{"if"}, 100, 4))
}

// Test store/load round trip
func TestGraphCache_StoreLoad(t *testing.T) {
	cache, err := NewGraphCache(t.TempDir())
	require.NoError(t, err)

	signature := Signature(DefaultBlacklist, 100, 4)
	graph := testGraph()
	require.NoError(t, cache.Store(signature, graph))

	loaded, ok, err := cache.Load(signature)
	require.NoError(t, err)
	require.True(t, ok)
	require.Contains(t, loaded.DefinitionsOf, "main")
	require.Len(t, loaded.CallersOf["foo"], 1)
	assert.Equal(t, "main", loaded.CallersOf["foo"][0].Name)
	assert.Equal(t, "a.c:1", loaded.CallersOf["foo"][0].FileInfo)
}

// Test that a changed ignore set misses the cache
func TestGraphCache_SignatureMismatch(t *testing.T) {
	cache, err := NewGraphCache(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, cache.Store(Signature([]string{"if"}, 100, 4), testGraph()))

	_, ok, err := cache.Load(Signature([]string{"if", "for"}, 100, 4))
	require.NoError(t, err)
	assert.False(t, ok)
}

// Test that a corrupted graph file is a hard error, not a silent miss
func TestGraphCache_CorruptedFile(t *testing.T) {
	cache, err := NewGraphCache(t.TempDir())
	require.NoError(t, err)

	signature := Signature(DefaultBlacklist, 100, 4)
	require.NoError(t, cache.Store(signature, testGraph()))

	_, defsPath, _ := cache.paths(signature)
	require.NoError(t, os.WriteFile(defsPath, []byte("not gob data"), 0644))

	_, _, err = cache.Load(signature)
	assert.Error(t, err)
}

// Test clearing removes every cache file
func TestGraphCache_Clear(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewGraphCache(dir)
	require.NoError(t, err)

	signature := Signature(DefaultBlacklist, 100, 4)
	require.NoError(t, cache.Store(signature, testGraph()))
	require.NoError(t, cache.Clear())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, ok, err := cache.Load(signature)
	require.NoError(t, err)
	assert.False(t, ok)
}

// Test hit/miss accounting in the statistics
func TestGraphCache_Stats(t *testing.T) {
	cache, err := NewGraphCache(t.TempDir())
	require.NoError(t, err)

	signature := Signature(DefaultBlacklist, 100, 4)
	_, ok, err := cache.Load(signature)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, cache.Store(signature, testGraph()))
	_, ok, err = cache.Load(signature)
	require.NoError(t, err)
	require.True(t, ok)

	stats, err := cache.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats["total_requests"])
	assert.Equal(t, int64(1), stats["cache_hits"])
	assert.Equal(t, int64(1), stats["cache_misses"])
	assert.Equal(t, 3, stats["cache_files"])
	assert.InDelta(t, 50.0, stats["hit_rate"].(float64), 0.01)
}
