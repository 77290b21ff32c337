package callgraph

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calltree/callgraph/models"
)

// Test the full pipeline: recover, sanitize, extract, cache, restore
func TestAnalyzer_Graph(t *testing.T) {
	root := t.TempDir()
	source := "void main() {\n  foo(); // entry\n}\n"
	path := filepath.Join(root, "a.c")
	require.NoError(t, os.WriteFile(path, []byte(source), 0644))

	searcher := &fakeSearcher{
		files: []string{"a.c"},
		matches: []models.GrepMatch{
			{Path: "a.c", Line: 1, Content: "void main() {"},
			{Path: "a.c", Line: 2, Content: "  foo();      "},
			{Path: "a.c", Line: 3, Content: "}"},
		},
	}

	analyzer, err := NewAnalyzer(root, searcher, Options{
		TrivialThreshold: 100,
		LengthThreshold:  3,
		EnableCache:      true,
		CacheDir:         filepath.Join(root, ".calltree"),
	})
	require.NoError(t, err)

	graph, err := analyzer.Graph(context.Background())
	require.NoError(t, err)
	require.Len(t, graph.CallersOf["foo"], 1)
	assert.Equal(t, "main", graph.CallersOf["foo"][0].Name)

	// The source file is back in its original form
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, source, string(data))
	_, err = os.Stat(path + BackupSuffix)
	assert.True(t, os.IsNotExist(err))
}

// Test a second run is served from the cache without re-extraction
func TestAnalyzer_CacheReuse(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.c"), []byte("void main() {\n}\n"), 0644))

	searcher := &fakeSearcher{
		files: []string{"a.c"},
		matches: []models.GrepMatch{
			{Path: "a.c", Line: 1, Content: "void main() {"},
			{Path: "a.c", Line: 2, Content: "}"},
		},
	}

	analyzer, err := NewAnalyzer(root, searcher, Options{
		TrivialThreshold: 100,
		LengthThreshold:  3,
		EnableCache:      true,
		CacheDir:         filepath.Join(root, ".calltree"),
	})
	require.NoError(t, err)

	_, err = analyzer.Graph(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, searcher.grepCalls)

	_, err = analyzer.Graph(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, searcher.grepCalls)

	// Clearing the cache forces a fresh extraction
	require.NoError(t, analyzer.ClearCache())
	_, err = analyzer.Graph(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, searcher.grepCalls)
}

// Test that a crashed run's backups are recovered before analysis
func TestAnalyzer_RecoversStaleBackups(t *testing.T) {
	root := t.TempDir()
	source := "void main() {\n}\n"
	path := filepath.Join(root, "a.c")
	// A backup with no working-file counterpart from a run that died
	// between rename and write.
	require.NoError(t, os.WriteFile(path+BackupSuffix, []byte(source), 0644))

	searcher := &fakeSearcher{files: []string{"a.c"}}
	analyzer, err := NewAnalyzer(root, searcher, Options{
		TrivialThreshold: 100,
		LengthThreshold:  3,
	})
	require.NoError(t, err)

	_, err = analyzer.Graph(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, source, string(data))
}

// Test definition lookup by either name spelling
func TestAnalyzer_FindDefinitions(t *testing.T) {
	searcher := &fakeSearcher{
		matches: []models.GrepMatch{
			{Path: "a.c", Line: 1, Content: "void Foo::bar() {"},
			{Path: "a.c", Line: 2, Content: "  baz();"},
			{Path: "a.c", Line: 3, Content: "}"},
		},
	}
	analyzer, err := NewAnalyzer(t.TempDir(), searcher, Options{})
	require.NoError(t, err)

	defs, err := analyzer.FindDefinitions("Foo::bar")
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "a.c", defs[0].Path)

	defs, err = analyzer.FindDefinitions("bar")
	require.NoError(t, err)
	assert.Len(t, defs, 1)

	defs, err = analyzer.FindDefinitions("missing")
	require.NoError(t, err)
	assert.Empty(t, defs)
}

// Test cache statistics when caching is disabled
func TestAnalyzer_CacheDisabled(t *testing.T) {
	analyzer, err := NewAnalyzer(t.TempDir(), &fakeSearcher{}, Options{})
	require.NoError(t, err)

	require.NoError(t, analyzer.ClearCache())
	stats, err := analyzer.CacheStats()
	require.NoError(t, err)
	assert.Equal(t, false, stats["cache_enabled"])
}
