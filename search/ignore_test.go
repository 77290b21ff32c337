package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test path and segment matching against the ignore globs
func TestIgnoreSet_Match(t *testing.T) {
	set, err := CompileIgnoreSet([]string{"*test*", "build/**"})
	require.NoError(t, err)

	assert.True(t, set.Match("src/foo_test.cc"))
	assert.True(t, set.Match("testdata/x.cc"))
	assert.True(t, set.Match("build/gen/x.cc"))
	assert.False(t, set.Match("src/main.cc"))
	assert.False(t, set.Match("include/api.h"))

	// Backslash paths normalize to forward slashes
	assert.True(t, set.Match(`build\gen\x.cc`))
}

// Test the default ignore set excludes tests, benchmarks and vendored code
func TestDefaultIgnoreGlobs(t *testing.T) {
	set, err := CompileIgnoreSet(DefaultIgnoreGlobs)
	require.NoError(t, err)

	assert.True(t, set.Match("src/parser_test.cc"))
	assert.True(t, set.Match("benchmarks/bench.cc"))
	assert.True(t, set.Match("third_party/lib/x.cc"))
	assert.True(t, set.Match("node_modules/pkg/x.cc"))
	assert.False(t, set.Match("src/parser.cc"))
}

// Test invalid glob compilation fails
func TestCompileIgnoreSet_Invalid(t *testing.T) {
	_, err := CompileIgnoreSet([]string{"["})
	assert.Error(t, err)
}
