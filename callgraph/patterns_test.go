package callgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test balanced delimiter scanning
func TestBalancedSpan(t *testing.T) {
	assert.Equal(t, 6, BalancedSpan("(a(b))", '(', ')', 0))
	assert.Equal(t, 4, BalancedSpan("{{}}", '{', '}', 0))
	assert.Equal(t, 7, BalancedSpan("x({y})z", '(', ')', 1))

	// Not an open delimiter at start
	assert.Equal(t, -1, BalancedSpan("a()", '(', ')', 0))
	// Never closes
	assert.Equal(t, -1, BalancedSpan("((a)", '(', ')', 0))
	// Start out of range
	assert.Equal(t, -1, BalancedSpan("()", '(', ')', 5))
}

// Test the capturing definition matcher on plain functions
func TestMatchFunctionDef_Simple(t *testing.T) {
	src := "void main() {\n  foo();\n}"
	m, ok := MatchFunctionDef(src)
	require.True(t, ok)
	assert.Equal(t, "main", m.Name)
	assert.Equal(t, "main() {\n  foo();\n}", src[m.Start:m.End])
	assert.Equal(t, "() {\n  foo();\n}", src[m.NameEnd:m.End])
}

// Test qualified names, trailing const and destructors
func TestMatchFunctionDef_Qualified(t *testing.T) {
	m, ok := MatchFunctionDef("int Foo::bar(int x) const {\n  return x;\n}")
	require.True(t, ok)
	assert.Equal(t, "Foo::bar", m.Name)

	m, ok = MatchFunctionDef("Foo::~Foo() {\n}")
	require.True(t, ok)
	assert.Equal(t, "Foo::~Foo", m.Name)
}

// Test constructor-initializer lists between signature and body
func TestMatchFunctionDef_InitializerList(t *testing.T) {
	src := "Foo::Foo(int x)\n    : a(x), b(0) {\n  init();\n}"
	m, ok := MatchFunctionDef(src)
	require.True(t, ok)
	assert.Equal(t, "Foo::Foo", m.Name)
	assert.Equal(t, len(src), m.End)
}

// Test that declarations without a body are rejected
func TestMatchFunctionDef_DeclarationRejected(t *testing.T) {
	_, ok := MatchFunctionDef("void forward_decl(int x);")
	assert.False(t, ok)

	_, ok = MatchFunctionDef("extern int other(void);")
	assert.False(t, ok)
}

// Test call extraction, including calls nested in call arguments
func TestExtractCalls(t *testing.T) {
	assert.Equal(t, []string{"f", "g", "h"}, ExtractCalls("f(g(h(x)))"))
	assert.Equal(t, []string{"foo", "bar"}, ExtractCalls("foo(1, 2);\nbar();"))
	assert.Equal(t, []string{"ns::helper"}, ExtractCalls("return ns::helper(v);"))
	assert.Empty(t, ExtractCalls("int x = 1 + 2;"))
}

// Test simple-name derivation from qualified spellings
func TestSimpleName(t *testing.T) {
	assert.Equal(t, "c", SimpleName("a::b::c"))
	assert.Equal(t, "x", SimpleName("::x"))
	assert.Equal(t, "plain", SimpleName("plain"))
	assert.Equal(t, "~Foo", SimpleName("Foo::~Foo"))
}
