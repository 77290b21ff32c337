package callgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"calltree/callgraph/models"
)

// Test the single-chain rendering shape
func TestRenderTree_Chain(t *testing.T) {
	tree := &models.TreeNode{
		Name: "bar",
		Children: []*models.TreeNode{{
			Name: "foo",
			Children: []*models.TreeNode{{
				Name: "main",
				Leaf: models.LeafOutmost,
			}},
		}},
	}

	expected := "bar\n" +
		"└── foo\n" +
		"    └── main\n"
	assert.Equal(t, expected, RenderTree(tree, false))
}

// Test sibling connectors and continuation prefixes
func TestRenderTree_Siblings(t *testing.T) {
	tree := &models.TreeNode{
		Name: "root",
		Children: []*models.TreeNode{
			{
				Name:     "first",
				Children: []*models.TreeNode{{Name: "nested"}},
			},
			{Name: "last"},
		},
	}

	expected := "root\n" +
		"├── first\n" +
		"│   └── nested\n" +
		"└── last\n"
	assert.Equal(t, expected, RenderTree(tree, false))
}

// Test verbose location suffixes
func TestRenderTree_Verbose(t *testing.T) {
	tree := &models.TreeNode{
		Name:     "bar",
		FileInfo: "b.c:1",
		Children: []*models.TreeNode{{Name: "foo", FileInfo: "a.c:10"}},
	}

	expected := "bar\t[b.c:1]\n" +
		"└── foo\t[a.c:10]\n"
	assert.Equal(t, expected, RenderTree(tree, true))

	// Nodes without a location get no suffix even in verbose mode
	tree = &models.TreeNode{Name: "pattern"}
	assert.Equal(t, "pattern\n", RenderTree(tree, true))
}
