package callgraph

import (
	"strings"

	"calltree/callgraph/models"
)

// RenderTree converts a query result into indented box-drawing text,
// depth-first pre-order. When verbose, nodes with a location get a
// tab-separated [path:line] suffix.
func RenderTree(root *models.TreeNode, verbose bool) string {
	var sb strings.Builder
	sb.WriteString(nodeLabel(root, verbose))
	sb.WriteByte('\n')
	renderChildren(&sb, root, "", verbose)
	return sb.String()
}

func renderChildren(sb *strings.Builder, node *models.TreeNode, prefix string, verbose bool) {
	for i, child := range node.Children {
		connector, continuation := "├── ", "│   "
		if i == len(node.Children)-1 {
			connector, continuation = "└── ", "    "
		}
		sb.WriteString(prefix)
		sb.WriteString(connector)
		sb.WriteString(nodeLabel(child, verbose))
		sb.WriteByte('\n')
		renderChildren(sb, child, prefix+continuation, verbose)
	}
}

func nodeLabel(node *models.TreeNode, verbose bool) string {
	if verbose && node.FileInfo != "" {
		return node.Name + "\t[" + node.FileInfo + "]"
	}
	return node.Name
}
