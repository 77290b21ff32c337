package callgraph

import (
	"fmt"
	"regexp"
	"sort"

	"calltree/callgraph/models"
)

// Direction selects which adjacency index a query walks.
type Direction int

const (
	// DirectionCallers answers "who calls this" (the backtrace view).
	DirectionCallers Direction = iota
	// DirectionCallees answers "what does this call".
	DirectionCallees
)

// QueryEngine produces depth- and cycle-bounded trees from a built call
// graph, pruned by a name filter: every leaf of the result matches the
// filter, while internal nodes survive purely by having a surviving
// descendant.
type QueryEngine struct {
	graph     *models.CallGraph
	filter    *regexp.Regexp
	maxDepth  int
	direction Direction
}

// NewQueryEngine creates an engine over graph. filter gates which
// terminal nodes are retained; maxDepth bounds recursion depth.
func NewQueryEngine(graph *models.CallGraph, filter *regexp.Regexp, maxDepth int, direction Direction) *QueryEngine {
	return &QueryEngine{graph: graph, filter: filter, maxDepth: maxDepth, direction: direction}
}

type neighbor struct {
	name     string
	fileInfo string
}

// index is the adjacency map the current direction anchors on.
func (q *QueryEngine) index() map[string][]*models.CallerNode {
	if q.direction == DirectionCallees {
		return q.graph.DefinitionsOf
	}
	return q.graph.CallersOf
}

func (q *QueryEngine) neighbors(simple string) []neighbor {
	if q.direction == DirectionCallees {
		var out []neighbor
		seen := make(map[string]bool)
		for _, def := range q.graph.DefinitionsOf[simple] {
			for _, callee := range def.CalleeNames {
				if seen[callee] {
					continue
				}
				seen[callee] = true
				out = append(out, neighbor{name: callee, fileInfo: q.definitionInfo(callee)})
			}
		}
		return out
	}
	callers := q.graph.CallersOf[simple]
	out := make([]neighbor, 0, len(callers))
	for _, caller := range callers {
		out = append(out, neighbor{name: caller.Name, fileInfo: caller.FileInfo})
	}
	return out
}

// definitionInfo resolves the path:line label of a name, trying the
// qualified spelling before the simple alias. Undefined names have none.
func (q *QueryEngine) definitionInfo(name string) string {
	if defs := q.graph.DefinitionsOf[name]; len(defs) > 0 {
		return defs[0].FileInfo
	}
	if defs := q.graph.DefinitionsOf[SimpleName(name)]; len(defs) > 0 {
		return defs[0].FileInfo
	}
	return ""
}

// Query resolves pattern into a result tree. An exact key match anchors
// the query at that name; otherwise pattern is treated as a sub-pattern
// and every matching key, sorted lexicographically, becomes an
// independent subtree of a synthetic root that is emitted even when all
// of its children are pruned away.
func (q *QueryEngine) Query(pattern string) (*models.TreeNode, error) {
	if _, ok := q.index()[pattern]; ok {
		node := q.trace(pattern, q.definitionInfo(pattern), 0, make(map[string]bool))
		if node == nil {
			node = &models.TreeNode{Name: pattern, FileInfo: q.definitionInfo(pattern), Leaf: models.LeafNone}
		}
		return node, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid name pattern %q: %w", pattern, err)
	}
	var keys []string
	for key := range q.index() {
		if re.MatchString(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	root := &models.TreeNode{Name: pattern, Leaf: models.LeafNone}
	for _, key := range keys {
		if child := q.trace(key, q.definitionInfo(key), 1, make(map[string]bool)); child != nil {
			root.Children = append(root.Children, child)
		}
	}
	return root, nil
}

// trace is the DFS state machine. Terminal conditions, in priority
// order: no known neighbor (outmost), depth limit reached (deep), simple
// name already on the recursion path (recursive). A terminal node is
// retained iff its name matches the filter; an expanded node is retained
// iff at least one child survived.
func (q *QueryEngine) trace(name, fileInfo string, depth int, path map[string]bool) *models.TreeNode {
	simple := SimpleName(name)
	node := &models.TreeNode{Name: name, FileInfo: fileInfo}

	next := q.neighbors(simple)
	switch {
	case len(next) == 0:
		node.Leaf = models.LeafOutmost
	case depth >= q.maxDepth:
		node.Leaf = models.LeafDeep
	case path[simple]:
		node.Leaf = models.LeafRecursive
	}
	if node.Leaf != models.LeafNone {
		if q.filter.MatchString(name) {
			return node
		}
		return nil
	}

	path[simple] = true
	for _, nb := range next {
		if child := q.trace(nb.name, nb.fileInfo, depth+1, path); child != nil {
			node.Children = append(node.Children, child)
		}
	}
	delete(path, simple)

	if len(node.Children) == 0 {
		return nil
	}
	return node
}
