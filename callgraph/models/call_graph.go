package models

// GrepMatch is one line returned by the search collaborator, decomposed
// from a path:line:content triple.
type GrepMatch struct {
	Path    string
	Line    int
	Content string
}

// FunctionDefinition is one matched signature+body span. Immutable after
// extraction. NameEnd is the offset within Body just past the qualified
// name; callee scanning starts there so the definition's own signature
// is not counted as a call.
type FunctionDefinition struct {
	QualifiedName string
	SimpleName    string
	Path          string
	Line          int
	Body          string
	NameEnd       int
}

// CallerNode records one function definition and the filtered set of
// names it calls. CalleeSimpleNames carries the simple-name aliases of
// CalleeNames entries whose simple form is not itself already listed.
type CallerNode struct {
	Name              string
	SimpleName        string
	FileInfo          string
	CalleeNames       []string
	CalleeSimpleNames []string
}

// CallGraph is the bidirectional call index. Both maps are keyed by
// qualified and simple names; entries are append-only and the graph is
// immutable once built. A name present in CallersOf but absent from
// DefinitionsOf is an undefined/external function.
type CallGraph struct {
	DefinitionsOf map[string][]*CallerNode
	CallersOf     map[string][]*CallerNode
}

// NewCallGraph creates an empty call graph.
func NewCallGraph() *CallGraph {
	return &CallGraph{
		DefinitionsOf: make(map[string][]*CallerNode),
		CallersOf:     make(map[string][]*CallerNode),
	}
}

// AddDefinition files the node under its qualified name, and under its
// simple name when that differs. Callee indexing follows the same
// de-duplication rule via the node's two callee lists.
func (g *CallGraph) AddDefinition(node *CallerNode) {
	g.DefinitionsOf[node.Name] = append(g.DefinitionsOf[node.Name], node)
	if node.SimpleName != node.Name {
		g.DefinitionsOf[node.SimpleName] = append(g.DefinitionsOf[node.SimpleName], node)
	}
	for _, callee := range node.CalleeNames {
		g.CallersOf[callee] = append(g.CallersOf[callee], node)
	}
	for _, callee := range node.CalleeSimpleNames {
		g.CallersOf[callee] = append(g.CallersOf[callee], node)
	}
}

// LeafKind classifies why a query tree node was not expanded further.
type LeafKind int

const (
	LeafNone      LeafKind = iota // internal node, or synthetic root
	LeafOutmost                   // no known caller/callee
	LeafDeep                      // depth limit reached
	LeafRecursive                 // name already on the recursion path
)

// TreeNode is one node of a query result tree. Built fresh per query,
// never persisted.
type TreeNode struct {
	Name     string
	FileInfo string
	Children []*TreeNode
	Leaf     LeafKind
}
