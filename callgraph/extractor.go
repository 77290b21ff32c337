package callgraph

import (
	"fmt"
	"strings"

	"calltree/callgraph/contracts"
	"calltree/callgraph/models"
)

// DefaultBlacklist is the configured part of the ignore set: language
// keywords, casts and assert/log-like names that read as call
// expressions but carry no call-graph information.
var DefaultBlacklist = []string{
	"if", "for", "while", "switch", "return", "sizeof", "defined",
	"new", "delete", "typeid", "decltype", "alignof", "noexcept",
	"static_cast", "dynamic_cast", "reinterpret_cast", "const_cast",
	"assert", "ASSERT", "static_assert",
	"printf", "fprintf", "sprintf", "snprintf",
	"LOG", "DLOG", "VLOG", "CHECK", "DCHECK",
}

// ExtractStats carries diagnostic counters from one extraction pass.
type ExtractStats struct {
	LinesMatched int
	Spans        int
	Definitions  int
}

// Extractor turns grep results from the search collaborator into a call
// graph, applying frequency- and length-based noise filtering.
type Extractor struct {
	Searcher         contracts.ISearcher
	Extensions       []string
	IgnoreGlobs      []string
	Blacklist        []string
	TrivialThreshold int
	LengthThreshold  int
}

type span struct {
	Path string
	Line int
	Text string
}

// mergeSpans glues file-adjacent grep lines back into contiguous spans:
// a line continues the previous span when it comes from the same file at
// the next line number.
func mergeSpans(matches []models.GrepMatch) []span {
	var spans []span
	for _, m := range matches {
		if n := len(spans); n > 0 {
			last := &spans[n-1]
			if last.Path == m.Path && m.Line == last.Line+strings.Count(last.Text, "\n")+1 {
				last.Text += "\n" + m.Content
				continue
			}
		}
		spans = append(spans, span{Path: m.Path, Line: m.Line, Text: m.Content})
	}
	return spans
}

// Definitions runs the definition grep and returns every span the
// capturing matcher accepts, with the merged span text as Body. Spans
// that yield no qualified name are dropped.
func (e *Extractor) Definitions() ([]models.FunctionDefinition, ExtractStats, error) {
	matches, err := e.Searcher.Grep(FunctionDefPattern(), e.Extensions, e.IgnoreGlobs)
	if err != nil {
		return nil, ExtractStats{}, err
	}
	spans := mergeSpans(matches)
	stats := ExtractStats{LinesMatched: len(matches), Spans: len(spans)}

	var defs []models.FunctionDefinition
	for _, sp := range spans {
		m, ok := MatchFunctionDef(sp.Text)
		if !ok {
			continue
		}
		defs = append(defs, models.FunctionDefinition{
			QualifiedName: m.Name,
			SimpleName:    SimpleName(m.Name),
			Path:          sp.Path,
			Line:          sp.Line,
			Body:          sp.Text[m.Start:m.End],
			NameEnd:       m.NameEnd - m.Start,
		})
	}
	stats.Definitions = len(defs)
	return defs, stats, nil
}

// Extract builds the filtered call graph from the whole corpus.
func (e *Extractor) Extract() (*models.CallGraph, ExtractStats, error) {
	defs, stats, err := e.Definitions()
	if err != nil {
		return nil, stats, err
	}

	// Corpus-wide callee frequency; a name called more often than the
	// trivial threshold is noise.
	callees := make([][]string, len(defs))
	frequency := make(map[string]int)
	for i, def := range defs {
		callees[i] = ExtractCalls(def.Body[def.NameEnd:])
		for _, name := range callees[i] {
			frequency[name]++
		}
	}

	ignore := make(map[string]bool, len(e.Blacklist))
	for _, name := range e.Blacklist {
		ignore[name] = true
	}
	for name, count := range frequency {
		if count > e.TrivialThreshold {
			ignore[name] = true
		}
	}
	isIgnored := func(name string) bool {
		return ignore[name] || len(name) < e.LengthThreshold
	}

	graph := models.NewCallGraph()
	for i, def := range defs {
		if isIgnored(def.QualifiedName) || isIgnored(def.SimpleName) {
			continue
		}
		node := &models.CallerNode{
			Name:       def.QualifiedName,
			SimpleName: def.SimpleName,
			FileInfo:   fmt.Sprintf("%s:%d", def.Path, def.Line),
		}
		seen := make(map[string]bool)
		for _, callee := range callees[i] {
			if seen[callee] || isIgnored(callee) {
				continue
			}
			seen[callee] = true
			node.CalleeNames = append(node.CalleeNames, callee)
		}
		// Simple-name aliases, skipped when the simple spelling is
		// already present as a qualified entry.
		for _, callee := range node.CalleeNames {
			simple := SimpleName(callee)
			if simple == callee || seen[simple] || isIgnored(simple) {
				continue
			}
			seen[simple] = true
			node.CalleeSimpleNames = append(node.CalleeSimpleNames, simple)
		}
		graph.AddDefinition(node)
	}
	return graph, stats, nil
}
