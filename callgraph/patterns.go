package callgraph

import (
	"regexp"
	"strings"
)

// The matchers in this file are heuristic: macros, preprocessor-conditional
// code and unusual formatting may mis-parse. Go's regexp package has no
// recursive patterns, so balanced-delimiter matching is done with an
// explicit depth counter over a single left-to-right scan. The search
// collaborator speaks PCRE2, which does support recursion, so the pattern
// handed to it is built from self-referential named groups instead.

const (
	identifier = `[A-Za-z_]\w*`
	// qualifiedName matches identifier chains separated by the scope
	// operator, optionally prefixed by it, with an optional destructor
	// tilde on the trailing segment.
	qualifiedName = `(?:::)?(?:` + identifier + `::)*~?` + identifier
)

// PCRE2 forms of the nested-delimiter matchers, usable only by the
// collaborator. Each accepts arbitrary nesting of its delimiter pair.
const (
	NestedParensPattern = `(?<parens>\((?:[^()]|(?&parens))*\))`
	NestedBracesPattern = `(?<braces>\{(?:[^{}]|(?&braces))*\})`
	NestedAnglesPattern = `(?<angles><(?:[^<>]|(?&angles))*>)`
)

// FunctionDefPattern returns the multiline PCRE2 pattern that recognizes
// a function definition: optional leading qualifiers, a qualified name,
// a balanced parameter list, an optional constructor-initializer-list
// suffix, and a balanced brace body. The trailing brace group is what
// separates a definition from a bare declaration.
func FunctionDefPattern() string {
	return `^[ \t]*(?:[\w:~]+[ \t&*]+)*` +
		`(` + qualifiedName + `)[ \t\n]*` +
		NestedParensPattern + `[ \t\n]*` +
		`(?:const[ \t\n]*)?` +
		`(?::[^{;]*)?` +
		NestedBracesPattern
}

var (
	defNameRe  = regexp.MustCompile(qualifiedName)
	callExprRe = regexp.MustCompile(`(` + qualifiedName + `)\s*\(`)
)

// BalancedSpan returns the index just past the balanced delimiter group
// opening at s[start], or -1 when s[start] is not the open delimiter or
// the group never closes.
func BalancedSpan(s string, open, close byte, start int) int {
	if start >= len(s) || s[start] != open {
		return -1
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

// DefMatch locates one function definition inside a merged span.
// Offsets are relative to the scanned text; NameEnd marks where callee
// scanning should start so the definition's own signature is not counted
// as a call.
type DefMatch struct {
	Name    string
	Start   int
	NameEnd int
	End     int
}

// MatchFunctionDef is the capturing form of the definition matcher: it
// scans s for the first qualified name followed by a balanced parameter
// list, an optional trailing const, an optional constructor-initializer
// list, and a balanced brace body.
func MatchFunctionDef(s string) (DefMatch, bool) {
	for _, loc := range defNameRe.FindAllStringIndex(s, -1) {
		i := skipSpace(s, loc[1])
		if i >= len(s) || s[i] != '(' {
			continue
		}
		parenEnd := BalancedSpan(s, '(', ')', i)
		if parenEnd < 0 {
			continue
		}
		j := skipSpace(s, parenEnd)
		if strings.HasPrefix(s[j:], "const") {
			j = skipSpace(s, j+len("const"))
		}
		if j < len(s) && s[j] == ':' && !strings.HasPrefix(s[j:], "::") {
			j = skipInitializerList(s, j+1)
		}
		if j >= len(s) || s[j] != '{' {
			continue
		}
		braceEnd := BalancedSpan(s, '{', '}', j)
		if braceEnd < 0 {
			continue
		}
		return DefMatch{
			Name:    s[loc[0]:loc[1]],
			Start:   loc[0],
			NameEnd: loc[1],
			End:     braceEnd,
		}, true
	}
	return DefMatch{}, false
}

// skipInitializerList consumes a constructor-initializer list
// (": id(args), id(args), ...") up to the opening body brace.
func skipInitializerList(s string, i int) int {
	for i < len(s) && s[i] != '{' && s[i] != ';' {
		if s[i] == '(' {
			end := BalancedSpan(s, '(', ')', i)
			if end < 0 {
				return i
			}
			i = end
			continue
		}
		i++
	}
	return i
}

// ExtractCalls enumerates every call expression in text, including calls
// nested inside call arguments: f(g(h(x))) yields f, g and h. The
// recursion re-scans the substring consumed after each matched
// identifier, so nesting depth is bounded only by input size.
func ExtractCalls(text string) []string {
	var names []string
	extractCallsInto(text, &names)
	return names
}

func extractCallsInto(text string, out *[]string) {
	loc := callExprRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return
	}
	*out = append(*out, text[loc[2]:loc[3]])
	extractCallsInto(text[loc[3]:], out)
}

// SimpleName returns the trailing identifier segment of a qualified name.
func SimpleName(name string) string {
	name = strings.TrimPrefix(name, "::")
	if idx := strings.LastIndex(name, "::"); idx >= 0 {
		return name[idx+2:]
	}
	return name
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	return i
}
