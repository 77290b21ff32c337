package search

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// IgnoreSet matches paths against a compiled set of ignore globs. rg
// already filters by glob, but its glob dialect and ours are not
// identical; matching again in-process keeps the collaborator contract
// exact regardless of the rg version in use.
type IgnoreSet struct {
	globs []glob.Glob
}

// CompileIgnoreSet compiles patterns into an IgnoreSet. Patterns match
// against the full relative path with '/' as the separator.
func CompileIgnoreSet(patterns []string) (*IgnoreSet, error) {
	set := &IgnoreSet{globs: make([]glob.Glob, 0, len(patterns))}
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore glob %q: %w", p, err)
		}
		set.globs = append(set.globs, g)
	}
	return set, nil
}

// Match reports whether path, or any of its path segments, matches an
// ignore glob.
func (s *IgnoreSet) Match(path string) bool {
	path = strings.ReplaceAll(path, "\\", "/")
	for _, g := range s.globs {
		if g.Match(path) {
			return true
		}
		for _, part := range strings.Split(path, "/") {
			if g.Match(part) {
				return true
			}
		}
	}
	return false
}
