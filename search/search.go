// Package search wraps ripgrep as the external file-search collaborator:
// listing corpus files by extension and grepping a pattern across them,
// both honoring ignore globs. ripgrep is used because its PCRE2 engine
// supports the recursive balanced-delimiter patterns and, in multiline
// mode, reports every line of a multiline match as its own
// path:line:content triple — exactly the shape the span merge consumes.
package search

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"calltree/callgraph/contracts"
	"calltree/callgraph/models"
)

// ErrNotInstalled reports that the ripgrep binary is missing. The CLI
// maps it to exit code 1.
var ErrNotInstalled = errors.New("ripgrep (rg) is not installed or not on PATH")

// DefaultIgnoreGlobs excludes test, benchmark, build and vendor
// directories from the corpus.
var DefaultIgnoreGlobs = []string{
	"*test*",
	"*benchmark*",
	"build/**",
	"out/**",
	"dist/**",
	"vendor/**",
	"third_party/**",
	"node_modules/**",
}

// RipgrepSearcher shells out to rg rooted at a fixed directory. The
// compiled ignore set is memoized across calls, keyed by the pattern
// list, so repeated searches with the same configuration compile the
// globs once.
type RipgrepSearcher struct {
	Root string

	mu        sync.Mutex
	ignoreKey string
	ignoreSet *IgnoreSet
}

// NewRipgrepSearcher verifies rg is available and returns a searcher
// rooted at root.
func NewRipgrepSearcher(root string) (contracts.ISearcher, error) {
	if _, err := exec.LookPath("rg"); err != nil {
		return nil, ErrNotInstalled
	}
	return &RipgrepSearcher{Root: root}, nil
}

// ListFiles returns the corpus files matching the extension set,
// excluding paths matching any ignore glob.
func (s *RipgrepSearcher) ListFiles(extensions []string, ignoreGlobs []string) ([]string, error) {
	args := []string{"--files"}
	args = append(args, globArgs(extensions, ignoreGlobs)...)
	out, err := s.run(args)
	if err != nil {
		return nil, err
	}
	var files []string
	ignore, err := s.ignoreSetFor(ignoreGlobs)
	if err != nil {
		return nil, err
	}
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if line == "" || ignore.Match(line) {
			continue
		}
		files = append(files, line)
	}
	return files, nil
}

// Grep runs pattern across the filtered file set and returns one triple
// per matching line, consecutive line numbers for multiline matches. A
// result line that cannot be decomposed into path/line/content is an
// error.
func (s *RipgrepSearcher) Grep(pattern string, extensions []string, ignoreGlobs []string) ([]models.GrepMatch, error) {
	args := []string{"--pcre2", "--multiline", "--vimgrep", "--no-heading", "-e", pattern}
	args = append(args, globArgs(extensions, ignoreGlobs)...)
	out, err := s.run(args)
	if err != nil {
		return nil, err
	}

	ignore, err := s.ignoreSetFor(ignoreGlobs)
	if err != nil {
		return nil, err
	}
	var matches []models.GrepMatch
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if line == "" {
			continue
		}
		// vimgrep format: path:line:column:content
		parts := strings.SplitN(line, ":", 4)
		if len(parts) != 4 {
			return nil, fmt.Errorf("malformed grep result line: %q", line)
		}
		lineNo, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("malformed grep result line: %q", line)
		}
		if ignore.Match(parts[0]) {
			continue
		}
		matches = append(matches, models.GrepMatch{Path: parts[0], Line: lineNo, Content: parts[3]})
	}
	return matches, nil
}

// ignoreSetFor returns the compiled ignore set for patterns, reusing
// the previous compilation when the pattern list is unchanged.
func (s *RipgrepSearcher) ignoreSetFor(patterns []string) (*IgnoreSet, error) {
	key := strings.Join(patterns, "\x00")
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ignoreSet != nil && s.ignoreKey == key {
		return s.ignoreSet, nil
	}
	set, err := CompileIgnoreSet(patterns)
	if err != nil {
		return nil, err
	}
	s.ignoreKey, s.ignoreSet = key, set
	return set, nil
}

// run executes rg and returns stdout. ripgrep exits 1 for "no matches",
// which is an empty result here, not an error.
func (s *RipgrepSearcher) run(args []string) (string, error) {
	cmd := exec.Command("rg", args...)
	cmd.Dir = s.Root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", nil
		}
		return "", fmt.Errorf("rg %s failed: %v: %s", strings.Join(args, " "), err, stderr.String())
	}
	return stdout.String(), nil
}

func globArgs(extensions []string, ignoreGlobs []string) []string {
	var args []string
	if len(extensions) > 0 {
		args = append(args, "--glob", fmt.Sprintf("*.{%s}", strings.Join(extensions, ",")))
	}
	for _, g := range ignoreGlobs {
		args = append(args, "--glob", "!"+g)
	}
	return args
}
