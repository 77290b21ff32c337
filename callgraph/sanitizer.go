package callgraph

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"
)

// BackupSuffix is the deterministic suffix under which every file's
// original bytes are preserved before sanitization. Crash recovery scans
// for leftovers by this suffix.
const BackupSuffix = ".calltree.orig"

// DefaultWorkers is the number of disjoint file groups sanitized
// concurrently.
const DefaultWorkers = 10

var (
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	stringLitRe    = regexp.MustCompile(`"(?:\\.|[^"\\])*"`)
	charLitRe      = regexp.MustCompile(`'(?:\\.|[^'\\])'`)
	lineCommentRe  = regexp.MustCompile(`//[^\n]*`)
	quotedBracket  = regexp.MustCompile(`'[(){}<>\[\]]'`)
	lonelyLessRe   = regexp.MustCompile(`(\s)<(\s)`)
)

// blankMatch replaces every non-newline character of a match with a
// space, so line numbers reported against the sanitized file map back to
// the original.
func blankMatch(match string) string {
	out := []byte(match)
	for i := range out {
		if out[i] != '\n' {
			out[i] = ' '
		}
	}
	return string(out)
}

// Sanitize rewrites source text so the delimiter matchers cannot be
// fooled by strings, comments or comparison operators. The passes run in
// a fixed order and every replacement preserves the line count.
func Sanitize(content string) string {
	content = blockCommentRe.ReplaceAllStringFunc(content, blankMatch)
	content = stringLitRe.ReplaceAllStringFunc(content, blankMatch)
	content = charLitRe.ReplaceAllStringFunc(content, blankMatch)
	content = lineCommentRe.ReplaceAllStringFunc(content, blankMatch)
	content = quotedBracket.ReplaceAllStringFunc(content, blankMatch)
	// Left-shift and comparison tokens starting with '<' would otherwise
	// pair up with template angle brackets.
	content = strings.ReplaceAll(content, "<<=", "  =")
	content = strings.ReplaceAll(content, "<<", "  ")
	content = strings.ReplaceAll(content, "<=", " =")
	content = lonelyLessRe.ReplaceAllString(content, "$1,$2")
	return content
}

// Sanitizer overwrites source files with their sanitized form, keeping a
// backup of each original so restoration is always possible.
type Sanitizer struct {
	Workers int
}

// NewSanitizer creates a sanitizer running at most workers concurrent
// file groups (DefaultWorkers when workers is not positive).
func NewSanitizer(workers int) *Sanitizer {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Sanitizer{Workers: workers}
}

// SanitizeFile backs path up under BackupSuffix and overwrites it with
// sanitized content. The backup rename happens strictly before any
// mutation of the working file.
func SanitizeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %s, error: %w", path, err)
	}
	if err := os.Rename(path, path+BackupSuffix); err != nil {
		return fmt.Errorf("failed to back up file: %s, error: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(Sanitize(string(data))), 0644); err != nil {
		return fmt.Errorf("failed to write sanitized file: %s, error: %w", path, err)
	}
	return nil
}

// RestoreFile renames the backup back over the working file. Calling it
// for a path without a backup is a no-op, so restoration is idempotent.
func RestoreFile(path string) error {
	backup := path + BackupSuffix
	if _, err := os.Stat(backup); os.IsNotExist(err) {
		return nil
	}
	if err := os.Rename(backup, path); err != nil {
		return fmt.Errorf("failed to restore file: %s, error: %w", path, err)
	}
	return nil
}

// SanitizeAll partitions paths into at most s.Workers disjoint groups and
// sanitizes each group in its own worker. Workers share no mutable state;
// the call blocks until every worker has finished and fails on the first
// worker error.
func (s *Sanitizer) SanitizeAll(ctx context.Context, paths []string) error {
	group, ctx := errgroup.WithContext(ctx)
	for _, part := range partition(paths, s.Workers) {
		part := part
		group.Go(func() error {
			for _, path := range part {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := SanitizeFile(path); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return group.Wait()
}

// RestoreAll restores every path, continuing past individual failures and
// returning the first error encountered.
func (s *Sanitizer) RestoreAll(paths []string) error {
	var firstErr error
	for _, path := range paths {
		if err := RestoreFile(path); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// RecoverBackups walks root and restores any sanitizer backups left
// behind by a previous interrupted run.
func RecoverBackups(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, BackupSuffix) {
			return nil
		}
		return os.Rename(path, strings.TrimSuffix(path, BackupSuffix))
	})
}

// partition splits paths into at most n disjoint groups of near-equal
// size, fewer when there are fewer paths than groups.
func partition(paths []string, n int) [][]string {
	if len(paths) == 0 {
		return nil
	}
	if n > len(paths) {
		n = len(paths)
	}
	groups := make([][]string, 0, n)
	size := (len(paths) + n - 1) / n
	for start := 0; start < len(paths); start += size {
		end := start + size
		if end > len(paths) {
			end = len(paths)
		}
		groups = append(groups, paths[start:end])
	}
	return groups
}
