package callgraph

import (
	"context"
	"fmt"
	"path/filepath"

	"calltree/callgraph/contracts"
	"calltree/callgraph/models"
)

// Options carries the extraction configuration of one analyzer.
type Options struct {
	Extensions       []string
	IgnoreGlobs      []string
	Blacklist        []string
	TrivialThreshold int
	LengthThreshold  int
	Workers          int
	CacheDir         string
	EnableCache      bool
}

// Analyzer builds the call graph of a source tree: crash recovery, cache
// probe, sanitize, extract, persist, restore. The source files are
// always restored, on success and on error.
type Analyzer struct {
	Root     string
	Searcher contracts.ISearcher
	Options  Options

	cache     *GraphCache
	sanitizer *Sanitizer
}

// NewAnalyzer initializes an analyzer rooted at root.
func NewAnalyzer(root string, searcher contracts.ISearcher, opts Options) (contracts.IAnalyzer, error) {
	if len(opts.Blacklist) == 0 {
		opts.Blacklist = DefaultBlacklist
	}
	analyzer := &Analyzer{
		Root:      root,
		Searcher:  searcher,
		Options:   opts,
		sanitizer: NewSanitizer(opts.Workers),
	}
	if opts.EnableCache {
		cache, err := NewGraphCache(opts.CacheDir)
		if err != nil {
			return nil, err
		}
		analyzer.cache = cache
	}
	return analyzer, nil
}

// Graph returns the call graph for the analyzer's configuration. A cache
// hit short-circuits the sanitize/extract pipeline entirely.
func (a *Analyzer) Graph(ctx context.Context) (*models.CallGraph, error) {
	// A previous run may have died mid-sanitization; put its files back
	// before touching anything else.
	if err := RecoverBackups(a.Root); err != nil {
		return nil, fmt.Errorf("failed to recover sanitizer backups: %w", err)
	}

	signature := Signature(a.Options.Blacklist, a.Options.TrivialThreshold, a.Options.LengthThreshold)
	if a.cache != nil {
		graph, ok, err := a.cache.Load(signature)
		if err != nil {
			return nil, err
		}
		if ok {
			return graph, nil
		}
	}

	listed, err := a.Searcher.ListFiles(a.Options.Extensions, a.Options.IgnoreGlobs)
	if err != nil {
		return nil, err
	}
	// The collaborator reports paths relative to the corpus root.
	files := make([]string, len(listed))
	for i, f := range listed {
		if filepath.IsAbs(f) {
			files[i] = f
		} else {
			files[i] = filepath.Join(a.Root, f)
		}
	}

	if err := a.sanitizer.SanitizeAll(ctx, files); err != nil {
		_ = a.sanitizer.RestoreAll(files)
		return nil, err
	}
	defer func() {
		_ = a.sanitizer.RestoreAll(files)
	}()

	extractor := &Extractor{
		Searcher:         a.Searcher,
		Extensions:       a.Options.Extensions,
		IgnoreGlobs:      a.Options.IgnoreGlobs,
		Blacklist:        a.Options.Blacklist,
		TrivialThreshold: a.Options.TrivialThreshold,
		LengthThreshold:  a.Options.LengthThreshold,
	}
	graph, _, err := extractor.Extract()
	if err != nil {
		return nil, err
	}

	if a.cache != nil {
		if err := a.cache.Store(signature, graph); err != nil {
			return nil, err
		}
	}
	return graph, nil
}

// FindDefinitions locates definitions of name by a direct extraction
// pass over the unsanitized corpus, so the returned body text is the
// original source.
func (a *Analyzer) FindDefinitions(name string) ([]models.FunctionDefinition, error) {
	extractor := &Extractor{
		Searcher:    a.Searcher,
		Extensions:  a.Options.Extensions,
		IgnoreGlobs: a.Options.IgnoreGlobs,
	}
	defs, _, err := extractor.Definitions()
	if err != nil {
		return nil, err
	}
	var out []models.FunctionDefinition
	for _, def := range defs {
		if def.QualifiedName == name || def.SimpleName == name {
			out = append(out, def)
		}
	}
	return out, nil
}

// ClearCache removes all persisted graph cache files.
func (a *Analyzer) ClearCache() error {
	if a.cache == nil {
		return nil
	}
	return a.cache.Clear()
}

// CacheStats reports cache storage and hit/miss statistics.
func (a *Analyzer) CacheStats() (map[string]interface{}, error) {
	if a.cache == nil {
		return map[string]interface{}{"cache_enabled": false}, nil
	}
	stats, err := a.cache.Stats()
	if err != nil {
		return nil, err
	}
	stats["cache_enabled"] = true
	return stats, nil
}
