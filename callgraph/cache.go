package callgraph

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/zeebo/xxh3"

	"calltree/callgraph/models"
)

// Signature builds the canonical cache key of one extraction
// configuration: the sorted ignore-set blacklist joined with the two
// numeric thresholds. Any change to it invalidates the cache.
func Signature(blacklist []string, trivialThreshold, lengthThreshold int) string {
	sorted := append([]string(nil), blacklist...)
	sort.Strings(sorted)
	return fmt.Sprintf("%s|trivial=%d|length=%d", strings.Join(sorted, ","), trivialThreshold, lengthThreshold)
}

// GraphCache persists a built call graph keyed by its extraction
// signature: a plain-text signature file plus one gob file per adjacency
// index, three files per threshold pair.
type GraphCache struct {
	dir   string
	mutex sync.RWMutex
	stats *CacheStats
}

// CacheStats tracks cache performance counters.
type CacheStats struct {
	TotalRequests int64
	CacheHits     int64
	CacheMisses   int64
	LastResetTime time.Time
	mutex         sync.RWMutex
}

// NewGraphCache creates a cache rooted at cacheDir, defaulting to
// ".calltree" under the current working directory.
func NewGraphCache(cacheDir string) (*GraphCache, error) {
	if cacheDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current working directory: %w", err)
		}
		cacheDir = filepath.Join(cwd, ".calltree")
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &GraphCache{
		dir:   cacheDir,
		stats: &CacheStats{LastResetTime: time.Now()},
	}, nil
}

// paths derives the three cache file paths from the signature hash.
func (c *GraphCache) paths(signature string) (sigPath, defsPath, callersPath string) {
	base := fmt.Sprintf("%016x", xxh3.HashString(signature))
	return filepath.Join(c.dir, base+".sig"),
		filepath.Join(c.dir, base+".definitions.gob"),
		filepath.Join(c.dir, base+".callers.gob")
}

// Load returns the cached graph for signature when the persisted
// signature matches and both graph files parse, refreshing their
// timestamps. A missing cache is (nil, false, nil); a present but
// unparsable cache file is an error, since cache corruption must not be
// silently tolerated.
func (c *GraphCache) Load(signature string) (*models.CallGraph, bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	sigPath, defsPath, callersPath := c.paths(signature)
	persisted, err := os.ReadFile(sigPath)
	if os.IsNotExist(err) {
		c.recordMiss()
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache signature: %w", err)
	}
	if string(persisted) != signature {
		c.recordMiss()
		return nil, false, nil
	}

	graph := models.NewCallGraph()
	if err := decodeGraphFile(defsPath, &graph.DefinitionsOf); err != nil {
		return nil, false, err
	}
	if err := decodeGraphFile(callersPath, &graph.CallersOf); err != nil {
		return nil, false, err
	}

	now := time.Now()
	for _, p := range []string{sigPath, defsPath, callersPath} {
		_ = os.Chtimes(p, now, now)
	}
	c.recordHit()
	return graph, true, nil
}

func decodeGraphFile(path string, index *map[string][]*models.CallerNode) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("cache graph file missing: %s", path)
	}
	if err != nil {
		return fmt.Errorf("failed to open cache graph file: %w", err)
	}
	defer f.Close()
	if err := gob.NewDecoder(f).Decode(index); err != nil {
		return fmt.Errorf("failed to decode cache graph file %s: %w", path, err)
	}
	if *index == nil {
		*index = make(map[string][]*models.CallerNode)
	}
	return nil
}

// Store persists the signature and both serialized adjacency indices.
func (c *GraphCache) Store(signature string, graph *models.CallGraph) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	sigPath, defsPath, callersPath := c.paths(signature)
	if err := encodeGraphFile(defsPath, graph.DefinitionsOf); err != nil {
		return err
	}
	if err := encodeGraphFile(callersPath, graph.CallersOf); err != nil {
		return err
	}
	if err := os.WriteFile(sigPath, []byte(signature), 0644); err != nil {
		return fmt.Errorf("failed to write cache signature: %w", err)
	}
	return nil
}

func encodeGraphFile(path string, index map[string][]*models.CallerNode) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create cache graph file: %w", err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(index); err != nil {
		return fmt.Errorf("failed to encode cache graph file %s: %w", path, err)
	}
	return nil
}

// Clear removes every cache file in the cache directory.
func (c *GraphCache) Clear() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("failed to read cache directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil {
			return fmt.Errorf("failed to delete cache file: %w", err)
		}
	}
	return nil
}

// Stats returns storage and performance statistics.
func (c *GraphCache) Stats() (map[string]interface{}, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}
	var totalSize int64
	files := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if info, err := entry.Info(); err == nil {
			totalSize += info.Size()
		}
		files++
	}

	stats := map[string]interface{}{
		"cache_dir":   c.dir,
		"cache_files": files,
		"total_size":  totalSize,
	}
	c.stats.mutex.RLock()
	stats["total_requests"] = c.stats.TotalRequests
	stats["cache_hits"] = c.stats.CacheHits
	stats["cache_misses"] = c.stats.CacheMisses
	if c.stats.TotalRequests > 0 {
		stats["hit_rate"] = float64(c.stats.CacheHits) / float64(c.stats.TotalRequests) * 100
	}
	c.stats.mutex.RUnlock()
	return stats, nil
}

func (c *GraphCache) recordHit() {
	c.stats.mutex.Lock()
	defer c.stats.mutex.Unlock()
	c.stats.TotalRequests++
	c.stats.CacheHits++
}

func (c *GraphCache) recordMiss() {
	c.stats.mutex.Lock()
	defer c.stats.mutex.Unlock()
	c.stats.TotalRequests++
	c.stats.CacheMisses++
}
