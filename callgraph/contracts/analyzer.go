package contracts

import (
	"context"

	"calltree/callgraph/models"
)

// IAnalyzer builds and serves the call graph of the source tree.
type IAnalyzer interface {
	// Graph returns the call graph, loading it from the on-disk cache
	// when the extraction signature is unchanged and rebuilding it from
	// the corpus otherwise.
	Graph(ctx context.Context) (*models.CallGraph, error)

	// FindDefinitions locates the full definition text of every function
	// whose qualified or simple name equals name.
	FindDefinitions(name string) ([]models.FunctionDefinition, error)

	// ClearCache removes all persisted graph cache files.
	ClearCache() error

	// CacheStats reports cache storage and hit/miss statistics.
	CacheStats() (map[string]interface{}, error)
}
