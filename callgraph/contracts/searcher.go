package contracts

import "calltree/callgraph/models"

// ISearcher is the contract of the external file-search collaborator.
// ListFiles returns repository files matching the extension set while
// honoring ignore globs. Grep runs a regex across the filtered file set
// and returns one match per line; a multiline match is reported as one
// entry per participating line, with consecutive line numbers.
type ISearcher interface {
	ListFiles(extensions []string, ignoreGlobs []string) ([]string, error)
	Grep(pattern string, extensions []string, ignoreGlobs []string) ([]models.GrepMatch, error)
}
