package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/canonical/docsearch/internal/config"
)

// ErrNoBackend is returned when the configured backend is "none".
var ErrNoBackend = errors.New("search index disabled")

// Indexer abstracts search indexing so the pipeline package does not depend
// on a specific search implementation.
type Indexer interface {
	IndexRecord(ctx context.Context, doc Document) error
	Close() error
}

// Searcher queries an index written by an Indexer.
type Searcher interface {
	Search(ctx context.Context, query string, module string, limit int, offset int) (SearchResponse, error)
	Close() error
}

// Document is one search record to be indexed. A nil Description is
// stored as absent, as in the record it came from.
type Document struct {
	Name        string
	Description *string
	Location    string
	SearchKeys  []string
	Module      string
}

type Result struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location"`
	Module      string `json:"module"`
}

type SearchResponse struct {
	Total   uint64   `json:"total"`
	Results []Result `json:"results"`
}

const defaultLimit = 50

// NewIndexer opens the index of the given backend at path, creating it
// when missing. Documents indexed for a module replace that module's
// previous documents; other modules are kept.
func NewIndexer(backend config.Backend, path string) (Indexer, error) {
	switch backend {
	case config.BackendSQLite:
		return NewSQLiteIndexer(path)
	case config.BackendBleve:
		return NewBleveIndexer(path)
	case config.BackendNone:
		return nil, ErrNoBackend
	}
	return nil, fmt.Errorf("unknown search backend %q", backend)
}

// NewSearcher opens the index of the given backend at path for querying.
func NewSearcher(backend config.Backend, path string) (Searcher, error) {
	switch backend {
	case config.BackendSQLite:
		return NewSQLiteSearcher(path)
	case config.BackendBleve:
		return NewBleveSearcher(path)
	case config.BackendNone:
		return nil, ErrNoBackend
	}
	return nil, fmt.Errorf("unknown search backend %q", backend)
}
