// Package db defines the search engine boundary. Engines receive compiled
// native queries and flat documents; they never see predicates or entity
// types.
package db

import (
	"context"

	"github.com/kailas-cloud/searchmap/internal/domain/document"
	"github.com/kailas-cloud/searchmap/internal/domain/mapping"
	"github.com/kailas-cloud/searchmap/internal/domain/query"
)

// Engine is implemented by every search backend.
type Engine interface {
	Pinger
	// Ensure creates the index for m if it does not exist yet.
	Ensure(ctx context.Context, m *mapping.Mapping) error
	// Put indexes docs in the index of m. Each document gets a fresh id.
	Put(ctx context.Context, m *mapping.Mapping, docs ...*document.Native) error
	// Search runs one blocking round trip and returns the stored fields
	// listed in req.Fields for each hit.
	Search(ctx context.Context, m *mapping.Mapping, req SearchRequest) ([]*document.Native, error)
	// Count returns the number of documents matching q.
	Count(ctx context.Context, m *mapping.Mapping, q *query.Node) (int, error)
	Close() error
}

// Pinger checks engine connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SearchRequest is one page of a compiled query.
type SearchRequest struct {
	Query  *query.Node
	Fields []string
	Offset int
	Limit  int
}
