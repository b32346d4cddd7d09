package search

import (
	"context"

	"github.com/kailas-cloud/searchmap/internal/db"
	"github.com/kailas-cloud/searchmap/internal/domain/document"
	"github.com/kailas-cloud/searchmap/internal/domain/mapping"
	"github.com/kailas-cloud/searchmap/internal/domain/query"
)

// Engine defines the read side of the storage contract.
type Engine interface {
	Search(ctx context.Context, m *mapping.Mapping, req db.SearchRequest) ([]*document.Native, error)
	Count(ctx context.Context, m *mapping.Mapping, q *query.Node) (int, error)
}
