package document

import (
	"context"

	domdoc "github.com/kailas-cloud/searchmap/internal/domain/document"
	"github.com/kailas-cloud/searchmap/internal/domain/mapping"
)

// Writer defines the write side of the storage contract.
type Writer interface {
	Put(ctx context.Context, m *mapping.Mapping, docs ...*domdoc.Native) error
}
