package searchmap

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/searchmap/internal/domain/document"
	"github.com/kailas-cloud/searchmap/internal/domain/mapping"
)

// Index is a holder-based handle on the documents of one mapping.
type Index struct {
	client  *Client
	mapping *mapping.Mapping
}

// NewNamedIndex declares a mapping with a builder instead of struct tags.
// The mapping is built once per client; later calls with the same name
// ignore describe.
func (c *Client) NewNamedIndex(name string, describe func(*MappingBuilder)) (*Index, error) {
	m, err := c.registry.Named(name, describe)
	if err != nil {
		return nil, fmt.Errorf("new index %q: %w", name, err)
	}
	return &Index{client: c, mapping: m}, nil
}

// Name returns the entity name.
func (idx *Index) Name() string { return idx.mapping.Name() }

// Mapping returns the resolved mapping.
func (idx *Index) Mapping() *Mapping { return idx.mapping }

// Ensure creates the engine index if it does not exist (idempotent).
func (idx *Index) Ensure(ctx context.Context) error {
	if err := idx.client.engine.Ensure(ctx, idx.mapping); err != nil {
		return fmt.Errorf("ensure %q: %w", idx.Name(), err)
	}
	return nil
}

// NewHolder returns an empty holder for this index's mapping.
func (idx *Index) NewHolder() *Holder { return document.NewHolder(idx.mapping) }

// PutHolders writes holders created from this index.
func (idx *Index) PutHolders(ctx context.Context, holders ...*Holder) error {
	return idx.client.docSvc.PutBatch(ctx, idx.mapping, holders)
}

// Query compiles pred and proj and returns one page of rows.
func (idx *Index) Query(ctx context.Context, pred *Predicate, proj Projection, page Page) ([]Row, error) {
	return idx.client.searchSvc.Query(ctx, idx.mapping, pred, proj, page)
}

// Count returns the number of documents matching pred.
func (idx *Index) Count(ctx context.Context, pred *Predicate) (int, error) {
	return idx.client.searchSvc.Count(ctx, idx.mapping, pred)
}

// TypedIndex is a generic, schema-first index. The mapping is inferred from
// T's searchmap struct tags, or from T's Describe method.
type TypedIndex[T any] struct {
	*Index
}

// NewIndex creates a typed index handle. The mapping of T is built once per
// client and shared by concurrent callers.
func NewIndex[T any](c *Client) (*TypedIndex[T], error) {
	m, err := mapping.Of[T](c.registry)
	if err != nil {
		var zero T
		return nil, fmt.Errorf("new index %T: %w", zero, err)
	}
	return &TypedIndex[T]{Index: &Index{client: c, mapping: m}}, nil
}

// Put writes one entity.
func (idx *TypedIndex[T]) Put(ctx context.Context, item T) error {
	return idx.PutBatch(ctx, []T{item})
}

// PutBatch writes entities in chunks.
func (idx *TypedIndex[T]) PutBatch(ctx context.Context, items []T) error {
	values := make([]any, len(items))
	for i := range items {
		values[i] = items[i]
	}
	return idx.client.docSvc.PutEntities(ctx, idx.mapping, values...)
}

// Search returns a fluent search builder for this index.
func (idx *TypedIndex[T]) Search() *SearchBuilder[T] {
	return &SearchBuilder[T]{idx: idx}
}
