package searchmap

import (
	"context"
	"errors"
	"fmt"
)

// SearchBuilder is a fluent builder for typed queries.
type SearchBuilder[T any] struct {
	idx *TypedIndex[T]

	where  *Predicate
	props  []string
	offset int
	limit  int
}

// Where adds a predicate; repeated calls are combined with And.
func (b *SearchBuilder[T]) Where(p *Predicate) *SearchBuilder[T] {
	if b.where == nil {
		b.where = p
	} else {
		b.where = And(b.where, p)
	}
	return b
}

// Select sets the properties read by Values.
func (b *SearchBuilder[T]) Select(props ...string) *SearchBuilder[T] {
	b.props = append([]string(nil), props...)
	return b
}

// Offset skips the first n results.
func (b *SearchBuilder[T]) Offset(n int) *SearchBuilder[T] {
	b.offset = n
	return b
}

// Limit sets the maximum number of results.
func (b *SearchBuilder[T]) Limit(n int) *SearchBuilder[T] {
	b.limit = n
	return b
}

func (b *SearchBuilder[T]) page() Page {
	return Page{Offset: b.offset, Limit: b.limit}
}

// Do executes the search and decodes each hit into T.
func (b *SearchBuilder[T]) Do(ctx context.Context) ([]T, error) {
	holders, err := b.Holders(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]T, len(holders))
	for i, h := range holders {
		if err := h.Unbind(&items[i]); err != nil {
			return nil, fmt.Errorf("decode hit %d: %w", i, err)
		}
	}
	return items, nil
}

// Holders executes the search and returns the hits as holders.
func (b *SearchBuilder[T]) Holders(ctx context.Context) ([]*Holder, error) {
	rows, err := b.idx.Query(ctx, b.where, Whole(), b.page())
	if err != nil {
		return nil, err
	}
	holders := make([]*Holder, len(rows))
	for i, r := range rows {
		holders[i] = r.Holder
	}
	return holders, nil
}

// Values executes the search and returns the selected property values per
// hit, nil for absent fields.
func (b *SearchBuilder[T]) Values(ctx context.Context) ([][]any, error) {
	if len(b.props) == 0 {
		return nil, errors.New("searchmap: Values requires Select")
	}
	rows, err := b.idx.Query(ctx, b.where, Properties(b.props...), b.page())
	if err != nil {
		return nil, err
	}
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = r.Values
	}
	return out, nil
}

// Count returns the number of documents matching the predicate, ignoring
// paging.
func (b *SearchBuilder[T]) Count(ctx context.Context) (int, error) {
	return b.idx.Count(ctx, b.where)
}
