// Package bleve implements db.Engine on in-memory bleve indexes, one per
// mapping. Documents are indexed field by field with the policy recorded in
// the native document, bypassing bleve's own mapping layer.
package bleve

import (
	"context"
	"fmt"
	"sync"

	blevesearch "github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis"
	bdoc "github.com/blevesearch/bleve/v2/document"
	index "github.com/blevesearch/bleve_index_api"
	"github.com/google/uuid"

	"github.com/kailas-cloud/searchmap/internal/db"
	"github.com/kailas-cloud/searchmap/internal/domain/document"
	"github.com/kailas-cloud/searchmap/internal/domain/field"
	"github.com/kailas-cloud/searchmap/internal/domain/mapping"
	"github.com/kailas-cloud/searchmap/internal/domain/query"
)

// Compile-time check: Engine implements db.Engine.
var _ db.Engine = (*Engine)(nil)

// Engine keeps one in-memory bleve index per entity name.
type Engine struct {
	mu      sync.RWMutex
	indexes map[string]blevesearch.Index
	owners  db.Owners
	closed  bool
}

// New creates an empty engine.
func New() *Engine {
	return &Engine{indexes: make(map[string]blevesearch.Index)}
}

// Ensure creates the index for m if it does not exist yet.
func (e *Engine) Ensure(_ context.Context, m *mapping.Mapping) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return &db.Error{Op: db.OpEnsure, Err: db.ErrClosed}
	}
	if err := e.owners.Claim(m); err != nil {
		return &db.Error{Op: db.OpEnsure, Err: err}
	}
	if _, ok := e.indexes[m.Name()]; ok {
		return nil
	}
	idx, err := blevesearch.NewMemOnly(blevesearch.NewIndexMapping())
	if err != nil {
		return &db.Error{Op: db.OpEnsure, Err: err}
	}
	e.indexes[m.Name()] = idx
	return nil
}

// Put indexes docs in one batch.
func (e *Engine) Put(_ context.Context, m *mapping.Mapping, docs ...*document.Native) error {
	idx, err := e.index(db.OpPut, m)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}

	b := idx.NewBatch()
	for _, n := range docs {
		id, err := uuid.NewV7()
		if err != nil {
			return &db.Error{Op: db.OpPut, Err: err}
		}
		if err := b.IndexAdvanced(toBleveDocument(id.String(), m, n)); err != nil {
			return &db.Error{Op: db.OpPut, Err: err}
		}
	}
	if err := idx.Batch(b); err != nil {
		return &db.Error{Op: db.OpPut, Err: err}
	}
	return nil
}

// Search runs req and returns the requested stored fields of each hit,
// ordered by document id (insertion order).
func (e *Engine) Search(ctx context.Context, m *mapping.Mapping, req db.SearchRequest) ([]*document.Native, error) {
	idx, err := e.index(db.OpSearch, m)
	if err != nil {
		return nil, err
	}
	q, err := toBleve(req.Query)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	sr := blevesearch.NewSearchRequestOptions(q, req.Limit, req.Offset, false)
	sr.Fields = req.Fields
	sr.SortBy([]string{"_id"})

	res, err := idx.SearchInContext(ctx, sr)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	out := make([]*document.Native, 0, len(res.Hits))
	for _, hit := range res.Hits {
		out = append(out, fromHit(m, req.Fields, hit.Fields))
	}
	return out, nil
}

// Count returns the number of documents matching q.
func (e *Engine) Count(ctx context.Context, m *mapping.Mapping, q *query.Node) (int, error) {
	idx, err := e.index(db.OpCount, m)
	if err != nil {
		return 0, err
	}
	bq, err := toBleve(q)
	if err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	res, err := idx.SearchInContext(ctx, blevesearch.NewSearchRequestOptions(bq, 0, 0, false))
	if err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	return int(res.Total), nil //nolint:gosec // document counts fit in int
}

// Ping reports ErrClosed once the engine is closed.
func (e *Engine) Ping(context.Context) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return &db.Error{Op: db.OpPing, Err: db.ErrClosed}
	}
	return nil
}

// Close closes every index. Further calls fail with ErrClosed.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true

	var firstErr error
	for name, idx := range e.indexes {
		if err := idx.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close index %s: %w", name, err)
		}
	}
	e.indexes = nil
	return firstErr
}

func (e *Engine) index(op string, m *mapping.Mapping) (blevesearch.Index, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return nil, &db.Error{Op: op, Err: db.ErrClosed}
	}
	idx, ok := e.indexes[m.Name()]
	if !ok {
		return nil, &db.Error{Op: op, Err: fmt.Errorf("%w: %s", db.ErrIndexNotFound, m.Name())}
	}
	if err := e.owners.Check(m); err != nil {
		return nil, &db.Error{Op: op, Err: err}
	}
	return idx, nil
}

func toBleveDocument(id string, m *mapping.Mapping, n *document.Native) *bdoc.Document {
	d := bdoc.NewDocument(id)
	positions := make(map[string]uint64)

	for _, f := range n.Fields() {
		pos := positions[f.Name]
		positions[f.Name] = pos + 1

		opts := options(f)
		if opts == 0 {
			continue
		}
		d.AddField(bdoc.NewTextFieldCustom(f.Name, []uint64{pos}, []byte(f.Value), opts, fieldAnalyzer(m, f)))
	}

	for i, name := range n.Names() {
		d.AddField(bdoc.NewTextFieldCustom(field.PresenceField, []uint64{uint64(i)}, []byte(name), index.IndexField, rawAnalyzer)) //nolint:gosec // small index
	}
	return d
}

func options(f document.Field) index.FieldIndexingOptions {
	var opts index.FieldIndexingOptions
	if f.Storage == field.Stored {
		opts |= index.StoreField
	}
	if f.Indexing != field.NotIndexed {
		opts |= index.IndexField | index.IncludeTermVectors
	}
	return opts
}

// fieldAnalyzer picks the analyzer from the mapping when the field is mapped
// so numeric encodings are never folded.
func fieldAnalyzer(m *mapping.Mapping, f document.Field) analysis.Analyzer {
	if spec, ok := m.FieldNamed(f.Name); ok {
		return analyzerFor(spec)
	}
	return analyzerForIndexing(f.Indexing)
}

func fromHit(m *mapping.Mapping, names []string, values map[string]interface{}) *document.Native {
	n := document.NewNative()
	for _, name := range names {
		raw, ok := values[name]
		if !ok {
			continue
		}
		indexing := field.ExactMatch
		if spec, ok := m.FieldNamed(name); ok {
			indexing = spec.Indexing
		}
		switch v := raw.(type) {
		case string:
			n.Add(document.Field{Name: name, Value: v, Storage: field.Stored, Indexing: indexing})
		case []interface{}:
			for _, item := range v {
				if s, ok := item.(string); ok {
					n.Add(document.Field{Name: name, Value: s, Storage: field.Stored, Indexing: indexing})
				}
			}
		}
	}
	return n
}
