package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/searchmap/internal/db"
	"github.com/kailas-cloud/searchmap/internal/domain/document"
	"github.com/kailas-cloud/searchmap/internal/domain/field"
	"github.com/kailas-cloud/searchmap/internal/domain/mapping"
	"github.com/kailas-cloud/searchmap/internal/domain/query"
)

// Search runs one FT.SEARCH page and converts each hit back into a native
// document holding codec encodings.
func (s *Store) Search(ctx context.Context, m *mapping.Mapping, req db.SearchRequest) ([]*document.Native, error) {
	if err := s.owners.Check(m); err != nil {
		return nil, &db.Error{Op: db.OpFTSearch, Err: err}
	}
	q, err := render(m, req.Query)
	if err != nil {
		return nil, &db.Error{Op: db.OpFTSearch, Err: err}
	}

	args := []string{m.Name(), q}
	if len(req.Fields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(req.Fields)))
		args = append(args, req.Fields...)
	} else {
		args = append(args, "NOCONTENT")
	}
	args = append(args,
		"LIMIT", strconv.Itoa(req.Offset), strconv.Itoa(req.Limit),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, s.searchErr(m, err)
	}
	return parseListResult(m, raw, len(req.Fields) > 0)
}

// Count returns the document count via FT.SEARCH with LIMIT 0 0.
func (s *Store) Count(ctx context.Context, m *mapping.Mapping, n *query.Node) (int, error) {
	if err := s.owners.Check(m); err != nil {
		return 0, &db.Error{Op: db.OpFTSearch, Err: err}
	}
	q, err := render(m, n)
	if err != nil {
		return 0, &db.Error{Op: db.OpFTSearch, Err: err}
	}
	cmd := s.b().Arbitrary("FT.SEARCH").Args(m.Name(), q, "LIMIT", "0", "0", "DIALECT", "2").Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return 0, s.searchErr(m, err)
	}
	if len(raw) == 0 {
		return 0, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return int(total), nil
}

func (s *Store) searchErr(m *mapping.Mapping, err error) error {
	if isRedisErr(err, "no such index") || isRedisErr(err, "unknown index name") {
		err = fmt.Errorf("%w: %s", db.ErrIndexNotFound, m.Name())
	}
	return &db.Error{Op: db.OpFTSearch, Err: err}
}

// --- Result parsing ---

// parseListResult reads the 2-stride reply [total, key1, fields1, ...], or
// the 1-stride [total, key1, ...] reply of NOCONTENT.
func parseListResult(m *mapping.Mapping, raw []rueidis.RedisMessage, withFields bool) ([]*document.Native, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if _, err := raw[0].AsInt64(); err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}

	if !withFields {
		out := make([]*document.Native, 0, len(raw)-1)
		for range raw[1:] {
			out = append(out, document.NewNative())
		}
		return out, nil
	}

	out := make([]*document.Native, 0, (len(raw)-1)/2)
	for i := 1; i+1 < len(raw); i += 2 {
		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		n, err := nativeFromPairs(m, fields)
		if err != nil {
			key, _ := raw[i].ToString()
			return nil, fmt.Errorf("key %s: %w", key, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func nativeFromPairs(m *mapping.Mapping, fields []rueidis.RedisMessage) (*document.Native, error) {
	n := document.NewNative()
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		wire, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		value, err := fromWire(m, name, wire)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		indexing := field.ExactMatch
		if spec, ok := m.FieldNamed(name); ok {
			indexing = spec.Indexing
		}
		n.Add(document.Field{Name: name, Value: value, Storage: field.Stored, Indexing: indexing})
	}
	return n, nil
}
