package redis

import (
	"context"

	"github.com/kailas-cloud/searchmap/internal/db"
	"github.com/kailas-cloud/searchmap/internal/domain/codec"
	"github.com/kailas-cloud/searchmap/internal/domain/field"
	"github.com/kailas-cloud/searchmap/internal/domain/mapping"
)

// Ensure creates the FT index for m unless FT.INFO finds it.
func (s *Store) Ensure(ctx context.Context, m *mapping.Mapping) error {
	if err := s.owners.Claim(m); err != nil {
		return &db.Error{Op: db.OpEnsure, Err: err}
	}
	exists, err := s.indexExists(ctx, m.Name())
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	def, err := s.schemaFor(m)
	if err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	cmd := s.b().Arbitrary("FT.CREATE").Args(append([]string{def.Name}, def.Args()...)...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return nil
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// indexExists probes index existence via FT.INFO; "unknown index name" means absent.
func (s *Store) indexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") || isRedisErr(err, "no such index") {
			return false, nil
		}
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return true, nil
}

// schemaFor maps field policies onto FT field types. Not-indexed fields stay
// in the hash but out of the schema; the presence field backs Exists.
func (s *Store) schemaFor(m *mapping.Mapping) (*db.IndexDefinition, error) {
	b := db.NewIndex(m.Name()).Prefix(s.keyPrefix(m.Name())).NoStopwords()
	for _, spec := range m.Fields() {
		switch {
		case !spec.Searchable():
		case spec.Indexing == field.Analyzed:
			b.Text(spec.Name, true)
		case spec.Numeric():
			b.Numeric(spec.Name)
		case spec.Codec.Kind() == codec.KindString:
			b.TagIndexEmpty(spec.Name)
		default:
			b.Tag(spec.Name)
		}
	}
	b.TagWithOpts(field.PresenceField, presenceSeparator, true)
	return b.Build()
}
