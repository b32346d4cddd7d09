package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/rueidis"

	"github.com/kailas-cloud/searchmap/internal/db"
	"github.com/kailas-cloud/searchmap/internal/domain/codec"
	"github.com/kailas-cloud/searchmap/internal/domain/document"
	"github.com/kailas-cloud/searchmap/internal/domain/field"
	"github.com/kailas-cloud/searchmap/internal/domain/mapping"
)

// presenceSeparator joins field names in the presence TAG.
const presenceSeparator = ","

func newDocumentID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Put stores each document as one hash in a single DoMulti round trip.
func (s *Store) Put(ctx context.Context, m *mapping.Mapping, docs ...*document.Native) error {
	if err := s.owners.Check(m); err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	if len(docs) == 0 {
		return nil
	}

	cmds := make([]rueidis.Completed, 0, len(docs))
	keys := make([]string, 0, len(docs))
	for _, n := range docs {
		id, err := s.newID()
		if err != nil {
			return &db.Error{Op: db.OpHSet, Err: err}
		}
		key := s.keyPrefix(m.Name()) + id
		cmd, err := s.hsetCmd(key, m, n)
		if err != nil {
			return &db.Error{Op: db.OpHSet, Err: err}
		}
		cmds = append(cmds, cmd)
		keys = append(keys, key)
	}

	results := s.client.DoMulti(ctx, cmds...)
	for i, res := range results {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpHSet, Err: fmt.Errorf("key %s: %w", keys[i], err)}
		}
	}
	return nil
}

func (s *Store) hsetCmd(key string, m *mapping.Mapping, n *document.Native) (rueidis.Completed, error) {
	cmd := s.b().Hset().Key(key).FieldValue()
	names := n.Names()
	for _, name := range names {
		values := n.Values(name)
		if len(values) > 1 {
			return rueidis.Completed{}, fmt.Errorf("field %s: hashes cannot hold multiple values", name)
		}
		v, err := toWire(m, name, values[0])
		if err != nil {
			return rueidis.Completed{}, fmt.Errorf("field %s: %w", name, err)
		}
		cmd = cmd.FieldValue(name, v)
	}
	cmd = cmd.FieldValue(field.PresenceField, strings.Join(names, presenceSeparator))
	return cmd.Build(), nil
}

// toWire converts codec encodings of mapped numeric fields to the decimal
// form NUMERIC fields index. Everything else is stored verbatim.
func toWire(m *mapping.Mapping, name, raw string) (string, error) {
	spec, ok := m.FieldNamed(name)
	if !ok || !spec.Numeric() {
		return raw, nil
	}
	v, err := spec.Codec.Decode(raw)
	if err != nil {
		return "", err
	}
	return decimal(v)
}

// fromWire inverts toWire.
func fromWire(m *mapping.Mapping, name, wire string) (string, error) {
	spec, ok := m.FieldNamed(name)
	if !ok || !spec.Numeric() {
		return wire, nil
	}
	v, err := parseDecimal(spec.Codec.Kind(), wire)
	if err != nil {
		return "", err
	}
	return spec.Codec.Encode(v)
}

func decimal(v any) (string, error) {
	switch v := v.(type) {
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case time.Time:
		return strconv.FormatInt(v.UnixNano(), 10), nil
	default:
		return "", fmt.Errorf("no decimal form for %T", v)
	}
}

func parseDecimal(k codec.Kind, s string) (any, error) {
	switch k {
	case codec.KindInt:
		return strconv.ParseInt(s, 10, 64)
	case codec.KindTime:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, err
		}
		return time.Unix(0, n).UTC(), nil
	default:
		return strconv.ParseFloat(s, 64)
	}
}
