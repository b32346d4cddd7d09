// Package compiler translates predicate trees into native query trees.
//
// Every leaf is resolved through the entity mapping and dispatched on the
// field's indexing policy in one place (translateLeaf). Compilation is pure:
// all mapping, encoding and shape errors surface here, before any engine
// round trip.
package compiler

import (
	"math"
	"reflect"
	"strings"

	"github.com/kailas-cloud/searchmap/internal/domain"
	"github.com/kailas-cloud/searchmap/internal/domain/codec"
	"github.com/kailas-cloud/searchmap/internal/domain/field"
	"github.com/kailas-cloud/searchmap/internal/domain/mapping"
	"github.com/kailas-cloud/searchmap/internal/domain/predicate"
	"github.com/kailas-cloud/searchmap/internal/domain/query"
)

// Compile translates pred into a native query for entities described by m
// and prepares the projection. A nil pred matches every document.
func Compile(m *mapping.Mapping, pred *predicate.Node, proj Projection) (*Compiled, error) {
	q := query.MatchAll()
	if pred != nil {
		var err error
		if q, err = translate(m, pred); err != nil {
			return nil, err
		}
	}

	c := &Compiled{Query: q, mapping: m}
	if err := c.project(proj); err != nil {
		return nil, err
	}
	return c, nil
}

func translate(m *mapping.Mapping, n *predicate.Node) (*query.Node, error) {
	if n.Op.IsLeaf() {
		return translateLeaf(m, n)
	}

	switch n.Op {
	case predicate.OpAnd, predicate.OpOr:
		if len(n.Children) == 0 {
			return nil, domain.NewUnsupportedPredicate(n.Op.String(), "", "no operands")
		}
		children, err := translateAll(m, n.Children)
		if err != nil {
			return nil, err
		}
		if len(children) == 1 {
			return children[0], nil
		}
		if n.Op == predicate.OpAnd {
			return query.Bool(children, nil, nil), nil
		}
		return query.Bool(nil, children, nil), nil
	case predicate.OpNot:
		if len(n.Children) != 1 || n.Children[0] == nil {
			return nil, domain.NewUnsupportedPredicate(n.Op.String(), "", "want exactly one operand")
		}
		child, err := translate(m, n.Children[0])
		if err != nil {
			return nil, err
		}
		return query.Bool(nil, nil, []*query.Node{child}), nil
	default:
		return nil, domain.NewUnsupportedPredicate(n.Op.String(), n.Property, "unknown operator")
	}
}

func translateAll(m *mapping.Mapping, nodes []*predicate.Node) ([]*query.Node, error) {
	out := make([]*query.Node, 0, len(nodes))
	for _, c := range nodes {
		if c == nil {
			return nil, domain.NewUnsupportedPredicate("nil", "", "nil operand")
		}
		q, err := translate(m, c)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

func translateLeaf(m *mapping.Mapping, n *predicate.Node) (*query.Node, error) {
	spec, err := m.FieldFor(n.Property)
	if err != nil {
		return nil, err
	}
	value := deref(n.Value)

	op := n.Op
	switch {
	case op == predicate.OpEqual && value == nil:
		op = predicate.OpIsNull
	case op == predicate.OpNotEqual && value == nil:
		op = predicate.OpIsNotNull
	}

	switch op {
	case predicate.OpIsNull:
		return isNull(spec.Name), nil
	case predicate.OpIsNotNull:
		return query.Exists(spec.Name), nil
	}

	if !spec.Searchable() {
		return nil, domain.NewUnsupportedPredicate(op.String(), n.Property, "field is not indexed")
	}

	switch {
	case op == predicate.OpEqual:
		return equal(spec, value)
	case op == predicate.OpNotEqual:
		eq, err := equal(spec, value)
		if err != nil {
			return nil, err
		}
		return query.Bool(
			[]*query.Node{query.Exists(spec.Name)},
			nil,
			[]*query.Node{eq},
		), nil
	case op == predicate.OpStartsWith:
		return startsWith(spec, value)
	case op.IsComparison():
		return compare(spec, op, value)
	default:
		return nil, domain.NewUnsupportedPredicate(op.String(), n.Property, "unknown operator")
	}
}

func isNull(name string) *query.Node {
	return query.Bool(nil, nil, []*query.Node{query.Exists(name)})
}

func equal(spec field.Spec, value any) (*query.Node, error) {
	if s, ok := value.(string); ok && !spec.Numeric() {
		if text, quoted := unquote(s); quoted {
			return query.Phrase(spec.Name, text, spec.Indexing), nil
		}
	}

	raw, err := spec.Codec.Encode(value)
	if err != nil {
		return nil, err
	}
	if spec.Indexing == field.Analyzed {
		return query.Phrase(spec.Name, raw, field.Analyzed), nil
	}
	if spec.Numeric() {
		return query.Term(spec.Name, raw), nil
	}
	return query.Term(spec.Name, codec.Fold(raw)), nil
}

func startsWith(spec field.Spec, value any) (*query.Node, error) {
	const op = "starts_with"
	prefix, ok := value.(string)
	if !ok {
		return nil, domain.NewUnsupportedPredicate(op, spec.Property, "prefix must be a string")
	}
	if spec.Indexing == field.Analyzed {
		return nil, domain.NewUnsupportedPredicate(op, spec.Property, "prefix match requires an exact-match field")
	}
	if spec.Codec.Kind() != codec.KindString {
		return nil, domain.NewUnsupportedPredicate(op, spec.Property, "prefix match requires a string field")
	}
	if prefix == "" {
		return query.Exists(spec.Name), nil
	}
	return query.Prefix(spec.Name, codec.Fold(prefix)), nil
}

func compare(spec field.Spec, op predicate.Op, value any) (*query.Node, error) {
	if value == nil {
		return nil, domain.NewUnsupportedPredicate(op.String(), spec.Property, "comparison with null")
	}
	if !spec.Numeric() {
		return nil, domain.NewUnsupportedPredicate(op.String(), spec.Property, "field has no numeric codec")
	}
	if spec.Codec.Kind() == codec.KindInt {
		value = integralBound(op, value)
	}
	raw, err := spec.Codec.Encode(value)
	if err != nil {
		return nil, err
	}
	switch op {
	case predicate.OpLess:
		return query.Range(spec.Name, "", raw, false, false), nil
	case predicate.OpLessOrEqual:
		return query.Range(spec.Name, "", raw, false, true), nil
	case predicate.OpGreater:
		return query.Range(spec.Name, raw, "", false, false), nil
	default:
		return query.Range(spec.Name, raw, "", true, false), nil
	}
}

// integralBound rounds a fractional bound against an int field to the
// integer that selects the same values: up for < and >=, down for <= and >.
func integralBound(op predicate.Op, value any) any {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Float32 && rv.Kind() != reflect.Float64 {
		return value
	}
	f := rv.Float()
	if f == math.Trunc(f) {
		return value
	}
	switch op {
	case predicate.OpLess, predicate.OpGreaterOrEqual:
		return math.Ceil(f)
	default:
		return math.Floor(f)
	}
}

// unquote strips one pair of surrounding double quotes.
func unquote(s string) (string, bool) {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1], true
	}
	return s, false
}

func deref(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	return rv.Interface()
}
