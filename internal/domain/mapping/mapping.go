// Package mapping describes, per entity type, which index field backs each
// property and with what storage and indexing policy.
//
// A Mapping is built once through a Builder (directly, from a Describer, or
// from struct tags), then shared read-only. Registry caches mappings per
// entity type for its whole lifetime.
package mapping

import (
	"reflect"

	"github.com/kailas-cloud/searchmap/internal/domain"
	"github.com/kailas-cloud/searchmap/internal/domain/field"
)

// Mapping is an immutable, ordered set of field specs for one entity type.
type Mapping struct {
	name    string
	typ     reflect.Type
	fields  []field.Spec
	binds   [][]int // struct field index per spec; nil when unbound
	byProp  map[string]int
	byField map[string]int
}

// Name returns the entity name; engines use it as the index name.
func (m *Mapping) Name() string { return m.name }

// Type returns the bound struct type, or nil for builder-only mappings.
func (m *Mapping) Type() reflect.Type { return m.typ }

// Fields returns the field specs in declaration order.
func (m *Mapping) Fields() []field.Spec {
	out := make([]field.Spec, len(m.fields))
	copy(out, m.fields)
	return out
}

// Len returns the number of mapped properties.
func (m *Mapping) Len() int { return len(m.fields) }

// FieldFor returns the spec mapped to property.
func (m *Mapping) FieldFor(property string) (field.Spec, error) {
	i, ok := m.byProp[property]
	if !ok {
		return field.Spec{}, domain.NewUnknownField(m.name, property)
	}
	return m.fields[i], nil
}

// FieldNamed returns the spec whose index field is name.
func (m *Mapping) FieldNamed(name string) (field.Spec, bool) {
	i, ok := m.byField[name]
	if !ok {
		return field.Spec{}, false
	}
	return m.fields[i], true
}

// StoredFields returns the names of all stored fields, in declaration order.
func (m *Mapping) StoredFields() []string {
	out := make([]string, 0, len(m.fields))
	for _, f := range m.fields {
		if f.IsStored() {
			out = append(out, f.Name)
		}
	}
	return out
}

// Binding returns the struct field index path bound to property.
func (m *Mapping) Binding(property string) ([]int, bool) {
	i, ok := m.byProp[property]
	if !ok || m.binds[i] == nil {
		return nil, false
	}
	return m.binds[i], true
}

// Compatible reports whether o describes the same index layout as m: same
// name, bound type and field specs. Engines share an index only between
// compatible mappings.
func (m *Mapping) Compatible(o *Mapping) bool {
	if m == o {
		return true
	}
	if m == nil || o == nil || m.name != o.name || m.typ != o.typ || len(m.fields) != len(o.fields) {
		return false
	}
	for i, a := range m.fields {
		b := o.fields[i]
		if a.Property != b.Property || a.Name != b.Name || a.Storage != b.Storage || a.Indexing != b.Indexing {
			return false
		}
		if reflect.TypeOf(a.Codec) != reflect.TypeOf(b.Codec) {
			return false
		}
	}
	return true
}
