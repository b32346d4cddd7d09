package compiler

import (
	"github.com/kailas-cloud/searchmap/internal/domain"
	"github.com/kailas-cloud/searchmap/internal/domain/document"
	"github.com/kailas-cloud/searchmap/internal/domain/field"
	"github.com/kailas-cloud/searchmap/internal/domain/mapping"
	"github.com/kailas-cloud/searchmap/internal/domain/query"
)

// Projection selects what a query reads back.
type Projection struct {
	properties []string
}

// Whole projects the entire entity as a Holder.
func Whole() Projection { return Projection{} }

// Properties projects individual decoded property values, in order.
func Properties(props ...string) Projection {
	return Projection{properties: append([]string(nil), props...)}
}

// IsWhole reports whether p reads back the entire entity.
func (p Projection) IsWhole() bool { return len(p.properties) == 0 }

// Compiled is the result of one compilation: the native query, the fields the
// engine must return, and the readers that turn results into rows.
type Compiled struct {
	Query  *query.Node
	Fields []string

	mapping *mapping.Mapping
	readers []field.Spec
}

// Row is one projected result. Holder is set for whole-entity projections;
// Values holds one decoded value per projected property otherwise, nil when
// the field is absent.
type Row struct {
	Holder *document.Holder
	Values []any
}

func (c *Compiled) project(p Projection) error {
	if p.IsWhole() {
		c.Fields = c.mapping.StoredFields()
		return nil
	}
	c.Fields = make([]string, 0, len(p.properties))
	c.readers = make([]field.Spec, 0, len(p.properties))
	for _, prop := range p.properties {
		spec, err := c.mapping.FieldFor(prop)
		if err != nil {
			return err
		}
		if !spec.IsStored() {
			return domain.NewUnsupportedPredicate("select", prop, "field is not stored")
		}
		c.Fields = append(c.Fields, spec.Name)
		c.readers = append(c.readers, spec)
	}
	return nil
}

// Project converts one engine result into a row.
func (c *Compiled) Project(n *document.Native) (Row, error) {
	if c.readers == nil {
		return Row{Holder: document.FromNative(c.mapping, n)}, nil
	}
	values := make([]any, len(c.readers))
	for i, spec := range c.readers {
		raw, ok := n.Get(spec.Name)
		if !ok {
			continue
		}
		v, err := spec.Codec.Decode(raw)
		if err != nil {
			return Row{}, err
		}
		values[i] = v
	}
	return Row{Values: values}, nil
}
