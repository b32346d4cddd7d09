package mapping

import (
	"fmt"

	"github.com/kailas-cloud/searchmap/internal/domain"
	"github.com/kailas-cloud/searchmap/internal/domain/codec"
	"github.com/kailas-cloud/searchmap/internal/domain/field"
)

// Option adjusts a single property declaration.
type Option func(*decl)

// Named sets the index field name (defaults to the property name).
func Named(name string) Option {
	return func(d *decl) { d.name = name }
}

// NotStored keeps the raw value out of search hits.
func NotStored() Option {
	return func(d *decl) { d.storage = field.NotStored }
}

// NotIndexed keeps the value out of the inverted index.
func NotIndexed() Option {
	return func(d *decl) { d.indexing = field.NotIndexed }
}

// Analyzed indexes the value as a token sequence.
func Analyzed() Option {
	return func(d *decl) { d.indexing = field.Analyzed }
}

// Exact indexes the value as one case-folded term.
func Exact() Option {
	return func(d *decl) { d.indexing = field.ExactMatch }
}

type decl struct {
	property string
	name     string
	kind     codec.Kind
	storage  field.Storage
	indexing field.Indexing
	bind     []int
}

// Builder is a fluent builder for entity mappings.
type Builder struct {
	name   string
	codecs *codec.Registry
	decls  []decl
	typ    bindTarget
}

// NewBuilder starts a mapping for the named entity using the default codecs.
func NewBuilder(name string) *Builder {
	return &Builder{name: name, codecs: codec.Default}
}

// WithCodecs sets the codec registry used to resolve kinds.
func (b *Builder) WithCodecs(r *codec.Registry) *Builder {
	if r != nil {
		b.codecs = r
	}
	return b
}

// Text adds a stored, analyzed string property.
func (b *Builder) Text(property string, opts ...Option) *Builder {
	return b.add(property, codec.KindString, field.Analyzed, opts)
}

// Keyword adds a stored, exact-match string property.
func (b *Builder) Keyword(property string, opts ...Option) *Builder {
	return b.add(property, codec.KindString, field.ExactMatch, opts)
}

// Int adds a stored integer property.
func (b *Builder) Int(property string, opts ...Option) *Builder {
	return b.add(property, codec.KindInt, field.ExactMatch, opts)
}

// Float adds a stored floating point property.
func (b *Builder) Float(property string, opts ...Option) *Builder {
	return b.add(property, codec.KindFloat, field.ExactMatch, opts)
}

// Time adds a stored timestamp property.
func (b *Builder) Time(property string, opts ...Option) *Builder {
	return b.add(property, codec.KindTime, field.ExactMatch, opts)
}

// Bool adds a stored boolean property.
func (b *Builder) Bool(property string, opts ...Option) *Builder {
	return b.add(property, codec.KindBool, field.ExactMatch, opts)
}

// Field adds a property of an arbitrary registered kind, exact-match by default.
func (b *Builder) Field(property string, kind codec.Kind, opts ...Option) *Builder {
	return b.add(property, kind, field.ExactMatch, opts)
}

func (b *Builder) add(property string, kind codec.Kind, indexing field.Indexing, opts []Option) *Builder {
	d := decl{property: property, kind: kind, storage: field.Stored, indexing: indexing}
	for _, o := range opts {
		o(&d)
	}
	b.decls = append(b.decls, d)
	return b
}

// Build validates the declarations and returns the mapping.
func (b *Builder) Build() (*Mapping, error) {
	if b.name == "" {
		return nil, domain.NewMappingError("?", "", "entity name is required")
	}

	m := &Mapping{
		name:    b.name,
		fields:  make([]field.Spec, 0, len(b.decls)),
		binds:   make([][]int, 0, len(b.decls)),
		byProp:  make(map[string]int, len(b.decls)),
		byField: make(map[string]int, len(b.decls)),
	}
	if b.typ.typ != nil {
		m.typ = b.typ.typ
	}

	for _, d := range b.decls {
		c, ok := b.codecs.Lookup(d.kind)
		if !ok {
			return nil, domain.NewMappingError(b.name, d.property,
				fmt.Sprintf("no codec registered for kind %q", d.kind))
		}
		spec, err := field.New(d.property, d.name, d.storage, d.indexing, c)
		if err != nil {
			return nil, domain.NewMappingError(b.name, d.property, err.Error())
		}
		if _, dup := m.byProp[spec.Property]; dup {
			return nil, domain.NewMappingError(b.name, spec.Property, "duplicate property")
		}
		if _, dup := m.byField[spec.Name]; dup {
			return nil, domain.NewMappingError(b.name, spec.Property,
				fmt.Sprintf("duplicate field name %q", spec.Name))
		}

		bind := d.bind
		if bind == nil && b.typ.typ != nil {
			bind, err = b.typ.resolve(b.codecs, spec)
			if err != nil {
				return nil, domain.NewMappingError(b.name, spec.Property, err.Error())
			}
		}

		m.byProp[spec.Property] = len(m.fields)
		m.byField[spec.Name] = len(m.fields)
		m.fields = append(m.fields, spec)
		m.binds = append(m.binds, bind)
	}
	return m, nil
}

// MustBuild calls Build and panics on error.
func (b *Builder) MustBuild() *Mapping {
	m, err := b.Build()
	if err != nil {
		panic(err)
	}
	return m
}
