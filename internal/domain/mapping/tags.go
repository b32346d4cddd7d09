package mapping

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/kailas-cloud/searchmap/internal/domain"
	"github.com/kailas-cloud/searchmap/internal/domain/codec"
	"github.com/kailas-cloud/searchmap/internal/domain/field"
)

const tagKey = "searchmap"

// Describer is implemented by entity types that declare their mapping
// explicitly instead of through struct tags. Properties whose name matches an
// exported struct field are bound to it.
type Describer interface {
	Describe(b *Builder)
}

// bindTarget resolves declared properties to struct fields.
type bindTarget struct {
	typ reflect.Type
}

func (t bindTarget) resolve(codecs *codec.Registry, spec field.Spec) ([]int, error) {
	sf, ok := t.typ.FieldByName(spec.Property)
	if !ok || !sf.IsExported() {
		return nil, nil
	}
	k, ok := codecs.KindOf(sf.Type)
	if !ok || k != spec.Codec.Kind() {
		return nil, fmt.Errorf("struct field type %s does not match kind %q", sf.Type, spec.Codec.Kind())
	}
	return sf.Index, nil
}

// FromStruct builds the mapping for a struct type, from its Describe method
// when it has one, otherwise from `searchmap:"field,modifier..."` tags.
//
// Modifiers: text/analyzed, keyword/exact, nostore, noindex. Untagged fields
// and fields tagged "-" are skipped.
func FromStruct(t reflect.Type, codecs *codec.Registry) (*Mapping, error) {
	if codecs == nil {
		codecs = codec.Default
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, domain.NewMappingError(t.String(), "", "not a struct")
	}
	if t.Name() == "" {
		return nil, domain.NewMappingError(t.String(), "",
			"anonymous struct types have no entity name; declare a named type or use a named index")
	}

	b := NewBuilder(t.Name()).WithCodecs(codecs)
	b.typ = bindTarget{typ: t}

	if d, ok := reflect.New(t).Interface().(Describer); ok {
		d.Describe(b)
		return b.Build()
	}

	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get(tagKey)
		if tag == "" || tag == "-" {
			continue
		}
		if !f.IsExported() {
			return nil, domain.NewMappingError(t.Name(), f.Name, "tagged field is not exported")
		}
		if err := applyTag(b, f, tag); err != nil {
			return nil, err
		}
	}
	if len(b.decls) == 0 {
		return nil, domain.NewMappingError(t.Name(), "", "no field with a searchmap tag")
	}
	return b.Build()
}

// applyTag processes a single struct field's searchmap tag.
func applyTag(b *Builder, f reflect.StructField, tag string) error {
	parts := strings.Split(tag, ",")

	kind, ok := b.codecs.KindOf(f.Type)
	if !ok {
		return domain.NewMappingError(b.name, f.Name,
			fmt.Sprintf("no codec registered for Go type %s", f.Type))
	}

	d := decl{
		property: f.Name,
		name:     strings.TrimSpace(parts[0]),
		kind:     kind,
		storage:  field.Stored,
		indexing: field.ExactMatch,
		bind:     f.Index,
	}
	for _, mod := range parts[1:] {
		switch strings.TrimSpace(mod) {
		case "text", "analyzed":
			d.indexing = field.Analyzed
		case "keyword", "exact":
			d.indexing = field.ExactMatch
		case "nostore":
			d.storage = field.NotStored
		case "noindex":
			d.indexing = field.NotIndexed
		case "":
		default:
			return domain.NewMappingError(b.name, f.Name, fmt.Sprintf("unknown modifier %q", mod))
		}
	}
	b.decls = append(b.decls, d)
	return nil
}
