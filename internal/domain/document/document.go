// Package document holds the engine-native document representation and the
// Holder that gives typed access to it.
package document

import (
	"reflect"

	"github.com/kailas-cloud/searchmap/internal/domain"
	"github.com/kailas-cloud/searchmap/internal/domain/codec"
	"github.com/kailas-cloud/searchmap/internal/domain/field"
	"github.com/kailas-cloud/searchmap/internal/domain/mapping"
)

// Holder is a typed façade over a mutable field/value bag.
// A Holder is not safe for concurrent use.
type Holder struct {
	mapping *mapping.Mapping
	codecs  *codec.Registry
	fields  []Field
}

// NewHolder creates an empty holder. m may be nil for unmapped use, in which
// case codecs are picked from the Go type of each value.
func NewHolder(m *mapping.Mapping) *Holder {
	return &Holder{mapping: m, codecs: codec.Default}
}

// FromNative rebuilds a holder from an engine document. Mapped fields take
// their policy from m; unmapped ones keep the policy recorded in n.
func FromNative(m *mapping.Mapping, n *Native) *Holder {
	h := NewHolder(m)
	for _, f := range n.fields {
		if m != nil {
			if spec, ok := m.FieldNamed(f.Name); ok {
				f.Storage, f.Indexing = spec.Storage, spec.Indexing
			}
		}
		h.fields = append(h.fields, f)
	}
	return h
}

// WithCodecs sets the registry used for unmapped fields.
func (h *Holder) WithCodecs(r *codec.Registry) *Holder {
	if r != nil {
		h.codecs = r
	}
	return h
}

// Mapping returns the mapping the holder dispatches through, or nil.
func (h *Holder) Mapping() *mapping.Mapping { return h.mapping }

// Get returns the raw value of name; false when the field is absent.
func (h *Holder) Get(name string) (string, bool) {
	for _, f := range h.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Values returns every raw value of name.
func (h *Holder) Values(name string) []string {
	var out []string
	for _, f := range h.fields {
		if f.Name == name {
			out = append(out, f.Value)
		}
	}
	return out
}

// Has reports whether name is present.
func (h *Holder) Has(name string) bool {
	_, ok := h.Get(name)
	return ok
}

// Set encodes value and replaces any existing values of name, recording the
// storage and indexing policy for the field. A nil value (or nil pointer)
// removes the field: absence is the only null.
func (h *Holder) Set(name string, value any, storage field.Storage, indexing field.Indexing) error {
	value, ok := deref(value)
	if !ok {
		h.Remove(name)
		return nil
	}
	c, err := h.codecFor(name, value)
	if err != nil {
		return err
	}
	raw, err := c.Encode(value)
	if err != nil {
		return err
	}
	h.replace(Field{Name: name, Value: raw, Storage: storage, Indexing: indexing, Kind: c.Kind()})
	return nil
}

// SetNumeric sets a stored, exact-match numeric field; nil removes it.
func (h *Holder) SetNumeric(name string, value any) error {
	value, ok := deref(value)
	if !ok {
		h.Remove(name)
		return nil
	}
	c, err := h.codecFor(name, value)
	if err != nil {
		return err
	}
	if !c.Numeric() {
		return domain.NewEncodingError(string(c.Kind()), value, "not a numeric codec")
	}
	raw, err := c.Encode(value)
	if err != nil {
		return err
	}
	h.replace(Field{Name: name, Value: raw, Storage: field.Stored, Indexing: field.ExactMatch, Kind: c.Kind()})
	return nil
}

// Remove drops every value of name.
func (h *Holder) Remove(name string) {
	kept := h.fields[:0]
	for _, f := range h.fields {
		if f.Name != name {
			kept = append(kept, f)
		}
	}
	h.fields = kept
}

// SetProperty sets a mapped property using its field spec.
func (h *Holder) SetProperty(property string, value any) error {
	spec, err := h.spec(property)
	if err != nil {
		return err
	}
	value, ok := deref(value)
	if !ok {
		h.Remove(spec.Name)
		return nil
	}
	raw, err := spec.Codec.Encode(value)
	if err != nil {
		return err
	}
	h.replace(Field{Name: spec.Name, Value: raw, Storage: spec.Storage, Indexing: spec.Indexing, Kind: spec.Codec.Kind()})
	return nil
}

// Property decodes a mapped property; nil when the field is absent.
func (h *Holder) Property(property string) (any, error) {
	spec, err := h.spec(property)
	if err != nil {
		return nil, err
	}
	raw, ok := h.Get(spec.Name)
	if !ok {
		return nil, nil
	}
	return spec.Codec.Decode(raw)
}

// Document materializes a fresh native document from the current state.
// Later mutations of the holder do not affect it.
func (h *Holder) Document() *Native {
	return NewNative(h.fields...)
}

func (h *Holder) spec(property string) (field.Spec, error) {
	if h.mapping == nil {
		return field.Spec{}, domain.NewUnknownField("<unmapped>", property)
	}
	return h.mapping.FieldFor(property)
}

func (h *Holder) codecFor(name string, value any) (codec.Codec, error) {
	if h.mapping != nil {
		if spec, ok := h.mapping.FieldNamed(name); ok {
			return spec.Codec, nil
		}
	}
	c, ok := h.codecs.ForValue(value)
	if !ok {
		return nil, domain.NewEncodingError("unknown", value, "no codec for Go type "+reflect.TypeOf(value).String())
	}
	return c, nil
}

// decoderFor picks the codec that encoded name: the mapped one, then the one
// recorded when the value was set, then the one for target's Go type.
func (h *Holder) decoderFor(name string, target any) (codec.Codec, error) {
	if h.mapping != nil {
		if spec, ok := h.mapping.FieldNamed(name); ok {
			return spec.Codec, nil
		}
	}
	for _, f := range h.fields {
		if f.Name != name || f.Kind == "" {
			continue
		}
		if c, ok := h.codecs.Lookup(f.Kind); ok {
			return c, nil
		}
		break
	}
	return h.codecFor(name, target)
}

// replace keeps the position of the first existing value so that field order
// stays stable across updates.
func (h *Holder) replace(f Field) {
	for i, cur := range h.fields {
		if cur.Name == f.Name {
			h.fields[i] = f
			h.removeAfter(i, f.Name)
			return
		}
	}
	h.fields = append(h.fields, f)
}

func (h *Holder) removeAfter(i int, name string) {
	kept := h.fields[:i+1]
	for _, f := range h.fields[i+1:] {
		if f.Name != name {
			kept = append(kept, f)
		}
	}
	h.fields = kept
}

// deref unwraps pointers; false means the value is null.
func deref(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	return rv.Interface(), true
}
