package document

import (
	"github.com/kailas-cloud/searchmap/internal/domain/codec"
	"github.com/kailas-cloud/searchmap/internal/domain/field"
)

// Field is one raw value of a native document together with the policy it is
// indexed under.
type Field struct {
	Name     string
	Value    string
	Storage  field.Storage
	Indexing field.Indexing
	// Kind names the codec that produced Value; empty for engine hits.
	Kind codec.Kind
}

// Native is the flat field/value representation exchanged with the engine:
// an ordered multimap from field name to raw values.
type Native struct {
	fields []Field
}

// NewNative creates a native document holding a copy of fields.
func NewNative(fields ...Field) *Native {
	out := make([]Field, len(fields))
	copy(out, fields)
	return &Native{fields: out}
}

// Add appends a value; repeated names make the field multi-valued.
func (n *Native) Add(f Field) {
	n.fields = append(n.fields, f)
}

// Fields returns a copy of all entries in insertion order.
func (n *Native) Fields() []Field {
	out := make([]Field, len(n.fields))
	copy(out, n.fields)
	return out
}

// Get returns the first value of name.
func (n *Native) Get(name string) (string, bool) {
	for _, f := range n.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Values returns every value of name in insertion order.
func (n *Native) Values(name string) []string {
	var out []string
	for _, f := range n.fields {
		if f.Name == name {
			out = append(out, f.Value)
		}
	}
	return out
}

// Has reports whether name has at least one value.
func (n *Native) Has(name string) bool {
	_, ok := n.Get(name)
	return ok
}

// Names returns the distinct field names in first-seen order.
func (n *Native) Names() []string {
	seen := make(map[string]bool, len(n.fields))
	out := make([]string, 0, len(n.fields))
	for _, f := range n.fields {
		if !seen[f.Name] {
			seen[f.Name] = true
			out = append(out, f.Name)
		}
	}
	return out
}

// Len returns the number of entries, counting each value of a repeated field.
func (n *Native) Len() int { return len(n.fields) }

// Clone returns an independent copy.
func (n *Native) Clone() *Native { return NewNative(n.fields...) }
