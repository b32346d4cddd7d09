package field

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	"github.com/kailas-cloud/searchmap/internal/domain/codec"
)

// Storage says whether the raw value is kept and returned with search hits.
type Storage int

// Storage modes.
const (
	Stored Storage = iota
	NotStored
)

func (s Storage) String() string {
	if s == NotStored {
		return "not_stored"
	}
	return "stored"
}

// Indexing says how the value is made searchable.
type Indexing int

// Indexing modes.
const (
	// ExactMatch indexes the case-folded value as one term.
	ExactMatch Indexing = iota
	// Analyzed indexes the token sequence produced by text analysis.
	Analyzed
	// NotIndexed keeps the value out of the inverted index.
	NotIndexed
)

func (i Indexing) String() string {
	switch i {
	case Analyzed:
		return "analyzed"
	case NotIndexed:
		return "not_indexed"
	default:
		return "exact"
	}
}

// ReservedPrefix marks engine bookkeeping fields.
const ReservedPrefix = "__"

// PresenceField is the engine-side field listing which fields a document has.
// Existence queries are answered from it.
const PresenceField = ReservedPrefix + "fields"

// Spec is an immutable value object describing one mapped property.
type Spec struct {
	Property string
	Name     string
	Storage  Storage
	Indexing Indexing
	Codec    codec.Codec
}

// New validates and creates a Spec.
// An empty name defaults to the property name.
func New(property, name string, storage Storage, indexing Indexing, c codec.Codec) (Spec, error) {
	if property == "" {
		return Spec{}, errors.New("property name is required")
	}
	if name == "" {
		name = property
	}
	if strings.HasPrefix(name, ReservedPrefix) {
		return Spec{}, errors.New("field names starting with " + ReservedPrefix + " are reserved")
	}
	if !validName(name) {
		return Spec{}, errors.New("field name " + strconv.Quote(name) + " must contain only letters, digits and underscores")
	}
	if c == nil {
		return Spec{}, errors.New("codec is required")
	}
	if storage == NotStored && indexing == NotIndexed {
		return Spec{}, errors.New("field is neither stored nor indexed")
	}
	if indexing == Analyzed && c.Kind() != codec.KindString {
		return Spec{}, errors.New("only string fields can be analyzed")
	}
	return Spec{Property: property, Name: name, Storage: storage, Indexing: indexing, Codec: c}, nil
}

func validName(s string) bool {
	for _, r := range s {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

// Numeric reports whether the field supports range comparison.
func (s Spec) Numeric() bool { return s.Codec.Numeric() }

// Searchable reports whether the field has an inverted-index entry.
func (s Spec) Searchable() bool { return s.Indexing != NotIndexed }

// IsStored reports whether the raw value comes back with search hits.
func (s Spec) IsStored() bool { return s.Storage == Stored }
