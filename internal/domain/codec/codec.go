// Package codec converts typed scalars to and from the raw string values a
// search engine stores.
//
// Numeric codecs produce fixed-width, sign-adjusted hex strings whose
// lexicographic order matches the numeric order, so engine-side term range
// queries work directly on the encoded form. Strings are stored verbatim.
package codec

import (
	"reflect"
	"time"

	"golang.org/x/text/cases"
)

// Kind names a scalar kind with a registered codec.
type Kind string

// Scalar kinds.
const (
	KindString Kind = "string"
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindTime   Kind = "time"
	KindBool   Kind = "bool"
)

// Codec encodes and decodes one scalar kind.
// Implementations must be safe for concurrent use.
type Codec interface {
	Kind() Kind
	// Numeric reports whether encoded values preserve numeric order.
	Numeric() bool
	Encode(v any) (string, error)
	Decode(raw string) (any, error)
}

// Registry maps scalar kinds to codecs.
// Register is not safe for concurrent use; finish registration before sharing.
type Registry struct {
	codecs map[Kind]Codec
}

// NewRegistry creates a registry with the built-in codecs.
func NewRegistry() *Registry {
	r := &Registry{codecs: make(map[Kind]Codec)}
	r.Register(String{})
	r.Register(Int{})
	r.Register(Float{})
	r.Register(Time{})
	r.Register(Bool{})
	return r
}

// Default is the registry used when none is configured.
var Default = NewRegistry()

// Register adds or replaces the codec for c.Kind().
func (r *Registry) Register(c Codec) {
	r.codecs[c.Kind()] = c
}

// Lookup returns the codec registered for k.
func (r *Registry) Lookup(k Kind) (Codec, bool) {
	c, ok := r.codecs[k]
	return c, ok
}

var timeType = reflect.TypeOf(time.Time{})

// KindOf resolves a Go type to a scalar kind. Pointer types resolve to their
// element kind (a nil pointer is an absent value).
func (r *Registry) KindOf(t reflect.Type) (Kind, bool) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == timeType {
		return r.registered(KindTime)
	}
	switch t.Kind() {
	case reflect.String:
		return r.registered(KindString)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return r.registered(KindInt)
	case reflect.Float32, reflect.Float64:
		return r.registered(KindFloat)
	case reflect.Bool:
		return r.registered(KindBool)
	default:
		return "", false
	}
}

// ForValue returns the codec for the dynamic type of v.
func (r *Registry) ForValue(v any) (Codec, bool) {
	if v == nil {
		return nil, false
	}
	k, ok := r.KindOf(reflect.TypeOf(v))
	if !ok {
		return nil, false
	}
	return r.Lookup(k)
}

func (r *Registry) registered(k Kind) (Kind, bool) {
	_, ok := r.codecs[k]
	return k, ok
}

// Fold is the canonical case normalization applied to exact-match values at
// index time and to literals at query time: Unicode case folding, locale
// independent.
func Fold(s string) string {
	// A Caser is stateful, so one is created per call.
	return cases.Fold().String(s)
}
