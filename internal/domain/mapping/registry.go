package mapping

import (
	"reflect"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/searchmap/internal/domain/codec"
)

// Registry is a compute-once cache of mappings.
//
// The first lookup for a key builds the mapping; concurrent first lookups
// share that single build. Published mappings are never mutated or evicted.
// A failed build is not cached, so the next lookup reports the same error.
type Registry struct {
	codecs *codec.Registry

	mu       sync.RWMutex
	mappings map[string]*Mapping
	group    singleflight.Group
}

// NewRegistry creates an empty registry. A nil codec registry means codec.Default.
func NewRegistry(codecs *codec.Registry) *Registry {
	if codecs == nil {
		codecs = codec.Default
	}
	return &Registry{codecs: codecs, mappings: make(map[string]*Mapping)}
}

// Codecs returns the codec registry used for builds.
func (r *Registry) Codecs() *codec.Registry { return r.codecs }

// For returns the mapping for a struct type, building it on first use.
func (r *Registry) For(t reflect.Type) (*Mapping, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return r.load("type:"+t.PkgPath()+"."+t.String(), func() (*Mapping, error) {
		return FromStruct(t, r.codecs)
	})
}

// Named returns the mapping registered under name, calling describe to build
// it on first use. Later calls ignore describe.
func (r *Registry) Named(name string, describe func(*Builder)) (*Mapping, error) {
	return r.load("name:"+name, func() (*Mapping, error) {
		b := NewBuilder(name).WithCodecs(r.codecs)
		describe(b)
		return b.Build()
	})
}

// Len returns the number of published mappings.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.mappings)
}

func (r *Registry) load(key string, build func() (*Mapping, error)) (*Mapping, error) {
	if m := r.lookup(key); m != nil {
		return m, nil
	}
	v, err, _ := r.group.Do(key, func() (any, error) {
		// A build may have been published between lookup and Do.
		if m := r.lookup(key); m != nil {
			return m, nil
		}
		m, err := build()
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.mappings[key] = m
		r.mu.Unlock()
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Mapping), nil
}

func (r *Registry) lookup(key string) *Mapping {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mappings[key]
}

// Of returns the mapping for T from r.
func Of[T any](r *Registry) (*Mapping, error) {
	return r.For(reflect.TypeFor[T]())
}
