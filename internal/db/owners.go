package db

import (
	"sync"

	"github.com/kailas-cloud/searchmap/internal/domain"
	"github.com/kailas-cloud/searchmap/internal/domain/mapping"
)

// Owners records which mapping holds each index name. Engines key indexes
// by Mapping.Name(), which is not unique across packages or between struct
// and named mappings.
type Owners struct {
	mu     sync.Mutex
	owners map[string]*mapping.Mapping
}

// Claim binds the index name of m to m. Claiming again with a compatible
// mapping is a no-op; an incompatible one fails with a mapping error.
func (o *Owners) Claim(m *mapping.Mapping) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.owners == nil {
		o.owners = make(map[string]*mapping.Mapping)
	}
	held, ok := o.owners[m.Name()]
	if !ok {
		o.owners[m.Name()] = m
		return nil
	}
	return conflict(held, m)
}

// Check fails when the index name of m is held by an incompatible mapping.
// Unclaimed names pass.
func (o *Owners) Check(m *mapping.Mapping) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	held, ok := o.owners[m.Name()]
	if !ok {
		return nil
	}
	return conflict(held, m)
}

func conflict(held, m *mapping.Mapping) error {
	if held.Compatible(m) {
		return nil
	}
	return domain.NewMappingError(m.Name(), "", "index name is already used by "+describe(held))
}

func describe(m *mapping.Mapping) string {
	if t := m.Type(); t != nil {
		return "type " + t.PkgPath() + "." + t.Name()
	}
	return "a different named mapping"
}
