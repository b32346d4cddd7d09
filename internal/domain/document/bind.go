package document

import (
	"fmt"
	"reflect"
	"time"

	"github.com/kailas-cloud/searchmap/internal/domain"
	"github.com/kailas-cloud/searchmap/internal/domain/mapping"
)

// Bind copies the bound struct fields of v into a new holder.
// Nil pointer fields and zero time.Time values stay absent.
func Bind(m *mapping.Mapping, v any) (*Holder, error) {
	rv, err := structValue(m, v)
	if err != nil {
		return nil, err
	}
	h := NewHolder(m)
	for _, spec := range m.Fields() {
		idx, ok := m.Binding(spec.Property)
		if !ok {
			continue
		}
		v := rv.FieldByIndex(idx).Interface()
		if t, ok := v.(time.Time); ok && t.IsZero() {
			continue
		}
		if err := h.SetProperty(spec.Property, v); err != nil {
			return nil, fmt.Errorf("property %s: %w", spec.Property, err)
		}
	}
	return h, nil
}

// Unbind decodes the holder's fields into the bound fields of dst, which
// must be a pointer to the mapped struct type. Absent fields reset the
// struct field to its zero value.
func (h *Holder) Unbind(dst any) error {
	if h.mapping == nil {
		return domain.NewMappingError("<unmapped>", "", "holder has no mapping")
	}
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("unbind: want non-nil pointer, got %T", dst)
	}
	target := rv.Elem()
	if target.Type() != h.mapping.Type() {
		if h.mapping.Type() == nil {
			return domain.NewMappingError(h.mapping.Name(), "", "mapping is not bound to a struct type")
		}
		return fmt.Errorf("unbind: got %s, want %s", target.Type(), h.mapping.Type())
	}

	for _, spec := range h.mapping.Fields() {
		idx, ok := h.mapping.Binding(spec.Property)
		if !ok {
			continue
		}
		fv := target.FieldByIndex(idx)
		v, err := h.Property(spec.Property)
		if err != nil {
			return fmt.Errorf("property %s: %w", spec.Property, err)
		}
		if v == nil {
			fv.SetZero()
			continue
		}
		if err := assign(fv, v); err != nil {
			return fmt.Errorf("property %s: %w", spec.Property, err)
		}
	}
	return nil
}

func structValue(m *mapping.Mapping, v any) (reflect.Value, error) {
	if m.Type() == nil {
		return reflect.Value{}, domain.NewMappingError(m.Name(), "", "mapping is not bound to a struct type")
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, fmt.Errorf("nil %s", m.Type())
		}
		rv = rv.Elem()
	}
	if rv.Type() != m.Type() {
		return reflect.Value{}, fmt.Errorf("got %s, want %s", rv.Type(), m.Type())
	}
	return rv, nil
}
