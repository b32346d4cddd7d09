package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMapping signals an invalid entity mapping declaration.
	ErrMapping = errors.New("mapping error")
	// ErrEncoding signals a value the field codec cannot represent.
	ErrEncoding = errors.New("encoding error")
	// ErrUnknownField signals a reference to a property that was never mapped.
	ErrUnknownField = errors.New("unknown field")
	// ErrUnsupportedPredicate signals a predicate with no native translation.
	ErrUnsupportedPredicate = errors.New("unsupported predicate")
)

// MappingError wraps ErrMapping with the entity and field at fault.
type MappingError struct {
	Entity string
	Field  string
	Reason string
}

func (e *MappingError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s: %s", ErrMapping.Error(), e.Entity, e.Reason)
	}
	return fmt.Sprintf("%s: %s.%s: %s", ErrMapping.Error(), e.Entity, e.Field, e.Reason)
}

func (e *MappingError) Unwrap() error { return ErrMapping }

// NewMappingError creates a mapping error.
func NewMappingError(entity, field, reason string) error {
	return &MappingError{Entity: entity, Field: field, Reason: reason}
}

// EncodingError wraps ErrEncoding with the codec kind and offending value.
type EncodingError struct {
	Kind   string
	Value  any
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("%s: %s value %#v: %s", ErrEncoding.Error(), e.Kind, e.Value, e.Reason)
}

func (e *EncodingError) Unwrap() error { return ErrEncoding }

// NewEncodingError creates an encoding error.
func NewEncodingError(kind string, value any, reason string) error {
	return &EncodingError{Kind: kind, Value: value, Reason: reason}
}

// UnknownFieldError wraps ErrUnknownField with the unmapped property.
type UnknownFieldError struct {
	Entity   string
	Property string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("%s: %s has no mapped property %q", ErrUnknownField.Error(), e.Entity, e.Property)
}

func (e *UnknownFieldError) Unwrap() error { return ErrUnknownField }

// NewUnknownField creates an unknown field error.
func NewUnknownField(entity, property string) error {
	return &UnknownFieldError{Entity: entity, Property: property}
}

// UnsupportedPredicateError wraps ErrUnsupportedPredicate with the operation and property.
type UnsupportedPredicateError struct {
	Op       string
	Property string
	Reason   string
}

func (e *UnsupportedPredicateError) Error() string {
	if e.Property == "" {
		return fmt.Sprintf("%s: %s: %s", ErrUnsupportedPredicate.Error(), e.Op, e.Reason)
	}
	return fmt.Sprintf("%s: %s on %q: %s", ErrUnsupportedPredicate.Error(), e.Op, e.Property, e.Reason)
}

func (e *UnsupportedPredicateError) Unwrap() error { return ErrUnsupportedPredicate }

// NewUnsupportedPredicate creates an unsupported predicate error.
func NewUnsupportedPredicate(op, property, reason string) error {
	return &UnsupportedPredicateError{Op: op, Property: property, Reason: reason}
}
