package searchmap

import (
	"github.com/kailas-cloud/searchmap/internal/compiler"
	"github.com/kailas-cloud/searchmap/internal/domain/codec"
	"github.com/kailas-cloud/searchmap/internal/domain/document"
	"github.com/kailas-cloud/searchmap/internal/domain/mapping"
	"github.com/kailas-cloud/searchmap/internal/domain/predicate"
	searchuc "github.com/kailas-cloud/searchmap/internal/usecase/search"
)

type (
	// Predicate is a filter over entity properties. A nil Predicate matches
	// every document.
	Predicate = predicate.Node
	// Projection selects what a query reads back.
	Projection = compiler.Projection
	// Row is one projected result.
	Row = compiler.Row
	// Page selects a window of results.
	Page = searchuc.Page
	// Holder is a mutable entity view over a native document.
	Holder = document.Holder
	// Mapping describes how an entity's properties map to index fields.
	Mapping = mapping.Mapping
	// MappingBuilder declares a mapping without struct tags.
	MappingBuilder = mapping.Builder
	// MappingOption adjusts one property declaration.
	MappingOption = mapping.Option
	// CodecRegistry resolves field codecs by kind and Go type.
	CodecRegistry = codec.Registry
)

// NewCodecRegistry returns a registry with the built-in codecs.
func NewCodecRegistry() *CodecRegistry { return codec.NewRegistry() }

// Eq matches property == value; a nil value matches missing fields.
func Eq(property string, value any) *Predicate { return predicate.Eq(property, value) }

// NotEq matches documents that have the field with a different value; a nil
// value matches present fields.
func NotEq(property string, value any) *Predicate { return predicate.NotEq(property, value) }

// StartsWith matches exact string fields by case-insensitive prefix.
func StartsWith(property, prefix string) *Predicate { return predicate.StartsWith(property, prefix) }

// IsNull matches documents without the field.
func IsNull(property string) *Predicate { return predicate.IsNull(property) }

// IsNotNull matches documents with the field.
func IsNotNull(property string) *Predicate { return predicate.IsNotNull(property) }

// Lt matches numeric property < value.
func Lt(property string, value any) *Predicate { return predicate.Lt(property, value) }

// Le matches numeric property <= value.
func Le(property string, value any) *Predicate { return predicate.Le(property, value) }

// Gt matches numeric property > value.
func Gt(property string, value any) *Predicate { return predicate.Gt(property, value) }

// Ge matches numeric property >= value.
func Ge(property string, value any) *Predicate { return predicate.Ge(property, value) }

// And matches when every child matches.
func And(children ...*Predicate) *Predicate { return predicate.And(children...) }

// Or matches when any child matches.
func Or(children ...*Predicate) *Predicate { return predicate.Or(children...) }

// Not inverts its child.
func Not(child *Predicate) *Predicate { return predicate.Not(child) }

// Whole projects entire entities.
func Whole() Projection { return compiler.Whole() }

// Properties projects decoded property values in order.
func Properties(props ...string) Projection { return compiler.Properties(props...) }

// Mapping declaration options.
var (
	Named      = mapping.Named
	NotStored  = mapping.NotStored
	NotIndexed = mapping.NotIndexed
	Analyzed   = mapping.Analyzed
	Exact      = mapping.Exact
)
