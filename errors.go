package searchmap

import (
	"github.com/kailas-cloud/searchmap/internal/db"
	"github.com/kailas-cloud/searchmap/internal/domain"
)

// Sentinel errors re-exported from the domain and engine layers.
// Use errors.Is() to check.
var (
	ErrMapping              = domain.ErrMapping
	ErrEncoding             = domain.ErrEncoding
	ErrUnknownField         = domain.ErrUnknownField
	ErrUnsupportedPredicate = domain.ErrUnsupportedPredicate
	ErrIndexNotFound        = db.ErrIndexNotFound
	ErrClosed               = db.ErrClosed
)

// Typed errors carrying details. Use errors.As() to inspect.
type (
	MappingError              = domain.MappingError
	EncodingError             = domain.EncodingError
	UnknownFieldError         = domain.UnknownFieldError
	UnsupportedPredicateError = domain.UnsupportedPredicateError
	EngineError               = db.Error
)
