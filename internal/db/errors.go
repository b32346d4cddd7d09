package db

import "errors"

// Sentinel errors for engine operations.
var (
	ErrIndexNotFound = errors.New("db: index not found")
	ErrClosed        = errors.New("db: engine closed")
)

// Op constants name the failing engine step. Redis steps use the command name.
const (
	OpEnsure      = "ensure"
	OpPut         = "put"
	OpSearch      = "search"
	OpCount       = "count"
	OpPing        = "ping"
	OpCreateIndex = "FT.CREATE"
	OpIndexInfo   = "FT.INFO"
	OpFTSearch    = "FT.SEARCH"
	OpHSet        = "HSET"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
