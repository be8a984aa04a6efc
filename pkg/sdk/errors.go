package crudex

import "github.com/kailas-cloud/crudex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound          = domain.ErrNotFound
	ErrAlreadyExists     = domain.ErrAlreadyExists
	ErrInvalidQuery      = domain.ErrInvalidQuery
	ErrInvalidRecord     = domain.ErrInvalidRecord
	ErrInvalidCollection = domain.ErrInvalidCollection
)

// QueryError carries the parser diagnostics of a rejected filter or sort.
// Use errors.As() to inspect it.
type QueryError = domain.QueryError
