package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidQuery signals a filter or sort expression that failed to parse or compile.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidRecord signals a record body that cannot be stored.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrInvalidCollection signals a collection name outside the allowed alphabet.
	ErrInvalidCollection = errors.New("invalid collection name")
)

// Query dialects named in QueryError.
const (
	DialectFilter = "filter"
	DialectSort   = "sort"
)

// QueryError wraps ErrInvalidQuery with the diagnostics of one dialect.
type QueryError struct {
	Dialect     string
	Input       string
	Diagnostics []string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %s %q: %s", ErrInvalidQuery.Error(), e.Dialect, e.Input, strings.Join(e.Diagnostics, "; "))
}

func (e *QueryError) Unwrap() error { return ErrInvalidQuery }

// NewQueryError creates a query error for dialect.
func NewQueryError(dialect, input string, diagnostics []string) error {
	return &QueryError{Dialect: dialect, Input: input, Diagnostics: diagnostics}
}
