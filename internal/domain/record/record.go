// Package record defines the schemaless record stored in collections.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/kailas-cloud/crudex/internal/domain"
	"github.com/kailas-cloud/crudex/internal/query/ast"
	"github.com/kailas-cloud/crudex/internal/query/value"
)

var (
	idRegex         = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	collectionRegex = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)
)

// IDField is the key holding a record's identifier.
const IDField = "id"

// MaxSize is the maximum encoded record size in bytes.
const MaxSize = 163840 // 160KB

// MaxCollectionName is the longest accepted collection name.
const MaxCollectionName = 64

// Record is a JSON object. The id lives under IDField.
type Record map[string]any

// New validates id and fields and returns a record owning a deep copy of
// fields with IDField set to id.
func New(id string, fields map[string]any) (Record, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	if raw, ok := fields[IDField]; ok {
		if s, isStr := raw.(string); !isStr || s != id {
			return nil, fmt.Errorf("%w: body %s %v does not match %q", domain.ErrInvalidRecord, IDField, raw, id)
		}
	}

	r := make(Record, len(fields)+1)
	for k, v := range fields {
		r[k] = cloneValue(v)
	}
	r[IDField] = id

	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidRecord, err)
	}
	if len(data) > MaxSize {
		return nil, fmt.Errorf("%w: record too large (max %d bytes)", domain.ErrInvalidRecord, MaxSize)
	}
	return r, nil
}

// Decode parses a stored or submitted JSON object. Numbers are kept as
// json.Number so large integers survive a round trip.
func Decode(data []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var r Record
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidRecord, err)
	}
	if r == nil {
		return nil, fmt.Errorf("%w: body must be a JSON object", domain.ErrInvalidRecord)
	}
	return r, nil
}

// Encode renders the record as JSON.
func (r Record) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// ID returns the identifier, or "" when absent or not a string.
func (r Record) ID() string {
	id, _ := r[IDField].(string)
	return id
}

// Lookup resolves a dotted path such as "meta.owner".
func (r Record) Lookup(path string) (any, bool) {
	return value.Lookup(r, ast.ParsePath(path))
}

// Clone returns a deep copy.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	c := make(Record, len(r))
	for k, v := range r {
		c[k] = cloneValue(v)
	}
	return c
}

// Fields returns the record as a plain map, the shape the query engine consumes.
func (r Record) Fields() map[string]any { return r }

// ValidateID checks a record identifier: ^[a-zA-Z0-9_-]+$, 1-256 chars.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: record ID is required", domain.ErrInvalidRecord)
	}
	if len(id) > 256 {
		return fmt.Errorf("%w: record ID too long (max 256)", domain.ErrInvalidRecord)
	}
	if !idRegex.MatchString(id) {
		return fmt.Errorf("%w: record ID must be alphanumeric with underscores and hyphens", domain.ErrInvalidRecord)
	}
	return nil
}

// ValidateCollection checks a collection name: lowercase, starting with a
// letter, at most MaxCollectionName chars.
func ValidateCollection(name string) error {
	if len(name) == 0 || len(name) > MaxCollectionName || !collectionRegex.MatchString(name) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidCollection, name)
	}
	return nil
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		c := make(map[string]any, len(x))
		for k, vv := range x {
			c[k] = cloneValue(vv)
		}
		return c
	case Record:
		return x.Clone()
	case []any:
		c := make([]any, len(x))
		for i, vv := range x {
			c[i] = cloneValue(vv)
		}
		return c
	}
	return v
}
