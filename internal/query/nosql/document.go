package nosql

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
)

// Element is one key/value pair of a Document.
type Element struct {
	Key   string
	Value any
}

// Document is an ordered filter object. Key order is preserved in output.
type Document []Element

// Array is a list value inside a Document, used by $and and $or.
type Array []any

// Lookup returns the value stored under key.
func (d Document) Lookup(key string) (any, bool) {
	for _, e := range d {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// MarshalJSON writes the document as a JSON object in key order.
func (d Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", e.Key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal value of %q: %w", e.Key, err)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// String renders the document as JSON for logs and debugging.
func (d Document) String() string {
	data, err := d.MarshalJSON()
	if err != nil {
		return "<invalid document>"
	}
	return string(data)
}

// ErrInvalidRegex is returned when a contains literal is not a valid pattern.
var ErrInvalidRegex = errors.New("invalid regular expression")

// regexTimeout bounds a single match against catastrophic backtracking.
const regexTimeout = 100 * time.Millisecond

// Regex is a pattern value. The source is used verbatim, with ECMAScript
// syntax, exactly as written in the filter.
type Regex struct {
	Source string
	re     *regexp2.Regexp
}

// NewRegex compiles source.
func NewRegex(source string) (Regex, error) {
	re, err := regexp2.Compile(source, regexp2.ECMAScript)
	if err != nil {
		return Regex{}, fmt.Errorf("%w %q: %w", ErrInvalidRegex, source, err)
	}
	re.MatchTimeout = regexTimeout
	return Regex{Source: source, re: re}, nil
}

// MatchString reports whether s contains a match. A timed-out match counts as no match.
func (r Regex) MatchString(s string) bool {
	if r.re == nil {
		return false
	}
	ok, err := r.re.MatchString(s)
	return err == nil && ok
}

// MarshalJSON writes {"$regex": source}.
func (r Regex) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"$regex": r.Source})
}

// ObjectID is a 12-byte opaque document id, written as 24 hex characters.
type ObjectID [12]byte

// ParseObjectID decodes a 24-character hex string.
func ParseObjectID(s string) (ObjectID, error) {
	var id ObjectID
	if len(s) != 2*len(id) {
		return id, fmt.Errorf("object id %q: want %d hex characters", s, 2*len(id))
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return id, fmt.Errorf("object id %q: %w", s, err)
	}
	return id, nil
}

// Hex returns the 24-character hex form.
func (id ObjectID) Hex() string { return hex.EncodeToString(id[:]) }

func (id ObjectID) String() string { return `ObjectID("` + id.Hex() + `")` }

// MarshalJSON writes {"$oid": hex}.
func (id ObjectID) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"$oid": id.Hex()})
}
