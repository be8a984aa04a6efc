// Package value holds the loose comparison rules shared by the in-memory
// predicate, the store-side matcher and the comparator chain, so every
// backend agrees on what "equal" and "less than" mean for plain records.
package value

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/crudex/internal/query/ast"
)

// Lookup resolves a dotted path against a record. A flat key equal to the
// whole path wins over walking nested maps. A JSON null reports absent.
func Lookup(record map[string]any, path ast.Path) (any, bool) {
	if record == nil || len(path) == 0 {
		return nil, false
	}
	if v, ok := record[path.String()]; ok {
		return v, v != nil
	}
	cur := record
	for i, seg := range path {
		v, ok := cur[seg]
		if !ok || v == nil {
			return nil, false
		}
		if i == len(path)-1 {
			return v, true
		}
		next, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return nil, false
}

// Normalize widens Go numeric types and json.Number to float64 so values
// decoded from different sources compare alike.
func Normalize(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	}
	return v
}

// StrictEqual is equality without type coercion: a number never equals its
// string spelling.
func StrictEqual(a, b any) bool {
	a, b = Normalize(a), Normalize(b)
	switch x := a.(type) {
	case float64:
		y, ok := b.(float64)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	}
	return false
}

// Relate orders a against b. Two strings compare lexically; anything else is
// converted to numbers first. ok is false when either side is not a number,
// in which case every relational operator is false.
func Relate(a, b any) (cmp int, ok bool) {
	a, b = Normalize(a), Normalize(b)
	if x, isStr := a.(string); isStr {
		if y, isStr := b.(string); isStr {
			return strings.Compare(x, y), true
		}
	}
	x, y := ToNumber(a), ToNumber(b)
	if math.IsNaN(x) || math.IsNaN(y) {
		return 0, false
	}
	switch {
	case x < y:
		return -1, true
	case x > y:
		return 1, true
	}
	return 0, true
}

// ToNumber converts a value to float64, returning NaN when it has no numeric reading.
func ToNumber(v any) float64 {
	switch n := Normalize(v).(type) {
	case float64:
		return n
	case bool:
		if n {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
	return math.NaN()
}

// Stringify renders a value as text for substring and regex matching.
func Stringify(v any) string {
	switch s := Normalize(v).(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		data, err := json.Marshal(s)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// IsString reports whether v is a string.
func IsString(v any) bool {
	_, ok := v.(string)
	return ok
}
