package nosql

import (
	"encoding/json"
	"strings"

	"github.com/kailas-cloud/crudex/internal/query/ast"
	"github.com/kailas-cloud/crudex/internal/query/value"
)

// Sort directions as written into a SortMap.
const (
	Ascending  = 1
	Descending = -1
)

// SortMap is an insertion-ordered field -> direction map. The order encodes
// tie-break precedence: the first key is the primary sort key.
type SortMap struct {
	keys []string
	dirs map[string]int
}

// CompileSort builds a SortMap from a sort spec. A field listed twice keeps
// its first position and takes the last direction.
func CompileSort(spec ast.SortSpec) SortMap {
	m := SortMap{dirs: make(map[string]int, len(spec))}
	for _, c := range spec {
		f := c.Field.String()
		if _, seen := m.dirs[f]; !seen {
			m.keys = append(m.keys, f)
		}
		if c.Direction == ast.Desc {
			m.dirs[f] = Descending
		} else {
			m.dirs[f] = Ascending
		}
	}
	return m
}

// Len returns the number of fields.
func (m SortMap) Len() int { return len(m.keys) }

// Keys returns the fields in precedence order.
func (m SortMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Direction returns 1 or -1 for field.
func (m SortMap) Direction(field string) (int, bool) {
	d, ok := m.dirs[field]
	return d, ok
}

// Document returns the map as an ordered Document, e.g. {name: 1, value: -1}.
func (m SortMap) Document() Document {
	d := make(Document, len(m.keys))
	for i, k := range m.keys {
		d[i] = Element{Key: k, Value: m.dirs[k]}
	}
	return d
}

// MarshalJSON writes the map as an ordered JSON object.
func (m SortMap) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Document())
}

// Compare orders two records the way a document store applies a sort
// document: missing values first, then numbers, then strings compared by
// code point, then booleans.
func (m SortMap) Compare(a, b map[string]any) int {
	for _, k := range m.keys {
		path := ast.ParsePath(k)
		va, _ := value.Lookup(a, path)
		vb, _ := value.Lookup(b, path)
		if c := storeCompare(va, vb); c != 0 {
			return c * m.dirs[k]
		}
	}
	return 0
}

func storeCompare(a, b any) int {
	a, b = value.Normalize(a), value.Normalize(b)
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch x := a.(type) {
	case float64:
		y := b.(float64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	case string:
		return strings.Compare(x, b.(string))
	case bool:
		y := b.(bool)
		if x != y {
			if y {
				return -1
			}
			return 1
		}
	}
	return 0
}

func typeRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case float64:
		return 1
	case string:
		return 2
	case bool:
		return 4
	}
	return 3
}
