package nosql

import (
	"bytes"
	"strings"
	"time"

	"github.com/kailas-cloud/crudex/internal/query/ast"
	"github.com/kailas-cloud/crudex/internal/query/value"
)

// Match evaluates a compiled filter against a plain record. Top-level keys
// are implicitly ANDed. $ne requires the field to be present, the same rule
// the in-memory predicate applies.
func Match(filter Document, record map[string]any) bool {
	for _, e := range filter {
		if !matchElement(e, record) {
			return false
		}
	}
	return true
}

func matchElement(e Element, record map[string]any) bool {
	switch e.Key {
	case KeyAnd:
		arr, _ := e.Value.(Array)
		for _, item := range arr {
			if !matchItem(item, record) {
				return false
			}
		}
		return len(arr) > 0
	case KeyOr:
		arr, _ := e.Value.(Array)
		for _, item := range arr {
			if matchItem(item, record) {
				return true
			}
		}
		return false
	}

	v, present := value.Lookup(record, ast.ParsePath(e.Key))
	switch cond := e.Value.(type) {
	case Regex:
		return present && cond.MatchString(value.Stringify(v))
	case Document:
		if !isOperatorDocument(cond) {
			return false
		}
		for _, op := range cond {
			if !matchOperator(op, v, present) {
				return false
			}
		}
		return true
	default:
		return present && equal(v, cond)
	}
}

func matchItem(item any, record map[string]any) bool {
	d, ok := item.(Document)
	return ok && Match(d, record)
}

func isOperatorDocument(d Document) bool {
	for _, e := range d {
		if !strings.HasPrefix(e.Key, "$") {
			return false
		}
	}
	return len(d) > 0
}

func matchOperator(op Element, v any, present bool) bool {
	if !present {
		return false
	}
	switch op.Key {
	case KeyNe:
		return !equal(v, op.Value)
	case KeyRegex:
		switch re := op.Value.(type) {
		case Regex:
			return re.MatchString(value.Stringify(v))
		case string:
			compiled, err := NewRegex(re)
			return err == nil && compiled.MatchString(value.Stringify(v))
		}
		return false
	}

	cmp, ok := relate(v, op.Value)
	if !ok {
		return false
	}
	switch op.Key {
	case KeyLt:
		return cmp < 0
	case KeyLte:
		return cmp <= 0
	case KeyGt:
		return cmp > 0
	case KeyGte:
		return cmp >= 0
	}
	return false
}

// equal extends value.StrictEqual with the coerced literal types.
func equal(v, lit any) bool {
	switch l := lit.(type) {
	case ObjectID:
		id, ok := asObjectID(v)
		return ok && id == l
	case time.Time:
		t, ok := asTime(v)
		return ok && t.Equal(l)
	}
	return value.StrictEqual(v, lit)
}

func relate(v, lit any) (int, bool) {
	switch l := lit.(type) {
	case ObjectID:
		id, ok := asObjectID(v)
		if !ok {
			return 0, false
		}
		return bytes.Compare(id[:], l[:]), true
	case time.Time:
		t, ok := asTime(v)
		if !ok {
			return 0, false
		}
		return t.Compare(l), true
	}
	return value.Relate(v, lit)
}

func asObjectID(v any) (ObjectID, bool) {
	switch x := v.(type) {
	case ObjectID:
		return x, true
	case string:
		id, err := ParseObjectID(x)
		return id, err == nil
	}
	return ObjectID{}, false
}

func asTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		t, err := time.Parse(time.RFC3339Nano, x)
		return t, err == nil
	}
	return time.Time{}, false
}
