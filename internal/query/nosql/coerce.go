package nosql

import "time"

// Coercer rewrites a literal right before it is written into a compiled
// document. It sees only the value; the predicate structure is fixed.
type Coercer func(v any) any

// CoerceObjectID turns 24-hex-character strings into ObjectID values and
// leaves everything else alone.
func CoerceObjectID(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	id, err := ParseObjectID(s)
	if err != nil {
		return v
	}
	return id
}

// CoerceTime turns RFC 3339 strings into time.Time values.
func CoerceTime(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return v
	}
	return t
}

// CoercerByName resolves the coercer names accepted in configuration.
func CoercerByName(name string) (Coercer, bool) {
	switch name {
	case "objectid":
		return CoerceObjectID, true
	case "time":
		return CoerceTime, true
	}
	return nil, false
}
