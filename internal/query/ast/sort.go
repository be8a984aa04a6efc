package ast

import "strings"

// Direction is the ordering of a sort clause.
type Direction uint8

// Sort directions.
const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// ParseDirection reads ASC or DESC case-insensitively.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToUpper(s) {
	case "ASC":
		return Asc, true
	case "DESC":
		return Desc, true
	}
	return Asc, false
}

// SortClause orders by one field.
type SortClause struct {
	Field     Path
	Direction Direction
}

func (c SortClause) String() string {
	return c.Field.String() + "," + c.Direction.String()
}

// SortSpec is an ordered list of clauses: primary key first, tie-breakers after.
type SortSpec []SortClause

func (s SortSpec) String() string {
	parts := make([]string, len(s))
	for i, c := range s {
		parts[i] = c.String()
	}
	return strings.Join(parts, ";")
}
