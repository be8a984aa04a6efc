// Package ast defines the immutable syntax tree shared by the filter and sort
// dialects and by every backend compiler.
package ast

import (
	"strconv"
	"strings"
)

// Op is a comparison operator of a predicate.
type Op uint8

// Comparison operators.
const (
	OpInvalid Op = iota
	OpEq
	OpLt
	OpLte
	OpGt
	OpGte
	OpNe
	OpContains
)

var opSymbols = [...]string{
	OpInvalid:  "?",
	OpEq:       "=",
	OpLt:       "<",
	OpLte:      "<=",
	OpGt:       ">",
	OpGte:      ">=",
	OpNe:       "!=",
	OpContains: "~",
}

// String returns the canonical symbol of the operator.
func (o Op) String() string {
	if int(o) < len(opSymbols) {
		return opSymbols[o]
	}
	return "op(" + strconv.Itoa(int(o)) + ")"
}

// ParseOp maps an operator symbol to an Op. Both "<>" and "!=" map to OpNe.
func ParseOp(s string) (Op, bool) {
	switch s {
	case "=":
		return OpEq, true
	case "<":
		return OpLt, true
	case "<=":
		return OpLte, true
	case ">":
		return OpGt, true
	case ">=":
		return OpGte, true
	case "<>", "!=":
		return OpNe, true
	case "~":
		return OpContains, true
	}
	return OpInvalid, false
}

// Path is a dotted field path such as foo.bar.
type Path []string

// ParsePath splits a dotted path. Empty segments are kept so callers can detect them.
func ParsePath(s string) Path {
	return Path(strings.Split(s, "."))
}

// String joins the segments with dots.
func (p Path) String() string { return strings.Join(p, ".") }

// LiteralKind discriminates the Literal union.
type LiteralKind uint8

// Literal kinds.
const (
	LiteralString LiteralKind = iota
	LiteralNumber
	LiteralBool
	LiteralBareword
)

// Literal is the right-hand side of a predicate.
type Literal struct {
	kind LiteralKind
	str  string
	num  float64
	b    bool
}

// String creates a quoted string literal.
func String(s string) Literal { return Literal{kind: LiteralString, str: s} }

// Number creates a numeric literal.
func Number(f float64) Literal { return Literal{kind: LiteralNumber, num: f} }

// Bareword creates a literal from an unquoted word: true and false become
// booleans, anything else stays a string.
func Bareword(s string) Literal {
	switch s {
	case "true":
		return Literal{kind: LiteralBool, b: true, str: s}
	case "false":
		return Literal{kind: LiteralBool, b: false, str: s}
	}
	return Literal{kind: LiteralBareword, str: s}
}

// Kind returns the literal kind.
func (l Literal) Kind() LiteralKind { return l.kind }

// Value returns the literal as a plain Go value: string, float64 or bool.
func (l Literal) Value() any {
	switch l.kind {
	case LiteralNumber:
		return l.num
	case LiteralBool:
		return l.b
	default:
		return l.str
	}
}

// Text returns the literal rendered as text, which is what substring and regex
// operators consume.
func (l Literal) Text() string {
	if l.kind == LiteralNumber {
		return strconv.FormatFloat(l.num, 'f', -1, 64)
	}
	return l.str
}

func (l Literal) String() string {
	if l.kind == LiteralString {
		return strconv.Quote(l.str)
	}
	return l.Text()
}

// Node is a filter syntax tree node. The set of implementations is closed.
type Node interface {
	node()
	String() string
}

// Predicate is a single field/operator/literal comparison.
type Predicate struct {
	Field   Path
	Op      Op
	Literal Literal
}

// Conjunction holds children joined by AND.
type Conjunction struct {
	Children []Node
}

// Disjunction holds children joined by OR.
type Disjunction struct {
	Children []Node
}

func (Predicate) node()   {}
func (Conjunction) node() {}
func (Disjunction) node() {}

func (p Predicate) String() string {
	return p.Field.String() + " " + p.Op.String() + " " + p.Literal.String()
}

func (c Conjunction) String() string { return joinNodes(c.Children, " AND ") }

func (d Disjunction) String() string { return joinNodes(d.Children, " OR ") }

func joinNodes(nodes []Node, sep string) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// And returns the single child itself or a Conjunction of all children.
func And(children ...Node) Node {
	if len(children) == 1 {
		return children[0]
	}
	return Conjunction{Children: children}
}

// Or returns the single child itself or a Disjunction of all children.
func Or(children ...Node) Node {
	if len(children) == 1 {
		return children[0]
	}
	return Disjunction{Children: children}
}

// Folder turns a tree into a value of type T bottom-up.
type Folder[T any] struct {
	Predicate   func(p Predicate) T
	Conjunction func(children []T) T
	Disjunction func(children []T) T
}

// Fold walks n bottom-up and combines the results with f. Combinators with a
// single child are folded to that child's value, never wrapped.
func Fold[T any](n Node, f Folder[T]) T {
	switch v := n.(type) {
	case Predicate:
		return f.Predicate(v)
	case Conjunction:
		return foldChildren(v.Children, f, f.Conjunction)
	case Disjunction:
		return foldChildren(v.Children, f, f.Disjunction)
	}
	var zero T
	return zero
}

func foldChildren[T any](children []Node, f Folder[T], combine func([]T) T) T {
	if len(children) == 1 {
		return Fold(children[0], f)
	}
	out := make([]T, len(children))
	for i, c := range children {
		out[i] = Fold(c, f)
	}
	return combine(out)
}
