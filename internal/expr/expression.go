package expr

// Expression is a shared, immutable node: a source position plus the
// clause it carries. Nodes are created once and never mutated, with one
// exception the evaluator relies on: during reduction it overwrites a
// node's Clause in place, replacing a reduced node (a resolved Const, a
// forced Seq, a beta-reduced Apply) with an Identity pointing at the
// result, or with a Bottom, and compressing Identity chains. This never
// introduces a cycle, since each Identity is built pointing at an
// already-existing node.
type Expression struct {
	Pos    Position
	Clause Clause
}

// New wraps clause with a position. Most callers use one of the
// constructors below instead, which also carry the right Clause shape.
func New(pos Position, clause Clause) *Expression {
	return &Expression{Pos: pos, Clause: clause}
}

// NewApply builds an application of f to x.
func NewApply(pos Position, f, x *Expression) *Expression {
	return New(pos, Apply{F: f, X: x})
}

// NewSeq builds a force-then-discard node.
func NewSeq(pos Position, a, b *Expression) *Expression {
	return New(pos, Seq{A: a, B: b})
}

// NewConst builds a deferred reference to a named expression.
func NewConst(pos Position, sym Symbol) *Expression {
	return New(pos, Const{Symbol: sym})
}

// NewAtom wraps an opaque atom.
func NewAtom(pos Position, a Atom) *Expression {
	return New(pos, AtomClause{Atom: a})
}

// NewBottom builds a propagated error value.
func NewBottom(pos Position, errs ...error) *Expression {
	return New(pos, Bottom{Errors: errs})
}

// NewLambda builds a function. build receives a fresh expression node
// standing for this lambda's parameter (an ArgMarker unique to this
// call) and must return the function body, placing that same node
// wherever the parameter occurs. The body is scanned exactly once
// afterward to compute the path set describing every occurrence; a
// parameter that build never used yields a nil path set.
func NewLambda(pos Position, build func(arg *Expression) *Expression) *Expression {
	argNode := New(pos, &ArgMarker{})
	body := build(argNode)
	path := scanOccurrences(body, argNode)
	return New(pos, Lambda{Path: path, Body: body})
}

// IsWHNF reports whether the expression's clause is already weak head
// normal form: an atom, a lambda, or a bottom. It does not look through
// Identity or attempt any reduction; it is a cheap structural check used
// by callers deciding whether to hand an argument to an atom unreduced.
func (e *Expression) IsWHNF() bool {
	switch e.Clause.(type) {
	case AtomClause, Lambda, Bottom:
		return true
	default:
		return false
	}
}
