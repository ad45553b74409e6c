// Package eval reduces an expression graph to weak head normal form.
//
// Reduction runs on an explicit work stack rather than the Go call
// stack, so depth is bounded by heap, not goroutine stack size. The one
// mutation the rest of the tree forbids is exploited here: a node
// finished with -- a Const that resolved, a Seq that forced its left
// side, a beta step that produced its result -- has its Clause field
// overwritten with an Identity pointing at the outcome. Because
// substitution aliases a repeated parameter to the very same node
// across every occurrence (see expr.Substitute), this overwrite is
// visible at every one of those occurrences: the work happens once no
// matter how many aliases exist, and resuming after a gas cutoff is
// just a matter of walking the same graph again with fresh gas.
package eval

import "github.com/lbfalvy/orchid-sub001/internal/expr"

type frameKind int

const (
	frameSeq frameKind = iota
	frameApply
)

// frame records a suspended Apply or Seq while one of its children is
// being reduced to WHNF. node is the original Apply/Seq expression,
// mutated in place once the child's result is known.
type frame struct {
	kind frameKind
	node *expr.Expression
	b    *expr.Expression // frameSeq: the branch to continue into
	x    *expr.Expression // frameApply: the unreduced argument
}

// Run reduces root to weak head normal form under env, spending gas as
// it goes. On success it returns the WHNF node and a nil error. If gas
// runs out first it returns ErrOutOfGas alongside root itself (now
// partially reduced in place); calling Run again on that same pointer
// with more gas continues the reduction.
func Run(env Environment, root *expr.Expression, gas *Gas) (*expr.Expression, error) {
	cur := root
	var stack []frame

	for {
		switch c := cur.Clause.(type) {

		case expr.Identity:
			target := c.Target
			for {
				inner, ok := target.Clause.(expr.Identity)
				if !ok {
					break
				}
				target = inner.Target
			}
			if target != c.Target {
				cur.Clause = expr.Identity{Target: target}
			}
			cur = target

		case expr.Seq:
			stack = append(stack, frame{kind: frameSeq, node: cur, b: c.B})
			cur = c.A

		case expr.Const:
			if !gas.spend() {
				return root, ErrOutOfGas
			}
			val, ok := env.Lookup(c.Symbol)
			if !ok {
				cur.Clause = expr.Bottom{Errors: []error{&UnknownSymbolError{Symbol: c.Symbol}}}
				break
			}
			cur.Clause = expr.Identity{Target: val}

		case expr.Apply:
			switch fc := c.F.Clause.(type) {
			case expr.Lambda:
				if !gas.spend() {
					return root, ErrOutOfGas
				}
				var result *expr.Expression
				if fc.Path == nil {
					result = fc.Body
				} else {
					result = expr.Substitute(fc.Path, fc.Body, c.X)
				}
				cur.Clause = expr.Identity{Target: result}
			case expr.AtomClause:
				if !gas.spend() {
					return root, ErrOutOfGas
				}
				cur.Clause = expr.Identity{Target: fc.Atom.Call(c.X)}
			case expr.Bottom:
				cur.Clause = expr.Bottom{Errors: fc.Errors}
			default:
				stack = append(stack, frame{kind: frameApply, node: cur, x: c.X})
				cur = c.F
			}

		case expr.Bottom:
			for _, f := range stack {
				f.node.Clause = expr.Bottom{Errors: c.Errors}
			}
			return cur, nil

		case *expr.ArgMarker:
			cur.Clause = expr.Bottom{Errors: []error{&UnresolvedParameterError{Pos: cur.Pos}}}

		case expr.AtomClause, expr.Lambda:
			if len(stack) == 0 {
				return cur, nil
			}
			cur = pop(&stack, cur)
		}
	}
}

// pop resolves the most recently suspended frame now that whnf is
// known, mutating the frame's original node in place and returning it
// as the new focus.
func pop(stack *[]frame, whnf *expr.Expression) *expr.Expression {
	n := len(*stack) - 1
	f := (*stack)[n]
	*stack = (*stack)[:n]
	switch f.kind {
	case frameSeq:
		f.node.Clause = expr.Identity{Target: f.b}
	case frameApply:
		f.node.Clause = expr.Apply{F: whnf, X: f.x}
	}
	return f.node
}
