package expr

// Side selects a branch of an Apply or a Seq node.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Left {
		return "L"
	}
	return "R"
}

// PathSet describes a set of occurrence positions of one lambda's bound
// variable inside its body. Steps is the shared path prefix leading to
// the first node where the occurrence set forks; Next, when present,
// gives the two sub-path-sets describing each side of that fork. A
// PathSet with both Steps empty and Next nil denotes a leaf: the
// parameter occurs exactly at this position.
type PathSet struct {
	Steps []Side
	Next  *PathFork
}

// PathFork holds the two branches of a forking PathSet.
type PathFork struct {
	Left, Right *PathSet
}

// scanOccurrences walks body once, looking for target by pointer
// identity, and builds the PathSet describing every position it
// occupies. It returns nil if target does not occur in body at all.
//
// Descent only continues through Apply and Seq nodes. A Lambda
// encountered along the way is opaque: the inner binder shadows the
// outer one, so occurrences of target cannot meaningfully appear inside
// a different lambda's body and the scan does not look there. Any other
// clause (Const, AtomClause, Bottom, a different ArgMarker) is a leaf
// with no occurrence unless it is target itself.
func scanOccurrences(node, target *Expression) *PathSet {
	if node == target {
		return &PathSet{}
	}
	left, right, ok := branches(node)
	if !ok {
		return nil
	}
	leftSet := scanOccurrences(left, target)
	rightSet := scanOccurrences(right, target)
	switch {
	case leftSet == nil && rightSet == nil:
		return nil
	case leftSet != nil && rightSet == nil:
		return prepend(Left, leftSet)
	case leftSet == nil && rightSet != nil:
		return prepend(Right, rightSet)
	default:
		return &PathSet{Next: &PathFork{Left: leftSet, Right: rightSet}}
	}
}

// branches returns the two children of node if it is an Apply or Seq,
// or ok=false otherwise (including for Lambda, which terminates descent).
func branches(node *Expression) (left, right *Expression, ok bool) {
	switch c := node.Clause.(type) {
	case Apply:
		return c.F, c.X, true
	case Seq:
		return c.A, c.B, true
	default:
		return nil, nil, false
	}
}

// prepend extends p with one more leading step, used while the scan is
// still inside a single-occurrence chain and has not yet reached a fork.
func prepend(s Side, p *PathSet) *PathSet {
	steps := make([]Side, 0, len(p.Steps)+1)
	steps = append(steps, s)
	steps = append(steps, p.Steps...)
	return &PathSet{Steps: steps, Next: p.Next}
}

// Substitute produces a copy of body in which every position described
// by p is replaced by Identity(value), so that reducing any one
// occurrence later is visible at every aliased site. Subterms outside
// p's positions are shared unchanged with body, never copied. It never
// recurses into a Lambda node's body: scanOccurrences never produces a
// path that does, since an inner lambda shadows the outer one.
func Substitute(p *PathSet, body, value *Expression) *Expression {
	if len(p.Steps) > 0 {
		head := p.Steps[0]
		rest := &PathSet{Steps: p.Steps[1:], Next: p.Next}
		switch c := body.Clause.(type) {
		case Apply:
			if head == Left {
				return New(body.Pos, Apply{F: Substitute(rest, c.F, value), X: c.X})
			}
			return New(body.Pos, Apply{F: c.F, X: Substitute(rest, c.X, value)})
		case Seq:
			if head == Left {
				return New(body.Pos, Seq{A: Substitute(rest, c.A, value), B: c.B})
			}
			return New(body.Pos, Seq{A: c.A, B: Substitute(rest, c.B, value)})
		default:
			panic("expr: substitution path steps into a non-Apply/Seq node")
		}
	}
	if p.Next == nil {
		return New(body.Pos, Identity{Target: value})
	}
	switch c := body.Clause.(type) {
	case Apply:
		return New(body.Pos, Apply{
			F: Substitute(p.Next.Left, c.F, value),
			X: Substitute(p.Next.Right, c.X, value),
		})
	case Seq:
		return New(body.Pos, Seq{
			A: Substitute(p.Next.Left, c.A, value),
			B: Substitute(p.Next.Right, c.B, value),
		})
	default:
		panic("expr: substitution path forks at a non-Apply/Seq node")
	}
}
