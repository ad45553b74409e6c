package host

import (
	"github.com/lbfalvy/orchid-sub001/internal/expr"
	"github.com/lbfalvy/orchid-sub001/internal/intern"
	"github.com/lbfalvy/orchid-sub001/pkg/protocol"
)

// AtomRequester is the RPC surface a RemoteAtom needs from the
// extension that owns it: call it, compare it for identity, and tell
// it the host is done holding it. It is the host-side counterpart to
// intern.Requester: a small, typed slice of reqnot.Mapped requesters
// rather than a direct transport dependency.
type AtomRequester interface {
	CallRef(req protocol.CallRef) (protocol.Expr, error)
	FinalCall(req protocol.FinalCall) (protocol.Expr, error)
	AtomSame(req protocol.AtomSame) (bool, error)
	AtomDrop(req protocol.AtomDrop) error
}

// RemoteAtom is an expr.Atom backed by a value living in an extension
// process, known to the host only as an opaque protocol.AtomRef.
// Calling it issues a CallRef over the wire and decodes the extension's
// answer back into an expression via Import.
type RemoteAtom struct {
	requester AtomRequester
	tickets   *TicketTable
	ref       protocol.AtomRef
	final     bool // selects FinalCall over CallRef; nothing in this package sets it
}

// NewRemoteAtom wraps ref for use as an expr.Atom. tickets resolves any
// Slot clauses the extension's Call response might contain.
func NewRemoteAtom(requester AtomRequester, tickets *TicketTable, ref protocol.AtomRef) *RemoteAtom {
	return &RemoteAtom{requester: requester, tickets: tickets, ref: ref}
}

// Call sends arg to the extension, as a FinalCall when final is set and
// as a CallRef otherwise, and imports the result. Since final is never
// set, every call goes out as a CallRef; the host does not detect an
// atom's last use.
func (a *RemoteAtom) Call(arg *expr.Expression) *expr.Expression {
	argTicket := a.tickets.Issue(arg)
	var wire protocol.Expr
	var err error
	if a.final {
		wire, err = a.requester.FinalCall(protocol.FinalCall{Atom: a.ref, Arg: argTicket})
	} else {
		wire, err = a.requester.CallRef(protocol.CallRef{Atom: a.ref, Arg: argTicket})
	}
	if err != nil {
		return &expr.Expression{Clause: expr.Bottom{Errors: []error{err}}}
	}
	return Import(wire, a.tickets, func(ref protocol.AtomRef) expr.Atom {
		return NewRemoteAtom(a.requester, a.tickets, ref)
	})
}

// Same asks the owning extension to compare the two atoms for identity.
// A RemoteAtom can only be compared against another atom owned by the
// same extension and reachable through the same requester; Same reports
// false for anything else, matching the contract's rule that atoms from
// unrelated sources are never equal.
func (a *RemoteAtom) Same(other expr.Atom) bool {
	o, ok := other.(*RemoteAtom)
	if !ok {
		return false
	}
	same, err := a.requester.AtomSame(protocol.AtomSame{A: a.ref, B: o.ref})
	if err != nil {
		return false
	}
	return same
}

// Drop tells the extension the host's last handle on this atom is gone.
// Calling Call again afterward is a misuse this type does not guard
// against; the extension side owns that invariant.
func (a *RemoteAtom) Drop() error {
	return a.requester.AtomDrop(protocol.AtomDrop{Atom: a.ref})
}

// Import turns a wire Expr into an in-process *expr.Expression,
// resolving any Slot clause through tickets to the node the host issued
// that ticket for (an extension may return an expression built partly
// from tickets the host already knows, e.g. echoing its own argument
// back; an unknown ticket imports as a Bottom) and wrapping any Atom
// clause with newAtom.
func Import(w protocol.Expr, tickets *TicketTable, newAtom func(protocol.AtomRef) expr.Atom) *expr.Expression {
	// w.Pos.Module is an interned token, not a string: resolving it
	// needs an interner round trip the import path does not have a
	// reason to pay for on every expression, so positions imported this
	// way carry no module name.
	pos := expr.Position{Line: int(w.Pos.Line), Col: int(w.Pos.Col)}
	switch w.Clause.Tag {
	case protocol.ClauseAtom:
		return &expr.Expression{Pos: pos, Clause: expr.AtomClause{Atom: newAtom(w.Clause.Atom)}}
	case protocol.ClauseBottom:
		errs := make([]error, len(w.Clause.Errors))
		for i, s := range w.Clause.Errors {
			errs[i] = remoteError(s)
		}
		return &expr.Expression{Pos: pos, Clause: expr.Bottom{Errors: errs}}
	case protocol.ClauseSlot:
		if node, ok := tickets.Resolve(w.Clause.Ticket); ok {
			return node
		}
		return &expr.Expression{Pos: pos, Clause: expr.Bottom{Errors: []error{
			remoteError("reference to a ticket the host never issued"),
		}}}
	default:
		return &expr.Expression{Pos: pos, Clause: expr.Bottom{Errors: []error{
			remoteError("expression clause shape not valid in an imported value"),
		}}}
	}
}

// remoteError wraps a rendered error string from an extension's Bottom
// clause: the extension already formatted it, so the host only needs to
// carry it, not reinterpret it.
type remoteError string

func (e remoteError) Error() string { return string(e) }

// refHolder is implemented by any Atom that can identify itself to the
// extension that owns it; RemoteAtom is the only one so far.
type refHolder interface {
	Ref() protocol.AtomRef
}

// Ref returns the AtomRef this RemoteAtom was constructed from.
func (a *RemoteAtom) Ref() protocol.AtomRef { return a.ref }

var nextBinderID uint64

func freshBinderID() uint64 {
	nextBinderID++
	return nextBinderID
}

// markerAt walks body along p to the Expression node holding the
// ArgMarker a Lambda's occurrence path describes, recursing through
// whichever fork Next names. It mirrors Substitute's own traversal, but
// reads a pointer out instead of rewriting anything.
func markerAt(body *expr.Expression, p *expr.PathSet) *expr.ArgMarker {
	cur := body
	for _, step := range p.Steps {
		switch c := cur.Clause.(type) {
		case expr.Apply:
			if step == expr.Left {
				cur = c.F
			} else {
				cur = c.X
			}
		case expr.Seq:
			if step == expr.Left {
				cur = c.A
			} else {
				cur = c.B
			}
		default:
			return nil
		}
	}
	if p.Next == nil {
		m, _ := cur.Clause.(*expr.ArgMarker)
		return m
	}
	switch c := cur.Clause.(type) {
	case expr.Apply:
		if m := markerAt(c.F, p.Next.Left); m != nil {
			return m
		}
		return markerAt(c.X, p.Next.Right)
	case expr.Seq:
		if m := markerAt(c.A, p.Next.Left); m != nil {
			return m
		}
		return markerAt(c.B, p.Next.Right)
	default:
		return nil
	}
}

// Export turns an in-process *expr.Expression into its wire form, for
// answering an extension's Inspect request. Atoms must satisfy
// refHolder (RemoteAtom does); an atom created directly by the host
// with no extension of origin has no AtomRef to report and exports as a
// Bottom explaining as much, since there is nothing else honest to send
// across this particular wire. interner turns a Const's Symbol into the
// single interned token the wire form carries.
func Export(node *expr.Expression, interner *intern.Interner, binders map[*expr.ArgMarker]uint64) protocol.Expr {
	pos := protocol.Pos{Line: uint32(node.Pos.Line), Col: uint32(node.Pos.Col)}
	switch c := node.Clause.(type) {
	case expr.Identity:
		return Export(c.Target, interner, binders)
	case expr.Apply:
		f := Export(c.F, interner, binders)
		x := Export(c.X, interner, binders)
		return protocol.Expr{Pos: pos, Clause: protocol.Clause{Tag: protocol.ClauseCall, F: &f, X: &x}}
	case expr.Seq:
		a := Export(c.A, interner, binders)
		b := Export(c.B, interner, binders)
		return protocol.Expr{Pos: pos, Clause: protocol.Clause{Tag: protocol.ClauseSeq, F: &a, X: &b}}
	case expr.Lambda:
		id := freshBinderID()
		child := binders
		if c.Path != nil {
			if m := markerAt(c.Body, c.Path); m != nil {
				child = make(map[*expr.ArgMarker]uint64, len(binders)+1)
				for k, v := range binders {
					child[k] = v
				}
				child[m] = id
			}
		}
		body := Export(c.Body, interner, child)
		return protocol.Expr{Pos: pos, Clause: protocol.Clause{Tag: protocol.ClauseLambda, Arg: id, Body: &body}}
	case *expr.ArgMarker:
		id, ok := binders[c]
		if !ok {
			return protocol.Expr{Pos: pos, Clause: protocol.Clause{
				Tag:    protocol.ClauseBottom,
				Errors: []string{"unresolved parameter reference outside its lambda"},
			}}
		}
		return protocol.Expr{Pos: pos, Clause: protocol.Clause{Tag: protocol.ClauseArg, Arg: id}}
	case expr.Const:
		sym, err := interner.InternStrv(c.Symbol)
		if err != nil {
			return protocol.Expr{Pos: pos, Clause: protocol.Clause{
				Tag:    protocol.ClauseBottom,
				Errors: []string{err.Error()},
			}}
		}
		return protocol.Expr{Pos: pos, Clause: protocol.Clause{Tag: protocol.ClauseConst, Sym: sym}}
	case expr.AtomClause:
		if rh, ok := c.Atom.(refHolder); ok {
			return protocol.Expr{Pos: pos, Clause: protocol.Clause{Tag: protocol.ClauseAtom, Atom: rh.Ref()}}
		}
		return protocol.Expr{Pos: pos, Clause: protocol.Clause{
			Tag:    protocol.ClauseBottom,
			Errors: []string{"atom has no extension of origin to export to"},
		}}
	case expr.Bottom:
		errs := make([]string, len(c.Errors))
		for i, e := range c.Errors {
			errs[i] = e.Error()
		}
		return protocol.Expr{Pos: pos, Clause: protocol.Clause{Tag: protocol.ClauseBottom, Errors: errs}}
	default:
		return protocol.Expr{Pos: pos, Clause: protocol.Clause{
			Tag:    protocol.ClauseBottom,
			Errors: []string{"expression clause shape not valid in an exported value"},
		}}
	}
}
