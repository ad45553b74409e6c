package protocol

import (
	"github.com/lbfalvy/orchid-sub001/internal/codec"
	"github.com/lbfalvy/orchid-sub001/internal/intern"
)

// ExprTicket names one expression node living in a host's runtime
// graph, as seen from across the wire. An extension holds tickets, not
// pointers: Acquire/Release keep the host's reference count for a
// ticket in step with how many extension-side handles refer to it.
type ExprTicket uint64

// AtomRef identifies an atom by the system that owns it plus its
// opaque, system-defined payload. The payload's shape is never
// interpreted by the host or the transport; only the owning system's
// extension process knows how to read it.
type AtomRef struct {
	Sys  SysID
	Data []byte
}

func encodeAtomRef(w *codec.Writer, a AtomRef) {
	w.WriteUint64(uint64(a.Sys))
	w.WriteBytes(a.Data)
}

func decodeAtomRef(r *codec.Reader) (a AtomRef, err error) {
	sys, err := r.ReadUint64()
	if err != nil {
		return
	}
	a.Sys = SysID(sys)
	a.Data, err = r.ReadBytes()
	return
}

// Pos is the wire form of a source position: the module path as an
// interned symbol, plus line and column.
type Pos struct {
	Module intern.StrvToken
	Line   uint32
	Col    uint32
}

func encodePos(w *codec.Writer, p Pos) {
	w.WriteUint64(uint64(p.Module))
	w.WriteUint32(p.Line)
	w.WriteUint32(p.Col)
}

func decodePos(r *codec.Reader) (p Pos, err error) {
	m, err := r.ReadUint64()
	if err != nil {
		return
	}
	p.Module = intern.StrvToken(m)
	if p.Line, err = r.ReadUint32(); err != nil {
		return
	}
	p.Col, err = r.ReadUint32()
	return
}

// Clause tags are the wire discriminants for Expr.Clause, in the same
// order expr.Clause's variants appear, minus Identity: Identity is an
// evaluator-internal bookkeeping device and never crosses the wire.
const (
	ClauseCall uint8 = iota
	ClauseLambda
	ClauseArg
	ClauseSeq
	ClauseConst
	ClauseAtom
	ClauseBottom
	ClauseSlot
)

// Clause is the wire form of an expression node's content. Lambda's
// bound variable is a small integer unique within one Expr tree (the
// wire form has no pointer identity to lean on, unlike expr.ArgMarker),
// and Arg(n) refers back to the nearest enclosing Lambda sharing that
// same n, exactly as the originating Rust wire format does.
type Clause struct {
	Tag    uint8
	F, X   *Expr          // Call, Seq
	Arg    uint64         // Lambda (binder id), Arg (reference id)
	Body   *Expr          // Lambda
	Sym    intern.StrvToken // Const
	Atom   AtomRef        // Atom
	Ticket ExprTicket     // Slot (an unresolved reference the receiver must Inspect)
	Errors []string       // Bottom, already rendered: error detail formatting is a
	// host-side concern, so only display text crosses the wire.
}

// Expr is the wire form of one expression node.
type Expr struct {
	Pos    Pos
	Clause Clause
}

func EncodeExpr(w *codec.Writer, e Expr) {
	encodePos(w, e.Pos)
	c := e.Clause
	w.WriteTag(c.Tag)
	switch c.Tag {
	case ClauseCall, ClauseSeq:
		EncodeExpr(w, *c.F)
		EncodeExpr(w, *c.X)
	case ClauseLambda:
		w.WriteUint64(c.Arg)
		EncodeExpr(w, *c.Body)
	case ClauseArg:
		w.WriteUint64(c.Arg)
	case ClauseConst:
		w.WriteUint64(uint64(c.Sym))
	case ClauseAtom:
		encodeAtomRef(w, c.Atom)
	case ClauseBottom:
		codec.WriteSlice(w, c.Errors, func(w *codec.Writer, s string) { w.WriteString(s) })
	case ClauseSlot:
		w.WriteUint64(uint64(c.Ticket))
	}
}

func DecodeExpr(r *codec.Reader) (e Expr, err error) {
	if e.Pos, err = decodePos(r); err != nil {
		return
	}
	tag, err := r.ReadTag()
	if err != nil {
		return
	}
	e.Clause.Tag = tag
	switch tag {
	case ClauseCall, ClauseSeq:
		f, err := DecodeExpr(r)
		if err != nil {
			return e, err
		}
		x, err := DecodeExpr(r)
		if err != nil {
			return e, err
		}
		e.Clause.F, e.Clause.X = &f, &x
	case ClauseLambda:
		if e.Clause.Arg, err = r.ReadUint64(); err != nil {
			return
		}
		body, err := DecodeExpr(r)
		if err != nil {
			return e, err
		}
		e.Clause.Body = &body
	case ClauseArg:
		e.Clause.Arg, err = r.ReadUint64()
	case ClauseConst:
		var v uint64
		v, err = r.ReadUint64()
		e.Clause.Sym = intern.StrvToken(v)
	case ClauseAtom:
		e.Clause.Atom, err = decodeAtomRef(r)
	case ClauseBottom:
		e.Clause.Errors, err = codec.ReadSlice(r, func(r *codec.Reader) (string, error) { return r.ReadString() })
	case ClauseSlot:
		var v uint64
		v, err = r.ReadUint64()
		e.Clause.Ticket = ExprTicket(v)
	default:
		err = &codec.CorruptError{What: "expression clause tag"}
	}
	return
}

// Acquire is an extension -> host notification: the extension has
// taken a new handle on ticket and the host's reference count for it
// must go up by one.
type Acquire struct {
	Sys    SysID
	Ticket ExprTicket
}

func (m Acquire) Encode(w *codec.Writer) {
	w.WriteUint64(uint64(m.Sys))
	w.WriteUint64(uint64(m.Ticket))
}

func DecodeAcquire(r *codec.Reader) (m Acquire, err error) {
	sys, err := r.ReadUint64()
	if err != nil {
		return
	}
	m.Sys = SysID(sys)
	tk, err := r.ReadUint64()
	m.Ticket = ExprTicket(tk)
	return
}

// Release is Acquire's inverse: a handle was dropped.
type Release struct {
	Sys    SysID
	Ticket ExprTicket
}

func (m Release) Encode(w *codec.Writer) {
	w.WriteUint64(uint64(m.Sys))
	w.WriteUint64(uint64(m.Ticket))
}

func DecodeRelease(r *codec.Reader) (m Release, err error) {
	sys, err := r.ReadUint64()
	if err != nil {
		return
	}
	m.Sys = SysID(sys)
	tk, err := r.ReadUint64()
	m.Ticket = ExprTicket(tk)
	return
}

// Inspect is an extension -> host request: resolve ticket to its
// current expression content.
type Inspect struct{ Ticket ExprTicket }

func (m Inspect) Encode(w *codec.Writer) { w.WriteUint64(uint64(m.Ticket)) }

func DecodeInspect(r *codec.Reader) (m Inspect, err error) {
	v, err := r.ReadUint64()
	return Inspect{Ticket: ExprTicket(v)}, err
}

// CallRef is a host -> extension request: call the atom (by reference;
// the extension retains ownership) with the given argument ticket.
type CallRef struct {
	Atom AtomRef
	Arg  ExprTicket
}

func (m CallRef) Encode(w *codec.Writer) {
	encodeAtomRef(w, m.Atom)
	w.WriteUint64(uint64(m.Arg))
}

func DecodeCallRef(r *codec.Reader) (m CallRef, err error) {
	if m.Atom, err = decodeAtomRef(r); err != nil {
		return
	}
	v, err := r.ReadUint64()
	m.Arg = ExprTicket(v)
	return
}

// FinalCall is CallRef's consuming counterpart: the host is done with
// this atom value after the call and the extension need not keep it.
type FinalCall struct {
	Atom AtomRef
	Arg  ExprTicket
}

func (m FinalCall) Encode(w *codec.Writer) {
	encodeAtomRef(w, m.Atom)
	w.WriteUint64(uint64(m.Arg))
}

func DecodeFinalCall(r *codec.Reader) (m FinalCall, err error) {
	if m.Atom, err = decodeAtomRef(r); err != nil {
		return
	}
	v, err := r.ReadUint64()
	m.Arg = ExprTicket(v)
	return
}

// AtomSame is a host -> extension request comparing two atoms owned by
// the same system for identity, per the Atom contract's Same method.
type AtomSame struct{ A, B AtomRef }

func (m AtomSame) Encode(w *codec.Writer) {
	encodeAtomRef(w, m.A)
	encodeAtomRef(w, m.B)
}

func DecodeAtomSame(r *codec.Reader) (m AtomSame, err error) {
	if m.A, err = decodeAtomRef(r); err != nil {
		return
	}
	m.B, err = decodeAtomRef(r)
	return
}

// AtomDrop is a host -> extension notification: the host's last handle
// on this atom is gone.
type AtomDrop struct{ Atom AtomRef }

func (m AtomDrop) Encode(w *codec.Writer) { encodeAtomRef(w, m.Atom) }

func DecodeAtomDrop(r *codec.Reader) (m AtomDrop, err error) {
	m.Atom, err = decodeAtomRef(r)
	return
}

// Fwd is a host -> extension request forwarding an atom-defined,
// system-specific command: a tag selecting which behavior to invoke
// plus an opaque body, with an opaque reply. Neither side of the
// transport interprets tag or the bytes; only the atom's own Request
// method (see internal/expr.Requestable) does.
type Fwd struct {
	Atom AtomRef
	Tag  uint8
	Body []byte
}

func (m Fwd) Encode(w *codec.Writer) {
	encodeAtomRef(w, m.Atom)
	w.WriteUint8(m.Tag)
	w.WriteBytes(m.Body)
}

func DecodeFwd(r *codec.Reader) (m Fwd, err error) {
	if m.Atom, err = decodeAtomRef(r); err != nil {
		return
	}
	if m.Tag, err = r.ReadUint8(); err != nil {
		return
	}
	m.Body, err = r.ReadBytes()
	return
}
