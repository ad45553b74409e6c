package expr

import "github.com/lbfalvy/orchid-sub001/internal/codec"

// Serializable is satisfied by atoms that can cross the host/extension
// boundary by value rather than by ticket. Not every Atom needs this;
// an atom that never leaves the process it was created in can omit it.
type Serializable interface {
	Atom
	Serialize(w *codec.Writer)
}

// Requestable is satisfied by atoms that accept typed forwarded
// sub-requests (the Fwd message in the host/extension protocol). tag
// selects which request shape body encodes; the return value is the
// codec-encoded response payload.
type Requestable interface {
	Atom
	Request(tag uint8, body *codec.Reader) ([]byte, error)
}
