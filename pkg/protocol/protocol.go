// Package protocol is the concrete message catalogue exchanged between
// a host process and an extension process: handshake headers, system
// lifecycle, interning, sweeping, and expression-ticket management. Each
// type below knows how to encode and decode itself through
// internal/codec; internal/reqnot only ever sees the resulting bytes.
package protocol

import (
	"github.com/blang/semver"
	uuid "github.com/satori/go.uuid"

	"github.com/lbfalvy/orchid-sub001/internal/codec"
	"github.com/lbfalvy/orchid-sub001/internal/intern"
)

// SysID identifies one running system instance within a host, assigned
// by the host when it issues NewSystem.
type SysID uint64

// SysDeclID identifies a system as declared by an extension binary,
// distinct from the runtime SysID a host hands out.
type SysDeclID uint16

// HostHeader is the first message a host sends on a newly connected
// extension's connection, establishing the protocol version it speaks.
type HostHeader struct {
	Version semver.Version
}

func (h HostHeader) Encode(w *codec.Writer) {
	w.WriteUint64(h.Version.Major)
	w.WriteUint64(h.Version.Minor)
	w.WriteUint64(h.Version.Patch)
}

func DecodeHostHeader(r *codec.Reader) (h HostHeader, err error) {
	if h.Version.Major, err = r.ReadUint64(); err != nil {
		return
	}
	if h.Version.Minor, err = r.ReadUint64(); err != nil {
		return
	}
	h.Version.Patch, err = r.ReadUint64()
	return
}

// ExtensionHeader is an extension's reply on that connection: the protocol
// version it supports, a stable identity for reconnection, and the
// systems it declares it can instantiate.
type ExtensionHeader struct {
	Version  semver.Version
	StableID uuid.UUID
	Systems  []SystemDecl
}

// SystemDecl is one system an extension is able to instantiate, along
// with the other declared systems it depends on.
type SystemDecl struct {
	ID        SysDeclID
	Name      string
	DependsOn []SysDeclID
}

func encodeSystemDecl(w *codec.Writer, d SystemDecl) {
	w.WriteUint16(uint16(d.ID))
	w.WriteString(d.Name)
	codec.WriteSlice(w, d.DependsOn, func(w *codec.Writer, id SysDeclID) { w.WriteUint16(uint16(id)) })
}

func decodeSystemDecl(r *codec.Reader) (d SystemDecl, err error) {
	var id uint16
	if id, err = r.ReadUint16(); err != nil {
		return
	}
	d.ID = SysDeclID(id)
	if d.Name, err = r.ReadString(); err != nil {
		return
	}
	d.DependsOn, err = codec.ReadSlice(r, func(r *codec.Reader) (SysDeclID, error) {
		v, err := r.ReadUint16()
		return SysDeclID(v), err
	})
	return
}

func (h ExtensionHeader) Encode(w *codec.Writer) {
	w.WriteUint64(h.Version.Major)
	w.WriteUint64(h.Version.Minor)
	w.WriteUint64(h.Version.Patch)
	w.Raw(h.StableID.Bytes())
	codec.WriteSlice(w, h.Systems, encodeSystemDecl)
}

func DecodeExtensionHeader(r *codec.Reader) (h ExtensionHeader, err error) {
	if h.Version.Major, err = r.ReadUint64(); err != nil {
		return
	}
	if h.Version.Minor, err = r.ReadUint64(); err != nil {
		return
	}
	if h.Version.Patch, err = r.ReadUint64(); err != nil {
		return
	}
	raw, err := r.Raw(16)
	if err != nil {
		return
	}
	if h.StableID, err = uuid.FromBytes(raw); err != nil {
		return
	}
	h.Systems, err = codec.ReadSlice(r, decodeSystemDecl)
	return
}

// NewSystem is a host -> extension request instructing the extension to
// instantiate one of its declared systems, supplying the already-running
// systems it depends on.
type NewSystem struct {
	ID      SysID
	Decl    SysDeclID
	Depends []SysID
}

func (m NewSystem) Encode(w *codec.Writer) {
	w.WriteUint64(uint64(m.ID))
	w.WriteUint16(uint16(m.Decl))
	codec.WriteSlice(w, m.Depends, func(w *codec.Writer, id SysID) { w.WriteUint64(uint64(id)) })
}

func DecodeNewSystem(r *codec.Reader) (m NewSystem, err error) {
	var id uint64
	if id, err = r.ReadUint64(); err != nil {
		return
	}
	m.ID = SysID(id)
	var decl uint16
	if decl, err = r.ReadUint16(); err != nil {
		return
	}
	m.Decl = SysDeclID(decl)
	m.Depends, err = codec.ReadSlice(r, func(r *codec.Reader) (SysID, error) {
		v, err := r.ReadUint64()
		return SysID(v), err
	})
	return
}

// SystemDrop is a host -> extension notification: the named system
// instance is gone and any state keyed on it may be released.
type SystemDrop struct {
	ID SysID
}

func (m SystemDrop) Encode(w *codec.Writer) { w.WriteUint64(uint64(m.ID)) }

func DecodeSystemDrop(r *codec.Reader) (m SystemDrop, err error) {
	id, err := r.ReadUint64()
	return SystemDrop{ID: SysID(id)}, err
}

// InternStr is a replica -> master request interning a string.
type InternStr struct{ Value string }

func (m InternStr) Encode(w *codec.Writer) { w.WriteString(m.Value) }

func DecodeInternStr(r *codec.Reader) (m InternStr, err error) {
	m.Value, err = r.ReadString()
	return
}

// InternStrv is a replica -> master request interning a token vector,
// given as its already-interned member tokens.
type InternStrv struct{ Value []intern.StrToken }

func (m InternStrv) Encode(w *codec.Writer) {
	codec.WriteSlice(w, m.Value, func(w *codec.Writer, t intern.StrToken) { w.WriteUint64(uint64(t)) })
}

func DecodeInternStrv(r *codec.Reader) (m InternStrv, err error) {
	m.Value, err = codec.ReadSlice(r, func(r *codec.Reader) (intern.StrToken, error) {
		v, err := r.ReadUint64()
		return intern.StrToken(v), err
	})
	return
}

// ExternStr is a replica -> master request resolving a string token
// back to its text.
type ExternStr struct{ Token intern.StrToken }

func (m ExternStr) Encode(w *codec.Writer) { w.WriteUint64(uint64(m.Token)) }

func DecodeExternStr(r *codec.Reader) (m ExternStr, err error) {
	v, err := r.ReadUint64()
	return ExternStr{Token: intern.StrToken(v)}, err
}

// ExternStrv is a replica -> master request resolving a token-vector
// token back to its member tokens.
type ExternStrv struct{ Token intern.StrvToken }

func (m ExternStrv) Encode(w *codec.Writer) { w.WriteUint64(uint64(m.Token)) }

func DecodeExternStrv(r *codec.Reader) (m ExternStrv, err error) {
	v, err := r.ReadUint64()
	return ExternStrv{Token: intern.StrvToken(v)}, err
}

// Sweep is a master -> replica request: report every interned entry the
// replica still holds an external reference to. The master will not
// sweep its own table until every replica has answered.
type Sweep struct{}

func (Sweep) Encode(w *codec.Writer) {}

func DecodeSweep(r *codec.Reader) (Sweep, error) { return Sweep{}, nil }

// Retained answers Sweep: the tokens this replica could not evict.
type Retained struct {
	Strings []intern.StrToken
	Vectors []intern.StrvToken
}

func (m Retained) Encode(w *codec.Writer) {
	codec.WriteSlice(w, m.Strings, func(w *codec.Writer, t intern.StrToken) { w.WriteUint64(uint64(t)) })
	codec.WriteSlice(w, m.Vectors, func(w *codec.Writer, t intern.StrvToken) { w.WriteUint64(uint64(t)) })
}

func DecodeRetained(r *codec.Reader) (m Retained, err error) {
	if m.Strings, err = codec.ReadSlice(r, func(r *codec.Reader) (intern.StrToken, error) {
		v, err := r.ReadUint64()
		return intern.StrToken(v), err
	}); err != nil {
		return
	}
	m.Vectors, err = codec.ReadSlice(r, func(r *codec.Reader) (intern.StrvToken, error) {
		v, err := r.ReadUint64()
		return intern.StrvToken(v), err
	})
	return
}
