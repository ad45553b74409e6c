package protocol

import "github.com/lbfalvy/orchid-sub001/internal/codec"

// A Transport's RequestHandler and NotificationHandler each see one
// shared byte stream regardless of which of these message types arrives,
// so every request and notification that can cross a given direction of
// the host/extension link is wrapped in an envelope carrying a leading
// tag. The request side's response is never enveloped: whoever issued
// the request already knows which Decode* to call on the answer.

// Tags for requests an extension sends to its host.
const (
	ToHostInternStr uint8 = iota
	ToHostInternStrv
	ToHostExternStr
	ToHostExternStrv
	ToHostInspect
)

// ToHostRequest envelopes one request an extension can send to its
// host.
type ToHostRequest struct {
	Tag        uint8
	InternStr  InternStr
	InternStrv InternStrv
	ExternStr  ExternStr
	ExternStrv ExternStrv
	Inspect    Inspect
}

func (m ToHostRequest) Encode(w *codec.Writer) {
	w.WriteTag(m.Tag)
	switch m.Tag {
	case ToHostInternStr:
		m.InternStr.Encode(w)
	case ToHostInternStrv:
		m.InternStrv.Encode(w)
	case ToHostExternStr:
		m.ExternStr.Encode(w)
	case ToHostExternStrv:
		m.ExternStrv.Encode(w)
	case ToHostInspect:
		m.Inspect.Encode(w)
	}
}

func DecodeToHostRequest(r *codec.Reader) (m ToHostRequest, err error) {
	if m.Tag, err = r.ReadTag(); err != nil {
		return
	}
	switch m.Tag {
	case ToHostInternStr:
		m.InternStr, err = DecodeInternStr(r)
	case ToHostInternStrv:
		m.InternStrv, err = DecodeInternStrv(r)
	case ToHostExternStr:
		m.ExternStr, err = DecodeExternStr(r)
	case ToHostExternStrv:
		m.ExternStrv, err = DecodeExternStrv(r)
	case ToHostInspect:
		m.Inspect, err = DecodeInspect(r)
	default:
		err = &codec.CorruptError{What: "extension-to-host request tag"}
	}
	return
}

// Tags for notifications an extension sends to its host.
const (
	ToHostAcquire uint8 = iota
	ToHostRelease
)

// ToHostNotification envelopes one notification an extension can send
// to its host.
type ToHostNotification struct {
	Tag     uint8
	Acquire Acquire
	Release Release
}

func (m ToHostNotification) Encode(w *codec.Writer) {
	w.WriteTag(m.Tag)
	switch m.Tag {
	case ToHostAcquire:
		m.Acquire.Encode(w)
	case ToHostRelease:
		m.Release.Encode(w)
	}
}

func DecodeToHostNotification(r *codec.Reader) (m ToHostNotification, err error) {
	if m.Tag, err = r.ReadTag(); err != nil {
		return
	}
	switch m.Tag {
	case ToHostAcquire:
		m.Acquire, err = DecodeAcquire(r)
	case ToHostRelease:
		m.Release, err = DecodeRelease(r)
	default:
		err = &codec.CorruptError{What: "extension-to-host notification tag"}
	}
	return
}

// Tags for requests a host sends to one of its extensions.
const (
	ToExtNewSystem uint8 = iota
	ToExtCallRef
	ToExtFinalCall
	ToExtAtomSame
	ToExtFwd
	ToExtSweep
)

// ToExtensionRequest envelopes one request a host can send to an
// extension.
type ToExtensionRequest struct {
	Tag       uint8
	NewSystem NewSystem
	CallRef   CallRef
	FinalCall FinalCall
	AtomSame  AtomSame
	Fwd       Fwd
	Sweep     Sweep
}

func (m ToExtensionRequest) Encode(w *codec.Writer) {
	w.WriteTag(m.Tag)
	switch m.Tag {
	case ToExtNewSystem:
		m.NewSystem.Encode(w)
	case ToExtCallRef:
		m.CallRef.Encode(w)
	case ToExtFinalCall:
		m.FinalCall.Encode(w)
	case ToExtAtomSame:
		m.AtomSame.Encode(w)
	case ToExtFwd:
		m.Fwd.Encode(w)
	case ToExtSweep:
		m.Sweep.Encode(w)
	}
}

func DecodeToExtensionRequest(r *codec.Reader) (m ToExtensionRequest, err error) {
	if m.Tag, err = r.ReadTag(); err != nil {
		return
	}
	switch m.Tag {
	case ToExtNewSystem:
		m.NewSystem, err = DecodeNewSystem(r)
	case ToExtCallRef:
		m.CallRef, err = DecodeCallRef(r)
	case ToExtFinalCall:
		m.FinalCall, err = DecodeFinalCall(r)
	case ToExtAtomSame:
		m.AtomSame, err = DecodeAtomSame(r)
	case ToExtFwd:
		m.Fwd, err = DecodeFwd(r)
	case ToExtSweep:
		m.Sweep, err = DecodeSweep(r)
	default:
		err = &codec.CorruptError{What: "host-to-extension request tag"}
	}
	return
}

// Tags for notifications a host sends to one of its extensions.
const (
	ToExtSystemDrop uint8 = iota
	ToExtAtomDrop
)

// ToExtensionNotification envelopes one notification a host can send to
// an extension.
type ToExtensionNotification struct {
	Tag        uint8
	SystemDrop SystemDrop
	AtomDrop   AtomDrop
}

func (m ToExtensionNotification) Encode(w *codec.Writer) {
	w.WriteTag(m.Tag)
	switch m.Tag {
	case ToExtSystemDrop:
		m.SystemDrop.Encode(w)
	case ToExtAtomDrop:
		m.AtomDrop.Encode(w)
	}
}

func DecodeToExtensionNotification(r *codec.Reader) (m ToExtensionNotification, err error) {
	if m.Tag, err = r.ReadTag(); err != nil {
		return
	}
	switch m.Tag {
	case ToExtSystemDrop:
		m.SystemDrop, err = DecodeSystemDrop(r)
	case ToExtAtomDrop:
		m.AtomDrop, err = DecodeAtomDrop(r)
	default:
		err = &codec.CorruptError{What: "host-to-extension notification tag"}
	}
	return
}
