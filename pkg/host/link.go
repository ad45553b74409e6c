package host

import (
	"github.com/lbfalvy/orchid-sub001/internal/codec"
	"github.com/lbfalvy/orchid-sub001/internal/intern"
	"github.com/lbfalvy/orchid-sub001/internal/obslog"
	"github.com/lbfalvy/orchid-sub001/internal/reqnot"
	"github.com/lbfalvy/orchid-sub001/pkg/protocol"

	"github.com/op/go-logging"
)

// Link is one spawned extension's transport, wired so the rest of this
// package can issue host-to-extension requests with Go types instead of
// hand-rolled encode/decode calls, and so inbound extension-to-host
// traffic (interning, Inspect, Acquire/Release) is answered without the
// caller needing to know the wire envelope exists.
type Link struct {
	transport *reqnot.Transport
	interner  *intern.Interner
	tickets   *TicketTable

	newSystem reqnot.Mapped[protocol.NewSystem, struct{}]
	callRef   reqnot.Mapped[protocol.CallRef, protocol.Expr]
	finalCall reqnot.Mapped[protocol.FinalCall, protocol.Expr]
	atomSame  reqnot.Mapped[protocol.AtomSame, bool]
	fwd       reqnot.Mapped[protocol.Fwd, []byte]
	sweep     reqnot.Mapped[protocol.Sweep, protocol.Retained]

	systemDrop reqnot.MappedNotifier[protocol.SystemDrop]
	atomDrop   reqnot.MappedNotifier[protocol.AtomDrop]
}

// NewLink wires a freshly constructed transport against interner as the
// master answering this extension's interning RPCs, and tickets as the
// table resolving its Inspect requests. log receives anything the
// transport itself needs to report (malformed frames, handler panics).
func NewLink(send reqnot.Sender, interner *intern.Interner, tickets *TicketTable, log *logging.Logger) *Link {
	if log == nil {
		log = obslog.New("host", logging.NOTICE)
	}
	l := &Link{interner: interner, tickets: tickets}
	l.transport = reqnot.New(send, l.onNotification, l.onRequest, log)

	l.newSystem = *reqnot.NewMapped(l.transport,
		func(req protocol.NewSystem) []byte {
			return encodeExtRequest(protocol.ToExtensionRequest{Tag: protocol.ToExtNewSystem, NewSystem: req})
		},
		func([]byte) (struct{}, error) { return struct{}{}, nil },
	)
	l.callRef = *reqnot.NewMapped(l.transport,
		func(req protocol.CallRef) []byte {
			return encodeExtRequest(protocol.ToExtensionRequest{Tag: protocol.ToExtCallRef, CallRef: req})
		},
		func(b []byte) (protocol.Expr, error) { return protocol.DecodeExpr(codec.NewReader(b)) },
	)
	l.finalCall = *reqnot.NewMapped(l.transport,
		func(req protocol.FinalCall) []byte {
			return encodeExtRequest(protocol.ToExtensionRequest{Tag: protocol.ToExtFinalCall, FinalCall: req})
		},
		func(b []byte) (protocol.Expr, error) { return protocol.DecodeExpr(codec.NewReader(b)) },
	)
	l.atomSame = *reqnot.NewMapped(l.transport,
		func(req protocol.AtomSame) []byte {
			return encodeExtRequest(protocol.ToExtensionRequest{Tag: protocol.ToExtAtomSame, AtomSame: req})
		},
		func(b []byte) (bool, error) {
			v, err := codec.NewReader(b).ReadBool()
			return v, err
		},
	)
	l.fwd = *reqnot.NewMapped(l.transport,
		func(req protocol.Fwd) []byte {
			return encodeExtRequest(protocol.ToExtensionRequest{Tag: protocol.ToExtFwd, Fwd: req})
		},
		func(b []byte) ([]byte, error) { return b, nil },
	)
	l.sweep = *reqnot.NewMapped(l.transport,
		func(req protocol.Sweep) []byte {
			return encodeExtRequest(protocol.ToExtensionRequest{Tag: protocol.ToExtSweep, Sweep: req})
		},
		func(b []byte) (protocol.Retained, error) { return protocol.DecodeRetained(codec.NewReader(b)) },
	)

	l.systemDrop = *reqnot.NewMappedNotifier(l.transport, func(req protocol.SystemDrop) []byte {
		return encodeExtNotification(protocol.ToExtensionNotification{Tag: protocol.ToExtSystemDrop, SystemDrop: req})
	})
	l.atomDrop = *reqnot.NewMappedNotifier(l.transport, func(req protocol.AtomDrop) []byte {
		return encodeExtNotification(protocol.ToExtensionNotification{Tag: protocol.ToExtAtomDrop, AtomDrop: req})
	})

	return l
}

func (l *Link) Transport() *reqnot.Transport { return l.transport }

func (l *Link) NewSystem(req protocol.NewSystem) error {
	_, err := l.newSystem.Request(req)
	return err
}

func (l *Link) CallRef(req protocol.CallRef) (protocol.Expr, error)     { return l.callRef.Request(req) }
func (l *Link) FinalCall(req protocol.FinalCall) (protocol.Expr, error) { return l.finalCall.Request(req) }
func (l *Link) AtomSame(req protocol.AtomSame) (bool, error)            { return l.atomSame.Request(req) }
func (l *Link) Fwd(req protocol.Fwd) ([]byte, error)                    { return l.fwd.Request(req) }
func (l *Link) Sweep() (protocol.Retained, error)                       { return l.sweep.Request(protocol.Sweep{}) }

func (l *Link) SystemDrop(req protocol.SystemDrop) error { return l.systemDrop.Notify(req) }
func (l *Link) AtomDrop(req protocol.AtomDrop) error     { return l.atomDrop.Notify(req) }

func (l *Link) onRequest(h *reqnot.RequestHandle) {
	req, err := protocol.DecodeToHostRequest(codec.NewReader(h.Payload()))
	if err != nil {
		h.Respond(nil)
		return
	}
	switch req.Tag {
	case protocol.ToHostInternStr:
		tok, err := l.interner.ServeInternStr(req.InternStr.Value)
		h.Respond(encodeUint64Response(uint64(tok), err))
	case protocol.ToHostInternStrv:
		raw := make([]uint64, len(req.InternStrv.Value))
		for i, t := range req.InternStrv.Value {
			raw[i] = uint64(t)
		}
		tok, err := l.interner.ServeInternStrv(raw)
		h.Respond(encodeUint64Response(uint64(tok), err))
	case protocol.ToHostExternStr:
		v, err := l.interner.ServeExternStr(req.ExternStr.Token)
		h.Respond(encodeStringResponse(v, err))
	case protocol.ToHostExternStrv:
		v, err := l.interner.ServeExternStrv(req.ExternStrv.Token)
		raw := make([]uint64, len(v))
		for i, t := range v {
			raw[i] = uint64(t)
		}
		h.Respond(encodeUint64SliceResponse(raw, err))
	case protocol.ToHostInspect:
		node, ok := l.tickets.Resolve(req.Inspect.Ticket)
		if !ok {
			h.Respond(nil)
			return
		}
		w := codec.NewWriter()
		protocol.EncodeExpr(w, Export(node, l.interner, nil))
		h.Respond(w.Bytes())
	default:
		h.Respond(nil)
	}
}

func (l *Link) onNotification(payload []byte) {
	note, err := protocol.DecodeToHostNotification(codec.NewReader(payload))
	if err != nil {
		return
	}
	switch note.Tag {
	case protocol.ToHostAcquire:
		l.tickets.Acquire(note.Acquire.Ticket)
	case protocol.ToHostRelease:
		l.tickets.Release(note.Release.Ticket)
	}
}

func encodeExtRequest(m protocol.ToExtensionRequest) []byte {
	w := codec.NewWriter()
	m.Encode(w)
	return w.Bytes()
}

func encodeExtNotification(m protocol.ToExtensionNotification) []byte {
	w := codec.NewWriter()
	m.Encode(w)
	return w.Bytes()
}

func encodeUint64Response(v uint64, err error) []byte {
	if err != nil {
		return nil
	}
	w := codec.NewWriter()
	w.WriteUint64(v)
	return w.Bytes()
}

func encodeStringResponse(s string, err error) []byte {
	if err != nil {
		return nil
	}
	w := codec.NewWriter()
	w.WriteString(s)
	return w.Bytes()
}

func encodeUint64SliceResponse(v []uint64, err error) []byte {
	if err != nil {
		return nil
	}
	w := codec.NewWriter()
	codec.WriteSlice(w, v, func(w *codec.Writer, x uint64) { w.WriteUint64(x) })
	return w.Bytes()
}
