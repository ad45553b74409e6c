package host

import (
	"github.com/lbfalvy/orchid-sub001/internal/codec"
	"github.com/lbfalvy/orchid-sub001/internal/intern"
	"github.com/lbfalvy/orchid-sub001/internal/reqnot"
	"github.com/lbfalvy/orchid-sub001/pkg/protocol"

	"github.com/op/go-logging"
)

// HostLink is an extension process's transport to its host: the
// inverse of Link. It issues the four interning RPCs intern.Requester
// needs and answers CallRef/FinalCall/AtomSame/Fwd/Sweep/NewSystem from
// the host side.
type HostLink struct {
	transport *reqnot.Transport

	internStr  reqnot.Mapped[protocol.InternStr, uint64]
	internStrv reqnot.Mapped[protocol.InternStrv, uint64]
	externStr  reqnot.Mapped[protocol.ExternStr, string]
	externStrv reqnot.Mapped[protocol.ExternStrv, []uint64]
	inspect    reqnot.Mapped[protocol.Inspect, protocol.Expr]

	acquire reqnot.MappedNotifier[protocol.Acquire]
	release reqnot.MappedNotifier[protocol.Release]
}

// ExtensionHandler answers the requests and notifications a host sends
// to this extension. An embedding caller implements it once its systems
// are ready to serve calls.
type ExtensionHandler interface {
	NewSystem(req protocol.NewSystem) error
	CallRef(req protocol.CallRef) (protocol.Expr, error)
	FinalCall(req protocol.FinalCall) (protocol.Expr, error)
	AtomSame(req protocol.AtomSame) (bool, error)
	Fwd(req protocol.Fwd) ([]byte, error)
	Sweep() protocol.Retained
	SystemDrop(req protocol.SystemDrop)
	AtomDrop(req protocol.AtomDrop)
}

// NewHostLink wires a freshly constructed transport to send, answering
// inbound host requests and notifications by dispatching to handler.
func NewHostLink(send reqnot.Sender, handler ExtensionHandler, log *logging.Logger) *HostLink {
	l := &HostLink{}
	l.transport = reqnot.New(send, l.onNotification(handler), l.onRequest(handler), log)

	l.internStr = *reqnot.NewMapped(l.transport,
		func(req protocol.InternStr) []byte {
			return encodeHostRequest(protocol.ToHostRequest{Tag: protocol.ToHostInternStr, InternStr: req})
		},
		func(b []byte) (uint64, error) { return codec.NewReader(b).ReadUint64() },
	)
	l.internStrv = *reqnot.NewMapped(l.transport,
		func(req protocol.InternStrv) []byte {
			return encodeHostRequest(protocol.ToHostRequest{Tag: protocol.ToHostInternStrv, InternStrv: req})
		},
		func(b []byte) (uint64, error) { return codec.NewReader(b).ReadUint64() },
	)
	l.externStr = *reqnot.NewMapped(l.transport,
		func(req protocol.ExternStr) []byte {
			return encodeHostRequest(protocol.ToHostRequest{Tag: protocol.ToHostExternStr, ExternStr: req})
		},
		func(b []byte) (string, error) { return codec.NewReader(b).ReadString() },
	)
	l.externStrv = *reqnot.NewMapped(l.transport,
		func(req protocol.ExternStrv) []byte {
			return encodeHostRequest(protocol.ToHostRequest{Tag: protocol.ToHostExternStrv, ExternStrv: req})
		},
		func(b []byte) ([]uint64, error) {
			return codec.ReadSlice(codec.NewReader(b), func(r *codec.Reader) (uint64, error) { return r.ReadUint64() })
		},
	)
	l.inspect = *reqnot.NewMapped(l.transport,
		func(req protocol.Inspect) []byte {
			return encodeHostRequest(protocol.ToHostRequest{Tag: protocol.ToHostInspect, Inspect: req})
		},
		func(b []byte) (protocol.Expr, error) { return protocol.DecodeExpr(codec.NewReader(b)) },
	)

	l.acquire = *reqnot.NewMappedNotifier(l.transport, func(req protocol.Acquire) []byte {
		return encodeHostNotification(protocol.ToHostNotification{Tag: protocol.ToHostAcquire, Acquire: req})
	})
	l.release = *reqnot.NewMappedNotifier(l.transport, func(req protocol.Release) []byte {
		return encodeHostNotification(protocol.ToHostNotification{Tag: protocol.ToHostRelease, Release: req})
	})

	return l
}

func (l *HostLink) Transport() *reqnot.Transport { return l.transport }

// InternStr and its three siblings satisfy intern.Requester, so
// *HostLink can be passed directly to intern.InitReplica.
func (l *HostLink) InternStr(value string) (uint64, error) {
	return l.internStr.Request(protocol.InternStr{Value: value})
}

func (l *HostLink) InternStrv(value []uint64) (uint64, error) {
	tokens := make([]intern.StrToken, len(value))
	for i, v := range value {
		tokens[i] = intern.StrToken(v)
	}
	return l.internStrv.Request(protocol.InternStrv{Value: tokens})
}

func (l *HostLink) ExternStr(token uint64) (string, error) {
	return l.externStr.Request(protocol.ExternStr{Token: intern.StrToken(token)})
}

func (l *HostLink) ExternStrv(token uint64) ([]uint64, error) {
	return l.externStrv.Request(protocol.ExternStrv{Token: intern.StrvToken(token)})
}

// Inspect resolves a ticket the host has handed this extension to its
// current expression content.
func (l *HostLink) Inspect(ticket protocol.ExprTicket) (protocol.Expr, error) {
	return l.inspect.Request(protocol.Inspect{Ticket: ticket})
}

// Acquire and Release notify the host of a change in this extension's
// reference count for ticket.
func (l *HostLink) Acquire(sys protocol.SysID, ticket protocol.ExprTicket) error {
	return l.acquire.Notify(protocol.Acquire{Sys: sys, Ticket: ticket})
}

func (l *HostLink) Release(sys protocol.SysID, ticket protocol.ExprTicket) error {
	return l.release.Notify(protocol.Release{Sys: sys, Ticket: ticket})
}

func (l *HostLink) onRequest(handler ExtensionHandler) reqnot.RequestHandler {
	return func(h *reqnot.RequestHandle) {
		req, err := protocol.DecodeToExtensionRequest(codec.NewReader(h.Payload()))
		if err != nil {
			h.Respond(nil)
			return
		}
		switch req.Tag {
		case protocol.ToExtNewSystem:
			if err := handler.NewSystem(req.NewSystem); err != nil {
				h.Respond(nil)
				return
			}
			h.Respond([]byte{})
		case protocol.ToExtCallRef:
			resp, err := handler.CallRef(req.CallRef)
			h.Respond(encodeExprResponse(resp, err))
		case protocol.ToExtFinalCall:
			resp, err := handler.FinalCall(req.FinalCall)
			h.Respond(encodeExprResponse(resp, err))
		case protocol.ToExtAtomSame:
			same, err := handler.AtomSame(req.AtomSame)
			if err != nil {
				h.Respond(nil)
				return
			}
			w := codec.NewWriter()
			w.WriteBool(same)
			h.Respond(w.Bytes())
		case protocol.ToExtFwd:
			resp, err := handler.Fwd(req.Fwd)
			if err != nil {
				h.Respond(nil)
				return
			}
			h.Respond(resp)
		case protocol.ToExtSweep:
			retained := handler.Sweep()
			w := codec.NewWriter()
			retained.Encode(w)
			h.Respond(w.Bytes())
		default:
			h.Respond(nil)
		}
	}
}

func (l *HostLink) onNotification(handler ExtensionHandler) reqnot.NotificationHandler {
	return func(payload []byte) {
		note, err := protocol.DecodeToExtensionNotification(codec.NewReader(payload))
		if err != nil {
			return
		}
		switch note.Tag {
		case protocol.ToExtSystemDrop:
			handler.SystemDrop(note.SystemDrop)
		case protocol.ToExtAtomDrop:
			handler.AtomDrop(note.AtomDrop)
		}
	}
}

func encodeHostRequest(m protocol.ToHostRequest) []byte {
	w := codec.NewWriter()
	m.Encode(w)
	return w.Bytes()
}

func encodeHostNotification(m protocol.ToHostNotification) []byte {
	w := codec.NewWriter()
	m.Encode(w)
	return w.Bytes()
}

func encodeExprResponse(e protocol.Expr, err error) []byte {
	if err != nil {
		return nil
	}
	w := codec.NewWriter()
	protocol.EncodeExpr(w, e)
	return w.Bytes()
}
