package reqnot

// Mapped narrows a Transport's untyped byte channel into a typed
// request/response pair: a higher layer
// (e.g. the interner's replica-to-master RPC, pkg/protocol's system
// control requests) gets its own Go-typed Request method without
// coupling to the whole wire protocol.
type Mapped[Req any, Resp any] struct {
	transport *Transport
	encode    func(Req) []byte
	decode    func([]byte) (Resp, error)
}

// NewMapped builds a Mapped requester around t using encode to widen a
// Req into a transport payload and decode to narrow the raw response
// back into a Resp.
func NewMapped[Req any, Resp any](t *Transport, encode func(Req) []byte, decode func([]byte) (Resp, error)) *Mapped[Req, Resp] {
	return &Mapped[Req, Resp]{transport: t, encode: encode, decode: decode}
}

// Request widens req, issues it over the underlying transport, and
// narrows the response.
func (m *Mapped[Req, Resp]) Request(req Req) (resp Resp, err error) {
	raw, err := m.transport.Request(m.encode(req))
	if err != nil {
		return
	}
	return m.decode(raw)
}

// MappedNotifier is the fire-and-forget analogue of Mapped.
type MappedNotifier[V any] struct {
	transport *Transport
	encode    func(V) []byte
}

// NewMappedNotifier builds a typed notifier around t.
func NewMappedNotifier[V any](t *Transport, encode func(V) []byte) *MappedNotifier[V] {
	return &MappedNotifier[V]{transport: t, encode: encode}
}

// Notify widens v and sends it as a notification.
func (n *MappedNotifier[V]) Notify(v V) error {
	return n.transport.Notify(n.encode(v))
}
