package reqnot

import (
	"sync"

	"github.com/golang/groupcache/lru"
	"github.com/op/go-logging"

	"github.com/lbfalvy/orchid-sub001/internal/obslog"
)

// Sender flushes a framed message to the peer. It is called with the
// Transport's internal mutex released, so it may itself block on I/O.
type Sender func(frame []byte) error

// NotificationHandler handles a fire-and-forget inbound message. Calls
// arrive serialized, in the order Receive sees them on the wire: Receive
// runs the handler inline before returning.
type NotificationHandler func(payload []byte)

// RequestHandler handles an inbound request; it must eventually call
// h.Respond exactly once. Handlers run concurrently with each other and
// with Notify/Request, so they must not assume any particular order
// relative to other in-flight requests.
type RequestHandler func(h *RequestHandle)

type waiter struct {
	ch  chan responseResult
	got bool // guarded by Transport.mu; true once a result has been delivered
}

type responseResult struct {
	payload []byte
	err     error
}

// Transport is a bidirectional request/notify message mux over one
// logical connection to a peer. The zero value is not usable; construct
// with New. A Transport is safe for concurrent use: Request may be
// called from many goroutines, and receive() from a dedicated reader.
type Transport struct {
	mu sync.Mutex

	send           Sender
	onNotification NotificationHandler
	onRequest      RequestHandler
	log            *logging.Logger

	nextID  uint64
	pending *lru.Cache // ID -> *waiter; unbounded (maxEntries 0): a pending request must never be silently evicted
	closed  bool
}

// New constructs a Transport around the three caller-supplied behaviors
// described above (Sender, NotificationHandler, RequestHandler).
func New(send Sender, onNotification NotificationHandler, onRequest RequestHandler, log *logging.Logger) *Transport {
	if log == nil {
		log = obslog.New("reqnot", logging.NOTICE)
	}
	return &Transport{
		send:           send,
		onNotification: onNotification,
		onRequest:      onRequest,
		log:            log,
		nextID:         1,
		pending:        lru.New(0),
	}
}

// Notify encodes payload with id 0 and flushes it. It never blocks on a
// response.
func (t *Transport) Notify(payload []byte) error {
	return t.send(appendFrame(0, payload))
}

// Request allocates the next request id, registers a single-shot inbox,
// sends the framed request, and blocks until receive() delivers the
// matching response (or the transport is closed).
func (t *Transport) Request(payload []byte) (response []byte, err error) {
	w := &waiter{ch: make(chan responseResult, 1)}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, ErrTransportClosed
	}
	id := ID(t.nextID)
	if id == 0 || id.IsResponse() {
		t.mu.Unlock()
		panic("reqnot: request id counter wrapped into a reserved id")
	}
	t.nextID++
	t.pending.Add(id, w)
	t.mu.Unlock()

	t.log.Debugf("request %s sent", traceTag(id))

	frame := appendFrame(id, payload)
	if err = t.send(frame); err != nil {
		t.mu.Lock()
		t.pending.Remove(id)
		t.mu.Unlock()
		return nil, err
	}

	result := <-w.ch
	return result.payload, result.err
}

// Receive processes one fully framed inbound message, per the dispatch
// table.
func (t *Transport) Receive(msg []byte) error {
	id, payload, err := frame(msg)
	if err != nil {
		return err
	}

	switch {
	case id.IsNotification():
		obslog.RecoverToLog(func() { t.onNotification(payload) }, t.log)
		return nil

	case id.IsResponse():
		reqID := id.ResponseID()
		t.mu.Lock()
		v, ok := t.pending.Get(reqID)
		if ok {
			t.pending.Remove(reqID)
		}
		t.mu.Unlock()
		if !ok {
			return &ProtocolError{Reason: "response for unknown or already-resolved request id"}
		}
		t.log.Debugf("response %s received", traceTag(reqID))
		v.(*waiter).ch <- responseResult{payload: payload}
		return nil

	default:
		t.log.Debugf("request %s received", traceTag(id))
		h := newRequestHandle(id, payload, t)
		go obslog.RecoverToLog(func() { t.onRequest(h) }, t.log)
		return nil
	}
}

// Close tears the transport down: every outstanding Request unblocks
// with ErrTransportClosed.
func (t *Transport) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	var waiters []*waiter
	for t.pending.Len() > 0 {
		// lru.Cache has no iteration API beyond eviction, so drain it.
		t.pending.OnEvicted = func(_ lru.Key, v interface{}) {
			waiters = append(waiters, v.(*waiter))
		}
		t.pending.RemoveOldest()
	}
	t.pending.OnEvicted = nil
	t.mu.Unlock()

	for _, w := range waiters {
		w.ch <- responseResult{err: ErrTransportClosed}
	}
}
