package reqnot

import (
	"runtime"
	"sync/atomic"
)

// DebugAssertions toggles the finalizer-based check for request handles
// dropped without a response: an expensive correctness check worth
// paying for in tests and development, but not in a latency-sensitive
// production build.
var DebugAssertions = true

// RequestHandle carries one inbound request awaiting exactly one
// response.
type RequestHandle struct {
	id        ID
	payload   []byte
	t         *Transport
	fulfilled int32
}

func newRequestHandle(id ID, payload []byte, t *Transport) *RequestHandle {
	h := &RequestHandle{id: id, payload: payload, t: t}
	if DebugAssertions {
		runtime.SetFinalizer(h, func(h *RequestHandle) {
			if atomic.LoadInt32(&h.fulfilled) == 0 {
				h.t.log.Error("reqnot: request handle dropped without a response, id=", h.id)
			}
		})
	}
	return h
}

// Payload returns the decoded-variant payload bytes the request carried.
func (h *RequestHandle) Payload() []byte { return h.payload }

// Respond encodes and sends the response, framed with the bitwise
// complement of the request id. Calling Respond more than once is a
// ProtocolError.
func (h *RequestHandle) Respond(payload []byte) error {
	if !atomic.CompareAndSwapInt32(&h.fulfilled, 0, 1) {
		return &ProtocolError{Reason: "duplicate response to request"}
	}
	if DebugAssertions {
		runtime.SetFinalizer(h, nil)
	}
	return h.t.send(appendFrame(h.id.ResponseID(), payload))
}
