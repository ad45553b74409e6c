package reqnot

import "fmt"

// ProtocolError is fatal to the Transport instance that raised it: a
// short read, a response for an id with no pending waiter, or a double
// response to one request. The transport makes no
// attempt to recover from it.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string { return fmt.Sprintf("reqnot: protocol error: %s", e.Reason) }

// ErrTransportClosed is delivered to every outstanding Request waiter
// when the owning Transport is closed.
var ErrTransportClosed = fmt.Errorf("reqnot: transport closed")
