// Package reqnot implements a bidirectional message mux over an
// arbitrary byte-stream peer, supporting concurrent requests with
// at-most-once responses, fire-and-forget notifications, and typed
// forwarded sub-requests via Mapped.
package reqnot

import "encoding/binary"

// responseBit marks a message id as carrying a response; it is also used
// to fold a request id into the id its response must use.
const responseBit = uint64(1) << 63

// ID is the 8-byte big-endian message identifier prefixing every frame.
type ID uint64

// IsNotification reports whether id denotes a fire-and-forget message.
func (id ID) IsNotification() bool { return id == 0 }

// IsResponse reports whether the high bit marks id as a response.
func (id ID) IsResponse() bool { return id&responseBit != 0 }

// IsRequest reports whether id denotes a request awaiting a response.
func (id ID) IsRequest() bool { return !id.IsNotification() && !id.IsResponse() }

// ResponseID returns the id a response to this request must carry, or
// the request id a response corresponds to: the bitwise complement.
func (id ID) ResponseID() ID { return ID(^uint64(id)) }

func encodeID(id ID) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(id))
	return b[:]
}

func decodeID(b []byte) ID { return ID(binary.BigEndian.Uint64(b)) }

// frame splits a raw inbound message into its id and payload. The caller
// is responsible for stripping whatever stream framing (length prefix)
// surrounds the id+payload.
func frame(msg []byte) (id ID, payload []byte, err error) {
	if len(msg) < 8 {
		err = &ProtocolError{Reason: "frame shorter than the 8-byte id prefix"}
		return
	}
	id = decodeID(msg[:8])
	payload = msg[8:]
	return
}

func appendFrame(id ID, payload []byte) []byte {
	out := make([]byte, 0, 8+len(payload))
	out = append(out, encodeID(id)...)
	out = append(out, payload...)
	return out
}
