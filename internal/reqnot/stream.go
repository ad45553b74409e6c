package reqnot

import (
	"encoding/binary"
	"io"
)

// maxFrameLen bounds a single inbound frame so a corrupt or hostile peer
// cannot make ReadFrame allocate an unbounded buffer from a garbage
// length prefix. WriteFrame does not check it.
const maxFrameLen = 64 << 20

// WriteFrame writes msg to w preceded by a 4-byte big-endian length
// prefix. It is the Sender a Transport talking over a raw io.Writer
// (a unix socket, a spawned process's stdin) should use.
func WriteFrame(w io.Writer, msg []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(msg)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(msg)
	return err
}

// ReadFrame reads one length-prefixed frame from r.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > maxFrameLen {
		return nil, &ProtocolError{Reason: "frame length prefix exceeds the maximum frame size"}
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// RunReceiveLoop reads length-prefixed frames from r and feeds each one
// to t.Receive until r returns an error (typically io.EOF when the peer
// hangs up), which it then returns.
func RunReceiveLoop(r io.Reader, t *Transport) error {
	for {
		msg, err := ReadFrame(r)
		if err != nil {
			return err
		}
		if err := t.Receive(msg); err != nil {
			return err
		}
	}
}
