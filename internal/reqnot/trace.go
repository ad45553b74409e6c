package reqnot

import "github.com/keybase/saltpack/encoding/basex"

// traceTag renders id as a short base62 string for debug logs, so a
// human scanning a log file can visually correlate a request with its
// response without reading eight bytes of hex each time. It carries no
// protocol meaning; the wire id itself stays the binary u64 frame
// prefix defined in message.go.
func traceTag(id ID) string {
	var b [8]byte
	copy(b[:], encodeID(id))
	return basex.Base62StdEncoding.EncodeToString(b[:])
}
