package codec

import "fmt"

// CorruptError is returned by every Reader method and Read* function of
// this package (and the decoders built on them) when the input does
// not satisfy the wire contract: a short read, invalid
// UTF-8, an out-of-range Unicode scalar, a disallowed NaN, an unknown
// option tag, or an unknown tagged-union discriminant.
type CorruptError struct {
	// What names the value being decoded ("string length prefix",
	// "option tag", "char scalar", ...).
	What string
	// Err is the underlying cause, if any (e.g. io.ErrUnexpectedEOF).
	Err error
}

func (e *CorruptError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("codec: corrupt %s: %v", e.What, e.Err)
	}
	return fmt.Sprintf("codec: corrupt %s", e.What)
}

func (e *CorruptError) Unwrap() error { return e.Err }

func corrupt(what string, err error) error {
	return &CorruptError{What: what, Err: err}
}
