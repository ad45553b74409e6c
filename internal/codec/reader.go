package codec

import (
	"bytes"
	"io"
	"math"
	"unicode/utf8"
)

// Reader consumes a codec-encoded payload produced by Writer. Every
// Read* method returns a *CorruptError (wrapped) on a short read or an
// invalid value.
type Reader struct {
	r *bytes.Reader
}

// NewReader wraps b for decoding.
func NewReader(b []byte) *Reader { return &Reader{r: bytes.NewReader(b)} }

// Remaining reports how many bytes are left unconsumed.
func (r *Reader) Remaining() int { return r.r.Len() }

func (r *Reader) readN(n int, what string) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(r.r, b); err != nil {
		return nil, corrupt(what, err)
	}
	return b, nil
}

// Raw reads exactly n bytes verbatim.
func (r *Reader) Raw(n int) ([]byte, error) { return r.readN(n, "raw bytes") }

func (r *Reader) ReadUint8() (v uint8, err error) {
	b, err := r.readN(1, "uint8")
	if err != nil {
		return
	}
	return b[0], nil
}

func (r *Reader) ReadUint16() (v uint16, err error) {
	b, err := r.readN(2, "uint16")
	if err != nil {
		return
	}
	return beUint16(b), nil
}

func (r *Reader) ReadUint32() (v uint32, err error) {
	b, err := r.readN(4, "uint32")
	if err != nil {
		return
	}
	return beUint32(b), nil
}

func (r *Reader) ReadUint64() (v uint64, err error) {
	b, err := r.readN(8, "uint64")
	if err != nil {
		return
	}
	return beUint64(b), nil
}

// ReadUint128 returns the high and low 64-bit halves of a big-endian
// 128-bit unsigned value.
func (r *Reader) ReadUint128() (hi, lo uint64, err error) {
	if hi, err = r.ReadUint64(); err != nil {
		return
	}
	lo, err = r.ReadUint64()
	return
}

func (r *Reader) ReadInt8() (v int8, err error) {
	u, err := r.ReadUint8()
	return int8(u), err
}

func (r *Reader) ReadInt16() (v int16, err error) {
	u, err := r.ReadUint16()
	return int16(u), err
}

func (r *Reader) ReadInt32() (v int32, err error) {
	u, err := r.ReadUint32()
	return int32(u), err
}

func (r *Reader) ReadInt64() (v int64, err error) {
	u, err := r.ReadUint64()
	return int64(u), err
}

func (r *Reader) ReadInt128() (hi int64, lo uint64, err error) {
	h, lo, err := r.ReadUint128()
	return int64(h), lo, err
}

func (r *Reader) ReadFloat32() (v float32, err error) {
	u, err := r.ReadUint32()
	if err != nil {
		return
	}
	return math.Float32frombits(u), nil
}

func (r *Reader) ReadFloat64() (v float64, err error) {
	u, err := r.ReadUint64()
	if err != nil {
		return
	}
	return math.Float64frombits(u), nil
}

// ReadFiniteFloat64 is ReadFloat64 with the "NaN-free float" wrapper's
// extra constraint: the decoded value must be finite and non-NaN.
func (r *Reader) ReadFiniteFloat64() (v float64, err error) {
	v, err = r.ReadFloat64()
	if err != nil {
		return
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		err = corrupt("finite float64", nil)
	}
	return
}

// ReadBool decodes 0x00 as false and any other byte as true.
func (r *Reader) ReadBool() (v bool, err error) {
	b, err := r.ReadUint8()
	if err != nil {
		return
	}
	return b != 0x00, nil
}

// ReadChar decodes a 32-bit big-endian Unicode scalar, failing if the
// value is not a valid scalar (a surrogate or out of range).
func (r *Reader) ReadChar() (v rune, err error) {
	u, err := r.ReadUint32()
	if err != nil {
		return
	}
	if u > utf8.MaxRune || !utf8.ValidRune(rune(u)) {
		err = corrupt("char scalar", nil)
		return
	}
	return rune(u), nil
}

// ReadBytes decodes a 64-bit length prefix followed by that many raw
// bytes.
func (r *Reader) ReadBytes() (b []byte, err error) {
	n, err := r.ReadUint64()
	if err != nil {
		return
	}
	if n > uint64(r.Remaining()) {
		return nil, corrupt("byte array", io.ErrUnexpectedEOF)
	}
	return r.readN(int(n), "byte array")
}

// ReadString decodes a length-prefixed byte string and validates it as
// UTF-8.
func (r *Reader) ReadString() (s string, err error) {
	b, err := r.ReadBytes()
	if err != nil {
		return
	}
	if !utf8.Valid(b) {
		err = corrupt("string utf8", nil)
		return
	}
	return string(b), nil
}

// ReadTag reads a one-byte discriminant.
func (r *Reader) ReadTag() (tag uint8, err error) { return r.ReadUint8() }

// ReadSlice decodes a 64-bit length prefix followed by that many
// dec-decoded elements.
func ReadSlice[T any](r *Reader, dec func(*Reader) (T, error)) ([]T, error) {
	n, err := r.ReadUint64()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, min(n, uint64(r.Remaining())))
	for i := uint64(0); i < n; i++ {
		v, err := dec(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ReadMap decodes a sequence of (K, V) pairs into a mapping.
func ReadMap[K comparable, V any](r *Reader, decKey func(*Reader) (K, error), decVal func(*Reader) (V, error)) (map[K]V, error) {
	n, err := r.ReadUint64()
	if err != nil {
		return nil, err
	}
	out := make(map[K]V, n)
	for i := uint64(0); i < n; i++ {
		k, err := decKey(r)
		if err != nil {
			return nil, err
		}
		v, err := decVal(r)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// ReadOption decodes the presence tag and, if set, the payload. A tag
// greater than 1 is corrupt.
func ReadOption[T any](r *Reader, dec func(*Reader) (T, error)) (*T, error) {
	tag, err := r.ReadTag()
	if err != nil {
		return nil, err
	}
	switch tag {
	case 0:
		return nil, nil
	case 1:
		v, err := dec(r)
		if err != nil {
			return nil, err
		}
		return &v, nil
	default:
		return nil, corrupt("option tag", nil)
	}
}

// ReadRange decodes a Range[T] as its start then its end.
func ReadRange[T any](r *Reader, dec func(*Reader) (T, error)) (rg Range[T], err error) {
	if rg.Start, err = dec(r); err != nil {
		return
	}
	rg.End, err = dec(r)
	return
}

func beUint16(b []byte) uint16 { return uint16(b[0])<<8 | uint16(b[1]) }
func beUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
func beUint64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}
