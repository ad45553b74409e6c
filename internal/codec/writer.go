package codec

import (
	"bytes"
	"encoding/binary"
	"math"
	"sort"
)

// Writer accumulates a codec-encoded payload. The zero value is ready to
// use. Every Write* method is a pure function of its argument: the same
// value always appends the same bytes, at a fixed wire width, never
// varint-encoded.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the accumulated payload.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return w.buf.Len() }

// Raw appends b verbatim, with no length prefix. Used by callers that
// already know both sides agree on the length (fixed tuples, the codec's
// own message-id prefix).
func (w *Writer) Raw(b []byte) { w.buf.Write(b) }

func (w *Writer) WriteUint8(v uint8) { w.buf.WriteByte(v) }

func (w *Writer) WriteUint16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) WriteUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) WriteUint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

// WriteUint128 writes the big-endian two's-complement representation of a
// 128-bit unsigned value, high half first.
func (w *Writer) WriteUint128(hi, lo uint64) {
	w.WriteUint64(hi)
	w.WriteUint64(lo)
}

func (w *Writer) WriteInt8(v int8)   { w.WriteUint8(uint8(v)) }
func (w *Writer) WriteInt16(v int16) { w.WriteUint16(uint16(v)) }
func (w *Writer) WriteInt32(v int32) { w.WriteUint32(uint32(v)) }
func (w *Writer) WriteInt64(v int64) { w.WriteUint64(uint64(v)) }

func (w *Writer) WriteInt128(hi int64, lo uint64) { w.WriteUint128(uint64(hi), lo) }

func (w *Writer) WriteFloat32(v float32) { w.WriteUint32(math.Float32bits(v)) }
func (w *Writer) WriteFloat64(v float64) { w.WriteUint64(math.Float64bits(v)) }

// WriteBool emits 0x00 for false and 0xFF for true, matching the
// encoder's choice of nonzero byte.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf.WriteByte(0xFF)
	} else {
		w.buf.WriteByte(0x00)
	}
}

// WriteChar writes the Unicode scalar value of r as a 32-bit big-endian
// unsigned integer.
func (w *Writer) WriteChar(r rune) { w.WriteUint32(uint32(r)) }

// WriteBytes writes a 64-bit big-endian length prefix followed by b.
func (w *Writer) WriteBytes(b []byte) {
	w.WriteUint64(uint64(len(b)))
	w.buf.Write(b)
}

// WriteString writes a 64-bit big-endian length prefix followed by the
// UTF-8 bytes of s.
func (w *Writer) WriteString(s string) { w.WriteBytes([]byte(s)) }

// WriteTag writes a one-byte discriminant for an option or tagged union.
func (w *Writer) WriteTag(tag uint8) { w.buf.WriteByte(tag) }

// WriteSlice writes a 64-bit big-endian length prefix followed by
// enc(w, v) for each element of s, in order.
func WriteSlice[T any](w *Writer, s []T, enc func(*Writer, T)) {
	w.WriteUint64(uint64(len(s)))
	for _, v := range s {
		enc(w, v)
	}
}

// WriteMap encodes an unordered mapping as a sequence of (K, V) pairs.
// Pairs are written in ascending order of their encoded key bytes, so
// two encodings of an equal map are byte-identical.
func WriteMap[K comparable, V any](w *Writer, m map[K]V, encKey func(*Writer, K), encVal func(*Writer, V)) {
	type pair struct{ key, val []byte }
	pairs := make([]pair, 0, len(m))
	for k, v := range m {
		kw, vw := NewWriter(), NewWriter()
		encKey(kw, k)
		encVal(vw, v)
		pairs = append(pairs, pair{kw.Bytes(), vw.Bytes()})
	}
	sort.Slice(pairs, func(i, j int) bool { return bytes.Compare(pairs[i].key, pairs[j].key) < 0 })
	w.WriteUint64(uint64(len(pairs)))
	for _, p := range pairs {
		w.Raw(p.key)
		w.Raw(p.val)
	}
}

// WriteOption writes the one-byte presence tag followed by enc(w, *v)
// when v is non-nil.
func WriteOption[T any](w *Writer, v *T, enc func(*Writer, T)) {
	if v == nil {
		w.WriteTag(0)
		return
	}
	w.WriteTag(1)
	enc(w, *v)
}

// Range is a start/end pair, encoded start-then-end. Whether it denotes a
// half-open or closed interval is a property of the caller, not the wire
// form.
type Range[T any] struct {
	Start, End T
}

// WriteRange writes r.Start then r.End using enc.
func WriteRange[T any](w *Writer, r Range[T], enc func(*Writer, T)) {
	enc(w, r.Start)
	enc(w, r.End)
}
