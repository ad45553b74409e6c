package protocol

import "github.com/lbfalvy/orchid-sub001/internal/codec"

// Numeric is the wire form shared by host and extension numeric atoms:
// a nonnegative integer, a finite binary float, or a decimal (mantissa
// plus a base-10 scale, mirroring a fixed-point Decimal). Parsing a
// literal into one of these is the tokenizer's job and out of scope
// here; this is only the shared encode/decode both sides need once a
// Numeric value is already in hand.
type Numeric struct {
	Tag      uint8
	Uint     uint64
	Float    float64
	Mantissa int64
	Scale    uint32
}

const (
	NumericUint uint8 = iota
	NumericFloat
	NumericDecimal
)

func EncodeNumeric(w *codec.Writer, n Numeric) {
	w.WriteTag(n.Tag)
	switch n.Tag {
	case NumericUint:
		w.WriteUint64(n.Uint)
	case NumericFloat:
		w.WriteFloat64(n.Float)
	case NumericDecimal:
		w.WriteInt64(n.Mantissa)
		w.WriteUint32(n.Scale)
	}
}

func DecodeNumeric(r *codec.Reader) (n Numeric, err error) {
	if n.Tag, err = r.ReadTag(); err != nil {
		return
	}
	switch n.Tag {
	case NumericUint:
		n.Uint, err = r.ReadUint64()
	case NumericFloat:
		n.Float, err = r.ReadFiniteFloat64()
	case NumericDecimal:
		if n.Mantissa, err = r.ReadInt64(); err != nil {
			return
		}
		n.Scale, err = r.ReadUint32()
	default:
		err = &codec.CorruptError{What: "numeric tag"}
	}
	return
}
