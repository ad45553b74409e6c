package codec

import (
	"math"
	"testing"
)

func TestRoundTripPrimitives(t *testing.T) {
	w := NewWriter()
	w.WriteUint8(0xAB)
	w.WriteUint16(0x1234)
	w.WriteUint32(0xDEADBEEF)
	w.WriteUint64(0x0123456789ABCDEF)
	w.WriteInt64(-42)
	w.WriteFloat64(3.5)
	w.WriteBool(true)
	w.WriteBool(false)
	w.WriteChar('λ')
	w.WriteString("orchid")
	w.WriteBytes([]byte{1, 2, 3})

	r := NewReader(w.Bytes())
	if v, err := r.ReadUint8(); err != nil || v != 0xAB {
		t.Fatalf("uint8: %v %v", v, err)
	}
	if v, err := r.ReadUint16(); err != nil || v != 0x1234 {
		t.Fatalf("uint16: %v %v", v, err)
	}
	if v, err := r.ReadUint32(); err != nil || v != 0xDEADBEEF {
		t.Fatalf("uint32: %v %v", v, err)
	}
	if v, err := r.ReadUint64(); err != nil || v != 0x0123456789ABCDEF {
		t.Fatalf("uint64: %v %v", v, err)
	}
	if v, err := r.ReadInt64(); err != nil || v != -42 {
		t.Fatalf("int64: %v %v", v, err)
	}
	if v, err := r.ReadFloat64(); err != nil || v != 3.5 {
		t.Fatalf("float64: %v %v", v, err)
	}
	if v, err := r.ReadBool(); err != nil || v != true {
		t.Fatalf("bool true: %v %v", v, err)
	}
	if v, err := r.ReadBool(); err != nil || v != false {
		t.Fatalf("bool false: %v %v", v, err)
	}
	if v, err := r.ReadChar(); err != nil || v != 'λ' {
		t.Fatalf("char: %v %v", v, err)
	}
	if v, err := r.ReadString(); err != nil || v != "orchid" {
		t.Fatalf("string: %v %v", v, err)
	}
	if v, err := r.ReadBytes(); err != nil || string(v) != "\x01\x02\x03" {
		t.Fatalf("bytes: %v %v", v, err)
	}
	if r.Remaining() != 0 {
		t.Fatalf("expected no trailing bytes, got %d", r.Remaining())
	}
}

func TestBoolEncoderEmitsFF(t *testing.T) {
	w := NewWriter()
	w.WriteBool(true)
	if got := w.Bytes()[0]; got != 0xFF {
		t.Fatalf("expected encoder to emit 0xFF for true, got %#x", got)
	}
}

func TestRoundTripSlice(t *testing.T) {
	w := NewWriter()
	WriteSlice(w, []uint32{1, 2, 3, 4}, (*Writer).WriteUint32)
	r := NewReader(w.Bytes())
	got, err := ReadSlice(r, (*Reader).ReadUint32)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 || got[3] != 4 {
		t.Fatalf("got %v", got)
	}
}

func TestRoundTripMap(t *testing.T) {
	m := map[string]uint64{"a": 1, "b": 2, "c": 3}
	w := NewWriter()
	WriteMap(w, m, (*Writer).WriteString, (*Writer).WriteUint64)
	r := NewReader(w.Bytes())
	got, err := ReadMap(r, (*Reader).ReadString, (*Reader).ReadUint64)
	if err != nil {
		t.Fatal(err)
	}
	for k, v := range m {
		if got[k] != v {
			t.Fatalf("map mismatch at %q: got %v want %v", k, got[k], v)
		}
	}
}

func TestRoundTripOption(t *testing.T) {
	w := NewWriter()
	WriteOption[uint32](w, nil, (*Writer).WriteUint32)
	v := uint32(77)
	WriteOption(w, &v, (*Writer).WriteUint32)

	r := NewReader(w.Bytes())
	none, err := ReadOption(r, (*Reader).ReadUint32)
	if err != nil || none != nil {
		t.Fatalf("expected none, got %v %v", none, err)
	}
	some, err := ReadOption(r, (*Reader).ReadUint32)
	if err != nil || some == nil || *some != 77 {
		t.Fatalf("expected Some(77), got %v %v", some, err)
	}
}

func TestRoundTripRange(t *testing.T) {
	w := NewWriter()
	WriteRange(w, Range[uint32]{Start: 3, End: 9}, (*Writer).WriteUint32)
	r := NewReader(w.Bytes())
	got, err := ReadRange(r, (*Reader).ReadUint32)
	if err != nil || got.Start != 3 || got.End != 9 {
		t.Fatalf("got %v %v", got, err)
	}
}

func TestDecodeRejectsShortRead(t *testing.T) {
	r := NewReader([]byte{0x00, 0x01})
	if _, err := r.ReadUint64(); err == nil {
		t.Fatal("expected corrupt error on short read")
	}
}

func TestDecodeRejectsInvalidUTF8(t *testing.T) {
	w := NewWriter()
	w.WriteBytes([]byte{0xFF, 0xFE, 0xFD})
	r := NewReader(w.Bytes())
	if _, err := r.ReadString(); err == nil {
		t.Fatal("expected corrupt error on invalid utf8")
	}
}

func TestDecodeRejectsInvalidChar(t *testing.T) {
	w := NewWriter()
	w.WriteUint32(0x110000) // one past the maximum scalar value
	r := NewReader(w.Bytes())
	if _, err := r.ReadChar(); err == nil {
		t.Fatal("expected corrupt error on out-of-range scalar")
	}
}

func TestDecodeRejectsNaN(t *testing.T) {
	w := NewWriter()
	w.WriteFloat64(math.NaN())
	r := NewReader(w.Bytes())
	if _, err := r.ReadFiniteFloat64(); err == nil {
		t.Fatal("expected corrupt error on NaN")
	}
}

func TestDecodeRejectsUnknownOptionTag(t *testing.T) {
	w := NewWriter()
	w.WriteTag(2)
	r := NewReader(w.Bytes())
	if _, err := ReadOption(r, (*Reader).ReadUint32); err == nil {
		t.Fatal("expected corrupt error on tag 2")
	}
}
