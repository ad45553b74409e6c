package reqnot

import (
	"bytes"
	"io"
	"testing"
)

func TestWriteFrameReadFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, []byte("hello")); err != nil {
		t.Fatal(err)
	}
	if err := WriteFrame(&buf, []byte("world")); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFrame(&buf)
	if err != nil || string(got) != "hello" {
		t.Fatalf("got %q, err %v", got, err)
	}
	got, err = ReadFrame(&buf)
	if err != nil || string(got) != "world" {
		t.Fatalf("got %q, err %v", got, err)
	}
}

func TestReadFrameRejectsAnOversizedLengthPrefix(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0xff, 0xff, 0xff, 0xff})
	if _, err := ReadFrame(&buf); err == nil {
		t.Fatal("expected an error for a length prefix above the maximum frame size")
	}
}

func TestRunReceiveLoopFeedsEveryFrameUntilEOF(t *testing.T) {
	var buf bytes.Buffer
	var got [][]byte
	tr := New(func([]byte) error { return nil }, func(p []byte) {
		got = append(got, append([]byte(nil), p...))
	}, nil, nil)

	WriteFrame(&buf, appendFrame(0, []byte("one")))
	WriteFrame(&buf, appendFrame(0, []byte("two")))

	err := RunReceiveLoop(&buf, tr)
	if err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
	if len(got) != 2 || string(got[0]) != "one" || string(got[1]) != "two" {
		t.Fatalf("got %q", got)
	}
}
