package protocol

import (
	"testing"

	"github.com/lbfalvy/orchid-sub001/internal/codec"
)

func TestToHostRequestRoundTrip(t *testing.T) {
	m := ToHostRequest{Tag: ToHostExternStr, ExternStr: ExternStr{Token: 7}}
	w := codec.NewWriter()
	m.Encode(w)
	got, err := DecodeToHostRequest(codec.NewReader(w.Bytes()))
	if err != nil || got.Tag != ToHostExternStr || got.ExternStr.Token != 7 {
		t.Fatalf("got %+v, err %v", got, err)
	}
}

func TestToHostNotificationRoundTrip(t *testing.T) {
	m := ToHostNotification{Tag: ToHostAcquire, Acquire: Acquire{Sys: 2, Ticket: 5}}
	w := codec.NewWriter()
	m.Encode(w)
	got, err := DecodeToHostNotification(codec.NewReader(w.Bytes()))
	if err != nil || got.Tag != ToHostAcquire || got.Acquire.Ticket != 5 {
		t.Fatalf("got %+v, err %v", got, err)
	}
}

func TestToExtensionRequestRoundTrip(t *testing.T) {
	m := ToExtensionRequest{Tag: ToExtCallRef, CallRef: CallRef{Atom: AtomRef{Sys: 1, Data: []byte{9}}, Arg: 3}}
	w := codec.NewWriter()
	m.Encode(w)
	got, err := DecodeToExtensionRequest(codec.NewReader(w.Bytes()))
	if err != nil || got.Tag != ToExtCallRef || got.CallRef.Arg != 3 || got.CallRef.Atom.Data[0] != 9 {
		t.Fatalf("got %+v, err %v", got, err)
	}
}

func TestToExtensionNotificationRoundTrip(t *testing.T) {
	m := ToExtensionNotification{Tag: ToExtSystemDrop, SystemDrop: SystemDrop{ID: 11}}
	w := codec.NewWriter()
	m.Encode(w)
	got, err := DecodeToExtensionNotification(codec.NewReader(w.Bytes()))
	if err != nil || got.Tag != ToExtSystemDrop || got.SystemDrop.ID != 11 {
		t.Fatalf("got %+v, err %v", got, err)
	}
}

func TestEnvelopeUnknownTagIsCorrupt(t *testing.T) {
	w := codec.NewWriter()
	w.WriteTag(255)
	if _, err := DecodeToHostRequest(codec.NewReader(w.Bytes())); err == nil {
		t.Fatalf("expected an error decoding an unknown request tag")
	}
}
