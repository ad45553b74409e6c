package reqnot

import (
	"encoding/binary"
	"sync"
	"testing"
	"time"
)

// loopbackPair wires two transports directly together, as if send on one
// side were the other side's receive, without any real socket.
func loopbackPair(tb testing.TB, onNotifyA, onNotifyB NotificationHandler, onReqA, onReqB RequestHandler) (a, b *Transport) {
	tb.Helper()
	var mu sync.Mutex
	a = New(func(f []byte) error {
		mu.Lock()
		defer mu.Unlock()
		return b.Receive(append([]byte(nil), f...))
	}, onNotifyA, onReqA, nil)
	b = New(func(f []byte) error {
		mu.Lock()
		defer mu.Unlock()
		return a.Receive(append([]byte(nil), f...))
	}, onNotifyB, onReqB, nil)
	return
}

func TestRequestResponseRoundTrip(t *testing.T) {
	echo := func(h *RequestHandle) { h.Respond(append([]byte("echo:"), h.Payload()...)) }
	a, _ := loopbackPair(t, func([]byte) {}, func([]byte) {}, nil, echo)

	resp, err := a.Request([]byte("hi"))
	if err != nil {
		t.Fatal(err)
	}
	if string(resp) != "echo:hi" {
		t.Fatalf("got %q", resp)
	}
}

func TestConcurrentRequestsCorrelateCorrectly(t *testing.T) {
	echo := func(h *RequestHandle) {
		// Reply with the payload doubled, to make mismatches obvious.
		p := h.Payload()
		out := append(append([]byte(nil), p...), p...)
		h.Respond(out)
	}
	a, _ := loopbackPair(t, func([]byte) {}, func([]byte) {}, nil, echo)

	const n = 64
	var wg sync.WaitGroup
	errs := make([]error, n)
	results := make([][]byte, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload := make([]byte, 4)
			binary.BigEndian.PutUint32(payload, uint32(i))
			resp, err := a.Request(payload)
			results[i] = resp
			errs[i] = err
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("request %d: %v", i, errs[i])
		}
		want := make([]byte, 8)
		binary.BigEndian.PutUint32(want[:4], uint32(i))
		binary.BigEndian.PutUint32(want[4:], uint32(i))
		if string(results[i]) != string(want) {
			t.Fatalf("request %d: got %x want %x", i, results[i], want)
		}
	}
}

func TestNotificationDispatchOrder(t *testing.T) {
	var mu sync.Mutex
	var got []int

	onNotify := func(payload []byte) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, int(binary.BigEndian.Uint32(payload)))
	}

	_, b := loopbackPair(t, func([]byte) {}, onNotify, nil, nil)
	_ = b

	a2, _ := loopbackPair(t, func([]byte) {}, onNotify, nil, nil)
	for i := 0; i < 10; i++ {
		payload := make([]byte, 4)
		binary.BigEndian.PutUint32(payload, uint32(i))
		if err := a2.Notify(payload); err != nil {
			t.Fatal(err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 10 {
		t.Fatalf("expected 10 notifications, got %d", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("out of order notification dispatch: index %d carried %d", i, v)
		}
	}
}

func TestResponseForUnknownIDIsProtocolError(t *testing.T) {
	a := New(func([]byte) error { return nil }, func([]byte) {}, nil, nil)
	// Fabricate a response frame for a request id that was never issued.
	bogus := appendFrame(ID(42).ResponseID(), []byte("nope"))
	err := a.Receive(bogus)
	if err == nil {
		t.Fatal("expected a protocol error")
	}
	if _, ok := err.(*ProtocolError); !ok {
		t.Fatalf("expected *ProtocolError, got %T: %v", err, err)
	}
}

func TestDoubleResponseIsProtocolError(t *testing.T) {
	var h *RequestHandle
	block := make(chan struct{})
	onReq := func(handle *RequestHandle) {
		h = handle
		close(block)
	}
	a, _ := loopbackPair(t, func([]byte) {}, func([]byte) {}, nil, onReq)

	go a.Request([]byte("x"))
	<-block
	time.Sleep(10 * time.Millisecond)

	if err := h.Respond([]byte("first")); err != nil {
		t.Fatalf("first respond: %v", err)
	}
	if err := h.Respond([]byte("second")); err == nil {
		t.Fatal("expected a protocol error on the second response")
	}
}

func TestCloseUnblocksPendingRequests(t *testing.T) {
	a := New(func([]byte) error { return nil }, func([]byte) {}, nil, nil)
	done := make(chan error, 1)
	go func() {
		_, err := a.Request([]byte("never answered"))
		done <- err
	}()
	time.Sleep(10 * time.Millisecond)
	a.Close()

	select {
	case err := <-done:
		if err != ErrTransportClosed {
			t.Fatalf("expected ErrTransportClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Request did not unblock after Close")
	}
}
