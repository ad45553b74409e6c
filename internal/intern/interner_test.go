package intern

import "testing"

func TestMasterInternUniquenessAndRoundTrip(t *testing.T) {
	m := newMaster(nil)
	t1, err := m.InternStr("hello")
	if err != nil {
		t.Fatal(err)
	}
	t2, err := m.InternStr("hello")
	if err != nil {
		t.Fatal(err)
	}
	if t1 != t2 {
		t.Fatalf("expected interning the same value twice to return the same token, got %v and %v", t1, t2)
	}
	got, err := m.DeinternStr(t1)
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello" {
		t.Fatalf("got %q", got)
	}
}

func TestMasterInternStrvRoundTrip(t *testing.T) {
	m := newMaster(nil)
	foo, _ := m.InternStr("foo")
	bar, _ := m.InternStr("bar")
	vt, err := m.InternStrv([]StrToken{foo, bar})
	if err != nil {
		t.Fatal(err)
	}
	got, err := m.DeinternStrv(vt)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != foo || got[1] != bar {
		t.Fatalf("got %v", got)
	}
}

// fakeMaster implements Requester by forwarding directly to an in-process
// master Interner, standing in for the RN round-trip a real replica
// would make.
type fakeMaster struct {
	m *Interner
}

func (f *fakeMaster) InternStr(value string) (uint64, error) {
	t, err := f.m.ServeInternStr(value)
	return uint64(t), err
}

func (f *fakeMaster) InternStrv(value []uint64) (uint64, error) {
	t, err := f.m.ServeInternStrv(value)
	return uint64(t), err
}

func (f *fakeMaster) ExternStr(token uint64) (string, error) {
	return f.m.ServeExternStr(StrToken(token))
}

func (f *fakeMaster) ExternStrv(token uint64) ([]uint64, error) {
	toks, err := f.m.ServeExternStrv(StrvToken(token))
	if err != nil {
		return nil, err
	}
	out := make([]uint64, len(toks))
	for i, t := range toks {
		out[i] = uint64(t)
	}
	return out, nil
}

func TestReplicaInternRoundTripsThroughMaster(t *testing.T) {
	master := newMaster(nil)
	replica := newReplica(&fakeMaster{master}, nil)

	tok, err := replica.InternStr("shared")
	if err != nil {
		t.Fatal(err)
	}
	fromMaster, err := master.DeinternStr(tok)
	if err != nil {
		t.Fatal(err)
	}
	if fromMaster != "shared" {
		t.Fatalf("master disagrees with replica: %q", fromMaster)
	}
}

// requestCountingMaster wraps fakeMaster to detect whether a call
// actually went over the wire.
type requestCountingMaster struct {
	fakeMaster
	externCalls int
}

func (f *requestCountingMaster) ExternStr(token uint64) (string, error) {
	f.externCalls++
	return f.fakeMaster.ExternStr(token)
}

func TestReplicaDeinternOfOwnInternDoesNotRPC(t *testing.T) {
	master := newMaster(nil)
	counting := &requestCountingMaster{fakeMaster: fakeMaster{master}}
	replica := newReplica(counting, nil)

	tok, err := replica.InternStr("mine")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := replica.DeinternStr(tok); err != nil {
		t.Fatal(err)
	}
	if counting.externCalls != 0 {
		t.Fatalf("expected no ExternStr RPC after interning locally, got %d calls", counting.externCalls)
	}
}

func TestSweepRetainsExternallyReferencedTokens(t *testing.T) {
	master := newMaster(nil)
	replica := newReplica(&fakeMaster{master}, nil)

	foo, err := replica.InternStr("foo")
	if err != nil {
		t.Fatal(err)
	}
	bar, err := replica.InternStr("bar")
	if err != nil {
		t.Fatal(err)
	}

	// Drop the replica's only reference to "bar", keep "foo".
	replica.ReleaseStr(bar)

	retainedStrings, _ := replica.SweepReplica()
	foundFoo, foundBar := false, false
	for _, t := range retainedStrings {
		if t == uint64(foo) {
			foundFoo = true
		}
		if t == uint64(bar) {
			foundBar = true
		}
	}
	if !foundFoo {
		t.Fatal("expected foo's token to survive the replica sweep")
	}
	if foundBar {
		t.Fatal("expected bar's token to be purged by the replica sweep")
	}

	// The master never held an external reference of its own (serving
	// the replica's InternStr calls only retains on the replica's side),
	// so after sweeping with the replica's retained set, bar is gone but
	// foo survives purely because the replica still reported it.
	master.SweepMaster(retainedStrings, nil)

	if _, err := master.DeinternStr(foo); err != nil {
		t.Fatalf("expected foo to survive sweep_master, got %v", err)
	}
	if _, err := master.DeinternStr(bar); err == nil {
		t.Fatal("expected bar to be evicted by sweep_master")
	}
}

func TestInitReplicaAfterUseIsRejected(t *testing.T) {
	resetGlobalForTest()
	defer resetGlobalForTest()

	Global() // marks the singleton as in use, defaulting to master
	if err := InitReplica(&fakeMaster{newMaster(nil)}); err == nil {
		t.Fatal("expected InitReplica to reject configuring an already-used interner")
	}
}
