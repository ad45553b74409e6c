package main

import (
	"errors"

	"github.com/lbfalvy/orchid-sub001/internal/intern"
	"github.com/lbfalvy/orchid-sub001/pkg/protocol"
)

// handler answers a host's requests and notifications. This reference
// extension declares no systems and holds no atoms, so every call that
// would need one reports that absence instead of guessing at a system
// to satisfy it.
type handler struct{}

func newHandler() *handler { return &handler{} }

var errNoSystems = errors.New("orchidx: this extension declares no systems")

func (h *handler) NewSystem(req protocol.NewSystem) error {
	return errNoSystems
}

func (h *handler) CallRef(req protocol.CallRef) (protocol.Expr, error) {
	return protocol.Expr{}, errNoSystems
}

func (h *handler) FinalCall(req protocol.FinalCall) (protocol.Expr, error) {
	return protocol.Expr{}, errNoSystems
}

func (h *handler) AtomSame(req protocol.AtomSame) (bool, error) {
	return false, errNoSystems
}

func (h *handler) Fwd(req protocol.Fwd) ([]byte, error) {
	return nil, errNoSystems
}

// Sweep reports this extension's share of the interner sweep: it holds
// no atoms, but it may still be the last referrer of tokens it looked up
// on the master's behalf, so the replica sweep still runs.
func (h *handler) Sweep() protocol.Retained {
	strs, vecs := intern.Global().SweepReplica()
	retained := protocol.Retained{
		Strings: make([]intern.StrToken, len(strs)),
		Vectors: make([]intern.StrvToken, len(vecs)),
	}
	for i, t := range strs {
		retained.Strings[i] = intern.StrToken(t)
	}
	for i, t := range vecs {
		retained.Vectors[i] = intern.StrvToken(t)
	}
	return retained
}

func (h *handler) SystemDrop(req protocol.SystemDrop) {}

func (h *handler) AtomDrop(req protocol.AtomDrop) {}
