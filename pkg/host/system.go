package host

import (
	"errors"
	"sync"

	"github.com/lbfalvy/orchid-sub001/pkg/protocol"
)

// SystemRequester is the RPC surface a host needs from the extension
// process hosting a system: instantiate one of its declared systems and
// tear one down again.
type SystemRequester interface {
	NewSystem(req protocol.NewSystem) error
	SystemDrop(req protocol.SystemDrop) error
}

// Declaration is one system an extension offers, discovered from its
// ExtensionHeader.
type Declaration struct {
	protocol.SystemDecl
}

// Extension is the host's view of one spawned extension process: the
// systems it declared, and the request/notify surface to instantiate
// and drop them.
type Extension struct {
	requester SystemRequester
	decls     map[protocol.SysDeclID]protocol.SystemDecl

	mu   sync.Mutex
	next uint64
	live map[protocol.SysID]protocol.SysDeclID
}

// NewExtension wraps requester around the systems declared in header.
func NewExtension(header protocol.ExtensionHeader, requester SystemRequester) *Extension {
	decls := make(map[protocol.SysDeclID]protocol.SystemDecl, len(header.Systems))
	for _, d := range header.Systems {
		decls[d.ID] = d
	}
	return &Extension{
		requester: requester,
		decls:     decls,
		live:      make(map[protocol.SysID]protocol.SysDeclID),
	}
}

// Declares reports whether decl is one of this extension's declared
// systems.
func (e *Extension) Declares(decl protocol.SysDeclID) bool {
	_, ok := e.decls[decl]
	return ok
}

// Instantiate brings up decl, given the already-running systems it
// depends on, in dependency order (the caller is responsible for
// bringing up each entry in depends before calling Instantiate for
// anything that depends on it; Instantiate itself only checks that it
// was given as many dependencies as decl declares, not which ones).
func (e *Extension) Instantiate(decl protocol.SysDeclID, depends []protocol.SysID) (protocol.SysID, error) {
	d, ok := e.decls[decl]
	if !ok {
		return 0, errors.New("host: extension does not declare this system")
	}
	if len(depends) != len(d.DependsOn) {
		return 0, errors.New("host: dependency count does not match declaration")
	}

	e.mu.Lock()
	e.next++
	id := protocol.SysID(e.next)
	e.mu.Unlock()

	if err := e.requester.NewSystem(protocol.NewSystem{ID: id, Decl: decl, Depends: depends}); err != nil {
		return 0, err
	}

	e.mu.Lock()
	e.live[id] = decl
	e.mu.Unlock()
	return id, nil
}

// Drop tears a running system instance down.
func (e *Extension) Drop(id protocol.SysID) error {
	e.mu.Lock()
	_, ok := e.live[id]
	delete(e.live, id)
	e.mu.Unlock()
	if !ok {
		return errors.New("host: Drop of a system instance not tracked as live")
	}
	return e.requester.SystemDrop(protocol.SystemDrop{ID: id})
}

// Registry tracks every spawned extension by the SysDeclID namespace it
// provides, so a loader can find the extension able to instantiate a
// given declared system without iterating every spawned process by
// hand.
type Registry struct {
	mu   sync.Mutex
	exts []*Extension
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry { return &Registry{} }

// Add registers ext for lookup.
func (r *Registry) Add(ext *Extension) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exts = append(r.exts, ext)
}

// Find returns the first registered extension declaring decl.
func (r *Registry) Find(decl protocol.SysDeclID) (*Extension, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range r.exts {
		if ext.Declares(decl) {
			return ext, true
		}
	}
	return nil, false
}

// Remove drops ext from the registry, e.g. once its connection has
// closed. Absent entries are a no-op.
func (r *Registry) Remove(ext *Extension) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.exts {
		if e == ext {
			r.exts = append(r.exts[:i], r.exts[i+1:]...)
			return
		}
	}
}
