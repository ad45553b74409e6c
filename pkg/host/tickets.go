// Package host is the host-side counterpart to pkg/protocol: it keeps
// the bookkeeping an extension's wire messages refer to by id rather
// than by Go pointer -- running systems, and expression nodes an
// extension holds a handle on -- and turns that bookkeeping into typed
// reqnot requesters an evaluator-side Atom can call through.
package host

import (
	"errors"
	"sync"

	"github.com/lbfalvy/orchid-sub001/internal/expr"
	"github.com/lbfalvy/orchid-sub001/pkg/protocol"
)

// TicketTable maps protocol.ExprTicket values to live *expr.Expression
// nodes, with an explicit external reference count per ticket: an
// extension acquires a ticket when it receives one in a message and
// releases it when done, exactly like internal/intern's bimap tracks a
// token's external holders. Unlike the interner, a ticket's node is
// never deduplicated by value -- two equal expressions reaching the
// host independently get distinct tickets, since the host did not
// choose to intern them, it was only handed them.
type TicketTable struct {
	mu     sync.Mutex
	next   uint64
	byTick map[protocol.ExprTicket]*ticketEntry
}

type ticketEntry struct {
	node     *expr.Expression
	external int
}

// NewTicketTable returns an empty table.
func NewTicketTable() *TicketTable {
	return &TicketTable{byTick: make(map[protocol.ExprTicket]*ticketEntry)}
}

// Issue mints a fresh ticket for node with one external reference,
// standing for the handle the message about to be sent will give the
// extension.
func (t *TicketTable) Issue(node *expr.Expression) protocol.ExprTicket {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	tk := protocol.ExprTicket(t.next)
	t.byTick[tk] = &ticketEntry{node: node, external: 1}
	return tk
}

// Resolve returns the node a ticket stands for.
func (t *TicketTable) Resolve(tk protocol.ExprTicket) (*expr.Expression, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.byTick[tk]
	if !ok {
		return nil, false
	}
	return e.node, true
}

// Acquire records an additional external reference to an
// already-issued ticket, per a protocol.Acquire notification.
func (t *TicketTable) Acquire(tk protocol.ExprTicket) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.byTick[tk]
	if !ok {
		return errors.New("host: Acquire for unknown ticket")
	}
	e.external++
	return nil
}

// Release drops one external reference, per a protocol.Release
// notification, freeing the entry once the count reaches zero. A
// release of an unknown ticket is tolerated: the host may have already
// dropped it locally while a Release was in flight.
func (t *TicketTable) Release(tk protocol.ExprTicket) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.byTick[tk]
	if !ok {
		return
	}
	e.external--
	if e.external <= 0 {
		delete(t.byTick, tk)
	}
}

// Len reports how many tickets are currently live; test and diagnostic
// use only.
func (t *TicketTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.byTick)
}
