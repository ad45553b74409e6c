package host

import (
	"testing"

	"github.com/lbfalvy/orchid-sub001/internal/expr"
	"github.com/lbfalvy/orchid-sub001/pkg/protocol"
)

type fakeAtom struct{ n int }

func (a fakeAtom) Call(arg *expr.Expression) *expr.Expression { return arg }
func (a fakeAtom) Same(other expr.Atom) bool {
	o, ok := other.(fakeAtom)
	return ok && o.n == a.n
}

func TestTicketTableIssueResolveRelease(t *testing.T) {
	table := NewTicketTable()
	node := expr.NewAtom(expr.Position{}, fakeAtom{n: 1})

	tk := table.Issue(node)
	got, ok := table.Resolve(tk)
	if !ok || got != node {
		t.Fatalf("resolve: got %v, %v", got, ok)
	}
	if table.Len() != 1 {
		t.Fatalf("expected one live ticket, got %d", table.Len())
	}

	table.Release(tk)
	if table.Len() != 0 {
		t.Fatalf("expected ticket to be freed after release, got %d live", table.Len())
	}
	if _, ok := table.Resolve(tk); ok {
		t.Fatalf("resolved a ticket that should have been freed")
	}
}

func TestTicketTableAcquireAddsAReference(t *testing.T) {
	table := NewTicketTable()
	tk := table.Issue(expr.NewAtom(expr.Position{}, fakeAtom{n: 2}))

	if err := table.Acquire(tk); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	table.Release(tk)
	if _, ok := table.Resolve(tk); !ok {
		t.Fatalf("ticket freed too early: acquire should have added a second reference")
	}
	table.Release(tk)
	if _, ok := table.Resolve(tk); ok {
		t.Fatalf("ticket should be freed after both references are released")
	}
}

func TestTicketTableAcquireUnknownTicketErrors(t *testing.T) {
	table := NewTicketTable()
	if err := table.Acquire(protocol.ExprTicket(999)); err == nil {
		t.Fatalf("expected an error acquiring an unissued ticket")
	}
}

func TestTicketTableReleaseUnknownTicketIsTolerated(t *testing.T) {
	table := NewTicketTable()
	table.Release(protocol.ExprTicket(999)) // must not panic
}
