package eval

import (
	"testing"

	"github.com/lbfalvy/orchid-sub001/internal/expr"
)

type countingAtom struct {
	n     int
	calls *int
}

func (a countingAtom) Call(arg *expr.Expression) *expr.Expression {
	if a.calls != nil {
		*a.calls++
	}
	return arg
}

func (a countingAtom) Same(other expr.Atom) bool {
	o, ok := other.(countingAtom)
	return ok && o.n == a.n
}

func TestIdentityLambdaAppliedToAtomReducesToThatAtom(t *testing.T) {
	atom42 := expr.NewAtom(expr.Position{}, countingAtom{n: 42})
	lam := expr.NewLambda(expr.Position{}, func(arg *expr.Expression) *expr.Expression { return arg })
	app := expr.NewApply(expr.Position{}, lam, atom42)

	result, err := Run(MapEnv{}, app, Unlimited())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != atom42 {
		t.Fatalf("expected the WHNF result to be atom42 itself, got %+v", result.Clause)
	}
}

func TestConstResolvesThroughEnvironmentBeforeApplying(t *testing.T) {
	atom7 := expr.NewAtom(expr.Position{}, countingAtom{n: 7})
	lam := expr.NewLambda(expr.Position{}, func(arg *expr.Expression) *expr.Expression { return arg })
	sym := expr.Symbol{1}
	env := MapEnv{sym.String(): lam}
	app := expr.NewApply(expr.Position{}, expr.NewConst(expr.Position{}, sym), atom7)

	result, err := Run(env, app, Unlimited())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != atom7 {
		t.Fatalf("expected atom7, got %+v", result.Clause)
	}
}

func TestUnusedArgumentNeverForcesBottom(t *testing.T) {
	atom1 := expr.NewAtom(expr.Position{}, countingAtom{n: 1})
	lam := expr.NewLambda(expr.Position{}, func(arg *expr.Expression) *expr.Expression {
		return atom1
	})
	bottom := expr.NewBottom(expr.Position{}, errTest)
	app := expr.NewApply(expr.Position{}, lam, bottom)

	result, err := Run(MapEnv{}, app, Unlimited())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != atom1 {
		t.Fatalf("expected atom1 untouched, got %+v", result.Clause)
	}
}

func TestUsedArgumentPropagatesBottom(t *testing.T) {
	lam := expr.NewLambda(expr.Position{}, func(arg *expr.Expression) *expr.Expression { return arg })
	bottom := expr.NewBottom(expr.Position{}, errTest)
	app := expr.NewApply(expr.Position{}, lam, bottom)

	result, err := Run(MapEnv{}, app, Unlimited())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, ok := result.Clause.(expr.Bottom)
	if !ok || len(b.Errors) != 1 || b.Errors[0] != errTest {
		t.Fatalf("expected the original bottom to propagate, got %+v", result.Clause)
	}
}

func TestSelfApplicationCallsTheArgumentAtomOnce(t *testing.T) {
	var calls int
	a := expr.NewAtom(expr.Position{}, countingAtom{n: 1, calls: &calls})
	lam := expr.NewLambda(expr.Position{}, func(arg *expr.Expression) *expr.Expression {
		return expr.NewApply(expr.Position{}, arg, arg)
	})
	app := expr.NewApply(expr.Position{}, lam, a)

	if _, err := Run(MapEnv{}, app, Unlimited()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one call, got %d", calls)
	}
}

// countingEnv tracks how many times Lookup actually resolved sym,
// distinguishing a fresh resolution from one already short-circuited by
// an in-place Identity rewrite left behind by an earlier visit.
type countingEnv struct {
	sym    expr.Symbol
	target *expr.Expression
	calls  *int
}

func (e countingEnv) Lookup(sym expr.Symbol) (*expr.Expression, bool) {
	if !sym.Equal(e.sym) {
		return nil, false
	}
	*e.calls++
	return e.target, true
}

func TestSeqForcingBothAliasedOccurrencesResolvesTheSymbolOnce(t *testing.T) {
	var calls int
	sym := expr.Symbol{9}
	result := expr.NewAtom(expr.Position{}, countingAtom{n: 5})
	env := countingEnv{sym: sym, target: result, calls: &calls}

	lam := expr.NewLambda(expr.Position{}, func(arg *expr.Expression) *expr.Expression {
		return expr.NewSeq(expr.Position{}, arg, arg)
	})
	value := expr.NewConst(expr.Position{}, sym)
	app := expr.NewApply(expr.Position{}, lam, value)

	got, err := Run(env, app, Unlimited())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != result {
		t.Fatalf("expected the resolved atom, got %+v", got.Clause)
	}
	if calls != 1 {
		t.Fatalf("expected the symbol to resolve exactly once, got %d", calls)
	}
}

func TestUnknownSymbolReducesToBottom(t *testing.T) {
	sym := expr.Symbol{1, 2}
	result, err := Run(MapEnv{}, expr.NewConst(expr.Position{}, sym), Unlimited())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, ok := result.Clause.(expr.Bottom)
	if !ok || len(b.Errors) != 1 {
		t.Fatalf("expected a single-error Bottom, got %+v", result.Clause)
	}
	if _, ok := b.Errors[0].(*UnknownSymbolError); !ok {
		t.Fatalf("expected UnknownSymbolError, got %T", b.Errors[0])
	}
}

func TestOutOfGasReturnsRootResumableWithFreshGas(t *testing.T) {
	atom7 := expr.NewAtom(expr.Position{}, countingAtom{n: 7})
	lam := expr.NewLambda(expr.Position{}, func(arg *expr.Expression) *expr.Expression { return arg })
	sym := expr.Symbol{3}
	env := MapEnv{sym.String(): lam}
	app := expr.NewApply(expr.Position{}, expr.NewConst(expr.Position{}, sym), atom7)

	stuck, err := Run(env, app, NewGas(0))
	if err != ErrOutOfGas {
		t.Fatalf("expected ErrOutOfGas, got %v", err)
	}
	if stuck != app {
		t.Fatal("expected the out-of-gas snapshot to be the original root expression")
	}

	result, err := Run(env, stuck, Unlimited())
	if err != nil {
		t.Fatalf("unexpected error resuming: %v", err)
	}
	if result != atom7 {
		t.Fatalf("expected atom7 after resuming, got %+v", result.Clause)
	}
}

func TestBottomUnwindsEveryStackedAncestorInPlace(t *testing.T) {
	bottom := expr.NewBottom(expr.Position{}, errTest)
	xA := expr.NewAtom(expr.Position{}, countingAtom{n: 1})
	xB := expr.NewAtom(expr.Position{}, countingAtom{n: 2})
	innermost := expr.NewApply(expr.Position{}, bottom, xA)
	outermost := expr.NewApply(expr.Position{}, innermost, xB)

	result, err := Run(MapEnv{}, outermost, Unlimited())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, ok := result.Clause.(expr.Bottom)
	if !ok || len(b.Errors) != 1 || b.Errors[0] != errTest {
		t.Fatalf("expected the returned node to carry the bottom, got %+v", result.Clause)
	}

	for name, node := range map[string]*expr.Expression{"innermost": innermost, "outermost": outermost} {
		nb, ok := node.Clause.(expr.Bottom)
		if !ok || len(nb.Errors) != 1 || nb.Errors[0] != errTest {
			t.Fatalf("expected %s to be rewritten to the same bottom in place, got %+v", name, node.Clause)
		}
	}
}

var errTest = testError("boom")

type testError string

func (e testError) Error() string { return string(e) }
