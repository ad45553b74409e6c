package eval

import "github.com/lbfalvy/orchid-sub001/internal/expr"

// Environment resolves a Const clause's symbol to the expression it
// names. Resolution is the evaluator's responsibility, not the
// expression model's: Const only carries the symbol.
type Environment interface {
	Lookup(sym expr.Symbol) (*expr.Expression, bool)
}

// MapEnv is a trivial Environment backed by a Go map, keyed by a
// symbol's string form. Production hosts will back Environment with
// whatever namespace/module table the loader builds; MapEnv exists for
// tests and small embeddings.
type MapEnv map[string]*expr.Expression

func (m MapEnv) Lookup(sym expr.Symbol) (*expr.Expression, bool) {
	e, ok := m[sym.String()]
	return e, ok
}
