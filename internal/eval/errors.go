package eval

import (
	"errors"
	"fmt"

	"github.com/lbfalvy/orchid-sub001/internal/expr"
)

// ErrOutOfGas is returned by Run when the supplied budget is spent
// before reduction reaches weak head normal form. The expression
// returned alongside it is safe to feed back into another Run call
// with fresh gas: completed work is already folded into the graph via
// in-place Identity rewrites, so resuming only re-walks the parts still
// outstanding.
var ErrOutOfGas = errors.New("eval: out of gas")

// UnknownSymbolError reports a Const whose symbol has no binding in the
// environment it was resolved against. The evaluator turns this into a
// Bottom rather than returning it directly, since an undefined name is
// a program-level failure like any other, not a host-level one.
type UnknownSymbolError struct {
	Symbol expr.Symbol
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("eval: unknown symbol %s", e.Symbol)
}

// UnresolvedParameterError reports a lambda parameter marker reached
// during reduction without ever having been substituted. This is a
// construction bug -- an ArgMarker escaping its own lambda's body --
// rather than something a well-formed program can trigger.
type UnresolvedParameterError struct {
	Pos expr.Position
}

func (e *UnresolvedParameterError) Error() string {
	return fmt.Sprintf("eval: unresolved parameter reference at %s", e.Pos)
}
