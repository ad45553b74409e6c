package expr

import "fmt"

// Position names where an expression came from, for error messages and
// debugging. It carries no semantic weight during reduction.
type Position struct {
	Module string
	Line   int
	Col    int
}

func (p Position) String() string {
	if p.Module == "" {
		return "<generated>"
	}
	return fmt.Sprintf("%s:%d:%d", p.Module, p.Line, p.Col)
}
