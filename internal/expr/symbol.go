package expr

import (
	"strconv"
	"strings"

	"github.com/lbfalvy/orchid-sub001/internal/intern"
)

// Symbol is a namespaced name such as std::string::concat, represented as
// the interned tokens of its path segments so that equality and hashing
// never touch the underlying text. Const carries a Symbol; resolving it
// to a concrete Expression is the environment's job, not this package's.
type Symbol []intern.StrToken

// String renders a Symbol using its raw token values, since rendering
// the actual path segments would require access to an interner.
func (s Symbol) String() string {
	parts := make([]string, len(s))
	for i, t := range s {
		parts[i] = strconv.FormatUint(uint64(t), 10)
	}
	return strings.Join(parts, "::")
}

// Equal reports whether two symbols name the same path.
func (s Symbol) Equal(other Symbol) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}
