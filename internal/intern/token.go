// Package intern implements a master/replica token service that
// deduplicates strings and token-vectors across processes, with
// cooperative reference-count-based sweeping.
package intern

import "fmt"

// Token is a nonzero process-local handle for an interned value. The
// type parameter is a phantom marker distinguishing string tokens from
// token-vector tokens at compile time; it carries no
// runtime weight, matching the Rust source's PhantomData-tagged token.
type Token[K any] uint64

// Valid reports whether t is a real (nonzero) token.
func (t Token[K]) Valid() bool { return t != 0 }

func (t Token[K]) String() string { return fmt.Sprintf("%d", uint64(t)) }

// strKind and strvKind are the two phantom markers distinguishing TStr
// and TStrv.
type strKind struct{}
type strvKind struct{}

// StrToken denotes an interned string.
type StrToken = Token[strKind]

// StrvToken denotes an interned, ordered sequence of StrTokens.
type StrvToken = Token[strvKind]
