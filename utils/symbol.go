package utils

import (
	"github.com/exascience/pargo/sync"

	"github.com/exascience/elcomplex/internal"
)

type symbolName string

// A Symbol is a unique pointer to a string.
type Symbol *string

func (s symbolName) Hash() uint64 {
	return internal.StringHash(string(s))
}

var symbolTable = sync.NewMap(0)

/*
Intern returns a Symbol for the given string.

It always returns the same pointer for strings that are equal, and
different pointers for strings that are not equal. Dereferencing the
pointer always yields a string that is equal to the original string:
*Intern(s) == s always holds.

It is safe for multiple goroutines to call Intern concurrently.
*/
func Intern(s string) Symbol {
	if entry, ok := symbolTable.Load(symbolName(s)); ok {
		return entry.(Symbol)
	}
	entry, _ := symbolTable.LoadOrStore(symbolName(s), Symbol(&s))
	return entry.(Symbol)
}

// Canonical returns the interned copy of s. Read group, platform and
// sample names repeat across many records and share storage this way.
func Canonical(s string) string {
	return *Intern(s)
}
