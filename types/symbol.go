package types

import (
	"bytes"
	"fmt"
)

// SymbolSize is the wire size of a Symbol.
const SymbolSize = 16

// Symbol is a short identifier such as a ticker, stored inline as up to 16 bytes and
// padded with zeros.
type Symbol [SymbolSize]byte

// NewSymbol returns the symbol for s. s must not exceed 16 bytes or contain NUL.
func NewSymbol(s string) (Symbol, error) {
	var sym Symbol
	if len(s) > SymbolSize {
		return sym, fmt.Errorf("symbol %q exceeds %d bytes", s, SymbolSize)
	}
	if bytes.IndexByte([]byte(s), 0) >= 0 {
		return sym, fmt.Errorf("symbol %q contains NUL", s)
	}
	copy(sym[:], s)

	return sym, nil
}

// MustSymbol is like NewSymbol but panics on error.
func MustSymbol(s string) Symbol {
	sym, err := NewSymbol(s)
	if err != nil {
		panic(err)
	}

	return sym
}

func (s Symbol) String() string {
	if i := bytes.IndexByte(s[:], 0); i >= 0 {
		return string(s[:i])
	}

	return string(s[:])
}

// IsZero reports whether the symbol is empty.
func (s Symbol) IsZero() bool {
	return s == Symbol{}
}
