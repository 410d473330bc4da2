// Package charset builds the character pool a password is drawn from.
package charset

import (
	"errors"
	"strings"

	"github.com/forest6511/passforge/pkg/policy"
)

// ErrEmptyPool is returned when a policy selects no characters.
var ErrEmptyPool = errors.New("character set is empty: select at least one character type")

// Character class strings, concatenated in this order.
const (
	Uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	Lowercase = "abcdefghijklmnopqrstuvwxyz"
	Numbers   = "0123456789"
	// Symbols is every printable ASCII character that is not a letter or digit, space included.
	Symbols = " !\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

	// Ambiguous lists characters that are easily confused when read or typed.
	Ambiguous = "Il1O0o{}[]()\\/'\"`|,;:."
)

// Class identifies one of the four character classes.
type Class int

const (
	ClassUppercase Class = iota
	ClassLowercase
	ClassNumbers
	ClassSymbols
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case ClassUppercase:
		return "uppercase"
	case ClassLowercase:
		return "lowercase"
	case ClassNumbers:
		return "numbers"
	case ClassSymbols:
		return "symbols"
	default:
		return "unknown"
	}
}

// Chars returns the characters of the class.
func (c Class) Chars() string {
	switch c {
	case ClassUppercase:
		return Uppercase
	case ClassLowercase:
		return Lowercase
	case ClassNumbers:
		return Numbers
	case ClassSymbols:
		return Symbols
	default:
		return ""
	}
}

// Size returns the number of characters in the class.
func (c Class) Size() int {
	return len(c.Chars())
}

// Pool is an ordered, immutable character pool.
type Pool struct {
	chars string
}

// Build assembles the pool for p. The include flags are honoured
// regardless of p.Mode; the fixed-format strategies build their own policies.
func Build(p policy.Policy) (Pool, error) {
	var b strings.Builder

	if p.Uppercase {
		b.WriteString(Uppercase)
	}
	if p.Lowercase {
		b.WriteString(Lowercase)
	}
	if p.Numbers {
		b.WriteString(Numbers)
	}
	if p.Symbols {
		b.WriteString(Symbols)
	}

	chars := b.String()
	if p.ExcludeAmbiguous {
		chars = removeChars(chars, Ambiguous)
	}

	if chars == "" {
		return Pool{}, ErrEmptyPool
	}

	return Pool{chars: chars}, nil
}

// Len returns the number of characters in the pool.
func (p Pool) Len() int {
	return len(p.chars)
}

// At returns the character at index i.
func (p Pool) At(i int) byte {
	return p.chars[i]
}

// Contains reports whether r is in the pool.
func (p Pool) Contains(r rune) bool {
	return strings.ContainsRune(p.chars, r)
}

// String returns the pool characters in order.
func (p Pool) String() string {
	return p.chars
}

// Pick maps draw indices onto pool characters, preserving draw order.
func (p Pool) Pick(indices []int) string {
	out := make([]byte, len(indices))
	for i, idx := range indices {
		out[i] = p.chars[idx]
	}
	return string(out)
}

// IsAmbiguous reports whether r is in the ambiguous set.
func IsAmbiguous(r rune) bool {
	return strings.ContainsRune(Ambiguous, r)
}

// ClassOf returns the class r belongs to. Anything that is not an ASCII
// letter or digit counts as a symbol.
func ClassOf(r rune) Class {
	switch {
	case r >= 'A' && r <= 'Z':
		return ClassUppercase
	case r >= 'a' && r <= 'z':
		return ClassLowercase
	case r >= '0' && r <= '9':
		return ClassNumbers
	default:
		return ClassSymbols
	}
}

// removeChars removes every character of chars from s, keeping order.
func removeChars(s, chars string) string {
	var b strings.Builder
	for _, c := range s {
		if !strings.ContainsRune(chars, c) {
			b.WriteRune(c)
		}
	}
	return b.String()
}
