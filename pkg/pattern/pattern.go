// Package pattern detects weak substrings in a candidate password.
package pattern

import "strings"

const (
	alphabet = "abcdefghijklmnopqrstuvwxyz"
	digits   = "0123456789"

	// runLength is the window for sequential and repeated runs.
	runLength = 3
)

// keyboardPatterns are substrings of adjacent keys on a US keyboard.
var keyboardPatterns = []string{
	"qwert", "asdfg", "zxcvb", "yuiop", "hjkl", "nm",
	"12345", "67890", "!@#$%",
}

// KeyboardPatterns returns a copy of the keyboard-adjacency substrings.
func KeyboardPatterns() []string {
	out := make([]string, len(keyboardPatterns))
	copy(out, keyboardPatterns)
	return out
}

// HasSequentialRun reports whether s contains three consecutive letters
// of the alphabet or three consecutive digits, ignoring case.
func HasSequentialRun(s string) bool {
	lower := strings.ToLower(s)
	for _, seq := range []string{alphabet, digits} {
		for i := 0; i+runLength <= len(seq); i++ {
			if strings.Contains(lower, seq[i:i+runLength]) {
				return true
			}
		}
	}
	return false
}

// HasRepeatedRun reports whether any character occurs three or more times
// in a row. Comparison is exact: "aAa" is not a run.
func HasRepeatedRun(s string) bool {
	var prev rune
	count := 0
	for i, r := range s {
		if i > 0 && r == prev {
			count++
		} else {
			count = 1
		}
		if count >= runLength {
			return true
		}
		prev = r
	}
	return false
}

// HasKeyboardPattern reports whether the lowercased s contains a keyboard-adjacency substring.
func HasKeyboardPattern(s string) bool {
	lower := strings.ToLower(s)
	for _, p := range keyboardPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
