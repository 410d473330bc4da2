// Package policy defines the password generation policy passed into the engine.
package policy

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPolicy indicates an unrecognized mode or a free-form length
// outside [MinLength, MaxLength].
var ErrInvalidPolicy = errors.New("invalid password policy")

// Length limits for free-form passwords.
const (
	MinLength     = 1
	MaxLength     = 1024
	DefaultLength = 16
)

// Mode selects the generation strategy.
type Mode int

const (
	// ModeFreeForm draws Length characters from the pool built from the include flags.
	ModeFreeForm Mode = iota
	// ModeSegmented produces the fixed "xxxxxx-xxxxx-xxxxxx" lowercase format with one digit.
	ModeSegmented
	// ModeConstrainedMixed produces 16 characters of mixed case and digits, each class present.
	ModeConstrainedMixed
)

var modeNames = map[Mode]string{
	ModeFreeForm:         "freeform",
	ModeSegmented:        "segmented",
	ModeConstrainedMixed: "mixed",
}

// String returns the mode name used in config files and flags.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// ParseMode parses a mode name. Matching is case-insensitive and accepts
// a few aliases ("free", "apple", "constrained").
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "freeform", "free-form", "free":
		return ModeFreeForm, nil
	case "segmented", "apple":
		return ModeSegmented, nil
	case "mixed", "constrained", "constrained-mixed":
		return ModeConstrainedMixed, nil
	}
	return 0, fmt.Errorf("%w: unknown mode %q", ErrInvalidPolicy, s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: unknown mode %d", ErrInvalidPolicy, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Modes returns all modes in declaration order.
func Modes() []Mode {
	return []Mode{ModeFreeForm, ModeSegmented, ModeConstrainedMixed}
}

// Policy is the caller-supplied description of the password to generate.
// Length and the include flags only apply to ModeFreeForm.
type Policy struct {
	Mode             Mode `yaml:"mode" json:"mode"`
	Length           int  `yaml:"length" json:"length"`
	Uppercase        bool `yaml:"uppercase" json:"uppercase"`
	Lowercase        bool `yaml:"lowercase" json:"lowercase"`
	Numbers          bool `yaml:"numbers" json:"numbers"`
	Symbols          bool `yaml:"symbols" json:"symbols"`
	ExcludeAmbiguous bool `yaml:"exclude_ambiguous" json:"exclude_ambiguous"`
}

// Default returns a free-form policy with every class enabled.
func Default() Policy {
	return Policy{
		Mode:      ModeFreeForm,
		Length:    DefaultLength,
		Uppercase: true,
		Lowercase: true,
		Numbers:   true,
		Symbols:   true,
	}
}

// AnyClass reports whether at least one include flag is set.
func (p Policy) AnyClass() bool {
	return p.Uppercase || p.Lowercase || p.Numbers || p.Symbols
}

// Validate checks mode and length. An empty class selection is reported
// by the charset builder as an empty pool, not here.
func (p Policy) Validate() error {
	if !p.Mode.Valid() {
		return fmt.Errorf("%w: unknown mode %d", ErrInvalidPolicy, int(p.Mode))
	}
	if p.Mode != ModeFreeForm {
		return nil
	}
	if p.Length < MinLength {
		return fmt.Errorf("%w: length must be at least %d, got %d", ErrInvalidPolicy, MinLength, p.Length)
	}
	if p.Length > MaxLength {
		return fmt.Errorf("%w: length must be at most %d, got %d", ErrInvalidPolicy, MaxLength, p.Length)
	}
	return nil
}
