package generator

import (
	"fmt"
	"strings"

	"github.com/forest6511/passforge/pkg/charset"
	"github.com/forest6511/passforge/pkg/policy"
	"github.com/forest6511/passforge/pkg/random"
	"github.com/forest6511/passforge/pkg/strength"
)

// Segmented format constants.
const (
	SegmentSeparator = '-'
	firstSegmentLen  = 6
	middleSegmentLen = 5
	lastSegmentLen   = 6
	// digitSlots is the number of insertion points around the middle letters.
	digitSlots = middleSegmentLen + 1
)

// Constrained mixed constants.
const (
	MixedLength        = 16
	DefaultMaxAttempts = 1000
)

// Password is a generated password together with the effective policy
// needed to recompute its entropy.
type Password struct {
	Value    string        `json:"value"`
	Mode     policy.Mode   `json:"mode"`
	Policy   policy.Policy `json:"policy"`
	Attempts int           `json:"attempts,omitempty"`
}

// Context returns the scoring context for the password.
func (p Password) Context() strength.Context {
	return strength.ContextFor(p.Policy)
}

// Strategy generates one password from a policy and a sampler.
type Strategy interface {
	Generate(p policy.Policy, s random.Sampler) (Password, error)
}

// FreeForm draws Length characters from the pool built from the policy flags.
type FreeForm struct{}

// Generate implements Strategy.
func (FreeForm) Generate(p policy.Policy, s random.Sampler) (Password, error) {
	p.Mode = policy.ModeFreeForm
	if err := p.Validate(); err != nil {
		return Password{}, err
	}

	pool, err := charset.Build(p)
	if err != nil {
		return Password{}, err
	}

	indices, err := s.Indices(pool.Len(), p.Length)
	if err != nil {
		return Password{}, fmt.Errorf("failed to sample characters: %w", err)
	}

	return Password{
		Value:  pool.Pick(indices),
		Mode:   policy.ModeFreeForm,
		Policy: p,
	}, nil
}

// Segmented produces "abcdef-gh3ijk-lmnopq": three lowercase segments of
// 6, 5 and 6 letters with one digit inserted into the middle segment.
type Segmented struct{}

// segmentedPolicy is the effective policy of every segmented password.
var segmentedPolicy = policy.Policy{Mode: policy.ModeSegmented, Lowercase: true, Numbers: true}

// Generate implements Strategy. The policy is only used for its mode.
func (Segmented) Generate(_ policy.Policy, s random.Sampler) (Password, error) {
	letters, err := charset.Build(policy.Policy{Lowercase: true})
	if err != nil {
		return Password{}, err
	}

	total := firstSegmentLen + middleSegmentLen + lastSegmentLen
	indices, err := s.Indices(letters.Len(), total)
	if err != nil {
		return Password{}, fmt.Errorf("failed to sample letters: %w", err)
	}
	drawn := letters.Pick(indices)

	digit, err := s.Index(len(charset.Numbers))
	if err != nil {
		return Password{}, fmt.Errorf("failed to sample digit: %w", err)
	}
	slot, err := s.Index(digitSlots)
	if err != nil {
		return Password{}, fmt.Errorf("failed to sample digit position: %w", err)
	}

	middle := drawn[firstSegmentLen : firstSegmentLen+middleSegmentLen]
	middle = middle[:slot] + string(charset.Numbers[digit]) + middle[slot:]

	var b strings.Builder
	b.Grow(total + 3)
	b.WriteString(drawn[:firstSegmentLen])
	b.WriteByte(SegmentSeparator)
	b.WriteString(middle)
	b.WriteByte(SegmentSeparator)
	b.WriteString(drawn[firstSegmentLen+middleSegmentLen:])

	return Password{
		Value:  b.String(),
		Mode:   policy.ModeSegmented,
		Policy: segmentedPolicy,
	}, nil
}

// ConstrainedMixed draws 16 characters from A-Z, a-z, 0-9 and rejects
// candidates lacking an uppercase letter, a lowercase letter or a digit.
type ConstrainedMixed struct {
	// MaxAttempts caps the accept/reject loop. Zero means DefaultMaxAttempts.
	MaxAttempts int
}

// mixedPolicy is the effective policy of every constrained mixed password.
var mixedPolicy = policy.Policy{
	Mode:      policy.ModeConstrainedMixed,
	Length:    MixedLength,
	Uppercase: true,
	Lowercase: true,
	Numbers:   true,
}

// Generate implements Strategy. The policy is only used for its mode.
func (c ConstrainedMixed) Generate(_ policy.Policy, s random.Sampler) (Password, error) {
	maxAttempts := c.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	pool, err := charset.Build(mixedPolicy)
	if err != nil {
		return Password{}, err
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		indices, err := s.Indices(pool.Len(), MixedLength)
		if err != nil {
			return Password{}, fmt.Errorf("failed to sample characters: %w", err)
		}

		candidate := pool.Pick(indices)
		if hasUpperLowerDigit(candidate) {
			return Password{
				Value:    candidate,
				Mode:     policy.ModeConstrainedMixed,
				Policy:   mixedPolicy,
				Attempts: attempt,
			}, nil
		}
	}

	return Password{}, fmt.Errorf("%w: %d attempts", ErrGenerationExhausted, maxAttempts)
}

func hasUpperLowerDigit(s string) bool {
	var upper, lower, digit bool
	for _, r := range s {
		switch charset.ClassOf(r) {
		case charset.ClassUppercase:
			upper = true
		case charset.ClassLowercase:
			lower = true
		case charset.ClassNumbers:
			digit = true
		}
	}
	return upper && lower && digit
}
