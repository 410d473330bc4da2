// Package strength scores passwords by entropy and weak-pattern deductions.
package strength

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/forest6511/passforge/pkg/charset"
	"github.com/forest6511/passforge/pkg/pattern"
	"github.com/forest6511/passforge/pkg/policy"
)

// Label classifies a score.
type Label int

const (
	// LabelWeak is a score below 40.
	LabelWeak Label = iota
	// LabelMedium is a score from 40 to 69.
	LabelMedium
	// LabelStrong is a score of 70 or more.
	LabelStrong
)

// Label thresholds.
const (
	MediumThreshold = 40
	StrongThreshold = 70
)

// String returns a human-readable representation of the label.
func (l Label) String() string {
	switch l {
	case LabelWeak:
		return "Weak"
	case LabelMedium:
		return "Medium"
	case LabelStrong:
		return "Strong"
	default:
		return "Unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Label) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Label) UnmarshalText(text []byte) error {
	parsed, err := ParseLabel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLabel parses a label name case-insensitively.
func ParseLabel(s string) (Label, error) {
	for _, l := range []Label{LabelWeak, LabelMedium, LabelStrong} {
		if strings.EqualFold(s, l.String()) {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown strength label %q", s)
}

// LabelFor maps a 0-100 score onto a label.
func LabelFor(score int) Label {
	switch {
	case score >= StrongThreshold:
		return LabelStrong
	case score >= MediumThreshold:
		return LabelMedium
	default:
		return LabelWeak
	}
}

// Rule names, in evaluation order.
const (
	RuleSequential     = "sequential"
	RuleRepeated       = "repeated"
	RuleKeyboard       = "keyboard"
	RuleClassDiversity = "class_diversity"
	RuleLength         = "length"
)

// Deduction is one fired rule and the points it cost.
type Deduction struct {
	Rule   string `json:"rule"`
	Reason string `json:"reason"`
	Points int    `json:"points"`
}

// Report is the result of scoring one password.
type Report struct {
	EntropyBits float64     `json:"entropy_bits"`
	Score       int         `json:"score"`
	Label       Label       `json:"label"`
	Deductions  []Deduction `json:"deductions"`
}

// PointsLost returns the sum of all deductions before the floor at zero.
func (r Report) PointsLost() int {
	total := 0
	for _, d := range r.Deductions {
		total += d.Points
	}
	return total
}

const maxScore = 100

// Score evaluates password under ctx. It is pure: the same inputs always
// produce an equal report.
func Score(password string, ctx Context) Report {
	deductions := Deductions(password)

	score := maxScore
	for _, d := range deductions {
		score -= d.Points
	}
	if score < 0 {
		score = 0
	}

	return Report{
		EntropyBits: Entropy(password, ctx),
		Score:       score,
		Label:       LabelFor(score),
		Deductions:  deductions,
	}
}

// Deductions returns the fired rules for password in evaluation order.
func Deductions(password string) []Deduction {
	deductions := make([]Deduction, 0, 5)

	if pattern.HasSequentialRun(password) {
		deductions = append(deductions, Deduction{
			Rule:   RuleSequential,
			Reason: "contains a run of sequential letters or digits",
			Points: 20,
		})
	}

	if pattern.HasRepeatedRun(password) {
		deductions = append(deductions, Deduction{
			Rule:   RuleRepeated,
			Reason: "repeats a character 3 or more times in a row",
			Points: 20,
		})
	}

	if pattern.HasKeyboardPattern(password) {
		deductions = append(deductions, Deduction{
			Rule:   RuleKeyboard,
			Reason: "contains a keyboard pattern",
			Points: 20,
		})
	}

	classes := countClasses(password)
	if points := classPenalty(classes); points > 0 {
		deductions = append(deductions, Deduction{
			Rule:   RuleClassDiversity,
			Reason: fmt.Sprintf("uses only %d of 4 character classes", classes),
			Points: points,
		})
	}

	length := utf8.RuneCountInString(password)
	if points := lengthPenalty(length); points > 0 {
		deductions = append(deductions, Deduction{
			Rule:   RuleLength,
			Reason: fmt.Sprintf("length %d is below 16", length),
			Points: points,
		})
	}

	return deductions
}

// classPenalty treats a password with no characters like a single-class one.
func classPenalty(classes int) int {
	switch {
	case classes <= 1:
		return 30
	case classes == 2:
		return 15
	case classes == 3:
		return 5
	default:
		return 0
	}
}

func lengthPenalty(length int) int {
	switch {
	case length < 8:
		return 30
	case length < 12:
		return 15
	case length < 16:
		return 5
	default:
		return 0
	}
}

func countClasses(password string) int {
	var present [4]bool
	for _, r := range password {
		present[charset.ClassOf(r)] = true
	}

	count := 0
	for _, ok := range present {
		if ok {
			count++
		}
	}
	return count
}

// SegmentedEntropy returns log2(26^6 * 26^5 * 10 * 6 * 26^6): 17 random
// letters, one digit and its position among 6 slots. Separators add nothing.
func SegmentedEntropy() float64 {
	return 17*math.Log2(26) + math.Log2(10) + math.Log2(6)
}

// Entropy returns the entropy in bits of password under ctx.
func Entropy(password string, ctx Context) float64 {
	switch ctx.Mode {
	case policy.ModeSegmented:
		return SegmentedEntropy()
	case policy.ModeFreeForm, policy.ModeConstrainedMixed:
		poolSize := ctx.PoolSize()
		length := utf8.RuneCountInString(password)
		if poolSize <= 0 || length == 0 {
			return 0
		}
		// length*log2(pool) == log2(pool^length) without overflowing.
		return float64(length) * math.Log2(float64(poolSize))
	default:
		return 0
	}
}
