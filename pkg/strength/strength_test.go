package strength

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/forest6511/passforge/pkg/policy"
)

var (
	fourClassContext = Context{Mode: policy.ModeFreeForm, Uppercase: true, Lowercase: true, Numbers: true, Symbols: true}
	lowerOnlyContext = Context{Mode: policy.ModeFreeForm, Lowercase: true}
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestLabel_String(t *testing.T) {
	tests := []struct {
		label Label
		want  string
	}{
		{LabelWeak, "Weak"},
		{LabelMedium, "Medium"},
		{LabelStrong, "Strong"},
		{Label(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.label.String(); got != tt.want {
				t.Errorf("Label.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLabelFor_Boundaries(t *testing.T) {
	tests := []struct {
		score int
		want  Label
	}{
		{0, LabelWeak},
		{39, LabelWeak},
		{40, LabelMedium},
		{69, LabelMedium},
		{70, LabelStrong},
		{100, LabelStrong},
	}

	for _, tt := range tests {
		if got := LabelFor(tt.score); got != tt.want {
			t.Errorf("LabelFor(%d) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestScore_RepeatedRunFourClasses(t *testing.T) {
	report := Score("aaaa1111AAAA!!!!", fourClassContext)

	want := []Deduction{{Rule: RuleRepeated, Points: 20}}
	assertRules(t, report.Deductions, want)

	if report.Score != 80 {
		t.Errorf("Score = %d, want 80", report.Score)
	}
	if report.Label != LabelStrong {
		t.Errorf("Label = %v, want Strong", report.Label)
	}
}

func TestScore_SequentialLowercase(t *testing.T) {
	report := Score("abcdefgh", lowerOnlyContext)

	want := []Deduction{
		{Rule: RuleSequential, Points: 20},
		{Rule: RuleClassDiversity, Points: 30},
		{Rule: RuleLength, Points: 15},
	}
	assertRules(t, report.Deductions, want)

	if report.PointsLost() != 65 {
		t.Errorf("PointsLost() = %d, want 65", report.PointsLost())
	}
	if report.Score != 35 {
		t.Errorf("Score = %d, want 35", report.Score)
	}
	if report.Label != LabelWeak {
		t.Errorf("Label = %v, want Weak", report.Label)
	}
	if !almostEqual(report.EntropyBits, 8*math.Log2(26)) {
		t.Errorf("EntropyBits = %v, want %v", report.EntropyBits, 8*math.Log2(26))
	}
}

func TestScore_FloorsAtZero(t *testing.T) {
	// sequential + repeated + keyboard + 1 class + short = 105 points
	report := Score("abcqwertaaa", InferContext("abcqwertaaa"))
	if report.PointsLost() <= maxScore {
		t.Fatalf("PointsLost() = %d, expected more than %d", report.PointsLost(), maxScore)
	}
	if report.Score != 0 {
		t.Errorf("Score = %d, want 0", report.Score)
	}
	if report.Label != LabelWeak {
		t.Errorf("Label = %v, want Weak", report.Label)
	}
}

func TestScore_Deductions(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     []Deduction
	}{
		{
			name:     "clean four classes",
			password: "Xk9#mP2$vL7!qR4&",
			want:     nil,
		},
		{
			name:     "three classes",
			password: "Xk9mP2vL7qR4tW8z",
			want:     []Deduction{{Rule: RuleClassDiversity, Points: 5}},
		},
		{
			name:     "two classes",
			password: "XkymPavLzqRbtWcz",
			want:     []Deduction{{Rule: RuleClassDiversity, Points: 15}},
		},
		{
			name:     "length 12 to 15",
			password: "Xk9#mP2$vL7!",
			want:     []Deduction{{Rule: RuleLength, Points: 5}},
		},
		{
			name:     "keyboard pattern only",
			password: "Xk9#ASDFG2$vL7!q",
			want:     []Deduction{{Rule: RuleKeyboard, Points: 20}},
		},
		{
			name:     "empty password",
			password: "",
			want: []Deduction{
				{Rule: RuleClassDiversity, Points: 30},
				{Rule: RuleLength, Points: 30},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Score(tt.password, InferContext(tt.password))
			assertRules(t, report.Deductions, tt.want)
		})
	}
}

func TestScore_Deterministic(t *testing.T) {
	for _, password := range []string{"abcdefgh", "aaaa1111AAAA!!!!", "Xk9#mP2$vL7!qR4&", ""} {
		a := Score(password, fourClassContext)
		b := Score(password, fourClassContext)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("Score(%q) not deterministic: %+v vs %+v", password, a, b)
		}
	}
}

func TestScore_ReasonsPresent(t *testing.T) {
	report := Score("abcdefgh", lowerOnlyContext)
	for _, d := range report.Deductions {
		if d.Reason == "" {
			t.Errorf("deduction %s has no reason", d.Rule)
		}
	}
}

func TestEntropy_FreeForm95(t *testing.T) {
	password := strings.Repeat("x", 16)
	got := Entropy(password, fourClassContext)
	want := 16 * math.Log2(95)
	if !almostEqual(got, want) {
		t.Errorf("Entropy = %v, want %v", got, want)
	}
	if got < 105 || got > 105.2 {
		t.Errorf("Entropy = %v, want about 105.1", got)
	}
}

func TestEntropy_Monotonic(t *testing.T) {
	ctx := Context{Mode: policy.ModeFreeForm, Uppercase: true, Numbers: true}
	step := math.Log2(36)

	for length := 1; length < 64; length++ {
		shorter := Entropy(strings.Repeat("A", length), ctx)
		longer := Entropy(strings.Repeat("A", length+1), ctx)
		if !almostEqual(longer-shorter, step) {
			t.Fatalf("length %d -> %d added %v bits, want %v", length, length+1, longer-shorter, step)
		}
	}
}

func TestEntropy_Modes(t *testing.T) {
	tests := []struct {
		name     string
		password string
		ctx      Context
		want     float64
	}{
		{
			name:     "segmented is closed form",
			password: "abcdef-gh1ijk-lmnopq",
			ctx:      Context{Mode: policy.ModeSegmented},
			want:     math.Log2(math.Pow(26, 17) * 10 * 6),
		},
		{
			name:     "mixed uses 62",
			password: "Ab3defGhijKlmn0p",
			ctx:      Context{Mode: policy.ModeConstrainedMixed},
			want:     16 * math.Log2(62),
		},
		{
			name:     "ambiguous filter keeps class sizes",
			password: "abcd",
			ctx:      Context{Mode: policy.ModeFreeForm, Lowercase: true, ExcludeAmbiguous: true},
			want:     4 * math.Log2(26),
		},
		{
			name:     "no classes",
			password: "abcd",
			ctx:      Context{Mode: policy.ModeFreeForm},
			want:     0,
		},
		{
			name:     "empty password",
			password: "",
			ctx:      fourClassContext,
			want:     0,
		},
		{
			name:     "unknown mode",
			password: "abcd",
			ctx:      Context{Mode: policy.Mode(7)},
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Entropy(tt.password, tt.ctx)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("Entropy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSegmentedEntropy(t *testing.T) {
	if got := SegmentedEntropy(); got < 85.7 || got > 85.9 {
		t.Errorf("SegmentedEntropy() = %v, want about 85.8", got)
	}
}

func TestSegmentedEntropy_ScoreIsStable(t *testing.T) {
	ctx := Context{Mode: policy.ModeSegmented}
	first := Score("abcdef-gh1ijk-lmnopq", ctx).EntropyBits
	second := Score("zyxwvu-ts2rqp-onmlkj", ctx).EntropyBits
	if first != SegmentedEntropy() || second != first {
		t.Errorf("segmented entropy = %v, %v, want %v", first, second, SegmentedEntropy())
	}
}

func TestPoolSize(t *testing.T) {
	tests := []struct {
		name string
		ctx  Context
		want int
	}{
		{"all classes", fourClassContext, 95},
		{"all classes excluding ambiguous", Context{Mode: policy.ModeFreeForm, Uppercase: true, Lowercase: true, Numbers: true, Symbols: true, ExcludeAmbiguous: true}, 95},
		{"lowercase and numbers", Context{Mode: policy.ModeFreeForm, Lowercase: true, Numbers: true}, 36},
		{"symbols only", Context{Mode: policy.ModeFreeForm, Symbols: true}, 33},
		{"no classes", Context{Mode: policy.ModeFreeForm}, 0},
		{"mixed", Context{Mode: policy.ModeConstrainedMixed}, MixedPoolSize},
		{"segmented", Context{Mode: policy.ModeSegmented}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ctx.PoolSize(); got != tt.want {
				t.Errorf("PoolSize() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEntropy_ExcludeAmbiguousUsesClassSizes(t *testing.T) {
	ctx := fourClassContext
	ctx.ExcludeAmbiguous = true

	got := Entropy("Ab3$efGhJk7%mNpq", ctx)
	if math.Abs(got-16*math.Log2(95)) > 1e-6 {
		t.Errorf("Entropy() = %v, want %v", got, 16*math.Log2(95))
	}
}

func TestInferContext(t *testing.T) {
	tests := []struct {
		password string
		want     Context
	}{
		{"", Context{Mode: policy.ModeFreeForm}},
		{"abc", Context{Mode: policy.ModeFreeForm, Lowercase: true}},
		{"aB3", Context{Mode: policy.ModeFreeForm, Uppercase: true, Lowercase: true, Numbers: true}},
		{"a b", Context{Mode: policy.ModeFreeForm, Lowercase: true, Symbols: true}},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			if got := InferContext(tt.password); got != tt.want {
				t.Errorf("InferContext(%q) = %+v, want %+v", tt.password, got, tt.want)
			}
		})
	}
}

func TestContextFor(t *testing.T) {
	p := policy.Policy{Mode: policy.ModeSegmented, Length: 12, Uppercase: true}
	if got := ContextFor(p); got != (Context{Mode: policy.ModeSegmented}) {
		t.Errorf("ContextFor(segmented) = %+v, want mode only", got)
	}

	p = policy.Default()
	got := ContextFor(p)
	if got != fourClassContext {
		t.Errorf("ContextFor(default) = %+v, want %+v", got, fourClassContext)
	}
	if got.PoolSize() != 95 {
		t.Errorf("PoolSize() = %d, want 95", got.PoolSize())
	}
}

// assertRules compares rule names and points in order.
func assertRules(t *testing.T, got, want []Deduction) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d deductions %+v, want %d %+v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i].Rule != want[i].Rule || got[i].Points != want[i].Points {
			t.Errorf("deduction[%d] = %s/%d, want %s/%d", i, got[i].Rule, got[i].Points, want[i].Rule, want[i].Points)
		}
	}
}

func TestParseLabel(t *testing.T) {
	tests := []struct {
		in      string
		want    Label
		wantErr bool
	}{
		{"Weak", LabelWeak, false},
		{"medium", LabelMedium, false},
		{"STRONG", LabelStrong, false},
		{"Unknown", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLabel(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseLabel(%q) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseLabel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestContextForMode(t *testing.T) {
	tests := []struct {
		name     string
		mode     policy.Mode
		password string
		want     Context
	}{
		{"freeform infers", policy.ModeFreeForm, "aB", Context{Mode: policy.ModeFreeForm, Uppercase: true, Lowercase: true}},
		{"segmented", policy.ModeSegmented, "abcdef-ghi1jk-lmnopq", Context{Mode: policy.ModeSegmented}},
		{"mixed", policy.ModeConstrainedMixed, "aB3", Context{Mode: policy.ModeConstrainedMixed}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContextForMode(tt.mode, tt.password); got != tt.want {
				t.Errorf("ContextForMode() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
