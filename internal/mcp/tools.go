package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/text/unicode/norm"

	"github.com/forest6511/passforge/pkg/generator"
	"github.com/forest6511/passforge/pkg/history"
	"github.com/forest6511/passforge/pkg/policy"
	"github.com/forest6511/passforge/pkg/strength"
)

// maxGenerateCount caps passwords per password_generate call.
const maxGenerateCount = 100

// maxScoreLength caps the password accepted by password_score.
const maxScoreLength = 4096

// PasswordGenerateInput represents input for the password_generate tool.
// Unset fields fall back to the server's configured policy.
type PasswordGenerateInput struct {
	Mode             string `json:"mode,omitempty"`
	Length           int    `json:"length,omitempty"`
	Uppercase        *bool  `json:"uppercase,omitempty"`
	Lowercase        *bool  `json:"lowercase,omitempty"`
	Numbers          *bool  `json:"numbers,omitempty"`
	Symbols          *bool  `json:"symbols,omitempty"`
	ExcludeAmbiguous *bool  `json:"exclude_ambiguous,omitempty"`
	Count            int    `json:"count,omitempty"`
}

// PasswordGenerateOutput represents output for the password_generate tool.
type PasswordGenerateOutput struct {
	Passwords []GeneratedPassword `json:"passwords"`
}

// GeneratedPassword is one password with its strength report.
type GeneratedPassword struct {
	Password    string      `json:"password"`
	Mode        string      `json:"mode"`
	EntropyBits float64     `json:"entropy_bits"`
	Score       int         `json:"score"`
	Label       string      `json:"label"`
	Deductions  []Deduction `json:"deductions"`
}

// Deduction is one weak pattern found in a password.
type Deduction struct {
	Rule   string `json:"rule"`
	Reason string `json:"reason"`
	Points int    `json:"points"`
}

// PasswordScoreInput represents input for the password_score tool.
type PasswordScoreInput struct {
	Password string `json:"password"`
	Mode     string `json:"mode,omitempty"`
}

// PasswordScoreOutput represents output for the password_score tool.
type PasswordScoreOutput struct {
	Mode        string      `json:"mode"`
	Length      int         `json:"length"`
	EntropyBits float64     `json:"entropy_bits"`
	Score       int         `json:"score"`
	Label       string      `json:"label"`
	Deductions  []Deduction `json:"deductions"`
}

// handlePasswordGenerate handles the password_generate tool call.
func (s *Server) handlePasswordGenerate(ctx context.Context, _ *mcp.CallToolRequest, input PasswordGenerateInput) (*mcp.CallToolResult, PasswordGenerateOutput, error) {
	count := input.Count
	if count == 0 {
		count = 1
	}
	if count < 1 || count > maxGenerateCount {
		return nil, PasswordGenerateOutput{}, fmt.Errorf("count must be between 1 and %d", maxGenerateCount)
	}

	p, err := s.policyFor(input)
	if err != nil {
		return nil, PasswordGenerateOutput{}, err
	}

	select {
	case s.genSem <- struct{}{}:
		defer func() { <-s.genSem }()
	case <-ctx.Done():
		return nil, PasswordGenerateOutput{}, ctx.Err()
	}

	results, err := s.generator.GenerateMany(ctx, p, count)
	if err != nil {
		return nil, PasswordGenerateOutput{}, fmt.Errorf("failed to generate password: %w", err)
	}

	output := PasswordGenerateOutput{
		Passwords: make([]GeneratedPassword, 0, len(results)),
	}
	for _, r := range results {
		output.Passwords = append(output.Passwords, GeneratedPassword{
			Password:    r.Password.Value,
			Mode:        r.Password.Mode.String(),
			EntropyBits: r.Report.EntropyBits,
			Score:       r.Report.Score,
			Label:       r.Report.Label.String(),
			Deductions:  toDeductions(r.Report.Deductions),
		})
	}

	s.record(ctx, results)

	return nil, output, nil
}

// handlePasswordScore handles the password_score tool call.
func (s *Server) handlePasswordScore(_ context.Context, _ *mcp.CallToolRequest, input PasswordScoreInput) (*mcp.CallToolResult, PasswordScoreOutput, error) {
	if input.Password == "" {
		return nil, PasswordScoreOutput{}, errors.New("password is required")
	}
	if len(input.Password) > maxScoreLength {
		return nil, PasswordScoreOutput{}, fmt.Errorf("password must be at most %d bytes", maxScoreLength)
	}

	mode := policy.ModeFreeForm
	if input.Mode != "" {
		parsed, err := policy.ParseMode(input.Mode)
		if err != nil {
			return nil, PasswordScoreOutput{}, err
		}
		mode = parsed
	}

	password := norm.NFC.String(input.Password)
	ctx := strength.ContextForMode(mode, password)
	report := strength.Score(password, ctx)

	s.logger.Debug("password scored", "mode", mode.String(), "score", report.Score, "label", report.Label.String())

	return nil, PasswordScoreOutput{
		Mode:        mode.String(),
		Length:      len([]rune(password)),
		EntropyBits: report.EntropyBits,
		Score:       report.Score,
		Label:       report.Label.String(),
		Deductions:  toDeductions(report.Deductions),
	}, nil
}

// policyFor overlays the fields set in input on the server defaults.
func (s *Server) policyFor(input PasswordGenerateInput) (policy.Policy, error) {
	p := s.defaults

	if input.Mode != "" {
		mode, err := policy.ParseMode(input.Mode)
		if err != nil {
			return policy.Policy{}, err
		}
		p.Mode = mode
	}
	if input.Length != 0 {
		p.Length = input.Length
	}

	overlay := []struct {
		src *bool
		dst *bool
	}{
		{input.Uppercase, &p.Uppercase},
		{input.Lowercase, &p.Lowercase},
		{input.Numbers, &p.Numbers},
		{input.Symbols, &p.Symbols},
		{input.ExcludeAmbiguous, &p.ExcludeAmbiguous},
	}
	for _, o := range overlay {
		if o.src != nil {
			*o.dst = *o.src
		}
	}

	if err := p.Validate(); err != nil {
		return policy.Policy{}, err
	}
	return p, nil
}

// record stores reports in history. Failures are logged and do not fail
// the tool call.
func (s *Server) record(ctx context.Context, results []*generator.Result) {
	if s.history == nil {
		return
	}
	for _, r := range results {
		if err := s.history.Record(ctx, history.NewEntry(history.SourceMCP, r)); err != nil {
			s.logger.Warn("failed to record history", "error", err)
			return
		}
	}
}

func toDeductions(in []strength.Deduction) []Deduction {
	out := make([]Deduction, len(in))
	for i, d := range in {
		out[i] = Deduction{Rule: d.Rule, Reason: d.Reason, Points: d.Points}
	}
	return out
}
