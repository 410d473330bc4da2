package generator

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/forest6511/passforge/pkg/policy"
	"github.com/forest6511/passforge/pkg/random"
	"github.com/forest6511/passforge/pkg/strength"
)

// Result pairs a generated password with its strength report.
type Result struct {
	Password Password        `json:"password"`
	Report   strength.Report `json:"report"`
}

// Generator selects a strategy by policy mode. It holds no state between
// calls besides its configuration and is safe for concurrent use when its
// sampler is.
type Generator struct {
	sampler     random.Sampler
	maxAttempts int
	logger      *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithSampler sets the random sampler. The default draws from crypto/rand.
func WithSampler(s random.Sampler) Option {
	return func(g *Generator) {
		g.sampler = s
	}
}

// WithMaxAttempts caps the constrained mixed accept/reject loop.
func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		g.maxAttempts = n
	}
}

// WithLogger sets the logger. Password values are never logged.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = l
	}
}

// New creates a Generator.
func New(opts ...Option) *Generator {
	g := &Generator{
		sampler:     random.Default(),
		maxAttempts: DefaultMaxAttempts,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Strategy returns the strategy for mode.
func (g *Generator) Strategy(mode policy.Mode) (Strategy, error) {
	switch mode {
	case policy.ModeFreeForm:
		return FreeForm{}, nil
	case policy.ModeSegmented:
		return Segmented{}, nil
	case policy.ModeConstrainedMixed:
		return ConstrainedMixed{MaxAttempts: g.maxAttempts}, nil
	default:
		return nil, fmt.Errorf("%w: unknown mode %d", policy.ErrInvalidPolicy, int(mode))
	}
}

// Generate produces one password under p and scores it.
func (g *Generator) Generate(p policy.Policy) (*Result, error) {
	strategy, err := g.Strategy(p.Mode)
	if err != nil {
		return nil, err
	}

	pw, err := strategy.Generate(p, g.sampler)
	if err != nil {
		g.logger.Debug("password generation failed", "mode", p.Mode.String(), "error", err)
		return nil, err
	}

	report := strength.Score(pw.Value, pw.Context())

	g.logger.Debug("password generated",
		"mode", pw.Mode.String(),
		"length", len(pw.Value),
		"entropy_bits", report.EntropyBits,
		"score", report.Score,
		"label", report.Label.String(),
		"attempts", pw.Attempts,
	)

	return &Result{Password: pw, Report: report}, nil
}

// GenerateMany produces count independent passwords concurrently and
// returns them in order. The first error cancels the remaining work.
func (g *Generator) GenerateMany(ctx context.Context, p policy.Policy, count int) ([]*Result, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, count)
	}

	// Fail once on a bad policy instead of once per worker.
	if _, err := g.Strategy(p.Mode); err != nil {
		return nil, err
	}

	results := make([]*Result, count)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))

	for i := 0; i < count; i++ {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			r, err := g.Generate(p)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
