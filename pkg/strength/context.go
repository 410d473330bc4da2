package strength

import (
	"github.com/forest6511/passforge/pkg/charset"
	"github.com/forest6511/passforge/pkg/policy"
)

// MixedPoolSize is the fixed pool of the constrained mixed mode (A-Z, a-z, 0-9).
const MixedPoolSize = 62

// Context carries what the scorer needs to recompute the pool a password
// was drawn from. The class flags only matter for ModeFreeForm.
type Context struct {
	Mode             policy.Mode `json:"mode"`
	Uppercase        bool        `json:"uppercase,omitempty"`
	Lowercase        bool        `json:"lowercase,omitempty"`
	Numbers          bool        `json:"numbers,omitempty"`
	Symbols          bool        `json:"symbols,omitempty"`
	ExcludeAmbiguous bool        `json:"exclude_ambiguous,omitempty"`
}

// ContextFor returns the scoring context of passwords generated under p.
func ContextFor(p policy.Policy) Context {
	if p.Mode != policy.ModeFreeForm {
		return Context{Mode: p.Mode}
	}
	return Context{
		Mode:             p.Mode,
		Uppercase:        p.Uppercase,
		Lowercase:        p.Lowercase,
		Numbers:          p.Numbers,
		Symbols:          p.Symbols,
		ExcludeAmbiguous: p.ExcludeAmbiguous,
	}
}

// InferContext builds a free-form context from the classes present in
// password. Use it for passwords that were not generated here.
func InferContext(password string) Context {
	ctx := Context{Mode: policy.ModeFreeForm}
	for _, r := range password {
		switch charset.ClassOf(r) {
		case charset.ClassUppercase:
			ctx.Uppercase = true
		case charset.ClassLowercase:
			ctx.Lowercase = true
		case charset.ClassNumbers:
			ctx.Numbers = true
		case charset.ClassSymbols:
			ctx.Symbols = true
		}
	}
	return ctx
}

// ContextForMode returns the context for scoring a supplied password as if
// it came from mode. Free-form contexts are inferred from the password.
func ContextForMode(mode policy.Mode, password string) Context {
	if mode == policy.ModeFreeForm {
		return InferContext(password)
	}
	return Context{Mode: mode}
}

// PoolSize returns the alphabet size for the context, or 0 when it has none.
// A free-form pool is the sum of the enabled class sizes; the ambiguous
// filter does not change it. Segmented passwords have no single pool and
// also report 0.
func (c Context) PoolSize() int {
	switch c.Mode {
	case policy.ModeConstrainedMixed:
		return MixedPoolSize
	case policy.ModeFreeForm:
		size := 0
		for _, class := range []struct {
			enabled bool
			class   charset.Class
		}{
			{c.Uppercase, charset.ClassUppercase},
			{c.Lowercase, charset.ClassLowercase},
			{c.Numbers, charset.ClassNumbers},
			{c.Symbols, charset.ClassSymbols},
		} {
			if class.enabled {
				size += class.class.Size()
			}
		}
		return size
	default:
		return 0
	}
}
