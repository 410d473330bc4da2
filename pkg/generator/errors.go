// Package generator implements the password generation strategies and the
// facade that picks one by policy mode and scores its output.
package generator

import (
	"errors"

	"github.com/forest6511/passforge/pkg/charset"
	"github.com/forest6511/passforge/pkg/policy"
)

// Generation errors. Every error is terminal for the call that returned it.
var (
	// ErrGenerationExhausted indicates the constrained mixed mode hit its attempt cap.
	ErrGenerationExhausted = errors.New("password generation exhausted: no acceptable candidate within attempt limit")

	// ErrInvalidCount indicates a negative batch size.
	ErrInvalidCount = errors.New("count must not be negative")

	// ErrEmptyPool is charset.ErrEmptyPool, re-exported for facade callers.
	ErrEmptyPool = charset.ErrEmptyPool

	// ErrInvalidPolicy is policy.ErrInvalidPolicy, re-exported for facade callers.
	ErrInvalidPolicy = policy.ErrInvalidPolicy
)
