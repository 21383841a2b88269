// Package apdctx holds the shared decimal contexts. They are never modified after
// initialization, so they are safe for concurrent use.
package apdctx

import "github.com/cockroachdb/apd/v3"

// Precision is the number of significant digits kept by arithmetic.
const Precision = 28

// Ctx is the arithmetic context: 28 digits, bankers rounding.
var Ctx = apd.Context{
	Precision:   Precision,
	MaxExponent: apd.MaxExponent,
	MinExponent: apd.MinExponent,
	Traps:       apd.DefaultTraps,
	Rounding:    apd.RoundHalfEven,
}

// Wide is used for intermediate products that must not lose digits before the
// final rounding (scale accumulation, quantize bounds).
var Wide = apd.Context{
	Precision:   2 * Precision,
	MaxExponent: apd.MaxExponent,
	MinExponent: apd.MinExponent,
	Traps:       apd.DefaultTraps,
	Rounding:    apd.RoundHalfEven,
}

// Rounding returns a context for the rounding engine. The returned value is a copy;
// the arithmetic context is left untouched.
func Rounding(r apd.Rounder, precision uint32) *apd.Context {
	if precision < Precision {
		precision = Precision
	}
	return &apd.Context{
		Precision:   precision,
		MaxExponent: apd.MaxExponent,
		MinExponent: apd.MinExponent,
		Traps:       apd.DefaultTraps,
		Rounding:    r,
	}
}
