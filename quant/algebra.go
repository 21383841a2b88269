package quant

import (
	"fmt"
	"sort"
)

// compound builds a unit from factors. A single factor with exponent 1 collapses to
// its named unit and an empty list to Unitless.
func compound(factors []Factor) (Unit, error) {
	switch {
	case len(factors) == 0:
		return Unitless, nil
	case len(factors) == 1 && factors[0].Exp == R(1):
		return factors[0].Unit, nil
	}
	var dims Dimensions
	for _, f := range factors {
		dims = dims.Add(f.Unit.dims.Scale(f.Exp))
	}
	if !dims.IsIntegral() {
		return Unit{}, fmt.Errorf("%w: %s", ErrFractionalDimension, dims)
	}
	return Unit{dims: dims, factors: factors}, nil
}

func scaled(fs []Factor, e Ratio) []Factor {
	out := make([]Factor, 0, len(fs))
	for _, f := range fs {
		out = append(out, Factor{Unit: f.Unit, Exp: f.Exp.Mul(e)})
	}
	return out
}

// Combine returns a^ea × b^eb. The factors of a come first, then those of b; nothing
// is cancelled.
func Combine(a Unit, ea Ratio, b Unit, eb Ratio) (Unit, error) {
	fs := append(scaled(a.components(), ea), scaled(b.components(), eb)...)
	return compound(fs)
}

// Compose builds a unit from factors in order, the way a parsed unit string lists
// them. Each factor's unit may itself be compound; it is flattened.
func Compose(factors ...Factor) (Unit, error) {
	var fs []Factor
	for _, f := range factors {
		fs = append(fs, scaled(f.Unit.components(), f.Exp)...)
	}
	return compound(fs)
}

// Mul returns u × v.
func (u Unit) Mul(v Unit) Unit {
	r, _ := Combine(u, R(1), v, R(1))
	return r
}

// Div returns u / v.
func (u Unit) Div(v Unit) Unit {
	r, _ := Combine(u, R(1), v, R(-1))
	return r
}

func (u Unit) Inverse() Unit { return u.PowInt(-1) }

// PowInt raises u to an integer power.
func (u Unit) PowInt(n int64) Unit {
	r, _ := u.Pow(R(n))
	return r
}

// Pow raises u to a rational power. It fails with ErrFractionalDimension when a
// dimension exponent would stop being an integer, as for the square root of m³.
func (u Unit) Pow(e Ratio) (Unit, error) {
	if e.IsZero() {
		return Unitless, nil
	}
	return compound(scaled(u.components(), e))
}

// Times is number × unit.
func (u Unit) Times(number Decimal) Quantity { return Quantity{number: number, unit: u} }

// Of parses number and returns number × unit; it panics on a malformed literal.
func (u Unit) Of(number string) Quantity { return u.Times(MustDec(number)) }

// Cancel merges factors of the same named unit by summing their exponents and drops
// factors whose exponent becomes zero. The order of first appearance is kept.
func Cancel(u Unit) Unit {
	fs := u.components()
	out := make([]Factor, 0, len(fs))
outer:
	for _, f := range fs {
		for i := range out {
			if sameAtomic(out[i].Unit, f.Unit) {
				out[i].Exp = out[i].Exp.Add(f.Exp)
				continue outer
			}
		}
		out = append(out, f)
	}
	kept := out[:0]
	for _, f := range out {
		if !f.Exp.IsZero() {
			kept = append(kept, f)
		}
	}
	r, _ := compound(kept)
	return r
}

// FullyCancel merges factors sharing a dimension vector by converting each to the
// first unit of that dimension, and drops angle-only and dimensionless factors. It
// returns the multiplier to apply to a magnitude in u.
func FullyCancel(u Unit) (Decimal, Unit, error) {
	num, den, r, err := fullyCancel(u)
	if err != nil {
		return Decimal{}, Unit{}, err
	}
	m, err := num.Quo(den)
	return m, r, err
}

func fullyCancel(u Unit) (num, den Decimal, r Unit, err error) {
	var c calc
	num, den = decOne, decOne
	var out []Factor
outer:
	for _, f := range u.components() {
		if f.Unit.dims.isDroppable() {
			num, den = c.fold(num, den, f.Unit, f.Exp)
			continue
		}
		for i := range out {
			if out[i].Unit.dims == f.Unit.dims {
				if !sameAtomic(out[i].Unit, f.Unit) {
					num, den = c.fold(num, den, f.Unit, f.Exp)
					num, den = c.fold(num, den, out[i].Unit, f.Exp.Neg())
				}
				out[i].Exp = out[i].Exp.Add(f.Exp)
				continue outer
			}
		}
		out = append(out, f)
	}
	if c.err != nil {
		return Decimal{}, Decimal{}, Unit{}, c.err
	}
	kept := out[:0]
	for _, f := range out {
		if !f.Exp.IsZero() {
			kept = append(kept, f)
		}
	}
	r, err = compound(kept)
	return num, den, r, err
}

// Canonical orders the factors of u by dimension vector (descending, so length comes
// before mass before time), then by symbol, then by exponent (descending). Two
// products of the same factors come out identical whatever order they were built in.
func Canonical(u Unit) Unit {
	fs := append([]Factor(nil), u.components()...)
	sort.SliceStable(fs, func(i, j int) bool {
		a, b := fs[i], fs[j]
		if c := a.Unit.dims.Cmp(b.Unit.dims); c != 0 {
			return c > 0
		}
		if sa, sb := a.Unit.Symbol(), b.Unit.Symbol(); sa != sb {
			return sa < sb
		}
		return a.Exp.Cmp(b.Exp) > 0
	})
	r, _ := compound(fs)
	return r
}

// Base expands u into SI base units. It returns the multiplier to apply to a
// magnitude in u.
func Base(u Unit) (Decimal, Unit, error) {
	num, den, r, err := base(u)
	if err != nil {
		return Decimal{}, Unit{}, err
	}
	m, err := num.Quo(den)
	return m, r, err
}

func base(u Unit) (num, den Decimal, r Unit, err error) {
	num, den, err = u.scaleParts()
	if err != nil {
		return Decimal{}, Decimal{}, Unit{}, err
	}
	var fs []Factor
	for i, e := range u.dims {
		if !e.IsZero() {
			fs = append(fs, Factor{Unit: baseUnits[i], Exp: e})
		}
	}
	r, err = compound(fs)
	return num, den, r, err
}

// Convert expresses q in target. It fails with ErrMismatchedDimensions unless both
// units have the same dimension vector. The magnitude is multiplied by both scale
// numerators first and divided once, so exact ratios stay exact.
func Convert(q Quantity, target Unit) (Quantity, error) {
	if q.unit.dims != target.dims {
		return Quantity{}, fmt.Errorf("%w: cannot convert %s to %s", ErrMismatchedDimensions, q.unit, target)
	}
	var c calc
	sn, sd, err := q.unit.scaleParts()
	if err != nil {
		return Quantity{}, err
	}
	tn, td, err := target.scaleParts()
	if err != nil {
		return Quantity{}, err
	}
	num := c.mul(sn, td)
	den := c.mul(sd, tn)
	n := c.quo(c.mul(q.number, num), den)
	u := q.uncertainty
	if !u.IsZero() {
		u = c.quo(c.mul(u, num), den).Abs()
	}
	if c.err != nil {
		return Quantity{}, c.err
	}
	return Quantity{number: n, unit: target, uncertainty: u}, nil
}
