package quant

import (
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/cockroachdb/apd/v3"

	"github.com/chandan-cmd-dev/quant-go/quant/internal/apdctx"
)

// Decimal is an immutable exact decimal number. The zero value is 0.
//
// Arithmetic follows the General Decimal Arithmetic rules with 28 significant digits
// and round-half-even. Exact quotients and roots come back at the ideal exponent,
// so 100/25 is 4 and 1.30 + 0 keeps its trailing zero.
type Decimal struct{ d *apd.Decimal }

var (
	decZero = Decimal{d: apd.New(0, 0)}
	decOne  = Decimal{d: apd.New(1, 0)}
	decTwo  = Decimal{d: apd.New(2, 0)}
	decTen  = Decimal{d: apd.New(10, 0)}
)

// DecFromString parses s keeping every digit as significant.
func DecFromString(s string) (Decimal, error) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return Decimal{}, fmt.Errorf("%w: decimal %q", ErrParse, s)
	}
	if d.Form != apd.Finite {
		return Decimal{}, fmt.Errorf("%w: decimal %q is not finite", ErrParse, s)
	}
	return Decimal{d: d}, nil
}

// MustDec is DecFromString for literals known to be valid.
func MustDec(s string) Decimal {
	d, err := DecFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func DecFromInt64(n int64) Decimal { return Decimal{d: apd.New(n, 0)} }

// NewDecimal returns coeff × 10^exp.
func NewDecimal(coeff int64, exp int32) Decimal { return Decimal{d: apd.New(coeff, exp)} }

// DecFromFloat64 converts through the shortest round-trip text of f, so 4.01 becomes
// the decimal 4.01 rather than its binary expansion.
func DecFromFloat64(f float64) (Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Decimal{}, fmt.Errorf("%w: %v", ErrUndefinedResult, f)
	}
	return DecFromString(strconv.FormatFloat(f, 'f', -1, 64))
}

// DecFromApd copies an apd value.
func DecFromApd(x *apd.Decimal) Decimal {
	return Decimal{d: new(apd.Decimal).Set(x)}
}

func (x Decimal) dec() *apd.Decimal {
	if x.d == nil {
		return decZero.d
	}
	return x.d
}

// Apd returns a copy of the underlying value.
func (x Decimal) Apd() *apd.Decimal { return new(apd.Decimal).Set(x.dec()) }

func (x Decimal) String() string { return x.dec().String() }

// Plain formats without exponent notation.
func (x Decimal) Plain() string { return x.dec().Text('f') }

func (x Decimal) Sign() int       { return x.dec().Sign() }
func (x Decimal) IsZero() bool    { return x.dec().IsZero() }
func (x Decimal) Exponent() int32 { return x.dec().Exponent }

// NumDigits is the number of digits of the coefficient.
func (x Decimal) NumDigits() int64 { return x.dec().NumDigits() }

// Adjusted is the exponent of the most significant digit.
func (x Decimal) Adjusted() int64 { return int64(x.Exponent()) + x.NumDigits() - 1 }

func (x Decimal) Cmp(y Decimal) int    { return x.dec().Cmp(y.dec()) }
func (x Decimal) Equal(y Decimal) bool { return x.Cmp(y) == 0 }

func (x Decimal) Neg() Decimal { return Decimal{d: new(apd.Decimal).Neg(x.dec())} }
func (x Decimal) Abs() Decimal { return Decimal{d: new(apd.Decimal).Abs(x.dec())} }

// IsInteger reports whether x has no fractional part.
func (x Decimal) IsInteger() bool {
	var r apd.Decimal
	r.Reduce(x.dec())
	return r.Exponent >= 0
}

// Int64 returns x as an integer; fails if x has a fractional part or overflows.
func (x Decimal) Int64() (int64, error) {
	var r apd.Decimal
	r.Reduce(x.dec())
	return r.Int64()
}

func (x Decimal) Float64() float64 {
	f, _ := x.dec().Float64()
	return f
}

// Coefficient returns the unsigned coefficient.
func (x Decimal) Coefficient() *big.Int {
	var c apd.BigInt
	c.Abs(&x.dec().Coeff)
	return c.MathBigInt()
}

// Reduce strips trailing zeros.
func (x Decimal) Reduce() Decimal {
	r, _ := new(apd.Decimal).Reduce(x.dec())
	return Decimal{d: r}
}

func (x Decimal) Add(y Decimal) (Decimal, error) {
	d := new(apd.Decimal)
	if _, err := apdctx.Ctx.Add(d, x.dec(), y.dec()); err != nil {
		return Decimal{}, decErr("add", err)
	}
	return Decimal{d: d}, nil
}

func (x Decimal) Sub(y Decimal) (Decimal, error) {
	d := new(apd.Decimal)
	if _, err := apdctx.Ctx.Sub(d, x.dec(), y.dec()); err != nil {
		return Decimal{}, decErr("sub", err)
	}
	return Decimal{d: d}, nil
}

func (x Decimal) Mul(y Decimal) (Decimal, error) {
	d := new(apd.Decimal)
	if _, err := apdctx.Ctx.Mul(d, x.dec(), y.dec()); err != nil {
		return Decimal{}, decErr("mul", err)
	}
	return Decimal{d: d}, nil
}

func (x Decimal) Quo(y Decimal) (Decimal, error) {
	if y.IsZero() {
		return Decimal{}, ErrDivisionByZero
	}
	d := new(apd.Decimal)
	cond, err := apdctx.Ctx.Quo(d, x.dec(), y.dec())
	if err != nil {
		return Decimal{}, decErr("quo", err)
	}
	if !cond.Inexact() {
		idealize(d, x.Exponent()-y.Exponent())
	}
	return Decimal{d: d}, nil
}

// Sqrt fails with ErrComplexResult for negative x.
func (x Decimal) Sqrt() (Decimal, error) {
	if x.Sign() < 0 {
		return Decimal{}, fmt.Errorf("%w: sqrt(%s)", ErrComplexResult, x)
	}
	d := new(apd.Decimal)
	cond, err := apdctx.Ctx.Sqrt(d, x.dec())
	if err != nil {
		return Decimal{}, decErr("sqrt", err)
	}
	if !cond.Inexact() {
		idealize(d, floorDiv(x.Exponent(), 2))
	}
	return Decimal{d: d}, nil
}

// Cbrt is the real cube root; negative inputs give negative roots.
func (x Decimal) Cbrt() (Decimal, error) {
	d := new(apd.Decimal)
	cond, err := apdctx.Ctx.Cbrt(d, x.dec())
	if err != nil {
		return Decimal{}, decErr("cbrt", err)
	}
	if !cond.Inexact() {
		idealize(d, floorDiv(x.Exponent(), 3))
	}
	return Decimal{d: d}, nil
}

func (x Decimal) Exp() (Decimal, error) {
	d := new(apd.Decimal)
	if _, err := apdctx.Ctx.Exp(d, x.dec()); err != nil {
		return Decimal{}, decErr("exp", err)
	}
	return Decimal{d: d}, nil
}

// Ln is the natural logarithm. Negative x gives ErrComplexResult, zero gives
// ErrUndefinedResult.
func (x Decimal) Ln() (Decimal, error) {
	if err := logDomain("ln", x); err != nil {
		return Decimal{}, err
	}
	d := new(apd.Decimal)
	if _, err := apdctx.Ctx.Ln(d, x.dec()); err != nil {
		return Decimal{}, decErr("ln", err)
	}
	return Decimal{d: d}, nil
}

func (x Decimal) Log10() (Decimal, error) {
	if err := logDomain("log10", x); err != nil {
		return Decimal{}, err
	}
	d := new(apd.Decimal)
	if _, err := apdctx.Ctx.Log10(d, x.dec()); err != nil {
		return Decimal{}, decErr("log10", err)
	}
	return Decimal{d: d}, nil
}

// Log returns the logarithm of x in the given base.
func (x Decimal) Log(base Decimal) (Decimal, error) {
	switch {
	case base.Cmp(decTen) == 0:
		return x.Log10()
	case base.Sign() <= 0 || base.Cmp(decOne) == 0:
		return Decimal{}, fmt.Errorf("%w: logarithm base %s", ErrUndefinedResult, base)
	}
	if err := logDomain("log", x); err != nil {
		return Decimal{}, err
	}
	wide := new(apd.Decimal)
	lb := new(apd.Decimal)
	ed := apd.MakeErrDecimal(&apdctx.Wide)
	ed.Ln(wide, x.dec())
	ed.Ln(lb, base.dec())
	if err := ed.Err(); err != nil {
		return Decimal{}, decErr("log", err)
	}
	d := new(apd.Decimal)
	if _, err := apdctx.Ctx.Quo(d, wide, lb); err != nil {
		return Decimal{}, decErr("log", err)
	}
	return Decimal{d: d}, nil
}

// PowInt raises x to an integer power. 0^0 is 1.
func (x Decimal) PowInt(n int64) (Decimal, error) {
	switch {
	case n == 0:
		return decOne, nil
	case n == 1:
		return x, nil
	case x.IsZero() && n < 0:
		return Decimal{}, fmt.Errorf("%w: 0 raised to %d", ErrDivisionByZero, n)
	case x.IsZero():
		return decZero, nil
	}
	d := new(apd.Decimal)
	cond, err := apdctx.Ctx.Pow(d, x.dec(), apd.New(n, 0))
	if err != nil {
		return Decimal{}, decErr("pow", err)
	}
	if n < 0 && !cond.Inexact() {
		d.Reduce(d)
	}
	return Decimal{d: d}, nil
}

// PowRatio raises x to a rational power. Halves and thirds of perfect squares and
// cubes stay exact. Other halves and thirds are computed wide and rounded once.
func (x Decimal) PowRatio(r Ratio) (Decimal, error) {
	if r.IsInt() {
		return x.PowInt(r.Num())
	}
	if x.Sign() < 0 {
		return Decimal{}, fmt.Errorf("%w: %s raised to %s", ErrComplexResult, x, r)
	}
	if x.IsZero() {
		if r.Sign() < 0 {
			return Decimal{}, fmt.Errorf("%w: 0 raised to %s", ErrDivisionByZero, r)
		}
		return decZero, nil
	}
	den := r.Den()
	if den != 2 && den != 3 {
		return x.Pow(r.Decimal())
	}
	ctx := apdctx.Wide
	root := new(apd.Decimal)
	var err error
	if den == 2 {
		_, err = ctx.Sqrt(root, x.dec())
	} else {
		_, err = ctx.Cbrt(root, x.dec())
	}
	if err != nil {
		return Decimal{}, decErr("root", err)
	}
	back := new(apd.Decimal)
	cond, err := ctx.Pow(back, root, apd.New(den, 0))
	if err == nil && !cond.Inexact() && back.Cmp(x.dec()) == 0 {
		idealize(root, floorDiv(x.Exponent(), int32(den)))
		return Decimal{d: root}.PowInt(r.Num())
	}
	d := new(apd.Decimal)
	if _, err := ctx.Pow(d, root, apd.New(r.Num(), 0)); err != nil {
		return Decimal{}, decErr("pow", err)
	}
	if _, err := apdctx.Ctx.Round(d, d); err != nil {
		return Decimal{}, decErr("pow", err)
	}
	return Decimal{d: d}, nil
}

// Pow raises x to an arbitrary decimal power.
func (x Decimal) Pow(y Decimal) (Decimal, error) {
	if y.IsInteger() {
		if n, err := y.Int64(); err == nil {
			return x.PowInt(n)
		}
	}
	switch {
	case x.Sign() < 0:
		return Decimal{}, fmt.Errorf("%w: %s raised to %s", ErrComplexResult, x, y)
	case x.IsZero() && y.Sign() < 0:
		return Decimal{}, fmt.Errorf("%w: 0 raised to %s", ErrDivisionByZero, y)
	case x.IsZero():
		return decZero, nil
	}
	d := new(apd.Decimal)
	if _, err := apdctx.Ctx.Pow(d, x.dec(), y.dec()); err != nil {
		return Decimal{}, decErr("pow", err)
	}
	return Decimal{d: d}, nil
}

// Quantize returns x with the given exponent, rounding with r.
func (x Decimal) Quantize(exp int32, r apd.Rounder) (Decimal, error) {
	need := x.NumDigits() + 1
	if diff := int64(x.Exponent()) - int64(exp); diff > 0 {
		need += diff
	}
	ctx := apdctx.Rounding(r, uint32(need))
	d := new(apd.Decimal)
	if _, err := ctx.Quantize(d, x.dec(), exp); err != nil {
		return Decimal{}, decErr("quantize", err)
	}
	return Decimal{d: d}, nil
}

// idealize strips trailing zeros from an exact result until its exponent reaches ideal.
func idealize(d *apd.Decimal, ideal int32) {
	if d.Exponent >= ideal {
		return
	}
	if d.IsZero() {
		d.Exponent = ideal
		return
	}
	var r apd.Decimal
	r.Reduce(d)
	if r.Exponent <= ideal {
		d.Set(&r)
		return
	}
	var tmp apd.BigInt
	shift := ideal - d.Exponent
	ten := apd.NewBigInt(10)
	tmp.Exp(ten, apd.NewBigInt(int64(shift)), nil)
	d.Coeff.Quo(&d.Coeff, &tmp)
	d.Exponent = ideal
}

func logDomain(op string, x Decimal) error {
	switch {
	case x.Sign() < 0:
		return fmt.Errorf("%w: %s(%s)", ErrComplexResult, op, x)
	case x.IsZero():
		return fmt.Errorf("%w: %s(0)", ErrUndefinedResult, op)
	}
	return nil
}

func decErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUndefinedResult, op, err)
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// calc chains decimal operations and keeps the first error, in the manner of
// apd.ErrDecimal.
type calc struct{ err error }

func (c *calc) add(x, y Decimal) Decimal { return c.do2(x.Add, y) }
func (c *calc) sub(x, y Decimal) Decimal { return c.do2(x.Sub, y) }
func (c *calc) mul(x, y Decimal) Decimal { return c.do2(x.Mul, y) }
func (c *calc) quo(x, y Decimal) Decimal { return c.do2(x.Quo, y) }

func (c *calc) do2(f func(Decimal) (Decimal, error), y Decimal) Decimal {
	if c.err != nil {
		return decZero
	}
	r, err := f(y)
	if err != nil {
		c.err = err
		return decZero
	}
	return r
}

func (c *calc) do1(f func() (Decimal, error)) Decimal {
	if c.err != nil {
		return decZero
	}
	r, err := f()
	if err != nil {
		c.err = err
		return decZero
	}
	return r
}

func (c *calc) sqrt(x Decimal) Decimal { return c.do1(x.Sqrt) }
func (c *calc) ln(x Decimal) Decimal   { return c.do1(x.Ln) }
func (c *calc) exp(x Decimal) Decimal  { return c.do1(x.Exp) }
func (c *calc) sq(x Decimal) Decimal   { return c.mul(x, x) }
func (c *calc) powRatio(x Decimal, r Ratio) Decimal {
	return c.do1(func() (Decimal, error) { return x.PowRatio(r) })
}
