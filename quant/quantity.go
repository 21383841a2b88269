package quant

import (
	"fmt"
	"math/big"
	"strings"
)

// Quantity is an exact magnitude with a unit and a standard uncertainty expressed in
// the same unit. A zero uncertainty means the quantity is exact. Quantities are
// values: every operation returns a new one.
type Quantity struct {
	number      Decimal
	unit        Unit
	uncertainty Decimal
}

// MakeQuantity returns number × unit ± uncertainty. A negative uncertainty is taken
// by magnitude.
func MakeQuantity(number Decimal, unit Unit, uncertainty Decimal) Quantity {
	return Quantity{number: number, unit: unit, uncertainty: uncertainty.Abs()}
}

// Dimensionless wraps a bare number so it can take part in quantity arithmetic.
func Dimensionless(number Decimal) Quantity { return Quantity{number: number} }

func (q Quantity) Number() Decimal            { return q.number }
func (q Quantity) Unit() Unit                 { return q.unit }
func (q Quantity) Dimensions() Dimensions     { return q.unit.dims }
func (q Quantity) IsDimensionless() bool      { return q.unit.IsDimensionless() }
func (q Quantity) IsZero() bool               { return q.number.IsZero() }
func (q Quantity) HasUncertainty() bool       { return !q.uncertainty.IsZero() }
func (q Quantity) UncertaintyNumber() Decimal { return q.uncertainty.Abs() }

// Uncertainty returns the uncertainty as a quantity in the same unit.
func (q Quantity) Uncertainty() Quantity {
	return Quantity{number: q.uncertainty.Abs(), unit: q.unit}
}

func (q Quantity) WithUncertainty(u Decimal) Quantity {
	q.uncertainty = u.Abs()
	return q
}

// PlusMinus attaches an uncertainty given in any unit of the same dimensions.
func (q Quantity) PlusMinus(u Quantity) (Quantity, error) {
	if u.unit.Identical(q.unit) {
		return q.WithUncertainty(u.number), nil
	}
	c, err := Convert(u, q.unit)
	if err != nil {
		return Quantity{}, err
	}
	return q.WithUncertainty(c.number), nil
}

// Resolution is one unit of the least significant digit of the magnitude.
func (q Quantity) Resolution() Quantity {
	return Quantity{number: NewDecimal(1, q.number.Exponent()), unit: q.unit}
}

// Reduce strips trailing zeros from the magnitude.
func (q Quantity) Reduce() Quantity {
	q.number = q.number.Reduce()
	return q
}

func (q Quantity) Neg() Quantity {
	q.number = q.number.Neg()
	return q
}

func (q Quantity) Abs() Quantity {
	q.number = q.number.Abs()
	return q
}

func (q Quantity) isValue() {}

func (q Quantity) String() string {
	var b strings.Builder
	b.WriteString(q.number.String())
	if q.HasUncertainty() {
		b.WriteString(" ± ")
		b.WriteString(q.uncertainty.String())
	}
	if !q.unit.IsUnitless() {
		if q.unit.PrecedingSpace() || q.HasUncertainty() {
			b.WriteByte(' ')
		}
		b.WriteString(q.unit.Symbol())
	}
	return b.String()
}

// Add returns q + r in the unit of q. r is converted first when its unit differs.
func (q Quantity) Add(r Quantity, opts ...Option) (Quantity, error) {
	return q.sum(r, 1, opts)
}

// Sub returns q − r in the unit of q.
func (q Quantity) Sub(r Quantity, opts ...Option) (Quantity, error) {
	return q.sum(r, -1, opts)
}

func (q Quantity) sum(r Quantity, sign int, opts []Option) (Quantity, error) {
	if q.unit.dims != r.unit.dims {
		return Quantity{}, fmt.Errorf("%w: %s and %s", ErrMismatchedUnits, q.unit, r.unit)
	}
	o := collect(opts)
	if !r.unit.Identical(q.unit) {
		var err error
		if r, err = Convert(r, q.unit); err != nil {
			return Quantity{}, err
		}
	}
	var n Decimal
	var err error
	if sign < 0 {
		n, err = q.number.Sub(r.number)
	} else {
		n, err = q.number.Add(r.number)
	}
	if err != nil {
		return Quantity{}, err
	}
	u, err := sumUncertainty(q.uncertainty, r.uncertainty, o.correlation, sign)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{number: n, unit: q.unit, uncertainty: u}, nil
}

// Mul returns q × r. The units are combined and, with AutoCancel, like factors are
// merged.
func (q Quantity) Mul(r Quantity, opts ...Option) (Quantity, error) {
	o := collect(opts)
	n, err := q.number.Mul(r.number)
	if err != nil {
		return Quantity{}, err
	}
	u, err := Combine(q.unit, R(1), r.unit, R(1))
	if err != nil {
		return Quantity{}, err
	}
	if o.cfg.AutoCancel {
		u = Cancel(u)
	}
	unc, err := productUncertainty(q.number, q.uncertainty, r.number, r.uncertainty, n, o.correlation, 1)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{number: n, unit: u, uncertainty: unc}, nil
}

// Div returns q / r. It fails with ErrDivisionByZero when r is zero.
func (q Quantity) Div(r Quantity, opts ...Option) (Quantity, error) {
	o := collect(opts)
	n, err := q.number.Quo(r.number)
	if err != nil {
		return Quantity{}, err
	}
	u, err := Combine(q.unit, R(1), r.unit, R(-1))
	if err != nil {
		return Quantity{}, err
	}
	if o.cfg.AutoCancel {
		u = Cancel(u)
	}
	unc, err := productUncertainty(q.number, q.uncertainty, r.number, r.uncertainty, n, o.correlation, -1)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{number: n, unit: u, uncertainty: unc}, nil
}

// MulNumber scales q by an exact number.
func (q Quantity) MulNumber(x Decimal) (Quantity, error) {
	n, err := q.number.Mul(x)
	if err != nil {
		return Quantity{}, err
	}
	u, err := scaleUncertainty(q.uncertainty, x)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{number: n, unit: q.unit, uncertainty: u}, nil
}

// DivNumber divides q by an exact number.
func (q Quantity) DivNumber(x Decimal) (Quantity, error) {
	n, err := q.number.Quo(x)
	if err != nil {
		return Quantity{}, err
	}
	var u Decimal
	if q.HasUncertainty() {
		if u, err = q.uncertainty.Quo(x); err != nil {
			return Quantity{}, err
		}
	}
	return Quantity{number: n, unit: q.unit, uncertainty: u.Abs()}, nil
}

// Inverse returns 1/q.
func (q Quantity) Inverse() (Quantity, error) {
	n, err := decOne.Quo(q.number)
	if err != nil {
		return Quantity{}, err
	}
	u, err := reciprocalUncertainty(q.number, q.uncertainty, n)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{number: n, unit: q.unit.Inverse(), uncertainty: u}, nil
}

// Pow raises q to a rational power. The unit is raised too, which fails with
// ErrFractionalDimension if a dimension exponent stops being an integer.
func (q Quantity) Pow(e Ratio) (Quantity, error) {
	u, err := q.unit.Pow(e)
	if err != nil {
		return Quantity{}, err
	}
	n, err := q.number.PowRatio(e)
	if err != nil {
		return Quantity{}, err
	}
	unc, err := powerUncertainty(q.number, q.uncertainty, e.Decimal(), n)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{number: n, unit: u, uncertainty: unc}, nil
}

func (q Quantity) PowInt(n int64) (Quantity, error) { return q.Pow(R(n)) }

// PowQuantity raises q to a dimensionless exponent that may carry an uncertainty.
// When q has a dimension the exponent must be an exact rational.
func (q Quantity) PowQuantity(e Quantity, opts ...Option) (Quantity, error) {
	x, err := e.dimensionlessBase("power")
	if err != nil {
		return Quantity{}, err
	}
	o := collect(opts)
	var res Quantity
	if q.IsDimensionless() {
		b, err := q.Base()
		if err != nil {
			return Quantity{}, err
		}
		n, err := b.number.Pow(x.number)
		if err != nil {
			return Quantity{}, err
		}
		res = Quantity{number: n}
		q = b
	} else {
		r, err := ratioOf(x.number)
		if err != nil {
			return Quantity{}, err
		}
		if res, err = q.Pow(r); err != nil {
			return Quantity{}, err
		}
	}
	res.uncertainty, err = powUncertainty(q.number, q.uncertainty, x.number, x.uncertainty, res.number, o.correlation)
	if err != nil {
		return Quantity{}, err
	}
	return res, nil
}

// PowNumber returns x raised to the dimensionless quantity e.
func PowNumber(x Decimal, e Quantity) (Quantity, error) {
	d, err := e.dimensionlessBase("power")
	if err != nil {
		return Quantity{}, err
	}
	n, err := x.Pow(d.number)
	if err != nil {
		return Quantity{}, err
	}
	u, err := expBaseUncertainty(x, d.uncertainty, n)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{number: n, uncertainty: u}, nil
}

// ratioOf converts a terminating decimal into an exact ratio.
func ratioOf(x Decimal) (Ratio, error) {
	r := x.Reduce()
	c := r.Coefficient()
	if r.Sign() < 0 {
		c.Neg(c)
	}
	exp := int64(r.Exponent())
	if exp >= 0 {
		c.Mul(c, new(big.Int).Exp(big.NewInt(10), big.NewInt(exp), nil))
		if !c.IsInt64() {
			return Ratio{}, fmt.Errorf("%w: exponent %s", ErrFractionalDimension, x)
		}
		return R(c.Int64()), nil
	}
	den := new(big.Int).Exp(big.NewInt(10), big.NewInt(-exp), nil)
	if !c.IsInt64() || !den.IsInt64() {
		return Ratio{}, fmt.Errorf("%w: exponent %s", ErrFractionalDimension, x)
	}
	return Frac(c.Int64(), den.Int64()), nil
}

// dimensionlessBase returns q expressed as a pure number, or ErrNotDimensionless.
func (q Quantity) dimensionlessBase(op string) (Quantity, error) {
	if !q.IsDimensionless() {
		return Quantity{}, fmt.Errorf("%w: %s of %s", ErrNotDimensionless, op, q.unit)
	}
	b, err := q.Base()
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{number: b.number, uncertainty: b.uncertainty}, nil
}

// Sqrt is the square root of a dimensionless quantity. Use Pow(Frac(1, 2)) for
// quantities with a dimension.
func (q Quantity) Sqrt() (Quantity, error) {
	d, err := q.dimensionlessBase("sqrt")
	if err != nil {
		return Quantity{}, err
	}
	return d.Pow(Frac(1, 2))
}

func (q Quantity) Exp() (Quantity, error) {
	d, err := q.dimensionlessBase("exp")
	if err != nil {
		return Quantity{}, err
	}
	n, err := d.number.Exp()
	if err != nil {
		return Quantity{}, err
	}
	u, err := expUncertainty(d.uncertainty, n)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{number: n, uncertainty: u}, nil
}

func (q Quantity) Ln() (Quantity, error) {
	d, err := q.dimensionlessBase("ln")
	if err != nil {
		return Quantity{}, err
	}
	n, err := d.number.Ln()
	if err != nil {
		return Quantity{}, err
	}
	u, err := logUncertainty(d.number, d.uncertainty, Decimal{})
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{number: n, uncertainty: u}, nil
}

func (q Quantity) Log10() (Quantity, error) { return q.Log(decTen) }

// Log is the logarithm in the given base.
func (q Quantity) Log(base Decimal) (Quantity, error) {
	d, err := q.dimensionlessBase("log")
	if err != nil {
		return Quantity{}, err
	}
	n, err := d.number.Log(base)
	if err != nil {
		return Quantity{}, err
	}
	var u Decimal
	if d.HasUncertainty() {
		lb, err := base.Ln()
		if err != nil {
			return Quantity{}, err
		}
		if u, err = logUncertainty(d.number, d.uncertainty, lb); err != nil {
			return Quantity{}, err
		}
	}
	return Quantity{number: n, uncertainty: u}, nil
}

// Equal reports whether q and r describe the same amount. Zero equals zero in any
// unit; otherwise the dimensions must match and the magnitudes agree after
// conversion. Uncertainty is ignored.
func (q Quantity) Equal(r Quantity) bool {
	if q.number.IsZero() || r.number.IsZero() {
		return q.number.IsZero() && r.number.IsZero()
	}
	if q.unit.dims != r.unit.dims {
		return false
	}
	c, err := q.cmp(r)
	return err == nil && c == 0
}

// EqualNumber compares a dimensionless quantity with a bare number.
func (q Quantity) EqualNumber(x Decimal) bool {
	if q.number.IsZero() {
		return x.IsZero()
	}
	if !q.IsDimensionless() {
		return false
	}
	b, err := q.Base()
	return err == nil && b.number.Cmp(x) == 0
}

// Cmp orders two quantities of the same dimensions, converting r to the unit of q.
func (q Quantity) Cmp(r Quantity) (int, error) {
	if q.unit.dims != r.unit.dims {
		return 0, fmt.Errorf("%w: cannot compare %s with %s", ErrMismatchedDimensions, q.unit, r.unit)
	}
	return q.cmp(r)
}

// cmp cross-multiplies the magnitudes by both scales so no division is needed.
func (q Quantity) cmp(r Quantity) (int, error) {
	qn, qd, err := q.unit.scaleParts()
	if err != nil {
		return 0, err
	}
	rn, rd, err := r.unit.scaleParts()
	if err != nil {
		return 0, err
	}
	var c calc
	a := c.mul(c.mul(q.number, qn), rd)
	b := c.mul(c.mul(r.number, rn), qd)
	if c.err != nil {
		return 0, c.err
	}
	return a.Cmp(b), nil
}

// Key is a string that is the same for any two Equal quantities whose conversion
// to base units is exact, for use as a map key.
func (q Quantity) Key() string {
	if q.number.IsZero() {
		return "0"
	}
	b, err := q.Base()
	if err != nil {
		return q.number.String() + " " + q.unit.Symbol()
	}
	n := b.number.Reduce().String()
	if b.unit.IsUnitless() {
		return n
	}
	return n + " " + b.unit.dims.String()
}

// To converts q to target.
func (q Quantity) To(target Unit) (Quantity, error) { return Convert(q, target) }

// Base expresses q in SI base units.
func (q Quantity) Base() (Quantity, error) {
	num, den, u, err := base(q.unit)
	if err != nil {
		return Quantity{}, err
	}
	return q.rescale(num, den, u)
}

// Cancel merges repeated factors of the unit. The magnitude is unchanged.
func (q Quantity) Cancel() Quantity {
	q.unit = Cancel(q.unit)
	return q
}

// FullyCancel merges factors of the same dimension and drops angles, adjusting the
// magnitude: 1 m km becomes 1000 m².
func (q Quantity) FullyCancel() (Quantity, error) {
	num, den, u, err := fullyCancel(q.unit)
	if err != nil {
		return Quantity{}, err
	}
	return q.rescale(num, den, u)
}

// Canonical puts the factors of the unit in canonical order.
func (q Quantity) Canonical() Quantity {
	q.unit = Canonical(q.unit)
	return q
}

func (q Quantity) rescale(num, den Decimal, u Unit) (Quantity, error) {
	var c calc
	n := c.quo(c.mul(q.number, num), den)
	unc := q.uncertainty
	if !unc.IsZero() {
		unc = c.quo(c.mul(unc, num), den).Abs()
	}
	if c.err != nil {
		return Quantity{}, c.err
	}
	return Quantity{number: n, unit: u, uncertainty: unc}, nil
}

// AsUnit turns q into a named unit, so a constant such as the speed of light can be
// used to build other quantities. The uncertainty is dropped.
func (q Quantity) AsUnit(symbol, name string) (Unit, error) {
	b, err := q.Base()
	if err != nil {
		return Unit{}, err
	}
	return MakeUnit(symbol, name, q.unit.dims, b.number, Unprefixable()), nil
}
