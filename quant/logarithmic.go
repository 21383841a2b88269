package quant

import (
	"fmt"
	"strings"
)

// LogUnit is a unit on a logarithmic scale. A value v reads as
// prefactor·log_base(v / reference); the bel has base 10 and prefactor 1, the
// decibel prefactor 10, the neper base e and prefactor 1. An unreferenced unit
// measures ratios against 1.
type LogUnit struct {
	symbol    string
	name      string
	suffix    string
	base      Decimal // zero means e
	prefactor Decimal
	reference Quantity
	hasRef    bool
	prefixed  bool
}

// MakeLogUnit returns an unreferenced logarithmic unit. A zero base means e.
func MakeLogUnit(symbol, name string, base, prefactor Decimal) LogUnit {
	return LogUnit{symbol: symbol, name: name, base: base, prefactor: prefactor}
}

// WithReference returns u measured against ref; suffix names the reference in
// symbols such as dBm.
func (u LogUnit) WithReference(ref Quantity, suffix string) LogUnit {
	u.reference = ref
	u.hasRef = true
	u.suffix = suffix
	return u
}

// ApplyLog prefixes a logarithmic unit. The prefactor is divided by the prefix, so
// deci applied to the bel gives the decibel with prefactor 10.
func (p Prefix) ApplyLog(u LogUnit) (LogUnit, error) {
	if u.prefixed {
		return LogUnit{}, fmt.Errorf("%w: %s", ErrAlreadyPrefixed, u.symbol)
	}
	f, err := u.prefactor.Quo(p.Factor)
	if err != nil {
		return LogUnit{}, err
	}
	r := u
	r.symbol = p.Symbol + u.symbol
	if u.name != "" {
		r.name = p.Name + u.name
	}
	r.prefactor = f.Reduce()
	r.prefixed = true
	return r, nil
}

func (u LogUnit) Symbol() string         { return u.symbol }
func (u LogUnit) Name() string           { return u.name }
func (u LogUnit) Suffix() string         { return u.suffix }
func (u LogUnit) Prefactor() Decimal     { return u.prefactor }
func (u LogUnit) HasReference() bool     { return u.hasRef }
func (u LogUnit) IsNaturalBase() bool    { return u.base.IsZero() }
func (u LogUnit) LogBase() Decimal       { return u.base }
func (u LogUnit) Dimensions() Dimensions { return u.Reference().unit.dims }

// Reference is the value that reads as zero; 1 for an unreferenced unit.
func (u LogUnit) Reference() Quantity {
	if !u.hasRef {
		return Dimensionless(decOne)
	}
	return u.reference
}

func (u LogUnit) String() string { return u.symbol + u.suffix }

// Equal reports whether u and v are the same scale: same base, prefactor and
// reference.
func (u LogUnit) Equal(v LogUnit) bool {
	return u.base.Cmp(v.base) == 0 && u.prefactor.Cmp(v.prefactor) == 0 &&
		u.Reference().Equal(v.Reference()) &&
		u.Reference().unit.dims == v.Reference().unit.dims
}

// log returns prefactor·log_base(x).
func (u LogUnit) log(x Decimal) (Decimal, error) {
	var l Decimal
	var err error
	switch {
	case u.base.IsZero():
		l, err = x.Ln()
	default:
		l, err = x.Log(u.base)
	}
	if err != nil {
		return Decimal{}, err
	}
	return u.prefactor.Mul(l)
}

// ratio returns base^(x/prefactor).
func (u LogUnit) ratio(x Decimal) (Decimal, error) {
	e, err := x.Quo(u.prefactor)
	if err != nil {
		return Decimal{}, err
	}
	if u.base.IsZero() {
		return e.Exp()
	}
	return u.base.Pow(e)
}

// FromAbsolute reads an absolute quantity on the scale. An unreferenced unit given a
// quantity with a dimension takes one of that quantity's unit as its reference.
func (u LogUnit) FromAbsolute(q Quantity) (LogQuantity, error) {
	if !u.hasRef && !q.IsDimensionless() {
		u = u.WithReference(Quantity{number: decOne, unit: q.unit}, "")
	}
	ref := u.Reference()
	if q.unit.dims != ref.unit.dims {
		return LogQuantity{}, fmt.Errorf("%w: %s against reference %s", ErrMismatchedUnits, q.unit, ref.unit)
	}
	qb, err := q.Base()
	if err != nil {
		return LogQuantity{}, err
	}
	rb, err := ref.Base()
	if err != nil {
		return LogQuantity{}, err
	}
	x, err := qb.number.Quo(rb.number)
	if err != nil {
		return LogQuantity{}, err
	}
	n, err := u.log(x)
	if err != nil {
		return LogQuantity{}, err
	}
	l := LogQuantity{number: n, unit: u}
	if q.HasUncertainty() {
		if l.uncertainty, err = Convert(q.Uncertainty(), ref.unit); err != nil {
			return LogQuantity{}, err
		}
	}
	return l, nil
}

// OnLogScale reads q on a logarithmic scale.
func (q Quantity) OnLogScale(u LogUnit) (LogQuantity, error) { return u.FromAbsolute(q) }

// LogQuantity is a reading on a logarithmic scale. Its uncertainty is kept as an
// absolute quantity in the unit of the reference, never as a logarithmic one.
type LogQuantity struct {
	number      Decimal
	unit        LogUnit
	uncertainty Quantity
}

func NewLogQuantity(number Decimal, unit LogUnit) LogQuantity {
	return LogQuantity{number: number, unit: unit}
}

func (l LogQuantity) Number() Decimal        { return l.number }
func (l LogQuantity) Unit() LogUnit          { return l.unit }
func (l LogQuantity) Dimensions() Dimensions { return l.unit.Dimensions() }
func (l LogQuantity) HasUncertainty() bool   { return l.uncertainty.number.Sign() != 0 }
func (l LogQuantity) isValue()               {}

// Uncertainty is absolute, in the unit of the reference.
func (l LogQuantity) Uncertainty() Quantity {
	if !l.HasUncertainty() {
		return Quantity{unit: l.unit.Reference().unit}
	}
	return l.uncertainty
}

// WithUncertainty attaches an absolute uncertainty, which must have the dimensions
// of the reference.
func (l LogQuantity) WithUncertainty(u Quantity) (LogQuantity, error) {
	ref := l.unit.Reference()
	c, err := Convert(u, ref.unit)
	if err != nil {
		return LogQuantity{}, err
	}
	l.uncertainty = c.Abs()
	return l, nil
}

func (l LogQuantity) String() string {
	var b strings.Builder
	b.WriteString(l.number.String())
	b.WriteByte(' ')
	b.WriteString(l.unit.String())
	if l.HasUncertainty() {
		b.WriteString(" ± ")
		b.WriteString(l.uncertainty.String())
	}
	return b.String()
}

// Absolute converts the reading to reference × base^(number / prefactor), in the
// unit of the reference.
func (l LogQuantity) Absolute() (Quantity, error) {
	x, err := l.unit.ratio(l.number)
	if err != nil {
		return Quantity{}, err
	}
	ref := l.unit.Reference()
	n, err := ref.number.Mul(x)
	if err != nil {
		return Quantity{}, err
	}
	q := Quantity{number: n, unit: ref.unit}
	if l.HasUncertainty() {
		q.uncertainty = l.uncertainty.number
	}
	return q, nil
}

func (l LogQuantity) sameScale(r LogQuantity) error {
	if !l.unit.Equal(r.unit) {
		return fmt.Errorf("%w: %s and %s", ErrMismatchedUnits, l.unit, r.unit)
	}
	return nil
}

// Add sums the absolute values and reads the result back on the scale: 3 dB + 3 dB
// is about 6.0 dB.
func (l LogQuantity) Add(r LogQuantity, opts ...Option) (LogQuantity, error) {
	return l.linear(r, 1, opts)
}

func (l LogQuantity) Sub(r LogQuantity, opts ...Option) (LogQuantity, error) {
	return l.linear(r, -1, opts)
}

func (l LogQuantity) linear(r LogQuantity, sign int, opts []Option) (LogQuantity, error) {
	if err := l.sameScale(r); err != nil {
		return LogQuantity{}, err
	}
	a, err := l.Absolute()
	if err != nil {
		return LogQuantity{}, err
	}
	b, err := r.Absolute()
	if err != nil {
		return LogQuantity{}, err
	}
	s, err := a.sum(b, sign, opts)
	if err != nil {
		return LogQuantity{}, err
	}
	return l.unit.FromAbsolute(s)
}

// Mul adds the readings, which multiplies the ratios to the reference.
func (l LogQuantity) Mul(r LogQuantity, opts ...Option) (LogQuantity, error) {
	return l.product(r, 1, opts)
}

// Div subtracts the readings.
func (l LogQuantity) Div(r LogQuantity, opts ...Option) (LogQuantity, error) {
	return l.product(r, -1, opts)
}

func (l LogQuantity) product(r LogQuantity, sign int, opts []Option) (LogQuantity, error) {
	if err := l.sameScale(r); err != nil {
		return LogQuantity{}, err
	}
	var n Decimal
	var err error
	if sign < 0 {
		n, err = l.number.Sub(r.number)
	} else {
		n, err = l.number.Add(r.number)
	}
	if err != nil {
		return LogQuantity{}, err
	}
	res := LogQuantity{number: n, unit: l.unit}
	if !l.HasUncertainty() && !r.HasUncertainty() {
		return res, nil
	}
	a, err := l.Absolute()
	if err != nil {
		return LogQuantity{}, err
	}
	b, err := r.Absolute()
	if err != nil {
		return LogQuantity{}, err
	}
	v, err := res.Absolute()
	if err != nil {
		return LogQuantity{}, err
	}
	u, err := productUncertainty(a.number, a.uncertainty, b.number, b.uncertainty, v.number, collect(opts).correlation, sign)
	if err != nil {
		return LogQuantity{}, err
	}
	res.uncertainty = Quantity{number: u, unit: v.unit}
	return res, nil
}

// Cmp orders two readings by their absolute values.
func (l LogQuantity) Cmp(r LogQuantity) (int, error) {
	a, err := l.Absolute()
	if err != nil {
		return 0, err
	}
	b, err := r.Absolute()
	if err != nil {
		return 0, err
	}
	return a.Cmp(b)
}

func (l LogQuantity) Equal(r LogQuantity) bool {
	c, err := l.Cmp(r)
	return err == nil && c == 0
}

// Round rounds the reading to places or figures. Rounding to the uncertainty is
// refused: the uncertainty is absolute, so its precision says nothing about the
// precision of the reading.
func (l LogQuantity) Round(opts ...Option) (LogQuantity, error) {
	o := collect(opts)
	m := o.method
	if m == MethodAuto {
		m = o.cfg.RoundIfExact
	}
	if m == MethodUncertainty {
		return LogQuantity{}, fmt.Errorf("%w: logarithmic reading with absolute uncertainty", ErrMismatchedUnits)
	}
	n := o.cfg.digitsFor(m)
	if o.hasDigits {
		n = o.digits
	}
	q, err := Quantity{number: l.number}.roundWith(m, n, o.cfg)
	if err != nil {
		return LogQuantity{}, err
	}
	l.number = q.number
	return l, nil
}

// Resolution is one unit of the least significant digit of the reading.
func (l LogQuantity) Resolution() LogQuantity {
	return LogQuantity{number: NewDecimal(1, l.number.Exponent()), unit: l.unit}
}
