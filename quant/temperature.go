package quant

import "fmt"

// Temperature is a point on a temperature scale, as opposed to a Quantity in a
// temperature unit, which is a difference. Adding two points is meaningless, so
// Temperature only supports the operations that are: shifting by a difference, the
// difference of two points, and moving to another scale.
type Temperature struct {
	number      Decimal
	scale       Unit
	uncertainty Decimal
}

// NewTemperature returns number on scale. scale must be kelvin or a unit made with
// the temperature dimension, such as degree Celsius.
func NewTemperature(number Decimal, scale Unit) (Temperature, error) {
	if !scale.IsTemperatureScale() {
		return Temperature{}, fmt.Errorf("%w: %s is not a temperature scale", ErrInvalidTemperatureOperation, scale)
	}
	return Temperature{number: number, scale: scale}, nil
}

// MustTemperature is NewTemperature for scales known to be valid.
func MustTemperature(number Decimal, scale Unit) Temperature {
	t, err := NewTemperature(number, scale)
	if err != nil {
		panic(err)
	}
	return t
}

func (t Temperature) Number() Decimal        { return t.number }
func (t Temperature) Scale() Unit            { return t.scale }
func (t Temperature) Dimensions() Dimensions { return t.scale.dims }
func (t Temperature) HasUncertainty() bool   { return !t.uncertainty.IsZero() }
func (t Temperature) isValue()               {}

// Uncertainty is a difference in the unit of the scale.
func (t Temperature) Uncertainty() Quantity {
	return Quantity{number: t.uncertainty, unit: t.scale}
}

func (t Temperature) WithUncertainty(u Decimal) Temperature {
	t.uncertainty = u.Abs()
	return t
}

func (t Temperature) String() string {
	q := Quantity{number: t.number, unit: t.scale, uncertainty: t.uncertainty}
	return q.String()
}

// ratio returns the factor from scale a to scale b as num/den, unrounded.
func ratio(c *calc, a, b Unit) (num, den Decimal) {
	num = c.mul(a.atomicScale(), b.atomicDivisor())
	den = c.mul(a.atomicDivisor(), b.atomicScale())
	return num, den
}

// onScale maps a reading v on scale a to scale b: (v − offA)·scaleA/scaleB + offB,
// with a single division.
func onScale(v Decimal, a, b Unit) (Decimal, error) {
	oa, _ := a.Offset()
	ob, _ := b.Offset()
	var c calc
	num, den := ratio(&c, a, b)
	n := c.quo(c.mul(c.sub(v, oa), num), den)
	n = c.add(n, ob)
	return n, c.err
}

// Absolute returns the temperature as a quantity in kelvin.
func (t Temperature) Absolute() (Quantity, error) {
	n, err := onScale(t.number, t.scale, Kelvin)
	if err != nil {
		return Quantity{}, err
	}
	u, err := t.scaledUncertainty(Kelvin)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{number: n, unit: Kelvin, uncertainty: u}, nil
}

func (t Temperature) scaledUncertainty(to Unit) (Decimal, error) {
	if t.uncertainty.IsZero() {
		return Decimal{}, nil
	}
	var c calc
	num, den := ratio(&c, t.scale, to)
	u := c.quo(c.mul(t.uncertainty, num), den)
	return u.Abs(), c.err
}

// OnScale reads the same temperature on another scale.
func (t Temperature) OnScale(scale Unit) (Temperature, error) {
	if !scale.IsTemperatureScale() {
		return Temperature{}, fmt.Errorf("%w: %s is not a temperature scale", ErrMismatchedDimensions, scale)
	}
	n, err := onScale(t.number, t.scale, scale)
	if err != nil {
		return Temperature{}, err
	}
	u, err := t.scaledUncertainty(scale)
	if err != nil {
		return Temperature{}, err
	}
	return Temperature{number: n, scale: scale, uncertainty: u}, nil
}

// OnScale treats q as an absolute temperature and reads it on scale: 300 K on
// degree Celsius is 26.85 °C.
func (q Quantity) OnScale(scale Unit) (Temperature, error) {
	k, err := Convert(q, Kelvin)
	if err != nil {
		return Temperature{}, err
	}
	t := Temperature{number: k.number, scale: Kelvin, uncertainty: k.uncertainty}
	return t.OnScale(scale)
}

// Add shifts t by a temperature difference.
func (t Temperature) Add(d Quantity, opts ...Option) (Temperature, error) {
	return t.shift(d, 1, opts)
}

// Sub shifts t down by a temperature difference.
func (t Temperature) Sub(d Quantity, opts ...Option) (Temperature, error) {
	return t.shift(d, -1, opts)
}

func (t Temperature) shift(d Quantity, sign int, opts []Option) (Temperature, error) {
	if d.unit.dims != t.scale.dims {
		return Temperature{}, fmt.Errorf("%w: %s and %s", ErrMismatchedUnits, t.scale, d.unit)
	}
	q := Quantity{number: t.number, unit: t.scale, uncertainty: t.uncertainty}
	r, err := q.sum(d, sign, opts)
	if err != nil {
		return Temperature{}, err
	}
	return Temperature{number: r.number, scale: t.scale, uncertainty: r.uncertainty}, nil
}

// Diff returns t − o as a difference in the unit of t's scale. o is first read on
// t's scale, so 25 °C − (−5 °C) is 30 °C, not a value in kelvin.
func (t Temperature) Diff(o Temperature, opts ...Option) (Quantity, error) {
	if !o.scale.Identical(t.scale) {
		var err error
		if o, err = o.OnScale(t.scale); err != nil {
			return Quantity{}, err
		}
	}
	q := Quantity{number: t.number, unit: t.scale, uncertainty: t.uncertainty}
	return q.sum(Quantity{number: o.number, unit: t.scale, uncertainty: o.uncertainty}, -1, opts)
}

// Cmp orders two temperatures by their absolute values.
func (t Temperature) Cmp(o Temperature) (int, error) {
	a, err := t.Absolute()
	if err != nil {
		return 0, err
	}
	b, err := o.Absolute()
	if err != nil {
		return 0, err
	}
	return a.number.Cmp(b.number), nil
}

// Equal reports whether t and o are the same point, whatever their scales.
func (t Temperature) Equal(o Temperature) bool {
	c, err := t.Cmp(o)
	return err == nil && c == 0
}

// Round rounds the reading the way Quantity.Round does.
func (t Temperature) Round(opts ...Option) (Temperature, error) {
	q, err := Quantity{number: t.number, unit: t.scale, uncertainty: t.uncertainty}.Round(opts...)
	if err != nil {
		return Temperature{}, err
	}
	return Temperature{number: q.number, scale: t.scale, uncertainty: q.uncertainty}, nil
}
