package quant

import (
	"fmt"
	"strings"
)

// Unit is an immutable unit of measurement: either a named (atomic) unit with a
// dimension vector and a scale factor relative to SI base units, or a compound unit
// made of an ordered list of factors. The zero Unit is unitless.
//
// Units compare by value with Equal: two units with the same dimensions and scale
// are equal whatever their symbols.
type Unit struct {
	symbol    string
	name      string
	dims      Dimensions
	scale     Decimal // atomic only; unset means 1
	divisor   Decimal // atomic only; unset means 1
	offset    Decimal // reading of absolute zero on a temperature scale
	hasOffset bool
	prefixed  bool
	noSpace   bool
	factors   []Factor // compound only
}

// Factor is one term of a compound unit.
type Factor struct {
	Unit Unit
	Exp  Ratio
}

// UnitOption configures MakeUnit.
type UnitOption func(*Unit)

// WithOffset marks the unit as a temperature scale whose absolute zero reads as
// offset (−273.15 for degree Celsius).
func WithOffset(offset Decimal) UnitOption {
	return func(u *Unit) {
		u.offset = offset
		u.hasOffset = true
	}
}

// WithoutSpace makes the symbol follow the number directly, as for ° and ′.
func WithoutSpace() UnitOption { return func(u *Unit) { u.noSpace = true } }

// WithScaleDivisor divides the scale by d without rounding, so the degree
// Fahrenheit is scale 5 with divisor 9 rather than 0.5555…6.
func WithScaleDivisor(d Decimal) UnitOption { return func(u *Unit) { u.divisor = d } }

// Unprefixable stops prefixes from being applied, as for the kilogram.
func Unprefixable() UnitOption { return func(u *Unit) { u.prefixed = true } }

// MakeUnit creates a named unit. scale converts one of the unit to SI base units.
func MakeUnit(symbol, name string, dims Dimensions, scale Decimal, opts ...UnitOption) Unit {
	u := Unit{symbol: symbol, name: name, dims: dims, scale: scale}
	for _, o := range opts {
		o(&u)
	}
	u.collapseDivisor()
	return u
}

// collapseDivisor folds the divisor into the scale when the quotient is exact.
func (u *Unit) collapseDivisor() {
	if u.divisor.d == nil {
		return
	}
	d := u.divisor
	if d.IsZero() || d.Cmp(decOne) == 0 {
		u.divisor = Decimal{}
		return
	}
	q, err := u.atomicScale().Quo(d)
	if err != nil {
		return
	}
	back, err := q.Mul(d)
	if err == nil && back.Cmp(u.atomicScale()) == 0 {
		u.scale, u.divisor = q, Decimal{}
	}
}

// SI base units. They are also the units Base expands into.
var (
	Metre    = MakeUnit("m", "metre", DimOf(Length, 1), decOne)
	Kilogram = MakeUnit("kg", "kilogram", DimOf(Mass, 1), decOne, Unprefixable())
	Second   = MakeUnit("s", "second", DimOf(Time, 1), decOne)
	Ampere   = MakeUnit("A", "ampere", DimOf(Current, 1), decOne)
	Kelvin   = MakeUnit("K", "kelvin", DimOf(Thermodynamic, 1), decOne)
	Mole     = MakeUnit("mol", "mole", DimOf(Amount, 1), decOne)
	Candela  = MakeUnit("cd", "candela", DimOf(Luminosity, 1), decOne)
	Radian   = MakeUnit("rad", "radian", DimOf(Angle, 1), decOne)
	Bit      = MakeUnit("bit", "bit", DimOf(Information, 1), decOne)
)

var baseUnits = [NumDimensions]Unit{Metre, Kilogram, Second, Ampere, Kelvin, Mole, Candela, Radian, Bit}

// BaseUnit returns the SI unit of a base dimension.
func BaseUnit(d Dimension) Unit { return baseUnits[d] }

// Unitless is the unit of pure numbers.
var Unitless Unit

func (u Unit) isCompound() bool { return u.factors != nil }

// IsUnitless reports whether u has no factors at all.
func (u Unit) IsUnitless() bool {
	if u.isCompound() {
		return len(u.factors) == 0
	}
	return u.symbol == "" && u.name == ""
}

// Factors returns the factors of u. An atomic unit is a single factor with exponent 1.
func (u Unit) Factors() []Factor {
	switch {
	case u.isCompound():
		return append([]Factor(nil), u.factors...)
	case u.IsUnitless():
		return nil
	}
	return []Factor{{Unit: u, Exp: R(1)}}
}

func (u Unit) components() []Factor {
	if u.isCompound() {
		return u.factors
	}
	if u.IsUnitless() {
		return nil
	}
	return []Factor{{Unit: u, Exp: R(1)}}
}

func (u Unit) Dimensions() Dimensions { return u.dims }

// IsDimensionless reports whether u has no SI dimension.
func (u Unit) IsDimensionless() bool { return u.dims.IsDimensionless() }

func (u Unit) Name() string {
	if u.isCompound() {
		parts := make([]string, 0, len(u.factors))
		for _, f := range u.factors {
			n := f.Unit.Name()
			if !(f.Exp.IsInt() && f.Exp.Num() == 1) {
				n += "^" + f.Exp.String()
			}
			parts = append(parts, n)
		}
		return strings.Join(parts, " ")
	}
	return u.name
}

// Symbol is the unit's symbol, generated for compound units ("m s⁻¹"). Named units
// without a symbol fall back to their name.
func (u Unit) Symbol() string {
	if u.isCompound() {
		parts := make([]string, 0, len(u.factors))
		for _, f := range u.factors {
			parts = append(parts, f.Unit.Symbol()+Superscript(f.Exp))
		}
		return strings.Join(parts, " ")
	}
	if u.symbol == "" {
		return u.name
	}
	return u.symbol
}

func (u Unit) String() string {
	if u.IsUnitless() {
		return "(unitless)"
	}
	return u.Symbol()
}

// Offset returns the reading of absolute zero on a temperature scale.
func (u Unit) Offset() (Decimal, bool) { return u.offset, u.hasOffset }

// IsTemperatureScale reports whether u can be used as the scale of a Temperature.
func (u Unit) IsTemperatureScale() bool {
	return !u.isCompound() && u.dims == DimOf(Thermodynamic, 1)
}

// PrecedingSpace reports whether a space goes between a number and this unit.
func (u Unit) PrecedingSpace() bool {
	if u.isCompound() || u.IsUnitless() {
		return !u.IsUnitless()
	}
	return !u.noSpace
}

func (u Unit) atomicScale() Decimal {
	if u.scale.d == nil {
		return decOne
	}
	return u.scale
}

func (u Unit) atomicDivisor() Decimal {
	if u.divisor.d == nil {
		return decOne
	}
	return u.divisor
}

// scaleParts returns the scale of u as num/den without dividing, so that conversions
// can do a single division at the end.
func (u Unit) scaleParts() (num, den Decimal, err error) {
	if !u.isCompound() {
		return u.atomicScale(), u.atomicDivisor(), nil
	}
	var c calc
	num, den = decOne, decOne
	for _, f := range u.factors {
		num, den = c.fold(num, den, f.Unit, f.Exp)
	}
	return num, den, c.err
}

// fold multiplies num/den by the scale of the atomic unit u raised to e.
func (c *calc) fold(num, den Decimal, u Unit, e Ratio) (Decimal, Decimal) {
	s, d := u.atomicScale(), u.atomicDivisor()
	if e.Sign() < 0 {
		s, d, e = d, s, e.Neg()
	}
	num = c.mul(num, c.powRatio(s, e))
	if d.Cmp(decOne) != 0 {
		den = c.mul(den, c.powRatio(d, e))
	}
	return num, den
}

// ScaleParts returns the scale of u as an unrounded fraction num/den.
func (u Unit) ScaleParts() (num, den Decimal, err error) { return u.scaleParts() }

// Scale is the factor converting one of u to SI base units.
func (u Unit) Scale() (Decimal, error) {
	num, den, err := u.scaleParts()
	if err != nil {
		return Decimal{}, err
	}
	return num.Quo(den)
}

// Equal reports whether u and v have the same dimensions and scale.
func (u Unit) Equal(v Unit) bool {
	if u.dims != v.dims {
		return false
	}
	un, ud, err := u.scaleParts()
	if err != nil {
		return false
	}
	vn, vd, err := v.scaleParts()
	if err != nil {
		return false
	}
	var c calc
	l := c.mul(un, vd)
	r := c.mul(vn, ud)
	return c.err == nil && l.Cmp(r) == 0
}

// Identical reports whether u and v have the same factors in the same order.
func (u Unit) Identical(v Unit) bool {
	a, b := u.components(), v.components()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !sameAtomic(a[i].Unit, b[i].Unit) || a[i].Exp != b[i].Exp {
			return false
		}
	}
	return true
}

func sameAtomic(a, b Unit) bool {
	return a.symbol == b.symbol && a.name == b.name && a.dims == b.dims &&
		a.atomicScale().Cmp(b.atomicScale()) == 0 &&
		a.atomicDivisor().Cmp(b.atomicDivisor()) == 0
}

// Prefix is a named multiplier such as kilo or kibi.
type Prefix struct {
	Symbol string
	Name   string
	Factor Decimal
}

func MakePrefix(symbol, name string, factor Decimal) Prefix {
	return Prefix{Symbol: symbol, Name: name, Factor: factor}
}

// Apply returns the prefixed unit, e.g. kilo applied to metre is km with scale 1000.
func (p Prefix) Apply(u Unit) (Unit, error) {
	switch {
	case u.isCompound() || u.IsUnitless():
		return Unit{}, fmt.Errorf("%w: %s is not a named unit", ErrAlreadyPrefixed, u)
	case u.prefixed:
		return Unit{}, fmt.Errorf("%w: %s", ErrAlreadyPrefixed, u)
	case u.hasOffset:
		return Unit{}, fmt.Errorf("%w: %s is an offset scale", ErrAlreadyPrefixed, u)
	}
	s, err := p.Factor.Mul(u.atomicScale())
	if err != nil {
		return Unit{}, err
	}
	symbol := ""
	if u.symbol != "" {
		symbol = p.Symbol + u.symbol
	}
	r := Unit{
		symbol:   symbol,
		name:     p.Name + u.name,
		dims:     u.dims,
		scale:    s,
		divisor:  u.divisor,
		prefixed: true,
	}
	r.collapseDivisor()
	return r, nil
}

func (p Prefix) String() string { return p.Symbol }
