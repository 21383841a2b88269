package quant

import (
	"fmt"
	"strings"
)

// Ratio is an exact rational exponent in lowest terms. The zero value is 0.
type Ratio struct{ num, den int64 }

// R returns the integer n as a Ratio.
func R(n int64) Ratio { return Frac(n, 1) }

// Frac returns n/d in lowest terms. It panics if d is zero.
func Frac(n, d int64) Ratio {
	if d == 0 {
		panic("quant: zero denominator")
	}
	if n == 0 {
		return Ratio{}
	}
	if d < 0 {
		n, d = -n, -d
	}
	g := gcd(abs64(n), d)
	return Ratio{num: n / g, den: d / g}
}

func (r Ratio) Num() int64 { return r.num }

func (r Ratio) Den() int64 {
	if r.den == 0 {
		return 1
	}
	return r.den
}

func (r Ratio) IsZero() bool { return r.num == 0 }
func (r Ratio) IsInt() bool  { return r.Den() == 1 }

func (r Ratio) Sign() int {
	switch {
	case r.num < 0:
		return -1
	case r.num > 0:
		return 1
	}
	return 0
}

func (r Ratio) Add(s Ratio) Ratio { return Frac(r.num*s.Den()+s.num*r.Den(), r.Den()*s.Den()) }
func (r Ratio) Sub(s Ratio) Ratio { return r.Add(s.Neg()) }
func (r Ratio) Mul(s Ratio) Ratio { return Frac(r.num*s.num, r.Den()*s.Den()) }
func (r Ratio) Neg() Ratio        { return Ratio{num: -r.num, den: r.den} }

func (r Ratio) Cmp(s Ratio) int {
	a, b := r.num*s.Den(), s.num*r.Den()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Decimal returns r as a decimal, rounded if it does not terminate.
func (r Ratio) Decimal() Decimal {
	if r.IsInt() {
		return DecFromInt64(r.num)
	}
	d, err := DecFromInt64(r.num).Quo(DecFromInt64(r.Den()))
	if err != nil {
		return decZero
	}
	return d
}

func (r Ratio) String() string {
	if r.IsInt() {
		return fmt.Sprintf("%d", r.num)
	}
	return fmt.Sprintf("%d/%d", r.num, r.den)
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// Dimension indexes a base dimension.
type Dimension int

const (
	Length Dimension = iota
	Mass
	Time
	Current
	Thermodynamic
	Amount
	Luminosity
	// Angle and Information are tracked separately but are dimensionless in SI.
	Angle
	Information
	NumDimensions
)

var dimensionSymbols = [NumDimensions]string{"L", "M", "T", "I", "Θ", "N", "J", "A", "B"}

func (d Dimension) String() string {
	if d < 0 || d >= NumDimensions {
		return fmt.Sprintf("Dimension(%d)", int(d))
	}
	return dimensionSymbols[d]
}

// Dimensions is a vector of rational exponents, one per base dimension. It is
// comparable with ==.
type Dimensions [NumDimensions]Ratio

// NoDimensions is the zero vector.
var NoDimensions Dimensions

// DimOf returns the vector with exponent e on dimension d.
func DimOf(d Dimension, e int64) Dimensions {
	var v Dimensions
	v[d] = R(e)
	return v
}

func (v Dimensions) Add(w Dimensions) Dimensions {
	for i := range v {
		v[i] = v[i].Add(w[i])
	}
	return v
}

func (v Dimensions) Sub(w Dimensions) Dimensions {
	for i := range v {
		v[i] = v[i].Sub(w[i])
	}
	return v
}

func (v Dimensions) Scale(e Ratio) Dimensions {
	for i := range v {
		v[i] = v[i].Mul(e)
	}
	return v
}

// IsDimensionless reports whether v has no SI dimension. Angle and information
// exponents are ignored.
func (v Dimensions) IsDimensionless() bool {
	for i := Length; i < Angle; i++ {
		if !v[i].IsZero() {
			return false
		}
	}
	return true
}

// isDroppable reports whether a factor with these dimensions carries nothing but an
// angle (radian, steradian) or no dimension at all (percent).
func (v Dimensions) isDroppable() bool {
	return v.IsDimensionless() && v[Information].IsZero()
}

// IsIntegral reports whether every exponent is an integer.
func (v Dimensions) IsIntegral() bool {
	for _, e := range v {
		if !e.IsInt() {
			return false
		}
	}
	return true
}

// Cmp orders vectors lexicographically from Length to Information.
func (v Dimensions) Cmp(w Dimensions) int {
	for i := range v {
		if c := v[i].Cmp(w[i]); c != 0 {
			return c
		}
	}
	return 0
}

func (v Dimensions) String() string {
	var parts []string
	for i, e := range v {
		if e.IsZero() {
			continue
		}
		parts = append(parts, Dimension(i).String()+Superscript(e))
	}
	if len(parts) == 0 {
		return "1"
	}
	return strings.Join(parts, " ")
}
