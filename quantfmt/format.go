// Package quantfmt renders quantities, temperatures and logarithmic quantities as
// text with a choice of exponent style, uncertainty notation and digit grouping.
package quantfmt

import (
	"strings"

	"github.com/cockroachdb/apd/v3"

	"github.com/chandan-cmd-dev/quant-go/quant"
)

// UncertaintyStyle selects how an uncertainty is written.
type UncertaintyStyle int

const (
	// PlusMinus writes "4.52 ± 0.02 m".
	PlusMinus UncertaintyStyle = iota
	// Parentheses writes the uncertainty in the last digits of the number:
	// "4.52(2) m".
	Parentheses
)

// Options control formatting. The zero value gives unicode superscripts, ± notation
// and no grouping.
type Options struct {
	ASCII       bool
	Uncertainty UncertaintyStyle
	GroupSep    string // empty disables grouping
	Plain       bool   // fixed-point numbers, never exponent notation
}

type Option func(*Options)

// WithASCII writes exponents as plain text: "m s-1", "m1/2".
func WithASCII() Option { return func(o *Options) { o.ASCII = true } }

func WithUncertaintyStyle(s UncertaintyStyle) Option {
	return func(o *Options) { o.Uncertainty = s }
}

// WithGrouping separates groups of three integer digits with sep.
func WithGrouping(sep string) Option { return func(o *Options) { o.GroupSep = sep } }

func WithPlain() Option { return func(o *Options) { o.Plain = true } }

func collect(opts []Option) Options {
	var o Options
	for _, f := range opts {
		f(&o)
	}
	return o
}

// Unit writes the symbol of u with its exponents in the chosen style.
func Unit(u quant.Unit, opts ...Option) string {
	return unitSymbol(u, collect(opts))
}

func unitSymbol(u quant.Unit, o Options) string {
	fs := u.Factors()
	if len(fs) == 1 && fs[0].Exp == quant.R(1) {
		return u.Symbol()
	}
	parts := make([]string, 0, len(fs))
	for _, f := range fs {
		exp := quant.Superscript(f.Exp)
		if o.ASCII {
			exp = quant.ASCIIExponent(f.Exp)
		}
		parts = append(parts, f.Unit.Symbol()+exp)
	}
	return strings.Join(parts, " ")
}

// Number writes x, grouping digits when asked.
func Number(x quant.Decimal, opts ...Option) string {
	return number(x, collect(opts))
}

func number(x quant.Decimal, o Options) string {
	s := x.String()
	if o.Plain {
		s = x.Plain()
	}
	if o.GroupSep == "" || strings.ContainsAny(s, "Ee") {
		return s
	}
	return group(s, o.GroupSep)
}

func group(s, sep string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")
	if len(intPart) <= 4 {
		// 1234 stays as it is; grouping starts at five digits.
		return sign + s
	}
	var b strings.Builder
	b.WriteString(sign)
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(intPart[i : i+3])
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// concise writes n with u folded into its last digits. Both are brought to the
// smaller of their exponents first, so 4.5 ± 0.02 reads 4.50(2).
func concise(n, u quant.Decimal, o Options) string {
	exp := n.Exponent()
	if u.Exponent() < exp {
		exp = u.Exponent()
	}
	nq, err := n.Quantize(exp, apd.RoundHalfEven)
	if err != nil {
		return number(n, o) + " ± " + number(u, o)
	}
	uq, err := u.Quantize(exp, apd.RoundHalfEven)
	if err != nil {
		return number(n, o) + " ± " + number(u, o)
	}
	return number(nq, o) + "(" + uq.Coefficient().String() + ")"
}

// Quantity writes q: number, uncertainty and unit, with no space before °, ′, ″
// and %, unless an uncertainty in ± form comes between.
func Quantity(q quant.Quantity, opts ...Option) string {
	return quantity(q.Number(), q.UncertaintyNumber(), q.Unit(), collect(opts))
}

func quantity(n, unc quant.Decimal, u quant.Unit, o Options) string {
	var b strings.Builder
	pm := false
	switch {
	case unc.IsZero():
		b.WriteString(number(n, o))
	case o.Uncertainty == Parentheses:
		b.WriteString(concise(n, unc, o))
	default:
		pm = true
		if !u.IsUnitless() {
			b.WriteByte('(')
		}
		b.WriteString(number(n, o))
		b.WriteString(" ± ")
		b.WriteString(number(unc, o))
		if !u.IsUnitless() {
			b.WriteByte(')')
		}
	}
	if !u.IsUnitless() {
		if u.PrecedingSpace() || pm {
			b.WriteByte(' ')
		}
		b.WriteString(unitSymbol(u, o))
	}
	return b.String()
}

// Temperature writes t as a point on its scale: "25 °C".
func Temperature(t quant.Temperature, opts ...Option) string {
	return quantity(t.Number(), t.Uncertainty().Number(), t.Scale(), collect(opts))
}

// Log writes l as "30 dBm", followed by its absolute uncertainty when it has one:
// "3 dB ± 0.1".
func Log(l quant.LogQuantity, opts ...Option) string {
	o := collect(opts)
	s := number(l.Number(), o) + " " + l.Unit().String()
	if l.HasUncertainty() {
		o.Uncertainty = PlusMinus
		u := l.Uncertainty()
		s += " ± " + quantity(u.Number(), quant.Decimal{}, u.Unit(), o)
	}
	return s
}

// Format writes any value.
func Format(v quant.Value, opts ...Option) string {
	switch v := v.(type) {
	case quant.Quantity:
		return Quantity(v, opts...)
	case quant.Temperature:
		return Temperature(v, opts...)
	case quant.LogQuantity:
		return Log(v, opts...)
	}
	return v.String()
}
