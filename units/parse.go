package units

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/chandan-cmd-dev/quant-go/quant"
)

var (
	numberRE   = regexp.MustCompile(`^([-+]?(?:\d+(?:\.\d*)?|\.\d+))(?:\((\d+(?:\.\d+)?)\))?([eE][-+]?\d+)?`)
	asciiExpRE = regexp.MustCompile(`^(.*?[^\d\-/])(-?\d+(?:/\d+)?)$`)
	unitSeps   = strings.NewReplacer("**", "^", "*", " ", "·", " ", "⋅", " ", "(", " ", ")", " ", "[", " ", "]", " ")
	supers     = strings.NewReplacer(
		"⁰", "0", "¹", "1", "²", "2", "³", "3", "⁴", "4", "⁵", "5", "⁶", "6", "⁷", "7", "⁸", "8", "⁹", "9",
		"₀", "0", "₁", "1", "₂", "2", "₃", "3", "₄", "4", "₅", "5", "₆", "6", "₇", "7", "₈", "8", "₉", "9",
		"⁻", "-", "⁄", "/",
	)
)

func parseErr(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{quant.ErrParse}, args...)...)
}

func isSuper(r rune) bool { return strings.ContainsRune("⁰¹²³⁴⁵⁶⁷⁸⁹₀₁₂₃₄₅₆₇₈₉⁻⁄", r) }

// ParseUnit reads a unit written as space or dot separated factors, each a symbol
// or name with an optional exponent: "kg m2 s-1", "m·s⁻¹", "m^2", "s**-1", "m¹⁄₂".
// Factors after a single "/" are divided: "J / kg K" is J kg⁻¹ K⁻¹. Empty text is
// unitless.
func (r *Registry) ParseUnit(text string) (quant.Unit, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return quant.Unitless, nil
	}
	if u, err := r.Unit(text); err == nil {
		return u, nil
	}
	var (
		factors []quant.Factor
		divided bool
	)
	for _, tok := range splitDivision(strings.Fields(unitSeps.Replace(text))) {
		if tok == "/" {
			if divided {
				return quant.Unit{}, parseErr("more than one / in %q", text)
			}
			divided = true
			continue
		}
		f, err := r.parseFactor(tok)
		if err != nil {
			return quant.Unit{}, err
		}
		if divided {
			f.Exp = f.Exp.Neg()
		}
		factors = append(factors, f)
	}
	if len(factors) == 0 {
		return quant.Unit{}, parseErr("no unit in %q", text)
	}
	return quant.Compose(factors...)
}

// MustParseUnit is ParseUnit for text known to be valid.
func (r *Registry) MustParseUnit(text string) quant.Unit {
	u, err := r.ParseUnit(text)
	if err != nil {
		panic(err)
	}
	return u
}

// splitDivision separates "/" into its own token unless it is part of a fractional
// exponent such as m1/2.
func splitDivision(fields []string) []string {
	var out []string
	for _, f := range fields {
		for f != "" {
			i := divisionIndex(f)
			if i < 0 {
				out = append(out, f)
				break
			}
			if i > 0 {
				out = append(out, f[:i])
			}
			out = append(out, "/")
			f = f[i+1:]
		}
	}
	return out
}

func divisionIndex(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] != '/' {
			continue
		}
		digitBefore := i > 0 && s[i-1] >= '0' && s[i-1] <= '9'
		digitAfter := i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '9'
		if !(digitBefore && digitAfter) {
			return i
		}
	}
	return -1
}

func (r *Registry) parseFactor(tok string) (quant.Factor, error) {
	if u, err := r.resolve(tok); err == nil {
		return quant.Factor{Unit: u, Exp: quant.R(1)}, nil
	}
	sym, exp := tok, ""
	switch {
	case strings.Contains(tok, "^"):
		sym, exp, _ = strings.Cut(tok, "^")
		exp = supers.Replace(exp)
	case isSuper(lastRune(tok)):
		end := 0
		if i := strings.LastIndexFunc(tok, func(r rune) bool { return !isSuper(r) }); i >= 0 {
			_, size := utf8.DecodeRuneInString(tok[i:])
			end = i + size
		}
		sym, exp = tok[:end], supers.Replace(tok[end:])
	default:
		if m := asciiExpRE.FindStringSubmatch(tok); m != nil {
			sym, exp = m[1], m[2]
		}
	}
	u, err := r.resolve(sym)
	if err != nil {
		return quant.Factor{}, err
	}
	e := quant.R(1)
	if exp != "" {
		if e, err = parseRatio(exp); err != nil {
			return quant.Factor{}, err
		}
	}
	return quant.Factor{Unit: u, Exp: e}, nil
}

func lastRune(s string) rune {
	r := []rune(s)
	if len(r) == 0 {
		return 0
	}
	return r[len(r)-1]
}

// resolve finds a unit, falling back to a constant used as a unit.
func (r *Registry) resolve(sym string) (quant.Unit, error) {
	if sym == "" {
		return quant.Unit{}, parseErr("missing unit symbol")
	}
	u, err := r.Unit(sym)
	if err == nil {
		return u, nil
	}
	if c, cerr := r.Constant(sym); cerr == nil {
		return c.AsUnit()
	}
	return quant.Unit{}, fmt.Errorf("%w: %w", quant.ErrParse, err)
}

func parseRatio(s string) (quant.Ratio, error) {
	num, den, frac := strings.Cut(s, "/")
	n, err := strconv.ParseInt(num, 10, 64)
	if err != nil {
		return quant.Ratio{}, parseErr("exponent %q", s)
	}
	if !frac {
		return quant.R(n), nil
	}
	d, err := strconv.ParseInt(den, 10, 64)
	if err != nil || d == 0 {
		return quant.Ratio{}, parseErr("exponent %q", s)
	}
	return quant.Frac(n, d), nil
}

// ParseQuantity reads a number, an optional uncertainty and a unit. The uncertainty
// is written either in concise form, "4.52(2) m" meaning 4.52 ± 0.02 m, or after a
// plus-minus sign: "4.52 ± 0.02 m", "(4.52 +/- 0.02) m". A temperature such as
// "25 °C" parses as a plain quantity; use OnScale for the point on the scale.
func (r *Registry) ParseQuantity(text string) (quant.Quantity, error) {
	s := strings.TrimSpace(strings.ReplaceAll(text, "−", "-"))
	grouped := strings.HasPrefix(s, "(")
	if grouped {
		s = strings.TrimSpace(s[1:])
	}
	n, unc, rest, err := parseNumber(s)
	if err != nil {
		return quant.Quantity{}, fmt.Errorf("%w in %q", err, text)
	}
	rest = strings.TrimSpace(rest)
	for _, pm := range []string{"±", "+/-", "+-"} {
		if after, ok := strings.CutPrefix(rest, pm); ok {
			if !unc.IsZero() {
				return quant.Quantity{}, parseErr("two uncertainties in %q", text)
			}
			u, _, tail, err := parseNumber(strings.TrimSpace(after))
			if err != nil {
				return quant.Quantity{}, fmt.Errorf("%w in %q", err, text)
			}
			unc, rest = u, strings.TrimSpace(tail)
			break
		}
	}
	if grouped {
		after, ok := strings.CutPrefix(rest, ")")
		if !ok {
			return quant.Quantity{}, parseErr("unclosed bracket in %q", text)
		}
		rest = strings.TrimSpace(after)
	}
	if c, _ := utf8.DecodeRuneInString(rest); unicode.IsDigit(c) {
		return quant.Quantity{}, parseErr("malformed number in %q", text)
	}
	u, err := r.ParseUnit(rest)
	if err != nil {
		return quant.Quantity{}, err
	}
	return quant.MakeQuantity(n, u, unc), nil
}

// MustParseQuantity is ParseQuantity for text known to be valid.
func (r *Registry) MustParseQuantity(text string) quant.Quantity {
	q, err := r.ParseQuantity(text)
	if err != nil {
		panic(err)
	}
	return q
}

// parseNumber reads a decimal literal with an optional concise uncertainty. In
// "6.67430(15)E-11" the digits 15 count in the last place of 6.67430, so the
// uncertainty is 0.00015E-11.
func parseNumber(s string) (n, unc quant.Decimal, rest string, err error) {
	m := numberRE.FindStringSubmatch(s)
	if m == nil {
		return n, unc, "", parseErr("expected a number at %q", s)
	}
	mant, concise, expPart := m[1], m[2], m[3]
	if n, err = quant.DecFromString(mant + expPart); err != nil {
		return n, unc, "", err
	}
	if concise != "" {
		var exp int64
		if expPart != "" {
			exp, _ = strconv.ParseInt(expPart[1:], 10, 32)
		}
		if strings.Contains(concise, ".") {
			unc, err = quant.DecFromString(concise + expPart)
		} else {
			places := 0
			if _, frac, ok := strings.Cut(mant, "."); ok {
				places = len(frac)
			}
			c, perr := strconv.ParseInt(concise, 10, 64)
			if perr != nil {
				return n, unc, "", parseErr("uncertainty %q", concise)
			}
			unc = quant.NewDecimal(c, int32(exp)-int32(places))
		}
		if err != nil {
			return n, unc, "", err
		}
	}
	return n, unc, s[len(m[0]):], nil
}
