package quant

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// RoundingMode is the tie-break rule of the rounding engine. It is independent of
// the rounding used by decimal arithmetic. The zero value is RoundHalfUp.
type RoundingMode int

const (
	// RoundHalfUp rounds ties away from zero: 1.25 → 1.3, −1.25 → −1.3.
	RoundHalfUp RoundingMode = iota
	RoundHalfEven
	RoundHalfDown
	// RoundUp rounds away from zero.
	RoundUp
	// RoundDown rounds toward zero.
	RoundDown
	RoundCeiling
	RoundFloor
	Round05Up
)

var roundingModes = []struct {
	name    string
	rounder apd.Rounder
}{
	RoundHalfUp:   {"ROUND_HALF_UP", apd.RoundHalfUp},
	RoundHalfEven: {"ROUND_HALF_EVEN", apd.RoundHalfEven},
	RoundHalfDown: {"ROUND_HALF_DOWN", apd.RoundHalfDown},
	RoundUp:       {"ROUND_UP", apd.RoundUp},
	RoundDown:     {"ROUND_DOWN", apd.RoundDown},
	RoundCeiling:  {"ROUND_CEILING", apd.RoundCeiling},
	RoundFloor:    {"ROUND_FLOOR", apd.RoundFloor},
	Round05Up:     {"ROUND_05UP", apd.Round05Up},
}

func (m RoundingMode) valid() bool { return m >= 0 && int(m) < len(roundingModes) }

func (m RoundingMode) String() string {
	if !m.valid() {
		return fmt.Sprintf("RoundingMode(%d)", int(m))
	}
	return roundingModes[m].name
}

func (m RoundingMode) rounder() apd.Rounder {
	if !m.valid() {
		return apd.RoundHalfUp
	}
	return roundingModes[m].rounder
}

// ParseRoundingMode accepts "ROUND_HALF_UP", "half_up" or "HALF_UP".
func ParseRoundingMode(s string) (RoundingMode, error) {
	k := strings.ToUpper(strings.TrimSpace(s))
	if !strings.HasPrefix(k, "ROUND_") {
		k = "ROUND_" + k
	}
	for i, m := range roundingModes {
		if m.name == k {
			return RoundingMode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: rounding mode %q", ErrParse, s)
}

func (m RoundingMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *RoundingMode) UnmarshalText(b []byte) error {
	v, err := ParseRoundingMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Method selects what Round rounds to.
type Method int

const (
	MethodAuto Method = iota
	MethodPlaces
	MethodFigures
	MethodUncertainty
)

var methodNames = [...]string{"AUTO", "PLACES", "FIGURES", "UNCERTAINTY"}

func (m Method) String() string {
	if m < 0 || int(m) >= len(methodNames) {
		return fmt.Sprintf("Method(%d)", int(m))
	}
	return methodNames[m]
}

func ParseMethod(s string) (Method, error) {
	k := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range methodNames {
		if n == k {
			return Method(i), nil
		}
	}
	return 0, fmt.Errorf("%w: rounding method %q", ErrParse, s)
}

func (m Method) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Method) UnmarshalText(b []byte) error {
	v, err := ParseMethod(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Config holds the settings an operation reads. It is a plain value: pass it with
// WithConfig rather than sharing a mutable default.
type Config struct {
	RoundingMode       RoundingMode
	Pad                bool
	AutoCancel         bool
	RoundIfUncertainty Method
	RoundIfExact       Method
	NDigitsPlaces      int
	NDigitsFigures     int
	NDigitsUncertainty int
}

func DefaultConfig() Config {
	return Config{
		RoundingMode:       RoundHalfUp,
		Pad:                true,
		AutoCancel:         true,
		RoundIfUncertainty: MethodUncertainty,
		RoundIfExact:       MethodFigures,
		NDigitsPlaces:      2,
		NDigitsFigures:     3,
		NDigitsUncertainty: 1,
	}
}

// digitsFor returns the default number of digits for a rounding method.
func (c Config) digitsFor(m Method) int {
	switch m {
	case MethodPlaces:
		return c.NDigitsPlaces
	case MethodFigures:
		return c.NDigitsFigures
	}
	return c.NDigitsUncertainty
}

// Option adjusts a single call.
type Option func(*options)

type options struct {
	cfg         Config
	correlation Decimal
	digits      int
	hasDigits   bool
	method      Method
}

func collect(opts []Option) options {
	o := options{cfg: DefaultConfig()}
	for _, f := range opts {
		f(&o)
	}
	return o
}

// WithConfig replaces the whole configuration; options after it override single
// fields.
func WithConfig(c Config) Option { return func(o *options) { o.cfg = c } }

func WithMode(m RoundingMode) Option { return func(o *options) { o.cfg.RoundingMode = m } }
func WithPad(pad bool) Option        { return func(o *options) { o.cfg.Pad = pad } }
func WithAutoCancel(on bool) Option  { return func(o *options) { o.cfg.AutoCancel = on } }

// WithCorrelation sets the correlation coefficient (−1 to 1) between the operands of
// an uncertain addition, subtraction, multiplication or division.
func WithCorrelation(r Decimal) Option { return func(o *options) { o.correlation = r } }

// WithDigits sets ndigits for Round.
func WithDigits(n int) Option {
	return func(o *options) {
		o.digits = n
		o.hasDigits = true
	}
}

// WithMethod forces the rounding method used by Round.
func WithMethod(m Method) Option { return func(o *options) { o.method = m } }
