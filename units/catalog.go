package units

import (
	"fmt"

	"github.com/chandan-cmd-dev/quant-go/quant"
)

// def describes a catalog unit by the quantity one of it equals. The value is parsed
// against the units defined before it.
type def struct {
	symbol, name string
	value        string
	prefixable   bool
	noSpace      bool
	offset       string
	divisor      string
	aliases      []string
}

var metricPrefixes = []struct{ symbol, name, factor string }{
	{"q", "quecto", "1E-30"}, {"r", "ronto", "1E-27"}, {"y", "yocto", "1E-24"},
	{"z", "zepto", "1E-21"}, {"a", "atto", "1E-18"}, {"f", "femto", "1E-15"},
	{"p", "pico", "1E-12"}, {"n", "nano", "1E-9"}, {"µ", "micro", "1E-6"},
	{"m", "milli", "1E-3"}, {"c", "centi", "1E-2"}, {"d", "deci", "1E-1"},
	{"da", "deca", "1E1"}, {"h", "hecto", "1E2"}, {"k", "kilo", "1E3"},
	{"M", "mega", "1E6"}, {"G", "giga", "1E9"}, {"T", "tera", "1E12"},
	{"P", "peta", "1E15"}, {"E", "exa", "1E18"}, {"Z", "zetta", "1E21"},
	{"Y", "yotta", "1E24"}, {"R", "ronna", "1E27"}, {"Q", "quetta", "1E30"},
}

var binaryPrefixes = []struct{ symbol, name string }{
	{"Ki", "kibi"}, {"Mi", "mebi"}, {"Gi", "gibi"}, {"Ti", "tebi"},
	{"Pi", "pebi"}, {"Ei", "exbi"}, {"Zi", "zebi"}, {"Yi", "yobi"},
}

var baseUnits = []quant.Unit{
	quant.Second, quant.Metre, quant.Kilogram, quant.Ampere, quant.Kelvin,
	quant.Mole, quant.Candela, quant.Radian, quant.Bit,
}

var standardUnits = []def{
	{symbol: "g", name: "gram", value: "0.001 kg", prefixable: true},
	{symbol: "sr", name: "steradian", value: "1 rad2", prefixable: true},

	{symbol: "Hz", name: "hertz", value: "1 s-1", prefixable: true},
	{symbol: "N", name: "newton", value: "1 kg m s-2", prefixable: true},
	{symbol: "Pa", name: "pascal", value: "1 N m-2", prefixable: true},
	{symbol: "J", name: "joule", value: "1 N m", prefixable: true},
	{symbol: "W", name: "watt", value: "1 J s-1", prefixable: true},
	{symbol: "C", name: "coulomb", value: "1 A s", prefixable: true},
	{symbol: "V", name: "volt", value: "1 W A-1", prefixable: true},
	{symbol: "F", name: "farad", value: "1 C V-1", prefixable: true},
	{symbol: "Ω", name: "ohm", value: "1 V A-1", prefixable: true, aliases: []string{"ohm"}},
	{symbol: "S", name: "siemens", value: "1 A V-1", prefixable: true},
	{symbol: "Wb", name: "weber", value: "1 V s", prefixable: true},
	{symbol: "T", name: "tesla", value: "1 Wb m-2", prefixable: true},
	{symbol: "H", name: "henry", value: "1 Wb A-1", prefixable: true},
	{symbol: "lm", name: "lumen", value: "1 cd sr", prefixable: true},
	{symbol: "lx", name: "lux", value: "1 lm m-2", prefixable: true},
	{symbol: "Bq", name: "becquerel", value: "1 s-1", prefixable: true},
	{symbol: "Gy", name: "gray", value: "1 J kg-1", prefixable: true},
	{symbol: "Sv", name: "sievert", value: "1 J kg-1", prefixable: true},
	{symbol: "kat", name: "katal", value: "1 mol s-1", prefixable: true},

	{symbol: "min", name: "minute", value: "60 s"},
	{symbol: "h", name: "hour", value: "60 min"},
	{symbol: "d", name: "day", value: "24 h"},
	{symbol: "au", name: "astronomical unit", value: "149597870700 m"},
	{symbol: "ha", name: "hectare", value: "10000 m2"},
	{symbol: "L", name: "litre", value: "0.001 m3", prefixable: true, aliases: []string{"l", "liter"}},
	{symbol: "t", name: "tonne", value: "1000 kg", prefixable: true},
	{symbol: "Da", name: "dalton", value: "1.66053906660E-27 kg", prefixable: true},
	{symbol: "eV", name: "electronvolt", value: "1.602176634E-19 J", prefixable: true},
	{symbol: "°", name: "degree", value: "0.01745329251994329576923690768 rad", noSpace: true, aliases: []string{"deg"}},
	{symbol: "′", name: "arcminute", value: "0.0002908882086657215961539484614 rad", noSpace: true, aliases: []string{"arcmin"}},
	{symbol: "″", name: "arcsecond", value: "0.000004848136811095359935899141023 rad", noSpace: true, aliases: []string{"arcsec"}},

	{symbol: "in", name: "inch", value: "0.0254 m"},
	{symbol: "ft", name: "foot", value: "0.3048 m"},
	{symbol: "yd", name: "yard", value: "0.9144 m"},
	{symbol: "mi", name: "mile", value: "1609.344 m"},
	{symbol: "lb", name: "pound", value: "0.45359237 kg"},
	{symbol: "oz", name: "ounce", value: "28.349523125 g"},
	{symbol: "cal", name: "calorie", value: "4.184 J", prefixable: true},
	{symbol: "atm", name: "atmosphere", value: "101325 Pa"},
	{symbol: "bar", name: "bar", value: "100000 Pa", prefixable: true},
	{symbol: "mmHg", name: "millimetre of mercury", value: "133.322387415 Pa"},
	{symbol: "Å", name: "ångström", value: "1E-10 m", aliases: []string{"angstrom"}},

	{symbol: "wk", name: "week", value: "7 d"},
	{name: "fortnight", value: "14 d"},

	{symbol: "%", name: "percent", value: "0.01", noSpace: true},
	{symbol: "‰", name: "permille", value: "0.001", noSpace: true},
	{symbol: "ppm", name: "part per million", value: "1E-6"},
	{symbol: "ppb", name: "part per billion", value: "1E-9"},

	{symbol: "B", name: "byte", value: "8 bit", prefixable: true},
	{name: "nibble", value: "4 bit"},

	{symbol: "°C", name: "degree Celsius", value: "1 K", offset: "-273.15", aliases: []string{"degC"}},
	{symbol: "°F", name: "degree Fahrenheit", value: "5 K", divisor: "9", offset: "-459.67", aliases: []string{"degF"}},
	{symbol: "°Re", name: "degree Réaumur", value: "1.25 K", offset: "-218.52"},
	{symbol: "°R", name: "degree Rankine", value: "5 K", divisor: "9"},
}

func (r *Registry) loadStandard() error {
	for _, p := range metricPrefixes {
		var aliases []string
		if p.symbol == "µ" {
			// Greek mu, and u for ASCII text.
			aliases = []string{"μ", "u"}
		}
		if err := r.AddPrefix(quant.MakePrefix(p.symbol, p.name, quant.MustDec(p.factor)), aliases...); err != nil {
			return err
		}
	}
	for i, p := range binaryPrefixes {
		f, err := quant.DecFromInt64(1024).PowInt(int64(i + 1))
		if err != nil {
			return err
		}
		if err := r.AddPrefix(quant.MakePrefix(p.symbol, p.name, f)); err != nil {
			return err
		}
	}
	for _, u := range baseUnits {
		if err := r.AddUnit(u, u.Symbol() != "kg"); err != nil {
			return err
		}
	}
	for _, d := range standardUnits {
		if err := r.Define(d.symbol, d.name, d.value, d.options()...); err != nil {
			return fmt.Errorf("define %s: %w", d.name, err)
		}
	}
	if err := r.loadLogUnits(); err != nil {
		return err
	}
	return r.loadConstants()
}

func (d def) options() []DefineOption {
	var opts []DefineOption
	if d.prefixable {
		opts = append(opts, Prefixable())
	}
	if d.noSpace {
		opts = append(opts, NoSpace())
	}
	if d.offset != "" {
		opts = append(opts, Offset(quant.MustDec(d.offset)))
	}
	if d.divisor != "" {
		opts = append(opts, Divisor(quant.MustDec(d.divisor)))
	}
	if len(d.aliases) > 0 {
		opts = append(opts, Aliases(d.aliases...))
	}
	return opts
}

// DefineOption configures Define.
type DefineOption func(*defineOptions)

type defineOptions struct {
	prefixable bool
	divisor    quant.Decimal
	unitOpts   []quant.UnitOption
	aliases    []string
}

func Prefixable() DefineOption { return func(o *defineOptions) { o.prefixable = true } }

func NoSpace() DefineOption {
	return func(o *defineOptions) { o.unitOpts = append(o.unitOpts, quant.WithoutSpace()) }
}

// Offset makes the unit a temperature scale whose absolute zero reads as offset.
func Offset(offset quant.Decimal) DefineOption {
	return func(o *defineOptions) { o.unitOpts = append(o.unitOpts, quant.WithOffset(offset)) }
}

// Divisor divides the defined value by d without rounding: Define("°R", "degree
// Rankine", "5 K", Divisor(9)).
func Divisor(d quant.Decimal) DefineOption {
	return func(o *defineOptions) { o.divisor = d }
}

func Aliases(names ...string) DefineOption {
	return func(o *defineOptions) { o.aliases = append(o.aliases, names...) }
}

// Define adds a unit equal to the quantity value, for example
// Define("kn", "knot", "1852 m h-1"). The value is parsed with this registry.
func (r *Registry) Define(symbol, name, value string, opts ...DefineOption) error {
	var o defineOptions
	for _, f := range opts {
		f(&o)
	}
	q, err := r.ParseQuantity(value)
	if err != nil {
		return err
	}
	num, den, err := q.Unit().ScaleParts()
	if err != nil {
		return err
	}
	if num, err = q.Number().Mul(num); err != nil {
		return err
	}
	if !o.divisor.IsZero() {
		if den, err = den.Mul(o.divisor); err != nil {
			return err
		}
	}
	if !o.prefixable {
		o.unitOpts = append(o.unitOpts, quant.Unprefixable())
	}
	o.unitOpts = append(o.unitOpts, quant.WithScaleDivisor(den.Reduce()))
	u := quant.MakeUnit(symbol, name, q.Dimensions(), num.Reduce(), o.unitOpts...)
	return r.AddUnit(u, o.prefixable, o.aliases...)
}

func (r *Registry) loadLogUnits() error {
	bel := quant.MakeLogUnit("B", "bel", quant.DecFromInt64(10), quant.DecFromInt64(1))
	neper := quant.MakeLogUnit("Np", "neper", quant.Decimal{}, quant.DecFromInt64(1))
	deci, err := r.Prefix("d")
	if err != nil {
		return err
	}
	decibel, err := deci.ApplyLog(bel)
	if err != nil {
		return err
	}
	if err := r.AddLogUnit(bel); err != nil {
		return err
	}
	if err := r.AddLogUnit(neper); err != nil {
		return err
	}
	if err := r.AddLogUnit(decibel); err != nil {
		return err
	}
	refs := []struct{ suffix, ref string }{
		{"m", "1 mW"},
		{"W", "1 W"},
		{"V", "1 V"},
	}
	for _, ref := range refs {
		q, err := r.ParseQuantity(ref.ref)
		if err != nil {
			return err
		}
		if err := r.AddLogUnit(decibel.WithReference(q, ref.suffix)); err != nil {
			return err
		}
	}
	return nil
}
