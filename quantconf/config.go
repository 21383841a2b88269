// Package quantconf loads rounding, arithmetic and printing settings, and custom
// unit and constant definitions, from TOML, YAML or commented JSON files.
//
//	[config.rounding]
//	ROUNDING_MODE = "ROUND_HALF_EVEN"
//	NDIGITS_FIGURES = 4
//
//	[units.derived]
//	thaum.symbol = "thm"
//	thaum.value.number = "3.595e16"
//	thaum.value.unit = "J"
package quantconf

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/chandan-cmd-dev/quant-go/quant"
	"github.com/chandan-cmd-dev/quant-go/quantfmt"
	"github.com/chandan-cmd-dev/quant-go/units"
)

// FileName is the name Find looks for.
const FileName = "quant.toml"

// EnvVar names a config file that takes precedence over the search.
const EnvVar = "QUANT_CONFIG"

var ErrUnsupportedFormat = errors.New("quantconf: unsupported config format")

type Format int

const (
	FormatTOML Format = iota
	FormatYAML
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	}
	return "toml"
}

// DetectFormat picks the format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json", ".jsonc":
		return FormatJSON, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// File is the contents of a config file. Settings left out of the file are nil and
// keep their defaults.
type File struct {
	Config    Settings               `toml:"config" yaml:"config" json:"config"`
	Units     Units                  `toml:"units,omitempty" yaml:"units,omitempty" json:"units,omitempty"`
	Constants map[string]ConstantDef `toml:"constants,omitempty" yaml:"constants,omitempty" json:"constants,omitempty"`
}

type Settings struct {
	Rounding   Rounding   `toml:"rounding" yaml:"rounding" json:"rounding"`
	Arithmetic Arithmetic `toml:"arithmetic" yaml:"arithmetic" json:"arithmetic"`
	Printing   Printing   `toml:"printing" yaml:"printing" json:"printing"`
}

type Rounding struct {
	Mode               *quant.RoundingMode `toml:"ROUNDING_MODE,omitempty" yaml:"ROUNDING_MODE,omitempty" json:"ROUNDING_MODE,omitempty"`
	Pad                *bool               `toml:"ROUND_PAD,omitempty" yaml:"ROUND_PAD,omitempty" json:"ROUND_PAD,omitempty"`
	IfExact            *quant.Method       `toml:"ROUND_TO_IF_EXACT,omitempty" yaml:"ROUND_TO_IF_EXACT,omitempty" json:"ROUND_TO_IF_EXACT,omitempty"`
	IfUncertainty      *quant.Method       `toml:"ROUND_TO_IF_UNCERTAINTY,omitempty" yaml:"ROUND_TO_IF_UNCERTAINTY,omitempty" json:"ROUND_TO_IF_UNCERTAINTY,omitempty"`
	NDigitsPlaces      *int                `toml:"NDIGITS_PLACES,omitempty" yaml:"NDIGITS_PLACES,omitempty" json:"NDIGITS_PLACES,omitempty"`
	NDigitsFigures     *int                `toml:"NDIGITS_FIGURES,omitempty" yaml:"NDIGITS_FIGURES,omitempty" json:"NDIGITS_FIGURES,omitempty"`
	NDigitsUncertainty *int                `toml:"NDIGITS_UNCERTAINTY,omitempty" yaml:"NDIGITS_UNCERTAINTY,omitempty" json:"NDIGITS_UNCERTAINTY,omitempty"`
}

type Arithmetic struct {
	AutoCancel *bool `toml:"AUTO_CANCEL,omitempty" yaml:"AUTO_CANCEL,omitempty" json:"AUTO_CANCEL,omitempty"`
}

type Printing struct {
	UnicodeSuperscripts *bool   `toml:"UNICODE_SUPERSCRIPTS,omitempty" yaml:"UNICODE_SUPERSCRIPTS,omitempty" json:"UNICODE_SUPERSCRIPTS,omitempty"`
	UncertaintyStyle    *string `toml:"UNCERTAINTY_STYLE,omitempty" yaml:"UNCERTAINTY_STYLE,omitempty" json:"UNCERTAINTY_STYLE,omitempty"`
	GroupDigits         *int    `toml:"GROUP_DIGITS,omitempty" yaml:"GROUP_DIGITS,omitempty" json:"GROUP_DIGITS,omitempty"`
	GroupSeparator      *string `toml:"GROUP_SEPARATOR,omitempty" yaml:"GROUP_SEPARATOR,omitempty" json:"GROUP_SEPARATOR,omitempty"`
}

// Units holds custom unit definitions keyed by unit name.
type Units struct {
	Derived     map[string]UnitDef `toml:"derived,omitempty" yaml:"derived,omitempty" json:"derived,omitempty"`
	Temperature map[string]UnitDef `toml:"temperature,omitempty" yaml:"temperature,omitempty" json:"temperature,omitempty"`
}

// UnitDef defines a unit as a multiple of a quantity, optionally divided exactly by
// Divisor. Offset is the reading of absolute zero and only applies to temperature
// scales.
type UnitDef struct {
	Symbol     string   `toml:"symbol,omitempty" yaml:"symbol,omitempty" json:"symbol,omitempty"`
	Name       string   `toml:"name,omitempty" yaml:"name,omitempty" json:"name,omitempty"`
	Value      ValueDef `toml:"value" yaml:"value" json:"value"`
	Offset     string   `toml:"offset,omitempty" yaml:"offset,omitempty" json:"offset,omitempty"`
	Divisor    string   `toml:"divisor,omitempty" yaml:"divisor,omitempty" json:"divisor,omitempty"`
	Prefixable bool     `toml:"prefixable,omitempty" yaml:"prefixable,omitempty" json:"prefixable,omitempty"`
	AltNames   []string `toml:"alt_names,omitempty" yaml:"alt_names,omitempty" json:"alt_names,omitempty"`
}

type ConstantDef struct {
	Symbol   string   `toml:"symbol,omitempty" yaml:"symbol,omitempty" json:"symbol,omitempty"`
	Name     string   `toml:"name,omitempty" yaml:"name,omitempty" json:"name,omitempty"`
	Value    ValueDef `toml:"value" yaml:"value" json:"value"`
	AltNames []string `toml:"alt_names,omitempty" yaml:"alt_names,omitempty" json:"alt_names,omitempty"`
}

// ValueDef is a quantity spelled out: number, unit text and optional uncertainty.
type ValueDef struct {
	Number      string `toml:"number" yaml:"number" json:"number"`
	Unit        string `toml:"unit,omitempty" yaml:"unit,omitempty" json:"unit,omitempty"`
	Uncertainty string `toml:"uncertainty,omitempty" yaml:"uncertainty,omitempty" json:"uncertainty,omitempty"`
}

func (v ValueDef) text() string {
	s := v.Number
	if v.Uncertainty != "" {
		s += " ± " + v.Uncertainty
	}
	return s + " " + v.Unit
}

// Load reads a config file. Environment variables in path are expanded.
func Load(path string) (*File, error) {
	path = os.ExpandEnv(path)
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, format)
}

// Parse decodes config data in the given format.
func Parse(data []byte, format Format) (*File, error) {
	var f File
	var err error
	switch format {
	case FormatTOML:
		_, err = toml.Decode(string(data), &f)
	case FormatYAML:
		err = yaml.Unmarshal(data, &f)
	case FormatJSON:
		err = quant.UnmarshalJSONWithComments(data, &f)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s config: %w", format, err)
	}
	if err := f.Config.Printing.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Apply overlays the settings in f on base.
func (f *File) Apply(base quant.Config) quant.Config {
	r := f.Config.Rounding
	set(&base.RoundingMode, r.Mode)
	set(&base.Pad, r.Pad)
	set(&base.RoundIfExact, r.IfExact)
	set(&base.RoundIfUncertainty, r.IfUncertainty)
	set(&base.NDigitsPlaces, r.NDigitsPlaces)
	set(&base.NDigitsFigures, r.NDigitsFigures)
	set(&base.NDigitsUncertainty, r.NDigitsUncertainty)
	set(&base.AutoCancel, f.Config.Arithmetic.AutoCancel)
	return base
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Quant returns the default configuration with f applied.
func (f *File) Quant() quant.Config { return f.Apply(quant.DefaultConfig()) }

func (p Printing) validate() error {
	if p.UncertaintyStyle == nil {
		return nil
	}
	switch strings.ToUpper(*p.UncertaintyStyle) {
	case "PLUSMINUS", "PARENTHESES":
		return nil
	}
	return fmt.Errorf("%w: uncertainty style %q", quant.ErrParse, *p.UncertaintyStyle)
}

// FormatOptions turns the printing settings into quantfmt options.
func (f *File) FormatOptions() []quantfmt.Option {
	p := f.Config.Printing
	var opts []quantfmt.Option
	if p.UnicodeSuperscripts != nil && !*p.UnicodeSuperscripts {
		opts = append(opts, quantfmt.WithASCII())
	}
	if p.UncertaintyStyle != nil && strings.EqualFold(*p.UncertaintyStyle, "PARENTHESES") {
		opts = append(opts, quantfmt.WithUncertaintyStyle(quantfmt.Parentheses))
	}
	if p.GroupDigits != nil && *p.GroupDigits > 0 {
		sep := " "
		if p.GroupSeparator != nil {
			sep = *p.GroupSeparator
		}
		opts = append(opts, quantfmt.WithGrouping(sep))
	}
	return opts
}

// Register defines the units and constants of f in r. Entries are added in name
// order within each table; derived units first, then temperature scales, then
// constants, so later tables may refer to earlier ones.
func (f *File) Register(r *units.Registry) error {
	for _, key := range sortedKeys(f.Units.Derived) {
		if err := defineUnit(r, key, f.Units.Derived[key], false); err != nil {
			return err
		}
	}
	for _, key := range sortedKeys(f.Units.Temperature) {
		if err := defineUnit(r, key, f.Units.Temperature[key], true); err != nil {
			return err
		}
	}
	for _, key := range sortedKeys(f.Constants) {
		c := f.Constants[key]
		name := c.Name
		if name == "" {
			name = key
		}
		q, err := r.ParseQuantity(c.Value.text())
		if err != nil {
			return fmt.Errorf("constant %s: %w", key, err)
		}
		if err := r.AddConstant(units.Constant{Symbol: c.Symbol, Name: name, Value: q}, c.AltNames...); err != nil {
			return err
		}
	}
	return nil
}

func defineUnit(r *units.Registry, key string, d UnitDef, temperature bool) error {
	name := d.Name
	if name == "" {
		name = key
	}
	var opts []units.DefineOption
	if d.Prefixable {
		opts = append(opts, units.Prefixable())
	}
	if len(d.AltNames) > 0 {
		opts = append(opts, units.Aliases(d.AltNames...))
	}
	if d.Divisor != "" {
		x, err := quant.DecFromString(d.Divisor)
		if err != nil {
			return fmt.Errorf("unit %s divisor: %w", key, err)
		}
		opts = append(opts, units.Divisor(x))
	}
	if temperature {
		off := d.Offset
		if off == "" {
			off = "0"
		}
		x, err := quant.DecFromString(off)
		if err != nil {
			return fmt.Errorf("unit %s offset: %w", key, err)
		}
		opts = append(opts, units.Offset(x))
	}
	if err := r.Define(d.Symbol, name, d.Value.text(), opts...); err != nil {
		return fmt.Errorf("unit %s: %w", key, err)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FromConfig captures every setting of c, so that Save writes a complete file.
func FromConfig(c quant.Config) *File {
	var f File
	r := &f.Config.Rounding
	r.Mode, r.Pad = &c.RoundingMode, &c.Pad
	r.IfExact, r.IfUncertainty = &c.RoundIfExact, &c.RoundIfUncertainty
	r.NDigitsPlaces, r.NDigitsFigures, r.NDigitsUncertainty = &c.NDigitsPlaces, &c.NDigitsFigures, &c.NDigitsUncertainty
	f.Config.Arithmetic.AutoCancel = &c.AutoCancel
	return &f
}

// Save writes f to path as TOML.
func Save(path string, f *File) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(f); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Find returns the first config file found: the file named by QUANT_CONFIG, then
// quant.toml in dirs, the working directory and its parents, and finally the
// user config directory.
func Find(dirs ...string) (string, bool) {
	if p := os.Getenv(EnvVar); p != "" {
		return p, true
	}
	var candidates []string
	candidates = append(candidates, dirs...)
	if wd, err := os.Getwd(); err == nil {
		for d := wd; ; d = filepath.Dir(d) {
			candidates = append(candidates, d)
			if filepath.Dir(d) == d {
				break
			}
		}
	}
	if d, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(d, "quant"))
	}
	for _, d := range candidates {
		p := filepath.Join(d, FileName)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}
