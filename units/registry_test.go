package units_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chandan-cmd-dev/quant-go/quant"
	"github.com/chandan-cmd-dev/quant-go/units"
)

func requireNumber(t *testing.T, want string, got quant.Decimal) {
	t.Helper()
	require.Zerof(t, quant.MustDec(want).Cmp(got), "want %s, got %s", want, got)
}

func TestLookupComposesPrefixes(t *testing.T) {
	r := units.Default()
	tests := []struct {
		name  string
		scale string
	}{
		{"mg", "1E-6"},
		{"km", "1000"},
		{"kilometre", "1000"},
		{"µs", "1E-6"},
		{"us", "1E-6"},
		{"μs", "1E-6"},
		{"dam", "10"},
		{"hPa", "100"},
		{"mL", "1E-6"},
		{"ml", "1E-6"},
		{"KiB", "8192"},
		{"kWh", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := r.Unit(tt.name)
			if tt.scale == "" {
				require.ErrorIs(t, err, units.ErrUnknown)
				return
			}
			require.NoError(t, err)
			s, err := u.Scale()
			require.NoError(t, err)
			requireNumber(t, tt.scale, s)
		})
	}
}

func TestExactNamesWinOverPrefixes(t *testing.T) {
	r := units.Default()
	assert.Equal(t, "minute", r.MustUnit("min").Name())
	assert.Equal(t, "candela", r.MustUnit("cd").Name())
	assert.Equal(t, "hectare", r.MustUnit("ha").Name())
	assert.True(t, r.MustUnit("kg").Identical(quant.Kilogram))

	_, err := r.Unit("mkg")
	require.ErrorIs(t, err, units.ErrUnknown)
	_, err = r.Unit("k°C")
	require.ErrorIs(t, err, units.ErrUnknown)
}

func TestRedefinitionFails(t *testing.T) {
	r := units.Default()
	err := r.AddUnit(quant.MakeUnit("m", "mile marker", quant.DimOf(quant.Length, 1), quant.MustDec("1")), false)
	require.ErrorIs(t, err, units.ErrAlreadyDefined)
	err = r.Define("x", "metre", "1 m")
	require.ErrorIs(t, err, units.ErrAlreadyDefined)
	err = r.DefineConstant("c", "another c", "1 m s-1")
	require.ErrorIs(t, err, units.ErrAlreadyDefined)
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := units.Default(), units.Default()
	require.NoError(t, a.Define("kn", "knot", "1852 m h-1"))

	q, err := a.MustParseQuantity("1 kn").To(a.MustParseUnit("m s-1"))
	require.NoError(t, err)
	q, err = q.RoundToFigures(4)
	require.NoError(t, err)
	requireNumber(t, "0.5144", q.Number())

	_, err = b.Unit("kn")
	require.ErrorIs(t, err, units.ErrUnknown)
}

func TestEmptyRegistry(t *testing.T) {
	r := units.NewRegistry()
	assert.Empty(t, r.Names())
	_, err := r.ParseUnit("m")
	require.ErrorIs(t, err, quant.ErrParse)
}

func TestLookupKinds(t *testing.T) {
	r := units.Default()
	assert.IsType(t, quant.Unit{}, r.MustLookup("J"))
	assert.IsType(t, quant.LogUnit{}, r.MustLookup("dBm"))
	assert.IsType(t, quant.LogUnit{}, r.MustLookup("dB"))
	assert.IsType(t, quant.Unit{}, r.MustLookup("kJ"))
	assert.IsType(t, units.Constant{}, r.MustLookup("N_A"))
	_, err := r.Lookup("furlong")
	require.ErrorIs(t, err, units.ErrUnknown)
}

func TestNamesAndSearch(t *testing.T) {
	r := units.Default()
	names := r.Names()
	assert.IsNonDecreasing(t, names)
	assert.Contains(t, names, "metre")
	assert.Contains(t, names, "dB")
	assert.Contains(t, names, "k_B")

	found := r.Search("METRE")
	assert.Contains(t, found, "metre")
	assert.Contains(t, found, "millimetre of mercury")
	assert.NotContains(t, found, "second")
}

func TestCatalogConversions(t *testing.T) {
	r := units.Default()
	tests := []struct {
		from, to, want string
	}{
		{"1 mi", "ft", "5280"},
		{"1 kW h", "J", "3600000"},
		{"1 atm", "kPa", "101.325"},
		{"1 lb", "oz", "16"},
		{"1 wk", "h", "168"},
		{"2 KiB", "bit", "16384"},
		{"1 d", "min", "1440"},
		{"250 mL", "L", "0.25"},
		{"1 eV", "J", "1.602176634E-19"},
		{"1 kcal", "J", "4184"},
		{"1 ha", "m2", "10000"},
		{"1 N m", "J", "1"},
		{"1 V A", "W", "1"},
		{"50 %", "", "0.5"},
		{"1 T", "Wb m-2", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.from+"→"+tt.to, func(t *testing.T) {
			q, err := r.ParseQuantity(tt.from)
			require.NoError(t, err)
			u, err := r.ParseUnit(tt.to)
			require.NoError(t, err)
			c, err := q.To(u)
			require.NoError(t, err)
			requireNumber(t, tt.want, c.Number())
		})
	}
}

func TestTemperatureScalesInCatalog(t *testing.T) {
	r := units.Default()
	boiling := quant.MustTemperature(quant.MustDec("100"), r.MustUnit("°C"))
	f, err := boiling.OnScale(r.MustUnit("degF"))
	require.NoError(t, err)
	requireNumber(t, "212", f.Number())

	re, err := boiling.OnScale(r.MustUnit("°Re"))
	require.NoError(t, err)
	requireNumber(t, "80", re.Number())

	num, den, err := r.MustUnit("°F").ScaleParts()
	require.NoError(t, err)
	requireNumber(t, "5", num)
	requireNumber(t, "9", den)

	// Rankine is a unit, not a scale with an offset.
	_, hasOffset := r.MustUnit("°R").Offset()
	assert.False(t, hasOffset)
}

func TestConstants(t *testing.T) {
	r := units.Default()
	c, err := r.Constant("speed of light in vacuum")
	require.NoError(t, err)
	assert.False(t, c.Value.HasUncertainty())

	g, err := r.Constant("G")
	require.NoError(t, err)
	requireNumber(t, "6.67430E-11", g.Value.Number())
	requireNumber(t, "1.5E-15", g.Value.UncertaintyNumber())

	// A constant can be used as a unit in text.
	half, err := r.MustParseQuantity("0.5 c").To(r.MustParseUnit("m s-1"))
	require.NoError(t, err)
	requireNumber(t, "149896229", half.Number())

	rr, err := r.Constant("R")
	require.NoError(t, err)
	k, err := r.Constant("k_B")
	require.NoError(t, err)
	na, err := r.Constant("N_A")
	require.NoError(t, err)
	prod, err := k.Value.Mul(na.Value)
	require.NoError(t, err)
	assert.True(t, prod.Equal(rr.Value))
}
