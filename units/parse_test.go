package units_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chandan-cmd-dev/quant-go/quant"
	"github.com/chandan-cmd-dev/quant-go/units"
)

func TestParseUnitForms(t *testing.T) {
	r := units.Default()
	velocity := quant.DimOf(quant.Length, 1).Add(quant.DimOf(quant.Time, -1))
	heatCapacity := quant.DimOf(quant.Length, 2).Add(quant.DimOf(quant.Time, -2)).Add(quant.DimOf(quant.Thermodynamic, -1))
	tests := []struct {
		text string
		dims quant.Dimensions
	}{
		{"m s-1", velocity},
		{"m·s⁻¹", velocity},
		{"m⋅s^-1", velocity},
		{"m*s**-1", velocity},
		{"m / s", velocity},
		{"m/s", velocity},
		{"(m) (s⁻¹)", velocity},
		{"J / kg K", heatCapacity},
		{"J kg-1 K-1", heatCapacity},
		{"m1/2 m1/2", quant.DimOf(quant.Length, 1)},
		{"m¹⁄₂ m¹⁄₂", quant.DimOf(quant.Length, 1)},
		{"kg m2 s-2", quant.DimOf(quant.Mass, 1).Add(quant.DimOf(quant.Length, 2)).Add(quant.DimOf(quant.Time, -2))},
		{"degree Celsius", quant.DimOf(quant.Thermodynamic, 1)},
		{"astronomical unit", quant.DimOf(quant.Length, 1)},
		{"", quant.NoDimensions},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			u, err := r.ParseUnit(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.dims, u.Dimensions())
		})
	}
}

func TestParseUnitKeepsFactorOrder(t *testing.T) {
	r := units.Default()
	u := r.MustParseUnit("J / kg K")
	assert.Equal(t, "J kg⁻¹ K⁻¹", u.Symbol())
	assert.Equal(t, "km h⁻¹", r.MustParseUnit("km/h").Symbol())
}

func TestParseUnitErrors(t *testing.T) {
	r := units.Default()
	tests := []struct {
		text string
		err  error
	}{
		{"m / s / s", quant.ErrParse},
		{"furlong", units.ErrUnknown},
		{"m^x", quant.ErrParse},
		{"m1/0", quant.ErrParse},
		{"m¹⁄₂", quant.ErrFractionalDimension},
		{"/", quant.ErrParse},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			_, err := r.ParseUnit(tt.text)
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestParseQuantityForms(t *testing.T) {
	r := units.Default()
	tests := []struct {
		text, number, uncertainty, unit string
	}{
		{"4.5 m", "4.5", "0", "m"},
		{"4.5m", "4.5", "0", "m"},
		{"-4.5 m", "-4.5", "0", "m"},
		{"−4.5 m", "-4.5", "0", "m"},
		{"4.52(2) m", "4.52", "0.02", "m"},
		{"4.52(0.02) m", "4.52", "0.02", "m"},
		{"4.52 ± 0.02 m", "4.52", "0.02", "m"},
		{"4.52 +/- 0.02 m", "4.52", "0.02", "m"},
		{"(4.52 ± 0.02) m", "4.52", "0.02", "m"},
		{"1.5E3 J kg-1", "1500", "0", "J kg⁻¹"},
		{"6.67430(15)E-11 m3 kg-1 s-2", "6.67430E-11", "1.5E-15", "m³ kg⁻¹ s⁻²"},
		{"25 °C", "25", "0", "°C"},
		{"90°", "90", "0", "°"},
		{"42", "42", "0", ""},
		{".5 L", "0.5", "0", "L"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			q, err := r.ParseQuantity(tt.text)
			require.NoError(t, err)
			requireNumber(t, tt.number, q.Number())
			requireNumber(t, tt.uncertainty, q.UncertaintyNumber())
			assert.Equal(t, tt.unit, q.Unit().Symbol())
		})
	}
}

func TestParseQuantityErrors(t *testing.T) {
	r := units.Default()
	for _, text := range []string{
		"",
		"m",
		"4.5 2 m",
		"4.5(2) ± 0.1 m",
		"(4.5 ± 0.1 m",
		"4.5 ± m",
		"4.5 parsecs",
	} {
		t.Run(text, func(t *testing.T) {
			_, err := r.ParseQuantity(text)
			require.ErrorIs(t, err, quant.ErrParse)
		})
	}
}

func TestParsedTemperatureIsADifference(t *testing.T) {
	r := units.Default()
	q := r.MustParseQuantity("25 °C")
	k, err := q.To(quant.Kelvin)
	require.NoError(t, err)
	requireNumber(t, "25", k.Number())

	// The point on the scale comes from OnScale.
	p, err := quant.NewTemperature(q.Number(), q.Unit())
	require.NoError(t, err)
	abs, err := p.Absolute()
	require.NoError(t, err)
	requireNumber(t, "298.15", abs.Number())
}

func TestDecodeValueDocs(t *testing.T) {
	r := units.Default()

	v, err := r.DecodeValue([]byte(`{"@type": "quantity", "number": "9.81", "unit": "m s⁻²", "uncertainty": "0.02", /* g */}`))
	require.NoError(t, err)
	q, ok := v.(quant.Quantity)
	require.True(t, ok)
	requireNumber(t, "9.81", q.Number())
	requireNumber(t, "0.02", q.UncertaintyNumber())

	v, err = r.DecodeValue([]byte(`{"@type": "temperature", "number": 25, "unit": "°C"}`))
	require.NoError(t, err)
	temp, ok := v.(quant.Temperature)
	require.True(t, ok)
	abs, err := temp.Absolute()
	require.NoError(t, err)
	requireNumber(t, "298.15", abs.Number())

	v, err = r.DecodeValue([]byte(`{"@type": "log", "number": "30", "unit": "dBm"}`))
	require.NoError(t, err)
	l, ok := v.(quant.LogQuantity)
	require.True(t, ok)
	lin, err := l.Absolute()
	require.NoError(t, err)
	w, err := lin.To(r.MustUnit("W"))
	require.NoError(t, err)
	w, err = w.RoundToFigures(6)
	require.NoError(t, err)
	requireNumber(t, "1", w.Number())

	_, err = r.DecodeValue([]byte(`{"@type": "vector", "number": "1"}`))
	require.ErrorIs(t, err, quant.ErrParse)
	_, err = r.DecodeValue([]byte(`{"@type": "log", "number": "1", "unit": "dBZ"}`))
	require.ErrorIs(t, err, quant.ErrParse)
}

func TestValuesSurviveJSON(t *testing.T) {
	r := units.Default()
	q := r.MustParseQuantity("4.52(2) km h-1")
	temp := quant.MustTemperature(quant.MustDec("-40"), r.MustUnit("°F"))
	l, err := quant.NewLogQuantity(quant.MustDec("3"), r.MustLookup("dB").(quant.LogUnit)).
		WithUncertainty(quant.Dimensionless(quant.MustDec("0.1")))
	require.NoError(t, err)

	for _, v := range []quant.Value{q, temp, l} {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		back, err := r.DecodeValue(b)
		require.NoError(t, err)
		assert.True(t, quant.Equal(v, back), "%s became %s", v, back)
		assert.Equal(t, v.String(), back.String())
	}
}

func TestResolveWalksDocuments(t *testing.T) {
	r := units.Default()
	var doc any
	require.NoError(t, json.Unmarshal([]byte(`{
		"sample": "A-17",
		"readings": [
			{"@type": "quantity", "number": "1.25", "unit": "mm"},
			{"@type": "temperature", "number": "21.5", "unit": "°C"}
		],
		"meta": {"@type": "note", "text": "kept"}
	}`), &doc))

	out, err := r.Resolve(doc)
	require.NoError(t, err)
	m := out.(map[string]any)
	assert.Equal(t, "A-17", m["sample"])
	readings := m["readings"].([]any)
	require.Len(t, readings, 2)
	assert.IsType(t, quant.Quantity{}, readings[0])
	assert.IsType(t, quant.Temperature{}, readings[1])
	assert.Equal(t, "kept", m["meta"].(map[string]any)["text"])

	_, err = r.Resolve(map[string]any{"x": []any{map[string]any{"@type": "quantity", "number": "1", "unit": "parsec"}}})
	require.ErrorIs(t, err, quant.ErrParse)
}
