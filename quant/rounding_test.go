package quant_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chandan-cmd-dev/quant-go/quant"
)

func TestRoundHalfAwayFromZero(t *testing.T) {
	cases := []struct{ in, want string }{
		{"1.25", "1.3"},
		{"1.65", "1.7"},
		{"-1.65", "-1.7"},
		{"-1.25", "-1.3"},
		{"1.24", "1.2"},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, err := quant.RoundToPlaces(dec(c.in), 1, quant.RoundHalfUp, true)
			require.NoError(t, err)
			requireDec(t, c.want, got)
		})
	}
}

func TestRoundingModes(t *testing.T) {
	cases := []struct {
		mode quant.RoundingMode
		in   string
		want string
	}{
		{quant.RoundHalfEven, "1.25", "1.2"},
		{quant.RoundHalfEven, "1.35", "1.4"},
		{quant.RoundHalfDown, "1.25", "1.2"},
		{quant.RoundUp, "1.21", "1.3"},
		{quant.RoundDown, "-1.29", "-1.2"},
		{quant.RoundCeiling, "-1.29", "-1.2"},
		{quant.RoundFloor, "-1.21", "-1.3"},
	}
	for _, c := range cases {
		t.Run(c.mode.String()+" "+c.in, func(t *testing.T) {
			got, err := quant.RoundToPlaces(dec(c.in), 1, c.mode, true)
			require.NoError(t, err)
			requireDec(t, c.want, got)
		})
	}
}

func TestRoundingModeDoesNotLeakIntoArithmetic(t *testing.T) {
	before, err := dec("2").Quo(dec("3"))
	require.NoError(t, err)
	_, err = quant.RoundToPlaces(dec("2.5"), 0, quant.RoundFloor, true)
	require.NoError(t, err)
	after, err := dec("2").Quo(dec("3"))
	require.NoError(t, err)
	requireDec(t, "0.6666666666666666666666666667", after)
	requireDec(t, before.String(), after)
}

func TestPadding(t *testing.T) {
	p, err := quant.RoundToPlaces(dec("1.2"), 3, quant.RoundHalfUp, true)
	require.NoError(t, err)
	requireDec(t, "1.200", p)

	p, err = quant.RoundToPlaces(dec("1.2"), 3, quant.RoundHalfUp, false)
	require.NoError(t, err)
	requireDec(t, "1.2", p)

	f, err := quant.RoundToFigures(dec("-4"), 3, quant.RoundHalfUp, true)
	require.NoError(t, err)
	requireDec(t, "-4.00", f)

	f, err = quant.RoundToFigures(dec("4"), 3, quant.RoundHalfUp, false)
	require.NoError(t, err)
	requireDec(t, "4", f)
}

func TestRoundToFigures(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"543.8826", 3, "544"},
		{"543.8826", 5, "543.88"},
		{"9.96", 2, "10"},
		{"0.0012345", 2, "0.0012"},
		{"123456", 2, "1.2E+5"},
	}
	for _, c := range cases {
		got, err := quant.RoundToFigures(dec(c.in), c.n, quant.RoundHalfUp, true)
		require.NoError(t, err)
		requireDec(t, c.want, got)
	}
}

func TestRoundToUncertainty(t *testing.T) {
	x, u, err := quant.RoundToUncertainty(dec("5.0478"), dec("0.0234"), 1, quant.RoundHalfUp, true)
	require.NoError(t, err)
	requireDec(t, "5.05", x)
	requireDec(t, "0.02", u)

	x, u, err = quant.RoundToUncertainty(dec("5"), dec("0.0234"), 2, quant.RoundHalfUp, true)
	require.NoError(t, err)
	requireDec(t, "5.000", x)
	requireDec(t, "0.023", u)

	x, u, err = quant.RoundToUncertainty(dec("5"), dec("0.0234"), 2, quant.RoundHalfUp, false)
	require.NoError(t, err)
	requireDec(t, "5", x)
	requireDec(t, "0.023", u)

	x, u, err = quant.RoundToUncertainty(dec("5.0478"), quant.Decimal{}, 1, quant.RoundHalfUp, true)
	require.NoError(t, err)
	requireDec(t, "5.0478", x)
	require.True(t, u.IsZero())
}

func TestQuantityRound(t *testing.T) {
	exact, err := quant.Metre.Of("543.8826").Round()
	require.NoError(t, err)
	require.Equal(t, "544 m", exact.String())

	withU, err := uncertain("543.8826", quant.Metre, "0.0234").Round()
	require.NoError(t, err)
	require.Equal(t, "543.88 ± 0.02 m", withU.String())

	places, err := quant.Metre.Of("543.8826").Round(quant.WithMethod(quant.MethodPlaces))
	require.NoError(t, err)
	require.Equal(t, "543.88 m", places.String())

	figs, err := quant.Metre.Of("543.8826").Round(quant.WithDigits(5))
	require.NoError(t, err)
	require.Equal(t, "543.88 m", figs.String())

	cfg := quant.DefaultConfig()
	cfg.RoundIfExact = quant.MethodPlaces
	cfg.NDigitsPlaces = 1
	cfg.RoundingMode = quant.RoundFloor
	c, err := quant.Metre.Of("-1.21").Round(quant.WithConfig(cfg))
	require.NoError(t, err)
	require.Equal(t, "-1.3 m", c.String())

	same, err := quant.Metre.Of("5.0478").RoundToUncertainty(1)
	require.NoError(t, err)
	require.Equal(t, "5.0478 m", same.String())
}

func TestRoundUncertaintyOnly(t *testing.T) {
	q, err := uncertain("543.8826", quant.Metre, "0.023456").RoundUncertainty()
	require.NoError(t, err)
	requireDec(t, "543.8826", q.Number())
	requireDec(t, "0.0235", q.UncertaintyNumber())

	r, err := uncertain("1.5", quant.Metre, "0.2").RoundToResolutionOf(cm.Of("0.01"))
	require.NoError(t, err)
	requireDec(t, "1.50", r.Number())
}

func TestParseRoundingMode(t *testing.T) {
	for in, want := range map[string]quant.RoundingMode{
		"ROUND_HALF_UP": quant.RoundHalfUp,
		"half_even":     quant.RoundHalfEven,
		"Floor":         quant.RoundFloor,
		"ROUND_05UP":    quant.Round05Up,
	} {
		got, err := quant.ParseRoundingMode(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got)
	}
	_, err := quant.ParseRoundingMode("bankers")
	require.ErrorIs(t, err, quant.ErrParse)

	var m quant.Method
	require.NoError(t, m.UnmarshalText([]byte("uncertainty")))
	require.Equal(t, quant.MethodUncertainty, m)
}
