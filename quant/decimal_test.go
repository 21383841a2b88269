package quant_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chandan-cmd-dev/quant-go/quant"
)

func TestDecimalKeepsSignificantDigits(t *testing.T) {
	requireDec(t, "1.30", dec("1.30"))
	d, err := dec("0.15").Sub(dec("0.05"))
	require.NoError(t, err)
	requireDec(t, "0.10", d)
}

func TestDecimalFromFloatUsesShortestText(t *testing.T) {
	d, err := quant.DecFromFloat64(4.01)
	require.NoError(t, err)
	requireDec(t, "4.01", d)
}

func TestDecimalExactQuotientsAtIdealExponent(t *testing.T) {
	cases := []struct{ a, b, want string }{
		{"100", "25", "4"},
		{"1", "4", "0.25"},
		{"1.30", "1", "1.30"},
		{"6", "3", "2"},
	}
	for _, c := range cases {
		t.Run(c.a+"/"+c.b, func(t *testing.T) {
			q, err := dec(c.a).Quo(dec(c.b))
			require.NoError(t, err)
			requireDec(t, c.want, q)
		})
	}
	r, err := dec("4").Sqrt()
	require.NoError(t, err)
	requireDec(t, "2", r)
}

func TestDecimalErrors(t *testing.T) {
	_, err := dec("1").Quo(dec("0"))
	require.ErrorIs(t, err, quant.ErrDivisionByZero)

	_, err = dec("-8").PowRatio(quant.Frac(1, 2))
	require.ErrorIs(t, err, quant.ErrComplexResult)

	_, err = dec("-1").Sqrt()
	require.ErrorIs(t, err, quant.ErrComplexResult)

	_, err = dec("-1").Ln()
	require.ErrorIs(t, err, quant.ErrComplexResult)

	_, err = dec("0").Ln()
	require.ErrorIs(t, err, quant.ErrUndefinedResult)

	_, err = quant.DecFromString("abc")
	require.ErrorIs(t, err, quant.ErrParse)
}

func TestDecimalPowers(t *testing.T) {
	p, err := dec("2").PowInt(10)
	require.NoError(t, err)
	requireDec(t, "1024", p)

	p, err = dec("9").PowRatio(quant.Frac(3, 2))
	require.NoError(t, err)
	requireDec(t, "27", p)

	p, err = dec("2").PowInt(-2)
	require.NoError(t, err)
	requireDec(t, "0.25", p)

	for _, tc := range []struct {
		x    string
		e    quant.Ratio
		want string
	}{
		{"2", quant.Frac(3, 2), "2.828427124746190097603377448"},
		{"2", quant.Frac(2, 3), "1.587401051968199474751705639"},
		{"8", quant.Frac(2, 3), "4"},
		{"0.25", quant.Frac(1, 2), "0.5"},
	} {
		p, err := dec(tc.x).PowRatio(tc.e)
		require.NoError(t, err)
		requireDec(t, tc.want, p)
	}

	l, err := dec("1000").Log10()
	require.NoError(t, err)
	require.True(t, l.Equal(dec("3")))
}

func TestDecimalZeroValue(t *testing.T) {
	var z quant.Decimal
	require.True(t, z.IsZero())
	require.Equal(t, "0", z.String())
	s, err := z.Add(dec("1.5"))
	require.NoError(t, err)
	requireDec(t, "1.5", s)
}
