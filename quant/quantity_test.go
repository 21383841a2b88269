package quant_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chandan-cmd-dev/quant-go/quant"
)

func TestAddConvertsToLeftUnit(t *testing.T) {
	s, err := quant.Metre.Of("4").Add(cm.Of("50"))
	require.NoError(t, err)
	requireDec(t, "4.50", s.Number())
	require.True(t, s.Unit().Identical(quant.Metre))
	assert.Equal(t, "4.50 m", s.String())
}

func TestAddMismatchedUnits(t *testing.T) {
	s, err := quant.Metre.Of("4").Add(quant.Kilogram.Of("3"))
	require.ErrorIs(t, err, quant.ErrMismatchedUnits)
	require.Contains(t, err.Error(), "m and kg")
	require.True(t, s.Number().IsZero())
}

func TestAdditionCommutesAndAssociates(t *testing.T) {
	a, b, c := quant.Metre.Of("1.5"), cm.Of("25"), foot.Of("2")
	ab, err := a.Add(b)
	require.NoError(t, err)
	ba, err := b.Add(a)
	require.NoError(t, err)
	require.True(t, ab.Equal(ba))

	abc, err := ab.Add(c)
	require.NoError(t, err)
	bc, err := b.Add(c)
	require.NoError(t, err)
	abc2, err := a.Add(bc)
	require.NoError(t, err)
	require.True(t, abc.Equal(abc2), "%s != %s", abc, abc2)
}

func TestZeroQuantitiesAreEqual(t *testing.T) {
	zeros := []quant.Quantity{
		quant.Metre.Of("0"), quant.Kilogram.Of("0.00"), celsius.Of("0"),
		quant.Dimensionless(dec("0")), joule.Div(watt).Of("0"),
	}
	for _, a := range zeros {
		for _, b := range zeros {
			require.True(t, a.Equal(b), "%s != %s", a, b)
		}
	}
	require.False(t, quant.Metre.Of("0").Equal(quant.Metre.Of("1")))
}

func TestSignificancePreserved(t *testing.T) {
	q := quant.Metre.Of("1.30")
	require.Equal(t, "1.30 m", q.String())
	d, err := quant.Metre.Of("0.15").Sub(quant.Metre.Of("0.05"))
	require.NoError(t, err)
	require.Equal(t, "0.10 m", d.String())
}

func TestMulDiv(t *testing.T) {
	v, err := quant.Metre.Of("10").Div(quant.Second.Of("4"))
	require.NoError(t, err)
	requireDec(t, "2.5", v.Number())
	require.Equal(t, "m s⁻¹", v.Unit().Symbol())

	a, err := v.Mul(quant.Second.Of("2"))
	require.NoError(t, err)
	require.True(t, a.Unit().Identical(quant.Metre), "auto cancel left %s", a.Unit())

	b, err := v.Mul(quant.Second.Of("2"), quant.WithAutoCancel(false))
	require.NoError(t, err)
	require.Equal(t, "m s⁻¹ s", b.Unit().Symbol())
	require.True(t, a.Equal(b))

	_, err = v.Div(quant.Second.Of("0"))
	require.ErrorIs(t, err, quant.ErrDivisionByZero)
}

func TestEqualityIgnoresUncertaintyAndUnit(t *testing.T) {
	require.True(t, km.Of("1").Equal(quant.Metre.Of("1000")))
	require.True(t, uncertain("1", km, "0.1").Equal(quant.Metre.Of("1000")))
	require.False(t, quant.Metre.Of("1").Equal(quant.Second.Of("1")))
	require.True(t, quant.Dimensionless(dec("0.5")).EqualNumber(dec("0.50")))
	require.Equal(t, km.Of("1").Key(), quant.Metre.Of("1000.0").Key())
}

func TestCmp(t *testing.T) {
	c, err := km.Of("1").Cmp(quant.Metre.Of("999"))
	require.NoError(t, err)
	require.Equal(t, 1, c)

	_, err = quant.Metre.Of("1").Cmp(quant.Kilogram.Of("1"))
	require.ErrorIs(t, err, quant.ErrMismatchedDimensions)
}

func TestPow(t *testing.T) {
	a, err := quant.Metre.Of("3").PowInt(2)
	require.NoError(t, err)
	requireDec(t, "9", a.Number())
	require.Equal(t, "m²", a.Unit().Symbol())

	r, err := quant.Metre.PowInt(4).Of("16").Pow(quant.Frac(1, 2))
	require.NoError(t, err)
	requireDec(t, "4", r.Number())
	require.Equal(t, quant.DimOf(quant.Length, 2), r.Dimensions())

	_, err = quant.Metre.Of("2").Pow(quant.Frac(1, 2))
	require.ErrorIs(t, err, quant.ErrFractionalDimension)

	p, err := quant.Metre.Of("2").PowQuantity(quant.Dimensionless(dec("3")))
	require.NoError(t, err)
	requireDec(t, "8", p.Number())

	_, err = quant.Dimensionless(dec("2")).PowQuantity(quant.Metre.Of("3"))
	require.ErrorIs(t, err, quant.ErrNotDimensionless)
}

func TestTranscendentalsNeedDimensionless(t *testing.T) {
	m := quant.Metre.Of("2")
	for name, f := range map[string]func() (quant.Quantity, error){
		"sqrt":  m.Sqrt,
		"exp":   m.Exp,
		"ln":    m.Ln,
		"log10": m.Log10,
	} {
		_, err := f()
		require.ErrorIs(t, err, quant.ErrNotDimensionless, name)
	}

	s, err := quant.Dimensionless(dec("16")).Sqrt()
	require.NoError(t, err)
	requireDec(t, "4", s.Number())

	// A ratio of lengths is dimensionless once expanded.
	ratio, err := km.Of("1").Div(quant.Metre.Of("10"))
	require.NoError(t, err)
	l, err := ratio.Log10()
	require.NoError(t, err)
	require.True(t, l.Number().Equal(dec("2")))
}

func TestBaseAndAsUnit(t *testing.T) {
	e, err := kW.Mul(day).Times(dec("3")).Base()
	require.NoError(t, err)
	require.True(t, e.Number().Equal(dec("259200000")))
	require.Equal(t, dimEnergy, e.Dimensions())

	c := quant.Metre.Div(quant.Second).Of("299792458")
	cu, err := c.AsUnit("c", "speed of light")
	require.NoError(t, err)
	half, err := quant.Convert(cu.Of("0.5"), quant.Metre.Div(quant.Second))
	require.NoError(t, err)
	requireDec(t, "149896229.0", half.Number())
}

func TestResolutionAndUncertaintyAccessors(t *testing.T) {
	q := uncertain("4.52", quant.Metre, "-0.02")
	require.Equal(t, "0.01 m", q.Resolution().String())
	require.Equal(t, "0.02 m", q.Uncertainty().String())
	require.Equal(t, "4.52 ± 0.02 m", q.String())

	p, err := quant.Metre.Of("4.52").PlusMinus(cm.Of("2"))
	require.NoError(t, err)
	requireDec(t, "0.02", p.UncertaintyNumber())

	_, err = quant.Metre.Of("4.52").PlusMinus(quant.Second.Of("1"))
	require.ErrorIs(t, err, quant.ErrMismatchedDimensions)
}
