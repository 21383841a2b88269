package quant_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chandan-cmd-dev/quant-go/quant"
)

func TestUncorrelatedAddition(t *testing.T) {
	s, err := uncertain("3", quant.Metre, "0.1").Add(uncertain("2", quant.Metre, "0.2"))
	require.NoError(t, err)
	requireDec(t, "5", s.Number())
	requireDec(t, "0.2236067977499789696409173669", s.UncertaintyNumber())
}

func TestCorrelatedSubtraction(t *testing.T) {
	d, err := uncertain("3", quant.Metre, "0.1").Sub(uncertain("2", quant.Metre, "0.2"), quant.WithCorrelation(dec("1")))
	require.NoError(t, err)
	requireDec(t, "1", d.Number())
	require.True(t, d.UncertaintyNumber().Equal(dec("0.1")))
}

func TestExactOperandsStayExact(t *testing.T) {
	p, err := quant.Metre.Of("3").Mul(quant.Second.Of("2"))
	require.NoError(t, err)
	require.False(t, p.HasUncertainty())

	s, err := quant.Metre.Of("3").Add(uncertain("2", quant.Metre, "0.2"))
	require.NoError(t, err)
	requireDec(t, "0.2", s.UncertaintyNumber())
}

func TestProductUncertainty(t *testing.T) {
	p, err := uncertain("2", quant.Metre, "0.1").Mul(quant.Second.Of("3"))
	require.NoError(t, err)
	require.True(t, p.UncertaintyNumber().Equal(dec("0.3")), "got %s", p.UncertaintyNumber())

	q, err := uncertain("20", quant.Metre, "2").Div(uncertain("30", quant.Second, "3"))
	require.NoError(t, err)
	// Both relative uncertainties are 0.1: 2/3 × sqrt(0.02).
	u, err := quant.RoundToFigures(q.UncertaintyNumber(), 6, quant.RoundHalfUp, true)
	require.NoError(t, err)
	requireDec(t, "0.0942809", u)
}

func TestPowerUncertainty(t *testing.T) {
	sq, err := uncertain("20", quant.Metre, "2").PowInt(2)
	require.NoError(t, err)
	requireDec(t, "400", sq.Number())
	require.True(t, sq.UncertaintyNumber().Equal(dec("80")), "got %s", sq.UncertaintyNumber())

	inv, err := uncertain("4", quant.Second, "0.2").Inverse()
	require.NoError(t, err)
	requireDec(t, "0.25", inv.Number())
	require.True(t, inv.UncertaintyNumber().Equal(dec("0.0125")))
	require.Equal(t, "s⁻¹", inv.Unit().Symbol())
}

func TestTranscendentalUncertainty(t *testing.T) {
	x := quant.MakeQuantity(dec("2"), quant.Unitless, dec("0.1"))

	ln, err := x.Ln()
	require.NoError(t, err)
	require.True(t, ln.UncertaintyNumber().Equal(dec("0.05")))

	e, err := quant.MakeQuantity(dec("0"), quant.Unitless, dec("0.1")).Exp()
	require.NoError(t, err)
	require.True(t, e.Number().Equal(dec("1")))
	require.True(t, e.UncertaintyNumber().Equal(dec("0.1")))

	lg, err := x.Log10()
	require.NoError(t, err)
	u, err := quant.RoundToFigures(lg.UncertaintyNumber(), 4, quant.RoundHalfUp, true)
	require.NoError(t, err)
	requireDec(t, "0.02171", u)
}

func TestScalingByExactNumber(t *testing.T) {
	q, err := uncertain("1.5", quant.Metre, "0.1").MulNumber(dec("-3"))
	require.NoError(t, err)
	requireDec(t, "-4.5", q.Number())
	requireDec(t, "0.3", q.UncertaintyNumber())

	d, err := q.DivNumber(dec("3"))
	require.NoError(t, err)
	requireDec(t, "-1.5", d.Number())
	requireDec(t, "0.1", d.UncertaintyNumber())
}
