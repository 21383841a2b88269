package quant_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chandan-cmd-dev/quant-go/quant"
)

var (
	kilo  = quant.MakePrefix("k", "kilo", quant.NewDecimal(1, 3))
	centi = quant.MakePrefix("c", "centi", quant.NewDecimal(1, -2))
	milli = quant.MakePrefix("m", "milli", quant.NewDecimal(1, -3))
	deci  = quant.MakePrefix("d", "deci", quant.NewDecimal(1, -1))

	dimEnergy = quant.DimOf(quant.Length, 2).Add(quant.DimOf(quant.Mass, 1)).Add(quant.DimOf(quant.Time, -2))
	dimPower  = dimEnergy.Add(quant.DimOf(quant.Time, -1))

	foot   = quant.MakeUnit("ft", "foot", quant.DimOf(quant.Length, 1), quant.MustDec("0.3048"))
	day    = quant.MakeUnit("d", "day", quant.DimOf(quant.Time, 1), quant.DecFromInt64(86400))
	joule  = quant.MakeUnit("J", "joule", dimEnergy, quant.DecFromInt64(1))
	watt   = quant.MakeUnit("W", "watt", dimPower, quant.DecFromInt64(1))
	gram   = quant.MakeUnit("g", "gram", quant.DimOf(quant.Mass, 1), quant.NewDecimal(1, -3))
	degree = quant.MakeUnit("°", "degree", quant.DimOf(quant.Angle, 1), quant.MustDec("0.01745329251994329576923690768"), quant.WithoutSpace())

	celsius    = quant.MakeUnit("°C", "degree Celsius", quant.DimOf(quant.Thermodynamic, 1), quant.DecFromInt64(1), quant.WithOffset(quant.MustDec("-273.15")))
	fahrenheit = quant.MakeUnit("°F", "degree Fahrenheit", quant.DimOf(quant.Thermodynamic, 1), quant.DecFromInt64(5), quant.WithScaleDivisor(quant.DecFromInt64(9)), quant.WithOffset(quant.MustDec("-459.67")))
	rankine    = quant.MakeUnit("°R", "degree Rankine", quant.DimOf(quant.Thermodynamic, 1), quant.DecFromInt64(5), quant.WithScaleDivisor(quant.DecFromInt64(9)))

	bel     = quant.MakeLogUnit("B", "bel", quant.DecFromInt64(10), quant.DecFromInt64(1))
	neper   = quant.MakeLogUnit("Np", "neper", quant.Decimal{}, quant.DecFromInt64(1))
	decibel = mustLog(deci.ApplyLog(bel))
)

func mustUnit(u quant.Unit, err error) quant.Unit {
	if err != nil {
		panic(err)
	}
	return u
}

func mustLog(u quant.LogUnit, err error) quant.LogUnit {
	if err != nil {
		panic(err)
	}
	return u
}

var (
	km = mustUnit(kilo.Apply(quant.Metre))
	cm = mustUnit(centi.Apply(quant.Metre))
	mm = mustUnit(milli.Apply(quant.Metre))
	kW = mustUnit(kilo.Apply(watt))
)

func dec(s string) quant.Decimal { return quant.MustDec(s) }

// requireDec compares the exact decimal text, trailing zeros included.
func requireDec(t *testing.T, want string, got quant.Decimal) {
	t.Helper()
	require.Equal(t, want, got.String())
}

func uncertain(n string, u quant.Unit, unc string) quant.Quantity {
	return quant.MakeQuantity(dec(n), u, dec(unc))
}
