package quant_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chandan-cmd-dev/quant-go/quant"
)

func TestValueDispatch(t *testing.T) {
	v, err := quant.Add(quant.Metre.Of("1"), cm.Of("20"))
	require.NoError(t, err)
	require.Equal(t, "1.20 m", v.String())

	v, err = quant.Div(quant.Metre.Of("3"), quant.Second.Of("2"))
	require.NoError(t, err)
	require.Equal(t, "1.5 m s⁻¹", v.String())

	_, err = quant.Sub(quant.Metre.Of("1"), quant.Second.Of("1"))
	require.ErrorIs(t, err, quant.ErrMismatchedUnits)

	require.True(t, quant.Equal(km.Of("1"), quant.Metre.Of("1000")))
	require.False(t, quant.Equal(quant.Dimensionless(dec("1")), quant.NewLogQuantity(dec("0"), bel)))
}

func TestConcurrentRoundingWithDifferentModes(t *testing.T) {
	var wg sync.WaitGroup
	q := quant.Metre.Of("1.25")
	modes := map[quant.RoundingMode]string{
		quant.RoundHalfUp:   "1.3 m",
		quant.RoundHalfEven: "1.2 m",
		quant.RoundCeiling:  "1.3 m",
		quant.RoundFloor:    "1.2 m",
	}
	for mode, want := range modes {
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(mode quant.RoundingMode, want string) {
				defer wg.Done()
				r, err := q.RoundToPlaces(1, quant.WithMode(mode))
				if err != nil {
					t.Error(err)
					return
				}
				if r.String() != want {
					t.Errorf("%s: got %s, want %s", mode, r, want)
				}
			}(mode, want)
		}
	}
	wg.Wait()
}
