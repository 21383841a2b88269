// Package storetest checks that a store.Store behaves like the others.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chandan-cmd-dev/quant-go/quant"
	"github.com/chandan-cmd-dev/quant-go/store"
)

// Records returns three records of different kinds with distinct creation times.
func Records() []store.Record {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	celsius := quant.MakeUnit("°C", "degree Celsius", quant.DimOf(quant.Thermodynamic, 1), quant.MustDec("1"),
		quant.WithOffset(quant.MustDec("-273.15")), quant.Unprefixable())
	bel := quant.MakeLogUnit("B", "bel", quant.DecFromInt64(10), quant.DecFromInt64(1))
	return []store.Record{
		{
			ID:      uuid.MustParse("0b6c3a1e-8f43-4d2c-9a55-1a2b3c4d5e01"),
			Label:   "rod length",
			Value:   quant.Metre.Of("4.52").WithUncertainty(quant.MustDec("0.02")),
			Created: base,
		},
		{
			ID:      uuid.MustParse("0b6c3a1e-8f43-4d2c-9a55-1a2b3c4d5e02"),
			Label:   "bath",
			Value:   quant.MustTemperature(quant.MustDec("21.5"), celsius),
			Created: base.Add(time.Minute),
		},
		{
			ID:      uuid.MustParse("0b6c3a1e-8f43-4d2c-9a55-1a2b3c4d5e03"),
			Label:   "gain",
			Value:   quant.NewLogQuantity(quant.MustDec("0.3"), bel),
			Created: base.Add(2 * time.Minute),
		},
	}
}

// Run exercises s, which must start empty.
func Run(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()
	recs := Records()

	t.Run("empty", func(t *testing.T) {
		list, err := s.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
		_, err = s.Get(ctx, recs[0].ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("put and get", func(t *testing.T) {
		// Put out of order; List sorts by creation time.
		for _, i := range []int{2, 0, 1} {
			require.NoError(t, s.Put(ctx, recs[i]))
		}
		for _, want := range recs {
			got, err := s.Get(ctx, want.ID)
			require.NoError(t, err)
			assert.Equal(t, want.ID, got.ID)
			assert.Equal(t, want.Label, got.Label)
			assert.True(t, want.Created.Equal(got.Created))
			assert.True(t, quant.Equal(want.Value, got.Value), "%s became %s", want.Value, got.Value)
			assert.Equal(t, want.Value.String(), got.Value.String())
		}
	})

	t.Run("duplicate", func(t *testing.T) {
		require.ErrorIs(t, s.Put(ctx, recs[0]), store.ErrExists)
	})

	t.Run("list", func(t *testing.T) {
		list, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, len(recs))
		for i := range recs {
			assert.Equal(t, recs[i].ID, list[i].ID)
		}
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, recs[1].ID))
		require.ErrorIs(t, s.Delete(ctx, recs[1].ID), store.ErrNotFound)
		_, err := s.Get(ctx, recs[1].ID)
		require.ErrorIs(t, err, store.ErrNotFound)
		list, err := s.List(ctx)
		require.NoError(t, err)
		assert.Len(t, list, len(recs)-1)
	})
}
