// Package catalogtest holds the behaviour every catalog.Store must share.
package catalogtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/charge-engine/catalog"
)

// Run exercises a fresh store returned by newStore.
func Run(t *testing.T, newStore func(t *testing.T) catalog.Store) {
	t.Run("SaveThenGet", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		saved, err := s.Save(ctx, catalog.Record{ID: "interest", Name: "Interest", ConfigJSON: `{"identifier":"interest"}`})
		require.NoError(t, err)
		assert.Equal(t, 1, saved.Version)
		assert.False(t, saved.CreatedAt.IsZero())

		got, err := s.Get(ctx, "interest")
		require.NoError(t, err)
		assert.Equal(t, "Interest", got.Name)
		assert.Equal(t, `{"identifier":"interest"}`, got.ConfigJSON)
		assert.Equal(t, 1, got.Version)
	})

	t.Run("SaveExistingBumpsVersion", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		first, err := s.Save(ctx, catalog.Record{ID: "fee", Name: "Fee", ConfigJSON: `{"amount":"1"}`})
		require.NoError(t, err)
		second, err := s.Save(ctx, catalog.Record{ID: "fee", Name: "Fee v2", ConfigJSON: `{"amount":"2"}`})
		require.NoError(t, err)

		assert.Equal(t, 2, second.Version)
		assert.Equal(t, `{"amount":"2"}`, second.ConfigJSON)
		assert.True(t, first.CreatedAt.Equal(second.CreatedAt), "creation time survives updates")

		all, err := s.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := newStore(t).Get(context.Background(), "nope")
		assert.ErrorIs(t, err, catalog.ErrNotFound)
	})

	t.Run("ListOrderedByName", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		for _, r := range []catalog.Record{
			{ID: "b", Name: "Late Fee", ConfigJSON: "{}"},
			{ID: "a", Name: "Interest", ConfigJSON: "{}"},
			{ID: "c", Name: "Processing Fee", ConfigJSON: "{}"},
		} {
			_, err := s.Save(ctx, r)
			require.NoError(t, err)
		}

		all, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{"a", "b", "c"}, []string{all[0].ID, all[1].ID, all[2].ID})
	})

	t.Run("Delete", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		_, err := s.Save(ctx, catalog.Record{ID: "x", Name: "X", ConfigJSON: "{}"})
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, "x"))
		_, err = s.Get(ctx, "x")
		assert.ErrorIs(t, err, catalog.ErrNotFound)
		assert.ErrorIs(t, s.Delete(ctx, "x"), catalog.ErrNotFound)
	})
}
