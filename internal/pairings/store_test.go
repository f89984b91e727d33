package pairings_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/leimap/internal/pairings"
	"github.com/agentstation/leimap/pkg/entities"
)

func match(entity, lei string) *entities.Match {
	return &entities.Match{Entity: entity, LEI: lei, Score: 0.9}
}

func stores(t *testing.T) map[string]pairings.Store {
	t.Helper()
	b, err := pairings.OpenBolt(filepath.Join(t.TempDir(), "nested", "pairings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return map[string]pairings.Store{
		"memory": pairings.NewMemory(),
		"bolt":   b,
	}
}

func TestStore(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			count, err := store.Save(ctx, []entities.Pairing{
				{Target: "Tesla", Selected: match("TESLA, INC.", "54930043XZGB27CTOV49")},
				{Target: "Apple", Selected: match("APPLE INC.", "HWUPKR0MPOU8FGXBT394")},
				{Target: "", Selected: match("ignored", "X")},
				{Target: "Nobody"},
			})
			require.NoError(t, err)
			assert.Equal(t, 2, count)

			count, err = store.Save(ctx, []entities.Pairing{
				{Target: "Apple", Selected: match("APPLE OPERATIONS", "549300QJ5VYFXY1Z1G86")},
			})
			require.NoError(t, err)
			assert.Equal(t, 2, count, "saving a target again replaces it")

			list, err := store.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "Apple", list[0].Target)
			assert.Equal(t, "549300QJ5VYFXY1Z1G86", list[0].Selected.LEI)
			assert.Equal(t, "Tesla", list[1].Target)
			assert.Equal(t, "TESLA, INC.", list[1].Selected.Entity)

			require.NoError(t, store.Reset(ctx))
			list, err = store.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}

func TestStoreCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Save(ctx, nil)
			assert.ErrorIs(t, err, context.Canceled)
			_, err = store.List(ctx)
			assert.ErrorIs(t, err, context.Canceled)
		})
	}
}

func TestBoltPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pairings.db")
	ctx := context.Background()

	b, err := pairings.OpenBolt(path)
	require.NoError(t, err)
	_, err = b.Save(ctx, []entities.Pairing{{Target: "3M", Selected: match("3M COMPANY", "LUZQVYP4VS22CLWDAR65")}})
	require.NoError(t, err)
	require.NoError(t, b.Close())

	b, err = pairings.OpenBolt(path)
	require.NoError(t, err)
	defer b.Close()
	assert.Equal(t, path, b.Path())

	list, err := b.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "LUZQVYP4VS22CLWDAR65", list[0].Selected.LEI)
}
