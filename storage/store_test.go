package storage

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/racers/neural"
)

func testNetwork(seed int64) *neural.Network {
	rng := rand.New(rand.NewSource(seed))
	return neural.NewNetwork(rng, neural.Topology{
		Inputs:           11,
		Hidden:           []int{4},
		Outputs:          3,
		OutputActivation: neural.Sigmoid,
	}, neural.InitRanges{Weight: 0.75, Bias: 0.25})
}

// storeFactories lists every backend; each test runs against all of them.
func storeFactories(t *testing.T) map[string]func() Store {
	return map[string]func() Store{
		"memory": func() Store { return NewMemoryStore() },
		"sqlite": func() Store {
			return NewSQLiteStore(filepath.Join(t.TempDir(), "champions.db"))
		},
	}
}

func TestStore_SaveAndBest(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory()
			require.NoError(t, store.Init(ctx))
			t.Cleanup(func() { _ = store.Close() })

			_, ok, err := store.BestChampion(ctx, "")
			require.NoError(t, err)
			assert.False(t, ok, "empty store should have no champion")

			runA, runB := NewRunID(), NewRunID()
			require.NotEqual(t, runA, runB)

			champions := []Champion{
				{RunID: runA, Generation: 0, CarID: 3, Fitness: 1200, Network: testNetwork(1)},
				{RunID: runA, Generation: 1, CarID: 7, Fitness: 4100, Network: testNetwork(2)},
				{RunID: runB, Generation: 0, CarID: 1, Fitness: 5000, Network: testNetwork(3)},
				{RunID: runA, Generation: 2, CarID: 2, Fitness: 4100, Network: testNetwork(4)},
			}
			for _, c := range champions {
				require.NoError(t, store.SaveChampion(ctx, c))
			}

			best, ok, err := store.BestChampion(ctx, runA)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, 1, best.Generation, "ties go to the earliest saved")
			assert.Equal(t, 7, best.CarID)
			assert.Equal(t, champions[1].Network.Layers, best.Network.Layers)

			overall, ok, err := store.BestChampion(ctx, "")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, runB, overall.RunID)
			assert.Equal(t, 5000, overall.Fitness)
		})
	}
}

func TestStore_ChampionsInGenerationOrder(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory()
			require.NoError(t, store.Init(ctx))
			t.Cleanup(func() { _ = store.Close() })

			run := NewRunID()
			for _, gen := range []int{2, 0, 1} {
				require.NoError(t, store.SaveChampion(ctx, Champion{
					RunID: run, Generation: gen, Fitness: gen * 10, Network: testNetwork(int64(gen)),
				}))
			}
			// Saving the same generation again replaces it.
			require.NoError(t, store.SaveChampion(ctx, Champion{
				RunID: run, Generation: 1, Fitness: 99, Network: testNetwork(9),
			}))

			list, err := store.Champions(ctx, run)
			require.NoError(t, err)
			require.Len(t, list, 3)
			for i, c := range list {
				assert.Equal(t, i, c.Generation)
			}
			assert.Equal(t, 99, list[1].Fitness)

			other, err := store.Champions(ctx, NewRunID())
			require.NoError(t, err)
			assert.Empty(t, other)
		})
	}
}

func TestStore_NotInitialized(t *testing.T) {
	ctx := context.Background()
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory()
			err := store.SaveChampion(ctx, Champion{RunID: "r", Network: testNetwork(1)})
			assert.ErrorIs(t, err, ErrNotInitialized)
		})
	}
}

func TestMemoryStore_CopiesNetworks(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Init(ctx))

	nn := testNetwork(5)
	want := nn.Layers[0].Weights[0]
	require.NoError(t, store.SaveChampion(ctx, Champion{RunID: "r", Fitness: 1, Network: nn}))
	nn.Layers[0].Weights[0] = 123

	best, ok, err := store.BestChampion(ctx, "r")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, best.Network.Layers[0].Weights[0])
}

func TestSQLiteStore_RequiresPath(t *testing.T) {
	store := NewSQLiteStore("")
	assert.Error(t, store.Init(context.Background()))
}

func TestSQLiteStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "champions.db")

	first := NewSQLiteStore(path)
	require.NoError(t, first.Init(ctx))
	nn := testNetwork(11)
	require.NoError(t, first.SaveChampion(ctx, Champion{RunID: "run", Generation: 4, Fitness: 777, Network: nn}))
	require.NoError(t, first.Close())

	second := NewSQLiteStore(path)
	require.NoError(t, second.Init(ctx))
	t.Cleanup(func() { _ = second.Close() })

	best, ok, err := second.BestChampion(ctx, "")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 777, best.Fitness)
	assert.Equal(t, nn.Layers, best.Network.Layers)
}

func TestNewStore(t *testing.T) {
	s, err := NewStore("memory", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = NewStore("sqlite", "x.db")
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)

	_, err = NewStore("postgres", "")
	assert.Error(t, err)
}
