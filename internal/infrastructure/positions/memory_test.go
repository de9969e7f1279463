package positions

import (
	"context"
	"sync"
	"testing"

	trading "main/internal/domain/entity/trading"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGetUnknownSymbol(t *testing.T) {
	store := NewMemoryStore()

	position, err := store.Get(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, trading.Position{}, position)
}

func TestMemoryStoreApplyAccumulates(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Apply(ctx, "AAPL", trading.Delta{Quantity: -10, Pnl: -1000}))
	require.NoError(t, store.Apply(ctx, "AAPL", trading.Delta{Quantity: 5, Pnl: 550}))
	require.NoError(t, store.Apply(ctx, "MSFT", trading.Delta{Quantity: 3, Pnl: 150}))

	aapl, err := store.Get(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int64(-5), aapl.NetQuantity)
	assert.InDelta(t, -450.0, aapl.Pnl, 1e-9)

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, int64(3), all["MSFT"].NetQuantity)
}

func TestMemoryStoreConcurrentApply(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	const goroutines = 16
	const applies = 100

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < applies; i++ {
				if err := store.Apply(ctx, "AAPL", trading.Delta{Quantity: 1, Pnl: 0.5}); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	position, err := store.Get(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int64(goroutines*applies), position.NetQuantity)
	assert.InDelta(t, float64(goroutines*applies)*0.5, position.Pnl, 1e-6)
}
