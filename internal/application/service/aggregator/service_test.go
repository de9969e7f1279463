package aggregator

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	trading "main/internal/domain/entity/trading"
	interfaces "main/internal/domain/interfaces"
	"main/internal/infrastructure/positions"
	"main/internal/infrastructure/tradelog"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newEvent(symbol string, side trading.Side, quantity int64, price float64) trading.TradeEvent {
	return trading.TradeEvent{
		TradeID:   uuid.New(),
		Symbol:    symbol,
		Side:      side,
		Quantity:  quantity,
		Price:     price,
		Timestamp: time.Now().UnixMilli(),
	}
}

func TestProcessEventAppliesSignedDeltas(t *testing.T) {
	store := positions.NewMemoryStore()
	log := tradelog.NewMemoryLog()
	service := NewService(store, log, testLogger())
	ctx := context.Background()

	require.NoError(t, service.ProcessEvent(ctx, newEvent("AAPL", trading.SideBuy, 10, 100.0)))
	require.NoError(t, service.ProcessEvent(ctx, newEvent("AAPL", trading.SideSell, 5, 110.0)))

	position, err := store.Get(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int64(-5), position.NetQuantity)
	assert.InDelta(t, -450.0, position.Pnl, 1e-9)
}

func TestProcessEventRedeliveryIsIdempotent(t *testing.T) {
	store := positions.NewMemoryStore()
	log := tradelog.NewMemoryLog()
	service := NewService(store, log, testLogger())
	ctx := context.Background()

	event := newEvent("MSFT", trading.SideSell, 3, 50.0)
	for i := 0; i < 4; i++ {
		require.NoError(t, service.ProcessEvent(ctx, event))
	}

	position, err := store.Get(ctx, "MSFT")
	require.NoError(t, err)
	assert.Equal(t, int64(3), position.NetQuantity, "redelivery must apply exactly once")
	assert.InDelta(t, 150.0, position.Pnl, 1e-9)

	records, err := log.FindByDate(ctx, time.Now())
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestProcessEventTreatsAppendRaceAsApplied(t *testing.T) {
	store := positions.NewMemoryStore()
	log := tradelog.NewMemoryLog()
	service := NewService(store, log, testLogger())
	ctx := context.Background()

	event := newEvent("GOOG", trading.SideBuy, 2, 10.0)
	// Another delivery already wrote the record between our existence check
	// and the append.
	require.NoError(t, log.Append(ctx, event.Record()))

	require.NoError(t, service.ProcessEvent(ctx, event))
}

func TestProcessEventPropagatesStoreFailure(t *testing.T) {
	storeDown := errors.New("store unavailable")
	store := &flakyStore{MemoryStore: positions.NewMemoryStore(), failures: 1, err: storeDown}
	log := tradelog.NewMemoryLog()
	service := NewService(store, log, testLogger())
	ctx := context.Background()

	event := newEvent("TSLA", trading.SideBuy, 1, 200.0)

	err := service.ProcessEvent(ctx, event)
	require.ErrorIs(t, err, storeDown)

	applied, err := log.ExistsByID(ctx, event.TradeID)
	require.NoError(t, err)
	assert.False(t, applied, "failed apply must not reach the log")

	// Redelivery after the outage succeeds and applies exactly once.
	require.NoError(t, service.ProcessEvent(ctx, event))
	position, err := store.Get(ctx, "TSLA")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), position.NetQuantity)
}

func TestProcessEventConcurrentDeliveriesConverge(t *testing.T) {
	store := positions.NewMemoryStore()
	log := tradelog.NewMemoryLog()
	service := NewService(store, log, testLogger())
	ctx := context.Background()

	const workers = 8
	const perWorker = 50

	events := make([]trading.TradeEvent, 0, workers*perWorker)
	var want trading.Position
	for i := 0; i < workers*perWorker; i++ {
		side := trading.SideBuy
		if i%2 == 1 {
			side = trading.SideSell
		}
		event := newEvent("AAPL", side, int64(i%7+1), float64(i%13+1))
		events = append(events, event)
		want = want.Apply(trading.SignedDelta(event.Side, event.Quantity, event.Price))
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(batch []trading.TradeEvent) {
			defer wg.Done()
			for _, event := range batch {
				if err := service.ProcessEvent(ctx, event); err != nil {
					t.Error(err)
					return
				}
			}
		}(events[w*perWorker : (w+1)*perWorker])
	}
	wg.Wait()

	position, err := store.Get(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, want.NetQuantity, position.NetQuantity)
	assert.InDelta(t, want.Pnl, position.Pnl, 1e-6)
}

type flakyStore struct {
	*positions.MemoryStore
	mu       sync.Mutex
	failures int
	err      error
}

var _ interfaces.PositionStore = (*flakyStore)(nil)

func (s *flakyStore) Apply(ctx context.Context, symbol string, delta trading.Delta) error {
	s.mu.Lock()
	if s.failures > 0 {
		s.failures--
		s.mu.Unlock()
		return s.err
	}
	s.mu.Unlock()
	return s.MemoryStore.Apply(ctx, symbol, delta)
}
