package trading

import (
	"context"
	"errors"
	"testing"
	"time"

	entity "main/internal/domain/entity/trading"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	events []entity.TradeEvent
	err    error
}

func (p *capturePublisher) Publish(_ context.Context, event entity.TradeEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func validRequest() TradeRequest {
	return TradeRequest{Symbol: "AAPL", Side: "BUY", Quantity: 10, Price: 100.0}
}

func TestPlaceTradePublishesEvent(t *testing.T) {
	publisher := &capturePublisher{}
	service := NewService(publisher)
	fixed := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	service.now = func() time.Time { return fixed }

	event, err := service.PlaceTrade(context.Background(), validRequest())
	require.NoError(t, err)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, event, publisher.events[0])
	assert.NotEqual(t, uuid.Nil, event.TradeID)
	assert.Equal(t, "AAPL", event.Symbol)
	assert.Equal(t, entity.SideBuy, event.Side)
	assert.Equal(t, int64(10), event.Quantity)
	assert.Equal(t, 100.0, event.Price)
	assert.Equal(t, fixed.UnixMilli(), event.Timestamp)
}

func TestPlaceTradeAssignsUniqueIDs(t *testing.T) {
	publisher := &capturePublisher{}
	service := NewService(publisher)

	first, err := service.PlaceTrade(context.Background(), validRequest())
	require.NoError(t, err)
	second, err := service.PlaceTrade(context.Background(), validRequest())
	require.NoError(t, err)

	assert.NotEqual(t, first.TradeID, second.TradeID)
}

func TestPlaceTradeValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*TradeRequest)
		field   string
	}{
		{"missing symbol", func(r *TradeRequest) { r.Symbol = "  " }, "symbol"},
		{"missing side", func(r *TradeRequest) { r.Side = "" }, "side"},
		{"unknown side", func(r *TradeRequest) { r.Side = "HOLD" }, "side"},
		{"lowercase side", func(r *TradeRequest) { r.Side = "buy" }, "side"},
		{"zero quantity", func(r *TradeRequest) { r.Quantity = 0 }, "quantity"},
		{"negative quantity", func(r *TradeRequest) { r.Quantity = -3 }, "quantity"},
		{"zero price", func(r *TradeRequest) { r.Price = 0 }, "price"},
		{"negative price", func(r *TradeRequest) { r.Price = -1.5 }, "price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publisher := &capturePublisher{}
			service := NewService(publisher)

			req := validRequest()
			tt.mutate(&req)

			_, err := service.PlaceTrade(context.Background(), req)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Fields, tt.field)
			assert.Empty(t, publisher.events, "invalid request must not reach the broker")
		})
	}
}

func TestPlaceTradeCollectsAllFieldErrors(t *testing.T) {
	service := NewService(&capturePublisher{})

	_, err := service.PlaceTrade(context.Background(), TradeRequest{})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Fields, 4)
}

func TestPlaceTradeSurfacesPublishFailure(t *testing.T) {
	brokerDown := errors.New("broker unreachable")
	service := NewService(&capturePublisher{err: brokerDown})

	_, err := service.PlaceTrade(context.Background(), validRequest())
	require.ErrorIs(t, err, brokerDown)
}
