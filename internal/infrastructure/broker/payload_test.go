package broker

import (
	"testing"
	"time"

	trading "main/internal/domain/entity/trading"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEventAcceptsEncodedEvent(t *testing.T) {
	event := trading.TradeEvent{
		TradeID:   uuid.New(),
		Symbol:    "AAPL",
		Side:      trading.SideBuy,
		Quantity:  10,
		Price:     100.5,
		Timestamp: time.Now().UnixMilli(),
	}

	payload, err := encodeEvent(event)
	require.NoError(t, err)

	decoded, err := decodeEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, event, decoded)
}

func TestDecodeEventWireFormat(t *testing.T) {
	payload := []byte(`{
		"tradeId": "6b3f0b5c-8a6f-4f10-9f0a-1f6f2d9a1c11",
		"symbol": "MSFT",
		"side": "SELL",
		"quantity": 3,
		"price": 42.5,
		"timestamp": 1770000000000
	}`)

	event, err := decodeEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, "6b3f0b5c-8a6f-4f10-9f0a-1f6f2d9a1c11", event.TradeID.String())
	assert.Equal(t, trading.SideSell, event.Side)
	assert.Equal(t, int64(3), event.Quantity)
}

func TestDecodeEventRejectsPoisonPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `{"tradeId":`},
		{"missing trade id", `{"symbol":"AAPL","side":"BUY","quantity":1,"price":1}`},
		{"empty symbol", `{"tradeId":"6b3f0b5c-8a6f-4f10-9f0a-1f6f2d9a1c11","symbol":"","side":"BUY","quantity":1,"price":1}`},
		{"unknown side", `{"tradeId":"6b3f0b5c-8a6f-4f10-9f0a-1f6f2d9a1c11","symbol":"AAPL","side":"HOLD","quantity":1,"price":1}`},
		{"zero quantity", `{"tradeId":"6b3f0b5c-8a6f-4f10-9f0a-1f6f2d9a1c11","symbol":"AAPL","side":"BUY","quantity":0,"price":1}`},
		{"negative price", `{"tradeId":"6b3f0b5c-8a6f-4f10-9f0a-1f6f2d9a1c11","symbol":"AAPL","side":"BUY","quantity":1,"price":-2}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeEvent([]byte(tt.payload))
			assert.Error(t, err)
		})
	}
}
