package trading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignedDelta(t *testing.T) {
	tests := []struct {
		name        string
		side        Side
		quantity    int64
		price       float64
		wantQty     int64
		wantPnl     float64
	}{
		{"buy draws down", SideBuy, 10, 100.0, -10, -1000.0},
		{"sell tops up", SideSell, 5, 110.0, 5, 550.0},
		{"single unit buy", SideBuy, 1, 0.5, -1, -0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta := SignedDelta(tt.side, tt.quantity, tt.price)
			assert.Equal(t, tt.wantQty, delta.Quantity)
			assert.InDelta(t, tt.wantPnl, delta.Pnl, 1e-9)
		})
	}
}

func TestPositionApply(t *testing.T) {
	// BUY 10 @ 100.0 then SELL 5 @ 110.0 -> netQuantity -5, pnl -450.0.
	var position Position
	position = position.Apply(SignedDelta(SideBuy, 10, 100.0))
	position = position.Apply(SignedDelta(SideSell, 5, 110.0))

	assert.Equal(t, int64(-5), position.NetQuantity)
	assert.InDelta(t, -450.0, position.Pnl, 1e-9)
}

func TestSideValid(t *testing.T) {
	assert.True(t, SideBuy.Valid())
	assert.True(t, SideSell.Valid())
	assert.False(t, Side("HOLD").Valid())
	assert.False(t, Side("").Valid())
	assert.False(t, Side("buy").Valid())
}
