package trading

// Position tracks the running state for one symbol. The zero value is the
// position of a symbol that has never traded.
type Position struct {
	NetQuantity int64   `json:"netQuantity"`
	Pnl         float64 `json:"pnl"`
}

// Delta is the position change contributed by a single trade event.
type Delta struct {
	Quantity int64
	Pnl      float64
}

// SignedDelta computes the quantity/PnL change for one trade. BUY subtracts the
// quantity and quantity*price, SELL adds both: the book is kept from the
// inventory's point of view, so a BUY draws the desk down and a SELL tops it
// up. Both the aggregator and the analytics engine must go through this
// function; keeping a second copy of the sign logic anywhere is how the two
// views drift apart.
func SignedDelta(side Side, quantity int64, price float64) Delta {
	if side == SideBuy {
		return Delta{
			Quantity: -quantity,
			Pnl:      -float64(quantity) * price,
		}
	}
	return Delta{
		Quantity: quantity,
		Pnl:      float64(quantity) * price,
	}
}

// Apply folds a delta into the position.
func (p Position) Apply(d Delta) Position {
	return Position{
		NetQuantity: p.NetQuantity + d.Quantity,
		Pnl:         p.Pnl + d.Pnl,
	}
}
