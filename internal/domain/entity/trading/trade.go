package trading

import (
	"time"

	"github.com/google/uuid"
)

// Side represents the BUY/SELL direction of a trade order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Valid reports whether the side is one of the two known values.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// TradeEvent is the immutable queue payload produced at ingestion. Identity is
// TradeID; the same event may be delivered to the aggregator more than once.
type TradeEvent struct {
	TradeID   uuid.UUID `json:"tradeId"`
	Symbol    string    `json:"symbol"`
	Side      Side      `json:"side"`
	Quantity  int64     `json:"quantity"`
	Price     float64   `json:"price"`
	Timestamp int64     `json:"timestamp"`
}

// TradeRecord is the durable counterpart of a TradeEvent, keyed by trade id.
// It is the source of truth for analytics and audit.
type TradeRecord struct {
	TradeID   uuid.UUID `json:"tradeId"`
	Symbol    string    `json:"symbol"`
	Side      Side      `json:"side"`
	Quantity  int64     `json:"quantity"`
	Price     float64   `json:"price"`
	TradeTime time.Time `json:"tradeTime"`
}

// Record converts the event into its durable form, pinning the trade time to
// the producer-assigned timestamp.
func (e TradeEvent) Record() TradeRecord {
	return TradeRecord{
		TradeID:   e.TradeID,
		Symbol:    e.Symbol,
		Side:      e.Side,
		Quantity:  e.Quantity,
		Price:     e.Price,
		TradeTime: time.UnixMilli(e.Timestamp),
	}
}
