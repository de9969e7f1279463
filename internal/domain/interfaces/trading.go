package interfaces

import (
	"context"
	"errors"
	"time"

	trading "main/internal/domain/entity/trading"

	"github.com/google/uuid"
)

// ErrDuplicateTrade is returned by TradeLog.Append when a record with the same
// trade id already exists. It is the applied-id index the aggregator relies on:
// callers treat it as "already applied", not as a failure.
var ErrDuplicateTrade = errors.New("trade already recorded")

// TradeLog is the append-only durable store of trade records.
type TradeLog interface {
	Append(ctx context.Context, record trading.TradeRecord) error
	FindByDate(ctx context.Context, date time.Time) ([]trading.TradeRecord, error)
	ExistsByID(ctx context.Context, tradeID uuid.UUID) (bool, error)
}

// PositionStore is the keyed symbol -> position mapping. Apply must serialize
// concurrent updates to the same symbol; updates to different symbols may run
// in parallel. Get returns the zero position for unseen symbols and an error
// only when the store itself is unreachable.
type PositionStore interface {
	Get(ctx context.Context, symbol string) (trading.Position, error)
	Apply(ctx context.Context, symbol string, delta trading.Delta) error
	List(ctx context.Context) (map[string]trading.Position, error)
}

// EventPublisher hands a trade event to the broker. Publish returns only after
// the broker has acknowledged the write; a non-nil error means the event was
// not durably accepted and the caller must surface that.
type EventPublisher interface {
	Publish(ctx context.Context, event trading.TradeEvent) error
}
