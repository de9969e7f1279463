package aggregator

import (
	"context"
	"errors"
	"fmt"

	trading "main/internal/domain/entity/trading"
	interfaces "main/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// Service applies one trade event to the position store and the trade log as a
// single logical unit guarded by the event's trade id. The broker may deliver
// the same event more than once; ProcessEvent neutralizes duplicates against
// the trade log's unique key, so it is safe to call under at-least-once
// delivery and safe to re-run after a crash mid-apply.
type Service struct {
	positions interfaces.PositionStore
	log       interfaces.TradeLog
	logger    *logrus.Entry
}

func NewService(positions interfaces.PositionStore, log interfaces.TradeLog, logger *logrus.Logger) *Service {
	return &Service{
		positions: positions,
		log:       log,
		logger:    logger.WithField("component", "aggregator"),
	}
}

// ProcessEvent runs the received -> delta-computed -> store-updated -> logged
// sequence for one event. The caller acknowledges the delivery only after a
// nil return; any error leaves the delivery unacknowledged for redelivery.
func (s *Service) ProcessEvent(ctx context.Context, event trading.TradeEvent) error {
	applied, err := s.log.ExistsByID(ctx, event.TradeID)
	if err != nil {
		return fmt.Errorf("check applied id %s: %w", event.TradeID, err)
	}
	if applied {
		s.logger.WithField("trade_id", event.TradeID).Debug("duplicate delivery, already applied")
		return nil
	}

	delta := trading.SignedDelta(event.Side, event.Quantity, event.Price)
	if err := s.positions.Apply(ctx, event.Symbol, delta); err != nil {
		return fmt.Errorf("apply position delta for %s: %w", event.Symbol, err)
	}

	if err := s.log.Append(ctx, event.Record()); err != nil {
		if errors.Is(err, interfaces.ErrDuplicateTrade) {
			// Lost the race against another delivery of the same trade; the
			// record is durable, so the event counts as applied.
			s.logger.WithField("trade_id", event.TradeID).Warn("duplicate trade record on append")
			return nil
		}
		return fmt.Errorf("append trade %s: %w", event.TradeID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"trade_id": event.TradeID,
		"symbol":   event.Symbol,
		"side":     event.Side,
	}).Info("trade applied")
	return nil
}
