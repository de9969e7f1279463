package analytics

import (
	"context"
	"fmt"
	"time"

	trading "main/internal/domain/entity/trading"
	interfaces "main/internal/domain/interfaces"
)

// Service recomputes per-symbol totals from the trade log, independent of the
// position store. At any quiescent point the totals for a date must equal the
// position store's aggregate restricted to that date's trades; both sides fold
// trades through trading.SignedDelta, so they cannot disagree on sign.
type Service struct {
	log interfaces.TradeLog
}

func NewService(log interfaces.TradeLog) *Service {
	return &Service{log: log}
}

// DailyAnalytics groups the date's trade records by symbol and sums their
// signed quantity and PnL contributions.
func (s *Service) DailyAnalytics(ctx context.Context, date time.Time) (map[string]trading.SymbolAnalytics, error) {
	records, err := s.log.FindByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("scan trades for %s: %w", date.Format("2006-01-02"), err)
	}

	totals := make(map[string]trading.SymbolAnalytics, len(records))
	for _, record := range records {
		delta := trading.SignedDelta(record.Side, record.Quantity, record.Price)
		entry := totals[record.Symbol]
		entry.TotalQuantity += delta.Quantity
		entry.TotalPnl += delta.Pnl
		totals[record.Symbol] = entry
	}
	return totals, nil
}

// TradesForDate returns the date's records ordered by trade time descending.
func (s *Service) TradesForDate(ctx context.Context, date time.Time) ([]trading.TradeRecord, error) {
	records, err := s.log.FindByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("scan trades for %s: %w", date.Format("2006-01-02"), err)
	}
	return records, nil
}
