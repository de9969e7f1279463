package tradelog

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	trading "main/internal/domain/entity/trading"
	interfaces "main/internal/domain/interfaces"

	"github.com/google/uuid"
)

// MemoryLog is an in-process trade log with the repository's contract,
// including the duplicate-key behavior on Append. Used by tests and local runs.
type MemoryLog struct {
	mu      sync.RWMutex
	records map[uuid.UUID]trading.TradeRecord
}

var _ interfaces.TradeLog = (*MemoryLog)(nil)

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{records: make(map[uuid.UUID]trading.TradeRecord)}
}

func (l *MemoryLog) Append(_ context.Context, record trading.TradeRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.records[record.TradeID]; ok {
		return fmt.Errorf("trade %s: %w", record.TradeID, interfaces.ErrDuplicateTrade)
	}
	l.records[record.TradeID] = record
	return nil
}

func (l *MemoryLog) FindByDate(_ context.Context, date time.Time) ([]trading.TradeRecord, error) {
	from, to := dayBounds(date)
	l.mu.RLock()
	defer l.mu.RUnlock()

	var records []trading.TradeRecord
	for _, record := range l.records {
		if !record.TradeTime.Before(from) && record.TradeTime.Before(to) {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].TradeTime.After(records[j].TradeTime)
	})
	return records, nil
}

func (l *MemoryLog) ExistsByID(_ context.Context, tradeID uuid.UUID) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.records[tradeID]
	return ok, nil
}
