package tradelog

import (
	"context"
	"testing"
	"time"

	trading "main/internal/domain/entity/trading"
	interfaces "main/internal/domain/interfaces"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord(at time.Time) trading.TradeRecord {
	return trading.TradeRecord{
		TradeID:   uuid.New(),
		Symbol:    "AAPL",
		Side:      trading.SideBuy,
		Quantity:  10,
		Price:     100.0,
		TradeTime: at,
	}
}

func TestMemoryLogAppendRejectsDuplicateID(t *testing.T) {
	log := NewMemoryLog()
	ctx := context.Background()

	record := sampleRecord(time.Now())
	require.NoError(t, log.Append(ctx, record))

	err := log.Append(ctx, record)
	require.ErrorIs(t, err, interfaces.ErrDuplicateTrade)
}

func TestMemoryLogExistsByID(t *testing.T) {
	log := NewMemoryLog()
	ctx := context.Background()

	record := sampleRecord(time.Now())
	exists, err := log.ExistsByID(ctx, record.TradeID)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, log.Append(ctx, record))
	exists, err = log.ExistsByID(ctx, record.TradeID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMemoryLogFindByDateBounds(t *testing.T) {
	log := NewMemoryLog()
	ctx := context.Background()
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	midnight := sampleRecord(day)
	lastMoment := sampleRecord(day.Add(24*time.Hour - time.Nanosecond))
	dayBefore := sampleRecord(day.Add(-time.Nanosecond))
	nextMidnight := sampleRecord(day.Add(24 * time.Hour))

	for _, record := range []trading.TradeRecord{midnight, lastMoment, dayBefore, nextMidnight} {
		require.NoError(t, log.Append(ctx, record))
	}

	records, err := log.FindByDate(ctx, day.Add(13*time.Hour))
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first.
	assert.Equal(t, lastMoment.TradeID, records[0].TradeID)
	assert.Equal(t, midnight.TradeID, records[1].TradeID)
}
