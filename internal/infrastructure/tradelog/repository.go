package tradelog

import (
	"context"
	"errors"
	"fmt"
	"time"

	trading "main/internal/domain/entity/trading"
	interfaces "main/internal/domain/interfaces"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// Repository is the append-only trade log backed by Postgres. The primary key
// on trade_id doubles as the applied-id index: a second append of the same
// trade surfaces as interfaces.ErrDuplicateTrade.
type Repository struct {
	pool *pgxpool.Pool
}

var _ interfaces.TradeLog = (*Repository)(nil)

func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	return &Repository{pool: pool}, nil
}

func (r *Repository) Close() {
	if r == nil || r.pool == nil {
		return
	}
	r.pool.Close()
}

const insertTradeQuery = `
	INSERT INTO trades (trade_id, symbol, side, quantity, price, trade_time)
	VALUES ($1,$2,$3,$4,$5,$6)`

// Append durably records one trade. Duplicate trade ids are expected under
// redelivery and reported as interfaces.ErrDuplicateTrade.
func (r *Repository) Append(ctx context.Context, record trading.TradeRecord) error {
	_, err := r.pool.Exec(ctx, insertTradeQuery,
		record.TradeID,
		record.Symbol,
		record.Side,
		record.Quantity,
		record.Price,
		record.TradeTime,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("trade %s: %w", record.TradeID, interfaces.ErrDuplicateTrade)
		}
		return err
	}
	return nil
}

// FindByDate returns every trade whose trade time falls on the given calendar
// date (in the date's location), newest first.
func (r *Repository) FindByDate(ctx context.Context, date time.Time) ([]trading.TradeRecord, error) {
	from, to := dayBounds(date)
	const query = `
		SELECT trade_id, symbol, side, quantity, price, trade_time
		FROM trades
		WHERE trade_time >= $1 AND trade_time < $2
		ORDER BY trade_time DESC`
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []trading.TradeRecord
	for rows.Next() {
		record, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// ExistsByID reports whether a trade id has already been durably recorded.
func (r *Repository) ExistsByID(ctx context.Context, tradeID uuid.UUID) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM trades WHERE trade_id = $1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, tradeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func scanTrade(row pgx.Row) (trading.TradeRecord, error) {
	record := trading.TradeRecord{}
	err := row.Scan(
		&record.TradeID,
		&record.Symbol,
		&record.Side,
		&record.Quantity,
		&record.Price,
		&record.TradeTime,
	)
	if err != nil {
		return trading.TradeRecord{}, err
	}
	return record, nil
}

func dayBounds(date time.Time) (time.Time, time.Time) {
	from := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return from, from.AddDate(0, 0, 1)
}
