package positions

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	trading "main/internal/domain/entity/trading"
	interfaces "main/internal/domain/interfaces"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "position:"

// RedisStore keeps one hash per symbol. Both fields of a delta are applied
// with HINCRBY/HINCRBYFLOAT inside a MULTI/EXEC block, so a per-symbol update
// is atomic without any lock: concurrent appliers for the same symbol are
// serialized by the server, and different symbols never contend.
type RedisStore struct {
	client *redis.Client
}

var _ interfaces.PositionStore = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get returns the position for a symbol, or the zero position when the symbol
// has never traded. A store failure is returned as an error rather than masked
// as an empty position.
func (s *RedisStore) Get(ctx context.Context, symbol string) (trading.Position, error) {
	fields, err := s.client.HGetAll(ctx, keyPrefix+symbol).Result()
	if err != nil {
		return trading.Position{}, fmt.Errorf("read position %s: %w", symbol, err)
	}
	if len(fields) == 0 {
		return trading.Position{}, nil
	}
	return parsePosition(symbol, fields)
}

// Apply atomically folds a delta into the symbol's position.
func (s *RedisStore) Apply(ctx context.Context, symbol string, delta trading.Delta) error {
	key := keyPrefix + symbol
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, key, "net_quantity", delta.Quantity)
		pipe.HIncrByFloat(ctx, key, "pnl", delta.Pnl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("apply position delta %s: %w", symbol, err)
	}
	return nil
}

// List snapshots every known position. The snapshot is per-key consistent,
// not a point-in-time view of the whole map.
func (s *RedisStore) List(ctx context.Context) (map[string]trading.Position, error) {
	result := make(map[string]trading.Position)
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		symbol := strings.TrimPrefix(key, keyPrefix)
		fields, err := s.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("read position %s: %w", symbol, err)
		}
		if len(fields) == 0 {
			continue
		}
		position, err := parsePosition(symbol, fields)
		if err != nil {
			return nil, err
		}
		result[symbol] = position
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan positions: %w", err)
	}
	return result, nil
}

func parsePosition(symbol string, fields map[string]string) (trading.Position, error) {
	var position trading.Position
	if raw, ok := fields["net_quantity"]; ok {
		quantity, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return trading.Position{}, fmt.Errorf("parse net_quantity for %s: %w", symbol, err)
		}
		position.NetQuantity = quantity
	}
	if raw, ok := fields["pnl"]; ok {
		pnl, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return trading.Position{}, fmt.Errorf("parse pnl for %s: %w", symbol, err)
		}
		position.Pnl = pnl
	}
	return position, nil
}
