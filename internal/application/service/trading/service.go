package trading

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	trading "main/internal/domain/entity/trading"
	interfaces "main/internal/domain/interfaces"

	"github.com/google/uuid"
)

// TradeRequest is the validated ingestion payload.
type TradeRequest struct {
	Symbol   string  `json:"symbol"`
	Side     string  `json:"side"`
	Quantity int64   `json:"quantity"`
	Price    float64 `json:"price"`
}

// ValidationError carries one message per rejected field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid trade request: " + strings.Join(parts, "; ")
}

// Service accepts trade orders, turns them into events and hands them to the
// broker. It never waits for downstream processing, only for the broker's
// publish acknowledgment.
type Service struct {
	publisher interfaces.EventPublisher
	now       func() time.Time
}

func NewService(publisher interfaces.EventPublisher) *Service {
	return &Service{
		publisher: publisher,
		now:       time.Now,
	}
}

// PlaceTrade validates the request, constructs a TradeEvent with a fresh trade
// id and the current timestamp, and publishes it. A publish failure is returned
// to the caller; the event is not constructed at all when validation fails.
func (s *Service) PlaceTrade(ctx context.Context, req TradeRequest) (trading.TradeEvent, error) {
	if err := validate(req); err != nil {
		return trading.TradeEvent{}, err
	}

	event := trading.TradeEvent{
		TradeID:   uuid.New(),
		Symbol:    req.Symbol,
		Side:      trading.Side(req.Side),
		Quantity:  req.Quantity,
		Price:     req.Price,
		Timestamp: s.now().UnixMilli(),
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		return trading.TradeEvent{}, fmt.Errorf("publish trade %s: %w", event.TradeID, err)
	}
	return event, nil
}

func validate(req TradeRequest) error {
	fields := make(map[string]string)
	if strings.TrimSpace(req.Symbol) == "" {
		fields["symbol"] = "symbol is required"
	}
	if req.Side == "" {
		fields["side"] = "side is required (BUY or SELL)"
	} else if !trading.Side(req.Side).Valid() {
		fields["side"] = "side must be BUY or SELL"
	}
	if req.Quantity <= 0 {
		fields["quantity"] = "quantity must be positive"
	}
	if req.Price <= 0 {
		fields["price"] = "price must be positive"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
