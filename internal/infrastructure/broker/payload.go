package broker

import (
	"encoding/json"
	"errors"
	"fmt"

	trading "main/internal/domain/entity/trading"

	"github.com/google/uuid"
)

// encodeEvent renders the wire payload. The broker message and the persisted
// record share the same logical shape, so the event's JSON tags are the wire
// format.
func encodeEvent(event trading.TradeEvent) ([]byte, error) {
	return json.Marshal(event)
}

// decodeEvent parses and sanity-checks a delivery. A non-nil error marks the
// payload as poison: retrying the same bytes can never succeed.
func decodeEvent(payload []byte) (trading.TradeEvent, error) {
	var event trading.TradeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return trading.TradeEvent{}, fmt.Errorf("decode payload: %w", err)
	}
	if event.TradeID == uuid.Nil {
		return trading.TradeEvent{}, errors.New("trade id is missing")
	}
	if event.Symbol == "" {
		return trading.TradeEvent{}, errors.New("symbol is empty")
	}
	if !event.Side.Valid() {
		return trading.TradeEvent{}, fmt.Errorf("unknown side %q", event.Side)
	}
	if event.Quantity <= 0 {
		return trading.TradeEvent{}, fmt.Errorf("non-positive quantity %d", event.Quantity)
	}
	if event.Price <= 0 {
		return trading.TradeEvent{}, fmt.Errorf("non-positive price %v", event.Price)
	}
	return event, nil
}
