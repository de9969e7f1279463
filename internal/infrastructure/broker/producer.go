package broker

import (
	"context"
	"fmt"
	"time"

	"main/internal/config"
	trading "main/internal/domain/entity/trading"
	interfaces "main/internal/domain/interfaces"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// Producer publishes trade events to the trade topic. Messages are keyed by
// symbol so every event for one symbol lands on the same partition and is
// delivered in publish order. Writes are synchronous and wait for all replicas
// to acknowledge; a failed publish is reported to the caller instead of being
// dropped.
type Producer struct {
	writer *kafka.Writer
	logger *logrus.Entry
}

var _ interfaces.EventPublisher = (*Producer)(nil)

// NewProducer prepares a producer for the configured topic.
func NewProducer(cfg config.KafkaConfig, logger *logrus.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Errorf("kafka writer: "+msg, args...)
		}),
	}
	return &Producer{
		writer: writer,
		logger: logger.WithField("component", "trade_producer"),
	}
}

// Publish writes one event and returns once the broker has acknowledged it.
func (p *Producer) Publish(ctx context.Context, event trading.TradeEvent) error {
	payload, err := encodeEvent(event)
	if err != nil {
		return fmt.Errorf("encode trade event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Symbol),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("write trade event: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"trade_id": event.TradeID,
		"symbol":   event.Symbol,
	}).Debug("trade event published")
	return nil
}

// Close flushes and releases the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
