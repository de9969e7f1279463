package broker

import (
	"context"
	"fmt"

	"main/internal/config"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// DeadLetterSink receives deliveries that can never be processed: unparseable
// payloads and events that exhausted their retry budget. Routing to the sink
// removes the event from the main retry cycle so it cannot block a partition.
type DeadLetterSink interface {
	Publish(ctx context.Context, original kafka.Message, reason string) error
}

// DeadLetterWriter publishes rejected deliveries to the dead-letter topic,
// preserving the original key and payload and recording the rejection reason
// in a header.
type DeadLetterWriter struct {
	writer *kafka.Writer
	logger *logrus.Entry
}

var _ DeadLetterSink = (*DeadLetterWriter)(nil)

func NewDeadLetterWriter(cfg config.KafkaConfig, logger *logrus.Logger) *DeadLetterWriter {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.DeadLetterTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
	return &DeadLetterWriter{
		writer: writer,
		logger: logger.WithField("component", "dead_letter"),
	}
}

func (w *DeadLetterWriter) Publish(ctx context.Context, original kafka.Message, reason string) error {
	message := kafka.Message{
		Key:   original.Key,
		Value: original.Value,
		Headers: []kafka.Header{
			{Key: "x-dead-letter-reason", Value: []byte(reason)},
			{Key: "x-original-topic", Value: []byte(original.Topic)},
			{Key: "x-original-partition", Value: []byte(fmt.Sprintf("%d", original.Partition))},
			{Key: "x-original-offset", Value: []byte(fmt.Sprintf("%d", original.Offset))},
		},
	}
	if err := w.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("write dead letter: %w", err)
	}
	w.logger.WithFields(logrus.Fields{
		"partition": original.Partition,
		"offset":    original.Offset,
		"reason":    reason,
	}).Warn("delivery routed to dead letter topic")
	return nil
}

func (w *DeadLetterWriter) Close() error {
	return w.writer.Close()
}
