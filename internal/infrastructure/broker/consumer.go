package broker

import (
	"context"
	"errors"
	"io"
	"time"

	appaggregator "main/internal/application/service/aggregator"
	"main/internal/config"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Consumer runs the aggregator worker loops against the trade topic. Each
// worker owns one reader in the shared consumer group, so the group coordinator
// spreads partitions across workers while any single partition (and therefore
// any single symbol) is always processed by exactly one worker, in order.
//
// Offsets are committed only after the aggregator has durably applied the
// event or the delivery has been routed to the dead-letter topic. Anything
// else leaves the offset uncommitted and the broker redelivers.
type Consumer struct {
	kafkaCfg    config.KafkaConfig
	consumerCfg config.ConsumerConfig
	service     *appaggregator.Service
	deadLetters DeadLetterSink
	logger      *logrus.Logger
}

// NewConsumer prepares a consumer for the given configuration.
func NewConsumer(kafkaCfg config.KafkaConfig, consumerCfg config.ConsumerConfig, service *appaggregator.Service, deadLetters DeadLetterSink, logger *logrus.Logger) (*Consumer, error) {
	if len(kafkaCfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if service == nil {
		return nil, errors.New("aggregator service is required")
	}
	if deadLetters == nil {
		return nil, errors.New("dead letter sink is required")
	}
	return &Consumer{
		kafkaCfg:    kafkaCfg,
		consumerCfg: consumerCfg,
		service:     service,
		deadLetters: deadLetters,
		logger:      logger,
	}, nil
}

// Run blocks until ctx is canceled or a worker fails. Cancellation is a clean
// stop: every worker finishes (or leaves uncommitted) its in-flight delivery
// before returning.
func (c *Consumer) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)
	readers := make([]*kafka.Reader, 0, c.consumerCfg.Workers)

	for i := 0; i < c.consumerCfg.Workers; i++ {
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:     c.kafkaCfg.Brokers,
			Topic:       c.kafkaCfg.Topic,
			GroupID:     c.consumerCfg.GroupID,
			StartOffset: kafka.FirstOffset,
			ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
				c.logger.Errorf("kafka reader: "+msg, args...)
			}),
		})
		readers = append(readers, reader)

		worker := i
		group.Go(func() error {
			return c.runWorker(ctx, worker, reader)
		})
	}

	c.logger.WithFields(logrus.Fields{
		"topic":   c.kafkaCfg.Topic,
		"group":   c.consumerCfg.GroupID,
		"workers": c.consumerCfg.Workers,
	}).Info("trade consumer started")

	err := group.Wait()
	for _, reader := range readers {
		if closeErr := reader.Close(); closeErr != nil {
			c.logger.WithError(closeErr).Warn("failed to close reader")
		}
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (c *Consumer) runWorker(ctx context.Context, id int, reader *kafka.Reader) error {
	log := c.logger.WithField("worker", id)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				log.Info("worker stopped")
				return ctx.Err()
			}
			return err
		}

		if err := c.handleMessage(ctx, msg); err != nil {
			// Not committed: the broker redelivers this offset to a future run.
			log.WithError(err).WithFields(logrus.Fields{
				"partition": msg.Partition,
				"offset":    msg.Offset,
			}).Error("delivery left unacknowledged")
			return err
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.WithError(err).Warn("offset commit failed")
		}
	}
}

// handleMessage processes one delivery to completion. A nil return means the
// delivery may be acknowledged: either the event was applied (or recognized as
// a duplicate), or it was handed to the dead-letter sink.
func (c *Consumer) handleMessage(ctx context.Context, msg kafka.Message) error {
	event, err := decodeEvent(msg.Value)
	if err != nil {
		// Poison payload: retrying identical bytes cannot help.
		return c.deadLetters.Publish(ctx, msg, err.Error())
	}

	var lastErr error
	for attempt := 1; attempt <= c.consumerCfg.MaxAttempts; attempt++ {
		lastErr = c.service.ProcessEvent(ctx, event)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.WithError(lastErr).WithFields(logrus.Fields{
			"trade_id": event.TradeID,
			"attempt":  attempt,
		}).Warn("trade apply failed")

		if attempt < c.consumerCfg.MaxAttempts {
			if err := sleep(ctx, c.backoff(attempt)); err != nil {
				return err
			}
		}
	}

	return c.deadLetters.Publish(ctx, msg, lastErr.Error())
}

// backoff doubles from BackoffMin per attempt, capped at BackoffMax.
func (c *Consumer) backoff(attempt int) time.Duration {
	d := c.consumerCfg.BackoffMin
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= c.consumerCfg.BackoffMax {
			return c.consumerCfg.BackoffMax
		}
	}
	if d > c.consumerCfg.BackoffMax {
		return c.consumerCfg.BackoffMax
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
