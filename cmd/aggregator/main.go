package main

import (
	"context"
	"os/signal"
	"syscall"

	appaggregator "main/internal/application/service/aggregator"
	"main/internal/config"
	"main/internal/infrastructure/broker"
	"main/internal/infrastructure/positions"
	"main/internal/infrastructure/tradelog"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	tradeLog, err := tradelog.NewRepository(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.Fatalf("failed to init trade log: %v", err)
	}
	defer tradeLog.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	positionStore := positions.NewRedisStore(redisClient)
	aggregatorService := appaggregator.NewService(positionStore, tradeLog, logger)

	deadLetters := broker.NewDeadLetterWriter(cfg.Kafka, logger)
	defer func() {
		if err := deadLetters.Close(); err != nil {
			logger.Errorf("close dead letter writer: %v", err)
		}
	}()

	consumer, err := broker.NewConsumer(cfg.Kafka, cfg.Consumer, aggregatorService, deadLetters, logger)
	if err != nil {
		logger.Fatalf("failed to init consumer: %v", err)
	}

	if err := consumer.Run(ctx); err != nil {
		logger.Fatalf("consumer stopped with error: %v", err)
	}
	logger.Info("aggregator stopped")
}
