package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	apptrading "main/internal/application/service/trading"
	"main/internal/config"
	"main/internal/infrastructure/broker"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// loadgen publishes randomized valid trade orders through the real producer
// path, for smoke testing the pipeline end to end.

const (
	defaultCount    = 100
	defaultInterval = 100 * time.Millisecond
	defaultSymbols  = "AAPL,MSFT,GOOG,TSLA"
)

type loadgenConfig struct {
	Count    int
	Interval time.Duration
	Symbols  []string
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}
	genCfg, err := loadGenConfig()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	producer := broker.NewProducer(cfg.Kafka, logger)
	defer func() {
		if err := producer.Close(); err != nil {
			logger.Errorf("close producer: %v", err)
		}
	}()

	service := apptrading.NewService(producer)

	published := 0
	ticker := time.NewTicker(genCfg.Interval)
	defer ticker.Stop()

	for published < genCfg.Count {
		select {
		case <-ctx.Done():
			logger.WithField("published", published).Info("interrupted")
			return
		case <-ticker.C:
		}

		req := randomTrade(genCfg.Symbols)
		event, err := service.PlaceTrade(ctx, req)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			logger.WithError(err).Warn("publish failed")
			continue
		}
		published++
		logger.WithFields(logrus.Fields{
			"trade_id": event.TradeID,
			"symbol":   event.Symbol,
			"side":     event.Side,
			"quantity": event.Quantity,
			"price":    event.Price,
		}).Info("trade published")
	}

	logger.WithField("published", published).Info("load generation finished")
}

func randomTrade(symbols []string) apptrading.TradeRequest {
	side := "BUY"
	if rand.Intn(2) == 1 {
		side = "SELL"
	}
	return apptrading.TradeRequest{
		Symbol:   symbols[rand.Intn(len(symbols))],
		Side:     side,
		Quantity: int64(rand.Intn(100) + 1),
		Price:    float64(rand.Intn(50000)+100) / 100,
	}
}

func loadGenConfig() (*loadgenConfig, error) {
	count := defaultCount
	if raw := os.Getenv("LOADGEN_COUNT"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid LOADGEN_COUNT %q", raw)
		}
		count = parsed
	}

	interval := defaultInterval
	if raw := os.Getenv("LOADGEN_INTERVAL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid LOADGEN_INTERVAL %q", raw)
		}
		interval = parsed
	}

	var symbols []string
	for _, symbol := range strings.Split(envOrDefault("LOADGEN_SYMBOLS", defaultSymbols), ",") {
		if trimmed := strings.TrimSpace(symbol); trimmed != "" {
			symbols = append(symbols, trimmed)
		}
	}
	if len(symbols) == 0 {
		return nil, errors.New("LOADGEN_SYMBOLS must name at least one symbol")
	}

	return &loadgenConfig{Count: count, Interval: interval, Symbols: symbols}, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
