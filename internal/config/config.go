package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnv             = "development"
	defaultHTTPHost        = "0.0.0.0"
	defaultHTTPPort        = 8080
	defaultRedisAddr       = "localhost:6379"
	defaultRedisDB         = 0
	defaultCacheTTLSeconds = 5
	defaultKafkaBrokers    = "localhost:9092"
	defaultTradeTopic      = "trade_orders"
	defaultDeadLetterTopic = "trade_orders.dlq"
	defaultConsumerGroup   = "trading-aggregator"
	defaultWorkers         = 1
	defaultMaxAttempts     = 5
	defaultBackoffMin      = 100 * time.Millisecond
	defaultBackoffMax      = 5 * time.Second
)

// Config keeps the runtime configuration for the service.
type Config struct {
	Env      string
	HTTP     HTTPConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Kafka    KafkaConfig
	Consumer ConsumerConfig
}

// HTTPConfig holds HTTP server related settings.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr renders the listen address in host:port form.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// PostgresConfig stores database connection parameters.
type PostgresConfig struct {
	DSN string
}

// RedisConfig stores Redis connection parameters.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CacheConfig stores analytics response cache behavior.
type CacheConfig struct {
	TTLSeconds int
}

// KafkaConfig stores broker connection and topic layout. Trade events are keyed
// by symbol, so one topic partition carries all events for a symbol in order.
type KafkaConfig struct {
	Brokers         []string
	Topic           string
	DeadLetterTopic string
}

// ConsumerConfig tunes the aggregator worker loops.
type ConsumerConfig struct {
	GroupID     string
	Workers     int
	MaxAttempts int
	BackoffMin  time.Duration
	BackoffMax  time.Duration
}

// Load builds Config from environment variables.
func Load() (*Config, error) {
	host := getString("HTTP_HOST", defaultHTTPHost)
	port, err := getInt("HTTP_PORT", defaultHTTPPort)
	if err != nil {
		return nil, fmt.Errorf("parse HTTP_PORT: %w", err)
	}

	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		return nil, errors.New("DATABASE_DSN is required")
	}

	redisDB, err := getInt("REDIS_DB", defaultRedisDB)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_DB: %w", err)
	}

	cacheTTL, err := getInt("CACHE_TTL_SECONDS", defaultCacheTTLSeconds)
	if err != nil {
		return nil, fmt.Errorf("parse CACHE_TTL_SECONDS: %w", err)
	}

	workers, err := getInt("CONSUMER_WORKERS", defaultWorkers)
	if err != nil {
		return nil, fmt.Errorf("parse CONSUMER_WORKERS: %w", err)
	}
	if workers <= 0 {
		return nil, errors.New("CONSUMER_WORKERS must be positive")
	}

	maxAttempts, err := getInt("CONSUMER_MAX_ATTEMPTS", defaultMaxAttempts)
	if err != nil {
		return nil, fmt.Errorf("parse CONSUMER_MAX_ATTEMPTS: %w", err)
	}
	if maxAttempts <= 0 {
		return nil, errors.New("CONSUMER_MAX_ATTEMPTS must be positive")
	}

	backoffMin, err := getDuration("CONSUMER_BACKOFF_MIN", defaultBackoffMin)
	if err != nil {
		return nil, fmt.Errorf("parse CONSUMER_BACKOFF_MIN: %w", err)
	}
	backoffMax, err := getDuration("CONSUMER_BACKOFF_MAX", defaultBackoffMax)
	if err != nil {
		return nil, fmt.Errorf("parse CONSUMER_BACKOFF_MAX: %w", err)
	}

	return &Config{
		Env:  getString("APP_ENV", defaultEnv),
		HTTP: HTTPConfig{Host: host, Port: port},
		Postgres: PostgresConfig{
			DSN: dsn,
		},
		Redis: RedisConfig{
			Addr:     getString("REDIS_ADDR", defaultRedisAddr),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Cache: CacheConfig{
			TTLSeconds: cacheTTL,
		},
		Kafka: KafkaConfig{
			Brokers:         getStrings("KAFKA_BROKERS", defaultKafkaBrokers),
			Topic:           getString("KAFKA_TOPIC", defaultTradeTopic),
			DeadLetterTopic: getString("KAFKA_DLQ_TOPIC", defaultDeadLetterTopic),
		},
		Consumer: ConsumerConfig{
			GroupID:     getString("CONSUMER_GROUP", defaultConsumerGroup),
			Workers:     workers,
			MaxAttempts: maxAttempts,
			BackoffMin:  backoffMin,
			BackoffMax:  backoffMax,
		},
	}, nil
}

func getString(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	return value
}

func getStrings(key, fallback string) []string {
	raw := getString(key, fallback)
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

func getInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("convert %s value %q to int: %w", key, value, err)
	}
	return parsed, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("convert %s value %q to duration: %w", key, value, err)
	}
	return parsed, nil
}
