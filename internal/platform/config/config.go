package config

import (
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Config captures process-level configuration for the discovery engine.
type Config struct {
	Addr string

	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig

	// ProcessingWorkers bounds the per-batch worker pool. Domain-group work is
	// CPU-only, so the default tracks available cores.
	ProcessingWorkers int
}

// PostgresConfig holds connection settings for the persistent stores.
type PostgresConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds connection settings for the blacklist cache.
// An empty URL disables Redis; the tracker falls back to store lookups.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds settings for the search-result ingest consumer.
// Empty brokers disable the consumer (HTTP-only deployments, tests).
type KafkaConfig struct {
	Brokers      []string
	ResultsTopic string
	GroupID      string
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	cfg := Config{
		Addr: envOr("NORTHSTAR_ADDR", ":8080"),
		Postgres: PostgresConfig{
			URL:             os.Getenv("NORTHSTAR_POSTGRES_URL"),
			MaxOpenConns:    envIntOr("NORTHSTAR_POSTGRES_MAX_OPEN", 10),
			MaxIdleConns:    envIntOr("NORTHSTAR_POSTGRES_MAX_IDLE", 5),
			ConnMaxLifetime: 30 * time.Minute,
		},
		Redis: RedisConfig{
			URL:          os.Getenv("NORTHSTAR_REDIS_URL"),
			PoolSize:     envIntOr("NORTHSTAR_REDIS_POOL_SIZE", 10),
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			ResultsTopic: envOr("NORTHSTAR_KAFKA_RESULTS_TOPIC", "discovery.search-results"),
			GroupID:      envOr("NORTHSTAR_KAFKA_GROUP_ID", "northstar-judging"),
		},
		ProcessingWorkers: envIntOr("NORTHSTAR_PROCESSING_WORKERS", runtime.NumCPU()),
	}

	if brokers := os.Getenv("NORTHSTAR_KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
