// Package config loads application configuration from the
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backend names accepted by STORAGE_BACKEND.
const (
	BackendMemory     = "memory"
	BackendPostgres   = "postgres"
	BackendClickHouse = "clickhouse"
)

// Ingest source names accepted by INGEST_SOURCE.
const (
	SourceWebSocket = "websocket"
	SourceKafka     = "kafka"
)

// Config holds all configuration for the application.
type Config struct {
	// Server configuration
	ListenAddr string
	Debug      bool

	// Storage configuration
	StorageBackend string
	PostgresDSN    string
	ClickHouseDSN  string

	// Ingest configuration
	IngestSource string
	WSEndpoint   string
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	// Trending configuration
	Window            time.Duration
	MinMentions       int
	MinUniqueSources  int
	DetectionInterval time.Duration

	// Liquidity veto configuration
	CheckLiquidity       bool
	MinLiquidityUSD      float64
	LiquidityTimeout     time.Duration
	LiquidityConcurrency int

	// Alert configuration
	CooldownWindow time.Duration
	TelegramToken  string
	TelegramChatID string
	DryRun         bool

	// Retention configuration
	RetentionHorizon  time.Duration
	RetentionSchedule string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		Debug:      getBoolEnv("DEBUG", false),

		StorageBackend: getEnv("STORAGE_BACKEND", BackendMemory),
		PostgresDSN:    getEnv("POSTGRES_DSN", ""),
		ClickHouseDSN:  getEnv("CLICKHOUSE_DSN", ""),

		IngestSource: getEnv("INGEST_SOURCE", SourceWebSocket),
		WSEndpoint:   getEnv("WS_ENDPOINT", ""),
		KafkaBrokers: getSliceEnv("KAFKA_BROKERS", nil),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "chat.messages"),
		KafkaGroupID: getEnv("KAFKA_GROUP_ID", "token-radar"),

		Window:            getDurationEnv("TRENDING_WINDOW", 5*time.Minute),
		MinMentions:       getIntEnv("MIN_MENTIONS", 3),
		MinUniqueSources:  getIntEnv("MIN_UNIQUE_SOURCES", 2),
		DetectionInterval: getDurationEnv("DETECTION_INTERVAL", 30*time.Second),

		CheckLiquidity:       getBoolEnv("CHECK_LIQUIDITY", false),
		MinLiquidityUSD:      getFloatEnv("MIN_LIQUIDITY_USD", 1000),
		LiquidityTimeout:     getDurationEnv("LIQUIDITY_TIMEOUT", 8*time.Second),
		LiquidityConcurrency: getIntEnv("LIQUIDITY_CONCURRENCY", 4),

		CooldownWindow: getDurationEnv("ALERT_COOLDOWN", 15*time.Minute),
		TelegramToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID: getEnv("TELEGRAM_CHAT_ID", ""),
		DryRun:         getBoolEnv("DRY_RUN", false),

		RetentionHorizon:  getDurationEnv("RETENTION_HORIZON", 24*time.Hour),
		RetentionSchedule: getEnv("RETENTION_SCHEDULE", "0 * * * *"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required when STORAGE_BACKEND is postgres")
		}
	case BackendClickHouse:
		if c.ClickHouseDSN == "" {
			return fmt.Errorf("CLICKHOUSE_DSN is required when STORAGE_BACKEND is clickhouse")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be one of memory, postgres, clickhouse")
	}

	switch c.IngestSource {
	case SourceWebSocket:
		if c.WSEndpoint == "" {
			return fmt.Errorf("WS_ENDPOINT is required when INGEST_SOURCE is websocket")
		}
	case SourceKafka:
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS is required when INGEST_SOURCE is kafka")
		}
	default:
		return fmt.Errorf("INGEST_SOURCE must be websocket or kafka")
	}

	if !c.DryRun && (c.TelegramToken == "" || c.TelegramChatID == "") {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are required unless DRY_RUN is set")
	}

	if c.Window <= 0 {
		return fmt.Errorf("TRENDING_WINDOW must be positive")
	}
	if c.MinMentions < 1 || c.MinUniqueSources < 1 {
		return fmt.Errorf("MIN_MENTIONS and MIN_UNIQUE_SOURCES must be at least 1")
	}
	if c.DetectionInterval <= 0 {
		return fmt.Errorf("DETECTION_INTERVAL must be positive")
	}
	if c.CooldownWindow <= 0 {
		return fmt.Errorf("ALERT_COOLDOWN must be positive")
	}
	if c.RetentionHorizon <= 0 {
		return fmt.Errorf("RETENTION_HORIZON must be positive")
	}

	return nil
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return defaultValue
}
