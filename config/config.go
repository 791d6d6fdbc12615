package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds all configuration for the collector service
type Config struct {
	Database   DatabaseConfig
	Telegram   TelegramConfig
	RateLimit  RateLimitConfig
	Retry      RetryConfig
	Collector  CollectorConfig
	Engagement EngagementConfig
	Kafka      KafkaConfig
	Logging    LoggingConfig
	Service    ServiceConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// GetDSN builds a PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// TelegramConfig holds Telegram MTProto configuration
type TelegramConfig struct {
	APIID          int
	APIHash        string
	SessionFile    string
	ConnectTimeout time.Duration
	CallTimeout    time.Duration
}

// RateLimitConfig bounds outbound Telegram API calls
type RateLimitConfig struct {
	PerSecond int
	PerMinute int
}

// RetryConfig holds backoff and retry configuration for source calls
type RetryConfig struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	MaxRetries   int
	Jitter       bool
}

// CollectorConfig holds collection scheduling and windowing configuration
type CollectorConfig struct {
	Interval     time.Duration
	WindowHours  int
	FetchLimit   int
	RunTimeout   time.Duration
	RunAtStartup bool
}

// EngagementConfig holds the reaction weight table used for scoring
type EngagementConfig struct {
	ReactionWeights map[string]float64
	DefaultWeight   float64
}

// KafkaConfig holds Kafka configuration; empty brokers disable publishing
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// ServiceConfig holds service configuration
type ServiceConfig struct {
	Name string
	Port string
}

// Result is fx.Out struct for providing config dependencies
type Result struct {
	fx.Out

	Config           *Config
	DatabaseConfig   *DatabaseConfig
	TelegramConfig   *TelegramConfig
	RateLimitConfig  *RateLimitConfig
	RetryConfig      *RetryConfig
	CollectorConfig  *CollectorConfig
	EngagementConfig *EngagementConfig
	KafkaConfig      *KafkaConfig
	LoggingConfig    *LoggingConfig
	ServiceConfig    *ServiceConfig
}

// Out returns fx-compatible config result
func Out() (Result, error) {
	cfg, err := Load()
	if err != nil {
		return Result{}, err
	}

	return Result{
		Config:           cfg,
		DatabaseConfig:   &cfg.Database,
		TelegramConfig:   &cfg.Telegram,
		RateLimitConfig:  &cfg.RateLimit,
		RetryConfig:      &cfg.Retry,
		CollectorConfig:  &cfg.Collector,
		EngagementConfig: &cfg.Engagement,
		KafkaConfig:      &cfg.Kafka,
		LoggingConfig:    &cfg.Logging,
		ServiceConfig:    &cfg.Service,
	}, nil
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	apiID, err := strconv.Atoi(getEnv("TELEGRAM_API_ID", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_API_ID: %w", err)
	}

	connectTimeout, err := time.ParseDuration(getEnv("TELEGRAM_CONNECT_TIMEOUT", "2m"))
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_CONNECT_TIMEOUT: %w", err)
	}

	callTimeout, err := time.ParseDuration(getEnv("TELEGRAM_CALL_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_CALL_TIMEOUT: %w", err)
	}

	perSecond, err := strconv.Atoi(getEnv("SOURCE_RATE_PER_SECOND", "1"))
	if err != nil {
		return nil, fmt.Errorf("invalid SOURCE_RATE_PER_SECOND: %w", err)
	}

	perMinute, err := strconv.Atoi(getEnv("SOURCE_RATE_PER_MINUTE", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid SOURCE_RATE_PER_MINUTE: %w", err)
	}

	initialDelay, err := time.ParseDuration(getEnv("RETRY_INITIAL_DELAY", "1s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RETRY_INITIAL_DELAY: %w", err)
	}

	maxDelay, err := time.ParseDuration(getEnv("RETRY_MAX_DELAY", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid RETRY_MAX_DELAY: %w", err)
	}

	multiplier, err := strconv.ParseFloat(getEnv("RETRY_MULTIPLIER", "2"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RETRY_MULTIPLIER: %w", err)
	}

	maxRetries, err := strconv.Atoi(getEnv("RETRY_MAX_RETRIES", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid RETRY_MAX_RETRIES: %w", err)
	}

	interval, err := time.ParseDuration(getEnv("COLLECTION_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid COLLECTION_INTERVAL: %w", err)
	}

	windowHours, err := strconv.Atoi(getEnv("CONTENT_WINDOW_HOURS", "24"))
	if err != nil {
		return nil, fmt.Errorf("invalid CONTENT_WINDOW_HOURS: %w", err)
	}

	fetchLimit, err := strconv.Atoi(getEnv("FETCH_LIMIT", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_LIMIT: %w", err)
	}

	runTimeout, err := time.ParseDuration(getEnv("COLLECTION_RUN_TIMEOUT", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid COLLECTION_RUN_TIMEOUT: %w", err)
	}

	defaultWeight, err := strconv.ParseFloat(getEnv("REACTION_DEFAULT_WEIGHT", "1"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid REACTION_DEFAULT_WEIGHT: %w", err)
	}

	weights, err := parseReactionWeights(getEnv("REACTION_WEIGHTS", ""))
	if err != nil {
		return nil, err
	}

	brokers := []string{}
	if brokersStr := getEnv("KAFKA_BROKERS", ""); brokersStr != "" {
		brokers = strings.Split(brokersStr, ",")
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DATABASE_HOST", "localhost"),
			Port:     getEnv("DATABASE_PORT", "5432"),
			User:     getEnv("DATABASE_USER", "collector_user"),
			Password: getEnv("DATABASE_PASSWORD", "collector_pass"),
			DBName:   getEnv("DATABASE_NAME", "collector_db"),
			SSLMode:  getEnv("DATABASE_SSLMODE", "disable"),
		},
		Telegram: TelegramConfig{
			APIID:          apiID,
			APIHash:        getEnv("TELEGRAM_API_HASH", ""),
			SessionFile:    getEnv("TELEGRAM_SESSION_FILE", "./sessions/collector.json"),
			ConnectTimeout: connectTimeout,
			CallTimeout:    callTimeout,
		},
		RateLimit: RateLimitConfig{
			PerSecond: perSecond,
			PerMinute: perMinute,
		},
		Retry: RetryConfig{
			InitialDelay: initialDelay,
			MaxDelay:     maxDelay,
			Multiplier:   multiplier,
			MaxRetries:   maxRetries,
			Jitter:       getEnv("RETRY_JITTER", "true") == "true",
		},
		Collector: CollectorConfig{
			Interval:     interval,
			WindowHours:  windowHours,
			FetchLimit:   fetchLimit,
			RunTimeout:   runTimeout,
			RunAtStartup: getEnv("COLLECTION_RUN_AT_STARTUP", "false") == "true",
		},
		Engagement: EngagementConfig{
			ReactionWeights: weights,
			DefaultWeight:   defaultWeight,
		},
		Kafka: KafkaConfig{
			Brokers: brokers,
			Topic:   getEnv("KAFKA_TOPIC_POSTS_COLLECTED", "posts.collected"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Service: ServiceConfig{
			Name: getEnv("SERVICE_NAME", "collector-service"),
			Port: getEnv("SERVICE_PORT", "8085"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration. Missing credentials are fatal
// at startup, not per-run.
func (c *Config) Validate() error {
	if c.Telegram.APIID == 0 {
		return fmt.Errorf("TELEGRAM_API_ID is required")
	}

	if c.Telegram.APIHash == "" {
		return fmt.Errorf("TELEGRAM_API_HASH is required")
	}

	if c.Collector.FetchLimit <= 0 {
		return fmt.Errorf("FETCH_LIMIT must be positive")
	}

	if c.Collector.WindowHours <= 0 {
		return fmt.Errorf("CONTENT_WINDOW_HOURS must be positive")
	}

	return nil
}

// parseReactionWeights parses "👍=1.0,❤=1.5,🔥=2.0" into a weight table
func parseReactionWeights(raw string) (map[string]float64, error) {
	weights := map[string]float64{}
	if raw == "" {
		return weights, nil
	}

	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid REACTION_WEIGHTS entry: %q", pair)
		}
		w, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid REACTION_WEIGHTS value for %q: %w", parts[0], err)
		}
		weights[parts[0]] = w
	}
	return weights, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
