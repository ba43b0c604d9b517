package config

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	DataDir    string
	RedisURL   string
	SessionTTL time.Duration

	Events EventsConfig

	QuestionTimerEnabled bool
	StatsMaxAgeDays      int
	// 0 selects platform randomness
	ShuffleSeed int64
}

type EventsConfig struct {
	Broker       string
	KafkaBrokers []string
	Topic        string
}

// LoadConfig reads .env when present and then the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() (*Config, error) {
	level, err := parseLogLevel(getEnvOrDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	sessionTTL, err := time.ParseDuration(getEnvOrDefault("SESSION_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	timerEnabled, err := strconv.ParseBool(getEnvOrDefault("QUESTION_TIMER_ENABLED", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid QUESTION_TIMER_ENABLED: %w", err)
	}
	maxAge, err := strconv.Atoi(getEnvOrDefault("STATS_MAX_AGE_DAYS", "90"))
	if err != nil || maxAge <= 0 {
		return nil, fmt.Errorf("invalid STATS_MAX_AGE_DAYS: %q", os.Getenv("STATS_MAX_AGE_DAYS"))
	}
	seed, err := strconv.ParseInt(getEnvOrDefault("SHUFFLE_SEED", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUFFLE_SEED: %w", err)
	}

	return &Config{
		Port:        getEnvOrDefault("PORT", "8080"),
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),
		LogLevel:    level,

		DataDir:    getEnvOrDefault("DATA_DIR", "./data"),
		RedisURL:   os.Getenv("REDIS_URL"),
		SessionTTL: sessionTTL,

		Events: EventsConfig{
			Broker:       getEnvOrDefault("EVENTS_BROKER", "gochannel"),
			KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:        getEnvOrDefault("EVENTS_TOPIC", "flashquiz.events"),
		},

		QuestionTimerEnabled: timerEnabled,
		StatsMaxAgeDays:      maxAge,
		ShuffleSeed:          seed,
	}, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	return level, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
