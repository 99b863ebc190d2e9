package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment
// variables.
type Config struct {
	ListenAddr string
	LogLevel   string

	// Upstream quote provider
	QuoteBaseURL string

	// Infrastructure (both optional)
	RedisAddr     string
	RedisPassword string
	SQLitePath    string // empty → in-memory alert store

	// Broadcaster timing
	PollInterval      time.Duration
	HeartbeatInterval time.Duration
	FetchTimeout      time.Duration

	// Per-symbol price history depth (rounded up to a power of two)
	HistorySize int

	// Alert evaluation ("" disables the scheduler; cron spec otherwise)
	SweepSchedule string

	// Notification backends (all optional)
	TelegramBotToken string
	TelegramChatID   string
	WebhookURL       string
}

// Load reads configuration from environment variables with sensible
// defaults.
func Load() *Config {
	return &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		QuoteBaseURL: getEnv("QUOTE_BASE_URL", "https://query1.finance.yahoo.com"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SQLitePath:    getEnv("SQLITE_PATH", ""),

		PollInterval:      getDuration("POLL_INTERVAL", 3*time.Second),
		HeartbeatInterval: getDuration("HEARTBEAT_INTERVAL", 15*time.Second),
		FetchTimeout:      getDuration("FETCH_TIMEOUT", 5*time.Second),

		HistorySize: getInt("HISTORY_SIZE", 256),

		SweepSchedule: getEnv("SWEEP_SCHEDULE", "@every 1m"),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		WebhookURL:       getEnv("ALERT_WEBHOOK_URL", ""),
	}
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return n
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
