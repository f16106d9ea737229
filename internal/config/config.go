package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Kafka struct {
		Broker       string
		LiveTopic    string
		HistoryTopic string
		GroupID      string
	}
	DB struct {
		DSN string
	}
	API struct {
		Port     string
		BasePath string
	}
	Log struct {
		Dir   string
		Level string
	}
	Telegram struct {
		Token     string
		ChatID    int64
		RateLimit float64
	}
	Notification struct {
		QueueSize  int
		MaxWorkers int
	}
	Variants []string
	Profiles map[string]Profile
}

// Load reads environment variables, applies defaults, and returns a Config.
func Load() (Config, error) {
	// Load .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config

	// Kafka settings
	cfg.Kafka.Broker = os.Getenv("KAFKA_BROKER")
	cfg.Kafka.LiveTopic = os.Getenv("KAFKA_LIVE_TOPIC")
	cfg.Kafka.HistoryTopic = os.Getenv("KAFKA_HISTORY_TOPIC")
	cfg.Kafka.GroupID = os.Getenv("KAFKA_GROUP_ID")

	// Database DSN, empty disables history preload
	cfg.DB.DSN = os.Getenv("DB_DSN")

	// API settings
	cfg.API.Port = os.Getenv("API_PORT")
	cfg.API.BasePath = os.Getenv("API_BASE_PATH")

	// Logging
	cfg.Log.Dir = os.Getenv("LOG_DIR")
	cfg.Log.Level = os.Getenv("LOG_LEVEL")

	// Telegram settings
	cfg.Telegram.Token = os.Getenv("TELEGRAM_BOT_TOKEN")
	if id, err := strconv.ParseInt(os.Getenv("TELEGRAM_CHAT_ID"), 10, 64); err == nil {
		cfg.Telegram.ChatID = id
	}
	if rl, err := strconv.ParseFloat(os.Getenv("TELEGRAM_RATE_LIMIT"), 64); err == nil {
		cfg.Telegram.RateLimit = rl
	}

	// Notification worker settings
	if qs, err := strconv.Atoi(os.Getenv("NOTIFY_QUEUE_SIZE")); err == nil {
		cfg.Notification.QueueSize = qs
	}
	if mw, err := strconv.Atoi(os.Getenv("NOTIFY_MAX_WORKERS")); err == nil {
		cfg.Notification.MaxWorkers = mw
	}

	cfg.Variants = splitList(os.Getenv("VARIANTS"))

	// Validate required settings
	missing := []string{}
	if cfg.Kafka.Broker == "" {
		missing = append(missing, "KAFKA_BROKER")
	}
	if cfg.Telegram.Token != "" && cfg.Telegram.ChatID == 0 {
		missing = append(missing, "TELEGRAM_CHAT_ID")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required configurations: %v", missing)
	}

	// Apply defaults
	if cfg.Kafka.LiveTopic == "" {
		cfg.Kafka.LiveTopic = "sensor_data"
	}
	if cfg.Kafka.HistoryTopic == "" {
		cfg.Kafka.HistoryTopic = "sensor_history"
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = "sensor-dashboard"
	}
	if cfg.API.Port == "" {
		cfg.API.Port = ":8080"
	}
	if cfg.API.BasePath == "" {
		cfg.API.BasePath = "/api/v0"
	}
	if cfg.Log.Dir == "" {
		cfg.Log.Dir = "logs"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Telegram.RateLimit <= 0 {
		cfg.Telegram.RateLimit = 1
	}
	if cfg.Notification.QueueSize == 0 {
		cfg.Notification.QueueSize = 100
	}
	if cfg.Notification.MaxWorkers == 0 {
		cfg.Notification.MaxWorkers = 2
	}
	if len(cfg.Variants) == 0 {
		cfg.Variants = []string{VariantApp, VariantDashboard, VariantTelemetry}
	}

	profiles := DefaultProfiles()
	if ms, err := strconv.Atoi(os.Getenv("DEBOUNCE_MS")); err == nil && ms >= 0 {
		for name, p := range profiles {
			p.DebounceMs = ms
			profiles[name] = p
		}
	}
	if path := os.Getenv("PROFILES_FILE"); path != "" {
		if err := LoadProfiles(path, profiles); err != nil {
			return Config{}, err
		}
	}
	for _, v := range cfg.Variants {
		p, ok := profiles[v]
		if !ok {
			return Config{}, fmt.Errorf("no profile for variant %q", v)
		}
		if err := p.Validate(); err != nil {
			return Config{}, fmt.Errorf("profile %s: %w", v, err)
		}
	}
	cfg.Profiles = profiles

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
