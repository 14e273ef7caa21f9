package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Messaging providers selectable with MESSAGING_PROVIDER.
const (
	ProviderTelegram = "telegram"
	ProviderWebhook  = "webhook"
	ProviderLog      = "log"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// AppConfig holds all configuration for the application
type AppConfig struct {
	DatabaseURL string
	LogLevel    string
	Environment string

	CronSpecCycle       string
	RulesFile           string // empty means the built-in catalog
	DedupWindow         time.Duration
	ActionTimeout       time.Duration
	QueryTimeout        time.Duration
	DispatchConcurrency int

	MessagingProvider   string
	TelegramToken       string
	TelegramRelayChatID int64
	AdminTelegramID     int64
	WebhookURL          string
	WebhookToken        string

	MetricsAddr string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load does not override variables already set in the environment.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.CronSpecCycle = os.Getenv("CRON_SPEC_CYCLE")
	if cfg.CronSpecCycle == "" {
		cfg.CronSpecCycle = "*/5 * * * *" // every 5 minutes
	}

	cfg.RulesFile = os.Getenv("RULES_FILE")

	if cfg.DedupWindow, err = durationEnv("DEDUP_WINDOW", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ActionTimeout, err = durationEnv("ACTION_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.QueryTimeout, err = durationEnv("QUERY_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	cfg.DispatchConcurrency = 4
	if v := os.Getenv("DISPATCH_CONCURRENCY"); v != "" {
		cfg.DispatchConcurrency, err = strconv.Atoi(v)
		if err != nil || cfg.DispatchConcurrency < 1 {
			return nil, fmt.Errorf("%w: DISPATCH_CONCURRENCY must be a positive integer, got %q", ErrInvalidConfig, v)
		}
	}

	cfg.MessagingProvider = strings.ToLower(os.Getenv("MESSAGING_PROVIDER"))
	if cfg.MessagingProvider == "" {
		cfg.MessagingProvider = ProviderLog
	}
	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramRelayChatID, err = int64Env("TELEGRAM_RELAY_CHAT_ID"); err != nil {
		return nil, err
	}
	if cfg.AdminTelegramID, err = int64Env("ADMIN_TELEGRAM_ID"); err != nil {
		return nil, err
	}
	cfg.WebhookURL = os.Getenv("WEBHOOK_URL")
	cfg.WebhookToken = os.Getenv("WEBHOOK_TOKEN")

	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")
	if cfg.MetricsAddr == "" {
		cfg.MetricsAddr = ":9090"
	}

	return cfg, nil
}

// Validate checks the settings needed to run the engine against a real store and gateway.
// Commands that never touch the store (printing rules) skip it.
func (c *AppConfig) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("%w: DATABASE_URL is not set", ErrInvalidConfig)
	}
	switch c.MessagingProvider {
	case ProviderLog:
	case ProviderWebhook:
		if c.WebhookURL == "" {
			return fmt.Errorf("%w: WEBHOOK_URL is required for the webhook provider", ErrInvalidConfig)
		}
	case ProviderTelegram:
		if c.TelegramToken == "" {
			return fmt.Errorf("%w: TELEGRAM_TOKEN is required for the telegram provider", ErrInvalidConfig)
		}
		if c.TelegramRelayChatID == 0 {
			return fmt.Errorf("%w: TELEGRAM_RELAY_CHAT_ID is required for the telegram provider", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown MESSAGING_PROVIDER %q", ErrInvalidConfig, c.MessagingProvider)
	}
	return nil
}

// OpsBotEnabled reports whether the Telegram operator bot should be started.
func (c *AppConfig) OpsBotEnabled() bool {
	return c.TelegramToken != "" && c.AdminTelegramID != 0
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive duration, got %q", ErrInvalidConfig, key, v)
	}
	return d, nil
}

func int64Env(key string) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s: %v", ErrInvalidConfig, key, err)
	}
	return n, nil
}
