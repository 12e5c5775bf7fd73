package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	HTTPAddr string

	RedisURL    string
	DatabaseURL string

	SessionTTL time.Duration

	MessageOverrideDir string
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		HTTPAddr:   ":8080",
		SessionTTL: 24 * time.Hour,
	}

	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.MessageOverrideDir = strings.TrimSpace(os.Getenv("MESSAGE_OVERRIDE_DIR"))

	if v := strings.TrimSpace(os.Getenv("SESSION_TTL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SessionTTL = d
		} else if n, err := strconv.Atoi(v); err == nil && n > 0 { // plain seconds
			cfg.SessionTTL = time.Duration(n) * time.Second
		}
	}

	return cfg, nil
}
