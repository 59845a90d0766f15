package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// FromEnv builds the configuration from environment variables.
func FromEnv() (*Config, error) {
	var cfg Config

	cfg.Database.DSN = os.Getenv("DATABASE_URL")
	cfg.Database.AutoMigrate = os.Getenv("DATABASE_AUTO_MIGRATE") == "true"
	cfg.Server.Env = os.Getenv("SERVER_ENV")
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")

	cfg.Email.SMTPHost = os.Getenv("SMTP_HOST")
	cfg.Email.SMTPUsername = os.Getenv("SMTP_USER")
	cfg.Email.SMTPPassword = os.Getenv("SMTP_PASS")
	cfg.Email.FromEmail = os.Getenv("SMTP_FROM")
	cfg.Email.FromName = os.Getenv("SMTP_FROM_NAME")
	cfg.Meeting.BaseURL = os.Getenv("MEETING_BASE_URL")

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.CORS.AllowedOrigins = strings.Split(origins, ",")
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"SERVER_PORT", &cfg.Server.Port},
		{"SMTP_PORT", &cfg.Email.SMTPPort},
		{"JWT_TTL_MINUTES", &cfg.JWT.TTL},
		{"REMINDER_INTERVAL_MINUTES", &cfg.Reminder.IntervalMinutes},
		{"MESSAGES_PER_MINUTE", &cfg.RateLimit.MessagesPerMinute},
	}
	for _, v := range ints {
		raw := os.Getenv(v.key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", v.key, err)
		}
		*v.dst = n
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
