package email

import (
	"time"

	"jobportal_backend/internal/config"
)

type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	FromEmail  string
	FromName   string
	UseTLS     bool
	MaxRetries int32

	// границы экспоненциального backoff между попытками
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
}

func ConfigFrom(cfg *config.Config) *SMTPConfig {
	return &SMTPConfig{
		Host:                 cfg.Email.SMTPHost,
		Port:                 cfg.Email.SMTPPort,
		Username:             cfg.Email.SMTPUsername,
		Password:             cfg.Email.SMTPPassword,
		FromEmail:            cfg.Email.FromEmail,
		FromName:             cfg.Email.FromName,
		UseTLS:               cfg.Email.UseTLS,
		MaxRetries:           int32(cfg.Email.MaxRetries),
		RetryInitialInterval: 500 * time.Millisecond,
		RetryMaxInterval:     5 * time.Second,
	}
}
