package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host                   string `yaml:"host"`
		Port                   int    `yaml:"port"`
		Env                    string `yaml:"env"`
		ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`
	} `yaml:"server"`

	Database struct {
		DSN          string `yaml:"url"`
		MaxOpenConns int    `yaml:"max_open_conns"`
		MaxIdleConns int    `yaml:"max_idle_conns"`
		AutoMigrate  bool   `yaml:"auto_migrate"`
	} `yaml:"database"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
		UseTLS       bool   `yaml:"use_tls"`
		MaxRetries   int    `yaml:"max_retries"`
	} `yaml:"email"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // minutes
	} `yaml:"jwt"`

	Reminder struct {
		IntervalMinutes int `yaml:"interval_minutes"`
		LeadHours       int `yaml:"lead_hours"`
	} `yaml:"reminder"`

	Meeting struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"meeting"`

	RateLimit struct {
		MessagesPerMinute int `yaml:"messages_per_minute"`
		Burst             int `yaml:"burst"`
	} `yaml:"rate_limit"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
}

var AppConfig *Config

// LoadConfig читает конфиг один раз при старте и падает, если он некорректен.
// Если задан DATABASE_URL, конфиг собирается из переменных окружения (docker, тесты).
func LoadConfig() *Config {
	var (
		cfg *Config
		err error
	)

	if os.Getenv("DATABASE_URL") != "" {
		log.Println("loading configuration from environment")
		cfg, err = FromEnv()
	} else {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}
		log.Printf("loading configuration from %s", configPath)
		cfg, err = Load(configPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	AppConfig = cfg
	return cfg
}

// Load decodes a YAML file and fills in defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file %s: %w", path, err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Env == "" {
		c.Server.Env = "development"
	}
	if c.Server.ShutdownTimeoutSeconds == 0 {
		c.Server.ShutdownTimeoutSeconds = 10
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
	if c.Email.MaxRetries == 0 {
		c.Email.MaxRetries = 3
	}
	if c.JWT.TTL == 0 {
		c.JWT.TTL = 60 * 24
	}
	if c.Reminder.IntervalMinutes == 0 {
		c.Reminder.IntervalMinutes = 15
	}
	if c.Reminder.LeadHours == 0 {
		c.Reminder.LeadHours = 24
	}
	if c.Meeting.BaseURL == "" {
		c.Meeting.BaseURL = "https://meet.example.com"
	}
	if c.RateLimit.MessagesPerMinute == 0 {
		c.RateLimit.MessagesPerMinute = 60
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 10
	}
}

func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("database.url is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	if c.Reminder.IntervalMinutes < 0 {
		return fmt.Errorf("reminder.interval_minutes must be positive")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

func (c *Config) ReminderInterval() time.Duration {
	return time.Duration(c.Reminder.IntervalMinutes) * time.Minute
}

func (c *Config) ReminderLead() time.Duration {
	return time.Duration(c.Reminder.LeadHours) * time.Hour
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}

func (c *Config) JWTTTL() time.Duration {
	return time.Duration(c.JWT.TTL) * time.Minute
}

// EmailConfigured: без SMTP хоста письма только логируются
func (c *Config) EmailConfigured() bool {
	return c.Email.SMTPHost != "" && c.Email.FromEmail != ""
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
