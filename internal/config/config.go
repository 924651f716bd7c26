package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	RabbitMQ    RabbitMQConfig    `yaml:"rabbitmq"`
	Server      ServerConfig      `yaml:"server"`
	Site        SiteConfig        `yaml:"site"`
	Publication PublicationConfig `yaml:"publication"`
	Approval    ApprovalConfig    `yaml:"approval"`
	SMTP        SMTPConfig        `yaml:"smtp"`
	Platforms   PlatformsConfig   `yaml:"platforms"`
	LogLevel    string            `yaml:"log_level" validate:"oneof=debug info warn error"`
}

type RabbitMQConfig struct {
	Enabled    bool   `yaml:"enabled"`
	URL        string `yaml:"url" validate:"required_if=Enabled true"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
	QueueName  string `yaml:"queue_name"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"min=1,max=65535"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname" validate:"required"`
	SSLMode  string `yaml:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	// BaseURL is the public address of this server, used in the approval
	// links. It defaults to the site base URL.
	BaseURL         string        `yaml:"base_url" validate:"omitempty,url"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// CronSecret authenticates the scheduled trigger. Empty rejects every call.
	CronSecret string `yaml:"cron_secret"`
}

type SiteConfig struct {
	BaseURL     string `yaml:"base_url" validate:"required,url"`
	ContentPath string `yaml:"content_path"`
}

type PublicationConfig struct {
	Interval    time.Duration `yaml:"interval"`
	RunTimeout  time.Duration `yaml:"run_timeout"`
	Workers     int           `yaml:"workers" validate:"min=1"`
	CallTimeout time.Duration `yaml:"call_timeout"`
	BatchSize   int           `yaml:"batch_size" validate:"min=1"`
}

type ApprovalConfig struct {
	DefaultDelay time.Duration `yaml:"default_delay" validate:"min=0"`
}

type SMTPConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	FromName  string `yaml:"from_name"`
	FromEmail string `yaml:"from_email" validate:"omitempty,email"`
}

type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts" validate:"min=1"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
}

// PlatformConfig is shared by every social adapter. Only the credential
// fields a platform needs are read by its adapter.
type PlatformConfig struct {
	Enabled     bool          `yaml:"enabled"`
	BaseURL     string        `yaml:"base_url" validate:"omitempty,url"`
	AccessToken string        `yaml:"access_token" validate:"required_if=Enabled true"`
	AccountID   string        `yaml:"account_id"`
	Timeout     time.Duration `yaml:"timeout"`
	Retry       RetryConfig   `yaml:"retry"`
}

type PlatformsConfig struct {
	Facebook  PlatformConfig `yaml:"facebook"`
	Instagram PlatformConfig `yaml:"instagram"`
	LinkedIn  PlatformConfig `yaml:"linkedin"`
	Twitter   PlatformConfig `yaml:"twitter"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

func (c *Config) setDefaults() {
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "content_publisher"
	}
	if c.RabbitMQ.RoutingKey == "" {
		c.RabbitMQ.RoutingKey = "content.published"
	}
	if c.RabbitMQ.QueueName == "" {
		c.RabbitMQ.QueueName = "publication_notifications"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 6 * time.Minute
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = c.Site.BaseURL
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Site.ContentPath == "" {
		c.Site.ContentPath = "/blog"
	}
	if c.Publication.Interval == 0 {
		c.Publication.Interval = 15 * time.Minute
	}
	if c.Publication.RunTimeout == 0 {
		c.Publication.RunTimeout = 5 * time.Minute
	}
	if c.Publication.Workers == 0 {
		c.Publication.Workers = 4
	}
	if c.Publication.CallTimeout == 0 {
		c.Publication.CallTimeout = 20 * time.Second
	}
	if c.Publication.BatchSize == 0 {
		c.Publication.BatchSize = 100
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	for _, p := range []*PlatformConfig{
		&c.Platforms.Facebook, &c.Platforms.Instagram, &c.Platforms.LinkedIn, &c.Platforms.Twitter,
	} {
		p.setDefaults()
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (p *PlatformConfig) setDefaults() {
	if p.Timeout == 0 {
		p.Timeout = 15 * time.Second
	}
	if p.Retry.MaxAttempts == 0 {
		p.Retry.MaxAttempts = 3
	}
	if p.Retry.InitialBackoff == 0 {
		p.Retry.InitialBackoff = 1 * time.Second
	}
	if p.Retry.MaxBackoff == 0 {
		p.Retry.MaxBackoff = 10 * time.Second
	}
}
