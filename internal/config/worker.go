package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// WorkerConfig is loaded entirely from the environment; the worker runs in
// containers that have no config file mounted.
type WorkerConfig struct {
	DatabaseHost     string        `envconfig:"DB_HOST" default:"localhost"`
	DatabasePort     int           `envconfig:"DB_PORT" default:"5432"`
	DatabaseUser     string        `envconfig:"DB_USER" default:"postgres"`
	DatabasePassword string        `envconfig:"DB_PASSWORD"`
	DatabaseName     string        `envconfig:"DB_NAME" default:"mentalhealth"`
	DatabaseSSLMode  string        `envconfig:"DB_SSLMODE" default:"disable"`
	RedisURL         string        `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	PollInterval     time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"5s"`
	BatchSize        int           `envconfig:"OUTBOX_BATCH_SIZE" default:"50"`
	RetentionPeriod  time.Duration `envconfig:"RETENTION_PERIOD" default:"2160h"`
	RetentionEvery   time.Duration `envconfig:"RETENTION_INTERVAL" default:"1h"`
	EmailEnabled     bool          `envconfig:"EMAIL_ENABLED" default:"false"`
	EmailHost        string        `envconfig:"EMAIL_HOST"`
	EmailPort        int           `envconfig:"EMAIL_PORT" default:"587"`
	EmailUsername    string        `envconfig:"EMAIL_USERNAME"`
	EmailPassword    string        `envconfig:"EMAIL_PASSWORD"`
	EmailFrom        string        `envconfig:"EMAIL_FROM"`
}

func (c WorkerConfig) Database() DatabaseConfig {
	return DatabaseConfig{
		Host:     c.DatabaseHost,
		Port:     c.DatabasePort,
		User:     c.DatabaseUser,
		Password: c.DatabasePassword,
		Name:     c.DatabaseName,
		SSLMode:  c.DatabaseSSLMode,
	}
}

func LoadWorkerConfig() (*WorkerConfig, error) {
	var config WorkerConfig
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to load worker config: %w", err)
	}
	return &config, nil
}
