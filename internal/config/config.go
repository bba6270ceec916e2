// Package config defines the CloudTask configuration, its defaults, and the
// yaml loader.
package config

import (
	"time"

	"github.com/cloudtask/cloudtask/internal/executor"
	"github.com/cloudtask/cloudtask/internal/types"
)

// Config is the root configuration for the CloudTask CLI.
type Config struct {
	Core     CoreConfig    `mapstructure:"core" yaml:"core"`
	API      APIConfig     `mapstructure:"api" yaml:"api"`
	Database DBConfig      `mapstructure:"database" yaml:"database"`
	Cache    CacheConfig   `mapstructure:"cache" yaml:"cache"`
	Logging  LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// CoreConfig contains core application settings.
type CoreConfig struct {
	HomeDir       string        `mapstructure:"home_dir" yaml:"home_dir"`
	ParallelLimit int           `mapstructure:"parallel_limit" yaml:"parallel_limit" validate:"min=1,max=100"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// APIConfig contains the CloudTask service endpoint and retry knobs.
type APIConfig struct {
	BaseURL           string        `mapstructure:"base_url" yaml:"base_url" validate:"omitempty,url"`
	Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries        int           `mapstructure:"max_retries" yaml:"max_retries" validate:"min=1"`
	InitialDelay      time.Duration `mapstructure:"initial_delay" yaml:"initial_delay"`
	BackoffMultiplier float64       `mapstructure:"backoff_multiplier" yaml:"backoff_multiplier" validate:"gt=1"`
}

// RetryPolicy builds the retry policy configured for remote calls. Only
// failures marked retryable are retried.
func (c APIConfig) RetryPolicy() executor.RetryPolicy {
	return executor.RetryPolicy{
		MaxAttempts:  c.MaxRetries,
		InitialDelay: c.InitialDelay,
		Multiplier:   c.BackoffMultiplier,
		RetryIf:      types.IsRetryable,
	}
}

// DBConfig contains local database configuration.
type DBConfig struct {
	Path        string        `mapstructure:"path" yaml:"path"`
	BusyTimeout time.Duration `mapstructure:"busy_timeout" yaml:"busy_timeout"`
}

// CacheConfig contains search cache configuration.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	Dir     string        `mapstructure:"dir" yaml:"dir"`
	TTL     time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"omitempty,oneof=text json"`
}
