// Package config loads the catalog configuration from YAML with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers understood by the blob factory.
const (
	DriverMemory   = "memory"
	DriverFS       = "fs"
	DriverS3       = "s3"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config holds all runtime configuration.
type Config struct {
	Storage   StorageConfig   `yaml:"storage"`
	AI        AIConfig        `yaml:"ai"`
	HTTP      HTTPConfig      `yaml:"http"`
	Logging   LoggingConfig   `yaml:"logging"`
	Reminders RemindersConfig `yaml:"reminders"`
}

// StorageConfig selects and configures the persistence driver.
type StorageConfig struct {
	Driver   string         `yaml:"driver"` // memory, fs, s3, sqlite, postgres, redis
	Prefix   string         `yaml:"prefix"` // prepended to every persistence key
	FS       FSConfig       `yaml:"fs"`
	S3       S3Config       `yaml:"s3"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
}

type FSConfig struct {
	Root string `yaml:"root"`
}

type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	PathStyle       bool   `yaml:"path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// AIConfig configures the generative-text provider.
type AIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	Timeout string `yaml:"timeout"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type LoggingConfig struct {
	Mode  string `yaml:"mode"`  // dev, prod
	Level string `yaml:"level"` // debug, info, warn, error
}

// RemindersConfig controls the rotating health/safety reminder.
type RemindersConfig struct {
	Interval string `yaml:"interval"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Driver: DriverFS,
			FS:     FSConfig{Root: "./pharmadata"},
			S3:     S3Config{Region: "us-east-1"},
			SQLite: SQLiteConfig{Path: "pharmacounter.db"},
		},
		AI: AIConfig{
			Model:   "gemini-3-flash-preview",
			Timeout: "60s",
		},
		HTTP:      HTTPConfig{Addr: ":8080"},
		Logging:   LoggingConfig{Mode: "dev", Level: "info"},
		Reminders: RemindersConfig{Interval: "1m"},
	}
}

// Load reads configuration from a YAML file. A missing file yields defaults.
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PHARMACOUNTER_STORAGE_DRIVER"); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv("PHARMACOUNTER_FS_ROOT"); v != "" {
		c.Storage.FS.Root = v
	}
	if v := os.Getenv("PHARMACOUNTER_SQLITE_PATH"); v != "" {
		c.Storage.SQLite.Path = v
	}
	if v := os.Getenv("PHARMACOUNTER_POSTGRES_DSN"); v != "" {
		c.Storage.Postgres.DSN = v
	}
	if v := os.Getenv("PHARMACOUNTER_REDIS_ADDR"); v != "" {
		c.Storage.Redis.Addr = v
	}
	if v := os.Getenv("PHARMACOUNTER_S3_BUCKET"); v != "" {
		c.Storage.S3.Bucket = v
	}
	if v := os.Getenv("PHARMACOUNTER_S3_REGION"); v != "" {
		c.Storage.S3.Region = v
	}
	if v := os.Getenv("PHARMACOUNTER_S3_ENDPOINT"); v != "" {
		c.Storage.S3.Endpoint = v
	}
	if v := os.Getenv("PHARMACOUNTER_S3_PATH_STYLE"); v != "" {
		c.Storage.S3.PathStyle = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.AI.APIKey = v
	}
	if v := os.Getenv("PHARMACOUNTER_HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("PHARMACOUNTER_LOG_MODE"); v != "" {
		c.Logging.Mode = v
	}
}

// Validate checks driver selection and duration fields.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverFS, DriverSQLite:
	case DriverS3:
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket required for s3 driver")
		}
	case DriverPostgres:
		if c.Storage.Postgres.DSN == "" {
			return fmt.Errorf("storage.postgres.dsn required for postgres driver")
		}
	case DriverRedis:
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("storage.redis.addr required for redis driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if _, err := c.AITimeout(); err != nil {
		return err
	}
	if _, err := c.ReminderInterval(); err != nil {
		return err
	}
	return nil
}

// AITimeout parses the provider call timeout.
func (c *Config) AITimeout() (time.Duration, error) {
	return parseDuration("ai.timeout", c.AI.Timeout, 60*time.Second)
}

// ReminderInterval parses the reminder rotation interval.
func (c *Config) ReminderInterval() (time.Duration, error) {
	return parseDuration("reminders.interval", c.Reminders.Interval, time.Minute)
}

func parseDuration(field, raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", field, raw)
	}
	return d, nil
}
