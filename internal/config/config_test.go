package config

import (
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"PHARMACOUNTER_STORAGE_DRIVER", "PHARMACOUNTER_FS_ROOT", "PHARMACOUNTER_SQLITE_PATH",
		"PHARMACOUNTER_POSTGRES_DSN", "PHARMACOUNTER_REDIS_ADDR", "PHARMACOUNTER_S3_BUCKET",
		"PHARMACOUNTER_S3_REGION", "PHARMACOUNTER_S3_ENDPOINT", "PHARMACOUNTER_S3_PATH_STYLE",
		"GEMINI_API_KEY", "PHARMACOUNTER_HTTP_ADDR", "PHARMACOUNTER_LOG_MODE",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Storage.Driver != DriverFS {
		t.Errorf("expected fs driver, got %s", cfg.Storage.Driver)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if d, _ := cfg.ReminderInterval(); d != time.Minute {
		t.Errorf("expected 1m reminder interval, got %s", d)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("expected default addr, got %s", cfg.HTTP.Addr)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Storage.Driver = DriverSQLite
	cfg.Storage.SQLite.Path = "/tmp/catalog.db"
	cfg.AI.Model = "gemini-test"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Storage.Driver != DriverSQLite || loaded.Storage.SQLite.Path != "/tmp/catalog.db" {
		t.Errorf("storage not round-tripped: %+v", loaded.Storage)
	}
	if loaded.AI.Model != "gemini-test" {
		t.Errorf("expected model gemini-test, got %s", loaded.AI.Model)
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PHARMACOUNTER_STORAGE_DRIVER", DriverS3)
	t.Setenv("PHARMACOUNTER_S3_BUCKET", "catalog")
	t.Setenv("PHARMACOUNTER_S3_PATH_STYLE", "TRUE")
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Driver != DriverS3 || cfg.Storage.S3.Bucket != "catalog" || !cfg.Storage.S3.PathStyle {
		t.Errorf("s3 overrides not applied: %+v", cfg.Storage.S3)
	}
	if cfg.AI.APIKey != "env-key" {
		t.Errorf("expected api key from env, got %q", cfg.AI.APIKey)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Storage.Driver = "floppy" }},
		{"s3 without bucket", func(c *Config) { c.Storage.Driver = DriverS3 }},
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = DriverPostgres }},
		{"redis without addr", func(c *Config) { c.Storage.Driver = DriverRedis }},
		{"bad ai timeout", func(c *Config) { c.AI.Timeout = "soon" }},
		{"negative interval", func(c *Config) { c.Reminders.Interval = "-1s" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
