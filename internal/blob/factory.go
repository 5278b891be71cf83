package blob

import (
	"context"
	"fmt"
	"io"

	"pharmacounter/internal/config"
)

// Open selects a blob.Store implementation from the storage configuration.
// Driver-specific settings live under the matching sub-section (fs, s3, sqlite,
// postgres, redis); memory needs none.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch Driver(cfg.Driver) {
	case "", DriverFilesystem:
		return NewFilesystem(cfg.FS.Root)
	case DriverMemory:
		return NewMemory(), nil
	case DriverS3:
		return NewS3(ctx, S3Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			PathStyle:       cfg.S3.PathStyle,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})
	case DriverSQLite:
		return NewSQLite(cfg.SQLite.Path)
	case DriverPostgres:
		return NewPostgres(ctx, cfg.Postgres.DSN)
	case DriverRedis:
		return NewRedis(ctx, RedisConfig{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	default:
		return nil, fmt.Errorf("unknown blob driver %s", cfg.Driver)
	}
}

// Close releases driver resources for stores that hold connections.
func Close(s Store) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
