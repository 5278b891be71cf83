package blob

import (
	"context"

	"pharmacounter/internal/infra/blob/redis"
	"pharmacounter/internal/infra/persistence/postgres"
	"pharmacounter/internal/infra/persistence/sqlite"
)

// RedisConfig re-exports the infra Redis configuration type.
type RedisConfig = redis.Config

// NewRedis connects to Redis and returns a blob.Store over string values.
func NewRedis(ctx context.Context, cfg RedisConfig) (Store, error) {
	return redis.New(ctx, cfg)
}

// NewSQLite opens a single-file SQLite blob.Store.
func NewSQLite(path string) (Store, error) {
	return sqlite.NewStore(path)
}

// NewPostgres opens a Postgres-backed blob.Store.
func NewPostgres(ctx context.Context, dsn string) (Store, error) {
	return postgres.NewStore(ctx, dsn)
}
