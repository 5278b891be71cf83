// Package core defines the blob store abstraction shared by every persistence driver.
package core

import (
	"context"
	"errors"
	"io"
	"time"
)

// Driver identifies a concrete blob storage backend implementation.
type Driver string

const (
	DriverFilesystem Driver = "fs"       // local filesystem (default)
	DriverS3         Driver = "s3"       // S3 / MinIO compatible
	DriverMemory     Driver = "memory"   // in-memory (tests, ephemeral runs)
	DriverSQLite     Driver = "sqlite"   // embedded sqlite file, one row per key
	DriverPostgres   Driver = "postgres" // PostgreSQL, one row per key
	DriverRedis      Driver = "redis"    // Redis string values
)

// PutOptions specifies optional parameters for Put.
type PutOptions struct {
	ContentType string
}

// Info describes a stored blob.
type Info struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size_bytes"`
	ContentType  string    `json:"content_type,omitempty"`
	ETag         string    `json:"etag,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// Store is a minimal key/value blob abstraction. Semantics mirror a subset of
// S3 so that every adapter stays close to 1:1.
type Store interface {
	// Put stores data at key, replacing any previous value.
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	// Get retrieves the blob contents. Missing keys return an error wrapping ErrNotFound.
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	// Delete removes a blob. Returns (false, nil) if not found.
	Delete(ctx context.Context, key string) (bool, error)
	// List returns blobs whose key has the provided prefix, ordered by key.
	List(ctx context.Context, prefix string) ([]Info, error)
	// Driver returns the configured backend driver.
	Driver() Driver
}

// ErrNotFound is wrapped by drivers when a key does not exist.
var ErrNotFound = errors.New("blobstore: not found")
