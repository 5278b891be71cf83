package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"pharmacounter/pkg/domain"
)

var _ domain.Persistence = (*KV)(nil)

// KV adapts a Store to the opaque key/value persistence the catalog needs.
// Every key is namespaced under prefix.
type KV struct {
	store  Store
	prefix string
}

// NewKV wraps store; prefix may be empty.
func NewKV(store Store, prefix string) *KV {
	return &KV{store: store, prefix: prefix}
}

// Load returns (nil, false, nil) when the key has never been saved.
func (kv *KV) Load(ctx context.Context, key string) ([]byte, bool, error) {
	_, rc, err := kv.store.Get(ctx, kv.prefix+key)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", key, err)
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return data, true, nil
}

// Save replaces the value stored under key.
func (kv *KV) Save(ctx context.Context, key string, value []byte) error {
	if _, err := kv.store.Put(ctx, kv.prefix+key, bytes.NewReader(value), PutOptions{ContentType: "application/json"}); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Entries lists the values saved under the prefix, keyed without it.
func (kv *KV) Entries(ctx context.Context) ([]Info, error) {
	infos, err := kv.store.List(ctx, kv.prefix)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", kv.prefix, err)
	}
	for i := range infos {
		infos[i].Key = strings.TrimPrefix(infos[i].Key, kv.prefix)
	}
	return infos, nil
}

// Delete removes key, reporting whether it was stored.
func (kv *KV) Delete(ctx context.Context, key string) (bool, error) {
	ok, err := kv.store.Delete(ctx, kv.prefix+key)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", key, err)
	}
	return ok, nil
}

// Store returns the wrapped driver.
func (kv *KV) Store() Store { return kv.store }
