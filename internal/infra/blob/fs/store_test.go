package fs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"pharmacounter/internal/blob/core"
)

func newTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store
}

func TestStore_PutGetListDelete(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	info, err := store.Put(ctx, "catalog/pharma_knowledge_db", bytes.NewReader([]byte("[]")), core.PutOptions{ContentType: "application/json"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "catalog/pharma_knowledge_db" || info.Size != 2 || info.ETag == "" {
		t.Fatalf("unexpected info %+v", info)
	}
	second, err := store.Put(ctx, "catalog/pharma_knowledge_db", bytes.NewReader([]byte(`[{"id":"1"}]`)), core.PutOptions{ContentType: "application/json"})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if second.ETag == info.ETag {
		t.Fatalf("expected etag to change on replace")
	}
	g, rc, err := store.Get(ctx, "catalog/pharma_knowledge_db")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	if err := rc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if string(b) != `[{"id":"1"}]` || g.ContentType != "application/json" {
		t.Fatalf("unexpected get artifacts %q %+v", b, g)
	}
	list, err := store.List(ctx, "catalog/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Key != "catalog/pharma_knowledge_db" {
		t.Fatalf("unexpected list %+v", list)
	}
	ok, err := store.Delete(ctx, "catalog/pharma_knowledge_db")
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	ok, err = store.Delete(ctx, "catalog/pharma_knowledge_db")
	if err != nil || ok {
		t.Fatalf("second delete should be false")
	}
}

func TestStore_GetMissingIsNotFound(t *testing.T) {
	store := newTempStore(t)
	if _, _, err := store.Get(context.Background(), "absent"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_GetWithoutSidecar(t *testing.T) {
	store := newTempStore(t)
	if err := os.WriteFile(filepath.Join(store.root, "raw"), []byte("abc"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	info, rc, err := store.Get(context.Background(), "raw")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	_ = rc.Close()
	if info.Size != 3 {
		t.Fatalf("expected size from stat, got %d", info.Size)
	}
}

func TestStore_PathTraversal(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	for _, key := range []string{"../escape", "/abs", "  "} {
		if _, err := store.Put(ctx, key, bytes.NewReader([]byte("x")), core.PutOptions{}); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}
