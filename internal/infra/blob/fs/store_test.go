package fs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"afriqar/internal/blob/core"
)

func newTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store
}

func TestStore_PutGetHeadListDelete(t *testing.T) { //nolint:cyclop
	ctx := context.Background()
	store := newTempStore(t)
	info, err := store.Put(ctx, "exports/movies.csv", bytes.NewReader([]byte("id,title\n")), core.PutOptions{ContentType: "text/csv", Metadata: map[string]string{"resource": "movies"}})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "exports/movies.csv" || info.Size != 9 || info.ETag == "" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := store.Put(ctx, "exports/movies.csv", bytes.NewReader([]byte("x")), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	h, err := store.Head(ctx, "exports/movies.csv")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if h.Metadata["resource"] != "movies" || h.ContentType != "text/csv" {
		t.Fatalf("unexpected head %+v", h)
	}
	g, rc, err := store.Get(ctx, "exports/movies.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	if err := rc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if string(b) != "id,title\n" || g.ETag != h.ETag {
		t.Fatalf("unexpected get %q %+v", b, g)
	}
	list, err := store.List(ctx, "exports/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Key != "exports/movies.csv" {
		t.Fatalf("unexpected list %+v", list)
	}
	if ok, err := store.Delete(ctx, "exports/movies.csv"); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if ok, err := store.Delete(ctx, "exports/movies.csv"); err != nil || ok {
		t.Fatalf("second delete: %v %v", ok, err)
	}
	if _, err := os.Stat(filepath.Join(store.Root(), "exports", "movies.csv.meta")); !os.IsNotExist(err) {
		t.Fatalf("sidecar should be removed, stat err %v", err)
	}
}

func TestStore_OverwriteKeepsCreation(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	if _, err := store.Put(ctx, "catalog/movies.json", bytes.NewReader([]byte("[]")), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	first, err := readMeta(filepath.Join(store.Root(), "catalog", "movies.json.meta"))
	if err != nil {
		t.Fatalf("readMeta: %v", err)
	}
	info, err := store.Put(ctx, "catalog/movies.json", bytes.NewReader([]byte(`[{"id":"m1"}]`)), core.PutOptions{Overwrite: true, ContentType: "application/json"})
	if err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if info.Size != 13 || info.ContentType != "application/json" {
		t.Fatalf("unexpected info %+v", info)
	}
	second, err := readMeta(filepath.Join(store.Root(), "catalog", "movies.json.meta"))
	if err != nil {
		t.Fatalf("readMeta: %v", err)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("creation time changed: %v -> %v", first.CreatedAt, second.CreatedAt)
	}
}

func TestStore_PlainFilesWithoutSidecar(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	dir := filepath.Join(store.Root(), "catalog")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "tribes.json"), []byte(`[]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	info, rc, err := store.Get(ctx, "catalog/tribes.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	_ = rc.Close()
	if info.Size != 2 || info.ContentType != "application/json" {
		t.Fatalf("unexpected derived info %+v", info)
	}
	list, err := store.List(ctx, "catalog/")
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v %+v", err, list)
	}
}

func TestStore_ErrorPaths(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	for _, key := range []string{"", "../escape", "/abs", "x.meta"} {
		if _, err := store.Put(ctx, key, bytes.NewReader(nil), core.PutOptions{}); err == nil {
			t.Fatalf("expected invalid key error for %q", key)
		}
	}
	if _, _, err := store.Get(ctx, "missing.json"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from Get, got %v", err)
	}
	if _, err := store.Head(ctx, "missing.json"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from Head, got %v", err)
	}
	if _, err := store.PresignURL(ctx, "k", core.SignedURLOptions{Method: "PUT"}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected unsupported, got %v", err)
	}
	url, err := store.PresignURL(ctx, "exports/a.csv", core.SignedURLOptions{})
	if err != nil || url != "http://local.blob/exports/a.csv" {
		t.Fatalf("presign: %v %s", err, url)
	}
}

func TestStore_CorruptSidecar(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	if _, err := store.Put(ctx, "a.txt", bytes.NewReader([]byte("a")), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := os.WriteFile(filepath.Join(store.Root(), "a.txt.meta"), []byte("{"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := store.Get(ctx, "a.txt"); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, err := store.List(ctx, ""); err == nil {
		t.Fatalf("expected list error")
	}
}
