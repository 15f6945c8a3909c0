package blob

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestOpenDrivers(t *testing.T) {
	ctx := context.Background()
	fsStore, err := Open(ctx, Config{FSRoot: t.TempDir()})
	if err != nil {
		t.Fatalf("open fs: %v", err)
	}
	if fsStore.Driver() != DriverFilesystem {
		t.Fatalf("default driver = %s", fsStore.Driver())
	}
	mem, err := Open(ctx, Config{Driver: DriverMemory})
	if err != nil || mem.Driver() != DriverMemory {
		t.Fatalf("open memory: %v", err)
	}
	if _, err := Open(ctx, Config{Driver: DriverS3}); err == nil {
		t.Fatalf("expected missing bucket error")
	}
	if _, err := Open(ctx, Config{Driver: "gcs"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}

func TestReadAllThroughFacade(t *testing.T) {
	ctx := context.Background()
	for _, s := range []Store{NewMemory(), NewMockS3ForTests()} {
		if _, err := s.Put(ctx, "catalog/movies.json", bytes.NewReader([]byte(`[]`)), PutOptions{ContentType: "application/json"}); err != nil {
			t.Fatalf("%s put: %v", s.Driver(), err)
		}
		b, err := ReadAll(ctx, s, "catalog/movies.json")
		if err != nil || string(b) != "[]" {
			t.Fatalf("%s ReadAll: %v %q", s.Driver(), err, b)
		}
		if _, err := ReadAll(ctx, s, "catalog/none.json"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("%s expected ErrNotFound, got %v", s.Driver(), err)
		}
	}
}
