package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"

	"afriqar/internal/blob/core"
)

func TestStore_MockedBasicFlow(t *testing.T) {
	store := NewMockForTests(0)
	ctx := context.Background()
	info, err := store.Put(ctx, "exports/movies.json", bytes.NewReader([]byte("hello")), core.PutOptions{ContentType: "application/json"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "exports/movies.json" || info.ContentType != "application/json" || info.Size != 5 {
		t.Fatalf("unexpected info %#v", info)
	}
	if _, err := store.Put(ctx, "exports/movies.json", bytes.NewReader([]byte("ignored")), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if _, err := store.Put(ctx, "exports/movies.json", bytes.NewReader([]byte("replaced")), core.PutOptions{Overwrite: true}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	_, rc, err := store.Get(ctx, "exports/movies.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != "replaced" {
		t.Fatalf("get mismatch: %q", string(data))
	}
	if url, err := store.PresignURL(ctx, "exports/movies.json", core.SignedURLOptions{Expiry: 30 * time.Second}); err != nil || url == "" {
		t.Fatalf("presign: %v %s", err, url)
	}
	if ok, err := store.Delete(ctx, "exports/movies.json"); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if ok, err := store.Delete(ctx, "exports/movies.json"); err != nil || ok {
		t.Fatalf("delete missing: %v %v", ok, err)
	}
}

func TestStore_ListPaginates(t *testing.T) {
	store := NewMockForTests(2)
	ctx := context.Background()
	for _, k := range []string{"catalog/c.json", "catalog/a.json", "catalog/b.json", "other/x"} {
		if _, err := store.Put(ctx, k, bytes.NewReader([]byte("{}")), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}
	list, err := store.List(ctx, "catalog/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || list[0].Key != "catalog/a.json" || list[2].Key != "catalog/c.json" {
		t.Fatalf("unexpected list %+v", list)
	}
	if list, err := store.List(ctx, "none/"); err != nil || len(list) != 0 {
		t.Fatalf("expected empty list: %v %+v", err, list)
	}
}

func TestStore_ErrorPaths(t *testing.T) {
	store := NewMockForTests(0)
	ctx := context.Background()
	if _, err := store.Head(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from head, got %v", err)
	}
	if _, _, err := store.Get(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from get, got %v", err)
	}
	if _, err := store.PresignURL(ctx, "k", core.SignedURLOptions{Method: "PUT"}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected presign unsupported error, got %v", err)
	}
	if _, err := New(ctx, Config{}); err == nil {
		t.Fatalf("expected error for missing bucket")
	}
}

func TestStore_NewAndEnv(t *testing.T) {
	s, err := New(context.Background(), Config{Bucket: "bkt", Endpoint: "https://mock.s3.local", PathStyle: true, AccessKeyID: "AKIA", SecretAccessKey: "SECRET"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Driver() != core.DriverS3 {
		t.Fatalf("expected DriverS3")
	}

	t.Setenv("AFRIQAR_BLOB_S3_BUCKET", "env-bucket")
	t.Setenv("AFRIQAR_BLOB_S3_REGION", "eu-west-1")
	t.Setenv("AFRIQAR_BLOB_S3_PATH_STYLE", "TRUE")
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIA")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "SECRET")
	cfg := ConfigFromEnv(Config{Region: "us-east-1", Endpoint: "http://minio:9000"})
	if cfg.Bucket != "env-bucket" || cfg.Region != "eu-west-1" || !cfg.PathStyle || cfg.Endpoint != "http://minio:9000" {
		t.Fatalf("unexpected env config %+v", cfg)
	}
	if _, err := OpenFromEnv(context.Background()); err != nil {
		t.Fatalf("OpenFromEnv: %v", err)
	}
}

func TestFromHeadNilFields(t *testing.T) {
	store := NewMockForTests(0)
	info := store.fromHead("k", 10, nil, aws.String("\"etagval\""), map[string]string{"x": "y"}, nil)
	if info.ETag != "etagval" || info.ContentType != "" || info.Key != "k" || info.Size != 10 || info.LastModified.IsZero() {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestDecodeChunked(t *testing.T) {
	if _, ok := decodeChunked([]byte("not-chunked")); ok {
		t.Fatalf("expected failure for plain body")
	}
	if _, ok := decodeChunked([]byte("5\r\nabc\r\n0\r\n")); ok {
		t.Fatalf("size mismatch should fail")
	}
	b, ok := decodeChunked([]byte("3\r\nhel\r\n2;chunk-signature=x\r\nlo\r\n0\r\nx-amz-checksum-crc32:AAAA\r\n\r\n"))
	if !ok || string(b) != "hello" {
		t.Fatalf("decode = %q %v", b, ok)
	}
}

func TestMockTransportUnsupported(t *testing.T) {
	rt := &mockTransport{state: make(map[string]mockObj)}
	req, _ := http.NewRequest(http.MethodPatch, "https://mock.s3.local/bucket/key", nil)
	resp, _ := rt.RoundTrip(req)
	if resp.StatusCode != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d", resp.StatusCode)
	}
}
