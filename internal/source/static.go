package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"afriqar/internal/blob"
)

// Embedded serves documents from an fs.FS, normally the bundled fixtures.
type Embedded struct {
	fsys fs.FS
}

func NewEmbedded(fsys fs.FS) *Embedded { return &Embedded{fsys: fsys} }

func (e *Embedded) Driver() string { return DriverEmbedded }
func (e *Embedded) Close() error   { return nil }

func (e *Embedded) Fetch(ctx context.Context, document string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := fs.ReadFile(e.fsys, document)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("document %s: %w", document, ErrNotFound)
	}
	return b, err
}

// Blob serves documents from a blob store under a key prefix.
type Blob struct {
	store  blob.Store
	prefix string
}

func NewBlob(store blob.Store, prefix string) *Blob { return &Blob{store: store, prefix: prefix} }

func (b *Blob) Driver() string { return DriverBlob }
func (b *Blob) Close() error   { return nil }

func (b *Blob) Fetch(ctx context.Context, document string) ([]byte, error) {
	data, err := blob.ReadAll(ctx, b.store, b.prefix+document)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, fmt.Errorf("document %s: %w", document, ErrNotFound)
	}
	return data, err
}

// Seed writes docs under the prefix, replacing existing blobs.
func (b *Blob) Seed(ctx context.Context, docs map[string][]byte) error {
	names := make([]string, 0, len(docs))
	for name := range docs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		opts := blob.PutOptions{ContentType: "application/json", Overwrite: true}
		if _, err := b.store.Put(ctx, b.prefix+name, bytes.NewReader(docs[name]), opts); err != nil {
			return fmt.Errorf("seed %s: %w", name, err)
		}
	}
	return nil
}

// HTTP fetches documents from a static host.
type HTTP struct {
	base   *url.URL
	raw    string
	client *http.Client
}

// NewHTTP returns a source issuing GET <base>/<document>.
func NewHTTP(base string, timeout time.Duration) *HTTP {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		u = nil
	}
	return &HTTP{base: u, raw: base, client: &http.Client{Timeout: timeout}}
}

func (h *HTTP) Driver() string { return DriverHTTP }

func (h *HTTP) Close() error {
	h.client.CloseIdleConnections()
	return nil
}

func (h *HTTP) Fetch(ctx context.Context, document string) ([]byte, error) {
	if h.base == nil {
		return nil, fmt.Errorf("invalid base url %q", h.raw)
	}
	target := *h.base
	target.Path = path.Join("/", h.base.Path, document)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("document %s: %w", document, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("GET %s: unexpected status %s", target.String(), resp.Status)
	}
	return io.ReadAll(resp.Body)
}
