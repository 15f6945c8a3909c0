package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"afriqar/internal/metrics"
)

// Resource is the type-erased surface of a catalog used by transports.
type Resource interface {
	Name() string
	Describe() Descriptor
	// ValidateQuery checks filters, sort and window without waiting for the fetch.
	ValidateQuery(q Query) error
	// Warm starts the shared fetch and waits for it to settle.
	Warm(ctx context.Context) error
	// Query returns a page; a collection still loading yields StatusLoading and no error.
	Query(ctx context.Context, q Query) (Page, error)
	Find(ctx context.Context, id string) (any, error)
	// Mount starts a screen session with its own fetch, bound to ctx.
	Mount(ctx context.Context, id string) Mounted
}

// Catalog serves stateless queries from one shared loader.
type Catalog[T Record] struct {
	schema Schema[T]
	source Source
	opts   LoadOptions
	base   context.Context
	loader *Loader[T]
}

// New builds a catalog whose shared fetch is bound to base.
func New[T Record](base context.Context, schema Schema[T], src Source, opts LoadOptions) (*Catalog[T], error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	if base == nil {
		base = context.Background()
	}
	return &Catalog[T]{
		schema: schema,
		source: src,
		opts:   opts,
		base:   base,
		loader: NewLoader(schema.Resource, schema.Document, src, schema.Decode, opts),
	}, nil
}

// Name implements Resource.
func (c *Catalog[T]) Name() string { return c.schema.Resource }

// Describe implements Resource.
func (c *Catalog[T]) Describe() Descriptor { return c.schema.Describe() }

// ValidateQuery implements Resource.
func (c *Catalog[T]) ValidateQuery(q Query) error { return c.schema.ValidateQuery(q) }

// Schema exposes the typed schema.
func (c *Catalog[T]) Schema() Schema[T] { return c.schema }

// Warm implements Resource.
func (c *Catalog[T]) Warm(ctx context.Context) error {
	c.loader.Start(c.base)
	status, _, err := c.loader.Wait(ctx)
	return settledErr(ctx, status, err)
}

// Items waits for the collection and returns its records.
func (c *Catalog[T]) Items(ctx context.Context) ([]T, error) {
	c.loader.Start(c.base)
	status, coll, err := c.loader.Wait(ctx)
	if err := settledErr(ctx, status, err); err != nil {
		return nil, err
	}
	return coll.Items, nil
}

// Query implements Resource.
func (c *Catalog[T]) Query(ctx context.Context, q Query) (page Page, err error) {
	start := time.Now()
	defer func() {
		if !errors.Is(err, ErrUnavailable) {
			metrics.Since(ctx, c.opts.Metrics, metrics.OpCatalogQuery, start, err)
		}
	}()
	if err := c.schema.ValidateQuery(q); err != nil {
		return Page{}, err
	}
	c.loader.Start(c.base)
	status, coll, loadErr := c.loader.Wait(ctx)
	switch status {
	case StatusReady:
		return c.schema.View(coll, q)
	case StatusFailed, StatusCanceled:
		return Page{Resource: c.schema.Resource, Status: status}, fmt.Errorf("%w: %v", ErrUnavailable, loadErr)
	default:
		return Page{Resource: c.schema.Resource, Status: StatusLoading, Filters: q.Filters.Clone(), Sort: q.Sort, Items: []any{}}, nil
	}
}

// Find implements Resource.
func (c *Catalog[T]) Find(ctx context.Context, id string) (any, error) {
	c.loader.Start(c.base)
	status, coll, err := c.loader.Wait(ctx)
	if err := settledErr(ctx, status, err); err != nil {
		return nil, err
	}
	return c.schema.Lookup(coll, id)
}

// Mount implements Resource.
func (c *Catalog[T]) Mount(ctx context.Context, id string) Mounted {
	return MountScreen(ctx, id, c.schema, c.source, c.opts)
}

func settledErr(ctx context.Context, status Status, loadErr error) error {
	switch status {
	case StatusReady:
		return nil
	case StatusFailed, StatusCanceled:
		return fmt.Errorf("%w: %v", ErrUnavailable, loadErr)
	default:
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", ErrNotLoaded, ctx.Err())
		}
		return ErrNotLoaded
	}
}
