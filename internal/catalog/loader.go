package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"afriqar/internal/logging"
	"afriqar/internal/metrics"
)

// Source fetches a raw fixture document by name.
type Source interface {
	Fetch(ctx context.Context, document string) ([]byte, error)
}

// Collection is a decoded document: its records and any featured ids it lists.
type Collection[T any] struct {
	Items    []T
	Featured []string
}

// Decoder turns a fetched document into a collection.
type Decoder[T any] func(payload []byte) (Collection[T], error)

// Status is the lifecycle of a collection fetch.
type Status string

const (
	StatusPending  Status = "pending"
	StatusLoading  Status = "loading"
	StatusReady    Status = "ready"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
)

// Settled reports whether the fetch has finished one way or another.
func (s Status) Settled() bool {
	return s == StatusReady || s == StatusFailed || s == StatusCanceled
}

// LoadOptions carries the ambient dependencies of a loader.
type LoadOptions struct {
	Logger  *zap.Logger
	Metrics metrics.Recorder
}

// Loader fetches one document exactly once and holds the decoded collection.
// A failed fetch leaves the collection empty; a fetch whose context ends
// before it settles is discarded.
type Loader[T any] struct {
	resource string
	document string
	source   Source
	decode   Decoder[T]
	logger   *zap.Logger
	metrics  metrics.Recorder

	once sync.Once
	done chan struct{}

	mu     sync.RWMutex
	status Status
	coll   Collection[T]
	err    error
}

// NewLoader prepares a loader; nothing is fetched until Start.
func NewLoader[T any](resource, document string, src Source, decode Decoder[T], opts LoadOptions) *Loader[T] {
	return &Loader[T]{
		resource: resource,
		document: document,
		source:   src,
		decode:   decode,
		logger:   logging.OrNop(opts.Logger),
		metrics:  metrics.OrNop(opts.Metrics),
		done:     make(chan struct{}),
		status:   StatusPending,
	}
}

// Start issues the fetch in the background, bound to ctx. Later calls are no-ops.
func (l *Loader[T]) Start(ctx context.Context) {
	l.once.Do(func() {
		l.mu.Lock()
		l.status = StatusLoading
		l.mu.Unlock()
		go l.run(ctx)
	})
}

func (l *Loader[T]) run(ctx context.Context) {
	defer close(l.done)
	start := time.Now()
	coll, err := l.fetch(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if ctxErr := ctx.Err(); ctxErr != nil {
		l.status = StatusCanceled
		l.err = ctxErr
		l.logger.Debug("catalog fetch discarded",
			zap.String("resource", l.resource),
			zap.String("document", l.document))
		return
	}
	l.metrics.Observe(ctx, metrics.OpCatalogLoad, err == nil, time.Since(start))
	if err != nil {
		l.status = StatusFailed
		l.err = err
		l.logger.Warn("catalog fetch failed",
			zap.String("resource", l.resource),
			zap.String("document", l.document),
			zap.Error(err))
		return
	}
	if coll.Items == nil {
		coll.Items = []T{}
	}
	l.status = StatusReady
	l.coll = coll
}

func (l *Loader[T]) fetch(ctx context.Context) (Collection[T], error) {
	if l.source == nil {
		return Collection[T]{}, errors.New("no source configured")
	}
	payload, err := l.source.Fetch(ctx, l.document)
	if err != nil {
		return Collection[T]{}, fmt.Errorf("fetch %s: %w", l.document, err)
	}
	coll, err := l.decode(payload)
	if err != nil {
		return Collection[T]{}, fmt.Errorf("decode %s: %w", l.document, err)
	}
	return coll, nil
}

// Wait blocks until the fetch settles or ctx ends, then reports the current
// state. The returned collection is shared and must not be modified.
func (l *Loader[T]) Wait(ctx context.Context) (Status, Collection[T], error) {
	select {
	case <-l.done:
	case <-ctx.Done():
	}
	return l.Snapshot()
}

// Snapshot reports the current state without blocking.
func (l *Loader[T]) Snapshot() (Status, Collection[T], error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.status, l.coll, l.err
}

// Done is closed once the fetch settles.
func (l *Loader[T]) Done() <-chan struct{} {
	return l.done
}
