// Package screen keeps the mounted catalog screens of API clients and
// unmounts the ones left idle.
package screen

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"afriqar/internal/catalog"
	"afriqar/internal/logging"
)

// ErrNotFound is returned for unknown or expired screen ids.
var ErrNotFound = errors.New("screen: not found")

// Resolver maps a resource name to its catalog.
type Resolver interface {
	Resource(name string) (catalog.Resource, error)
}

// Options configures a Registry.
type Options struct {
	TTL    time.Duration // idle lifetime; zero disables expiry
	Logger *zap.Logger
	Now    func() time.Time
}

// Registry holds screens by id. Screens are mounted on the registry's base
// context so their fetches outlive the request that created them.
type Registry struct {
	base      context.Context
	resources Resolver
	ttl       time.Duration
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string

	mu       sync.Mutex
	sessions map[string]catalog.Mounted
}

func NewRegistry(base context.Context, resources Resolver, opts Options) *Registry {
	if base == nil {
		base = context.Background()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Registry{
		base:      base,
		resources: resources,
		ttl:       opts.TTL,
		logger:    logging.OrNop(opts.Logger),
		now:       opts.Now,
		newID:     uuid.NewString,
		sessions:  make(map[string]catalog.Mounted),
	}
}

// Mount starts a screen over the named resource.
func (r *Registry) Mount(resource string) (catalog.Mounted, error) {
	res, err := r.resources.Resource(resource)
	if err != nil {
		return nil, err
	}
	s := res.Mount(r.base, r.newID())
	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()
	r.logger.Debug("screen mounted", zap.String("screen", s.ID()), zap.String("resource", resource))
	return s, nil
}

func (r *Registry) Get(id string) (catalog.Mounted, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Unmount removes the screen and cancels its fetch.
func (r *Registry) Unmount(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.Unmount()
	r.logger.Debug("screen unmounted", zap.String("screen", id))
	return nil
}

// List returns the mounted screens, oldest first.
func (r *Registry) List() []catalog.Mounted {
	r.mu.Lock()
	out := make([]catalog.Mounted, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].MountedAt().Equal(out[j].MountedAt()) {
			return out[i].ID() < out[j].ID()
		}
		return out[i].MountedAt().Before(out[j].MountedAt())
	})
	return out
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Reap unmounts screens idle for longer than the TTL and reports how many.
func (r *Registry) Reap() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)
	var expired []catalog.Mounted
	r.mu.Lock()
	for id, s := range r.sessions {
		if s.LastActive().Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()
	for _, s := range expired {
		s.Unmount()
		r.logger.Info("screen expired", zap.String("screen", s.ID()), zap.String("resource", s.Resource()))
	}
	return len(expired)
}

// Run reaps every interval until ctx ends.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 || r.ttl <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Reap()
		}
	}
}

// Close unmounts every screen.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]catalog.Mounted)
	r.mu.Unlock()
	for _, s := range sessions {
		s.Unmount()
	}
}
