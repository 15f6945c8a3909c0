package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Section groups resources and simulations under one navigation entry.
type Section struct {
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Path        string   `json:"path"`
	Resources   []string `json:"resources,omitempty"`
	Simulations []string `json:"simulations,omitempty"`
}

// Registry indexes resources by name.
type Registry struct {
	mu        sync.RWMutex
	resources map[string]Resource
	sections  []Section
}

// NewRegistry registers resources, rejecting duplicates.
func NewRegistry(resources ...Resource) (*Registry, error) {
	r := &Registry{resources: make(map[string]Resource)}
	for _, res := range resources {
		if err := r.Register(res); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a resource.
func (r *Registry) Register(res Resource) error {
	if res == nil {
		return fmt.Errorf("nil resource")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	name := res.Name()
	if _, exists := r.resources[name]; exists {
		return fmt.Errorf("resource %s already registered", name)
	}
	r.resources[name] = res
	return nil
}

// Resource returns the named resource or ErrUnknownResource.
func (r *Registry) Resource(name string) (Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.resources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownResource, name)
	}
	return res, nil
}

// Resources lists the registered resources ordered by name.
func (r *Registry) Resources() []Resource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Resource, 0, len(r.resources))
	for _, res := range r.resources {
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// SetSections replaces the section manifest.
func (r *Registry) SetSections(sections []Section) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sections = append([]Section(nil), sections...)
}

func (r *Registry) Sections() []Section {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Section(nil), r.sections...)
}

// Warm loads every resource concurrently and returns the first failure.
func (r *Registry) Warm(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, res := range r.Resources() {
		g.Go(func() error {
			if err := res.Warm(ctx); err != nil {
				return fmt.Errorf("warm %s: %w", res.Name(), err)
			}
			return nil
		})
	}
	return g.Wait()
}
