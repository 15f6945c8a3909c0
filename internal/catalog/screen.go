package catalog

import (
	"context"
	"sync"
	"time"
)

// Mounted is the type-erased surface of a screen session.
type Mounted interface {
	ID() string
	Resource() string
	MountedAt() time.Time
	LastActive() time.Time
	// SetFilters replaces the whole filter state and sort mode.
	SetFilters(filters FilterState, sort SortMode) error
	SetFilter(name, value string) error
	SetSort(mode SortMode) error
	// Reset restores the default filters, sort and grid view.
	Reset() error
	Select(ctx context.Context, id string) error
	Back() error
	View(ctx context.Context) (ScreenView, error)
	Unmount()
}

// ScreenView is what a screen currently shows: the filtered grid, or the
// selected record's detail.
type ScreenView struct {
	Screen   string      `json:"screen"`
	Resource string      `json:"resource"`
	Mode     ViewMode    `json:"mode"`
	Status   Status      `json:"status"`
	Filters  FilterState `json:"filters,omitempty"`
	Sort     SortMode    `json:"sort"`
	Page     *Page       `json:"page,omitempty"`
	Selected any         `json:"selected,omitempty"`
}

// Screen is the state of one mounted catalog screen. It owns its fetch, which
// is canceled when the screen unmounts.
type Screen[T Record] struct {
	id     string
	schema Schema[T]
	loader *Loader[T]
	cancel context.CancelFunc

	mu        sync.Mutex
	filters   FilterState
	sort      SortMode
	selection Selection
	mountedAt time.Time
	touched   time.Time
	unmounted bool
}

// MountScreen creates a screen and starts its fetch.
func MountScreen[T Record](ctx context.Context, id string, schema Schema[T], src Source, opts LoadOptions) *Screen[T] {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	now := time.Now()
	s := &Screen[T]{
		id:        id,
		schema:    schema,
		loader:    NewLoader(schema.Resource, schema.Document, src, schema.Decode, opts),
		cancel:    cancel,
		filters:   FilterState{},
		sort:      SortRecent,
		mountedAt: now,
		touched:   now,
	}
	s.loader.Start(ctx)
	return s
}

func (s *Screen[T]) ID() string       { return s.id }
func (s *Screen[T]) Resource() string { return s.schema.Resource }

func (s *Screen[T]) MountedAt() time.Time { return s.mountedAt }

func (s *Screen[T]) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

// SetFilters implements Mounted. The state is only replaced when valid.
func (s *Screen[T]) SetFilters(filters FilterState, sort SortMode) error {
	if sort == "" {
		sort = SortRecent
	}
	if err := s.schema.ValidateQuery(Query{Filters: filters, Sort: sort}); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unmounted {
		return ErrUnmounted
	}
	s.filters = filters.Clone()
	if s.filters == nil {
		s.filters = FilterState{}
	}
	s.sort = sort
	s.touched = time.Now()
	return nil
}

func (s *Screen[T]) SetFilter(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unmounted {
		return ErrUnmounted
	}
	next := s.filters.Clone()
	next[name] = value
	if _, err := Compose(s.schema.Dimensions, next); err != nil {
		return err
	}
	s.filters = next
	s.touched = time.Now()
	return nil
}

func (s *Screen[T]) SetSort(mode SortMode) error {
	if mode == "" {
		mode = SortRecent
	}
	if err := s.schema.ValidateQuery(Query{Sort: mode}); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unmounted {
		return ErrUnmounted
	}
	s.sort = mode
	s.touched = time.Now()
	return nil
}

func (s *Screen[T]) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unmounted {
		return ErrUnmounted
	}
	s.filters = FilterState{}
	s.sort = SortRecent
	s.selection.Clear()
	s.touched = time.Now()
	return nil
}

// Select opens the detail view of id once the collection is loaded.
func (s *Screen[T]) Select(ctx context.Context, id string) error {
	if s.isUnmounted() {
		return ErrUnmounted
	}
	status, coll, err := s.loader.Wait(ctx)
	if err := settledErr(ctx, status, err); err != nil {
		return err
	}
	if _, err := s.schema.Lookup(coll, id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unmounted {
		return ErrUnmounted
	}
	s.selection.Select(id)
	s.touched = time.Now()
	return nil
}

// Back returns to the grid; filters and sort are untouched.
func (s *Screen[T]) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unmounted {
		return ErrUnmounted
	}
	s.selection.Clear()
	s.touched = time.Now()
	return nil
}

// View waits for the fetch up to ctx and renders the current state.
func (s *Screen[T]) View(ctx context.Context) (ScreenView, error) {
	if s.isUnmounted() {
		return ScreenView{}, ErrUnmounted
	}
	status, coll, loadErr := s.loader.Wait(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unmounted {
		return ScreenView{}, ErrUnmounted
	}
	s.touched = time.Now()
	view := ScreenView{
		Screen:   s.id,
		Resource: s.schema.Resource,
		Mode:     s.selection.Mode(),
		Status:   status,
		Filters:  s.filters.Clone(),
		Sort:     s.sort,
	}
	switch status {
	case StatusReady:
	case StatusFailed, StatusCanceled:
		return view, settledErr(ctx, status, loadErr)
	default:
		view.Status = StatusLoading
		return view, nil
	}

	if id, ok := s.selection.ID(); ok {
		item, err := s.schema.Lookup(coll, id)
		if err != nil {
			return view, err
		}
		view.Selected = item
		return view, nil
	}
	page, err := s.schema.View(coll, Query{Filters: s.filters, Sort: s.sort})
	if err != nil {
		return view, err
	}
	view.Page = &page
	return view, nil
}

// Unmount cancels any in-flight fetch; later calls fail with ErrUnmounted.
func (s *Screen[T]) Unmount() {
	s.mu.Lock()
	s.unmounted = true
	s.mu.Unlock()
	s.cancel()
}

// Loaded is closed once the screen's fetch settles.
func (s *Screen[T]) Loaded() <-chan struct{} {
	return s.loader.Done()
}

func (s *Screen[T]) isUnmounted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unmounted
}
