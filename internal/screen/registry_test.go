package screen

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"afriqar/internal/catalog"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeScreen struct {
	catalog.Mounted // unused methods panic

	id, resource string
	mounted      time.Time

	mu        sync.Mutex
	active    time.Time
	unmounted int
}

func (s *fakeScreen) ID() string           { return s.id }
func (s *fakeScreen) Resource() string     { return s.resource }
func (s *fakeScreen) MountedAt() time.Time { return s.mounted }

func (s *fakeScreen) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *fakeScreen) touch(at time.Time) {
	s.mu.Lock()
	s.active = at
	s.mu.Unlock()
}

func (s *fakeScreen) Unmount() {
	s.mu.Lock()
	s.unmounted++
	s.mu.Unlock()
}

func (s *fakeScreen) unmounts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unmounted
}

type fakeResource struct {
	catalog.Resource

	name    string
	now     func() time.Time
	baseCtx []context.Context
	screens []*fakeScreen
}

func (r *fakeResource) Mount(ctx context.Context, id string) catalog.Mounted {
	s := &fakeScreen{id: id, resource: r.name, mounted: r.now(), active: r.now()}
	r.baseCtx = append(r.baseCtx, ctx)
	r.screens = append(r.screens, s)
	return s
}

type resolver map[string]*fakeResource

func (m resolver) Resource(name string) (catalog.Resource, error) {
	if r, ok := m[name]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("%w: %s", catalog.ErrUnknownResource, name)
}

type manualTime struct {
	mu  sync.Mutex
	now time.Time
}

func (m *manualTime) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *manualTime) Add(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

func setup(ttl time.Duration, logger *zap.Logger) (*Registry, *fakeResource, *manualTime) {
	clock := &manualTime{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	movies := &fakeResource{name: "movies", now: clock.Now}
	reg := NewRegistry(context.Background(), resolver{"movies": movies}, Options{TTL: ttl, Logger: logger, Now: clock.Now})
	n := 0
	reg.newID = func() string { n++; return fmt.Sprintf("s%d", n) }
	return reg, movies, clock
}

func TestMountGetUnmount(t *testing.T) {
	reg, movies, _ := setup(time.Minute, nil)

	s, err := reg.Mount("movies")
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if s.ID() != "s1" || s.Resource() != "movies" {
		t.Fatalf("unexpected screen %s/%s", s.ID(), s.Resource())
	}
	if movies.baseCtx[0] != context.Background() {
		t.Fatalf("screen not mounted on the registry base context")
	}
	got, err := reg.Get("s1")
	if err != nil || got != s {
		t.Fatalf("Get: %v", err)
	}
	if _, err := reg.Mount("podcasts"); !errors.Is(err, catalog.ErrUnknownResource) {
		t.Fatalf("expected ErrUnknownResource, got %v", err)
	}

	if err := reg.Unmount("s1"); err != nil {
		t.Fatalf("Unmount: %v", err)
	}
	if movies.screens[0].unmounts() != 1 {
		t.Fatalf("screen not unmounted")
	}
	if _, err := reg.Get("s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := reg.Unmount("s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second unmount, got %v", err)
	}
}

func TestReapExpiresIdleScreens(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	reg, movies, clock := setup(10*time.Minute, zap.New(core))

	if _, err := reg.Mount("movies"); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	clock.Add(5 * time.Minute)
	if _, err := reg.Mount("movies"); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	clock.Add(4 * time.Minute)
	movies.screens[0].touch(clock.Now())

	clock.Add(7 * time.Minute)
	if n := reg.Reap(); n != 1 {
		t.Fatalf("expected one expired screen, got %d", n)
	}
	if _, err := reg.Get("s2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("idle screen survived: %v", err)
	}
	if _, err := reg.Get("s1"); err != nil {
		t.Fatalf("active screen expired: %v", err)
	}
	if movies.screens[1].unmounts() != 1 {
		t.Fatalf("expired screen not unmounted")
	}
	if logs.FilterMessage("screen expired").Len() != 1 {
		t.Fatalf("expected an expiry log entry, got %v", logs.All())
	}
}

func TestReapWithoutTTL(t *testing.T) {
	reg, _, clock := setup(0, nil)
	if _, err := reg.Mount("movies"); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	clock.Add(24 * time.Hour)
	if n := reg.Reap(); n != 0 || reg.Len() != 1 {
		t.Fatalf("expected no expiry without a TTL, reaped %d", n)
	}
}

func TestRunStopsWithContext(t *testing.T) {
	reg, movies, clock := setup(time.Minute, nil)
	if _, err := reg.Mount("movies"); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	clock.Add(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reg.Run(ctx, time.Millisecond)
		close(done)
	}()
	deadline := time.After(5 * time.Second)
	for reg.Len() != 0 {
		select {
		case <-deadline:
			t.Fatalf("reaper never ran")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	<-done
	if movies.screens[0].unmounts() != 1 {
		t.Fatalf("reaped screen not unmounted")
	}
}

func TestCloseUnmountsAll(t *testing.T) {
	reg, movies, _ := setup(time.Minute, nil)
	for i := 0; i < 3; i++ {
		if _, err := reg.Mount("movies"); err != nil {
			t.Fatalf("Mount: %v", err)
		}
	}
	if got := reg.List(); len(got) != 3 || got[0].ID() != "s1" {
		t.Fatalf("unexpected list %v", got)
	}
	reg.Close()
	if reg.Len() != 0 {
		t.Fatalf("Close left %d screens", reg.Len())
	}
	for _, s := range movies.screens {
		if s.unmounts() != 1 {
			t.Fatalf("screen %s unmounted %d times", s.id, s.unmounts())
		}
	}
}
