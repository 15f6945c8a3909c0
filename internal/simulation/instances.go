package simulation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"afriqar/internal/content"
	"afriqar/internal/logging"
	"afriqar/internal/metrics"
)

// Simulation kinds, as listed by the site sections.
const (
	KindDNA           = content.SimDNA
	KindPronunciation = content.SimPronounce
	KindContactForm   = content.SimContactForm
	KindNewsletter    = content.SimNewsletter
)

// Kinds lists every simulation kind.
var Kinds = []string{KindDNA, KindPronunciation, KindContactForm, KindNewsletter}

var (
	ErrUnknownKind = errors.New("simulation: unknown kind")
	ErrNotFound    = errors.New("simulation: instance not found")
	ErrNoSelection = errors.New("simulation: kind has nothing to select")
)

// Trigger carries the kind-specific input of a trigger call.
type Trigger struct {
	FileName string `json:"fileName,omitempty"` // dna
	Dialect  string `json:"dialect,omitempty"`  // pronunciation
	Lesson   string `json:"lesson,omitempty"`
	Word     int    `json:"word,omitempty"`
	Submission
}

// Instance is a mounted simulation.
type Instance interface {
	ID() string
	Kind() string
	CreatedAt() time.Time
	Trigger(ctx context.Context, in Trigger) error
	Select(ctx context.Context, id string) error
	View(ctx context.Context) (any, error)
	Close()
}

// Factory builds instances with shared settings.
type Factory struct {
	Clock      Clock
	Policy     Policy
	DNADelay   time.Duration
	AudioDelay time.Duration
	AckReset   time.Duration
	Random     *Random
	Tribes     TribeLister
	Dialects   DialectFinder
	Contact    ContactLoader
	Logger     *zap.Logger
	Metrics    metrics.Recorder
}

func (f *Factory) options(name string, delay time.Duration) Options {
	return Options{Name: name, Clock: f.Clock, Policy: f.Policy, Delay: delay, Logger: f.Logger, Metrics: f.Metrics}
}

// New builds an unregistered instance of kind.
func (f *Factory) New(id, kind string) (Instance, error) {
	clock := f.Clock
	if clock == nil {
		clock = RealClock()
	}
	rng := f.Random
	if rng == nil {
		rng = NewSeededRandom()
	}
	base := instance{id: id, kind: kind, created: clock.Now()}
	switch kind {
	case KindDNA:
		lab := NewLab(f.options(kind, f.DNADelay), rng, f.Tribes)
		base.trigger = func(_ context.Context, in Trigger) error { return lab.Upload(in.FileName) }
		base.selectFn = lab.Select
		base.view = func(ctx context.Context) (any, error) { return lab.View(ctx) }
		base.close = lab.Close
	case KindPronunciation:
		p := NewPronunciation(f.options(kind, f.AudioDelay), f.Dialects)
		base.trigger = func(ctx context.Context, in Trigger) error { return p.Play(ctx, in.Dialect, in.Lesson, in.Word) }
		base.view = func(ctx context.Context) (any, error) { return p.View(ctx) }
		base.close = p.Close
	case KindContactForm, KindNewsletter:
		opts := f.options(kind, 0)
		opts.AutoReset = f.AckReset
		var ack *Acknowledgement
		if kind == KindContactForm {
			ack = NewContactForm(opts, f.Contact)
		} else {
			ack = NewNewsletter(opts)
		}
		base.trigger = func(ctx context.Context, in Trigger) error { return ack.Submit(ctx, in.Submission) }
		base.view = func(context.Context) (any, error) { return ack.View(), nil }
		base.close = ack.Close
	default:
		return nil, fmt.Errorf("%w: %q (valid: %v)", ErrUnknownKind, kind, Kinds)
	}
	return &base, nil
}

type instance struct {
	id       string
	kind     string
	created  time.Time
	trigger  func(context.Context, Trigger) error
	selectFn func(context.Context, string) error
	view     func(context.Context) (any, error)
	close    func()
}

func (i *instance) ID() string           { return i.id }
func (i *instance) Kind() string         { return i.kind }
func (i *instance) CreatedAt() time.Time { return i.created }

func (i *instance) Trigger(ctx context.Context, in Trigger) error { return i.trigger(ctx, in) }

func (i *instance) Select(ctx context.Context, id string) error {
	if i.selectFn == nil {
		return fmt.Errorf("%w: %s", ErrNoSelection, i.kind)
	}
	return i.selectFn(ctx, id)
}

func (i *instance) View(ctx context.Context) (any, error) { return i.view(ctx) }
func (i *instance) Close()                                { i.close() }

// Instances is the registry of mounted simulations. Instances left idle for
// longer than the TTL are closed by Reap.
type Instances struct {
	factory *Factory
	ttl     time.Duration
	clock   Clock
	logger  *zap.Logger

	mu    sync.Mutex
	items map[string]*mounted
}

type mounted struct {
	Instance
	lastActive time.Time
}

// NewInstances returns an empty registry; a zero ttl disables expiry.
func NewInstances(f *Factory, ttl time.Duration) *Instances {
	clock := f.Clock
	if clock == nil {
		clock = RealClock()
	}
	return &Instances{
		factory: f,
		ttl:     ttl,
		clock:   clock,
		logger:  logging.OrNop(f.Logger),
		items:   make(map[string]*mounted),
	}
}

// Create mounts a new instance of kind under a fresh id.
func (r *Instances) Create(kind string) (Instance, error) {
	inst, err := r.factory.New(uuid.NewString(), kind)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.items[inst.ID()] = &mounted{Instance: inst, lastActive: r.clock.Now()}
	r.mu.Unlock()
	r.logger.Debug("simulation mounted", zap.String("id", inst.ID()), zap.String("kind", kind))
	return inst, nil
}

// Get returns the instance and marks it active.
func (r *Instances) Get(id string) (Instance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	m.lastActive = r.clock.Now()
	return m.Instance, nil
}

// LastActive reports when id was created or last fetched.
func (r *Instances) LastActive(id string) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.items[id]
	if !ok {
		return time.Time{}, false
	}
	return m.lastActive, true
}

// Delete unmounts the instance, stopping its timers.
func (r *Instances) Delete(id string) error {
	r.mu.Lock()
	m, ok := r.items[id]
	delete(r.items, id)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	m.Close()
	r.logger.Debug("simulation unmounted", zap.String("id", id))
	return nil
}

// List returns mounted instances ordered by creation.
func (r *Instances) List() []Instance {
	r.mu.Lock()
	out := make([]Instance, 0, len(r.items))
	for _, m := range r.items {
		out = append(out, m.Instance)
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt().Equal(out[j].CreatedAt()) {
			return out[i].ID() < out[j].ID()
		}
		return out[i].CreatedAt().Before(out[j].CreatedAt())
	})
	return out
}

func (r *Instances) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Reap closes instances idle for longer than the TTL and reports how many.
func (r *Instances) Reap() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.clock.Now().Add(-r.ttl)
	var expired []*mounted
	r.mu.Lock()
	for id, m := range r.items {
		if m.lastActive.Before(cutoff) {
			expired = append(expired, m)
			delete(r.items, id)
		}
	}
	r.mu.Unlock()
	for _, m := range expired {
		m.Close()
		r.logger.Info("simulation expired", zap.String("id", m.ID()), zap.String("kind", m.Kind()))
	}
	return len(expired)
}

// Run reaps every interval until ctx ends.
func (r *Instances) Run(ctx context.Context, interval time.Duration) {
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

// Close unmounts every instance.
func (r *Instances) Close() {
	r.mu.Lock()
	items := r.items
	r.items = make(map[string]*mounted)
	r.mu.Unlock()
	for _, m := range items {
		m.Close()
	}
}
