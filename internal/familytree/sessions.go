package familytree

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"afriqar/internal/logging"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("familytree: session not found")

// SessionOptions configures Sessions.
type SessionOptions struct {
	TTL    time.Duration // idle lifetime; zero disables expiry
	Logger *zap.Logger
	Now    func() time.Time
	// Seed returns the members a new session starts with; nil means DefaultMembers.
	Seed func() []Member
}

// Session describes one open tree.
type Session struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	LastActive time.Time `json:"lastActive"`
	Members    int       `json:"members"`
}

type session struct {
	id         string
	repo       *MemoryRepository
	createdAt  time.Time
	lastActive time.Time
}

// Sessions holds one MemoryRepository per client session.
type Sessions struct {
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
	seed   func() []Member
	newID  func() string

	mu    sync.Mutex
	trees map[string]*session
}

func NewSessions(opts SessionOptions) *Sessions {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Seed == nil {
		opts.Seed = DefaultMembers
	}
	return &Sessions{
		ttl:    opts.TTL,
		logger: logging.OrNop(opts.Logger),
		now:    opts.Now,
		seed:   opts.Seed,
		newID:  uuid.NewString,
		trees:  make(map[string]*session),
	}
}

// Open starts a session over a freshly seeded tree.
func (s *Sessions) Open() (Session, Repository) {
	now := s.now()
	sess := &session{
		id:         s.newID(),
		repo:       NewMemoryRepository(s.seed()),
		createdAt:  now,
		lastActive: now,
	}
	s.mu.Lock()
	s.trees[sess.id] = sess
	desc := sess.describe()
	s.mu.Unlock()
	s.logger.Debug("family tree opened", zap.String("session", sess.id))
	return desc, sess.repo
}

// Get returns the session's tree and marks it active.
func (s *Sessions) Get(id string) (Repository, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.trees[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.lastActive = s.now()
	return sess.repo, nil
}

func (s *Sessions) Describe(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.trees[id]
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess.describe(), nil
}

// Delete discards the session's tree.
func (s *Sessions) Delete(id string) error {
	s.mu.Lock()
	_, ok := s.trees[id]
	delete(s.trees, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.logger.Debug("family tree closed", zap.String("session", id))
	return nil
}

// List returns the open sessions, oldest first.
func (s *Sessions) List() []Session {
	s.mu.Lock()
	out := make([]Session, 0, len(s.trees))
	for _, sess := range s.trees {
		out = append(out, sess.describe())
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.trees)
}

// Reap drops sessions idle for longer than the TTL and reports how many.
func (s *Sessions) Reap() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)
	var expired []string
	s.mu.Lock()
	for id, sess := range s.trees {
		if sess.lastActive.Before(cutoff) {
			expired = append(expired, id)
			delete(s.trees, id)
		}
	}
	s.mu.Unlock()
	for _, id := range expired {
		s.logger.Info("family tree expired", zap.String("session", id))
	}
	return len(expired)
}

// Run reaps every interval until ctx ends.
func (s *Sessions) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.ttl <= 0 {
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
			s.Reap()
		}
	}
}

// describe must be called with the Sessions lock held.
func (sess *session) describe() Session {
	return Session{
		ID:         sess.id,
		CreatedAt:  sess.createdAt,
		LastActive: sess.lastActive,
		Members:    len(sess.repo.List()),
	}
}
