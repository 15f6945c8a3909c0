// Package familytree keeps family trees: ordered lists of members that can be
// edited, reordered and grouped by generation. Each client session edits its
// own tree, and nothing is persisted.
package familytree

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Member is one person in the tree. Generation 1 is the user.
type Member struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Birth             string `json:"birth"`
	Death             string `json:"death,omitempty"`
	Location          string `json:"location"`
	Relation          string `json:"relation"`
	Generation        int    `json:"generation"`
	TribalAffiliation string `json:"tribalAffiliation,omitempty"`
	Notes             string `json:"notes,omitempty"`
}

// Generation groups the members sharing a generation number, in list order.
type Generation struct {
	Number  int      `json:"generation"`
	Members []Member `json:"members"`
}

// ErrInvalidMember is returned by Save for members failing validation.
var ErrInvalidMember = errors.New("familytree: invalid member")

// ErrNotFound reports a missing member.
type ErrNotFound struct {
	ID string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("family member %s not found", e.ID)
}

// Repository stores the ordered member list.
type Repository interface {
	List() []Member
	Get(id string) (Member, bool)
	Save(m Member) (Member, error)
	Delete(id string) error
	Move(activeID, overID string) error
	Generations() []Generation
}

// Validate checks the required fields.
func (m Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: name required", ErrInvalidMember)
	}
	if m.Generation < 1 {
		return fmt.Errorf("%w: generation must be at least 1, got %d", ErrInvalidMember, m.Generation)
	}
	return nil
}

// DefaultMembers is the tree a new session starts with.
func DefaultMembers() []Member {
	return []Member{
		{ID: "1", Name: "John Doe", Birth: "1940", Location: "New York, USA", Relation: "Self", Generation: 1, TribalAffiliation: "Yoruba"},
		{ID: "2", Name: "Mary Johnson", Birth: "1918", Death: "1995", Location: "Georgia, USA", Relation: "Mother", Generation: 2, TribalAffiliation: "Igbo"},
		{ID: "3", Name: "Robert Doe", Birth: "1915", Death: "1988", Location: "South Carolina, USA", Relation: "Father", Generation: 2, TribalAffiliation: "Akan"},
	}
}

var _ Repository = (*MemoryRepository)(nil)

// MemoryRepository is a mutex-guarded Repository.
type MemoryRepository struct {
	mu      sync.RWMutex
	members []Member
	newID   func() string
}

// NewMemoryRepository returns a repository holding members, or the
// defaults when members is nil.
func NewMemoryRepository(members []Member) *MemoryRepository {
	if members == nil {
		members = DefaultMembers()
	}
	return &MemoryRepository{members: append([]Member(nil), members...), newID: uuid.NewString}
}

// List returns the members in display order.
func (r *MemoryRepository) List() []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Member(nil), r.members...)
}

func (r *MemoryRepository) Get(id string) (Member, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexLocked(id); i >= 0 {
		return r.members[i], true
	}
	return Member{}, false
}

// Save replaces the member with the same id, or appends m. Members without
// an id get a fresh one.
func (r *MemoryRepository) Save(m Member) (Member, error) {
	m.Name = strings.TrimSpace(m.Name)
	if err := m.Validate(); err != nil {
		return Member{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID != "" {
		if i := r.indexLocked(m.ID); i >= 0 {
			r.members[i] = m
			return m, nil
		}
	} else {
		m.ID = r.newID()
	}
	r.members = append(r.members, m)
	return m, nil
}

func (r *MemoryRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexLocked(id)
	if i < 0 {
		return ErrNotFound{ID: id}
	}
	r.members = append(r.members[:i], r.members[i+1:]...)
	return nil
}

// Move drops the active member at the position of the member it was
// dragged over, shifting the ones in between. Equal ids are a no-op.
func (r *MemoryRepository) Move(activeID, overID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	from := r.indexLocked(activeID)
	if from < 0 {
		return ErrNotFound{ID: activeID}
	}
	to := r.indexLocked(overID)
	if to < 0 {
		return ErrNotFound{ID: overID}
	}
	if from == to {
		return nil
	}
	moved := r.members[from]
	r.members = append(r.members[:from], r.members[from+1:]...)
	r.members = append(r.members[:to], append([]Member{moved}, r.members[to:]...)...)
	return nil
}

// Generations groups members by generation, ascending.
func (r *MemoryRepository) Generations() []Generation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byNumber := make(map[int]*Generation)
	var out []*Generation
	for _, m := range r.members {
		g, ok := byNumber[m.Generation]
		if !ok {
			g = &Generation{Number: m.Generation}
			byNumber[m.Generation] = g
			out = append(out, g)
		}
		g.Members = append(g.Members, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	groups := make([]Generation, len(out))
	for i, g := range out {
		groups[i] = *g
	}
	return groups
}

func (r *MemoryRepository) indexLocked(id string) int {
	for i, m := range r.members {
		if m.ID == id {
			return i
		}
	}
	return -1
}
