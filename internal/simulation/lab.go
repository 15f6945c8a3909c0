package simulation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"afriqar/internal/content"
)

// ErrLocked is returned for tribal matches before an analysis completes.
var ErrLocked = errors.New("simulation: locked until a DNA analysis completes")

// ErrUnknownMatch is returned when selecting a tribe outside the matches.
var ErrUnknownMatch = errors.New("simulation: unknown tribal match")

// TribeLister supplies the tribes catalog.
type TribeLister interface {
	Items(ctx context.Context) ([]content.Tribe, error)
}

// Lab is a heritage session: one DNA analysis and the tribal matches it unlocks.
type Lab struct {
	dna    *Machine[DNAResult]
	tribes TribeLister
	rng    *Random

	mu       sync.Mutex
	matched  int // analysis run the matches belong to
	matches  []TribalMatch
	selected string
}

// LabView is the client-facing state of a Lab.
type LabView struct {
	Analysis Snapshot[DNAResult] `json:"analysis"`
	Unlocked bool                `json:"unlocked"`
	Matches  []TribalMatch       `json:"matches,omitempty"`
	Selected string              `json:"selected,omitempty"`
}

func NewLab(opts Options, rng *Random, tribes TribeLister) *Lab {
	if opts.Name == "" {
		opts.Name = "dna"
	}
	return &Lab{dna: NewMachine[DNAResult](opts, nil), tribes: tribes, rng: rng}
}

// Upload validates the file name and starts an analysis.
func (l *Lab) Upload(fileName string) error {
	if err := ValidateUpload(fileName); err != nil {
		return err
	}
	return l.dna.Start(func() DNAResult { return DNAAnalysis(l.rng, fileName) })
}

// Analysis exposes the DNA machine.
func (l *Lab) Analysis() *Machine[DNAResult] { return l.dna }

// Matches returns the tribal matches of the latest completed analysis,
// computing them on first access. The top match is preselected.
func (l *Lab) Matches(ctx context.Context) ([]TribalMatch, error) {
	snap := l.dna.Snapshot()
	if snap.State != StateComplete {
		return nil, ErrLocked
	}
	l.mu.Lock()
	if l.matched == snap.Runs {
		out := append([]TribalMatch(nil), l.matches...)
		l.mu.Unlock()
		return out, nil
	}
	l.mu.Unlock()

	tribes, err := l.tribes.Items(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tribes: %w", err)
	}
	matches := TribalMatches(l.rng, tribes)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.matched != snap.Runs {
		l.matched = snap.Runs
		l.matches = matches
		l.selected = ""
		if len(matches) > 0 {
			l.selected = matches[0].Tribe.ID
		}
	}
	return append([]TribalMatch(nil), l.matches...), nil
}

// Select picks the detailed match by tribe id.
func (l *Lab) Select(ctx context.Context, tribeID string) error {
	matches, err := l.Matches(ctx)
	if err != nil {
		return err
	}
	for _, m := range matches {
		if m.Tribe.ID == tribeID {
			l.mu.Lock()
			l.selected = tribeID
			l.mu.Unlock()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownMatch, tribeID)
}

// View reports the analysis and, once unlocked, the matches.
func (l *Lab) View(ctx context.Context) (LabView, error) {
	view := LabView{Analysis: l.dna.Snapshot()}
	if view.Analysis.State != StateComplete {
		return view, nil
	}
	matches, err := l.Matches(ctx)
	if err != nil {
		return view, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	view.Unlocked = true
	view.Matches = matches
	view.Selected = l.selected
	return view, nil
}

func (l *Lab) Close() { l.dna.Close() }
