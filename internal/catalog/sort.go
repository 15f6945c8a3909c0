package catalog

import (
	"fmt"
	"sort"
)

// SortMode names an ordering of a collection.
type SortMode string

const (
	// SortRecent keeps fixture order.
	SortRecent SortMode = "recent"
	// SortPopular orders by likes plus comments, descending.
	SortPopular SortMode = "popular"
	// SortTrending orders by views, descending.
	SortTrending SortMode = "trending"
	SortRating   SortMode = "rating"
	SortYear     SortMode = "year"
)

// Score ranks a record; higher scores sort first.
type Score[T any] func(T) float64

// Sorts maps the modes a schema supports, beyond SortRecent, to their score.
type Sorts[T any] map[SortMode]Score[T]

// Modes lists recent followed by the declared modes in name order.
func (s Sorts[T]) Modes() []SortMode {
	modes := []SortMode{SortRecent}
	extra := make([]string, 0, len(s))
	for mode := range s {
		if mode != SortRecent {
			extra = append(extra, string(mode))
		}
	}
	sort.Strings(extra)
	for _, mode := range extra {
		modes = append(modes, SortMode(mode))
	}
	return modes
}

// Sort returns a sorted copy of items. Equal scores keep their relative order
// and the input slice is never reordered.
func Sort[T any](items []T, mode SortMode, sorts Sorts[T]) ([]T, error) {
	out := make([]T, len(items))
	copy(out, items)
	if mode == "" || mode == SortRecent {
		return out, nil
	}
	score, ok := sorts[mode]
	if !ok || score == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSort, mode)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return score(out[i]) > score(out[j])
	})
	return out, nil
}

// Engagement is the popularity score of a post: likes plus comments.
func Engagement(likes, comments int) float64 {
	return float64(likes + comments)
}
