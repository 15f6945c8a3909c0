// Package catalog implements the catalog view pattern shared by every screen:
// a single fetch of a JSON collection, a conjunctive filter over independent
// dimensions, a selectable sort order and a one-level detail selection.
package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// Kind selects how a dimension value is matched against a record.
type Kind string

const (
	// KindSearch matches when any designated field contains the query, ignoring case.
	KindSearch Kind = "search"
	// KindEquals matches a single field by equality.
	KindEquals Kind = "equals"
	// KindMember matches when the value is one of an array field's entries.
	KindMember Kind = "member"
	// KindContains matches a single field by substring, ignoring case.
	KindContains Kind = "contains"
	// KindDecade matches years in [D, D+10).
	KindDecade Kind = "decade"
)

// FilterState maps a dimension name to its selected value. A missing or empty
// value, or the dimension's wildcard, leaves that dimension unconstrained.
// Only search values keep surrounding whitespace.
type FilterState map[string]string

// Clone returns an independent copy; nil stays nil.
func (s FilterState) Clone() FilterState {
	if s == nil {
		return nil
	}
	out := make(FilterState, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Dimension declares one independently togglable constraint.
type Dimension[T any] struct {
	Name string
	Kind Kind
	// Values extracts the text fields compared by search, equals, member and contains.
	Values func(T) []string
	// Year extracts the numeric year for decade dimensions.
	Year func(T) int
	// CaseSensitive applies to equals and member only; search and contains always fold case.
	CaseSensitive bool
	// Wildcard is an extra value meaning "no constraint", such as "all".
	Wildcard string
	// Options lists fixed picker values; Facet derives them from the collection instead.
	Options []string
	Facet   bool
}

// normalize trims picker values. Search text is matched as typed, so " "
// looks for a space and " the" only matches at a word start.
func (d Dimension[T]) normalize(value string) string {
	if d.Kind == KindSearch {
		return value
	}
	return strings.TrimSpace(value)
}

func (d Dimension[T]) unconstrained(value string) bool {
	if value == "" {
		return true
	}
	return d.Wildcard != "" && strings.EqualFold(value, d.Wildcard)
}

// Predicate reports whether a record passes every active dimension.
type Predicate[T any] func(T) bool

// Compose builds the conjunction of every active dimension in state. Unknown
// dimension names and malformed values are rejected before any record is seen.
func Compose[T any](dims []Dimension[T], state FilterState) (Predicate[T], error) {
	known := make(map[string]struct{}, len(dims))
	for _, d := range dims {
		known[d.Name] = struct{}{}
	}
	names := make([]string, 0, len(state))
	for name := range state {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := known[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownDimension, name)
		}
	}

	clauses := make([]Predicate[T], 0, len(dims))
	for _, d := range dims {
		value := d.normalize(state[d.Name])
		if d.unconstrained(value) {
			continue
		}
		clause, err := d.clause(value)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
	}

	return func(item T) bool {
		for _, clause := range clauses {
			if !clause(item) {
				return false
			}
		}
		return true
	}, nil
}

func (d Dimension[T]) clause(value string) (Predicate[T], error) {
	switch d.Kind {
	case KindSearch, KindContains:
		if d.Values == nil {
			return nil, fmt.Errorf("dimension %s has no fields", d.Name)
		}
		needle := fold(value)
		return func(item T) bool {
			for _, field := range d.Values(item) {
				if strings.Contains(fold(field), needle) {
					return true
				}
			}
			return false
		}, nil
	case KindEquals, KindMember:
		if d.Values == nil {
			return nil, fmt.Errorf("dimension %s has no fields", d.Name)
		}
		eq := d.equal
		if d.Kind == KindEquals {
			return func(item T) bool {
				fields := d.Values(item)
				return len(fields) > 0 && eq(fields[0], value)
			}, nil
		}
		return func(item T) bool {
			for _, field := range d.Values(item) {
				if eq(field, value) {
					return true
				}
			}
			return false
		}, nil
	case KindDecade:
		if d.Year == nil {
			return nil, fmt.Errorf("dimension %s has no year", d.Name)
		}
		decade, err := parseDecade(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q", ErrInvalidFilter, d.Name, value)
		}
		return func(item T) bool {
			year := d.Year(item)
			return year >= decade && year < decade+10
		}, nil
	default:
		return nil, fmt.Errorf("dimension %s has unsupported kind %q", d.Name, d.Kind)
	}
}

func (d Dimension[T]) equal(field, value string) bool {
	if d.CaseSensitive {
		return field == value
	}
	return fold(field) == fold(value)
}

func parseDecade(value string) (int, error) {
	return strconv.Atoi(strings.TrimSuffix(value, "s"))
}

// fold applies Unicode case folding. A Caser is stateful, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

// Filter returns the records accepted by pred in their original order. The
// result is always a new slice, even when every record matches.
func Filter[T any](items []T, pred Predicate[T]) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if pred == nil || pred(item) {
			out = append(out, item)
		}
	}
	return out
}

// Facets lists the distinct values of every faceted dimension in first-seen
// order, and the fixed options of the others.
func Facets[T any](dims []Dimension[T], items []T) map[string][]string {
	out := make(map[string][]string)
	for _, d := range dims {
		switch {
		case len(d.Options) > 0:
			out[d.Name] = append([]string(nil), d.Options...)
		case d.Facet && d.Values != nil:
			seen := make(map[string]struct{})
			values := make([]string, 0)
			for _, item := range items {
				for _, v := range d.Values(item) {
					if _, dup := seen[v]; dup || v == "" {
						continue
					}
					seen[v] = struct{}{}
					values = append(values, v)
				}
			}
			out[d.Name] = values
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
