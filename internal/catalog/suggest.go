package catalog

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Suggest returns up to limit distinct titles close to query, for searches
// that matched nothing. Each title word and the whole title are compared.
func Suggest[T any](query string, items []T, title func(T) string, limit int) []string {
	q := fold(strings.TrimSpace(query))
	if q == "" || title == nil || limit <= 0 {
		return nil
	}
	maxDist := suggestLimit(len([]rune(q)))

	type candidate struct {
		title string
		dist  int
	}
	best := make(map[string]int)
	for _, item := range items {
		t := title(item)
		if t == "" {
			continue
		}
		folded := fold(t)
		dist := levenshtein.ComputeDistance(q, folded)
		for _, word := range strings.Fields(folded) {
			if d := levenshtein.ComputeDistance(q, word); d < dist {
				dist = d
			}
		}
		if dist > maxDist {
			continue
		}
		if prev, ok := best[t]; !ok || dist < prev {
			best[t] = dist
		}
	}

	candidates := make([]candidate, 0, len(best))
	for t, d := range best {
		candidates = append(candidates, candidate{title: t, dist: d})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].title < candidates[j].title
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.title
	}
	return out
}

func suggestLimit(n int) int {
	switch {
	case n <= 4:
		return 1
	case n <= 8:
		return 2
	default:
		return 3
	}
}
