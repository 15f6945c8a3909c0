// Package gamification computes a visitor's level from their points.
package gamification

import "sort"

// Level is a points band.
type Level struct {
	Level     int      `json:"level"`
	Name      string   `json:"name"`
	MinPoints int      `json:"minPoints"`
	MaxPoints int      `json:"maxPoints"`
	Color     string   `json:"color,omitempty"`
	Benefits  []string `json:"benefits,omitempty"`
}

type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Points      int    `json:"points"`
	Category    string `json:"category"`
}

type Quiz struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Questions  int    `json:"questions"`
	TimeLimit  int    `json:"timeLimit"`
	Points     int    `json:"points"`
}

type Challenge struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Duration    string   `json:"duration"`
	TotalPoints int      `json:"totalPoints"`
	Tasks       []string `json:"tasks"`
}

// Document is the gamification.json payload.
type Document struct {
	Badges      []Badge     `json:"badges"`
	Levels      []Level     `json:"levels"`
	Quizzes     []Quiz      `json:"quizzes"`
	Challenges  []Challenge `json:"challenges"`
	Leaderboard struct {
		Categories []string `json:"categories"`
		Metrics    []string `json:"metrics"`
	} `json:"leaderboard"`
}

// Standing is the outcome of Progress.
type Standing struct {
	Points       int     `json:"points"`
	Current      *Level  `json:"current,omitempty"`
	Next         *Level  `json:"next,omitempty"`
	Percent      float64 `json:"percent"`
	PointsToNext int     `json:"pointsToNext"`
}

// Progress finds the level whose band holds points (the first level when
// none does) and the share of the way to the next level. At the top level
// Percent is 100. A next level starting at or below the current one counts
// as reached.
func Progress(levels []Level, points int) Standing {
	out := Standing{Points: points}
	if len(levels) == 0 {
		return out
	}
	sorted := append([]Level(nil), levels...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Level < sorted[j].Level })

	current := sorted[0]
	for _, l := range sorted {
		if points >= l.MinPoints && points <= l.MaxPoints {
			current = l
			break
		}
	}
	out.Current = &current

	for _, l := range sorted {
		if l.Level == current.Level+1 {
			next := l
			out.Next = &next
			break
		}
	}
	if out.Next == nil {
		out.Percent = 100
		return out
	}

	span := out.Next.MinPoints - current.MinPoints
	if span <= 0 {
		out.Percent = 100
		return out
	}
	pct := float64(points-current.MinPoints) / float64(span) * 100
	switch {
	case pct < 0:
		pct = 0
	case pct > 100:
		pct = 100
	}
	out.Percent = pct
	if remaining := out.Next.MinPoints - points; remaining > 0 {
		out.PointsToNext = remaining
	}
	return out
}
