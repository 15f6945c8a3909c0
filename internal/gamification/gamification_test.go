package gamification

import (
	"encoding/json"
	"io/fs"
	"testing"

	"afriqar/internal/fixtures"
)

func fixtureLevels(t *testing.T) []Level {
	t.Helper()
	raw, err := fs.ReadFile(fixtures.FS(), "gamification.json")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	if len(doc.Levels) == 0 || len(doc.Badges) == 0 {
		t.Fatalf("fixture missing levels or badges")
	}
	return doc.Levels
}

func TestProgressWithinBands(t *testing.T) {
	levels := fixtureLevels(t)
	cases := []struct {
		points    int
		level     int
		next      int
		percent   float64
		remaining int
	}{
		{0, 1, 2, 0, 500},
		{250, 1, 2, 50, 250},
		{500, 2, 3, 0, 1000},
		{1000, 2, 3, 50, 500},
		{3000, 4, 0, 100, 0},
	}
	for _, tc := range cases {
		got := Progress(levels, tc.points)
		if got.Current == nil || got.Current.Level != tc.level {
			t.Fatalf("points %d: current %+v, want level %d", tc.points, got.Current, tc.level)
		}
		if tc.next == 0 && got.Next != nil {
			t.Fatalf("points %d: unexpected next level %+v", tc.points, got.Next)
		}
		if tc.next != 0 && (got.Next == nil || got.Next.Level != tc.next) {
			t.Fatalf("points %d: next %+v, want level %d", tc.points, got.Next, tc.next)
		}
		if got.Percent != tc.percent || got.PointsToNext != tc.remaining {
			t.Fatalf("points %d: percent %v remaining %d, want %v %d", tc.points, got.Percent, got.PointsToNext, tc.percent, tc.remaining)
		}
	}
}

func TestProgressFallsBackToFirstLevel(t *testing.T) {
	levels := []Level{
		{Level: 2, Name: "Two", MinPoints: 100, MaxPoints: 199},
		{Level: 1, Name: "One", MinPoints: 0, MaxPoints: 99},
	}
	got := Progress(levels, 5000)
	if got.Current.Level != 1 || got.Next.Level != 2 || got.Percent != 100 {
		t.Fatalf("unexpected standing %+v", got)
	}
	got = Progress(levels, -10)
	if got.Current.Level != 1 || got.Percent != 0 || got.PointsToNext != 110 {
		t.Fatalf("unexpected standing for negative points %+v", got)
	}
}

func TestProgressZeroWidthRange(t *testing.T) {
	levels := []Level{
		{Level: 1, MinPoints: 10, MaxPoints: 10},
		{Level: 2, MinPoints: 10, MaxPoints: 50},
	}
	got := Progress(levels, 10)
	if got.Percent != 100 {
		t.Fatalf("expected 100 for a zero-width step, got %v", got.Percent)
	}
	if empty := Progress(nil, 10); empty.Current != nil || empty.Percent != 0 {
		t.Fatalf("unexpected standing without levels %+v", empty)
	}
}
