package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type film struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Cast     []string `json:"cast"`
	Country  string   `json:"country"`
	Genres   []string `json:"genre"`
	Region   string   `json:"region"`
	Year     int      `json:"year"`
	Likes    int      `json:"likes"`
	Comments int      `json:"comments"`
	Views    int      `json:"views"`
}

func (f film) RecordID() string { return f.ID }

func films() []film {
	return []film{
		{ID: "1", Title: "The Lion King", Cast: []string{"Kofi Mensah"}, Country: "Ghana", Genres: []string{"Drama"}, Region: "West", Year: 2019, Likes: 10, Comments: 2, Views: 50},
		{ID: "2", Title: "Lagos Nights", Cast: []string{"Lionel Eze"}, Country: "Nigeria", Genres: []string{"Drama", "Romance"}, Region: "West", Year: 2015, Likes: 3, Comments: 9, Views: 90},
		{ID: "3", Title: "Savanna", Cast: []string{"Amara Obi"}, Country: "Kenya", Genres: []string{"Documentary"}, Region: "East", Year: 2010, Likes: 5, Comments: 8, Views: 10},
		{ID: "4", Title: "Desert Song", Cast: []string{"Nala Idris"}, Country: "nigeria", Genres: []string{"Musical"}, Region: "North", Year: 2009, Likes: 12, Comments: 0, Views: 70},
		{ID: "5", Title: "Harbour", Cast: nil, Country: "Senegal", Genres: []string{"Drama"}, Region: "West", Year: 2020, Likes: 1, Comments: 1, Views: 5},
	}
}

func filmDimensions() []Dimension[film] {
	return []Dimension[film]{
		{Name: "q", Kind: KindSearch, Values: func(f film) []string { return append([]string{f.Title}, f.Cast...) }},
		{Name: "country", Kind: KindEquals, Values: func(f film) []string { return []string{f.Country} }, Facet: true},
		{Name: "genre", Kind: KindMember, Values: func(f film) []string { return f.Genres }, Facet: true},
		{Name: "decade", Kind: KindDecade, Year: func(f film) int { return f.Year }, Options: []string{"2000", "2010", "2020"}},
		{Name: "region", Kind: KindEquals, Values: func(f film) []string { return []string{f.Region} }, CaseSensitive: true, Wildcard: "all"},
	}
}

func filmSorts() Sorts[film] {
	return Sorts[film]{
		SortPopular:  func(f film) float64 { return Engagement(f.Likes, f.Comments) },
		SortTrending: func(f film) float64 { return float64(f.Views) },
		SortYear:     func(f film) float64 { return float64(f.Year) },
	}
}

func decodeFilms(payload []byte) (Collection[film], error) {
	var doc struct {
		Films    []film   `json:"films"`
		Featured []string `json:"featured"`
	}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return Collection[film]{}, err
	}
	return Collection[film]{Items: doc.Films, Featured: doc.Featured}, nil
}

func filmSchema() Schema[film] {
	return Schema[film]{
		Resource:   "films",
		Document:   "films.json",
		Title:      "Films",
		Decode:     decodeFilms,
		Dimensions: filmDimensions(),
		Sorts:      filmSorts(),
		Columns: []Column[film]{
			{Name: "id", Value: func(f film) string { return f.ID }},
			{Name: "title", Value: func(f film) string { return f.Title }},
		},
		Label:           func(f film) string { return f.Title },
		SearchDimension: "q",
	}
}

func filmsPayload(t *testing.T) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]any{"films": films(), "featured": []string{"3", "1"}})
	if err != nil {
		t.Fatalf("marshal films: %v", err)
	}
	return payload
}

type stubSource struct {
	mu      sync.Mutex
	calls   int
	payload []byte
	err     error
	gate    chan struct{}
}

func (s *stubSource) Fetch(_ context.Context, _ string) ([]byte, error) {
	s.mu.Lock()
	s.calls++
	gate := s.gate
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return s.payload, s.err
}

func (s *stubSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func ids(items []film) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func anyIDs(items []any) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.(Record).RecordID()
	}
	return out
}

func TestRegistryLookupAndWarm(t *testing.T) {
	src := &stubSource{payload: filmsPayload(t)}
	cat, err := New(context.Background(), filmSchema(), src, LoadOptions{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	reg, err := NewRegistry(cat)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if err := reg.Register(cat); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	if _, err := reg.Resource("songs"); !errors.Is(err, ErrUnknownResource) {
		t.Fatalf("expected ErrUnknownResource, got %v", err)
	}
	if err := reg.Warm(context.Background()); err != nil {
		t.Fatalf("Warm: %v", err)
	}
	res, err := reg.Resource("films")
	if err != nil {
		t.Fatalf("Resource: %v", err)
	}
	item, err := res.Find(context.Background(), "2")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if item.(film).Title != "Lagos Nights" {
		t.Fatalf("unexpected item %+v", item)
	}
	var nf ErrNotFound
	if _, err := res.Find(context.Background(), "99"); !errors.As(err, &nf) || nf.ID != "99" {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	reg.SetSections([]Section{{Name: "afrotainment", Resources: []string{"films"}}})
	if got := reg.Sections(); len(got) != 1 || got[0].Name != "afrotainment" {
		t.Fatalf("unexpected sections %+v", got)
	}
}

func TestSchemaValidate(t *testing.T) {
	schema := filmSchema()
	schema.Dimensions = append(schema.Dimensions, Dimension[film]{Name: "q", Kind: KindSearch})
	if err := schema.Validate(); err == nil {
		t.Fatalf("expected duplicate dimension error")
	}
	if _, err := New(context.Background(), Schema[film]{Resource: "x"}, nil, LoadOptions{}); err == nil {
		t.Fatalf("expected missing document error")
	}
}

func TestDescribeListsDimensionsAndSorts(t *testing.T) {
	desc := filmSchema().Describe()
	if desc.Resource != "films" || len(desc.Dimensions) != 5 {
		t.Fatalf("unexpected descriptor %+v", desc)
	}
	want := []SortMode{SortRecent, SortPopular, SortTrending, SortYear}
	if len(desc.Sorts) != len(want) {
		t.Fatalf("sorts = %v, want %v", desc.Sorts, want)
	}
	for i := range want {
		if desc.Sorts[i] != want[i] {
			t.Fatalf("sorts = %v, want %v", desc.Sorts, want)
		}
	}
	if desc.Dimensions[4].Wildcard != "all" {
		t.Fatalf("wildcard not described: %+v", desc.Dimensions[4])
	}
}
