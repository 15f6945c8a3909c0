package content

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/google/go-cmp/cmp"

	"afriqar/internal/catalog"
	"afriqar/internal/fixtures"
)

type fixtureSource struct{}

func (fixtureSource) Fetch(_ context.Context, document string) ([]byte, error) {
	return fs.ReadFile(fixtures.FS(), document)
}

func build(t *testing.T) *Catalogs {
	t.Helper()
	c, err := Build(context.Background(), fixtureSource{}, catalog.LoadOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return c
}

func pageIDs(t *testing.T, res catalog.Resource, q catalog.Query) []string {
	t.Helper()
	page, err := res.Query(context.Background(), q)
	if err != nil {
		t.Fatalf("Query %s: %v", res.Name(), err)
	}
	out := make([]string, len(page.Items))
	for i, item := range page.Items {
		out[i] = item.(catalog.Record).RecordID()
	}
	return out
}

func TestEveryFixtureDecodes(t *testing.T) {
	c := build(t)
	if err := c.Registry.Warm(context.Background()); err != nil {
		t.Fatalf("Warm: %v", err)
	}
	if got := len(c.Registry.Resources()); got != 13 {
		t.Fatalf("expected 13 resources, got %d", got)
	}
	for _, res := range c.Registry.Resources() {
		page, err := res.Query(context.Background(), catalog.Query{})
		if err != nil {
			t.Fatalf("Query %s: %v", res.Name(), err)
		}
		if page.Total == 0 {
			t.Fatalf("%s decoded no records", res.Name())
		}
	}
}

func TestMovieFilters(t *testing.T) {
	c := build(t)
	got := pageIDs(t, c.Movies, catalog.Query{Filters: catalog.FilterState{"country": "nigeria", "decade": "2010"}})
	if diff := cmp.Diff([]string{"m1", "m2", "m7"}, got); diff != "" {
		t.Fatalf("Nigerian 2010s movies (-want +got):\n%s", diff)
	}
	got = pageIDs(t, c.Movies, catalog.Query{Filters: catalog.FilterState{"q": "ejiofor"}})
	if diff := cmp.Diff([]string{"m6"}, got); diff != "" {
		t.Fatalf("director/cast search (-want +got):\n%s", diff)
	}
	got = pageIDs(t, c.Movies, catalog.Query{Filters: catalog.FilterState{"genre": "romance"}, Sort: catalog.SortRating})
	if diff := cmp.Diff([]string{"m1", "m3", "m5"}, got); diff != "" {
		t.Fatalf("romance by rating (-want +got):\n%s", diff)
	}

	page, err := c.Movies.Query(context.Background(), catalog.Query{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	want := []string{"Nigeria", "Senegal", "South Africa", "Kenya", "Malawi"}
	if diff := cmp.Diff(want, page.Facets["country"]); diff != "" {
		t.Fatalf("country options (-want +got):\n%s", diff)
	}
}

func TestCommunitySorts(t *testing.T) {
	c := build(t)
	if diff := cmp.Diff([]string{"2", "4", "1", "3"}, pageIDs(t, c.Community, catalog.Query{Sort: catalog.SortPopular})); diff != "" {
		t.Fatalf("popular (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"2", "1", "3", "4"}, pageIDs(t, c.Community, catalog.Query{Sort: catalog.SortTrending})); diff != "" {
		t.Fatalf("trending (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"1", "2", "3", "4"}, pageIDs(t, c.Community, catalog.Query{Sort: catalog.SortRecent})); diff != "" {
		t.Fatalf("recent (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"3"}, pageIDs(t, c.Community, catalog.Query{Filters: catalog.FilterState{"q": "genealogy"}})); diff != "" {
		t.Fatalf("tag search (-want +got):\n%s", diff)
	}
	if got := pageIDs(t, c.Community, catalog.Query{Filters: catalog.FilterState{"category": "Heritage"}}); len(got) != 0 {
		t.Fatalf("category match is case-sensitive, got %v", got)
	}
	if got := pageIDs(t, c.Community, catalog.Query{Filters: catalog.FilterState{"category": "all"}}); len(got) != 4 {
		t.Fatalf("wildcard category should keep every post, got %v", got)
	}
	if _, err := c.Community.Query(context.Background(), catalog.Query{Sort: catalog.SortRating}); !errors.Is(err, catalog.ErrUnknownSort) {
		t.Fatalf("expected ErrUnknownSort, got %v", err)
	}
}

func TestCategoryAndRegionFilters(t *testing.T) {
	c := build(t)
	if diff := cmp.Diff([]string{"nigeria", "ghana"}, pageIDs(t, c.Countries, catalog.Query{Filters: catalog.FilterState{"region": "West Africa"}})); diff != "" {
		t.Fatalf("west african countries (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"kenya"}, pageIDs(t, c.Countries, catalog.Query{Filters: catalog.FilterState{"q": "nairobi"}})); diff != "" {
		t.Fatalf("capital search (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"d2", "d4"}, pageIDs(t, c.Documentaries, catalog.Query{Filters: catalog.FilterState{"category": "culture"}})); diff != "" {
		t.Fatalf("culture documentaries (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"angola-brazil"}, pageIDs(t, c.Routes, catalog.Query{Filters: catalog.FilterState{"region": "central"}})); diff != "" {
		t.Fatalf("routes by start region (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"textiles"}, pageIDs(t, c.Exhibitions, catalog.Query{Filters: catalog.FilterState{"q": "bogolan"}})); diff != "" {
		t.Fatalf("artifact search (-want +got):\n%s", diff)
	}
}

func TestFeaturedAndKidsDocuments(t *testing.T) {
	c := build(t)
	page, err := c.Podcasts.Query(context.Background(), catalog.Query{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	featured := make([]string, len(page.Featured))
	for i, item := range page.Featured {
		featured[i] = item.(Podcast).ID
	}
	if diff := cmp.Diff([]string{"p1", "p3"}, featured); diff != "" {
		t.Fatalf("featured podcasts (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"c2"}, pageIDs(t, c.Cartoons, catalog.Query{Filters: catalog.FilterState{"ageGroup": "2-5"}})); diff != "" {
		t.Fatalf("cartoons by age (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"s1", "s2"}, pageIDs(t, c.Stories, catalog.Query{})); diff != "" {
		t.Fatalf("stories (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"g2"}, pageIDs(t, c.Games, catalog.Query{Filters: catalog.FilterState{"q": "drum"}})); diff != "" {
		t.Fatalf("games (-want +got):\n%s", diff)
	}
}

func TestDialectWordsAndContactDocument(t *testing.T) {
	c := build(t)
	item, err := c.Dialects.Find(context.Background(), "yoruba")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	dialect := item.(Dialect)
	lesson, ok := dialect.Lesson("greetings")
	if !ok {
		t.Fatalf("greetings lesson missing")
	}
	if got := lesson.Words[0].Native(dialect.Name); got != "E kaaro" {
		t.Fatalf("native spelling = %q", got)
	}
	if lesson.Words[0].English() != "Good morning" || lesson.Words[0].Pronunciation() == "" {
		t.Fatalf("unexpected word %+v", lesson.Words[0])
	}

	doc, err := LoadDocument[ContactDocument](context.Background(), fixtureSource{}, DocContact)
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if doc.Contact.Company != "Afriqar" || !doc.HasDepartment("General") || doc.HasDepartment("Sales") {
		t.Fatalf("unexpected contact document %+v", doc.Contact)
	}
	if _, err := LoadDocument[ContactDocument](context.Background(), fixtureSource{}, "missing.json"); err == nil {
		t.Fatalf("expected fetch error")
	}
}

func TestDecodeFieldRequiresField(t *testing.T) {
	if _, err := decodeField[Podcast]("podcasts")([]byte(`{"shows": []}`)); err == nil {
		t.Fatalf("expected missing field error")
	}
	coll, err := decodeField[Podcast]("podcasts")([]byte(`{"podcasts": [{"id": "x"}], "featured": ["x"]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(coll.Items) != 1 || len(coll.Featured) != 1 {
		t.Fatalf("unexpected collection %+v", coll)
	}
}
