package content

import (
	"strconv"
	"strings"

	"afriqar/internal/catalog"
)

// Document names as served by the static host.
const (
	DocMovies        = "movies.json"
	DocDocumentaries = "documentaries.json"
	DocPodcasts      = "podcasts.json"
	DocCountries     = "african-countries.json"
	DocCommunity     = "community.json"
	DocTribes        = "tribes.json"
	DocDialects      = "dialects.json"
	DocRoutes        = "slave-routes.json"
	DocMuseum        = "virtual-museum.json"
	DocKids          = "kids-content.json"
	DocChiromancy    = "chiromancy.json"
	DocContact       = "contact.json"
	DocGamification  = "gamification.json"
)

// Wildcard is the "no constraint" value of category and region pickers.
const Wildcard = "all"

// SearchParam is the free-text dimension shared by every schema.
const SearchParam = "q"

func search[T any](fields func(T) []string) catalog.Dimension[T] {
	return catalog.Dimension[T]{Name: SearchParam, Kind: catalog.KindSearch, Values: fields}
}

// exact builds a case-sensitive equality dimension with the "all" wildcard.
func exact[T any](name string, field func(T) string) catalog.Dimension[T] {
	return catalog.Dimension[T]{
		Name:          name,
		Kind:          catalog.KindEquals,
		Values:        func(item T) []string { return []string{field(item)} },
		CaseSensitive: true,
		Wildcard:      Wildcard,
		Facet:         true,
	}
}

func col[T any](name string, value func(T) string) catalog.Column[T] {
	return catalog.Column[T]{Name: name, Value: value}
}

func itoa(n int) string { return strconv.Itoa(n) }

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func join(values []string) string { return strings.Join(values, "; ") }

// MovieSchema: search over title, director and cast; country substring,
// genre membership and decade.
func MovieSchema() catalog.Schema[Movie] {
	return catalog.Schema[Movie]{
		Resource: "movies",
		Document: DocMovies,
		Title:    "Movies",
		Decode:   decodeArray[Movie],
		Dimensions: []catalog.Dimension[Movie]{
			search(func(m Movie) []string { return append([]string{m.Title, m.Director}, m.Cast...) }),
			{Name: "country", Kind: catalog.KindContains, Values: func(m Movie) []string { return []string{m.Country} }, Facet: true},
			{Name: "genre", Kind: catalog.KindMember, Values: func(m Movie) []string { return m.Genre }, Facet: true},
			{Name: "decade", Kind: catalog.KindDecade, Year: func(m Movie) int { return m.Year }, Options: []string{"2000", "2010", "2020"}},
		},
		Sorts: catalog.Sorts[Movie]{
			catalog.SortRating: func(m Movie) float64 { return m.Rating },
			catalog.SortYear:   func(m Movie) float64 { return float64(m.Year) },
		},
		Columns: []catalog.Column[Movie]{
			col("id", func(m Movie) string { return m.ID }),
			col("title", func(m Movie) string { return m.Title }),
			col("director", func(m Movie) string { return m.Director }),
			col("year", func(m Movie) string { return itoa(m.Year) }),
			col("country", func(m Movie) string { return m.Country }),
			col("genre", func(m Movie) string { return join(m.Genre) }),
			col("rating", func(m Movie) string { return ftoa(m.Rating) }),
		},
		Label:           func(m Movie) string { return m.Title },
		SearchDimension: SearchParam,
	}
}

func DocumentarySchema() catalog.Schema[Documentary] {
	return catalog.Schema[Documentary]{
		Resource: "documentaries",
		Document: DocDocumentaries,
		Title:    "Documentaries",
		Decode:   decodeField[Documentary]("documentaries"),
		Dimensions: []catalog.Dimension[Documentary]{
			search(func(d Documentary) []string { return []string{d.Title, d.Director, d.Description} }),
			exact("category", func(d Documentary) string { return d.Category }),
		},
		Sorts: catalog.Sorts[Documentary]{
			catalog.SortRating: func(d Documentary) float64 { return d.Rating },
		},
		Columns: []catalog.Column[Documentary]{
			col("id", func(d Documentary) string { return d.ID }),
			col("title", func(d Documentary) string { return d.Title }),
			col("category", func(d Documentary) string { return d.Category }),
			col("year", func(d Documentary) string { return d.Year }),
			col("director", func(d Documentary) string { return d.Director }),
			col("rating", func(d Documentary) string { return ftoa(d.Rating) }),
		},
		Label:           func(d Documentary) string { return d.Title },
		SearchDimension: SearchParam,
	}
}

func PodcastSchema() catalog.Schema[Podcast] {
	return catalog.Schema[Podcast]{
		Resource: "podcasts",
		Document: DocPodcasts,
		Title:    "Podcasts",
		Decode:   decodeField[Podcast]("podcasts"),
		Dimensions: []catalog.Dimension[Podcast]{
			search(func(p Podcast) []string { return []string{p.Title, p.Host, p.Description} }),
			exact("category", func(p Podcast) string { return p.Category }),
		},
		Sorts: catalog.Sorts[Podcast]{
			catalog.SortRating: func(p Podcast) float64 { return p.Rating },
		},
		Columns: []catalog.Column[Podcast]{
			col("id", func(p Podcast) string { return p.ID }),
			col("title", func(p Podcast) string { return p.Title }),
			col("host", func(p Podcast) string { return p.Host }),
			col("category", func(p Podcast) string { return p.Category }),
			col("episodes", func(p Podcast) string { return itoa(p.TotalEpisodes) }),
			col("rating", func(p Podcast) string { return ftoa(p.Rating) }),
		},
		Label:           func(p Podcast) string { return p.Title },
		SearchDimension: SearchParam,
	}
}

func CountrySchema() catalog.Schema[Country] {
	return catalog.Schema[Country]{
		Resource: "countries",
		Document: DocCountries,
		Title:    "African Countries",
		Decode:   decodeField[Country]("countries"),
		Dimensions: []catalog.Dimension[Country]{
			search(func(c Country) []string { return []string{c.Name, c.Capital} }),
			exact("region", func(c Country) string { return c.Region }),
		},
		Columns: []catalog.Column[Country]{
			col("id", func(c Country) string { return c.ID }),
			col("name", func(c Country) string { return c.Name }),
			col("capital", func(c Country) string { return c.Capital }),
			col("region", func(c Country) string { return c.Region }),
			col("population", func(c Country) string { return c.Population }),
			col("languages", func(c Country) string { return join(c.Languages) }),
		},
		Label:           func(c Country) string { return c.Name },
		SearchDimension: SearchParam,
	}
}

// CommunitySchema orders posts by recency, engagement (likes plus comments)
// or views.
func CommunitySchema() catalog.Schema[CommunityPost] {
	return catalog.Schema[CommunityPost]{
		Resource: "community",
		Document: DocCommunity,
		Title:    "Community",
		Decode:   decodeField[CommunityPost]("posts"),
		Dimensions: []catalog.Dimension[CommunityPost]{
			search(func(p CommunityPost) []string { return append([]string{p.Title, p.Content}, p.Tags...) }),
			exact("category", func(p CommunityPost) string { return p.Category }),
		},
		Sorts: catalog.Sorts[CommunityPost]{
			catalog.SortPopular:  func(p CommunityPost) float64 { return catalog.Engagement(p.Likes, p.Comments) },
			catalog.SortTrending: func(p CommunityPost) float64 { return float64(p.Views) },
		},
		Columns: []catalog.Column[CommunityPost]{
			col("id", func(p CommunityPost) string { return p.ID }),
			col("title", func(p CommunityPost) string { return p.Title }),
			col("author", func(p CommunityPost) string { return p.Author.Name }),
			col("category", func(p CommunityPost) string { return p.Category }),
			col("likes", func(p CommunityPost) string { return itoa(p.Likes) }),
			col("comments", func(p CommunityPost) string { return itoa(p.Comments) }),
			col("views", func(p CommunityPost) string { return itoa(p.Views) }),
		},
		Label:           func(p CommunityPost) string { return p.Title },
		SearchDimension: SearchParam,
	}
}

func TribeSchema() catalog.Schema[Tribe] {
	return catalog.Schema[Tribe]{
		Resource: "tribes",
		Document: DocTribes,
		Title:    "Tribes",
		Decode:   decodeArray[Tribe],
		Dimensions: []catalog.Dimension[Tribe]{
			search(func(t Tribe) []string { return append([]string{t.Name, t.Language}, t.Traditions...) }),
			exact("region", func(t Tribe) string { return t.Region }),
			{Name: "country", Kind: catalog.KindMember, Values: func(t Tribe) []string { return t.Countries }, Facet: true},
		},
		Columns: []catalog.Column[Tribe]{
			col("id", func(t Tribe) string { return t.ID }),
			col("name", func(t Tribe) string { return t.Name }),
			col("region", func(t Tribe) string { return t.Region }),
			col("language", func(t Tribe) string { return t.Language }),
			col("countries", func(t Tribe) string { return join(t.Countries) }),
		},
		Label:           func(t Tribe) string { return t.Name },
		SearchDimension: SearchParam,
	}
}

func DialectSchema() catalog.Schema[Dialect] {
	return catalog.Schema[Dialect]{
		Resource: "dialects",
		Document: DocDialects,
		Title:    "Dialects",
		Decode:   decodeArray[Dialect],
		Dimensions: []catalog.Dimension[Dialect]{
			search(func(d Dialect) []string { return []string{d.Name, d.Tribe, d.Description} }),
			exact("region", func(d Dialect) string { return d.Region }),
		},
		Columns: []catalog.Column[Dialect]{
			col("id", func(d Dialect) string { return d.ID }),
			col("name", func(d Dialect) string { return d.Name }),
			col("region", func(d Dialect) string { return d.Region }),
			col("speakers", func(d Dialect) string { return d.Speakers }),
			col("lessons", func(d Dialect) string { return itoa(len(d.Lessons)) }),
		},
		Label:           func(d Dialect) string { return d.Name },
		SearchDimension: SearchParam,
	}
}

func RouteSchema() catalog.Schema[SlaveRoute] {
	return catalog.Schema[SlaveRoute]{
		Resource: "routes",
		Document: DocRoutes,
		Title:    "Slave Routes",
		Decode:   decodeArray[SlaveRoute],
		Dimensions: []catalog.Dimension[SlaveRoute]{
			search(func(r SlaveRoute) []string { return []string{r.Name, r.Description} }),
			{Name: "region", Kind: catalog.KindContains, Values: func(r SlaveRoute) []string { return []string{r.StartRegion} }, Facet: true},
		},
		Columns: []catalog.Column[SlaveRoute]{
			col("id", func(r SlaveRoute) string { return r.ID }),
			col("name", func(r SlaveRoute) string { return r.Name }),
			col("start", func(r SlaveRoute) string { return r.StartRegion }),
			col("end", func(r SlaveRoute) string { return r.EndRegion }),
			col("timeframe", func(r SlaveRoute) string { return r.Timeframe }),
		},
		Label:           func(r SlaveRoute) string { return r.Name },
		SearchDimension: SearchParam,
	}
}

func ExhibitionSchema() catalog.Schema[Exhibition] {
	return catalog.Schema[Exhibition]{
		Resource: "exhibitions",
		Document: DocMuseum,
		Title:    "Virtual Museum",
		Decode:   decodeField[Exhibition]("exhibitions"),
		Dimensions: []catalog.Dimension[Exhibition]{
			search(func(e Exhibition) []string {
				fields := []string{e.Title, e.Description}
				for _, a := range e.Artifacts {
					fields = append(fields, a.Name)
				}
				return fields
			}),
		},
		Columns: []catalog.Column[Exhibition]{
			col("id", func(e Exhibition) string { return e.ID }),
			col("title", func(e Exhibition) string { return e.Title }),
			col("artifacts", func(e Exhibition) string { return itoa(len(e.Artifacts)) }),
		},
		Label:           func(e Exhibition) string { return e.Title },
		SearchDimension: SearchParam,
	}
}

func CartoonSchema() catalog.Schema[Cartoon] {
	return catalog.Schema[Cartoon]{
		Resource: "cartoons",
		Document: DocKids,
		Title:    "Cartoons",
		Decode:   decodeField[Cartoon]("cartoons"),
		Dimensions: []catalog.Dimension[Cartoon]{
			search(func(c Cartoon) []string { return []string{c.Title, c.Description} }),
			exact("ageGroup", func(c Cartoon) string { return c.AgeGroup }),
		},
		Columns: []catalog.Column[Cartoon]{
			col("id", func(c Cartoon) string { return c.ID }),
			col("title", func(c Cartoon) string { return c.Title }),
			col("ageGroup", func(c Cartoon) string { return c.AgeGroup }),
			col("episodes", func(c Cartoon) string { return itoa(c.Episodes) }),
		},
		Label:           func(c Cartoon) string { return c.Title },
		SearchDimension: SearchParam,
	}
}

func StorySchema() catalog.Schema[Story] {
	return catalog.Schema[Story]{
		Resource: "stories",
		Document: DocKids,
		Title:    "Stories",
		Decode:   decodeField[Story]("stories"),
		Dimensions: []catalog.Dimension[Story]{
			search(func(s Story) []string { return []string{s.Title, s.Description} }),
			exact("ageGroup", func(s Story) string { return s.AgeGroup }),
		},
		Columns: []catalog.Column[Story]{
			col("id", func(s Story) string { return s.ID }),
			col("title", func(s Story) string { return s.Title }),
			col("origin", func(s Story) string { return s.Origin }),
			col("ageGroup", func(s Story) string { return s.AgeGroup }),
		},
		Label:           func(s Story) string { return s.Title },
		SearchDimension: SearchParam,
	}
}

func GameSchema() catalog.Schema[Game] {
	return catalog.Schema[Game]{
		Resource: "games",
		Document: DocKids,
		Title:    "Games",
		Decode:   decodeField[Game]("games"),
		Dimensions: []catalog.Dimension[Game]{
			search(func(g Game) []string { return []string{g.Title, g.Description} }),
			exact("ageGroup", func(g Game) string { return g.AgeGroup }),
		},
		Columns: []catalog.Column[Game]{
			col("id", func(g Game) string { return g.ID }),
			col("title", func(g Game) string { return g.Title }),
			col("type", func(g Game) string { return g.Type }),
			col("ageGroup", func(g Game) string { return g.AgeGroup }),
		},
		Label:           func(g Game) string { return g.Title },
		SearchDimension: SearchParam,
	}
}

func TraditionSchema() catalog.Schema[Tradition] {
	return catalog.Schema[Tradition]{
		Resource: "traditions",
		Document: DocChiromancy,
		Title:    "Chiromancy Traditions",
		Decode:   decodeField[Tradition]("traditions"),
		Dimensions: []catalog.Dimension[Tradition]{
			search(func(t Tradition) []string { return []string{t.Name, t.Culture, t.Description} }),
			exact("culture", func(t Tradition) string { return t.Culture }),
		},
		Columns: []catalog.Column[Tradition]{
			col("id", func(t Tradition) string { return t.ID }),
			col("name", func(t Tradition) string { return t.Name }),
			col("culture", func(t Tradition) string { return t.Culture }),
		},
		Label:           func(t Tradition) string { return t.Name },
		SearchDimension: SearchParam,
	}
}
