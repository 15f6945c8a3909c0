package content

import (
	"context"
	"fmt"

	"afriqar/internal/catalog"
)

// Catalogs holds the typed catalogs that other packages read directly, and
// the registry exposing every resource by name.
type Catalogs struct {
	Movies        *catalog.Catalog[Movie]
	Documentaries *catalog.Catalog[Documentary]
	Podcasts      *catalog.Catalog[Podcast]
	Countries     *catalog.Catalog[Country]
	Community     *catalog.Catalog[CommunityPost]
	Tribes        *catalog.Catalog[Tribe]
	Dialects      *catalog.Catalog[Dialect]
	Routes        *catalog.Catalog[SlaveRoute]
	Exhibitions   *catalog.Catalog[Exhibition]
	Cartoons      *catalog.Catalog[Cartoon]
	Stories       *catalog.Catalog[Story]
	Games         *catalog.Catalog[Game]
	Traditions    *catalog.Catalog[Tradition]

	Registry *catalog.Registry
}

// Build creates every catalog over src. Shared fetches are bound to base.
func Build(base context.Context, src catalog.Source, opts catalog.LoadOptions) (*Catalogs, error) {
	c := &Catalogs{}
	var err error
	if c.Movies, err = catalog.New(base, MovieSchema(), src, opts); err != nil {
		return nil, err
	}
	if c.Documentaries, err = catalog.New(base, DocumentarySchema(), src, opts); err != nil {
		return nil, err
	}
	if c.Podcasts, err = catalog.New(base, PodcastSchema(), src, opts); err != nil {
		return nil, err
	}
	if c.Countries, err = catalog.New(base, CountrySchema(), src, opts); err != nil {
		return nil, err
	}
	if c.Community, err = catalog.New(base, CommunitySchema(), src, opts); err != nil {
		return nil, err
	}
	if c.Tribes, err = catalog.New(base, TribeSchema(), src, opts); err != nil {
		return nil, err
	}
	if c.Dialects, err = catalog.New(base, DialectSchema(), src, opts); err != nil {
		return nil, err
	}
	if c.Routes, err = catalog.New(base, RouteSchema(), src, opts); err != nil {
		return nil, err
	}
	if c.Exhibitions, err = catalog.New(base, ExhibitionSchema(), src, opts); err != nil {
		return nil, err
	}
	if c.Cartoons, err = catalog.New(base, CartoonSchema(), src, opts); err != nil {
		return nil, err
	}
	if c.Stories, err = catalog.New(base, StorySchema(), src, opts); err != nil {
		return nil, err
	}
	if c.Games, err = catalog.New(base, GameSchema(), src, opts); err != nil {
		return nil, err
	}
	if c.Traditions, err = catalog.New(base, TraditionSchema(), src, opts); err != nil {
		return nil, err
	}

	c.Registry, err = catalog.NewRegistry(
		c.Movies, c.Documentaries, c.Podcasts, c.Countries, c.Community,
		c.Tribes, c.Dialects, c.Routes, c.Exhibitions,
		c.Cartoons, c.Stories, c.Games, c.Traditions,
	)
	if err != nil {
		return nil, fmt.Errorf("register catalogs: %w", err)
	}
	c.Registry.SetSections(Sections())
	return c, nil
}

// Simulation kinds offered by the sections.
const (
	SimDNA         = "dna"
	SimPronounce   = "pronunciation"
	SimContactForm = "contact-form"
	SimNewsletter  = "newsletter"
)

// Sections is the navigation manifest of the site.
func Sections() []catalog.Section {
	return []catalog.Section{
		{Name: "home", Title: "Home", Path: "/"},
		{
			Name:        "heritage",
			Title:       "DNA & Heritage",
			Path:        "/heritage",
			Resources:   []string{"countries", "tribes", "routes", "dialects", "exhibitions", "community", "traditions"},
			Simulations: []string{SimDNA, SimPronounce},
		},
		{
			Name:      "afrotainment",
			Title:     "Afrotainment",
			Path:      "/entertainment",
			Resources: []string{"movies", "documentaries", "podcasts"},
		},
		{
			Name:      "kids",
			Title:     "Kids",
			Path:      "/kids",
			Resources: []string{"cartoons", "stories", "games"},
		},
		{
			Name:        "contact",
			Title:       "Contact",
			Path:        "/contact",
			Simulations: []string{SimContactForm, SimNewsletter},
		},
	}
}
