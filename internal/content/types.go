// Package content declares the record types of the afriqar fixture documents
// and the catalog schemas that filter and sort them.
package content

import "strings"

type Movie struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Director    string   `json:"director"`
	Year        int      `json:"year"`
	Country     string   `json:"country"`
	Genre       []string `json:"genre"`
	Duration    string   `json:"duration"`
	Rating      float64  `json:"rating"`
	Poster      string   `json:"poster"`
	Trailer     string   `json:"trailer"`
	Description string   `json:"description"`
	Cast        []string `json:"cast"`
	Languages   []string `json:"languages"`
}

func (m Movie) RecordID() string { return m.ID }

// Episode is an entry of a documentary series or a podcast feed.
type Episode struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Duration    string `json:"duration,omitempty"`
	Description string `json:"description"`
	PublishDate string `json:"publishDate,omitempty"`
}

type Documentary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Duration    string    `json:"duration"`
	Year        string    `json:"year"`
	Director    string    `json:"director"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Episodes    []Episode `json:"episodes"`
	Rating      float64   `json:"rating"`
	Awards      []string  `json:"awards"`
}

func (d Documentary) RecordID() string { return d.ID }

type Podcast struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Host          string    `json:"host"`
	Category      string    `json:"category"`
	Description   string    `json:"description"`
	Image         string    `json:"image"`
	Episodes      []Episode `json:"episodes"`
	TotalEpisodes int       `json:"totalEpisodes"`
	Rating        float64   `json:"rating"`
}

func (p Podcast) RecordID() string { return p.ID }

// CountryTribe is the summary of a people embedded in a country record.
type CountryTribe struct {
	Name       string   `json:"name"`
	Population string   `json:"population"`
	Region     string   `json:"region"`
	Traditions []string `json:"traditions"`
	Language   string   `json:"language"`
}

type Country struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Capital    string         `json:"capital"`
	Region     string         `json:"region"`
	Population string         `json:"population"`
	Area       string         `json:"area"`
	Languages  []string       `json:"languages"`
	Tribes     []CountryTribe `json:"tribes"`
	History    struct {
		Ancient      string `json:"ancient"`
		Colonial     string `json:"colonial"`
		Independence string `json:"independence"`
		Modern       string `json:"modern"`
	} `json:"history"`
	Culture struct {
		Music     []string `json:"music"`
		Food      []string `json:"food"`
		Festivals []string `json:"festivals"`
		Arts      []string `json:"arts"`
	} `json:"culture"`
	Facts []string `json:"facts"`
}

func (c Country) RecordID() string { return c.ID }

type Author struct {
	Name   string   `json:"name"`
	Avatar string   `json:"avatar"`
	Level  string   `json:"level"`
	Badges []string `json:"badges"`
}

type CommunityPost struct {
	ID        string   `json:"id"`
	Author    Author   `json:"author"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Category  string   `json:"category"`
	Timestamp string   `json:"timestamp"`
	Likes     int      `json:"likes"`
	Comments  int      `json:"comments"`
	Views     int      `json:"views"`
	IsLiked   bool     `json:"isLiked"`
	IsPinned  bool     `json:"isPinned,omitempty"`
	Tags      []string `json:"tags"`
}

func (p CommunityPost) RecordID() string { return p.ID }

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Tribe struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Region      string      `json:"region"`
	Countries   []string    `json:"countries"`
	Population  string      `json:"population"`
	Language    string      `json:"language"`
	Coordinates Coordinates `json:"coordinates"`
	Description string      `json:"description"`
	Traditions  []string    `json:"traditions"`
}

func (t Tribe) RecordID() string { return t.ID }

// Word is a vocabulary entry. Besides english, pronunciation and audio it
// carries the native spelling under the lower-cased dialect name.
type Word map[string]string

func (w Word) English() string       { return w["english"] }
func (w Word) Pronunciation() string { return w["pronunciation"] }
func (w Word) Audio() string         { return w["audio"] }

// Native returns the spelling in the named dialect.
func (w Word) Native(dialect string) string {
	return w[strings.ToLower(dialect)]
}

type Lesson struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Words []Word `json:"words"`
}

type Dialect struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Tribe       string   `json:"tribe"`
	Speakers    string   `json:"speakers"`
	Region      string   `json:"region"`
	Countries   []string `json:"countries"`
	Script      string   `json:"script"`
	Tones       int      `json:"tones"`
	Description string   `json:"description"`
	Lessons     []Lesson `json:"lessons"`
}

func (d Dialect) RecordID() string { return d.ID }

// Lesson returns the lesson with id.
func (d Dialect) Lesson(id string) (Lesson, bool) {
	for _, l := range d.Lessons {
		if l.ID == id {
			return l, true
		}
	}
	return Lesson{}, false
}

type Port struct {
	Name            string      `json:"name"`
	Location        string      `json:"location"`
	Coordinates     Coordinates `json:"coordinates"`
	Description     string      `json:"description"`
	YearEstablished int         `json:"yearEstablished"`
}

type SlaveRoute struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Description      string        `json:"description"`
	StartRegion      string        `json:"startRegion"`
	EndRegion        string        `json:"endRegion"`
	Timeframe        string        `json:"timeframe"`
	EstimatedSlaves  string        `json:"estimatedSlaves"`
	MajorPorts       []Port        `json:"majorPorts"`
	Destinations     []Port        `json:"destinations"`
	RouteCoordinates []Coordinates `json:"routeCoordinates"`
}

func (r SlaveRoute) RecordID() string { return r.ID }

type Artifact struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Period       string `json:"period"`
	Origin       string `json:"origin"`
	Description  string `json:"description"`
	Significance string `json:"significance"`
	Image        string `json:"image"`
}

type Exhibition struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Image       string     `json:"image"`
	Artifacts   []Artifact `json:"artifacts"`
}

func (e Exhibition) RecordID() string { return e.ID }

type Cartoon struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	AgeGroup    string   `json:"ageGroup"`
	Episodes    int      `json:"episodes"`
	Duration    string   `json:"duration"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Characters  []string `json:"characters"`
	Lessons     []string `json:"lessons"`
}

func (c Cartoon) RecordID() string { return c.ID }

type Story struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Origin      string   `json:"origin"`
	AgeGroup    string   `json:"ageGroup"`
	Duration    string   `json:"duration"`
	Description string   `json:"description"`
	Moral       string   `json:"moral"`
	Characters  []string `json:"characters"`
	Image       string   `json:"image"`
}

func (s Story) RecordID() string { return s.ID }

type Game struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Type        string   `json:"type"`
	AgeGroup    string   `json:"ageGroup"`
	Description string   `json:"description"`
	Levels      int      `json:"levels,omitempty"`
	Topics      []string `json:"topics,omitempty"`
	Languages   []string `json:"languages,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	Difficulty  []string `json:"difficulty,omitempty"`
}

func (g Game) RecordID() string { return g.ID }

// Tradition is a palm-reading practice of one culture.
type Tradition struct {
	ID           string   `json:"id"`
	Culture      string   `json:"culture"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Practices    []string `json:"practices"`
	Significance string   `json:"significance"`
	Image        string   `json:"image"`
}

func (t Tradition) RecordID() string { return t.ID }
