package catalog

import (
	"fmt"
	"strings"
)

// Record is an item of a catalog collection. Ids are assumed unique within
// their collection but this is not enforced.
type Record interface {
	RecordID() string
}

// Column is one field of the tabular (CSV) view of a record.
type Column[T any] struct {
	Name  string
	Value func(T) string
}

// Schema describes how a resource is fetched, filtered, sorted and tabulated.
type Schema[T Record] struct {
	Resource   string
	Document   string
	Title      string
	Decode     Decoder[T]
	Dimensions []Dimension[T]
	Sorts      Sorts[T]
	Columns    []Column[T]
	// Label returns the display title used for search suggestions.
	Label func(T) string
	// SearchDimension names the free-text dimension suggestions are computed for.
	SearchDimension string
}

// Validate checks the schema is internally consistent.
func (s Schema[T]) Validate() error {
	if strings.TrimSpace(s.Resource) == "" {
		return fmt.Errorf("schema resource required")
	}
	if strings.TrimSpace(s.Document) == "" {
		return fmt.Errorf("schema %s: document required", s.Resource)
	}
	if s.Decode == nil {
		return fmt.Errorf("schema %s: decoder required", s.Resource)
	}
	seen := make(map[string]struct{}, len(s.Dimensions))
	for _, d := range s.Dimensions {
		if d.Name == "" {
			return fmt.Errorf("schema %s: dimension name required", s.Resource)
		}
		if _, dup := seen[d.Name]; dup {
			return fmt.Errorf("schema %s: duplicate dimension %s", s.Resource, d.Name)
		}
		seen[d.Name] = struct{}{}
	}
	return nil
}

// Descriptor is the transport form of a schema.
type Descriptor struct {
	Resource   string                `json:"resource"`
	Title      string                `json:"title"`
	Document   string                `json:"document"`
	Dimensions []DimensionDescriptor `json:"dimensions"`
	Sorts      []SortMode            `json:"sorts"`
	Columns    []string              `json:"columns,omitempty"`
}

// DimensionDescriptor is the transport form of a dimension.
type DimensionDescriptor struct {
	Name     string   `json:"name"`
	Kind     Kind     `json:"kind"`
	Wildcard string   `json:"wildcard,omitempty"`
	Options  []string `json:"options,omitempty"`
	Faceted  bool     `json:"faceted,omitempty"`
}

// Describe returns the descriptor of the schema.
func (s Schema[T]) Describe() Descriptor {
	dims := make([]DimensionDescriptor, 0, len(s.Dimensions))
	for _, d := range s.Dimensions {
		dims = append(dims, DimensionDescriptor{
			Name:     d.Name,
			Kind:     d.Kind,
			Wildcard: d.Wildcard,
			Options:  append([]string(nil), d.Options...),
			Faceted:  d.Facet,
		})
	}
	columns := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		columns = append(columns, c.Name)
	}
	return Descriptor{
		Resource:   s.Resource,
		Title:      s.Title,
		Document:   s.Document,
		Dimensions: dims,
		Sorts:      s.Sorts.Modes(),
		Columns:    columns,
	}
}

// Query selects a view over a collection.
type Query struct {
	Filters FilterState
	Sort    SortMode
	Offset  int
	Limit   int
}

// Page is a type-erased view over a collection.
type Page struct {
	Resource    string              `json:"resource"`
	Status      Status              `json:"status"`
	Filters     FilterState         `json:"filters,omitempty"`
	Sort        SortMode            `json:"sort"`
	Total       int                 `json:"total"`
	Offset      int                 `json:"offset,omitempty"`
	Items       []any               `json:"items"`
	Featured    []any               `json:"featured,omitempty"`
	Facets      map[string][]string `json:"facets,omitempty"`
	Suggestions []string            `json:"suggestions,omitempty"`

	header []string
	rows   [][]string
}

// Table returns the tabular form of the page items.
func (p Page) Table() ([]string, [][]string) {
	return p.header, p.rows
}

// ValidateQuery checks a query against the schema without touching records.
func (s Schema[T]) ValidateQuery(q Query) error {
	if _, err := Compose(s.Dimensions, q.Filters); err != nil {
		return err
	}
	if q.Sort != "" && q.Sort != SortRecent {
		if _, ok := s.Sorts[q.Sort]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownSort, q.Sort)
		}
	}
	if q.Offset < 0 || q.Limit < 0 {
		return fmt.Errorf("%w: negative offset or limit", ErrInvalidFilter)
	}
	return nil
}

// View applies q to a loaded collection.
func (s Schema[T]) View(coll Collection[T], q Query) (Page, error) {
	if err := s.ValidateQuery(q); err != nil {
		return Page{}, err
	}
	pred, err := Compose(s.Dimensions, q.Filters)
	if err != nil {
		return Page{}, err
	}
	sorted, err := Sort(Filter(coll.Items, pred), q.Sort, s.Sorts)
	if err != nil {
		return Page{}, err
	}
	mode := q.Sort
	if mode == "" {
		mode = SortRecent
	}

	window := paginate(sorted, q.Offset, q.Limit)
	page := Page{
		Resource: s.Resource,
		Status:   StatusReady,
		Filters:  q.Filters.Clone(),
		Sort:     mode,
		Total:    len(sorted),
		Offset:   q.Offset,
		Items:    erase(window),
		Featured: erase(featured(coll)),
		Facets:   Facets(s.Dimensions, coll.Items),
	}
	if len(sorted) == 0 && s.SearchDimension != "" && q.Filters[s.SearchDimension] != "" {
		page.Suggestions = Suggest(q.Filters[s.SearchDimension], coll.Items, s.Label, 3)
	}
	page.header, page.rows = s.table(window)
	return page, nil
}

// Lookup finds a record by id.
func (s Schema[T]) Lookup(coll Collection[T], id string) (T, error) {
	for _, item := range coll.Items {
		if item.RecordID() == id {
			return item, nil
		}
	}
	var zero T
	return zero, ErrNotFound{Resource: s.Resource, ID: id}
}

func (s Schema[T]) table(items []T) ([]string, [][]string) {
	if len(s.Columns) == 0 {
		return nil, nil
	}
	header := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		header[i] = c.Name
	}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		row := make([]string, len(s.Columns))
		for i, c := range s.Columns {
			row[i] = c.Value(item)
		}
		rows = append(rows, row)
	}
	return header, rows
}

func featured[T Record](coll Collection[T]) []T {
	if len(coll.Featured) == 0 {
		return nil
	}
	want := make(map[string]struct{}, len(coll.Featured))
	for _, id := range coll.Featured {
		want[id] = struct{}{}
	}
	out := make([]T, 0, len(coll.Featured))
	for _, item := range coll.Items {
		if _, ok := want[item.RecordID()]; ok {
			out = append(out, item)
		}
	}
	return out
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return items[:0]
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func erase[T any](items []T) []any {
	if items == nil {
		return nil
	}
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}
