package content

import (
	"context"
	"encoding/json"
	"fmt"

	"afriqar/internal/catalog"
)

// decodeArray reads a document whose top level is the record array.
func decodeArray[T any](payload []byte) (catalog.Collection[T], error) {
	var items []T
	if err := json.Unmarshal(payload, &items); err != nil {
		return catalog.Collection[T]{}, err
	}
	return catalog.Collection[T]{Items: items}, nil
}

// decodeField reads the record array stored under field, plus the optional
// "featured" id list next to it.
func decodeField[T any](field string) catalog.Decoder[T] {
	return func(payload []byte) (catalog.Collection[T], error) {
		var doc map[string]json.RawMessage
		if err := json.Unmarshal(payload, &doc); err != nil {
			return catalog.Collection[T]{}, err
		}
		raw, ok := doc[field]
		if !ok {
			return catalog.Collection[T]{}, fmt.Errorf("document has no %q field", field)
		}
		var coll catalog.Collection[T]
		if err := json.Unmarshal(raw, &coll.Items); err != nil {
			return catalog.Collection[T]{}, fmt.Errorf("%s: %w", field, err)
		}
		if featured, ok := doc["featured"]; ok {
			if err := json.Unmarshal(featured, &coll.Featured); err != nil {
				return catalog.Collection[T]{}, fmt.Errorf("featured: %w", err)
			}
		}
		return coll, nil
	}
}

// LoadDocument fetches a whole document and decodes it into T.
func LoadDocument[T any](ctx context.Context, src catalog.Source, document string) (T, error) {
	var out T
	payload, err := src.Fetch(ctx, document)
	if err != nil {
		return out, fmt.Errorf("fetch %s: %w", document, err)
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", document, err)
	}
	return out, nil
}

// ContactDocument is the contact page: company details, departments and FAQ.
type ContactDocument struct {
	Contact struct {
		Company string `json:"company"`
		Tagline string `json:"tagline"`
		Address struct {
			Street  string `json:"street"`
			City    string `json:"city"`
			State   string `json:"state"`
			Country string `json:"country"`
			ZipCode string `json:"zipCode"`
		} `json:"address"`
		Phone   string `json:"phone"`
		Email   string `json:"email"`
		Website string `json:"website"`
		Hours   struct {
			Weekdays string `json:"weekdays"`
			Weekends string `json:"weekends"`
			Timezone string `json:"timezone"`
		} `json:"hours"`
	} `json:"contact"`
	SocialMedia []struct {
		Platform  string `json:"platform"`
		URL       string `json:"url"`
		Icon      string `json:"icon"`
		Followers string `json:"followers"`
	} `json:"socialMedia"`
	Departments []Department `json:"departments"`
	FAQ         []struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	} `json:"faq"`
	Newsletter struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Benefits    []string `json:"benefits"`
	} `json:"newsletter"`
}

type Department struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Description string `json:"description"`
}

// HasDepartment reports whether name is one of the listed departments.
func (d ContactDocument) HasDepartment(name string) bool {
	for _, dep := range d.Departments {
		if dep.Name == name {
			return true
		}
	}
	return false
}
