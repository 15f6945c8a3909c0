package fixtures

import (
	"encoding/json"
	"io/fs"
	"testing"
)

func TestDocumentsAreValidJSON(t *testing.T) {
	docs := Documents()
	if len(docs) < 12 {
		t.Fatalf("expected the full fixture set, got %v", docs)
	}
	for _, name := range docs {
		raw, err := fs.ReadFile(FS(), name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if !json.Valid(raw) {
			t.Fatalf("%s is not valid JSON", name)
		}
	}
}
