// Package fixtures bundles the static JSON documents served by the catalogs.
package fixtures

import (
	"embed"
	"io/fs"
	"path"
	"sort"
)

//go:embed data/*.json
var files embed.FS

// FS exposes the documents at their bare names (e.g. "movies.json").
func FS() fs.FS {
	sub, err := fs.Sub(files, "data")
	if err != nil {
		panic(err)
	}
	return sub
}

// Documents lists the bundled document names in lexical order.
func Documents() []string {
	entries, err := fs.ReadDir(files, "data")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && path.Ext(entry.Name()) == ".json" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names
}
