// Package scripts bundles the script recipes shipped with lathe. Each file
// under recipes/ is a Risor script for the lathe.Script recipe.
package scripts

import (
	"embed"
	"io/fs"
)

//go:embed recipes/*.risor
var files embed.FS

// Recipes returns the bundled scripts with recipes/ as the root, so a script
// is named by its file name alone.
func Recipes() fs.FS {
	sub, err := fs.Sub(files, "recipes")
	if err != nil {
		panic(err)
	}
	return sub
}

// Names lists the bundled scripts.
func Names() []string {
	entries, err := fs.ReadDir(files, "recipes")
	if err != nil {
		panic(err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
