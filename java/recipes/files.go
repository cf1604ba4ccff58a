package recipes

import (
	"path"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/jward/lathe/recipe"
	"github.com/jward/lathe/text"
	"github.com/jward/lathe/tree"
)

var deleteSourceFilesOptions = []recipe.Option{
	{Name: "pattern", DisplayName: "Path glob", Description: "Matched against the whole path and against the file name.", Type: recipe.StringOption, Required: true, Example: "**/Legacy*.java"},
}

// DeleteSourceFiles deletes every file whose path matches pattern. A pattern
// starting with "**/" matches at any depth.
func DeleteSourceFiles(pattern string) recipe.Recipe {
	return recipe.New(recipe.Definition{
		Name:        DeleteSourceFilesName,
		DisplayName: "Delete source files",
		Description: "Deletes files matching `" + pattern + "`.",
		Options:     deleteSourceFilesOptions,
		Validate: func() error {
			if _, err := path.Match(strings.TrimPrefix(pattern, "**/"), ""); err != nil {
				return errors.Mark(errors.Wrapf(err, "pattern %q", pattern), recipe.ErrInvalidOption)
			}
			return nil
		},
		Editor: func() recipe.TreeVisitor {
			return recipe.VisitorFunc(func(t tree.Tree, _ *recipe.ExecutionContext) (tree.Tree, error) {
				sf, ok := t.(tree.SourceFile)
				if !ok || !matchPath(pattern, sf.SourcePath()) {
					return t, nil
				}
				return nil, nil
			})
		},
	})
}

func matchPath(pattern, p string) bool {
	p = strings.TrimPrefix(path.Clean(strings.ReplaceAll(p, "\\", "/")), "./")
	if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
		for {
			if m, _ := path.Match(rest, p); m {
				return true
			}
			_, after, found := strings.Cut(p, "/")
			if !found {
				return false
			}
			p = after
		}
	}
	if m, _ := path.Match(pattern, p); m {
		return true
	}
	m, _ := path.Match(pattern, path.Base(p))
	return m
}

var createTextFileOptions = []recipe.Option{
	{Name: "path", DisplayName: "Path", Type: recipe.StringOption, Required: true, Example: "NOTICE.txt"},
	{Name: "content", DisplayName: "Content", Type: recipe.StringOption, Default: ""},
	{Name: "overwrite", DisplayName: "Overwrite", Description: "Replace the content of an existing plain-text file.", Type: recipe.BoolOption, Default: false},
}

// CreateTextFile generates a plain-text file at p. When the path already
// exists the file is left alone unless overwrite is set and it is a plain-text
// document.
func CreateTextFile(p, content string, overwrite bool) recipe.Recipe {
	d := recipe.Definition{
		Name:        CreateTextFileName,
		DisplayName: "Create text file",
		Description: "Creates `" + p + "`.",
		Options:     createTextFileOptions,
		Validate: func() error {
			if p == "" {
				return errors.Mark(errors.New("path must not be empty"), recipe.ErrInvalidOption)
			}
			if clean := path.Clean(p); path.IsAbs(p) || clean == ".." || strings.HasPrefix(clean, "../") {
				return errors.Mark(errors.Newf("path %q leaves the project", p), recipe.ErrInvalidOption)
			}
			return nil
		},
		Generate: func(*recipe.ExecutionContext) ([]tree.SourceFile, error) {
			return []tree.SourceFile{text.New(p, content)}, nil
		},
	}
	if overwrite {
		d.Editor = func() recipe.TreeVisitor {
			return recipe.VisitorFunc(func(t tree.Tree, _ *recipe.ExecutionContext) (tree.Tree, error) {
				doc, ok := t.(*text.Document)
				if !ok || doc.SourcePath() != p {
					return t, nil
				}
				return doc.WithText(content), nil
			})
		}
	}
	return recipe.New(d)
}

// ToggleMarker adds a Markup marker to every file that lacks one and removes
// it from every file that has one, so every cycle changes every file.
func ToggleMarker() recipe.Recipe {
	return recipe.New(recipe.Definition{
		Name:        ToggleMarkerName,
		DisplayName: "Toggle marker",
		Description: "Flips a marker on every file each cycle.",
		Editor: func() recipe.TreeVisitor {
			return recipe.VisitorFunc(func(t tree.Tree, ec *recipe.ExecutionContext) (tree.Tree, error) {
				sf, ok := t.(tree.SourceFile)
				if !ok {
					return t, nil
				}
				m := sf.Markers()
				for _, mk := range tree.FindAll[tree.Markup](m) {
					if mk.Message == toggleMessage {
						return sf.WithSourceMarkers(m.Remove(mk.ID)), nil
					}
				}
				return sf.WithSourceMarkers(m.Add(tree.Markup{
					ID:      tree.NewID(),
					Level:   tree.MarkupInfo,
					Message: toggleMessage,
				})), nil
			})
		},
	})
}

const toggleMessage = "toggled"
