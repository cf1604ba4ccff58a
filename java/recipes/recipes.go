// Package recipes holds the built-in recipes: Java renames and searches, plus
// file-level recipes that work on any source file.
package recipes

import (
	"github.com/jward/lathe/recipe"
)

// Names of the built-in recipes.
const (
	ChangeIdentifierName  = "lathe.java.ChangeIdentifier"
	ChangeMethodNameName  = "lathe.java.ChangeMethodName"
	FindMethodsName       = "lathe.java.FindMethods"
	DeleteSourceFilesName = "lathe.DeleteSourceFiles"
	CreateTextFileName    = "lathe.CreateTextFile"
	ToggleMarkerName      = "lathe.ToggleMarker"
)

// Register adds every built-in recipe to reg.
func Register(reg *recipe.Registry) error {
	for _, d := range descriptors() {
		if err := reg.Register(d); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding the built-in recipes.
func NewRegistry() *recipe.Registry {
	reg := recipe.NewRegistry()
	reg.MustRegister(descriptors()...)
	return reg
}

func descriptors() []recipe.Descriptor {
	return []recipe.Descriptor{
		{
			Name:        ChangeIdentifierName,
			DisplayName: "Change identifier",
			Description: "Renames every identifier spelled `from` to `to`.",
			Options:     changeIdentifierOptions,
			Source:      "builtin",
			Factory: func(v recipe.Values) (recipe.Recipe, error) {
				return ChangeIdentifier(v.String("from"), v.String("to")), nil
			},
		},
		{
			Name:        ChangeMethodNameName,
			DisplayName: "Change method name",
			Description: "Renames a method at its declaration and every call site.",
			Options:     changeMethodNameOptions,
			Source:      "builtin",
			Factory: func(v recipe.Values) (recipe.Recipe, error) {
				return ChangeMethodName(v.String("type"), v.String("from"), v.String("to")), nil
			},
		},
		{
			Name:        FindMethodsName,
			DisplayName: "Find method invocations",
			Description: "Marks calls of the named method with a search result.",
			Options:     findMethodsOptions,
			Source:      "builtin",
			Factory: func(v recipe.Values) (recipe.Recipe, error) {
				return FindMethods(v.String("type"), v.String("name")), nil
			},
		},
		{
			Name:        DeleteSourceFilesName,
			DisplayName: "Delete source files",
			Description: "Deletes files whose path matches a glob.",
			Options:     deleteSourceFilesOptions,
			Source:      "builtin",
			Factory: func(v recipe.Values) (recipe.Recipe, error) {
				return DeleteSourceFiles(v.String("pattern")), nil
			},
		},
		{
			Name:        CreateTextFileName,
			DisplayName: "Create text file",
			Description: "Creates a plain-text file, optionally replacing an existing one.",
			Options:     createTextFileOptions,
			Source:      "builtin",
			Factory: func(v recipe.Values) (recipe.Recipe, error) {
				return CreateTextFile(v.String("path"), v.String("content"), v.Bool("overwrite")), nil
			},
		},
		{
			Name:        ToggleMarkerName,
			DisplayName: "Toggle marker",
			Description: "Adds or removes a marker on every file each cycle. Never converges; used to exercise cycle limits.",
			Source:      "builtin",
			Factory: func(recipe.Values) (recipe.Recipe, error) {
				return ToggleMarker(), nil
			},
		},
	}
}
