// Package recipe defines recipes, the units of change applied to source
// trees, and the scheduler that runs them to a fixed point.
//
// A recipe contributes an editor, a visitor applied to every source file, and
// may list further recipes that run after it on its output. Recipes may also
// generate new files. The Scheduler runs the whole set over a batch of files
// cycle after cycle until a cycle changes nothing or the cycle budget runs
// out.
package recipe

import (
	"github.com/jward/lathe/tree"
)

// TreeVisitor edits one source tree. Returning the input unchanged means no
// change; returning nil deletes the file. Dialect visitors satisfy it through
// their VisitTree method, e.g. *java.Visitor[*recipe.ExecutionContext].
type TreeVisitor interface {
	VisitTree(t tree.Tree, ctx *ExecutionContext) (tree.Tree, error)
}

// VisitorFunc adapts a function to TreeVisitor.
type VisitorFunc func(t tree.Tree, ctx *ExecutionContext) (tree.Tree, error)

func (f VisitorFunc) VisitTree(t tree.Tree, ctx *ExecutionContext) (tree.Tree, error) {
	return f(t, ctx)
}

// Recipe is a named, configured unit of change.
type Recipe interface {
	Name() string
	DisplayName() string
	Description() string
	// Options returns the declared options; configured values are held by
	// the recipe itself.
	Options() []Option
	// Editor returns the visitor to apply, or nil for recipes that only
	// compose others. It is called once per file per cycle.
	Editor() TreeVisitor
	// RecipeList returns recipes that run after this one, in order.
	RecipeList() []Recipe
}

// Generator is implemented by recipes that create files. Generate is called
// once per cycle; a file whose path already exists in the batch is ignored.
type Generator interface {
	Generate(ctx *ExecutionContext) ([]tree.SourceFile, error)
}

// Validator is implemented by recipes that check their configuration before
// a run.
type Validator interface {
	Validate() error
}

// Definition describes a recipe built from functions.
type Definition struct {
	Name        string
	DisplayName string
	Description string
	Options     []Option
	// Editor builds the visitor. Nil for composite recipes.
	Editor func() TreeVisitor
	// Generate creates new files. Optional.
	Generate func(ctx *ExecutionContext) ([]tree.SourceFile, error)
	// Validate checks the configuration. Optional.
	Validate   func() error
	RecipeList []Recipe
}

// New builds a recipe from a definition.
func New(d Definition) Recipe {
	return &defined{d: d}
}

type defined struct {
	d Definition
}

func (r *defined) Name() string { return r.d.Name }

func (r *defined) DisplayName() string {
	if r.d.DisplayName == "" {
		return r.d.Name
	}
	return r.d.DisplayName
}

func (r *defined) Description() string  { return r.d.Description }
func (r *defined) Options() []Option    { return r.d.Options }
func (r *defined) RecipeList() []Recipe { return r.d.RecipeList }

func (r *defined) Editor() TreeVisitor {
	if r.d.Editor == nil {
		return nil
	}
	return r.d.Editor()
}

func (r *defined) Generate(ctx *ExecutionContext) ([]tree.SourceFile, error) {
	if r.d.Generate == nil {
		return nil, nil
	}
	return r.d.Generate(ctx)
}

func (r *defined) Validate() error {
	if r.d.Validate == nil {
		return nil
	}
	return r.d.Validate()
}

// DoNext returns r followed by next: the editors of next run on the output
// of r's editor and its existing recipe list.
func DoNext(r Recipe, next ...Recipe) Recipe {
	return &chained{Recipe: r, next: next}
}

type chained struct {
	Recipe
	next []Recipe
}

func (c *chained) RecipeList() []Recipe {
	list := append([]Recipe(nil), c.Recipe.RecipeList()...)
	return append(list, c.next...)
}

func (c *chained) Generate(ctx *ExecutionContext) ([]tree.SourceFile, error) {
	if g, ok := c.Recipe.(Generator); ok {
		return g.Generate(ctx)
	}
	return nil, nil
}

func (c *chained) Validate() error {
	if v, ok := c.Recipe.(Validator); ok {
		return v.Validate()
	}
	return nil
}

// Flatten lists recipes in execution order: each recipe, then its recipe
// list, depth first.
func Flatten(recipes []Recipe) []Recipe {
	var out []Recipe
	var walk func([]Recipe)
	walk = func(rs []Recipe) {
		for _, r := range rs {
			out = append(out, r)
			walk(r.RecipeList())
		}
	}
	walk(recipes)
	return out
}

// Validate runs every Validator in the flattened set.
func Validate(recipes []Recipe) error {
	for _, r := range Flatten(recipes) {
		if v, ok := r.(Validator); ok {
			if err := v.Validate(); err != nil {
				return wrapInvalid(err, r.Name())
			}
		}
	}
	return nil
}
