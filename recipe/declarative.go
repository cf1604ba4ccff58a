package recipe

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// maxDeclarativeDepth bounds nesting of declarative recipes so that a recipe
// listing itself fails instead of recursing forever.
const maxDeclarativeDepth = 32

// Declaration is one YAML document describing a composite recipe.
type Declaration struct {
	Name        string      `yaml:"name"`
	DisplayName string      `yaml:"displayName"`
	Description string      `yaml:"description"`
	RecipeList  []yaml.Node `yaml:"recipeList"`
}

// Step is one entry of a declaration's recipe list.
type Step struct {
	Name    string
	Options map[string]any
}

// Steps decodes the recipe list. An entry is either a bare recipe name or a
// single-key mapping from the name to its options.
func (d *Declaration) Steps() ([]Step, error) {
	steps := make([]Step, 0, len(d.RecipeList))
	for i := range d.RecipeList {
		n := &d.RecipeList[i]
		switch n.Kind {
		case yaml.ScalarNode:
			steps = append(steps, Step{Name: n.Value})
		case yaml.MappingNode:
			if len(n.Content) != 2 {
				return nil, errors.Newf("recipe %s: line %d: expected one recipe per list entry", d.Name, n.Line)
			}
			var opts map[string]any
			if err := n.Content[1].Decode(&opts); err != nil {
				return nil, errors.Wrapf(err, "recipe %s: line %d", d.Name, n.Line)
			}
			steps = append(steps, Step{Name: n.Content[0].Value, Options: opts})
		default:
			return nil, errors.Newf("recipe %s: line %d: unexpected recipe list entry", d.Name, n.Line)
		}
	}
	return steps, nil
}

// ParseDeclarations reads every YAML document from r.
func ParseDeclarations(r io.Reader) ([]Declaration, error) {
	dec := yaml.NewDecoder(r)
	var out []Declaration
	for {
		var d Declaration
		err := dec.Decode(&d)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "recipe: decode declarations")
		}
		if d.Name == "" {
			return nil, errors.Newf("recipe: declaration %d has no name", len(out)+1)
		}
		if _, err := d.Steps(); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// LoadDeclarative registers every declaration read from r and returns the
// registered names. Steps resolve through reg when the recipe is
// instantiated, so declarations may refer to each other in any order.
func LoadDeclarative(r io.Reader, reg *Registry, source string) ([]string, error) {
	decls, err := ParseDeclarations(r)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(decls))
	for _, d := range decls {
		d := d
		err := reg.Register(Descriptor{
			Name:        d.Name,
			DisplayName: d.DisplayName,
			Description: d.Description,
			Source:      source,
			Factory: func(Values) (Recipe, error) {
				return buildDeclared(reg, &d, nil)
			},
		})
		if err != nil {
			return nil, err
		}
		reg.mu.Lock()
		reg.decls[d.Name] = &d
		reg.mu.Unlock()
		names = append(names, d.Name)
	}
	return names, nil
}

// LoadDeclarativeFile is LoadDeclarative for a file on disk.
func LoadDeclarativeFile(path string, reg *Registry) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "recipe: read declarations")
	}
	return LoadDeclarative(bytes.NewReader(b), reg, path)
}

func buildDeclared(reg *Registry, d *Declaration, stack []string) (Recipe, error) {
	for _, s := range stack {
		if s == d.Name {
			return nil, errors.Newf("recipe %s lists itself: %s", d.Name, strings.Join(append(stack, d.Name), " -> "))
		}
	}
	if len(stack) >= maxDeclarativeDepth {
		return nil, errors.Newf("recipe %s: declarations nested too deeply", d.Name)
	}
	stack = append(stack, d.Name)

	steps, err := d.Steps()
	if err != nil {
		return nil, err
	}
	list := make([]Recipe, 0, len(steps))
	for _, st := range steps {
		var r Recipe
		if inner, ok := declaredIn(reg, st.Name); ok && len(st.Options) == 0 {
			r, err = buildDeclared(reg, inner, stack)
		} else {
			r, err = reg.Instantiate(st.Name, st.Options)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "recipe %s", d.Name)
		}
		list = append(list, r)
	}
	return New(Definition{
		Name:        d.Name,
		DisplayName: d.DisplayName,
		Description: d.Description,
		RecipeList:  list,
	}), nil
}

// declaredIn finds a declaration registered by LoadDeclarative. Those are
// expanded directly so that cycles between declarations are detected.
func declaredIn(reg *Registry, name string) (*Declaration, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	d, ok := reg.decls[name]
	return d, ok
}
