package recipe

import (
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
)

// ErrUnknownRecipe is returned when a recipe name is not registered.
var ErrUnknownRecipe = errors.New("unknown recipe")

// Factory builds a configured recipe from checked option values.
type Factory func(v Values) (Recipe, error)

// Descriptor describes a registered recipe.
type Descriptor struct {
	Name        string
	DisplayName string
	Description string
	Options     []Option
	Factory     Factory
	// Source is where the recipe came from: "builtin", a YAML path or a
	// script path.
	Source string
}

// Registry maps recipe names to factories. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Descriptor
	decls   map[string]*Declaration
}

func NewRegistry() *Registry {
	return &Registry{entries: map[string]Descriptor{}, decls: map[string]*Declaration{}}
}

// Register adds d. Registering a name twice is an error.
func (r *Registry) Register(d Descriptor) error {
	if d.Name == "" {
		return errors.New("recipe: descriptor has no name")
	}
	if d.Factory == nil {
		return errors.Newf("recipe: %s has no factory", d.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[d.Name]; ok {
		return errors.Newf("recipe: %s is already registered", d.Name)
	}
	r.entries[d.Name] = d
	return nil
}

// MustRegister is Register for init-time tables.
func (r *Registry) MustRegister(ds ...Descriptor) {
	for _, d := range ds {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
}

func (r *Registry) Lookup(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.entries[name]
	return d, ok
}

// List returns every descriptor sorted by name.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	out := make([]Descriptor, 0, len(r.entries))
	for _, d := range r.entries {
		out = append(out, d)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Instantiate configures and builds the named recipe.
func (r *Registry) Instantiate(name string, raw map[string]any) (Recipe, error) {
	d, ok := r.Lookup(name)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownRecipe, "%q", name)
	}
	vals, err := Configure(d.Options, raw)
	if err != nil {
		return nil, errors.Wrapf(err, "recipe %s", name)
	}
	rec, err := d.Factory(vals)
	if err != nil {
		return nil, errors.Wrapf(err, "recipe %s", name)
	}
	if v, ok := rec.(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, wrapInvalid(err, name)
		}
	}
	return rec, nil
}
