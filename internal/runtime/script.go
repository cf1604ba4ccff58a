package runtime

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/risor-io/risor/object"

	"github.com/jward/lathe/java"
	"github.com/jward/lathe/java/jtype"
	"github.com/jward/lathe/recipe"
	"github.com/jward/lathe/tree"
)

// ScriptRecipeName is the registered name of script recipes.
const ScriptRecipeName = "lathe.Script"

// ScriptName is the name a script recipe reports in results and history:
// the registered name followed by the script's path.
func ScriptName(path string) string {
	return ScriptRecipeName + ":" + filepath.ToSlash(path)
}

// DefaultScriptKinds are the node kinds a script visits when none are given.
var DefaultScriptKinds = []string{"Identifier", "MethodInvocation", "Literal"}

var scriptOptions = []recipe.Option{
	{Name: "script", DisplayName: "Script", Description: "Path of the .risor file, relative to the scripts directory.", Type: recipe.StringOption, Required: true, Example: "rename_getters.risor"},
	{Name: "kinds", DisplayName: "Node kinds", Description: "Kinds of node the script runs on.", Type: recipe.StringListOption, Default: DefaultScriptKinds, Example: "Identifier,Literal"},
}

// Register adds the script recipe to reg. Scripts are resolved against rt.
func Register(reg *recipe.Registry, rt *Runtime) error {
	return reg.Register(recipe.Descriptor{
		Name:        ScriptRecipeName,
		DisplayName: "Risor script",
		Description: "Runs a Risor script on every node of the chosen kinds.",
		Options:     scriptOptions,
		Source:      "builtin",
		Factory: func(v recipe.Values) (recipe.Recipe, error) {
			return ScriptRecipe(rt, v.String("script"), v.Strings("kinds"))
		},
	})
}

// ScriptRecipe builds a recipe that evaluates the script at path once for
// every Java node whose kind is listed in kinds.
//
// The script sees these bindings describing the node:
//
//	kind, name, value, source, type
//	path, enclosing_class, enclosing_method, visible_names
//	cycle, file_source
//
// and edits it through three functions:
//
//	rename(to)    renames an identifier, call or declaration
//	replace(src)  replaces the source text of a literal
//	mark(desc)    attaches a search result
//
// A script that records nothing leaves the node untouched.
func ScriptRecipe(rt *Runtime, path string, kinds []string) (recipe.Recipe, error) {
	if len(kinds) == 0 {
		kinds = DefaultScriptKinds
	}
	want := make(map[java.Kind]bool, len(kinds))
	for _, k := range kinds {
		kind, ok := java.KindFromString(strings.TrimSpace(k))
		if !ok {
			return nil, errors.Mark(errors.Newf("unknown node kind %q", k), recipe.ErrInvalidOption)
		}
		want[kind] = true
	}
	src, err := rt.LoadScript(path)
	if err != nil {
		return nil, err
	}
	s := &script{rt: rt, path: path, source: src, kinds: want}
	return recipe.New(recipe.Definition{
		Name:        ScriptName(path),
		DisplayName: "Risor script " + path,
		Description: "Runs `" + path + "` on " + strings.Join(kinds, ", ") + " nodes.",
		Options:     scriptOptions,
		Editor:      s.editor,
	}), nil
}

type script struct {
	rt     *Runtime
	path   string
	source string
	kinds  map[java.Kind]bool
}

type editor = java.Visitor[*recipe.ExecutionContext]

func (s *script) editor() recipe.TreeVisitor {
	var (
		root    *java.CompilationUnit
		rootSrc string
	)
	fileSource := func(c *tree.Cursor) string {
		cu := java.EnclosingCompilationUnit(c)
		if cu == nil {
			return ""
		}
		if cu != root {
			root, rootSrc = cu, cu.Print()
		}
		return rootSrc
	}
	return &editor{
		PostVisit: func(n java.J, c *tree.Cursor, ec *recipe.ExecutionContext) (java.J, error) {
			if !s.kinds[n.Kind()] {
				return n, nil
			}
			b := bindings(n, c)
			b["cycle"] = object.NewInt(int64(ec.Cycle()))
			b["file_source"] = object.NewString(fileSource(c))
			return s.run(ec.Context(), n, b)
		},
	}
}

func (s *script) run(ctx context.Context, n java.J, b map[string]any) (java.J, error) {
	act := &actions{}
	b["rename"] = act.renameFn()
	b["replace"] = act.replaceFn()
	b["mark"] = act.markFn()
	if err := s.rt.eval(ctx, s.source, s.path, b); err != nil {
		return nil, err
	}
	out, err := act.apply(n)
	if err != nil {
		return nil, errors.Wrapf(err, "runtime: script %s", s.path)
	}
	return out, nil
}

// bindings describes n and its position to a script.
func bindings(n java.J, c *tree.Cursor) map[string]any {
	b := map[string]any{
		"kind":             object.NewString(n.Kind().String()),
		"name":             object.NewString(nodeName(n)),
		"value":            object.Nil,
		"source":           object.NewString(strings.TrimSpace(java.Print(n))),
		"type":             object.NewString(nodeType(n)),
		"path":             object.Nil,
		"enclosing_class":  object.Nil,
		"enclosing_method": object.Nil,
	}
	if lit, ok := n.(*java.Literal); ok {
		b["value"] = object.NewString(lit.Source)
	}
	if cu := java.EnclosingCompilationUnit(c); cu != nil {
		b["path"] = object.NewString(cu.SourcePath())
	}
	if cls := java.EnclosingClass(c); cls != nil {
		b["enclosing_class"] = object.NewString(className(cls))
	}
	if m := java.EnclosingMethod(c); m != nil {
		b["enclosing_method"] = object.NewString(m.Name.Name)
	}
	names := java.VisibleNames(c)
	items := make([]object.Object, len(names))
	for i, v := range names {
		items[i] = object.NewString(v)
	}
	b["visible_names"] = object.NewList(items)
	return b
}

func nodeName(n java.J) string {
	if m, ok := n.(*java.MethodInvocation); ok {
		return m.Name.Name
	}
	return java.SimpleName(n)
}

func nodeType(n java.J) string {
	var t jtype.Type
	switch n := n.(type) {
	case *java.Identifier:
		t = n.Type
	case *java.Literal:
		return n.Type.String()
	case *java.MethodInvocation:
		if n.MethodType != nil {
			t = n.MethodType
		}
	case *java.MethodDecl:
		if n.MethodType != nil {
			t = n.MethodType
		}
	case *java.ClassDecl:
		if n.Type != nil {
			t = n.Type
		}
	case *java.NamedVariable:
		t = n.Type
	}
	if t == nil {
		return ""
	}
	return t.String()
}

func className(cls *java.ClassDecl) string {
	if cls.Type != nil {
		return cls.Type.FullyQualifiedName
	}
	return cls.Name.Name
}

// actions records what one evaluation asked for.
type actions struct {
	rename  *string
	replace *string
	marks   []string
}

func stringArg(name string, args []object.Object) (string, object.Object) {
	if len(args) != 1 {
		return "", object.NewArgsError(name, 1, len(args))
	}
	s, ok := args[0].(*object.String)
	if !ok {
		return "", object.Errorf("%s: expected a string, got %s", name, args[0].Type())
	}
	return s.Value(), nil
}

func (a *actions) renameFn() *object.Builtin {
	return object.NewBuiltin("rename", func(ctx context.Context, args ...object.Object) object.Object {
		v, errObj := stringArg("rename", args)
		if errObj != nil {
			return errObj
		}
		a.rename = &v
		return object.Nil
	})
}

func (a *actions) replaceFn() *object.Builtin {
	return object.NewBuiltin("replace", func(ctx context.Context, args ...object.Object) object.Object {
		v, errObj := stringArg("replace", args)
		if errObj != nil {
			return errObj
		}
		a.replace = &v
		return object.Nil
	})
}

func (a *actions) markFn() *object.Builtin {
	return object.NewBuiltin("mark", func(ctx context.Context, args ...object.Object) object.Object {
		v, errObj := stringArg("mark", args)
		if errObj != nil {
			return errObj
		}
		a.marks = append(a.marks, v)
		return object.Nil
	})
}

// apply edits n through its With methods, so recording a value the node
// already has changes nothing.
func (a *actions) apply(n java.J) (java.J, error) {
	out := n
	if a.rename != nil {
		to := *a.rename
		switch m := out.(type) {
		case *java.Identifier:
			out = m.WithName(to)
		case *java.MethodInvocation:
			out = m.WithName(m.Name.WithName(to))
		case *java.MethodDecl:
			out = m.WithName(m.Name.WithName(to))
		case *java.ClassDecl:
			out = m.WithName(m.Name.WithName(to))
		case *java.NamedVariable:
			out = m.WithName(m.Name.WithName(to))
		default:
			return nil, errors.Newf("rename does not apply to %s", n.Kind())
		}
	}
	if a.replace != nil {
		lit, ok := out.(*java.Literal)
		if !ok {
			return nil, errors.Newf("replace applies to literals, not %s", n.Kind())
		}
		out = lit.WithSource(*a.replace)
	}
	for _, desc := range a.marks {
		markers := tree.AddSearchResult(out.Markers(), desc)
		if !markers.Equal(out.Markers()) {
			out = out.WithMarkers(markers)
		}
	}
	return out, nil
}
