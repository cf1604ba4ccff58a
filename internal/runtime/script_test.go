package runtime

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/lathe/java"
	"github.com/jward/lathe/java/parser"
	"github.com/jward/lathe/recipe"
	"github.com/jward/lathe/tree"
)

func greeterUnit(t *testing.T) *java.CompilationUnit {
	t.Helper()
	sf, err := parser.New().Parse(context.Background(), "src/com/example/Greeter.java", []byte(javaTestSource))
	require.NoError(t, err)
	cu, ok := sf.(*java.CompilationUnit)
	require.True(t, ok, "got %T", sf)
	return cu
}

func scriptRuntime(scripts map[string]string) *Runtime {
	fsys := fstest.MapFS{}
	for name, src := range scripts {
		fsys[name] = &fstest.MapFile{Data: []byte(src)}
	}
	return NewRuntime("", WithRuntimeFS(fsys))
}

func runScript(t *testing.T, rt *Runtime, path string, kinds []string, cu *java.CompilationUnit) *recipe.Result {
	t.Helper()
	r, err := ScriptRecipe(rt, path, kinds)
	require.NoError(t, err)
	res, err := recipe.Run([]recipe.Recipe{r}, []tree.SourceFile{cu}, 5)
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	return &res.Results[0]
}

// =============================================================================
// Script recipes
// =============================================================================

func TestScriptRecipe_Rename(t *testing.T) {
	t.Parallel()

	rt := scriptRuntime(map[string]string{"rename.risor": `
if kind == "Identifier" && name == "count" {
	rename("visits")
}
`})
	cu := greeterUnit(t)
	res := runScript(t, rt, "rename.risor", nil, cu)

	require.NoError(t, res.Err)
	require.True(t, res.Changed())
	out := res.After.Print()
	assert.Contains(t, out, "int visits = 0;")
	assert.Contains(t, out, "visits = visits + 1;")
	assert.Contains(t, out, "return visits;")
	assert.Equal(t, []string{"lathe.Script:rename.risor"}, res.Recipes)
	assert.Equal(t, cu.ID(), res.After.ID())
}

func TestScriptRecipe_ReplaceLiteral(t *testing.T) {
	t.Parallel()

	rt := scriptRuntime(map[string]string{"zero.risor": `
if value == "0" {
	replace("42")
}
`})
	res := runScript(t, rt, "zero.risor", []string{"Literal"}, greeterUnit(t))

	require.NoError(t, res.Err)
	assert.Contains(t, res.After.Print(), "int count = 42;")
	assert.Contains(t, res.After.Print(), `"hi " + who`, "other literals are untouched")
}

func TestScriptRecipe_TypeBinding(t *testing.T) {
	t.Parallel()

	rt := scriptRuntime(map[string]string{"ints.risor": `
if type == "int" && value == "0" {
	replace("7")
}
`})
	res := runScript(t, rt, "ints.risor", []string{"Literal"}, greeterUnit(t))

	require.NoError(t, res.Err)
	assert.Contains(t, res.After.Print(), "int count = 7;")
}

func TestScriptRecipe_NamesCarryScriptPath(t *testing.T) {
	t.Parallel()

	rt := scriptRuntime(map[string]string{
		"a.risor": `if name == "count" { rename("a") }`,
		"b.risor": `if name == "total" { mark("b") }`,
	})
	a, err := ScriptRecipe(rt, "a.risor", []string{"Identifier"})
	require.NoError(t, err)
	b, err := ScriptRecipe(rt, "b.risor", []string{"MethodDecl"})
	require.NoError(t, err)
	assert.Equal(t, "lathe.Script:a.risor", a.Name())
	assert.Equal(t, "lathe.Script:b.risor", b.Name())

	res, err := recipe.Run([]recipe.Recipe{a, b}, []tree.SourceFile{greeterUnit(t)}, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{a.Name(), b.Name()}, res.Results[0].Recipes)
}

func TestScriptRecipe_MarkUsesContext(t *testing.T) {
	t.Parallel()

	rt := scriptRuntime(map[string]string{"find.risor": `
if name == "println" {
	mark('{name} in {enclosing_class}.{enclosing_method}')
}
`})
	cu := greeterUnit(t)
	res := runScript(t, rt, "find.risor", []string{"MethodInvocation"}, cu)

	require.NoError(t, res.Err)
	assert.Equal(t, cu.Print(), res.After.Print(), "markers do not print")
	out := java.PrintWithSearchResults(res.After.(*java.CompilationUnit))
	assert.Contains(t, out, "/*~~(println in com.example.Greeter.greet)~~>*/System.out.println(")
}

func TestScriptRecipe_FileSourceAndQuery(t *testing.T) {
	t.Parallel()

	rt := scriptRuntime(map[string]string{"count.risor": `
root := parse_src(file_source).RootNode()
methods := query("(method_declaration) @m", root)
mark('{path}: {len(methods)} methods')
`})
	res := runScript(t, rt, "count.risor", []string{"ClassDecl"}, greeterUnit(t))

	require.NoError(t, res.Err)
	out := java.PrintWithSearchResults(res.After.(*java.CompilationUnit))
	assert.Contains(t, out, "/*~~(src/com/example/Greeter.java: 2 methods)~~>*/")
}

func TestScriptRecipe_NoActionsKeepsTree(t *testing.T) {
	t.Parallel()

	rt := scriptRuntime(map[string]string{"noop.risor": `x := kind + ":" + name`})
	cu := greeterUnit(t)
	res := runScript(t, rt, "noop.risor", nil, cu)

	require.NoError(t, res.Err)
	assert.Same(t, cu, res.After)
}

func TestScriptRecipe_ScriptErrorFailsFile(t *testing.T) {
	t.Parallel()

	rt := scriptRuntime(map[string]string{"bad.risor": `undefined_thing()`})
	cu := greeterUnit(t)
	res := runScript(t, rt, "bad.risor", nil, cu)

	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "bad.risor")
	assert.Same(t, cu, res.After)
}

func TestScriptRecipe_ReplaceOnIdentifierFails(t *testing.T) {
	t.Parallel()

	rt := scriptRuntime(map[string]string{"wrong.risor": `replace("1")`})
	res := runScript(t, rt, "wrong.risor", []string{"Identifier"}, greeterUnit(t))

	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "replace applies to literals")
}

func TestScriptRecipe_UnknownKind(t *testing.T) {
	t.Parallel()

	_, err := ScriptRecipe(scriptRuntime(nil), "x.risor", []string{"Lambda"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, recipe.ErrInvalidOption))
}

func TestScriptRecipe_MissingScript(t *testing.T) {
	t.Parallel()

	_, err := ScriptRecipe(scriptRuntime(nil), "missing.risor", nil)
	require.Error(t, err)
}

func TestRegister_InstantiatesFromOptions(t *testing.T) {
	t.Parallel()

	rt := scriptRuntime(map[string]string{"rename.risor": `
if name == "greet" {
	rename("welcome")
}
`})
	reg := recipe.NewRegistry()
	require.NoError(t, Register(reg, rt))

	r, err := reg.Instantiate(ScriptRecipeName, map[string]any{
		"script": "rename.risor",
		"kinds":  "MethodDecl",
	})
	require.NoError(t, err)

	res, err := recipe.Run([]recipe.Recipe{r}, []tree.SourceFile{greeterUnit(t)}, 3)
	require.NoError(t, err)
	assert.Contains(t, res.Results[0].After.Print(), "void welcome(String who)")

	_, err = reg.Instantiate(ScriptRecipeName, nil)
	assert.True(t, errors.Is(err, recipe.ErrInvalidOption), "script is required")
}
