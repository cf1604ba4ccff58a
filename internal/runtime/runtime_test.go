package runtime

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	sitter "github.com/smacker/go-tree-sitter"
	sitterjava "github.com/smacker/go-tree-sitter/java"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const javaTestSource = `package com.example;

class Greeter {
    int count = 0;

    void greet(String who) {
        count = count + 1;
        System.out.println("hi " + who);
    }

    int total() {
        return count;
    }
}
`

func parseJava(t *testing.T, src string) (*sitter.Tree, *sourceStore) {
	t.Helper()

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(sitterjava.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, []byte(src))
	require.NoError(t, err)

	ss := newSourceStore()
	ss.store(tree, []byte(src))
	return tree, ss
}

// --- Source store ---

func TestSourceStore_FindsSourceFromAnyNode(t *testing.T) {
	tree, ss := parseJava(t, javaTestSource)
	root := tree.RootNode()

	src, ok := ss.sourceForNode(root)
	require.True(t, ok)
	assert.Equal(t, javaTestSource, string(src))

	cls := root.NamedChild(1)
	require.Equal(t, "class_declaration", cls.Type())
	name := cls.ChildByFieldName("name")
	src, ok = ss.sourceForNode(name)
	require.True(t, ok)
	assert.Equal(t, "Greeter", name.Content(src))
}

func TestSourceStore_UnknownTree(t *testing.T) {
	tree, _ := parseJava(t, javaTestSource)
	_, ok := newSourceStore().sourceForNode(tree.RootNode())
	assert.False(t, ok)
}

// --- Risor integration tests (via RunSource) ---

func TestRunSource_ParseAndNodeText(t *testing.T) {
	rt := NewRuntime("")

	script := `
tree := parse_src(src)
root := tree.RootNode()
assert(root.Type() == "program", 'expected program, got {root.Type()}')

cls := root.NamedChild(1)
assert(cls.Type() == "class_declaration", 'got {cls.Type()}')
assert(node_text(node_child(cls, "name")) == "Greeter")
`
	err := rt.RunSource(context.Background(), script, map[string]any{"src": javaTestSource})
	require.NoError(t, err)
}

func TestRunSource_ExtraGlobalShadowsBuiltin(t *testing.T) {
	rt := NewRuntime("")

	script := `
assert(type == "int", 'type is {type}')
assert(len("ab") == 2)
`
	err := rt.RunSource(context.Background(), script, map[string]any{"type": "int"})
	require.NoError(t, err)
}

func TestRunSource_QueryHostFunction(t *testing.T) {
	rt := NewRuntime("")

	script := `
root := parse_src(src).RootNode()
matches := query("(method_declaration name: (identifier) @name)", root)
assert(len(matches) == 2, 'expected 2 matches, got {len(matches)}')
assert(node_text(matches[0]["name"]) == "greet")
assert(node_text(matches[1]["name"]) == "total")
`
	err := rt.RunSource(context.Background(), script, map[string]any{"src": javaTestSource})
	require.NoError(t, err)
}

func TestRunSource_QueryNoMatches(t *testing.T) {
	rt := NewRuntime("")

	script := `
root := parse_src("class Empty {}").RootNode()
matches := query("(method_declaration) @m", root)
assert(len(matches) == 0, 'expected no matches, got {len(matches)}')
`
	require.NoError(t, rt.RunSource(context.Background(), script, nil))
}

func TestRunSource_QueryInvalidPattern(t *testing.T) {
	rt := NewRuntime("")

	script := `
root := parse_src("class A {}").RootNode()
query("(not_a_node_type) @x", root)
`
	err := rt.RunSource(context.Background(), script, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pattern")
}

func TestRunSource_NodeChildMissingFieldIsNil(t *testing.T) {
	rt := NewRuntime("")

	script := `
cls := parse_src("class A {}").RootNode().NamedChild(0)
assert(node_child(cls, "superclass") == nil)
assert(node_text(node_child(cls, "body")) == "{}")
`
	require.NoError(t, rt.RunSource(context.Background(), script, nil))
}

func TestRunSource_HostFunctionArgumentErrors(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{"parse_src arity", `parse_src()`},
		{"parse_src type", `parse_src(1)`},
		{"node_text type", `node_text("x")`},
		{"node_child arity", `node_child(1)`},
	}
	rt := NewRuntime("")
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, rt.RunSource(context.Background(), tc.script, nil))
		})
	}
}

func TestRunSource_ErrorNamesScript(t *testing.T) {
	rt := NewRuntime("")
	err := rt.RunSource(context.Background(), `undefined_name + 1`, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "runtime: script <inline>")
}

func TestRunSource_LogGoesToZap(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	rt := NewRuntime("", WithLogger(zap.New(core).Sugar()))

	script := `
log.Info("hello")
log.Warn("careful")
`
	require.NoError(t, rt.RunSource(context.Background(), script, nil))

	require.Equal(t, 1, logs.FilterMessage("hello").Len())
	entry := logs.FilterMessage("careful").All()[0]
	assert.Equal(t, zap.WarnLevel, entry.Level)
	assert.Equal(t, "<inline>", entry.ContextMap()["script"])
}

// --- Script loading ---

func TestRunScript_LoadsFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ok.risor"), []byte(`x := 1 + 1`), 0644))

	rt := NewRuntime(dir)
	require.NoError(t, rt.RunScript(context.Background(), "ok.risor", nil))
}

func TestRunScript_MissingFile(t *testing.T) {
	rt := NewRuntime(t.TempDir())
	err := rt.RunScript(context.Background(), "missing.risor", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading script")
}

func TestLoadScript_AbsolutePathIgnoresDir(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "abs.risor")
	require.NoError(t, os.WriteFile(p, []byte(`y := 2`), 0644))

	rt := NewRuntime("/nonexistent")
	got, err := rt.LoadScript(p)
	require.NoError(t, err)
	assert.Equal(t, `y := 2`, got)
}

func TestLoadScript_FromFSFS(t *testing.T) {
	mapFS := fstest.MapFS{
		"recipes/rename.risor": &fstest.MapFile{Data: []byte(`rename("x")`)},
	}
	rt := NewRuntime("", WithRuntimeFS(mapFS))

	got, err := rt.LoadScript("recipes/rename.risor")
	require.NoError(t, err)
	assert.Equal(t, `rename("x")`, got)

	got, err = rt.LoadScript("/recipes/rename.risor")
	require.NoError(t, err, "a leading separator is stripped")
	assert.Equal(t, `rename("x")`, got)

	_, err = rt.LoadScript("nope.risor")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "from fs")
}

// --- Importer wiring tests ---

func TestImport_FSImporter(t *testing.T) {
	// Risor's FSImporter resolves "lib_helpers" by trying name + ".risor".
	mapFS := fstest.MapFS{
		"lib_helpers.risor": &fstest.MapFile{Data: []byte(`
func greet(name) {
	return "hello " + name
}
`)},
	}
	rt := NewRuntime("", WithRuntimeFS(mapFS))

	script := `
import lib_helpers

msg := lib_helpers.greet("world")
assert(msg == "hello world", 'expected "hello world", got ' + msg)
`
	require.NoError(t, rt.RunSource(context.Background(), script, nil))
}

func TestImport_LocalImporter(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "math_utils.risor"), []byte(`
func double(x) {
	return x * 2
}
`), 0644))

	rt := NewRuntime(dir)

	script := `
import math_utils

result := math_utils.double(21)
assert(result == 42, 'expected 42, got {result}')
`
	require.NoError(t, rt.RunSource(context.Background(), script, nil))
}

func TestImport_GlobalsAvailableInImportedModules(t *testing.T) {
	mapFS := fstest.MapFS{
		"helper.risor": &fstest.MapFile{Data: []byte(`
func do_log(msg) {
	log.Info(msg)
}
`)},
	}
	rt := NewRuntime("", WithRuntimeFS(mapFS))

	script := `
import helper
helper.do_log("test message")
`
	require.NoError(t, rt.RunSource(context.Background(), script, nil))
}

func TestNewRuntime_Defaults(t *testing.T) {
	t.Parallel()

	rt := NewRuntime("/some/dir")
	require.NotNil(t, rt)
	assert.Nil(t, rt.fsys)
	assert.NotNil(t, rt.logger)
	assert.Equal(t, "/some/dir", rt.scriptsDir)
	assert.NotNil(t, rt.buildImporter(nil))
	assert.Nil(t, NewRuntime("").buildImporter(nil), "no dir and no fs means no importer")
}
