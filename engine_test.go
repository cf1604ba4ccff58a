package lathe

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/lathe/internal/store"
	"github.com/jward/lathe/java"
	"github.com/jward/lathe/java/jtype"
	"github.com/jward/lathe/java/recipes"
	"github.com/jward/lathe/recipe"
	"github.com/jward/lathe/rpc"
	"github.com/jward/lathe/text"
	"github.com/jward/lathe/tree"
)

const counterJava = `package com.example;

class Counter {
    int count = 0;

    void bump(int by) {
        count = count + by;
    }
}
`

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	e, err := New(append([]Option{WithStore(dbPath)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// =============================================================================
// Construction
// =============================================================================

func TestNew_WithoutStore(t *testing.T) {
	t.Parallel()

	e, err := New()
	require.NoError(t, err)
	defer e.Close()

	assert.Nil(t, e.Store())
	assert.NotNil(t, e.Interner())
	_, err = e.History(0)
	assert.Error(t, err)
}

func TestNew_WithStoreMigrates(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	require.NotNil(t, e.Store())

	runs, err := e.History(0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestNew_InvalidPath(t *testing.T) {
	t.Parallel()

	_, err := New(WithStore("/nonexistent/dir/db.sqlite"))
	require.Error(t, err)
}

func TestWithTextExtensions(t *testing.T) {
	t.Parallel()

	e, err := New(WithTextExtensions("yml", ".XML"))
	require.NoError(t, err)

	assert.True(t, e.textExts[".yml"])
	assert.True(t, e.textExts[".xml"])
	assert.False(t, e.textExts[".md"], "defaults are replaced")
	assert.True(t, e.accepts("src/Main.java"))
	assert.True(t, e.accepts("config/app.YML"))
	assert.False(t, e.accepts("README.md"))
}

func TestWithInterner_IsShared(t *testing.T) {
	t.Parallel()

	in := jtype.NewInterner()
	e, err := New(WithInterner(in))
	require.NoError(t, err)
	assert.Same(t, in, e.Interner())

	root := t.TempDir()
	path := writeFile(t, root, "Counter.java", counterJava)
	_, err = e.ParseFiles(context.Background(), []string{path})
	require.NoError(t, err)
	assert.NotEmpty(t, in.Variants("com.example.Counter"))
}

// =============================================================================
// Parsing
// =============================================================================

func TestParseFiles_KeepsInputOrder(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	var paths []string
	for _, name := range []string{"A.java", "notes.txt", "image.png", "B.java", "README.md"} {
		paths = append(paths, writeFile(t, root, name, "class "+strings.TrimSuffix(name, ".java")+" {}\n"))
	}

	for _, parallel := range []bool{true, false} {
		e, err := New(WithParallel(parallel), WithWorkers(2))
		require.NoError(t, err)

		files, err := e.ParseFiles(context.Background(), paths)
		require.NoError(t, err)
		require.Len(t, files, 4, "the png is skipped")

		var got []string
		for _, f := range files {
			got = append(got, filepath.Base(f.SourcePath()))
		}
		assert.Equal(t, []string{"A.java", "notes.txt", "B.java", "README.md"}, got)

		_, isJava := files[0].(*java.CompilationUnit)
		assert.True(t, isJava)
		_, isText := files[1].(*text.Document)
		assert.True(t, isText)
	}
}

func TestParseFiles_SyntaxErrorIsParseError(t *testing.T) {
	t.Parallel()

	e, err := New()
	require.NoError(t, err)

	src := "class Broken {\n    void m( {\n}\n"
	path := writeFile(t, t.TempDir(), "Broken.java", src)
	files, err := e.ParseFiles(context.Background(), []string{path})
	require.NoError(t, err)
	require.Len(t, files, 1)

	pe, ok := files[0].(*tree.ParseError)
	require.True(t, ok, "got %T", files[0])
	assert.Equal(t, src, pe.Print())
	assert.Equal(t, "java", pe.Cause().Parser)
}

func TestParseFiles_MissingFileReported(t *testing.T) {
	t.Parallel()

	e, err := New()
	require.NoError(t, err)

	root := t.TempDir()
	ok := writeFile(t, root, "Counter.java", counterJava)
	files, err := e.ParseFiles(context.Background(), []string{filepath.Join(root, "Gone.java"), ok})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 error(s)")
	require.Len(t, files, 1, "readable files are still returned")
	assert.Equal(t, counterJava, files[0].Print())
}

func TestParseDirectory_SkipsHiddenAndBuildDirs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "src/com/example/Counter.java", counterJava)
	writeFile(t, root, "docs/notes.txt", "notes\n")
	writeFile(t, root, ".hidden/Secret.java", "class Secret {}\n")
	writeFile(t, root, "target/Built.java", "class Built {}\n")
	writeFile(t, root, "node_modules/pkg/readme.md", "x\n")

	e, err := New()
	require.NoError(t, err)
	files, err := e.ParseDirectory(context.Background(), root)
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.SourcePath())
	}
	assert.ElementsMatch(t, []string{"src/com/example/Counter.java", "docs/notes.txt"}, paths)
}

// =============================================================================
// Running
// =============================================================================

func parseCounter(t *testing.T, e *Engine) (string, []tree.SourceFile) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "src/Counter.java", counterJava)
	files, err := e.ParseDirectory(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, files, 1)
	return root, files
}

func TestRun_RecordsHistory(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	_, files := parseCounter(t, e)

	res, err := e.Run(context.Background(), []recipe.Recipe{recipes.ChangeIdentifier("count", "total")}, files)
	require.NoError(t, err)
	assert.True(t, res.Converged)
	require.Len(t, res.Changes(), 1)

	runs, err := e.History(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, []string{recipes.ChangeIdentifierName}, run.Recipes)
	assert.Equal(t, 2, run.Cycles)
	assert.True(t, run.Converged)
	assert.Equal(t, recipe.Converged.String(), run.State)

	rf, err := e.Store().RunFiles(run.ID)
	require.NoError(t, err)
	require.Len(t, rf, 1)
	assert.Equal(t, "src/Counter.java", rf[0].Path)
	assert.Equal(t, store.ChangeModified, rf[0].Change)
	assert.Equal(t, store.ContentHash(counterJava), rf[0].BeforeHash)
	assert.NotEqual(t, rf[0].BeforeHash, rf[0].AfterHash)
}

func TestRun_FailOnNonConvergence(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, WithMaxCycles(2), WithNonConvergence(recipe.FailOnNonConvergence))
	_, files := parseCounter(t, e)

	res, err := e.Run(context.Background(), []recipe.Recipe{recipes.ToggleMarker()}, files)
	require.Error(t, err)
	assert.True(t, errors.Is(err, recipe.ErrNotConverged))
	require.NotNil(t, res, "the partial result is still returned")
	assert.Equal(t, recipe.MaxCyclesExceeded, res.State)
	assert.Equal(t, 2, res.CyclesUsed)

	runs, err := e.History(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.False(t, runs[0].Converged)
	assert.NotEmpty(t, runs[0].Warning)
}

func TestRun_InvalidRecipeIsNotRecorded(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	_, files := parseCounter(t, e)

	_, err := e.Run(context.Background(), []recipe.Recipe{recipes.ChangeIdentifier("count", "")}, files)
	require.Error(t, err)
	assert.True(t, errors.Is(err, recipe.ErrInvalidOption))

	runs, err := e.History(0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestApply_WritesRemovesAndGenerates(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	root := t.TempDir()
	writeFile(t, root, "src/Counter.java", counterJava)
	writeFile(t, root, "src/Legacy.java", "class Legacy {}\n")
	writeFile(t, root, "src/Keep.java", "class Keep {}\n")
	files, err := e.ParseDirectory(context.Background(), root)
	require.NoError(t, err)

	rs := []recipe.Recipe{
		recipes.ChangeIdentifier("count", "total"),
		recipes.DeleteSourceFiles("**/Legacy.java"),
		recipes.CreateTextFile("docs/NOTICE.txt", "hello\n", false),
		recipes.FindMethods("", "bump"),
	}
	res, err := e.Run(context.Background(), rs, files)
	require.NoError(t, err)

	touched, err := e.Apply(root, res)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"src/Counter.java", "src/Legacy.java", "docs/NOTICE.txt"}, touched)

	b, err := os.ReadFile(filepath.Join(root, "src", "Counter.java"))
	require.NoError(t, err)
	assert.Equal(t, strings.ReplaceAll(counterJava, "count", "total"), string(b))

	_, err = os.Stat(filepath.Join(root, "src", "Legacy.java"))
	assert.True(t, os.IsNotExist(err))

	b, err = os.ReadFile(filepath.Join(root, "docs", "NOTICE.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(b))
}

func TestApply_RejectsPathsOutsideRoot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		before tree.SourceFile
		after  tree.SourceFile
	}{
		{"generated parent", nil, text.New("../escaped.txt", "x\n")},
		{"generated nested parent", nil, text.New("docs/../../escaped.txt", "x\n")},
		{"generated absolute", nil, text.New("/tmp/lathe-escaped.txt", "x\n")},
		{"moved outside", text.New("a.txt", "a\n"), text.New("../escaped.txt", "a\n")},
		{"deleted outside", text.New("../victim.txt", "v\n"), nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			e := newTestEngine(t)
			parent := t.TempDir()
			root := filepath.Join(parent, "project")
			writeFile(t, root, "a.txt", "a\n")
			writeFile(t, parent, "victim.txt", "v\n")

			res := &recipe.RunResult{Results: []recipe.Result{
				{Before: text.New("a.txt", "a\n"), After: text.New("a.txt", "changed\n")},
				{Before: tc.before, After: tc.after},
			}}
			touched, err := e.Apply(root, res)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrOutsideRoot))
			assert.Empty(t, touched)

			_, err = os.Stat(filepath.Join(parent, "escaped.txt"))
			assert.True(t, os.IsNotExist(err), "nothing is written outside the root")
			b, err := os.ReadFile(filepath.Join(parent, "victim.txt"))
			require.NoError(t, err)
			assert.Equal(t, "v\n", string(b))
			b, err = os.ReadFile(filepath.Join(root, "a.txt"))
			require.NoError(t, err)
			assert.Equal(t, "a\n", string(b), "a rejected apply writes nothing")
		})
	}
}

// =============================================================================
// Remote execution
// =============================================================================

func TestRunRemote_OverWebsocket(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(rpc.NewServer(recipes.NewRegistry()).Handler())
	defer srv.Close()

	e := newTestEngine(t)
	root, files := parseCounter(t, e)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	conn, err := rpc.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"))
	require.NoError(t, err)
	defer conn.Close()

	req := rpc.RunRequest{Recipes: []rpc.RecipeSpec{{
		Name:    recipes.ChangeIdentifierName,
		Options: map[string]any{"from": "count", "to": "total"},
	}}}
	res, err := e.RunRemote(ctx, conn, req, files)
	require.NoError(t, err)
	assert.True(t, res.Converged)
	require.Len(t, res.Changes(), 1)

	_, err = e.Apply(root, res)
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(root, "src", "Counter.java"))
	require.NoError(t, err)
	assert.Equal(t, strings.ReplaceAll(counterJava, "count", "total"), string(b))

	runs, err := e.History(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, []string{recipes.ChangeIdentifierName}, runs[0].Recipes)
}

func TestRunRemote_SessionUsesStore(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(rpc.NewServer(recipes.NewRegistry()).Handler())
	defer srv.Close()

	e := newTestEngine(t)
	_, files := parseCounter(t, e)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	conn, err := rpc.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"))
	require.NoError(t, err)
	defer conn.Close()

	req := rpc.RunRequest{
		Recipes: []rpc.RecipeSpec{{Name: recipes.FindMethodsName, Options: map[string]any{"name": "bump"}}},
		Session: "dev",
	}
	_, err = e.RunRemote(ctx, conn, req, files)
	require.NoError(t, err)

	n, err := e.Store().CountSnapshots("client:dev")
	require.NoError(t, err)
	assert.Positive(t, n)
}
