package scripts_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/lathe"
	latheruntime "github.com/jward/lathe/internal/runtime"
	"github.com/jward/lathe/java"
	"github.com/jward/lathe/recipe"
	"github.com/jward/lathe/scripts"
)

const clockSource = `package com.example;

class Clock {
    int timeoutMillis = 86400000;
    int small = 1000;

    int getTimeout() {
        return timeoutMillis;
    }

    void report() {
        System.out.println(getTimeout());
    }
}
`

// runBundled parses clockSource and runs one bundled script over it.
func runBundled(t *testing.T, script, kinds string) *recipe.Result {
	t.Helper()
	e, err := lathe.New(lathe.WithScriptsFS(scripts.Recipes()))
	require.NoError(t, err)
	defer e.Close()

	path := filepath.Join(t.TempDir(), "Clock.java")
	require.NoError(t, os.WriteFile(path, []byte(clockSource), 0o644))
	ctx := context.Background()
	files, err := e.ParseFiles(ctx, []string{path})
	require.NoError(t, err)
	require.Len(t, files, 1)

	reg, err := e.Recipes()
	require.NoError(t, err)
	r, err := reg.Instantiate(latheruntime.ScriptRecipeName, map[string]any{
		"script": script,
		"kinds":  kinds,
	})
	require.NoError(t, err)

	res, err := e.Run(ctx, []recipe.Recipe{r}, files)
	require.NoError(t, err)
	assert.True(t, res.Converged, "%s converges", script)
	require.Len(t, res.Results, 1)
	require.NoError(t, res.Results[0].Err)
	return &res.Results[0]
}

// =============================================================================
// Bundled scripts
// =============================================================================

func TestNames(t *testing.T) {
	t.Parallel()

	assert.ElementsMatch(t, []string{
		"group_digits.risor",
		"mark_println.risor",
		"rename_getters.risor",
	}, scripts.Names())
}

func TestGroupDigits(t *testing.T) {
	t.Parallel()

	res := runBundled(t, "group_digits.risor", "Literal")
	require.True(t, res.Changed())
	out := res.After.Print()
	assert.Contains(t, out, "int timeoutMillis = 86_400_000;")
	assert.Contains(t, out, "int small = 1000;", "short literals are left alone")
}

func TestMarkPrintln(t *testing.T) {
	t.Parallel()

	res := runBundled(t, "mark_println.risor", "MethodInvocation")
	require.True(t, res.Changed())
	assert.Equal(t, clockSource, res.After.Print(), "markers do not print")

	out := java.PrintWithSearchResults(res.After.(*java.CompilationUnit))
	assert.Contains(t, out, "/*~~(console output in com.example.Clock.report)~~>*/System.out.println(")
}

func TestRenameGetters(t *testing.T) {
	t.Parallel()

	res := runBundled(t, "rename_getters.risor", "MethodDecl,MethodInvocation")
	require.True(t, res.Changed())
	out := res.After.Print()
	assert.Contains(t, out, "int timeout() {")
	assert.Contains(t, out, "System.out.println(timeout());")
	assert.NotContains(t, out, "getTimeout")
}
