package lathe

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/lathe/recipe"
	"github.com/jward/lathe/tree"
)

// Golden test format. Each case directory under testdata/recipes holds:
//
//	project/     the input tree
//	rewrite.yml  declarative recipes
//	expected/    files that must match byte for byte after Apply
//	golden.json  the expected run outcome
type goldenFile struct {
	Recipe      string         `json:"recipe"`
	Converged   bool           `json:"converged"`
	Cycles      int            `json:"cycles"`
	Changes     []goldenChange `json:"changes"`
	Absent      []string       `json:"absent,omitempty"`
	ParseErrors []string       `json:"parse_errors,omitempty"`
}

type goldenChange struct {
	Path    string   `json:"path"`
	Change  string   `json:"change"`
	Recipes []string `json:"recipes"`
}

// TestGolden walks testdata/recipes/ and runs every case through the Engine:
// parse the project, run the declared recipe, apply, and compare.
func TestGolden(t *testing.T) {
	root := filepath.Join("testdata", "recipes")
	cases, err := os.ReadDir(root)
	if err != nil {
		t.Skip("no testdata/recipes directory found")
	}

	for _, c := range cases {
		if !c.IsDir() {
			continue
		}
		dir := filepath.Join(root, c.Name())
		t.Run(c.Name(), func(t *testing.T) {
			t.Parallel()
			runGoldenCase(t, dir)
		})
	}
}

func runGoldenCase(t *testing.T, dir string) {
	raw, err := os.ReadFile(filepath.Join(dir, "golden.json"))
	require.NoError(t, err)
	var golden goldenFile
	require.NoError(t, json.Unmarshal(raw, &golden))

	project := t.TempDir()
	copyTree(t, filepath.Join(dir, "project"), project)

	e, err := New(WithStore(filepath.Join(t.TempDir(), "lathe.db")))
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })

	reg, err := e.Recipes()
	require.NoError(t, err)
	_, err = recipe.LoadDeclarativeFile(filepath.Join(dir, "rewrite.yml"), reg)
	require.NoError(t, err)
	rec, err := reg.Instantiate(golden.Recipe, nil)
	require.NoError(t, err)

	ctx := context.Background()
	files, err := e.ParseDirectory(ctx, project)
	require.NoError(t, err)

	var parseErrors []string
	for _, f := range files {
		if _, ok := f.(*tree.ParseError); ok {
			parseErrors = append(parseErrors, f.SourcePath())
		}
	}
	assert.ElementsMatch(t, golden.ParseErrors, parseErrors, "parse errors")

	res, err := e.Run(ctx, []recipe.Recipe{rec}, files)
	require.NoError(t, err)
	assert.Equal(t, golden.Converged, res.Converged, "converged")
	assert.Equal(t, golden.Cycles, res.CyclesUsed, "cycles")

	var changes []goldenChange
	for _, r := range res.Changes() {
		gc := goldenChange{Path: r.Path(), Recipes: r.Recipes}
		switch {
		case r.Generated():
			gc.Change = "generated"
			gc.Recipes = []string{r.GeneratedBy}
		case r.Deleted():
			gc.Change = "deleted"
			gc.Recipes = []string{r.DeletedBy}
		default:
			gc.Change = "modified"
		}
		changes = append(changes, gc)
	}
	assert.ElementsMatch(t, golden.Changes, changes, "changes")

	_, err = e.Apply(project, res)
	require.NoError(t, err)

	expected := filepath.Join(dir, "expected")
	for _, rel := range listFiles(t, expected) {
		want, err := os.ReadFile(filepath.Join(expected, rel))
		require.NoError(t, err)
		got, err := os.ReadFile(filepath.Join(project, rel))
		if !assert.NoError(t, err, "expected file %s", rel) {
			continue
		}
		assert.Equal(t, string(want), string(got), "file %s", rel)
	}
	for _, rel := range golden.Absent {
		_, err := os.Stat(filepath.Join(project, filepath.FromSlash(rel)))
		assert.True(t, os.IsNotExist(err), "%s should be gone", rel)
	}

	runs, err := e.History(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, []string{golden.Recipe}, runs[0].Recipes)
}

func listFiles(t *testing.T, root string) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		out = append(out, rel)
		return nil
	})
	require.NoError(t, err)
	sort.Strings(out)
	return out
}

func copyTree(t *testing.T, from, to string) {
	t.Helper()
	for _, rel := range listFiles(t, from) {
		b, err := os.ReadFile(filepath.Join(from, rel))
		require.NoError(t, err)
		dst := filepath.Join(to, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0o755))
		require.NoError(t, os.WriteFile(dst, b, 0o644))
	}
}
