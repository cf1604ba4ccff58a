package recipe

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRegistry registers an "append" recipe with a required text option and
// an optional count.
func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	reg.MustRegister(Descriptor{
		Name:        "test.Append",
		DisplayName: "Append text",
		Options: []Option{
			{Name: "text", Type: StringOption, Required: true, Example: "!"},
			{Name: "count", Type: IntOption, Default: 1},
		},
		Factory: func(v Values) (Recipe, error) {
			s := strings.Repeat(v.String("text"), v.Int("count"))
			return suffixOnce("test.Append", s), nil
		},
	})
	return reg
}

// =============================================================================
// Options
// =============================================================================

func TestConfigure(t *testing.T) {
	t.Parallel()

	opts := []Option{
		{Name: "name", Type: StringOption, Required: true},
		{Name: "deep", Type: BoolOption, Default: false},
		{Name: "limit", Type: IntOption},
		{Name: "paths", Type: StringListOption},
	}

	tests := []struct {
		name    string
		raw     map[string]any
		want    Values
		wantErr string
	}{
		{
			name: "defaults applied",
			raw:  map[string]any{"name": "x"},
			want: Values{"name": "x", "deep": false},
		},
		{
			name: "strings coerced",
			raw:  map[string]any{"name": "x", "deep": "true", "limit": "3", "paths": "a, b"},
			want: Values{"name": "x", "deep": true, "limit": 3, "paths": []string{"a", "b"}},
		},
		{
			name: "yaml shapes",
			raw:  map[string]any{"name": 7, "paths": []any{"a"}, "limit": 2},
			want: Values{"name": "7", "deep": false, "limit": 2, "paths": []string{"a"}},
		},
		{name: "missing required", raw: map[string]any{}, wantErr: `option "name" is required`},
		{name: "unknown option", raw: map[string]any{"name": "x", "colour": "red"}, wantErr: "unknown option(s) colour"},
		{name: "bad int", raw: map[string]any{"name": "x", "limit": "many"}, wantErr: `option "limit"`},
		{name: "bad list", raw: map[string]any{"name": "x", "paths": []any{1}}, wantErr: `option "paths"`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Configure(opts, tc.raw)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				assert.True(t, errors.Is(err, ErrInvalidOption))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseAssignments(t *testing.T) {
	t.Parallel()

	got, err := ParseAssignments([]string{"from=foo", "to = bar=baz"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"from": "foo", "to": " bar=baz"}, got)

	_, err = ParseAssignments([]string{"nokey"})
	assert.True(t, errors.Is(err, ErrInvalidOption))
}

// =============================================================================
// Registry
// =============================================================================

func TestRegistry_Instantiate(t *testing.T) {
	t.Parallel()

	reg := testRegistry(t)
	r, err := reg.Instantiate("test.Append", map[string]any{"text": "!", "count": 2})
	require.NoError(t, err)

	res, err := Run([]Recipe{r}, docs("a.txt"), 3)
	require.NoError(t, err)
	assert.Equal(t, "body of a.txt!!", res.Results[0].After.Print())
}

func TestRegistry_Errors(t *testing.T) {
	t.Parallel()

	reg := testRegistry(t)

	_, err := reg.Instantiate("test.Missing", nil)
	assert.True(t, errors.Is(err, ErrUnknownRecipe))

	_, err = reg.Instantiate("test.Append", nil)
	assert.True(t, errors.Is(err, ErrInvalidOption))

	err = reg.Register(Descriptor{Name: "test.Append", Factory: func(Values) (Recipe, error) { return nil, nil }})
	assert.Error(t, err)

	err = reg.Register(Descriptor{Name: "test.NoFactory"})
	assert.Error(t, err)
}

func TestRegistry_ListIsSorted(t *testing.T) {
	t.Parallel()

	reg := testRegistry(t)
	reg.MustRegister(Descriptor{Name: "a.First", Factory: func(Values) (Recipe, error) { return New(Definition{Name: "a.First"}), nil }})

	var names []string
	for _, d := range reg.List() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"a.First", "test.Append"}, names)
}

// =============================================================================
// Declarative recipes
// =============================================================================

const declarations = `
name: test.Cleanup
displayName: Cleanup
description: Appends markers.
recipeList:
  - test.Append:
      text: "[x]"
  - test.Tail
---
name: test.Tail
recipeList:
  - test.Append: {text: "[y]"}
`

func TestLoadDeclarative(t *testing.T) {
	t.Parallel()

	reg := testRegistry(t)
	names, err := LoadDeclarative(strings.NewReader(declarations), reg, "inline")
	require.NoError(t, err)
	assert.Equal(t, []string{"test.Cleanup", "test.Tail"}, names)

	d, ok := reg.Lookup("test.Cleanup")
	require.True(t, ok)
	assert.Equal(t, "Cleanup", d.DisplayName)
	assert.Equal(t, "inline", d.Source)

	r, err := reg.Instantiate("test.Cleanup", nil)
	require.NoError(t, err)
	assert.Len(t, Flatten([]Recipe{r}), 4)

	res, err := Run([]Recipe{r}, docs("a.txt"), 3)
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.Equal(t, "body of a.txt[x][y]", res.Results[0].After.Print())
}

func TestLoadDeclarativeFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rewrite.yml")
	require.NoError(t, os.WriteFile(path, []byte(declarations), 0o644))

	reg := testRegistry(t)
	names, err := LoadDeclarativeFile(path, reg)
	require.NoError(t, err)
	assert.Len(t, names, 2)
}

func TestLoadDeclarative_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{"no name", "recipeList: [test.Append]\n", "has no name"},
		{"two recipes in one entry", "name: x\nrecipeList:\n  - {test.A: {}, test.B: {}}\n", "one recipe per list entry"},
		{"malformed yaml", "name: [\n", "decode declarations"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := LoadDeclarative(strings.NewReader(tc.src), NewRegistry(), "inline")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadDeclarative_InstantiateErrors(t *testing.T) {
	t.Parallel()

	reg := testRegistry(t)
	_, err := LoadDeclarative(strings.NewReader(`
name: test.Loop
recipeList: [test.Loop2]
---
name: test.Loop2
recipeList: [test.Loop]
---
name: test.Dangling
recipeList: [test.Nowhere]
`), reg, "inline")
	require.NoError(t, err)

	_, err = reg.Instantiate("test.Loop", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lists itself")

	_, err = reg.Instantiate("test.Dangling", nil)
	assert.True(t, errors.Is(err, ErrUnknownRecipe))
}
