package recipe

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/lathe/java"
	"github.com/jward/lathe/java/parser"
	"github.com/jward/lathe/text"
	"github.com/jward/lathe/tree"
)

// textRecipe builds a recipe whose editor rewrites plain-text documents.
func textRecipe(name string, edit func(d *text.Document) (tree.Tree, error)) Recipe {
	return New(Definition{
		Name: name,
		Editor: func() TreeVisitor {
			return VisitorFunc(func(t tree.Tree, _ *ExecutionContext) (tree.Tree, error) {
				d, ok := t.(*text.Document)
				if !ok {
					return t, nil
				}
				return edit(d)
			})
		},
	})
}

// suffixOnce appends s unless the text already contains it.
func suffixOnce(name, s string) Recipe {
	return textRecipe(name, func(d *text.Document) (tree.Tree, error) {
		if strings.Contains(d.Text(), s) {
			return d, nil
		}
		return d.WithText(d.Text() + s), nil
	})
}

// toggle adds a trailing '#' when missing and removes it when present.
func toggle() Recipe {
	return textRecipe("toggle", func(d *text.Document) (tree.Tree, error) {
		if s, ok := strings.CutSuffix(d.Text(), "#"); ok {
			return d.WithText(s), nil
		}
		return d.WithText(d.Text() + "#"), nil
	})
}

func docs(paths ...string) []tree.SourceFile {
	out := make([]tree.SourceFile, len(paths))
	for i, p := range paths {
		out[i] = text.New(p, "body of "+p)
	}
	return out
}

// visits counts editor calls per path.
type visits struct {
	mu sync.Mutex
	n  map[string]int
}

func (v *visits) record(path string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.n == nil {
		v.n = map[string]int{}
	}
	v.n[path]++
}

func (v *visits) get(path string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.n[path]
}

// =============================================================================
// Convergence
// =============================================================================

func TestRun_NoChangeConvergesInOneCycle(t *testing.T) {
	t.Parallel()

	files := docs("a.txt", "b.txt")
	noop := textRecipe("noop", func(d *text.Document) (tree.Tree, error) { return d, nil })

	res, err := Run([]Recipe{noop}, files, 5)
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.Equal(t, Converged, res.State)
	assert.Equal(t, 1, res.CyclesUsed)
	assert.Empty(t, res.Changes())
	require.Len(t, res.Results, 2)
	for i, r := range res.Results {
		assert.Same(t, files[i], r.After)
	}
}

func TestRun_ConvergesAfterChange(t *testing.T) {
	t.Parallel()

	files := docs("a.txt")
	res, err := Run([]Recipe{suffixOnce("bang", "!")}, files, 5)
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.Equal(t, 2, res.CyclesUsed)

	require.Len(t, res.Results, 1)
	r := res.Results[0]
	assert.True(t, r.Changed())
	assert.Equal(t, "body of a.txt!", r.After.Print())
	assert.Equal(t, []string{"bang"}, r.Recipes)
	assert.Equal(t, files[0].ID(), r.After.ID())
}

func TestRun_FixedPointIsStable(t *testing.T) {
	t.Parallel()

	recipes := []Recipe{suffixOnce("bang", "!")}
	first, err := Run(recipes, docs("a.txt", "b.txt"), 5)
	require.NoError(t, err)
	require.True(t, first.Converged)

	again, err := Run(recipes, first.Files(), 5)
	require.NoError(t, err)
	assert.Equal(t, 1, again.CyclesUsed)
	assert.Empty(t, again.Changes())
}

func TestRun_NonConvergentWarnsByDefault(t *testing.T) {
	t.Parallel()

	res, err := Run([]Recipe{toggle()}, docs("a.txt"), 5)
	require.NoError(t, err)
	assert.False(t, res.Converged)
	assert.Equal(t, 5, res.CyclesUsed)
	assert.Equal(t, MaxCyclesExceeded, res.State)
	assert.NotEmpty(t, res.Warning)
	assert.NotEmpty(t, res.Changes())
	assert.Equal(t, "body of a.txt#", res.Results[0].After.Print())
}

func TestRun_NonConvergentFailPolicy(t *testing.T) {
	t.Parallel()

	s := NewScheduler(WithMaxCycles(4), WithNonConvergencePolicy(FailOnNonConvergence))
	res, err := s.Run(context.Background(), []Recipe{toggle()}, docs("a.txt"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotConverged))
	require.NotNil(t, res)
	assert.Equal(t, 4, res.CyclesUsed)
	assert.False(t, res.Converged)
	assert.Equal(t, "body of a.txt", res.Results[0].After.Print())
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	p, err := ParsePolicy("FAIL")
	require.NoError(t, err)
	assert.Equal(t, FailOnNonConvergence, p)

	p, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, WarnOnNonConvergence, p)

	_, err = ParsePolicy("sometimes")
	assert.Error(t, err)
}

// =============================================================================
// Composition
// =============================================================================

func TestRun_RecipeListRunsInOrder(t *testing.T) {
	t.Parallel()

	parent := DoNext(suffixOnce("a", "[a]"), suffixOnce("b", "[b]"))
	res, err := Run([]Recipe{parent}, docs("f.txt"), 3)
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.Equal(t, "body of f.txt[a][b]", res.Results[0].After.Print())
	assert.Equal(t, []string{"a", "b"}, res.Results[0].Recipes)
}

func TestFlatten_DepthFirst(t *testing.T) {
	t.Parallel()

	leaf := func(n string) Recipe { return New(Definition{Name: n}) }
	root := New(Definition{
		Name: "root",
		RecipeList: []Recipe{
			New(Definition{Name: "x", RecipeList: []Recipe{leaf("x1"), leaf("x2")}}),
			leaf("y"),
		},
	})
	var names []string
	for _, r := range Flatten([]Recipe{root, leaf("z")}) {
		names = append(names, r.Name())
	}
	assert.Equal(t, []string{"root", "x", "x1", "x2", "y", "z"}, names)
}

// =============================================================================
// Deletion and generation
// =============================================================================

func TestRun_DeletedFileIsNotRevisited(t *testing.T) {
	t.Parallel()

	var seen visits
	del := textRecipe("delete-b", func(d *text.Document) (tree.Tree, error) {
		seen.record(d.SourcePath())
		if d.SourcePath() == "b.txt" {
			return nil, nil
		}
		return d, nil
	})
	files := docs("a.txt", "b.txt")
	res, err := Run([]Recipe{del}, files, 5)
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.Equal(t, 2, res.CyclesUsed)
	assert.Equal(t, 1, seen.get("b.txt"))
	assert.Equal(t, 2, seen.get("a.txt"))

	b := res.Results[1]
	assert.True(t, b.Deleted())
	assert.True(t, b.Changed())
	assert.Equal(t, "delete-b", b.DeletedBy)
	assert.Equal(t, "b.txt", b.Path())
	assert.Len(t, res.Files(), 1)
}

func TestRun_GeneratorAddsFileOnce(t *testing.T) {
	t.Parallel()

	var calls int
	gen := New(Definition{
		Name: "gen",
		Generate: func(ec *ExecutionContext) ([]tree.SourceFile, error) {
			calls++
			return []tree.SourceFile{text.New("NEW.txt", "hello")}, nil
		},
	})
	res, err := Run([]Recipe{gen, suffixOnce("bang", "!")}, docs("a.txt"), 5)
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.Equal(t, 3, res.CyclesUsed)
	assert.Equal(t, 3, calls)

	require.Len(t, res.Results, 2)
	g := res.Results[1]
	assert.True(t, g.Generated())
	assert.Equal(t, "gen", g.GeneratedBy)
	assert.Equal(t, "NEW.txt", g.Path())
	assert.Equal(t, "hello!", g.After.Print(), "generated files are edited by later cycles")

	marker, ok := tree.FindFirst[tree.Generated](g.After.Markers())
	require.True(t, ok)
	assert.Equal(t, "gen", marker.Recipe)
}

func TestRun_GeneratorSkipsExistingPath(t *testing.T) {
	t.Parallel()

	gen := New(Definition{
		Name: "gen",
		Generate: func(*ExecutionContext) ([]tree.SourceFile, error) {
			return []tree.SourceFile{text.New("a.txt", "replacement")}, nil
		},
	})
	res, err := Run([]Recipe{gen}, docs("a.txt"), 3)
	require.NoError(t, err)
	assert.Equal(t, 1, res.CyclesUsed)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "body of a.txt", res.Results[0].After.Print())
}

// =============================================================================
// Errors
// =============================================================================

func TestRun_EditorErrorIsIsolated(t *testing.T) {
	t.Parallel()

	failing := textRecipe("picky", func(d *text.Document) (tree.Tree, error) {
		if d.SourcePath() == "bad.txt" {
			return nil, errors.New("cannot handle this file")
		}
		if strings.HasSuffix(d.Text(), "!") {
			return d, nil
		}
		return d.WithText(d.Text() + "!"), nil
	})
	files := docs("good.txt", "bad.txt")
	res, err := Run([]Recipe{failing}, files, 5)
	require.NoError(t, err)
	assert.True(t, res.Converged)

	good, bad := res.Results[0], res.Results[1]
	assert.NoError(t, good.Err)
	assert.Equal(t, "body of good.txt!", good.After.Print())

	require.Error(t, bad.Err)
	assert.Contains(t, bad.Err.Error(), "cannot handle this file")
	assert.Same(t, files[1], bad.After)
	assert.Len(t, res.Errors(), 1)
}

func TestRun_LaterCleanCycleClearsError(t *testing.T) {
	t.Parallel()

	flaky := New(Definition{
		Name: "flaky",
		Editor: func() TreeVisitor {
			return VisitorFunc(func(t tree.Tree, ec *ExecutionContext) (tree.Tree, error) {
				if ec.Cycle() == 1 && t.(tree.SourceFile).SourcePath() == "a.txt" {
					return nil, errors.New("not yet")
				}
				return t, nil
			})
		},
	})
	files := docs("a.txt", "b.txt")
	res, err := Run([]Recipe{flaky, suffixOnce("mark", "!")}, files, 5)
	require.NoError(t, err)
	assert.True(t, res.Converged)

	a := res.Results[0]
	assert.NoError(t, a.Err, "cycle 2 edited a.txt cleanly")
	assert.Equal(t, "body of a.txt!", a.After.Print())
	assert.Empty(t, res.Errors())
}

func TestRun_PanicBecomesFileError(t *testing.T) {
	t.Parallel()

	boom := textRecipe("boom", func(d *text.Document) (tree.Tree, error) {
		if d.SourcePath() == "b.txt" {
			panic("index out of range")
		}
		return d, nil
	})
	res, err := Run([]Recipe{boom}, docs("a.txt", "b.txt"), 3)
	require.NoError(t, err)
	require.Error(t, res.Results[1].Err)
	assert.Contains(t, res.Results[1].Err.Error(), "index out of range")
	assert.NoError(t, res.Results[0].Err)
}

func TestRun_AssertionFailureFailsRun(t *testing.T) {
	t.Parallel()

	broken := textRecipe("broken", func(d *text.Document) (tree.Tree, error) {
		panic(errors.AssertionFailedf("impossible kind %d", 99))
	})
	res, err := Run([]Recipe{broken}, docs("a.txt"), 3)
	require.Error(t, err)
	assert.True(t, errors.HasAssertionFailure(err))
	require.NotNil(t, res)
	assert.Equal(t, Failed, res.State)
}

func TestRun_WrappedAssertionErrorFailsRun(t *testing.T) {
	t.Parallel()

	broken := textRecipe("broken", func(d *text.Document) (tree.Tree, error) {
		return nil, errors.Wrap(errors.AssertionFailedf("impossible kind %d", 99), "while editing")
	})
	res, err := Run([]Recipe{broken}, docs("a.txt", "b.txt"), 3)
	require.Error(t, err)
	assert.True(t, errors.HasAssertionFailure(err))
	require.NotNil(t, res)
	assert.Equal(t, Failed, res.State)
	assert.False(t, res.Converged)
}

func TestRun_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := NewScheduler().Run(ctx, []Recipe{toggle()}, docs("a.txt"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, Failed, res.State)
}

func TestRun_InvalidRecipeRejected(t *testing.T) {
	t.Parallel()

	bad := New(Definition{
		Name:     "bad",
		Validate: func() error { return errors.New("from must not be empty") },
	})
	_, err := Run([]Recipe{bad}, docs("a.txt"), 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidOption))
}

// =============================================================================
// Parallelism and dialects
// =============================================================================

func TestRun_ManyFilesInParallel(t *testing.T) {
	t.Parallel()

	paths := make([]string, 64)
	for i := range paths {
		paths[i] = strings.Repeat("f", i+1) + ".txt"
	}
	s := NewScheduler(WithParallelism(8))
	res, err := s.Run(context.Background(), []Recipe{suffixOnce("bang", "!")}, docs(paths...))
	require.NoError(t, err)
	require.Len(t, res.Results, len(paths))
	for i, r := range res.Results {
		assert.Equal(t, paths[i], r.Path(), "results keep input order")
		assert.True(t, strings.HasSuffix(r.After.Print(), "!"))
	}
}

func TestRun_ParseErrorFlowsThrough(t *testing.T) {
	t.Parallel()

	p := parser.New()
	good, err := p.Parse(context.Background(), "A.java", []byte("class A { void m() { foo = 1; } }"))
	require.NoError(t, err)
	broken, err := p.Parse(context.Background(), "B.java", []byte("class B { void m( { }"))
	require.NoError(t, err)
	require.IsType(t, &tree.ParseError{}, broken)

	rename := New(Definition{
		Name: "rename",
		Editor: func() TreeVisitor {
			return &java.Visitor[*ExecutionContext]{
				VisitIdentifier: func(v *java.Visitor[*ExecutionContext], n *java.Identifier, c *tree.Cursor, ec *ExecutionContext) (java.J, error) {
					if n.Name == "foo" {
						return n.WithName("bar"), nil
					}
					return n, nil
				},
			}
		},
	})

	res, err := Run([]Recipe{rename}, []tree.SourceFile{good, broken}, 3)
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.Equal(t, "class A { void m() { bar = 1; } }", res.Results[0].After.Print())

	pe := res.Results[1]
	assert.False(t, pe.Changed())
	assert.NoError(t, pe.Err)
	assert.True(t, tree.Has[tree.ParseExceptionResult](pe.After.Markers()))
}

// =============================================================================
// Execution context
// =============================================================================

func TestExecutionContext_Messages(t *testing.T) {
	t.Parallel()

	ec := NewExecutionContext(context.Background(), nil)
	_, ok := ec.Message("count")
	assert.False(t, ok)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ec.ComputeMessage("count", func(old any) any {
				n, _ := old.(int)
				return n + 1
			})
		}()
	}
	wg.Wait()

	v, ok := ec.Message("count")
	require.True(t, ok)
	assert.Equal(t, 50, v)
}

func TestExecutionContext_CycleIsVisibleToEditors(t *testing.T) {
	t.Parallel()

	var cycles []int
	var mu sync.Mutex
	rec := New(Definition{
		Name: "cycles",
		Editor: func() TreeVisitor {
			return VisitorFunc(func(t tree.Tree, ec *ExecutionContext) (tree.Tree, error) {
				mu.Lock()
				cycles = append(cycles, ec.Cycle())
				mu.Unlock()
				return t, nil
			})
		},
	})
	_, err := Run([]Recipe{rec, toggle()}, docs("a.txt"), 3)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, cycles)
}
