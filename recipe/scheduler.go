package recipe

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jward/lathe/tree"
)

// DefaultMaxCycles is the cycle budget when none is configured.
const DefaultMaxCycles = 3

// ErrNotConverged is returned by Run under FailOnNonConvergence when the
// cycle budget runs out while files are still changing.
var ErrNotConverged = errors.New("recipes did not converge")

// NonConvergencePolicy decides what a run that exhausts its cycle budget
// reports.
type NonConvergencePolicy int

const (
	// WarnOnNonConvergence returns the last cycle's results with a warning.
	WarnOnNonConvergence NonConvergencePolicy = iota
	// FailOnNonConvergence returns the results together with ErrNotConverged.
	FailOnNonConvergence
)

func (p NonConvergencePolicy) String() string {
	if p == FailOnNonConvergence {
		return "fail"
	}
	return "warn"
}

// ParsePolicy parses "warn" or "fail".
func ParsePolicy(s string) (NonConvergencePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "warn":
		return WarnOnNonConvergence, nil
	case "fail":
		return FailOnNonConvergence, nil
	}
	return 0, errors.Newf("recipe: unknown non-convergence policy %q (want warn or fail)", s)
}

// Scheduler runs recipes over a batch of files until a fixed point.
type Scheduler struct {
	maxCycles   int
	parallelism int
	policy      NonConvergencePolicy
	logger      *zap.SugaredLogger
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithMaxCycles sets the cycle budget. Values below 1 select the default.
func WithMaxCycles(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n > 0 {
			s.maxCycles = n
		}
	}
}

// WithParallelism bounds the number of files edited at once. Values below 1
// select runtime.NumCPU().
func WithParallelism(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

func WithNonConvergencePolicy(p NonConvergencePolicy) SchedulerOption {
	return func(s *Scheduler) { s.policy = p }
}

func WithLogger(l *zap.SugaredLogger) SchedulerOption {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewScheduler(opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		maxCycles:   DefaultMaxCycles,
		parallelism: runtime.NumCPU(),
		policy:      WarnOnNonConvergence,
		logger:      zap.NewNop().Sugar(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run runs recipes over files with a default scheduler and the given budget.
func Run(recipes []Recipe, files []tree.SourceFile, maxCycles int) (*RunResult, error) {
	return NewScheduler(WithMaxCycles(maxCycles)).Run(context.Background(), recipes, files)
}

// entry tracks one file across cycles.
type entry struct {
	before      tree.SourceFile
	current     tree.SourceFile
	recipes     []string
	deletedBy   string
	generatedBy string
	err         error
}

// outcome is what one cycle did to one file.
type outcome struct {
	after     tree.SourceFile
	recipes   []string
	deletedBy string
	err       error
	// fatal aborts the run.
	fatal error
}

// Run applies recipes to files cycle by cycle. Within a cycle every file is
// edited independently by every recipe in order; the cycle ends once all
// files are done. The run converges at the first cycle that changes, deletes
// and generates nothing. Per-file errors are recorded on the file's result
// and do not stop the run.
func (s *Scheduler) Run(ctx context.Context, recipes []Recipe, files []tree.SourceFile) (*RunResult, error) {
	flat := Flatten(recipes)
	if err := Validate(recipes); err != nil {
		return nil, err
	}

	entries := make([]*entry, len(files))
	for i, f := range files {
		entries[i] = &entry{before: f, current: f}
	}

	ec := NewExecutionContext(ctx, s.logger)
	res := &RunResult{State: Running}

	for cycle := 1; cycle <= s.maxCycles; cycle++ {
		if err := ctx.Err(); err != nil {
			res.State = Failed
			res.Results = collect(entries)
			return res, errors.Wrap(err, "recipe: run cancelled")
		}
		ec.setCycle(cycle)
		res.CyclesUsed = cycle

		outs := make([]outcome, len(entries))
		g := new(errgroup.Group)
		g.SetLimit(s.parallelism)
		for i, e := range entries {
			if e.current == nil {
				continue
			}
			in := e.current
			g.Go(func() error {
				outs[i] = s.editFile(ec, flat, in)
				return outs[i].fatal
			})
		}
		if err := g.Wait(); err != nil {
			res.State = Failed
			res.Results = collect(entries)
			return res, err
		}

		changed := 0
		for i, e := range entries {
			if e.current == nil {
				continue
			}
			out := outs[i]
			// A clean cycle clears an error from an earlier one.
			e.err = out.err
			switch {
			case out.err != nil:
				s.logger.Warnw("recipe error", "path", e.current.SourcePath(), "cycle", cycle, "error", out.err)
			case out.deletedBy != "":
				e.current = nil
				e.deletedBy = out.deletedBy
				changed++
			case out.after != e.current:
				e.current = out.after
				for _, name := range out.recipes {
					if !slices.Contains(e.recipes, name) {
						e.recipes = append(e.recipes, name)
					}
				}
				changed++
			}
		}

		generated, err := s.generate(ec, flat, &entries)
		if err != nil {
			res.State = Failed
			res.Results = collect(entries)
			return res, err
		}

		s.logger.Debugw("cycle finished", "cycle", cycle, "files", len(entries), "changed", changed, "generated", generated)
		if changed == 0 && generated == 0 {
			res.Converged = true
			res.State = Converged
			break
		}
	}

	res.Results = collect(entries)
	if res.Converged {
		return res, nil
	}

	res.State = MaxCyclesExceeded
	res.Warning = fmt.Sprintf("recipes did not converge after %d cycles", res.CyclesUsed)
	s.logger.Warnw("recipes did not converge", "cycles", res.CyclesUsed, "policy", s.policy.String())
	if s.policy == FailOnNonConvergence {
		return res, errors.Wrapf(ErrNotConverged, "after %d cycles", res.CyclesUsed)
	}
	return res, nil
}

// editFile runs every editor over one file. A panic that is an assertion
// failure aborts the run; any other panic or error leaves the file as it was
// at the start of the cycle.
func (s *Scheduler) editFile(ec *ExecutionContext, recipes []Recipe, in tree.SourceFile) (out outcome) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		err, ok := r.(error)
		if !ok {
			err = errors.Newf("%v", r)
		}
		if errors.HasAssertionFailure(err) {
			out = outcome{fatal: errors.Wrapf(err, "recipe: %s", in.SourcePath())}
			return
		}
		out = outcome{err: errors.Wrapf(err, "recipe: panic editing %s", in.SourcePath())}
	}()

	cur := in
	for _, r := range recipes {
		v := r.Editor()
		if v == nil {
			continue
		}
		next, err := v.VisitTree(cur, ec)
		if err != nil {
			if errors.HasAssertionFailure(err) {
				return outcome{fatal: errors.Wrapf(err, "recipe %s: %s", r.Name(), in.SourcePath())}
			}
			return outcome{err: errors.Wrapf(err, "recipe %s: %s", r.Name(), in.SourcePath())}
		}
		if next == nil {
			return outcome{deletedBy: r.Name()}
		}
		sf, ok := next.(tree.SourceFile)
		if !ok {
			return outcome{err: errors.Newf("recipe %s: %s: editor returned %T, not a source file", r.Name(), in.SourcePath(), next)}
		}
		if sf != cur {
			out.recipes = append(out.recipes, r.Name())
		}
		cur = sf
	}
	out.after = cur
	return out
}

// generate asks every generator for files and appends those whose path is
// new to the batch.
func (s *Scheduler) generate(ec *ExecutionContext, recipes []Recipe, entries *[]*entry) (int, error) {
	var taken map[string]bool
	n := 0
	for _, r := range recipes {
		g, ok := r.(Generator)
		if !ok {
			continue
		}
		files, err := g.Generate(ec)
		if err != nil {
			if errors.HasAssertionFailure(err) {
				return n, errors.Wrapf(err, "recipe %s", r.Name())
			}
			s.logger.Warnw("generator error", "recipe", r.Name(), "error", err)
			continue
		}
		if len(files) == 0 {
			continue
		}
		if taken == nil {
			taken = make(map[string]bool, len(*entries))
			for _, e := range *entries {
				if e.current != nil {
					taken[e.current.SourcePath()] = true
				} else if e.before != nil {
					taken[e.before.SourcePath()] = true
				}
			}
		}
		for _, f := range files {
			if f == nil || taken[f.SourcePath()] {
				continue
			}
			taken[f.SourcePath()] = true
			f = f.WithSourceMarkers(f.Markers().Add(tree.Generated{ID: tree.NewID(), Recipe: r.Name()}))
			*entries = append(*entries, &entry{current: f, generatedBy: r.Name()})
			n++
		}
	}
	return n, nil
}

func collect(entries []*entry) []Result {
	out := make([]Result, 0, len(entries))
	for _, e := range entries {
		if e.before == nil && e.current == nil {
			continue
		}
		out = append(out, Result{
			Before:      e.before,
			After:       e.current,
			Recipes:     e.recipes,
			DeletedBy:   e.deletedBy,
			GeneratedBy: e.generatedBy,
			Err:         e.err,
		})
	}
	return out
}
