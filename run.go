package lathe

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/jward/lathe/internal/store"
	"github.com/jward/lathe/recipe"
	"github.com/jward/lathe/rpc"
	"github.com/jward/lathe/tree"
)

// Run runs recipes over files with the Engine's cycle budget, parallelism
// and non-convergence policy, and records the run when a store is open.
// The result is returned even when err is set, unless validation failed.
func (e *Engine) Run(ctx context.Context, recipes []recipe.Recipe, files []tree.SourceFile) (*recipe.RunResult, error) {
	started := time.Now()
	sched := recipe.NewScheduler(
		recipe.WithMaxCycles(e.maxCycles),
		recipe.WithParallelism(e.workers),
		recipe.WithNonConvergencePolicy(e.policy),
		recipe.WithLogger(e.logger),
	)
	res, err := sched.Run(ctx, recipes, files)
	if res == nil {
		return nil, err
	}
	names := make([]string, len(recipes))
	for i, r := range recipes {
		names[i] = r.Name()
	}
	e.record(started, names, res)
	return res, err
}

// RunRemote runs recipes on a lathe server over conn. A non-empty session
// keeps the client's side of the snapshot in the Engine's store, so the next
// run with the same session only sends what changed.
func (e *Engine) RunRemote(ctx context.Context, conn rpc.Conn, req rpc.RunRequest, files []tree.SourceFile) (*recipe.RunResult, error) {
	started := time.Now()
	var cache rpc.SnapshotCache = rpc.NewMemoryCache()
	if req.Session != "" && e.store != nil {
		cache = rpc.NewStoreCache(e.store, "client:"+req.Session)
	}
	if req.MaxCycles == 0 {
		req.MaxCycles = e.maxCycles
	}

	rr := rpc.NewRemoteRunner(conn, rpc.JavaCodecs(), cache, e.interner, rpc.WithRemoteLogger(e.logger))
	res, err := rr.Run(ctx, req, files)
	if res == nil {
		return nil, err
	}

	names := make([]string, len(req.Recipes))
	for i, spec := range req.Recipes {
		names[i] = spec.Name
	}
	e.record(started, names, res)

	if err == nil && !res.Converged && e.policy == recipe.FailOnNonConvergence {
		err = errors.Wrapf(recipe.ErrNotConverged, "after %d cycles", res.CyclesUsed)
	}
	return res, err
}

// record writes a run to the history tables. Failures are logged, never
// returned: history must not fail a run that already happened.
func (e *Engine) record(started time.Time, names []string, res *recipe.RunResult) {
	if e.store == nil {
		return
	}
	run := &store.Run{
		StartedAt:  started,
		FinishedAt: time.Now(),
		Recipes:    names,
		Cycles:     res.CyclesUsed,
		Converged:  res.Converged,
		State:      res.State.String(),
		Warning:    res.Warning,
	}
	var files []*store.RunFile
	for _, r := range res.Results {
		f := &store.RunFile{Path: r.Path(), Recipes: r.Recipes}
		if r.Before != nil {
			f.BeforeHash = store.ContentHash(r.Before.Print())
		}
		if r.After != nil {
			f.AfterHash = store.ContentHash(r.After.Print())
		}
		switch {
		case r.Err != nil:
			f.Change = store.ChangeError
			f.Error = r.Err.Error()
		case r.Generated():
			f.Change = store.ChangeGenerated
			f.Recipes = []string{r.GeneratedBy}
		case r.Deleted():
			f.Change = store.ChangeDeleted
			f.Recipes = []string{r.DeletedBy}
		case r.Changed():
			f.Change = store.ChangeModified
		default:
			continue
		}
		files = append(files, f)
	}
	id, err := e.store.InsertRun(run, files)
	if err != nil {
		e.logger.Warnw("Failed to record run", "error", err)
		return
	}
	e.logger.Debugw("Run recorded", "run", id, "files", len(files))
}

// History returns the most recent runs, newest first. A limit below 1
// returns all runs.
func (e *Engine) History(limit int) ([]*Run, error) {
	if e.store == nil {
		return nil, errors.New("lathe: no store configured")
	}
	return e.store.Runs(limit)
}

// ErrOutsideRoot marks a result path that would be written or removed
// outside the root given to Apply.
var ErrOutsideRoot = errors.New("path outside root")

// Apply writes a run's outcome below root: changed and generated files are
// written, deleted files are removed, and a file whose path changed is
// removed from its old location. It returns the paths it touched.
//
// Every path is checked before anything is written. An absolute path or
// one that climbs out of root fails the whole Apply with ErrOutsideRoot.
func (e *Engine) Apply(root string, res *recipe.RunResult) ([]string, error) {
	type op struct {
		rel, path string
		content   *string
	}
	var ops []op
	for _, r := range res.Results {
		if !r.Changed() {
			continue
		}
		if r.Before != nil && r.After != nil && r.Before.SourcePath() == r.After.SourcePath() &&
			r.Before.Print() == r.After.Print() {
			// Markers only.
			continue
		}
		if r.Before != nil && (r.After == nil || r.After.SourcePath() != r.Before.SourcePath()) {
			path, err := underRoot(root, r.Before.SourcePath())
			if err != nil {
				return nil, err
			}
			ops = append(ops, op{rel: r.Before.SourcePath(), path: path})
		}
		if r.After == nil {
			continue
		}
		path, err := underRoot(root, r.After.SourcePath())
		if err != nil {
			return nil, err
		}
		content := r.After.Print()
		ops = append(ops, op{rel: r.After.SourcePath(), path: path, content: &content})
	}

	var touched []string
	for _, o := range ops {
		if o.content == nil {
			if err := os.Remove(o.path); err != nil && !os.IsNotExist(err) {
				return touched, errors.Wrapf(err, "lathe: remove %s", o.rel)
			}
			touched = append(touched, o.rel)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(o.path), 0o755); err != nil {
			return touched, errors.Wrapf(err, "lathe: create directory for %s", o.rel)
		}
		if err := os.WriteFile(o.path, []byte(*o.content), 0o644); err != nil {
			return touched, errors.Wrapf(err, "lathe: write %s", o.rel)
		}
		touched = append(touched, o.rel)
	}
	e.logger.Infow("Applied results", "root", root, "files", len(touched))
	return touched, nil
}

// underRoot joins a slash-separated source path onto root, refusing paths
// that are absolute or resolve outside root.
func underRoot(root, rel string) (string, error) {
	p := filepath.FromSlash(rel)
	if rel == "" || filepath.IsAbs(p) || filepath.VolumeName(p) != "" || strings.HasPrefix(rel, "/") {
		return "", errors.Wrapf(ErrOutsideRoot, "lathe: %q", rel)
	}
	joined := filepath.Join(root, p)
	back, err := filepath.Rel(root, joined)
	if err != nil || back == "." || back == ".." || strings.HasPrefix(back, ".."+string(filepath.Separator)) {
		return "", errors.Wrapf(ErrOutsideRoot, "lathe: %q", rel)
	}
	return joined, nil
}
