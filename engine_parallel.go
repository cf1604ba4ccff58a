package lathe

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/jward/lathe/java/parser"
	"github.com/jward/lathe/text"
	"github.com/jward/lathe/tree"
)

// workItem holds everything a parse worker needs.
type workItem struct {
	index int
	// path is the source path recorded on the tree; disk is where it is read.
	path string
	disk string
	src  []byte
}

// ParseFiles parses the given files. Source paths are the paths as given.
// Files that cannot be read are reported in the returned error and left out;
// files that do not parse come back as *tree.ParseError.
func (e *Engine) ParseFiles(ctx context.Context, paths []string) ([]tree.SourceFile, error) {
	items := make([]workItem, 0, len(paths))
	for _, p := range paths {
		if !e.accepts(p) {
			continue
		}
		items = append(items, workItem{path: filepath.ToSlash(p), disk: p})
	}
	return e.parseItems(ctx, items)
}

// ParseDirectory parses every accepted file under root. Source paths are
// relative to root, so the results can be written back with Apply(root, ...).
func (e *Engine) ParseDirectory(ctx context.Context, root string) ([]tree.SourceFile, error) {
	rels, err := e.ListDirectory(root)
	if err != nil {
		return nil, err
	}
	items := make([]workItem, len(rels))
	for i, rel := range rels {
		items[i] = workItem{path: rel, disk: filepath.Join(root, filepath.FromSlash(rel))}
	}
	return e.parseItems(ctx, items)
}

// parseItems parses files using a three-phase pipeline:
//
//	Phase A (serial):   read sources.
//	Phase B (parallel): parse via worker pool (serial without WithParallel).
//	Phase C (serial):   collect results in input order.
func (e *Engine) parseItems(ctx context.Context, items []workItem) ([]tree.SourceFile, error) {
	// ---- Phase A: Serial read ----
	var errs []error
	ready := make([]workItem, 0, len(items))
	for _, item := range items {
		src, err := os.ReadFile(item.disk)
		if err != nil {
			errs = append(errs, errors.Wrapf(err, "read %s", item.path))
			continue
		}
		item.index = len(ready)
		item.src = src
		ready = append(ready, item)
	}

	out := make([]tree.SourceFile, len(ready))
	if len(ready) > 0 {
		// ---- Phase B: Parse ----
		numWorkers := 1
		if e.useParallel {
			numWorkers = e.workers
			if numWorkers < 1 {
				numWorkers = runtime.NumCPU()
			}
			numWorkers = min(numWorkers, len(ready))
		}

		workCh := make(chan workItem, len(ready))
		for _, item := range ready {
			workCh <- item
		}
		close(workCh)

		type result struct {
			item workItem
			sf   tree.SourceFile
			err  error
		}
		resultCh := make(chan result, len(ready))

		var wg sync.WaitGroup
		for range numWorkers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for item := range workCh {
					sf, err := e.parseFile(ctx, item)
					resultCh <- result{item: item, sf: sf, err: err}
				}
			}()
		}

		go func() {
			wg.Wait()
			close(resultCh)
		}()

		// ---- Phase C: Serial collect ----
		for res := range resultCh {
			if res.err != nil {
				errs = append(errs, errors.Wrapf(res.err, "parse %s", res.item.path))
				continue
			}
			out[res.item.index] = res.sf
		}
	}

	files := make([]tree.SourceFile, 0, len(out))
	parseErrors := 0
	for _, sf := range out {
		if sf == nil {
			continue
		}
		if _, ok := sf.(*tree.ParseError); ok {
			parseErrors++
		}
		files = append(files, sf)
	}
	e.logger.Infow("Parsed files",
		"files", len(files),
		"parse_errors", parseErrors,
	)

	if err := ctx.Err(); err != nil {
		return files, errors.Wrap(err, "lathe: parse cancelled")
	}
	if len(errs) > 0 {
		return files, errors.Wrapf(errs[0], "lathe: parsing had %d error(s)", len(errs))
	}
	return files, nil
}

// parseFile parses one source with the parser its extension selects.
func (e *Engine) parseFile(ctx context.Context, item workItem) (tree.SourceFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if parser.Accepts(item.path) {
		return e.parser.Parse(ctx, item.path, item.src)
	}
	return text.New(item.path, string(item.src)), nil
}
