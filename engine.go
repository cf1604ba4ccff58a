package lathe

import (
	"bytes"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	latheruntime "github.com/jward/lathe/internal/runtime"
	"github.com/jward/lathe/internal/store"
	"github.com/jward/lathe/java/jtype"
	"github.com/jward/lathe/java/parser"
	"github.com/jward/lathe/java/recipes"
	"github.com/jward/lathe/recipe"
)

// Engine runs recipes over a source tree: it discovers and parses files,
// schedules recipes over them, writes the results back and records each run.
type Engine struct {
	store    *store.Store
	runtime  *latheruntime.Runtime
	parser   *parser.Parser
	interner *jtype.Interner
	logger   *zap.SugaredLogger

	dbPath     string
	scriptsDir string
	scriptsFS  fs.FS
	textExts   map[string]bool

	useParallel bool
	workers     int
	maxCycles   int
	policy      recipe.NonConvergencePolicy
}

// Option configures an Engine.
type Option func(*Engine)

// WithParallel controls parallel parsing. When true (default), files are
// parsed by a worker pool and collected in input order. Set to false for
// serial mode.
func WithParallel(parallel bool) Option {
	return func(e *Engine) {
		e.useParallel = parallel
	}
}

// WithWorkers bounds the parse pool and the number of files a scheduler
// cycle edits at once. Zero means runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithStore records run history and remote sessions in a SQLite database at
// dbPath. Without it nothing is persisted.
func WithStore(dbPath string) Option {
	return func(e *Engine) {
		e.dbPath = dbPath
	}
}

// WithInterner shares a type interner with other parsers and receivers.
func WithInterner(in *jtype.Interner) Option {
	return func(e *Engine) {
		e.interner = in
	}
}

// WithTextExtensions replaces the extensions parsed as plain text. Java
// files are always parsed as Java; other files are skipped.
func WithTextExtensions(exts ...string) Option {
	return func(e *Engine) {
		e.textExts = make(map[string]bool, len(exts))
		for _, ext := range exts {
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			e.textExts[strings.ToLower(ext)] = true
		}
	}
}

func WithMaxCycles(n int) Option {
	return func(e *Engine) {
		e.maxCycles = n
	}
}

// WithNonConvergence decides whether a run that exhausts its cycles is an
// error.
func WithNonConvergence(p recipe.NonConvergencePolicy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithScriptsDir resolves script recipes against dir on disk.
func WithScriptsDir(dir string) Option {
	return func(e *Engine) {
		e.scriptsDir = dir
	}
}

// WithScriptsFS loads script recipes from fsys instead of from disk. This
// enables embedding scripts via go:embed.
func WithScriptsFS(fsys fs.FS) Option {
	return func(e *Engine) {
		e.scriptsFS = fsys
	}
}

// DefaultTextExtensions are parsed as plain text unless WithTextExtensions
// says otherwise.
var DefaultTextExtensions = []string{".txt", ".md", ".properties"}

// New creates an Engine.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		logger:      zap.NewNop().Sugar(),
		useParallel: true,
		maxCycles:   recipe.DefaultMaxCycles,
		policy:      recipe.WarnOnNonConvergence,
	}
	WithTextExtensions(DefaultTextExtensions...)(e)
	for _, opt := range opts {
		opt(e)
	}
	if e.interner == nil {
		e.interner = jtype.NewInterner()
	}
	e.parser = parser.New(parser.WithInterner(e.interner), parser.WithLogger(e.logger))

	rtOpts := []latheruntime.RuntimeOption{latheruntime.WithLogger(e.logger)}
	if e.scriptsFS != nil {
		rtOpts = append(rtOpts, latheruntime.WithRuntimeFS(e.scriptsFS))
	}
	e.runtime = latheruntime.NewRuntime(e.scriptsDir, rtOpts...)

	if e.dbPath != "" {
		s, err := store.NewStore(e.dbPath)
		if err != nil {
			return nil, errors.Wrap(err, "lathe: create store")
		}
		if err := s.Migrate(); err != nil {
			s.Close()
			return nil, errors.Wrap(err, "lathe: migrate")
		}
		e.store = s
	}
	return e, nil
}

// Close releases the Engine's database resources.
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// Store returns the underlying Store, or nil without WithStore.
func (e *Engine) Store() *Store {
	return e.store
}

// Interner returns the interner every parsed type is canonicalised through.
func (e *Engine) Interner() *jtype.Interner {
	return e.interner
}

// Recipes returns a registry holding the built-in recipes and the script
// recipe bound to this Engine's scripts.
func (e *Engine) Recipes() (*recipe.Registry, error) {
	reg := recipes.NewRegistry()
	if err := latheruntime.Register(reg, e.runtime); err != nil {
		return nil, errors.Wrap(err, "lathe: register script recipe")
	}
	return reg, nil
}

// skipDirs are excluded from directory walks.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"target":       true,
	"build":        true,
}

// accepts reports whether path is parsed at all.
func (e *Engine) accepts(path string) bool {
	return parser.Accepts(path) || e.textExts[strings.ToLower(filepath.Ext(path))]
}

// ListDirectory returns the parseable files under root, relative to root in
// slash form. If root is inside a git repository, git ls-files is used so
// .gitignore is respected. Falls back to a filesystem walk (skipping hidden
// dirs and build output) if git is unavailable.
func (e *Engine) ListDirectory(root string) ([]string, error) {
	paths, err := e.gitListFiles(root)
	if err != nil {
		e.logger.Debugw("git ls-files unavailable, walking", "root", root, "error", err)
		return e.walkListFiles(root)
	}
	return paths, nil
}

// gitListFiles uses git ls-files to discover tracked and untracked (but not
// ignored) files under root.
func (e *Engine) gitListFiles(root string) ([]string, error) {
	// --cached: tracked files, --others: untracked files,
	// --exclude-standard: respect .gitignore, .git/info/exclude, global excludes.
	cmd := exec.Command("git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrapf(err, "git ls-files: %s", strings.TrimSpace(stderr.String()))
	}

	var paths []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !e.accepts(line) {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, line)); err != nil {
			// Deleted from the worktree but still in the index.
			continue
		}
		paths = append(paths, line)
	}
	return paths, nil
}

// walkListFiles discovers files by walking the filesystem.
func (e *Engine) walkListFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if !e.accepts(path) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "lathe: walk directory")
	}
	return paths, nil
}
