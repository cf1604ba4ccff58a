package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/lathe"
	"github.com/jward/lathe/internal/store"
	"github.com/jward/lathe/recipe"
	"github.com/jward/lathe/rpc"
	"github.com/jward/lathe/tree"
)

// changeMarked is a change that only added or removed markers: nothing is
// written for it.
const changeMarked = "marked"

var (
	flagRecipes []string
	flagOptions []string
	flagDryRun  bool
	flagRemote  string
	flagSession string
)

var runCmd = &cobra.Command{
	Use:   "run [path]",
	Short: "Run recipes over a source tree",
	Long: `Parses every supported file under path (default: current directory), runs the
recipes until a cycle changes nothing, and writes the changed files back.

Recipes are named with --recipe. --option key=value configures a single
--recipe. Declarative recipes are loaded with --recipes-file. With --remote the
recipes run on a lathe server and only changed trees cross the wire.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringArrayVarP(&flagRecipes, "recipe", "r", nil, "recipe to run (repeatable)")
	runCmd.Flags().StringArrayVarP(&flagOptions, "option", "o", nil, "recipe option as key=value (repeatable)")
	runCmd.Flags().StringArray("recipes-file", nil, "YAML file of declarative recipes (repeatable)")
	runCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "report and diff changes without writing them")
	runCmd.Flags().Int("max-cycles", recipe.DefaultMaxCycles, "cycle budget before a run counts as not converged")
	runCmd.Flags().String("non-convergence", "warn", "what a run that does not converge is: warn|fail")
	runCmd.Flags().Bool("parallel", true, "parse and edit files in parallel")
	runCmd.Flags().Int("workers", 0, "worker count (default: number of CPUs)")
	runCmd.Flags().String("scripts-dir", "", "load script recipes from disk instead of the bundled ones")
	runCmd.Flags().StringSlice("text-ext", nil, "extensions parsed as plain text (default: .txt,.md,.properties)")
	runCmd.Flags().StringVar(&flagRemote, "remote", "", "websocket URL of a lathe server to run on")
	runCmd.Flags().StringVar(&flagSession, "session", "", "remote session name; keeps snapshots between runs")
}

func runRun(cmd *cobra.Command, args []string) error {
	start := time.Now()

	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return outputError(cmd, "run", nil, err)
	}
	if len(flagRecipes) == 0 {
		return outputError(cmd, "run", nil, fmt.Errorf("no recipe given: use --recipe NAME (see `lathe recipes`)"))
	}
	if len(flagOptions) > 0 && len(flagRecipes) > 1 {
		return outputError(cmd, "run", nil, fmt.Errorf("--option needs exactly one --recipe, got %d", len(flagRecipes)))
	}
	if flagRemote != "" && len(cfg.RecipesFiles) > 0 {
		return outputError(cmd, "run", nil, fmt.Errorf("--recipes-file cannot be used with --remote: declare the recipes on the server"))
	}
	raw, err := recipe.ParseAssignments(flagOptions)
	if err != nil {
		return outputError(cmd, "run", nil, err)
	}

	dbPath := resolveDBPath(findRepoRoot(targetDir))
	if err := ensureDBDir(dbPath); err != nil {
		return outputError(cmd, "run", nil, err)
	}
	engine, err := lathe.New(append(cfg.engineOptions(), lathe.WithStore(dbPath))...)
	if err != nil {
		return outputError(cmd, "run", nil, fmt.Errorf("creating engine: %w", err))
	}
	defer engine.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	files, err := engine.ParseDirectory(ctx, targetDir)
	if err != nil {
		return outputError(cmd, "run", nil, fmt.Errorf("parsing: %w", err))
	}

	var res *recipe.RunResult
	var runErr error
	if flagRemote != "" {
		res, runErr = runRemote(ctx, engine, raw, files)
	} else {
		res, runErr = runLocal(ctx, engine, raw, files)
	}
	if res == nil {
		return outputError(cmd, "run", nil, runErr)
	}

	summary := summarize(targetDir, res, files)
	summary.Remote = flagRemote
	summary.DryRun = flagDryRun
	if runErr != nil {
		if cfg.Format == "text" {
			formatRunText(cmd.OutOrStdout(), summary)
		}
		return outputError(cmd, "run", summary, runErr)
	}

	if !flagDryRun {
		if _, err := engine.Apply(targetDir, res); err != nil {
			return outputError(cmd, "run", summary, fmt.Errorf("writing results: %w", err))
		}
	}
	logger.Infow("Run finished",
		"root", targetDir,
		"cycles", res.CyclesUsed,
		"changes", len(summary.Changes),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return outputResult(cmd, CLIResult{Command: "run", Results: summary})
}

// runLocal instantiates the named recipes and runs them in process.
func runLocal(ctx context.Context, engine *lathe.Engine, raw map[string]any, files []tree.SourceFile) (*recipe.RunResult, error) {
	reg, err := engine.Recipes()
	if err != nil {
		return nil, err
	}
	if _, err := cfg.loadRecipeFiles(reg); err != nil {
		return nil, err
	}
	recipes := make([]recipe.Recipe, 0, len(flagRecipes))
	for _, name := range flagRecipes {
		r, err := reg.Instantiate(name, raw)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	return engine.Run(ctx, recipes, files)
}

// runRemote sends the files to the server at --remote and runs the named
// recipes there.
func runRemote(ctx context.Context, engine *lathe.Engine, raw map[string]any, files []tree.SourceFile) (*recipe.RunResult, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	conn, err := rpc.Dial(dialCtx, flagRemote)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	req := rpc.RunRequest{MaxCycles: cfg.MaxCycles, Session: flagSession}
	for _, name := range flagRecipes {
		req.Recipes = append(req.Recipes, rpc.RecipeSpec{Name: name, Options: raw})
	}
	return engine.RunRemote(ctx, conn, req, files)
}

// summarize builds the CLI view of a run.
func summarize(root string, res *recipe.RunResult, files []tree.SourceFile) CLIRunSummary {
	s := CLIRunSummary{
		Root:      root,
		Cycles:    res.CyclesUsed,
		Converged: res.Converged,
		State:     res.State.String(),
		Warning:   res.Warning,
		Files:     len(files),
		Changes:   []CLIChange{},
	}
	for _, f := range files {
		if _, ok := f.(*tree.ParseError); ok {
			s.ParseErrors = append(s.ParseErrors, f.SourcePath())
		}
	}
	s.Recipes = append(s.Recipes, flagRecipes...)
	for _, r := range res.Results {
		c := CLIChange{Path: r.Path(), Recipes: r.Recipes}
		switch {
		case r.Err != nil:
			c.Change = store.ChangeError
			c.Error = r.Err.Error()
		case r.Generated():
			c.Change = store.ChangeGenerated
			c.Recipes = []string{r.GeneratedBy}
		case r.Deleted():
			c.Change = store.ChangeDeleted
			c.Recipes = []string{r.DeletedBy}
		case r.Changed() && r.Before.SourcePath() == r.After.SourcePath() && r.Before.Print() == r.After.Print():
			c.Change = changeMarked
		case r.Changed():
			c.Change = store.ChangeModified
		default:
			continue
		}
		if flagDryRun {
			var before, after string
			if r.Before != nil {
				before = r.Before.Print()
			}
			if r.After != nil {
				after = r.After.Print()
			}
			c.Diff = lineDiff(before, after)
		}
		s.Changes = append(s.Changes, c)
	}
	return s
}
