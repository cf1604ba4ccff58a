package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagConfig  string
	flagDB      string
	flagFormat  string
	flagVerbose bool
	flagLogJSON bool
)

// cfg and logger are set by the root command before any subcommand runs.
var (
	cfg    *settings
	logger = zap.NewNop().Sugar()
)

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "lathe",
	Short:         "Lossless, recipe-driven source rewriting",
	Long:          "Lathe parses a source tree into lossless syntax trees, runs rewrite recipes over them until they converge, and writes the results back byte for byte.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v, err := newViper(flagConfig)
		if err != nil {
			return err
		}
		bindFlags(v, cmd)
		s, err := loadSettings(v)
		if err != nil {
			return err
		}
		if err := validateFormat(s.Format); err != nil {
			return err
		}
		l, err := newLogger(flagVerbose, flagLogJSON)
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		cfg, logger = s, l
		if used := v.ConfigFileUsed(); used != "" {
			logger.Debugw("Loaded config", "file", used)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	// No Run — prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: lathe.yaml in . or $HOME/.lathe)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (default: .lathe/lathe.db relative to repo root)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", defaultFormat, "output format: json|text")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagLogJSON, "log-json", false, "write logs as JSON")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(recipesCmd)
	rootCmd.AddCommand(printCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
}

// resolveTargetDir returns the absolute path of the directory to rewrite.
func resolveTargetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}

// findRepoRoot walks up from startDir looking for a .git directory.
// Returns the directory containing .git, or startDir if not found.
func findRepoRoot(startDir string) string {
	dir := startDir
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return startDir
		}
		dir = parent
	}
}

// resolveDBPath returns the configured database path, relative paths taken
// from repoRoot, or the default below repoRoot.
func resolveDBPath(repoRoot string) string {
	if cfg != nil && cfg.DB != "" {
		if filepath.IsAbs(cfg.DB) {
			return cfg.DB
		}
		return filepath.Join(repoRoot, cfg.DB)
	}
	return filepath.Join(repoRoot, ".lathe", "lathe.db")
}

// ensureDBDir creates the directory holding dbPath.
func ensureDBDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return nil
}
