package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jward/lathe"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent runs",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "number of runs to show (0 for all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return outputError(cmd, "history", nil, fmt.Errorf("getting cwd: %w", err))
	}
	dbPath := resolveDBPath(findRepoRoot(cwd))
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return outputError(cmd, "history", nil, fmt.Errorf("database not found: %s (run 'lathe run' first)", dbPath))
	}

	engine, err := lathe.New(lathe.WithLogger(logger), lathe.WithStore(dbPath))
	if err != nil {
		return outputError(cmd, "history", nil, fmt.Errorf("opening database: %w", err))
	}
	defer engine.Close()

	runs, err := engine.History(flagHistoryLimit)
	if err != nil {
		return outputError(cmd, "history", nil, err)
	}
	out := make([]CLIRun, len(runs))
	for i, r := range runs {
		out[i] = CLIRun{
			ID:         r.ID,
			StartedAt:  r.StartedAt,
			DurationMS: r.FinishedAt.Sub(r.StartedAt).Milliseconds(),
			Recipes:    r.Recipes,
			Cycles:     r.Cycles,
			Converged:  r.Converged,
			State:      r.State,
			Warning:    r.Warning,
		}
	}
	return outputResult(cmd, CLIResult{Command: "history", Results: out})
}
