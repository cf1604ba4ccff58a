package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/lathe"
	"github.com/jward/lathe/recipe"
	"github.com/jward/lathe/rpc"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run recipes for remote clients",
	Long: `Serves recipe runs over websocket at ws://ADDR/rpc. Clients send their trees
as deltas, the server runs the named recipes and sends back what changed.
Named sessions keep their snapshots in the database between runs.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", defaultAddr, "listen address")
	serveCmd.Flags().StringArray("recipes-file", nil, "YAML file of declarative recipes to offer (repeatable)")
	serveCmd.Flags().Int("workers", 0, "files edited at once per run (default: number of CPUs)")
	serveCmd.Flags().String("scripts-dir", "", "load script recipes from disk instead of the bundled ones")
}

func runServe(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting cwd: %w", err)
	}
	dbPath := resolveDBPath(findRepoRoot(cwd))
	if err := ensureDBDir(dbPath); err != nil {
		return err
	}
	engine, err := lathe.New(append(cfg.engineOptions(), lathe.WithStore(dbPath))...)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	defer engine.Close()

	reg, err := engine.Recipes()
	if err != nil {
		return err
	}
	if _, err := cfg.loadRecipeFiles(reg); err != nil {
		return err
	}

	srv := rpc.NewServer(reg,
		rpc.WithServerStore(engine.Store()),
		rpc.WithServerInterner(engine.Interner()),
		rpc.WithServerLogger(logger),
		rpc.WithSchedulerOptions(recipe.WithParallelism(cfg.Workers)),
	)
	mux := http.NewServeMux()
	mux.Handle("/rpc", srv.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("Serving recipes", "addr", cfg.Addr, "recipes", len(reg.List()), "db", dbPath)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	logger.Infow("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
