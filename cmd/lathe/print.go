package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jward/lathe"
	"github.com/jward/lathe/java"
	"github.com/jward/lathe/text"
	"github.com/jward/lathe/tree"
)

var printCmd = &cobra.Command{
	Use:   "print FILE",
	Short: "Parse a file and print it back",
	Long: `Parses FILE and prints the tree. The output must match the file byte for
byte; a mismatch is reported as an error. Use it to check that a file
survives a round trip before running recipes on it.`,
	Args: cobra.ExactArgs(1),
	RunE: runPrint,
}

func init() {
	printCmd.Flags().StringSlice("text-ext", nil, "extensions parsed as plain text (default: .txt,.md,.properties)")
}

func runPrint(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return outputError(cmd, "print", nil, fmt.Errorf("resolving file path %q: %w", args[0], err))
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return outputError(cmd, "print", nil, err)
	}

	engine, err := lathe.New(cfg.engineOptions()...)
	if err != nil {
		return outputError(cmd, "print", nil, fmt.Errorf("creating engine: %w", err))
	}
	defer engine.Close()

	files, err := engine.ParseFiles(cmd.Context(), []string{path})
	if err != nil {
		return outputError(cmd, "print", nil, err)
	}
	if len(files) == 0 {
		return outputError(cmd, "print", nil, fmt.Errorf("unsupported file type: %s", args[0]))
	}

	sf := files[0]
	out := CLIPrint{Path: args[0], Source: sf.Print()}
	switch f := sf.(type) {
	case *java.CompilationUnit:
		out.Kind = "java"
	case *text.Document:
		out.Kind = "text"
	case *tree.ParseError:
		out.Kind = "parse-error"
		out.ParseError = f.Cause().Message
	}
	out.RoundTrip = out.Source == string(src)
	if !out.RoundTrip {
		return outputError(cmd, "print", out, fmt.Errorf("round trip mismatch: printed %s differs from the file", args[0]))
	}
	if out.Kind == "parse-error" {
		logger.Warnw("File did not parse; kept verbatim", "file", args[0], "error", out.ParseError)
	}
	return outputResult(cmd, CLIResult{Command: "print", Results: out})
}
