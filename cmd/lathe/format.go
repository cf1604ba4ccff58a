package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
)

// formatRunText formats a run summary, one line per changed file.
func formatRunText(w io.Writer, s CLIRunSummary) {
	where := "locally"
	if s.Remote != "" {
		where = "on " + s.Remote
	}
	if s.Converged {
		fmt.Fprintf(w, "Converged after %d cycle(s) %s\n", s.Cycles, where)
	} else {
		fmt.Fprintf(w, "Stopped after %d cycle(s) %s: %s\n", s.Cycles, where, s.Warning)
	}
	fmt.Fprintf(w, "Recipes: %s\n", strings.Join(s.Recipes, ", "))
	fmt.Fprintf(w, "Files: %d parsed, %d changed", s.Files, len(s.Changes))
	if len(s.ParseErrors) > 0 {
		fmt.Fprintf(w, ", %d unparseable", len(s.ParseErrors))
	}
	fmt.Fprintln(w)

	if len(s.Changes) > 0 {
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, c := range s.Changes {
			detail := strings.Join(c.Recipes, ", ")
			if c.Error != "" {
				detail = c.Error
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", c.Change, c.Path, detail)
		}
		tw.Flush()
	}

	if s.DryRun {
		for _, c := range s.Changes {
			if c.Diff == "" {
				continue
			}
			fmt.Fprintf(w, "\n--- %s\n+++ %s\n%s", c.Path, c.Path, c.Diff)
		}
		fmt.Fprintln(w, "\nDry run: nothing written.")
	}
}

// formatRecipesText formats registered recipes as aligned columns.
func formatRecipesText(w io.Writer, recipes []CLIRecipe) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSOURCE\tOPTIONS\tDESCRIPTION")
	for _, r := range recipes {
		opts := make([]string, len(r.Options))
		for i, o := range r.Options {
			opts[i] = o.Name
			if o.Required {
				opts[i] += "*"
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Name, r.Source, strings.Join(opts, ","), firstLine(r.Description))
	}
	tw.Flush()
}

// formatHistoryText formats recorded runs as aligned columns.
func formatHistoryText(w io.Writer, runs []CLIRun) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tDURATION\tCYCLES\tSTATE\tRECIPES")
	for _, r := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n",
			r.ID,
			r.StartedAt.Local().Format(time.DateTime),
			(time.Duration(r.DurationMS) * time.Millisecond).String(),
			r.Cycles,
			r.State,
			strings.Join(r.Recipes, ", "),
		)
	}
	tw.Flush()
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// lineDiff renders the changed lines between before and after, prefixed
// with - and +. Runs of unchanged lines collapse to "...".
func lineDiff(before, after string) string {
	var lines []string
	index := map[string]rune{}
	a, b := lineRunes(before, index, &lines), lineRunes(after, index, &lines)
	diffs := diffmatchpatch.New().DiffMainRunes(a, b, false)

	var sb strings.Builder
	for i, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		default:
			if i > 0 && i < len(diffs)-1 {
				sb.WriteString("...\n")
			}
			continue
		}
		for _, r := range d.Text {
			line := lines[r-lineRuneBase]
			sb.WriteString(prefix)
			sb.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				sb.WriteString("\n\\ No newline at end of file\n")
			}
		}
	}
	return sb.String()
}

// lineRuneBase starts line runes above the surrogate range so every line
// index maps to a valid rune.
const lineRuneBase = 0x10000

// lineRunes encodes s as one rune per line, numbering unseen lines in
// order. The diff then runs over whole lines.
func lineRunes(s string, index map[string]rune, lines *[]string) []rune {
	var out []rune
	for _, line := range strings.SplitAfter(s, "\n") {
		if line == "" {
			continue
		}
		r, ok := index[line]
		if !ok {
			r = lineRuneBase + rune(len(*lines))
			index[line] = r
			*lines = append(*lines, line)
		}
		out = append(out, r)
	}
	return out
}

// outputResult writes result to cmd's output in the selected format.
func outputResult(cmd *cobra.Command, result CLIResult) error {
	w := cmd.OutOrStdout()
	if cfg.Format == "text" {
		return outputResultText(w, result)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputResultText dispatches to the text formatter for the result type.
func outputResultText(w io.Writer, result CLIResult) error {
	switch v := result.Results.(type) {
	case CLIRunSummary:
		formatRunText(w, v)
	case []CLIRecipe:
		formatRecipesText(w, v)
	case []CLIRun:
		formatHistoryText(w, v)
	case CLIPrint:
		fmt.Fprint(w, v.Source)
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	return nil
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope, alongside any partial results. In text mode it goes to
// stderr.
func outputError(cmd *cobra.Command, command string, results any, err error) error {
	errorHandled = true
	if cfg == nil || cfg.Format == "text" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err)
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	_ = enc.Encode(CLIResult{Command: command, Results: results, Error: err.Error()})
	return err
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
