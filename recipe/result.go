package recipe

import (
	"fmt"

	"github.com/jward/lathe/tree"
)

// State is the outcome of a scheduling run.
type State int

const (
	Running State = iota
	Converged
	MaxCyclesExceeded
	Failed
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Converged:
		return "converged"
	case MaxCyclesExceeded:
		return "max-cycles-exceeded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ParseState is the inverse of State.String.
func ParseState(s string) (State, bool) {
	for st := Running; st <= Failed; st++ {
		if st.String() == s {
			return st, true
		}
	}
	return Running, false
}

// Result describes what happened to one source file.
type Result struct {
	// Before is the input file, nil for generated files.
	Before tree.SourceFile
	// After is the final file, nil for deleted files.
	After tree.SourceFile
	// Recipes lists, in first-change order, the recipes that changed the file.
	Recipes     []string
	DeletedBy   string
	GeneratedBy string
	// Err is the error of the last cycle that edited the file, nil when that
	// cycle succeeded. The file kept its previous content for a failed cycle.
	Err error
}

// Changed reports whether the final file differs from the input by reference.
func (r Result) Changed() bool { return r.Before != r.After }

func (r Result) Deleted() bool { return r.Before != nil && r.After == nil }

func (r Result) Generated() bool { return r.Before == nil && r.After != nil }

// Path returns the file's current path, or its original path if deleted.
func (r Result) Path() string {
	if r.After != nil {
		return r.After.SourcePath()
	}
	if r.Before != nil {
		return r.Before.SourcePath()
	}
	return ""
}

// RunResult is the outcome of Scheduler.Run.
type RunResult struct {
	// Results has one entry per input file, in input order, followed by
	// generated files in generation order.
	Results    []Result
	CyclesUsed int
	Converged  bool
	State      State
	// Warning is set when the run stopped without converging.
	Warning string
}

// Changes returns results whose file was changed, deleted or generated.
func (r *RunResult) Changes() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Changed() {
			out = append(out, res)
		}
	}
	return out
}

// Errors returns results that carry an error.
func (r *RunResult) Errors() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Files returns the surviving source files in result order.
func (r *RunResult) Files() []tree.SourceFile {
	out := make([]tree.SourceFile, 0, len(r.Results))
	for _, res := range r.Results {
		if res.After != nil {
			out = append(out, res.After)
		}
	}
	return out
}
