package main

import "time"

// CLIResult is the top-level JSON envelope for every command.
type CLIResult struct {
	Command string `json:"command"`
	Results any    `json:"results"`
	Error   string `json:"error,omitempty"`
}

// CLIRunSummary is the outcome of `lathe run`.
type CLIRunSummary struct {
	Root        string      `json:"root"`
	Recipes     []string    `json:"recipes"`
	Remote      string      `json:"remote,omitempty"`
	Cycles      int         `json:"cycles"`
	Converged   bool        `json:"converged"`
	State       string      `json:"state"`
	Warning     string      `json:"warning,omitempty"`
	DryRun      bool        `json:"dry_run"`
	Files       int         `json:"files"`
	ParseErrors []string    `json:"parse_errors,omitempty"`
	Changes     []CLIChange `json:"changes"`
}

// CLIChange is one file a run changed, deleted, generated or failed on.
type CLIChange struct {
	Path    string   `json:"path"`
	Change  string   `json:"change"`
	Recipes []string `json:"recipes,omitempty"`
	Error   string   `json:"error,omitempty"`
	// Diff is set on dry runs.
	Diff string `json:"diff,omitempty"`
}

// CLIRecipe is a registered recipe.
type CLIRecipe struct {
	Name        string      `json:"name"`
	DisplayName string      `json:"display_name"`
	Description string      `json:"description,omitempty"`
	Source      string      `json:"source,omitempty"`
	Options     []CLIOption `json:"options,omitempty"`
}

// CLIOption is one declared recipe option.
type CLIOption struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Default     any    `json:"default,omitempty"`
	Description string `json:"description,omitempty"`
	Example     string `json:"example,omitempty"`
}

// CLIPrint is the outcome of `lathe print`.
type CLIPrint struct {
	Path       string `json:"path"`
	Kind       string `json:"kind"`
	RoundTrip  bool   `json:"round_trip"`
	ParseError string `json:"parse_error,omitempty"`
	Source     string `json:"source"`
}

// CLIRun is one recorded run.
type CLIRun struct {
	ID         int64     `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Recipes    []string  `json:"recipes"`
	Cycles     int       `json:"cycles"`
	Converged  bool      `json:"converged"`
	State      string    `json:"state"`
	Warning    string    `json:"warning,omitempty"`
}
