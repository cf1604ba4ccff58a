// Package lathe rewrites source code with recipes: composable, validated
// transformations over lossless syntax trees that print back to the exact
// bytes they were parsed from.
//
// # Pipeline
//
// A run has three steps:
//
//  1. Parse: every accepted file under a root is parsed into a
//     tree.SourceFile. Java sources become *java.CompilationUnit with types
//     attributed through a shared jtype.Interner, a few text extensions
//     become *text.Document, and sources the Java parser rejects become
//     *tree.ParseError so they still round-trip.
//
//  2. Run: a recipe.Scheduler applies the recipes in cycles until a cycle
//     changes nothing or the cycle budget is spent. Each file's result
//     keeps its before and after tree and the recipes that touched it.
//
//  3. Apply: changed and generated files are written back and deleted
//     files removed.
//
// # Usage
//
//	e, err := lathe.New(lathe.WithStore("lathe.db"))
//	if err != nil { ... }
//	defer e.Close()
//
//	reg, err := e.Recipes()
//	r, err := reg.Instantiate("lathe.java.ChangeIdentifier",
//	    map[string]any{"from": "count", "to": "total"})
//
//	ctx := context.Background()
//	files, err := e.ParseDirectory(ctx, "path/to/project")
//	res, err := e.Run(ctx, []recipe.Recipe{r}, files)
//	_, err = e.Apply("path/to/project", res)
//
// # Remote runs
//
// RunRemote hands the same work to a lathe server over an rpc.Conn. Trees
// travel as deltas against the last snapshot both sides agree on, so a
// second run over mostly unchanged files sends only what moved.
//
// # History
//
// With WithStore every run is recorded in SQLite: the recipes, the cycle
// count, whether the run converged, and a content hash of each file before
// and after. History returns the recent runs.
package lathe
