package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jward/lathe"
)

var recipesCmd = &cobra.Command{
	Use:   "recipes",
	Short: "List available recipes",
	Long:  "Lists the built-in recipes, the script recipe, and any declarative recipes loaded with --recipes-file.",
	Args:  cobra.NoArgs,
	RunE:  runRecipes,
}

func init() {
	recipesCmd.Flags().StringArray("recipes-file", nil, "YAML file of declarative recipes (repeatable)")
	recipesCmd.Flags().String("scripts-dir", "", "load script recipes from disk instead of the bundled ones")
}

func runRecipes(cmd *cobra.Command, args []string) error {
	engine, err := lathe.New(cfg.engineOptions()...)
	if err != nil {
		return outputError(cmd, "recipes", nil, fmt.Errorf("creating engine: %w", err))
	}
	defer engine.Close()

	reg, err := engine.Recipes()
	if err != nil {
		return outputError(cmd, "recipes", nil, err)
	}
	if _, err := cfg.loadRecipeFiles(reg); err != nil {
		return outputError(cmd, "recipes", nil, err)
	}

	descs := reg.List()
	out := make([]CLIRecipe, 0, len(descs))
	for _, d := range descs {
		r := CLIRecipe{
			Name:        d.Name,
			DisplayName: d.DisplayName,
			Description: d.Description,
			Source:      d.Source,
		}
		for _, o := range d.Options {
			r.Options = append(r.Options, CLIOption{
				Name:        o.Name,
				Type:        o.Type.String(),
				Required:    o.Required,
				Default:     o.Default,
				Description: o.Description,
				Example:     o.Example,
			})
		}
		out = append(out, r)
	}
	return outputResult(cmd, CLIResult{Command: "recipes", Results: out})
}
