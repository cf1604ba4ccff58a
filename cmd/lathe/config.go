package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jward/lathe"
	"github.com/jward/lathe/recipe"
	"github.com/jward/lathe/scripts"
)

const (
	defaultFormat = "text"
	defaultAddr   = "127.0.0.1:7420"
)

// settings is the merged configuration: defaults, then lathe.yaml, then
// LATHE_* environment variables, then flags.
type settings struct {
	DB             string   `mapstructure:"db"`
	Format         string   `mapstructure:"format"`
	MaxCycles      int      `mapstructure:"max_cycles"`
	Parallel       bool     `mapstructure:"parallel"`
	Workers        int      `mapstructure:"workers"`
	NonConvergence string   `mapstructure:"non_convergence"`
	ScriptsDir     string   `mapstructure:"scripts_dir"`
	TextExtensions []string `mapstructure:"text_extensions"`
	RecipesFiles   []string `mapstructure:"recipes_files"`
	Addr           string   `mapstructure:"addr"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db", "")
	v.SetDefault("format", defaultFormat)
	v.SetDefault("max_cycles", recipe.DefaultMaxCycles)
	v.SetDefault("parallel", true)
	v.SetDefault("workers", 0) // NumCPU
	v.SetDefault("non_convergence", recipe.WarnOnNonConvergence.String())
	v.SetDefault("scripts_dir", "")
	v.SetDefault("text_extensions", lathe.DefaultTextExtensions)
	v.SetDefault("recipes_files", []string{})
	v.SetDefault("addr", defaultAddr)
}

// newViper reads cfgFile, or lathe.yaml from the working directory and then
// $HOME/.lathe when cfgFile is empty. A missing default config is not an
// error.
func newViper(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("LATHE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", cfgFile, err)
		}
		return v, nil
	}

	v.SetConfigName("lathe")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".lathe"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return v, nil
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"db":              "db",
	"format":          "format",
	"max-cycles":      "max_cycles",
	"parallel":        "parallel",
	"workers":         "workers",
	"non-convergence": "non_convergence",
	"scripts-dir":     "scripts_dir",
	"text-ext":        "text_extensions",
	"recipes-file":    "recipes_files",
	"addr":            "addr",
}

// bindFlags binds every flag cmd knows, its own and inherited, to its key.
func bindFlags(v *viper.Viper, cmd *cobra.Command) {
	flags := cmd.Flags()
	for name, key := range flagKeys {
		if f := flags.Lookup(name); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
}

func loadSettings(v *viper.Viper) (*settings, error) {
	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if s.MaxCycles < 1 {
		return nil, fmt.Errorf("invalid max_cycles %d: must be at least 1", s.MaxCycles)
	}
	if _, err := recipe.ParsePolicy(s.NonConvergence); err != nil {
		return nil, err
	}
	return &s, nil
}

// engineOptions turns settings into Engine options.
func (s *settings) engineOptions() []lathe.Option {
	policy, _ := recipe.ParsePolicy(s.NonConvergence)
	opts := []lathe.Option{
		lathe.WithLogger(logger),
		lathe.WithParallel(s.Parallel),
		lathe.WithWorkers(s.Workers),
		lathe.WithMaxCycles(s.MaxCycles),
		lathe.WithNonConvergence(policy),
	}
	if len(s.TextExtensions) > 0 {
		opts = append(opts, lathe.WithTextExtensions(s.TextExtensions...))
	}
	if s.ScriptsDir != "" {
		opts = append(opts, lathe.WithScriptsDir(s.ScriptsDir))
	} else {
		opts = append(opts, lathe.WithScriptsFS(scripts.Recipes()))
	}
	return opts
}

// loadRecipeFiles adds the declarative recipes in the configured files to
// reg and returns their names.
func (s *settings) loadRecipeFiles(reg *recipe.Registry) ([]string, error) {
	var names []string
	for _, path := range s.RecipesFiles {
		declared, err := recipe.LoadDeclarativeFile(path, reg)
		if err != nil {
			return nil, err
		}
		logger.Debugw("Loaded recipes", "file", path, "recipes", declared)
		names = append(names, declared...)
	}
	return names, nil
}
