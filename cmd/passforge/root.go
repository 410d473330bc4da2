package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/forest6511/passforge/internal/config"
	pflog "github.com/forest6511/passforge/internal/log"
	"github.com/forest6511/passforge/pkg/generator"
	"github.com/forest6511/passforge/pkg/history"
	"github.com/forest6511/passforge/pkg/random"
)

// version is set at build time via ldflags.
var version = ""

// Global flags
var (
	configPath string
	verbose    bool
)

// Loaded by PersistentPreRunE for every subcommand.
var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "passforge",
	Short: "Generate passwords and score their strength",
	Long: `passforge generates passwords under a selectable policy and scores
their strength with an entropy estimate and weak-pattern deductions.

Modes:
  freeform   length and character classes from flags or config (default)
  segmented  xxxxxx-xxxxxx-xxxxxx, lowercase with one digit
  mixed      16 characters with at least one upper, lower and digit`,
	Version:       getVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
	// PersistentPreRunE loads the config file and sets up logging
	// before every subcommand.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/passforge/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging on stderr")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command) error {
	loaded, err := config.Load(effectiveConfigPath())
	if err != nil {
		return err
	}
	cfg = loaded

	opts := pflog.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}
	if verbose {
		opts.Level = "debug"
	}
	l, err := pflog.New(cmd.ErrOrStderr(), opts)
	if err != nil {
		return fmt.Errorf("invalid log config: %w", err)
	}
	logger = l

	logger.Debug("config loaded", "path", effectiveConfigPath(), "mode", cfg.Policy.Mode.String())
	return nil
}

// effectiveConfigPath returns --config or the XDG default.
func effectiveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultPath()
}

// newGenerator builds a generator from the loaded config.
func newGenerator(c *config.Config, l *slog.Logger) *generator.Generator {
	sampler := random.Default()
	if c.Generator.StrictUniform {
		sampler = random.DefaultUniform()
	}

	opts := []generator.Option{
		generator.WithSampler(sampler),
		generator.WithLogger(l),
	}
	if c.Generator.MaxAttempts > 0 {
		opts = append(opts, generator.WithMaxAttempts(c.Generator.MaxAttempts))
	}
	return generator.New(opts...)
}

// openHistory opens the history store, or returns nil when history is disabled.
func openHistory(c *config.Config) (*history.Store, error) {
	if !c.History.Enabled {
		return nil, nil
	}
	store, err := history.Open(c.HistoryDir())
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return store, nil
}

// getVersion returns the ldflags version, then the module version, then "(devel)".
func getVersion() string {
	if version != "" {
		return version
	}
	if buildInfo, ok := debug.ReadBuildInfo(); ok && buildInfo.Main.Version != "" {
		return buildInfo.Main.Version
	}
	return "(devel)"
}
