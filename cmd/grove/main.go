package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jward/grove"
	"github.com/jward/grove/internal/config"
	"github.com/jward/grove/internal/logging"
	"github.com/jward/grove/internal/runtime"
	"github.com/jward/grove/scripts"
)

var (
	flagDataset  string
	flagConfig   string
	flagFormat   string
	flagLogLevel string
)

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

// cfg is the effective configuration, resolved before any command runs.
var cfg config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "grove",
	Short:         "Search and explore a categories, groups and projects tree",
	Long:          "Grove loads a hierarchical dataset of categories, groups and projects from JSON or SQLite and answers search, expand, similarity and parent queries over it, from the command line or over HTTP.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := validateFormat(flagFormat); err != nil {
			return err
		}
		c, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg = c
		logging.Init(cfg.Log.Format, logging.ParseLevel(cfg.Log.Level))
		return nil
	},
	// No Run: prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDataset, "dataset", "", "dataset path, .json or .db (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "json", "output format: json|text")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(expandCmd)
	rootCmd.AddCommand(similarCmd)
	rootCmd.AddCommand(parentsCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(statsCmd)
}

// loadConfig resolves the configuration: defaults, the --config file,
// GROVE_* variables, then any flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	c, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("dataset") {
		c.Dataset.Path = flagDataset
	}
	if flags.Changed("log-level") {
		c.Log.Level = flagLogLevel
	}
	if err := c.Validate(); err != nil {
		return config.Config{}, err
	}
	return c, nil
}

// engineOptions translates the dataset configuration into Engine options.
func engineOptions(dc config.DatasetConfig) []grove.Option {
	opts := []grove.Option{
		grove.WithAssignTokens(dc.AssignTokens),
		grove.WithLogger(slog.Default()),
	}
	if dc.PrepareScript != "" {
		opts = append(opts, grove.WithPrepareScript(runtime.PrepareScriptPath(dc.PrepareScript)))
		// Script source: scripts_dir overrides embedded FS.
		if dc.ScriptsDir != "" {
			opts = append(opts, grove.WithScriptsDir(dc.ScriptsDir))
		} else {
			opts = append(opts, grove.WithScriptsFS(scripts.FS))
		}
	}
	return opts
}

// openEngine loads the configured dataset.
func openEngine() (*grove.Engine, error) {
	e, err := grove.New(cfg.Dataset.Path, engineOptions(cfg.Dataset)...)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	return e, nil
}
