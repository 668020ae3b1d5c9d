package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jward/grove"
	"github.com/jward/grove/internal/store"
)

var flagAssignTokens bool

var convertCmd = &cobra.Command{
	Use:   "convert <input> <output>",
	Short: "Convert a dataset between JSON and SQLite",
	Long:  "Loads the input dataset through the same pipeline the server uses (token assignment, prepare script, validation) and writes the result to output. Formats follow the file extensions: .db, .sqlite and .sqlite3 are SQLite, anything else is JSON.",
	Args:  cobra.ExactArgs(2),
	RunE:  runConvert,
}

func init() {
	convertCmd.Flags().BoolVar(&flagAssignTokens, "assign-tokens", false, "renumber tokens in pre-order (overrides config)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	in, out := args[0], args[1]
	if same, err := samePath(in, out); err != nil {
		return outputError("convert", err)
	} else if same {
		return outputError("convert", fmt.Errorf("%w: input and output are the same file", grove.ErrMalformedInput))
	}

	dc := cfg.Dataset
	if cmd.Flags().Changed("assign-tokens") {
		dc.AssignTokens = flagAssignTokens
	}
	e, err := grove.New(in, engineOptions(dc)...)
	if err != nil {
		return outputError("convert", fmt.Errorf("opening dataset: %w", err))
	}
	if err := store.SaveFile(out, e.Query().Tree()); err != nil {
		return outputError("convert", fmt.Errorf("writing %s: %w", out, err))
	}

	stats := e.Stats()
	return outputResult(CLIResult{
		Command: "convert",
		Results: CLIConvert{
			Input:       in,
			Output:      out,
			Format:      string(store.FormatForPath(out)),
			NodeCount:   stats.NodeCount,
			ContentHash: stats.ContentHash,
		},
	})
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, fmt.Errorf("resolving path %q: %w", a, err)
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, fmt.Errorf("resolving path %q: %w", b, err)
	}
	return absA == absB, nil
}
