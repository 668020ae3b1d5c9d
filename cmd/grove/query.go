package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jward/grove"
)

// stdout is where results are written.
var stdout io.Writer = os.Stdout

// --- Query Commands ---

var (
	flagPaths   bool
	flagNetwork bool
	flagGUID    string
)

var searchCmd = &cobra.Command{
	Use:   "search <phrase>",
	Short: "Search names and descriptions; print the pruned tree",
	Long:  "Matches the phrase case-insensitively against node names and descriptions and prints the tree pruned to the matching branches, with matching projects highlighted. An empty phrase matches every node.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

var expandCmd = &cobra.Command{
	Use:   "expand <token>",
	Short: "Print a node with one level of children",
	Args:  cobra.ExactArgs(1),
	RunE:  runExpand,
}

var similarCmd = &cobra.Command{
	Use:   "similar <origin-token> [guid...]",
	Short: "Print the tree pruned to a project and its similar groups",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSimilar,
}

var parentsCmd = &cobra.Command{
	Use:   "parents --guid <guid> <name>...",
	Short: "List the named nodes that directly contain the project with a guid",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runParents,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print dataset statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	searchCmd.Flags().BoolVar(&flagPaths, "paths", false, "print the matched paths instead of the pruned tree")
	similarCmd.Flags().BoolVar(&flagNetwork, "network", false, "print the similar groups as a flat list")
	parentsCmd.Flags().StringVar(&flagGUID, "guid", "", "guid of the child project")
}

func runSearch(cmd *cobra.Command, args []string) error {
	e, err := openEngine()
	if err != nil {
		return outputError("search", err)
	}
	q := e.Query()
	paths := q.Search(grove.ByText(args[0]))

	if flagPaths {
		total := len(paths)
		return outputResult(CLIResult{
			Command:    "search",
			Results:    toCLIPaths(paths),
			TotalCount: &total,
		})
	}
	return outputResult(CLIResult{
		Command: "search",
		Results: q.Prune(paths, nil),
	})
}

func runExpand(cmd *cobra.Command, args []string) error {
	token, err := parseIntArg(args[0], "token")
	if err != nil {
		return outputError("expand", err)
	}
	e, err := openEngine()
	if err != nil {
		return outputError("expand", err)
	}

	result := CLIResult{Command: "expand"}
	if node, ok := e.Query().Expand(token); ok {
		result.Results = node
	}
	return outputResult(result)
}

func runSimilar(cmd *cobra.Command, args []string) error {
	origin, err := parseIntArg(args[0], "origin token")
	if err != nil {
		return outputError("similar", err)
	}
	e, err := openEngine()
	if err != nil {
		return outputError("similar", err)
	}

	res := e.Query().SimilarGroups(grove.SimilarRequest{
		Origin:       origin,
		Similars:     args[1:],
		NetworkGraph: flagNetwork,
	})
	if flagNetwork {
		total := len(res.Groups)
		return outputResult(CLIResult{
			Command:    "similar",
			Results:    toCLINodes(res.Groups),
			TotalCount: &total,
		})
	}
	return outputResult(CLIResult{Command: "similar", Results: res.Tree})
}

func runParents(cmd *cobra.Command, args []string) error {
	if flagGUID == "" {
		return outputError("parents", fmt.Errorf("%w: --guid is required", grove.ErrMalformedInput))
	}
	e, err := openEngine()
	if err != nil {
		return outputError("parents", err)
	}

	parents := e.Query().Parents(args, flagGUID)
	total := len(parents)
	return outputResult(CLIResult{
		Command:    "parents",
		Results:    toCLINodes(parents),
		TotalCount: &total,
	})
}

func runStats(cmd *cobra.Command, args []string) error {
	e, err := openEngine()
	if err != nil {
		return outputError("stats", err)
	}
	return outputResult(CLIResult{Command: "stats", Results: e.Stats()})
}

// parseIntArg parses a non-negative integer argument.
func parseIntArg(value, name string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q: must be a non-negative integer", grove.ErrMalformedInput, name, value)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: invalid %s %q: must be non-negative", grove.ErrMalformedInput, name, value)
	}
	return n, nil
}

// outputResult writes a CLIResult in the selected format.
func outputResult(result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(stdout, result)
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope. In text mode it goes to stderr.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	result := CLIResult{
		Command: command,
		Error:   err.Error(),
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}
