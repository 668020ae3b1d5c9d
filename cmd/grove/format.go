package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/jward/grove"
)

// formatTreeText prints the tree one node per line, indented by depth.
// Projects end in their guid; query annotations follow in brackets.
func formatTreeText(w io.Writer, root *grove.Node) {
	root.Walk(func(n *grove.Node, depth int) bool {
		fmt.Fprintf(w, "%s%d %s", strings.Repeat("  ", depth), n.Token, n.Name)
		if n.Project && n.GUID != "" {
			fmt.Fprintf(w, " (%s)", n.GUID)
		}
		if marks := annotations(n); marks != "" {
			fmt.Fprintf(w, " [%s]", marks)
		}
		fmt.Fprintln(w)
		return true
	})
}

func annotations(n *grove.Node) string {
	var marks []string
	if n.Origin {
		marks = append(marks, "origin")
	}
	if n.Similar {
		marks = append(marks, "similar")
	}
	if n.Highlight && !n.Origin && !n.Similar {
		marks = append(marks, "match")
	}
	return strings.Join(marks, ",")
}

// formatNodesText formats CLINode results as aligned columns.
func formatNodesText(w io.Writer, nodes []CLINode) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TOKEN\tGUID\tNAME\tPROJECT\tCHILDREN")
	for _, n := range nodes {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%d\n",
			n.Token, n.GUID, n.Name, n.Project, n.ChildCount)
	}
	tw.Flush()
}

// formatPathsText prints one "root/1/2" path per line.
func formatPathsText(w io.Writer, paths []CLIPath) {
	for _, p := range paths {
		fmt.Fprintln(w, p.Path)
	}
}

// formatStatsText formats dataset statistics as key/value pairs.
func formatStatsText(w io.Writer, s grove.Stats) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Source:\t%s\n", s.Source)
	fmt.Fprintf(tw, "Nodes:\t%d\n", s.NodeCount)
	fmt.Fprintf(tw, "Projects:\t%d\n", s.ProjectCount)
	fmt.Fprintf(tw, "Max depth:\t%d\n", s.MaxDepth)
	fmt.Fprintf(tw, "Content hash:\t%s\n", s.ContentHash)
	fmt.Fprintf(tw, "Loaded at:\t%s\n", s.LoadedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(tw, "Reloads:\t%d\n", s.Reloads)
	tw.Flush()
}

// formatConvertText formats a convert summary.
func formatConvertText(w io.Writer, c CLIConvert) {
	fmt.Fprintf(w, "Wrote %d nodes from %s to %s (%s)\n", c.NodeCount, c.Input, c.Output, c.Format)
	fmt.Fprintf(w, "Content hash: %s\n", c.ContentHash)
}

// outputResultText writes a CLIResult as human-readable text to w.
func outputResultText(w io.Writer, result CLIResult) error {
	switch v := result.Results.(type) {
	case *grove.Node:
		if v == nil {
			fmt.Fprintln(w, "(no results)")
			break
		}
		formatTreeText(w, v)
	case []CLINode:
		formatNodesText(w, v)
	case []CLIPath:
		formatPathsText(w, v)
	case grove.Stats:
		formatStatsText(w, v)
	case CLIConvert:
		formatConvertText(w, v)
	case nil:
		fmt.Fprintln(w, "(no results)")
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}

	// Result count footer.
	if result.TotalCount != nil {
		fmt.Fprintf(w, "\n%d result(s)\n", *result.TotalCount)
	}

	return nil
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be one of: %s", format, strings.Join(validFormats, ", "))
}
