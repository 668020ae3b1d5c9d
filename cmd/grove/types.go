package main

import "github.com/jward/grove"

// CLIResult is the top-level JSON envelope for all commands.
type CLIResult struct {
	Command    string `json:"command"`
	Results    any    `json:"results"`
	TotalCount *int   `json:"total_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CLINode is a flat, JSON-friendly node: the node's own fields plus the
// number of children it has in the answering tree.
type CLINode struct {
	Token         int      `json:"token"`
	GUID          string   `json:"guid,omitempty"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Project       bool     `json:"project"`
	Size          int      `json:"size,omitempty"`
	Contributors  []string `json:"contributors,omitempty"`
	SimilarGroups []string `json:"similar_groups,omitempty"`
	ChildCount    int      `json:"child_count"`
	Highlight     bool     `json:"highlight,omitempty"`
	Origin        bool     `json:"origin,omitempty"`
	Similar       bool     `json:"similar,omitempty"`
}

// CLIPath is a search result path in its wire form ("root/1/2") along with
// the token it ends at.
type CLIPath struct {
	Path   string `json:"path"`
	Target *int   `json:"target,omitempty"`
}

// CLIConvert summarizes a convert run.
type CLIConvert struct {
	Input       string `json:"input"`
	Output      string `json:"output"`
	Format      string `json:"format"`
	NodeCount   int    `json:"node_count"`
	ContentHash string `json:"content_hash"`
}

// toCLINode flattens n.
func toCLINode(n *grove.Node) CLINode {
	out := CLINode{
		Token:        n.Token,
		GUID:         n.GUID.String(),
		Name:         n.Name,
		Description:  n.Description,
		Project:      n.Project,
		Size:         n.Size,
		Contributors: n.Contributors,
		ChildCount:   len(n.Children),
		Highlight:    n.Highlight,
		Origin:       n.Origin,
		Similar:      n.Similar,
	}
	for _, id := range n.SimilarGroups {
		out.SimilarGroups = append(out.SimilarGroups, id.String())
	}
	return out
}

func toCLINodes(nodes []*grove.Node) []CLINode {
	out := make([]CLINode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, toCLINode(n))
	}
	return out
}

func toCLIPaths(paths []grove.Path) []CLIPath {
	out := make([]CLIPath, 0, len(paths))
	for _, p := range paths {
		cp := CLIPath{Path: p.String()}
		if tok, ok := p.Target(); ok {
			cp.Target = &tok
		}
		out = append(out, cp)
	}
	return out
}
