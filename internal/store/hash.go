package store

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// ComputeTreeHash computes a deterministic hash over a tree's content.
// Covers every field of every node plus its depth and child order, so two
// trees hash equal only if they would serialize identically. Query
// annotations are not part of the hash.
func ComputeTreeHash(root *Node) string {
	h := sha256.New()
	root.Walk(func(n *Node, depth int) bool {
		fmt.Fprintf(h, "node:%d:%d\n", depth, n.Token)
		fmt.Fprintf(h, "guid:%s\n", n.GUID)
		fmt.Fprintf(h, "name:%s\n", n.Name)
		fmt.Fprintf(h, "description:%s\n", n.Description)
		fmt.Fprintf(h, "project:%v size:%d\n", n.Project, n.Size)
		fmt.Fprintf(h, "contributors:%s\n", strings.Join(n.Contributors, "\x1f"))
		fmt.Fprintf(h, "similar:%s\n", joinIDs(n.SimilarGroups))
		fmt.Fprintf(h, "parents:%s\n", joinIDs(n.ParentNodes))
		fmt.Fprintf(h, "children:%d\n", len(n.Children))
		return true
	})
	return fmt.Sprintf("%x", h.Sum(nil))
}

func joinIDs(ids []ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, "\x1f")
}
