package grove

import (
	"github.com/jward/grove/internal/store"
)

// Expand finds the first node in pre-order whose token equals token and
// returns it with one level of children. Each child is stripped of its own
// children, so grandchildren are never returned. Returns false when no node
// has the token or the node has no children.
func (q *QueryBuilder) Expand(token int) (*Node, bool) {
	n := findByToken(q.root, token)
	if n == nil || !n.HasChildren() {
		return nil, false
	}
	out := n.WithoutChildren()
	out.Children = make([]*store.Node, len(n.Children))
	for i, c := range n.Children {
		out.Children[i] = c.WithoutChildren()
	}
	return out, true
}

// findByToken returns the first node in pre-order with the given token.
func findByToken(root *store.Node, token int) *store.Node {
	var found *store.Node
	root.Walk(func(n *store.Node, _ int) bool {
		if found != nil {
			return false
		}
		if n.Token == token {
			found = n
			return false
		}
		return true
	})
	return found
}

// Parents returns the nodes named in names that have a direct child with
// the given guid. Each name yields at most one parent, the first reached in
// pre-order. Returned nodes carry no children. The result is never nil.
func (q *QueryBuilder) Parents(names []string, guid string) []*Node {
	parents := []*Node{}
	if q.root == nil || guid == "" || len(names) == 0 {
		return parents
	}

	remaining := make(map[string]bool, len(names))
	for _, name := range names {
		remaining[name] = true
	}

	q.root.Walk(func(n *store.Node, _ int) bool {
		if len(remaining) == 0 {
			return false
		}
		if remaining[n.Name] && hasChildWithGUID(n, guid) {
			parents = append(parents, n.WithoutChildren())
			delete(remaining, n.Name)
		}
		return true
	})
	return parents
}

func hasChildWithGUID(n *store.Node, guid string) bool {
	for _, c := range n.Children {
		if string(c.GUID) == guid {
			return true
		}
	}
	return false
}

// Related returns the nodes whose guid is in guids, first occurrence per
// guid in pre-order. A matched node is terminal: nothing below it is
// searched, whatever its project flag. Returned nodes carry no children.
// The result is never nil.
func (q *QueryBuilder) Related(guids []string) []*Node {
	related := []*Node{}
	if q.root == nil || len(guids) == 0 {
		return related
	}

	wanted := make(map[string]bool, len(guids))
	for _, g := range guids {
		if g != "" {
			wanted[g] = true
		}
	}

	seen := make(map[string]bool, len(wanted))
	q.root.Walk(func(n *store.Node, _ int) bool {
		g := string(n.GUID)
		if g == "" || !wanted[g] {
			return true
		}
		if !seen[g] {
			seen[g] = true
			related = append(related, n.WithoutChildren())
		}
		return false
	})
	return related
}

// LeafFilter narrows Leaves.
type LeafFilter struct {
	// Exclude, when set, omits the project with this token.
	Exclude *int
	// HighlightedOnly keeps only projects flagged Highlight by Prune.
	HighlightedOnly bool
}

// Leaves collects the project nodes of tree in pre-order, typically a tree
// returned by Prune. With a zero filter every project is returned.
// SimilarGroups sets HighlightedOnly, so collapsed sibling projects that
// Prune kept for context are left out of network-graph results. Returned
// nodes carry no children. The result is never nil.
func Leaves(tree *Node, filter LeafFilter) []*Node {
	leaves := []*Node{}
	tree.Walk(func(n *store.Node, _ int) bool {
		if !n.Project {
			return true
		}
		if filter.Exclude != nil && n.Token == *filter.Exclude {
			return false
		}
		if filter.HighlightedOnly && !n.Highlight {
			return false
		}
		leaves = append(leaves, n.WithoutChildren())
		return false
	})
	return leaves
}
