package grove

import (
	"github.com/jward/grove/internal/store"
)

// Annotations marks relatedness results on a pruned tree. Origin is the
// token (decimal string) of the node the similarity query started from;
// Similars holds the guids of its similar groups.
type Annotations struct {
	Origin   string
	Similars map[string]bool
}

// NewAnnotations builds Annotations for an origin token and a list of
// similar-group guids.
func NewAnnotations(origin string, similars ...string) *Annotations {
	a := &Annotations{Origin: origin, Similars: make(map[string]bool, len(similars))}
	for _, s := range similars {
		a.Similars[s] = true
	}
	return a
}

// OpenSet flattens the tokens of every path into one set: the nodes that
// must stay visible after pruning.
func OpenSet(paths []Path) map[int]bool {
	open := make(map[int]bool)
	for _, p := range paths {
		for _, tok := range p.Tokens {
			open[tok] = true
		}
	}
	return open
}

// Prune returns a new tree of the snapshot's shape that keeps only the
// branches leading to the given paths.
//
// A category whose direct children include an opened token keeps all of its
// children, each processed the same way; a category without one is emitted
// collapsed, with no children. Because a path lists every ancestor of its
// match, every category on the way down stays expanded and siblings along
// the chain appear collapsed. Project nodes are always emitted without
// children and carry Highlight when their token is open. With annotations,
// a highlighted node is additionally flagged Origin or Similar.
//
// The snapshot is not modified; nodes in the result are fresh copies.
func (q *QueryBuilder) Prune(paths []Path, ann *Annotations) *Node {
	if q.root == nil {
		return nil
	}
	return pruneNode(q.root, OpenSet(paths), ann)
}

func pruneNode(n *store.Node, open map[int]bool, ann *Annotations) *store.Node {
	out := n.WithoutChildren()
	out.Highlight, out.Origin, out.Similar = false, false, false

	if n.Project {
		out.Highlight = open[n.Token]
		if out.Highlight && ann != nil {
			if n.TokenString() == ann.Origin {
				out.Origin = true
			} else if n.GUID != "" && ann.Similars[string(n.GUID)] {
				out.Similar = true
			}
		}
		return out
	}

	if !hasOpenChild(n, open) {
		return out
	}
	out.Children = make([]*store.Node, len(n.Children))
	for i, c := range n.Children {
		out.Children[i] = pruneNode(c, open, ann)
	}
	return out
}

func hasOpenChild(n *store.Node, open map[int]bool) bool {
	for _, c := range n.Children {
		if open[c.Token] {
			return true
		}
	}
	return false
}
