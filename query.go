package grove

import (
	"strconv"

	"github.com/jward/grove/internal/store"
)

// QueryBuilder runs read-only queries against one dataset snapshot. It is
// obtained from Engine.Query and keeps answering from the same snapshot even
// if the Engine reloads in the meantime. Safe for concurrent use.
type QueryBuilder struct {
	root *store.Node
}

// NewQueryBuilder wraps an already loaded tree. The tree must not be
// modified while the QueryBuilder is in use.
func NewQueryBuilder(root *Node) *QueryBuilder {
	return &QueryBuilder{root: root}
}

// Tree returns a deep copy of the whole snapshot.
func (q *QueryBuilder) Tree() *Node {
	return q.root.Clone()
}

// SearchTree runs a text search and prunes the snapshot down to the
// branches holding its results. Matching projects are flagged Highlight.
func (q *QueryBuilder) SearchTree(phrase string) *Node {
	return q.Prune(q.Search(ByText(phrase)), nil)
}

// SimilarRequest asks for the groups similar to a project.
type SimilarRequest struct {
	// Origin is the token of the project the query starts from.
	Origin int
	// Similars are the guids of its similar groups.
	Similars []string
	// NetworkGraph requests a flat list of groups instead of a tree.
	NetworkGraph bool
}

// SimilarResult holds either a pruned tree or, for network-graph requests,
// the flat list of similar groups.
type SimilarResult struct {
	Tree   *Node   `json:"tree,omitempty"`
	Groups []*Node `json:"groups,omitempty"`
}

// SimilarGroups finds the origin project and its similar groups, prunes the
// snapshot to them and flags the origin and the similars. For network-graph
// requests the highlighted projects are returned as a flat list with the
// origin left out.
func (q *QueryBuilder) SimilarGroups(req SimilarRequest) SimilarResult {
	origin := strconv.Itoa(req.Origin)
	ids := make([]string, 0, len(req.Similars)+1)
	ids = append(ids, origin)
	ids = append(ids, req.Similars...)

	tree := q.Prune(q.Search(ByIdentifiers(ids...)), NewAnnotations(origin, req.Similars...))
	if !req.NetworkGraph {
		return SimilarResult{Tree: tree}
	}
	return SimilarResult{Groups: Leaves(tree, LeafFilter{
		Exclude:         &req.Origin,
		HighlightedOnly: true,
	})}
}
