package grove

import (
	"testing"

	"github.com/jward/grove/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTree builds the fixture shared by the query tests:
//
//	root(0)
//	  Cats(1) "Feline projects"
//	    Alpha Group(2) project g1 → Kitten(10) project g9
//	    Beta Group(3) project g2
//	  Dogs(4)
//	    Puppies(5)
//	      Alpha Group(6) project g3
//	      Gamma Crew(7) project g4 "Herding dogs"
//	  Birds(8)
//	    Delta(9) project g5
func testTree() *store.Node {
	return &store.Node{Token: 0, Name: "root", Children: []*store.Node{
		{Token: 1, Name: "Cats", Description: "Feline projects", Children: []*store.Node{
			{Token: 2, GUID: "g1", Name: "Alpha Group", Project: true,
				SimilarGroups: []store.ID{"g3"}, ParentNodes: []store.ID{"Cats"},
				Children: []*store.Node{
					{Token: 10, GUID: "g9", Name: "Kitten", Project: true},
				}},
			{Token: 3, GUID: "g2", Name: "Beta Group", Project: true},
		}},
		{Token: 4, Name: "Dogs", Children: []*store.Node{
			{Token: 5, Name: "Puppies", Children: []*store.Node{
				{Token: 6, GUID: "g3", Name: "Alpha Group", Project: true},
				{Token: 7, GUID: "g4", Name: "Gamma Crew", Description: "Herding dogs", Project: true},
			}},
		}},
		{Token: 8, Name: "Birds", Children: []*store.Node{
			{Token: 9, GUID: "g5", Name: "Delta", Project: true},
		}},
	}}
}

func newTestQueryBuilder(t *testing.T) *QueryBuilder {
	t.Helper()
	root := testTree()
	require.NoError(t, store.Validate(root))
	return NewQueryBuilder(root)
}

// childTokens lists the tokens of n's direct children.
func childTokens(n *Node) []int {
	var toks []int
	for _, c := range n.Children {
		toks = append(toks, c.Token)
	}
	return toks
}

// ============================================================================
// Tree
// ============================================================================

func TestTree_ReturnsDeepCopy(t *testing.T) {
	t.Parallel()
	q := newTestQueryBuilder(t)

	tree := q.Tree()
	tree.Children[0].Name = "Changed"
	tree.Children[0].Children[0].SimilarGroups[0] = "zz"

	assert.Equal(t, "Cats", q.root.Children[0].Name)
	assert.Equal(t, store.ID("g3"), q.root.Children[0].Children[0].SimilarGroups[0])
}

// ============================================================================
// SearchTree
// ============================================================================

func TestSearchTree_CatsAlphaExample(t *testing.T) {
	t.Parallel()

	root := &store.Node{Name: "root", Children: []*store.Node{
		{Token: 1, Name: "Cats", Children: []*store.Node{
			{Token: 2, GUID: "g1", Name: "Alpha Group", Project: true},
		}},
	}}
	q := NewQueryBuilder(root)

	paths := q.Search(ByText("alpha"))
	require.Len(t, paths, 1)
	assert.Equal(t, Path{Root: "root", Tokens: []int{1, 2}}, paths[0])

	tree := q.SearchTree("alpha")
	require.Len(t, tree.Children, 1)
	cats := tree.Children[0]
	assert.Equal(t, "Cats", cats.Name)
	require.Len(t, cats.Children, 1)
	assert.True(t, cats.Children[0].Highlight)
}

func TestSearchTree_NoMatchesCollapsesRoot(t *testing.T) {
	t.Parallel()
	q := newTestQueryBuilder(t)

	tree := q.SearchTree("zebra")
	require.NotNil(t, tree)
	assert.Equal(t, "root", tree.Name)
	assert.Empty(t, tree.Children)
}

// ============================================================================
// SimilarGroups
// ============================================================================

func TestSimilarGroups_Tree(t *testing.T) {
	t.Parallel()
	q := newTestQueryBuilder(t)

	res := q.SimilarGroups(SimilarRequest{Origin: 2, Similars: []string{"g4"}})
	require.NotNil(t, res.Tree)
	assert.Nil(t, res.Groups)

	cats := res.Tree.Children[0]
	origin := cats.Children[0]
	assert.True(t, origin.Highlight)
	assert.True(t, origin.Origin)
	assert.False(t, origin.Similar)
	assert.False(t, cats.Children[1].Highlight, "Beta Group is not part of the query")

	puppies := res.Tree.Children[1].Children[0]
	assert.False(t, puppies.Children[0].Highlight)
	similar := puppies.Children[1]
	assert.Equal(t, 7, similar.Token)
	assert.True(t, similar.Highlight)
	assert.True(t, similar.Similar)
	assert.False(t, similar.Origin)

	assert.Empty(t, res.Tree.Children[2].Children, "Birds holds no match")
}

func TestSimilarGroups_NetworkGraph(t *testing.T) {
	t.Parallel()
	q := newTestQueryBuilder(t)

	req := SimilarRequest{Origin: 2, Similars: []string{"g4", "g5"}, NetworkGraph: true}
	res := q.SimilarGroups(req)
	assert.Nil(t, res.Tree)
	require.Len(t, res.Groups, 2)
	assert.Equal(t, 7, res.Groups[0].Token)
	assert.Equal(t, 9, res.Groups[1].Token)
	for _, g := range res.Groups {
		assert.True(t, g.Similar)
		assert.Nil(t, g.Children)
	}

	// The pruned tree also holds collapsed sibling projects (Beta Group and
	// the second Alpha Group); only highlighted ones are similar groups.
	req.NetworkGraph = false
	all := Leaves(q.SimilarGroups(req).Tree, LeafFilter{Exclude: &req.Origin})
	var toks []int
	for _, l := range all {
		toks = append(toks, l.Token)
	}
	assert.Equal(t, []int{3, 6, 7, 9}, toks)
}

func TestSimilarGroups_SimilarSharingOriginName(t *testing.T) {
	t.Parallel()
	q := newTestQueryBuilder(t)

	// Token 6 carries g3 but is named like the origin, so the search keeps
	// only the origin's path.
	res := q.SimilarGroups(SimilarRequest{Origin: 2, Similars: []string{"g3"}, NetworkGraph: true})
	assert.Empty(t, res.Groups)
}

func TestSimilarGroups_UnknownOrigin(t *testing.T) {
	t.Parallel()
	q := newTestQueryBuilder(t)

	res := q.SimilarGroups(SimilarRequest{Origin: 99, NetworkGraph: true})
	assert.NotNil(t, res.Groups)
	assert.Empty(t, res.Groups)
}

func TestQueries_DoNotMutateSnapshot(t *testing.T) {
	t.Parallel()
	q := newTestQueryBuilder(t)
	before := store.ComputeTreeHash(q.root)

	q.SearchTree("")
	q.SearchTree("alpha")
	q.SimilarGroups(SimilarRequest{Origin: 2, Similars: []string{"g3"}})
	q.SimilarGroups(SimilarRequest{Origin: 7, Similars: []string{"g1"}, NetworkGraph: true})
	q.Expand(1)
	q.Parents([]string{"Cats"}, "g1")
	q.Related([]string{"g1", "g5"})

	assert.Equal(t, before, store.ComputeTreeHash(q.root))
	q.root.Walk(func(n *store.Node, _ int) bool {
		assert.False(t, n.Highlight || n.Origin || n.Similar, "node %d annotated", n.Token)
		return true
	})
}
