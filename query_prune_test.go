package grove

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSet(t *testing.T) {
	t.Parallel()

	open := OpenSet([]Path{
		{Root: "root", Tokens: []int{1, 2}},
		{Root: "root", Tokens: []int{1, 3}},
		{Root: "root"},
	})
	assert.Equal(t, map[int]bool{1: true, 2: true, 3: true}, open)
	assert.Empty(t, OpenSet(nil))
}

func TestPrune_KeepsPathToMatch(t *testing.T) {
	t.Parallel()
	q := newTestQueryBuilder(t)

	tree := q.Prune(q.Search(ByText("herding")), nil)

	assert.Equal(t, []int{1, 4, 8}, childTokens(tree))
	assert.Empty(t, tree.Children[0].Children, "Cats holds no match")
	assert.Empty(t, tree.Children[2].Children, "Birds holds no match")

	dogs := tree.Children[1]
	assert.Equal(t, []int{5}, childTokens(dogs))
	puppies := dogs.Children[0]
	assert.Equal(t, []int{6, 7}, childTokens(puppies))
	assert.False(t, puppies.Children[0].Highlight)
	assert.True(t, puppies.Children[1].Highlight)
}

func TestPrune_ProjectsLoseChildren(t *testing.T) {
	t.Parallel()
	q := newTestQueryBuilder(t)

	tree := q.Prune(q.Search(ByText("alpha")), nil)
	alpha := tree.Children[0].Children[0]
	assert.Equal(t, 2, alpha.Token)
	assert.True(t, alpha.Highlight)
	assert.Nil(t, alpha.Children)
}

func TestPrune_NoPaths(t *testing.T) {
	t.Parallel()
	q := newTestQueryBuilder(t)

	tree := q.Prune(nil, nil)
	require.NotNil(t, tree)
	assert.Equal(t, "root", tree.Name)
	assert.Nil(t, tree.Children)
}

func TestPrune_Idempotent(t *testing.T) {
	t.Parallel()
	q := newTestQueryBuilder(t)

	for _, phrase := range []string{"", "alpha", "group", "herding", "zebra"} {
		paths := q.Search(ByText(phrase))
		assert.Equal(t, q.Prune(paths, nil), q.Prune(paths, nil), "phrase %q", phrase)
	}
	paths := q.Search(ByIdentifiers("2", "g3"))
	ann := NewAnnotations("2", "g3")
	assert.Equal(t, q.Prune(paths, ann), q.Prune(paths, ann))
}

func TestPrune_ReturnsFreshNodes(t *testing.T) {
	t.Parallel()
	q := newTestQueryBuilder(t)

	tree := q.Prune(q.Search(ByText("alpha")), nil)
	tree.Children[0].Name = "Changed"
	tree.Children[0].Children[0].Highlight = false

	assert.Equal(t, "Cats", q.root.Children[0].Name)
	again := q.Prune(q.Search(ByText("alpha")), nil)
	assert.True(t, again.Children[0].Children[0].Highlight)
}

func TestPrune_Annotations(t *testing.T) {
	t.Parallel()
	q := newTestQueryBuilder(t)

	// Origin takes precedence over Similar on the same node.
	paths := q.Search(ByIdentifiers("2", "g1"))
	tree := q.Prune(paths, NewAnnotations("2", "g1"))
	alpha := tree.Children[0].Children[0]
	assert.True(t, alpha.Origin)
	assert.False(t, alpha.Similar)

	// Non-highlighted projects never carry annotations.
	beta := tree.Children[0].Children[1]
	assert.False(t, beta.Highlight || beta.Origin || beta.Similar)
}

func TestPrune_NilRoot(t *testing.T) {
	t.Parallel()
	assert.Nil(t, NewQueryBuilder(nil).Prune(nil, nil))
}
