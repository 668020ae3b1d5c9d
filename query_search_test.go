package grove

import (
	"encoding/json"
	"testing"

	"github.com/jward/grove/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_ByText(t *testing.T) {
	t.Parallel()
	q := newTestQueryBuilder(t)

	tests := []struct {
		name   string
		phrase string
		want   [][]int
	}{
		{"name match dedups by name", "alpha", [][]int{{1, 2}}},
		{"case insensitive", "ALPHA", [][]int{{1, 2}}},
		{"description match", "herding", [][]int{{4, 5, 7}}},
		{"category description", "feline", [][]int{{1}}},
		{"multiple matches in order", "group", [][]int{{1, 2}, {1, 3}}},
		{"no descent below projects", "kitten", nil},
		{"no match", "zebra", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			paths := q.Search(ByText(tt.phrase))
			require.NotNil(t, paths)
			var got [][]int
			for _, p := range paths {
				assert.Equal(t, "root", p.Root)
				got = append(got, p.Tokens)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearch_RootMatch(t *testing.T) {
	t.Parallel()
	q := newTestQueryBuilder(t)

	paths := q.Search(ByText("roo"))
	require.Len(t, paths, 1)
	assert.Equal(t, "root", paths[0].Root)
	assert.Empty(t, paths[0].Tokens)
	_, ok := paths[0].Target()
	assert.False(t, ok)
}

func TestSearch_EmptyPhraseDedupsByName(t *testing.T) {
	t.Parallel()
	q := newTestQueryBuilder(t)

	paths := q.Search(ByText(""))

	// Every reachable node matches; the second "Alpha Group" and the
	// Kitten below a project are not reported.
	assert.Len(t, paths, 9)
	seen := make(map[string]bool)
	for _, p := range paths {
		name := q.root.Name
		if tok, ok := p.Target(); ok {
			name = findByToken(q.root, tok).Name
		}
		assert.False(t, seen[name], "name %q reported twice", name)
		seen[name] = true
	}
	assert.False(t, seen["Kitten"])
}

func TestSearch_PathsFollowTreeEdges(t *testing.T) {
	t.Parallel()
	q := newTestQueryBuilder(t)

	for _, phrase := range []string{"", "a", "group", "dogs"} {
		for _, p := range q.Search(ByText(phrase)) {
			assert.Equal(t, q.root.Name, p.Root)
			n := q.root
			for _, tok := range p.Tokens {
				var next *store.Node
				for _, c := range n.Children {
					if c.Token == tok {
						next = c
						break
					}
				}
				require.NotNil(t, next, "token %d is not a child of %q", tok, n.Name)
				n = next
			}
			assert.True(t, ByText(phrase).matches(n), "path ends at non-matching %q", n.Name)
		}
	}
}

func TestSearch_ByIdentifiers(t *testing.T) {
	t.Parallel()
	q := newTestQueryBuilder(t)

	paths := q.Search(ByIdentifiers("g3", "7"))
	require.Len(t, paths, 2)
	assert.Equal(t, []int{4, 5, 6}, paths[0].Tokens)
	assert.Equal(t, []int{4, 5, 7}, paths[1].Tokens)

	// Tokens and guids share one set.
	paths = q.Search(ByIdentifiers("1"))
	require.Len(t, paths, 1)
	assert.Equal(t, []int{1}, paths[0].Tokens)

	// Nodes without a guid never match the empty identifier through it.
	assert.Empty(t, q.Search(ByIdentifiers("")))
}

func TestSearch_NilInputs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []Path{}, NewQueryBuilder(nil).Search(ByText("a")))
	assert.Equal(t, []Path{}, newTestQueryBuilder(t).Search(nil))
}

// ============================================================================
// Path encoding
// ============================================================================

func TestPath_JSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Path{Root: "root", Tokens: []int{1, 2}})
	require.NoError(t, err)
	assert.JSONEq(t, `["root",1,2]`, string(data))

	var p Path
	require.NoError(t, json.Unmarshal([]byte(`["root","1",2]`), &p))
	assert.Equal(t, Path{Root: "root", Tokens: []int{1, 2}}, p)

	tok, ok := p.Target()
	assert.True(t, ok)
	assert.Equal(t, 2, tok)

	require.NoError(t, json.Unmarshal([]byte(`[]`), &p))
	assert.Equal(t, Path{}, p)

	assert.Error(t, json.Unmarshal([]byte(`["root","x"]`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"root":1}`), &p))
}

func TestPath_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "root/1/2", Path{Root: "root", Tokens: []int{1, 2}}.String())
	assert.Equal(t, "root", Path{Root: "root"}.String())
}
