package grove

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jward/grove/internal/store"
)

// Query selects the nodes a search matches. It is either a text query
// (ByText) or an identifier-set query (ByIdentifiers).
type Query interface {
	matches(n *store.Node) bool
}

// textQuery matches a lower-cased phrase against names and descriptions.
type textQuery string

// ByText returns a query matching nodes whose name or description contains
// phrase, ignoring case. The empty phrase matches every node.
func ByText(phrase string) Query {
	return textQuery(strings.ToLower(phrase))
}

func (q textQuery) matches(n *store.Node) bool {
	phrase := string(q)
	if strings.Contains(strings.ToLower(n.Name), phrase) {
		return true
	}
	return n.Description != "" && strings.Contains(strings.ToLower(n.Description), phrase)
}

// identifierQuery matches nodes by token-as-string or guid.
type identifierQuery map[string]struct{}

// ByIdentifiers returns a query matching nodes whose token (in decimal
// form) or guid equals one of ids. Tokens and guids share one set; a value
// matches whichever namespace it appears in.
func ByIdentifiers(ids ...string) Query {
	q := make(identifierQuery, len(ids))
	for _, id := range ids {
		q[id] = struct{}{}
	}
	return q
}

func (q identifierQuery) matches(n *store.Node) bool {
	if _, ok := q[n.TokenString()]; ok {
		return true
	}
	if n.GUID == "" {
		return false
	}
	_, ok := q[string(n.GUID)]
	return ok
}

// Path is the route from the dataset root to a matched node: the root's
// name followed by the token of every node below the root, ending with the
// match. A match on the root itself has no tokens.
type Path struct {
	Root   string
	Tokens []int
}

// Target returns the token of the matched node, or false when the path ends
// at the root.
func (p Path) Target() (int, bool) {
	if len(p.Tokens) == 0 {
		return 0, false
	}
	return p.Tokens[len(p.Tokens)-1], true
}

// String renders the path as slash-separated steps: "root/1/2".
func (p Path) String() string {
	var b strings.Builder
	b.WriteString(p.Root)
	for _, tok := range p.Tokens {
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(tok))
	}
	return b.String()
}

// MarshalJSON encodes the path as a flat array: ["root", 1, 2].
func (p Path) MarshalJSON() ([]byte, error) {
	steps := make([]any, 0, len(p.Tokens)+1)
	steps = append(steps, p.Root)
	for _, tok := range p.Tokens {
		steps = append(steps, tok)
	}
	return json.Marshal(steps)
}

// UnmarshalJSON decodes the flat array form produced by MarshalJSON.
func (p *Path) UnmarshalJSON(data []byte) error {
	var steps []json.RawMessage
	if err := json.Unmarshal(data, &steps); err != nil {
		return err
	}
	*p = Path{}
	if len(steps) == 0 {
		return nil
	}
	if err := json.Unmarshal(steps[0], &p.Root); err != nil {
		return err
	}
	for _, raw := range steps[1:] {
		var tok int
		if err := json.Unmarshal(raw, &tok); err != nil {
			// Tokens posted back by browsers sometimes arrive as strings.
			var s string
			if json.Unmarshal(raw, &s) != nil {
				return err
			}
			if tok, err = strconv.Atoi(s); err != nil {
				return err
			}
		}
		p.Tokens = append(p.Tokens, tok)
	}
	return nil
}

// searcher carries the per-call traversal state: the ancestor stack, the
// names already reported, and the accumulated paths.
type searcher struct {
	query Query
	root  string
	stack []int
	seen  map[string]bool
	paths []Path
}

// Search walks the snapshot depth-first in stored order and returns one
// path per distinct matched name. Two nodes sharing a display name (ignoring
// case) produce a single path, for whichever is reached first. Traversal
// never descends below project nodes.
func (q *QueryBuilder) Search(query Query) []Path {
	if q.root == nil || query == nil {
		return []Path{}
	}
	s := &searcher{
		query: query,
		root:  q.root.Name,
		seen:  make(map[string]bool),
		paths: []Path{},
	}
	s.visit(q.root)
	return s.paths
}

func (s *searcher) visit(n *store.Node) {
	if s.query.matches(n) {
		key := strings.ToLower(n.Name)
		if !s.seen[key] {
			s.seen[key] = true
			tokens := make([]int, len(s.stack))
			copy(tokens, s.stack)
			s.paths = append(s.paths, Path{Root: s.root, Tokens: tokens})
		}
	}
	if n.Project {
		return
	}
	for _, c := range n.Children {
		s.stack = append(s.stack, c.Token)
		s.visit(c)
		s.stack = s.stack[:len(s.stack)-1]
	}
}
