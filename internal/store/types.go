package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is a string identifier that tolerates numeric JSON values. Group guids
// and similar-group lists are exported by upstream tooling as either strings
// or numbers; both decode to the same ID.
type ID string

// UnmarshalJSON accepts a JSON string, number, or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: expected string or number, got %s", data)
	}
	*id = ID(n.String())
	return nil
}

// String returns the identifier as a plain string.
func (id ID) String() string { return string(id) }

// Node is one entry of the categories → groups → projects tree.
//
// Highlight, Origin and Similar are annotations that only appear on trees
// produced by a query; the stored dataset never carries them.
type Node struct {
	Token         int      `json:"token"`
	GUID          ID       `json:"guid,omitempty"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Project       bool     `json:"project"`
	Size          int      `json:"size,omitempty"`
	Contributors  []string `json:"contributors,omitempty"`
	SimilarGroups []ID     `json:"similar_groups,omitempty"`
	ParentNodes   []ID     `json:"parent_nodes,omitempty"`
	Children      []*Node  `json:"children,omitempty"`

	Highlight bool `json:"highlight,omitempty"`
	Origin    bool `json:"origin,omitempty"`
	Similar   bool `json:"similar,omitempty"`
}

// TokenString returns the token in the string form used by identifier
// queries and origin annotations.
func (n *Node) TokenString() string {
	return strconv.Itoa(n.Token)
}

// HasChildren reports whether the node has at least one child.
func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

// WithoutChildren returns a copy of the node with no children. Slice fields
// are shared with the receiver, which is safe because stored nodes are never
// mutated after load.
func (n *Node) WithoutChildren() *Node {
	cp := *n
	cp.Children = nil
	return &cp
}

// Clone returns a deep copy of the subtree rooted at n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	cp := *n
	cp.Contributors = cloneSlice(n.Contributors)
	cp.SimilarGroups = cloneSlice(n.SimilarGroups)
	cp.ParentNodes = cloneSlice(n.ParentNodes)
	if n.Children != nil {
		cp.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			cp.Children[i] = c.Clone()
		}
	}
	return &cp
}

// Walk visits every node in pre-order. Returning false from fn skips the
// node's children.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	walk(n, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int) bool) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		walk(c, depth+1, fn)
	}
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}
