package store

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDataset indicates the dataset does not describe a usable tree.
	ErrInvalidDataset = errors.New("invalid dataset")

	// ErrDuplicateToken indicates two nodes share a token.
	ErrDuplicateToken = errors.New("duplicate token")
)

// Validate checks the structural invariants of a loaded tree: a single root,
// every node named, and tokens unique across the whole tree.
func Validate(root *Node) error {
	if root == nil {
		return fmt.Errorf("%w: no root node", ErrInvalidDataset)
	}

	seen := make(map[int]string)
	var err error
	root.Walk(func(n *Node, _ int) bool {
		if err != nil {
			return false
		}
		if n.Name == "" {
			err = fmt.Errorf("%w: node with token %d has no name", ErrInvalidDataset, n.Token)
			return false
		}
		if prev, ok := seen[n.Token]; ok {
			err = fmt.Errorf("%w: %d used by %q and %q", ErrDuplicateToken, n.Token, prev, n.Name)
			return false
		}
		seen[n.Token] = n.Name
		for _, c := range n.Children {
			if c == nil {
				err = fmt.Errorf("%w: null child under %q", ErrInvalidDataset, n.Name)
				return false
			}
		}
		return true
	})
	return err
}
