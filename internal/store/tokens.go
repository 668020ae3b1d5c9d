package store

// excludedGroupName is the placeholder group the upstream export emits under
// every category. It is never numbered and is dropped by the default
// prepare script.
const excludedGroupName = "allps"

// AssignTokens numbers the tree in pre-order starting at 0, overwriting any
// existing tokens. Numbering stops at project nodes and skips children named
// "allps". It returns the number of tokens assigned.
func AssignTokens(root *Node) int {
	next := 0
	var assign func(n *Node)
	assign = func(n *Node) {
		n.Token = next
		next++
		if n.Project {
			return
		}
		for _, c := range n.Children {
			if c == nil || c.Name == excludedGroupName {
				continue
			}
			assign(c)
		}
	}
	if root != nil {
		assign(root)
	}
	return next
}
