// Package fold reconstructs the item hierarchy implied by a flat table.
package fold

import "github.com/itsmostafa/bomfold/internal/flat"

// Node is a single item in the recovered hierarchy. Attributes is the table
// row it was built from, shared rather than copied, so a Node must not be
// used after its Table is modified.
type Node struct {
	Attributes flat.Row
	Children   []*Node
}

// Forest is the output of folding: zero or more disjoint trees.
type Forest struct {
	// AttributeKeys names Attributes positionally. It aliases the table's Keys.
	AttributeKeys []string

	// TopLevelNodes holds every node without a parent.
	TopLevelNodes []*Node
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Walk traverses the subtree in depth-first pre-order, calling fn with each
// node and its depth (0 for n itself).
func (n *Node) Walk(fn func(node *Node, depth int)) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int), depth int) {
	if n == nil {
		return
	}
	fn(n, depth)
	for _, child := range n.Children {
		child.walk(fn, depth+1)
	}
}

// Walk visits every node of every tree in pre-order.
func (f *Forest) Walk(fn func(node *Node, depth int)) {
	if f == nil {
		return
	}
	for _, root := range f.TopLevelNodes {
		root.Walk(fn)
	}
}

// Size returns the total number of nodes.
func (f *Forest) Size() int {
	count := 0
	f.Walk(func(*Node, int) { count++ })
	return count
}

// Depth returns the number of levels in the deepest tree.
func (f *Forest) Depth() int {
	deepest := 0
	f.Walk(func(_ *Node, depth int) {
		if depth+1 > deepest {
			deepest = depth + 1
		}
	})
	return deepest
}
