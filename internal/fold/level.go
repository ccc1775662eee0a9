package fold

import (
	"github.com/itsmostafa/bomfold/internal/bomerr"
	"github.com/itsmostafa/bomfold/internal/flat"
)

// levelNode is an open node on the working stack alongside its level.
type levelNode struct {
	level flat.Value
	node  *Node
}

// Fold builds a forest from the table using levelKey as the depth column.
// A record becomes a child of the previous open record when its level is
// strictly greater, or when the two levels cannot be compared at all.
func Fold(table *flat.Table, levelKey string) (*Forest, error) {
	if table.IsEmpty() {
		return &Forest{}, nil
	}

	levelIndex := table.Index(levelKey)
	if levelIndex < 0 {
		return nil, bomerr.InvalidArgument("level key %q not found in the flat data keys", levelKey)
	}

	topLevelNodes := make([]*Node, 0, len(table.Records))

	// Nodes that may still receive children, innermost last.
	var stack []levelNode

	for i, record := range table.Records {
		level, ok := record.Get(levelIndex)
		if !ok {
			return nil, bomerr.InvalidArgument("record %d has no value for level key %q", i, levelKey)
		}

		// Close every open node that cannot be the parent of this record
		for len(stack) > 0 {
			switch flat.Compare(stack[len(stack)-1].level, level) {
			case flat.Greater, flat.Equal:
				stack, topLevelNodes = closeTop(stack, topLevelNodes)
				continue
			}
			break
		}

		stack = append(stack, levelNode{
			level: level,
			node:  &Node{Attributes: record},
		})
	}

	for len(stack) > 0 {
		stack, topLevelNodes = closeTop(stack, topLevelNodes)
	}

	return &Forest{
		AttributeKeys: table.Keys,
		TopLevelNodes: topLevelNodes,
	}, nil
}

// closeTop pops the innermost open node and attaches it to its parent, or to
// the top level when the stack is now empty.
func closeTop(stack []levelNode, topLevelNodes []*Node) ([]levelNode, []*Node) {
	popped := stack[len(stack)-1]
	stack = stack[:len(stack)-1]

	if len(stack) == 0 {
		return stack, append(topLevelNodes, popped.node)
	}
	parent := stack[len(stack)-1].node
	parent.Children = append(parent.Children, popped.node)
	return stack, topLevelNodes
}
