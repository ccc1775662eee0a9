package output

import (
	"fmt"
	"io"

	"github.com/ddddddO/gtree"

	"github.com/itsmostafa/bomfold/internal/flat"
	"github.com/itsmostafa/bomfold/internal/fold"
)

// RenderForest prints each tree of the forest. Nodes are labelled with
// their id and level attributes; a running counter keeps labels unique,
// since the tree printer merges siblings with equal text.
func RenderForest(w io.Writer, forest *fold.Forest, idKey, levelKey string) error {
	if forest == nil || len(forest.TopLevelNodes) == 0 {
		fmt.Fprintln(w, dimStyle.Render("(empty)"))
		return nil
	}

	id := flat.KeyIndex(forest.AttributeKeys, idKey)
	level := flat.KeyIndex(forest.AttributeKeys, levelKey)

	seq := 0
	label := func(n *fold.Node) string {
		seq++
		text := fmt.Sprintf("#%d", seq)
		if v, ok := n.Attributes.Get(id); ok {
			text += " " + v.String()
		}
		if v, ok := n.Attributes.Get(level); ok {
			text += fmt.Sprintf(" [%s=%s]", levelKey, v.String())
		}
		return text
	}

	for _, top := range forest.TopLevelNodes {
		root := gtree.NewRoot(label(top))
		addChildren(root, top, label)
		if err := gtree.OutputFromRoot(w, root); err != nil {
			return fmt.Errorf("failed to render tree: %w", err)
		}
	}
	return nil
}

func addChildren(parent *gtree.Node, n *fold.Node, label func(*fold.Node) string) {
	for _, child := range n.Children {
		addChildren(parent.Add(label(child)), child, label)
	}
}
