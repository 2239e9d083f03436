package render

import (
	"github.com/loom-ui/loom/pkg/host"
	"github.com/loom-ui/loom/pkg/vdom"
)

// LiveNode is the engine's shadow of one host node. It mirrors the VNode
// tree the node was rendered from and exists only for patch targeting and
// listener teardown; the host owns the actual display state.
type LiveNode struct {
	Handle host.Handle

	// Tag is the element tag, "" for text nodes.
	Tag  string
	Text string

	Children []*LiveNode

	parent    *LiveNode
	listeners []attachedListener
	styles    []vdom.StyleDecl
}

type attachedListener struct {
	event  string
	handle host.ListenerHandle
}

// IsText reports whether the live node is a text node.
func (ln *LiveNode) IsText() bool {
	return ln.Tag == ""
}

// Count returns the number of nodes in the live subtree.
func (ln *LiveNode) Count() int {
	if ln == nil {
		return 0
	}
	total := 1
	for _, c := range ln.Children {
		total += c.Count()
	}
	return total
}

// preorderTable flattens the live tree in pre-order, the same order the
// differ indexes the old VNode tree. table[i] is the live node for pre-order
// index i.
func preorderTable(root *LiveNode) []*LiveNode {
	table := make([]*LiveNode, 0, root.Count())
	var walk func(*LiveNode)
	walk = func(ln *LiveNode) {
		table = append(table, ln)
		for _, c := range ln.Children {
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return table
}

// childPos returns ln's position in its parent's child list, or -1 for the
// root.
func (ln *LiveNode) childPos() int {
	if ln.parent == nil {
		return -1
	}
	for i, c := range ln.parent.Children {
		if c == ln {
			return i
		}
	}
	return -1
}
