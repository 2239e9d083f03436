package vdom

// OpKind is the type of patch operation.
type OpKind uint8

const (
	OpReplace    OpKind = 0x01 // Replace the node with a freshly rendered tree
	OpSetText    OpKind = 0x02 // Update text content
	OpAddProp    OpKind = 0x03 // Add a property
	OpRemoveProp OpKind = 0x04 // Remove a property
	OpUpdateProp OpKind = 0x05 // Change a property's value
	OpInsert     OpKind = 0x06 // Insert a child at a position
	OpRemove     OpKind = 0x07 // Remove the child at a position
	OpReorder    OpKind = 0x08 // Move children to new positions
	OpRecurse    OpKind = 0x09 // Descend into a child for the ops that follow
)

// String returns the string representation of the OpKind.
func (k OpKind) String() string {
	switch k {
	case OpReplace:
		return "Replace"
	case OpSetText:
		return "SetText"
	case OpAddProp:
		return "AddProp"
	case OpRemoveProp:
		return "RemoveProp"
	case OpUpdateProp:
		return "UpdateProp"
	case OpInsert:
		return "Insert"
	case OpRemove:
		return "Remove"
	case OpReorder:
		return "Reorder"
	case OpRecurse:
		return "Recurse"
	default:
		return "Unknown"
	}
}

// Move relocates the child at From to position To. From is read against the
// child list as it stands when the move applies; To is the position after
// the item at From has been taken out.
type Move struct {
	From int
	To   int
}

// Op is a single edit operation. Index addresses the target node by its
// pre-order position in the old tree (root = 0).
type Op struct {
	Kind  OpKind
	Index int

	Prop  Property // OpAddProp, OpUpdateProp
	Name  string   // OpRemoveProp: the removed property's diff key
	Text  string   // OpSetText
	Pos   int      // OpInsert: position in the new child list; OpRemove: position at apply time
	Child int      // OpRecurse: child position after structural ops applied
	Moves []Move   // OpReorder
	Node  *VNode   // OpReplace, OpInsert: the subtree to render
}

// Patch is an ordered edit script transforming the live tree rendered from
// one VNode tree into the shape of another. Ops appear in the old tree's
// pre-order; per parent, removals come first (descending position), then
// reorder moves, then insertions (ascending position), then descents.
// A Patch is consumed exactly once.
type Patch struct {
	Ops []Op

	// OldSize is the node count of the old tree, used by the patcher to
	// fail fast on index/tree mismatches.
	OldSize int
}

// Empty reports whether the patch contains no operations.
func (p *Patch) Empty() bool {
	return p == nil || len(p.Ops) == 0
}

// Len returns the number of operations.
func (p *Patch) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Ops)
}
