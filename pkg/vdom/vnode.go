package vdom

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement VKind = iota // <div>, <button>, etc.
	KindText                 // Plain text node
	KindThunk                // Deferred construction guarded by a fingerprint
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindThunk:
		return "Thunk"
	default:
		return "Unknown"
	}
}

// VNode is a virtual DOM node. Values are immutable once constructed: every
// update cycle builds a fresh tree and the old one is discarded after diffing.
type VNode struct {
	Kind     VKind       // Node type
	Tag      string      // Element tag name (e.g., "div")
	Props    []Property  // Ordered attributes, properties, styles, listeners
	Children []*VNode    // Child nodes
	Key      string      // Reconciliation key, "" for unkeyed
	Text     string      // For KindText
	Thunk    *Thunk      // For KindThunk
}

// Thunk defers construction of a subtree. The differ skips rebuilding when
// the previous and next fingerprints compare equal; otherwise Build is
// invoked once and the result cached.
type Thunk struct {
	// Fingerprint is the equality key. Comparable values are compared with
	// ==; non-comparable values never match, which is always safe (the
	// subtree is rebuilt).
	Fingerprint any

	// Build constructs the subtree. Called at most once per Thunk value.
	Build func() *VNode

	cached *VNode
}

// Lazy creates a thunk node. fingerprint must capture everything build
// depends on; two thunks with equal fingerprints are assumed to build
// identical trees.
func Lazy(fingerprint any, build func() *VNode) *VNode {
	return &VNode{
		Kind:  KindThunk,
		Thunk: &Thunk{Fingerprint: fingerprint, Build: build},
	}
}

// Resolve forces the node if it is a thunk, returning the built subtree.
// Non-thunk nodes resolve to themselves. Thunk results are cached so the
// builder runs at most once.
func (v *VNode) Resolve() *VNode {
	n := v
	for n != nil && n.Kind == KindThunk {
		if n.Thunk.cached == nil {
			n.Thunk.cached = n.Thunk.Build()
		}
		n = n.Thunk.cached
	}
	return n
}

// adoptCache transfers a previously forced result into this thunk so the
// differ can skip the builder when fingerprints match.
func (t *Thunk) adoptCache(prev *Thunk) {
	t.cached = prev.cached
}

// forced reports whether the thunk has been resolved.
func (t *Thunk) forced() bool {
	return t.cached != nil
}

// fingerprintEqual compares two thunk fingerprints. Comparable values use ==;
// anything that would panic under == (slices, maps, funcs) never matches.
func fingerprintEqual(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}

// Count returns the number of nodes in the resolved tree, the bound used for
// pre-order patch indexing. Thunks are transparent: a thunk contributes its
// resolved subtree's count.
func (v *VNode) Count() int {
	n := v.Resolve()
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}
