package host

// Handle is an opaque reference to one live node owned by the host.
type Handle any

// ListenerHandle is an opaque reference to one attached listener.
type ListenerHandle any

// ListenerOptions controls event delivery at the host.
type ListenerOptions struct {
	StopPropagation bool
	PreventDefault  bool
}

// Surface is the primitive operation set the engine is implemented against.
//
// All methods are synchronous and run on the thread that owns the live
// tree. A returned error means the host rejected the operation; the engine
// propagates it as a construction error and aborts the cycle. Hosts must
// not fail partially: a rejected operation leaves the targeted node as it
// was.
//
// fire callbacks passed to AttachListener may be invoked by the host at any
// time after attachment and until detachment, including between engine
// cycles.
type Surface interface {
	// CreateElement allocates a live element node. An empty or otherwise
	// invalid tag is rejected here, not at VNode construction.
	CreateElement(tag string) (Handle, error)

	// CreateText allocates a live text node.
	CreateText(text string) (Handle, error)

	// SetText replaces a text node's content.
	SetText(h Handle, text string) error

	SetAttr(h Handle, name, value string) error
	SetAttrNS(h Handle, ns, name, value string) error
	RemoveAttr(h Handle, name string) error
	RemoveAttrNS(h Handle, ns, name string) error

	SetProp(h Handle, name string, value any) error
	RemoveProp(h Handle, name string) error

	SetStyle(h Handle, property, value string) error
	RemoveStyle(h Handle, property string) error

	// InsertChild places child at pos in parent's child list, shifting
	// later children right. pos == len(children) appends.
	InsertChild(parent Handle, pos int, child Handle) error

	// RemoveChild detaches the child at pos. The child handle stays valid
	// until destroyed.
	RemoveChild(parent Handle, pos int) error

	// MoveChild removes the child at from and reinserts it at to, where to
	// is a position in the list after the removal.
	MoveChild(parent Handle, from, to int) error

	// ReplaceChild swaps the child at pos for a new node.
	ReplaceChild(parent Handle, pos int, child Handle) error

	// AttachListener registers fire for the named event on the node.
	AttachListener(h Handle, event string, opts ListenerOptions, fire func(event any)) (ListenerHandle, error)

	// DetachListener removes a previously attached listener.
	DetachListener(h Handle, l ListenerHandle) error

	// Mount makes h the root of the displayed tree, replacing any
	// previously mounted tree.
	Mount(h Handle) error

	// Destroy releases a node and its subtree. Attached listeners are
	// detached by the engine before destruction.
	Destroy(h Handle) error
}

// Flusher is implemented by surfaces that buffer primitive operations (the
// remote surface batches them into wire frames). The driver flushes once
// per completed cycle.
type Flusher interface {
	Flush() error
}
