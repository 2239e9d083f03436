package vdom

// Map returns a tree with identical shape to node in which every event
// listener's decoder output is transformed by f. It lets a parent component
// relabel child messages without rebuilding the child's view. O(n) in tree
// size; tags, keys, children, and all non-listener properties are unchanged.
//
// Thunks stay lazy: the mapped thunk keeps the original fingerprint and
// applies f when (and if) the subtree is built. As with any thunk, f must be
// stable across cycles for the fingerprint short-circuit to be sound.
func Map(f func(Msg) Msg, node *VNode) *VNode {
	if node == nil || f == nil {
		return node
	}

	switch node.Kind {
	case KindText:
		return node

	case KindThunk:
		src := node
		t := &Thunk{
			Fingerprint: node.Thunk.Fingerprint,
			Build: func() *VNode {
				return Map(f, src.Resolve())
			},
		}
		n := &VNode{Kind: KindThunk, Key: node.Key, Thunk: t}
		return n

	default: // KindElement
		n := &VNode{
			Kind: KindElement,
			Tag:  node.Tag,
			Key:  node.Key,
		}
		if len(node.Props) > 0 {
			n.Props = make([]Property, len(node.Props))
			for i, p := range node.Props {
				if p.Kind == PropEvent && p.Decoder != nil {
					p.Decoder = mapDecoder(f, p.Decoder)
				}
				n.Props[i] = p
			}
		}
		if len(node.Children) > 0 {
			n.Children = make([]*VNode, len(node.Children))
			for i, c := range node.Children {
				n.Children[i] = Map(f, c)
			}
		}
		return n
	}
}

// mapDecoder composes f onto a decoder's success path. Decode failures pass
// through untouched.
func mapDecoder(f func(Msg) Msg, d Decoder) Decoder {
	return func(raw RawEvent) (Msg, error) {
		msg, err := d(raw)
		if err != nil {
			return nil, err
		}
		return f(msg), nil
	}
}
