package vdom

// Diff compares two VNode trees and returns the Patch transforming a live
// tree rendered from old into the shape of new. Diff is pure: it never
// touches the live tree and for the same (old, new) pair always produces
// the same op sequence.
//
// A nil tree is treated as an empty text node. Near-linear in tree size for
// the common case; a pathological keyed reorder degrades to quadratic in the
// child count, which is acceptable for UI-sized lists.
func Diff(old, new *VNode) *Patch {
	if old == nil {
		old = Text("")
	}
	if new == nil {
		new = Text("")
	}

	// Top-level thunk reuse happens before anything forces either tree, so
	// Diff(Lazy(fp, f), Lazy(fp, f)) never invokes f.
	if old.Kind == KindThunk && new.Kind == KindThunk &&
		fingerprintEqual(old.Thunk.Fingerprint, new.Thunk.Fingerprint) {
		new.Thunk.adoptCache(old.Thunk)
		p := &Patch{}
		if new.Thunk.forced() {
			p.OldSize = old.Count()
		}
		return p
	}

	d := &differ{}
	d.node(old, new, 0)
	return &Patch{Ops: d.ops, OldSize: old.Count()}
}

type differ struct {
	ops []Op
}

// node diffs one pair. idx is the old node's pre-order index.
func (d *differ) node(old, new *VNode, idx int) {
	if old.Kind == KindThunk && new.Kind == KindThunk &&
		fingerprintEqual(old.Thunk.Fingerprint, new.Thunk.Fingerprint) {
		new.Thunk.adoptCache(old.Thunk)
		return
	}

	o := old.Resolve()
	n := new.Resolve()

	// Different kinds or a different tag: no recursive diff, replace wholesale.
	if o.Kind != n.Kind || (o.Kind == KindElement && o.Tag != n.Tag) {
		d.ops = append(d.ops, Op{Kind: OpReplace, Index: idx, Node: n})
		return
	}

	if o.Kind == KindText {
		if o.Text != n.Text {
			d.ops = append(d.ops, Op{Kind: OpSetText, Index: idx, Text: n.Text})
		}
		return
	}

	d.props(o, n, idx)
	d.children(o, n, idx)
}

// props diffs the ordered property lists of two same-tag elements. Duplicate
// keys within one list collapse last-write-wins before comparison. Listener
// decoders compare by function identity only; a rebuilt closure always
// re-emits an update.
func (d *differ) props(o, n *VNode, idx int) {
	oldProps, oldKeys := propIndex(o.Props)
	newProps, newKeys := propIndex(n.Props)

	for _, k := range oldKeys {
		op := oldProps[k]
		np, ok := newProps[k]
		if !ok {
			d.ops = append(d.ops, Op{Kind: OpRemoveProp, Index: idx, Name: k, Prop: op})
		} else if !op.equal(np) {
			d.ops = append(d.ops, Op{Kind: OpUpdateProp, Index: idx, Name: k, Prop: np})
		}
	}
	for _, k := range newKeys {
		if _, ok := oldProps[k]; !ok {
			d.ops = append(d.ops, Op{Kind: OpAddProp, Index: idx, Prop: newProps[k]})
		}
	}
}

func (d *differ) children(o, n *VNode, idx int) {
	if hasKeys(o.Children) || hasKeys(n.Children) {
		d.keyedChildren(o, n, idx)
	} else {
		d.unkeyedChildren(o, n, idx)
	}
}

// unkeyedChildren pairs children positionally up to the shorter list; the
// excess becomes removals (descending, so positions stay valid as they
// apply) or insertions (ascending).
func (d *differ) unkeyedChildren(o, n *VNode, idx int) {
	oldKids, newKids := o.Children, n.Children
	minLen := len(oldKids)
	if len(newKids) < minLen {
		minLen = len(newKids)
	}

	for i := len(oldKids) - 1; i >= minLen; i-- {
		d.ops = append(d.ops, Op{Kind: OpRemove, Index: idx, Pos: i})
	}
	for i := minLen; i < len(newKids); i++ {
		d.ops = append(d.ops, Op{Kind: OpInsert, Index: idx, Pos: i, Node: newKids[i]})
	}

	childIdx := idx + 1
	for i := 0; i < minLen; i++ {
		d.child(oldKids[i], newKids[i], childIdx, idx, i)
		childIdx += oldKids[i].Count()
	}
}

// keyedChildren reconciles by key so reordering produces moves instead of
// remounts. Duplicate keys within one list: last write wins, earlier
// occurrences are treated as unmatched. Unkeyed entries in a keyed list are
// never matched across renders.
func (d *differ) keyedChildren(o, n *VNode, idx int) {
	oldKids, newKids := o.Children, n.Children

	oldByKey := make(map[string]int, len(oldKids))
	for i, c := range oldKids {
		if c.Key != "" {
			oldByKey[c.Key] = i
		}
	}
	newByKey := make(map[string]int, len(newKids))
	for i, c := range newKids {
		if c.Key != "" {
			newByKey[c.Key] = i
		}
	}

	matched := make([]bool, len(oldKids))
	for i, c := range oldKids {
		if c.Key == "" || oldByKey[c.Key] != i {
			continue
		}
		if _, ok := newByKey[c.Key]; ok {
			matched[i] = true
		}
	}

	// Removals, descending old position.
	for i := len(oldKids) - 1; i >= 0; i-- {
		if !matched[i] {
			d.ops = append(d.ops, Op{Kind: OpRemove, Index: idx, Pos: i})
		}
	}

	// Post-removal list: matched keys in old order. Target: same keys in
	// new order. Greedy left-to-right move simulation; positions left of
	// the cursor are already final, so each mismatch costs one move.
	current := make([]string, 0, len(oldKids))
	for i, c := range oldKids {
		if matched[i] {
			current = append(current, c.Key)
		}
	}
	target := make([]string, 0, len(current))
	for i, c := range newKids {
		if c.Key != "" && newByKey[c.Key] == i {
			if oi, ok := oldByKey[c.Key]; ok && matched[oi] {
				target = append(target, c.Key)
			}
		}
	}

	var moves []Move
	for t := 0; t < len(target); t++ {
		if current[t] == target[t] {
			continue
		}
		from := t
		for f := t + 1; f < len(current); f++ {
			if current[f] == target[t] {
				from = f
				break
			}
		}
		moves = append(moves, Move{From: from, To: t})
		key := current[from]
		copy(current[t+1:from+1], current[t:from])
		current[t] = key
	}
	if len(moves) > 0 {
		d.ops = append(d.ops, Op{Kind: OpReorder, Index: idx, Moves: moves})
	}

	// Insertions at final positions, ascending.
	for i, c := range newKids {
		if !isMatchedNew(c, i, oldByKey, newByKey, matched) {
			d.ops = append(d.ops, Op{Kind: OpInsert, Index: idx, Pos: i, Node: c})
		}
	}

	// Recursive diffs for matched pairs, in new order. The descent child
	// position refers to the child list after the structural ops above, so
	// it equals the new-list position.
	oldIdx := make([]int, len(oldKids))
	childIdx := idx + 1
	for i, c := range oldKids {
		oldIdx[i] = childIdx
		childIdx += c.Count()
	}
	for i, c := range newKids {
		if !isMatchedNew(c, i, oldByKey, newByKey, matched) {
			continue
		}
		oi := oldByKey[c.Key]
		d.child(oldKids[oi], c, oldIdx[oi], idx, i)
	}
}

// child diffs one matched pair, splicing a descent marker in front of the
// pair's ops when it produced any.
func (d *differ) child(oc, nc *VNode, childIdx, parentIdx, pos int) {
	mark := len(d.ops)
	d.node(oc, nc, childIdx)
	if len(d.ops) == mark {
		return
	}
	d.ops = append(d.ops, Op{})
	copy(d.ops[mark+1:], d.ops[mark:])
	d.ops[mark] = Op{Kind: OpRecurse, Index: parentIdx, Child: pos}
}

func isMatchedNew(c *VNode, pos int, oldByKey, newByKey map[string]int, matched []bool) bool {
	if c.Key == "" || newByKey[c.Key] != pos {
		return false
	}
	oi, ok := oldByKey[c.Key]
	return ok && matched[oi]
}

// hasKeys returns true if any child carries a reconciliation key.
func hasKeys(children []*VNode) bool {
	for _, child := range children {
		if child != nil && child.Key != "" {
			return true
		}
	}
	return false
}
