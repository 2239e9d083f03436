package render

import (
	loomerr "github.com/loom-ui/loom/internal/errors"
	"github.com/loom-ui/loom/pkg/vdom"
)

// Patcher applies edit scripts to a live tree. Replace and insert render
// fresh subtrees through the Renderer, so construction failures surface
// before the first mutation.
type Patcher struct {
	r *Renderer
}

// NewPatcher creates a Patcher that renders new subtrees with r.
func NewPatcher(r *Renderer) *Patcher {
	return &Patcher{r: r}
}

// Apply applies patch to the live tree rendered from the diff's old tree
// and returns the (possibly new) root. The live tree itself mirrors the old
// tree's structure, so ops resolve against it directly; a size cross-check
// catches patches built from a different tree.
//
// Application order is the patch's op order; per parent that means
// removals, then moves, then insertions, then descents, matching the
// differ's emission contract. Every op index is validated before the first
// mutation, so a malformed patch returns a fatal patch error with the live
// tree untouched. A construction error while rendering replacement
// subtrees likewise leaves the tree untouched.
//
// A surface rejection during the mutation phase cannot be rolled back:
// earlier ops in the batch have already been applied. Those failures return
// a patch-aborted error; callers must re-render the previous tree to bring
// the display back to a known state.
func (p *Patcher) Apply(live *LiveNode, patch *vdom.Patch) (*LiveNode, error) {
	if patch.Empty() {
		return live, nil
	}
	if live == nil {
		return nil, loomerr.New(loomerr.CodePatchMismatch).Withf("nil live tree")
	}

	table := preorderTable(live)
	if patch.OldSize != len(table) {
		return live, loomerr.New(loomerr.CodePatchMismatch).
			Withf("patch built for %d nodes, live tree has %d", patch.OldSize, len(table))
	}
	if err := validateOps(table, patch); err != nil {
		return live, err
	}

	// Render every subtree the patch needs before touching the tree.
	rendered := make(map[int]*LiveNode)
	for i := range patch.Ops {
		op := &patch.Ops[i]
		if op.Kind != vdom.OpReplace && op.Kind != vdom.OpInsert {
			continue
		}
		ln, err := p.r.Render(op.Node)
		if err != nil {
			for _, r := range rendered {
				p.r.Destroy(r)
			}
			return live, err
		}
		rendered[i] = ln
	}

	root := live
	for i := range patch.Ops {
		op := &patch.Ops[i]
		target := table[op.Index]

		var err error
		switch op.Kind {
		case vdom.OpReplace:
			root, err = p.replace(root, target, rendered[i])

		case vdom.OpSetText:
			if err = p.r.surface.SetText(target.Handle, op.Text); err == nil {
				target.Text = op.Text
			}

		case vdom.OpAddProp:
			err = p.r.applyProp(target, op.Prop)

		case vdom.OpUpdateProp:
			err = p.updateProp(target, op.Prop)

		case vdom.OpRemoveProp:
			err = p.removeProp(target, op.Prop)

		case vdom.OpInsert:
			child := rendered[i]
			if err = p.r.surface.InsertChild(target.Handle, op.Pos, child.Handle); err == nil {
				child.parent = target
				target.Children = append(target.Children, nil)
				copy(target.Children[op.Pos+1:], target.Children[op.Pos:])
				target.Children[op.Pos] = child
			}

		case vdom.OpRemove:
			child := target.Children[op.Pos]
			if err = p.r.surface.RemoveChild(target.Handle, op.Pos); err == nil {
				target.Children = append(target.Children[:op.Pos], target.Children[op.Pos+1:]...)
				p.r.Destroy(child)
			}

		case vdom.OpReorder:
			for _, mv := range op.Moves {
				if err = p.r.surface.MoveChild(target.Handle, mv.From, mv.To); err != nil {
					break
				}
				child := target.Children[mv.From]
				rest := append(target.Children[:mv.From], target.Children[mv.From+1:]...)
				rest = append(rest, nil)
				copy(rest[mv.To+1:], rest[mv.To:])
				rest[mv.To] = child
				target.Children = rest
			}

		case vdom.OpRecurse:
			// Navigation marker: validated above, no mutation.
		}

		if err != nil {
			return root, loomerr.New(loomerr.CodePatchAborted).
				Withf("applying %s at index %d", op.Kind, op.Index).
				Wrap(err)
		}
	}

	return root, nil
}

// validateOps checks every index and position against a simulation of
// child-list sizes, failing fast before any mutation. Positions are checked
// in application order, so structural ops earlier in the script shift the
// bounds for later ones exactly as they will at apply time.
func validateOps(table []*LiveNode, patch *vdom.Patch) error {
	counts := make(map[int]int)
	childCount := func(i int) int {
		if c, ok := counts[i]; ok {
			return c
		}
		return len(table[i].Children)
	}

	for oi := range patch.Ops {
		op := &patch.Ops[oi]
		if op.Index < 0 || op.Index >= len(table) {
			return loomerr.New(loomerr.CodePatchIndex).
				Withf("op %d (%s) targets index %d, live tree has %d nodes", oi, op.Kind, op.Index, len(table))
		}
		c := childCount(op.Index)

		switch op.Kind {
		case vdom.OpInsert:
			if op.Pos < 0 || op.Pos > c {
				return loomerr.New(loomerr.CodePatchIndex).
					Withf("op %d inserts at %d, parent has %d children", oi, op.Pos, c)
			}
			counts[op.Index] = c + 1
		case vdom.OpRemove:
			if op.Pos < 0 || op.Pos >= c {
				return loomerr.New(loomerr.CodePatchIndex).
					Withf("op %d removes at %d, parent has %d children", oi, op.Pos, c)
			}
			counts[op.Index] = c - 1
		case vdom.OpReorder:
			for _, mv := range op.Moves {
				if mv.From < 0 || mv.From >= c || mv.To < 0 || mv.To >= c {
					return loomerr.New(loomerr.CodePatchIndex).
						Withf("op %d moves %d -> %d, parent has %d children", oi, mv.From, mv.To, c)
				}
			}
		case vdom.OpRecurse:
			if op.Child < 0 || op.Child >= c {
				return loomerr.New(loomerr.CodePatchIndex).
					Withf("op %d descends into child %d, parent has %d children", oi, op.Child, c)
			}
		}
	}
	return nil
}

// replace swaps target for a freshly rendered subtree, destroying the old
// subtree and its listeners. A root replace re-mounts.
func (p *Patcher) replace(root, target, fresh *LiveNode) (*LiveNode, error) {
	if target.parent == nil {
		if err := p.r.surface.Mount(fresh.Handle); err != nil {
			return root, err
		}
		p.r.Destroy(target)
		return fresh, nil
	}

	parent := target.parent
	pos := target.childPos()
	if err := p.r.surface.ReplaceChild(parent.Handle, pos, fresh.Handle); err != nil {
		return root, err
	}
	p.r.Destroy(target)
	fresh.parent = parent
	parent.Children[pos] = fresh
	return root, nil
}

// updateProp changes a property in place. Listener updates detach the old
// listener first; style updates clear declarations absent from the new
// block.
func (p *Patcher) updateProp(target *LiveNode, prop vdom.Property) error {
	switch prop.Kind {
	case vdom.PropEvent:
		p.detachEvent(target, prop.Name)
	case vdom.PropStyle:
		next := make(map[string]bool, len(prop.Styles))
		for _, d := range prop.Styles {
			next[d.Property] = true
		}
		for _, d := range target.styles {
			if !next[d.Property] {
				if err := p.r.surface.RemoveStyle(target.Handle, d.Property); err != nil {
					return err
				}
			}
		}
		target.styles = nil
	}
	return p.r.applyProp(target, prop)
}

// removeProp removes a property; prop is the old property as diffed.
func (p *Patcher) removeProp(target *LiveNode, prop vdom.Property) error {
	switch prop.Kind {
	case vdom.PropAttr:
		return p.r.surface.RemoveAttr(target.Handle, prop.Name)
	case vdom.PropAttrNS:
		return p.r.surface.RemoveAttrNS(target.Handle, prop.NS, prop.Name)
	case vdom.PropValue:
		return p.r.surface.RemoveProp(target.Handle, prop.Name)
	case vdom.PropStyle:
		for _, d := range prop.Styles {
			if err := p.r.surface.RemoveStyle(target.Handle, d.Property); err != nil {
				return err
			}
		}
		target.styles = nil
		return nil
	case vdom.PropEvent:
		p.detachEvent(target, prop.Name)
		return nil
	}
	return nil
}

func (p *Patcher) detachEvent(target *LiveNode, event string) {
	kept := target.listeners[:0]
	for _, l := range target.listeners {
		if l.event == event {
			_ = p.r.surface.DetachListener(target.Handle, l.handle)
			continue
		}
		kept = append(kept, l)
	}
	target.listeners = kept
}
