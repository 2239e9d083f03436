package vtest

import (
	"strings"
	"testing"

	"github.com/loom-ui/loom/pkg/host"
	"github.com/loom-ui/loom/pkg/render"
	"github.com/loom-ui/loom/pkg/vdom"
)

// Harness mounts a tree on an in-memory surface and drives it the way a
// running program would: events fire through attached listeners, updates go
// through diff and patch. Messages and decode errors are collected for
// assertion.
type Harness struct {
	t *testing.T

	surface  *host.Mem
	renderer *render.Renderer
	patcher  *render.Patcher

	tree *vdom.VNode
	live *render.LiveNode

	msgs []vdom.Msg
	errs []error
}

// NewHarness mounts tree and returns the harness. Mount failures fail the
// test immediately.
func NewHarness(t *testing.T, tree *vdom.VNode) *Harness {
	t.Helper()
	h := &Harness{t: t, surface: host.NewMem()}
	h.renderer = render.NewRenderer(render.Config{
		Surface:  h.surface,
		Messages: render.MessageSinkFunc(func(msg vdom.Msg) { h.msgs = append(h.msgs, msg) }),
		Errors:   func(err error) { h.errs = append(h.errs, err) },
	})
	h.patcher = render.NewPatcher(h.renderer)

	live, err := h.renderer.Mount(tree)
	if err != nil {
		t.Fatalf("mount failed: %v", err)
	}
	h.tree = tree
	h.live = live
	return h
}

// Surface exposes the in-memory surface for journal and listener asserts.
func (h *Harness) Surface() *host.Mem {
	return h.surface
}

// Render diffs the mounted tree against next and applies the patch. Patch
// failures fail the test.
func (h *Harness) Render(next *vdom.VNode) {
	h.t.Helper()
	patch := vdom.Diff(h.tree, next)
	live, err := h.patcher.Apply(h.live, patch)
	if err != nil {
		h.t.Fatalf("patch failed: %v", err)
	}
	h.tree = next
	h.live = live
}

// Fire delivers payload to every listener for event in the mounted tree and
// returns the number of listeners hit.
func (h *Harness) Fire(event string, payload any) int {
	fired := 0
	var walk func(ln *render.LiveNode)
	walk = func(ln *render.LiveNode) {
		fired += h.surface.Fire(ln.Handle, event, payload)
		for _, c := range ln.Children {
			walk(c)
		}
	}
	walk(h.live)
	return fired
}

// Messages returns the messages decoded from fired events, in order.
func (h *Harness) Messages() []vdom.Msg {
	return h.msgs
}

// Errors returns the decode errors reported so far.
func (h *Harness) Errors() []error {
	return h.errs
}

// HTML serializes the surface's mounted tree.
func (h *Harness) HTML() string {
	return h.surface.HTML()
}

// ExpectHTML asserts the serialized output contains want.
func (h *Harness) ExpectHTML(want string) {
	h.t.Helper()
	got := h.HTML()
	if !strings.Contains(got, want) {
		h.t.Errorf("expected output to contain %q, got:\n%s", want, truncate(got, 500))
	}
}
