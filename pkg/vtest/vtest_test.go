package vtest

import (
	"fmt"
	"testing"

	"github.com/loom-ui/loom/pkg/vdom"
)

func greeting(name string) *vdom.VNode {
	return vdom.Div(vdom.Class("greeting"),
		vdom.Span(vdom.Text("Hello, "+name)),
	)
}

func TestRenderToString(t *testing.T) {
	got := RenderToString(greeting("Ada"))
	want := `<div class="greeting"><span>Hello, Ada</span></div>`
	if got != want {
		t.Errorf("got %s", got)
	}
}

func TestRenderToStringBadTree(t *testing.T) {
	if got := RenderToString(vdom.CustomElement("")); got != "" {
		t.Errorf("got %q, want empty on render failure", got)
	}
}

func TestExpectHelpers(t *testing.T) {
	node := greeting("Ada")
	ExpectContains(t, node, "Hello, Ada")
	ExpectNotContains(t, node, "Goodbye")
	ExpectElement(t, node, "span")
	ExpectAttribute(t, node, "class", "greeting")
}

func TestHarnessEventToUpdate(t *testing.T) {
	view := func(count int) *vdom.VNode {
		return vdom.Div(
			vdom.Button(
				vdom.On("click", vdom.Options{}, func(vdom.RawEvent) (vdom.Msg, error) {
					return "inc", nil
				}),
				vdom.Text("+"),
			),
			vdom.Span(vdom.Text(fmt.Sprintf("count: %d", count))),
		)
	}

	h := NewHarness(t, view(0))
	h.ExpectHTML("count: 0")

	if fired := h.Fire("click", nil); fired != 1 {
		t.Fatalf("fired %d listeners", fired)
	}
	if msgs := h.Messages(); len(msgs) != 1 || msgs[0] != "inc" {
		t.Fatalf("msgs = %v", msgs)
	}

	h.Render(view(1))
	h.ExpectHTML("count: 1")
	if len(h.Errors()) != 0 {
		t.Errorf("errors = %v", h.Errors())
	}
}

func TestHarnessCollectsDecodeErrors(t *testing.T) {
	tree := vdom.Button(vdom.On("click", vdom.Options{}, func(vdom.RawEvent) (vdom.Msg, error) {
		return nil, fmt.Errorf("bad payload")
	}))

	h := NewHarness(t, tree)
	h.Fire("click", nil)

	if len(h.Messages()) != 0 {
		t.Errorf("msgs = %v", h.Messages())
	}
	if len(h.Errors()) != 1 {
		t.Errorf("errs = %v", h.Errors())
	}
}

func TestHarnessJournalAfterRender(t *testing.T) {
	list := func(items []string) *vdom.VNode {
		var lis []*vdom.VNode
		for _, it := range items {
			lis = append(lis, vdom.Keyed(it, vdom.Li(vdom.Text(it))))
		}
		return vdom.Ul(lis)
	}

	h := NewHarness(t, list([]string{"a", "b", "c"}))
	h.Surface().ResetJournal()

	h.Render(list([]string{"c", "a", "b"}))
	for _, entry := range h.Surface().Journal() {
		if entry == `createElement(li)` {
			t.Errorf("keyed reorder recreated a node:\n%v", h.Surface().Journal())
		}
	}
	h.ExpectHTML("<li>c</li><li>a</li><li>b</li>")
}
