package render

import (
	"errors"
	"fmt"
	"testing"

	loomerr "github.com/loom-ui/loom/internal/errors"
	"github.com/loom-ui/loom/pkg/host"
	"github.com/loom-ui/loom/pkg/vdom"
)

// sink collects messages and errors for assertions.
type sink struct {
	msgs []vdom.Msg
	errs []error
}

func (s *sink) enqueue(m vdom.Msg) { s.msgs = append(s.msgs, m) }
func (s *sink) fail(err error)     { s.errs = append(s.errs, err) }

func newTestRenderer() (*Renderer, *host.Mem, *sink) {
	m := host.NewMem()
	s := &sink{}
	r := NewRenderer(Config{
		Surface:  m,
		Messages: MessageSinkFunc(s.enqueue),
		Errors:   s.fail,
	})
	return r, m, s
}

func TestMountRendersTree(t *testing.T) {
	r, m, _ := newTestRenderer()

	tree := vdom.Div(vdom.Class("box"), vdom.Style(vdom.Css("color", "red")),
		vdom.Span(vdom.Text("hello")),
		vdom.Input(vdom.Type("text"), vdom.Value("v")),
	)
	live, err := r.Mount(tree)
	if err != nil {
		t.Fatalf("mount: %v", err)
	}

	want := `<div class="box" style="color: red"><span>hello</span><input type="text" prop:value="v"></input></div>`
	if got := m.HTML(); got != want {
		t.Errorf("HTML:\n got %s\nwant %s", got, want)
	}
	if live.Count() != 4 {
		t.Errorf("live count = %d, want 4", live.Count())
	}
}

func TestMountResolvesThunks(t *testing.T) {
	r, m, _ := newTestRenderer()
	tree := vdom.Lazy("fp", func() *vdom.VNode {
		return vdom.Div(vdom.Text("built"))
	})
	if _, err := r.Mount(tree); err != nil {
		t.Fatal(err)
	}
	if got := m.HTML(); got != "<div>built</div>" {
		t.Errorf("HTML = %s", got)
	}
}

func TestRenderNilBecomesEmptyText(t *testing.T) {
	r, m, _ := newTestRenderer()
	if _, err := r.Mount(nil); err != nil {
		t.Fatal(err)
	}
	if got := m.HTML(); got != "" {
		t.Errorf("HTML = %q, want empty text node", got)
	}
}

func TestMountEmptyTagFails(t *testing.T) {
	r, m, _ := newTestRenderer()
	_, err := r.Mount(vdom.CustomElement(""))
	if !errors.Is(err, loomerr.New(loomerr.CodeInvalidTag)) {
		t.Errorf("err = %v, want invalid tag", err)
	}
	if m.Root() != nil {
		t.Error("nothing must be mounted on failure")
	}
}

func TestRenderFailureDestroysPartialTree(t *testing.T) {
	r, m, _ := newTestRenderer()
	m.FailCreate = func(tag string) error {
		if tag == "span" {
			return fmt.Errorf("host refused %s", tag)
		}
		return nil
	}

	tree := vdom.Div(
		vdom.Button(vdom.On("click", vdom.Options{}, func(vdom.RawEvent) (vdom.Msg, error) { return nil, nil })),
		vdom.Span(),
	)
	_, err := r.Mount(tree)
	if !errors.Is(err, loomerr.New(loomerr.CodeInvalidTag)) {
		t.Fatalf("err = %v, want construction failure", err)
	}
	if m.Root() != nil {
		t.Error("nothing must be mounted on failure")
	}
}

func TestListenerDecodesToMessage(t *testing.T) {
	r, m, s := newTestRenderer()

	tree := vdom.Button(vdom.On("click", vdom.Options{}, func(raw vdom.RawEvent) (vdom.Msg, error) {
		return fmt.Sprintf("clicked:%v", raw), nil
	}))
	live, err := r.Mount(tree)
	if err != nil {
		t.Fatal(err)
	}

	if n := m.Fire(live.Handle, "click", 42); n != 1 {
		t.Fatalf("fired %d listeners", n)
	}
	if len(s.msgs) != 1 || s.msgs[0] != "clicked:42" {
		t.Errorf("msgs = %v", s.msgs)
	}
	if len(s.errs) != 0 {
		t.Errorf("unexpected errors: %v", s.errs)
	}
}

func TestListenerDecodeFailureReported(t *testing.T) {
	r, m, s := newTestRenderer()

	decodeErr := errors.New("wrong shape")
	tree := vdom.Button(vdom.On("click", vdom.Options{}, func(vdom.RawEvent) (vdom.Msg, error) {
		return nil, decodeErr
	}))
	live, _ := r.Mount(tree)

	m.Fire(live.Handle, "click", nil)

	if len(s.msgs) != 0 {
		t.Errorf("failed decode must not produce a message, got %v", s.msgs)
	}
	if len(s.errs) != 1 {
		t.Fatalf("errs = %v", s.errs)
	}
	if !errors.Is(s.errs[0], loomerr.New(loomerr.CodeDecode)) || !errors.Is(s.errs[0], decodeErr) {
		t.Errorf("err = %v, want decode error wrapping the cause", s.errs[0])
	}
}

func TestDecodeErrorOrderPreserved(t *testing.T) {
	r, m, s := newTestRenderer()

	n := 0
	tree := vdom.Button(vdom.On("click", vdom.Options{}, func(vdom.RawEvent) (vdom.Msg, error) {
		n++
		return nil, fmt.Errorf("failure %d", n)
	}))
	live, _ := r.Mount(tree)

	m.Fire(live.Handle, "click", nil)
	m.Fire(live.Handle, "click", nil)

	if len(s.errs) != 2 {
		t.Fatalf("errs = %v", s.errs)
	}
	if !errors.Is(s.errs[0], loomerr.New(loomerr.CodeDecode)) {
		t.Errorf("first err = %v", s.errs[0])
	}
}

func TestDestroyDetachesListeners(t *testing.T) {
	r, m, _ := newTestRenderer()

	tree := vdom.Div(vdom.Button(vdom.On("click", vdom.Options{}, func(vdom.RawEvent) (vdom.Msg, error) {
		return nil, nil
	})))
	live, _ := r.Mount(tree)
	btn := live.Children[0]

	if n := m.ListenerCount(btn.Handle, "click"); n != 1 {
		t.Fatalf("listeners before destroy = %d", n)
	}
	r.Destroy(live)
	if n := m.Fire(btn.Handle, "click", nil); n != 0 {
		t.Errorf("fired %d listeners on destroyed subtree", n)
	}
}

func TestLiveNodeIsText(t *testing.T) {
	r, _, _ := newTestRenderer()
	live, _ := r.Mount(vdom.Div(vdom.Text("x")))
	if live.IsText() {
		t.Error("div is not text")
	}
	if !live.Children[0].IsText() {
		t.Error("child should be text")
	}
}
