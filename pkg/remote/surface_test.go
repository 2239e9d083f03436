package remote

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	loomerr "github.com/loom-ui/loom/internal/errors"
	"github.com/loom-ui/loom/pkg/host"
	"github.com/loom-ui/loom/pkg/protocol"
	"github.com/loom-ui/loom/pkg/render"
	"github.com/loom-ui/loom/pkg/vdom"
)

// collect returns a surface whose flushed frames land in the returned slice.
func collect() (*Surface, *[][]byte) {
	var frames [][]byte
	s := NewSurface(func(b []byte) error {
		frames = append(frames, b)
		return nil
	})
	return s, &frames
}

// decodeBatch unwraps one frame and decodes its op batch.
func decodeBatch(t *testing.T, frame []byte) []protocol.WireOp {
	t.Helper()
	f, err := protocol.ReadFrame(bytes.NewReader(frame))
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if f.Type != protocol.FrameOps {
		t.Fatalf("frame type = %s", f.Type)
	}
	ops, err := protocol.DecodeOps(protocol.NewDecoder(f.Payload))
	if err != nil {
		t.Fatalf("decode ops: %v", err)
	}
	return ops
}

func TestSurfaceBuffersUntilFlush(t *testing.T) {
	s, frames := collect()

	div, err := s.CreateElement("div")
	if err != nil {
		t.Fatal(err)
	}
	text, _ := s.CreateText("hi")
	_ = s.InsertChild(div, 0, text)
	_ = s.Mount(div)

	if s.Pending() != 4 {
		t.Errorf("pending = %d", s.Pending())
	}
	if len(*frames) != 0 {
		t.Error("nothing should be sent before Flush")
	}

	if err := s.Flush(); err != nil {
		t.Fatal(err)
	}
	if s.Pending() != 0 {
		t.Errorf("pending after flush = %d", s.Pending())
	}
	if len(*frames) != 1 {
		t.Fatalf("frames = %d", len(*frames))
	}

	ops := decodeBatch(t, (*frames)[0])
	wantKinds := []protocol.WireOpKind{
		protocol.WireCreateElement, protocol.WireCreateText,
		protocol.WireInsertChild, protocol.WireMount,
	}
	if len(ops) != len(wantKinds) {
		t.Fatalf("decoded %d ops", len(ops))
	}
	for i, k := range wantKinds {
		if ops[i].Kind != k {
			t.Errorf("op %d = %s, want %s", i, ops[i].Kind, k)
		}
	}
	if ops[0].Name != "div" || ops[1].Text != "hi" {
		t.Errorf("ops = %+v", ops[:2])
	}
}

func TestSurfaceEmptyFlushSendsNothing(t *testing.T) {
	s, frames := collect()
	if err := s.Flush(); err != nil {
		t.Fatal(err)
	}
	if len(*frames) != 0 {
		t.Error("empty flush must not send a frame")
	}
}

func TestSurfaceRejectsEmptyTag(t *testing.T) {
	s, _ := collect()
	_, err := s.CreateElement("")
	if !errors.Is(err, loomerr.New(loomerr.CodeInvalidTag)) {
		t.Errorf("err = %v", err)
	}
	if s.Pending() != 0 {
		t.Error("failed create must not buffer an op")
	}
}

func TestSurfaceRejectsForeignHandle(t *testing.T) {
	s, _ := collect()
	own, _ := s.CreateElement("div")
	foreign := host.NewMem()
	alien, _ := foreign.CreateElement("div")
	buffered := s.Pending()

	calls := map[string]func() error{
		"SetText":      func() error { return s.SetText(alien, "x") },
		"SetAttr":      func() error { return s.SetAttr(alien, "id", "x") },
		"SetAttrNS":    func() error { return s.SetAttrNS(alien, "ns", "id", "x") },
		"RemoveAttr":   func() error { return s.RemoveAttr(alien, "id") },
		"RemoveAttrNS": func() error { return s.RemoveAttrNS(alien, "ns", "id") },
		"SetProp":      func() error { return s.SetProp(alien, "value", "x") },
		"RemoveProp":   func() error { return s.RemoveProp(alien, "value") },
		"SetStyle":     func() error { return s.SetStyle(alien, "color", "red") },
		"RemoveStyle":  func() error { return s.RemoveStyle(alien, "color") },
		"InsertChild":  func() error { return s.InsertChild(alien, 0, own) },
		"InsertChild child": func() error { return s.InsertChild(own, 0, alien) },
		"RemoveChild":  func() error { return s.RemoveChild(alien, 0) },
		"MoveChild":    func() error { return s.MoveChild(alien, 0, 1) },
		"ReplaceChild": func() error { return s.ReplaceChild(alien, 0, own) },
		"ReplaceChild child": func() error { return s.ReplaceChild(own, 0, alien) },
		"AttachListener": func() error {
			_, err := s.AttachListener(alien, "click", host.ListenerOptions{}, func(any) {})
			return err
		},
		"Mount":   func() error { return s.Mount(alien) },
		"Destroy": func() error { return s.Destroy(alien) },
	}

	for name, call := range calls {
		if err := call(); !errors.Is(err, loomerr.New(loomerr.CodeUnknownNode)) {
			t.Errorf("%s: err = %v, want unknown node", name, err)
		}
	}
	if s.Pending() != buffered {
		t.Errorf("rejected calls buffered ops: pending = %d, want %d", s.Pending(), buffered)
	}
}

func TestSurfaceSendFailureSurfaces(t *testing.T) {
	s := NewSurface(func([]byte) error { return fmt.Errorf("conn closed") })
	h, _ := s.CreateElement("div")
	_ = s.Mount(h)
	if err := s.Flush(); err == nil {
		t.Error("send failure must propagate")
	}
}

func TestSurfaceDispatch(t *testing.T) {
	s, _ := collect()
	btn, _ := s.CreateElement("button")

	var got []any
	lh, err := s.AttachListener(btn, "click", host.ListenerOptions{PreventDefault: true}, func(ev any) {
		got = append(got, ev)
	})
	if err != nil {
		t.Fatal(err)
	}

	ev := &protocol.Event{Node: btn.(uint64), Name: "click"}
	if !s.Dispatch(ev) {
		t.Fatal("dispatch found no listener")
	}
	if len(got) != 1 || got[0] != ev {
		t.Errorf("got %v", got)
	}

	if s.Dispatch(&protocol.Event{Node: btn.(uint64), Name: "input"}) {
		t.Error("wrong event name must not dispatch")
	}

	_ = s.DetachListener(btn, lh)
	if s.Dispatch(ev) {
		t.Error("detached listener must not fire")
	}
}

func TestSurfaceListenOpCarriesOptions(t *testing.T) {
	s, frames := collect()
	btn, _ := s.CreateElement("button")
	_, _ = s.AttachListener(btn, "submit", host.ListenerOptions{PreventDefault: true, StopPropagation: true}, func(any) {})
	_ = s.Flush()

	ops := decodeBatch(t, (*frames)[0])
	listen := ops[len(ops)-1]
	if listen.Kind != protocol.WireListen || listen.Name != "submit" {
		t.Fatalf("op = %+v", listen)
	}
	if listen.Opts != protocol.ListenPreventDefault|protocol.ListenStopPropagation {
		t.Errorf("opts = %#x", listen.Opts)
	}
}

func TestSurfaceDestroyPrunesListeners(t *testing.T) {
	s, _ := collect()
	btn, _ := s.CreateElement("button")
	_, _ = s.AttachListener(btn, "click", host.ListenerOptions{}, func(any) {})
	_ = s.Destroy(btn)

	if s.Dispatch(&protocol.Event{Node: btn.(uint64), Name: "click"}) {
		t.Error("destroyed node must not keep listeners")
	}
}

func TestSurfaceFlushObserver(t *testing.T) {
	var observed int
	s := NewSurface(func([]byte) error { return nil }, WithFlushObserver(func(n int) { observed = n }))
	h, _ := s.CreateElement("div")
	_ = s.Mount(h)
	_ = s.Flush()
	if observed == 0 {
		t.Error("observer should see the encoded frame size")
	}
}

// TestRemoteRenderMatchesLocal renders the same tree through the remote
// surface and through a local Mem, replays the decoded ops onto a second
// Mem, and compares the HTML. The wire must be a faithful transport.
func TestRemoteRenderMatchesLocal(t *testing.T) {
	tree := func() *vdom.VNode {
		return vdom.Div(vdom.Class("app"), vdom.Style(vdom.Css("color", "red")),
			vdom.Span(vdom.Text("hello")),
			vdom.Input(vdom.Type("text"), vdom.Value("v")),
		)
	}

	// Local render.
	local := host.NewMem()
	lr := render.NewRenderer(render.Config{Surface: local})
	if _, err := lr.Mount(tree()); err != nil {
		t.Fatal(err)
	}

	// Remote render, captured and replayed.
	s, frames := collect()
	rr := render.NewRenderer(render.Config{Surface: s})
	if _, err := rr.Mount(tree()); err != nil {
		t.Fatal(err)
	}
	if err := s.Flush(); err != nil {
		t.Fatal(err)
	}

	display := host.NewMem()
	replay(t, display, decodeBatch(t, (*frames)[0]))

	if got, want := display.HTML(), local.HTML(); got != want {
		t.Errorf("replayed HTML:\n got %s\nwant %s", got, want)
	}
}

// replay applies a decoded op batch to a surface, the way a display would.
func replay(t *testing.T, dst host.Surface, ops []protocol.WireOp) {
	t.Helper()
	nodes := make(map[uint64]host.Handle)
	node := func(id uint64) host.Handle {
		h, ok := nodes[id]
		if !ok {
			t.Fatalf("unknown node id %d", id)
		}
		return h
	}

	for _, op := range ops {
		var err error
		switch op.Kind {
		case protocol.WireCreateElement:
			nodes[op.Node], err = dst.CreateElement(op.Name)
		case protocol.WireCreateText:
			nodes[op.Node], err = dst.CreateText(op.Text)
		case protocol.WireSetText:
			err = dst.SetText(node(op.Node), op.Text)
		case protocol.WireSetAttr:
			err = dst.SetAttr(node(op.Node), op.Name, op.Text)
		case protocol.WireSetAttrNS:
			err = dst.SetAttrNS(node(op.Node), op.NS, op.Name, op.Text)
		case protocol.WireRemoveAttr:
			err = dst.RemoveAttr(node(op.Node), op.Name)
		case protocol.WireSetProp:
			err = dst.SetProp(node(op.Node), op.Name, op.Value)
		case protocol.WireRemoveProp:
			err = dst.RemoveProp(node(op.Node), op.Name)
		case protocol.WireSetStyle:
			err = dst.SetStyle(node(op.Node), op.Name, op.Text)
		case protocol.WireRemoveStyle:
			err = dst.RemoveStyle(node(op.Node), op.Name)
		case protocol.WireInsertChild:
			err = dst.InsertChild(node(op.Node), op.Pos, node(op.Child))
		case protocol.WireRemoveChild:
			err = dst.RemoveChild(node(op.Node), op.Pos)
		case protocol.WireMoveChild:
			err = dst.MoveChild(node(op.Node), op.Pos, op.Pos2)
		case protocol.WireReplaceChild:
			err = dst.ReplaceChild(node(op.Node), op.Pos, node(op.Child))
		case protocol.WireListen:
			_, err = dst.AttachListener(node(op.Node), op.Name, host.ListenerOptions{}, func(any) {})
		case protocol.WireMount:
			err = dst.Mount(node(op.Node))
		case protocol.WireDestroy:
			err = dst.Destroy(node(op.Node))
		default:
			t.Fatalf("unhandled op %s", op.Kind)
		}
		if err != nil {
			t.Fatalf("replay %s: %v", op.Kind, err)
		}
	}
}
