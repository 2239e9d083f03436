package protocol

import (
	"testing"

	"github.com/loom-ui/loom/pkg/vdom"
)

func TestNodeTreeRoundTrip(t *testing.T) {
	tree := vdom.Div(vdom.Class("app"), vdom.Style(vdom.Css("color", "red"), vdom.Css("margin", "0")),
		vdom.Span(vdom.Text("hello")),
		vdom.Input(vdom.Type("text"), vdom.Value("typed")),
	)

	e := NewEncoder()
	EncodeNode(e, tree)
	got, err := DecodeNode(NewDecoder(e.Bytes()))
	if err != nil {
		t.Fatal(err)
	}

	if got.Tag != "div" || len(got.Children) != 2 {
		t.Fatalf("root = %+v", got)
	}
	if got.Props[0].Kind != vdom.PropAttr || got.Props[0].Name != "class" || got.Props[0].Value != "app" {
		t.Errorf("class prop = %+v", got.Props[0])
	}
	styles := got.Props[1].Styles
	if len(styles) != 2 || styles[0] != (vdom.StyleDecl{Property: "color", Value: "red"}) {
		t.Errorf("styles = %+v", styles)
	}
	span := got.Children[0]
	if span.Tag != "span" || span.Children[0].Text != "hello" {
		t.Errorf("span = %+v", span)
	}
	input := got.Children[1]
	if input.Props[1].Kind != vdom.PropValue || input.Props[1].Value != "typed" {
		t.Errorf("value prop = %+v", input.Props[1])
	}
}

func TestNodeKeysSurvive(t *testing.T) {
	tree := vdom.Div(
		vdom.Keyed("a", vdom.Li(vdom.Text("a"))),
		vdom.Keyed("b", vdom.Li(vdom.Text("b"))),
	)
	e := NewEncoder()
	EncodeNode(e, tree)
	got, err := DecodeNode(NewDecoder(e.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if got.Children[0].Key != "a" || got.Children[1].Key != "b" {
		t.Errorf("keys = %q, %q", got.Children[0].Key, got.Children[1].Key)
	}
}

func TestNodeEventCarriesNameAndOptions(t *testing.T) {
	calls := 0
	tree := vdom.Button(vdom.On("click", vdom.Options{PreventDefault: true}, func(vdom.RawEvent) (vdom.Msg, error) {
		calls++
		return nil, nil
	}))

	e := NewEncoder()
	EncodeNode(e, tree)
	got, err := DecodeNode(NewDecoder(e.Bytes()))
	if err != nil {
		t.Fatal(err)
	}

	p := got.Props[0]
	if p.Kind != vdom.PropEvent || p.Name != "click" {
		t.Fatalf("prop = %+v", p)
	}
	if !p.Options.PreventDefault || p.Options.StopPropagation {
		t.Errorf("options = %+v", p.Options)
	}
	// Decoders are process-local and never cross the wire.
	if p.Decoder != nil {
		t.Error("decoded event must have no decoder")
	}
	if calls != 0 {
		t.Error("encoding must not invoke the decoder")
	}
}

func TestNodeResolvesThunks(t *testing.T) {
	builds := 0
	tree := vdom.Lazy("fp", func() *vdom.VNode {
		builds++
		return vdom.Div(vdom.Text("built"))
	})

	e := NewEncoder()
	EncodeNode(e, tree)
	got, err := DecodeNode(NewDecoder(e.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if builds != 1 {
		t.Errorf("built %d times", builds)
	}
	if got.Kind != vdom.KindElement || got.Tag != "div" {
		t.Errorf("got %+v", got)
	}
}

func TestNodeNilEncodesAsEmptyText(t *testing.T) {
	e := NewEncoder()
	EncodeNode(e, nil)
	got, err := DecodeNode(NewDecoder(e.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != vdom.KindText || got.Text != "" {
		t.Errorf("got %+v", got)
	}
}

func TestNodeRejectsGarbage(t *testing.T) {
	if _, err := DecodeNode(NewDecoder([]byte{0x7F})); err == nil {
		t.Error("unknown node kind must fail")
	}
	if _, err := DecodeNode(NewDecoder(nil)); err == nil {
		t.Error("empty buffer must fail")
	}
}
