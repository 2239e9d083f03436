package protocol

import (
	"reflect"
	"testing"
)

func TestOpBatchRoundTrip(t *testing.T) {
	ops := []WireOp{
		{Kind: WireCreateElement, Node: 1, Name: "div"},
		{Kind: WireCreateText, Node: 2, Text: "hello"},
		{Kind: WireSetAttr, Node: 1, Name: "class", Text: "box"},
		{Kind: WireSetAttrNS, Node: 1, NS: "http://www.w3.org/1999/xlink", Name: "href", Text: "#icon"},
		{Kind: WireSetProp, Node: 1, Name: "value", Value: "typed"},
		{Kind: WireSetProp, Node: 1, Name: "count", Value: int64(-3)},
		{Kind: WireSetStyle, Node: 1, Name: "color", Text: "red"},
		{Kind: WireRemoveAttr, Node: 1, Name: "hidden"},
		{Kind: WireRemoveAttrNS, Node: 1, NS: "ns", Name: "old"},
		{Kind: WireRemoveProp, Node: 1, Name: "checked"},
		{Kind: WireRemoveStyle, Node: 1, Name: "opacity"},
		{Kind: WireInsertChild, Node: 1, Pos: 0, Child: 2},
		{Kind: WireMoveChild, Node: 1, Pos: 2, Pos2: 0},
		{Kind: WireReplaceChild, Node: 1, Pos: 1, Child: 7},
		{Kind: WireRemoveChild, Node: 1, Pos: 3},
		{Kind: WireListen, Node: 1, Name: "click", Opts: ListenPreventDefault | ListenStopPropagation},
		{Kind: WireUnlisten, Node: 1, Name: "input"},
		{Kind: WireSetText, Node: 2, Text: "updated"},
		{Kind: WireMount, Node: 1},
		{Kind: WireDestroy, Node: 1},
	}

	e := NewEncoder()
	EncodeOps(e, ops)
	got, err := DecodeOps(NewDecoder(e.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, ops) {
		for i := range ops {
			if i < len(got) && !reflect.DeepEqual(got[i], ops[i]) {
				t.Errorf("op %d (%s):\n got %+v\nwant %+v", i, ops[i].Kind, got[i], ops[i])
			}
		}
		if len(got) != len(ops) {
			t.Errorf("decoded %d ops, want %d", len(got), len(ops))
		}
	}
}

func TestOpEmptyBatch(t *testing.T) {
	e := NewEncoder()
	EncodeOps(e, nil)
	got, err := DecodeOps(NewDecoder(e.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got %d ops", len(got))
	}
}

func TestOpUnknownKindRejected(t *testing.T) {
	e := NewEncoder()
	e.WriteUvarint(1)
	e.WriteByte(0x7F)
	e.WriteUvarint(42)
	if _, err := DecodeOps(NewDecoder(e.Bytes())); err == nil {
		t.Fatal("expected error for unknown op kind")
	}
}

func TestOpKindString(t *testing.T) {
	kinds := map[WireOpKind]string{
		WireCreateElement: "create-element",
		WireMoveChild:     "move-child",
		WireListen:        "listen",
		WireDestroy:       "destroy",
	}
	for k, want := range kinds {
		if got := k.String(); got != want {
			t.Errorf("%#x = %s, want %s", byte(k), got, want)
		}
	}
}
