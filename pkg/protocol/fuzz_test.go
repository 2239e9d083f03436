package protocol

import (
	"bytes"
	"testing"
)

// Decoders must never panic or over-allocate on arbitrary input; they return
// an error and stop.

func FuzzDecodeOps(f *testing.F) {
	e := NewEncoder()
	EncodeOps(e, []WireOp{
		{Kind: WireCreateElement, Node: 1, Name: "div"},
		{Kind: WireSetProp, Node: 1, Name: "value", Value: "x"},
		{Kind: WireInsertChild, Node: 1, Pos: 0, Child: 2},
	})
	f.Add(e.Bytes())
	f.Add([]byte{})
	f.Add([]byte{0xFF, 0xFF, 0xFF, 0xFF})

	f.Fuzz(func(t *testing.T, data []byte) {
		ops, err := DecodeOps(NewDecoder(data))
		if err == nil && len(ops) > MaxCollectionCount {
			t.Errorf("decoded %d ops past the limit", len(ops))
		}
	})
}

func FuzzDecodeNode(f *testing.F) {
	e := NewEncoder()
	EncodeNode(e, nil)
	f.Add(e.Bytes())

	e.Reset()
	e.WriteByte(nodeElement)
	e.WriteString("div")
	e.WriteString("")
	e.WriteUvarint(0)
	e.WriteUvarint(0)
	f.Add(e.Bytes())

	f.Fuzz(func(t *testing.T, data []byte) {
		node, err := DecodeNode(NewDecoder(data))
		if err == nil && node == nil {
			t.Error("nil node without error")
		}
	})
}

func FuzzReadFrame(f *testing.F) {
	var buf bytes.Buffer
	_ = WriteFrame(&buf, FrameOps, []byte("payload"))
	f.Add(buf.Bytes())
	f.Add([]byte{byte(FrameOps), FlagContinued, 0, 0})

	f.Fuzz(func(t *testing.T, data []byte) {
		frame, err := ReadFrame(bytes.NewReader(data))
		if err == nil && len(frame.Payload) > MaxAllocation {
			t.Errorf("reassembled %d bytes past the cap", len(frame.Payload))
		}
	})
}
