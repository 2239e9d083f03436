package protocol

import "fmt"

// WireOpKind identifies one primitive surface operation on the wire. The
// set mirrors host.Surface one to one so a remote display can replay a
// batch without knowing anything about diffing.
type WireOpKind byte

const (
	WireCreateElement WireOpKind = 0x01
	WireCreateText    WireOpKind = 0x02
	WireSetText       WireOpKind = 0x03
	WireSetAttr       WireOpKind = 0x04
	WireSetAttrNS     WireOpKind = 0x05
	WireRemoveAttr    WireOpKind = 0x06
	WireRemoveAttrNS  WireOpKind = 0x07
	WireSetProp       WireOpKind = 0x08
	WireRemoveProp    WireOpKind = 0x09
	WireSetStyle      WireOpKind = 0x0A
	WireRemoveStyle   WireOpKind = 0x0B
	WireInsertChild   WireOpKind = 0x0C
	WireRemoveChild   WireOpKind = 0x0D
	WireMoveChild     WireOpKind = 0x0E
	WireReplaceChild  WireOpKind = 0x0F
	WireListen        WireOpKind = 0x10
	WireUnlisten      WireOpKind = 0x11
	WireMount         WireOpKind = 0x12
	WireDestroy       WireOpKind = 0x13
)

// String returns the operation name.
func (k WireOpKind) String() string {
	switch k {
	case WireCreateElement:
		return "create-element"
	case WireCreateText:
		return "create-text"
	case WireSetText:
		return "set-text"
	case WireSetAttr:
		return "set-attr"
	case WireSetAttrNS:
		return "set-attr-ns"
	case WireRemoveAttr:
		return "remove-attr"
	case WireRemoveAttrNS:
		return "remove-attr-ns"
	case WireSetProp:
		return "set-prop"
	case WireRemoveProp:
		return "remove-prop"
	case WireSetStyle:
		return "set-style"
	case WireRemoveStyle:
		return "remove-style"
	case WireInsertChild:
		return "insert-child"
	case WireRemoveChild:
		return "remove-child"
	case WireMoveChild:
		return "move-child"
	case WireReplaceChild:
		return "replace-child"
	case WireListen:
		return "listen"
	case WireUnlisten:
		return "unlisten"
	case WireMount:
		return "mount"
	case WireDestroy:
		return "destroy"
	default:
		return fmt.Sprintf("unknown(0x%02x)", byte(k))
	}
}

// Listener option bits for WireListen.
const (
	ListenStopPropagation byte = 0x01
	ListenPreventDefault  byte = 0x02
)

// WireOp is one primitive operation. Node is the target node id; fields
// beyond it are populated per kind.
type WireOp struct {
	Kind WireOpKind
	Node uint64

	// NS, Name, Text cover attribute, property, style and event names.
	NS   string
	Name string
	Text string

	// Value is the dynamic payload for set-prop.
	Value any

	// Pos and Pos2 are child positions. MoveChild reads Pos before removal
	// and Pos2 after; ReplaceChild uses Pos only.
	Pos  int
	Pos2 int

	// Child is the id of the node being inserted, moved in, or replacing.
	Child uint64

	// Opts carries listener option bits for listen.
	Opts byte
}

// EncodeOps encodes a batch of ops as one FrameOps payload.
func EncodeOps(e *Encoder, ops []WireOp) {
	e.WriteUvarint(uint64(len(ops)))
	for i := range ops {
		encodeOp(e, &ops[i])
	}
}

func encodeOp(e *Encoder, op *WireOp) {
	e.WriteByte(byte(op.Kind))
	e.WriteUvarint(op.Node)

	switch op.Kind {
	case WireCreateElement:
		e.WriteString(op.Name)
	case WireCreateText, WireSetText:
		e.WriteString(op.Text)
	case WireSetAttr:
		e.WriteString(op.Name)
		e.WriteString(op.Text)
	case WireSetAttrNS:
		e.WriteString(op.NS)
		e.WriteString(op.Name)
		e.WriteString(op.Text)
	case WireRemoveAttr, WireRemoveProp, WireRemoveStyle, WireUnlisten:
		e.WriteString(op.Name)
	case WireRemoveAttrNS:
		e.WriteString(op.NS)
		e.WriteString(op.Name)
	case WireSetProp:
		e.WriteString(op.Name)
		writeValue(e, op.Value)
	case WireSetStyle:
		e.WriteString(op.Name)
		e.WriteString(op.Text)
	case WireInsertChild:
		e.WriteUvarint(uint64(op.Pos))
		e.WriteUvarint(op.Child)
	case WireRemoveChild:
		e.WriteUvarint(uint64(op.Pos))
	case WireMoveChild:
		e.WriteUvarint(uint64(op.Pos))
		e.WriteUvarint(uint64(op.Pos2))
	case WireReplaceChild:
		e.WriteUvarint(uint64(op.Pos))
		e.WriteUvarint(op.Child)
	case WireListen:
		e.WriteString(op.Name)
		e.WriteByte(op.Opts)
	case WireMount, WireDestroy:
		// Node id only.
	}
}

// DecodeOps decodes a FrameOps payload.
func DecodeOps(d *Decoder) ([]WireOp, error) {
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	ops := make([]WireOp, count)
	for i := range ops {
		if err := decodeOp(d, &ops[i]); err != nil {
			return nil, fmt.Errorf("protocol: op %d: %w", i, err)
		}
	}
	return ops, nil
}

func decodeOp(d *Decoder, op *WireOp) error {
	kind, err := d.ReadByte()
	if err != nil {
		return err
	}
	op.Kind = WireOpKind(kind)
	if op.Node, err = d.ReadUvarint(); err != nil {
		return err
	}

	switch op.Kind {
	case WireCreateElement:
		op.Name, err = d.ReadString()
	case WireCreateText, WireSetText:
		op.Text, err = d.ReadString()
	case WireSetAttr:
		if op.Name, err = d.ReadString(); err == nil {
			op.Text, err = d.ReadString()
		}
	case WireSetAttrNS:
		if op.NS, err = d.ReadString(); err == nil {
			if op.Name, err = d.ReadString(); err == nil {
				op.Text, err = d.ReadString()
			}
		}
	case WireRemoveAttr, WireRemoveProp, WireRemoveStyle, WireUnlisten:
		op.Name, err = d.ReadString()
	case WireRemoveAttrNS:
		if op.NS, err = d.ReadString(); err == nil {
			op.Name, err = d.ReadString()
		}
	case WireSetProp:
		if op.Name, err = d.ReadString(); err == nil {
			op.Value, err = readValue(d)
		}
	case WireSetStyle:
		if op.Name, err = d.ReadString(); err == nil {
			op.Text, err = d.ReadString()
		}
	case WireInsertChild:
		var pos, child uint64
		if pos, err = d.ReadUvarint(); err == nil {
			if child, err = d.ReadUvarint(); err == nil {
				op.Pos, op.Child = int(pos), child
			}
		}
	case WireRemoveChild:
		var pos uint64
		if pos, err = d.ReadUvarint(); err == nil {
			op.Pos = int(pos)
		}
	case WireMoveChild:
		var from, to uint64
		if from, err = d.ReadUvarint(); err == nil {
			if to, err = d.ReadUvarint(); err == nil {
				op.Pos, op.Pos2 = int(from), int(to)
			}
		}
	case WireReplaceChild:
		var pos, child uint64
		if pos, err = d.ReadUvarint(); err == nil {
			if child, err = d.ReadUvarint(); err == nil {
				op.Pos, op.Child = int(pos), child
			}
		}
	case WireListen:
		if op.Name, err = d.ReadString(); err == nil {
			op.Opts, err = d.ReadByte()
		}
	case WireMount, WireDestroy:
		// Node id only.
	default:
		return fmt.Errorf("unknown op kind 0x%02x", kind)
	}
	return err
}
