package protocol

import (
	"fmt"

	"github.com/loom-ui/loom/pkg/vdom"
)

// Node kind tags for tree snapshots.
const (
	nodeElement byte = 0x01
	nodeText    byte = 0x02
)

// Property kind tags. Event listeners carry name and options only; decoders
// are process-local and reattach on resync.
const (
	propAttr   byte = 0x01
	propAttrNS byte = 0x02
	propValue  byte = 0x03
	propStyle  byte = 0x04
	propEvent  byte = 0x05
)

// EncodeNode encodes a VNode tree as a snapshot payload. Thunks are
// resolved, so the snapshot captures the realized tree.
func EncodeNode(e *Encoder, n *vdom.VNode) {
	n = n.Resolve()
	if n == nil {
		n = vdom.Text("")
	}

	if n.Kind == vdom.KindText {
		e.WriteByte(nodeText)
		e.WriteString(n.Text)
		return
	}

	e.WriteByte(nodeElement)
	e.WriteString(n.Tag)
	e.WriteString(n.Key)

	e.WriteUvarint(uint64(len(n.Props)))
	for _, p := range n.Props {
		encodeProperty(e, p)
	}

	e.WriteUvarint(uint64(len(n.Children)))
	for _, c := range n.Children {
		EncodeNode(e, c)
	}
}

func encodeProperty(e *Encoder, p vdom.Property) {
	switch p.Kind {
	case vdom.PropAttr:
		e.WriteByte(propAttr)
		e.WriteString(p.Name)
		v, _ := p.Value.(string)
		e.WriteString(v)
	case vdom.PropAttrNS:
		e.WriteByte(propAttrNS)
		e.WriteString(p.NS)
		e.WriteString(p.Name)
		v, _ := p.Value.(string)
		e.WriteString(v)
	case vdom.PropValue:
		e.WriteByte(propValue)
		e.WriteString(p.Name)
		writeValue(e, p.Value)
	case vdom.PropStyle:
		e.WriteByte(propStyle)
		e.WriteUvarint(uint64(len(p.Styles)))
		for _, d := range p.Styles {
			e.WriteString(d.Property)
			e.WriteString(d.Value)
		}
	case vdom.PropEvent:
		e.WriteByte(propEvent)
		e.WriteString(p.Name)
		var opts byte
		if p.Options.StopPropagation {
			opts |= ListenStopPropagation
		}
		if p.Options.PreventDefault {
			opts |= ListenPreventDefault
		}
		e.WriteByte(opts)
	}
}

// DecodeNode decodes a snapshot payload back into a VNode tree. Decoded
// event properties have no decoder attached.
func DecodeNode(d *Decoder) (*vdom.VNode, error) {
	kind, err := d.ReadByte()
	if err != nil {
		return nil, err
	}

	switch kind {
	case nodeText:
		text, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		return vdom.Text(text), nil

	case nodeElement:
		tag, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		key, err := d.ReadString()
		if err != nil {
			return nil, err
		}

		propCount, err := d.ReadCollectionCount()
		if err != nil {
			return nil, err
		}
		props := make([]vdom.Property, 0, propCount)
		for i := 0; i < propCount; i++ {
			p, err := decodeProperty(d)
			if err != nil {
				return nil, err
			}
			props = append(props, p)
		}

		childCount, err := d.ReadCollectionCount()
		if err != nil {
			return nil, err
		}
		children := make([]*vdom.VNode, 0, childCount)
		for i := 0; i < childCount; i++ {
			c, err := DecodeNode(d)
			if err != nil {
				return nil, err
			}
			children = append(children, c)
		}

		return &vdom.VNode{
			Kind:     vdom.KindElement,
			Tag:      tag,
			Key:      key,
			Props:    props,
			Children: children,
		}, nil

	default:
		return nil, fmt.Errorf("protocol: unknown node kind 0x%02x", kind)
	}
}

func decodeProperty(d *Decoder) (vdom.Property, error) {
	var p vdom.Property
	kind, err := d.ReadByte()
	if err != nil {
		return p, err
	}

	switch kind {
	case propAttr:
		p.Kind = vdom.PropAttr
		if p.Name, err = d.ReadString(); err != nil {
			return p, err
		}
		v, err := d.ReadString()
		if err != nil {
			return p, err
		}
		p.Value = v

	case propAttrNS:
		p.Kind = vdom.PropAttrNS
		if p.NS, err = d.ReadString(); err != nil {
			return p, err
		}
		if p.Name, err = d.ReadString(); err != nil {
			return p, err
		}
		v, err := d.ReadString()
		if err != nil {
			return p, err
		}
		p.Value = v

	case propValue:
		p.Kind = vdom.PropValue
		if p.Name, err = d.ReadString(); err != nil {
			return p, err
		}
		if p.Value, err = readValue(d); err != nil {
			return p, err
		}

	case propStyle:
		p.Kind = vdom.PropStyle
		count, err := d.ReadCollectionCount()
		if err != nil {
			return p, err
		}
		p.Styles = make([]vdom.StyleDecl, 0, count)
		for i := 0; i < count; i++ {
			prop, err := d.ReadString()
			if err != nil {
				return p, err
			}
			val, err := d.ReadString()
			if err != nil {
				return p, err
			}
			p.Styles = append(p.Styles, vdom.StyleDecl{Property: prop, Value: val})
		}

	case propEvent:
		p.Kind = vdom.PropEvent
		if p.Name, err = d.ReadString(); err != nil {
			return p, err
		}
		opts, err := d.ReadByte()
		if err != nil {
			return p, err
		}
		p.Options = vdom.Options{
			StopPropagation: opts&ListenStopPropagation != 0,
			PreventDefault:  opts&ListenPreventDefault != 0,
		}

	default:
		return p, fmt.Errorf("protocol: unknown property kind 0x%02x", kind)
	}
	return p, nil
}
