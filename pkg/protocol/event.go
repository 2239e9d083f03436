package protocol

// Event is one display interaction flowing back to the engine. Node is the
// id of the element whose listener fired, Name the event name it was
// registered under, Fields the scalar payload (ordered by the display).
type Event struct {
	Node   uint64
	Name   string
	Fields map[string]any
}

// Field returns a payload field, or nil.
func (ev *Event) Field(name string) any {
	return ev.Fields[name]
}

// Text returns the payload field name as a string, or "".
func (ev *Event) Text(name string) string {
	s, _ := ev.Fields[name].(string)
	return s
}

// Int returns the payload field name as an int64, or 0.
func (ev *Event) Int(name string) int64 {
	n, _ := ev.Fields[name].(int64)
	return n
}

// EncodeEvent encodes ev as a FrameEvent payload.
func EncodeEvent(e *Encoder, ev *Event) {
	e.WriteUvarint(ev.Node)
	e.WriteString(ev.Name)
	e.WriteUvarint(uint64(len(ev.Fields)))
	for k, v := range ev.Fields {
		e.WriteString(k)
		writeValue(e, v)
	}
}

// DecodeEvent decodes a FrameEvent payload.
func DecodeEvent(d *Decoder) (*Event, error) {
	node, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	name, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	ev := &Event{Node: node, Name: name}
	if count > 0 {
		ev.Fields = make(map[string]any, count)
	}
	for i := 0; i < count; i++ {
		k, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		v, err := readValue(d)
		if err != nil {
			return nil, err
		}
		ev.Fields[k] = v
	}
	return ev, nil
}
