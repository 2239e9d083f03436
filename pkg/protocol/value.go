package protocol

import (
	"fmt"
	"math"
)

// Value type tags. Arbitrary Go values degrade to their fmt string form;
// anything richer than these scalars has no place on the wire.
const (
	valNull   byte = 0x00
	valString byte = 0x01
	valBool   byte = 0x02
	valInt    byte = 0x03
	valFloat  byte = 0x04
)

// writeValue encodes a dynamic scalar with a one-byte type tag.
func writeValue(e *Encoder, v any) {
	switch x := v.(type) {
	case nil:
		e.WriteByte(valNull)
	case string:
		e.WriteByte(valString)
		e.WriteString(x)
	case bool:
		e.WriteByte(valBool)
		e.WriteBool(x)
	case int:
		e.WriteByte(valInt)
		e.WriteSvarint(int64(x))
	case int64:
		e.WriteByte(valInt)
		e.WriteSvarint(x)
	case float64:
		e.WriteByte(valFloat)
		e.WriteUint64(math.Float64bits(x))
	default:
		e.WriteByte(valString)
		e.WriteString(fmt.Sprint(x))
	}
}

// readValue decodes a tagged scalar. Integers come back as int64.
func readValue(d *Decoder) (any, error) {
	tag, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case valNull:
		return nil, nil
	case valString:
		return d.ReadString()
	case valBool:
		return d.ReadBool()
	case valInt:
		return d.ReadSvarint()
	case valFloat:
		bits, err := d.ReadUint64()
		if err != nil {
			return nil, err
		}
		return math.Float64frombits(bits), nil
	default:
		return nil, fmt.Errorf("protocol: unknown value tag 0x%02x", tag)
	}
}
