package protocol

import (
	"fmt"
	"io"
)

// FrameType identifies the payload of a frame.
type FrameType byte

const (
	// FrameOps carries a batch of surface operations for one cycle.
	FrameOps FrameType = 0x01

	// FrameEvent carries a single display event.
	FrameEvent FrameType = 0x02

	// FrameSnapshot carries a full encoded VNode tree.
	FrameSnapshot FrameType = 0x03

	// FrameAck acknowledges an applied op batch.
	FrameAck FrameType = 0x04

	// FrameError carries an error report from either side.
	FrameError FrameType = 0x05
)

// String returns a human-readable frame type name.
func (t FrameType) String() string {
	switch t {
	case FrameOps:
		return "ops"
	case FrameEvent:
		return "event"
	case FrameSnapshot:
		return "snapshot"
	case FrameAck:
		return "ack"
	case FrameError:
		return "error"
	default:
		return fmt.Sprintf("unknown(0x%02x)", byte(t))
	}
}

// Frame flags.
const (
	// FlagContinued marks a payload split across frames; the receiver
	// concatenates until a frame without the flag arrives.
	FlagContinued byte = 0x01
)

// frameHeaderSize is the fixed header: type, flags, big-endian length.
const frameHeaderSize = 4

// MaxFramePayload is the largest payload one frame can carry. Larger
// payloads are split using FlagContinued.
const MaxFramePayload = 0xFFFF

// Frame is one wire frame.
type Frame struct {
	Type    FrameType
	Flags   byte
	Payload []byte
}

// WriteFrame writes payload to w as one or more frames of type t, splitting
// with FlagContinued when the payload exceeds MaxFramePayload.
func WriteFrame(w io.Writer, t FrameType, payload []byte) error {
	for {
		chunk := payload
		flags := byte(0)
		if len(chunk) > MaxFramePayload {
			chunk = payload[:MaxFramePayload]
			flags = FlagContinued
		}
		hdr := [frameHeaderSize]byte{byte(t), flags, byte(len(chunk) >> 8), byte(len(chunk))}
		if _, err := w.Write(hdr[:]); err != nil {
			return err
		}
		if len(chunk) > 0 {
			if _, err := w.Write(chunk); err != nil {
				return err
			}
		}
		payload = payload[len(chunk):]
		if flags&FlagContinued == 0 {
			return nil
		}
	}
}

// ReadFrame reads one complete logical frame from r, reassembling continued
// frames. The reassembled payload is capped at MaxAllocation.
func ReadFrame(r io.Reader) (*Frame, error) {
	var out *Frame
	for {
		var hdr [frameHeaderSize]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return nil, err
		}
		length := int(hdr[2])<<8 | int(hdr[3])
		payload := make([]byte, length)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, err
		}

		if out == nil {
			out = &Frame{Type: FrameType(hdr[0]), Payload: payload}
		} else {
			if FrameType(hdr[0]) != out.Type {
				return nil, fmt.Errorf("protocol: continuation frame type %s, expected %s", FrameType(hdr[0]), out.Type)
			}
			out.Payload = append(out.Payload, payload...)
		}
		if len(out.Payload) > MaxAllocation {
			return nil, ErrAllocationTooLarge
		}
		if hdr[1]&FlagContinued == 0 {
			return out, nil
		}
	}
}
