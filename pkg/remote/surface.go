// Package remote drives displays over a WebSocket. The Surface here
// implements host.Surface by buffering primitive protocol ops; Flush
// encodes the batch as one frame and hands it to the connection writer.
// Events decoded from the wire are dispatched back into the listeners the
// engine attached.
package remote

import (
	"bytes"
	"sync"

	loomerr "github.com/loom-ui/loom/internal/errors"
	"github.com/loom-ui/loom/pkg/host"
	"github.com/loom-ui/loom/pkg/protocol"
)

// frameBytes wraps payload in wire frames. Writes to a bytes.Buffer cannot
// fail.
func frameBytes(t protocol.FrameType, payload []byte) []byte {
	var buf bytes.Buffer
	_ = protocol.WriteFrame(&buf, t, payload)
	return buf.Bytes()
}

// listenerKey identifies one attached listener.
type listenerKey struct {
	node  uint64
	event string
}

// Surface is a host.Surface whose display lives on the far side of a
// connection. Mutating calls buffer ops, failing only on handles this
// surface did not issue; the display applies a whole batch per Flush. Safe
// for one mutator goroutine plus concurrent Dispatch calls from a read loop.
type Surface struct {
	send func([]byte) error

	nextID uint64
	ops    []protocol.WireOp
	seq    uint64
	enc    *protocol.Encoder

	mu        sync.Mutex
	listeners map[listenerKey]func(event any)

	onFlush func(bytes int)
}

// SurfaceOption configures a Surface.
type SurfaceOption func(*Surface)

// WithFlushObserver registers fn to receive the encoded byte size of each
// flushed batch.
func WithFlushObserver(fn func(bytes int)) SurfaceOption {
	return func(s *Surface) { s.onFlush = fn }
}

// NewSurface creates a Surface that writes encoded frames through send.
func NewSurface(send func([]byte) error, opts ...SurfaceOption) *Surface {
	s := &Surface{
		send:      send,
		nextID:    1,
		enc:       protocol.NewEncoder(),
		listeners: make(map[listenerKey]func(event any)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Surface) push(op protocol.WireOp) {
	s.ops = append(s.ops, op)
}

// nodeID unwraps a handle this surface issued. Handles from another surface
// type are rejected rather than allowed to panic the mutator.
func nodeID(h host.Handle) (uint64, error) {
	id, ok := h.(uint64)
	if !ok {
		return 0, loomerr.New(loomerr.CodeUnknownNode).Withf("foreign handle %v", h)
	}
	return id, nil
}

func (s *Surface) alloc() uint64 {
	id := s.nextID
	s.nextID++
	return id
}

// CreateElement implements host.Surface.
func (s *Surface) CreateElement(tag string) (host.Handle, error) {
	if tag == "" {
		return nil, loomerr.New(loomerr.CodeInvalidTag).Withf("empty tag")
	}
	id := s.alloc()
	s.push(protocol.WireOp{Kind: protocol.WireCreateElement, Node: id, Name: tag})
	return id, nil
}

// CreateText implements host.Surface.
func (s *Surface) CreateText(text string) (host.Handle, error) {
	id := s.alloc()
	s.push(protocol.WireOp{Kind: protocol.WireCreateText, Node: id, Text: text})
	return id, nil
}

// SetText implements host.Surface.
func (s *Surface) SetText(h host.Handle, text string) error {
	id, err := nodeID(h)
	if err != nil {
		return err
	}
	s.push(protocol.WireOp{Kind: protocol.WireSetText, Node: id, Text: text})
	return nil
}

// SetAttr implements host.Surface.
func (s *Surface) SetAttr(h host.Handle, name, value string) error {
	id, err := nodeID(h)
	if err != nil {
		return err
	}
	s.push(protocol.WireOp{Kind: protocol.WireSetAttr, Node: id, Name: name, Text: value})
	return nil
}

// SetAttrNS implements host.Surface.
func (s *Surface) SetAttrNS(h host.Handle, ns, name, value string) error {
	id, err := nodeID(h)
	if err != nil {
		return err
	}
	s.push(protocol.WireOp{Kind: protocol.WireSetAttrNS, Node: id, NS: ns, Name: name, Text: value})
	return nil
}

// RemoveAttr implements host.Surface.
func (s *Surface) RemoveAttr(h host.Handle, name string) error {
	id, err := nodeID(h)
	if err != nil {
		return err
	}
	s.push(protocol.WireOp{Kind: protocol.WireRemoveAttr, Node: id, Name: name})
	return nil
}

// RemoveAttrNS implements host.Surface.
func (s *Surface) RemoveAttrNS(h host.Handle, ns, name string) error {
	id, err := nodeID(h)
	if err != nil {
		return err
	}
	s.push(protocol.WireOp{Kind: protocol.WireRemoveAttrNS, Node: id, NS: ns, Name: name})
	return nil
}

// SetProp implements host.Surface.
func (s *Surface) SetProp(h host.Handle, name string, value any) error {
	id, err := nodeID(h)
	if err != nil {
		return err
	}
	s.push(protocol.WireOp{Kind: protocol.WireSetProp, Node: id, Name: name, Value: value})
	return nil
}

// RemoveProp implements host.Surface.
func (s *Surface) RemoveProp(h host.Handle, name string) error {
	id, err := nodeID(h)
	if err != nil {
		return err
	}
	s.push(protocol.WireOp{Kind: protocol.WireRemoveProp, Node: id, Name: name})
	return nil
}

// SetStyle implements host.Surface.
func (s *Surface) SetStyle(h host.Handle, property, value string) error {
	id, err := nodeID(h)
	if err != nil {
		return err
	}
	s.push(protocol.WireOp{Kind: protocol.WireSetStyle, Node: id, Name: property, Text: value})
	return nil
}

// RemoveStyle implements host.Surface.
func (s *Surface) RemoveStyle(h host.Handle, property string) error {
	id, err := nodeID(h)
	if err != nil {
		return err
	}
	s.push(protocol.WireOp{Kind: protocol.WireRemoveStyle, Node: id, Name: property})
	return nil
}

// InsertChild implements host.Surface.
func (s *Surface) InsertChild(parent host.Handle, pos int, child host.Handle) error {
	p, err := nodeID(parent)
	if err != nil {
		return err
	}
	c, err := nodeID(child)
	if err != nil {
		return err
	}
	s.push(protocol.WireOp{Kind: protocol.WireInsertChild, Node: p, Pos: pos, Child: c})
	return nil
}

// RemoveChild implements host.Surface.
func (s *Surface) RemoveChild(parent host.Handle, pos int) error {
	p, err := nodeID(parent)
	if err != nil {
		return err
	}
	s.push(protocol.WireOp{Kind: protocol.WireRemoveChild, Node: p, Pos: pos})
	return nil
}

// MoveChild implements host.Surface.
func (s *Surface) MoveChild(parent host.Handle, from, to int) error {
	p, err := nodeID(parent)
	if err != nil {
		return err
	}
	s.push(protocol.WireOp{Kind: protocol.WireMoveChild, Node: p, Pos: from, Pos2: to})
	return nil
}

// ReplaceChild implements host.Surface.
func (s *Surface) ReplaceChild(parent host.Handle, pos int, child host.Handle) error {
	p, err := nodeID(parent)
	if err != nil {
		return err
	}
	c, err := nodeID(child)
	if err != nil {
		return err
	}
	s.push(protocol.WireOp{Kind: protocol.WireReplaceChild, Node: p, Pos: pos, Child: c})
	return nil
}

// AttachListener implements host.Surface. The fire callback is invoked by
// Dispatch when a matching event arrives from the display; the raw event it
// receives is a *protocol.Event.
func (s *Surface) AttachListener(h host.Handle, event string, opts host.ListenerOptions, fire func(event any)) (host.ListenerHandle, error) {
	node, err := nodeID(h)
	if err != nil {
		return nil, err
	}
	key := listenerKey{node: node, event: event}

	s.mu.Lock()
	s.listeners[key] = fire
	s.mu.Unlock()

	var bits byte
	if opts.StopPropagation {
		bits |= protocol.ListenStopPropagation
	}
	if opts.PreventDefault {
		bits |= protocol.ListenPreventDefault
	}
	s.push(protocol.WireOp{Kind: protocol.WireListen, Node: node, Name: event, Opts: bits})
	return key, nil
}

// DetachListener implements host.Surface.
func (s *Surface) DetachListener(h host.Handle, lh host.ListenerHandle) error {
	key, ok := lh.(listenerKey)
	if !ok {
		return loomerr.New(loomerr.CodeUnknownNode).Withf("bad listener handle %v", lh)
	}
	s.mu.Lock()
	delete(s.listeners, key)
	s.mu.Unlock()
	s.push(protocol.WireOp{Kind: protocol.WireUnlisten, Node: key.node, Name: key.event})
	return nil
}

// Mount implements host.Surface.
func (s *Surface) Mount(h host.Handle) error {
	id, err := nodeID(h)
	if err != nil {
		return err
	}
	s.push(protocol.WireOp{Kind: protocol.WireMount, Node: id})
	return nil
}

// Destroy implements host.Surface.
func (s *Surface) Destroy(h host.Handle) error {
	node, err := nodeID(h)
	if err != nil {
		return err
	}
	s.mu.Lock()
	for key := range s.listeners {
		if key.node == node {
			delete(s.listeners, key)
		}
	}
	s.mu.Unlock()
	s.push(protocol.WireOp{Kind: protocol.WireDestroy, Node: node})
	return nil
}

// Flush implements host.Flusher: encodes all buffered ops as one FrameOps
// batch and sends it. An empty buffer sends nothing.
func (s *Surface) Flush() error {
	if len(s.ops) == 0 {
		return nil
	}
	s.enc.Reset()
	protocol.EncodeOps(s.enc, s.ops)
	s.ops = s.ops[:0]
	s.seq++

	frame := frameBytes(protocol.FrameOps, s.enc.Bytes())
	if s.onFlush != nil {
		s.onFlush(len(frame))
	}
	if err := s.send(frame); err != nil {
		return loomerr.FromError(err, loomerr.CodeProtocolDecode).Withf("sending op batch %d", s.seq)
	}
	return nil
}

// Pending returns the number of buffered ops awaiting a Flush.
func (s *Surface) Pending() int {
	return len(s.ops)
}

// Dispatch routes one decoded display event to the listener attached for
// its node and name. Returns false if no listener matches, which happens
// benignly when an event races a detach.
func (s *Surface) Dispatch(ev *protocol.Event) bool {
	s.mu.Lock()
	fire := s.listeners[listenerKey{node: ev.Node, event: ev.Name}]
	s.mu.Unlock()
	if fire == nil {
		return false
	}
	fire(ev)
	return true
}
