package render

import (
	loomerr "github.com/loom-ui/loom/internal/errors"
	"github.com/loom-ui/loom/pkg/host"
	"github.com/loom-ui/loom/pkg/vdom"
)

// MessageSink receives messages decoded from listener firings. Enqueue must
// not block: firings arrive asynchronously and the engine queues rather
// than stalls the host's event delivery.
type MessageSink interface {
	Enqueue(msg vdom.Msg)
}

// MessageSinkFunc adapts a function to a MessageSink.
type MessageSinkFunc func(vdom.Msg)

// Enqueue implements MessageSink.
func (f MessageSinkFunc) Enqueue(msg vdom.Msg) { f(msg) }

// Config configures a Renderer.
type Config struct {
	// Surface is the host the tree renders onto. Required.
	Surface host.Surface

	// Messages receives decoded listener messages. A nil sink drops them.
	Messages MessageSink

	// Errors receives decode errors from listener firings. Per-listener
	// order is preserved. A nil func drops them.
	Errors func(error)
}

// Renderer materializes VNode trees onto a host surface.
type Renderer struct {
	surface  host.Surface
	messages MessageSink
	errors   func(error)
}

// NewRenderer creates a Renderer for the given configuration.
func NewRenderer(cfg Config) *Renderer {
	return &Renderer{
		surface:  cfg.Surface,
		messages: cfg.Messages,
		errors:   cfg.Errors,
	}
}

// Surface returns the host surface the renderer writes to.
func (r *Renderer) Surface() host.Surface {
	return r.surface
}

// Render materializes tree into a live tree, one pass, no diffing. On a
// construction error everything built so far is destroyed and the error is
// returned; nothing is mounted.
func (r *Renderer) Render(tree *vdom.VNode) (*LiveNode, error) {
	ln, err := r.renderNode(tree)
	if err != nil {
		return nil, err
	}
	return ln, nil
}

// Mount renders tree and mounts the result as the surface's displayed root.
func (r *Renderer) Mount(tree *vdom.VNode) (*LiveNode, error) {
	ln, err := r.Render(tree)
	if err != nil {
		return nil, err
	}
	if err := r.surface.Mount(ln.Handle); err != nil {
		r.Destroy(ln)
		return nil, loomerr.FromError(err, loomerr.CodeConstruction)
	}
	return ln, nil
}

func (r *Renderer) renderNode(n *vdom.VNode) (*LiveNode, error) {
	n = n.Resolve()
	if n == nil {
		n = vdom.Text("")
	}

	if n.Kind == vdom.KindText {
		h, err := r.surface.CreateText(n.Text)
		if err != nil {
			return nil, loomerr.FromError(err, loomerr.CodeConstruction)
		}
		return &LiveNode{Handle: h, Text: n.Text}, nil
	}

	h, err := r.surface.CreateElement(n.Tag)
	if err != nil {
		return nil, loomerr.FromError(err, loomerr.CodeInvalidTag).Withf("tag %q", n.Tag)
	}
	ln := &LiveNode{Handle: h, Tag: n.Tag}

	for _, p := range n.Props {
		if err := r.applyProp(ln, p); err != nil {
			r.Destroy(ln)
			return nil, err
		}
	}

	for i, c := range n.Children {
		child, err := r.renderNode(c)
		if err != nil {
			r.Destroy(ln)
			return nil, err
		}
		if err := r.surface.InsertChild(ln.Handle, i, child.Handle); err != nil {
			r.Destroy(child)
			r.Destroy(ln)
			return nil, loomerr.FromError(err, loomerr.CodeConstruction)
		}
		child.parent = ln
		ln.Children = append(ln.Children, child)
	}

	return ln, nil
}

// applyProp attaches one property to a live element.
func (r *Renderer) applyProp(ln *LiveNode, p vdom.Property) error {
	var err error
	switch p.Kind {
	case vdom.PropAttr:
		v, _ := p.Value.(string)
		err = r.surface.SetAttr(ln.Handle, p.Name, v)
	case vdom.PropAttrNS:
		v, _ := p.Value.(string)
		err = r.surface.SetAttrNS(ln.Handle, p.NS, p.Name, v)
	case vdom.PropValue:
		err = r.surface.SetProp(ln.Handle, p.Name, p.Value)
	case vdom.PropStyle:
		for _, decl := range p.Styles {
			if err = r.surface.SetStyle(ln.Handle, decl.Property, decl.Value); err != nil {
				break
			}
		}
		if err == nil {
			ln.styles = append([]vdom.StyleDecl(nil), p.Styles...)
		}
	case vdom.PropEvent:
		var lh host.ListenerHandle
		lh, err = r.surface.AttachListener(ln.Handle, p.Name, host.ListenerOptions{
			StopPropagation: p.Options.StopPropagation,
			PreventDefault:  p.Options.PreventDefault,
		}, r.fire(p.Decoder))
		if err == nil {
			ln.listeners = append(ln.listeners, attachedListener{event: p.Name, handle: lh})
		}
	}
	if err != nil {
		return loomerr.FromError(err, loomerr.CodeConstruction)
	}
	return nil
}

// fire builds the host callback for one listener. Each firing decodes the
// raw event exactly once; a failed decode is reported and dropped, never
// crashing the program or reaching the message sink.
func (r *Renderer) fire(decoder vdom.Decoder) func(any) {
	return func(raw any) {
		if decoder == nil {
			return
		}
		msg, err := decoder(raw)
		if err != nil {
			if r.errors != nil {
				r.errors(loomerr.New(loomerr.CodeDecode).Wrap(err))
			}
			return
		}
		if r.messages != nil {
			r.messages.Enqueue(msg)
		}
	}
}

// Destroy detaches every listener in the subtree and releases the host
// nodes. Used for teardown of replaced or partially built subtrees.
func (r *Renderer) Destroy(ln *LiveNode) {
	if ln == nil {
		return
	}
	r.detachAll(ln)
	_ = r.surface.Destroy(ln.Handle)
}

func (r *Renderer) detachAll(ln *LiveNode) {
	for _, l := range ln.listeners {
		_ = r.surface.DetachListener(ln.Handle, l.handle)
	}
	ln.listeners = nil
	for _, c := range ln.Children {
		r.detachAll(c)
	}
}
