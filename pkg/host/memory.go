package host

import (
	"errors"
	"fmt"
	"strings"
)

// Mem errors.
var (
	ErrInvalidTag      = errors.New("host: invalid element tag")
	ErrBadHandle       = errors.New("host: handle does not belong to this surface")
	ErrIndexOutOfRange = errors.New("host: child index out of range")
	ErrNotElement      = errors.New("host: operation requires an element node")
	ErrNotText         = errors.New("host: operation requires a text node")
	ErrDestroyed       = errors.New("host: node has been destroyed")
)

// MemNode is one live node inside the in-memory surface.
type MemNode struct {
	Tag  string // "" for text nodes
	Text string

	attrs     map[string]string
	attrOrder []string
	props     map[string]any
	propOrder []string
	styles    map[string]string
	styleDecl []string

	Children  []*MemNode
	listeners []*memListener
	destroyed bool
}

type memListener struct {
	id    int
	event string
	opts  ListenerOptions
	fire  func(event any)
}

// Mem is an in-memory Surface double. It validates every primitive the way
// a strict host would, keeps a journal of operations for assertions, and
// renders the mounted tree to an HTML string.
//
// Mem is not safe for concurrent use; like a real rendering surface it
// assumes a single owning goroutine.
type Mem struct {
	root       *MemNode
	nextID     int
	journal    []string
	FailCreate func(tag string) error // test hook: extra create-time rejection
}

// NewMem creates an empty in-memory surface.
func NewMem() *Mem {
	return &Mem{}
}

// node unwraps a handle, rejecting foreign or destroyed handles.
func (m *Mem) node(h Handle) (*MemNode, error) {
	n, ok := h.(*MemNode)
	if !ok || n == nil {
		return nil, ErrBadHandle
	}
	if n.destroyed {
		return nil, ErrDestroyed
	}
	return n, nil
}

func (m *Mem) log(format string, args ...any) {
	m.journal = append(m.journal, fmt.Sprintf(format, args...))
}

// Journal returns the primitive operations performed since the last reset,
// in order. Useful for asserting that a patch performed only the expected
// mutations (e.g., a keyed reorder moves but never recreates).
func (m *Mem) Journal() []string {
	return m.journal
}

// ResetJournal clears the journal.
func (m *Mem) ResetJournal() {
	m.journal = m.journal[:0]
}

// Root returns the mounted tree, or nil.
func (m *Mem) Root() *MemNode {
	return m.root
}

// CreateElement implements Surface.
func (m *Mem) CreateElement(tag string) (Handle, error) {
	if strings.TrimSpace(tag) == "" {
		return nil, ErrInvalidTag
	}
	if m.FailCreate != nil {
		if err := m.FailCreate(tag); err != nil {
			return nil, err
		}
	}
	m.log("createElement(%s)", tag)
	return &MemNode{
		Tag:    tag,
		attrs:  make(map[string]string),
		props:  make(map[string]any),
		styles: make(map[string]string),
	}, nil
}

// CreateText implements Surface.
func (m *Mem) CreateText(text string) (Handle, error) {
	m.log("createText(%q)", text)
	return &MemNode{Text: text}, nil
}

// SetText implements Surface.
func (m *Mem) SetText(h Handle, text string) error {
	n, err := m.node(h)
	if err != nil {
		return err
	}
	if n.Tag != "" {
		return ErrNotText
	}
	m.log("setText(%q)", text)
	n.Text = text
	return nil
}

func (m *Mem) element(h Handle) (*MemNode, error) {
	n, err := m.node(h)
	if err != nil {
		return nil, err
	}
	if n.Tag == "" {
		return nil, ErrNotElement
	}
	return n, nil
}

// SetAttr implements Surface.
func (m *Mem) SetAttr(h Handle, name, value string) error {
	n, err := m.element(h)
	if err != nil {
		return err
	}
	m.log("setAttr(%s, %s=%q)", n.Tag, name, value)
	if _, ok := n.attrs[name]; !ok {
		n.attrOrder = append(n.attrOrder, name)
	}
	n.attrs[name] = value
	return nil
}

// SetAttrNS implements Surface.
func (m *Mem) SetAttrNS(h Handle, ns, name, value string) error {
	return m.SetAttr(h, ns+"|"+name, value)
}

// RemoveAttr implements Surface.
func (m *Mem) RemoveAttr(h Handle, name string) error {
	n, err := m.element(h)
	if err != nil {
		return err
	}
	m.log("removeAttr(%s, %s)", n.Tag, name)
	delete(n.attrs, name)
	for i, k := range n.attrOrder {
		if k == name {
			n.attrOrder = append(n.attrOrder[:i], n.attrOrder[i+1:]...)
			break
		}
	}
	return nil
}

// RemoveAttrNS implements Surface.
func (m *Mem) RemoveAttrNS(h Handle, ns, name string) error {
	return m.RemoveAttr(h, ns+"|"+name)
}

// SetProp implements Surface.
func (m *Mem) SetProp(h Handle, name string, value any) error {
	n, err := m.element(h)
	if err != nil {
		return err
	}
	m.log("setProp(%s, %s=%v)", n.Tag, name, value)
	if _, ok := n.props[name]; !ok {
		n.propOrder = append(n.propOrder, name)
	}
	n.props[name] = value
	return nil
}

// RemoveProp implements Surface.
func (m *Mem) RemoveProp(h Handle, name string) error {
	n, err := m.element(h)
	if err != nil {
		return err
	}
	m.log("removeProp(%s, %s)", n.Tag, name)
	delete(n.props, name)
	for i, k := range n.propOrder {
		if k == name {
			n.propOrder = append(n.propOrder[:i], n.propOrder[i+1:]...)
			break
		}
	}
	return nil
}

// SetStyle implements Surface.
func (m *Mem) SetStyle(h Handle, property, value string) error {
	n, err := m.element(h)
	if err != nil {
		return err
	}
	m.log("setStyle(%s, %s: %s)", n.Tag, property, value)
	if _, ok := n.styles[property]; !ok {
		n.styleDecl = append(n.styleDecl, property)
	}
	n.styles[property] = value
	return nil
}

// RemoveStyle implements Surface.
func (m *Mem) RemoveStyle(h Handle, property string) error {
	n, err := m.element(h)
	if err != nil {
		return err
	}
	m.log("removeStyle(%s, %s)", n.Tag, property)
	delete(n.styles, property)
	for i, k := range n.styleDecl {
		if k == property {
			n.styleDecl = append(n.styleDecl[:i], n.styleDecl[i+1:]...)
			break
		}
	}
	return nil
}

// InsertChild implements Surface.
func (m *Mem) InsertChild(parent Handle, pos int, child Handle) error {
	p, err := m.element(parent)
	if err != nil {
		return err
	}
	c, err := m.node(child)
	if err != nil {
		return err
	}
	if pos < 0 || pos > len(p.Children) {
		return ErrIndexOutOfRange
	}
	m.log("insertChild(%s, %d)", p.Tag, pos)
	p.Children = append(p.Children, nil)
	copy(p.Children[pos+1:], p.Children[pos:])
	p.Children[pos] = c
	return nil
}

// RemoveChild implements Surface.
func (m *Mem) RemoveChild(parent Handle, pos int) error {
	p, err := m.element(parent)
	if err != nil {
		return err
	}
	if pos < 0 || pos >= len(p.Children) {
		return ErrIndexOutOfRange
	}
	m.log("removeChild(%s, %d)", p.Tag, pos)
	p.Children = append(p.Children[:pos], p.Children[pos+1:]...)
	return nil
}

// MoveChild implements Surface.
func (m *Mem) MoveChild(parent Handle, from, to int) error {
	p, err := m.element(parent)
	if err != nil {
		return err
	}
	if from < 0 || from >= len(p.Children) {
		return ErrIndexOutOfRange
	}
	c := p.Children[from]
	rest := append(p.Children[:from], p.Children[from+1:]...)
	if to < 0 || to > len(rest) {
		return ErrIndexOutOfRange
	}
	m.log("moveChild(%s, %d -> %d)", p.Tag, from, to)
	rest = append(rest, nil)
	copy(rest[to+1:], rest[to:])
	rest[to] = c
	p.Children = rest
	return nil
}

// ReplaceChild implements Surface.
func (m *Mem) ReplaceChild(parent Handle, pos int, child Handle) error {
	p, err := m.element(parent)
	if err != nil {
		return err
	}
	c, err := m.node(child)
	if err != nil {
		return err
	}
	if pos < 0 || pos >= len(p.Children) {
		return ErrIndexOutOfRange
	}
	m.log("replaceChild(%s, %d)", p.Tag, pos)
	p.Children[pos] = c
	return nil
}

// AttachListener implements Surface.
func (m *Mem) AttachListener(h Handle, event string, opts ListenerOptions, fire func(event any)) (ListenerHandle, error) {
	n, err := m.element(h)
	if err != nil {
		return nil, err
	}
	m.nextID++
	l := &memListener{id: m.nextID, event: event, opts: opts, fire: fire}
	n.listeners = append(n.listeners, l)
	m.log("attach(%s, %s)", n.Tag, event)
	return l, nil
}

// DetachListener implements Surface.
func (m *Mem) DetachListener(h Handle, lh ListenerHandle) error {
	n, err := m.node(h)
	if err != nil {
		return err
	}
	l, ok := lh.(*memListener)
	if !ok {
		return ErrBadHandle
	}
	for i, cur := range n.listeners {
		if cur.id == l.id {
			n.listeners = append(n.listeners[:i], n.listeners[i+1:]...)
			m.log("detach(%s, %s)", n.Tag, l.event)
			return nil
		}
	}
	return ErrBadHandle
}

// Mount implements Surface.
func (m *Mem) Mount(h Handle) error {
	n, err := m.node(h)
	if err != nil {
		return err
	}
	m.log("mount(%s)", n.Tag)
	m.root = n
	return nil
}

// Destroy implements Surface.
func (m *Mem) Destroy(h Handle) error {
	n, err := m.node(h)
	if err != nil {
		return err
	}
	n.destroyed = true
	for _, c := range n.Children {
		if !c.destroyed {
			_ = m.Destroy(c)
		}
	}
	return nil
}

// Fire simulates a host interaction: it invokes every listener registered
// for event on the node, in attachment order, and returns the number fired.
func (m *Mem) Fire(h Handle, event string, payload any) int {
	n, err := m.node(h)
	if err != nil {
		return 0
	}
	fired := 0
	for _, l := range append([]*memListener(nil), n.listeners...) {
		if l.event == event {
			l.fire(payload)
			fired++
		}
	}
	return fired
}

// ListenerCount returns the number of listeners attached to the node for
// the event, or across all events when event is empty.
func (m *Mem) ListenerCount(h Handle, event string) int {
	n, err := m.node(h)
	if err != nil {
		return 0
	}
	count := 0
	for _, l := range n.listeners {
		if event == "" || l.event == event {
			count++
		}
	}
	return count
}

// HTML renders the mounted tree to a string for assertions. DOM properties
// render as prop:name="v" pseudo-attributes and styles collapse into a
// style attribute so tests can see everything the engine set.
func (m *Mem) HTML() string {
	var b strings.Builder
	writeNode(&b, m.root)
	return b.String()
}

// NodeHTML renders an arbitrary handle, mounted or not.
func (m *Mem) NodeHTML(h Handle) string {
	n, err := m.node(h)
	if err != nil {
		return ""
	}
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

func writeNode(b *strings.Builder, n *MemNode) {
	if n == nil {
		return
	}
	if n.Tag == "" {
		b.WriteString(escapeHTML(n.Text))
		return
	}
	b.WriteByte('<')
	b.WriteString(n.Tag)
	for _, k := range n.attrOrder {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(escapeAttr(n.attrs[k]))
		b.WriteByte('"')
	}
	for _, k := range n.propOrder {
		b.WriteString(" prop:")
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(escapeAttr(fmt.Sprintf("%v", n.props[k])))
		b.WriteByte('"')
	}
	if len(n.styleDecl) > 0 {
		b.WriteString(` style="`)
		for i, k := range n.styleDecl {
			if i > 0 {
				b.WriteString("; ")
			}
			b.WriteString(k)
			b.WriteString(": ")
			b.WriteString(escapeAttr(n.styles[k]))
		}
		b.WriteByte('"')
	}
	b.WriteByte('>')
	for _, c := range n.Children {
		writeNode(b, c)
	}
	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteByte('>')
}

// escapeHTML escapes text for HTML content.
func escapeHTML(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}

// escapeAttr escapes text for attribute values, including whitespace that
// could break attribute parsing.
func escapeAttr(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		case '\n':
			buf.WriteString("&#10;")
		case '\r':
			buf.WriteString("&#13;")
		case '\t':
			buf.WriteString("&#9;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
