package vdom

import (
	"reflect"
)

// PropKind is the property type discriminator.
type PropKind uint8

const (
	PropAttr   PropKind = iota // HTML attribute
	PropAttrNS                 // Namespaced attribute (SVG xlink:href, etc.)
	PropValue                  // DOM property with an opaque value
	PropStyle                  // Inline style declarations
	PropEvent                  // Event listener
)

// String returns the string representation of the PropKind.
func (k PropKind) String() string {
	switch k {
	case PropAttr:
		return "Attr"
	case PropAttrNS:
		return "AttrNS"
	case PropValue:
		return "Prop"
	case PropStyle:
		return "Style"
	case PropEvent:
		return "Event"
	default:
		return "Unknown"
	}
}

// RawEvent is an opaque host interaction event. The engine never inspects
// its structure; it is handed to the listener's decoder untouched.
type RawEvent any

// Msg is a decoded application message.
type Msg any

// Decoder converts a raw host event into an application message.
// Returning an error drops the firing and reports it; it never aborts
// a cycle.
type Decoder func(RawEvent) (Msg, error)

// Options controls event listener behavior at the host.
type Options struct {
	StopPropagation bool
	PreventDefault  bool
}

// StyleDecl is a single CSS declaration.
type StyleDecl struct {
	Property string
	Value    string
}

// Property is one attribute, DOM property, style block, or event listener
// attached to an element. Within one element's Props list a later entry
// with the same key wins (last write wins).
type Property struct {
	Kind    PropKind
	Name    string      // Attribute/property name, or event name for PropEvent
	NS      string      // Namespace URI for PropAttrNS
	Value   any         // string for attrs, opaque for PropValue
	Styles  []StyleDecl // For PropStyle
	Options Options     // For PropEvent
	Decoder Decoder     // For PropEvent
}

// Attr creates an HTML attribute property.
func Attr(name, value string) Property {
	return Property{Kind: PropAttr, Name: name, Value: value}
}

// AttrNS creates a namespaced attribute property.
func AttrNS(ns, name, value string) Property {
	return Property{Kind: PropAttrNS, NS: ns, Name: name, Value: value}
}

// Prop creates a DOM property with an opaque value.
func Prop(name string, value any) Property {
	return Property{Kind: PropValue, Name: name, Value: value}
}

// Style creates an inline style property from ordered declarations.
func Style(decls ...StyleDecl) Property {
	return Property{Kind: PropStyle, Styles: decls}
}

// Css is a shorthand for a single style declaration.
func Css(property, value string) StyleDecl {
	return StyleDecl{Property: property, Value: value}
}

// On creates an event listener property. The decoder is called once per
// firing with the raw host event.
func On(event string, opts Options, decoder Decoder) Property {
	return Property{Kind: PropEvent, Name: event, Options: opts, Decoder: decoder}
}

// Common attribute shorthands, matching the factory style of the element API.

// Class creates a class attribute.
func Class(v string) Property { return Attr("class", v) }

// ID creates an id attribute.
func ID(v string) Property { return Attr("id", v) }

// Href creates an href attribute.
func Href(v string) Property { return Attr("href", v) }

// Src creates a src attribute.
func Src(v string) Property { return Attr("src", v) }

// Type creates a type attribute.
func Type(v string) Property { return Attr("type", v) }

// Value creates a value DOM property (not attribute, so live input state
// follows the tree).
func Value(v string) Property { return Prop("value", v) }

// Checked creates a checked DOM property.
func Checked(v bool) Property { return Prop("checked", v) }

// Placeholder creates a placeholder attribute.
func Placeholder(v string) Property { return Attr("placeholder", v) }

// Disabled creates a disabled attribute when v is true.
func Disabled(v bool) Property {
	if v {
		return Attr("disabled", "disabled")
	}
	return Property{}
}

// key returns the identity under which a property participates in diffing.
// Two properties with the same key describe the same slot on the element.
func (p Property) key() string {
	switch p.Kind {
	case PropAttr:
		return "a:" + p.Name
	case PropAttrNS:
		return "n:" + p.NS + ":" + p.Name
	case PropValue:
		return "p:" + p.Name
	case PropStyle:
		return "s:"
	case PropEvent:
		return "e:" + p.Name
	default:
		return ""
	}
}

// isZero reports whether the property is the empty value (produced by
// conditional helpers like Disabled(false)). Zero properties are skipped
// everywhere.
func (p Property) isZero() bool {
	return p.Kind == PropAttr && p.Name == ""
}

// equal reports whether two properties with the same key carry the same
// value. Listener decoders are compared by function identity: a decoder
// rebuilt as a new closure always counts as changed, since function values
// are not otherwise comparable.
func (p Property) equal(o Property) bool {
	if p.Kind != o.Kind {
		return false
	}
	switch p.Kind {
	case PropAttr, PropAttrNS:
		return p.Value == o.Value
	case PropValue:
		return opaqueEqual(p.Value, o.Value)
	case PropStyle:
		if len(p.Styles) != len(o.Styles) {
			return false
		}
		for i := range p.Styles {
			if p.Styles[i] != o.Styles[i] {
				return false
			}
		}
		return true
	case PropEvent:
		if p.Options != o.Options {
			return false
		}
		return funcIdentity(p.Decoder) == funcIdentity(o.Decoder)
	default:
		return false
	}
}

// opaqueEqual compares opaque property values with a fast path for the
// common scalar types, falling back to reflect for the rest.
func opaqueEqual(a, b any) bool {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case nil:
		return b == nil
	}
	return reflect.DeepEqual(a, b)
}

// funcIdentity returns a comparable identity for a decoder function.
func funcIdentity(d Decoder) uintptr {
	if d == nil {
		return 0
	}
	return reflect.ValueOf(d).Pointer()
}

// propIndex builds key -> Property over an ordered property list, applying
// last-write-wins for duplicate keys. keys preserves first-seen order so
// diff output stays deterministic.
func propIndex(props []Property) (index map[string]Property, keys []string) {
	index = make(map[string]Property, len(props))
	keys = make([]string, 0, len(props))
	for _, p := range props {
		if p.isZero() {
			continue
		}
		k := p.key()
		if _, seen := index[k]; !seen {
			keys = append(keys, k)
		}
		index[k] = p
	}
	return index, keys
}
