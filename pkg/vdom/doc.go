// Package vdom provides the virtual DOM node model and differ for Loom.
//
// A VNode tree is an immutable description of a UI. Application code builds
// a fresh tree on every update cycle; the Diff function compares the previous
// and next trees and produces a Patch, an ordered edit script that the render
// package applies to the live tree.
//
// # Core Types
//
// VNode is the fundamental building block representing elements, text nodes,
// and thunks. Property describes attributes, DOM properties, namespaced
// attributes, inline styles, and event listeners attached to an element.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Div(Class("card"), ID("main"),
//	    H1(Text("Title")),
//	    P(Text("Content")),
//	    On("click", Options{}, decoder),
//	)
//
// # Diffing
//
// The Diff function compares two VNode trees and returns a Patch whose
// operations are addressed by pre-order index into the old tree. Keyed
// reconciliation is used when children carry Keys, so reordered lists
// produce moves instead of remounts.
//
// # Thunks
//
// Lazy wraps deferred construction behind a fingerprint. When the previous
// and next fingerprints are equal the differ reuses the previous result
// without invoking the builder.
package vdom
