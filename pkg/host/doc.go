// Package host defines the primitive surface the Loom engine renders onto.
//
// The renderer and patcher are written purely against the Surface interface:
// create/destroy a node, set an attribute, move a child, attach a listener.
// Anything that can implement these primitives can display a Loom tree — a
// real browser DOM behind a wire protocol (see package remote), or the
// in-memory Mem double used throughout the test suite.
//
// Handles are opaque. The engine stores one per rendered node and passes it
// back for targeting; it never inspects a handle's structure.
package host
