// Package render materializes VNode trees onto a host surface and applies
// patches to the resulting live tree.
//
// The Renderer performs the first materialization: one live node per VNode,
// top-down, attaching properties, styles, and event listeners as it goes.
// The Patcher consumes a vdom.Patch produced by vdom.Diff and mutates the
// live tree in place. Both are implemented purely against host.Surface, so
// the engine runs unchanged on any host that provides the primitives.
//
// # Ownership and concurrency
//
// The live tree has a single owner. Renderer and Patcher must never run
// concurrently on the same tree; callers (normally the driver package)
// serialize cycles. Listener firings are the one asynchronous path: the
// host may fire at any time, and each firing decodes the raw event and
// forwards the message to the configured sink without touching the tree.
//
// # Failure semantics
//
// Construction errors (the host rejecting an operation) abort the cycle
// and leave the previous tree intact: Render destroys anything it partially
// built, and Apply renders every subtree a patch needs before the first
// mutation. Patch index errors are engine bugs and are fatal; Apply
// validates every index before mutating so a malformed patch can never
// half-apply for structural reasons. A host rejection during the mutation
// phase itself cannot be rolled back; Apply reports it as a patch-aborted
// error and the caller re-renders the previous tree to restore the display.
// Decode errors are expected, reported to the error sink, and never abort
// anything.
package render
