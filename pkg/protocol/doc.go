// Package protocol implements Loom's binary wire format.
//
// Three payload kinds travel between an engine and a remote display:
//
//   - Op streams: the primitive surface operations (create, set attribute,
//     move child, ...) a remote surface batches per cycle, mirroring
//     host.Surface one to one.
//   - Events: raw interactions flowing back from the display, addressed by
//     node id.
//   - Tree snapshots: a full VNode tree, used by the snapshot store and for
//     client resync.
//
// Payloads are wrapped in frames (1-byte type, 1-byte flags, 2-byte
// length). Integers use protobuf-style varints, signed values ZigZag.
// Decoding enforces allocation and collection limits so a malicious peer
// cannot force huge allocations with a small prefix.
package protocol
