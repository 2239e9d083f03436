// Package errors provides structured, code-registered errors for Loom.
//
// Every engine failure carries a code (e.g., "E102") mapping to a category,
// a short message, and a fix suggestion. The three conditions the engine
// distinguishes are:
//
//   - decode: a listener's decoder rejected a raw event. Expected and
//     common; the firing is dropped and reported, the program continues.
//   - construction: the host surface rejected a primitive operation.
//     Aborts the current render/patch cycle only; the previous live tree
//     stays intact. A rejection partway through a mutation batch is the
//     one exception: it is reported as patch-aborted and the driver
//     re-renders the previous tree.
//   - patch: a patch referenced a node that does not exist. This is an
//     engine bug, never a data condition, and is fatal.
//
// # Usage
//
//	err := errors.New(errors.CodePatchIndex).
//	    Withf("op 3 targets index 9, old tree has 4 nodes").
//	    Wrap(cause)
package errors
