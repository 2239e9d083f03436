package errors

// Registered error codes.
const (
	CodeDecode          = "E101" // Listener decoder rejected a raw event
	CodeConstruction    = "E201" // Host surface rejected a primitive operation
	CodeInvalidTag      = "E202" // Element tag rejected by the host
	CodeRestoreFailed   = "E203" // Re-rendering the previous tree after an aborted patch failed
	CodePatchIndex      = "E301" // Patch referenced a nonexistent node
	CodePatchMismatch   = "E302" // Patch was produced from a different old tree
	CodePatchAborted    = "E303" // Host rejected a mutation mid-batch; live tree is half-patched
	CodeProtocolDecode  = "E401" // Malformed wire data
	CodeUnknownNode     = "E402" // Wire event referenced an unknown node id
	CodeSnapshotStore   = "E501" // Snapshot backend failure
	CodeDriverStopped   = "E601" // Operation on a stopped driver
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Suggestion string
	Fatal      bool
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	CodeDecode: {
		Category:   CategoryDecode,
		Message:    "Event decoder rejected raw event",
		Suggestion: "Check the decoder against the shape of events the host actually delivers",
	},
	CodeConstruction: {
		Category:   CategoryConstruction,
		Message:    "Host surface rejected operation",
		Suggestion: "The previous live tree is intact; inspect the wrapped host error",
	},
	CodeInvalidTag: {
		Category:   CategoryConstruction,
		Message:    "Invalid element tag",
		Suggestion: "Tag names must be non-empty; validation is deferred from construction to render",
	},
	CodeRestoreFailed: {
		Category:   CategoryConstruction,
		Message:    "Failed to restore the previous tree after an aborted patch",
		Suggestion: "The surface is in an unknown state; remount from scratch",
		Fatal:      true,
	},
	CodePatchIndex: {
		Category:   CategoryPatch,
		Message:    "Patch references nonexistent node",
		Suggestion: "This is a differ/patcher bug, not an application error; please report it",
		Fatal:      true,
	},
	CodePatchMismatch: {
		Category:   CategoryPatch,
		Message:    "Patch does not match the live tree",
		Suggestion: "Apply patches only to the live tree rendered from the diff's old tree",
		Fatal:      true,
	},
	CodePatchAborted: {
		Category:   CategoryPatch,
		Message:    "Patch aborted mid-batch",
		Suggestion: "Earlier ops in the batch were already applied; re-render the previous tree to restore the display",
	},
	CodeProtocolDecode: {
		Category: CategoryProtocol,
		Message:  "Malformed wire data",
	},
	CodeUnknownNode: {
		Category: CategoryProtocol,
		Message:  "Event references unknown node id",
	},
	CodeSnapshotStore: {
		Category: CategorySnapshot,
		Message:  "Snapshot store failure",
	},
	CodeDriverStopped: {
		Category: CategoryConfig,
		Message:  "Driver is stopped",
	},
}
