// Package engine is the entry point of the mind-map layout engine.
//
// An [Engine] binds a [scene.Host] to a [config.LayoutConfig] and exposes
// the operations a host calls: Layout, GetHierarchy, the fold, boundary and
// group toggles, and the structural edits. Every operation reads the
// current objects from the host, works on a private [scene.Buffer] and
// commits only the objects it changed.
//
// # Two-pass layout
//
// Boundaries and fold indicators are derived from node positions, and
// subtree metrics read boundaries back. A layout therefore runs a placement
// pass, commits it immediately, and then runs a stabilization pass over the
// committed result. Layout requests for the same root are serialized; if a
// newer request for the root arrives while a pass runs, the stabilization
// pass of the older request is skipped since the newer one recomputes from
// the updated scene anyway.
//
// # Rejected edits
//
// Structural edits validate their preconditions before touching anything.
// A rejected edit returns an [errors.ErrCodeInvariantViolation] error and
// commits nothing.
package engine
