// Package editor performs structural edits on a mind map.
//
// Every operation validates its preconditions before touching the buffer, so
// a rejected edit leaves the scene exactly as it was. Rejections are
// [errors.ErrCodeInvariantViolation] errors meant to be shown to the user;
// lookups of unknown nodes fail with [errors.ErrCodeNodeNotFound].
//
// Operations return a [Result] naming the map root to lay out next and
// whether that layout must trust stored order values over visual positions.
// The editor never places nodes itself beyond giving new nodes a sensible
// starting position.
//
// Moving operations (promote, demote, reorder, side-swap) require that
// auto-layout is enabled and that the node is neither pinned nor the root.
package editor
