// Package placement computes node positions and connector paths for one mind
// map.
//
// # Overview
//
// A pass starts at the map root and distributes its direct children, the
// level-1 branches, with one of three strategies chosen by the root's growth
// mode:
//
//   - radial: around an ellipse centered on the root (see [RadialSlots])
//   - right, left, left-right: on a vertical arc beside the root, stepping
//     around pinned branches
//   - manual: level-1 nodes stay where the user put them
//
// Every level-1 branch is then placed recursively: a node's leading edge is
// moved to a target x and its center to a target y, its children are sorted
// and stacked around its center using [metrics.Metrics], one horizontal gap
// further out. Pinned nodes keep their position but their children are still
// placed. Folded nodes keep their children where they are.
//
// After the tree is placed, hierarchy connectors are reshaped to the new
// geometry and the whole collection is reconciled: cross-links stretch
// between their moved endpoints, decorations and bound text follow their
// hosts, and change records of unrelated objects are dropped.
//
// # Ordering
//
// Children are sorted by current vertical position so a layout never fights
// a drag. Structural edits set [Options.HonorManualOrder] to sort by stored
// order instead. Nodes flagged as new are always appended last. Whenever the
// resulting sequence disagrees with the stored order values, the values are
// rewritten as dense integers so later order-based operations see what the
// user sees.
//
// # Stability
//
// A pass is deterministic and idempotent on a settled map: running it twice
// moves nothing the second time. [Stats.MaxShift] reports the largest
// displacement of a pass so callers can verify that.
package placement
