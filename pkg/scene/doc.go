// Package scene defines the graphical-object model the layout engine works on
// and the interfaces through which it talks to the host canvas.
//
// # Objects
//
// A scene is a flat, unordered collection of [Object] values: boxes, text,
// arrows, lines and polygons. Nothing in the collection is a tree; the mind
// map is implied by tags:
//
//   - An object with a non-nil [Object.Node] is a mind-map node.
//   - An arrow with [Object.Hierarchy] set, bound to two nodes, is a
//     hierarchy connector (source = parent, target = child).
//   - Any other arrow bound to two nodes is a cross-link.
//   - A root node carries map-wide preferences in [Object.Root].
//   - Boundary polygons and fold indicators are tagged with a [Role].
//
// The typed metadata replaces a loosely typed key/value bag: every engine
// flag (order, pinned, folded, new, boundary and indicator references) is an
// explicit field of [NodeMeta].
//
// # Edit Buffer
//
// The engine never mutates host-owned objects directly. [NewBuffer] deep
// copies a snapshot; mutations go through [Buffer.Edit], which records the
// object as changed. [Buffer.Changes] returns exactly the objects that must
// be committed back through [Host.Commit].
//
// # Host
//
// [Host] is the boundary to the drawing canvas: read all objects, commit a
// set of changed objects, and read or set the selection. Commit is the
// engine's only suspension point.
package scene
