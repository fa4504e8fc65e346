// Package hierarchy derives the mind-map tree from a flat object collection.
//
// # Overview
//
// A scene has no explicit tree. Nodes are objects carrying [scene.NodeMeta];
// the tree is implied by arrows tagged as hierarchy connectors, each bound
// from a parent node to a child node. [Build] walks the collection once and
// produces an [Index] with explicit adjacency maps:
//
//   - parent of every child and the connector that makes it a child
//   - children of every parent, in collection order (unordered by design;
//     callers sort with [Index.SortedChildren])
//   - cross-links: arrows between two nodes that are not hierarchy connectors
//   - decorations: non-structural objects sharing a user group with a node
//   - bound text: labels whose container is a node or connector
//
// The index is read-only and is rebuilt whenever the structure changes.
// Positions are read through the object pointers it holds, so geometry edits
// made through the owning [scene.Buffer] stay visible without a rebuild.
//
// # Missing references
//
// Connectors bound to objects that no longer exist, self-loops and second
// incoming connectors are skipped and listed in [Index.Skipped]. Queries never
// fail on them.
//
// # Cycles
//
// [Index.Info] walks parent links with a visited set; revisiting a node ends
// the walk and treats the last node reached as the root.
package hierarchy
