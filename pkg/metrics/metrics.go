// Package metrics computes how much vertical space a subtree occupies when it
// is stacked by the placement engine.
//
// A [Metrics] value lives for exactly one layout pass. Heights are cached per
// node ID the first time they are computed and the cache is dropped with the
// value, so a node is never measured twice in the same pass and never reuses
// a measurement from an earlier one.
package metrics

import (
	"math"

	"github.com/matzehuels/mindlayout/pkg/config"
	"github.com/matzehuels/mindlayout/pkg/hierarchy"
)

// Metrics measures subtrees of one index.
type Metrics struct {
	ix      *hierarchy.Index
	cfg     config.Resolved
	heights map[string]float64
	widths  map[string]float64
	active  map[string]bool
}

// New returns a fresh per-pass measurer.
func New(ix *hierarchy.Index, cfg config.Resolved) *Metrics {
	return &Metrics{
		ix:      ix,
		cfg:     cfg,
		heights: make(map[string]float64),
		widths:  make(map[string]float64),
		active:  make(map[string]bool),
	}
}

// UnpinnedChildren returns the children that take part in stacking, in
// collection order.
func (m *Metrics) UnpinnedChildren(id string) []string {
	var out []string
	for _, c := range m.ix.Children(id) {
		if n := m.ix.Node(c); n != nil && !n.Node.Pinned {
			out = append(out, c)
		}
	}
	return out
}

// IsLeaf reports whether id stacks like a leaf: it is folded or has no
// unpinned children.
func (m *Metrics) IsLeaf(id string) bool {
	n := m.ix.Node(id)
	if n == nil || n.Node.Folded {
		return true
	}
	return len(m.UnpinnedChildren(id)) == 0
}

// GapAfter returns the vertical gap that follows child id when it is stacked
// above a sibling. Leaves pack tighter than branches.
func (m *Metrics) GapAfter(id string) float64 {
	if !m.IsLeaf(id) {
		return m.cfg.SiblingGap
	}
	size := m.cfg.FontSizeAt(m.ix.Depth(id))
	if n := m.ix.Node(id); n != nil && n.FontSize > 0 {
		size = n.FontSize
	}
	return size * m.cfg.LeafGapMultiplier
}

// StackHeight returns the height of ids stacked top to bottom with gaps.
func (m *Metrics) StackHeight(ids []string) float64 {
	var h float64
	for i, id := range ids {
		h += m.SubtreeHeight(id)
		if i < len(ids)-1 {
			h += m.GapAfter(id)
		}
	}
	return h
}

// SubtreeHeight returns the vertical extent of the subtree rooted at id.
// Folded nodes count as their own height. Unknown IDs measure zero.
func (m *Metrics) SubtreeHeight(id string) float64 {
	if h, ok := m.heights[id]; ok {
		return h
	}
	n := m.ix.Node(id)
	if n == nil {
		return 0
	}
	if m.active[id] {
		return n.Height
	}
	m.active[id] = true
	defer delete(m.active, id)

	h := n.Height
	if !n.Node.Folded {
		if kids := m.UnpinnedChildren(id); len(kids) > 0 {
			h = math.Max(h, m.StackHeight(kids))
		}
		if m.HasBoundary(id) {
			h += 2 * m.cfg.BoundaryPadding
		}
	}
	m.heights[id] = h
	return h
}

// SubtreeWidth returns the horizontal extent of the subtree rooted at id:
// the node itself plus the widest column of stacked descendants beside it,
// each separated by the horizontal gap.
func (m *Metrics) SubtreeWidth(id string) float64 {
	if w, ok := m.widths[id]; ok {
		return w
	}
	n := m.ix.Node(id)
	if n == nil {
		return 0
	}
	if m.active[id] {
		return n.Width
	}
	m.active[id] = true
	defer delete(m.active, id)

	w := n.Width
	if !n.Node.Folded {
		var col float64
		for _, k := range m.UnpinnedChildren(id) {
			col = math.Max(col, m.ChildGap(k)+m.SubtreeWidth(k))
		}
		w += col
	}
	m.widths[id] = w
	return w
}

// ChildGap returns the horizontal distance between a parent and its child
// id. A child with a boundary sits further out so the outline clears the
// parent.
func (m *Metrics) ChildGap(id string) float64 {
	g := m.cfg.HorizontalGap
	if m.HasBoundary(id) {
		g += m.cfg.BoundaryPadding
	}
	return g
}

// HasBoundary reports whether id owns a live boundary object.
func (m *Metrics) HasBoundary(id string) bool {
	n := m.ix.Node(id)
	return n != nil && n.Node.BoundaryID != "" && m.ix.Object(n.Node.BoundaryID) != nil
}

// Cached reports how many heights have been memoized.
func (m *Metrics) Cached() int { return len(m.heights) }
