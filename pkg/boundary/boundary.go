// Package boundary maintains the convex "cloud" polygons drawn around
// branches.
//
// A boundary is a closed line object owned by one node. Its points are the
// convex hull of the padded extents of every visible object in the owner's
// subtree, nested boundaries included, so boundaries are always updated
// children first.
package boundary

import (
	"github.com/matzehuels/mindlayout/pkg/config"
	"github.com/matzehuels/mindlayout/pkg/geom"
	"github.com/matzehuels/mindlayout/pkg/hierarchy"
	"github.com/matzehuels/mindlayout/pkg/scene"
)

// DefaultStrokeWidth is the stroke of a newly created boundary.
const DefaultStrokeWidth = 1

// Extent returns the canvas-space bounds of an object. Linear objects are
// measured by their points.
func Extent(o *scene.Object) geom.Box {
	if o.IsLinear() && len(o.Points) > 0 {
		if b, ok := geom.BoundsOf(o.AbsPoints()); ok {
			return b
		}
	}
	return o.Box()
}

// Members returns the IDs of all objects enclosed by id's boundary: subtree
// nodes, their bound text and decorations, the hierarchy connectors inside
// the subtree, fold indicators and nested boundaries.
func Members(ix *hierarchy.Index, buf *scene.Buffer, id string) []string {
	var out []string
	for _, n := range ix.Subtree(id) {
		out = append(out, n)
		out = append(out, ix.BoundText(n)...)
		out = append(out, ix.Decorations(n)...)
		if n != id {
			if c, ok := ix.Connector(n); ok {
				out = append(out, c)
				out = append(out, ix.BoundText(c)...)
			}
		}
		node := buf.Live(n)
		if node == nil {
			continue
		}
		if ind := node.Node.FoldIndicatorID; ind != "" {
			out = append(out, ind)
		}
		if b := node.Node.BoundaryID; b != "" && n != id {
			out = append(out, b)
		}
	}
	return out
}

// Compute rewrites the boundary of id. It reports false and leaves the
// polygon untouched when id has no boundary, is invisible or the hull is
// degenerate.
func Compute(buf *scene.Buffer, ix *hierarchy.Index, cfg config.Resolved, id string) bool {
	owner := buf.Live(id)
	if !owner.IsNode() || !owner.IsVisible() {
		return false
	}
	bid := owner.Node.BoundaryID
	if buf.Live(bid) == nil {
		return false
	}
	var pts []geom.Point
	for _, m := range Members(ix, buf, id) {
		o := buf.Live(m)
		if !o.IsVisible() {
			continue
		}
		pts = append(pts, Extent(o).Pad(cfg.BoundaryPadding).Corners()...)
	}
	hull := geom.ConvexHull(pts)
	if len(hull) < 3 {
		return false
	}
	bbox, _ := geom.BoundsOf(hull)
	loop := make([]geom.Point, 0, len(hull)+1)
	for _, p := range hull {
		loop = append(loop, geom.Pt(p.X-bbox.X, p.Y-bbox.Y))
	}
	loop = append(loop, loop[0])

	b := buf.Edit(bid)
	b.SetBox(bbox)
	b.Points = loop
	return true
}

// UpdateAll recomputes every boundary in the subtree of id, deepest first.
// It returns the number of polygons written.
func UpdateAll(buf *scene.Buffer, ix *hierarchy.Index, cfg config.Resolved, id string) int {
	sub := ix.Subtree(id)
	n := 0
	for i := len(sub) - 1; i >= 0; i-- {
		if node := buf.Live(sub[i]); node.IsNode() && node.Node.BoundaryID != "" {
			if Compute(buf, ix, cfg, sub[i]) {
				n++
			}
		}
	}
	return n
}

// Create adds a boundary to id and computes it. It returns the boundary ID,
// or the existing one if id already has a boundary.
func Create(buf *scene.Buffer, ix *hierarchy.Index, cfg config.Resolved, id string) string {
	owner := buf.Live(id)
	if !owner.IsNode() {
		return ""
	}
	if b := buf.Live(owner.Node.BoundaryID); b != nil {
		return b.ID
	}
	b := &scene.Object{
		ID:          scene.NewID(),
		Kind:        scene.KindLine,
		Opacity:     scene.OpacityVisible,
		StrokeWidth: DefaultStrokeWidth,
		Role:        scene.RoleBoundary,
		OwnerID:     id,
	}
	buf.Add(b)
	buf.Edit(id).Node.BoundaryID = b.ID
	Compute(buf, ix, cfg, id)
	return b.ID
}

// Remove deletes the boundary of id, if any.
func Remove(buf *scene.Buffer, id string) bool {
	owner := buf.Live(id)
	if !owner.IsNode() || owner.Node.BoundaryID == "" {
		return false
	}
	buf.Delete(owner.Node.BoundaryID)
	buf.Edit(id).Node.BoundaryID = ""
	return true
}

// Toggle creates the boundary of id or removes it. It reports whether the
// node has a boundary afterwards.
func Toggle(buf *scene.Buffer, ix *hierarchy.Index, cfg config.Resolved, id string) bool {
	if Remove(buf, id) {
		return false
	}
	return Create(buf, ix, cfg, id) != ""
}
