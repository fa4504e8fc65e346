package placement

import (
	"math"

	"github.com/matzehuels/mindlayout/pkg/geom"
	"github.com/matzehuels/mindlayout/pkg/scene"
)

// ConnectorPath returns the canvas points of a hierarchy connector from a
// parent box to a child box. Connectors leaving the map root start where the
// ray toward the child exits the root box; deeper connectors start at the
// middle of the parent's edge facing the child. Straight paths have two
// points; curved paths have three from the root and four below it.
func ConnectorPath(parent, child geom.Box, fromRoot bool, style scene.ArrowStyle, curvature float64) []geom.Point {
	side := geom.Right
	if child.CenterX() < parent.CenterX() {
		side = geom.Left
	}
	end := geom.Pt(child.LeadingEdge(side), child.CenterY())
	start := geom.Pt(parent.TrailingEdge(side), parent.CenterY())
	if fromRoot {
		start = geom.RayExit(parent, end)
	}
	if style == scene.ArrowStraight {
		return []geom.Point{start, end}
	}
	dx := end.X - start.X
	if fromRoot {
		return []geom.Point{start, geom.Pt(start.X+dx*curvature, end.Y), end}
	}
	return []geom.Point{
		start,
		geom.Pt(start.X+dx*curvature, start.Y),
		geom.Pt(end.X-dx*curvature, end.Y),
		end,
	}
}

// reshapeConnector rewrites the connector to child and rebinds its ends.
func (p *placer) reshapeConnector(parent, child string) {
	cid, ok := p.ix.Connector(child)
	if !ok {
		return
	}
	conn := p.buf.Live(cid)
	pn, cn := p.ix.Node(parent), p.ix.Node(child)
	if conn == nil || pn == nil || cn == nil {
		return
	}
	pts := ConnectorPath(pn.Box(), cn.Box(), parent == p.rootID, p.cfg.ArrowStyle, p.cfg.Curvature)
	if samePath(conn.AbsPoints(), pts) && conn.StartID() == parent && conn.EndID() == child {
		return
	}
	c := p.buf.Edit(cid)
	c.SetAbsPoints(pts)
	if c.StartBinding == nil {
		c.StartBinding = &scene.Binding{}
	}
	if c.EndBinding == nil {
		c.EndBinding = &scene.Binding{}
	}
	c.StartBinding.ElementID = parent
	c.EndBinding.ElementID = child
	p.stats.Connectors++
}

func samePath(a, b []geom.Point) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i].X-b[i].X) > moveTolerance || math.Abs(a[i].Y-b[i].Y) > moveTolerance {
			return false
		}
	}
	return true
}
