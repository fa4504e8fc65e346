package placement

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/mindlayout/pkg/boundary"
	"github.com/matzehuels/mindlayout/pkg/geom"
	"github.com/matzehuels/mindlayout/pkg/hierarchy"
	"github.com/matzehuels/mindlayout/pkg/scene"
)

// reconcile makes cross-links, decorations and bound text follow the nodes
// moved by the pass. It covers the whole collection, not only the placed
// tree, since a cross-link may leave the tree.
func (p *placer) reconcile() {
	for _, l := range p.ix.CrossLinks() {
		if p.stretchLink(l) {
			p.stats.CrossLinks++
		}
	}
	for _, o := range p.buf.All() {
		if o.Deleted || hierarchy.IsStructural(o) {
			continue
		}
		switch {
		case o.ContainerID != "":
			p.followContainer(o)
		case len(o.GroupIDs) > 0:
			p.followHosts(o)
		}
	}
}

// delta returns how far node id's center moved during the pass.
func (p *placer) delta(id string) geom.Point {
	before, ok := p.before[id]
	n := p.ix.Node(id)
	if !ok || n == nil {
		return geom.Point{}
	}
	return r2.Sub(n.Center(), before.Center())
}

// stretchLink moves each point of a cross-link by a blend of its endpoints'
// displacements, weighted by the point's arc-length position along the link.
func (p *placer) stretchLink(id string) bool {
	link := p.buf.Live(id)
	if link == nil {
		return false
	}
	ds, de := p.delta(link.StartID()), p.delta(link.EndID())
	if geom.Near(ds, geom.Point{}) && geom.Near(de, geom.Point{}) {
		return false
	}
	pts := link.AbsPoints()
	if len(pts) == 0 {
		return false
	}
	ts := arcParams(pts)
	for i := range pts {
		shift := r2.Add(r2.Scale(1-ts[i], ds), r2.Scale(ts[i], de))
		pts[i] = r2.Add(pts[i], shift)
	}
	p.buf.Edit(id).SetAbsPoints(pts)
	return true
}

// arcParams returns each point's normalized arc-length position in [0, 1].
func arcParams(pts []geom.Point) []float64 {
	ts := make([]float64, len(pts))
	var total float64
	for i := 1; i < len(pts); i++ {
		total += r2.Norm(r2.Sub(pts[i], pts[i-1]))
		ts[i] = total
	}
	for i := range ts {
		switch {
		case total > geom.Epsilon:
			ts[i] /= total
		case len(pts) > 1:
			ts[i] = float64(i) / float64(len(pts)-1)
		}
	}
	return ts
}

// followHosts translates a decoration by the centroid shift of the nodes it
// shares user groups with.
func (p *placer) followHosts(o *scene.Object) {
	var before, after []geom.Box
	for _, g := range o.GroupIDs {
		if scene.IsBranchGroup(g) {
			continue
		}
		for _, m := range p.ix.GroupMembers(g) {
			n := p.ix.Node(m)
			b, ok := p.before[m]
			if n == nil || !ok {
				continue
			}
			before = append(before, b)
			after = append(after, n.Box())
		}
	}
	b0, ok0 := geom.UnionAll(before)
	b1, ok1 := geom.UnionAll(after)
	if !ok0 || !ok1 {
		return
	}
	d := r2.Sub(b1.Center(), b0.Center())
	if geom.Near(d, geom.Point{}) {
		return
	}
	p.buf.Edit(o.ID).Translate(d)
	p.stats.Decorations++
}

// followContainer keeps bound text on its container: labels of nodes move
// with the node, labels of connectors sit at the path midpoint.
func (p *placer) followContainer(o *scene.Object) {
	c := p.buf.Live(o.ContainerID)
	if c == nil {
		return
	}
	var d geom.Point
	if c.IsLinear() {
		mid := midpoint(c.AbsPoints())
		d = r2.Sub(mid, o.Center())
	} else {
		d = p.delta(c.ID)
	}
	if math.Abs(d.X) < moveTolerance && math.Abs(d.Y) < moveTolerance {
		return
	}
	p.buf.Edit(o.ID).Translate(d)
	p.stats.Decorations++
}

// midpoint returns the point halfway along a polyline.
func midpoint(pts []geom.Point) geom.Point {
	if len(pts) == 0 {
		return geom.Point{}
	}
	ts := arcParams(pts)
	for i := 1; i < len(pts); i++ {
		if ts[i] >= 0.5 {
			span := ts[i] - ts[i-1]
			if span < geom.Epsilon {
				return pts[i]
			}
			return geom.Lerp(pts[i-1], pts[i], (0.5-ts[i-1])/span)
		}
	}
	return pts[len(pts)-1]
}

// purge drops change records of objects unrelated to the placed map. Deleted
// objects are always kept so removals reach the host.
func (p *placer) purge() {
	keep := make(map[string]bool)
	for _, id := range boundary.Members(p.ix, p.buf, p.rootID) {
		keep[id] = true
	}
	if root := p.buf.Live(p.rootID); root != nil && root.Node.BoundaryID != "" {
		keep[root.Node.BoundaryID] = true
	}
	for _, l := range p.ix.CrossLinks() {
		keep[l] = true
		for _, t := range p.ix.BoundText(l) {
			keep[t] = true
		}
	}
	for _, id := range p.ix.Nodes() {
		for _, d := range p.ix.Decorations(id) {
			keep[d] = true
		}
		for _, t := range p.ix.BoundText(id) {
			keep[t] = true
		}
	}
	p.stats.Purged = p.buf.Retain(func(o *scene.Object) bool {
		return o.Deleted || keep[o.ID] || (o.Role != scene.RoleNone && keep[o.OwnerID])
	})
}
