package placement

import (
	"math"
	"slices"

	"github.com/matzehuels/mindlayout/pkg/config"
	"github.com/matzehuels/mindlayout/pkg/geom"
)

// spreadSteps bounds how often the radii grow when branch boxes still
// collide after slot allocation.
const spreadSteps = 48

// Item is a level-1 branch to be distributed around the root.
type Item struct {
	ID string
	// Width is the branch's horizontal extent: the node plus the columns of
	// descendants stacked beside it.
	Width float64
	// Height is the branch's subtree height.
	Height float64
}

// Slot is the angular interval assigned to one item, in degrees clockwise
// from 12 o'clock.
type Slot struct {
	ID    string
	Start float64
	Span  float64
	// Angle is the slot center, where the item is placed.
	Angle float64
}

// End returns the angle where the slot ends.
func (s Slot) End() float64 { return s.Start + s.Span }

// Radial is the outcome of the radial distribution.
type Radial struct {
	RadiusX float64
	RadiusY float64
	Slots   []Slot
	// Required is the summed angular span before sparse maps are stretched.
	Required float64
}

// arcSpan returns the angle an item occupies on the ellipse when centered at
// deg: its box projected onto the tangent plus a gap, converted from arc
// length to degrees. The gap grows near the poles, where the flatter part of
// the ellipse crowds neighbors.
func arcSpan(it Item, rx, ry, deg float64, cfg config.Resolved) float64 {
	t := geom.EllipseTangent(rx, ry, deg)
	proj := math.Abs(t.X)*it.Width + math.Abs(t.Y)*it.Height
	gap := cfg.RadialGap * (1 + cfg.PoleGapBonus*math.Abs(math.Cos(geom.Radians(deg))))
	rate := geom.EllipseArcRate(rx, ry, deg)
	if rate < geom.Epsilon {
		return 360
	}
	return geom.Degrees((proj + gap) / rate)
}

// simulate lays items out back to back from the start angle.
func simulate(items []Item, rx, ry float64, cfg config.Resolved) ([]Slot, float64) {
	slots := make([]Slot, len(items))
	at := cfg.RadialStartAngle
	for i, it := range items {
		span := arcSpan(it, rx, ry, at, cfg)
		span = arcSpan(it, rx, ry, at+span/2, cfg)
		slots[i] = Slot{ID: it.ID, Start: at, Span: span, Angle: at + span/2}
		at += span
	}
	return slots, at - cfg.RadialStartAngle
}

// RadialSlots distributes items, already in placement order, around an
// ellipse whose radii are at least minRX and minRY.
//
// When the items need more than the configured sweep, the radii grow until
// they fit. When they need less and there is more than one item, every slot
// is widened by the same amount so the items fill the sweep.
func RadialSlots(items []Item, minRX, minRY float64, cfg config.Resolved) Radial {
	rx, ry := minRX, minRY
	slots, total := simulate(items, rx, ry, cfg)
	for step := 0; total > cfg.RadialMaxSweep && step < cfg.RadialGrowSteps; step++ {
		scale := math.Max(1.05, total/cfg.RadialMaxSweep*1.02)
		rx, ry = rx*scale, ry*scale
		slots, total = simulate(items, rx, ry, cfg)
	}
	r := Radial{RadiusX: rx, RadiusY: ry, Slots: slots, Required: total}
	if len(items) < 2 || total >= cfg.RadialMaxSweep {
		return r
	}
	extra := (cfg.RadialMaxSweep - total) / float64(len(items))
	at := cfg.RadialStartAngle
	for i := range r.Slots {
		s := &r.Slots[i]
		s.Start = at
		s.Span += extra
		s.Angle = at + s.Span/2
		at += s.Span
	}
	return r
}

func (p *placer) placeRadial() {
	root := p.ix.Node(p.rootID)
	rb := root.Box()

	var items []Item
	var pinned []string
	kids := p.ix.Children(p.rootID)
	slices.SortStableFunc(kids, p.ix.CompareOrder)
	p.resyncOrder(kids)
	for _, c := range kids {
		n := p.ix.Node(c)
		if n.Node.Pinned {
			pinned = append(pinned, c)
			continue
		}
		items = append(items, Item{ID: c, Width: p.m.SubtreeWidth(c), Height: p.m.SubtreeHeight(c)})
	}

	minRY := math.Max(p.cfg.RadialMinRadius, rb.Height/2+p.cfg.HorizontalGap)
	minRX := math.Max(minRY*p.cfg.RadialAspect, rb.Width/2+p.cfg.HorizontalGap)
	r := RadialSlots(items, minRX, minRY, p.cfg)
	for step := 0; step < spreadSteps && branchesCollide(r, items, rb); step++ {
		r = RadialSlots(items, r.RadiusX*1.1, r.RadiusY*1.1, p.cfg)
	}
	p.stats.RadiusX, p.stats.RadiusY = r.RadiusX, r.RadiusY

	for _, s := range r.Slots {
		target := geom.EllipsePoint(rb.Center(), r.RadiusX, r.RadiusY, s.Angle)
		side := geom.Left
		if geom.OnRightHalf(s.Angle) {
			side = geom.Right
		}
		p.layoutSubtree(s.ID, target.X, target.Y, side)
	}
	for _, c := range pinned {
		p.layoutSubtree(c, 0, 0, p.sideOf(c, p.rootID))
	}
}

// BranchBox returns the area a branch occupies when its node is anchored at
// the ellipse point of angle: the subtree grows outward from the anchor and
// is centered on it vertically.
func BranchBox(it Item, anchor geom.Point, angle float64) geom.Box {
	x := anchor.X
	if !geom.OnRightHalf(angle) {
		x -= it.Width
	}
	return geom.Box{X: x, Y: anchor.Y - it.Height/2, Width: it.Width, Height: it.Height}
}

// branchesCollide reports whether any two branch boxes of r, or a branch and
// the root box, intersect. Slot allocation works on tangent projections and
// can leave the outward columns of neighbors near the poles touching.
func branchesCollide(r Radial, items []Item, root geom.Box) bool {
	boxes := []geom.Box{root}
	for i, s := range r.Slots {
		a := geom.EllipsePoint(root.Center(), r.RadiusX, r.RadiusY, s.Angle)
		b := BranchBox(items[i], a, s.Angle)
		for _, o := range boxes {
			if b.Overlaps(o) {
				return true
			}
		}
		boxes = append(boxes, b)
	}
	return false
}
