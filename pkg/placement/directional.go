package placement

import (
	"math"

	"github.com/matzehuels/mindlayout/pkg/geom"
	"github.com/matzehuels/mindlayout/pkg/scene"
)

// block is a level-1 branch's vertical extent on one side.
type block struct {
	id     string
	height float64
	gap    float64
	anchor bool
	top    float64
}

func (b block) bottom() float64 { return b.top + b.height }
func (b block) center() float64 { return b.top + b.height/2 }

func (p *placer) placeDirectional() {
	kids := p.ix.Children(p.rootID)
	p.sortNodes(kids)
	p.resyncOrder(kids)

	var right, left []string
	switch p.cfg.GrowthMode {
	case scene.GrowthRight:
		right = kids
	case scene.GrowthLeft:
		left = kids
	default:
		right, left = p.split(kids)
	}
	p.placeSide(right, geom.Right)
	p.placeSide(left, geom.Left)
}

// split assigns level-1 nodes to sides by their position relative to the
// root. New nodes go to the side with less content.
func (p *placer) split(kids []string) (right, left []string) {
	cx := p.ix.Node(p.rootID).Center().X
	var fresh []string
	var hr, hl float64
	for _, k := range kids {
		n := p.ix.Node(k)
		switch {
		case n.Node.IsNew && !n.Node.Pinned:
			fresh = append(fresh, k)
		case n.Center().X < cx:
			left = append(left, k)
			hl += p.m.SubtreeHeight(k)
		default:
			right = append(right, k)
			hr += p.m.SubtreeHeight(k)
		}
	}
	for _, k := range fresh {
		if hl < hr {
			left = append(left, k)
			hl += p.m.SubtreeHeight(k)
		} else {
			right = append(right, k)
			hr += p.m.SubtreeHeight(k)
		}
	}
	return right, left
}

// stack computes block tops for one side. Pinned nodes are anchors: nodes
// before the first anchor end just above it, the rest stack downward from
// the anchor before them, and a block that would overlap any anchor is
// pushed below it.
func (p *placer) stack(ids []string, cy float64) []block {
	dense := len(ids) > p.cfg.DenseThreshold
	blocks := make([]block, len(ids))
	first := -1
	for i, id := range ids {
		n := p.ix.Node(id)
		b := block{id: id, gap: p.m.GapAfter(id)}
		if dense {
			b.gap += p.cfg.DensePadding
		}
		if n.Node.Pinned {
			b.anchor = true
			b.height = math.Max(n.Height, p.m.SubtreeHeight(id))
			b.top = n.Center().Y - b.height/2
			if first < 0 {
				first = i
			}
		} else {
			b.height = p.m.SubtreeHeight(id)
		}
		blocks[i] = b
	}

	var cursor float64
	if first < 0 {
		total := 0.0
		for i, b := range blocks {
			total += b.height
			if i < len(blocks)-1 {
				total += b.gap
			}
		}
		cursor = cy - total/2
	} else {
		lead := 0.0
		for _, b := range blocks[:first] {
			lead += b.height + b.gap
		}
		cursor = blocks[first].top - lead
	}

	for i := range blocks {
		b := &blocks[i]
		if b.anchor {
			cursor = math.Max(cursor, b.bottom()+b.gap)
			continue
		}
		for moved := true; moved; {
			moved = false
			for _, a := range blocks {
				if a.anchor && cursor < a.bottom() && cursor+b.height > a.top {
					cursor = a.bottom() + a.gap
					moved = true
				}
			}
		}
		b.top = cursor
		cursor += b.height + b.gap
	}
	return blocks
}

// arcRadius returns the radius of the vertical arc for content of height h.
func (p *placer) arcRadius(h float64, n int) float64 {
	span := geom.Radians(p.cfg.DirectionalArcSpan)
	r := math.Max(h/span, (h/2)/math.Sin(span/2))
	r = math.Max(r, p.cfg.DirectionalMinRadius)
	if extra := n - p.cfg.DenseThreshold; extra > 0 {
		r += float64(extra) * p.cfg.DensePadding
	}
	return r
}

func (p *placer) placeSide(ids []string, side geom.Side) {
	if len(ids) == 0 {
		return
	}
	rb := p.ix.Node(p.rootID).Box()
	cx, cy := rb.CenterX(), rb.CenterY()
	blocks := p.stack(ids, cy)

	top, bottom := blocks[0].top, blocks[0].bottom()
	for _, b := range blocks {
		top = math.Min(top, b.top)
		bottom = math.Max(bottom, b.bottom())
	}
	r := p.arcRadius(bottom-top, len(ids))
	minDX := rb.Width/2 + p.cfg.HorizontalGap

	for _, b := range blocks {
		if b.anchor {
			p.layoutSubtree(b.id, 0, 0, side)
			continue
		}
		dy := b.center() - cy
		dx := 0.0
		if math.Abs(dy) < r {
			dx = r * math.Cos(math.Asin(dy/r))
		}
		dx = math.Max(dx, minDX)
		if p.m.HasBoundary(b.id) {
			dx += p.cfg.BoundaryPadding
		}
		p.layoutSubtree(b.id, cx+side.Sign()*dx, b.center(), side)
	}
}
