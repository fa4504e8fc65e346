package placement

import (
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/mindlayout/pkg/config"
	"github.com/matzehuels/mindlayout/pkg/errors"
	"github.com/matzehuels/mindlayout/pkg/geom"
	"github.com/matzehuels/mindlayout/pkg/hierarchy"
	"github.com/matzehuels/mindlayout/pkg/metrics"
	"github.com/matzehuels/mindlayout/pkg/scene"
	"github.com/matzehuels/mindlayout/pkg/visibility"
)

// moveTolerance is the displacement below which a box is left alone, so a
// settled map produces no change records.
const moveTolerance = 1e-3

// Options tune a single pass.
type Options struct {
	// HonorManualOrder sorts children by stored order instead of by their
	// current position.
	HonorManualOrder bool
}

// Stats summarizes a pass.
type Stats struct {
	Nodes       int
	Moved       int
	Connectors  int
	CrossLinks  int
	Decorations int
	Purged      int
	Reordered   int
	// MaxShift is the largest node displacement of the pass.
	MaxShift float64
	// RadiusX and RadiusY are the ellipse radii of a radial pass.
	RadiusX, RadiusY float64
}

type placer struct {
	buf    *scene.Buffer
	ix     *hierarchy.Index
	m      *metrics.Metrics
	cfg    config.Resolved
	opts   Options
	rootID string

	before  map[string]geom.Box
	visited map[string]bool
	fixed   map[string]bool
	stats   Stats
}

// Run lays out the map rooted at rootID in buf. ix must be built from buf
// and rootID must be a root of it.
func Run(buf *scene.Buffer, ix *hierarchy.Index, cfg config.Resolved, rootID string, opts Options) (Stats, error) {
	root := ix.Node(rootID)
	if root == nil {
		return Stats{}, errors.New(errors.ErrCodeNodeNotFound, "root node %q not found", rootID)
	}
	if !ix.IsRoot(rootID) {
		if loop := ix.Cycle(rootID); loop != nil {
			return Stats{}, errors.Invariant("hierarchy connectors form a cycle: %s",
				strings.Join(append(loop, loop[0]), " -> "))
		}
		return Stats{}, errors.New(errors.ErrCodeInvalidInput, "node %q is not a map root", rootID)
	}
	p := &placer{
		buf:     buf,
		ix:      ix,
		m:       metrics.New(ix, cfg),
		cfg:     cfg,
		opts:    opts,
		rootID:  rootID,
		before:  make(map[string]geom.Box),
		visited: make(map[string]bool),
		fixed:   make(map[string]bool),
	}
	for _, id := range ix.Nodes() {
		p.before[id] = ix.Node(id).Box()
	}

	p.placeRoot()
	p.reconcile()
	p.clearNew()
	p.purge()
	return p.stats, nil
}

func (p *placer) placeRoot() {
	root := p.ix.Node(p.rootID)
	p.visited[p.rootID] = true
	p.stats.Nodes++
	p.alignText(p.rootID, geom.Right, true)
	if root.Node.Folded {
		p.syncIndicator(p.rootID, geom.Right)
		return
	}

	switch mode := p.cfg.GrowthMode; {
	case mode == scene.GrowthRadial:
		p.placeRadial()
	case mode.Directional():
		p.placeDirectional()
	default:
		p.placeManual()
	}
	for _, c := range p.ix.Children(p.rootID) {
		p.reshapeConnector(p.rootID, c)
	}
	p.syncIndicator(p.rootID, geom.Right)
}

// placeManual keeps level-1 nodes in place and lays out their subtrees.
func (p *placer) placeManual() {
	cx := p.ix.Node(p.rootID).Center().X
	for _, c := range p.ix.Children(p.rootID) {
		n := p.ix.Node(c)
		side := geom.Right
		if n.Center().X < cx {
			side = geom.Left
		}
		p.fixed[c] = true
		p.layoutSubtree(c, 0, 0, side)
	}
}

// layoutSubtree moves id so its leading edge is at targetX and its center at
// targetCY, then stacks and places its children on side.
func (p *placer) layoutSubtree(id string, targetX, targetCY float64, side geom.Side) {
	n := p.ix.Node(id)
	if n == nil || p.visited[id] {
		return
	}
	p.visited[id] = true
	p.stats.Nodes++

	if !n.Node.Pinned && !p.fixed[id] {
		x := targetX
		if side == geom.Left {
			x = targetX - n.Width
		}
		p.setBox(id, geom.Box{X: x, Y: targetCY - n.Height/2, Width: n.Width, Height: n.Height})
	}
	p.alignText(id, side, false)
	p.syncIndicator(id, side)
	if n.Node.Folded {
		return
	}

	kids := p.sortChildren(id)
	var stacked []string
	for _, k := range kids {
		if kn := p.ix.Node(k); kn != nil && !kn.Node.Pinned {
			stacked = append(stacked, k)
		}
	}
	box := p.ix.Node(id).Box()
	cursor := box.CenterY() - p.m.StackHeight(stacked)/2
	for _, k := range stacked {
		h := p.m.SubtreeHeight(k)
		x := box.TrailingEdge(side) + side.Sign()*p.m.ChildGap(k)
		p.layoutSubtree(k, x, cursor+h/2, side)
		cursor += h + p.m.GapAfter(k)
	}
	for _, k := range kids {
		if kn := p.ix.Node(k); kn != nil && kn.Node.Pinned {
			p.layoutSubtree(k, 0, 0, p.sideOf(k, id))
		}
		p.reshapeConnector(id, k)
	}
}

// sideOf returns the side of node id relative to ref.
func (p *placer) sideOf(id, ref string) geom.Side {
	n, r := p.ix.Node(id), p.ix.Node(ref)
	if n == nil || r == nil || n.Center().X >= r.Center().X {
		return geom.Right
	}
	return geom.Left
}

// sortChildren orders the children of id for stacking and resynchronizes
// their stored order with the result.
func (p *placer) sortChildren(id string) []string {
	kids := p.ix.Children(id)
	p.sortNodes(kids)
	p.resyncOrder(kids)
	return kids
}

// sortNodes sorts ids in stacking order: new nodes last, then by stored
// order or by vertical position.
func (p *placer) sortNodes(ids []string) {
	slices.SortStableFunc(ids, func(a, b string) int {
		na, nb := p.ix.Node(a), p.ix.Node(b)
		if na.Node.IsNew != nb.Node.IsNew {
			if na.Node.IsNew {
				return 1
			}
			return -1
		}
		if p.opts.HonorManualOrder {
			return p.ix.CompareOrder(a, b)
		}
		switch ya, yb := na.Center().Y, nb.Center().Y; {
		case ya < yb:
			return -1
		case ya > yb:
			return 1
		}
		return p.ix.CompareOrder(a, b)
	})
}

// resyncOrder rewrites order values as 0..n-1 when they are not already
// strictly increasing along ids.
func (p *placer) resyncOrder(ids []string) {
	sorted := true
	for i := 1; i < len(ids); i++ {
		if p.ix.Node(ids[i-1]).Node.Order >= p.ix.Node(ids[i]).Node.Order {
			sorted = false
			break
		}
	}
	if sorted {
		return
	}
	for i, id := range ids {
		if p.ix.Node(id).Node.Order != float64(i) {
			p.buf.Edit(id).Node.Order = float64(i)
			p.stats.Reordered++
		}
	}
}

func (p *placer) setBox(id string, b geom.Box) {
	cur := p.ix.Node(id).Box()
	shift := math.Max(math.Abs(b.X-cur.X), math.Abs(b.Y-cur.Y))
	if shift < moveTolerance {
		return
	}
	p.buf.Edit(id).SetBox(b)
	p.stats.Moved++
	p.stats.MaxShift = math.Max(p.stats.MaxShift, shift)
}

// alignText sets the alignment of the node's text and bound labels.
func (p *placer) alignText(id string, side geom.Side, isRoot bool) {
	align := scene.AlignLeft
	switch {
	case isRoot || p.cfg.CenterText:
		align = scene.AlignCenter
	case side == geom.Left:
		align = scene.AlignRight
	}
	targets := p.ix.BoundText(id)
	if n := p.ix.Node(id); n.Kind == scene.KindText {
		targets = append(targets, id)
	}
	for _, t := range targets {
		if o := p.buf.Live(t); o != nil && o.TextAlign != align {
			p.buf.Edit(t).TextAlign = align
		}
	}
}

func (p *placer) syncIndicator(id string, side geom.Side) {
	n := p.ix.Node(id)
	if n.Node.FoldIndicatorID == "" {
		return
	}
	visibility.PlaceIndicator(p.buf, n.Node.FoldIndicatorID, n.Box(), side, p.cfg, len(p.ix.Descendants(id)))
}

// clearNew drops the IsNew flag from every placed node.
func (p *placer) clearNew() {
	for id := range p.visited {
		if n := p.ix.Node(id); n != nil && n.Node.IsNew {
			p.buf.Edit(id).Node.IsNew = false
		}
	}
}
