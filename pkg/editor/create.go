package editor

import (
	"strings"

	"github.com/matzehuels/mindlayout/pkg/config"
	"github.com/matzehuels/mindlayout/pkg/errors"
	"github.com/matzehuels/mindlayout/pkg/geom"
	"github.com/matzehuels/mindlayout/pkg/scene"
	"github.com/matzehuels/mindlayout/pkg/textmetrics"
)

// NewRoot adds a root node centered at (cx, cy) and returns its ID.
func (e *Editor) NewRoot(text string, cx, cy float64, rc scene.RootConfig) (Result, error) {
	if err := errors.ValidateNodeText(text); err != nil {
		return Result{}, err
	}
	n := e.newNode(text, 0, e.cfg.Resolve(&rc))
	n.X, n.Y = cx-n.Width/2, cy-n.Height/2
	n.TextAlign = scene.AlignCenter
	n.Root = &rc
	e.buf.Add(n)
	e.invalidate()
	return Result{RootID: n.ID, NodeID: n.ID}, nil
}

// AddChild creates a node under parent, appended after the existing
// children. A folded parent is unfolded first.
func (e *Editor) AddChild(parent, text string) (Result, error) {
	p, err := e.node(parent)
	if err != nil {
		return Result{}, err
	}
	if err := errors.ValidateNodeText(text); err != nil {
		return Result{}, err
	}
	if p.Node.Folded {
		e.buf.Edit(parent).Node.Folded = false
	}
	depth := e.Index().Depth(parent) + 1
	cfg, _ := e.resolved(parent)
	n := e.newNode(text, depth, cfg)
	n.Node.Order = e.maxOrder(parent) + 1
	n.Node.IsNew = true

	side := e.growthSide(parent)
	pb := p.Box()
	x := pb.TrailingEdge(side) + side.Sign()*e.cfg.HorizontalGap
	if side == geom.Left {
		x -= n.Width
	}
	n.X, n.Y = x, pb.Bottom()+e.cfg.SiblingGap
	e.buf.Add(n)
	e.connect(parent, n, depth)
	return Result{RootID: e.refresh(n.ID), NodeID: n.ID}, nil
}

// AddSibling creates a node right after id under the same parent.
func (e *Editor) AddSibling(id, text string) (Result, error) {
	s, err := e.node(id)
	if err != nil {
		return Result{}, err
	}
	parent, ok := e.Index().Parent(id)
	if !ok {
		return Result{}, errors.Invariant("the map root cannot have siblings")
	}
	if err := errors.ValidateNodeText(text); err != nil {
		return Result{}, err
	}
	depth := e.Index().Depth(id)
	cfg, _ := e.resolved(id)
	n := e.newNode(text, depth, cfg)
	n.Node.Order = e.orderAfter(parent, id)
	sb := s.Box()
	n.X = sb.X
	if s.Center().X < e.Index().Node(parent).Center().X {
		n.X = sb.Right() - n.Width
	}
	n.Y = sb.Bottom() + geom.Epsilon
	e.buf.Add(n)
	e.connect(parent, n, depth)
	return Result{RootID: e.refresh(n.ID), HonorManualOrder: true, NodeID: n.ID}, nil
}

// SetText replaces a node's label and resizes it.
func (e *Editor) SetText(id, text string) (Result, error) {
	n, err := e.node(id)
	if err != nil {
		return Result{}, err
	}
	if err := errors.ValidateNodeText(text); err != nil {
		return Result{}, err
	}
	cfg, rootID := e.resolved(id)
	size := textmetrics.Measure(e.measure, text, n.FontSize, cfg.WrapWidth, cfg.LineHeight, cfg.TextPadding)
	o := e.buf.Edit(id)
	o.Text = strings.Join(size.Lines, "\n")
	o.Width, o.Height = size.Width, size.Height
	return Result{RootID: rootID}, nil
}

// Delete removes id with its whole subtree: nodes, connectors, labels,
// decorations, boundaries, fold indicators and cross-links touching any
// removed node. The parent's remaining children are renumbered and a folded
// parent left without children is unfolded.
func (e *Editor) Delete(id string) (Result, error) {
	if _, err := e.node(id); err != nil {
		return Result{}, err
	}
	ix := e.Index()
	parent, ok := ix.Parent(id)
	if !ok {
		return Result{}, errors.Invariant("cannot delete the map root")
	}
	_, rootID := e.resolved(id)

	gone := make(map[string]bool)
	for _, n := range ix.Subtree(id) {
		gone[n] = true
	}
	var doomed []string
	for n := range gone {
		o := ix.Node(n)
		doomed = append(doomed, n, o.Node.BoundaryID, o.Node.FoldIndicatorID)
		doomed = append(doomed, ix.BoundText(n)...)
		if c, ok := ix.Connector(n); ok {
			doomed = append(doomed, c)
			doomed = append(doomed, ix.BoundText(c)...)
		}
		for _, l := range ix.CrossLinksOf(n) {
			doomed = append(doomed, l)
			doomed = append(doomed, ix.BoundText(l)...)
		}
		for _, d := range ix.Decorations(n) {
			if e.onlyHostedBy(d, gone) {
				doomed = append(doomed, d)
			}
		}
	}
	for _, d := range doomed {
		if d != "" {
			e.buf.Delete(d)
		}
	}
	e.invalidate()

	if p := e.Index().Node(parent); p != nil && p.Node.Folded && !e.Index().HasChildren(parent) {
		e.buf.Edit(parent).Node.Folded = false
	}
	e.normalize(parent)
	e.refresh(parent)
	return Result{RootID: rootID}, nil
}

// onlyHostedBy reports whether every node sharing a group with decoration d
// is in gone.
func (e *Editor) onlyHostedBy(d string, gone map[string]bool) bool {
	o := e.buf.Live(d)
	if o == nil {
		return false
	}
	for _, g := range o.GroupIDs {
		if scene.IsBranchGroup(g) {
			continue
		}
		for _, m := range e.Index().GroupMembers(g) {
			if e.Index().Node(m) != nil && !gone[m] {
				return false
			}
		}
	}
	return true
}

// newNode builds an unplaced text node styled for depth.
func (e *Editor) newNode(text string, depth int, cfg config.Resolved) *scene.Object {
	size := cfg.FontSizeAt(depth)
	m := textmetrics.Measure(e.measure, text, size, cfg.WrapWidth, cfg.LineHeight, cfg.TextPadding)
	align := scene.AlignLeft
	if cfg.CenterText {
		align = scene.AlignCenter
	}
	return &scene.Object{
		ID:        scene.NewID(),
		Kind:      scene.KindText,
		Width:     m.Width,
		Height:    m.Height,
		Opacity:   scene.OpacityVisible,
		Text:      strings.Join(m.Lines, "\n"),
		FontSize:  size,
		TextAlign: align,
		Node:      &scene.NodeMeta{},
	}
}

// connect adds a hierarchy connector from parent to child.
func (e *Editor) connect(parent string, child *scene.Object, depth int) {
	p := e.Index().Node(parent)
	c := &scene.Object{
		ID:           scene.NewID(),
		Kind:         scene.KindArrow,
		Opacity:      scene.OpacityVisible,
		StrokeWidth:  e.cfg.StrokeWidthAt(depth),
		StartBinding: &scene.Binding{ElementID: parent},
		EndBinding:   &scene.Binding{ElementID: child.ID},
		Hierarchy:    true,
	}
	c.SetAbsPoints([]geom.Point{p.Center(), child.Center()})
	e.buf.Add(c)
	e.invalidate()
}

// growthSide returns the side new children of parent start on.
func (e *Editor) growthSide(parent string) geom.Side {
	ix := e.Index()
	cfg, rootID := e.resolved(parent)
	if parent == rootID {
		if cfg.GrowthMode == scene.GrowthLeft {
			return geom.Left
		}
		return geom.Right
	}
	if ix.Node(parent).Center().X < ix.Node(rootID).Center().X {
		return geom.Left
	}
	return geom.Right
}
