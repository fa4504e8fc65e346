// Package visibility hides and shows branches when nodes are folded.
//
// Hiding an object saves its opacity and lock state in [scene.HiddenState]
// and makes it transparent and locked. The saved state is written only once,
// so hiding an already hidden object never loses the original. Showing an
// object restores the saved state exactly.
//
// The cascade also owns the fold indicator: a small glyph next to a folded
// node that exists exactly while the node is visible, folded and has
// children.
package visibility

import (
	"strconv"

	"github.com/matzehuels/mindlayout/pkg/config"
	"github.com/matzehuels/mindlayout/pkg/geom"
	"github.com/matzehuels/mindlayout/pkg/hierarchy"
	"github.com/matzehuels/mindlayout/pkg/scene"
)

// Cascade applies visibility changes to a buffer.
type Cascade struct {
	buf *scene.Buffer
	ix  *hierarchy.Index
	cfg config.Resolved
}

// New returns a cascade over buf. ix must describe buf's current structure.
func New(buf *scene.Buffer, ix *hierarchy.Index, cfg config.Resolved) *Cascade {
	return &Cascade{buf: buf, ix: ix, cfg: cfg}
}

// Refresh recomputes visibility for the subtree rooted at id, taking folded
// ancestors into account.
func (c *Cascade) Refresh(id string) {
	c.UpdateBranchVisibility(id, c.AncestorFolded(id), false)
}

// AncestorFolded reports whether any strict ancestor of id is folded.
func (c *Cascade) AncestorFolded(id string) bool {
	seen := map[string]bool{id: true}
	for cur := id; ; {
		p, ok := c.ix.Parent(cur)
		if !ok || seen[p] {
			return false
		}
		if n := c.ix.Node(p); n != nil && n.Node.Folded {
			return true
		}
		seen[p] = true
		cur = p
	}
}

// UpdateBranchVisibility walks the subtree rooted at id. A node is hidden
// when parentHidden is set, unless it is the fold root itself. Children of a
// hidden or folded node are hidden.
func (c *Cascade) UpdateBranchVisibility(id string, parentHidden, isFoldRoot bool) {
	members := make(map[string]bool)
	c.visit(id, parentHidden && !isFoldRoot, members)
	c.syncCrossLinks(members)
}

func (c *Cascade) visit(id string, hidden bool, members map[string]bool) {
	n := c.ix.Node(id)
	if n == nil || members[id] {
		return
	}
	members[id] = true

	c.SetHidden(id, hidden)
	for _, t := range c.ix.BoundText(id) {
		c.SetHidden(t, hidden)
	}
	for _, d := range c.ix.Decorations(id) {
		c.SetHidden(d, hidden)
	}
	if conn, ok := c.ix.Connector(id); ok {
		c.SetHidden(conn, hidden)
		for _, t := range c.ix.BoundText(conn) {
			c.SetHidden(t, hidden)
		}
	}
	if b := n.Node.BoundaryID; b != "" {
		c.SetHidden(b, hidden || n.Node.Folded)
	}
	c.SyncIndicator(id, !hidden)

	childHidden := hidden || n.Node.Folded
	for _, k := range c.ix.Children(id) {
		c.visit(k, childHidden, members)
	}
}

// syncCrossLinks shows a cross-link touching the subtree only when both of
// its endpoints are visible.
func (c *Cascade) syncCrossLinks(members map[string]bool) {
	for _, l := range c.ix.CrossLinks() {
		link := c.buf.Live(l)
		if link == nil {
			continue
		}
		from, to := link.StartID(), link.EndID()
		if !members[from] && !members[to] {
			continue
		}
		show := c.buf.Live(from).IsVisible() && c.buf.Live(to).IsVisible()
		c.SetHidden(l, !show)
		for _, t := range c.ix.BoundText(l) {
			c.SetHidden(t, !show)
		}
	}
}

// SetHidden hides or shows a single object. Missing objects are ignored.
// The buffer records a change only when the state actually flips.
func (c *Cascade) SetHidden(id string, hide bool) {
	o := c.buf.Live(id)
	if o == nil {
		return
	}
	if hide {
		if o.Hidden != nil && o.Opacity == 0 && o.Locked {
			return
		}
		o = c.buf.Edit(id)
		if o.Hidden == nil {
			o.Hidden = &scene.HiddenState{Opacity: o.Opacity, Locked: o.Locked}
		}
		o.Opacity = 0
		o.Locked = true
		return
	}
	switch {
	case o.Hidden != nil:
		o = c.buf.Edit(id)
		o.Opacity = o.Hidden.Opacity
		o.Locked = o.Hidden.Locked
		o.Hidden = nil
	case o.Opacity == 0:
		o = c.buf.Edit(id)
		o.Opacity = scene.OpacityVisible
		o.Locked = false
	}
}

// SyncIndicator creates, refreshes or removes the fold indicator of id.
// visible is the node's own visibility.
func (c *Cascade) SyncIndicator(id string, visible bool) {
	n := c.ix.Node(id)
	if n == nil {
		return
	}
	want := visible && n.Node.Folded && c.ix.HasChildren(id)
	cur := c.buf.Live(n.Node.FoldIndicatorID)
	switch {
	case want && cur == nil:
		ind := &scene.Object{
			ID:      scene.NewID(),
			Kind:    scene.KindEllipse,
			Opacity: scene.OpacityVisible,
			Locked:  true,
			Role:    scene.RoleFoldIndicator,
			OwnerID: id,
		}
		c.buf.Add(ind)
		c.buf.Edit(id).Node.FoldIndicatorID = ind.ID
		c.placeIndicator(ind.ID, id)
	case want:
		c.placeIndicator(cur.ID, id)
	case n.Node.FoldIndicatorID != "":
		if cur != nil {
			c.buf.Delete(cur.ID)
		}
		c.buf.Edit(id).Node.FoldIndicatorID = ""
	}
}

func (c *Cascade) placeIndicator(indID, nodeID string) {
	n := c.buf.Live(nodeID)
	side := geom.Right
	if p, ok := c.ix.Parent(nodeID); ok {
		if pn := c.buf.Live(p); pn != nil && n.Center().X < pn.Center().X {
			side = geom.Left
		}
	}
	PlaceIndicator(c.buf, indID, n.Box(), side, c.cfg, len(c.ix.Descendants(nodeID)))
}

// PlaceIndicator positions a fold indicator just outside the trailing edge
// of a node box and labels it with the hidden descendant count.
func PlaceIndicator(buf *scene.Buffer, indID string, node geom.Box, side geom.Side, cfg config.Resolved, hidden int) {
	cur := buf.Live(indID)
	if cur == nil {
		return
	}
	size := cfg.FoldIndicatorSize
	x := node.TrailingEdge(side) + cfg.FoldIndicatorGap
	if side == geom.Left {
		x = node.TrailingEdge(side) - cfg.FoldIndicatorGap - size
	}
	box := geom.Box{X: x, Y: node.CenterY() - size/2, Width: size, Height: size}
	text := strconv.Itoa(hidden)
	if cur.Box() == box && cur.Text == text {
		return
	}
	ind := buf.Edit(indID)
	ind.SetBox(box)
	ind.Text = text
}

// PurgeOrphans deletes fold indicators and boundaries whose owner no longer
// references them. It returns the number of objects deleted.
func PurgeOrphans(buf *scene.Buffer) int {
	purged := 0
	for _, o := range buf.All() {
		if o.Deleted || o.Role == scene.RoleNone {
			continue
		}
		owner := buf.Live(o.OwnerID)
		ok := owner.IsNode()
		if ok {
			switch o.Role {
			case scene.RoleFoldIndicator:
				ok = owner.Node.FoldIndicatorID == o.ID
			case scene.RoleBoundary:
				ok = owner.Node.BoundaryID == o.ID
			}
		}
		if !ok {
			buf.Delete(o.ID)
			purged++
		}
	}
	return purged
}
