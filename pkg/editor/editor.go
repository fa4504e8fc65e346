package editor

import (
	"slices"

	"github.com/matzehuels/mindlayout/pkg/config"
	"github.com/matzehuels/mindlayout/pkg/errors"
	"github.com/matzehuels/mindlayout/pkg/hierarchy"
	"github.com/matzehuels/mindlayout/pkg/scene"
	"github.com/matzehuels/mindlayout/pkg/textmetrics"
	"github.com/matzehuels/mindlayout/pkg/visibility"
)

// Result tells the caller how to follow up on an edit.
type Result struct {
	RootID           string
	HonorManualOrder bool
	// NodeID is the node created by AddChild and AddSibling.
	NodeID string
}

// Editor edits one buffer.
type Editor struct {
	buf     *scene.Buffer
	cfg     config.LayoutConfig
	measure textmetrics.Measurer
	ix      *hierarchy.Index
}

// New returns an editor over buf. A nil measurer uses textmetrics.Fixed.
func New(buf *scene.Buffer, cfg config.LayoutConfig, m textmetrics.Measurer) *Editor {
	if m == nil {
		m = textmetrics.Fixed{}
	}
	return &Editor{buf: buf, cfg: cfg, measure: m}
}

// Index returns the hierarchy of the buffer's current structure.
func (e *Editor) Index() *hierarchy.Index {
	if e.ix == nil {
		e.ix = hierarchy.Build(e.buf.All())
	}
	return e.ix
}

// invalidate drops the cached index after a structural change.
func (e *Editor) invalidate() { e.ix = nil }

// node returns the live node id or a not-found error.
func (e *Editor) node(id string) (*scene.Object, error) {
	n := e.Index().Node(id)
	if n == nil {
		return nil, errors.New(errors.ErrCodeNodeNotFound, "node %q not found", id)
	}
	return n, nil
}

// resolved returns the configuration in effect for id's map.
func (e *Editor) resolved(id string) (config.Resolved, string) {
	rootID := e.Index().Info(id).RootID
	var rc *scene.RootConfig
	if r := e.Index().Node(rootID); r != nil {
		rc = r.Root
	}
	return e.cfg.Resolve(rc), rootID
}

// movable checks the shared preconditions of moving edits.
func (e *Editor) movable(id, op string) (*scene.Object, error) {
	n, err := e.node(id)
	if err != nil {
		return nil, err
	}
	cfg, _ := e.resolved(id)
	switch {
	case !cfg.AutoLayout:
		return nil, errors.Invariant("cannot %s: auto-layout is disabled for this map", op)
	case e.Index().IsRoot(id):
		return nil, errors.Invariant("cannot %s the map root", op)
	case n.Node.Pinned:
		return nil, errors.Invariant("cannot %s pinned node %q", op, id)
	}
	return n, nil
}

// refresh rebuilds the index and recomputes visibility for the map of id.
func (e *Editor) refresh(id string) string {
	e.invalidate()
	cfg, rootID := e.resolved(id)
	visibility.New(e.buf, e.Index(), cfg).Refresh(rootID)
	return rootID
}

// rebind moves child's hierarchy connector to a new parent.
func (e *Editor) rebind(child, parent string) {
	cid, ok := e.Index().Connector(child)
	if !ok {
		return
	}
	c := e.buf.Edit(cid)
	if c.StartBinding == nil {
		c.StartBinding = &scene.Binding{}
	}
	c.StartBinding.ElementID = parent
	e.invalidate()
}

// siblings returns the children of parent sorted by stored order.
func (e *Editor) siblings(parent string) []string {
	return e.Index().SortedChildren(parent)
}

// maxOrder returns the largest child order of parent, or -1 without
// children.
func (e *Editor) maxOrder(parent string) float64 {
	top := -1.0
	for _, c := range e.Index().Children(parent) {
		if n := e.Index().Node(c); n != nil && n.Node.Order > top {
			top = n.Node.Order
		}
	}
	return top
}

// orderAfter returns an order value between id and its next sibling.
func (e *Editor) orderAfter(parent, id string) float64 {
	sibs := e.siblings(parent)
	i := slices.Index(sibs, id)
	cur := e.Index().Node(id).Node.Order
	if i < 0 || i == len(sibs)-1 {
		return cur + 1
	}
	return (cur + e.Index().Node(sibs[i+1]).Node.Order) / 2
}

// normalize rewrites the children orders of parent as 0..n-1.
func (e *Editor) normalize(parent string) []string {
	sibs := e.siblings(parent)
	for i, s := range sibs {
		if e.Index().Node(s).Node.Order != float64(i) {
			e.buf.Edit(s).Node.Order = float64(i)
		}
	}
	return sibs
}

// restyle applies depth styling to the subtree of id.
func (e *Editor) restyle(id string) {
	ix := e.Index()
	for _, n := range ix.Subtree(id) {
		depth := ix.Depth(n)
		size := e.cfg.FontSizeAt(depth)
		if o := ix.Node(n); o != nil && o.FontSize != size {
			e.buf.Edit(n).FontSize = size
		}
		for _, t := range ix.BoundText(n) {
			if o := e.buf.Live(t); o != nil && o.FontSize != size {
				e.buf.Edit(t).FontSize = size
			}
		}
		if c, ok := ix.Connector(n); ok {
			w := e.cfg.StrokeWidthAt(depth)
			if o := e.buf.Live(c); o != nil && o.StrokeWidth != w {
				e.buf.Edit(c).StrokeWidth = w
			}
		}
	}
}
