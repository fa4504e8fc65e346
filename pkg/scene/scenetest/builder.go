// Package scenetest builds small mind-map scenes for tests.
package scenetest

import (
	"github.com/matzehuels/mindlayout/pkg/geom"
	"github.com/matzehuels/mindlayout/pkg/scene"
)

// Default node size used by the builder.
const (
	NodeWidth  = 120
	NodeHeight = 40
	FontSize   = 20
)

// Builder assembles a scene. IDs are chosen by the caller so assertions can
// name objects directly.
type Builder struct {
	objs []*scene.Object
	byID map[string]*scene.Object
}

// New returns an empty builder.
func New() *Builder {
	return &Builder{byID: make(map[string]*scene.Object)}
}

// Add appends an arbitrary object.
func (b *Builder) Add(o *scene.Object) *Builder {
	if o.Opacity == 0 && o.Hidden == nil {
		o.Opacity = scene.OpacityVisible
	}
	b.objs = append(b.objs, o)
	b.byID[o.ID] = o
	return b
}

// Root adds a root node centered at (cx, cy).
func (b *Builder) Root(id string, cx, cy float64, cfg *scene.RootConfig) *Builder {
	if cfg == nil {
		cfg = &scene.RootConfig{}
	}
	return b.Add(&scene.Object{
		ID: id, Kind: scene.KindRectangle,
		X: cx - NodeWidth/2, Y: cy - NodeHeight/2, Width: NodeWidth, Height: NodeHeight,
		Text: id, FontSize: FontSize,
		Node: &scene.NodeMeta{},
		Root: cfg,
	})
}

// Child adds a node under parent with the given order and a hierarchy
// connector named "edge-"+id. The node is placed to the right of its parent,
// stacked by order.
func (b *Builder) Child(parent, id string, order float64) *Builder {
	p := b.byID[parent]
	x, y := 0.0, 0.0
	if p != nil {
		x = p.X + p.Width + 80
		y = p.Y + order*(NodeHeight+20)
	}
	b.Add(&scene.Object{
		ID: id, Kind: scene.KindRectangle,
		X: x, Y: y, Width: NodeWidth, Height: NodeHeight,
		Text: id, FontSize: FontSize,
		Node: &scene.NodeMeta{Order: order},
	})
	return b.Connector("edge-"+id, parent, id, true)
}

// Connector adds an arrow bound from -> to.
func (b *Builder) Connector(id, from, to string, hierarchy bool) *Builder {
	c := &scene.Object{
		ID: id, Kind: scene.KindArrow,
		StartBinding: &scene.Binding{ElementID: from},
		EndBinding:   &scene.Binding{ElementID: to},
		Hierarchy:    hierarchy,
		StrokeWidth:  2,
	}
	f, t := b.byID[from], b.byID[to]
	if f != nil && t != nil {
		c.SetAbsPoints([]geom.Point{f.Center(), t.Center()})
	}
	return b.Add(c)
}

// CrossLink adds a non-hierarchy connector between two nodes.
func (b *Builder) CrossLink(id, from, to string) *Builder {
	return b.Connector(id, from, to, false)
}

// Decoration adds a small rectangle sharing a user group with host.
func (b *Builder) Decoration(id, host string) *Builder {
	h := b.byID[host]
	group := "deco-" + host
	if !h.InGroup(group) {
		h.GroupIDs = append(h.GroupIDs, group)
	}
	return b.Add(&scene.Object{
		ID: id, Kind: scene.KindEllipse,
		X: h.X - 12, Y: h.Y - 12, Width: 10, Height: 10,
		GroupIDs: []string{group},
	})
}

// Label adds a text object bound to container.
func (b *Builder) Label(id, container string) *Builder {
	c := b.byID[container]
	return b.Add(&scene.Object{
		ID: id, Kind: scene.KindText,
		X: c.X + 4, Y: c.Y + 4, Width: c.Width - 8, Height: c.Height - 8,
		Text: id, ContainerID: container,
	})
}

// Edit applies fn to an object already added.
func (b *Builder) Edit(id string, fn func(*scene.Object)) *Builder {
	fn(b.byID[id])
	return b
}

// Pin marks nodes as pinned.
func (b *Builder) Pin(ids ...string) *Builder {
	for _, id := range ids {
		b.byID[id].Node.Pinned = true
	}
	return b
}

// Object returns an added object.
func (b *Builder) Object(id string) *scene.Object { return b.byID[id] }

// Objects returns deep copies of all objects.
func (b *Builder) Objects() []*scene.Object {
	out := make([]*scene.Object, len(b.objs))
	for i, o := range b.objs {
		out[i] = o.Clone()
	}
	return out
}

// Buffer returns a buffer over the built objects.
func (b *Builder) Buffer() *scene.Buffer { return scene.NewBuffer(b.objs) }
