package scene

import (
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/matzehuels/mindlayout/pkg/geom"
)

// Kind is the graphical type of an object.
type Kind string

// Object kinds understood by the engine. Hosts may use others; the engine
// treats unknown kinds as plain boxes.
const (
	KindRectangle Kind = "rectangle"
	KindEllipse   Kind = "ellipse"
	KindDiamond   Kind = "diamond"
	KindText      Kind = "text"
	KindArrow     Kind = "arrow"
	KindLine      Kind = "line"
	KindImage     Kind = "image"
)

// Role marks engine-owned auxiliary objects.
type Role string

const (
	RoleNone          Role = ""
	RoleBoundary      Role = "boundary"
	RoleFoldIndicator Role = "fold-indicator"
)

// Text alignment values.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
)

// OpacityVisible is the default opacity of a visible object.
const OpacityVisible = 100.0

// BranchGroupPrefix prefixes every group ID owned by the engine. Groups
// without it belong to the user and are never touched by branch grouping.
const BranchGroupPrefix = "mindmap-branch:"

// IsBranchGroup reports whether a group ID is engine-owned.
func IsBranchGroup(id string) bool { return strings.HasPrefix(id, BranchGroupPrefix) }

// Binding attaches one end of a connector to another object.
type Binding struct {
	ElementID string  `json:"elementId" bson:"elementId"`
	Focus     float64 `json:"focus,omitempty" bson:"focus,omitempty"`
	Gap       float64 `json:"gap,omitempty" bson:"gap,omitempty"`
}

// NodeMeta holds the engine's per-node state.
type NodeMeta struct {
	// Order is the sibling sort key. Fractional values are produced by
	// promote and add-sibling; reorder normalizes them back to integers.
	Order float64 `json:"order" bson:"order"`
	// Pinned nodes are never moved by placement.
	Pinned bool `json:"pinned,omitempty" bson:"pinned,omitempty"`
	// Folded nodes hide all their descendants.
	Folded bool `json:"folded,omitempty" bson:"folded,omitempty"`
	// IsNew marks a node that has not been laid out yet. Cleared after the
	// first layout.
	IsNew bool `json:"isNew,omitempty" bson:"isNew,omitempty"`
	// BranchGrouped requests recursive grouping of the node's subtree.
	BranchGrouped bool `json:"branchGrouped,omitempty" bson:"branchGrouped,omitempty"`
	// BoundaryID references the node's boundary polygon, if any.
	BoundaryID string `json:"boundaryId,omitempty" bson:"boundaryId,omitempty"`
	// FoldIndicatorID references the ephemeral fold glyph, if any.
	FoldIndicatorID string `json:"foldIndicatorId,omitempty" bson:"foldIndicatorId,omitempty"`
}

// HiddenState is the pre-hide state saved by the visibility cascade.
type HiddenState struct {
	Opacity float64 `json:"opacity" bson:"opacity"`
	Locked  bool    `json:"locked" bson:"locked"`
}

// Object is one graphical object of the host scene.
type Object struct {
	ID     string  `json:"id" bson:"id"`
	Kind   Kind    `json:"type" bson:"type"`
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`

	Opacity  float64  `json:"opacity" bson:"opacity"`
	Locked   bool     `json:"locked,omitempty" bson:"locked,omitempty"`
	Deleted  bool     `json:"isDeleted,omitempty" bson:"isDeleted,omitempty"`
	GroupIDs []string `json:"groupIds,omitempty" bson:"groupIds,omitempty"`

	// Text objects.
	Text        string  `json:"text,omitempty" bson:"text,omitempty"`
	FontSize    float64 `json:"fontSize,omitempty" bson:"fontSize,omitempty"`
	TextAlign   string  `json:"textAlign,omitempty" bson:"textAlign,omitempty"`
	ContainerID string  `json:"containerId,omitempty" bson:"containerId,omitempty"`

	StrokeWidth float64 `json:"strokeWidth,omitempty" bson:"strokeWidth,omitempty"`

	// Linear objects (arrows, lines, polygons). Points are relative to X, Y.
	Points       []geom.Point `json:"points,omitempty" bson:"points,omitempty"`
	StartBinding *Binding     `json:"startBinding,omitempty" bson:"startBinding,omitempty"`
	EndBinding   *Binding     `json:"endBinding,omitempty" bson:"endBinding,omitempty"`

	// Engine tags.
	Hierarchy bool         `json:"isHierarchy,omitempty" bson:"isHierarchy,omitempty"`
	Role      Role         `json:"role,omitempty" bson:"role,omitempty"`
	OwnerID   string       `json:"ownerId,omitempty" bson:"ownerId,omitempty"`
	Node      *NodeMeta    `json:"node,omitempty" bson:"node,omitempty"`
	Root      *RootConfig  `json:"root,omitempty" bson:"root,omitempty"`
	Hidden    *HiddenState `json:"hidden,omitempty" bson:"hidden,omitempty"`
}

// NewID returns a fresh object identifier.
func NewID() string { return uuid.NewString() }

// IsNode reports whether the object is a live mind-map node.
func (o *Object) IsNode() bool { return o != nil && !o.Deleted && o.Node != nil }

// IsConnector reports whether the object is a live arrow.
func (o *Object) IsConnector() bool { return o != nil && !o.Deleted && o.Kind == KindArrow }

// IsLinear reports whether the object's geometry is a point list.
func (o *Object) IsLinear() bool {
	return o != nil && (o.Kind == KindArrow || o.Kind == KindLine)
}

// IsVisible reports whether the object is live and not transparent.
func (o *Object) IsVisible() bool { return o != nil && !o.Deleted && o.Opacity > 0 }

// Box returns the object's bounding box.
func (o *Object) Box() geom.Box {
	return geom.Box{X: o.X, Y: o.Y, Width: o.Width, Height: o.Height}
}

// Center returns the center of the object's bounding box.
func (o *Object) Center() geom.Point { return o.Box().Center() }

// SetBox moves and resizes the object.
func (o *Object) SetBox(b geom.Box) {
	o.X, o.Y, o.Width, o.Height = b.X, b.Y, b.Width, b.Height
}

// Translate moves the object by d. Linear points are relative and need no
// adjustment.
func (o *Object) Translate(d geom.Point) {
	o.X += d.X
	o.Y += d.Y
}

// AbsPoints returns the linear points in canvas coordinates.
func (o *Object) AbsPoints() []geom.Point {
	out := make([]geom.Point, len(o.Points))
	for i, p := range o.Points {
		out[i] = geom.Pt(o.X+p.X, o.Y+p.Y)
	}
	return out
}

// SetAbsPoints stores canvas-coordinate points, normalizing them so the first
// point is the object origin, and refreshes the bounding box size.
func (o *Object) SetAbsPoints(pts []geom.Point) {
	if len(pts) == 0 {
		o.Points = nil
		return
	}
	origin := pts[0]
	o.X, o.Y = origin.X, origin.Y
	o.Points = make([]geom.Point, len(pts))
	for i, p := range pts {
		o.Points[i] = geom.Pt(p.X-origin.X, p.Y-origin.Y)
	}
	if b, ok := geom.BoundsOf(o.Points); ok {
		o.Width, o.Height = b.Width, b.Height
	}
}

// StartID returns the element bound to the connector start, if any.
func (o *Object) StartID() string {
	if o.StartBinding == nil {
		return ""
	}
	return o.StartBinding.ElementID
}

// EndID returns the element bound to the connector end, if any.
func (o *Object) EndID() string {
	if o.EndBinding == nil {
		return ""
	}
	return o.EndBinding.ElementID
}

// InGroup reports whether the object is a member of group id.
func (o *Object) InGroup(id string) bool { return slices.Contains(o.GroupIDs, id) }

// Clone returns a deep copy.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	c := *o
	c.GroupIDs = slices.Clone(o.GroupIDs)
	c.Points = slices.Clone(o.Points)
	if o.StartBinding != nil {
		b := *o.StartBinding
		c.StartBinding = &b
	}
	if o.EndBinding != nil {
		b := *o.EndBinding
		c.EndBinding = &b
	}
	if o.Node != nil {
		n := *o.Node
		c.Node = &n
	}
	if o.Root != nil {
		r := *o.Root
		c.Root = &r
	}
	if o.Hidden != nil {
		h := *o.Hidden
		c.Hidden = &h
	}
	return &c
}
