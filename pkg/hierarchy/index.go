package hierarchy

import (
	"cmp"
	"slices"

	"github.com/matzehuels/mindlayout/pkg/scene"
)

// Info locates a node in its tree.
type Info struct {
	// Depth is the number of hierarchy edges between the node and its root.
	Depth int
	// Level1ID is the ancestor that is a direct child of the root, or the node
	// itself at depth 1. Empty for the root.
	Level1ID string
	// RootID is the topmost ancestor.
	RootID string
}

// Index is an explicit adjacency view over a set of objects.
type Index struct {
	objects    map[string]*scene.Object
	nodes      []string
	parent     map[string]string
	children   map[string][]string
	connector  map[string]string
	crossLinks []string
	linksOf    map[string][]string
	bound      map[string][]string
	groups     map[string][]string
	skipped    []string
}

// Build indexes objs. Deleted objects are ignored.
func Build(objs []*scene.Object) *Index {
	ix := &Index{
		objects:   make(map[string]*scene.Object, len(objs)),
		parent:    make(map[string]string),
		children:  make(map[string][]string),
		connector: make(map[string]string),
		linksOf:   make(map[string][]string),
		bound:     make(map[string][]string),
		groups:    make(map[string][]string),
	}
	for _, o := range objs {
		if o == nil || o.Deleted {
			continue
		}
		ix.objects[o.ID] = o
		if o.IsNode() {
			ix.nodes = append(ix.nodes, o.ID)
		}
		for _, g := range o.GroupIDs {
			ix.groups[g] = append(ix.groups[g], o.ID)
		}
		if o.ContainerID != "" {
			ix.bound[o.ContainerID] = append(ix.bound[o.ContainerID], o.ID)
		}
	}
	for _, o := range objs {
		if !o.IsConnector() || ix.objects[o.ID] == nil {
			continue
		}
		from, to := ix.objects[o.StartID()], ix.objects[o.EndID()]
		if !from.IsNode() || !to.IsNode() || from.ID == to.ID {
			if o.Hierarchy {
				ix.skipped = append(ix.skipped, o.ID)
			}
			continue
		}
		if !o.Hierarchy {
			ix.crossLinks = append(ix.crossLinks, o.ID)
			ix.linksOf[from.ID] = append(ix.linksOf[from.ID], o.ID)
			ix.linksOf[to.ID] = append(ix.linksOf[to.ID], o.ID)
			continue
		}
		if _, taken := ix.parent[to.ID]; taken {
			ix.skipped = append(ix.skipped, o.ID)
			continue
		}
		ix.parent[to.ID] = from.ID
		ix.connector[to.ID] = o.ID
		ix.children[from.ID] = append(ix.children[from.ID], to.ID)
	}
	return ix
}

// Object returns an indexed object, or nil.
func (ix *Index) Object(id string) *scene.Object { return ix.objects[id] }

// Node returns an indexed node, or nil if id is not a node.
func (ix *Index) Node(id string) *scene.Object {
	if o := ix.objects[id]; o.IsNode() {
		return o
	}
	return nil
}

// Nodes returns all node IDs in collection order.
func (ix *Index) Nodes() []string { return slices.Clone(ix.nodes) }

// Parent returns the parent of id.
func (ix *Index) Parent(id string) (string, bool) {
	p, ok := ix.parent[id]
	return p, ok
}

// Children returns the children of id in collection order.
func (ix *Index) Children(id string) []string { return slices.Clone(ix.children[id]) }

// HasChildren reports whether id has at least one child.
func (ix *Index) HasChildren(id string) bool { return len(ix.children[id]) > 0 }

// Connector returns the hierarchy connector whose end is bound to child.
func (ix *Index) Connector(child string) (string, bool) {
	c, ok := ix.connector[child]
	return c, ok
}

// CrossLinks returns every non-hierarchy connector between two nodes.
func (ix *Index) CrossLinks() []string { return slices.Clone(ix.crossLinks) }

// CrossLinksOf returns the cross-links touching node id.
func (ix *Index) CrossLinksOf(id string) []string { return slices.Clone(ix.linksOf[id]) }

// BoundText returns the text objects contained in id.
func (ix *Index) BoundText(id string) []string { return slices.Clone(ix.bound[id]) }

// GroupMembers returns the objects in group gid.
func (ix *Index) GroupMembers(gid string) []string { return slices.Clone(ix.groups[gid]) }

// Skipped returns hierarchy connectors that could not be used.
func (ix *Index) Skipped() []string { return slices.Clone(ix.skipped) }

// IsRoot reports whether id is a node without a parent.
func (ix *Index) IsRoot(id string) bool {
	_, hasParent := ix.parent[id]
	return !hasParent && ix.Node(id) != nil
}

// Roots returns every node without a parent, in collection order.
func (ix *Index) Roots() []string {
	var out []string
	for _, id := range ix.nodes {
		if _, ok := ix.parent[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// Info walks up from id. Unknown IDs yield Info{RootID: id}.
func (ix *Index) Info(id string) Info {
	visited := map[string]bool{id: true}
	var path []string
	cur := id
	for {
		p, ok := ix.parent[cur]
		if !ok || visited[p] {
			break
		}
		visited[p] = true
		path = append(path, cur)
		cur = p
	}
	info := Info{Depth: len(path), RootID: cur}
	if len(path) > 0 {
		info.Level1ID = path[len(path)-1]
	}
	return info
}

// Cycle returns the parent loop reached by walking up from id, starting at
// the node where the loop closes. It returns nil when the walk ends at a root.
func (ix *Index) Cycle(id string) []string {
	pos := make(map[string]int)
	var path []string
	for cur := id; ; {
		if i, ok := pos[cur]; ok {
			return path[i:]
		}
		pos[cur] = len(path)
		path = append(path, cur)
		p, ok := ix.parent[cur]
		if !ok {
			return nil
		}
		cur = p
	}
}

// Depth returns the depth of id below its root.
func (ix *Index) Depth(id string) int { return ix.Info(id).Depth }

// Subtree returns id and all its descendants in pre-order, children in
// collection order.
func (ix *Index) Subtree(id string) []string {
	var out []string
	seen := make(map[string]bool)
	var walk func(string)
	walk = func(n string) {
		if seen[n] {
			return
		}
		seen[n] = true
		out = append(out, n)
		for _, c := range ix.children[n] {
			walk(c)
		}
	}
	walk(id)
	return out
}

// Descendants returns the subtree of id without id itself.
func (ix *Index) Descendants(id string) []string { return ix.Subtree(id)[1:] }

// IsAncestor reports whether anc is a strict ancestor of id.
func (ix *Index) IsAncestor(anc, id string) bool {
	seen := map[string]bool{id: true}
	for cur := id; ; {
		p, ok := ix.parent[cur]
		if !ok || seen[p] {
			return false
		}
		if p == anc {
			return true
		}
		seen[p] = true
		cur = p
	}
}

// Decorations returns the objects that share a user group with id and carry
// no structural role: nodes, connectors, boundaries, fold indicators and
// engine-owned groups are excluded.
func (ix *Index) Decorations(id string) []string {
	o := ix.objects[id]
	if o == nil {
		return nil
	}
	seen := map[string]bool{id: true}
	var out []string
	for _, g := range o.GroupIDs {
		if scene.IsBranchGroup(g) {
			continue
		}
		for _, m := range ix.groups[g] {
			if seen[m] {
				continue
			}
			seen[m] = true
			if IsStructural(ix.objects[m]) {
				continue
			}
			out = append(out, m)
		}
	}
	return out
}

// IsStructural reports whether o takes part in the tree or is engine-owned.
func IsStructural(o *scene.Object) bool {
	if o == nil {
		return false
	}
	return o.Node != nil || o.Kind == scene.KindArrow || o.Role != scene.RoleNone
}

// SortedChildren returns the children of id sorted by stored order, breaking
// ties by vertical then horizontal position and finally by ID.
func (ix *Index) SortedChildren(id string) []string {
	kids := ix.Children(id)
	slices.SortStableFunc(kids, ix.CompareOrder)
	return kids
}

// CompareOrder orders two nodes by stored order, then position, then ID.
func (ix *Index) CompareOrder(a, b string) int {
	na, nb := ix.objects[a], ix.objects[b]
	if na == nil || nb == nil || na.Node == nil || nb.Node == nil {
		return cmp.Compare(a, b)
	}
	return cmp.Or(
		cmp.Compare(na.Node.Order, nb.Node.Order),
		cmp.Compare(na.Center().Y, nb.Center().Y),
		cmp.Compare(na.Center().X, nb.Center().X),
		cmp.Compare(a, b),
	)
}
