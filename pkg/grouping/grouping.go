// Package grouping nests a branch's objects into group memberships so a host
// can select and drag a whole branch as one unit.
//
// Engine-owned groups are named [scene.BranchGroupPrefix] plus a node ID.
// The group of a node holds the node, the connectors to its children and
// everything below them. Each level-1 branch is wrapped once more, under
// [RootGroupID], together with its connector from the root but never with
// the root itself, so the root can be moved on its own. Group lists are
// ordered innermost first.
package grouping

import (
	"slices"

	"github.com/matzehuels/mindlayout/pkg/boundary"
	"github.com/matzehuels/mindlayout/pkg/hierarchy"
	"github.com/matzehuels/mindlayout/pkg/scene"
)

// GroupID returns the engine group name for node id.
func GroupID(id string) string { return scene.BranchGroupPrefix + id }

// RootGroupID returns the name of the outer group wrapping level-1 node id
// and its connector from the root.
func RootGroupID(id string) string { return scene.BranchGroupPrefix + "root/" + id }

// ApplyRecursive groups the subtree of id, deepest branches first. It
// returns the number of groups written.
func ApplyRecursive(buf *scene.Buffer, ix *hierarchy.Index, id string) int {
	return apply(buf, ix, id, make(map[string]bool))
}

func apply(buf *scene.Buffer, ix *hierarchy.Index, id string, seen map[string]bool) int {
	if seen[id] {
		return 0
	}
	seen[id] = true
	kids := ix.Children(id)
	n := 0
	for _, c := range kids {
		n += apply(buf, ix, c, seen)
	}
	if len(kids) == 0 && !ix.IsRoot(id) {
		return n
	}

	isRoot := ix.IsRoot(id)
	for _, c := range kids {
		members := boundary.Members(ix, buf, c)
		if conn, ok := ix.Connector(c); ok {
			members = append(members, conn)
			members = append(members, ix.BoundText(conn)...)
		}
		if cb := buf.Live(c); cb != nil && cb.Node.BoundaryID != "" {
			members = append(members, cb.Node.BoundaryID)
		}
		gid := GroupID(id)
		if isRoot {
			gid = RootGroupID(c)
		} else {
			members = append(members, id)
		}
		for _, m := range members {
			addGroup(buf, m, gid)
		}
		if isRoot {
			n++
		}
	}
	if !isRoot {
		n++
	}
	return n
}

func addGroup(buf *scene.Buffer, id, gid string) {
	o := buf.Live(id)
	if o == nil || o.InGroup(gid) {
		return
	}
	o = buf.Edit(id)
	o.GroupIDs = append(o.GroupIDs, gid)
}

// Strip removes every engine-owned group from the given objects and returns
// the number of objects changed. User groups are kept.
func Strip(buf *scene.Buffer, ids []string) int {
	changed := 0
	for _, id := range ids {
		o := buf.Live(id)
		if o == nil || !slices.ContainsFunc(o.GroupIDs, scene.IsBranchGroup) {
			continue
		}
		o = buf.Edit(id)
		o.GroupIDs = slices.DeleteFunc(o.GroupIDs, scene.IsBranchGroup)
		if len(o.GroupIDs) == 0 {
			o.GroupIDs = nil
		}
		changed++
	}
	return changed
}
