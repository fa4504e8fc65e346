package cli

import (
	"strconv"
	"strings"

	"github.com/matzehuels/mindlayout/pkg/hierarchy"
	"github.com/matzehuels/mindlayout/pkg/scene"
)

// treeRow is one node of a flattened map outline.
type treeRow struct {
	ID       string
	Label    string
	Depth    int
	Prefix   string
	Children int
	Folded   bool
	Pinned   bool
	Grouped  bool
	Boundary bool
}

// flattenTree lists the nodes of every map in sibling order. Descendants of
// folded nodes are left out unless showFolded is set.
func flattenTree(objs []*scene.Object, showFolded bool) []treeRow {
	ix := hierarchy.Build(objs)
	var rows []treeRow
	var walk func(id string, depth int, indent string, last bool)
	walk = func(id string, depth int, indent string, last bool) {
		n := ix.Node(id)
		kids := ix.SortedChildren(id)
		row := treeRow{
			ID:       id,
			Label:    nodeLabel(ix, n),
			Depth:    depth,
			Children: len(kids),
			Folded:   n.Node.Folded,
			Pinned:   n.Node.Pinned,
			Grouped:  n.Node.BranchGrouped,
			Boundary: n.Node.BoundaryID != "",
		}
		childIndent := indent
		if depth > 0 {
			if last {
				row.Prefix = indent + "└── "
				childIndent = indent + "    "
			} else {
				row.Prefix = indent + "├── "
				childIndent = indent + "│   "
			}
		}
		rows = append(rows, row)
		if n.Node.Folded && !showFolded {
			return
		}
		for i, k := range kids {
			walk(k, depth+1, childIndent, i == len(kids)-1)
		}
	}
	for _, r := range ix.Roots() {
		walk(r, 0, "", true)
	}
	return rows
}

// nodeLabel returns a node's own text or the text bound inside it.
func nodeLabel(ix *hierarchy.Index, n *scene.Object) string {
	text := n.Text
	if text == "" {
		for _, id := range ix.BoundText(n.ID) {
			if t := ix.Object(id); t != nil && t.Text != "" {
				text = t.Text
				break
			}
		}
	}
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return "(untitled)"
	}
	return text
}

// formatRow renders one outline row with markers for node state.
func formatRow(r treeRow, withIDs bool) string {
	var b strings.Builder
	b.WriteString(StyleDim.Render(r.Prefix))
	if r.Depth == 0 {
		b.WriteString(StyleTitle.Render(r.Label))
	} else {
		b.WriteString(StyleValue.Render(r.Label))
	}
	if r.Folded {
		b.WriteString(" " + StyleFolded.Render("[+"+strconv.Itoa(r.Children)+"]"))
	}
	if r.Pinned {
		b.WriteString(" " + StylePinned.Render("pinned"))
	}
	if r.Boundary {
		b.WriteString(" " + StyleHighlight.Render("▢"))
	}
	if r.Grouped {
		b.WriteString(" " + StyleHighlight.Render("grouped"))
	}
	if withIDs {
		b.WriteString(" " + StyleDim.Render(r.ID))
	}
	return b.String()
}
