// Package dot exports mind maps as Graphviz DOT.
//
// Every visible node is emitted with a pinned position (pos="x,y!") taken
// from the scene, and hierarchy connectors become edges. Rendering uses the
// neato engine, which honors pinned positions, so the image shows the
// engine's geometry rather than a Graphviz layout.
//
//	src := dot.FromScene(objs, dot.Options{})
//	svg, err := dot.RenderSVG(src)
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/mindlayout/pkg/hierarchy"
	"github.com/matzehuels/mindlayout/pkg/render"
	"github.com/matzehuels/mindlayout/pkg/scene"
)

// pointsPerInch converts scene units to Graphviz inches for node sizes.
const pointsPerInch = 72.0

// Options configures DOT export.
type Options struct {
	// Detailed adds order, depth and state flags to node labels.
	Detailed bool
	// ShowHidden includes nodes hidden by folds, drawn dashed.
	ShowHidden bool
	// CrossLinks includes non-hierarchy connectors as dotted edges.
	CrossLinks bool
}

// FromScene converts the mind maps in objs to DOT.
func FromScene(objs []*scene.Object, opts Options) string {
	ix := hierarchy.Build(objs)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fixedsize=true, margin=\"0.1,0.05\"];\n")
	buf.WriteString("  edge [arrowsize=0.6];\n")
	buf.WriteString("\n")

	shown := make(map[string]bool)
	for _, id := range ix.Nodes() {
		n := ix.Node(id)
		if !n.IsVisible() && !opts.ShowHidden {
			continue
		}
		shown[id] = true
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(nodeAttrs(ix, n, opts), ", "))
	}

	buf.WriteString("\n")
	for _, id := range ix.Nodes() {
		p, ok := ix.Parent(id)
		if !ok || !shown[id] || !shown[p] {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", p, id)
	}
	if opts.CrossLinks {
		for _, l := range ix.CrossLinks() {
			c := ix.Object(l)
			if shown[c.StartID()] && shown[c.EndID()] && (c.IsVisible() || opts.ShowHidden) {
				fmt.Fprintf(&buf, "  %q -> %q [style=dotted, constraint=false];\n", c.StartID(), c.EndID())
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(ix *hierarchy.Index, n *scene.Object, opts Options) []string {
	c := n.Center()
	attrs := []string{
		fmt.Sprintf("label=%q", label(ix, n, opts.Detailed)),
		fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(c.X), fmtFloat(-c.Y)),
		fmt.Sprintf("width=%s", fmtFloat(n.Width/pointsPerInch)),
		fmt.Sprintf("height=%s", fmtFloat(n.Height/pointsPerInch)),
	}
	if n.FontSize > 0 {
		attrs = append(attrs, fmt.Sprintf("fontsize=%s", fmtFloat(n.FontSize*0.75)))
	}
	switch {
	case !n.IsVisible():
		attrs = append(attrs, "style=\"rounded,dashed\"", "fontcolor=grey")
	case ix.IsRoot(n.ID):
		attrs = append(attrs, "penwidth=2", "fillcolor=\"#fff5d6\"")
	case n.Node.Pinned:
		attrs = append(attrs, "fillcolor=\"#e6f0ff\"")
	}
	if n.Node.Folded {
		attrs = append(attrs, "peripheries=2")
	}
	return attrs
}

func label(ix *hierarchy.Index, n *scene.Object, detailed bool) string {
	text := n.Text
	if text == "" {
		text = n.ID
	}
	if !detailed {
		return text
	}
	parts := []string{fmt.Sprintf("depth: %d", ix.Depth(n.ID)), "order: " + fmtFloat(n.Node.Order)}
	if n.Node.Pinned {
		parts = append(parts, "pinned")
	}
	if n.Node.Folded {
		parts = append(parts, "folded")
	}
	return text + "\n" + strings.Join(parts, "\n")
}

func fmtFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// RenderSVG renders DOT to SVG with the neato engine.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPNG renders DOT as PNG via SVG conversion.
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}

// RenderPDF renders DOT as PDF via SVG conversion.
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}
