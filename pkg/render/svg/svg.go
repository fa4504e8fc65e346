// Package svg draws scene objects as a standalone SVG document.
//
// Nodes become rounded rectangles (or ellipses and diamonds for those
// kinds) with their text, connectors become paths through their points,
// boundaries become closed polygons and fold indicators small circles with
// the hidden count. Invisible objects are skipped.
package svg

import (
	"bytes"
	"cmp"
	"fmt"
	"html"
	"slices"
	"strings"

	"github.com/matzehuels/mindlayout/pkg/geom"
	"github.com/matzehuels/mindlayout/pkg/scene"
)

// Options configures SVG output.
type Options struct {
	// Margin around the drawing bounds. Zero uses DefaultMargin.
	Margin float64
	// Background fill; empty means transparent.
	Background string
}

// DefaultMargin is the padding around the drawing.
const DefaultMargin = 40.0

// Render returns the SVG document for objs.
func Render(objs []*scene.Object, opts Options) []byte {
	if opts.Margin == 0 {
		opts.Margin = DefaultMargin
	}
	visible := make([]*scene.Object, 0, len(objs))
	var bounds geom.Box
	first := true
	for _, o := range objs {
		if !o.IsVisible() || (o.ContainerID != "" && o.Kind == scene.KindText) {
			continue
		}
		visible = append(visible, o)
		b := extent(o)
		if first {
			bounds, first = b, false
		} else {
			bounds = bounds.Union(b)
		}
	}
	bounds = bounds.Pad(opts.Margin)

	// Boundaries below connectors below nodes below indicators.
	slices.SortStableFunc(visible, func(a, b *scene.Object) int { return cmp.Compare(layer(a), layer(b)) })

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.2f %.2f %.2f %.2f" width="%.0f" height="%.0f">`+"\n",
		bounds.X, bounds.Y, bounds.Width, bounds.Height, bounds.Width, bounds.Height)
	if opts.Background != "" {
		fmt.Fprintf(&buf, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>`+"\n",
			bounds.X, bounds.Y, bounds.Width, bounds.Height, html.EscapeString(opts.Background))
	}
	labels := boundText(objs)
	for _, o := range visible {
		switch {
		case o.Role == scene.RoleBoundary:
			writeBoundary(&buf, o)
		case o.Role == scene.RoleFoldIndicator:
			writeIndicator(&buf, o)
		case o.IsLinear():
			writeLinear(&buf, o)
		default:
			writeShape(&buf, o, labels[o.ID])
		}
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func extent(o *scene.Object) geom.Box {
	if o.IsLinear() {
		if b, ok := geom.BoundsOf(o.AbsPoints()); ok {
			return b
		}
	}
	return o.Box()
}

func layer(o *scene.Object) int {
	switch {
	case o.Role == scene.RoleBoundary:
		return 0
	case o.IsLinear():
		return 1
	case o.Role == scene.RoleFoldIndicator:
		return 3
	default:
		return 2
	}
}

// boundText maps container IDs to the text bound inside them.
func boundText(objs []*scene.Object) map[string]string {
	out := make(map[string]string)
	for _, o := range objs {
		if o.Kind == scene.KindText && o.ContainerID != "" && o.IsVisible() {
			out[o.ContainerID] = o.Text
		}
	}
	return out
}

func writeShape(buf *bytes.Buffer, o *scene.Object, bound string) {
	sw := cmp.Or(o.StrokeWidth, 1.5)
	b := o.Box()
	id := html.EscapeString(o.ID)
	switch o.Kind {
	case scene.KindEllipse:
		fmt.Fprintf(buf, `  <ellipse id="%s" cx="%.2f" cy="%.2f" rx="%.2f" ry="%.2f" fill="white" stroke="#333" stroke-width="%.2f"/>`+"\n",
			id, b.CenterX(), b.CenterY(), b.Width/2, b.Height/2, sw)
	case scene.KindDiamond:
		fmt.Fprintf(buf, `  <polygon id="%s" points="%.2f,%.2f %.2f,%.2f %.2f,%.2f %.2f,%.2f" fill="white" stroke="#333" stroke-width="%.2f"/>`+"\n",
			id, b.CenterX(), b.Top(), b.Right(), b.CenterY(), b.CenterX(), b.Bottom(), b.Left(), b.CenterY(), sw)
	case scene.KindText:
		// Plain text nodes get an underline instead of a frame.
		if o.Node != nil {
			fmt.Fprintf(buf, `  <line id="%s" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="#333" stroke-width="%.2f"/>`+"\n",
				id, b.Left(), b.Bottom(), b.Right(), b.Bottom(), sw)
		}
	default:
		fmt.Fprintf(buf, `  <rect id="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="6" fill="white" stroke="#333" stroke-width="%.2f"/>`+"\n",
			id, b.X, b.Y, b.Width, b.Height, sw)
	}
	text := cmp.Or(bound, o.Text)
	if text == "" {
		return
	}
	writeText(buf, o, text)
}

func writeText(buf *bytes.Buffer, o *scene.Object, text string) {
	size := cmp.Or(o.FontSize, 16)
	lines := strings.Split(text, "\n")
	b := o.Box()
	x, anchor := b.CenterX(), "middle"
	switch o.TextAlign {
	case scene.AlignLeft:
		x, anchor = b.Left()+4, "start"
	case scene.AlignRight:
		x, anchor = b.Right()-4, "end"
	}
	lh := size * 1.25
	y := b.CenterY() - lh*float64(len(lines)-1)/2 + size*0.35
	fmt.Fprintf(buf, `  <text x="%.2f" y="%.2f" font-family="sans-serif" font-size="%.1f" text-anchor="%s">`, x, y, size, anchor)
	for i, l := range lines {
		if i == 0 {
			buf.WriteString(html.EscapeString(l))
			continue
		}
		fmt.Fprintf(buf, `<tspan x="%.2f" dy="%.2f">%s</tspan>`, x, lh, html.EscapeString(l))
	}
	buf.WriteString("</text>\n")
}

func writeLinear(buf *bytes.Buffer, o *scene.Object) {
	pts := o.AbsPoints()
	if len(pts) < 2 {
		return
	}
	dash := ""
	if o.Kind == scene.KindArrow && !o.Hierarchy {
		dash = ` stroke-dasharray="6 4"`
	}
	fmt.Fprintf(buf, `  <path id="%s" d="%s" fill="none" stroke="#555" stroke-width="%.2f"%s/>`+"\n",
		html.EscapeString(o.ID), PathData(pts), cmp.Or(o.StrokeWidth, 1.5), dash)
}

// PathData returns SVG path data through pts: a line for two points, a
// quadratic curve for three and a cubic curve for four. Longer lists are
// drawn as polylines.
func PathData(pts []geom.Point) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "M%.2f,%.2f", pts[0].X, pts[0].Y)
	switch len(pts) {
	case 3:
		fmt.Fprintf(&sb, " Q%.2f,%.2f %.2f,%.2f", pts[1].X, pts[1].Y, pts[2].X, pts[2].Y)
	case 4:
		fmt.Fprintf(&sb, " C%.2f,%.2f %.2f,%.2f %.2f,%.2f", pts[1].X, pts[1].Y, pts[2].X, pts[2].Y, pts[3].X, pts[3].Y)
	default:
		for _, p := range pts[1:] {
			fmt.Fprintf(&sb, " L%.2f,%.2f", p.X, p.Y)
		}
	}
	return sb.String()
}

func writeBoundary(buf *bytes.Buffer, o *scene.Object) {
	pts := o.AbsPoints()
	if len(pts) < 3 {
		return
	}
	coords := make([]string, len(pts))
	for i, p := range pts {
		coords[i] = fmt.Sprintf("%.2f,%.2f", p.X, p.Y)
	}
	fmt.Fprintf(buf, `  <polygon id="%s" points="%s" fill="#f4f7ff" stroke="#8aa0d6" stroke-width="%.2f" stroke-linejoin="round"/>`+"\n",
		html.EscapeString(o.ID), strings.Join(coords, " "), cmp.Or(o.StrokeWidth, 1.0))
}

func writeIndicator(buf *bytes.Buffer, o *scene.Object) {
	b := o.Box()
	fmt.Fprintf(buf, `  <circle cx="%.2f" cy="%.2f" r="%.2f" fill="#333"/>`+"\n", b.CenterX(), b.CenterY(), b.Width/2)
	fmt.Fprintf(buf, `  <text x="%.2f" y="%.2f" font-family="sans-serif" font-size="%.1f" fill="white" text-anchor="middle">%s</text>`+"\n",
		b.CenterX(), b.CenterY()+b.Height*0.25, b.Height*0.7, html.EscapeString(o.Text))
}
