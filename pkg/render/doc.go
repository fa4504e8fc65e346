// Package render turns laid-out scenes into images.
//
// # Overview
//
// The engine itself only moves objects; rendering is for debugging layouts
// and for hosts without a canvas of their own. Two renderers exist:
//
//   - [svg]: draws the scene objects directly (nodes, curved connectors,
//     boundaries, fold indicators)
//   - [dot]: exports the hierarchy as Graphviz DOT with pinned node
//     positions and renders it with the neato engine
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	data := svg.Render(objs, svg.Options{})
//	png, err := render.ToPNG(data, 2.0)  // 2x scale
//
// [svg]: github.com/matzehuels/mindlayout/pkg/render/svg
// [dot]: github.com/matzehuels/mindlayout/pkg/render/dot
package render
