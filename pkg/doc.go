// Package pkg provides the core libraries for Mindlayout, an automatic layout
// engine for mind maps drawn on a whiteboard-style canvas.
//
// # Overview
//
// A mind map is a set of canvas objects: node shapes, arrows bound between
// them, text labels, boundaries and groups. Mindlayout reads those objects
// through a host, computes where every node should sit and writes the moved
// objects back. The pkg directory is organized into four areas:
//
//  1. Model: [scene], [hierarchy], [geom], [config], [textmetrics]
//  2. Layout: [placement], [visibility], [boundary], [grouping], [editor], [engine]
//  3. Infrastructure: [store], [host], [cache], [observability], [errors]
//  4. Surfaces: [pipeline], [render], [api]
//
// # Architecture
//
// The typical data flow:
//
//	Host (memory, store-backed)
//	         ↓
//	    [scene] Buffer + [hierarchy] Index
//	         ↓
//	    [engine] pass 1 (commit immediately)
//	         ↓
//	    [engine] pass 2 (stabilize, commit eventually)
//	         ↓
//	    [render] SVG/DOT/PNG/PDF
//
// # Quick Start
//
// Lay out a stored scene and render it:
//
//	st, _ := store.Open(ctx, "./scenes")
//	runner := pipeline.NewRunner(st, nil, nil, nil)
//	defer runner.Close()
//
//	res, _ := runner.Layout(ctx, pipeline.Options{Scene: "ideas"})
//	svg, _, _ := runner.Render(ctx, "ideas", pipeline.RenderOptions{Format: "svg"})
//
// Drive the engine directly over an in-memory host:
//
//	h := host.NewMemory(objs)
//	e := engine.New(h, config.Default(), nil, nil)
//	rep, _ := e.Layout(ctx, "root", engine.LayoutOptions{})
//
// # Error Handling
//
// Errors carry a code from [errors]. Structural edits that would break the
// map fail with ErrCodeInvariantViolation and leave the scene untouched:
//
//	if errors.Is(err, errors.ErrCodeInvariantViolation) {
//	    // report and keep going
//	}
//
// [scene]: github.com/matzehuels/mindlayout/pkg/scene
// [hierarchy]: github.com/matzehuels/mindlayout/pkg/hierarchy
// [geom]: github.com/matzehuels/mindlayout/pkg/geom
// [config]: github.com/matzehuels/mindlayout/pkg/config
// [textmetrics]: github.com/matzehuels/mindlayout/pkg/textmetrics
// [placement]: github.com/matzehuels/mindlayout/pkg/placement
// [visibility]: github.com/matzehuels/mindlayout/pkg/visibility
// [boundary]: github.com/matzehuels/mindlayout/pkg/boundary
// [grouping]: github.com/matzehuels/mindlayout/pkg/grouping
// [editor]: github.com/matzehuels/mindlayout/pkg/editor
// [engine]: github.com/matzehuels/mindlayout/pkg/engine
// [store]: github.com/matzehuels/mindlayout/pkg/store
// [host]: github.com/matzehuels/mindlayout/pkg/host
// [cache]: github.com/matzehuels/mindlayout/pkg/cache
// [observability]: github.com/matzehuels/mindlayout/pkg/observability
// [errors]: github.com/matzehuels/mindlayout/pkg/errors
// [pipeline]: github.com/matzehuels/mindlayout/pkg/pipeline
// [render]: github.com/matzehuels/mindlayout/pkg/render
// [api]: github.com/matzehuels/mindlayout/pkg/api
package pkg
