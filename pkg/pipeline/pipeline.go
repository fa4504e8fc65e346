// Package pipeline runs stored scenes through the layout engine.
//
// This package implements the load → layout → save → render flow shared by
// the CLI and the HTTP API. By centralizing it, both entry points cache and
// log the same way.
//
// # Architecture
//
// The pipeline has three stages:
//
//  1. Load: read a named scene from a [store.Store]
//  2. Layout: run the engine on one or all map roots and save the result
//  3. Render: draw the scene as SVG, PNG, PDF or DOT
//
// Layout results are cached by scene content, configuration and options, so
// laying out an unchanged scene twice replays the first result.
//
// # Usage
//
//	runner := pipeline.NewRunner(st, c, nil, logger)
//	result, err := runner.Layout(ctx, pipeline.Options{Scene: "ideas"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg, _, err := runner.Render(ctx, "ideas", pipeline.RenderOptions{Format: "svg"})
package pipeline

import (
	"fmt"
	"slices"
	"time"

	"github.com/matzehuels/mindlayout/pkg/cache"
	"github.com/matzehuels/mindlayout/pkg/engine"
	"github.com/matzehuels/mindlayout/pkg/errors"
	"github.com/matzehuels/mindlayout/pkg/render"
	"github.com/matzehuels/mindlayout/pkg/scene"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultFormat is the default render format.
	DefaultFormat = render.FormatSVG

	// DefaultScale is the default PNG scale factor.
	DefaultScale = 2.0
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a layout run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Scene is the stored scene name.
	Scene string `json:"scene"`

	// RootID limits the layout to one map. Empty lays out every root.
	RootID string `json:"root_id,omitempty"`

	ForceUngroup     bool `json:"force_ungroup,omitempty"`
	HonorManualOrder bool `json:"honor_manual_order,omitempty"`

	// Refresh bypasses the layout cache.
	Refresh bool `json:"refresh,omitempty"`
}

// Validate checks required fields.
func (o Options) Validate() error {
	return errors.ValidateSceneName(o.Scene)
}

// layoutOptions returns the engine options.
func (o Options) layoutOptions() engine.LayoutOptions {
	return engine.LayoutOptions{ForceUngroup: o.ForceUngroup, HonorManualOrder: o.HonorManualOrder}
}

// keyOpts returns cache key options for a layout of roots.
func (o Options) keyOpts(roots []string, configHash string) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		RootID:           fmt.Sprint(roots),
		ConfigHash:       configHash,
		ForceUngroup:     o.ForceUngroup,
		HonorManualOrder: o.HonorManualOrder,
	}
}

// RenderOptions configures a render.
type RenderOptions struct {
	Format string `json:"format,omitempty"`
	// Graphviz renders through DOT and neato instead of drawing the scene
	// objects directly.
	Graphviz bool    `json:"graphviz,omitempty"`
	Scale    float64 `json:"scale,omitempty"`
}

// SetDefaults fills in unset fields.
func (o *RenderOptions) SetDefaults() {
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
}

// Validate checks the format.
func (o RenderOptions) Validate() error {
	return ValidateFormat(o.Format)
}

// renderer names the render path for cache keys.
func (o RenderOptions) renderer() string {
	if o.Graphviz {
		return "neato"
	}
	return "direct"
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of a layout run.
type Result struct {
	// Objects is the laid-out scene.
	Objects []*scene.Object

	// SceneHash is the content hash of the scene before layout.
	SceneHash string

	// Reports holds one engine report per laid-out root. Empty on a cache hit.
	Reports []engine.Report

	// CacheHit is set when the result was replayed from the cache.
	CacheHit bool

	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Roots      int
	Objects    int
	LoadTime   time.Duration
	LayoutTime time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !slices.Contains(render.Formats, format) {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: %v)", format, render.Formats)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}
