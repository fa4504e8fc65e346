// Package config holds the tunable constants of the layout engine.
//
// [LayoutConfig] is passed explicitly into every engine entry point; nothing
// in the engine reads global settings. A map's root node may override a few
// preferences through [scene.RootConfig]; [LayoutConfig.Resolve] folds those
// overrides in once, at the top of a layout call, and the resulting
// [Resolved] value is threaded through the whole recursion.
//
// Configurations are stored as TOML:
//
//	growth_mode = "left-right"
//	horizontal_gap = 120.0
//	font_sizes = [36.0, 24.0, 20.0, 16.0]
package config

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/mindlayout/pkg/errors"
	"github.com/matzehuels/mindlayout/pkg/scene"
)

// LayoutConfig is the full set of layout constants.
type LayoutConfig struct {
	// Map-wide defaults that a root may override.
	GrowthMode scene.GrowthMode `toml:"growth_mode" mapstructure:"growth_mode" json:"growth_mode"`
	ArrowStyle scene.ArrowStyle `toml:"arrow_style" mapstructure:"arrow_style" json:"arrow_style"`
	WrapWidth  float64          `toml:"wrap_width" mapstructure:"wrap_width" json:"wrap_width"`
	CenterText bool             `toml:"center_text" mapstructure:"center_text" json:"center_text"`

	// Subtree stacking.
	HorizontalGap     float64 `toml:"horizontal_gap" mapstructure:"horizontal_gap" json:"horizontal_gap"`
	SiblingGap        float64 `toml:"sibling_gap" mapstructure:"sibling_gap" json:"sibling_gap"`
	LeafGapMultiplier float64 `toml:"leaf_gap_multiplier" mapstructure:"leaf_gap_multiplier" json:"leaf_gap_multiplier"`
	BoundaryPadding   float64 `toml:"boundary_padding" mapstructure:"boundary_padding" json:"boundary_padding"`

	// Radial distribution.
	RadialMinRadius  float64 `toml:"radial_min_radius" mapstructure:"radial_min_radius" json:"radial_min_radius"`
	RadialAspect     float64 `toml:"radial_aspect" mapstructure:"radial_aspect" json:"radial_aspect"`
	RadialStartAngle float64 `toml:"radial_start_angle" mapstructure:"radial_start_angle" json:"radial_start_angle"`
	RadialMaxSweep   float64 `toml:"radial_max_sweep" mapstructure:"radial_max_sweep" json:"radial_max_sweep"`
	RadialGap        float64 `toml:"radial_gap" mapstructure:"radial_gap" json:"radial_gap"`
	PoleGapBonus     float64 `toml:"pole_gap_bonus" mapstructure:"pole_gap_bonus" json:"pole_gap_bonus"`
	RadialGrowSteps  int     `toml:"radial_grow_steps" mapstructure:"radial_grow_steps" json:"radial_grow_steps"`

	// Directional distribution.
	DirectionalArcSpan   float64 `toml:"directional_arc_span" mapstructure:"directional_arc_span" json:"directional_arc_span"`
	DirectionalMinRadius float64 `toml:"directional_min_radius" mapstructure:"directional_min_radius" json:"directional_min_radius"`
	DenseThreshold       int     `toml:"dense_threshold" mapstructure:"dense_threshold" json:"dense_threshold"`
	DensePadding         float64 `toml:"dense_padding" mapstructure:"dense_padding" json:"dense_padding"`

	// Connectors and glyphs.
	Curvature         float64 `toml:"curvature" mapstructure:"curvature" json:"curvature"`
	FoldIndicatorSize float64 `toml:"fold_indicator_size" mapstructure:"fold_indicator_size" json:"fold_indicator_size"`
	FoldIndicatorGap  float64 `toml:"fold_indicator_gap" mapstructure:"fold_indicator_gap" json:"fold_indicator_gap"`

	// Depth styling; the last entry applies to every deeper level.
	FontSizes    []float64 `toml:"font_sizes" mapstructure:"font_sizes" json:"font_sizes"`
	StrokeWidths []float64 `toml:"stroke_widths" mapstructure:"stroke_widths" json:"stroke_widths"`
	LineHeight   float64   `toml:"line_height" mapstructure:"line_height" json:"line_height"`
	TextPadding  float64   `toml:"text_padding" mapstructure:"text_padding" json:"text_padding"`

	// Settle tolerance for the stabilization pass.
	Epsilon float64 `toml:"epsilon" mapstructure:"epsilon" json:"epsilon"`
}

// Default returns the default configuration. It is the single source of
// truth for every engine constant.
func Default() LayoutConfig {
	return LayoutConfig{
		GrowthMode: scene.GrowthRadial,
		ArrowStyle: scene.ArrowCurved,
		WrapWidth:  320,

		HorizontalGap:     90,
		SiblingGap:        28,
		LeafGapMultiplier: 0.6,
		BoundaryPadding:   16,

		RadialMinRadius:  240,
		RadialAspect:     1.6,
		RadialStartAngle: 20,
		RadialMaxSweep:   320,
		RadialGap:        18,
		PoleGapBonus:     1.5,
		RadialGrowSteps:  24,

		DirectionalArcSpan:   120,
		DirectionalMinRadius: 220,
		DenseThreshold:       6,
		DensePadding:         10,

		Curvature:         0.5,
		FoldIndicatorSize: 14,
		FoldIndicatorGap:  6,

		FontSizes:    []float64{32, 24, 20, 16},
		StrokeWidths: []float64{4, 3, 2, 1.5},
		LineHeight:   1.25,
		TextPadding:  4,

		Epsilon: 0.5,
	}
}

// Validate checks that the configuration is usable.
func (c LayoutConfig) Validate() error {
	if _, err := scene.ParseGrowthMode(string(c.GrowthMode)); err != nil {
		return err
	}
	if c.ArrowStyle != scene.ArrowCurved && c.ArrowStyle != scene.ArrowStraight {
		return errors.New(errors.ErrCodeInvalidInput, "unknown arrow style %q", c.ArrowStyle)
	}
	checks := []struct {
		name string
		v    float64
	}{
		{"horizontal_gap", c.HorizontalGap},
		{"sibling_gap", c.SiblingGap},
		{"radial_min_radius", c.RadialMinRadius},
		{"radial_aspect", c.RadialAspect},
		{"radial_max_sweep", c.RadialMaxSweep},
		{"directional_arc_span", c.DirectionalArcSpan},
		{"directional_min_radius", c.DirectionalMinRadius},
		{"line_height", c.LineHeight},
	}
	for _, ch := range checks {
		if ch.v <= 0 || math.IsNaN(ch.v) || math.IsInf(ch.v, 0) {
			return errors.New(errors.ErrCodeInvalidInput, "%s must be positive, got %v", ch.name, ch.v)
		}
	}
	if c.RadialMaxSweep > 360 {
		return errors.New(errors.ErrCodeInvalidInput, "radial_max_sweep must not exceed 360, got %v", c.RadialMaxSweep)
	}
	if c.DirectionalArcSpan >= 180 {
		return errors.New(errors.ErrCodeInvalidInput, "directional_arc_span must be below 180, got %v", c.DirectionalArcSpan)
	}
	if len(c.FontSizes) == 0 || len(c.StrokeWidths) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "font_sizes and stroke_widths must not be empty")
	}
	return nil
}

// FontSizeAt returns the font size for a node at depth (root = 0).
func (c LayoutConfig) FontSizeAt(depth int) float64 { return clampIndex(c.FontSizes, depth) }

// StrokeWidthAt returns the connector stroke width for a node at depth.
func (c LayoutConfig) StrokeWidthAt(depth int) float64 { return clampIndex(c.StrokeWidths, depth) }

func clampIndex(vals []float64, i int) float64 {
	if len(vals) == 0 {
		return 0
	}
	if i < 0 {
		i = 0
	}
	if i >= len(vals) {
		i = len(vals) - 1
	}
	return vals[i]
}

// Resolved is a LayoutConfig with a root's overrides applied.
type Resolved struct {
	LayoutConfig
	AutoLayout bool
}

// Resolve applies root overrides. A nil root yields the defaults with
// auto-layout enabled.
func (c LayoutConfig) Resolve(root *scene.RootConfig) Resolved {
	r := Resolved{LayoutConfig: c, AutoLayout: true}
	if root == nil {
		return r
	}
	if root.GrowthMode != "" {
		r.GrowthMode = root.GrowthMode
	}
	if root.ArrowStyle != "" {
		r.ArrowStyle = root.ArrowStyle
	}
	if root.WrapWidth > 0 {
		r.WrapWidth = root.WrapWidth
	}
	r.CenterText = r.CenterText || root.CenterText
	r.AutoLayout = !root.AutoLayoutDisabled
	return r
}

// Load reads a TOML file on top of Default(). Keys missing from the file
// keep their default values.
func Load(path string) (LayoutConfig, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return LayoutConfig{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return LayoutConfig{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads TOML from r on top of Default().
func Decode(r io.Reader) (LayoutConfig, error) {
	cfg := Default()
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return LayoutConfig{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Write encodes cfg as TOML.
func Write(w io.Writer, cfg LayoutConfig) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// WriteFile writes cfg to path, creating or truncating it.
func WriteFile(path string, cfg LayoutConfig) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(f, cfg)
}
