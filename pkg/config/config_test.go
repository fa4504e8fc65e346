package config

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/mindlayout/pkg/scene"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() error: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*LayoutConfig)
	}{
		{"unknown mode", func(c *LayoutConfig) { c.GrowthMode = "spiral" }},
		{"unknown arrows", func(c *LayoutConfig) { c.ArrowStyle = "zigzag" }},
		{"zero gap", func(c *LayoutConfig) { c.HorizontalGap = 0 }},
		{"sweep above 360", func(c *LayoutConfig) { c.RadialMaxSweep = 400 }},
		{"flat arc", func(c *LayoutConfig) { c.DirectionalArcSpan = 180 }},
		{"no fonts", func(c *LayoutConfig) { c.FontSizes = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestFontSizeAtClamps(t *testing.T) {
	c := Default()
	c.FontSizes = []float64{30, 20, 14}
	tests := map[int]float64{-1: 30, 0: 30, 1: 20, 2: 14, 7: 14}
	for depth, want := range tests {
		if got := c.FontSizeAt(depth); got != want {
			t.Errorf("FontSizeAt(%d) = %v, want %v", depth, got, want)
		}
	}
}

func TestResolve(t *testing.T) {
	c := Default()

	r := c.Resolve(nil)
	if !r.AutoLayout || r.GrowthMode != scene.GrowthRadial {
		t.Errorf("Resolve(nil) = %+v", r)
	}

	r = c.Resolve(&scene.RootConfig{GrowthMode: scene.GrowthLeft, WrapWidth: 200, AutoLayoutDisabled: true})
	if r.GrowthMode != scene.GrowthLeft || r.WrapWidth != 200 || r.AutoLayout {
		t.Errorf("Resolve(override) = %+v", r)
	}
	if r.ArrowStyle != c.ArrowStyle {
		t.Errorf("ArrowStyle = %v, want default %v", r.ArrowStyle, c.ArrowStyle)
	}
}

func TestWriteAndLoad(t *testing.T) {
	c := Default()
	c.GrowthMode = scene.GrowthLeftRight
	c.HorizontalGap = 123

	path := filepath.Join(t.TempDir(), "layout.toml")
	if err := WriteFile(path, c); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.GrowthMode != scene.GrowthLeftRight || got.HorizontalGap != 123 {
		t.Errorf("Load() = %+v", got)
	}
}

func TestDecodePartialKeepsDefaults(t *testing.T) {
	got, err := Decode(strings.NewReader(`growth_mode = "right"` + "\n"))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if got.GrowthMode != scene.GrowthRight {
		t.Errorf("GrowthMode = %v, want right", got.GrowthMode)
	}
	if got.SiblingGap != Default().SiblingGap {
		t.Errorf("SiblingGap = %v, want default", got.SiblingGap)
	}

	var buf bytes.Buffer
	if err := Write(&buf, got); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if !strings.Contains(buf.String(), `growth_mode = "right"`) {
		t.Errorf("encoded TOML missing growth_mode:\n%s", buf.String())
	}
}
