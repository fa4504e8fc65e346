package pipeline

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mindlayout/pkg/cache"
	"github.com/matzehuels/mindlayout/pkg/config"
	"github.com/matzehuels/mindlayout/pkg/errors"
	"github.com/matzehuels/mindlayout/pkg/scene"
	"github.com/matzehuels/mindlayout/pkg/scene/scenetest"
	"github.com/matzehuels/mindlayout/pkg/store"
	"github.com/matzehuels/mindlayout/pkg/textmetrics"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"dot", false},
		{"json", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "dot"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestConfigHash(t *testing.T) {
	hash := func(c config.LayoutConfig) string {
		t.Helper()
		h, err := ConfigHash(c)
		if err != nil {
			t.Fatalf("ConfigHash() error: %v", err)
		}
		return h
	}
	a := config.Default()
	b := config.Default()
	if hash(a) != hash(b) {
		t.Error("ConfigHash should be deterministic")
	}
	b.SiblingGap++
	if hash(a) == hash(b) {
		t.Error("different configs should hash differently")
	}

	bad := config.Default()
	bad.HorizontalGap = 0
	if h, err := ConfigHash(bad); err == nil || h != "" {
		t.Errorf("ConfigHash(invalid) = %q, %v; want an error", h, err)
	}
}

func newRunner(t *testing.T) (*Runner, *cache.FileCache) {
	t.Helper()
	st, err := store.NewFile(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(st, c, nil, log.New(io.Discard))
	r.Measurer = textmetrics.Fixed{}

	objs := scenetest.New().
		Root("root", 0, 0, &scene.RootConfig{GrowthMode: scene.GrowthRight}).
		Child("root", "a", 0).
		Child("root", "b", 1).
		Child("a", "a1", 0).
		Objects()
	if err := st.Save(context.Background(), "demo", objs); err != nil {
		t.Fatal(err)
	}
	return r, c
}

func TestRunnerLayoutCaches(t *testing.T) {
	ctx := context.Background()
	r, _ := newRunner(t)
	defer r.Close()

	first, err := r.Layout(ctx, Options{Scene: "demo"})
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	if first.CacheHit || len(first.Reports) != 1 {
		t.Fatalf("first run: hit=%v reports=%d", first.CacheHit, len(first.Reports))
	}

	// Restore the original scene: the same input must replay from cache.
	orig := scenetest.New().
		Root("root", 0, 0, &scene.RootConfig{GrowthMode: scene.GrowthRight}).
		Child("root", "a", 0).
		Child("root", "b", 1).
		Child("a", "a1", 0).
		Objects()
	if err := r.Store.Save(ctx, "demo", orig); err != nil {
		t.Fatal(err)
	}
	second, err := r.Layout(ctx, Options{Scene: "demo"})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit {
		t.Error("identical scene should hit the cache")
	}
	if second.Stats.Objects != first.Stats.Objects {
		t.Errorf("cached result has %d objects, want %d", second.Stats.Objects, first.Stats.Objects)
	}

	stored, _ := r.Store.Load(ctx, "demo")
	h1, _ := SceneHash(stored)
	h2, _ := SceneHash(first.Objects)
	if h1 != h2 {
		t.Error("cache hit should save the laid-out scene")
	}

	refreshed, err := r.Layout(ctx, Options{Scene: "demo", Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheHit {
		t.Error("Refresh should bypass the cache")
	}
}

func TestRunnerLayoutErrors(t *testing.T) {
	ctx := context.Background()
	r, _ := newRunner(t)

	if _, err := r.Layout(ctx, Options{Scene: "missing"}); !errors.Is(err, errors.ErrCodeSceneNotFound) {
		t.Errorf("missing scene error = %v", err)
	}
	if _, err := r.Layout(ctx, Options{Scene: "demo", RootID: "ghost"}); !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("unknown root error = %v", err)
	}
	if _, err := r.Layout(ctx, Options{Scene: "../x"}); !errors.Is(err, errors.ErrCodeInvalidSceneName) {
		t.Errorf("bad name error = %v", err)
	}
}

func TestRunnerRender(t *testing.T) {
	ctx := context.Background()
	r, _ := newRunner(t)

	data, hit, err := r.Render(ctx, "demo", RenderOptions{})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if hit || !bytes.HasPrefix(data, []byte("<svg")) {
		t.Fatalf("first render: hit=%v prefix=%q", hit, data[:min(len(data), 10)])
	}
	again, hit, err := r.Render(ctx, "demo", RenderOptions{})
	if err != nil || !hit || !bytes.Equal(again, data) {
		t.Errorf("second render should be a cache hit: hit=%v err=%v", hit, err)
	}

	dotSrc, _, err := r.Render(ctx, "demo", RenderOptions{Format: "dot"})
	if err != nil || !bytes.HasPrefix(dotSrc, []byte("digraph")) {
		t.Errorf("dot render: %q, %v", dotSrc, err)
	}
}
