package metrics

import (
	"fmt"
	"testing"

	"github.com/matzehuels/mindlayout/pkg/config"
	"github.com/matzehuels/mindlayout/pkg/hierarchy"
	"github.com/matzehuels/mindlayout/pkg/scene"
	"github.com/matzehuels/mindlayout/pkg/scene/scenetest"
)

func newMetrics(b *scenetest.Builder) *Metrics {
	return New(hierarchy.Build(b.Objects()), config.Default().Resolve(nil))
}

func TestSubtreeHeightLeaf(t *testing.T) {
	m := newMetrics(scenetest.New().Root("root", 0, 0, nil))
	if got := m.SubtreeHeight("root"); got != scenetest.NodeHeight {
		t.Errorf("SubtreeHeight = %v, want %v", got, scenetest.NodeHeight)
	}
	if got := m.SubtreeHeight("missing"); got != 0 {
		t.Errorf("SubtreeHeight(missing) = %v, want 0", got)
	}
}

func TestSubtreeHeightSumsChildren(t *testing.T) {
	cfg := config.Default()
	b := scenetest.New().Root("root", 0, 0, nil)
	for i := range 4 {
		b.Child("root", fmt.Sprintf("c%d", i), float64(i))
	}
	b.Child("c0", "g0", 0)
	m := newMetrics(b)

	leafGap := scenetest.FontSize * cfg.LeafGapMultiplier
	// c0 is a branch, c1 and c2 leaves; no gap after the last child.
	want := 4*scenetest.NodeHeight + cfg.SiblingGap + 2*leafGap
	if got := m.SubtreeHeight("root"); got != want {
		t.Errorf("SubtreeHeight(root) = %v, want %v", got, want)
	}
	if got := m.SubtreeHeight("root"); got < scenetest.NodeHeight {
		t.Errorf("subtree shorter than node: %v", got)
	}
}

func TestSubtreeHeightFoldedAndPinned(t *testing.T) {
	b := scenetest.New().
		Root("root", 0, 0, nil).
		Child("root", "a", 0).
		Child("root", "b", 1).
		Child("a", "a1", 0).
		Child("a", "a2", 1).
		Pin("b").
		Edit("a", func(o *scene.Object) { o.Node.Folded = true })
	m := newMetrics(b)

	if got := m.SubtreeHeight("a"); got != scenetest.NodeHeight {
		t.Errorf("folded SubtreeHeight(a) = %v, want own height", got)
	}
	// b is pinned and does not stack; a is folded and counts as one node.
	if got := m.SubtreeHeight("root"); got != scenetest.NodeHeight {
		t.Errorf("SubtreeHeight(root) = %v, want %v", got, scenetest.NodeHeight)
	}
	if !m.IsLeaf("a") {
		t.Error("folded node must stack as a leaf")
	}
}

func TestSubtreeHeightBoundaryPadding(t *testing.T) {
	cfg := config.Default()
	b := scenetest.New().
		Root("root", 0, 0, nil).
		Child("root", "a", 0).
		Add(&scene.Object{ID: "cloud", Kind: scene.KindLine, Role: scene.RoleBoundary, OwnerID: "a"}).
		Edit("a", func(o *scene.Object) { o.Node.BoundaryID = "cloud" })
	m := newMetrics(b)
	want := scenetest.NodeHeight + 2*cfg.BoundaryPadding
	if got := m.SubtreeHeight("a"); got != want {
		t.Errorf("SubtreeHeight(a) = %v, want %v", got, want)
	}
}

func TestSubtreeHeightMemoized(t *testing.T) {
	b := scenetest.New().Root("root", 0, 0, nil).Child("root", "a", 0).Child("a", "b", 0)
	m := newMetrics(b)
	first := m.SubtreeHeight("root")
	if m.Cached() != 3 {
		t.Errorf("Cached() = %d, want 3", m.Cached())
	}
	if again := m.SubtreeHeight("root"); again != first {
		t.Errorf("second call = %v, want %v", again, first)
	}
}

func TestSubtreeHeightTallNode(t *testing.T) {
	b := scenetest.New().
		Root("root", 0, 0, nil).
		Child("root", "a", 0).
		Edit("root", func(o *scene.Object) { o.Height = 500 })
	m := newMetrics(b)
	if got := m.SubtreeHeight("root"); got != 500 {
		t.Errorf("SubtreeHeight = %v, want node height 500", got)
	}
}

func TestSubtreeWidth(t *testing.T) {
	gap := config.Default().HorizontalGap
	b := scenetest.New().
		Root("root", 0, 0, nil).
		Child("root", "a", 0).
		Child("root", "b", 1).
		Child("a", "a1", 0).
		Child("a", "a2", 1).
		Child("a1", "a11", 0).
		Child("b", "b1", 0).
		Edit("a11", func(o *scene.Object) { o.Width = 300 }).
		Edit("b", func(o *scene.Object) { o.Node.Folded = true })
	m := newMetrics(b)

	tests := []struct {
		id   string
		want float64
	}{
		{"a11", 300},
		{"a", scenetest.NodeWidth + gap + scenetest.NodeWidth + gap + 300},
		{"b", scenetest.NodeWidth},
		{"root", scenetest.NodeWidth + gap + scenetest.NodeWidth + gap + scenetest.NodeWidth + gap + 300},
		{"missing", 0},
	}
	for _, tt := range tests {
		if got := m.SubtreeWidth(tt.id); got != tt.want {
			t.Errorf("SubtreeWidth(%s) = %v, want %v", tt.id, got, tt.want)
		}
	}

	pinned := newMetrics(b.Pin("a1"))
	if got, want := pinned.SubtreeWidth("a"), scenetest.NodeWidth+gap+scenetest.NodeWidth; got != want {
		t.Errorf("SubtreeWidth(a) with a1 pinned = %v, want %v", got, want)
	}
}
