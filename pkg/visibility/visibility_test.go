package visibility

import (
	"testing"

	"github.com/matzehuels/mindlayout/pkg/config"
	"github.com/matzehuels/mindlayout/pkg/hierarchy"
	"github.com/matzehuels/mindlayout/pkg/scene"
	"github.com/matzehuels/mindlayout/pkg/scene/scenetest"
)

func branch() *scenetest.Builder {
	return scenetest.New().
		Root("root", 0, 0, nil).
		Child("root", "a", 0).
		Child("root", "b", 1).
		Child("a", "a1", 0).
		Child("a1", "a11", 0).
		Child("a", "a2", 1).
		Decoration("deco", "a1").
		Label("label", "a2").
		CrossLink("inner", "a1", "a2").
		CrossLink("outer", "a11", "b").
		Edit("a2", func(o *scene.Object) { o.Opacity = 60; o.Locked = true })
}

func fold(buf *scene.Buffer, id string, folded bool) {
	buf.Edit(id).Node.Folded = folded
	ix := hierarchy.Build(buf.All())
	New(buf, ix, config.Default().Resolve(nil)).Refresh(id)
}

func indicators(buf *scene.Buffer) []*scene.Object {
	var out []*scene.Object
	for _, o := range buf.All() {
		if !o.Deleted && o.Role == scene.RoleFoldIndicator {
			out = append(out, o)
		}
	}
	return out
}

func TestFoldHidesDescendants(t *testing.T) {
	buf := branch().Buffer()
	fold(buf, "a", true)

	for _, id := range []string{"a1", "a11", "a2", "edge-a1", "edge-a11", "edge-a2", "deco", "label", "inner", "outer"} {
		if o := buf.Get(id); o.IsVisible() || !o.Locked {
			t.Errorf("%s visible after fold (opacity %v, locked %v)", id, o.Opacity, o.Locked)
		}
	}
	for _, id := range []string{"root", "a", "b", "edge-a", "edge-b"} {
		if !buf.Get(id).IsVisible() {
			t.Errorf("%s hidden after fold", id)
		}
	}

	inds := indicators(buf)
	if len(inds) != 1 {
		t.Fatalf("got %d fold indicators, want 1", len(inds))
	}
	if inds[0].OwnerID != "a" || buf.Get("a").Node.FoldIndicatorID != inds[0].ID {
		t.Errorf("indicator not linked to a: %+v", inds[0])
	}
	if inds[0].Text != "3" {
		t.Errorf("indicator text = %q, want 3 hidden descendants", inds[0].Text)
	}
}

func TestUnfoldRestoresExactState(t *testing.T) {
	b := branch()
	before := b.Objects()
	buf := b.Buffer()

	fold(buf, "a", true)
	fold(buf, "a", false)

	for _, want := range before {
		got := buf.Get(want.ID)
		if got.Opacity != want.Opacity || got.Locked != want.Locked || got.Hidden != nil {
			t.Errorf("%s: opacity %v locked %v hidden %v; want opacity %v locked %v",
				want.ID, got.Opacity, got.Locked, got.Hidden, want.Opacity, want.Locked)
		}
	}
	if n := len(indicators(buf)); n != 0 {
		t.Errorf("%d fold indicators left after unfold", n)
	}
	if buf.Get("a").Node.FoldIndicatorID != "" {
		t.Error("FoldIndicatorID not cleared")
	}
}

func TestNestedFoldKeepsOriginalState(t *testing.T) {
	b := branch()
	buf := b.Buffer()

	fold(buf, "a1", true)
	fold(buf, "a", true)
	if n := len(indicators(buf)); n != 1 {
		t.Fatalf("got %d indicators, want only the visible fold root's", n)
	}
	fold(buf, "a", false)

	if buf.Get("a11").IsVisible() {
		t.Error("a11 shown although a1 is still folded")
	}
	if got := buf.Get("a2"); got.Opacity != 60 || !got.Locked {
		t.Errorf("a2 = opacity %v locked %v, want 60 true", got.Opacity, got.Locked)
	}
	if inds := indicators(buf); len(inds) != 1 || inds[0].OwnerID != "a1" {
		t.Errorf("indicators = %v, want one on a1", inds)
	}

	fold(buf, "a1", false)
	if !buf.Get("a11").IsVisible() || !buf.Get("outer").IsVisible() {
		t.Error("a11 subtree not restored")
	}
}

func TestCrossLinkNeedsBothEndpoints(t *testing.T) {
	buf := branch().Buffer()
	fold(buf, "b", true) // b has no children: nothing changes
	if len(indicators(buf)) != 0 {
		t.Error("childless folded node got an indicator")
	}

	fold(buf, "a1", true)
	if buf.Get("outer").IsVisible() {
		t.Error("cross-link to hidden a11 still visible")
	}
	if !buf.Get("inner").IsVisible() {
		t.Error("cross-link between visible a1 and a2 hidden")
	}
}

func TestUnhideFallback(t *testing.T) {
	buf := scenetest.New().Root("root", 0, 0, nil).Child("root", "a", 0).Buffer()
	o := buf.Edit("a")
	o.Opacity = 0
	ix := hierarchy.Build(buf.All())
	c := New(buf, ix, config.Default().Resolve(nil))
	c.SetHidden("a", false)
	if got := buf.Get("a"); got.Opacity != scene.OpacityVisible || got.Locked {
		t.Errorf("fallback unhide = opacity %v locked %v", got.Opacity, got.Locked)
	}
	c.SetHidden("missing", true)
}

func TestBoundaryHiddenWhenFolded(t *testing.T) {
	b := branch().
		Add(&scene.Object{ID: "cloud", Kind: scene.KindLine, Role: scene.RoleBoundary, OwnerID: "a"}).
		Edit("a", func(o *scene.Object) { o.Node.BoundaryID = "cloud" })
	buf := b.Buffer()
	fold(buf, "a", true)
	if buf.Get("cloud").IsVisible() {
		t.Error("boundary of folded node visible")
	}
	fold(buf, "a", false)
	if !buf.Get("cloud").IsVisible() {
		t.Error("boundary not restored")
	}
}

func TestPurgeOrphans(t *testing.T) {
	buf := scenetest.New().
		Root("root", 0, 0, nil).
		Add(&scene.Object{ID: "stale", Kind: scene.KindEllipse, Role: scene.RoleFoldIndicator, OwnerID: "gone"}).
		Add(&scene.Object{ID: "unlinked", Kind: scene.KindLine, Role: scene.RoleBoundary, OwnerID: "root"}).
		Buffer()
	if n := PurgeOrphans(buf); n != 2 {
		t.Errorf("PurgeOrphans() = %d, want 2", n)
	}
	if buf.Live("stale") != nil || buf.Live("unlinked") != nil {
		t.Error("orphans not deleted")
	}
}

func TestSharedGroupKeepsStructuralNodes(t *testing.T) {
	share := func(o *scene.Object) { o.GroupIDs = append(o.GroupIDs, "g") }
	b := scenetest.New().
		Root("root", 0, 0, nil).
		Child("root", "a", 0).
		Child("a", "a1", 0).
		Child("a1", "a11", 0).
		Child("a1", "a12", 1).
		Edit("a", share).
		Edit("a1", share).
		Edit("a11", share)
	before := b.Objects()
	buf := b.Buffer()

	fold(buf, "a1", true)
	for _, id := range []string{"root", "a", "a1", "edge-a", "edge-a1"} {
		if !buf.Get(id).IsVisible() {
			t.Errorf("%s hidden by a fold below it", id)
		}
	}
	for _, id := range []string{"a11", "a12", "edge-a11", "edge-a12"} {
		if buf.Get(id).IsVisible() {
			t.Errorf("%s visible inside folded a1", id)
		}
	}

	fold(buf, "a1", false)
	for _, want := range before {
		got := buf.Get(want.ID)
		if got.Opacity != want.Opacity || got.Locked != want.Locked || got.Hidden != nil {
			t.Errorf("%s: opacity %v locked %v after unfold, want %v %v",
				want.ID, got.Opacity, got.Locked, want.Opacity, want.Locked)
		}
	}
}
