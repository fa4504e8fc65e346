package host

import (
	"context"
	"slices"
	"testing"

	"github.com/matzehuels/mindlayout/pkg/errors"
	"github.com/matzehuels/mindlayout/pkg/scene"
	"github.com/matzehuels/mindlayout/pkg/store"
)

func objs() []*scene.Object {
	return []*scene.Object{
		{ID: "a", Kind: scene.KindText, Opacity: 100, Node: &scene.NodeMeta{}},
		{ID: "b", Kind: scene.KindText, Opacity: 100, Node: &scene.NodeMeta{Order: 1}},
	}
}

func TestMemoryCommit(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(objs())

	got, _ := m.Objects(ctx)
	got[0].X = 999
	if m.Get("a").X != 0 {
		t.Fatal("Objects must return copies")
	}

	err := m.Commit(ctx, []*scene.Object{
		{ID: "a", Kind: scene.KindText, X: 5, Opacity: 100, Node: &scene.NodeMeta{}},
		{ID: "b", Deleted: true},
		{ID: "c", Kind: scene.KindEllipse, Opacity: 100},
	}, scene.CommitImmediately)
	if err != nil {
		t.Fatal(err)
	}

	if m.Get("a").X != 5 {
		t.Errorf("a.X = %v, want 5", m.Get("a").X)
	}
	if m.Get("b") != nil {
		t.Error("b should be removed")
	}
	if m.Get("c") == nil {
		t.Error("c should be added")
	}
	if m.Len() != 2 || m.Commits() != 1 {
		t.Errorf("Len=%d Commits=%d, want 2 and 1", m.Len(), m.Commits())
	}
}

func TestMemorySelection(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(objs())
	if err := m.SetSelection(ctx, []string{"b", "ghost"}); err != nil {
		t.Fatal(err)
	}
	sel, _ := m.Selection(ctx)
	if !slices.Equal(sel, []string{"b"}) {
		t.Errorf("Selection = %v, want [b]", sel)
	}
}

func TestStoreHost(t *testing.T) {
	ctx := context.Background()
	s, err := store.NewFile(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, "demo", objs()); err != nil {
		t.Fatal(err)
	}

	h := NewStoreHost(s, "demo")
	moved := &scene.Object{ID: "a", Kind: scene.KindText, X: 42, Opacity: 100, Node: &scene.NodeMeta{}}

	if err := h.Commit(ctx, []*scene.Object{moved}, scene.CommitEventually); err != nil {
		t.Fatal(err)
	}
	stored, _ := s.Load(ctx, "demo")
	if stored[0].X != 0 {
		t.Error("eventual commit must not be written before Flush")
	}

	if err := h.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	stored, _ = s.Load(ctx, "demo")
	if stored[0].X != 42 {
		t.Errorf("after Flush a.X = %v, want 42", stored[0].X)
	}

	moved.X = 7
	if err := h.Commit(ctx, []*scene.Object{moved}, scene.CommitImmediately); err != nil {
		t.Fatal(err)
	}
	stored, _ = s.Load(ctx, "demo")
	if stored[0].X != 7 {
		t.Errorf("immediate commit: a.X = %v, want 7", stored[0].X)
	}
}

func TestStoreHostMissingScene(t *testing.T) {
	s, err := store.NewFile(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_, err = NewStoreHost(s, "nope").Objects(context.Background())
	if !errors.Is(err, errors.ErrCodeSceneNotFound) {
		t.Errorf("error = %v, want SCENE_NOT_FOUND", err)
	}
}
