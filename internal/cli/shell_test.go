package cli

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	mlerrors "github.com/matzehuels/mindlayout/pkg/errors"
	"github.com/matzehuels/mindlayout/pkg/scene"
	"github.com/matzehuels/mindlayout/pkg/scene/scenetest"
)

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"", nil},
		{"tree", []string{"tree"}},
		{"add  root   idea", []string{"add", "root", "idea"}},
		{`add root "a longer idea"`, []string{"add", "root", "a longer idea"}},
		{`text "Big Root" ""`, []string{"text", "Big Root", ""}},
	}
	for _, tt := range tests {
		if got := splitArgs(tt.line); !slices.Equal(got, tt.want) {
			t.Errorf("splitArgs(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestShellExec(t *testing.T) {
	ctx := context.Background()
	sh, out := newTestShell(t)

	if err := sh.exec(ctx, `add a "new idea"`); err != nil {
		t.Fatalf("add: %v", err)
	}
	created := strings.TrimSpace(out.String())
	if created == "" {
		t.Fatal("add should print the new node ID")
	}

	if err := sh.exec(ctx, "fold a"); err != nil {
		t.Fatalf("fold: %v", err)
	}
	objs, err := sh.runner.Store.Load(ctx, "demo")
	if err != nil {
		t.Fatal(err)
	}
	for _, o := range objs {
		if o.ID == "a" && !o.Node.Folded {
			t.Error("fold should be saved to the store")
		}
		if o.ID == created && o.Hidden == nil {
			t.Error("new child of a folded node should be hidden")
		}
	}

	out.Reset()
	if err := sh.exec(ctx, "tree"); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out.String(), "a1") {
		t.Error("tree should not list children of folded nodes")
	}
	out.Reset()
	if err := sh.exec(ctx, "tree all"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "a1") {
		t.Error("tree all should list children of folded nodes")
	}
}

func TestShellErrors(t *testing.T) {
	ctx := context.Background()
	sh, _ := newTestShell(t)

	tests := []struct {
		line string
		code mlerrors.Code
	}{
		{"bogus", mlerrors.ErrCodeInvalidInput},
		{"add", mlerrors.ErrCodeInvalidInput},
		{"add a", mlerrors.ErrCodeInvalidInput},
		{"fold nope", mlerrors.ErrCodeNodeNotFound},
		{"promote a", mlerrors.ErrCodeInvariantViolation},
		{"fold a sideways", mlerrors.ErrCodeInvalidFoldMode},
	}
	for _, tt := range tests {
		err := sh.exec(ctx, tt.line)
		if !mlerrors.Is(err, tt.code) {
			t.Errorf("exec(%q) = %v, want code %s", tt.line, err, tt.code)
		}
	}

	if err := sh.exec(ctx, "exit"); !errors.Is(err, errQuit) {
		t.Errorf("exit = %v, want errQuit", err)
	}
	if err := sh.exec(ctx, "   "); err != nil {
		t.Errorf("blank line = %v, want nil", err)
	}
}

func TestFlattenTree(t *testing.T) {
	objs := scenetest.New().
		Root("root", 0, 0, nil).
		Child("root", "a", 0).
		Child("root", "b", 1).
		Child("a", "a1", 0).
		Objects()

	rows := flattenTree(objs, false)
	var got []string
	for _, r := range rows {
		got = append(got, r.Prefix+r.ID)
	}
	want := []string{"root", "├── a", "│   └── a1", "└── b"}
	if !slices.Equal(got, want) {
		t.Errorf("flattenTree() = %q, want %q", got, want)
	}

	folded := scenetest.New().
		Root("root", 0, 0, nil).
		Child("root", "a", 0).
		Child("a", "a1", 0).
		Edit("a", func(o *scene.Object) { o.Node.Folded = true }).
		Objects()
	rows = flattenTree(folded, false)
	if len(rows) != 2 || !rows[1].Folded || rows[1].Children != 1 {
		t.Errorf("folded outline = %+v", rows)
	}
	if rows = flattenTree(folded, true); len(rows) != 3 {
		t.Errorf("showFolded outline has %d rows, want 3", len(rows))
	}
}

func TestResolveNode(t *testing.T) {
	objs := scenetest.New().
		Root("root", 0, 0, nil).
		Child("root", "alpha-1", 0).
		Child("root", "alpha-2", 1).
		Edit("alpha-2", func(o *scene.Object) { o.Text = "Budget" }).
		Objects()

	tests := []struct {
		ref     string
		want    string
		wantErr bool
	}{
		{"root", "root", false},
		{"alpha-1", "alpha-1", false},
		{"alpha", "", true},
		{"budget", "alpha-2", false},
		{"missing", "", true},
	}
	for _, tt := range tests {
		got, err := resolveNode(objs, tt.ref)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("resolveNode(%q) = %q, %v; want %q, err=%v", tt.ref, got, err, tt.want, tt.wantErr)
		}
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBrowseModel(t *testing.T) {
	ctx := context.Background()
	sh, _ := newTestShell(t)

	m, err := newBrowseModel(ctx, sh)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.rows) != 4 {
		t.Fatalf("outline has %d rows, want 4", len(m.rows))
	}

	var model tea.Model = m
	for _, k := range []string{"down", "enter", "p"} {
		model, _ = model.Update(key(k))
	}
	bm := model.(browseModel)
	if bm.selected() != "a" {
		t.Errorf("cursor on %q, want a", bm.selected())
	}
	if len(bm.rows) != 3 {
		t.Errorf("outline has %d rows after folding a, want 3", len(bm.rows))
	}
	if bm.failed {
		t.Errorf("unexpected failure status %q", bm.status)
	}

	objs, _ := sh.runner.Store.Load(ctx, "demo")
	for _, o := range objs {
		if o.ID == "a" && (!o.Node.Folded || !o.Node.Pinned) {
			t.Errorf("a should be folded and pinned, got %+v", o.Node)
		}
	}

	// A rejected edit shows a status line instead of failing.
	model, _ = model.Update(key("h"))
	bm = model.(browseModel)
	if !bm.failed || bm.status == "" {
		t.Error("promoting a level-1 node should report a rejection")
	}
	if !strings.Contains(bm.View(), "demo") {
		t.Error("view should show the scene name")
	}

	if _, cmd := model.Update(key("q")); cmd == nil {
		t.Error("q should quit")
	}
}
