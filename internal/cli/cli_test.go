package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/matzehuels/mindlayout/pkg/config"
	"github.com/matzehuels/mindlayout/pkg/pipeline"
	"github.com/matzehuels/mindlayout/pkg/scene"
	"github.com/matzehuels/mindlayout/pkg/scene/scenetest"
	"github.com/matzehuels/mindlayout/pkg/store"
	"github.com/matzehuels/mindlayout/pkg/textmetrics"
)

// isolate points every XDG directory at a temp dir so tests never read or
// write the user's real configuration.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("MINDLAYOUT_STORE", "")
	return dir
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	c := New(io.Discard, LogInfo)
	defer c.Close()
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func loadScene(t *testing.T, dir, name string) map[string]*scene.Object {
	t.Helper()
	st, err := store.NewFile(dir)
	if err != nil {
		t.Fatal(err)
	}
	objs, err := st.Load(context.Background(), name)
	if err != nil {
		t.Fatalf("load %s: %v", name, err)
	}
	byID := make(map[string]*scene.Object, len(objs))
	for _, o := range objs {
		byID[o.ID] = o
	}
	return byID
}

func nodesByText(objs map[string]*scene.Object) map[string]*scene.Object {
	out := make(map[string]*scene.Object)
	for _, o := range objs {
		if o.IsNode() {
			out[o.Text] = o
		}
	}
	return out
}

func TestCommandsEndToEnd(t *testing.T) {
	dir := filepath.Join(isolate(t), "scenes")

	if err := run(t, "new", "ideas", "Ideas", "--mode", "right", "--store", dir, "--no-cache"); err != nil {
		t.Fatalf("new: %v", err)
	}
	for _, text := range []string{"first", "second"} {
		if err := run(t, "add", "ideas", "Ideas", text, "--store", dir, "--no-cache"); err != nil {
			t.Fatalf("add %s: %v", text, err)
		}
	}
	if err := run(t, "add", "ideas", "first", "detail", "--store", dir, "--no-cache"); err != nil {
		t.Fatalf("add detail: %v", err)
	}

	nodes := nodesByText(loadScene(t, dir, "ideas"))
	if len(nodes) != 4 {
		t.Fatalf("got %d nodes, want 4", len(nodes))
	}
	root, first := nodes["Ideas"], nodes["first"]
	if root.Root == nil || root.Root.GrowthMode != scene.GrowthRight {
		t.Errorf("root config = %v, want growth mode right", root.Root)
	}
	if first.X <= root.X+root.Width {
		t.Errorf("first at x=%.1f should grow right of the root", first.X)
	}

	if err := run(t, "fold", "ideas", "first", "--store", dir, "--no-cache"); err != nil {
		t.Fatalf("fold: %v", err)
	}
	nodes = nodesByText(loadScene(t, dir, "ideas"))
	if !nodes["first"].Node.Folded {
		t.Error("first should be folded")
	}
	if nodes["detail"].Hidden == nil {
		t.Error("detail should be hidden under a folded parent")
	}

	// Promoting a level-1 node is rejected without failing the command.
	if err := run(t, "promote", "ideas", "second", "--store", dir, "--no-cache"); err != nil {
		t.Fatalf("rejected edit should not fail the command: %v", err)
	}

	if err := run(t, "fold", "ideas", "nope", "--store", dir, "--no-cache"); err == nil {
		t.Error("unknown node should fail")
	}
	if err := run(t, "new", "ideas", "Again", "--store", dir, "--no-cache"); err == nil {
		t.Error("new should refuse to replace an existing scene")
	}
}

func TestRenderCommandWritesSVG(t *testing.T) {
	base := isolate(t)
	dir := filepath.Join(base, "scenes")
	if err := run(t, "new", "ideas", "Ideas", "--store", dir, "--no-cache"); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(base, "out.svg")
	if err := run(t, "render", "ideas", "-o", out, "--store", dir, "--no-cache"); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Ideas") {
		t.Error("rendered SVG should contain the root text")
	}
}

func TestImportExport(t *testing.T) {
	base := isolate(t)
	dir := filepath.Join(base, "scenes")
	src := filepath.Join(base, "in.json")
	objs := scenetest.New().
		Root("root", 0, 0, nil).
		Child("root", "a", 0).
		Objects()
	if err := scene.WriteFile(src, objs); err != nil {
		t.Fatal(err)
	}

	if err := run(t, "import", "demo", src, "--layout", "--store", dir, "--no-cache"); err != nil {
		t.Fatalf("import: %v", err)
	}
	dst := filepath.Join(base, "out.json")
	if err := run(t, "export", "demo", "-o", dst, "--store", dir, "--no-cache"); err != nil {
		t.Fatalf("export: %v", err)
	}
	got, err := scene.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(objs) {
		t.Errorf("exported %d objects, want %d", len(got), len(objs))
	}
}

func TestLoadSettingsPrecedence(t *testing.T) {
	base := isolate(t)
	t.Chdir(base)

	project := "store = \"/from/project\"\n\n[layout]\nsibling_gap = 42.0\n\n[serve]\naddr = \":9000\"\n"
	if err := os.WriteFile(projectConfigFile, []byte(project), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSettings(viper.New())
	if err != nil {
		t.Fatalf("LoadSettings() error: %v", err)
	}
	if s.Store != "/from/project" {
		t.Errorf("Store = %q, want project value", s.Store)
	}
	if s.Layout.SiblingGap != 42 {
		t.Errorf("SiblingGap = %v, want 42", s.Layout.SiblingGap)
	}
	def := config.Default()
	if s.Layout.HorizontalGap != def.HorizontalGap {
		t.Errorf("HorizontalGap = %v, want default %v", s.Layout.HorizontalGap, def.HorizontalGap)
	}
	if len(s.Layout.FontSizes) != len(def.FontSizes) {
		t.Errorf("FontSizes = %v, want defaults", s.Layout.FontSizes)
	}
	if s.Serve.Addr != ":9000" {
		t.Errorf("Serve.Addr = %q, want :9000", s.Serve.Addr)
	}

	t.Setenv("MINDLAYOUT_STORE", "/from/env")
	s, err = LoadSettings(viper.New())
	if err != nil {
		t.Fatal(err)
	}
	if s.Store != "/from/env" {
		t.Errorf("Store = %q, environment should override files", s.Store)
	}
}

func TestLoadSettingsExplicitFileMustExist(t *testing.T) {
	isolate(t)
	v := viper.New()
	v.Set("config", filepath.Join(t.TempDir(), "missing.toml"))
	if _, err := LoadSettings(v); err == nil {
		t.Error("missing explicit config file should fail")
	}
}

func TestWriteSettingsRoundTrip(t *testing.T) {
	base := isolate(t)
	path := filepath.Join(base, "config.toml")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := writeSettings(f, DefaultSettings()); err != nil {
		t.Fatal(err)
	}
	f.Close()

	data, _ := os.ReadFile(path)
	for _, want := range []string{"[layout]", "sibling_gap", "[serve]"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("written config missing %q", want)
		}
	}

	v := viper.New()
	v.Set("config", path)
	s, err := LoadSettings(v)
	if err != nil {
		t.Fatalf("LoadSettings() on written file: %v", err)
	}
	if s.Layout.SiblingGap != config.Default().SiblingGap {
		t.Errorf("SiblingGap = %v after round trip", s.Layout.SiblingGap)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{"svg"}},
		{"svg", []string{"svg"}},
		{"svg,pdf,png", []string{"svg", "pdf", "png"}},
	}
	for _, tt := range tests {
		got := parseFormats(tt.input)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, name, want string
	}{
		{"", "ideas", "ideas"},
		{"out.svg", "ideas", "out"},
		{"out/map.pdf", "ideas", "out/map"},
		{"map.v2", "ideas", "map.v2"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.name); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.name, got, tt.want)
		}
	}
}

// newTestShell stores a small map and opens a shell on it.
func newTestShell(t *testing.T) (*shell, *strings.Builder) {
	t.Helper()
	st, err := store.NewFile(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	objs := scenetest.New().
		Root("root", 0, 0, &scene.RootConfig{GrowthMode: scene.GrowthRight}).
		Child("root", "a", 0).
		Child("root", "b", 1).
		Child("a", "a1", 0).
		Objects()
	if err := st.Save(context.Background(), "demo", objs); err != nil {
		t.Fatal(err)
	}
	r := pipeline.NewRunner(st, nil, nil, nil)
	r.Measurer = textmetrics.Fixed{}
	t.Cleanup(func() { r.Close() })

	var out strings.Builder
	return newShell(r, "demo", &out), &out
}
