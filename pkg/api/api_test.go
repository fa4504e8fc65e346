package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mindlayout/pkg/observability"
	"github.com/matzehuels/mindlayout/pkg/pipeline"
	"github.com/matzehuels/mindlayout/pkg/scene"
	"github.com/matzehuels/mindlayout/pkg/scene/scenetest"
	"github.com/matzehuels/mindlayout/pkg/store"
	"github.com/matzehuels/mindlayout/pkg/textmetrics"
)

func newTestServer(t *testing.T) (*httptest.Server, store.Store) {
	t.Helper()
	h, st := newTestHandler(t)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv, st
}

func newTestHandler(t *testing.T) (http.Handler, store.Store) {
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

	r := pipeline.NewRunner(st, nil, nil, log.New(io.Discard))
	r.Measurer = textmetrics.Fixed{}
	return NewRouter(r, nil), st
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestHealthAndList(t *testing.T) {
	srv, _ := newTestServer(t)

	if resp := do(t, http.MethodGet, srv.URL+"/healthz", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}

	resp := do(t, http.MethodGet, srv.URL+"/scenes", "")
	var list map[string][]string
	decodeBody(t, resp, &list)
	if got := list["scenes"]; len(got) != 1 || got[0] != "demo" {
		t.Errorf("scenes = %v, want [demo]", got)
	}
}

func TestGetScene(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/scenes/demo", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var doc scene.Document
	decodeBody(t, resp, &doc)
	if doc.Version != scene.DocumentVersion || len(doc.Objects) != 7 {
		t.Errorf("document version=%d objects=%d", doc.Version, len(doc.Objects))
	}

	if resp := do(t, http.MethodGet, srv.URL+"/scenes/missing", ""); resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing scene status = %d, want 404", resp.StatusCode)
	}
	if resp := do(t, http.MethodGet, srv.URL+"/scenes/..bad", ""); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid name status = %d, want 400", resp.StatusCode)
	}
}

func TestLayoutEndpoint(t *testing.T) {
	srv, st := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/scenes/demo/layout", `{"honor_manual_order": true}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out LayoutResponse
	decodeBody(t, resp, &out)
	if len(out.Reports) != 1 || out.Reports[0].RootID != "root" {
		t.Fatalf("reports = %+v", out.Reports)
	}

	// The laid-out scene must be flushed to the store.
	objs, err := st.Load(context.Background(), "demo")
	if err != nil {
		t.Fatal(err)
	}
	var root, a *scene.Object
	for _, o := range objs {
		switch o.ID {
		case "root":
			root = o
		case "a":
			a = o
		}
	}
	if a.X <= root.X+root.Width {
		t.Errorf("child a at x=%.1f should sit right of root (right edge %.1f)", a.X, root.X+root.Width)
	}

	if resp := do(t, http.MethodPost, srv.URL+"/scenes/demo/layout", `{"root_id": "nope"}`); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown root status = %d, want 404", resp.StatusCode)
	}
	if resp := do(t, http.MethodPost, srv.URL+"/scenes/demo/layout", `{`); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", resp.StatusCode)
	}
}

func TestHierarchyEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/scenes/demo/nodes/a1/hierarchy", "")
	var info HierarchyResponse
	decodeBody(t, resp, &info)
	want := HierarchyResponse{Depth: 2, Level1ID: "a", RootID: "root"}
	if info != want {
		t.Errorf("hierarchy = %+v, want %+v", info, want)
	}
}

func TestActions(t *testing.T) {
	srv, st := newTestServer(t)
	base := srv.URL + "/scenes/demo/nodes/"

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"fold", "a/fold", http.StatusNoContent},
		{"unfold", "a/fold", http.StatusNoContent},
		{"pin", "b/pin", http.StatusNoContent},
		{"move down", "a/down", http.StatusNoContent},
		{"promote level-1 rejected", "a/promote", http.StatusConflict},
		{"unknown node", "zzz/fold", http.StatusNotFound},
		{"unknown action", "a/explode", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, base+tt.path, "")
			if resp.StatusCode != tt.status {
				body, _ := io.ReadAll(resp.Body)
				t.Errorf("status = %d, want %d (%s)", resp.StatusCode, tt.status, body)
			}
		})
	}

	objs, _ := st.Load(context.Background(), "demo")
	for _, o := range objs {
		if o.ID == "b" && !o.Node.Pinned {
			t.Error("pin should be persisted")
		}
		if o.ID == "a" && o.Node.Folded {
			t.Error("double fold should leave a unfolded")
		}
	}
}

func TestAddChild(t *testing.T) {
	srv, st := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/scenes/demo/nodes/b/children", `{"text": "new idea"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var created NodeResponse
	decodeBody(t, resp, &created)
	if created.ID == "" {
		t.Fatal("empty id")
	}

	objs, _ := st.Load(context.Background(), "demo")
	found := false
	for _, o := range objs {
		if o.ID == created.ID {
			found = o.Text == "new idea"
		}
	}
	if !found {
		t.Error("created node should be stored with its text")
	}
}

func TestPutSceneResetsSession(t *testing.T) {
	srv, _ := newTestServer(t)

	// Warm the session.
	do(t, http.MethodGet, srv.URL+"/scenes/demo", "")

	doc := `{"version": 1, "objects": []}`
	if resp := do(t, http.MethodPut, srv.URL+"/scenes/demo", doc); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("put status = %d", resp.StatusCode)
	}
	var got scene.Document
	decodeBody(t, do(t, http.MethodGet, srv.URL+"/scenes/demo", ""), &got)
	if len(got.Objects) != 0 {
		t.Errorf("scene should be replaced, got %d objects", len(got.Objects))
	}

	if resp := do(t, http.MethodPut, srv.URL+"/scenes/demo", `{"version": 99}`); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("future version status = %d, want 400", resp.StatusCode)
	}
}

func TestRenderSVG(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/scenes/demo/render.svg", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "<svg") {
		t.Error("body should be an SVG document")
	}

	if resp := do(t, http.MethodGet, srv.URL+"/scenes/demo/render.gif", ""); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown format status = %d, want 400", resp.StatusCode)
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	statuses []int
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.statuses = append(h.statuses, status)
}

func TestHTTPHooks(t *testing.T) {
	rec := &recordingHTTPHooks{}
	observability.SetHTTPHooks(rec)
	defer observability.Reset()

	h, _ := newTestHandler(t)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if len(rec.statuses) != 1 || rec.statuses[0] != http.StatusOK {
		t.Errorf("hook statuses = %v, want [200]", rec.statuses)
	}
}
