package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/mindlayout/pkg/editor"
	"github.com/matzehuels/mindlayout/pkg/engine"
	"github.com/matzehuels/mindlayout/pkg/errors"
	"github.com/matzehuels/mindlayout/pkg/pipeline"
	"github.com/matzehuels/mindlayout/pkg/scene"
	"github.com/matzehuels/mindlayout/pkg/store"
)

// maxBodyBytes bounds uploaded scenes.
const maxBodyBytes = 16 << 20

// LayoutRequest is the body of POST /scenes/{name}/layout.
type LayoutRequest struct {
	RootID           string `json:"root_id,omitempty"`
	ForceUngroup     bool   `json:"force_ungroup,omitempty"`
	HonorManualOrder bool   `json:"honor_manual_order,omitempty"`
}

// LayoutResponse is returned by a layout.
type LayoutResponse struct {
	Reports []engine.Report `json:"reports"`
}

// TextRequest carries the text of a new node.
type TextRequest struct {
	Text string `json:"text"`
}

// NodeResponse names a created node.
type NodeResponse struct {
	ID string `json:"id"`
}

// HierarchyResponse describes where a node sits in its map.
type HierarchyResponse struct {
	Depth    int    `json:"depth"`
	Level1ID string `json:"level1_id,omitempty"`
	RootID   string `json:"root_id"`
}

type errorResponse struct {
	Code  errors.Code `json:"code"`
	Error string      `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps error codes to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if stderrors.Is(err, store.ErrNotFound) {
		code = errors.ErrCodeSceneNotFound
	}
	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeInvariantViolation:
		status = http.StatusConflict
	case errors.ErrCodeNotFound, errors.ErrCodeNodeNotFound, errors.ErrCodeSceneNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidGrowthMode, errors.ErrCodeInvalidFoldMode, errors.ErrCodeInvalidSceneName:
		status = http.StatusBadRequest
	case errors.ErrCodeUnsupported:
		status = http.StatusNotImplemented
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
		if code == "" {
			code = errors.ErrCodeInternal
		}
	}
	writeJSON(w, status, errorResponse{Code: code, Error: errors.UserMessage(err)})
}

func decode(r *http.Request, v any) error {
	if r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes)).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

// sceneName reads and validates the {name} parameter.
func sceneName(r *http.Request) (string, error) {
	name := chi.URLParam(r, "name")
	return name, errors.ValidateSceneName(name)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListScenes(w http.ResponseWriter, r *http.Request) {
	names, err := s.runner.Store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"scenes": names})
}

func (s *Server) handleGetScene(w http.ResponseWriter, r *http.Request) {
	name, err := sceneName(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	objs, err := s.session(name).host.Objects(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scene.Document{Version: scene.DocumentVersion, Objects: objs})
}

func (s *Server) handlePutScene(w http.ResponseWriter, r *http.Request) {
	name, err := sceneName(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var doc scene.Document
	if err := decode(r, &doc); err != nil {
		s.writeError(w, err)
		return
	}
	if doc.Version > scene.DocumentVersion {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "unsupported document version %d", doc.Version))
		return
	}
	if err := s.runner.Store.Save(r.Context(), name, doc.Objects); err != nil {
		s.writeError(w, err)
		return
	}
	s.drop(name)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	name, err := sceneName(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.session(name).host.Flush(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	opts := pipeline.RenderOptions{
		Format:   chi.URLParam(r, "format"),
		Graphviz: r.URL.Query().Get("engine") == "neato",
	}
	data, hit, err := s.runner.Render(r.Context(), name, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType(opts.Format))
	if hit {
		w.Header().Set("X-Cache", "HIT")
	}
	_, _ = w.Write(data)
}

func contentType(format string) string {
	switch format {
	case "svg":
		return "image/svg+xml"
	case "png":
		return "image/png"
	case "pdf":
		return "application/pdf"
	default:
		return "text/vnd.graphviz"
	}
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	name, err := sceneName(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req LayoutRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	ss := s.session(name)
	ctx := r.Context()

	targets := []string{req.RootID}
	if req.RootID == "" {
		if targets, err = ss.engine.Roots(ctx); err != nil {
			s.writeError(w, err)
			return
		}
	}
	resp := LayoutResponse{Reports: []engine.Report{}}
	opts := engine.LayoutOptions{ForceUngroup: req.ForceUngroup, HonorManualOrder: req.HonorManualOrder}
	for _, id := range targets {
		rep, err := ss.engine.Layout(ctx, id, opts)
		if err != nil {
			s.writeError(w, err)
			return
		}
		resp.Reports = append(resp.Reports, rep)
	}
	if err := ss.host.Flush(ctx); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHierarchy(w http.ResponseWriter, r *http.Request) {
	name, err := sceneName(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	info, err := s.session(name).engine.GetHierarchy(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, HierarchyResponse{Depth: info.Depth, Level1ID: info.Level1ID, RootID: info.RootID})
}

func (s *Server) handleAddChild(w http.ResponseWriter, r *http.Request) {
	s.create(w, r, (*engine.Engine).AddChild)
}

func (s *Server) handleAddSibling(w http.ResponseWriter, r *http.Request) {
	s.create(w, r, (*engine.Engine).AddSibling)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request, fn func(*engine.Engine, context.Context, string, string) (string, error)) {
	name, err := sceneName(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req TextRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	ss := s.session(name)
	id, err := fn(ss.engine, r.Context(), chi.URLParam(r, "id"), req.Text)
	if err == nil {
		err = ss.host.Flush(r.Context())
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, NodeResponse{ID: id})
}

// actions maps action names to engine operations.
var actions = map[string]func(*engine.Engine, context.Context, string) error{
	"fold":          func(e *engine.Engine, ctx context.Context, id string) error { return e.ToggleFold(ctx, id, editor.FoldSelf) },
	"fold-children": func(e *engine.Engine, ctx context.Context, id string) error { return e.ToggleFold(ctx, id, editor.FoldChildren) },
	"fold-all":      func(e *engine.Engine, ctx context.Context, id string) error { return e.ToggleFold(ctx, id, editor.FoldAll) },
	"boundary":      (*engine.Engine).ToggleBoundary,
	"group":         (*engine.Engine).ToggleBranchGroup,
	"pin":           (*engine.Engine).TogglePin,
	"up":            func(e *engine.Engine, ctx context.Context, id string) error { return e.ChangeNodeOrder(ctx, id, editor.Up) },
	"down":          func(e *engine.Engine, ctx context.Context, id string) error { return e.ChangeNodeOrder(ctx, id, editor.Down) },
	"promote":       (*engine.Engine).Promote,
	"demote":        (*engine.Engine).Demote,
	"swap":          (*engine.Engine).SwapSide,
	"delete":        (*engine.Engine).Delete,
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	name, err := sceneName(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	action := chi.URLParam(r, "action")
	fn, ok := actions[action]
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "unknown action %q", action))
		return
	}
	ss := s.session(name)
	err = fn(ss.engine, r.Context(), chi.URLParam(r, "id"))
	if err == nil {
		err = ss.host.Flush(r.Context())
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
