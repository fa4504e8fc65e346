package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/mindlayout/pkg/engine"
	"github.com/matzehuels/mindlayout/pkg/host"
	"github.com/matzehuels/mindlayout/pkg/observability"
	"github.com/matzehuels/mindlayout/pkg/pipeline"
)

// session is the live state of one scene.
type session struct {
	host   *host.StoreHost
	engine *engine.Engine
}

// Server serves scenes over HTTP.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// NewServer returns a server backed by runner.
// If logger is nil, the runner's logger is used.
func NewServer(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = runner.Logger
	}
	return &Server{runner: runner, logger: logger, sessions: make(map[string]*session)}
}

// session returns the live session of a scene, creating it on first use.
func (s *Server) session(name string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	ss, ok := s.sessions[name]
	if !ok {
		h := s.runner.Host(name)
		ss = &session{host: h, engine: s.runner.Engine(h)}
		s.sessions[name] = ss
	}
	return ss
}

// drop forgets the session of a scene so the next request reloads it.
func (s *Server) drop(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, name)
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Route("/scenes", func(r chi.Router) {
		r.Get("/", s.handleListScenes)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.handleGetScene)
			r.Put("/", s.handlePutScene)
			r.Get("/render.{format}", s.handleRender)
			r.Post("/layout", s.handleLayout)
			r.Route("/nodes/{id}", func(r chi.Router) {
				r.Get("/hierarchy", s.handleHierarchy)
				r.Post("/children", s.handleAddChild)
				r.Post("/siblings", s.handleAddSibling)
				r.Post("/{action}", s.handleAction)
			})
		})
	})
	return r
}

// observe reports requests to the HTTP hooks and the debug log.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)
		next.ServeHTTP(ww, r)
		d := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), d)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", d)
	})
}

// NewRouter is shorthand for NewServer(runner, logger).Router().
func NewRouter(runner *pipeline.Runner, logger *log.Logger) http.Handler {
	return NewServer(runner, logger).Router()
}
