// Package server exposes the sizes computation over HTTP so that templates
// outside Go can preview and fetch section-aware sizes attributes.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/respimg/pkg/buildinfo"
	"github.com/matzehuels/respimg/pkg/errors"
	"github.com/matzehuels/respimg/pkg/observability"
	"github.com/matzehuels/respimg/pkg/plugin"
	"github.com/matzehuels/respimg/pkg/section"
)

// Config configures a Server.
type Config struct {
	Addr    string
	Plugin  *plugin.Plugin
	Logger  *log.Logger
	Metrics http.Handler // Mounted at /metrics when set
}

// Server serves section definitions and computes sizes attributes.
type Server struct {
	Addr   string
	router *chi.Mux
	server *http.Server
	plugin *plugin.Plugin
	logger *log.Logger
}

// New creates a server for an already set-up plugin.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		Addr:   cfg.Addr,
		router: chi.NewRouter(),
		plugin: cfg.Plugin,
		logger: logger,
	}
	s.setupRoutes(cfg.Metrics)

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes(metrics http.Handler) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.observe)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/version", s.handleVersion)
	s.router.Get("/sections", s.handleListSections)
	s.router.Get("/sections/{id}", s.handleGetSection)
	s.router.Post("/sizes", s.handleSizes)

	if metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", metrics)
	}
}

// Handler returns the server's router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on Addr and blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("listening", "addr", s.Addr, "sections", s.plugin.Registry().Len())
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// observe reports every request to the HTTP hooks. Responses are labelled
// by route pattern rather than path.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, route, status, time.Since(start))
		s.logger.Debug("request", "method", r.Method, "route", route, "status", status,
			"duration", time.Since(start), "request_id", middleware.GetReqID(r.Context()))
	})
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

// SizesRequest is the body of POST /sizes: an image request evaluated
// inside one section.
type SizesRequest struct {
	Section string `json:"section"`
	Context any    `json:"context,omitempty"`
	plugin.ImageRequest
}

// SizesResponse is the body of a successful POST /sizes.
type SizesResponse struct {
	Sizes   string `json:"sizes"`
	Section string `json:"section"`
	Render  string `json:"render"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: errors.UserMessage(err), Code: errors.GetCode(err)})
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case errors.ErrCodeUnknownSection, errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidSizes:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleListSections(w http.ResponseWriter, _ *http.Request) {
	defs := s.plugin.Registry().Definitions()
	if defs == nil {
		defs = []section.Definition{}
	}
	writeJSON(w, http.StatusOK, defs)
}

func (s *Server) handleGetSection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	def, ok := s.plugin.Registry().Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New(errors.ErrCodeUnknownSection, "section %q does not exist", id))
		return
	}
	writeJSON(w, http.StatusOK, def)
}

func (s *Server) handleSizes(w http.ResponseWriter, r *http.Request) {
	var req SizesRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}

	out, renderID, err := s.computeSizes(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, SizesResponse{Sizes: out, Section: req.Section, Render: renderID})
}

// computeSizes evaluates req in a fresh render so concurrent requests never
// share a section stack.
func (s *Server) computeSizes(ctx context.Context, req SizesRequest) (string, string, error) {
	if err := errors.ValidateSectionID(req.Section); err != nil {
		return "", "", err
	}
	if !s.plugin.Registry().IsRegistered(req.Section) {
		return "", "", errors.New(errors.ErrCodeUnknownSection, "section %q does not exist", req.Section)
	}

	render := s.plugin.NewRender()
	render.Begin(req.Section, req.Context)
	defer render.End(req.Section)

	out, err := render.ComputeSizes(ctx, req.ImageRequest)
	return out, render.ID, err
}
