package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/painelbot/atendente/internal/logging"
	"github.com/painelbot/atendente/internal/presentation/graph"
	"github.com/painelbot/atendente/pkg/domain"
	"github.com/painelbot/atendente/pkg/editor"
	"github.com/painelbot/atendente/pkg/flowgraph"
	"github.com/painelbot/atendente/pkg/observability"
)

// LoginPath is where clients are sent when the backend rejects the session.
const LoginPath = "/login"

// Dashboard is the part of atendente.Dashboard the server needs.
type Dashboard interface {
	Refresh(ctx context.Context) (*flowgraph.Graph, error)
	Graph() *flowgraph.Graph
	ExpandAll() bool
	SetExpandAll(expand bool) (*flowgraph.Graph, error)
	Step(id domain.StepID) (domain.Step, error)
	Edit(id domain.StepID) (*editor.Editor, error)
	Save(ctx context.Context, ed *editor.Editor) (*flowgraph.Graph, error)
}

// Server serves the flow graph and the step edit contract as JSON.
type Server struct {
	Dashboard Dashboard
	Version   string
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithMetrics exposes m on GET /metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithVersion sets the version reported by GET /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.Version = v
	}
}

// NewHandler creates the HTTP handler for dash.
func NewHandler(dash Dashboard, opts ...Option) http.Handler {
	s := &Server{Dashboard: dash, Version: "dev", logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.Health)
	r.Get("/info", s.Info)
	r.Get("/graph", s.GetGraph)
	r.Get("/graph.mmd", s.GetMermaid)
	r.Get("/steps/{id}", s.GetStep)
	r.Put("/steps/{id}", s.PutStep)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed", time.Since(start),
		)
	})
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Info handles GET /info.
func (s *Server) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"app": "atendente-http", "version": s.Version})
}

// GetGraph handles GET /graph. ?expand_all= switches the expansion mode, ?refresh=true reloads the steps.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	g, err := s.currentGraph(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// GetMermaid handles GET /graph.mmd. ?selected= highlights one step.
func (s *Server) GetMermaid(w http.ResponseWriter, r *http.Request) {
	g, err := s.currentGraph(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	overlay := &graph.GraphOverlay{
		Selected: domain.StepID(r.URL.Query().Get("selected")),
		Dangling: graph.DanglingSteps(g),
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(graph.GenerateMermaid(g, overlay)))
}

func (s *Server) currentGraph(r *http.Request) (*flowgraph.Graph, error) {
	q := r.URL.Query()
	if q.Get("refresh") == "true" || s.Dashboard.Graph() == nil {
		if _, err := s.Dashboard.Refresh(r.Context()); err != nil {
			return nil, err
		}
	}
	if v := q.Get("expand_all"); v != "" {
		expand, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errBadRequest("expand_all must be true or false")
		}
		if expand != s.Dashboard.ExpandAll() {
			return s.Dashboard.SetExpandAll(expand)
		}
	}
	return s.Dashboard.Graph(), nil
}

// GetStep handles GET /steps/{id}.
func (s *Server) GetStep(w http.ResponseWriter, r *http.Request) {
	if s.Dashboard.Graph() == nil {
		if _, err := s.Dashboard.Refresh(r.Context()); err != nil {
			s.writeError(w, err)
			return
		}
	}
	step, err := s.Dashboard.Step(domain.StepID(chi.URLParam(r, "id")))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStepView(step))
}

// PutStep handles PUT /steps/{id}: it replaces title, description and options in one save.
func (s *Server) PutStep(w http.ResponseWriter, r *http.Request) {
	var body StepView
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, errBadRequest("invalid request body"))
		return
	}

	if s.Dashboard.Graph() == nil {
		if _, err := s.Dashboard.Refresh(r.Context()); err != nil {
			s.writeError(w, err)
			return
		}
	}
	ed, err := s.Dashboard.Edit(domain.StepID(chi.URLParam(r, "id")))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := errors.Join(
		ed.SetTitle(body.Title),
		ed.SetDescription(body.Description),
		ed.SetOptions(body.domainOptions()),
	); err != nil {
		s.writeError(w, err)
		return
	}

	g, err := s.Dashboard.Save(r.Context(), ed)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SaveResponse{Step: toStepView(ed.Step()), Graph: g})
}

// -- Helpers --

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type badRequest string

func (b badRequest) Error() string { return string(b) }

func errBadRequest(msg string) error { return badRequest(msg) }

// statusOf maps domain errors to HTTP statuses.
func statusOf(err error) int {
	var apiErr *domain.APIError
	var bad badRequest
	switch {
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrNotAuthenticated),
		errors.Is(err, domain.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.As(err, &bad),
		errors.Is(err, domain.ErrDanglingOption),
		errors.Is(err, domain.ErrDuplicateOption),
		errors.Is(err, domain.ErrOptionNotFound),
		errors.Is(err, domain.ErrEmptyOptionID),
		errors.Is(err, domain.ErrInvalidPhone):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrStepNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSaveInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnavailable), errors.As(err, &apiErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	resp := ErrorResponse{Error: err.Error()}
	if status == http.StatusUnauthorized {
		resp.Redirect = LoginPath
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "status", status, "err", err)
	}
	writeJSON(w, status, resp)
}
