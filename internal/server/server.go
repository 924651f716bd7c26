// Package server exposes the HTTP surface: the scheduled publication
// trigger, the approval preview gateway and the approve/reject forms.
package server

import (
	"context"
	"crypto/subtle"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"content_publisher/internal/config"
	"content_publisher/internal/domain"
	"content_publisher/internal/service"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Publisher interface {
	RunScheduledPublication(ctx context.Context, now time.Time) (*domain.PublicationReport, error)
	Resyndicate(ctx context.Context, id uuid.UUID) (*domain.ItemReport, error)
}

type Previewer interface {
	Render(ctx context.Context, token string) (*service.Preview, error)
}

type Workflow interface {
	Approve(ctx context.Context, token string, scheduledFor *time.Time) (*domain.ContentItem, error)
	Reject(ctx context.Context, token, reason string) (*domain.ContentItem, error)
}

type Server struct {
	router    chi.Router
	templates *template.Template
	publisher Publisher
	preview   Previewer
	workflow  Workflow
	config    config.ServerConfig
	logger    *slog.Logger
	now       func() time.Time
	runs      runTracker
}

// runTracker counts publication runs started over HTTP. Once draining, it
// refuses new runs so the final wait cannot race with an Add.
type runTracker struct {
	mu       sync.Mutex
	draining bool
	wg       sync.WaitGroup
}

func (t *runTracker) begin() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.draining {
		return false
	}
	t.wg.Add(1)
	return true
}

func (t *runTracker) done() {
	t.wg.Done()
}

func (t *runTracker) drain() {
	t.mu.Lock()
	t.draining = true
	t.mu.Unlock()
	t.wg.Wait()
}

func New(cfg config.ServerConfig, publisher Publisher, preview Previewer, workflow Workflow, logger *slog.Logger) (*Server, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		templates: tmpl,
		publisher: publisher,
		preview:   preview,
		workflow:  workflow,
		config:    cfg,
		logger:    logger.With("component", "http"),
		now:       func() time.Time { return time.Now().UTC() },
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/preview/{token}", s.handlePreview)
	r.Get("/approve/{token}", s.handleApproveForm)
	r.Post("/approve/{token}", s.handleApprove)
	r.Get("/reject/{token}", s.handleRejectForm)
	r.Post("/reject/{token}", s.handleReject)

	r.Route("/api/cron", func(r chi.Router) {
		r.Use(s.requireCronSecret)
		r.Get("/publish-scheduled", s.handlePublishScheduled)
		r.Post("/publish-scheduled", s.handlePublishScheduled)
		r.Post("/resyndicate/{id}", s.handleResyndicate)
	})

	s.router = r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then drains in-flight requests.
// It returns only after every publication run started over HTTP finished,
// even past the shutdown timeout, since a run may hold claimed items.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("http server shutting down")
	err := srv.Shutdown(shutdownCtx)
	if err != nil {
		s.logger.Warn("http shutdown timed out, waiting for publication runs", "error", err)
	}
	s.runs.drain()
	return err
}

// --- Middleware ---

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", redactToken(r.URL.Path),
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}

// requireCronSecret rejects the request before any handler runs unless it
// carries the configured bearer secret. An empty secret rejects everything.
func (s *Server) requireCronSecret(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || s.config.CronSecret == "" ||
			subtle.ConstantTimeCompare([]byte(token), []byte(s.config.CronSecret)) != 1 {
			s.logger.Warn("rejected scheduled trigger", "remote_addr", r.RemoteAddr)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": domain.ErrUnauthorized.Error()})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// redactToken keeps approval tokens out of the access log.
func redactToken(path string) string {
	for _, prefix := range []string{"/preview/", "/approve/", "/reject/"} {
		if strings.HasPrefix(path, prefix) {
			return prefix + "{token}"
		}
	}
	return path
}

// --- Scheduled trigger ---

func (s *Server) handlePublishScheduled(w http.ResponseWriter, r *http.Request) {
	if !s.runs.begin() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "server is shutting down"})
		return
	}
	defer s.runs.done()

	// A caller hanging up must not defer items; the run deadline still applies.
	report, err := s.publisher.RunScheduledPublication(context.WithoutCancel(r.Context()), s.now())
	if err != nil {
		s.logger.Error("scheduled publication failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "publication run failed"})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleResyndicate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid content id"})
		return
	}

	if !s.runs.begin() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "server is shutting down"})
		return
	}
	defer s.runs.done()

	report, err := s.publisher.Resyndicate(context.WithoutCancel(r.Context()), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, report)
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "content not found"})
	case errors.Is(err, domain.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrClaimConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "resyndication already in progress"})
	default:
		s.logger.Error("resyndication failed", "content_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "resyndication failed"})
	}
}

// --- Approval pages ---

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	preview, err := s.preview.Render(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		s.renderTokenError(w, err)
		return
	}
	s.render(w, http.StatusOK, "preview.html", preview)
}

type confirmPage struct {
	Title   string
	Heading string
	Action  string
	Reject  bool
}

type donePage struct {
	Heading string
	Message string
}

func (s *Server) handleApproveForm(w http.ResponseWriter, r *http.Request) {
	s.confirmForm(w, r, "Approve", "/approve/", false)
}

func (s *Server) handleRejectForm(w http.ResponseWriter, r *http.Request) {
	s.confirmForm(w, r, "Reject", "/reject/", true)
}

// confirmForm only reads, so mail scanners following the link change nothing.
func (s *Server) confirmForm(w http.ResponseWriter, r *http.Request, heading, prefix string, reject bool) {
	token := chi.URLParam(r, "token")
	preview, err := s.preview.Render(r.Context(), token)
	if err != nil {
		s.renderTokenError(w, err)
		return
	}
	s.render(w, http.StatusOK, "confirm.html", confirmPage{
		Title:   preview.Title,
		Heading: heading,
		Action:  prefix + token,
		Reject:  reject,
	})
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	var scheduledFor *time.Time
	if raw := strings.TrimSpace(r.PostForm.Get("scheduled_for")); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, "scheduled_for must be an RFC 3339 timestamp", http.StatusBadRequest)
			return
		}
		scheduledFor = &t
	}

	item, err := s.workflow.Approve(r.Context(), chi.URLParam(r, "token"), scheduledFor)
	if err != nil {
		s.renderTokenError(w, err)
		return
	}
	s.render(w, http.StatusOK, "done.html", donePage{
		Heading: "Approved",
		Message: fmt.Sprintf("%q is scheduled for publication at %s.", item.Title, item.ScheduledFor.Format(time.RFC1123)),
	})
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	item, err := s.workflow.Reject(r.Context(), chi.URLParam(r, "token"), r.PostForm.Get("reason"))
	if err != nil {
		s.renderTokenError(w, err)
		return
	}
	s.render(w, http.StatusOK, "done.html", donePage{
		Heading: "Rejected",
		Message: fmt.Sprintf("%q was sent back to its author.", item.Title),
	})
}

// renderTokenError maps lookup failures to pages that never expose internals.
func (s *Server) renderTokenError(w http.ResponseWriter, err error) {
	var processed *domain.AlreadyProcessedError
	switch {
	case errors.As(err, &processed):
		s.render(w, http.StatusBadRequest, "processed.html", processed)
	case errors.Is(err, domain.ErrNotFound):
		s.render(w, http.StatusNotFound, "not_found.html", nil)
	default:
		s.logger.Error("approval page failed", "error", err)
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
	}
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf strings.Builder
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("template error", "template", name, "error", err)
		http.Error(w, "Render error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(buf.String()))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
