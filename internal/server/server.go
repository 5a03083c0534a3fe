// Package server exposes idea evaluation over HTTP: a small HTML form for
// people and a JSON endpoint for scripts.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/chriscorrea/ideascore/internal/analysis"
	"github.com/chriscorrea/ideascore/internal/app"
	"github.com/chriscorrea/ideascore/internal/report"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 5 * time.Second
)

// Analyzer evaluates one idea. *app.App satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, query analysis.Query) (app.Outcome, error)
}

// Options configures a Server.
type Options struct {
	Bind       string
	ReportPath string  // when set, every page result is also saved here as CSV
	Language   string  // form placeholder and default
	WarnBelow  float64 // scores below this are flagged as highly similar
}

// Server serves the web front end and JSON API.
type Server struct {
	analyzer Analyzer
	opts     Options
	router   *http.ServeMux
	saveMu   sync.Mutex // serializes report file writes
}

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// AnalyzeRequest is the JSON body accepted by the API.
type AnalyzeRequest struct {
	Idea     string `json:"idea"`
	Language string `json:"language"`
}

// AnalyzeResponse is the JSON body returned by the API.
type AnalyzeResponse struct {
	report.Record
	Language     string `json:"language"`
	Repositories int    `json:"repositories"`
	GenericIdea  bool   `json:"generic_idea"`
}

// New creates a server backed by analyzer.
func New(analyzer Analyzer, opts Options) *Server {
	s := &Server{
		analyzer: analyzer,
		opts:     opts,
		router:   http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("GET /{$}", s.handleForm)
	s.router.HandleFunc("POST /{$}", s.handleSubmit)
	s.router.HandleFunc("POST /api/v1/analyze", s.handleAnalyze)
	s.router.HandleFunc("GET /healthz", s.handleHealth)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Bind,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting web server", "bind", s.opts.Bind)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve %s: %w", s.opts.Bind, err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, http.StatusOK, pageData{Language: s.opts.Language, Placeholder: s.opts.Language})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		s.renderPage(w, http.StatusBadRequest, pageData{Placeholder: s.opts.Language, Error: "Could not read the submitted form."})
		return
	}

	data := pageData{
		Idea:        strings.TrimSpace(r.PostFormValue("idea")),
		Language:    strings.TrimSpace(r.PostFormValue("language")),
		Placeholder: s.opts.Language,
	}

	out, err := s.analyzer.Analyze(r.Context(), analysis.Query{Idea: data.Idea, Language: data.Language})
	if err != nil {
		status := statusFor(err)
		slog.Warn("Evaluation failed", "idea", data.Idea, "status", status, "error", err)
		data.Error = errorMessage(err)
		s.renderPage(w, status, data)
		return
	}

	data.Result = newPageResult(out, s.opts.WarnBelow)
	if s.opts.ReportPath != "" {
		if err := s.saveReport(out.Result); err != nil {
			slog.Warn("Failed to save report", "path", s.opts.ReportPath, "error", err)
		}
	}
	s.renderPage(w, http.StatusOK, data)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON"})
		return
	}

	out, err := s.analyzer.Analyze(r.Context(), analysis.Query{Idea: req.Idea, Language: req.Language})
	if err != nil {
		status := statusFor(err)
		slog.Warn("Evaluation failed", "idea", req.Idea, "status", status, "error", err)
		jsonResponse(w, status, ErrorResponse{Error: errorMessage(err)})
		return
	}

	jsonResponse(w, http.StatusOK, AnalyzeResponse{
		Record:       report.NewRecord(out.Result),
		Language:     out.Language,
		Repositories: out.Corpus,
		GenericIdea:  out.Generic,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) saveReport(r analysis.Result) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	return report.SaveFile(s.opts.ReportPath, r, report.CSV)
}

// statusFor maps evaluation errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, app.ErrEmptyIdea):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrSearch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorMessage(err error) string {
	if errors.Is(err, app.ErrEmptyIdea) {
		return "Please describe your project idea."
	}
	return err.Error()
}

func jsonResponse(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
