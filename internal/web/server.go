// Package web serves the browser UI for study guides.
package web

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/anatolykoptev/go_study/internal/engine/guide"
)

// Generation runs transcript fetch plus two LLM calls, so it gets a longer budget.
const (
	requestTimeout  = 60 * time.Second
	generateTimeout = 5 * time.Minute
)

// Server is the HTTP server for the study guide UI.
type Server struct {
	svc      *guide.Service
	sessions *sessions
	tmpl     *template.Template
	server   *http.Server
}

// NewServer creates a server backed by svc.
func NewServer(svc *guide.Service) *Server {
	return &Server{
		svc:      svc,
		sessions: newSessions(),
		tmpl:     parseTemplates(),
	}
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.With(middleware.Timeout(generateTimeout)).Post("/guides", s.handleGenerate)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))

		r.Get("/", s.handleIndex)
		r.Post("/session/reset", s.handleReset)
		r.Get("/healthz", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		r.Route("/guides/{id}", func(r chi.Router) {
			r.Get("/", s.handleGuide)
			r.Post("/quiz", s.handleQuizSubmit)
			r.Post("/quiz/next", s.handleQuizNext)
			r.Post("/quiz/restart", s.handleQuizRestart)
			r.Get("/flashcards/{n}", s.handleFlashcard)
			r.Post("/roadmap", s.handleRoadmap)
			r.Get("/audio.mp3", s.handleAudio)
			r.Get("/flowchart.{format}", s.handleFlowchart)
		})
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("web: listening", slog.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
