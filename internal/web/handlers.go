package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/anatolykoptev/go_study/internal/engine"
	"github.com/anatolykoptev/go_study/internal/engine/guide"
	"github.com/anatolykoptev/go_study/internal/engine/sources"
	"github.com/anatolykoptev/go_study/internal/toolutil"
)

const historyLimit = 10

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderIndex(w, r, http.StatusOK, indexView{})
}

func (s *Server) renderIndex(w http.ResponseWriter, r *http.Request, status int, view indexView) {
	sid := s.sessions.id(w, r)
	var history []string
	s.sessions.with(sid, func(sess *session) {
		history = append(history, sess.history...)
	})
	ctx := r.Context()
	for _, id := range history {
		if len(view.History) == historyLimit {
			break
		}
		g, err := s.svc.Get(ctx, id)
		if err != nil {
			continue
		}
		view.History = append(view.History, engine.StudyGuideSummary{
			ID: g.ID, Title: g.Title, VideoURL: g.VideoURL, Topic: g.Topic, CreatedAt: g.CreatedAt,
		})
	}
	recent, err := s.svc.List(ctx, historyLimit)
	if err != nil {
		slog.Warn("web: list guides failed", slog.Any("error", err))
	}
	view.Recent = recent
	s.render(w, status, "index.html", view)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	rawURL := strings.TrimSpace(r.FormValue("url"))
	if !sources.IsYouTubeURL(rawURL) && sources.ExtractVideoID(rawURL) == "" {
		s.renderIndex(w, r, http.StatusBadRequest, indexView{URL: rawURL, Error: "Please enter a valid YouTube URL."})
		return
	}
	g, err := s.svc.Generate(r.Context(), rawURL)
	if err != nil {
		slog.Error("web: generate failed", slog.String("url", rawURL), slog.Any("error", err))
		status, msg := errorStatus(err)
		s.renderIndex(w, r, status, indexView{URL: rawURL, Error: msg})
		return
	}
	sid := s.sessions.id(w, r)
	s.sessions.with(sid, func(sess *session) { sess.visit(g.ID) })
	http.Redirect(w, r, "/guides/"+g.ID, http.StatusSeeOther)
}

func (s *Server) handleGuide(w http.ResponseWriter, r *http.Request) {
	g, ok := s.loadGuide(w, r)
	if !ok {
		return
	}
	view := guideView{Guide: g, Levels: guide.Levels}
	sid := s.sessions.id(w, r)
	s.sessions.with(sid, func(sess *session) {
		sess.visit(g.ID)
		view.Quiz = buildQuiz(g, *sess.quizFor(g.ID))
		if v, err := guide.FlashcardAt(g, sess.cardsFor(g.ID).Index); err == nil {
			view.Flashcard = &v
		}
	})
	for _, lvl := range guide.Levels {
		if recs := g.Recommendations[lvl]; len(recs) > 0 {
			view.Roadmap = append(view.Roadmap, roadmapLevel{Level: lvl, Recs: recs})
		}
	}
	s.render(w, http.StatusOK, "guide.html", view)
}

// buildQuiz grades the submitted answer, if any, for display.
func buildQuiz(g *engine.StudyGuide, p QuizProgress) quizView {
	v := quizView{Progress: p, Total: len(g.Quiz), Chosen: -1}
	if p.Index >= len(g.Quiz) {
		v.Done = true
		return v
	}
	v.Item = g.Quiz[p.Index]
	if p.Submitted {
		v.Chosen = guide.ParseChoice(v.Item.Options, p.Answer)
		if res, err := guide.Grade(v.Item, v.Chosen); err == nil {
			v.Result = &res
		}
	}
	return v
}

func (s *Server) handleQuizSubmit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	answer := strings.TrimSpace(r.FormValue("answer"))
	sid := s.sessions.id(w, r)

	var p QuizProgress
	s.sessions.with(sid, func(sess *session) { p = *sess.quizFor(id) })
	if answer == "" || p.Submitted {
		redirectGuide(w, r, id, "quiz")
		return
	}

	_, res, err := s.svc.Answer(r.Context(), id, p.Index, answer)
	if err != nil {
		if errors.Is(err, engine.ErrNotFound) && p.Index > 0 {
			redirectGuide(w, r, id, "quiz")
			return
		}
		s.renderError(w, err)
		return
	}
	s.sessions.with(sid, func(sess *session) {
		cur := sess.quizFor(id)
		if cur.Index != p.Index || cur.Submitted {
			return
		}
		cur.Submitted = true
		cur.Answer = answer
		if res.Correct {
			cur.Correct++
		}
	})
	redirectGuide(w, r, id, "quiz")
}

func (s *Server) handleQuizNext(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sid := s.sessions.id(w, r)
	s.sessions.with(sid, func(sess *session) {
		p := sess.quizFor(id)
		if !p.Submitted {
			return
		}
		p.Index++
		p.Submitted = false
		p.Answer = ""
	})
	redirectGuide(w, r, id, "quiz")
}

func (s *Server) handleQuizRestart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sid := s.sessions.id(w, r)
	s.sessions.with(sid, func(sess *session) { delete(sess.quiz, id) })
	redirectGuide(w, r, id, "quiz")
}

func (s *Server) handleFlashcard(w http.ResponseWriter, r *http.Request) {
	g, ok := s.loadGuide(w, r)
	if !ok {
		return
	}
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		s.renderError(w, engine.ErrNotFound)
		return
	}
	v, err := guide.FlashcardAt(g, n)
	if err != nil {
		s.renderError(w, err)
		return
	}
	sid := s.sessions.id(w, r)
	s.sessions.with(sid, func(sess *session) { sess.cardsFor(g.ID).Index = v.Index })
	s.render(w, http.StatusOK, "flashcard.html", guideView{Guide: g, Flashcard: &v})
}

func (s *Server) handleRoadmap(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, _, err := s.svc.Roadmap(r.Context(), id, r.FormValue("level")); err != nil {
		slog.Warn("web: roadmap failed", slog.String("guide", id), slog.Any("error", err))
		s.renderError(w, err)
		return
	}
	redirectGuide(w, r, id, "roadmap")
}

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	mp3, err := s.svc.Audio(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		status, msg := errorStatus(err)
		http.Error(w, msg, status)
		return
	}
	w.Header().Set("Content-Type", toolutil.ContentType("mp3"))
	w.Header().Set("Content-Length", strconv.Itoa(len(mp3)))
	_, _ = w.Write(mp3)
}

func (s *Server) handleFlowchart(w http.ResponseWriter, r *http.Request) {
	format := toolutil.NormFormat(chi.URLParam(r, "format"))
	_, img, err := s.svc.Flowchart(r.Context(), chi.URLParam(r, "id"), format)
	if err != nil {
		status, msg := errorStatus(err)
		http.Error(w, msg, status)
		return
	}
	w.Header().Set("Content-Type", toolutil.ContentType(format))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(img)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sid := s.sessions.id(w, r)
	s.sessions.with(sid, func(sess *session) { sess.reset() })
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(engine.FormatMetrics()))
}

func (s *Server) loadGuide(w http.ResponseWriter, r *http.Request) (*engine.StudyGuide, bool) {
	g, err := s.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.renderError(w, err)
		return nil, false
	}
	return g, true
}

func (s *Server) renderError(w http.ResponseWriter, err error) {
	status, msg := errorStatus(err)
	s.render(w, status, "error.html", errorView{Status: status, Message: msg})
}

// errorStatus maps pipeline errors to a status code and a message safe to show.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, engine.ErrNotFound):
		return http.StatusNotFound, "Not found."
	case errors.Is(err, engine.ErrInvalidURL):
		return http.StatusBadRequest, "Please enter a valid YouTube URL."
	case errors.Is(err, guide.ErrInvalidLevel):
		return http.StatusBadRequest, "Choose Beginner, Intermediate or Advanced."
	case errors.Is(err, guide.ErrUnsupportedFormat):
		return http.StatusBadRequest, "Unsupported image format."
	case errors.Is(err, engine.ErrNoTranscript):
		return http.StatusUnprocessableEntity, "Could not retrieve a transcript for this video. It may have captions disabled."
	case errors.Is(err, guide.ErrInvalidGuide):
		return http.StatusBadGateway, "The generated notes were incomplete. Please try again."
	case errors.Is(err, engine.ErrNoLLM):
		return http.StatusServiceUnavailable, "No language model is configured."
	case errors.Is(err, guide.ErrRenderUnavailable), errors.Is(err, guide.ErrAudioDisabled):
		return http.StatusServiceUnavailable, "This feature is not available on this server."
	}
	return http.StatusInternalServerError, "Something went wrong. Please try again."
}

func redirectGuide(w http.ResponseWriter, r *http.Request, id, anchor string) {
	http.Redirect(w, r, "/guides/"+id+"#"+anchor, http.StatusSeeOther)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
