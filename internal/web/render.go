package web

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/anatolykoptev/go_study/internal/engine"
	"github.com/anatolykoptev/go_study/internal/engine/guide"
)

//go:embed templates/*.html
var templateFS embed.FS

// markdown renders LLM text. Raw HTML in the source is dropped.
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// renderMarkdown converts md to HTML and colours @@keyword@@ markers.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		slog.Warn("web: markdown render failed", slog.Any("error", err))
		return template.HTML(guide.HighlightEscaped(template.HTMLEscapeString(md)))
	}
	return template.HTML(guide.HighlightEscaped(buf.String()))
}

var funcs = template.FuncMap{
	"md":     renderMarkdown,
	"letter": guide.OptionLetter,
	"inc":    func(i int) int { return i + 1 },
	"dec":    func(i int) int { return i - 1 },
}

func parseTemplates() *template.Template {
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

// indexView backs index.html.
type indexView struct {
	Error   string
	URL     string
	History []engine.StudyGuideSummary
	Recent  []engine.StudyGuideSummary
}

// quizView is the current question plus the visitor's progress on it.
type quizView struct {
	Progress QuizProgress
	Total    int
	Done     bool
	Item     engine.QuizItem
	Result   *guide.QuizResult
	Chosen   int
}

// roadmapLevel is one level's recommendations, in Levels order.
type roadmapLevel struct {
	Level string
	Recs  []engine.Recommendation
}

// guideView backs guide.html.
type guideView struct {
	Guide     *engine.StudyGuide
	Quiz      quizView
	Flashcard *guide.FlashcardView
	Roadmap   []roadmapLevel
	Levels    []string
	Error     string
}

type errorView struct {
	Status  int
	Message string
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("web: template failed", slog.String("template", name), slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
