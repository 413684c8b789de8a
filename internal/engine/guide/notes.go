package guide

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/anatolykoptev/go_study/internal/engine"
)

// DefaultTopic is used when the notes carry no summary to derive a topic from.
const DefaultTopic = "General Educational Topic"

var (
	headingRE   = regexp.MustCompile(`^#{1,3}\s+(.*)$`)
	dotBlockRE  = regexp.MustCompile("(?s)```(?:dot|graphviz)\\s*(.+?)\\s*```")
	jsonBlockRE = regexp.MustCompile("(?s)```(?:json)?\\s*(\\[.*?\\])\\s*```")
	bulletRE    = regexp.MustCompile(`^\s*(?:[-*+•]|\d+[.)])\s+(.*)$`)
	boldTermRE  = regexp.MustCompile(`^\*\*(.+?)\*\*\s*[:\-–]?\s*(.*)$`)
	inlineTagRE = regexp.MustCompile(`(?i)</?(?:b|i|u|em|strong|br|p|ul|ol|li|span|div|h[1-6])\b[^>]*>`)
	headPrefix  = regexp.MustCompile(`^[\d.)\s]+`)
)

// section is one "## Heading" block of the notes.
type section struct {
	name   string // normalized heading, lowercase, numbering stripped
	inline string // text after "Heading:" on the heading line itself
	body   string
}

// GenerateNotes asks the LLM for the full study-notes document.
// The transcript is capped at MaxTranscriptChars runes.
func GenerateNotes(ctx context.Context, transcript string) (string, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return "", engine.ErrNoTranscript
	}
	transcript = engine.TruncateRunes(transcript, engine.Cfg.MaxTranscriptChars, "")
	notes, err := engine.CallLLM(ctx, engine.StudyNotesSystemPrompt, fmt.Sprintf(engine.StudyNotesUserPrompt, transcript))
	if err != nil {
		return "", fmt.Errorf("generate notes: %w", err)
	}
	if strings.TrimSpace(notes) == "" {
		return "", fmt.Errorf("generate notes: empty response")
	}
	return notes, nil
}

// splitSections cuts markdown at level 1-3 headings. Text before the first heading is dropped.
func splitSections(md string) []section {
	var (
		out []section
		cur *section
		buf strings.Builder
	)
	flush := func() {
		if cur != nil {
			cur.body = strings.TrimSpace(buf.String())
			out = append(out, *cur)
		}
		buf.Reset()
	}
	inFence := false
	for _, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
		}
		if !inFence {
			if m := headingRE.FindStringSubmatch(trimmed); m != nil {
				flush()
				name, inline := splitHeading(m[1])
				cur = &section{name: name, inline: inline}
				continue
			}
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	flush()
	return out
}

// splitHeading turns "1. Title: Photosynthesis" into ("title", "Photosynthesis").
func splitHeading(h string) (name, inline string) {
	h = strings.Trim(strings.TrimSpace(h), "*")
	h = headPrefix.ReplaceAllString(h, "")
	if i := strings.Index(h, ":"); i >= 0 {
		name, inline = h[:i], strings.TrimSpace(h[i+1:])
	} else {
		name = h
	}
	return strings.ToLower(strings.TrimSpace(name)), strings.Trim(inline, "* ")
}

func (s section) is(keys ...string) bool {
	for _, k := range keys {
		if strings.Contains(s.name, k) {
			return true
		}
	}
	return false
}

// text is the section content including any inline heading text.
func (s section) text() string {
	if s.inline == "" {
		return s.body
	}
	if s.body == "" {
		return s.inline
	}
	return s.inline + "\n" + s.body
}

// ParseNotes splits the LLM markdown into StudyGuide fields.
// Missing sections leave their fields empty; Validate decides whether that is acceptable.
func ParseNotes(md string) engine.StudyGuide {
	g := engine.StudyGuide{Notes: md}
	for _, s := range splitSections(md) {
		switch {
		case s.is("flowchart description"):
			g.FlowchartDescription = engine.CollapseSpace(cleanMarkup(s.text()))
		case s.is("key concept", "flowchart"):
			if m := dotBlockRE.FindStringSubmatch(s.body); m != nil {
				g.FlowchartSpec = strings.TrimSpace(m[1])
			}
		case s.is("title"):
			g.Title = firstLine(cleanMarkup(s.text()))
		case s.is("summary"):
			g.Summary = cleanMarkup(s.text())
		case s.is("jargon", "glossary"):
			g.Jargon = parseJargon(cleanMarkup(s.text()))
		case s.is("takeaway"):
			g.Takeaways = parseBullets(cleanMarkup(s.text()))
		case s.is("mnemonic"):
			g.Mnemonics = parseBullets(cleanMarkup(s.text()))
			if len(g.Mnemonics) == 0 {
				if t := strings.TrimSpace(cleanMarkup(s.text())); t != "" {
					g.Mnemonics = []string{t}
				}
			}
		case s.is("quiz", "mcq"):
			g.Quiz = parseQuiz(s.body)
		case s.is("flashcard"):
			g.Flashcards = parseFlashcards(s.body)
		}
	}
	// Some models put the dot block outside its section.
	if g.FlowchartSpec == "" {
		if m := dotBlockRE.FindStringSubmatch(md); m != nil {
			g.FlowchartSpec = strings.TrimSpace(m[1])
		}
	}
	return g
}

// cleanMarkup converts stray HTML in model output to markdown.
// Plain markdown is returned untouched so its syntax isn't escaped.
func cleanMarkup(s string) string {
	s = strings.TrimSpace(s)
	if !inlineTagRE.MatchString(s) {
		return s
	}
	md, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		slog.Debug("notes: html-to-markdown failed", slog.Any("error", err))
		return engine.CleanHTML(s)
	}
	return strings.TrimSpace(md)
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.Trim(strings.TrimSpace(line), "*#\"")
		if line != "" {
			return strings.TrimSpace(line)
		}
	}
	return ""
}

func parseBullets(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if m := bulletRE.FindStringSubmatch(line); m != nil {
			if item := strings.TrimSpace(m[1]); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

// parseJargon accepts "**Term**: def", "Term - def" and "Term: def" bullets,
// or bare lines of the same shape when the model skips bullet markers.
func parseJargon(s string) []engine.JargonEntry {
	lines := parseBullets(s)
	if len(lines) == 0 {
		for _, line := range strings.Split(s, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
	}
	var out []engine.JargonEntry
	for _, line := range lines {
		if e, ok := splitJargon(line); ok {
			out = append(out, e)
		}
	}
	return out
}

func splitJargon(line string) (engine.JargonEntry, bool) {
	if m := boldTermRE.FindStringSubmatch(line); m != nil {
		term := strings.TrimRight(strings.TrimSpace(m[1]), ":")
		def := strings.TrimSpace(m[2])
		if term != "" && def != "" {
			return engine.JargonEntry{Term: term, Definition: def}, true
		}
	}
	for _, sep := range []string{": ", " - ", " – ", " — "} {
		if i := strings.Index(line, sep); i > 0 {
			term := strings.Trim(strings.TrimSpace(line[:i]), "*")
			def := strings.TrimSpace(line[i+len(sep):])
			if term != "" && def != "" && len([]rune(term)) <= 80 {
				return engine.JargonEntry{Term: term, Definition: def}, true
			}
		}
	}
	return engine.JargonEntry{}, false
}

// extractJSONArray finds the JSON array in a section: a fenced block first,
// then the outermost [...] span.
func extractJSONArray(s string) string {
	if m := jsonBlockRE.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func parseQuiz(body string) []engine.QuizItem {
	raw := extractJSONArray(body)
	if raw == "" {
		slog.Warn("notes: quiz section has no JSON array")
		return nil
	}
	var items []engine.QuizItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		slog.Warn("notes: invalid quiz JSON", slog.Any("error", err))
		return nil
	}
	out := items[:0]
	for _, it := range items {
		it.Question = strings.TrimSpace(it.Question)
		it.CorrectAnswer = strings.TrimSpace(it.CorrectAnswer)
		if it.Question == "" {
			continue
		}
		out = append(out, it)
	}
	return out
}

func parseFlashcards(body string) []engine.Flashcard {
	raw := extractJSONArray(body)
	if raw == "" {
		slog.Warn("notes: flashcard section has no JSON array")
		return nil
	}
	var cards []engine.Flashcard
	if err := json.Unmarshal([]byte(raw), &cards); err != nil {
		slog.Warn("notes: invalid flashcard JSON", slog.Any("error", err))
		return nil
	}
	out := cards[:0]
	for _, c := range cards {
		if strings.TrimSpace(c.Question) == "" || strings.TrimSpace(c.Answer) == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

var topicQuotes = strings.NewReplacer(`"`, "", "“", "", "”", "")

// ExtractTopic asks the LLM for a 3-5 word topic phrase for the roadmap search.
// Falls back to DefaultTopic without a summary and to the title's first words on LLM failure.
func ExtractTopic(ctx context.Context, summary, title string) string {
	if strings.TrimSpace(summary) == "" {
		return DefaultTopic
	}
	raw, err := engine.CallLLMShort(ctx, fmt.Sprintf(engine.TopicPrompt, summary))
	topic := strings.TrimFunc(topicQuotes.Replace(firstLine(raw)), func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})
	if err != nil || topic == "" {
		if err != nil {
			slog.Warn("guide: topic extraction failed", slog.Any("error", err))
		}
		if t := engine.FirstWords(title, 5); t != "" {
			return t
		}
		return DefaultTopic
	}
	return topic
}
