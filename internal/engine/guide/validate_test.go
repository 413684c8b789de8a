package guide

import (
	"errors"
	"testing"

	"github.com/anatolykoptev/go_study/internal/engine"
)

func validGuide() engine.StudyGuide {
	return engine.StudyGuide{
		Title:   "T",
		Summary: "S",
		Quiz: []engine.QuizItem{
			{Question: "Q", Options: []string{"a", "b"}, CorrectAnswer: "B"},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(g *engine.StudyGuide)
		ok     bool
	}{
		{"valid", func(*engine.StudyGuide) {}, true},
		{"flashcards only", func(g *engine.StudyGuide) {
			g.Quiz = nil
			g.Flashcards = []engine.Flashcard{{Question: "q", Answer: "a"}}
		}, true},
		{"missing title", func(g *engine.StudyGuide) { g.Title = " " }, false},
		{"missing summary", func(g *engine.StudyGuide) { g.Summary = "" }, false},
		{"no practice", func(g *engine.StudyGuide) { g.Quiz = nil }, false},
		{"one option", func(g *engine.StudyGuide) { g.Quiz[0].Options = []string{"a"} }, false},
		{"unresolvable answer", func(g *engine.StudyGuide) { g.Quiz[0].CorrectAnswer = "Q" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := validGuide()
			tt.mutate(&g)
			err := Validate(&g)
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidGuide) {
				t.Errorf("Validate() = %v, want ErrInvalidGuide", err)
			}
		})
	}
}

func TestDropUngradable(t *testing.T) {
	g := validGuide()
	g.Quiz = append(g.Quiz,
		engine.QuizItem{Question: "bad", Options: []string{"x"}},
		engine.QuizItem{Question: "bad2", Options: []string{"x", "y"}, CorrectAnswer: "nothing"},
	)
	if n := DropUngradable(&g); n != 2 {
		t.Errorf("dropped %d, want 2", n)
	}
	if len(g.Quiz) != 1 || g.Quiz[0].Question != "Q" {
		t.Errorf("quiz = %+v", g.Quiz)
	}
}

func TestFlashcardAt(t *testing.T) {
	g := &engine.StudyGuide{ID: "g", Flashcards: []engine.Flashcard{{Question: "1"}, {Question: "2"}, {Question: "3"}}}
	tests := []struct {
		i                int
		wantIdx          int
		hasPrev, hasNext bool
	}{
		{0, 0, false, true},
		{1, 1, true, true},
		{2, 2, true, false},
		{9, 2, true, false},
		{-1, 0, false, true},
	}
	for _, tt := range tests {
		v, err := FlashcardAt(g, tt.i)
		if err != nil {
			t.Fatal(err)
		}
		if v.Index != tt.wantIdx || v.HasPrev != tt.hasPrev || v.HasNext != tt.hasNext || v.Total != 3 {
			t.Errorf("FlashcardAt(%d) = %+v", tt.i, v)
		}
	}
	if _, err := FlashcardAt(&engine.StudyGuide{}, 0); !errors.Is(err, engine.ErrNotFound) {
		t.Errorf("empty deck err = %v", err)
	}
}
