package guide

import (
	"errors"
	"testing"

	"github.com/anatolykoptev/go_study/internal/engine"
)

func TestResolveAnswerIndex(t *testing.T) {
	opts := []string{"A) Mitochondria", "B) Chloroplast", "C) Nucleus", "D) Ribosome"}
	tests := []struct {
		name    string
		options []string
		answer  string
		want    int
	}{
		{"letter", opts, "B", 1},
		{"lowercase letter padded", opts, " c ", 2},
		{"letter out of range", opts, "F", -1},
		{"exact text", opts, "Nucleus", 2},
		{"prefixed text", opts, "D) Ribosome", 3},
		{"answer contains option", opts, "The chloroplast organelle", 1},
		{"option contains answer", []string{"Energy from sunlight", "Water"}, "sunlight", 0},
		{"word overlap", []string{"Carbon dioxide gas", "Pure oxygen released"}, "oxygen gets released", 1},
		{"no overlap", []string{"Red", "Blue"}, "purple", -1},
		{"empty answer", opts, "", -1},
		{"no options", nil, "A", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveAnswerIndex(tt.options, tt.answer); got != tt.want {
				t.Errorf("ResolveAnswerIndex(%v, %q) = %d, want %d", tt.options, tt.answer, got, tt.want)
			}
		})
	}
}

func TestGrade(t *testing.T) {
	item := engine.QuizItem{
		Question:      "Where does photosynthesis happen?",
		Options:       []string{"Mitochondria", "Chloroplast", "Nucleus"},
		CorrectAnswer: "Chloroplast",
		Hint:          "It's green.",
	}

	res, err := Grade(item, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Correct || res.CorrectIndex != 1 || res.CorrectLetter != "B" || res.Hint != "" {
		t.Errorf("correct answer: got %+v", res)
	}

	res, err = Grade(item, 0)
	if err != nil {
		t.Fatal(err)
	}
	if res.Correct || res.CorrectLetter != "B" || res.Hint != "It's green." {
		t.Errorf("wrong answer: got %+v", res)
	}

	if _, err := Grade(engine.QuizItem{Options: []string{"only"}}, 0); !errors.Is(err, ErrMalformedQuestion) {
		t.Errorf("single option: err = %v", err)
	}
	bad := item
	bad.CorrectAnswer = "Z"
	if _, err := Grade(bad, 0); !errors.Is(err, ErrMalformedQuestion) {
		t.Errorf("unresolvable answer: err = %v", err)
	}
}

func TestParseChoice(t *testing.T) {
	opts := []string{"Mitochondria", "Chloroplast"}
	tests := map[string]int{"b": 1, "A)": 0, "b.": 1, "chloroplast": 1, "x": -1}
	for in, want := range tests {
		if got := ParseChoice(opts, in); got != want {
			t.Errorf("ParseChoice(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestParseChoice_NoWordOverlap(t *testing.T) {
	opts := []string{"The sun", "Water", "Soil", "Air"}
	tests := []struct {
		name   string
		choice string
		want   int
	}{
		{"shares one word", "the moon", -1},
		{"prefixed option text", "A) The sun", 0},
		{"fragment of one option", "sun", 0},
		{"longer than option", "water and soil", -1},
		{"blank", "  ", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseChoice(opts, tt.choice); got != tt.want {
				t.Errorf("ParseChoice(%q) = %d, want %d", tt.choice, got, tt.want)
			}
		})
	}

	if got := ParseChoice([]string{"Red wine", "White wine"}, "wine"); got != -1 {
		t.Errorf("ambiguous fragment resolved to %d", got)
	}

	item := engine.QuizItem{Question: "What do plants need?", Options: opts, CorrectAnswer: "A"}
	res, err := Grade(item, ParseChoice(item.Options, "the moon"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Correct {
		t.Errorf("wrong answer graded correct: %+v", res)
	}
}

func TestOptionLetter(t *testing.T) {
	if OptionLetter(0) != "A" || OptionLetter(25) != "Z" || OptionLetter(26) != "" || OptionLetter(-1) != "" {
		t.Error("OptionLetter bounds")
	}
}
