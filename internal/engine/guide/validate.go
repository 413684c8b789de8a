package guide

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_study/internal/engine"
)

// ErrInvalidGuide wraps every Validate failure.
var ErrInvalidGuide = errors.New("invalid study guide")

// ValidationProblems lists what is wrong with a guide; empty means valid.
func ValidationProblems(g *engine.StudyGuide) []string {
	var errs []string
	if g == nil {
		return []string{"guide is nil"}
	}
	if strings.TrimSpace(g.Title) == "" {
		errs = append(errs, "missing title")
	}
	if strings.TrimSpace(g.Summary) == "" {
		errs = append(errs, "missing summary")
	}
	if len(g.Quiz) == 0 && len(g.Flashcards) == 0 {
		errs = append(errs, "no quiz questions or flashcards")
	}
	for i, q := range g.Quiz {
		if len(q.Options) < 2 {
			errs = append(errs, fmt.Sprintf("quiz[%d]: needs at least 2 options", i))
			continue
		}
		if ResolveAnswerIndex(q.Options, q.CorrectAnswer) < 0 {
			errs = append(errs, fmt.Sprintf("quiz[%d]: correct_answer %q matches no option", i, q.CorrectAnswer))
		}
	}
	return errs
}

// Validate reports whether g can be shown to a learner.
func Validate(g *engine.StudyGuide) error {
	if errs := ValidationProblems(g); len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidGuide, strings.Join(errs, "; "))
	}
	return nil
}

// DropUngradable removes quiz items Grade would reject, so one bad question
// doesn't sink an otherwise usable guide.
func DropUngradable(g *engine.StudyGuide) int {
	kept := g.Quiz[:0]
	dropped := 0
	for _, q := range g.Quiz {
		if len(q.Options) >= 2 && ResolveAnswerIndex(q.Options, q.CorrectAnswer) >= 0 {
			kept = append(kept, q)
			continue
		}
		dropped++
	}
	g.Quiz = kept
	return dropped
}
