package guide

import (
	"fmt"

	"github.com/anatolykoptev/go_study/internal/engine"
)

// FlashcardView is one card plus the navigation state around it.
type FlashcardView struct {
	Index   int
	Total   int
	Card    engine.Flashcard
	HasPrev bool
	HasNext bool
}

// FlashcardAt returns card i, clamped to the deck. Prev/next are disabled at the edges.
func FlashcardAt(g *engine.StudyGuide, i int) (FlashcardView, error) {
	n := len(g.Flashcards)
	if n == 0 {
		return FlashcardView{}, fmt.Errorf("guide %s has no flashcards: %w", g.ID, engine.ErrNotFound)
	}
	if i < 0 {
		i = 0
	}
	if i >= n {
		i = n - 1
	}
	return FlashcardView{
		Index:   i,
		Total:   n,
		Card:    g.Flashcards[i],
		HasPrev: i > 0,
		HasNext: i < n-1,
	}, nil
}
