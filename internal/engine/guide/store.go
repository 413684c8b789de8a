package guide

import (
	"context"

	"github.com/anatolykoptev/go_study/internal/engine"
)

// Store persists generated guides, their roadmaps and narrated audio.
// Get and FindByVideo return an error wrapping engine.ErrNotFound for unknown keys.
type Store interface {
	Save(ctx context.Context, g *engine.StudyGuide) error
	Get(ctx context.Context, id string) (*engine.StudyGuide, error)
	FindByVideo(ctx context.Context, videoID string) (*engine.StudyGuide, error)
	List(ctx context.Context, limit int) ([]engine.StudyGuideSummary, error)
	SaveRecommendations(ctx context.Context, guideID, level string, recs []engine.Recommendation) error
	SaveAudio(ctx context.Context, guideID string, mp3 []byte) error
	Audio(ctx context.Context, guideID string) ([]byte, error)
	Close() error
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
