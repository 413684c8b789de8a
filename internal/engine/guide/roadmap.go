package guide

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_study/internal/engine"
	"github.com/anatolykoptev/go_study/internal/engine/sources"
)

// ErrInvalidLevel is returned for levels outside Levels.
var ErrInvalidLevel = errors.New("invalid learner level")

// Levels are the learner levels a roadmap can target, easiest first.
var Levels = []string{"Beginner", "Intermediate", "Advanced"}

const defaultRecommendations = 3

// searchVideos is swapped in tests.
var searchVideos = sources.SearchYouTube

// NormalizeLevel matches level case-insensitively against Levels.
func NormalizeLevel(level string) (string, error) {
	l := strings.TrimSpace(level)
	for _, v := range Levels {
		if strings.EqualFold(l, v) {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q (valid: %s)", ErrInvalidLevel, level, strings.Join(Levels, ", "))
}

// RoadmapQuery builds the search phrase, e.g. "Quantum Physics for beginners tutorial".
func RoadmapQuery(topic, level string) string {
	return fmt.Sprintf("%s for %ss tutorial", strings.TrimSpace(topic), strings.ToLower(level))
}

// Recommend looks up max follow-up videos for topic at level. Results are cached per (topic, level).
func Recommend(ctx context.Context, topic, level string, max int) ([]engine.Recommendation, error) {
	lvl, err := NormalizeLevel(level)
	if err != nil {
		return nil, err
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = DefaultTopic
	}
	if max <= 0 {
		max = defaultRecommendations
	}

	key := engine.CacheKey("roadmap", strings.ToLower(topic), lvl, fmt.Sprint(max))
	if recs, ok := engine.CacheLoadJSON[[]engine.Recommendation](ctx, key); ok {
		return recs, nil
	}

	videos, err := searchVideos(ctx, RoadmapQuery(topic, lvl), "en", max)
	if err != nil {
		return nil, fmt.Errorf("recommend %q: %w", topic, err)
	}
	recs := make([]engine.Recommendation, 0, len(videos))
	for _, v := range videos {
		recs = append(recs, engine.Recommendation{
			Title:     v.Title,
			URL:       v.URL,
			Thumbnail: v.Thumbnail,
			Channel:   v.Channel,
		})
	}
	if len(recs) > 0 {
		engine.CacheStoreJSON(ctx, key, recs)
	}
	return recs, nil
}
