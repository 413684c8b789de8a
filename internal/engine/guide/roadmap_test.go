package guide

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_study/internal/engine"
)

func TestNormalizeLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Beginner", "Beginner", true},
		{"intermediate", "Intermediate", true},
		{" ADVANCED ", "Advanced", true},
		{"expert", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, err := NormalizeLevel(tt.in)
		if tt.ok {
			assert.NoError(t, err, tt.in)
			assert.Equal(t, tt.want, got)
		} else {
			assert.ErrorIs(t, err, ErrInvalidLevel, tt.in)
		}
	}
}

func TestRoadmapQuery(t *testing.T) {
	assert.Equal(t, "Quantum Physics for beginners tutorial", RoadmapQuery("Quantum Physics", "Beginner"))
}

func stubSearch(t *testing.T, fn func(ctx context.Context, query, language string, limit int) ([]engine.YouTubeVideo, error)) {
	t.Helper()
	old := searchVideos
	searchVideos = fn
	t.Cleanup(func() { searchVideos = old })
}

func TestRecommend(t *testing.T) {
	engine.InitCache("", time.Minute, 100, time.Minute)
	calls := 0
	stubSearch(t, func(_ context.Context, query, language string, limit int) ([]engine.YouTubeVideo, error) {
		calls++
		assert.Equal(t, "Cell Biology for advanceds tutorial", query)
		assert.Equal(t, "en", language)
		assert.Equal(t, 3, limit)
		return []engine.YouTubeVideo{
			{ID: "a", Title: "Cells deep dive", URL: "https://www.youtube.com/watch?v=a", Thumbnail: "t.jpg", Channel: "Bio"},
		}, nil
	})

	recs, err := Recommend(context.Background(), "Cell Biology", "advanced", 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, engine.Recommendation{Title: "Cells deep dive", URL: "https://www.youtube.com/watch?v=a", Thumbnail: "t.jpg", Channel: "Bio"}, recs[0])

	_, err = Recommend(context.Background(), "cell biology", "Advanced", 3)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "second lookup should be served from cache")

	_, err = Recommend(context.Background(), "Cell Biology", "guru", 3)
	assert.ErrorIs(t, err, ErrInvalidLevel)
}

func TestRecommendSearchError(t *testing.T) {
	engine.InitCache("", time.Minute, 100, time.Minute)
	stubSearch(t, func(context.Context, string, string, int) ([]engine.YouTubeVideo, error) {
		return nil, errors.New("quota")
	})
	_, err := Recommend(context.Background(), "x", "Beginner", 3)
	assert.Error(t, err)
}
