package guide

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/anatolykoptev/go_study/internal/engine"
	"github.com/anatolykoptev/go_study/internal/engine/sources"
)

// Service wires the generation pipeline to its storage and media backends.
type Service struct {
	Store    Store
	Renderer Renderer
	Synth    Synthesizer

	group singleflight.Group
}

// NewService builds a Service with renderer and synthesizer chosen from c.
func NewService(store Store, c *engine.Config) *Service {
	return &Service{
		Store:    store,
		Renderer: NewRenderer(c),
		Synth:    NewSynthesizer(c),
	}
}

// Seams for tests.
var (
	fetchTranscript = sources.FetchYouTubeTranscript
	fetchMeta       = sources.FetchVideoMeta
)

const generateTimeout = 5 * time.Minute

func guideCacheKey(videoID string) string {
	return engine.CacheKey("guide", videoID)
}

// Generate turns a YouTube URL into a validated, persisted study guide.
// Concurrent calls for the same video share one generation.
func (s *Service) Generate(ctx context.Context, rawURL string) (*engine.StudyGuide, error) {
	engine.IncrGuideRequests()
	videoID := sources.ExtractVideoID(rawURL)
	if videoID == "" {
		engine.IncrGuideErrors()
		return nil, fmt.Errorf("%w: %q", engine.ErrInvalidURL, rawURL)
	}

	if g, ok := engine.CacheLoadJSON[engine.StudyGuide](ctx, guideCacheKey(videoID)); ok {
		slog.Debug("guide: cache hit", slog.String("video", videoID))
		return &g, nil
	}
	if g, err := s.Store.FindByVideo(ctx, videoID); err == nil {
		engine.CacheStoreJSON(ctx, guideCacheKey(videoID), *g)
		return g, nil
	} else if !errors.Is(err, engine.ErrNotFound) {
		slog.Warn("guide: store lookup failed", slog.String("video", videoID), slog.Any("error", err))
	}

	// Shared by every waiter, so one caller going away must not cancel the rest.
	v, err, _ := s.group.Do(videoID, func() (any, error) {
		gctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), generateTimeout)
		defer cancel()
		return s.generate(gctx, videoID)
	})
	if err != nil {
		engine.IncrGuideErrors()
		return nil, err
	}
	return v.(*engine.StudyGuide), nil
}

func (s *Service) generate(ctx context.Context, videoID string) (*engine.StudyGuide, error) {
	start := time.Now()

	meta, err := fetchMeta(ctx, videoID)
	if err != nil {
		slog.Warn("guide: video meta unavailable", slog.String("video", videoID), slog.Any("error", err))
	}

	var transcript string
	err = engine.TrackOperation(ctx, "transcript", func(ctx context.Context) error {
		var err error
		transcript, err = fetchTranscript(ctx, videoID, engine.Cfg.TranscriptLangs)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("transcript %s: %w", videoID, err)
	}

	var notes string
	err = engine.TrackOperation(ctx, "notes", func(ctx context.Context) error {
		var err error
		notes, err = GenerateNotes(ctx, transcript)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("notes %s: %w", videoID, err)
	}

	g := ParseNotes(notes)
	g.ID = uuid.NewString()
	g.VideoID = videoID
	g.VideoURL = sources.WatchURL(videoID)
	g.Video = meta
	g.CreatedAt = time.Now().UTC()
	if g.Title == "" {
		g.Title = meta.Title
	}
	if n := DropUngradable(&g); n > 0 {
		slog.Warn("guide: dropped ungradable quiz items", slog.String("video", videoID), slog.Int("dropped", n))
	}
	if err := Validate(&g); err != nil {
		return nil, fmt.Errorf("notes %s: %w", videoID, err)
	}

	g.Topic = ExtractTopic(ctx, g.Summary, g.Title)

	mp3 := s.narrate(ctx, &g)
	g.HasAudio = len(mp3) > 0

	if err := s.Store.Save(ctx, &g); err != nil {
		return nil, err
	}
	if g.HasAudio {
		if err := s.Store.SaveAudio(ctx, g.ID, mp3); err != nil {
			slog.Warn("guide: audio not stored", slog.String("guide", g.ID), slog.Any("error", err))
			g.HasAudio = false
			if err := s.Store.Save(ctx, &g); err != nil {
				return nil, err
			}
		}
	}

	engine.CacheStoreJSON(ctx, guideCacheKey(videoID), g)
	slog.Info("guide: generated",
		slog.String("guide", g.ID),
		slog.String("video", videoID),
		slog.String("title", g.Title),
		slog.Int("quiz", len(g.Quiz)),
		slog.Int("flashcards", len(g.Flashcards)),
		slog.Bool("audio", g.HasAudio),
		slog.Duration("elapsed", time.Since(start)))
	return &g, nil
}

// narrate synthesizes the summary. Failures are logged and yield nil.
func (s *Service) narrate(ctx context.Context, g *engine.StudyGuide) []byte {
	if s.Synth == nil {
		return nil
	}
	engine.IncrTTSRequests()
	mp3, err := s.Synth.Synthesize(ctx, NarrationText(g.Summary), engine.Cfg.TTSLang)
	if err != nil {
		if !errors.Is(err, ErrAudioDisabled) {
			engine.IncrTTSErrors()
			slog.Warn("guide: narration failed", slog.String("video", g.VideoID), slog.Any("error", err))
		}
		return nil
	}
	return mp3
}

// Get loads a guide by ID.
func (s *Service) Get(ctx context.Context, id string) (*engine.StudyGuide, error) {
	return s.Store.Get(ctx, id)
}

// List returns the most recent guides.
func (s *Service) List(ctx context.Context, limit int) ([]engine.StudyGuideSummary, error) {
	return s.Store.List(ctx, limit)
}

// Roadmap returns recommendations for guide id at level, fetching and storing them on first use.
func (s *Service) Roadmap(ctx context.Context, id, level string) (*engine.StudyGuide, []engine.Recommendation, error) {
	g, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	lvl, err := NormalizeLevel(level)
	if err != nil {
		return g, nil, err
	}
	if recs, ok := g.Recommendations[lvl]; ok && len(recs) > 0 {
		return g, recs, nil
	}
	recs, err := Recommend(ctx, g.Topic, lvl, defaultRecommendations)
	if err != nil {
		return g, nil, err
	}
	if err := s.Store.SaveRecommendations(ctx, g.ID, lvl, recs); err != nil {
		slog.Warn("guide: roadmap not stored", slog.String("guide", g.ID), slog.Any("error", err))
	} else {
		engine.CacheDelete(ctx, guideCacheKey(g.VideoID))
	}
	if g.Recommendations == nil {
		g.Recommendations = make(map[string][]engine.Recommendation)
	}
	g.Recommendations[lvl] = recs
	return g, recs, nil
}

// Audio returns the narrated summary, synthesizing it on demand for guides stored without one.
func (s *Service) Audio(ctx context.Context, id string) ([]byte, error) {
	mp3, err := s.Store.Audio(ctx, id)
	if err == nil {
		return mp3, nil
	}
	if !errors.Is(err, engine.ErrNotFound) {
		return nil, err
	}
	g, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Synth == nil {
		return nil, ErrAudioDisabled
	}
	engine.IncrTTSRequests()
	mp3, err = s.Synth.Synthesize(ctx, NarrationText(g.Summary), engine.Cfg.TTSLang)
	if err != nil {
		engine.IncrTTSErrors()
		return nil, err
	}
	if err := s.Store.SaveAudio(ctx, id, mp3); err != nil {
		slog.Warn("guide: audio not stored", slog.String("guide", id), slog.Any("error", err))
		return mp3, nil
	}
	g.HasAudio = true
	if err := s.Store.Save(ctx, g); err != nil {
		slog.Warn("guide: audio flag not stored", slog.String("guide", id), slog.Any("error", err))
		return mp3, nil
	}
	engine.CacheDelete(ctx, guideCacheKey(g.VideoID))
	return mp3, nil
}

// Flowchart renders guide id's flowchart in format.
func (s *Service) Flowchart(ctx context.Context, id, format string) (*engine.StudyGuide, []byte, error) {
	g, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	img, err := RenderFlowchart(ctx, s.Renderer, g, format)
	return g, img, err
}

// Answer grades answer for question qi of guide id.
func (s *Service) Answer(ctx context.Context, id string, qi int, answer string) (*engine.StudyGuide, QuizResult, error) {
	g, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, QuizResult{}, err
	}
	if qi < 0 || qi >= len(g.Quiz) {
		return g, QuizResult{}, fmt.Errorf("question %d of %d: %w", qi, len(g.Quiz), engine.ErrNotFound)
	}
	engine.IncrQuizAnswers()
	item := g.Quiz[qi]
	res, err := Grade(item, ParseChoice(item.Options, answer))
	return g, res, err
}
