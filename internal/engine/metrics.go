package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	GuideRequests             atomic.Int64
	GuideErrors               atomic.Int64
	LLMCalls                  atomic.Int64
	LLMErrors                 atomic.Int64
	YouTubeSearchRequests     atomic.Int64
	YouTubeTranscriptRequests atomic.Int64
	YouTubeMetaRequests       atomic.Int64
	WhisperRequests           atomic.Int64
	TTSRequests               atomic.Int64
	TTSErrors                 atomic.Int64
	FlowchartRenders          atomic.Int64
	FlowchartErrors           atomic.Int64
	QuizAnswers               atomic.Int64
}

// metricKeys fixes the output order of FormatMetrics.
var metricKeys = []string{
	"guide_requests", "guide_errors",
	"llm_calls", "llm_errors",
	"youtube_search_requests", "youtube_transcript_requests", "youtube_meta_requests",
	"whisper_requests",
	"tts_requests", "tts_errors",
	"flowchart_renders", "flowchart_errors",
	"quiz_answers",
	"cache_hits", "cache_misses",
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"guide_requests":              metrics.GuideRequests.Load(),
		"guide_errors":                metrics.GuideErrors.Load(),
		"llm_calls":                   metrics.LLMCalls.Load(),
		"llm_errors":                  metrics.LLMErrors.Load(),
		"youtube_search_requests":     metrics.YouTubeSearchRequests.Load(),
		"youtube_transcript_requests": metrics.YouTubeTranscriptRequests.Load(),
		"youtube_meta_requests":       metrics.YouTubeMetaRequests.Load(),
		"whisper_requests":            metrics.WhisperRequests.Load(),
		"tts_requests":                metrics.TTSRequests.Load(),
		"tts_errors":                  metrics.TTSErrors.Load(),
		"flowchart_renders":           metrics.FlowchartRenders.Load(),
		"flowchart_errors":            metrics.FlowchartErrors.Load(),
		"quiz_answers":                metrics.QuizAnswers.Load(),
		"cache_hits":                  hits,
		"cache_misses":                misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for guide/ and sources/ sub-packages.
func IncrGuideRequests()      { metrics.GuideRequests.Add(1) }
func IncrGuideErrors()        { metrics.GuideErrors.Add(1) }
func IncrYouTubeSearch()      { metrics.YouTubeSearchRequests.Add(1) }
func IncrYouTubeTranscript()  { metrics.YouTubeTranscriptRequests.Add(1) }
func IncrYouTubeMeta()        { metrics.YouTubeMetaRequests.Add(1) }
func IncrWhisperRequests()    { metrics.WhisperRequests.Add(1) }
func IncrTTSRequests()        { metrics.TTSRequests.Add(1) }
func IncrTTSErrors()          { metrics.TTSErrors.Add(1) }
func IncrFlowchartRenders()   { metrics.FlowchartRenders.Add(1) }
func IncrFlowchartErrors()    { metrics.FlowchartErrors.Add(1) }
func IncrQuizAnswers()        { metrics.QuizAnswers.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
