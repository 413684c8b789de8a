package engine

import (
	"context"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
)

// CompleteFunc is a single-shot LLM completion. Tests inject one via Config.Complete.
type CompleteFunc func(ctx context.Context, system, prompt string) (string, error)

// Config holds all engine configuration, injected from main.
type Config struct {
	LLMAPIKey          string
	LLMAPIKeyFallbacks []string
	LLMAPIBase         string
	LLMModel           string
	LLMTemperature     float64
	LLMMaxTokens       int
	LLMClient          *llm.Client
	Complete           CompleteFunc // overrides LLMClient when set

	YouTubeAPIKey         string
	YouTubeAPIKeyFallback string
	YouTubeQPS            float64
	TranscriptLangs       []string
	MaxTranscriptChars    int

	WhisperEnabled bool
	WhisperModel   string
	YtDlpPath      string

	TTSBackend string // gtts, openai, none
	TTSVoice   string
	TTSModel   string
	TTSLang    string

	FlowchartBackend string // dot, kroki, none
	DotPath          string
	KrokiURL         string

	FetchTimeout         time.Duration
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	HTTPClient           *http.Client
	BrowserClient        *BrowserClient // nil = plain HTTPClient for watch-page scraping

	// MediaClient serves slow uploads and synthesis (Whisper, OpenAI TTS, Kroki).
	MediaTimeout time.Duration
	MediaClient  *http.Client
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (guide, sources).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 15 * time.Second
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.FetchTimeout}
	}
	if c.MediaTimeout <= 0 {
		c.MediaTimeout = 5 * time.Minute
	}
	if c.MediaClient == nil {
		c.MediaClient = &http.Client{Timeout: c.MediaTimeout}
	}
	if c.MaxTranscriptChars <= 0 {
		c.MaxTranscriptChars = 30000
	}
	if len(c.TranscriptLangs) == 0 {
		c.TranscriptLangs = []string{"en"}
	}
	if c.TTSLang == "" {
		c.TTSLang = "en"
	}
	cfg = c
	Cfg = &cfg
}
