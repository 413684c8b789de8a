// go_study: YouTube video to study guide MCP server with a web UI.
//
// Exposes nine MCP tools: study_guide_generate, study_guide_get, study_guide_list,
// video_transcript, learning_roadmap, quiz_answer, flashcard_get, flowchart_render,
// summary_audio. The same guides are served as HTML on WEB_PORT.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-kit/llm"
	"github.com/anatolykoptev/go-mcpserver"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_study/internal/engine"
	"github.com/anatolykoptev/go_study/internal/engine/guide"
	"github.com/anatolykoptev/go_study/internal/studyserver"
	"github.com/anatolykoptev/go_study/internal/web"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
	webPort = env.Str("WEB_PORT", "8894")
)

func main() {
	c := initEngine()

	store, err := openStore()
	if err != nil {
		slog.Error("guide store init failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer store.Close()

	svc := guide.NewService(store, c)

	slog.Info("starting go_study",
		slog.String("mcp_port", mcpPort),
		slog.String("web_port", webPort),
		slog.String("flowchart", c.FlowchartBackend),
		slog.String("tts", c.TTSBackend),
	)

	if webPort != "" && webPort != "0" {
		ws := web.NewServer(svc)
		go func() {
			if err := ws.Start(":" + webPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("web server failed", slog.Any("error", err))
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = ws.Stop(ctx)
		}()
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_study",
		Version: version,
	}, nil)

	studyserver.RegisterTools(server, svc)
	slog.Info("tools registered", slog.Int("count", 9))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_study",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() *engine.Config {
	fetchTimeout := env.Duration("FETCH_TIMEOUT", 15*time.Second)
	c := engine.Config{
		LLMAPIKey:             env.Str("LLM_API_KEY", ""),
		LLMAPIKeyFallbacks:    env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:            env.Str("LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
		LLMModel:              env.Str("LLM_MODEL", "gemini-2.5-flash"),
		LLMTemperature:        env.Float("LLM_TEMPERATURE", 0.7),
		LLMMaxTokens:          env.Int("LLM_MAX_TOKENS", 16384),
		YouTubeAPIKey:         env.Str("YOUTUBE_API_KEY", ""),
		YouTubeAPIKeyFallback: env.Str("YOUTUBE_API_KEY_FALLBACK", ""),
		YouTubeQPS:            env.Float("YOUTUBE_QPS", 5),
		TranscriptLangs:       env.List("TRANSCRIPT_LANGS", "en"),
		MaxTranscriptChars:    env.Int("MAX_TRANSCRIPT_CHARS", 30000),
		WhisperEnabled:        env.Bool("WHISPER_ENABLED", false),
		WhisperModel:          env.Str("WHISPER_MODEL", "whisper-1"),
		YtDlpPath:             env.Str("YTDLP_PATH", "yt-dlp"),
		TTSBackend:            env.Str("TTS_BACKEND", "gtts"),
		TTSVoice:              env.Str("TTS_VOICE", "alloy"),
		TTSModel:              env.Str("TTS_MODEL", "tts-1"),
		TTSLang:               env.Str("TTS_LANG", "en"),
		FlowchartBackend:      env.Str("FLOWCHART_BACKEND", "dot"),
		DotPath:               env.Str("DOT_PATH", "dot"),
		KrokiURL:              env.Str("KROKI_URL", "https://kroki.io"),
		FetchTimeout:          fetchTimeout,
		MediaTimeout:          env.Duration("MEDIA_TIMEOUT", 5*time.Minute),
		CacheMaxEntries:       env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval:  env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		HTTPClient: &http.Client{
			Timeout: fetchTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}
	var opts []stealth.ClientOption
	opts = append(opts, stealth.WithTimeout(15))

	if apiKey := env.Str("WEBSHARE_API_KEY", ""); apiKey != "" {
		pool, err := proxypool.NewWebshare(apiKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}

	bc, err := stealth.NewClient(opts...)
	if err != nil {
		slog.Error("stealth client init failed", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
		slog.Info("stealth browser client initialized")
	}

	c.LLMClient = llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
		llm.WithFallbackKeys(c.LLMAPIKeyFallbacks),
		llm.WithMaxTokens(c.LLMMaxTokens),
		llm.WithTemperature(c.LLMTemperature),
		llm.WithHTTPClient(&http.Client{Timeout: 120 * time.Second}),
	)

	engine.Init(c)

	cacheTTL := env.Duration("CACHE_TTL", 24*time.Hour)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
	return engine.Cfg
}

// openStore picks PostgreSQL when DATABASE_URL is set, else the local SQLite file.
func openStore() (guide.Store, error) {
	if dsn := env.Str("DATABASE_URL", ""); dsn != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s, err := guide.ConnectPostgresStore(ctx, dsn)
		if err != nil {
			return nil, err
		}
		slog.Info("guide store: postgres")
		return s, nil
	}
	path := env.Str("SQLITE_PATH", guide.DefaultSQLitePath())
	s, err := guide.OpenSQLiteStore(path)
	if err != nil {
		return nil, err
	}
	slog.Info("guide store: sqlite", slog.String("path", path))
	return s, nil
}
