package studyserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_study/internal/engine"
	"github.com/anatolykoptev/go_study/internal/engine/sources"
	"github.com/anatolykoptev/go_study/internal/toolutil"
)

// Seams for tests.
var (
	fetchTranscript = sources.FetchYouTubeTranscript
	fetchMeta       = sources.FetchVideoMeta
)

func registerVideoTranscript(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_transcript",
		Description: "Fetch the plain-text transcript of a YouTube video without generating a study guide. Tries manual captions, auto-generated captions, then Whisper speech-to-text when enabled. Accepts a full URL or an 11-character video ID.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.VideoTranscriptInput) (*mcp.CallToolResult, *engine.VideoTranscriptOutput, error) {
		if input.URL == "" {
			return nil, nil, errors.New("url is required")
		}
		id := sources.ExtractVideoID(input.URL)
		if id == "" {
			return nil, nil, fmt.Errorf("%w: %q", engine.ErrInvalidURL, input.URL)
		}

		langs := toolutil.NormLangs(input.Languages)
		key := engine.CacheKey("video_transcript", id, fmt.Sprint(langs))
		if out, ok := engine.CacheLoadJSON[engine.VideoTranscriptOutput](ctx, key); ok {
			return nil, &out, nil
		}

		text, err := fetchTranscript(ctx, id, langs)
		if err != nil {
			return nil, nil, err
		}
		out := engine.VideoTranscriptOutput{VideoID: id, Transcript: text, Chars: len([]rune(text))}
		if meta, err := fetchMeta(ctx, id); err == nil {
			out.Title = meta.Title
		} else {
			slog.Debug("video_transcript: meta unavailable", slog.String("video", id), slog.Any("error", err))
		}

		engine.CacheStoreJSON(ctx, key, out)
		return nil, &out, nil
	})
}
