package studyserver

import (
	"context"
	"errors"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_study/internal/engine"
	"github.com/anatolykoptev/go_study/internal/engine/guide"
	"github.com/anatolykoptev/go_study/internal/toolutil"
)

func registerFlowchartRender(server *mcp.Server, svc *guide.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "flowchart_render",
		Description: "Render the key-concepts flowchart of a study guide as a base64 SVG or PNG. Always returns the styled Graphviz DOT source and the one-sentence description; image is empty when no renderer (dot binary or Kroki) is available.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.FlowchartRenderInput) (*mcp.CallToolResult, *engine.FlowchartRenderOutput, error) {
		if input.GuideID == "" {
			return nil, nil, errors.New("guide_id is required")
		}
		format := toolutil.NormFormat(input.Format)
		g, img, err := svc.Flowchart(ctx, input.GuideID, format)
		if g == nil {
			return nil, nil, err
		}
		switch {
		case err == nil:
		case errors.Is(err, guide.ErrRenderUnavailable):
			slog.Debug("flowchart_render: no renderer, returning DOT only", slog.String("guide", g.ID))
		default:
			return nil, nil, err
		}
		return nil, &engine.FlowchartRenderOutput{
			Format:      format,
			Description: g.FlowchartDescription,
			DOT:         guide.StyleDOT(g.FlowchartSpec),
			Image:       toolutil.Base64(img),
		}, nil
	})
}

func registerSummaryAudio(server *mcp.Server, svc *guide.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "summary_audio",
		Description: "Get the narrated summary of a study guide as base64 MP3. Synthesizes it on demand when the guide was stored without audio.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.SummaryAudioInput) (*mcp.CallToolResult, *engine.SummaryAudioOutput, error) {
		if input.GuideID == "" {
			return nil, nil, errors.New("guide_id is required")
		}
		mp3, err := svc.Audio(ctx, input.GuideID)
		if err != nil {
			return nil, nil, err
		}
		return nil, &engine.SummaryAudioOutput{Format: "mp3", Bytes: len(mp3), Audio: toolutil.Base64(mp3)}, nil
	})
}
