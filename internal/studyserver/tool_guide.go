package studyserver

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_study/internal/engine"
	"github.com/anatolykoptev/go_study/internal/engine/guide"
)

func registerStudyGuideGenerate(server *mcp.Server, svc *guide.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "study_guide_generate",
		Description: "Turn a YouTube video into a study guide: fetches the transcript (captions, or Whisper when enabled), asks the LLM for structured notes and returns title, summary, jargon buster, mnemonics, key takeaways with @@keyword@@ markers, a Graphviz flowchart with a text description, a multiple-choice quiz and flashcards. Guides are stored and deduplicated per video; use the returned id with the other study tools.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.StudyGuideGenerateInput) (*mcp.CallToolResult, *engine.StudyGuide, error) {
		if input.URL == "" {
			return nil, nil, errors.New("url is required")
		}
		g, err := svc.Generate(ctx, input.URL)
		if err != nil {
			return nil, nil, err
		}
		return nil, g, nil
	})
}

func registerStudyGuideGet(server *mcp.Server, svc *guide.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "study_guide_get",
		Description: "Load a previously generated study guide by id, including any learning roadmap recommendations fetched so far.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.StudyGuideGetInput) (*mcp.CallToolResult, *engine.StudyGuide, error) {
		if input.ID == "" {
			return nil, nil, errors.New("id is required")
		}
		g, err := svc.Get(ctx, input.ID)
		if err != nil {
			return nil, nil, err
		}
		return nil, g, nil
	})
}

func registerStudyGuideList(server *mcp.Server, svc *guide.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "study_guide_list",
		Description: "List stored study guides, most recent first. Returns id, title, video URL and topic for each.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.StudyGuideListInput) (*mcp.CallToolResult, *engine.StudyGuideListOutput, error) {
		guides, err := svc.List(ctx, input.Limit)
		if err != nil {
			return nil, nil, err
		}
		if guides == nil {
			guides = []engine.StudyGuideSummary{}
		}
		return nil, &engine.StudyGuideListOutput{Guides: guides, Total: len(guides)}, nil
	})
}
