package studyserver

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_study/internal/engine"
	"github.com/anatolykoptev/go_study/internal/engine/guide"
)

func registerLearningRoadmap(server *mcp.Server, svc *guide.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "learning_roadmap",
		Description: "Recommend follow-up YouTube videos for a learner level (Beginner, Intermediate, Advanced). Pass guide_id to use the guide's extracted topic and store the results on it, or pass a free-form topic.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.LearningRoadmapInput) (*mcp.CallToolResult, *engine.LearningRoadmapOutput, error) {
		lvl, err := guide.NormalizeLevel(input.Level)
		if err != nil {
			return nil, nil, err
		}

		topic := strings.TrimSpace(input.Topic)
		var recs []engine.Recommendation
		switch {
		case topic == "" && input.GuideID != "":
			var g *engine.StudyGuide
			g, recs, err = svc.Roadmap(ctx, input.GuideID, lvl)
			if g != nil {
				topic = g.Topic
			}
		case topic != "":
			recs, err = guide.Recommend(ctx, topic, lvl, 0)
		default:
			return nil, nil, errors.New("guide_id or topic is required")
		}
		if err != nil {
			return nil, nil, err
		}
		if recs == nil {
			recs = []engine.Recommendation{}
		}
		return nil, &engine.LearningRoadmapOutput{Topic: topic, Level: lvl, Recommendations: recs}, nil
	})
}
