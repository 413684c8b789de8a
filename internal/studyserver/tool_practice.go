package studyserver

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_study/internal/engine"
	"github.com/anatolykoptev/go_study/internal/engine/guide"
)

func registerQuizAnswer(server *mcp.Server, svc *guide.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "quiz_answer",
		Description: "Grade an answer to one quiz question of a study guide. The answer may be an option letter (A-D) or the option text. Returns whether it is correct, the correct option and, when wrong, the hint.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.QuizAnswerInput) (*mcp.CallToolResult, *engine.QuizAnswerOutput, error) {
		if input.GuideID == "" {
			return nil, nil, errors.New("guide_id is required")
		}
		if input.Answer == "" {
			return nil, nil, errors.New("answer is required")
		}
		g, res, err := svc.Answer(ctx, input.GuideID, input.QuestionIndex, input.Answer)
		if err != nil {
			return nil, nil, err
		}
		return nil, &engine.QuizAnswerOutput{
			Correct:       res.Correct,
			CorrectIndex:  res.CorrectIndex,
			CorrectLetter: res.CorrectLetter,
			CorrectOption: g.Quiz[input.QuestionIndex].Options[res.CorrectIndex],
			Hint:          res.Hint,
			Remaining:     len(g.Quiz) - input.QuestionIndex - 1,
		}, nil
	})
}

func registerFlashcardGet(server *mcp.Server, svc *guide.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "flashcard_get",
		Description: "Get one flashcard of a study guide by 0-based index (clamped to the deck) with navigation flags for previous and next cards.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.FlashcardGetInput) (*mcp.CallToolResult, *engine.FlashcardGetOutput, error) {
		if input.GuideID == "" {
			return nil, nil, errors.New("guide_id is required")
		}
		g, err := svc.Get(ctx, input.GuideID)
		if err != nil {
			return nil, nil, err
		}
		v, err := guide.FlashcardAt(g, input.Index)
		if err != nil {
			return nil, nil, err
		}
		return nil, &engine.FlashcardGetOutput{
			Index:    v.Index,
			Total:    v.Total,
			Question: v.Card.Question,
			Answer:   v.Card.Answer,
			HasPrev:  v.HasPrev,
			HasNext:  v.HasNext,
		}, nil
	})
}
