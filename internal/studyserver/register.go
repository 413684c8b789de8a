package studyserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_study/internal/engine/guide"
)

// RegisterTools registers all study tools on the given MCP server:
// study_guide_generate, study_guide_get, study_guide_list, video_transcript,
// learning_roadmap, quiz_answer, flashcard_get, flowchart_render, summary_audio.
func RegisterTools(server *mcp.Server, svc *guide.Service) {
	registerStudyGuideGenerate(server, svc)
	registerStudyGuideGet(server, svc)
	registerStudyGuideList(server, svc)
	registerVideoTranscript(server)
	registerLearningRoadmap(server, svc)
	registerQuizAnswer(server, svc)
	registerFlashcardGet(server, svc)
	registerFlowchartRender(server, svc)
	registerSummaryAudio(server, svc)
}
