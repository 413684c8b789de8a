package studyserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_study/internal/engine"
	"github.com/anatolykoptev/go_study/internal/engine/guide"
)

type stubRenderer struct{ err error }

func (r stubRenderer) Render(_ context.Context, dot, format string) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return []byte("<" + format + ">" + dot), nil
}

func testGuide() *engine.StudyGuide {
	return &engine.StudyGuide{
		ID:       "g-1",
		VideoID:  "abcdefghijk",
		VideoURL: "https://www.youtube.com/watch?v=abcdefghijk",
		Title:    "Sunlight to Sugar",
		Summary:  "Plants turn light into sugar.",
		Topic:    "Photosynthesis Basics",
		Quiz: []engine.QuizItem{
			{Question: "What do plants make?", Options: []string{"Salt", "Sugar", "Oil"}, CorrectAnswer: "B", Hint: "It is sweet."},
			{Question: "Which gas is released?", Options: []string{"Oxygen", "Argon"}, CorrectAnswer: "Oxygen"},
		},
		Flashcards: []engine.Flashcard{
			{Question: "Explain chlorophyll.", Answer: "A green pigment."},
			{Question: "Explain glucose.", Answer: "A sugar."},
		},
		FlowchartSpec:        `Light -> Chlorophyll -> Sugar;`,
		FlowchartDescription: "Light is captured by chlorophyll to make sugar.",
		CreatedAt:            time.Now().UTC(),
	}
}

// connect serves the study tools over an in-memory transport.
func connect(t *testing.T, renderer guide.Renderer) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	engine.Init(engine.Config{})
	engine.InitCache("", time.Minute, 100, time.Minute)

	store, err := guide.OpenSQLiteStore(filepath.Join(t.TempDir(), "guides.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Save(ctx, testGuide()))
	require.NoError(t, store.SaveAudio(ctx, "g-1", []byte("ID3audio")))

	svc := &guide.Service{Store: store, Renderer: renderer, Synth: guide.NoneSynthesizer{}}
	server := mcp.NewServer(&mcp.Implementation{Name: "go_study", Version: "test"}, nil)
	RegisterTools(server, svc)

	st, ct := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "test"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func call[T any](t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) T {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.False(t, res.IsError, "%s: %s", name, errorText(res))
	data, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func callErr(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) string {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.True(t, res.IsError, "%s should fail", name)
	return errorText(res)
}

func errorText(res *mcp.CallToolResult) string {
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestRegisterToolsListsAll(t *testing.T) {
	cs := connect(t, stubRenderer{})
	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"study_guide_generate", "study_guide_get", "study_guide_list", "video_transcript",
		"learning_roadmap", "quiz_answer", "flashcard_get", "flowchart_render", "summary_audio",
	}, names)
}

func TestQuizAnswerTool(t *testing.T) {
	cs := connect(t, stubRenderer{})

	out := call[engine.QuizAnswerOutput](t, cs, "quiz_answer", map[string]any{
		"guide_id": "g-1", "question_index": 0, "answer": "A",
	})
	assert.False(t, out.Correct)
	assert.Equal(t, "B", out.CorrectLetter)
	assert.Equal(t, "Sugar", out.CorrectOption)
	assert.Equal(t, "It is sweet.", out.Hint)
	assert.Equal(t, 1, out.Remaining)

	out = call[engine.QuizAnswerOutput](t, cs, "quiz_answer", map[string]any{
		"guide_id": "g-1", "question_index": 1, "answer": "oxygen",
	})
	assert.True(t, out.Correct)
	assert.Empty(t, out.Hint)
	assert.Equal(t, 0, out.Remaining)

	msg := callErr(t, cs, "quiz_answer", map[string]any{"guide_id": "g-1", "question_index": 7, "answer": "A"})
	assert.Contains(t, msg, "not found")
}

func TestFlashcardGetTool(t *testing.T) {
	cs := connect(t, stubRenderer{})

	out := call[engine.FlashcardGetOutput](t, cs, "flashcard_get", map[string]any{"guide_id": "g-1", "index": 5})
	assert.Equal(t, 1, out.Index)
	assert.Equal(t, 2, out.Total)
	assert.Equal(t, "Explain glucose.", out.Question)
	assert.True(t, out.HasPrev)
	assert.False(t, out.HasNext)

	callErr(t, cs, "flashcard_get", map[string]any{"guide_id": "missing", "index": 0})
}

func TestFlowchartRenderTool(t *testing.T) {
	cs := connect(t, stubRenderer{})
	out := call[engine.FlowchartRenderOutput](t, cs, "flowchart_render", map[string]any{"guide_id": "g-1", "format": "PNG"})
	assert.Equal(t, "png", out.Format)
	assert.Contains(t, out.DOT, "digraph G {")
	img, err := base64.StdEncoding.DecodeString(out.Image)
	require.NoError(t, err)
	assert.Contains(t, string(img), "<png>")

	msg := callErr(t, cs, "flowchart_render", map[string]any{"guide_id": "g-1", "format": "gif"})
	assert.Contains(t, msg, "unsupported")
}

func TestFlowchartRenderWithoutRenderer(t *testing.T) {
	cs := connect(t, guide.NoneRenderer{})
	out := call[engine.FlowchartRenderOutput](t, cs, "flowchart_render", map[string]any{"guide_id": "g-1"})
	assert.Equal(t, "svg", out.Format)
	assert.Empty(t, out.Image)
	assert.Equal(t, "Light is captured by chlorophyll to make sugar.", out.Description)
}

func TestSummaryAudioTool(t *testing.T) {
	cs := connect(t, stubRenderer{})
	out := call[engine.SummaryAudioOutput](t, cs, "summary_audio", map[string]any{"guide_id": "g-1"})
	assert.Equal(t, "mp3", out.Format)
	assert.Equal(t, 8, out.Bytes)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("ID3audio")), out.Audio)
}

func TestVideoTranscriptTool(t *testing.T) {
	cs := connect(t, stubRenderer{})
	oldT, oldM := fetchTranscript, fetchMeta
	t.Cleanup(func() { fetchTranscript, fetchMeta = oldT, oldM })

	var gotLangs []string
	fetchTranscript = func(_ context.Context, id string, langs []string) (string, error) {
		gotLangs = langs
		return "hello from " + id, nil
	}
	fetchMeta = func(_ context.Context, id string) (engine.VideoMeta, error) {
		return engine.VideoMeta{ID: id, Title: "Greeting"}, nil
	}

	out := call[engine.VideoTranscriptOutput](t, cs, "video_transcript", map[string]any{
		"url": "https://youtu.be/zzzzzzzzzzz", "languages": []string{" DE ", "en", "de"},
	})
	assert.Equal(t, "zzzzzzzzzzz", out.VideoID)
	assert.Equal(t, "Greeting", out.Title)
	assert.Equal(t, "hello from zzzzzzzzzzz", out.Transcript)
	assert.Equal(t, len(out.Transcript), out.Chars)
	assert.Equal(t, []string{"de", "en"}, gotLangs)

	msg := callErr(t, cs, "video_transcript", map[string]any{"url": "https://vimeo.com/1"})
	assert.Contains(t, msg, "invalid")
}

func TestRequiredArguments(t *testing.T) {
	cs := connect(t, stubRenderer{})
	tests := []struct {
		tool string
		args map[string]any
		want string
	}{
		{"study_guide_generate", map[string]any{"url": ""}, "url is required"},
		{"study_guide_get", map[string]any{"id": ""}, "id is required"},
		{"quiz_answer", map[string]any{"guide_id": "g-1", "question_index": 0, "answer": ""}, "answer is required"},
		{"summary_audio", map[string]any{"guide_id": ""}, "guide_id is required"},
		{"learning_roadmap", map[string]any{"level": "beginner"}, "guide_id or topic is required"},
		{"learning_roadmap", map[string]any{"topic": "x", "level": "expert"}, "invalid learner level"},
	}
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			assert.Contains(t, callErr(t, cs, tt.tool, tt.args), tt.want)
		})
	}
}
