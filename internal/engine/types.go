package engine

import "time"

// --- Study guide types ---

// JargonEntry is one row of the jargon buster.
type JargonEntry struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// QuizItem is a multiple-choice question as the LLM emits it.
type QuizItem struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Hint          string   `json:"hint,omitempty"`
}

// Flashcard is an open-ended review question.
type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// VideoMeta is what the watch page tells us about a video.
type VideoMeta struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	Channel     string `json:"channel,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	Description string `json:"description,omitempty"`
}

// Recommendation is a suggested next video for the learning roadmap.
type Recommendation struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Channel   string `json:"channel,omitempty"`
}

// StudyGuide is the generated bundle for one video. Immutable once generated,
// except for Recommendations which are filled lazily per level.
type StudyGuide struct {
	ID                   string                      `json:"id"`
	VideoURL             string                      `json:"video_url"`
	VideoID              string                      `json:"video_id"`
	Video                VideoMeta                   `json:"video"`
	Title                string                      `json:"title"`
	Summary              string                      `json:"summary"`
	Jargon               []JargonEntry               `json:"jargon"`
	Mnemonics            []string                    `json:"mnemonics"`
	Takeaways            []string                    `json:"takeaways"`
	FlowchartSpec        string                      `json:"flowchart_spec,omitempty"`
	FlowchartDescription string                      `json:"flowchart_description,omitempty"`
	Quiz                 []QuizItem                  `json:"quiz"`
	Flashcards           []Flashcard                 `json:"flashcards"`
	Topic                string                      `json:"topic,omitempty"`
	Notes                string                      `json:"notes"`
	HasAudio             bool                        `json:"has_audio"`
	Recommendations      map[string][]Recommendation `json:"recommendations,omitempty"`
	CreatedAt            time.Time                   `json:"created_at"`
}

// YouTubeVideo is a search hit, optionally with its transcript.
type YouTubeVideo struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	Channel    string `json:"channel,omitempty"`
	Thumbnail  string `json:"thumbnail,omitempty"`
	Snippet    string `json:"snippet,omitempty"`
	Transcript string `json:"transcript,omitempty"`
}

// --- Tool inputs ---

type StudyGuideGenerateInput struct {
	URL string `json:"url" jsonschema:"YouTube video URL (youtube.com/watch?v=..., youtu.be/..., shorts)"`
}

type StudyGuideGetInput struct {
	ID string `json:"id" jsonschema:"Study guide ID returned by study_guide_generate"`
}

type StudyGuideListInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max guides to return (default: 20)"`
}

type VideoTranscriptInput struct {
	URL       string   `json:"url" jsonschema:"YouTube video URL or 11-char video ID"`
	Languages []string `json:"languages,omitempty" jsonschema:"Preferred caption languages in order (default: en)"`
}

type LearningRoadmapInput struct {
	GuideID string `json:"guide_id,omitempty" jsonschema:"Study guide ID; its topic is used when topic is empty"`
	Topic   string `json:"topic,omitempty" jsonschema:"Topic phrase (e.g. Quantum Physics Basics)"`
	Level   string `json:"level" jsonschema:"Learner level: Beginner, Intermediate, Advanced"`
}

type QuizAnswerInput struct {
	GuideID       string `json:"guide_id" jsonschema:"Study guide ID"`
	QuestionIndex int    `json:"question_index" jsonschema:"0-based question index"`
	Answer        string `json:"answer" jsonschema:"Chosen option: a letter (A-D) or the option text"`
}

type FlashcardGetInput struct {
	GuideID string `json:"guide_id" jsonschema:"Study guide ID"`
	Index   int    `json:"index" jsonschema:"0-based flashcard index"`
}

type FlowchartRenderInput struct {
	GuideID string `json:"guide_id" jsonschema:"Study guide ID"`
	Format  string `json:"format,omitempty" jsonschema:"Output format: svg (default) or png"`
}

type SummaryAudioInput struct {
	GuideID string `json:"guide_id" jsonschema:"Study guide ID"`
}

// --- Tool outputs ---

type StudyGuideListOutput struct {
	Guides []StudyGuideSummary `json:"guides"`
	Total  int                 `json:"total"`
}

// StudyGuideSummary is a compact listing row.
type StudyGuideSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	VideoURL  string    `json:"video_url"`
	Topic     string    `json:"topic,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type VideoTranscriptOutput struct {
	VideoID    string `json:"video_id"`
	Title      string `json:"title,omitempty"`
	Transcript string `json:"transcript"`
	Chars      int    `json:"chars"`
}

type LearningRoadmapOutput struct {
	Topic           string           `json:"topic"`
	Level           string           `json:"level"`
	Recommendations []Recommendation `json:"recommendations"`
}

type QuizAnswerOutput struct {
	Correct       bool   `json:"correct"`
	CorrectIndex  int    `json:"correct_index"`
	CorrectLetter string `json:"correct_letter"`
	CorrectOption string `json:"correct_option"`
	Hint          string `json:"hint,omitempty"`
	Remaining     int    `json:"remaining"`
}

type FlashcardGetOutput struct {
	Index    int    `json:"index"`
	Total    int    `json:"total"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	HasPrev  bool   `json:"has_prev"`
	HasNext  bool   `json:"has_next"`
}

type FlowchartRenderOutput struct {
	Format      string `json:"format"`
	Description string `json:"description,omitempty"`
	DOT         string `json:"dot"`
	Image       string `json:"image,omitempty"` // base64; empty when no renderer is available
}

type SummaryAudioOutput struct {
	Format string `json:"format"`
	Bytes  int    `json:"bytes"`
	Audio  string `json:"audio"` // base64 mp3
}
