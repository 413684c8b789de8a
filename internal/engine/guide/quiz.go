package guide

import (
	"errors"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_study/internal/engine"
)

// ErrMalformedQuestion is returned for quiz items that cannot be graded.
var ErrMalformedQuestion = errors.New("malformed quiz question")

var optionPrefixRE = regexp.MustCompile(`^[A-Z][).\s]+`)

// QuizResult is the outcome of grading one answer.
type QuizResult struct {
	Correct       bool   `json:"correct"`
	CorrectIndex  int    `json:"correct_index"`
	CorrectLetter string `json:"correct_letter"`
	Hint          string `json:"hint,omitempty"`
}

// OptionLetter maps 0 → "A", 1 → "B", ...
func OptionLetter(i int) string {
	if i < 0 || i >= 26 {
		return ""
	}
	return string(rune('A' + i))
}

// ResolveAnswerIndex maps the LLM's correct_answer onto an option index.
// Strategies in order: a bare letter, prefix-stripped containment, best word overlap.
// Returns -1 when nothing matches.
func ResolveAnswerIndex(options []string, answer string) int {
	if len(options) == 0 {
		return -1
	}
	want := strings.ToUpper(strings.TrimSpace(answer))
	if want == "" {
		return -1
	}

	if idx, ok := letterIndex(options, want); ok {
		return idx
	}

	stripped := stripOptions(options)
	for i, content := range stripped {
		if content == "" {
			continue
		}
		if content == want || strings.Contains(content, want) || strings.Contains(want, content) {
			return i
		}
	}

	wantWords := wordSet(want)
	best, bestScore := -1, 0
	for i, content := range stripped {
		score := 0
		for w := range wordSet(content) {
			if _, ok := wantWords[w]; ok {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

// letterIndex resolves a single option letter. ok is false when want is not a letter.
func letterIndex(options []string, want string) (int, bool) {
	if len(want) != 1 || want[0] < 'A' || want[0] > 'Z' {
		return -1, false
	}
	idx := int(want[0] - 'A')
	if idx >= len(options) {
		return -1, true
	}
	return idx, true
}

func stripOptions(options []string) []string {
	out := make([]string, len(options))
	for i, opt := range options {
		out[i] = strings.TrimSpace(optionPrefixRE.ReplaceAllString(strings.ToUpper(strings.TrimSpace(opt)), ""))
	}
	return out
}

func wordSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		out[w] = struct{}{}
	}
	return out
}

// Grade checks chosen against the item's resolved correct option.
func Grade(item engine.QuizItem, chosen int) (QuizResult, error) {
	if len(item.Options) < 2 {
		return QuizResult{}, ErrMalformedQuestion
	}
	correct := ResolveAnswerIndex(item.Options, item.CorrectAnswer)
	if correct < 0 {
		return QuizResult{}, ErrMalformedQuestion
	}
	res := QuizResult{
		Correct:       chosen == correct,
		CorrectIndex:  correct,
		CorrectLetter: OptionLetter(correct),
	}
	if !res.Correct {
		res.Hint = item.Hint
	}
	return res, nil
}

// ParseChoice maps a learner's answer to an option index, -1 if none.
// Unlike ResolveAnswerIndex it never guesses from shared words: the answer must be
// a letter, the option text, or a fragment of exactly one option.
func ParseChoice(options []string, choice string) int {
	want := strings.ToUpper(strings.TrimRight(strings.TrimSpace(choice), ").: "))
	if want == "" || len(options) == 0 {
		return -1
	}
	if idx, ok := letterIndex(options, want); ok {
		return idx
	}
	want = strings.TrimSpace(optionPrefixRE.ReplaceAllString(want, ""))
	stripped := stripOptions(options)
	for i, content := range stripped {
		if content == want {
			return i
		}
	}
	match := -1
	for i, content := range stripped {
		if content == "" || !strings.Contains(content, want) {
			continue
		}
		if match >= 0 {
			return -1
		}
		match = i
	}
	return match
}
