package engine

import (
	"context"
	"errors"
	"strings"

	"github.com/anatolykoptev/go-kit/llm"
)

// ErrNoLLM is returned when neither an LLM client nor a completer is configured.
var ErrNoLLM = errors.New("llm: not configured")

// stripFences removes a wrapping markdown code fence from LLM output.
// Fences inside the text are left alone.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```markdown")
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// CallLLM sends a prompt using the configured temperature and max_tokens.
func CallLLM(ctx context.Context, system, prompt string) (string, error) {
	metrics.LLMCalls.Add(1)
	var (
		resp string
		err  error
	)
	switch {
	case cfg.Complete != nil:
		resp, err = cfg.Complete(ctx, system, prompt)
	case cfg.LLMClient != nil:
		resp, err = cfg.LLMClient.Complete(ctx, system, prompt)
	default:
		err = ErrNoLLM
	}
	if err != nil {
		metrics.LLMErrors.Add(1)
		return "", err
	}
	return stripFences(resp), nil
}

// CallLLMShort is for one-line answers: low temperature, small token budget.
func CallLLMShort(ctx context.Context, prompt string) (string, error) {
	if cfg.Complete != nil || cfg.LLMClient == nil {
		return CallLLM(ctx, "", prompt)
	}
	metrics.LLMCalls.Add(1)
	raw, err := cfg.LLMClient.Complete(ctx, "", prompt,
		llm.WithChatTemperature(0.3),
		llm.WithChatMaxTokens(100),
	)
	if err != nil {
		metrics.LLMErrors.Add(1)
		return "", err
	}
	return stripFences(raw), nil
}
