package guide

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	"github.com/anatolykoptev/go_study/internal/engine"
)

// ErrNoText is returned when there is nothing to narrate.
var ErrNoText = errors.New("no text to synthesize")

// ErrAudioDisabled is returned by the none backend.
var ErrAudioDisabled = errors.New("audio synthesis disabled")

const gttsMaxChunk = 200

// gttsEndpoint is a var so tests can point it at an httptest server.
var gttsEndpoint = "https://translate.google.com/translate_tts"

var narrationStrip = strings.NewReplacer("**", "", "__", "", "@@", "", "`", "", "$", "", "#", "")

// Synthesizer turns text into MP3 audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)
}

// NewSynthesizer picks the backend named by TTS_BACKEND (gtts, openai, none).
func NewSynthesizer(c *engine.Config) Synthesizer {
	switch strings.ToLower(c.TTSBackend) {
	case "openai":
		model := c.TTSModel
		if model == "" {
			model = "tts-1"
		}
		voice := c.TTSVoice
		if voice == "" {
			voice = "alloy"
		}
		return &OpenAISynthesizer{
			BaseURL: strings.TrimRight(c.LLMAPIBase, "/"),
			APIKey:  c.LLMAPIKey,
			Model:   model,
			Voice:   voice,
			Client:  c.MediaClient,
		}
	case "none":
		return NoneSynthesizer{}
	default:
		return &GTTSSynthesizer{Client: c.HTTPClient}
	}
}

// NarrationText strips markdown and keyword markers so the voice doesn't read them out.
func NarrationText(s string) string {
	return engine.CollapseSpace(narrationStrip.Replace(StripKeywordMarkers(s)))
}

// GTTSSynthesizer uses the Google Translate TTS endpoint, one request per ≤200-rune chunk.
type GTTSSynthesizer struct {
	Client *http.Client
}

func (s *GTTSSynthesizer) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrNoText
	}
	if lang == "" {
		lang = "en"
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	chunks := chunkText(text, gttsMaxChunk)
	var out bytes.Buffer
	for i, chunk := range chunks {
		q := url.Values{}
		q.Set("ie", "UTF-8")
		q.Set("client", "tw-ob")
		q.Set("tl", lang)
		q.Set("q", chunk)
		q.Set("total", fmt.Sprint(len(chunks)))
		q.Set("idx", fmt.Sprint(i))
		q.Set("textlen", fmt.Sprint(len([]rune(chunk))))
		endpoint := gttsEndpoint + "?" + q.Encode()

		resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return nil, err
			}
			req.Header.Set("User-Agent", engine.RandomUserAgent())
			req.Header.Set("Referer", "https://translate.google.com/")
			return client.Do(req)
		})
		if err != nil {
			return nil, fmt.Errorf("gtts chunk %d: %w", i, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("gtts chunk %d: HTTP %d", i, resp.StatusCode)
		}
		_, err = io.Copy(&out, io.LimitReader(resp.Body, 4*1024*1024))
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("gtts chunk %d: %w", i, err)
		}
	}
	return out.Bytes(), nil
}

// chunkText splits text into pieces of at most limit runes, preferring sentence
// ends, then word boundaries. Words longer than limit are hard-cut.
func chunkText(text string, limit int) []string {
	var chunks []string
	rest := []rune(strings.TrimSpace(text))
	for len(rest) > 0 {
		if len(rest) <= limit {
			chunks = append(chunks, string(rest))
			break
		}
		cut := -1
		for i := limit; i > 0; i-- {
			if r := rest[i-1]; r == '.' || r == '!' || r == '?' || r == ';' {
				cut = i
				break
			}
		}
		if cut < 0 {
			for i := limit; i > 0; i-- {
				if unicode.IsSpace(rest[i]) {
					cut = i
					break
				}
			}
		}
		if cut <= 0 {
			cut = limit
		}
		if c := strings.TrimSpace(string(rest[:cut])); c != "" {
			chunks = append(chunks, c)
		}
		rest = []rune(strings.TrimLeftFunc(string(rest[cut:]), unicode.IsSpace))
	}
	return chunks
}

// OpenAISynthesizer calls an OpenAI-compatible /audio/speech endpoint.
type OpenAISynthesizer struct {
	BaseURL string
	APIKey  string
	Model   string
	Voice   string
	Client  *http.Client
}

func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text, _ string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrNoText
	}
	if s.BaseURL == "" {
		return nil, errors.New("openai tts: LLM_API_BASE not set")
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	body, err := json.Marshal(map[string]string{
		"model":           s.Model,
		"voice":           s.Voice,
		"input":           text,
		"response_format": "mp3",
	})
	if err != nil {
		return nil, err
	}

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/audio/speech", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if s.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+s.APIKey)
		}
		return client.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("openai tts: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("openai tts HTTP %d: %s", resp.StatusCode, snippet)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 25*1024*1024))
}

// NoneSynthesizer disables narration.
type NoneSynthesizer struct{}

func (NoneSynthesizer) Synthesize(context.Context, string, string) ([]byte, error) {
	return nil, ErrAudioDisabled
}
