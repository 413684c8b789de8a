package guide

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_study/internal/engine"
)

func TestChunkText(t *testing.T) {
	t.Run("short text is one chunk", func(t *testing.T) {
		assert.Equal(t, []string{"Hello world."}, chunkText("Hello world.", 200))
	})

	t.Run("splits at sentence end", func(t *testing.T) {
		got := chunkText("One two. Three four five.", 12)
		assert.Equal(t, []string{"One two.", "Three four", "five."}, got)
	})

	t.Run("respects limit in runes", func(t *testing.T) {
		text := strings.Repeat("фотосинтез ", 60)
		for _, c := range chunkText(text, 200) {
			assert.LessOrEqual(t, utf8.RuneCountInString(c), 200)
			assert.NotEmpty(t, c)
		}
	})

	t.Run("hard cut for long words", func(t *testing.T) {
		got := chunkText(strings.Repeat("x", 25), 10)
		assert.Equal(t, []string{strings.Repeat("x", 10), strings.Repeat("x", 10), strings.Repeat("x", 5)}, got)
	})
}

func TestNarrationText(t *testing.T) {
	assert.Equal(t, "Plants use light and E=mc^2 here.", NarrationText("## Plants use **light** and $E=mc^2$\n@@here@@."))
}

func TestGTTSSynthesizer(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		q := r.URL.Query()
		if q.Get("tl") != "en" || q.Get("client") != "tw-ob" || q.Get("q") == "" {
			http.Error(w, "bad", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte("mp3-" + q.Get("idx") + ";"))
	}))
	defer srv.Close()
	old := gttsEndpoint
	gttsEndpoint = srv.URL
	defer func() { gttsEndpoint = old }()

	s := &GTTSSynthesizer{Client: srv.Client()}
	text := strings.Repeat("Sentence number one is here. ", 10)
	out, err := s.Synthesize(context.Background(), text, "")
	require.NoError(t, err)

	n := int(calls.Load())
	assert.Greater(t, n, 1)
	assert.True(t, strings.HasPrefix(string(out), "mp3-0;mp3-1;"), string(out))

	_, err = s.Synthesize(context.Background(), "  ", "en")
	assert.ErrorIs(t, err, ErrNoText)
}

func TestOpenAISynthesizer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if r.URL.Path != "/v1/audio/speech" || body["voice"] != "nova" || body["input"] != "hi" || r.Header.Get("Authorization") != "Bearer k" {
			http.Error(w, "bad", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte("ID3"))
	}))
	defer srv.Close()

	s := NewSynthesizer(&engine.Config{
		TTSBackend:  "openai",
		TTSVoice:    "nova",
		LLMAPIBase:  srv.URL + "/v1/",
		LLMAPIKey:   "k",
		MediaClient: srv.Client(),
	})
	out, err := s.Synthesize(context.Background(), "hi", "en")
	require.NoError(t, err)
	assert.Equal(t, "ID3", string(out))
}

func TestNewSynthesizerClients(t *testing.T) {
	fetch := &http.Client{Timeout: 15 * time.Second}
	media := &http.Client{Timeout: 5 * time.Minute}
	c := &engine.Config{HTTPClient: fetch, MediaClient: media}

	c.TTSBackend = "openai"
	o, ok := NewSynthesizer(c).(*OpenAISynthesizer)
	require.True(t, ok)
	assert.Same(t, media, o.Client)

	c.TTSBackend = "gtts"
	g, ok := NewSynthesizer(c).(*GTTSSynthesizer)
	require.True(t, ok)
	assert.Same(t, fetch, g.Client)

	c.FlowchartBackend = "kroki"
	k, ok := NewRenderer(c).(*KrokiRenderer)
	require.True(t, ok)
	assert.Same(t, media, k.Client)
}

func TestNoneSynthesizer(t *testing.T) {
	_, err := NewSynthesizer(&engine.Config{TTSBackend: "none"}).Synthesize(context.Background(), "x", "en")
	assert.ErrorIs(t, err, ErrAudioDisabled)
}
