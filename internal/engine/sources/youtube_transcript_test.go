package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anatolykoptev/go_study/internal/engine"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", `{"a":1};var x`, `{"a":1}`},
		{"nested", `{"a":{"b":[1,{"c":2}]}} trailing`, `{"a":{"b":[1,{"c":2}]}}`},
		{"brace in string", `{"a":"}{"};`, `{"a":"}{"}`},
		{"escaped quote", `{"a":"x\"}"} rest`, `{"a":"x\"}"}`},
		{"escaped backslash", `{"a":"x\\"} rest`, `{"a":"x\\"}`},
		{"not object", `[1,2]`, ""},
		{"unterminated", `{"a":1`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(extractJSON([]byte(tt.in))); got != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPickBestTrack(t *testing.T) {
	tracks := []captionTrack{
		{BaseURL: "u1&exp=xpe", LanguageCode: "en"},
		{BaseURL: "u2", LanguageCode: "de"},
		{BaseURL: "u3", LanguageCode: "en", Kind: "asr"},
		{BaseURL: "u4", LanguageCode: "fr"},
	}
	tests := []struct {
		name  string
		langs []string
		want  string
	}{
		{"manual preferred", []string{"de"}, "u2"},
		{"asr in preferred language", []string{"en"}, "u3"},
		{"english fallback", []string{"ja"}, "u3"},
		{"skips potoken", []string{"en", "fr"}, "u3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pickBestTrack(tracks, tt.langs)
			if !ok {
				t.Fatal("expected usable track")
			}
			if got.BaseURL != tt.want {
				t.Errorf("pickBestTrack(%v) = %q, want %q", tt.langs, got.BaseURL, tt.want)
			}
		})
	}

	if _, ok := pickBestTrack([]captionTrack{{BaseURL: "x&exp=xpe"}}, []string{"en"}); ok {
		t.Error("expected no usable track when all need PoToken")
	}
}

func TestExtractTranscriptToken(t *testing.T) {
	data := []byte(`{"x":{"getTranscriptEndpoint":{"params":"Cgt%3D%3D"}}}`)
	got, err := extractTranscriptToken(data)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Cgt==" {
		t.Errorf("token = %q, want %q", got, "Cgt==")
	}
	if _, err := extractTranscriptToken([]byte(`{}`)); err == nil {
		t.Error("expected error for missing endpoint")
	}
}

func TestParseTranscriptSegments(t *testing.T) {
	var resp ytGetTranscriptResp
	raw := `{"actions":[{"updateEngagementPanelAction":{"content":{"transcriptRenderer":{"content":{"transcriptSearchPanelRenderer":{"body":{"transcriptSegmentListRenderer":{"initialSegments":[
		{"transcriptSegmentRenderer":{"snippet":{"runs":[{"text":"Plants make"}]}}},
		{"transcriptSegmentRenderer":{"snippet":{"runs":[{"text":"food from light."}]}}}
	]}}}}}}}}]}`
	if err := jsonUnmarshal(raw, &resp); err != nil {
		t.Fatal(err)
	}
	if got := parseTranscriptSegments(resp); got != "Plants make food from light." {
		t.Errorf("parseTranscriptSegments = %q", got)
	}
}

// newYouTubeStub serves a watch page whose only caption track points back at the stub.
func newYouTubeStub(t *testing.T, captions bool) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/watch":
			player := `{"playabilityStatus":{"status":"OK"}}`
			if captions {
				player = fmt.Sprintf(`{"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[{"baseUrl":"%s/timedtext?v=abc","languageCode":"en"}]}}}`, srv.URL)
			}
			fmt.Fprintf(w, `<html><head><meta property="og:title" content="Photosynthesis 101"></head><body><script>var ytInitialPlayerResponse = %s;</script></body></html>`, player)
		case "/timedtext":
			fmt.Fprint(w, `<?xml version="1.0"?><transcript><text start="0">Plants &amp;amp; light</text><text start="2">make &lt;b&gt;sugar&lt;/b&gt;</text></transcript>`)
		default:
			http.Error(w, "nope", http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func withYouTubeBase(t *testing.T, base string) {
	t.Helper()
	old := ytBaseURL
	ytBaseURL = base
	t.Cleanup(func() { ytBaseURL = old })
}

func TestFetchYouTubeTranscriptPageScrape(t *testing.T) {
	engine.Init(engine.Config{})
	srv := newYouTubeStub(t, true)
	withYouTubeBase(t, srv.URL)

	got, err := FetchYouTubeTranscript(context.Background(), "abcdefghijk", []string{"en"})
	if err != nil {
		t.Fatalf("FetchYouTubeTranscript: %v", err)
	}
	if !strings.Contains(got, "Plants") || !strings.Contains(got, "make sugar") {
		t.Errorf("transcript = %q", got)
	}
}

func TestFetchYouTubeTranscriptNoCaptions(t *testing.T) {
	engine.Init(engine.Config{})
	srv := newYouTubeStub(t, false)
	withYouTubeBase(t, srv.URL)

	_, err := FetchYouTubeTranscript(context.Background(), "abcdefghijk", nil)
	if !errors.Is(err, engine.ErrNoTranscript) {
		t.Fatalf("err = %v, want ErrNoTranscript", err)
	}
}

func TestFetchYouTubeTranscriptEmptyCaptions(t *testing.T) {
	engine.Init(engine.Config{})
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/watch":
			fmt.Fprintf(w, `<script>var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[{"baseUrl":"%s/timedtext?v=abc","languageCode":"en"}]}}};</script>`, srv.URL)
		case "/timedtext":
			fmt.Fprint(w, `<?xml version="1.0"?><transcript></transcript>`)
		default:
			http.Error(w, "nope", http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	withYouTubeBase(t, srv.URL)

	_, err := FetchYouTubeTranscript(context.Background(), "abcdefghijk", []string{"en"})
	if !errors.Is(err, engine.ErrNoTranscript) {
		t.Fatalf("err = %v, want ErrNoTranscript", err)
	}
	if !strings.Contains(err.Error(), "page scrape: empty transcript") {
		t.Errorf("err = %v, want the empty page scrape recorded", err)
	}
	if strings.Contains(err.Error(), "%!w") {
		t.Errorf("malformed error: %v", err)
	}
}

func TestStrategyError(t *testing.T) {
	if err := strategyError("player", nil); !errors.Is(err, errEmptyTranscript) || err.Error() != "player: empty transcript" {
		t.Errorf("nil err = %v", err)
	}
	cause := errors.New("boom")
	if err := strategyError("player", cause); !errors.Is(err, cause) {
		t.Errorf("wrapped err = %v", err)
	}
}
