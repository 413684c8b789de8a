package sources

import (
	"encoding/json"
	"testing"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch extra params", "https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ&t=42", "dQw4w9WgXcQ"},
		{"mobile", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ"},
		{"shorts", "https://youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"bare id", "dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"bare id padded", "  dQw4w9WgXcQ\n", "dQw4w9WgXcQ"},
		{"no id", "https://www.youtube.com/feed/trending", ""},
		{"other site", "https://vimeo.com/12345", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractVideoID(tt.in); got != tt.want {
				t.Errorf("ExtractVideoID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsYouTubeURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"https://YOUTU.BE/dQw4w9WgXcQ", true},
		{"https://vimeo.com/1", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsYouTubeURL(tt.in); got != tt.want {
			t.Errorf("IsYouTubeURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWatchAndThumbnailURL(t *testing.T) {
	if got := WatchURL("abcdefghijk"); got != "https://www.youtube.com/watch?v=abcdefghijk" {
		t.Errorf("WatchURL = %q", got)
	}
	if got := ThumbnailURL("abcdefghijk"); got != "https://i.ytimg.com/vi/abcdefghijk/hqdefault.jpg" {
		t.Errorf("ThumbnailURL = %q", got)
	}
}

func jsonUnmarshal(s string, v any) error {
	return json.Unmarshal([]byte(s), v)
}
