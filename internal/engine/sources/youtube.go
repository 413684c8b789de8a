package sources

// YouTube implementation is split across files by responsibility:
//   youtube.go            - URL parsing (video IDs, watch URLs)
//   youtube_innertube.go  - Innertube API types, constants, and low-level HTTP primitives
//   youtube_transcript.go - transcript fetching (watch page, engagement panel, ANDROID player)
//   youtube_meta.go       - watch-page <meta> tags → engine.VideoMeta
//   youtube_search.go     - video search (Data API v3 + ytInitialData scraping)
//   whisper.go            - yt-dlp + Whisper fallback when no captions exist

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	videoIDRE     = regexp.MustCompile(`(?:youtube\.com/(?:watch\?(?:.*&)?v=|shorts/|embed/|live/|v/)|youtu\.be/)([a-zA-Z0-9_-]{11})`)
	bareVideoIDRE = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
)

// ExtractVideoID pulls the 11-char video ID from any YouTube URL format.
// A bare 11-char ID is returned as-is. Returns "" when nothing matches.
func ExtractVideoID(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	if bareVideoIDRE.MatchString(s) {
		return s
	}
	if m := videoIDRE.FindStringSubmatch(s); len(m) >= 2 {
		return m[1]
	}
	// watch URLs where v= is not the first query param and the regexp missed it
	if u, err := url.Parse(s); err == nil && strings.HasSuffix(u.Hostname(), "youtube.com") {
		if v := u.Query().Get("v"); bareVideoIDRE.MatchString(v) {
			return v
		}
	}
	return ""
}

// IsYouTubeURL reports whether the input looks like a YouTube link.
func IsYouTubeURL(rawURL string) bool {
	s := strings.ToLower(rawURL)
	return strings.Contains(s, "youtube.com") || strings.Contains(s, "youtu.be")
}

// WatchURL builds the canonical watch URL for a video ID.
func WatchURL(videoID string) string {
	return ytBaseURL + "/watch?v=" + videoID
}

// ThumbnailURL is the high-quality thumbnail YouTube serves for every video.
func ThumbnailURL(videoID string) string {
	return "https://i.ytimg.com/vi/" + videoID + "/hqdefault.jpg"
}
