package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_study/internal/engine"
)

// YouTube search: Data API v3 with ytInitialData scraping fallback.

const (
	ytInitialDataMarker = "var ytInitialData = "
	ytSearchFilter      = "EgIQAQ%3D%3D" // videos-only filter param
	ytMaxResults        = 10
)

// ytDataAPIBase is a var so tests can point it at an httptest server.
var ytDataAPIBase = "https://www.googleapis.com/youtube/v3"

// --- YouTube Data API v3 types ---

type ytDataSearchResp struct {
	Items []ytDataItem `json:"items"`
}

type ytDataItem struct {
	ID      ytDataItemID      `json:"id"`
	Snippet ytDataItemSnippet `json:"snippet"`
}

type ytDataItemID struct {
	VideoID string `json:"videoId"`
}

type ytDataItemSnippet struct {
	Title        string                 `json:"title"`
	Description  string                 `json:"description"`
	ChannelTitle string                 `json:"channelTitle"`
	Thumbnails   map[string]ytThumbnail `json:"thumbnails"`
}

type ytThumbnail struct {
	URL string `json:"url"`
}

// --- ytInitialData scraping types ---

type ytVideoRenderer struct {
	VideoID string `json:"videoId"`
	Title   struct {
		Runs []struct{ Text string } `json:"runs"`
	} `json:"title"`
	OwnerText struct {
		Runs []struct{ Text string } `json:"runs"`
	} `json:"ownerText"`
	DescriptionSnippet *struct {
		Runs []struct{ Text string } `json:"runs"`
	} `json:"descriptionSnippet"`
	Thumbnail struct {
		Thumbnails []ytThumbnail `json:"thumbnails"`
	} `json:"thumbnail"`
}

// errQuota marks a Data API response that should be retried with the fallback key.
var errQuota = errors.New("youtube data API quota exceeded")

var (
	limiterMu  sync.Mutex
	limiter    *rate.Limiter
	limiterQPS float64
)

// dataAPILimiter returns the shared Data API limiter, rebuilt when YOUTUBE_QPS changes.
// QPS <= 0 disables throttling.
func dataAPILimiter() *rate.Limiter {
	limiterMu.Lock()
	defer limiterMu.Unlock()
	qps := engine.Cfg.YouTubeQPS
	if limiter == nil || qps != limiterQPS {
		if qps <= 0 {
			limiter = rate.NewLimiter(rate.Inf, 1)
		} else {
			limiter = rate.NewLimiter(rate.Limit(qps), 1)
		}
		limiterQPS = qps
	}
	return limiter
}

// SearchYouTube searches YouTube videos.
// Uses YouTube Data API v3 when a key is configured; otherwise scrapes ytInitialData.
func SearchYouTube(ctx context.Context, query, language string, limit int) ([]engine.YouTubeVideo, error) {
	engine.IncrYouTubeSearch()
	if limit <= 0 || limit > ytMaxResults {
		limit = 3
	}
	if engine.Cfg.YouTubeAPIKey != "" {
		videos, err := searchYouTubeDataAPI(ctx, query, language, limit)
		if err == nil {
			return videos, nil
		}
		slog.Warn("youtube: data API failed, scraping search page", slog.Any("error", err))
	}
	return searchYouTubeInitialData(ctx, query, limit)
}

// searchYouTubeDataAPI searches via YouTube Data API v3.
// Falls back to the secondary key on quota errors (403/429).
func searchYouTubeDataAPI(ctx context.Context, query, language string, limit int) ([]engine.YouTubeVideo, error) {
	keys := []string{engine.Cfg.YouTubeAPIKey}
	if engine.Cfg.YouTubeAPIKeyFallback != "" {
		keys = append(keys, engine.Cfg.YouTubeAPIKeyFallback)
	}
	var lastErr error
	for _, key := range keys {
		if err := dataAPILimiter().Wait(ctx); err != nil {
			return nil, err
		}
		videos, err := doYouTubeDataSearch(ctx, query, language, limit, key)
		if err == nil {
			return videos, nil
		}
		lastErr = err
		if !errors.Is(err, errQuota) {
			break
		}
		slog.Debug("youtube data API key exhausted, trying fallback", slog.Any("err", err))
	}
	return nil, lastErr
}

func doYouTubeDataSearch(ctx context.Context, query, language string, limit int, apiKey string) ([]engine.YouTubeVideo, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("order", "relevance")
	params.Set("maxResults", strconv.Itoa(limit))
	params.Set("key", apiKey)
	if language != "" && language != "all" {
		params.Set("relevanceLanguage", language)
	}

	apiURL := ytDataAPIBase + "/search?" + params.Encode()
	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentBot)
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("youtube data API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %d %s", errQuota, resp.StatusCode, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("youtube data API %d: %s", resp.StatusCode, string(body))
	}

	var result ytDataSearchResp
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode youtube data API: %w", err)
	}

	videos := make([]engine.YouTubeVideo, 0, len(result.Items))
	for _, item := range result.Items {
		if item.ID.VideoID == "" {
			continue
		}
		videos = append(videos, engine.YouTubeVideo{
			ID:        item.ID.VideoID,
			Title:     html2text(item.Snippet.Title),
			URL:       WatchURL(item.ID.VideoID),
			Channel:   item.Snippet.ChannelTitle,
			Thumbnail: pickThumbnail(item.Snippet.Thumbnails, item.ID.VideoID),
			Snippet:   engine.TruncateRunes(item.Snippet.Description, 200, ""),
		})
	}
	return videos, nil
}

// pickThumbnail prefers the high-quality thumbnail, then medium, then default.
func pickThumbnail(thumbs map[string]ytThumbnail, videoID string) string {
	for _, size := range []string{"high", "medium", "default"} {
		if t, ok := thumbs[size]; ok && t.URL != "" {
			return t.URL
		}
	}
	return ThumbnailURL(videoID)
}

// html2text undoes the entity escaping the Data API applies to titles.
func html2text(s string) string {
	r := strings.NewReplacer("&amp;", "&", "&#39;", "'", "&quot;", `"`, "&lt;", "<", "&gt;", ">")
	return r.Replace(s)
}

// searchYouTubeInitialData scrapes YouTube search results by parsing ytInitialData.
func searchYouTubeInitialData(ctx context.Context, query string, limit int) ([]engine.YouTubeVideo, error) {
	searchURL := ytBaseURL + "/results?search_query=" + url.QueryEscape(query) + "&sp=" + ytSearchFilter

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.RandomUserAgent())
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("youtube search page: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read youtube search response: %w", err)
	}

	idx := strings.Index(string(body), ytInitialDataMarker)
	if idx < 0 {
		return nil, errors.New("ytInitialData not found in YouTube search response")
	}
	jsonData := extractJSON(body[idx+len(ytInitialDataMarker):])
	if jsonData == nil {
		return nil, errors.New("failed to extract ytInitialData JSON")
	}
	return extractVideosFromInitialData(jsonData, limit), nil
}

// extractVideosFromInitialData recursively walks ytInitialData JSON for videoRenderer entries.
func extractVideosFromInitialData(data []byte, limit int) []engine.YouTubeVideo {
	var results []engine.YouTubeVideo
	var walk func(v json.RawMessage)
	walk = func(v json.RawMessage) {
		if len(results) >= limit {
			return
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(v, &obj); err == nil {
			if raw, ok := obj["videoRenderer"]; ok {
				var vr ytVideoRenderer
				if err := json.Unmarshal(raw, &vr); err == nil && vr.VideoID != "" {
					results = append(results, videoFromRenderer(vr))
					return
				}
			}
			for _, child := range obj {
				if len(results) >= limit {
					return
				}
				walk(child)
			}
			return
		}
		var arr []json.RawMessage
		if err := json.Unmarshal(v, &arr); err == nil {
			for _, item := range arr {
				if len(results) >= limit {
					return
				}
				walk(item)
			}
		}
	}
	walk(data)
	return results
}

func videoFromRenderer(vr ytVideoRenderer) engine.YouTubeVideo {
	title := ""
	if len(vr.Title.Runs) > 0 {
		title = vr.Title.Runs[0].Text
	}
	channel := ""
	if len(vr.OwnerText.Runs) > 0 {
		channel = vr.OwnerText.Runs[0].Text
	}
	var snippetParts []string
	if vr.DescriptionSnippet != nil {
		for _, r := range vr.DescriptionSnippet.Runs {
			snippetParts = append(snippetParts, r.Text)
		}
	}
	thumb := ThumbnailURL(vr.VideoID)
	if n := len(vr.Thumbnail.Thumbnails); n > 0 && vr.Thumbnail.Thumbnails[n-1].URL != "" {
		thumb = vr.Thumbnail.Thumbnails[n-1].URL
	}
	return engine.YouTubeVideo{
		ID:        vr.VideoID,
		Title:     title,
		URL:       WatchURL(vr.VideoID),
		Channel:   channel,
		Thumbnail: thumb,
		Snippet:   engine.TruncateRunes(strings.Join(snippetParts, ""), 200, ""),
	}
}
