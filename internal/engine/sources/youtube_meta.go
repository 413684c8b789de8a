package sources

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/anatolykoptev/go_study/internal/engine"
)

// FetchVideoMeta reads title, channel, thumbnail and description from the watch page <meta> tags.
func FetchVideoMeta(ctx context.Context, videoID string) (engine.VideoMeta, error) {
	engine.IncrYouTubeMeta()

	body, err := fetchWatchPage(ctx, videoID)
	if err != nil {
		return engine.VideoMeta{ID: videoID}, fmt.Errorf("video meta: %w", err)
	}
	meta, err := parseWatchMeta(body, videoID)
	if err != nil {
		return meta, fmt.Errorf("video meta: %w", err)
	}
	return meta, nil
}

const maxDescriptionRunes = 500

// parseWatchMeta walks the document for og:* and itemprop tags.
// Missing thumbnails fall back to the hqdefault URL.
func parseWatchMeta(body []byte, videoID string) (engine.VideoMeta, error) {
	meta := engine.VideoMeta{ID: videoID}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return meta, err
	}

	var titleTag string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				applyMetaTag(&meta, n)
			case "link":
				// <span itemprop="author"><link itemprop="name" content="Channel"></span>
				if attr(n, "itemprop") == "name" && n.Parent != nil && attr(n.Parent, "itemprop") == "author" && meta.Channel == "" {
					meta.Channel = attr(n, "content")
				}
			case "title":
				if n.FirstChild != nil && titleTag == "" {
					titleTag = n.FirstChild.Data
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if meta.Title == "" {
		meta.Title = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(titleTag), "- YouTube"))
	}
	if meta.Thumbnail == "" {
		meta.Thumbnail = ThumbnailURL(videoID)
	}
	meta.Description = engine.TruncateAtWord(meta.Description, maxDescriptionRunes)
	return meta, nil
}

func applyMetaTag(meta *engine.VideoMeta, n *html.Node) {
	content := strings.TrimSpace(attr(n, "content"))
	if content == "" {
		return
	}
	key := attr(n, "property")
	if key == "" {
		key = attr(n, "name")
	}
	if key == "" {
		key = "itemprop:" + attr(n, "itemprop")
	}
	switch key {
	case "og:title":
		meta.Title = content
	case "itemprop:name", "title":
		if meta.Title == "" {
			meta.Title = content
		}
	case "og:image":
		meta.Thumbnail = content
	case "og:description", "description":
		if meta.Description == "" {
			meta.Description = content
		}
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
