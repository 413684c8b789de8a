package guide

import (
	"hash/fnv"
	"html"
	"regexp"
	"strings"
)

// KeywordPalette holds the pastel backgrounds used for @@keyword@@ highlights.
var KeywordPalette = []string{"#FFD6A5", "#FDFFB6", "#CAFFBF", "#9BF6FF", "#A9DEF9", "#FFC0CB"}

var keywordRE = regexp.MustCompile(`@@(.+?)@@`)

// KeywordColor picks a palette colour from the FNV hash of the lowercased keyword,
// so the same term always gets the same colour.
func KeywordColor(keyword string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(keyword))))
	return KeywordPalette[h.Sum32()%uint32(len(KeywordPalette))]
}

// HighlightEscaped replaces @@keyword@@ markers in already-escaped HTML with coloured
// <span> elements. The colour hashes the unescaped keyword.
func HighlightEscaped(s string) string {
	return keywordRE.ReplaceAllStringFunc(s, func(m string) string {
		kw := keywordRE.FindStringSubmatch(m)[1]
		return keywordSpan(KeywordColor(html.UnescapeString(kw)), kw)
	})
}

func keywordSpan(color, text string) string {
	return `<span class="kw" style="background-color:` + color +
		`;color:#121212;padding:2px 6px;border-radius:5px;font-weight:600">` + text + `</span>`
}

// StripKeywordMarkers removes @@ markers, for plain-text consumers like TTS.
func StripKeywordMarkers(s string) string {
	return keywordRE.ReplaceAllString(s, "$1")
}
