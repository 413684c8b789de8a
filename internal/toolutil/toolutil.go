// Package toolutil provides shared helper functions for go_study MCP tools and web handlers.
package toolutil

import (
	"encoding/base64"
	"strings"

	"github.com/anatolykoptev/go_study/internal/engine"
)

// NormLangs normalises a caption language list: trims, lowercases, drops blanks and
// duplicates. Empty input falls back to the configured TRANSCRIPT_LANGS.
func NormLangs(langs []string) []string {
	seen := make(map[string]bool, len(langs))
	var out []string
	for _, l := range langs {
		l = strings.ToLower(strings.TrimSpace(l))
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	if len(out) == 0 {
		return engine.Cfg.TranscriptLangs
	}
	return out
}

// NormFormat normalises an image format field: empty string → "svg".
func NormFormat(format string) string {
	f := strings.ToLower(strings.TrimSpace(format))
	f = strings.TrimPrefix(f, ".")
	if f == "" {
		return "svg"
	}
	return f
}

// ContentType maps a rendered media format to its MIME type.
func ContentType(format string) string {
	switch format {
	case "svg":
		return "image/svg+xml"
	case "png":
		return "image/png"
	case "mp3":
		return "audio/mpeg"
	}
	return "application/octet-stream"
}

// Base64 encodes binary tool output for JSON transport.
func Base64(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(data)
}
