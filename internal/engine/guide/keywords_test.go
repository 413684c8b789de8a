package guide

import (
	"strings"
	"testing"
)

func TestKeywordColorDeterministic(t *testing.T) {
	c1 := KeywordColor("Photosynthesis")
	c2 := KeywordColor(" photosynthesis ")
	if c1 != c2 {
		t.Errorf("colour differs by case/space: %s vs %s", c1, c2)
	}
	found := false
	for _, p := range KeywordPalette {
		if p == c1 {
			found = true
		}
	}
	if !found {
		t.Errorf("colour %s not in palette", c1)
	}
}

func TestHighlightEscapedMarkers(t *testing.T) {
	out := HighlightEscaped("Learn @@ATP@@ and @@&lt;DNA&gt;@@ today")
	if strings.Contains(out, "@@") {
		t.Errorf("markers left: %s", out)
	}
	if !strings.Contains(out, ">ATP</span>") {
		t.Errorf("ATP span missing: %s", out)
	}
	if !strings.Contains(out, "&lt;DNA&gt;</span>") {
		t.Errorf("escaped keyword changed: %s", out)
	}
	if !strings.Contains(out, "background-color:"+KeywordColor("ATP")) {
		t.Errorf("colour missing: %s", out)
	}
}

func TestStripKeywordMarkers(t *testing.T) {
	if got := StripKeywordMarkers("a @@b@@ c"); got != "a b c" {
		t.Errorf("got %q", got)
	}
}

func TestHighlightEscaped(t *testing.T) {
	out := HighlightEscaped("<p>Study @@AT&amp;T@@ now</p>")
	if !strings.Contains(out, ">AT&amp;T</span>") {
		t.Errorf("keyword double-escaped or missing: %s", out)
	}
	if !strings.Contains(out, "background-color:"+KeywordColor("AT&T")) {
		t.Errorf("colour should hash the unescaped keyword: %s", out)
	}
}
