package guide

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/anatolykoptev/go_study/internal/engine"
)

// ErrRenderUnavailable means no diagram backend is configured or reachable.
var ErrRenderUnavailable = errors.New("flowchart renderer unavailable")

// ErrUnsupportedFormat is returned for formats other than svg and png.
var ErrUnsupportedFormat = errors.New("unsupported flowchart format")

// dotTheme is injected after the graph's opening brace: dark-mode friendly boxes on a transparent canvas.
const dotTheme = `
    bgcolor="transparent";
    node [style="filled,rounded", shape="box", fillcolor="#AEC6CF", fontcolor="#121212", color="#FFFFFF", penwidth=2, fontname="Inter"];
    edge [color="#FFFFFF", fontname="Inter"];
`

const renderTimeout = 20 * time.Second

// execCommand is swapped in tests.
var execCommand = exec.CommandContext

// graphHeaderRE matches a DOT graph header, so identifiers like GraphTheory still get wrapped.
var graphHeaderRE = regexp.MustCompile(`(?i)^(strict\s+)?(di)?graph(\s|\{)`)

// StyleDOT wraps bare statements in a digraph and injects the theme.
func StyleDOT(spec string) string {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return ""
	}
	if !graphHeaderRE.MatchString(spec) {
		spec = "digraph G {\n" + spec + "\n}"
	}
	i := strings.Index(spec, "{")
	if i < 0 {
		return spec
	}
	return spec[:i+1] + dotTheme + spec[i+1:]
}

// Renderer turns DOT source into an image.
type Renderer interface {
	Render(ctx context.Context, dot, format string) ([]byte, error)
}

// NewRenderer picks the backend named by FLOWCHART_BACKEND (dot, kroki, none).
func NewRenderer(c *engine.Config) Renderer {
	switch strings.ToLower(c.FlowchartBackend) {
	case "kroki":
		base := c.KrokiURL
		if base == "" {
			base = "https://kroki.io"
		}
		return &KrokiRenderer{BaseURL: strings.TrimRight(base, "/"), Client: c.MediaClient}
	case "none":
		return NoneRenderer{}
	default:
		path := c.DotPath
		if path == "" {
			path = "dot"
		}
		return &DotRenderer{Path: path}
	}
}

func checkFormat(format string) error {
	switch format {
	case "svg", "png":
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// DotRenderer shells out to the graphviz dot binary.
type DotRenderer struct {
	Path string
}

func (r *DotRenderer) Render(ctx context.Context, dot, format string) ([]byte, error) {
	if err := checkFormat(format); err != nil {
		return nil, err
	}
	if _, err := exec.LookPath(r.Path); err != nil {
		return nil, fmt.Errorf("%w: %s not found", ErrRenderUnavailable, r.Path)
	}
	ctx, cancel := context.WithTimeout(ctx, renderTimeout)
	defer cancel()

	cmd := execCommand(ctx, r.Path, "-T"+format)
	cmd.Stdin = strings.NewReader(dot)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("dot: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// KrokiRenderer posts the source to a Kroki server.
type KrokiRenderer struct {
	BaseURL string
	Client  *http.Client
}

func (r *KrokiRenderer) Render(ctx context.Context, dot, format string) ([]byte, error) {
	if err := checkFormat(format); err != nil {
		return nil, err
	}
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	endpoint := r.BaseURL + "/graphviz/" + format

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(dot))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "text/plain")
		req.Header.Set("User-Agent", engine.UserAgentBot)
		return client.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: kroki: %w", ErrRenderUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("kroki HTTP %d: %s", resp.StatusCode, snippet)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 8*1024*1024))
}

// NoneRenderer disables image rendering; callers fall back to the DOT text.
type NoneRenderer struct{}

func (NoneRenderer) Render(context.Context, string, string) ([]byte, error) {
	return nil, ErrRenderUnavailable
}

// RenderFlowchart renders g's flowchart in format, caching the image per guide.
func RenderFlowchart(ctx context.Context, r Renderer, g *engine.StudyGuide, format string) ([]byte, error) {
	if format == "" {
		format = "svg"
	}
	if err := checkFormat(format); err != nil {
		return nil, err
	}
	if strings.TrimSpace(g.FlowchartSpec) == "" {
		return nil, fmt.Errorf("guide %s has no flowchart: %w", g.ID, engine.ErrNotFound)
	}
	key := engine.CacheKey("flowchart", g.ID, format)
	if data, ok := engine.CacheGetBytes(ctx, key); ok {
		return data, nil
	}

	engine.IncrFlowchartRenders()
	data, err := r.Render(ctx, StyleDOT(g.FlowchartSpec), format)
	if err != nil {
		engine.IncrFlowchartErrors()
		slog.Warn("flowchart: render failed", slog.String("guide", g.ID), slog.Any("error", err))
		return nil, err
	}
	engine.CacheSetBytes(ctx, key, data)
	return data, nil
}
