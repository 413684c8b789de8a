package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/anatolykoptev/go_study/internal/engine"
)

// Whisper fallback: yt-dlp pulls the audio track, an OpenAI-compatible
// /audio/transcriptions endpoint turns it into text.

const (
	whisperDownloadTimeout = 5 * time.Minute
	whisperMaxAudioBytes   = 25 * 1024 * 1024 // OpenAI upload limit
)

// execCommand is swapped in tests.
var execCommand = exec.CommandContext

// TranscribeWithWhisper downloads the video's audio and transcribes it.
// The temp dir holding the audio is always removed.
func TranscribeWithWhisper(ctx context.Context, videoID string) (string, error) {
	engine.IncrWhisperRequests()

	dir, err := os.MkdirTemp("", "gostudy-whisper-*")
	if err != nil {
		return "", fmt.Errorf("whisper temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			slog.Warn("whisper: temp cleanup failed", slog.String("dir", dir), slog.Any("error", err))
		}
	}()

	audioPath, err := downloadAudio(ctx, videoID, dir)
	if err != nil {
		return "", err
	}
	return transcribeAudioFile(ctx, audioPath)
}

// downloadAudio runs yt-dlp to extract an mp3 into dir and returns its path.
func downloadAudio(ctx context.Context, videoID, dir string) (string, error) {
	bin := engine.Cfg.YtDlpPath
	if bin == "" {
		bin = "yt-dlp"
	}
	ctx, cancel := context.WithTimeout(ctx, whisperDownloadTimeout)
	defer cancel()

	out := filepath.Join(dir, videoID+".%(ext)s")
	cmd := execCommand(ctx, bin,
		"--no-playlist", "--quiet",
		"-f", "bestaudio/best",
		"-x", "--audio-format", "mp3",
		"-o", out,
		WatchURL(videoID),
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("yt-dlp: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	matches, _ := filepath.Glob(filepath.Join(dir, videoID+".*"))
	if len(matches) == 0 {
		return "", errors.New("yt-dlp produced no audio file")
	}
	return matches[0], nil
}

// transcribeAudioFile uploads the audio as multipart form data and returns the text.
func transcribeAudioFile(ctx context.Context, path string) (string, error) {
	if engine.Cfg.LLMAPIBase == "" {
		return "", errors.New("whisper: LLM_API_BASE not set")
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.Size() > whisperMaxAudioBytes {
		return "", fmt.Errorf("whisper: audio too large (%d bytes)", info.Size())
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	model := engine.Cfg.WhisperModel
	if model == "" {
		model = "whisper-1"
	}
	if err := mw.WriteField("model", model); err != nil {
		return "", err
	}
	if err := mw.WriteField("response_format", "json"); err != nil {
		return "", err
	}
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	endpoint := strings.TrimRight(engine.Cfg.LLMAPIBase, "/") + "/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if engine.Cfg.LLMAPIKey != "" {
		req.Header.Set("Authorization", "Bearer "+engine.Cfg.LLMAPIKey)
	}

	// Single attempt: the multipart body is consumed by the first send.
	resp, err := engine.Cfg.MediaClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("whisper: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("whisper HTTP %d: %s", resp.StatusCode, snippet)
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("whisper decode: %w", err)
	}
	return strings.TrimSpace(out.Text), nil
}
