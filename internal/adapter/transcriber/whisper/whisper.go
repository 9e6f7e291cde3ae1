// Package whisper adapts a Whisper ASR sidecar into the Transcriber port.
package whisper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/fabio-pecora/NextStep.AI/internal/adapter/observability"
	"github.com/fabio-pecora/NextStep.AI/internal/domain"
)

// Client calls a Whisper ASR web service over multipart HTTP. Any failure,
// unsupported media, transport error, or non-2xx, surfaces as
// domain.ErrTranscription: there is no text to fall back to.
type Client struct {
	baseURL string
	httpc   *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
	}
}

// Transcribe uploads the audio and returns the recognized text, trimmed.
func (c *Client) Transcribe(ctx context.Context, filename string, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("%w: empty audio upload", domain.ErrTranscription)
	}
	mt := mimetype.Detect(audio)
	if !isAudio(mt) {
		observability.TranscriptionsTotal.WithLabelValues("unsupported").Inc()
		return "", fmt.Errorf("%w: unsupported media type %s", domain.ErrTranscription, mt.String())
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("audio_file", filename)
	if err != nil {
		return "", fmt.Errorf("%w: build upload: %v", domain.ErrTranscription, err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("%w: build upload: %v", domain.ErrTranscription, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("%w: build upload: %v", domain.ErrTranscription, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/asr?output=txt&language=en", &buf)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTranscription, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		observability.TranscriptionsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: %v", domain.ErrTranscription, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		observability.TranscriptionsTotal.WithLabelValues("error").Inc()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return "", fmt.Errorf("%w: asr status %d: %s", domain.ErrTranscription, resp.StatusCode, snippet)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		observability.TranscriptionsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: read transcript: %v", domain.ErrTranscription, err)
	}

	text := strings.TrimSpace(string(body))
	observability.TranscriptionsTotal.WithLabelValues("ok").Inc()
	slog.DebugContext(ctx, "audio transcribed",
		slog.String("filename", filename),
		slog.Int("audio_bytes", len(audio)),
		slog.Int("transcript_chars", len(text)),
		slog.Duration("took", time.Since(start)))
	return text, nil
}

// isAudio accepts audio containers plus webm/mp4, which browsers use for
// microphone recordings.
func isAudio(mt *mimetype.MIME) bool {
	t := mt.String()
	return strings.HasPrefix(t, "audio/") ||
		strings.HasPrefix(t, "video/webm") ||
		strings.HasPrefix(t, "video/mp4")
}
