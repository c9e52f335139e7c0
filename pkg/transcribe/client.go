package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ben-juodvalkis/musical-perception/pkg/audio/pcm"
)

const (
	// DefaultLanguage is the transcription language requested by default.
	DefaultLanguage = "en"

	// DefaultTimeout is the default per-request timeout.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries is the default number of retries for transient errors.
	DefaultMaxRetries = 3
)

// Client is a Transcriber backed by a whisper-style HTTP transcription
// service (openai-whisper-asr-webservice and compatible servers). Audio
// is wrapped in a WAV container and uploaded as multipart form data;
// the JSON response carries per-segment word timelines.
type Client struct {
	url        string
	language   string
	httpClient *http.Client
	timeout    time.Duration
	maxRetries int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLanguage sets the transcription language (default "en").
func WithLanguage(lang string) ClientOption {
	return func(c *Client) {
		c.language = lang
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = h
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRetry sets the maximum number of retries for transient errors.
func WithRetry(maxRetries int) ClientOption {
	return func(c *Client) {
		c.maxRetries = maxRetries
	}
}

// NewClient creates a Client for the transcription service at rawURL.
//
// Example:
//
//	tr := transcribe.NewClient("http://localhost:9000/asr")
//	words, err := tr.Transcribe(ctx, samples)
func NewClient(rawURL string, opts ...ClientOption) *Client {
	c := &Client{
		url:        rawURL,
		language:   DefaultLanguage,
		timeout:    DefaultTimeout,
		maxRetries: DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c
}

// asrResponse is the JSON shape returned by whisper-style servers.
type asrResponse struct {
	Text     string `json:"text"`
	Segments []struct {
		Words []Word `json:"words"`
	} `json:"segments"`
}

// Transcribe uploads the samples as a 16 kHz mono WAV and returns the
// recognized words. Word text is lowercased and trimmed.
func (c *Client) Transcribe(ctx context.Context, samples []int16) ([]Word, error) {
	reqURL, err := c.requestURL()
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	body, contentType, err := buildForm(pcm.EncodeWAV(samples, pcm.L16Mono16K.SampleRate()))
	if err != nil {
		return nil, err
	}

	slog.Debug("transcribe: sending audio",
		"url", c.url,
		"samples", len(samples),
		"duration", pcm.L16Mono16K.Seconds(len(samples)))

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s, ...
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		words, retryable, err := c.doRequest(ctx, reqURL, contentType, body)
		if err == nil {
			return words, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		slog.Warn("transcribe: request failed", "attempt", attempt, "error", err)
	}
	return nil, lastErr
}

// requestURL builds the service URL with transcription parameters.
func (c *Client) requestURL() (string, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("output", "json")
	q.Set("word_timestamps", "true")
	if c.language != "" {
		q.Set("language", c.language)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// doRequest performs a single upload. The second return value reports
// whether the failure is worth retrying.
func (c *Client) doRequest(ctx context.Context, reqURL, contentType string, body []byte) ([]Word, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("transcription server status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
		return nil, resp.StatusCode >= http.StatusInternalServerError, err
	}

	var out asrResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, false, fmt.Errorf("unmarshal response: %w", err)
	}

	var words []Word
	for _, seg := range out.Segments {
		for _, w := range seg.Words {
			w.Word = strings.ToLower(strings.TrimSpace(w.Word))
			words = append(words, w)
		}
	}
	return words, false, nil
}

// buildForm wraps the WAV bytes in a multipart form with the audio_file
// field expected by whisper-style servers. The encoded body is returned
// so retries can replay it.
func buildForm(wav []byte) (body []byte, contentType string, err error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("audio_file", "audio.wav")
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(wav); err != nil {
		return nil, "", fmt.Errorf("write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}
