package image

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Compile-time interface check
var _ Illustrator = (*Pollinations)(nil)

// promptPrefix styles the generation request; the dream content is appended.
const promptPrefix = "Dreamy, surreal, artistic interpretation of: "

// maxPromptContent bounds how much of the dream content enters the prompt.
const maxPromptContent = 300

// maxImageBytes caps the response body read into memory.
const maxImageBytes = 16 << 20

// Pollinations fetches images from a keyless public generation endpoint:
// the prompt is URL-encoded into the request path and the response body is
// raw image bytes.
type Pollinations struct {
	baseURL    string
	httpClient *http.Client
}

// NewPollinations creates a Pollinations client. baseURL is the endpoint
// root without a trailing slash, e.g. "https://image.pollinations.ai".
func NewPollinations(baseURL string) *Pollinations {
	return &Pollinations{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Illustrate requests an image for the dream content and converts the
// binary response into a data URI.
func (p *Pollinations) Illustrate(ctx context.Context, content string) (string, error) {
	prompt := promptPrefix + truncate(content, maxPromptContent)
	endpoint := p.baseURL + "/prompt/" + url.PathEscape(prompt)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("creating image request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("requesting image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("image request failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return "", fmt.Errorf("reading image data: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("image request returned empty body")
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" || !strings.HasPrefix(mime, "image/") {
		mime = "image/jpeg"
	}

	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// truncate bounds s to max runes.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
