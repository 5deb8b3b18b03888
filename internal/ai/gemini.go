package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Compile-time interface check
var _ Analyst = (*Gemini)(nil)

// Gemini implements the analysis service against the generative-language
// REST endpoint: the API key travels as a query parameter and the model
// output lives at candidates[0].content.parts[0].text.
type Gemini struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewGemini creates a Gemini analyst. baseURL is the API root without a
// trailing slash, e.g. "https://generativelanguage.googleapis.com/v1beta".
func NewGemini(apiKey, model, baseURL string) *Gemini {
	return &Gemini{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

// geminiRequest mirrors the generateContent request body.
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

// geminiResponse mirrors the subset of the generateContent response we read.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Analyze sends the localized analysis prompt and post-processes the output.
func (g *Gemini) Analyze(ctx context.Context, content string, lang Language) (string, error) {
	if g.apiKey == "" {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: AnalysisPrompt(lang, content)}},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("encoding analysis request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		g.baseURL, g.model, url.QueryEscape(g.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating analysis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("requesting analysis: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("analysis request failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding analysis response: %w", err)
	}

	var raw string
	if len(parsed.Candidates) > 0 && len(parsed.Candidates[0].Content.Parts) > 0 {
		raw = parsed.Candidates[0].Content.Parts[0].Text
	}

	return classify(raw, lang)
}

// Provider returns the backend identifier.
func (g *Gemini) Provider() string {
	return "gemini/" + g.model
}
