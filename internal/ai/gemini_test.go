package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func geminiTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func geminiBody(text string) string {
	resp := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestGemini_Analyze(t *testing.T) {
	srv := geminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if !strings.Contains(r.URL.Path, "/models/gemini-2.5-flash:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("expected key query parameter, got %q", r.URL.Query().Get("key"))
		}

		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if len(req.Contents) != 1 || req.Contents[0].Role != "user" {
			t.Errorf("unexpected request contents: %+v", req.Contents)
		}
		if !strings.Contains(req.Contents[0].Parts[0].Text, "falling through clouds") {
			t.Error("prompt does not embed dream content")
		}

		w.Write([]byte(geminiBody("The dream speaks of release and surrender.")))
	})

	g := NewGemini("test-key", "gemini-2.5-flash", srv.URL)
	got, err := g.Analyze(context.Background(), "I was falling through clouds", LanguageEnglish)
	if err != nil {
		t.Fatal(err)
	}
	if got != "The dream speaks of release and surrender." {
		t.Errorf("unexpected analysis %q", got)
	}
}

func TestGemini_Analyze_SentinelRejection(t *testing.T) {
	srv := geminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(geminiBody("Analysis Failed")))
	})

	g := NewGemini("test-key", "gemini-2.5-flash", srv.URL)
	_, err := g.Analyze(context.Background(), "asdf qwerty", LanguageEnglish)
	if !errors.Is(err, ErrRejected) {
		t.Errorf("expected ErrRejected, got %v", err)
	}
}

func TestGemini_Analyze_TransportError(t *testing.T) {
	srv := geminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend exploded", http.StatusBadGateway)
	})

	g := NewGemini("test-key", "gemini-2.5-flash", srv.URL)
	_, err := g.Analyze(context.Background(), "a dream", LanguageEnglish)
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrRejected) {
		t.Error("transport failure must not classify as rejection")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("expected status in error, got %v", err)
	}
}

func TestGemini_Analyze_MissingKey(t *testing.T) {
	g := NewGemini("", "gemini-2.5-flash", "http://unused")
	_, err := g.Analyze(context.Background(), "a dream", LanguageEnglish)
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestGemini_Analyze_EmptyCandidates(t *testing.T) {
	srv := geminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	})

	g := NewGemini("test-key", "gemini-2.5-flash", srv.URL)
	got, err := g.Analyze(context.Background(), "a dream", LanguageEnglish)
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("expected empty analysis, got %q", got)
	}
}

func TestGemini_Analyze_SanitizesOutput(t *testing.T) {
	srv := geminiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(geminiBody("The **bridge** represents transition; trust it.")))
	})

	g := NewGemini("test-key", "gemini-2.5-flash", srv.URL)
	got, err := g.Analyze(context.Background(), "a bridge dream", LanguageEnglish)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "*") || strings.Contains(got, ";") {
		t.Errorf("expected sanitized output, got %q", got)
	}
}

func TestGemini_Provider(t *testing.T) {
	g := NewGemini("k", "gemini-2.5-flash", "http://unused")
	if g.Provider() != "gemini/gemini-2.5-flash" {
		t.Errorf("unexpected provider %q", g.Provider())
	}
}
