package utils

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGeminiGenerate(t *testing.T) {
	t.Parallel()

	var gotPath, gotKey, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Try "},{"text":"Heat (1995)."}]}}]}`))
	}))
	defer srv.Close()

	g := NewGeminiClient(srv.URL+"/", "secret", "test-model")
	text, err := g.Generate(context.Background(), GeminiRequest{
		Contents: []GeminiContent{GeminiText("user", "recommend a heist film")},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "Try Heat (1995)." {
		t.Errorf("text = %q", text)
	}
	if gotPath != "/models/test-model:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "secret" {
		t.Errorf("api key header = %q", gotKey)
	}
	if !strings.Contains(gotBody, `"role":"user"`) {
		t.Errorf("request body missing role: %s", gotBody)
	}
}

func TestGeminiGenerateErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid"}}`))
	}))
	defer srv.Close()

	g := NewGeminiClient(srv.URL, "bad", "m")
	if _, err := g.Generate(context.Background(), GeminiRequest{}); err == nil || !strings.Contains(err.Error(), "API key not valid") {
		t.Errorf("expected api error, got %v", err)
	}

	unconfigured := NewGeminiClient(srv.URL, "", "m")
	if _, err := unconfigured.Generate(context.Background(), GeminiRequest{}); !errors.Is(err, ErrGeminiNotConfigured) {
		t.Errorf("expected ErrGeminiNotConfigured, got %v", err)
	}
}
