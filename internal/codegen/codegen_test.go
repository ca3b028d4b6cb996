package codegen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/evrenbal/mlforge/internal/backend"
)

func newTestGenerator(t *testing.T, handler http.Handler) (*Generator, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	gen, err := New(&Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
	})
	if err != nil {
		t.Fatalf("failed to create generator: %v", err)
	}
	return gen, server
}

func TestGenerate(t *testing.T) {
	gen, _ := newTestGenerator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("expected /v1/chat/completions, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("unexpected model %q", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("expected system + user messages, got %+v", req.Messages)
		}
		if !strings.Contains(req.Messages[0].Content, "python") {
			t.Errorf("system prompt must name the language: %q", req.Messages[0].Content)
		}

		_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "print('hi')"}, "finish_reason": "stop"}]}`))
	}))

	code, err := gen.Generate(context.Background(), "print hi", LangPython)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != "print('hi')" {
		t.Errorf("unexpected code %q", code)
	}
}

func TestGenerate_EmptyPromptNoNetwork(t *testing.T) {
	var calls int32
	gen, _ := newTestGenerator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))

	_, err := gen.Generate(context.Background(), "", LangPython)
	if !backend.IsPreconditionError(err) {
		t.Errorf("expected precondition error, got %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Errorf("empty prompt must not reach the network, got %d calls", n)
	}
}

func TestGenerate_UnsupportedLanguage(t *testing.T) {
	gen, _ := newTestGenerator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	_, err := gen.Generate(context.Background(), "do stuff", Language("cobol"))
	if !backend.IsPreconditionError(err) {
		t.Errorf("expected precondition error, got %v", err)
	}
}

func TestGenerate_APIError(t *testing.T) {
	gen, _ := newTestGenerator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "invalid api key"}}`))
	}))

	_, err := gen.Generate(context.Background(), "do stuff", LangPython)
	if !backend.IsRemoteError(err) {
		t.Fatalf("expected remote error, got %v", err)
	}
	if !strings.Contains(err.Error(), "invalid api key") {
		t.Errorf("expected server message to surface, got %v", err)
	}
}

func TestNew_RequiresAPIKey(t *testing.T) {
	if _, err := New(&Config{BaseURL: DefaultBaseURL, Model: DefaultModel}); err == nil {
		t.Error("expected error for missing API key")
	}
}
