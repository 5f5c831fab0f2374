package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNew_ValidProviders(t *testing.T) {
	tests := []struct {
		provider string
	}{
		{ProviderClaude},
		{ProviderOpenAI},
		{ProviderOllama},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			a, err := New(Options{Provider: tt.provider, APIKey: "test-key"})
			if err != nil {
				t.Fatalf("New(%q) error: %v", tt.provider, err)
			}
			if a == nil {
				t.Fatalf("New(%q) returned nil adapter", tt.provider)
			}
			info := a.Info()
			if info.Provider != tt.provider {
				t.Errorf("Info().Provider = %q, want %q", info.Provider, tt.provider)
			}
			if info.Name == "" {
				t.Error("expected a default model name")
			}
		})
	}
}

func TestNew_None(t *testing.T) {
	for _, p := range []string{ProviderNone, ""} {
		a, err := New(Options{Provider: p})
		if err != nil {
			t.Fatalf("New(%q) error: %v", p, err)
		}
		if a != nil {
			t.Errorf("New(%q) should return a nil Completer", p)
		}
	}
}

func TestNew_InvalidProvider(t *testing.T) {
	_, err := New(Options{Provider: "gemini"})
	if err == nil {
		t.Fatal("expected error for invalid provider")
	}
	if !strings.Contains(err.Error(), "valid providers") {
		t.Errorf("error should list valid providers: %v", err)
	}
}

func TestOllamaComplete(t *testing.T) {
	var got ollamaChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path: got %q, want /api/chat", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"message":{"role":"assistant","content":"{\"genre\":\"study\"}"},"done":true}`)
	}))
	defer server.Close()

	a := NewOllama(server.URL+"/", "")
	text, err := a.Complete(context.Background(), CompletionRequest{
		SystemPrompt: "sys",
		UserMessage:  "hello",
		JSON:         true,
	})
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if text != `{"genre":"study"}` {
		t.Errorf("got %q", text)
	}
	if got.Format != "json" || got.Stream {
		t.Errorf("request: format=%q stream=%v", got.Format, got.Stream)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" {
		t.Errorf("messages: got %+v", got.Messages)
	}
	if got.Model != defaultOllamaModel {
		t.Errorf("model: got %q", got.Model)
	}
}

func TestOllamaComplete_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewOllama(server.URL, "").Complete(context.Background(), CompletionRequest{UserMessage: "x"})
	if err == nil {
		t.Fatal("expected error for 503 response")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("error should mention status code 503: %v", err)
	}
}

func TestOpenAIComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if rf, ok := body["response_format"].(map[string]any); !ok || rf["type"] != "json_object" {
			t.Errorf("response_format: got %v", body["response_format"])
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"ok"},"finish_reason":"stop"}]}`)
	}))
	defer server.Close()

	a := NewOpenAI("test-key", "", server.URL+"/v1")
	text, err := a.Complete(context.Background(), CompletionRequest{UserMessage: "hi", JSON: true})
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if text != "ok" {
		t.Errorf("got %q, want %q", text, "ok")
	}
}

func TestMissingKeyFailsFast(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	for _, a := range []Completer{NewClaude("", "", ""), NewOpenAI("", "", "")} {
		if _, err := a.Complete(context.Background(), CompletionRequest{UserMessage: "x"}); err == nil {
			t.Errorf("%s: expected missing key error", a.Info().Provider)
		}
	}
}
