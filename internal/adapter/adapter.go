// Package adapter provides a unified completion interface over LLM providers.
package adapter

import (
	"context"
	"fmt"
	"strings"
)

// Provider name constants.
const (
	ProviderNone   = "none"
	ProviderClaude = "claude"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// ValidProviders lists every provider New accepts.
var ValidProviders = []string{ProviderNone, ProviderClaude, ProviderOpenAI, ProviderOllama}

// CompletionRequest holds the parameters for a completion call.
type CompletionRequest struct {
	SystemPrompt string
	UserMessage  string
	Model        string
	MaxTokens    int
	Temperature  float64
	// JSON asks the provider to constrain its output to a JSON object where
	// the API supports it.
	JSON bool
}

// ModelInfo describes the model behind an adapter.
type ModelInfo struct {
	Name             string
	Provider         string
	MaxContextWindow int
}

// Completer is the common interface all provider adapters implement.
type Completer interface {
	// Complete sends a prompt and returns the full response text.
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// Info returns metadata about the adapter/model.
	Info() ModelInfo
}

// Options configures New.
type Options struct {
	Provider   string
	APIKey     string // empty = read from env in the concrete adapter
	Model      string
	BaseURL    string // overrides the provider endpoint; used for tests and proxies
	OllamaHost string
}

// New constructs the Completer for the named provider. The "none" provider
// returns (nil, nil): callers treat a nil Completer as rule-based only.
func New(opts Options) (Completer, error) {
	switch opts.Provider {
	case ProviderNone, "":
		return nil, nil
	case ProviderClaude:
		return NewClaude(opts.APIKey, opts.Model, opts.BaseURL), nil
	case ProviderOpenAI:
		return NewOpenAI(opts.APIKey, opts.Model, opts.BaseURL), nil
	case ProviderOllama:
		host := opts.OllamaHost
		if opts.BaseURL != "" {
			host = opts.BaseURL
		}
		if host == "" {
			host = "http://localhost:11434"
		}
		return NewOllama(host, opts.Model), nil
	default:
		return nil, fmt.Errorf("adapter: unknown provider %q; valid providers: %s",
			opts.Provider, strings.Join(ValidProviders, ", "))
	}
}
