package adapter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	anthropic "github.com/liushuangls/go-anthropic/v2"
)

const defaultClaudeModel = "claude-3-5-haiku-latest"

// claudeAdapter implements Completer for Anthropic Claude.
type claudeAdapter struct {
	client *anthropic.Client
	model  string
	hasKey bool
}

// NewClaude creates a Claude adapter. If apiKey is empty, ANTHROPIC_API_KEY is used.
func NewClaude(apiKey, model, baseURL string) Completer {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if model == "" {
		model = defaultClaudeModel
	}
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	return &claudeAdapter{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
		hasKey: apiKey != "",
	}
}

func (c *claudeAdapter) Info() ModelInfo {
	return ModelInfo{
		Name:             c.model,
		Provider:         ProviderClaude,
		MaxContextWindow: 200000,
	}
}

func (c *claudeAdapter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if !c.hasKey {
		return "", errors.New("claude complete: no API key configured")
	}
	model := req.Model
	if model == "" {
		model = c.model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	temp := float32(req.Temperature)

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model: anthropic.Model(model),
		Messages: []anthropic.Message{
			{
				Role:    anthropic.RoleUser,
				Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(req.UserMessage)},
			},
		},
		MaxTokens:   maxTokens,
		System:      req.SystemPrompt,
		Temperature: &temp,
	})
	if err != nil {
		return "", fmt.Errorf("claude complete: %w", err)
	}

	var b strings.Builder
	for _, part := range resp.Content {
		if part.Type == anthropic.MessagesContentTypeText {
			b.WriteString(part.GetText())
		}
	}
	if b.Len() == 0 {
		return "", errors.New("claude complete: empty response")
	}
	return b.String(), nil
}
