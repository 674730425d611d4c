package provider

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/zen-systems/serpcoach/pkg/serp"
)

const (
	anthropicEndpoint = "https://api.anthropic.com/v1/messages"
	anthropicModel    = "claude-sonnet-4-20250514"
	anthropicVersion  = "2023-06-01"
)

// AnthropicConfig addresses the Anthropic messages API.
type AnthropicConfig struct {
	settings
}

// NewAnthropicConfig creates an Anthropic config.
func NewAnthropicConfig(opts ...Option) *AnthropicConfig {
	return &AnthropicConfig{settings: newSettings(anthropicEndpoint, anthropicModel, opts)}
}

// Name returns the provider identifier.
func (c *AnthropicConfig) Name() string {
	return "anthropic"
}

// Endpoint returns the messages URL.
func (c *AnthropicConfig) Endpoint() string {
	return c.endpoint
}

// BuildHeaders returns API-key and version headers.
func (c *AnthropicConfig) BuildHeaders(secret string) http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	h.Set("X-Api-Key", secret)
	h.Set("Anthropic-Version", anthropicVersion)
	return h
}

// BuildRequestBody returns a messages request with the critique instructions as system text.
func (c *AnthropicConfig) BuildRequestBody(input string, competitors []serp.Entry) (any, error) {
	return anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: SystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildPrompt(input, competitors))),
		},
	}, nil
}

// ExtractText concatenates the text blocks of the response.
func (c *AnthropicConfig) ExtractText(body []byte) (string, error) {
	var msg anthropic.Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return "", fmt.Errorf("failed to parse anthropic response: %w", err)
	}

	var content string
	for _, block := range msg.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}
	if content == "" {
		return "", fmt.Errorf("anthropic returned no text content")
	}
	return content, nil
}
