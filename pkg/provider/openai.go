package provider

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/zen-systems/serpcoach/pkg/serp"
)

const (
	openaiEndpoint = "https://api.openai.com/v1/chat/completions"
	openaiModel    = "gpt-4o-mini"
)

// OpenAIConfig addresses the OpenAI chat completions API: bearer token auth and a
// JSON list of chat messages.
type OpenAIConfig struct {
	settings
}

// NewOpenAIConfig creates an OpenAI config.
func NewOpenAIConfig(opts ...Option) *OpenAIConfig {
	return &OpenAIConfig{settings: newSettings(openaiEndpoint, openaiModel, opts)}
}

// Name returns the provider identifier.
func (c *OpenAIConfig) Name() string {
	return "openai"
}

// Endpoint returns the chat completions URL.
func (c *OpenAIConfig) Endpoint() string {
	return c.endpoint
}

// BuildHeaders returns bearer-token JSON headers.
func (c *OpenAIConfig) BuildHeaders(secret string) http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	h.Set("Authorization", "Bearer "+secret)
	return h
}

// BuildRequestBody returns a system + user chat message request.
func (c *OpenAIConfig) BuildRequestBody(input string, competitors []serp.Entry) (any, error) {
	return openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemPrompt),
			openai.UserMessage(BuildPrompt(input, competitors)),
		},
		MaxCompletionTokens: openai.Int(c.maxTokens),
	}, nil
}

// ExtractText returns the first choice's message content.
func (c *OpenAIConfig) ExtractText(body []byte) (string, error) {
	var completion openai.ChatCompletion
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("failed to parse openai response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}
