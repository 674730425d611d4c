package provider

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/zen-systems/serpcoach/pkg/serp"
)

const (
	deepseekEndpoint = "https://api.deepseek.com/beta/completions"
	deepseekModel    = "deepseek-chat"
)

// DeepSeekConfig addresses the DeepSeek completion API: one prompt string, no chat messages.
type DeepSeekConfig struct {
	settings
}

// deepseekRequest represents the completion request format.
type deepseekRequest struct {
	Model     string `json:"model"`
	Prompt    string `json:"prompt"`
	MaxTokens int64  `json:"max_tokens,omitempty"`
}

// deepseekResponse represents the completion response format.
type deepseekResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int    `json:"index"`
		Text         string `json:"text"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// NewDeepSeekConfig creates a DeepSeek config.
func NewDeepSeekConfig(opts ...Option) *DeepSeekConfig {
	return &DeepSeekConfig{settings: newSettings(deepseekEndpoint, deepseekModel, opts)}
}

// Name returns the provider identifier.
func (c *DeepSeekConfig) Name() string {
	return "deepseek"
}

// Endpoint returns the completions URL.
func (c *DeepSeekConfig) Endpoint() string {
	return c.endpoint
}

// BuildHeaders returns bearer-token JSON headers.
func (c *DeepSeekConfig) BuildHeaders(secret string) http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	h.Set("Authorization", "Bearer "+secret)
	return h
}

// BuildRequestBody returns a single-prompt completion request.
func (c *DeepSeekConfig) BuildRequestBody(input string, competitors []serp.Entry) (any, error) {
	return deepseekRequest{
		Model:     c.model,
		Prompt:    singlePrompt(input, competitors),
		MaxTokens: c.maxTokens,
	}, nil
}

// ExtractText returns the first choice's text.
func (c *DeepSeekConfig) ExtractText(body []byte) (string, error) {
	var resp deepseekResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse deepseek response: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("deepseek API error: %s (type: %s, code: %s)",
			resp.Error.Message, resp.Error.Type, resp.Error.Code)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("deepseek returned no choices")
	}
	return resp.Choices[0].Text, nil
}
