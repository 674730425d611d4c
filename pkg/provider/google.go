package provider

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/zen-systems/serpcoach/pkg/serp"
	"google.golang.org/genai"
)

const (
	googleBaseURL = "https://generativelanguage.googleapis.com/v1beta/models/"
	googleModel   = "gemini-2.0-flash"
)

// GoogleConfig addresses the Gemini generateContent API with a single prompt.
type GoogleConfig struct {
	settings
}

type googleRequest struct {
	Contents         []*genai.Content        `json:"contents"`
	GenerationConfig *genai.GenerationConfig `json:"generationConfig,omitempty"`
}

// NewGoogleConfig creates a Gemini config. Without WithEndpoint the URL is derived from the model.
func NewGoogleConfig(opts ...Option) *GoogleConfig {
	s := newSettings("", googleModel, opts)
	if s.endpoint == "" {
		s.endpoint = googleBaseURL + s.model + ":generateContent"
	}
	return &GoogleConfig{settings: s}
}

// Name returns the provider identifier.
func (c *GoogleConfig) Name() string {
	return "google"
}

// Endpoint returns the generateContent URL.
func (c *GoogleConfig) Endpoint() string {
	return c.endpoint
}

// BuildHeaders returns API-key headers.
func (c *GoogleConfig) BuildHeaders(secret string) http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	h.Set("X-Goog-Api-Key", secret)
	return h
}

// BuildRequestBody returns one user content holding the whole prompt.
func (c *GoogleConfig) BuildRequestBody(input string, competitors []serp.Entry) (any, error) {
	return googleRequest{
		Contents: genai.Text(singlePrompt(input, competitors)),
		GenerationConfig: &genai.GenerationConfig{
			MaxOutputTokens: int32(c.maxTokens),
		},
	}, nil
}

// ExtractText concatenates the parts of the first candidate.
func (c *GoogleConfig) ExtractText(body []byte) (string, error) {
	var resp genai.GenerateContentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse google response: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("google returned no candidates")
	}

	var content string
	if resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part != nil && part.Text != "" {
				content += part.Text
			}
		}
	}
	return content, nil
}
