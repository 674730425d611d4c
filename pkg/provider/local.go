package provider

import (
	"net/http"

	"github.com/zen-systems/serpcoach/pkg/serp"
)

// LocalID is the id of the built-in provider that never leaves the process.
const LocalID = "local"

// LocalConfig marks analysis as synthesized in-process. It has no endpoint and
// needs no secret.
type LocalConfig struct{}

type localRequest struct {
	Prompt string `json:"prompt"`
}

// NewLocalConfig creates the local config.
func NewLocalConfig() *LocalConfig {
	return &LocalConfig{}
}

// Name returns the provider identifier.
func (c *LocalConfig) Name() string {
	return LocalID
}

// Endpoint is empty: nothing is sent.
func (c *LocalConfig) Endpoint() string {
	return ""
}

// BuildHeaders returns no headers.
func (c *LocalConfig) BuildHeaders(string) http.Header {
	return http.Header{}
}

// BuildRequestBody returns the prompt that a remote backend would have received.
func (c *LocalConfig) BuildRequestBody(input string, competitors []serp.Entry) (any, error) {
	return localRequest{Prompt: BuildPrompt(input, competitors)}, nil
}

// IsLocal reports whether cfg is served in-process.
func IsLocal(cfg Config) bool {
	_, ok := cfg.(*LocalConfig)
	return ok
}
