package provider

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/zen-systems/serpcoach/pkg/serp"
)

// Description is a dry-run view of a provider request.
type Description struct {
	Provider string            `json:"provider"`
	Method   string            `json:"method"`
	URL      string            `json:"url"`
	Headers  map[string]string `json:"headers"`
	Body     json.RawMessage   `json:"body"`
}

var credentialHeaders = map[string]bool{
	"Authorization":  true,
	"X-Api-Key":      true,
	"X-Goog-Api-Key": true,
}

// Describe renders the request cfg would send, with credentials redacted.
func Describe(cfg Config, secret, input string, competitors []serp.Entry) (*Description, error) {
	body, err := encodeBody(cfg, input, competitors)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", cfg.Name(), err)
	}
	return &Description{
		Provider: cfg.Name(),
		Method:   http.MethodPost,
		URL:      cfg.Endpoint(),
		Headers:  RedactHeaders(cfg.BuildHeaders(secret)),
		Body:     body,
	}, nil
}

// RedactHeaders flattens h and masks credential values.
func RedactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for key, values := range h {
		value := strings.Join(values, ", ")
		if credentialHeaders[http.CanonicalHeaderKey(key)] {
			value = redact(value)
		}
		out[key] = value
	}
	return out
}

func redact(value string) string {
	if scheme, _, ok := strings.Cut(value, " "); ok && strings.EqualFold(scheme, "bearer") {
		return scheme + " ****"
	}
	if value == "" {
		return ""
	}
	return "****"
}
