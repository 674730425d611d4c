// Package provider describes how to address and format analysis requests for each
// backend. A Config carries request-building functions rather than a fixed schema, so
// structurally different backends can coexist in one Registry.
package provider

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/zen-systems/serpcoach/pkg/serp"
)

var (
	ErrUnknownProvider    = errors.New("unknown provider")
	ErrProviderRegistered = errors.New("provider already registered")
	ErrProviderInvalid    = errors.New("provider id is required")
)

// Config defines how to address one backend analysis engine.
type Config interface {
	// Name returns the provider's display identifier.
	Name() string

	// Endpoint returns the URL requests are POSTed to. Local providers return "".
	Endpoint() string

	// BuildHeaders returns the HTTP headers for a request authenticated with secret.
	BuildHeaders(secret string) http.Header

	// BuildRequestBody returns the provider-specific payload, ready for JSON encoding.
	BuildRequestBody(input string, competitors []serp.Entry) (any, error)
}

// ResponseAdapter extracts the generated text from a raw provider response.
type ResponseAdapter interface {
	ExtractText(body []byte) (string, error)
}

// Registry holds provider configs keyed by id.
type Registry struct {
	mu      sync.RWMutex
	configs map[string]Config
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		configs: make(map[string]Config),
	}
}

// Register adds a config under id.
func (r *Registry) Register(id string, cfg Config) error {
	key := normalizeID(id)
	if key == "" {
		return ErrProviderInvalid
	}
	if cfg == nil {
		return fmt.Errorf("provider %s: config is nil", key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.configs[key]; exists {
		return fmt.Errorf("%w: %s", ErrProviderRegistered, key)
	}
	r.configs[key] = cfg
	return nil
}

// Get returns the config registered under id.
func (r *Registry) Get(id string) (Config, error) {
	key := normalizeID(id)

	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.configs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, id)
	}
	return cfg, nil
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.configs))
	for id := range r.configs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
