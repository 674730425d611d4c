package provider

import "fmt"

// Override holds per-provider settings from configuration.
type Override struct {
	Endpoint string
	Model    string
}

// DefaultRegistry registers every built-in provider, applying overrides by id.
func DefaultRegistry(overrides map[string]Override) (*Registry, error) {
	opts := func(id string) []Option {
		o := overrides[id]
		return []Option{WithEndpoint(o.Endpoint), WithModel(o.Model)}
	}

	r := NewRegistry()
	builtins := map[string]Config{
		"openai":    NewOpenAIConfig(opts("openai")...),
		"anthropic": NewAnthropicConfig(opts("anthropic")...),
		"google":    NewGoogleConfig(opts("google")...),
		"deepseek":  NewDeepSeekConfig(opts("deepseek")...),
		LocalID:     NewLocalConfig(),
	}
	for id, cfg := range builtins {
		if err := r.Register(id, cfg); err != nil {
			return nil, fmt.Errorf("register %s: %w", id, err)
		}
	}
	return r, nil
}
