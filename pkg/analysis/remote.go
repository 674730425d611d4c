package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zen-systems/serpcoach/pkg/provider"
	"github.com/zen-systems/serpcoach/pkg/serp"
)

// Remote asks a provider backend for the critique.
type Remote struct {
	config  provider.Config
	adapter provider.ResponseAdapter
	client  *provider.Client
	secret  string
}

// NewRemote creates a provider-backed engine. cfg must also implement
// provider.ResponseAdapter.
func NewRemote(cfg provider.Config, client *provider.Client, secret string) (*Remote, error) {
	adapter, ok := cfg.(provider.ResponseAdapter)
	if !ok {
		return nil, fmt.Errorf("provider %s has no response adapter", cfg.Name())
	}
	if client == nil {
		client = provider.NewClient()
	}
	return &Remote{config: cfg, adapter: adapter, client: client, secret: secret}, nil
}

// ForProvider returns the engine serving cfg: the heuristic engine for the local
// provider, a Remote engine otherwise.
func ForProvider(cfg provider.Config, client *provider.Client, secret string) (Engine, error) {
	if provider.IsLocal(cfg) {
		return NewHeuristic(), nil
	}
	return NewRemote(cfg, client, secret)
}

// Analyze implements Engine. All failures are *provider.RequestError.
func (r *Remote) Analyze(ctx context.Context, input string, competitors []serp.Entry) (Analysis, error) {
	body, err := r.client.Do(ctx, r.config, r.secret, input, competitors)
	if err != nil {
		return nil, err
	}

	text, err := r.adapter.ExtractText(body)
	if err != nil {
		return nil, &provider.RequestError{Provider: r.config.Name(), Err: err}
	}

	a, err := ParseAnalysis(text)
	if err != nil {
		return nil, &provider.RequestError{Provider: r.config.Name(), Err: err}
	}
	return a, nil
}

// ParseAnalysis extracts an Analysis from model output.
func ParseAnalysis(content string) (Analysis, error) {
	// Clean up response - remove markdown code blocks if present
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var raw critiqueReply
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		start := strings.Index(content, "{")
		end := strings.LastIndex(content, "}")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("failed to parse analysis JSON: %w", err)
		}
		if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
			return nil, fmt.Errorf("failed to parse analysis JSON: %w", err)
		}
	}

	a := make(Analysis, len(Fields))
	for f, c := range raw.fields() {
		if c == nil {
			continue
		}
		a[f] = FieldCritique{
			Suggestions:       nonBlank(c.Suggestions),
			CompetitorInsight: strings.TrimSpace(c.CompetitorInsight),
		}
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// critiqueReply is the model's reply. Keys other than the two fields are ignored.
type critiqueReply struct {
	Title           *FieldCritique `json:"title"`
	MetaDescription *FieldCritique `json:"metaDescription"`
}

func (c critiqueReply) fields() map[Field]*FieldCritique {
	return map[Field]*FieldCritique{
		FieldTitle:           c.Title,
		FieldMetaDescription: c.MetaDescription,
	}
}

func nonBlank(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
