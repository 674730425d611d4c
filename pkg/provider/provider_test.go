package provider

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/zen-systems/serpcoach/pkg/serp"
)

var testCompetitors = []serp.Entry{
	{Title: "Top 10 best Tips", MetaDescription: "Tips.", SourceURL: "https://example.com/a", Rank: 1},
	{Title: "What Is best?", MetaDescription: "Answers.", SourceURL: "https://example.com/b", Rank: 2},
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("OpenAI", NewOpenAIConfig()); err != nil {
		t.Fatalf("register openai: %v", err)
	}
	if err := r.Register("deepseek", NewDeepSeekConfig()); err != nil {
		t.Fatalf("register deepseek: %v", err)
	}

	cfg, err := r.Get(" openai ")
	if err != nil {
		t.Fatalf("get openai: %v", err)
	}
	if cfg.Name() != "openai" {
		t.Errorf("Name() = %q, want openai", cfg.Name())
	}

	if _, err := r.Get("missing"); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("expected ErrUnknownProvider, got %v", err)
	}

	if got, want := r.IDs(), []string{"deepseek", "openai"}; !reflect.DeepEqual(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}
}

func TestRegistryRejectsInvalid(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("  ", NewLocalConfig()); !errors.Is(err, ErrProviderInvalid) {
		t.Errorf("expected ErrProviderInvalid, got %v", err)
	}
	if err := r.Register("x", nil); err == nil {
		t.Error("expected error for nil config")
	}
	if err := r.Register("local", NewLocalConfig()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register("LOCAL", NewLocalConfig()); !errors.Is(err, ErrProviderRegistered) {
		t.Errorf("expected ErrProviderRegistered, got %v", err)
	}
}

func TestDefaultRegistry(t *testing.T) {
	r, err := DefaultRegistry(map[string]Override{
		"openai": {Endpoint: "http://localhost:9999/v1/chat", Model: "gpt-test"},
		"google": {Model: "gemini-test"},
	})
	if err != nil {
		t.Fatalf("default registry: %v", err)
	}

	want := []string{"anthropic", "deepseek", "google", "local", "openai"}
	if got := r.IDs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("IDs() = %v, want %v", got, want)
	}

	cfg, _ := r.Get("openai")
	if cfg.Endpoint() != "http://localhost:9999/v1/chat" {
		t.Errorf("openai endpoint = %q", cfg.Endpoint())
	}
	if cfg.(*OpenAIConfig).Model() != "gpt-test" {
		t.Errorf("openai model = %q", cfg.(*OpenAIConfig).Model())
	}

	g, _ := r.Get("google")
	if !strings.HasSuffix(g.Endpoint(), "/models/gemini-test:generateContent") {
		t.Errorf("google endpoint = %q", g.Endpoint())
	}
}

func TestHeaders(t *testing.T) {
	tests := []struct {
		cfg    Config
		header string
		want   string
	}{
		{NewOpenAIConfig(), "Authorization", "Bearer sk-1"},
		{NewDeepSeekConfig(), "Authorization", "Bearer sk-1"},
		{NewAnthropicConfig(), "X-Api-Key", "sk-1"},
		{NewGoogleConfig(), "X-Goog-Api-Key", "sk-1"},
	}

	for _, tt := range tests {
		t.Run(tt.cfg.Name(), func(t *testing.T) {
			h := tt.cfg.BuildHeaders("sk-1")
			if got := h.Get(tt.header); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.header, got, tt.want)
			}
			if got := h.Get("Content-Type"); got != "application/json" {
				t.Errorf("Content-Type = %q", got)
			}
		})
	}

	if got := NewAnthropicConfig().BuildHeaders("k").Get("Anthropic-Version"); got != anthropicVersion {
		t.Errorf("anthropic-version = %q", got)
	}
	if len(NewLocalConfig().BuildHeaders("k")) != 0 {
		t.Error("local config should not produce headers")
	}
}

func decodeBody(t *testing.T, cfg Config) map[string]any {
	t.Helper()
	data, err := encodeBody(cfg, "best coffee makers", testCompetitors)
	if err != nil {
		t.Fatalf("encode %s body: %v", cfg.Name(), err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode %s body: %v", cfg.Name(), err)
	}
	return out
}

func TestOpenAIRequestBodyIsChat(t *testing.T) {
	body := decodeBody(t, NewOpenAIConfig())
	if body["model"] != openaiModel {
		t.Errorf("model = %v", body["model"])
	}
	messages, ok := body["messages"].([]any)
	if !ok || len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %v", body["messages"])
	}
	first := messages[0].(map[string]any)
	second := messages[1].(map[string]any)
	if first["role"] != "system" || second["role"] != "user" {
		t.Errorf("unexpected roles: %v, %v", first["role"], second["role"])
	}
	if !strings.Contains(second["content"].(string), "best coffee makers") {
		t.Errorf("user message missing input: %v", second["content"])
	}
}

func TestAnthropicRequestBody(t *testing.T) {
	body := decodeBody(t, NewAnthropicConfig())
	if body["model"] != anthropicModel {
		t.Errorf("model = %v", body["model"])
	}
	if body["max_tokens"] != float64(1024) {
		t.Errorf("max_tokens = %v", body["max_tokens"])
	}
	messages, ok := body["messages"].([]any)
	if !ok || len(messages) != 1 {
		t.Fatalf("expected 1 message, got %v", body["messages"])
	}
	if _, ok := body["system"]; !ok {
		t.Error("expected system prompt")
	}
}

func TestSinglePromptRequestBodies(t *testing.T) {
	g := decodeBody(t, NewGoogleConfig())
	contents, ok := g["contents"].([]any)
	if !ok || len(contents) != 1 {
		t.Fatalf("expected one content, got %v", g["contents"])
	}
	if _, ok := g["messages"]; ok {
		t.Error("google body should not carry chat messages")
	}
	parts := contents[0].(map[string]any)["parts"].([]any)
	text := parts[0].(map[string]any)["text"].(string)
	if !strings.Contains(text, "Return ONLY a JSON object") || !strings.Contains(text, "What Is best?") {
		t.Errorf("prompt missing instructions or competitors: %q", text)
	}

	d := decodeBody(t, NewDeepSeekConfig())
	prompt, ok := d["prompt"].(string)
	if !ok || !strings.Contains(prompt, "best coffee makers") {
		t.Errorf("deepseek prompt = %v", d["prompt"])
	}
	if _, ok := d["messages"]; ok {
		t.Error("deepseek body should not carry chat messages")
	}
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name    string
		adapter ResponseAdapter
		body    string
		want    string
		wantErr bool
	}{
		{
			name:    "openai",
			adapter: NewOpenAIConfig(),
			body:    `{"id":"c1","object":"chat.completion","created":1,"model":"gpt","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"hello"}}]}`,
			want:    "hello",
		},
		{
			name:    "openai no choices",
			adapter: NewOpenAIConfig(),
			body:    `{"id":"c1","choices":[]}`,
			wantErr: true,
		},
		{
			name:    "anthropic",
			adapter: NewAnthropicConfig(),
			body:    `{"id":"m1","type":"message","role":"assistant","model":"claude","content":[{"type":"text","text":"hi "},{"type":"text","text":"there"}],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":2}}`,
			want:    "hi there",
		},
		{
			name:    "google",
			adapter: NewGoogleConfig(),
			body:    `{"candidates":[{"content":{"role":"model","parts":[{"text":"a"},{"text":"b"}]}}]}`,
			want:    "ab",
		},
		{
			name:    "google no candidates",
			adapter: NewGoogleConfig(),
			body:    `{"candidates":[]}`,
			wantErr: true,
		},
		{
			name:    "deepseek",
			adapter: NewDeepSeekConfig(),
			body:    `{"id":"d1","model":"deepseek-chat","choices":[{"index":0,"text":"done","finish_reason":"stop"}]}`,
			want:    "done",
		},
		{
			name:    "deepseek error",
			adapter: NewDeepSeekConfig(),
			body:    `{"error":{"message":"bad key","type":"auth","code":"401"}}`,
			wantErr: true,
		},
		{
			name:    "malformed",
			adapter: NewDeepSeekConfig(),
			body:    `not json`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.adapter.ExtractText([]byte(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("extract: %v", err)
			}
			if got != tt.want {
				t.Errorf("ExtractText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDescribeRedactsSecret(t *testing.T) {
	for _, cfg := range []Config{NewOpenAIConfig(), NewAnthropicConfig(), NewGoogleConfig(), NewDeepSeekConfig()} {
		d, err := Describe(cfg, "sk-secret-value", "best coffee makers", testCompetitors)
		if err != nil {
			t.Fatalf("describe %s: %v", cfg.Name(), err)
		}
		if d.Method != "POST" || d.URL != cfg.Endpoint() {
			t.Errorf("%s: unexpected method/url %s %s", cfg.Name(), d.Method, d.URL)
		}
		for k, v := range d.Headers {
			if strings.Contains(v, "sk-secret-value") {
				t.Errorf("%s: header %s leaks secret", cfg.Name(), k)
			}
		}
		if strings.Contains(string(d.Body), "sk-secret-value") {
			t.Errorf("%s: body leaks secret", cfg.Name())
		}
	}
}

func TestRedactHeaders(t *testing.T) {
	h := NewOpenAIConfig().BuildHeaders("abc")
	got := RedactHeaders(h)
	if got["Authorization"] != "Bearer ****" {
		t.Errorf("Authorization = %q", got["Authorization"])
	}
	if got["Content-Type"] != "application/json" {
		t.Errorf("Content-Type = %q", got["Content-Type"])
	}
}
