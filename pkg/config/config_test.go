package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"SERPCOACH_PROVIDER", "ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GOOGLE_API_KEY", "DEEPSEEK_API_KEY"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	home := t.TempDir()
	setHomeEnv(t, home)
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Provider != DefaultProvider {
		t.Errorf("provider = %q, want %q", cfg.Provider, DefaultProvider)
	}
	if cfg.Timeout != 60*time.Second {
		t.Errorf("timeout = %s", cfg.Timeout)
	}
	if cfg.ConfigDir != filepath.Join(home, ".serpcoach") {
		t.Errorf("config dir = %q", cfg.ConfigDir)
	}
	if !cfg.HasKey("local") || cfg.HasKey("openai") {
		t.Errorf("unexpected key status")
	}
	policy := cfg.RetryPolicy()
	if policy.MaxRetries != DefaultMaxRetries || policy.BaseBackoff != 200*time.Millisecond || policy.MaxBackoff != 2*time.Second {
		t.Errorf("retry policy = %+v", policy)
	}
}

func TestExplicitZeroRetries(t *testing.T) {
	dir := t.TempDir()
	clearEnv(t)

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("retry:\n  max_retries: 0\n"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cfg.RetryPolicy().MaxRetries; got != 0 {
		t.Errorf("max retries = %d, want 0", got)
	}
}

func TestLoadReadsFile(t *testing.T) {
	home := t.TempDir()
	setHomeEnv(t, home)
	clearEnv(t)

	configDir := filepath.Join(home, ".serpcoach")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	data := []byte(`provider: OpenAI
api_keys:
  openai: file-openai
  deepseek: file-deepseek
providers:
  openai:
    endpoint: http://localhost:8080/v1/chat/completions
    model: gpt-test
retry:
  max_retries: 4
  base_backoff_ms: 50
timeout_seconds: 5
`)
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), data, 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Provider != "openai" {
		t.Errorf("provider = %q", cfg.Provider)
	}
	if cfg.Secret("openai") != "file-openai" || cfg.Secret("deepseek") != "file-deepseek" {
		t.Errorf("file API keys not loaded")
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("timeout = %s", cfg.Timeout)
	}

	overrides := cfg.ProviderOverrides()
	if overrides["openai"].Model != "gpt-test" || overrides["openai"].Endpoint != "http://localhost:8080/v1/chat/completions" {
		t.Errorf("overrides = %+v", overrides)
	}

	policy := cfg.RetryPolicy()
	if policy.MaxRetries != 4 || policy.BaseBackoff != 50*time.Millisecond || policy.MaxBackoff != 2*time.Second {
		t.Errorf("retry policy = %+v", policy)
	}
}

func TestConfigUsesEnvOverFile(t *testing.T) {
	home := t.TempDir()
	setHomeEnv(t, home)
	clearEnv(t)

	path := filepath.Join(home, "custom.yaml")
	data := []byte("provider: deepseek\napi_keys:\n  anthropic: file-ant\n")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("SERPCOACH_PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "env-ant")
	t.Setenv("GOOGLE_API_KEY", "env-google")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Provider != "anthropic" {
		t.Errorf("provider = %q", cfg.Provider)
	}
	if cfg.AnthropicAPIKey != "env-ant" || cfg.GoogleAPIKey != "env-google" {
		t.Fatalf("expected env API keys to be used")
	}
	if cfg.Secret("unknown") != "" {
		t.Errorf("unknown provider should have no secret")
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()
	clearEnv(t)

	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("provider: [unclosed"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFile(bad); err == nil {
		t.Error("expected parse error")
	}
}

func setHomeEnv(t *testing.T, home string) {
	t.Helper()
	t.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	}
}
