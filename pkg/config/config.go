package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zen-systems/serpcoach/pkg/provider"
	"gopkg.in/yaml.v3"
)

// DefaultProvider is used when neither the file nor the environment picks one.
const DefaultProvider = provider.LocalID

// DefaultMaxRetries is used when the retry section leaves max_retries unset.
const DefaultMaxRetries = 2

// Config holds the application configuration.
type Config struct {
	Provider        string
	AnthropicAPIKey string
	OpenAIAPIKey    string
	GoogleAPIKey    string
	DeepSeekAPIKey  string
	Providers       map[string]ProviderConfig
	Retry           RetryConfig
	Timeout         time.Duration
	Debug           bool
	ConfigDir       string
}

// FileConfig represents the structure of ~/.serpcoach/config.yaml
type FileConfig struct {
	Provider       string                    `yaml:"provider"`
	APIKeys        APIKeysConfig             `yaml:"api_keys"`
	Providers      map[string]ProviderConfig `yaml:"providers,omitempty"`
	Retry          RetryConfig               `yaml:"retry,omitempty"`
	TimeoutSeconds int                       `yaml:"timeout_seconds,omitempty"`
	Debug          bool                      `yaml:"debug,omitempty"`
}

// APIKeysConfig holds API key configuration from file.
type APIKeysConfig struct {
	Anthropic string `yaml:"anthropic"`
	OpenAI    string `yaml:"openai"`
	Google    string `yaml:"google"`
	DeepSeek  string `yaml:"deepseek"`
}

// ProviderConfig overrides a built-in provider's addressing.
type ProviderConfig struct {
	Endpoint string `yaml:"endpoint,omitempty"`
	Model    string `yaml:"model,omitempty"`
}

// RetryConfig defines retry and backoff behavior for provider calls.
type RetryConfig struct {
	MaxRetries    *int `yaml:"max_retries,omitempty"`
	BaseBackoffMs int  `yaml:"base_backoff_ms,omitempty"`
	MaxBackoffMs  int  `yaml:"max_backoff_ms,omitempty"`
}

// Load reads ~/.serpcoach/config.yaml (if present) and environment variables.
// Environment variables take precedence over file configuration.
func Load() (*Config, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	fileConfig, err := loadFileConfig(filepath.Join(configDir, "config.yaml"), true)
	if err != nil {
		return nil, err
	}
	return build(fileConfig, configDir), nil
}

// LoadFile reads configuration from an explicit path, which must exist.
func LoadFile(path string) (*Config, error) {
	fileConfig, err := loadFileConfig(path, false)
	if err != nil {
		return nil, err
	}
	return build(fileConfig, filepath.Dir(path)), nil
}

func build(fc *FileConfig, configDir string) *Config {
	cfg := &Config{
		Provider:        strings.ToLower(getEnvOrDefault("SERPCOACH_PROVIDER", fc.Provider)),
		AnthropicAPIKey: getEnvOrDefault("ANTHROPIC_API_KEY", fc.APIKeys.Anthropic),
		OpenAIAPIKey:    getEnvOrDefault("OPENAI_API_KEY", fc.APIKeys.OpenAI),
		GoogleAPIKey:    getEnvOrDefault("GOOGLE_API_KEY", fc.APIKeys.Google),
		DeepSeekAPIKey:  getEnvOrDefault("DEEPSEEK_API_KEY", fc.APIKeys.DeepSeek),
		Providers:       fc.Providers,
		Retry:           fc.Retry,
		Timeout:         time.Duration(fc.TimeoutSeconds) * time.Second,
		Debug:           fc.Debug,
		ConfigDir:       configDir,
	}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Provider == "" {
		cfg.Provider = DefaultProvider
	}
	if cfg.Providers == nil {
		cfg.Providers = map[string]ProviderConfig{}
	}
	if cfg.Retry.BaseBackoffMs <= 0 {
		cfg.Retry.BaseBackoffMs = 200
	}
	if cfg.Retry.MaxBackoffMs <= 0 {
		cfg.Retry.MaxBackoffMs = 2000
	}
	if cfg.Retry.MaxRetries == nil {
		retries := DefaultMaxRetries
		cfg.Retry.MaxRetries = &retries
	} else if *cfg.Retry.MaxRetries < 0 {
		retries := 0
		cfg.Retry.MaxRetries = &retries
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
}

// Secret returns the API key configured for a provider id.
func (c *Config) Secret(id string) string {
	switch strings.ToLower(id) {
	case "anthropic":
		return c.AnthropicAPIKey
	case "openai":
		return c.OpenAIAPIKey
	case "google":
		return c.GoogleAPIKey
	case "deepseek":
		return c.DeepSeekAPIKey
	default:
		return ""
	}
}

// HasKey returns true if the provider can be used: it has a key or needs none.
func (c *Config) HasKey(id string) bool {
	if strings.EqualFold(id, provider.LocalID) {
		return true
	}
	return c.Secret(id) != ""
}

// ProviderOverrides converts the providers section for provider.DefaultRegistry.
func (c *Config) ProviderOverrides() map[string]provider.Override {
	out := make(map[string]provider.Override, len(c.Providers))
	for id, p := range c.Providers {
		out[strings.ToLower(id)] = provider.Override{Endpoint: p.Endpoint, Model: p.Model}
	}
	return out
}

func (c *Config) maxRetries() int {
	if c.Retry.MaxRetries == nil {
		return DefaultMaxRetries
	}
	return *c.Retry.MaxRetries
}

// RetryPolicy converts the retry section for provider.Client.
func (c *Config) RetryPolicy() provider.RetryPolicy {
	return provider.RetryPolicy{
		MaxRetries:  c.maxRetries(),
		BaseBackoff: time.Duration(c.Retry.BaseBackoffMs) * time.Millisecond,
		MaxBackoff:  time.Duration(c.Retry.MaxBackoffMs) * time.Millisecond,
	}
}

// loadFileConfig reads a config file. A missing file yields an empty config when
// optional is set.
func loadFileConfig(path string, optional bool) (*FileConfig, error) {
	cfg := &FileConfig{}

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// getEnvOrDefault returns the environment variable value if set,
// otherwise returns the default value.
func getEnvOrDefault(envVar, defaultValue string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultValue
}

func getConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".serpcoach"), nil
}
